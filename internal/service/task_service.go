package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pomotaro/internal/model"
	"pomotaro/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title              string
	EstimatedPomodoros int
}

// TaskService wraps task-related business logic.
type TaskService struct {
	repo *repository.TaskRepository
	now  func() time.Time
	mu   sync.Mutex
}

func NewTaskService(repo *repository.TaskRepository) *TaskService {
	return &TaskService{repo: repo, now: time.Now}
}

func (s *TaskService) Create(ctx context.Context, input TaskInput) (*model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if input.EstimatedPomodoros < 0 || input.EstimatedPomodoros > 99 {
		return nil, fmt.Errorf("%w: estimate must be between 0 and 99", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	task := model.Task{
		ID:                 uuid.NewString(),
		Title:              title,
		EstimatedPomodoros: input.EstimatedPomodoros,
		CreatedAt:          s.now(),
	}
	if err := s.repo.Save(ctx, append(tasks, task)); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &task, nil
}

func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	return s.repo.List(ctx)
}

// ListActive returns tasks that are not completed yet.
func (s *TaskService) ListActive(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Completed {
			active = append(active, t)
		}
	}
	return active, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (*model.Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i], nil
		}
	}
	return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
}

// Resolve finds a task by 1-based list position, full id or unique id prefix.
func (s *TaskService) Resolve(ctx context.Context, ref string) (*model.Task, error) {
	ref = strings.TrimSpace(ref)
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(tasks) {
			return nil, fmt.Errorf("task #%d: %w", n, ErrNotFound)
		}
		return &tasks[n-1], nil
	}
	var match *model.Task
	for i := range tasks {
		if tasks[i].ID == ref {
			return &tasks[i], nil
		}
		if ref != "" && strings.HasPrefix(tasks[i].ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("%w: task id prefix %q is ambiguous", ErrInvalidInput, ref)
			}
			match = &tasks[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("task %s: %w", ref, ErrNotFound)
	}
	return match, nil
}

func (s *TaskService) Rename(ctx context.Context, id, title string) (*model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	return s.update(ctx, id, func(t *model.Task) { t.Title = title })
}

func (s *TaskService) SetEstimate(ctx context.Context, id string, n int) (*model.Task, error) {
	if n < 0 || n > 99 {
		return nil, fmt.Errorf("%w: estimate must be between 0 and 99", ErrInvalidInput)
	}
	return s.update(ctx, id, func(t *model.Task) { t.EstimatedPomodoros = n })
}

// Toggle flips the completed flag.
func (s *TaskService) Toggle(ctx context.Context, id string) (*model.Task, error) {
	return s.update(ctx, id, func(t *model.Task) { t.Completed = !t.Completed })
}

func (s *TaskService) Complete(ctx context.Context, id string) (*model.Task, error) {
	return s.update(ctx, id, func(t *model.Task) { t.Completed = true })
}

// IncrementPomodoro counts one finished pomodoro against the task.
func (s *TaskService) IncrementPomodoro(ctx context.Context, id string) (*model.Task, error) {
	return s.update(ctx, id, func(t *model.Task) { t.CompletedPomodoros++ })
}

// Delete removes a task. History records keep the task name they were logged with.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	kept := tasks[:0]
	found := false
	for _, t := range tasks {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err := s.repo.Save(ctx, kept); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// ClearCompleted removes every completed task and returns how many were removed.
func (s *TaskService) ClearCompleted(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	kept := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	removed := len(tasks) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.repo.Save(ctx, kept); err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return removed, nil
}

// Replace overwrites the task list; used by imports.
func (s *TaskService) Replace(ctx context.Context, tasks []model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Save(ctx, tasks)
}

func (s *TaskService) update(ctx context.Context, id string, fn func(*model.Task)) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		fn(&tasks[i])
		if err := s.repo.Save(ctx, tasks); err != nil {
			return nil, fmt.Errorf("update task: %w", err)
		}
		updated := tasks[i]
		return &updated, nil
	}
	return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
}
