package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"pomotaro/internal/backup"
	"pomotaro/internal/model"
	"pomotaro/internal/repository"
)

// ImportResult summarizes what an import changed.
type ImportResult struct {
	HistoryAdded int
	Tasks        int
	Categories   int
}

// DataService exports and imports the whole local data set.
type DataService struct {
	history    *repository.HistoryRepository
	tasks      *TaskService
	categories *CategoryService
	settings   *SettingsService
	now        func() time.Time
}

func NewDataService(history *repository.HistoryRepository, tasks *TaskService, categories *CategoryService, settings *SettingsService) *DataService {
	return &DataService{history: history, tasks: tasks, categories: categories, settings: settings, now: time.Now}
}

// Snapshot collects every stored list into a backup document.
func (s *DataService) Snapshot(ctx context.Context) (backup.Document, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return backup.Document{}, err
	}
	history, err := s.history.List(ctx)
	if err != nil {
		return backup.Document{}, err
	}
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return backup.Document{}, err
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return backup.Document{}, err
	}
	return backup.Document{
		Version:    backup.Version,
		ExportedAt: s.now().UTC(),
		Settings:   settings,
		History:    history,
		Tasks:      tasks,
		Categories: categories,
	}, nil
}

func (s *DataService) Export(ctx context.Context, w io.Writer, f backup.Format) error {
	doc, err := s.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return backup.Encode(w, doc, f)
}

// Import merges history by id and replaces settings, tasks and categories.
// The whole document is validated before anything is written.
func (s *DataService) Import(ctx context.Context, r io.Reader, f backup.Format) (ImportResult, error) {
	doc, err := backup.Decode(r, f)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	settings := doc.Settings.Normalized()
	if err := settings.Validate(); err != nil {
		return ImportResult{}, fmt.Errorf("%w: settings: %v", ErrInvalidInput, err)
	}
	tasks, err := importedTasks(doc.Tasks)
	if err != nil {
		return ImportResult{}, err
	}
	categories, err := importedCategories(doc.Categories)
	if err != nil {
		return ImportResult{}, err
	}

	existing, err := s.history.List(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	merged, added := backup.MergeHistory(existing, doc.History)
	if err := s.history.Replace(ctx, merged); err != nil {
		return ImportResult{}, fmt.Errorf("import history: %w", err)
	}
	if err := s.tasks.Replace(ctx, tasks); err != nil {
		return ImportResult{}, fmt.Errorf("import tasks: %w", err)
	}
	if err := s.categories.Replace(ctx, categories); err != nil {
		return ImportResult{}, fmt.Errorf("import categories: %w", err)
	}
	if _, err := s.settings.Update(ctx, func(st *model.Settings) { *st = settings }); err != nil {
		return ImportResult{}, fmt.Errorf("import settings: %w", err)
	}
	return ImportResult{HistoryAdded: added, Tasks: len(tasks), Categories: len(categories)}, nil
}

// importedTasks applies the rules TaskService.Create enforces.
func importedTasks(in []model.Task) ([]model.Task, error) {
	out := make([]model.Task, 0, len(in))
	for i, t := range in {
		t.Title = strings.TrimSpace(t.Title)
		switch {
		case t.Title == "":
			return nil, fmt.Errorf("%w: tasks[%d]: title is required", ErrInvalidInput, i)
		case t.EstimatedPomodoros < 0 || t.EstimatedPomodoros > 99:
			return nil, fmt.Errorf("%w: tasks[%d]: estimate must be between 0 and 99", ErrInvalidInput, i)
		case t.CompletedPomodoros < 0:
			return nil, fmt.Errorf("%w: tasks[%d]: negative pomodoro count", ErrInvalidInput, i)
		}
		out = append(out, t)
	}
	return out, nil
}

// importedCategories applies the rules CategoryService.Create enforces.
func importedCategories(in []model.Category) ([]model.Category, error) {
	out := make([]model.Category, 0, len(in))
	for i, c := range in {
		if c.Color == "" {
			c.Color = palette[i%len(palette)]
		}
		name, err := validateCategory(CategoryInput{Name: c.Name, Color: c.Color, Icon: c.Icon}, out, c.ID)
		if err != nil {
			return nil, fmt.Errorf("categories[%d]: %w", i, err)
		}
		c.Name = name
		c.Color = strings.ToLower(c.Color)
		c.Icon = strings.TrimSpace(c.Icon)
		out = append(out, c)
	}
	return out, nil
}
