package repository

import (
	"context"

	"pomotaro/internal/model"
)

// TaskRepository persists the task list as one blob.
type TaskRepository struct {
	store *BlobStore
}

func NewTaskRepository(store *BlobStore) *TaskRepository {
	return &TaskRepository{store: store}
}

func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	return loadJSON(ctx, r.store, KeyTasks, []model.Task{})
}

func (r *TaskRepository) Save(ctx context.Context, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	return saveJSON(ctx, r.store, KeyTasks, tasks)
}
