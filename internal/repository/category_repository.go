package repository

import (
	"context"

	"pomotaro/internal/model"
)

// CategoryRepository persists study categories as one blob.
type CategoryRepository struct {
	store *BlobStore
}

func NewCategoryRepository(store *BlobStore) *CategoryRepository {
	return &CategoryRepository{store: store}
}

func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	return loadJSON(ctx, r.store, KeyCategories, []model.Category{})
}

func (r *CategoryRepository) Save(ctx context.Context, categories []model.Category) error {
	if categories == nil {
		categories = []model.Category{}
	}
	return saveJSON(ctx, r.store, KeyCategories, categories)
}
