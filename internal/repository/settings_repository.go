package repository

import (
	"context"

	"pomotaro/internal/model"
)

// SettingsRepository persists the timer settings blob.
type SettingsRepository struct {
	store *BlobStore
}

func NewSettingsRepository(store *BlobStore) *SettingsRepository {
	return &SettingsRepository{store: store}
}

// Load returns stored settings with missing or invalid fields defaulted.
func (r *SettingsRepository) Load(ctx context.Context) (model.Settings, error) {
	s, err := loadJSON(ctx, r.store, KeySettings, model.DefaultSettings())
	if err != nil {
		return model.DefaultSettings(), err
	}
	return s.Normalized(), nil
}

func (r *SettingsRepository) Save(ctx context.Context, s model.Settings) error {
	return saveJSON(ctx, r.store, KeySettings, s)
}
