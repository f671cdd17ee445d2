package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pomotaro/internal/logfields"
	"pomotaro/internal/model"
)

// ErrNotFound is returned when a key is absent from the store.
var ErrNotFound = errors.New("not found")

// Keys of the JSON blobs kept in the store.
const (
	KeySettings   = "pomodoroSettings"
	KeyHistory    = "sessionHistory"
	KeyTasks      = "tasks"
	KeyCategories = "studyCategories"
)

// BlobStore is a string key/value store on top of a single SQLite table.
type BlobStore struct {
	db *gorm.DB
}

func NewBlobStore(db *gorm.DB) *BlobStore {
	return &BlobStore{db: db}
}

func (s *BlobStore) Get(ctx context.Context, key string) (string, error) {
	var blob model.Blob
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&blob).Error
	switch {
	case err == nil:
		return blob.Value, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", ErrNotFound
	default:
		return "", fmt.Errorf("get %s: %w", key, err)
	}
}

func (s *BlobStore) Put(ctx context.Context, key, value string) error {
	blob := model.Blob{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&blob).Error
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *BlobStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&model.Blob{}).Error; err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys in ascending order.
func (s *BlobStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.db.WithContext(ctx).Model(&model.Blob{}).Order("key ASC").Pluck("key", &keys).Error; err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return keys, nil
}

// loadJSON decodes the blob at key on top of def, so fields missing from the
// blob keep their defaults. A missing key or a corrupted blob yields def; only
// storage failures are returned as errors.
func loadJSON[T any](ctx context.Context, s *BlobStore, key string, def T) (T, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	out := def
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		slog.Warn("Discarding unreadable blob, using defaults", logfields.StoreKey(key), logfields.Error(err))
		return def, nil
	}
	return out, nil
}

func saveJSON[T any](ctx context.Context, s *BlobStore, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Put(ctx, key, string(raw))
}
