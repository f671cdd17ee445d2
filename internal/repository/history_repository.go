package repository

import (
	"context"
	"fmt"
	"sync"

	"pomotaro/internal/model"
)

// HistoryRepository stores the append-only list of completed sessions.
type HistoryRepository struct {
	store *BlobStore
	mu    sync.Mutex
}

func NewHistoryRepository(store *BlobStore) *HistoryRepository {
	return &HistoryRepository{store: store}
}

// List returns every record in insertion order.
func (r *HistoryRepository) List(ctx context.Context) ([]model.SessionRecord, error) {
	return loadJSON(ctx, r.store, KeyHistory, []model.SessionRecord{})
}

// Append adds records to the end of the history.
func (r *HistoryRepository) Append(ctx context.Context, records ...model.SessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	history, err := r.List(ctx)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(history))
	for _, rec := range history {
		seen[rec.ID] = struct{}{}
	}
	for _, rec := range records {
		if _, dup := seen[rec.ID]; dup {
			return fmt.Errorf("append record %s: duplicate id", rec.ID)
		}
		seen[rec.ID] = struct{}{}
	}
	return saveJSON(ctx, r.store, KeyHistory, append(history, records...))
}

// Replace overwrites the whole history; used by imports.
func (r *HistoryRepository) Replace(ctx context.Context, records []model.SessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if records == nil {
		records = []model.SessionRecord{}
	}
	return saveJSON(ctx, r.store, KeyHistory, records)
}

func (r *HistoryRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Delete(ctx, KeyHistory)
}
