package service

import (
	"context"
	"fmt"
	"sync"

	"pomotaro/internal/model"
	"pomotaro/internal/repository"
)

// SettingsService reads and updates timer settings and tells subscribers about changes.
type SettingsService struct {
	repo      *repository.SettingsRepository
	mu        sync.Mutex
	listeners []func(model.Settings)
}

func NewSettingsService(repo *repository.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

func (s *SettingsService) Get(ctx context.Context) (model.Settings, error) {
	return s.repo.Load(ctx)
}

// Update applies fn to the current settings, validates and persists the result.
func (s *SettingsService) Update(ctx context.Context, fn func(*model.Settings)) (model.Settings, error) {
	s.mu.Lock()
	current, err := s.repo.Load(ctx)
	if err != nil {
		s.mu.Unlock()
		return model.Settings{}, err
	}
	fn(&current)
	if err := current.Validate(); err != nil {
		s.mu.Unlock()
		return model.Settings{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.repo.Save(ctx, current); err != nil {
		s.mu.Unlock()
		return model.Settings{}, err
	}
	listeners := append([]func(model.Settings){}, s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(current)
	}
	return current, nil
}

// Reset restores the default settings.
func (s *SettingsService) Reset(ctx context.Context) (model.Settings, error) {
	return s.Update(ctx, func(st *model.Settings) { *st = model.DefaultSettings() })
}

// Subscribe registers fn to be called after every successful update.
func (s *SettingsService) Subscribe(fn func(model.Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
