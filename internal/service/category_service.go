package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pomotaro/internal/model"
	"pomotaro/internal/repository"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// palette is cycled through when a category is created without a color.
var palette = []string{"#e74c3c", "#3498db", "#2ecc71", "#f1c40f", "#9b59b6", "#e67e22", "#1abc9c"}

// CategoryInput represents data required to create or update a category.
type CategoryInput struct {
	Name  string
	Color string
	Icon  string
}

// CategoryService provides helpers around categories.
type CategoryService struct {
	repo *repository.CategoryRepository
	now  func() time.Time
	mu   sync.Mutex
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo, now: time.Now}
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.repo.List(ctx)
}

func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if input.Color == "" {
		input.Color = palette[len(categories)%len(palette)]
	}
	name, err := validateCategory(input, categories, "")
	if err != nil {
		return nil, err
	}
	c := model.Category{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     strings.ToLower(input.Color),
		Icon:      strings.TrimSpace(input.Icon),
		CreatedAt: s.now(),
	}
	if err := s.repo.Save(ctx, append(categories, c)); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &c, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*model.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i], nil
		}
	}
	return nil, fmt.Errorf("category %s: %w", id, ErrNotFound)
}

// Resolve finds a category by 1-based position, id, id prefix or name.
func (s *CategoryService) Resolve(ctx context.Context, ref string) (*model.Category, error) {
	ref = strings.TrimSpace(ref)
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(categories) {
			return nil, fmt.Errorf("category #%d: %w", n, ErrNotFound)
		}
		return &categories[n-1], nil
	}
	for i := range categories {
		if categories[i].ID == ref || strings.EqualFold(categories[i].Name, ref) {
			return &categories[i], nil
		}
	}
	var match *model.Category
	for i := range categories {
		if ref != "" && strings.HasPrefix(categories[i].ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("%w: category id prefix %q is ambiguous", ErrInvalidInput, ref)
			}
			match = &categories[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("category %s: %w", ref, ErrNotFound)
	}
	return match, nil
}

// Update replaces name, color and icon. Empty color keeps the current one.
func (s *CategoryService) Update(ctx context.Context, id string, input CategoryInput) (*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].ID != id {
			continue
		}
		if input.Color == "" {
			input.Color = categories[i].Color
		}
		name, err := validateCategory(input, categories, id)
		if err != nil {
			return nil, err
		}
		categories[i].Name = name
		categories[i].Color = strings.ToLower(input.Color)
		categories[i].Icon = strings.TrimSpace(input.Icon)
		if err := s.repo.Save(ctx, categories); err != nil {
			return nil, fmt.Errorf("update category: %w", err)
		}
		updated := categories[i]
		return &updated, nil
	}
	return nil, fmt.Errorf("category %s: %w", id, ErrNotFound)
}

// Delete removes a category. Recorded sessions keep their category name.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	kept := make([]model.Category, 0, len(categories))
	for _, c := range categories {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(categories) {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	if err := s.repo.Save(ctx, kept); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// Replace overwrites the category list; used by imports.
func (s *CategoryService) Replace(ctx context.Context, categories []model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Save(ctx, categories)
}

func validateCategory(input CategoryInput, existing []model.Category, selfID string) (string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len([]rune(name)) > 40 {
		return "", fmt.Errorf("%w: name is longer than 40 characters", ErrInvalidInput)
	}
	if !colorPattern.MatchString(input.Color) {
		return "", fmt.Errorf("%w: color %q must look like #RRGGBB", ErrInvalidInput, input.Color)
	}
	for _, c := range existing {
		if c.ID != selfID && strings.EqualFold(c.Name, name) {
			return "", fmt.Errorf("%w: category %q already exists", ErrInvalidInput, name)
		}
	}
	return name, nil
}
