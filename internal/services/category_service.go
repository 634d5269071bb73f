package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// CategoryService manages the category collection, which persists as a
// single document. Categories are archived, never deleted.
type CategoryService struct {
	repo *storage.Repository
	now  func() time.Time
}

func NewCategoryService(repo *storage.Repository) *CategoryService {
	return &CategoryService{repo: repo, now: time.Now}
}

// WithClock replaces the service clock for tests.
func (s *CategoryService) WithClock(now func() time.Time) *CategoryService {
	s.now = now
	return s
}

// List returns all categories, archived ones included; callers filter.
func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	return s.repo.LoadCategories(ctx)
}

// Create validates and appends a new category.
func (s *CategoryService) Create(ctx context.Context, userID, name string, monthlyLimit core.Money) (core.Category, error) {
	category := core.Category{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         name,
		MonthlyLimit: monthlyLimit,
		CreatedAt:    s.now().UTC(),
	}
	if err := category.Validate(); err != nil {
		return core.Category{}, err
	}

	categories, err := s.repo.LoadCategories(ctx)
	if err != nil {
		return core.Category{}, err
	}
	categories = append(categories, category)
	if err := s.repo.SaveCategories(ctx, categories); err != nil {
		return core.Category{}, err
	}

	slog.InfoContext(ctx, "Category created",
		"category_id", category.ID,
		"name", category.Name,
		"monthly_limit_cents", category.MonthlyLimit.Cents)

	return category, nil
}

// Update changes a category's name and monthly limit.
func (s *CategoryService) Update(ctx context.Context, categoryID, name string, monthlyLimit core.Money) (core.Category, error) {
	categories, err := s.repo.LoadCategories(ctx)
	if err != nil {
		return core.Category{}, err
	}

	for i := range categories {
		if categories[i].ID != categoryID {
			continue
		}
		updated := categories[i]
		updated.Name = name
		updated.MonthlyLimit = monthlyLimit
		if err := updated.Validate(); err != nil {
			return core.Category{}, err
		}
		categories[i] = updated
		if err := s.repo.SaveCategories(ctx, categories); err != nil {
			return core.Category{}, err
		}
		return updated, nil
	}
	return core.Category{}, fmt.Errorf("%w: category %s", core.ErrNotFound, categoryID)
}

// Archive marks a category as archived. The default catch-all category is
// protected: transactions must always have somewhere to land.
func (s *CategoryService) Archive(ctx context.Context, categoryID string) (core.Category, error) {
	categories, err := s.repo.LoadCategories(ctx)
	if err != nil {
		return core.Category{}, err
	}

	for i := range categories {
		if categories[i].ID != categoryID {
			continue
		}
		if categories[i].IsDefault {
			return core.Category{}, core.ErrDefaultNotArchivable
		}
		if categories[i].ArchivedAt != nil {
			return categories[i], nil // already archived, idempotent
		}
		archivedAt := s.now().UTC()
		categories[i].ArchivedAt = &archivedAt
		if err := s.repo.SaveCategories(ctx, categories); err != nil {
			return core.Category{}, err
		}
		slog.InfoContext(ctx, "Category archived", "category_id", categoryID)
		return categories[i], nil
	}
	return core.Category{}, fmt.Errorf("%w: category %s", core.ErrNotFound, categoryID)
}

// DefaultCategory returns the user's catch-all category.
func (s *CategoryService) DefaultCategory(ctx context.Context) (core.Category, error) {
	categories, err := s.repo.LoadCategories(ctx)
	if err != nil {
		return core.Category{}, err
	}
	for _, cat := range categories {
		if cat.IsDefault {
			return cat, nil
		}
	}
	return core.Category{}, fmt.Errorf("%w: default category", core.ErrNotFound)
}
