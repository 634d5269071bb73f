package services

import (
	"context"
	"errors"
	"testing"

	"bilancio/internal/core"
	memstore "bilancio/internal/docstore/memory"
	"bilancio/internal/storage"
)

func newCategoryFixture(t *testing.T) (*storage.Repository, *CategoryService) {
	t.Helper()
	repo := storage.NewRepository(memstore.New())
	return repo, NewCategoryService(repo).WithClock(fixedClock(2024, 12, 20))
}

func TestCategoryCreateAndList(t *testing.T) {
	ctx := context.Background()
	_, svc := newCategoryFixture(t)

	created, err := svc.Create(ctx, "u-1", "Groceries", core.Money{Cents: 30000})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated id")
	}

	categories, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(categories) != 1 || categories[0].Name != "Groceries" {
		t.Errorf("categories = %+v", categories)
	}
}

func TestCategoryCreateValidation(t *testing.T) {
	ctx := context.Background()
	_, svc := newCategoryFixture(t)

	tests := []struct {
		name    string
		catName string
		limit   int64
		wantErr error
	}{
		{"empty name", "", 100, core.ErrEmptyCategoryName},
		{"whitespace name", "   ", 100, core.ErrEmptyCategoryName},
		{"negative limit", "Rent", -1, core.ErrInvalidLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "u-1", tt.catName, core.Money{Cents: tt.limit})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create: got %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, core.ErrValidation) {
				t.Errorf("error %v should wrap ErrValidation", err)
			}
		})
	}
}

func TestCategoryUpdate(t *testing.T) {
	ctx := context.Background()
	_, svc := newCategoryFixture(t)

	created, err := svc.Create(ctx, "u-1", "Groceries", core.Money{Cents: 30000})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, "Food", core.Money{Cents: 45000})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Food" || updated.MonthlyLimit.Cents != 45000 {
		t.Errorf("updated = %+v", updated)
	}

	if _, err := svc.Update(ctx, "missing", "X", core.Money{}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Update missing: got %v, want ErrNotFound", err)
	}
}

func TestCategoryArchive(t *testing.T) {
	ctx := context.Background()
	repo, svc := newCategoryFixture(t)

	if err := repo.SaveCategories(ctx, []core.Category{
		{ID: "c-def", Name: "Uncategorized", IsDefault: true},
		{ID: "c-1", Name: "Groceries"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	archived, err := svc.Archive(ctx, "c-1")
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if archived.ArchivedAt == nil {
		t.Fatal("expected ArchivedAt to be set")
	}

	// Archiving again keeps the original timestamp.
	again, err := svc.Archive(ctx, "c-1")
	if err != nil {
		t.Fatalf("second Archive: %v", err)
	}
	if !again.ArchivedAt.Equal(*archived.ArchivedAt) {
		t.Error("second archive changed the timestamp")
	}

	if _, err := svc.Archive(ctx, "c-def"); !errors.Is(err, core.ErrDefaultNotArchivable) {
		t.Errorf("archive default: got %v, want ErrDefaultNotArchivable", err)
	}
	if _, err := svc.Archive(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("archive missing: got %v, want ErrNotFound", err)
	}
}

func TestDefaultCategory(t *testing.T) {
	ctx := context.Background()
	repo, svc := newCategoryFixture(t)

	if _, err := svc.DefaultCategory(ctx); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("empty store: got %v, want ErrNotFound", err)
	}

	if err := repo.SaveCategories(ctx, []core.Category{
		{ID: "c-1", Name: "Groceries"},
		{ID: "c-def", Name: "Uncategorized", IsDefault: true},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	def, err := svc.DefaultCategory(ctx)
	if err != nil {
		t.Fatalf("DefaultCategory: %v", err)
	}
	if def.ID != "c-def" {
		t.Errorf("default = %s", def.ID)
	}
}
