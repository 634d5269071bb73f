package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"bilancio/internal/core"
	memstore "bilancio/internal/docstore/memory"
)

func newTestRepo() *Repository {
	return NewRepository(memstore.New())
}

func TestUserRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	if _, err := repo.LoadUser(ctx); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("missing user: got %v, want ErrNotFound", err)
	}

	user := core.User{ID: "u-1", CreatedAt: time.Now().UTC()}
	if err := repo.SaveUser(ctx, user); err != nil {
		t.Fatalf("save user: %v", err)
	}
	loaded, err := repo.LoadUser(ctx)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if loaded.ID != "u-1" {
		t.Errorf("loaded user id = %q", loaded.ID)
	}
}

func TestCategoriesRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	// Missing document is an empty collection, not an error.
	cats, err := repo.LoadCategories(ctx)
	if err != nil {
		t.Fatalf("load empty categories: %v", err)
	}
	if len(cats) != 0 {
		t.Fatalf("expected no categories, got %d", len(cats))
	}

	saved := []core.Category{
		{ID: "c-1", UserID: "u-1", Name: "Uncategorized", IsDefault: true},
		{ID: "c-2", UserID: "u-1", Name: "Groceries", MonthlyLimit: core.Money{Cents: 30000}},
	}
	if err := repo.SaveCategories(ctx, saved); err != nil {
		t.Fatalf("save categories: %v", err)
	}
	cats, err = repo.LoadCategories(ctx)
	if err != nil {
		t.Fatalf("load categories: %v", err)
	}
	if len(cats) != 2 || cats[1].MonthlyLimit.Cents != 30000 {
		t.Errorf("categories round trip mismatch: %+v", cats)
	}
}

func TestPeriodsRoundTripAndFiltering(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	mine := core.PeriodRecord{Period: core.BudgetPeriod{
		ID: "p-1", UserID: "u-1", AccountID: "a-1",
		StartDate: core.NewDate(2024, 12, 1), EndDate: core.NewDate(2025, 1, 1),
		PeriodType: core.FixedDate,
	}}
	other := core.PeriodRecord{Period: core.BudgetPeriod{
		ID: "p-2", UserID: "u-1", AccountID: "a-other",
		StartDate: core.NewDate(2024, 12, 1), EndDate: core.NewDate(2025, 1, 1),
		PeriodType: core.FixedDate,
	}}
	if err := repo.SavePeriod(ctx, mine); err != nil {
		t.Fatalf("save period: %v", err)
	}
	if err := repo.SavePeriod(ctx, other); err != nil {
		t.Fatalf("save period: %v", err)
	}

	records, err := repo.LoadPeriods(ctx, "u-1", "a-1")
	if err != nil {
		t.Fatalf("load periods: %v", err)
	}
	if len(records) != 1 || records[0].Period.ID != "p-1" {
		t.Errorf("account filtering failed: %+v", records)
	}

	if _, err := repo.LoadPeriod(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing period: got %v, want ErrNotFound", err)
	}
}

func TestPeriodTransactionsSurviveRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	record := core.PeriodRecord{Period: core.BudgetPeriod{
		ID: "p-1", UserID: "u-1", AccountID: "a-1",
		StartDate: core.NewDate(2024, 12, 1), EndDate: core.NewDate(2025, 1, 1),
	}}
	record.Transactions.Append(core.Transaction{
		ID: "t-1", ExternalID: "e-1", PeriodID: "p-1",
		Date: core.NewDate(2024, 12, 5), Amount: core.Money{Cents: -4550},
	})

	if err := repo.SavePeriod(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := repo.LoadPeriod(ctx, "p-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tx, ok := loaded.Transactions.Get("t-1")
	if !ok || tx.ExternalID != "e-1" || tx.Amount.Cents != -4550 {
		t.Errorf("transaction lost in round trip: %+v ok=%v", tx, ok)
	}
}
