package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	memstore "bilancio/internal/docstore/memory"
	"bilancio/internal/services"
	"bilancio/internal/storage"
)

func fixedClock(year, month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
	}
}

func newWorkerFixture(t *testing.T, clock func() time.Time) (*storage.Repository, *IngestWorker, *PeriodSweeper) {
	t.Helper()
	repo := storage.NewRepository(memstore.New())
	periods := services.NewPeriodService(repo).WithClock(clock)
	categories := services.NewCategoryService(repo).WithClock(clock)
	ingest := services.NewIngestService(repo, periods, categories).WithClock(clock)
	return repo, NewIngestWorker(ingest), NewPeriodSweeper(repo, periods)
}

func seedAccount(t *testing.T, repo *storage.Repository) {
	t.Helper()
	ctx := context.Background()
	if err := repo.SaveAccount(ctx, core.Account{ID: "a-1", UserID: "u-1"}); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	if err := repo.SaveCategories(ctx, []core.Category{
		{ID: "c-def", Name: "Uncategorized", IsDefault: true},
	}); err != nil {
		t.Fatalf("seed categories: %v", err)
	}
	record := core.PeriodRecord{Period: core.BudgetPeriod{
		ID: "p-1", UserID: "u-1", AccountID: "a-1",
		StartDate:  core.NewDate(2024, 12, 1),
		EndDate:    core.NewDate(2025, 1, 1),
		PeriodType: core.FixedDate,
		AnchorDate: core.NewDate(2024, 12, 1),
	}}
	if err := repo.SavePeriod(ctx, record); err != nil {
		t.Fatalf("seed period: %v", err)
	}
}

func TestHandleBatchMessage(t *testing.T) {
	ctx := context.Background()
	repo, worker, _ := newWorkerFixture(t, fixedClock(2024, 12, 20))
	seedAccount(t, repo)

	msg := amqp.NewTransactionBatchMessage("u-1", "a-1", []core.FeedTransaction{
		{ExternalID: "ext-1", Date: core.NewDate(2024, 12, 18), Amount: core.Money{Cents: -4550}},
	})
	if err := worker.HandleBatchMessage(ctx, msg); err != nil {
		t.Fatalf("HandleBatchMessage: %v", err)
	}

	record, err := repo.LoadPeriod(ctx, "p-1")
	if err != nil {
		t.Fatalf("load period: %v", err)
	}
	if record.Transactions.Len() != 1 {
		t.Errorf("transactions = %d, want 1", record.Transactions.Len())
	}

	// Redelivery of the same message is a no-op.
	if err := worker.HandleBatchMessage(ctx, msg); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	record, _ = repo.LoadPeriod(ctx, "p-1")
	if record.Transactions.Len() != 1 {
		t.Errorf("transactions after redelivery = %d, want 1", record.Transactions.Len())
	}
}

func TestHandleBatchMessageRejectsIncompleteMessage(t *testing.T) {
	_, worker, _ := newWorkerFixture(t, fixedClock(2024, 12, 20))

	msg := &amqp.TransactionBatchMessage{AccountID: "a-1"}
	if err := worker.HandleBatchMessage(context.Background(), msg); !errors.Is(err, core.ErrValidation) {
		t.Errorf("missing user id: got %v, want validation error", err)
	}
}

func TestSweepOnceRollsExpiredChains(t *testing.T) {
	ctx := context.Background()
	repo, _, sweeper := newWorkerFixture(t, fixedClock(2025, 1, 4))
	seedAccount(t, repo)

	if err := sweeper.SweepOnce(ctx); err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}

	records, err := repo.LoadPeriods(ctx, "u-1", "a-1")
	if err != nil {
		t.Fatalf("load periods: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("period count = %d, want 2", len(records))
	}

	// A second sweep finds an active chain and leaves it alone.
	if err := sweeper.SweepOnce(ctx); err != nil {
		t.Fatalf("second SweepOnce: %v", err)
	}
	records, _ = repo.LoadPeriods(ctx, "u-1", "a-1")
	if len(records) != 2 {
		t.Errorf("period count after second sweep = %d, want 2", len(records))
	}
}

func TestSweepOnceSkipsAccountsWithoutPeriods(t *testing.T) {
	ctx := context.Background()
	repo, _, sweeper := newWorkerFixture(t, fixedClock(2025, 1, 4))

	if err := repo.SaveAccount(ctx, core.Account{ID: "a-empty", UserID: "u-1"}); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	// Accounts that never ran setup are logged and skipped, not fatal.
	if err := sweeper.SweepOnce(ctx); err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
}
