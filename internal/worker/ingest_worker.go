// Package worker runs the feed side of the system: consuming transaction
// batches from the queue and keeping period chains rolled forward.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/services"
	"bilancio/internal/storage"
)

// BatchImporter is the slice of the ingest service the worker needs.
type BatchImporter interface {
	ImportBatch(ctx context.Context, userID, accountID string, batch []core.FeedTransaction) (int, error)
}

// IngestWorker handles transaction batch messages from the bank feed queue.
type IngestWorker struct {
	importer BatchImporter
}

func NewIngestWorker(importer BatchImporter) *IngestWorker {
	return &IngestWorker{importer: importer}
}

// HandleBatchMessage imports one feed batch. Returning an error requeues the
// delivery; the ingest path is idempotent, so redelivery after a partial
// failure cannot double-book transactions.
func (w *IngestWorker) HandleBatchMessage(ctx context.Context, msg *amqp.TransactionBatchMessage) error {
	if msg.UserID == "" || msg.AccountID == "" {
		return fmt.Errorf("%w: batch message missing user or account id", core.ErrValidation)
	}

	added, err := w.importer.ImportBatch(ctx, msg.UserID, msg.AccountID, msg.Transactions)
	if err != nil {
		return fmt.Errorf("import batch for account %s: %w", msg.AccountID, err)
	}

	slog.InfoContext(ctx, "Batch message handled",
		"account_id", msg.AccountID,
		"batch_size", len(msg.Transactions),
		"added", added)

	return nil
}

// PeriodSweeper rolls expired period chains forward on a schedule, so a new
// period appears on its start date even when the feed is quiet.
type PeriodSweeper struct {
	repo    *storage.Repository
	periods *services.PeriodService
}

func NewPeriodSweeper(repo *storage.Repository, periods *services.PeriodService) *PeriodSweeper {
	return &PeriodSweeper{repo: repo, periods: periods}
}

// SweepOnce checks every account and advances any expired chain.
func (s *PeriodSweeper) SweepOnce(ctx context.Context) error {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	for _, account := range accounts {
		due, err := s.periods.ShouldCreateNext(ctx, account.UserID, account.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to check period state",
				"account_id", account.ID,
				"error", err)
			continue
		}
		if !due {
			continue
		}

		record, err := s.periods.RollForward(ctx, account.UserID, account.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to roll period forward",
				"account_id", account.ID,
				"error", err)
			continue
		}
		slog.InfoContext(ctx, "Rolled period forward",
			"account_id", account.ID,
			"period_id", record.Period.ID,
			"start_date", record.Period.StartDate.String(),
			"end_date", record.Period.EndDate.String())
	}

	return nil
}

// Run sweeps immediately and then on every tick until the context ends.
func (s *PeriodSweeper) Run(ctx context.Context, interval time.Duration) error {
	if err := s.SweepOnce(ctx); err != nil {
		slog.ErrorContext(ctx, "Initial period sweep failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "Period sweep failed", "error", err)
			}
		}
	}
}
