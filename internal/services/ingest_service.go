package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// IngestService turns normalized feed records into period transactions.
// The feed is the only writer of new transactions; it never touches
// existing ones, which is what keeps manual overrides stable.
type IngestService struct {
	repo       *storage.Repository
	periods    *PeriodService
	categories *CategoryService
	now        func() time.Time
}

func NewIngestService(repo *storage.Repository, periods *PeriodService, categories *CategoryService) *IngestService {
	return &IngestService{
		repo:       repo,
		periods:    periods,
		categories: categories,
		now:        time.Now,
	}
}

// WithClock replaces the service clock for tests.
func (s *IngestService) WithClock(now func() time.Time) *IngestService {
	s.now = now
	return s
}

// ImportBatch merges a batch of feed transactions into the account's active
// period, creating the next period first if the current one has run out.
// Returns how many transactions were actually added after deduplication.
func (s *IngestService) ImportBatch(ctx context.Context, userID, accountID string, batch []core.FeedTransaction) (int, error) {
	for _, feed := range batch {
		if err := feed.Validate(); err != nil {
			return 0, err
		}
	}

	account, err := s.repo.LoadAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}

	record, err := s.periods.RollForward(ctx, userID, account.ID)
	if err != nil {
		return 0, err
	}

	defaultCategory, err := s.categories.DefaultCategory(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now().UTC()
	incoming := make([]core.Transaction, 0, len(batch))
	for _, feed := range batch {
		incoming = append(incoming, core.Transaction{
			ID:           uuid.NewString(),
			ExternalID:   feed.ExternalID,
			AccountID:    accountID,
			UserID:       userID,
			PeriodID:     record.Period.ID,
			Date:         feed.Date,
			Amount:       feed.Amount,
			MerchantName: feed.MerchantName,
			Description:  feed.Description,
			CategoryID:   defaultCategory.ID,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	merged, added, err := MergeTransactions(record.Transactions, incoming)
	if err != nil {
		return 0, err
	}
	if added > 0 {
		record.Transactions = merged
		if err := s.repo.SavePeriod(ctx, *record); err != nil {
			return 0, err
		}
	}

	slog.InfoContext(ctx, "Transaction batch imported",
		"account_id", accountID,
		"period_id", record.Period.ID,
		"batch_size", len(batch),
		"added", added,
		"duplicates", len(batch)-added)

	return added, nil
}
