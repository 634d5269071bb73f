package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// PeriodService owns the period lifecycle. All date decisions flow through
// the explicit PeriodState so "is this period still writable" lives in one
// place.
type PeriodService struct {
	repo *storage.Repository
	now  func() time.Time
}

func NewPeriodService(repo *storage.Repository) *PeriodService {
	return &PeriodService{repo: repo, now: time.Now}
}

// WithClock replaces the service clock. Tests pin it to a fixed date.
func (s *PeriodService) WithClock(now func() time.Time) *PeriodService {
	s.now = now
	return s
}

func (s *PeriodService) today() core.Date {
	return core.DateOf(s.now())
}

// Current resolves the lifecycle state for an account: the record whose
// interval contains today (active), the most recently expired record
// (historical), or no period at all.
func (s *PeriodService) Current(ctx context.Context, userID, accountID string) (core.PeriodState, error) {
	records, err := s.repo.LoadPeriods(ctx, userID, accountID)
	if err != nil {
		return core.PeriodState{}, err
	}

	today := s.today()
	var latestExpired *core.PeriodRecord
	for i := range records {
		record := &records[i]
		if record.Period.Contains(today) {
			return core.ActiveState(record), nil
		}
		if record.Period.Expired(today) {
			if latestExpired == nil || record.Period.EndDate.Time.After(latestExpired.Period.EndDate.Time) {
				latestExpired = record
			}
		}
	}
	if latestExpired != nil {
		return core.HistoricalState(latestExpired), nil
	}
	return core.NoPeriodState(), nil
}

// ShouldCreateNext reports whether a new period is due: no period exists, or
// the latest one has run out.
func (s *PeriodService) ShouldCreateNext(ctx context.Context, userID, accountID string) (bool, error) {
	state, err := s.Current(ctx, userID, accountID)
	if err != nil {
		return false, err
	}
	return state.Kind != core.StateActive, nil
}

// CreateNext persists a new period record with an empty transaction set.
// When an expired period exists the new one starts exactly where it ended,
// keeping the chain contiguous; the expired record itself is not touched.
func (s *PeriodService) CreateNext(ctx context.Context, userID, accountID string, periodType core.PeriodType, anchor core.Date, currentBalance core.Money) (core.BudgetPeriod, error) {
	state, err := s.Current(ctx, userID, accountID)
	if err != nil {
		return core.BudgetPeriod{}, err
	}
	if state.Kind == core.StateActive {
		return core.BudgetPeriod{}, fmt.Errorf("%w: account %s already has an active period", core.ErrValidation, accountID)
	}

	var start, end core.Date
	if state.Kind == core.StateHistorical {
		start = state.Record.Period.EndDate
		end, err = NextBoundary(start, periodType, anchor)
	} else {
		start, end, err = ComputeBounds(s.today(), periodType, anchor)
	}
	if err != nil {
		return core.BudgetPeriod{}, err
	}

	period := core.BudgetPeriod{
		ID:              uuid.NewString(),
		UserID:          userID,
		AccountID:       accountID,
		StartDate:       start,
		EndDate:         end,
		StartingBalance: currentBalance,
		PeriodType:      periodType,
		AnchorDate:      anchor,
		CreatedAt:       s.now().UTC(),
	}
	record := core.PeriodRecord{Period: period}
	if err := s.repo.SavePeriod(ctx, record); err != nil {
		return core.BudgetPeriod{}, err
	}

	slog.InfoContext(ctx, "Created budget period",
		"period_id", period.ID,
		"account_id", accountID,
		"start_date", start.String(),
		"end_date", end.String(),
		"period_type", string(periodType))

	return period, nil
}

// EnsureActive creates successor periods until one contains today. Catches
// up after downtime spanning several recurrence intervals.
func (s *PeriodService) EnsureActive(ctx context.Context, userID, accountID string, periodType core.PeriodType, anchor core.Date, currentBalance core.Money) (*core.PeriodRecord, error) {
	// Each iteration advances at least one month; a year's worth of
	// catch-up is already an operational anomaly worth failing loudly on.
	const maxCatchUp = 120
	for i := 0; i < maxCatchUp; i++ {
		state, err := s.Current(ctx, userID, accountID)
		if err != nil {
			return nil, err
		}
		if state.Kind == core.StateActive {
			return state.Record, nil
		}
		if _, err := s.CreateNext(ctx, userID, accountID, periodType, anchor, currentBalance); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: period chain for account %s did not reach today", core.ErrValidation, accountID)
}

// RollForward advances an account's period chain until a period contains
// today, reusing the latest period's recurrence policy. The new starting
// balance is the old one plus everything that moved through the old period.
// NotFound when the account has no periods at all; setup creates the first.
func (s *PeriodService) RollForward(ctx context.Context, userID, accountID string) (*core.PeriodRecord, error) {
	state, err := s.Current(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	switch state.Kind {
	case core.StateActive:
		return state.Record, nil
	case core.StateNoPeriod:
		return nil, fmt.Errorf("%w: no periods for account %s", core.ErrNotFound, accountID)
	}

	p := state.Record.Period
	balance := p.StartingBalance.Cents
	for _, tx := range state.Record.Transactions.All() {
		balance += tx.Amount.Cents
	}
	return s.EnsureActive(ctx, userID, accountID, p.PeriodType, p.AnchorDate, core.Money{Cents: balance})
}

// ActiveSummaries returns the active period together with its per-category
// spend projections. NotFound when no period covers today.
func (s *PeriodService) ActiveSummaries(ctx context.Context, userID, accountID string) (core.PeriodRecord, []core.CategorySummary, error) {
	state, err := s.Current(ctx, userID, accountID)
	if err != nil {
		return core.PeriodRecord{}, nil, err
	}
	if state.Kind != core.StateActive {
		return core.PeriodRecord{}, nil, fmt.Errorf("%w: no active period for account %s", core.ErrNotFound, accountID)
	}

	categories, err := s.repo.LoadCategories(ctx)
	if err != nil {
		return core.PeriodRecord{}, nil, err
	}
	active := make([]core.Category, 0, len(categories))
	for _, cat := range categories {
		if cat.ArchivedAt == nil {
			active = append(active, cat)
		}
	}

	return *state.Record, SummarizeCategories(*state.Record, active), nil
}

// ListTransactions returns the active period's transactions sorted by date,
// newest first.
func (s *PeriodService) ListTransactions(ctx context.Context, userID, accountID string) ([]core.Transaction, error) {
	state, err := s.Current(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	if state.Kind != core.StateActive {
		return nil, fmt.Errorf("%w: no active period for account %s", core.ErrNotFound, accountID)
	}

	txs := state.Record.Transactions.All()
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[j].Date.Before(txs[i].Date)
	})
	return txs, nil
}

// RecategorizeTransaction applies a manual category override inside the
// active period and persists the whole record.
func (s *PeriodService) RecategorizeTransaction(ctx context.Context, userID, accountID, transactionID, categoryID string) (core.Transaction, error) {
	state, err := s.Current(ctx, userID, accountID)
	if err != nil {
		return core.Transaction{}, err
	}
	if !state.Writable() {
		return core.Transaction{}, fmt.Errorf("%w: no active period for account %s", core.ErrNotFound, accountID)
	}

	categories, err := s.repo.LoadCategories(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	if !categoryExists(categories, categoryID) {
		return core.Transaction{}, fmt.Errorf("%w: category %s", core.ErrNotFound, categoryID)
	}

	updated, err := Recategorize(state.Record, transactionID, categoryID, s.now().UTC())
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.repo.SavePeriod(ctx, *state.Record); err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction recategorized",
		"transaction_id", transactionID,
		"category_id", categoryID,
		"period_id", state.Record.Period.ID)

	return updated, nil
}

func categoryExists(categories []core.Category, id string) bool {
	for _, cat := range categories {
		if cat.ID == id {
			return true
		}
	}
	return false
}
