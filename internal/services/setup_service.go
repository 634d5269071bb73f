package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// SetupParams describes the deployment being bootstrapped.
type SetupParams struct {
	BankName        string
	AccountName     string
	Currency        string
	PeriodType      core.PeriodType
	AnchorDate      core.Date
	StartingBalance core.Money
	DefaultCategory string
}

// SetupResult reports what Bootstrap found or created.
type SetupResult struct {
	User     core.User
	Account  core.Account
	Default  core.Category
	PeriodID string
}

// SetupService bootstraps a deployment: user, account, default category,
// and the first active period. Every step is find-or-create, so running it
// again is a no-op.
type SetupService struct {
	repo    *storage.Repository
	periods *PeriodService
	now     func() time.Time
}

func NewSetupService(repo *storage.Repository, periods *PeriodService) *SetupService {
	return &SetupService{repo: repo, periods: periods, now: time.Now}
}

// WithClock replaces the service clock for tests.
func (s *SetupService) WithClock(now func() time.Time) *SetupService {
	s.now = now
	return s
}

// Bootstrap is idempotent: a second run never creates a second user,
// account, default category, or active period.
func (s *SetupService) Bootstrap(ctx context.Context, params SetupParams) (SetupResult, error) {
	if !params.PeriodType.IsValid() {
		return SetupResult{}, core.ErrUnknownPeriodType
	}
	if params.AnchorDate.IsZero() {
		return SetupResult{}, core.ErrInvalidDate
	}

	user, err := s.ensureUser(ctx)
	if err != nil {
		return SetupResult{}, err
	}
	account, err := s.ensureAccount(ctx, user.ID, params)
	if err != nil {
		return SetupResult{}, err
	}
	defaultCategory, err := s.ensureDefaultCategory(ctx, user.ID, params.DefaultCategory)
	if err != nil {
		return SetupResult{}, err
	}

	record, err := s.periods.EnsureActive(ctx, user.ID, account.ID,
		params.PeriodType, params.AnchorDate, params.StartingBalance)
	if err != nil {
		return SetupResult{}, err
	}

	return SetupResult{
		User:     user,
		Account:  account,
		Default:  defaultCategory,
		PeriodID: record.Period.ID,
	}, nil
}

func (s *SetupService) ensureUser(ctx context.Context) (core.User, error) {
	user, err := s.repo.LoadUser(ctx)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.User{}, err
	}

	user = core.User{ID: uuid.NewString(), CreatedAt: s.now().UTC()}
	if err := s.repo.SaveUser(ctx, user); err != nil {
		return core.User{}, err
	}
	slog.InfoContext(ctx, "User created", "user_id", user.ID)
	return user, nil
}

func (s *SetupService) ensureAccount(ctx context.Context, userID string, params SetupParams) (core.Account, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return core.Account{}, err
	}
	for _, account := range accounts {
		if account.UserID == userID {
			return account, nil
		}
	}

	account := core.Account{
		ID:          uuid.NewString(),
		UserID:      userID,
		BankName:    params.BankName,
		AccountName: params.AccountName,
		Currency:    params.Currency,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.SaveAccount(ctx, account); err != nil {
		return core.Account{}, err
	}
	slog.InfoContext(ctx, "Account created",
		"account_id", account.ID,
		"bank_name", account.BankName)
	return account, nil
}

func (s *SetupService) ensureDefaultCategory(ctx context.Context, userID, name string) (core.Category, error) {
	categories, err := s.repo.LoadCategories(ctx)
	if err != nil {
		return core.Category{}, err
	}
	for _, cat := range categories {
		if cat.IsDefault {
			return cat, nil
		}
	}

	if name == "" {
		name = "Uncategorized"
	}
	defaultCategory := core.Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		IsDefault: true,
		CreatedAt: s.now().UTC(),
	}
	categories = append(categories, defaultCategory)
	if err := s.repo.SaveCategories(ctx, categories); err != nil {
		return core.Category{}, err
	}
	slog.InfoContext(ctx, "Default category created",
		"category_id", defaultCategory.ID,
		"name", defaultCategory.Name)
	return defaultCategory, nil
}
