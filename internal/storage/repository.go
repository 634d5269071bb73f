// Package storage persists the ledger's entities as whole JSON documents
// through the docstore contract. Every write is a full document replace;
// failures surface as storage errors and are never retried here.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"bilancio/internal/core"
	"bilancio/internal/docstore"
)

type Repository struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// LoadUser returns the deployment's user, or NotFound before setup ran.
func (r *Repository) LoadUser(ctx context.Context) (core.User, error) {
	var user core.User
	if err := r.read(ctx, docstore.UserPath, &user); err != nil {
		return core.User{}, err
	}
	return user, nil
}

func (r *Repository) SaveUser(ctx context.Context, user core.User) error {
	return r.write(ctx, docstore.UserPath, user)
}

func (r *Repository) LoadAccount(ctx context.Context, accountID string) (core.Account, error) {
	var account core.Account
	if err := r.read(ctx, docstore.AccountPath(accountID), &account); err != nil {
		return core.Account{}, err
	}
	return account, nil
}

func (r *Repository) SaveAccount(ctx context.Context, account core.Account) error {
	return r.write(ctx, docstore.AccountPath(account.ID), account)
}

// ListAccounts returns all accounts, loading each document under the prefix.
func (r *Repository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	ids, err := r.store.List(ctx, docstore.AccountsPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: list accounts: %v", core.ErrStorage, err)
	}
	accounts := make([]core.Account, 0, len(ids))
	for _, id := range ids {
		account, err := r.LoadAccount(ctx, id)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// LoadCategories returns all categories. A missing document means setup has
// not run yet and comes back as an empty slice, not an error.
func (r *Repository) LoadCategories(ctx context.Context) ([]core.Category, error) {
	var categories []core.Category
	err := r.read(ctx, docstore.CategoriesPath, &categories)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *Repository) SaveCategories(ctx context.Context, categories []core.Category) error {
	return r.write(ctx, docstore.CategoriesPath, categories)
}

func (r *Repository) LoadPeriod(ctx context.Context, periodID string) (core.PeriodRecord, error) {
	var record core.PeriodRecord
	if err := r.read(ctx, docstore.PeriodPath(periodID), &record); err != nil {
		return core.PeriodRecord{}, err
	}
	return record, nil
}

func (r *Repository) SavePeriod(ctx context.Context, record core.PeriodRecord) error {
	return r.write(ctx, docstore.PeriodPath(record.Period.ID), record)
}

// LoadPeriods returns every period record for the account.
func (r *Repository) LoadPeriods(ctx context.Context, userID, accountID string) ([]core.PeriodRecord, error) {
	ids, err := r.store.List(ctx, docstore.PeriodsPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: list periods: %v", core.ErrStorage, err)
	}
	records := make([]core.PeriodRecord, 0, len(ids))
	for _, id := range ids {
		record, err := r.LoadPeriod(ctx, id)
		if err != nil {
			return nil, err
		}
		if record.Period.UserID != userID || record.Period.AccountID != accountID {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *Repository) read(ctx context.Context, path string, out any) error {
	data, err := r.store.Read(ctx, path)
	if errors.Is(err, docstore.ErrNotExist) {
		return fmt.Errorf("%w: %s", core.ErrNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", core.ErrStorage, path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", core.ErrStorage, path, err)
	}
	return nil
}

func (r *Repository) write(ctx context.Context, path string, in any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", core.ErrStorage, path, err)
	}
	if err := r.store.Write(ctx, path, data); err != nil {
		return fmt.Errorf("%w: write %s: %v", core.ErrStorage, path, err)
	}
	slog.DebugContext(ctx, "Document written", "path", path, "bytes", len(data))
	return nil
}
