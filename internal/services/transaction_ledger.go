package services

import (
	"fmt"
	"time"

	"bilancio/internal/core"
)

// MergeTransactions merges newly ingested transactions into a period's
// existing set, de-duplicating by external id. Existing records and their
// categories are never touched, so manual overrides survive any number of
// re-imports. Surviving incoming transactions are appended in
// order. Re-running the same batch is idempotent: added is 0 the second
// time.
func MergeTransactions(existing core.TransactionSet, incoming []core.Transaction) (core.TransactionSet, int, error) {
	merged := core.NewTransactionSet(existing.All())
	seen := merged.ExternalIDs()

	added := 0
	for _, tx := range incoming {
		if _, dup := seen[tx.ExternalID]; dup {
			continue
		}
		seen[tx.ExternalID] = struct{}{}
		merged.Append(tx)
		added++
	}

	// The external ids in the merged set must be unique. A violation here
	// means the ingestion source or this merge is broken, not a user error.
	if err := checkExternalIDUniqueness(merged); err != nil {
		return core.TransactionSet{}, 0, err
	}

	return merged, added, nil
}

func checkExternalIDUniqueness(set core.TransactionSet) error {
	seen := make(map[string]string, set.Len())
	for _, tx := range set.All() {
		if prior, dup := seen[tx.ExternalID]; dup {
			return fmt.Errorf("%w: %q on transactions %s and %s",
				core.ErrDuplicateExternalID, tx.ExternalID, prior, tx.ID)
		}
		seen[tx.ExternalID] = tx.ID
	}
	return nil
}

// Recategorize reassigns a transaction's category inside the record and
// marks it as a manual override. Once set, no automatic process touches the
// category again. The first override captures the original category.
func Recategorize(record *core.PeriodRecord, transactionID, newCategoryID string, now time.Time) (core.Transaction, error) {
	tx, ok := record.Transactions.Get(transactionID)
	if !ok {
		return core.Transaction{}, fmt.Errorf("%w: transaction %s", core.ErrNotFound, transactionID)
	}

	if !tx.IsManualOverride {
		original := tx.CategoryID
		tx.OriginalCategory = &original
	}
	tx.CategoryID = newCategoryID
	tx.IsManualOverride = true
	tx.UpdatedAt = now

	record.Transactions.Replace(tx)
	return tx, nil
}
