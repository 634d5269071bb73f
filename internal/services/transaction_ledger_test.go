package services

import (
	"errors"
	"testing"
	"time"

	"bilancio/internal/core"
)

func feedTx(id, extID string, cents int64) core.Transaction {
	return core.Transaction{
		ID:         id,
		ExternalID: extID,
		Date:       core.NewDate(2024, 12, 10),
		Amount:     core.Money{Cents: cents},
		CategoryID: "cat-default",
	}
}

func TestMergeTransactionsDedup(t *testing.T) {
	existing := core.NewTransactionSet([]core.Transaction{
		feedTx("t1", "e1", -1000),
		feedTx("t2", "e2", -2000),
	})
	incoming := []core.Transaction{
		feedTx("t3", "e2", -2000), // duplicate external id, dropped
		feedTx("t4", "e3", -3000),
	}

	merged, added, err := MergeTransactions(existing, incoming)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}
	all := merged.All()
	if len(all) != 3 {
		t.Fatalf("merged len = %d, want 3", len(all))
	}
	// Relative order: existing first, then surviving incoming.
	if all[0].ID != "t1" || all[1].ID != "t2" || all[2].ID != "t4" {
		t.Errorf("order = %s, %s, %s", all[0].ID, all[1].ID, all[2].ID)
	}
}

func TestMergeTransactionsIdempotent(t *testing.T) {
	batch := []core.Transaction{
		feedTx("t1", "e1", -1000),
		feedTx("t2", "e2", -2000),
	}

	merged, added, err := MergeTransactions(core.TransactionSet{}, batch)
	if err != nil {
		t.Fatalf("first merge: %v", err)
	}
	if added != 2 {
		t.Fatalf("first merge added = %d, want 2", added)
	}

	again, added, err := MergeTransactions(merged, batch)
	if err != nil {
		t.Fatalf("second merge: %v", err)
	}
	if added != 0 {
		t.Errorf("second merge added = %d, want 0", added)
	}
	if again.Len() != 2 {
		t.Errorf("second merge len = %d, want 2", again.Len())
	}
}

func TestMergeTransactionsDuplicateInBatch(t *testing.T) {
	// Two fresh transactions sharing one external id: the second is dropped
	// as a duplicate, so the invariant holds.
	batch := []core.Transaction{
		feedTx("t1", "e1", -1000),
		feedTx("t2", "e1", -1000),
	}
	merged, added, err := MergeTransactions(core.TransactionSet{}, batch)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if added != 1 || merged.Len() != 1 {
		t.Errorf("added=%d len=%d, want 1/1", added, merged.Len())
	}
}

func TestMergeDetectsCorruptExistingSet(t *testing.T) {
	// An existing set that already violates uniqueness (distinct ids, same
	// external id) is an ingestion-source bug and must be fatal.
	existing := core.NewTransactionSet([]core.Transaction{
		feedTx("t1", "e1", -1000),
		feedTx("t2", "e1", -1000),
	})
	_, _, err := MergeTransactions(existing, nil)
	if !errors.Is(err, core.ErrDuplicateExternalID) {
		t.Errorf("got %v, want ErrDuplicateExternalID", err)
	}
}

func TestRecategorize(t *testing.T) {
	now := time.Date(2024, 12, 20, 10, 0, 0, 0, time.UTC)
	record := &core.PeriodRecord{}
	record.Transactions.Append(feedTx("t1", "e1", -1000))

	updated, err := Recategorize(record, "t1", "cat-groceries", now)
	if err != nil {
		t.Fatalf("recategorize: %v", err)
	}
	if updated.CategoryID != "cat-groceries" {
		t.Errorf("category = %q", updated.CategoryID)
	}
	if !updated.IsManualOverride {
		t.Error("manual override not set")
	}
	if updated.OriginalCategory == nil || *updated.OriginalCategory != "cat-default" {
		t.Errorf("original category = %v", updated.OriginalCategory)
	}
	if !updated.UpdatedAt.Equal(now) {
		t.Errorf("updated at = %v", updated.UpdatedAt)
	}

	stored, _ := record.Transactions.Get("t1")
	if stored.CategoryID != "cat-groceries" {
		t.Error("record not updated in place")
	}
}

func TestRecategorizeNotFound(t *testing.T) {
	record := &core.PeriodRecord{}
	_, err := Recategorize(record, "missing", "cat-x", time.Now())
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestManualOverrideSurvivesRemerge(t *testing.T) {
	// After a manual recategorization, re-merging a batch containing the
	// same external id must not touch the override.
	record := &core.PeriodRecord{}
	record.Transactions.Append(feedTx("t1", "e1", -1000))

	if _, err := Recategorize(record, "t1", "cat-travel", time.Now()); err != nil {
		t.Fatalf("recategorize: %v", err)
	}

	remerge := []core.Transaction{feedTx("t9", "e1", -1000)}
	merged, added, err := MergeTransactions(record.Transactions, remerge)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if added != 0 {
		t.Errorf("re-merge added = %d, want 0", added)
	}

	tx, _ := merged.Get("t1")
	if tx.CategoryID != "cat-travel" || !tx.IsManualOverride {
		t.Errorf("override lost: category=%q manual=%v", tx.CategoryID, tx.IsManualOverride)
	}

	// Preserving the first original category even across repeated overrides.
	record.Transactions = merged
	if _, err := Recategorize(record, "t1", "cat-food", time.Now()); err != nil {
		t.Fatalf("second recategorize: %v", err)
	}
	tx, _ = record.Transactions.Get("t1")
	if tx.OriginalCategory == nil || *tx.OriginalCategory != "cat-default" {
		t.Errorf("original category rewritten: %v", tx.OriginalCategory)
	}
}
