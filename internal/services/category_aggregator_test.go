package services

import (
	"testing"

	"bilancio/internal/core"
)

func TestSummarizeCategories(t *testing.T) {
	groceries := core.Category{ID: "cat-g", Name: "Groceries", MonthlyLimit: core.Money{Cents: 30000}}
	record := core.PeriodRecord{}
	for i, cents := range []int64{-4550, -1200, 2000} {
		record.Transactions.Append(core.Transaction{
			ID:         string(rune('a' + i)),
			ExternalID: string(rune('x' + i)),
			Amount:     core.Money{Cents: cents},
			CategoryID: "cat-g",
		})
	}

	summaries := SummarizeCategories(record, []core.Category{groceries})
	if len(summaries) != 1 {
		t.Fatalf("len = %d", len(summaries))
	}
	s := summaries[0]
	if s.Spent.Cents != 5750 {
		t.Errorf("spent = %d, want 5750", s.Spent.Cents)
	}
	if s.Remaining.Cents != 24250 {
		t.Errorf("remaining = %d, want 24250", s.Remaining.Cents)
	}
	if s.Percentage != 19 {
		t.Errorf("percentage = %d, want 19", s.Percentage)
	}
}

func TestSummarizeOverspentClampsRemaining(t *testing.T) {
	cat := core.Category{ID: "c", Name: "Eating out", MonthlyLimit: core.Money{Cents: 5000}}
	record := core.PeriodRecord{}
	record.Transactions.Append(core.Transaction{
		ID: "t1", ExternalID: "e1", CategoryID: "c", Amount: core.Money{Cents: -7500},
	})

	s := SummarizeCategories(record, []core.Category{cat})[0]
	if s.Remaining.Cents != 0 {
		t.Errorf("remaining = %d, want 0", s.Remaining.Cents)
	}
	if s.Percentage != 150 {
		t.Errorf("percentage = %d, want 150", s.Percentage)
	}
}

func TestSummarizeZeroLimit(t *testing.T) {
	cat := core.Category{ID: "c", Name: "Uncategorized", MonthlyLimit: core.Money{Cents: 0}, IsDefault: true}
	record := core.PeriodRecord{}
	record.Transactions.Append(core.Transaction{
		ID: "t1", ExternalID: "e1", CategoryID: "c", Amount: core.Money{Cents: -100},
	})

	s := SummarizeCategories(record, []core.Category{cat})[0]
	if s.Percentage != 0 {
		t.Errorf("zero limit percentage = %d, want 0", s.Percentage)
	}
	if s.Spent.Cents != 100 {
		t.Errorf("spent = %d, want 100", s.Spent.Cents)
	}
}

func TestSummarizeIgnoresOtherCategories(t *testing.T) {
	a := core.Category{ID: "a", Name: "A", MonthlyLimit: core.Money{Cents: 10000}}
	b := core.Category{ID: "b", Name: "B", MonthlyLimit: core.Money{Cents: 10000}}
	record := core.PeriodRecord{}
	record.Transactions.Append(core.Transaction{
		ID: "t1", ExternalID: "e1", CategoryID: "a", Amount: core.Money{Cents: -500},
	})

	summaries := SummarizeCategories(record, []core.Category{a, b})
	if summaries[0].Spent.Cents != 500 {
		t.Errorf("cat a spent = %d", summaries[0].Spent.Cents)
	}
	if summaries[1].Spent.Cents != 0 {
		t.Errorf("cat b spent = %d, want 0", summaries[1].Spent.Cents)
	}
}
