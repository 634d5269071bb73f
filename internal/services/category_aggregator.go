package services

import (
	"math"

	"bilancio/internal/core"
)

// SummarizeCategories computes per-category spend against limits for one
// period record. Only negative amounts count as spend; income and credits
// never reduce it. The result is a fresh projection every call, never
// stored.
func SummarizeCategories(record core.PeriodRecord, categories []core.Category) []core.CategorySummary {
	spentByCategory := make(map[string]int64, len(categories))
	for _, tx := range record.Transactions.All() {
		if !tx.Amount.IsExpense() {
			continue
		}
		spentByCategory[tx.CategoryID] += tx.Amount.Abs().Cents
	}

	summaries := make([]core.CategorySummary, 0, len(categories))
	for _, cat := range categories {
		spent := spentByCategory[cat.ID]
		remaining := cat.MonthlyLimit.Cents - spent
		if remaining < 0 {
			remaining = 0
		}
		percentage := 0
		if cat.MonthlyLimit.Cents > 0 {
			percentage = int(math.Round(float64(spent) / float64(cat.MonthlyLimit.Cents) * 100))
		}
		summaries = append(summaries, core.CategorySummary{
			CategoryID:   cat.ID,
			Name:         cat.Name,
			MonthlyLimit: cat.MonthlyLimit,
			Spent:        core.Money{Cents: spent},
			Remaining:    core.Money{Cents: remaining},
			Percentage:   percentage,
		})
	}
	return summaries
}
