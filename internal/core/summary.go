package core

// CategorySummary is a read-only projection of spend against a category's
// monthly limit. Summaries are recomputed on demand, never stored.
type CategorySummary struct {
	CategoryID   string `json:"category_id"`
	Name         string `json:"name"`
	MonthlyLimit Money  `json:"monthly_limit"`
	Spent        Money  `json:"spent"`     // magnitude of negative amounts
	Remaining    Money  `json:"remaining"` // max(0, limit - spent)
	Percentage   int    `json:"percentage"`
}
