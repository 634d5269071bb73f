package core

import (
	"strings"
	"time"
)

const (
	// FixedDate periods recur on the anchor's day-of-month.
	FixedDate PeriodType = "FIXED_DATE"
	// IncomeAnchored periods recur monthly from the anchor date itself.
	IncomeAnchored PeriodType = "INCOME_ANCHORED"
)

type (
	PeriodType string

	// Date is a calendar date at midnight UTC. Period intervals are
	// [start, end): start inclusive, end exclusive.
	Date struct {
		time.Time
	}

	// User is the root of ownership. One per deployment for now, but every
	// entity carries the user id so multi-tenancy stays a parameter change.
	User struct {
		ID        string    `json:"user_id"`
		CreatedAt time.Time `json:"created_at"`
	}

	Account struct {
		ID          string    `json:"account_id"`
		UserID      string    `json:"user_id"`
		BankName    string    `json:"bank_name"`
		AccountName string    `json:"account_name"`
		Currency    string    `json:"currency"`
		CreatedAt   time.Time `json:"created_at"`
	}

	// Category has a monthly spending limit. Categories are archived, never
	// deleted, so historical transactions keep a resolvable reference.
	Category struct {
		ID           string     `json:"category_id"`
		UserID       string     `json:"user_id"`
		Name         string     `json:"name"`
		MonthlyLimit Money      `json:"monthly_limit"`
		IsDefault    bool       `json:"is_default"`
		CreatedAt    time.Time  `json:"created_at"`
		ArchivedAt   *time.Time `json:"archived_at,omitempty"`
	}

	BudgetPeriod struct {
		ID              string     `json:"period_id"`
		UserID          string     `json:"user_id"`
		AccountID       string     `json:"account_id"`
		StartDate       Date       `json:"start_date"`
		EndDate         Date       `json:"end_date"`
		StartingBalance Money      `json:"starting_balance"`
		PeriodType      PeriodType `json:"period_type"`
		AnchorDate      Date       `json:"anchor_date"`
		CreatedAt       time.Time  `json:"created_at"`
	}

	// Transaction is created once at ingestion and only ever mutated to
	// change its category. ExternalID is the deduplication key supplied by
	// the ingestion source. Amount is signed: negative = expense.
	Transaction struct {
		ID               string    `json:"transaction_id"`
		ExternalID       string    `json:"external_id"`
		AccountID        string    `json:"account_id"`
		UserID           string    `json:"user_id"`
		PeriodID         string    `json:"period_id"`
		Date             Date      `json:"date"`
		Amount           Money     `json:"amount"`
		MerchantName     string    `json:"merchant_name"`
		Description      string    `json:"description"`
		CategoryID       string    `json:"category_id"`
		OriginalCategory *string   `json:"original_category,omitempty"`
		IsManualOverride bool      `json:"is_manual_override"`
		CreatedAt        time.Time `json:"created_at"`
		UpdatedAt        time.Time `json:"updated_at"`
	}

	// FeedTransaction is a normalized record from the external banking feed,
	// not yet assigned to a period or category.
	FeedTransaction struct {
		ExternalID   string `json:"external_id"`
		Date         Date   `json:"date"`
		Amount       Money  `json:"amount"`
		MerchantName string `json:"merchant_name"`
		Description  string `json:"description"`
	}
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar date in UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.UTC().Year(), int(t.UTC().Month()), t.UTC().Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Year() int  { return d.Time.Year() }
func (d Date) Month() int { return int(d.Time.Month()) }
func (d Date) Day() int   { return d.Time.Day() }

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }

// OnOrAfter reports whether d is on or after other.
func (d Date) OnOrAfter(other Date) bool { return !d.Time.Before(other.Time) }

// String formats the date as YYYY-MM-DD.
func (d Date) String() string { return d.Time.Format("2006-01-02") }

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Contains reports whether date falls inside the period's [start, end).
func (p BudgetPeriod) Contains(date Date) bool {
	return date.OnOrAfter(p.StartDate) && date.Before(p.EndDate)
}

// Expired reports whether the period's interval is entirely before today.
func (p BudgetPeriod) Expired(today Date) bool {
	return today.OnOrAfter(p.EndDate)
}

// IsValid reports whether pt is a known period type.
func (pt PeriodType) IsValid() bool {
	switch pt {
	case FixedDate, IncomeAnchored:
		return true
	default:
		return false
	}
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategoryName
	}
	if len(c.Name) > 100 {
		return ErrCategoryNameTooLong
	}
	if c.MonthlyLimit.Cents < 0 {
		return ErrInvalidLimit
	}
	return nil
}

func (t FeedTransaction) Validate() error {
	if strings.TrimSpace(t.ExternalID) == "" {
		return ErrEmptyExternalID
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}
