package core

import "errors"

// Error taxonomy. Callers classify with errors.Is against the four base
// sentinels; detail errors wrap a base so both checks work.
var (
	// ErrNotFound: a referenced period, category, or transaction does not
	// exist. Surfaced to the caller, never retried.
	ErrNotFound = errors.New("not found")

	// ErrValidation: required field missing or malformed. Rejected before
	// any write happens.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateExternalID: the post-merge uniqueness invariant was
	// violated. Indicates a bug in the ingestion source or the merge logic,
	// not a user error.
	ErrDuplicateExternalID = errors.New("duplicate external id")

	// ErrStorage: a document store read or write failed. Propagated
	// unmodified; retry policy belongs to the store, not the ledger.
	ErrStorage = errors.New("storage failure")
)

// Validation detail errors.
var (
	ErrEmptyCategoryName    = wrapValidation("category name required")
	ErrCategoryNameTooLong  = wrapValidation("category name too long (max 100 characters)")
	ErrInvalidLimit         = wrapValidation("monthly limit must not be negative")
	ErrDefaultNotArchivable = wrapValidation("default category cannot be archived")
	ErrEmptyExternalID      = wrapValidation("external id required")
	ErrInvalidDate          = wrapValidation("invalid date")
	ErrInvalidAmount        = wrapValidation("invalid amount")
	ErrUnknownPeriodType    = wrapValidation("unknown period type")
)

func wrapValidation(msg string) error {
	return &validationError{msg: msg}
}

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

// Unwrap makes every detail error match ErrValidation under errors.Is.
func (e *validationError) Unwrap() error { return ErrValidation }
