// Package docstore defines the abstract key/value document store the ledger
// persists through. The ledger depends only on this contract, never on a
// concrete backend.
package docstore

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrNotExist is returned by Read when no document exists at the path.
// Absence is not a failure; backend failures are returned as ordinary
// errors and mapped to the storage error class by the caller.
var ErrNotExist = errors.New("document does not exist")

// Store is an abstract key/value document store. Write has create-or-replace
// semantics: a failed write leaves the prior document version intact, so
// there is never partial-write state to reconcile.
type Store interface {
	// Read returns the document bytes at path, or ErrNotExist.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write creates or replaces the document at path.
	Write(ctx context.Context, path string, data []byte) error

	// List returns the ids of documents under prefix, where the id is the
	// path component after the prefix with any .json suffix stripped.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Canonical document paths.
const (
	UserPath         = "user.json"
	AccountsPrefix   = "accounts/"
	CategoriesPath   = "categories/categories.json"
	PeriodsPrefix    = "periods/"
	documentSuffix   = ".json"
)

// AccountPath returns the document path for an account.
func AccountPath(accountID string) string {
	return AccountsPrefix + accountID + documentSuffix
}

// PeriodPath returns the document path for a period record.
func PeriodPath(periodID string) string {
	return PeriodsPrefix + periodID + documentSuffix
}

// IDFromPath extracts the document id from a path under prefix,
// e.g. IDFromPath("periods/", "periods/abc.json") -> "abc".
func IDFromPath(prefix, p string) string {
	base := path.Base(strings.TrimPrefix(p, prefix))
	return strings.TrimSuffix(base, documentSuffix)
}
