// Package log configures the process-wide slog logger and names the
// standard fields the rest of the codebase logs with.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Field names shared across packages so log lines stay greppable.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldError     = "error"

	FieldUserID     = "user_id"
	FieldAccountID  = "account_id"
	FieldPeriodID   = "period_id"
	FieldCategoryID = "category_id"
	FieldExternalID = "external_id"
	FieldBatchSize  = "batch_size"
	FieldAdded      = "added"
)

// Component names for the FieldComponent attribute.
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentPeriod   = "period"
	ComponentIngest   = "ingest"
	ComponentDocstore = "docstore"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentBackend  = "backend"
)

// Options controls handler construction. Zero values mean text format at
// info level on stdout.
type Options struct {
	Level  slog.Level
	Format string // "text" or "json"
	Output io.Writer
}

// New builds a logger from opts without touching the process default.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	ho := &slog.HandlerOptions{Level: opts.Level}
	if strings.EqualFold(opts.Format, "json") {
		return slog.New(slog.NewJSONHandler(out, ho))
	}
	return slog.New(slog.NewTextHandler(out, ho))
}

// Default builds the standard process logger and installs it as the slog
// default, so package-level slog calls share the same handler.
func Default() *slog.Logger {
	logger := New(Options{})
	slog.SetDefault(logger)
	return logger
}

// ForComponent stamps every record from the returned logger with a
// component attribute.
func ForComponent(l *slog.Logger, component string) *slog.Logger {
	return l.With(FieldComponent, component)
}
