// Package trace tags every HTTP request with an id, logs its lifecycle and
// keeps coarse request counters.
package trace

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	applog "bilancio/internal/log"
)

type ctxKey struct{}

// Tracer is the outermost HTTP middleware. Wrap the mux with Wrap.
type Tracer struct {
	clientIP func(*http.Request) string

	total      atomic.Int64
	failed     atomic.Int64
	lastMicros atomic.Int64
}

// Stats is a point-in-time snapshot of the tracer's counters.
type Stats struct {
	Total      int64
	Failed     int64
	LastMicros int64
}

// New returns a Tracer. clientIP resolves the caller's address from proxy
// headers; nil disables ip logging.
func New(clientIP func(*http.Request) string) *Tracer {
	return &Tracer{clientIP: clientIP}
}

func (t *Tracer) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()

		ctx := context.WithValue(r.Context(), ctxKey{}, id)
		r = r.WithContext(ctx)

		ip := ""
		if t.clientIP != nil {
			ip = t.clientIP(r)
		}

		slog.InfoContext(ctx, "HTTP request started",
			applog.FieldRequestID, id,
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", ip)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		t.total.Add(1)
		t.lastMicros.Store(elapsed.Microseconds())

		level := slog.LevelInfo
		switch {
		case rec.status >= 500:
			level = slog.LevelError
			t.failed.Add(1)
		case rec.status >= 400:
			level = slog.LevelWarn
		}

		slog.Log(ctx, level, "HTTP request completed",
			applog.FieldRequestID, id,
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", rec.status,
			"duration_ms", elapsed.Milliseconds(),
			"client_ip", ip)
	})
}

// Stats snapshots the request counters.
func (t *Tracer) Stats() Stats {
	return Stats{
		Total:      t.total.Load(),
		Failed:     t.failed.Load(),
		LastMicros: t.lastMicros.Load(),
	}
}

// RequestID returns the id assigned by Wrap, or "" outside a traced request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
