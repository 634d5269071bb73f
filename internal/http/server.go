// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/middleware/trace"
)

// PeriodReader serves the read and recategorize operations on the active
// period.
type PeriodReader interface {
	ActiveSummaries(ctx context.Context, userID, accountID string) (core.PeriodRecord, []core.CategorySummary, error)
	ListTransactions(ctx context.Context, userID, accountID string) ([]core.Transaction, error)
	RecategorizeTransaction(ctx context.Context, userID, accountID, transactionID, categoryID string) (core.Transaction, error)
}

// CategoryManager manages the category collection.
type CategoryManager interface {
	List(ctx context.Context) ([]core.Category, error)
	Create(ctx context.Context, userID, name string, monthlyLimit core.Money) (core.Category, error)
	Update(ctx context.Context, categoryID, name string, monthlyLimit core.Money) (core.Category, error)
	Archive(ctx context.Context, categoryID string) (core.Category, error)
}

// BatchImporter accepts normalized feed batches.
type BatchImporter interface {
	ImportBatch(ctx context.Context, userID, accountID string, batch []core.FeedTransaction) (int, error)
}

// Deps carries everything the server needs. UserID and AccountID identify
// the single deployment owner; setup resolves them at startup.
type Deps struct {
	Periods    PeriodReader
	Categories CategoryManager
	Ingest     BatchImporter

	UserID    string
	AccountID string

	// Ready reports whether the document store is reachable. Optional.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server

	periods    PeriodReader
	categories CategoryManager
	ingest     BatchImporter

	userID    string
	accountID string
	ready     func(ctx context.Context) error

	// period summaries are recomputed from the whole record on every read,
	// so the hot dashboard path gets a short-lived cache
	summaryCache *cache.LRU[periodPayload]
	cacheJanitor *cache.Janitor

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, deps Deps) *Server {
	s := &Server{
		periods:      deps.Periods,
		categories:   deps.Categories,
		ingest:       deps.Ingest,
		userID:       deps.UserID,
		accountID:    deps.AccountID,
		ready:        deps.Ready,
		summaryCache: cache.NewLRU[periodPayload](100, 30*time.Second),
		cacheJanitor: cache.NewJanitor(),
	}
	s.cacheJanitor.Watch(s.summaryCache)
	s.cacheJanitor.Start(10 * time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/period", s.handleGetPeriod)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("POST /api/categories/{id}/archive", s.handleArchiveCategory)
	mux.HandleFunc("PUT /api/transactions/{id}/category", s.handleRecategorize)
	mux.HandleFunc("POST /api/ingest", s.handleIngest)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	tracer := trace.New(clientIP)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           tracer.Wrap(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the cleanup goroutine and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheJanitor.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// invalidateSummaries drops cached projections after any mutation.
func (s *Server) invalidateSummaries() {
	s.summaryCache.Invalidate(s.accountID)
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
