package http

import (
	"fmt"
	"net/http"
	"strings"

	"bilancio/internal/core"
)

type periodPayload struct {
	Period     core.BudgetPeriod      `json:"period"`
	Categories []core.CategorySummary `json:"categories"`
}

type transactionsPayload struct {
	Transactions []core.Transaction `json:"transactions"`
}

type categoryRequest struct {
	Name              string `json:"name"`
	MonthlyLimitCents int64  `json:"monthly_limit_cents"`
}

type recategorizeRequest struct {
	CategoryID string `json:"category_id"`
}

type ingestRequest struct {
	Transactions []core.FeedTransaction `json:"transactions"`
}

type ingestPayload struct {
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
}

func (s *Server) handleGetPeriod(w http.ResponseWriter, r *http.Request) {
	if payload, ok := s.summaryCache.Get(s.accountID); ok {
		writeJSON(w, http.StatusOK, payload)
		return
	}

	record, summaries, err := s.periods.ActiveSummaries(r.Context(), s.userID, s.accountID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	payload := periodPayload{Period: record.Period, Categories: summaries}
	s.summaryCache.Put(s.accountID, payload)
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.periods.ListTransactions(r.Context(), s.userID, s.accountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionsPayload{Transactions: txs})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}

	category, err := s.categories.Create(r.Context(), s.userID,
		strings.TrimSpace(req.Name), core.Money{Cents: req.MonthlyLimitCents})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateSummaries()
	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}

	category, err := s.categories.Update(r.Context(), r.PathValue("id"),
		strings.TrimSpace(req.Name), core.Money{Cents: req.MonthlyLimitCents})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleArchiveCategory(w http.ResponseWriter, r *http.Request) {
	category, err := s.categories.Archive(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleRecategorize(w http.ResponseWriter, r *http.Request) {
	var req recategorizeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}
	if req.CategoryID == "" {
		writeError(w, r, fmt.Errorf("%w: category_id is required", core.ErrValidation))
		return
	}

	tx, err := s.periods.RecategorizeTransaction(r.Context(),
		s.userID, s.accountID, r.PathValue("id"), req.CategoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}
	if len(req.Transactions) == 0 {
		writeError(w, r, fmt.Errorf("%w: transactions are required", core.ErrValidation))
		return
	}

	added, err := s.ingest.ImportBatch(r.Context(), s.userID, s.accountID, req.Transactions)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, ingestPayload{
		Added:      added,
		Duplicates: len(req.Transactions) - added,
	})
}
