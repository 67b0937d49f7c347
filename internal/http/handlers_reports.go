package http

import (
	"context"
	"net/http"

	"fintrack/internal/finance"
)

// deleteByID runs del with the {id} path value and answers 204.
func (s *Server) deleteByID(w http.ResponseWriter, r *http.Request, del func(context.Context, string) error) {
	if err := del(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	month, err := parseMonth(query, finance.AllMonths)
	if err != nil {
		writeError(w, r, err)
		return
	}
	typ, err := parseType(query)
	if err != nil {
		writeError(w, r, err)
		return
	}

	txs, err := s.ledger.Transactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	selected, err := finance.FilterByMonth(txs, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, finance.SummarizeByCategory(selected, typ))
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.Transactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, finance.SummarizeByMonth(txs))
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.Transactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, finance.AvailableMonths(txs))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonth(r.URL.Query(), finance.AllMonths)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := s.ledger.Dashboard(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type healthScoreResponse struct {
	finance.HealthScore
	Rating string `json:"rating"`
}

func (s *Server) handleHealthScore(w http.ResponseWriter, r *http.Request) {
	score, err := s.ledger.HealthScore(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, healthScoreResponse{HealthScore: score, Rating: score.Rating()})
}
