package http

import (
	"net/http"

	"fintrack/internal/core"
)

// Budgets

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.ledger.Budgets(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var b core.Budget
	if err := decodeJSON(w, r, &b); err != nil {
		writeError(w, r, err)
		return
	}
	b.ID = ""
	b.Category = sanitizeInput(b.Category)
	created, err := s.ledger.AddBudget(r.Context(), b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.ledger.DeleteBudget)
}

// Spending limits

func (s *Server) handleListLimits(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.ledger.Limits(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (s *Server) handleCreateLimit(w http.ResponseWriter, r *http.Request) {
	var l core.SpendingLimit
	if err := decodeJSON(w, r, &l); err != nil {
		writeError(w, r, err)
		return
	}
	l.ID = ""
	l.Category = sanitizeInput(l.Category)
	created, err := s.ledger.AddLimit(r.Context(), l)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteLimit(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.ledger.DeleteLimit)
}

// Goals

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.ledger.Goals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.ledger.AddGoal(r.Context(), req.toGoal())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleGoalProgress adds a signed amount to the goal's manual progress.
func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.ledger.AdjustGoalProgress(r.Context(), r.PathValue("id"), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.ledger.DeleteGoal)
}

// Bills

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.ledger.Bills(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bills)
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.ledger.AddBill(r.Context(), req.toBill())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handlePayBill(w http.ResponseWriter, r *http.Request) {
	b, err := s.ledger.MarkBillPaid(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.ledger.DeleteBill)
}
