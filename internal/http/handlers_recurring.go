package http

import (
	"net/http"
	"strings"

	"fintrack/internal/core"
)

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	entries, err := s.ledger.Recurring(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.ledger.AddRecurring(r.Context(), req.toRecurring(s.ledger.Now()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleToggleRecurring(w http.ResponseWriter, r *http.Request) {
	entry, err := s.ledger.ToggleRecurring(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// handleRunRecurring records the entry now and advances its schedule.
func (s *Server) handleRunRecurring(w http.ResponseWriter, r *http.Request) {
	tx, err := s.ledger.RunRecurringNow(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.ledger.DeleteRecurring)
}

// Templates

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.ledger.Templates(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var t core.TransactionTemplate
	if err := decodeJSON(w, r, &t); err != nil {
		writeError(w, r, err)
		return
	}
	t.ID = ""
	t.Name = sanitizeInput(t.Name)
	t.Category = sanitizeInput(t.Category)
	t.Description = sanitizeInput(t.Description)
	t.Type = core.TransactionType(strings.ToLower(string(t.Type)))
	created, err := s.ledger.AddTemplate(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleApplyTemplate(w http.ResponseWriter, r *http.Request) {
	tx, err := s.ledger.ApplyTemplate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.ledger.DeleteTemplate)
}
