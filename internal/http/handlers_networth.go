package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleNetWorth(w http.ResponseWriter, r *http.Request) {
	report, err := s.ledger.NetWorth(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleNetWorthSnapshot(w http.ResponseWriter, r *http.Request) {
	entry, err := s.ledger.RecordNetWorth(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var a core.Asset
	if err := decodeJSON(w, r, &a); err != nil {
		writeError(w, r, err)
		return
	}
	a.ID = ""
	a.Name = sanitizeInput(a.Name)
	created, err := s.ledger.AddAsset(r.Context(), a)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.ledger.DeleteAsset)
}

func (s *Server) handleCreateLiability(w http.ResponseWriter, r *http.Request) {
	var l core.Liability
	if err := decodeJSON(w, r, &l); err != nil {
		writeError(w, r, err)
		return
	}
	l.ID = ""
	l.Name = sanitizeInput(l.Name)
	created, err := s.ledger.AddLiability(r.Context(), l)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteLiability(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.ledger.DeleteLiability)
}
