package api

import (
	"net/http"

	"github.com/prr-network/prr/internal/domain"
)

// ─── Client API ─────────────────────────────────────────────────────────────
//
// GET    /api/clients                         all clients
// POST   /api/clients                         register with a first terminal
// GET    /api/clients/{tax}                   client snapshot
// PUT    /api/clients/{tax}/name              rename
// POST   /api/clients/{tax}/points            add or subtract points
// POST   /api/clients/{tax}/friends           add a friend
// DELETE /api/clients/{tax}/friends/{friend}  remove a friend
// POST   /api/clients/{tax}/terminals         create or take over a terminal
// DELETE /api/clients/{tax}/terminals/{id}    retire a terminal

type registerClientRequest struct {
	Name       string            `json:"name"`
	TaxNumber  domain.TaxNumber  `json:"tax_number"`
	TerminalID domain.TerminalID `json:"terminal_id"`
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"clients": s.svc.Clients(),
	})
}

func (s *Server) handleRegisterClient(w http.ResponseWriter, r *http.Request) {
	var req registerClientRequest
	if err := decode(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	v, err := s.svc.RegisterClient(req.Name, req.TaxNumber, req.TerminalID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	tax, err := taxParam(r, "tax")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	v, err := s.svc.Client(tax)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleRenameClient(w http.ResponseWriter, r *http.Request) {
	tax, err := taxParam(r, "tax")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := decode(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	v, err := s.svc.RenameClient(tax, req.Name)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleAdjustPoints(w http.ResponseWriter, r *http.Request) {
	tax, err := taxParam(r, "tax")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := decode(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	v, err := s.svc.AdjustPoints(tax, req.Delta)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleAddFriend(w http.ResponseWriter, r *http.Request) {
	tax, err := taxParam(r, "tax")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req struct {
		TaxNumber domain.TaxNumber `json:"tax_number"`
	}
	if err := decode(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	v, err := s.svc.AddFriend(tax, req.TaxNumber)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleRemoveFriend(w http.ResponseWriter, r *http.Request) {
	tax, err := taxParam(r, "tax")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	friend, err := taxParam(r, "friend")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	removed, err := s.svc.RemoveFriend(tax, friend)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

func (s *Server) handleAddTerminal(w http.ResponseWriter, r *http.Request) {
	tax, err := taxParam(r, "tax")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req struct {
		TerminalID domain.TerminalID `json:"terminal_id"`
	}
	if err := decode(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	v, err := s.svc.AddTerminal(tax, req.TerminalID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleRemoveTerminal(w http.ResponseWriter, r *http.Request) {
	tax, err := taxParam(r, "tax")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	removed, err := s.svc.RemoveTerminal(tax, terminalParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}
