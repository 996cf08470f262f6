package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prr-network/prr/internal/app/billing"
	"github.com/prr-network/prr/internal/domain"
)

// ─── Terminal API ───────────────────────────────────────────────────────────
//
// GET  /api/terminals                  all terminals, ?mode= filters
// GET  /api/terminals/{id}             terminal snapshot
// POST /api/terminals/{id}/on          OFF → NORMAL
// POST /api/terminals/{id}/off         any non-busy mode → OFF
// POST /api/terminals/{id}/toggle      NORMAL ↔ SILENT
// POST /api/terminals/{id}/pay         pay into the account (terminal OFF)
// POST /api/terminals/{id}/sms         send a text message
// POST /api/terminals/{id}/calls       start a voice call
// POST /api/terminals/{id}/calls/end   hang up with the call duration
// GET  /api/terminals/{id}/history     ledger entries, newest first
// GET  /api/terminals/{id}/totals      ledger aggregates
// GET  /api/communications/{id}        settled communication record
// GET  /api/tariff/quote               price without sending

func (s *Server) handleListTerminals(w http.ResponseWriter, r *http.Request) {
	var modes []domain.TerminalMode
	for _, raw := range r.URL.Query()["mode"] {
		m, err := domain.ParseTerminalMode(raw)
		if err != nil {
			s.writeDomainError(w, r, badRequest("%v", err))
			return
		}
		modes = append(modes, m)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"terminals": s.svc.Terminals(modes...),
	})
}

func (s *Server) handleGetTerminal(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.Terminal(terminalParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleTurnOn(w http.ResponseWriter, r *http.Request) {
	s.respondTerminal(w, r, s.svc.TurnOn)
}

func (s *Server) handleTurnOff(w http.ResponseWriter, r *http.Request) {
	s.respondTerminal(w, r, s.svc.TurnOff)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	s.respondTerminal(w, r, s.svc.Toggle)
}

func (s *Server) respondTerminal(w http.ResponseWriter, r *http.Request, fn func(domain.TerminalID) (billing.TerminalView, error)) {
	v, err := fn(terminalParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handlePay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount domain.Cents `json:"amount"`
	}
	if err := decode(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	v, err := s.svc.Pay(r.Context(), terminalParam(r, "id"), req.Amount)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleSendSMS(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To      domain.TerminalID `json:"to"`
		Message string            `json:"message"`
	}
	if err := decode(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	res, err := s.svc.SendSMS(r.Context(), terminalParam(r, "id"), req.To, req.Message)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStartCall(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To domain.TerminalID `json:"to"`
	}
	if err := decode(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	call, err := s.svc.StartCall(terminalParam(r, "id"), req.To)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, call)
}

func (s *Server) handleEndCall(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Duration int `json:"duration"`
	}
	if err := decode(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	call, err := s.svc.EndCall(r.Context(), terminalParam(r, "id"), req.Duration)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, call)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 50)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	entries, err := s.svc.History(r.Context(), terminalParam(r, "id"), limit)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
	})
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	tot, err := s.svc.Totals(r.Context(), terminalParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"terminal":       tot.Terminal,
		"charged":        tot.Charged,
		"paid":           tot.Paid,
		"net":            tot.Net(),
		"communications": tot.Communications,
	})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	typ, err := domain.ParseCommunicationType(r.URL.Query().Get("type"))
	if err != nil {
		s.writeDomainError(w, r, badRequest("%v", err))
		return
	}
	var size, points, friends int
	for name, dst := range map[string]*int{"size": &size, "points": &points, "friends": &friends} {
		if *dst, err = intQuery(r, name, 0); err != nil {
			s.writeDomainError(w, r, err)
			return
		}
	}
	if size < 0 || points < 0 || friends < 0 {
		s.writeDomainError(w, r, badRequest("size, points and friends must not be negative"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"type": typ,
		"size": size,
		"cost": billing.Quote(typ, size, points, friends),
	})
}

func (s *Server) handleGetCommunication(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.Communication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
