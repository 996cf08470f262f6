package billing

import (
	"context"
	"fmt"
	"slices"

	"github.com/prr-network/prr/internal/domain"
	"github.com/prr-network/prr/internal/infra/observability"
)

// ─── Terminals ──────────────────────────────────────────────────────────────

// Terminal returns a snapshot of terminal id.
func (s *Service) Terminal(id domain.TerminalID) (TerminalView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.terminal(id)
	if err != nil {
		return TerminalView{}, err
	}
	return terminalView(t), nil
}

// Terminals lists registered terminals by id. When modes are given only
// terminals in one of them are returned.
func (s *Service) Terminals(modes ...domain.TerminalMode) []TerminalView {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.net.Terminals()
	out := make([]TerminalView, 0, len(all))
	for _, t := range all {
		if len(modes) > 0 && !slices.Contains(modes, t.Mode()) {
			continue
		}
		out = append(out, terminalView(t))
	}
	return out
}

// TurnOn switches terminal id from OFF to NORMAL.
func (s *Service) TurnOn(id domain.TerminalID) (TerminalView, error) {
	return s.transition("turn_on", id, (*domain.Terminal).TurnOn)
}

// TurnOff switches terminal id OFF.
func (s *Service) TurnOff(id domain.TerminalID) (TerminalView, error) {
	return s.transition("turn_off", id, (*domain.Terminal).TurnOff)
}

// Toggle swaps terminal id between NORMAL and SILENT.
func (s *Service) Toggle(id domain.TerminalID) (TerminalView, error) {
	return s.transition("toggle", id, (*domain.Terminal).ToggleOnMode)
}

func (s *Service) transition(op string, id domain.TerminalID, fn func(*domain.Terminal) error) (TerminalView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.terminal(id)
	if err != nil {
		return TerminalView{}, err
	}
	if err := fn(t); err != nil {
		return TerminalView{}, s.reject(op, err, "terminal", id)
	}
	s.log.Debug("terminal mode changed", "terminal", id, "mode", t.Mode().String())
	return terminalView(t), nil
}

// Pay credits amount to terminal id and records the payment.
func (s *Service) Pay(ctx context.Context, id domain.TerminalID, amount domain.Cents) (TerminalView, error) {
	s.mu.Lock()
	t, err := s.terminal(id)
	if err != nil {
		s.mu.Unlock()
		return TerminalView{}, err
	}
	if err := t.Pay(amount); err != nil {
		s.mu.Unlock()
		return TerminalView{}, s.reject("pay", err, "terminal", id, "amount", amount)
	}
	view := terminalView(t)
	p := domain.Payment{
		ID:       s.newID(),
		Terminal: id,
		Amount:   amount,
		PaidAt:   s.now(),
	}
	s.mu.Unlock()

	observability.ObservePayment(amount)
	s.log.Info("payment accepted", "terminal", id, "amount", amount, "payment", p.ID)

	if err := s.ledger.RecordPayment(ctx, p); err != nil {
		s.log.Error("ledger write failed", "payment", p.ID, "error", err)
		return view, fmt.Errorf("record payment %s: %w", p.ID, err)
	}
	return view, nil
}

// Balance returns terminal id's balance. It fails while the terminal is
// in a call.
func (s *Service) Balance(id domain.TerminalID) (domain.Cents, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.terminal(id)
	if err != nil {
		return 0, err
	}
	b, err := t.Balance()
	if err != nil {
		return 0, s.reject("balance", err, "terminal", id)
	}
	return b, nil
}

// ─── Communications ─────────────────────────────────────────────────────────

// SendSMS sends msg from one terminal to another. Delivered messages are
// settled and written to the ledger before SendSMS returns.
func (s *Service) SendSMS(ctx context.Context, from, to domain.TerminalID, msg string) (SMSResult, error) {
	s.mu.Lock()
	src, err := s.terminal(from)
	if err != nil {
		s.mu.Unlock()
		return SMSResult{}, err
	}
	dst, err := s.terminal(to)
	if err != nil {
		s.mu.Unlock()
		return SMSResult{}, err
	}

	delivered, err := src.SendSMS(dst, msg)
	if err != nil {
		s.mu.Unlock()
		return SMSResult{}, s.reject("send_sms", err, "terminal", from, "to", to)
	}
	if !delivered {
		mode := dst.Mode()
		s.mu.Unlock()
		observability.ObserveUndelivered(mode)
		s.log.Debug("sms not delivered", "terminal", from, "to", to, "mode", mode.String())
		return SMSResult{}, nil
	}

	batch := s.takePending()
	s.mu.Unlock()

	res := SMSResult{Delivered: true}
	for _, p := range batch {
		if p.settlement.From == from && p.settlement.Type == domain.TypeSMS {
			res.Communication = p.settlement.ID
			res.Cost = p.settlement.Cost
		}
	}
	return res, s.persist(ctx, batch)
}

// StartCall places a voice call from one terminal to another.
func (s *Service) StartCall(from, to domain.TerminalID) (CallView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.terminal(from)
	if err != nil {
		return CallView{}, err
	}
	dst, err := s.terminal(to)
	if err != nil {
		return CallView{}, err
	}

	c, err := src.MakeVoiceCall(dst)
	if err != nil {
		return CallView{}, s.reject("start_call", err, "terminal", from, "to", to)
	}
	observability.ActiveCalls.Inc()
	s.log.Info("call started", "communication", c.ID(), "terminal", from, "to", to)
	return callView(c), nil
}

// EndCall records the call duration in seconds and hangs up the call
// terminal id takes part in. Either end may hang up.
func (s *Service) EndCall(ctx context.Context, id domain.TerminalID, duration int) (CallView, error) {
	s.mu.Lock()
	t, err := s.terminal(id)
	if err != nil {
		s.mu.Unlock()
		return CallView{}, err
	}

	if c := t.Ongoing(); c != nil {
		if err := c.SetDuration(duration); err != nil {
			s.mu.Unlock()
			return CallView{}, s.reject("end_call", err, "terminal", id, "duration", duration)
		}
	}
	c, err := t.EndOngoingCommunication()
	if err != nil {
		s.mu.Unlock()
		return CallView{}, s.reject("end_call", err, "terminal", id)
	}
	view := callView(c)
	batch := s.takePending()
	s.mu.Unlock()

	observability.ActiveCalls.Dec()
	return view, s.persist(ctx, batch)
}

// ─── Ledger ─────────────────────────────────────────────────────────────────

// History returns up to limit ledger entries for terminal id, newest
// first. Retired terminals keep their history.
func (s *Service) History(ctx context.Context, id domain.TerminalID, limit int) ([]domain.LedgerEntry, error) {
	return s.ledger.History(ctx, id, limit)
}

// Totals aggregates terminal id's ledger.
func (s *Service) Totals(ctx context.Context, id domain.TerminalID) (domain.Totals, error) {
	return s.ledger.Totals(ctx, id)
}

// Communication looks up a settled communication by the id SendSMS or
// StartCall reported.
func (s *Service) Communication(ctx context.Context, id string) (CommunicationView, error) {
	st, at, err := s.ledger.Settlement(ctx, id)
	if err != nil {
		return CommunicationView{}, err
	}
	return CommunicationView{Settlement: st, SettledAt: at}, nil
}
