package billing

import (
	"github.com/prr-network/prr/internal/domain"
)

// ─── Clients ────────────────────────────────────────────────────────────────

// RegisterClient creates a client with its first terminal.
func (s *Service) RegisterClient(name string, tax domain.TaxNumber, terminal domain.TerminalID) (ClientView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.net.NewClient(name, tax, terminal)
	if err != nil {
		return ClientView{}, s.reject("register_client", err, "client", tax, "terminal", terminal)
	}
	s.log.Info("client registered", "client", tax, "terminal", terminal)
	return clientView(c), nil
}

// Client returns a snapshot of the client.
func (s *Service) Client(tax domain.TaxNumber) (ClientView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.client(tax)
	if err != nil {
		return ClientView{}, err
	}
	return clientView(c), nil
}

// Clients lists every client by tax number.
func (s *Service) Clients() []ClientView {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.net.Clients()
	out := make([]ClientView, 0, len(all))
	for _, c := range all {
		out = append(out, clientView(c))
	}
	return out
}

// RenameClient replaces the client's display name.
func (s *Service) RenameClient(tax domain.TaxNumber, name string) (ClientView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.client(tax)
	if err != nil {
		return ClientView{}, err
	}
	if err := c.UpdateName(name); err != nil {
		return ClientView{}, s.reject("rename_client", err, "client", tax)
	}
	return clientView(c), nil
}

// AdjustPoints adds delta to the client's loyalty balance.
func (s *Service) AdjustPoints(tax domain.TaxNumber, delta int) (ClientView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.client(tax)
	if err != nil {
		return ClientView{}, err
	}
	if err := c.UpdatePoints(delta); err != nil {
		return ClientView{}, s.reject("adjust_points", err, "client", tax, "delta", delta)
	}
	return clientView(c), nil
}

// AddFriend adds friend to tax's friend set.
func (s *Service) AddFriend(tax, friend domain.TaxNumber) (ClientView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.client(tax)
	if err != nil {
		return ClientView{}, err
	}
	f, err := s.client(friend)
	if err != nil {
		return ClientView{}, err
	}
	if err := c.AddFriend(f); err != nil {
		return ClientView{}, s.reject("add_friend", err, "client", tax, "friend", friend)
	}
	return clientView(c), nil
}

// RemoveFriend drops friend from tax's friend set and reports whether it
// was there.
func (s *Service) RemoveFriend(tax, friend domain.TaxNumber) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.client(tax)
	if err != nil {
		return false, err
	}
	f, ok := s.net.Client(friend)
	if !ok {
		return false, nil
	}
	return c.RemoveFriend(f), nil
}

// AddTerminal gives the client terminal id. An unknown id creates a new
// OFF terminal; a live one changes hands. Ids of retired terminals are
// refused with domain.ErrTerminalExists.
func (s *Service) AddTerminal(tax domain.TaxNumber, id domain.TerminalID) (TerminalView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.client(tax)
	if err != nil {
		return TerminalView{}, err
	}

	t, ok := s.net.Terminal(id)
	if ok {
		err = c.AddTerminal(t)
	} else {
		t, err = s.net.NewTerminal(id, c)
	}
	if err != nil {
		return TerminalView{}, s.reject("add_terminal", err, "client", tax, "terminal", id)
	}
	s.log.Info("terminal assigned", "client", tax, "terminal", id)
	return terminalView(t), nil
}

// RemoveTerminal retires terminal id from the client. It reports false
// when the client does not own it or its balance is negative.
func (s *Service) RemoveTerminal(tax domain.TaxNumber, id domain.TerminalID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.client(tax)
	if err != nil {
		return false, err
	}
	t, err := s.terminal(id)
	if err != nil {
		return false, err
	}
	removed, err := c.RemoveTerminal(t)
	if err != nil {
		return false, s.reject("remove_terminal", err, "client", tax, "terminal", id)
	}
	if removed {
		s.log.Info("terminal retired", "client", tax, "terminal", id)
	}
	return removed, nil
}
