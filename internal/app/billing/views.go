package billing

import (
	"time"

	"github.com/prr-network/prr/internal/domain"
)

// ClientView is a read-only snapshot of a client.
type ClientView struct {
	TaxNumber   domain.TaxNumber    `json:"tax_number"`
	Name        string              `json:"name"`
	Points      int                 `json:"points"`
	Friends     []domain.TaxNumber  `json:"friends"`
	FriendQuota int                 `json:"friend_quota"`
	Terminals   []domain.TerminalID `json:"terminals"`
}

// TerminalView is a read-only snapshot of a terminal. Balance is nil
// while the terminal is BUSY.
type TerminalView struct {
	ID      domain.TerminalID   `json:"id"`
	Mode    domain.TerminalMode `json:"mode"`
	Owner   domain.TaxNumber    `json:"owner"`
	Balance *domain.Cents       `json:"balance,omitempty"`
	Call    string              `json:"call,omitempty"`
}

// SMSResult reports the outcome of SendSMS. Cost is zero when the
// message was not delivered.
type SMSResult struct {
	Delivered     bool         `json:"delivered"`
	Communication string       `json:"communication,omitempty"`
	Cost          domain.Cents `json:"cost"`
}

// CallView describes a voice call. Cost and Duration are set once the
// call has ended.
type CallView struct {
	ID       string            `json:"id"`
	From     domain.TerminalID `json:"from"`
	To       domain.TerminalID `json:"to"`
	Duration int               `json:"duration"`
	Ended    bool              `json:"ended"`
	Cost     domain.Cents      `json:"cost"`
}

// CommunicationView is a settled communication as the ledger recorded it.
type CommunicationView struct {
	domain.Settlement
	SettledAt time.Time `json:"settled_at"`
}

func clientView(c *domain.Client) ClientView {
	v := ClientView{
		TaxNumber:   c.TaxNumber(),
		Name:        c.Name(),
		Points:      c.Points(),
		Friends:     c.Friends(),
		FriendQuota: max(c.FriendQuota(), 0),
		Terminals:   make([]domain.TerminalID, 0, c.NumberOfTerminals()),
	}
	for _, t := range c.Terminals() {
		v.Terminals = append(v.Terminals, t.ID())
	}
	return v
}

func terminalView(t *domain.Terminal) TerminalView {
	v := TerminalView{
		ID:   t.ID(),
		Mode: t.Mode(),
	}
	if owner := t.Owner(); owner != nil {
		v.Owner = owner.TaxNumber()
	}
	if b, err := t.Balance(); err == nil {
		v.Balance = &b
	}
	if c := t.Ongoing(); c != nil {
		v.Call = c.ID()
	}
	return v
}

func callView(c *domain.Communication) CallView {
	v := CallView{
		ID:       c.ID(),
		From:     c.From().ID(),
		To:       c.To().ID(),
		Duration: c.Size(),
		Ended:    c.Ended(),
	}
	if cost, err := c.Cost(); err == nil {
		v.Cost = cost
	}
	return v
}
