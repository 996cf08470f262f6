package domain

import "time"

// ─── Ledger Types ───────────────────────────────────────────────────────────
// A terminal's account is a stream of entries: a DEBIT for every settled
// communication it originated, a CREDIT for every payment it received.

// EntryType is the accounting side of a ledger entry.
type EntryType string

const (
	EntryDebit  EntryType = "DEBIT"
	EntryCredit EntryType = "CREDIT"
)

// Settlement is the immutable record of an ended communication.
type Settlement struct {
	ID    string            `json:"id"`
	Type  CommunicationType `json:"type"`
	From  TerminalID        `json:"from"`
	To    TerminalID        `json:"to"`
	Payer TaxNumber         `json:"payer"`
	Size  int               `json:"size"`
	Cost  Cents             `json:"cost"`
}

// Payment is an amount paid into a terminal's account.
type Payment struct {
	ID       string     `json:"id"`
	Terminal TerminalID `json:"terminal"`
	Amount   Cents      `json:"amount"`
	PaidAt   time.Time  `json:"paid_at"`
}

// LedgerEntry is a single row of a terminal's account history.
type LedgerEntry struct {
	ID          string     `json:"id"`
	Timestamp   time.Time  `json:"timestamp"`
	EntryType   EntryType  `json:"entry_type"`
	Terminal    TerminalID `json:"terminal"`
	Amount      Cents      `json:"amount"`
	Description string     `json:"description,omitempty"`
}

// Totals aggregates a terminal's ledger.
type Totals struct {
	Terminal       TerminalID `json:"terminal"`
	Charged        Cents      `json:"charged"`
	Paid           Cents      `json:"paid"`
	Communications int        `json:"communications"`
}

// Net returns charges minus payments.
func (t Totals) Net() Cents { return t.Charged - t.Paid }

// SettlementEntry builds the caller-side debit row for s.
func SettlementEntry(s Settlement, at time.Time) LedgerEntry {
	return LedgerEntry{
		ID:          s.ID,
		Timestamp:   at,
		EntryType:   EntryDebit,
		Terminal:    s.From,
		Amount:      s.Cost,
		Description: s.Type.String() + " to " + string(s.To),
	}
}

// PaymentEntry builds the credit row for p.
func PaymentEntry(p Payment) LedgerEntry {
	return LedgerEntry{
		ID:          p.ID,
		Timestamp:   p.PaidAt,
		EntryType:   EntryCredit,
		Terminal:    p.Terminal,
		Amount:      p.Amount,
		Description: "payment",
	}
}
