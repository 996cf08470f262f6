package domain

import (
	"context"
	"time"
)

// ─── Ports ──────────────────────────────────────────────────────────────────
// Infrastructure implements these; the billing service depends on them.

// Ledger stores settled communications and payments per terminal.
type Ledger interface {
	// RecordSettlement appends the caller-side debit for s.
	RecordSettlement(ctx context.Context, s Settlement, at time.Time) error

	// RecordPayment appends a credit for p.
	RecordPayment(ctx context.Context, p Payment) error

	// History returns up to limit entries for a terminal, newest first.
	// A limit <= 0 returns everything.
	History(ctx context.Context, id TerminalID, limit int) ([]LedgerEntry, error)

	// Totals aggregates the terminal's entries.
	Totals(ctx context.Context, id TerminalID) (Totals, error)

	// Settlement loads a recorded communication and the time it was
	// settled. It fails with ErrCommunicationNotFound for unknown ids.
	Settlement(ctx context.Context, id string) (Settlement, time.Time, error)

	Close() error
}
