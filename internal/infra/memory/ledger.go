// Package memory provides an in-process domain.Ledger. It is the default
// backend and what the service tests run against.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/prr-network/prr/internal/domain"
)

// Ledger keeps entries per terminal in insertion order.
type Ledger struct {
	mu      sync.RWMutex
	entries map[domain.TerminalID][]domain.LedgerEntry
	totals  map[domain.TerminalID]domain.Totals
	seen    map[string]struct{}
	settled map[string]settledAt
}

type settledAt struct {
	s  domain.Settlement
	at time.Time
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		entries: make(map[domain.TerminalID][]domain.LedgerEntry),
		totals:  make(map[domain.TerminalID]domain.Totals),
		seen:    make(map[string]struct{}),
		settled: make(map[string]settledAt),
	}
}

// RecordSettlement appends the caller-side debit for s.
func (l *Ledger) RecordSettlement(_ context.Context, s domain.Settlement, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, dup := l.settled[s.ID]; !dup {
		l.settled[s.ID] = settledAt{s: s, at: at}
	}
	l.append(domain.SettlementEntry(s, at))
	return nil
}

// RecordPayment appends a credit for p.
func (l *Ledger) RecordPayment(_ context.Context, p domain.Payment) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.append(domain.PaymentEntry(p))
	return nil
}

// append must be called with mu held.
func (l *Ledger) append(e domain.LedgerEntry) {
	if _, dup := l.seen[e.ID]; dup {
		return
	}
	l.seen[e.ID] = struct{}{}
	l.entries[e.Terminal] = append(l.entries[e.Terminal], e)

	tot := l.totals[e.Terminal]
	tot.Terminal = e.Terminal
	switch e.EntryType {
	case domain.EntryDebit:
		tot.Charged += e.Amount
		tot.Communications++
	case domain.EntryCredit:
		tot.Paid += e.Amount
	}
	l.totals[e.Terminal] = tot
}

// History returns up to limit entries for id, newest first.
func (l *Ledger) History(_ context.Context, id domain.TerminalID, limit int) ([]domain.LedgerEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	src := l.entries[id]
	out := slices.Clone(src)
	slices.Reverse(out)
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// Totals aggregates id's entries.
func (l *Ledger) Totals(_ context.Context, id domain.TerminalID) (domain.Totals, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	tot, ok := l.totals[id]
	if !ok {
		return domain.Totals{Terminal: id}, nil
	}
	return tot, nil
}

// Settlement returns the recorded communication id.
func (l *Ledger) Settlement(_ context.Context, id string) (domain.Settlement, time.Time, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, ok := l.settled[id]
	if !ok {
		return domain.Settlement{}, time.Time{}, fmt.Errorf("%w: %s", domain.ErrCommunicationNotFound, id)
	}
	return rec.s, rec.at, nil
}

// Close is a no-op.
func (l *Ledger) Close() error { return nil }
