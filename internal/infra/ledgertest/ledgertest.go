// Package ledgertest holds the behavior every domain.Ledger adapter must
// share. Adapter tests call Run with a constructor for a fresh ledger.
package ledgertest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prr-network/prr/internal/domain"
)

// Run exercises a ledger built by newLedger. Each subtest gets its own.
func Run(t *testing.T, newLedger func(t *testing.T) domain.Ledger) {
	t.Helper()

	t.Run("EmptyTerminal", func(t *testing.T) {
		l := newLedger(t)
		ctx := context.Background()

		hist, err := l.History(ctx, "nobody", 10)
		require.NoError(t, err)
		assert.Empty(t, hist)

		tot, err := l.Totals(ctx, "nobody")
		require.NoError(t, err)
		assert.Equal(t, domain.Totals{Terminal: "nobody"}, tot)
	})

	t.Run("HistoryNewestFirst", func(t *testing.T) {
		l := newLedger(t)
		ctx := context.Background()
		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		require.NoError(t, l.RecordSettlement(ctx, settlement("s1", "T1", "T2", domain.TypeSMS, 2), base))
		require.NoError(t, l.RecordPayment(ctx, domain.Payment{ID: "p1", Terminal: "T1", Amount: 10, PaidAt: base.Add(time.Minute)}))
		require.NoError(t, l.RecordSettlement(ctx, settlement("s2", "T1", "T3", domain.TypeVoice, 12), base.Add(2*time.Minute)))
		require.NoError(t, l.RecordSettlement(ctx, settlement("s3", "T2", "T1", domain.TypeSMS, 4), base.Add(3*time.Minute)))

		hist, err := l.History(ctx, "T1", 0)
		require.NoError(t, err)
		require.Len(t, hist, 3)
		assert.Equal(t, "s2", hist[0].ID)
		assert.Equal(t, "p1", hist[1].ID)
		assert.Equal(t, "s1", hist[2].ID)

		assert.Equal(t, domain.EntryDebit, hist[0].EntryType)
		assert.Equal(t, domain.Cents(12), hist[0].Amount)
		assert.Equal(t, "VOICE to T3", hist[0].Description)
		assert.True(t, hist[0].Timestamp.Equal(base.Add(2*time.Minute)), "timestamp = %v", hist[0].Timestamp)
		assert.Equal(t, domain.EntryCredit, hist[1].EntryType)
		assert.Equal(t, domain.TerminalID("T1"), hist[1].Terminal)

		limited, err := l.History(ctx, "T1", 2)
		require.NoError(t, err)
		require.Len(t, limited, 2)
		assert.Equal(t, "s2", limited[0].ID)
	})

	t.Run("Totals", func(t *testing.T) {
		l := newLedger(t)
		ctx := context.Background()
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		require.NoError(t, l.RecordSettlement(ctx, settlement("a", "T1", "T2", domain.TypeSMS, 6), now))
		require.NoError(t, l.RecordSettlement(ctx, settlement("b", "T1", "T2", domain.TypeVoice, 15), now))
		require.NoError(t, l.RecordSettlement(ctx, settlement("c", "T1", "T2", domain.TypeSMS, 0), now))
		require.NoError(t, l.RecordPayment(ctx, domain.Payment{ID: "p", Terminal: "T1", Amount: 20, PaidAt: now}))

		tot, err := l.Totals(ctx, "T1")
		require.NoError(t, err)
		assert.Equal(t, domain.Totals{Terminal: "T1", Charged: 21, Paid: 20, Communications: 3}, tot)
		assert.Equal(t, domain.Cents(1), tot.Net())

		peer, err := l.Totals(ctx, "T2")
		require.NoError(t, err)
		assert.Zero(t, peer.Communications, "receivers are not charged")
	})

	t.Run("DuplicateIgnored", func(t *testing.T) {
		l := newLedger(t)
		ctx := context.Background()
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		s := settlement("dup", "T1", "T2", domain.TypeSMS, 6)
		require.NoError(t, l.RecordSettlement(ctx, s, now))
		require.NoError(t, l.RecordSettlement(ctx, s, now.Add(time.Second)))

		hist, err := l.History(ctx, "T1", 0)
		require.NoError(t, err)
		assert.Len(t, hist, 1)

		tot, err := l.Totals(ctx, "T1")
		require.NoError(t, err)
		assert.Equal(t, domain.Cents(6), tot.Charged)
	})

	t.Run("SettlementLookup", func(t *testing.T) {
		l := newLedger(t)
		ctx := context.Background()
		at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		want := domain.Settlement{ID: "cdr-7", Type: domain.TypeVoice, From: "T1", To: "T4", Payer: 42, Size: 95, Cost: 12}
		require.NoError(t, l.RecordSettlement(ctx, want, at))
		require.NoError(t, l.RecordSettlement(ctx, want, at.Add(time.Hour)))

		got, gotAt, err := l.Settlement(ctx, "cdr-7")
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.True(t, gotAt.Equal(at), "settled at %v, want first record", gotAt)

		_, _, err = l.Settlement(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrCommunicationNotFound)

		require.NoError(t, l.RecordPayment(ctx, domain.Payment{ID: "pay-1", Terminal: "T1", Amount: 5, PaidAt: at}))
		_, _, err = l.Settlement(ctx, "pay-1")
		assert.ErrorIs(t, err, domain.ErrCommunicationNotFound, "payments are not communications")
	})
}

func settlement(id string, from, to domain.TerminalID, typ domain.CommunicationType, cost domain.Cents) domain.Settlement {
	return domain.Settlement{ID: id, Type: typ, From: from, To: to, Payer: 1, Size: 1, Cost: cost}
}
