package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prr-network/prr/internal/domain"
	"github.com/prr-network/prr/internal/infra/ledgertest"
)

var _ domain.Ledger = (*DB)(nil)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// ─── Ledger Behavior ────────────────────────────────────────────────────────

func TestLedger(t *testing.T) {
	ledgertest.Run(t, func(t *testing.T) domain.Ledger {
		return newTestDB(t)
	})
}

// ─── Schema ─────────────────────────────────────────────────────────────────

func TestMigrations_TablesExist(t *testing.T) {
	db := newTestDB(t)

	for _, tbl := range []string{"settlements", "ledger_entries"} {
		t.Run(tbl, func(t *testing.T) {
			var name string
			err := db.db.QueryRow(
				`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, tbl,
			).Scan(&name)
			if err != nil {
				t.Fatalf("table %s not found: %v", tbl, err)
			}
		})
	}
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	s := domain.Settlement{ID: "s1", Type: domain.TypeVoice, From: "T1", To: "T2", Payer: 7, Size: 90, Cost: 12}
	if err := db.RecordSettlement(ctx, s, time.Now()); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer db.Close()

	tot, err := db.Totals(ctx, "T1")
	if err != nil {
		t.Fatal(err)
	}
	if tot.Charged != 12 || tot.Communications != 1 {
		t.Errorf("Totals() after reopen = %+v", tot)
	}
}

// ─── Call Detail Records ────────────────────────────────────────────────────

func TestSettlement_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	at := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)

	want := domain.Settlement{ID: "cdr-1", Type: domain.TypeSMS, From: "T1", To: "T9", Payer: 111, Size: 3, Cost: 2}
	if err := db.RecordSettlement(ctx, want, at); err != nil {
		t.Fatal(err)
	}

	got, gotAt, err := db.Settlement(ctx, "cdr-1")
	if err != nil {
		t.Fatalf("Settlement() error: %v", err)
	}
	if got != want {
		t.Errorf("Settlement() = %+v, want %+v", got, want)
	}
	if !gotAt.Equal(at) {
		t.Errorf("settled_at = %v, want %v", gotAt, at)
	}
}

func TestSettlement_NotFound(t *testing.T) {
	db := newTestDB(t)
	_, _, err := db.Settlement(context.Background(), "missing")
	if !errors.Is(err, domain.ErrCommunicationNotFound) {
		t.Errorf("Settlement(missing) error = %v, want ErrCommunicationNotFound", err)
	}
}
