package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/prr-network/prr/internal/domain"
)

// ─── Ledger Schema ──────────────────────────────────────────────────────────

// LedgerMigrations returns the ledger schema statements.
// Each string is a single SQL statement (SQLite executes one at a time).
func LedgerMigrations() []string {
	return []string{
		// Call detail records, one per settled communication
		`CREATE TABLE IF NOT EXISTS settlements (
			id            TEXT PRIMARY KEY,
			type          TEXT NOT NULL,
			from_terminal TEXT NOT NULL,
			to_terminal   TEXT NOT NULL,
			payer         INTEGER NOT NULL,
			size          INTEGER NOT NULL,
			cost          INTEGER NOT NULL,
			settled_at    TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_settlements_from ON settlements(from_terminal)`,

		// Per-terminal account history
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			seq         INTEGER PRIMARY KEY AUTOINCREMENT,
			id          TEXT NOT NULL UNIQUE,
			terminal_id TEXT NOT NULL,
			entry_type  TEXT NOT NULL,
			amount      INTEGER NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_terminal ON ledger_entries(terminal_id, seq)`,
	}
}

// ─── Ledger Operations ──────────────────────────────────────────────────────

// RecordSettlement stores the call detail record and the caller's debit.
// Recording the same settlement twice is a no-op.
func (db *DB) RecordSettlement(ctx context.Context, s domain.Settlement, at time.Time) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO settlements (id, type, from_terminal, to_terminal, payer, size, cost, settled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Type.String(), string(s.From), string(s.To), int(s.Payer), s.Size, int64(s.Cost), formatTime(at))
	if err != nil {
		return fmt.Errorf("insert settlement %s: %w", s.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	if err := insertEntry(ctx, tx, domain.SettlementEntry(s, at)); err != nil {
		return err
	}
	return tx.Commit()
}

// RecordPayment stores a credit entry.
func (db *DB) RecordPayment(ctx context.Context, p domain.Payment) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := insertEntry(ctx, tx, domain.PaymentEntry(p)); err != nil {
		return err
	}
	return tx.Commit()
}

func insertEntry(ctx context.Context, tx *sql.Tx, e domain.LedgerEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO ledger_entries (id, terminal_id, entry_type, amount, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, string(e.Terminal), string(e.EntryType), int64(e.Amount), e.Description, formatTime(e.Timestamp))
	if err != nil {
		return fmt.Errorf("insert ledger entry %s: %w", e.ID, err)
	}
	return nil
}

// History returns up to limit entries for a terminal, newest first.
func (db *DB) History(ctx context.Context, id domain.TerminalID, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, terminal_id, entry_type, amount, description, created_at
		FROM ledger_entries WHERE terminal_id = ?
		ORDER BY seq DESC LIMIT ?
	`, string(id), limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []domain.LedgerEntry
	for rows.Next() {
		var (
			e        domain.LedgerEntry
			terminal string
			typ      string
			amount   int64
			created  string
		)
		if err := rows.Scan(&e.ID, &terminal, &typ, &amount, &e.Description, &created); err != nil {
			return nil, err
		}
		e.Terminal = domain.TerminalID(terminal)
		e.EntryType = domain.EntryType(typ)
		e.Amount = domain.Cents(amount)
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Totals aggregates a terminal's entries.
func (db *DB) Totals(ctx context.Context, id domain.TerminalID) (domain.Totals, error) {
	var charged, paid int64
	var count int
	err := db.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN entry_type = 'DEBIT'  THEN amount END), 0),
			COALESCE(SUM(CASE WHEN entry_type = 'CREDIT' THEN amount END), 0),
			COUNT(CASE WHEN entry_type = 'DEBIT' THEN 1 END)
		FROM ledger_entries WHERE terminal_id = ?
	`, string(id)).Scan(&charged, &paid, &count)
	if err != nil {
		return domain.Totals{}, fmt.Errorf("query totals: %w", err)
	}
	return domain.Totals{
		Terminal:       id,
		Charged:        domain.Cents(charged),
		Paid:           domain.Cents(paid),
		Communications: count,
	}, nil
}

// Settlement loads a stored call detail record.
func (db *DB) Settlement(ctx context.Context, id string) (domain.Settlement, time.Time, error) {
	var (
		s        domain.Settlement
		typ      string
		from, to string
		payer    int
		cost     int64
		settled  string
	)
	err := db.db.QueryRowContext(ctx, `
		SELECT id, type, from_terminal, to_terminal, payer, size, cost, settled_at
		FROM settlements WHERE id = ?
	`, id).Scan(&s.ID, &typ, &from, &to, &payer, &s.Size, &cost, &settled)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Settlement{}, time.Time{}, fmt.Errorf("%w: %s", domain.ErrCommunicationNotFound, id)
	}
	if err != nil {
		return domain.Settlement{}, time.Time{}, err
	}
	s.Type, err = domain.ParseCommunicationType(typ)
	if err != nil {
		return domain.Settlement{}, time.Time{}, err
	}
	s.From, s.To = domain.TerminalID(from), domain.TerminalID(to)
	s.Payer = domain.TaxNumber(payer)
	s.Cost = domain.Cents(cost)
	at, _ := time.Parse(time.RFC3339Nano, settled)
	return s, at, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
