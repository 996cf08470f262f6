// Package redis implements domain.Ledger on top of Redis.
//
// Layout, relative to the key prefix:
//
//	entry:{id}          marker used to drop duplicate entries
//	settlement:{id}     JSON call detail record
//	history:{terminal}  list of JSON entries, newest at the head
//	totals:{terminal}   hash of charged, paid and communications
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/prr-network/prr/internal/domain"
)

// DefaultPrefix is the key prefix used when WithPrefix is not given.
const DefaultPrefix = "prr:ledger:"

const (
	fieldCharged        = "charged"
	fieldPaid           = "paid"
	fieldCommunications = "communications"
)

// Ledger implements domain.Ledger using Redis.
type Ledger struct {
	client *backend.Client
	prefix string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPrefix sets the key prefix for every ledger key.
func WithPrefix(prefix string) Option {
	return func(l *Ledger) {
		if prefix != "" {
			l.prefix = prefix
		}
	}
}

// New connects to the Redis server at address.
func New(address, password string, db int, opts ...Option) *Ledger {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Ledger {
	l := &Ledger{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) entryKey(id string) string {
	return l.prefix + "entry:" + id
}

func (l *Ledger) settlementKey(id string) string {
	return l.prefix + "settlement:" + id
}

func (l *Ledger) historyKey(id domain.TerminalID) string {
	return l.prefix + "history:" + string(id)
}

func (l *Ledger) totalsKey(id domain.TerminalID) string {
	return l.prefix + "totals:" + string(id)
}

// Ping checks that the server is reachable.
func (l *Ledger) Ping(ctx context.Context) error {
	if err := l.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

type settlementRecord struct {
	Settlement domain.Settlement `json:"settlement"`
	SettledAt  time.Time         `json:"settled_at"`
}

// RecordSettlement stores the call detail record and appends the
// caller-side debit for s.
func (l *Ledger) RecordSettlement(ctx context.Context, s domain.Settlement, at time.Time) error {
	cdr, err := json.Marshal(settlementRecord{Settlement: s, SettledAt: at.UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal settlement: %w", err)
	}
	return l.append(ctx, domain.SettlementEntry(s, at), func(pipe backend.Pipeliner) {
		pipe.Set(ctx, l.settlementKey(s.ID), cdr, 0)
	})
}

// RecordPayment appends a credit for p.
func (l *Ledger) RecordPayment(ctx context.Context, p domain.Payment) error {
	return l.append(ctx, domain.PaymentEntry(p), nil)
}

// append writes e once; extra queues more commands into the same transaction.
func (l *Ledger) append(ctx context.Context, e domain.LedgerEntry, extra func(backend.Pipeliner)) error {
	e.Timestamp = e.Timestamp.UTC()
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	fresh, err := l.client.SetNX(ctx, l.entryKey(e.ID), string(e.Terminal), 0).Result()
	if err != nil {
		return fmt.Errorf("failed to claim entry %s: %w", e.ID, err)
	}
	if !fresh {
		return nil
	}

	_, err = l.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.LPush(ctx, l.historyKey(e.Terminal), data)
		switch e.EntryType {
		case domain.EntryDebit:
			pipe.HIncrBy(ctx, l.totalsKey(e.Terminal), fieldCharged, int64(e.Amount))
			pipe.HIncrBy(ctx, l.totalsKey(e.Terminal), fieldCommunications, 1)
		case domain.EntryCredit:
			pipe.HIncrBy(ctx, l.totalsKey(e.Terminal), fieldPaid, int64(e.Amount))
		}
		if extra != nil {
			extra(pipe)
		}
		return nil
	})
	if err != nil {
		// Release the marker so a retry is not mistaken for a duplicate.
		l.client.Del(ctx, l.entryKey(e.ID))
		return fmt.Errorf("failed to append entry %s: %w", e.ID, err)
	}
	return nil
}

// History returns up to limit entries for id, newest first.
func (l *Ledger) History(ctx context.Context, id domain.TerminalID, limit int) ([]domain.LedgerEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	raw, err := l.client.LRange(ctx, l.historyKey(id), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	out := make([]domain.LedgerEntry, 0, len(raw))
	for _, item := range raw {
		var e domain.LedgerEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Totals aggregates id's entries.
func (l *Ledger) Totals(ctx context.Context, id domain.TerminalID) (domain.Totals, error) {
	tot := domain.Totals{Terminal: id}

	fields, err := l.client.HGetAll(ctx, l.totalsKey(id)).Result()
	if err != nil {
		return tot, fmt.Errorf("failed to read totals: %w", err)
	}

	for name, val := range fields {
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return tot, fmt.Errorf("totals field %s: %w", name, err)
		}
		switch name {
		case fieldCharged:
			tot.Charged = domain.Cents(n)
		case fieldPaid:
			tot.Paid = domain.Cents(n)
		case fieldCommunications:
			tot.Communications = int(n)
		}
	}
	return tot, nil
}

// Settlement loads the call detail record stored for id.
func (l *Ledger) Settlement(ctx context.Context, id string) (domain.Settlement, time.Time, error) {
	raw, err := l.client.Get(ctx, l.settlementKey(id)).Bytes()
	if errors.Is(err, backend.Nil) {
		return domain.Settlement{}, time.Time{}, fmt.Errorf("%w: %s", domain.ErrCommunicationNotFound, id)
	}
	if err != nil {
		return domain.Settlement{}, time.Time{}, fmt.Errorf("failed to read settlement %s: %w", id, err)
	}

	var rec settlementRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Settlement{}, time.Time{}, fmt.Errorf("failed to unmarshal settlement: %w", err)
	}
	return rec.Settlement, rec.SettledAt, nil
}

// Close closes the redis client.
func (l *Ledger) Close() error {
	return l.client.Close()
}
