package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prr-network/prr/internal/domain"
	"github.com/prr-network/prr/internal/infra/ledgertest"
	"github.com/prr-network/prr/internal/infra/redis"
)

func newTestLedger(t *testing.T, opts ...redis.Option) (*redis.Ledger, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	l := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { l.Close() })
	return l, mr
}

func TestRedisLedger_Contract(t *testing.T) {
	ledgertest.Run(t, func(t *testing.T) domain.Ledger {
		l, _ := newTestLedger(t)
		return l
	})
}

func TestRedisLedger_Prefix(t *testing.T) {
	l, mr := newTestLedger(t, redis.WithPrefix("test:"))
	ctx := context.Background()

	s := domain.Settlement{ID: "c1", Type: domain.TypeSMS, From: "T1", To: "T2", Payer: 1, Size: 1, Cost: 2}
	require.NoError(t, l.RecordSettlement(ctx, s, time.Now()))

	assert.True(t, mr.Exists("test:entry:c1"))
	assert.True(t, mr.Exists("test:history:T1"))
	assert.Equal(t, "2", mr.HGet("test:totals:T1", "charged"))
	assert.False(t, mr.Exists(redis.DefaultPrefix+"history:T1"))
}

func TestRedisLedger_Ping(t *testing.T) {
	l, mr := newTestLedger(t)
	require.NoError(t, l.Ping(context.Background()))

	mr.Close()
	assert.Error(t, l.Ping(context.Background()))
}
