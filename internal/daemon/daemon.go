// Package daemon wires configuration, the ledger backend, the billing
// service and the HTTP API into one long-running process.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prr-network/prr/internal/api"
	"github.com/prr-network/prr/internal/app/billing"
	"github.com/prr-network/prr/internal/domain"
	"github.com/prr-network/prr/internal/infra/memory"
	"github.com/prr-network/prr/internal/infra/redis"
	"github.com/prr-network/prr/internal/infra/sqlite"
)

const shutdownTimeout = 10 * time.Second

// Daemon is a configured, not yet listening, billing server.
type Daemon struct {
	cfg    Config
	log    *slog.Logger
	ledger domain.Ledger
	svc    *billing.Service
	api    *api.Server
}

// New opens the ledger backend and builds the service and API.
func New(ctx context.Context, cfg Config, log *slog.Logger) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ledger, err := OpenLedger(ctx, cfg.Ledger)
	if err != nil {
		return nil, err
	}

	svc := billing.New(ledger,
		billing.WithLogger(log),
		billing.WithMaxTerminals(cfg.Network.MaxTerminals),
	)

	srv := api.NewServer(svc)
	srv.SetLogger(log)
	if cfg.Metrics.Enabled {
		srv.EnableMetrics()
	}

	return &Daemon{cfg: cfg, log: log, ledger: ledger, svc: svc, api: srv}, nil
}

// Service returns the billing service.
func (d *Daemon) Service() *billing.Service { return d.svc }

// Handler returns the HTTP handler.
func (d *Daemon) Handler() http.Handler { return d.api.Handler() }

// Run serves HTTP until ctx is cancelled, then shuts down gracefully and
// closes the ledger.
func (d *Daemon) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              d.cfg.API.Addr(),
		Handler:           d.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		d.log.Info("http server listening", "addr", srv.Addr, "ledger", d.cfg.Ledger.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case err := <-errCh:
		runErr = fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		d.log.Info("shutdown: start")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			runErr = fmt.Errorf("shutdown: %w", err)
		} else {
			d.log.Info("shutdown: done")
		}
	}

	if err := d.ledger.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("close ledger: %w", err)
	}
	return runErr
}

// OpenLedger builds the ledger backend named in cfg.
func OpenLedger(ctx context.Context, cfg LedgerConfig) (domain.Ledger, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return memory.NewLedger(), nil

	case BackendSQLite:
		dir, err := expandHome(cfg.SQLiteDir)
		if err != nil {
			return nil, err
		}
		db, err := sqlite.Open(dir)
		if err != nil {
			return nil, fmt.Errorf("open sqlite ledger: %w", err)
		}
		return db, nil

	case BackendRedis:
		l := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithPrefix(cfg.RedisPrefix))
		if err := l.Ping(ctx); err != nil {
			l.Close()
			return nil, fmt.Errorf("open redis ledger: %w", err)
		}
		return l, nil

	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}
