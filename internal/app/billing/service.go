// Package billing serializes access to one domain.Network and persists
// what it settles. Every exported method is atomic with respect to the
// others; ledger writes happen after the network lock is released.
package billing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prr-network/prr/internal/domain"
	"github.com/prr-network/prr/internal/infra/observability"
	"github.com/prr-network/prr/internal/logging"
)

// Service is the application layer over a Network and a Ledger.
type Service struct {
	mu  sync.Mutex
	net *domain.Network

	ledger domain.Ledger
	log    *slog.Logger
	now    func() time.Time
	newID  func() string

	netOpts []domain.Option
	pending []pendingSettlement
}

type pendingSettlement struct {
	settlement domain.Settlement
	at         time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock sets the time source for ledger timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the source of communication and payment ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithMaxTerminals caps the terminals per client (0 = unbounded).
func WithMaxTerminals(n int) Option {
	return func(s *Service) {
		s.netOpts = append(s.netOpts, domain.WithMaxTerminals(n))
	}
}

// New creates a service with an empty network backed by ledger.
func New(ledger domain.Ledger, opts ...Option) *Service {
	s := &Service{
		ledger: ledger,
		log:    logging.NewNop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	netOpts := append(s.netOpts,
		domain.WithIDGenerator(s.newID),
		domain.WithSettlementHook(s.settled),
	)
	s.net = domain.NewNetwork(netOpts...)
	return s
}

// settled runs inside the network lock whenever a communication ends.
func (s *Service) settled(c *domain.Communication) {
	st, err := c.Settlement()
	if err != nil {
		s.log.Error("settlement unavailable", "communication", c.ID(), "error", err)
		return
	}
	s.pending = append(s.pending, pendingSettlement{settlement: st, at: s.now()})

	observability.ObserveSettlement(st)
	s.log.Info("communication settled",
		"communication", st.ID,
		"type", st.Type.String(),
		"terminal", st.From,
		"to", st.To,
		"client", st.Payer,
		"size", st.Size,
		"cost", st.Cost,
	)
}

// takePending hands over the settlements collected so far. Callers must
// hold s.mu.
func (s *Service) takePending() []pendingSettlement {
	out := s.pending
	s.pending = nil
	return out
}

// persist writes settlements to the ledger. It must run without s.mu.
func (s *Service) persist(ctx context.Context, batch []pendingSettlement) error {
	for _, p := range batch {
		if err := s.ledger.RecordSettlement(ctx, p.settlement, p.at); err != nil {
			s.log.Error("ledger write failed", "communication", p.settlement.ID, "error", err)
			return fmt.Errorf("record settlement %s: %w", p.settlement.ID, err)
		}
	}
	return nil
}

// reject records a refused operation and returns err unchanged.
func (s *Service) reject(op string, err error, attrs ...any) error {
	observability.ObserveRejected(op, err)
	s.log.Debug("operation rejected", append([]any{"op", op, "error", err}, attrs...)...)
	return err
}

func (s *Service) client(tax domain.TaxNumber) (*domain.Client, error) {
	c, ok := s.net.Client(tax)
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrClientNotFound, tax)
	}
	return c, nil
}

func (s *Service) terminal(id domain.TerminalID) (*domain.Terminal, error) {
	t, ok := s.net.Terminal(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTerminalNotFound, id)
	}
	return t, nil
}

// Quote prices a hypothetical communication without touching the network.
func Quote(typ domain.CommunicationType, size, points, friends int) domain.Cents {
	return domain.ComputeCost(typ, size, points, friends)
}
