package memory

import (
	"testing"

	"github.com/prr-network/prr/internal/domain"
	"github.com/prr-network/prr/internal/infra/ledgertest"
)

var _ domain.Ledger = (*Ledger)(nil)

func TestLedger(t *testing.T) {
	ledgertest.Run(t, func(t *testing.T) domain.Ledger {
		return NewLedger()
	})
}
