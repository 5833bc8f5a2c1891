package transfer_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Traspasos-api/internal/application/authz"
	"github.com/jhoicas/Traspasos-api/internal/application/events"
	"github.com/jhoicas/Traspasos-api/internal/application/inventory"
	"github.com/jhoicas/Traspasos-api/internal/application/transfer"
	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
	"github.com/jhoicas/Traspasos-api/internal/infrastructure/memory"
)

const (
	hub     = "cedis"
	branchB = "suc-b"
	branchC = "suc-c"
)

var (
	cedisStaff = authz.Actor{UserID: "u-cedis", BranchID: hub, Role: authz.RoleGerenteCedis}
	managerB   = authz.Actor{UserID: "u-b", BranchID: branchB, Role: authz.RoleGerenteSucursal}
	managerC   = authz.Actor{UserID: "u-c", BranchID: branchC, Role: authz.RoleGerenteSucursal}
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, evt events.Event) error {
	return m.Called(ctx, evt).Error(0)
}

type fixture struct {
	store     *memory.Store
	requests  *transfer.RequestUseCase
	engine    *transfer.Engine
	receiving *transfer.ReceivingUseCase
	queries   *transfer.QueryUseCase
}

func newFixture(t *testing.T, publisher events.Publisher) *fixture {
	t.Helper()
	s := memory.NewStore()
	s.AddBranch(entity.Branch{ID: hub, Name: "CEDIS", IsHub: true})
	s.AddBranch(entity.Branch{ID: branchB, Name: "Sucursal B"})
	s.AddBranch(entity.Branch{ID: branchC, Name: "Sucursal C"})
	for _, id := range []string{"x", "y", "z"} {
		s.AddProduct(entity.Product{ID: id, SKU: "SKU-" + id, Name: "Producto " + id, Cost: decimal.NewFromInt(3)})
	}

	deps := transfer.Deps{
		TxRunner:    s,
		Repos:       s.Repos(),
		Ledger:      inventory.NewLedger(false),
		HubBranchID: hub,
		Authz:       authz.NewRolePolicy(hub),
		Publisher:   publisher,
		Log:         zerolog.Nop(),
	}
	return &fixture{
		store:     s,
		requests:  transfer.NewRequestUseCase(deps),
		engine:    transfer.NewEngine(deps),
		receiving: transfer.NewReceivingUseCase(deps),
		queries:   transfer.NewQueryUseCase(deps),
	}
}

func (f *fixture) qty(t *testing.T, branchID, itemID string) int64 {
	t.Helper()
	line, err := f.store.Repos().Stock.Get(context.Background(), branchID, itemID)
	require.NoError(t, err)
	return line.Quantity
}

// sumDeltas suma los movimientos de la bitácora con la referencia y el motivo dados.
func (f *fixture) sumDeltas(t *testing.T, referenceID, reason string) int64 {
	t.Helper()
	movs, err := f.store.Repos().Movements.ListByReference(context.Background(), referenceID)
	require.NoError(t, err)
	var n int64
	for _, m := range movs {
		if m.Reason == reason {
			n += m.Delta
		}
	}
	return n
}
