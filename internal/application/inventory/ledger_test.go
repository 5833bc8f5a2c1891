package inventory_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Traspasos-api/internal/application/authz"
	"github.com/jhoicas/Traspasos-api/internal/application/dto"
	"github.com/jhoicas/Traspasos-api/internal/application/inventory"
	"github.com/jhoicas/Traspasos-api/internal/domain"
	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
	"github.com/jhoicas/Traspasos-api/internal/domain/repository"
	"github.com/jhoicas/Traspasos-api/internal/infrastructure/memory"
)

const hub = "cedis"

var admin = authz.Actor{UserID: "u-admin", Role: authz.RoleAdmin}

func newStore() *memory.Store {
	s := memory.NewStore()
	s.AddBranch(entity.Branch{ID: hub, Name: "CEDIS", IsHub: true})
	s.AddBranch(entity.Branch{ID: "suc-1", Name: "Centro"})
	s.AddBranch(entity.Branch{ID: "suc-2", Name: "Norte"})
	s.AddProduct(entity.Product{ID: "x", SKU: "SKU-X", Name: "Producto X", Cost: decimal.RequireFromString("2.50")})
	s.AddProduct(entity.Product{ID: "y", SKU: "SKU-Y", Name: "Producto Y", Cost: decimal.RequireFromString("10")})
	return s
}

func newLedgerUC(s *memory.Store, allowNegative bool) *inventory.LedgerUseCase {
	return inventory.NewLedgerUseCase(s, s.Repos(), inventory.NewLedger(allowNegative),
		authz.NewRolePolicy(hub), nil, nil, zerolog.Nop())
}

func ptr(v int64) *int64 { return &v }

func TestLedger_Apply_StockInsuficiente(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.SetStock("suc-1", "x", 3, 0)
	l := inventory.NewLedger(false)

	err := s.Run(ctx, func(repos repository.Repos) error {
		_, err := l.Apply(ctx, repos, inventory.Entry{BranchID: "suc-1", ItemID: "x", Delta: -5, Reason: entity.ReasonSale})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "SKU-X")

	line, _ := s.Repos().Stock.Get(ctx, "suc-1", "x")
	assert.Equal(t, int64(3), line.Quantity)
}

func TestLedger_Apply_PermiteNegativoConfigurado(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	l := inventory.NewLedger(true)

	var mov *entity.StockMovement
	err := s.Run(ctx, func(repos repository.Repos) error {
		var err error
		mov, err = l.Apply(ctx, repos, inventory.Entry{BranchID: "suc-1", ItemID: "y", Delta: -2, Reason: entity.ReasonSale})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-2), mov.BalanceAfter)
	assert.True(t, mov.TotalCost().Equal(decimal.NewFromInt(-20)))
}

func TestLedger_Apply_EstrictoIgnoraNegativoConfigurado(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	l := inventory.NewLedger(true)

	err := s.Run(ctx, func(repos repository.Repos) error {
		_, err := l.Apply(ctx, repos, inventory.Entry{BranchID: "suc-1", ItemID: "y", Delta: -2, Reason: entity.ReasonTransferOut, Strict: true})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestLedger_Apply_Validaciones(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	l := inventory.NewLedger(false)

	cases := []inventory.Entry{
		{BranchID: "suc-1", ItemID: "x", Delta: 0, Reason: entity.ReasonAdjustment},
		{BranchID: "suc-1", ItemID: "x", Delta: 1, Reason: "regalo"},
		{BranchID: "", ItemID: "x", Delta: 1, Reason: entity.ReasonAdjustment},
	}
	for _, e := range cases {
		err := s.Run(ctx, func(repos repository.Repos) error {
			_, err := l.Apply(ctx, repos, e)
			return err
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}

	err := s.Run(ctx, func(repos repository.Repos) error {
		_, err := l.Apply(ctx, repos, inventory.Entry{BranchID: "suc-1", ItemID: "fantasma", Delta: 1, Reason: entity.ReasonAdjustment})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedgerUseCase_Read_ParSinRegistroEsCero(t *testing.T) {
	uc := newLedgerUC(newStore(), false)
	line, err := uc.Read(context.Background(), admin, "suc-1", "y")
	require.NoError(t, err)
	assert.Zero(t, line.Quantity)
}

func TestLedgerUseCase_AdjustStock_TodoONada(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.SetStock("suc-1", "x", 10, 0)
	s.SetStock("suc-1", "y", 1, 0)
	uc := newLedgerUC(s, false)

	_, err := uc.AdjustStock(ctx, admin, dto.StockAdjustmentRequest{
		BranchID: "suc-1",
		Items: []dto.StockAdjustmentItem{
			{ItemID: "x", Delta: ptr(5)},
			{ItemID: "y", Delta: ptr(-4)},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	x, _ := s.Repos().Stock.Get(ctx, "suc-1", "x")
	assert.Equal(t, int64(10), x.Quantity, "el primer renglón no debe quedar aplicado")
}

func TestLedgerUseCase_AdjustStock_ConteoFisico(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.SetStock("suc-1", "x", 10, 0)
	s.SetStock("suc-1", "y", 4, 0)
	uc := newLedgerUC(s, false)

	movs, err := uc.AdjustStock(ctx, admin, dto.StockAdjustmentRequest{
		BranchID: "suc-1",
		Items: []dto.StockAdjustmentItem{
			{ItemID: "x", CountedQuantity: ptr(7)},
			{ItemID: "y", CountedQuantity: ptr(4)}, // sin diferencia, sin movimiento
		},
	})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, int64(-3), movs[0].Delta)
	assert.Equal(t, entity.ReasonAdjustment, movs[0].Reason)

	x, _ := s.Repos().Stock.Get(ctx, "suc-1", "x")
	assert.Equal(t, int64(7), x.Quantity)
}

func TestLedgerUseCase_AdjustStock_Autorizacion(t *testing.T) {
	uc := newLedgerUC(newStore(), false)
	vendedor := authz.Actor{UserID: "v", BranchID: "suc-1", Role: authz.RoleVendedor}
	_, err := uc.AdjustStock(context.Background(), vendedor, dto.StockAdjustmentRequest{
		BranchID: "suc-1",
		Items:    []dto.StockAdjustmentItem{{ItemID: "x", Delta: ptr(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLedgerUseCase_AdjustStock_SucursalInexistente(t *testing.T) {
	uc := newLedgerUC(newStore(), false)
	_, err := uc.AdjustStock(context.Background(), admin, dto.StockAdjustmentRequest{
		BranchID: "suc-9",
		Items:    []dto.StockAdjustmentItem{{ItemID: "x", Delta: ptr(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedgerUseCase_RegisterSale(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.SetStock("suc-1", "x", 2, 0)
	uc := newLedgerUC(s, false)

	cajero := authz.Actor{UserID: "cajero", BranchID: "suc-1", Role: authz.RoleVendedor}
	sale := func(id string, qty int64) dto.RegisterSaleRequest {
		return dto.RegisterSaleRequest{BranchID: "suc-1", ItemID: "x", Quantity: qty, SaleID: id}
	}

	mov, err := uc.RegisterSale(ctx, cajero, sale("venta-1", 2))
	require.NoError(t, err)
	assert.Equal(t, entity.ReasonSale, mov.Reason)
	assert.Equal(t, "venta-1", mov.ReferenceID)
	assert.Zero(t, mov.BalanceAfter)

	_, err = uc.RegisterSale(ctx, cajero, sale("venta-2", 1))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = uc.RegisterSale(ctx, cajero, sale("venta-3", 0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	otra := authz.Actor{UserID: "otro", BranchID: "suc-2", Role: authz.RoleVendedor}
	_, err = uc.RegisterSale(ctx, otra, sale("venta-4", 1))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	movs, err := uc.ListMovements(ctx, admin, "suc-1", "x", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, movs, 1)
}

func TestLedgerUseCase_SetMinStockYListado(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.SetStock("suc-1", "x", 2, 0)
	uc := newLedgerUC(s, false)

	line, err := uc.SetMinStock(ctx, admin, dto.SetMinStockRequest{BranchID: "suc-1", ItemID: "x", MinStock: 8})
	require.NoError(t, err)
	assert.True(t, line.Below())

	lines, err := uc.ListStock(ctx, admin, "suc-1", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(8), lines[0].MinStock)
	assert.Equal(t, int64(2), lines[0].Quantity)
}
