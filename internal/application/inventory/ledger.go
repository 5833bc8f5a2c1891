package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Traspasos-api/internal/domain"
	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
	"github.com/jhoicas/Traspasos-api/internal/domain/repository"
)

// Entry mutación a aplicar sobre una línea del libro.
type Entry struct {
	BranchID    string
	ItemID      string
	Delta       int64
	Reason      string
	ReferenceID string
	ActorID     string
	// Strict exige existencia suficiente aunque el libro permita negativos (salidas por traspaso).
	Strict bool
}

// Ledger primitiva de ajuste atómico del libro de inventario. No abre transacciones:
// siempre corre con los repositorios de la transacción del caller (motor de traspasos, ajustes, ventas).
type Ledger struct {
	allowNegative bool
	now           func() time.Time
}

// NewLedger construye la primitiva. allowNegative permite existencias bajo cero (INVENTORY_ALLOW_NEGATIVE).
func NewLedger(allowNegative bool) *Ledger {
	return &Ledger{allowNegative: allowNegative, now: time.Now}
}

// Apply bloquea la fila (branch, item) con SELECT FOR UPDATE, valida la existencia resultante,
// persiste el saldo y agrega el movimiento a la bitácora valorizado al costo actual del producto.
func (l *Ledger) Apply(ctx context.Context, repos repository.Repos, e Entry) (*entity.StockMovement, error) {
	if e.BranchID == "" || e.ItemID == "" {
		return nil, fmt.Errorf("%w: sucursal y producto son requeridos", domain.ErrInvalidInput)
	}
	if e.Delta == 0 {
		return nil, fmt.Errorf("%w: delta no puede ser 0", domain.ErrInvalidInput)
	}
	if !entity.ValidReason(e.Reason) {
		return nil, fmt.Errorf("%w: motivo %q", domain.ErrInvalidInput, e.Reason)
	}

	product, err := repos.Products.GetByID(ctx, e.ItemID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("producto %s: %w", e.ItemID, domain.ErrNotFound)
	}

	line, err := repos.Stock.GetForUpdate(ctx, e.BranchID, e.ItemID)
	if err != nil {
		return nil, err
	}
	newQty := line.Quantity + e.Delta
	if newQty < 0 && (e.Strict || !l.allowNegative) {
		return nil, fmt.Errorf("%w: producto %s en sucursal %s (disponible %d, requerido %d)",
			domain.ErrInsufficientStock, productLabel(product), e.BranchID, line.Quantity, -e.Delta)
	}

	now := l.now()
	line.Quantity = newQty
	line.UpdatedAt = now
	if err := repos.Stock.Save(ctx, line); err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:           uuid.New().String(),
		BranchID:     e.BranchID,
		ItemID:       e.ItemID,
		Delta:        e.Delta,
		BalanceAfter: newQty,
		Reason:       e.Reason,
		ReferenceID:  e.ReferenceID,
		ActorID:      e.ActorID,
		UnitCost:     product.Cost,
		CreatedAt:    now,
	}
	if mov.UnitCost.IsNegative() {
		mov.UnitCost = decimal.Zero
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// Read cantidad actual; 0 si el par (branch, item) no tiene registro.
func (l *Ledger) Read(ctx context.Context, repos repository.Repos, branchID, itemID string) (int64, error) {
	line, err := repos.Stock.Get(ctx, branchID, itemID)
	if err != nil {
		return 0, err
	}
	if line == nil {
		return 0, nil
	}
	return line.Quantity, nil
}

func productLabel(p *entity.Product) string {
	if p.SKU != "" {
		return p.SKU
	}
	return p.ID
}
