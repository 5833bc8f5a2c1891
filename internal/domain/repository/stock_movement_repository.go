package repository

import (
	"context"

	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
)

// StockMovementRepository bitácora inmutable de mutaciones del libro.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByBranch lista movimientos de una sucursal; itemID vacío = todos los productos.
	ListByBranch(ctx context.Context, branchID, itemID string, limit, offset int) ([]*entity.StockMovement, error)
	ListByReference(ctx context.Context, referenceID string) ([]*entity.StockMovement, error)
}
