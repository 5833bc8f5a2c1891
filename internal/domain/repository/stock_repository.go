package repository

import (
	"context"

	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
)

// StockRepository puerto del libro de inventario por (sucursal, producto).
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get devuelve la línea actual; si no existe devuelve una línea en cero (sin registro == sin stock).
	Get(ctx context.Context, branchID, itemID string) (*entity.InventoryLine, error)
	// GetForUpdate asegura que la fila exista y la bloquea hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, branchID, itemID string) (*entity.InventoryLine, error)
	// Save persiste cantidad y mínimo de la línea.
	Save(ctx context.Context, line *entity.InventoryLine) error
	ListByBranch(ctx context.Context, branchID string, limit, offset int) ([]*entity.InventoryLine, error)
	// ListBelowMinimum líneas con mínimo configurado y cantidad menor a él, mayor déficit primero.
	ListBelowMinimum(ctx context.Context, branchID string) ([]*entity.InventoryLine, error)
}
