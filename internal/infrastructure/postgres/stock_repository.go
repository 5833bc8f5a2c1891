package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
	"github.com/jhoicas/Traspasos-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo libro de inventario inventory_lines (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `branch_id, item_id, quantity, min_stock, updated_at`

func scanLine(row pgx.Row) (*entity.InventoryLine, error) {
	var l entity.InventoryLine
	if err := row.Scan(&l.BranchID, &l.ItemID, &l.Quantity, &l.MinStock, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// Get obtiene la existencia actual; sin registro devuelve la línea en cero.
func (r *StockRepo) Get(ctx context.Context, branchID, itemID string) (*entity.InventoryLine, error) {
	query := `SELECT ` + stockColumns + ` FROM inventory_lines WHERE branch_id = $1 AND item_id = $2`
	l, err := scanLine(r.q.QueryRow(ctx, query, branchID, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.InventoryLine{BranchID: branchID, ItemID: itemID}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return l, nil
}

// GetForUpdate crea la fila si no existe y la bloquea (SELECT FOR UPDATE) hasta el fin de la transacción.
// Así dos despachos concurrentes del mismo producto se serializan aunque la línea fuera nueva.
func (r *StockRepo) GetForUpdate(ctx context.Context, branchID, itemID string) (*entity.InventoryLine, error) {
	ensure := `
		INSERT INTO inventory_lines (branch_id, item_id, quantity, min_stock, updated_at)
		VALUES ($1, $2, 0, 0, now())
		ON CONFLICT (branch_id, item_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, ensure, branchID, itemID); err != nil {
		return nil, fmt.Errorf("ensure stock line: %w", err)
	}
	query := `SELECT ` + stockColumns + ` FROM inventory_lines WHERE branch_id = $1 AND item_id = $2 FOR UPDATE`
	l, err := scanLine(r.q.QueryRow(ctx, query, branchID, itemID))
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return l, nil
}

// Save persiste cantidad y mínimo (upsert por sucursal y producto).
func (r *StockRepo) Save(ctx context.Context, line *entity.InventoryLine) error {
	query := `
		INSERT INTO inventory_lines (branch_id, item_id, quantity, min_stock, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (branch_id, item_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, min_stock = EXCLUDED.min_stock, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, line.BranchID, line.ItemID, line.Quantity, line.MinStock); err != nil {
		return fmt.Errorf("save stock: %w", err)
	}
	return nil
}

// ListByBranch existencias de una sucursal ordenadas por producto.
func (r *StockRepo) ListByBranch(ctx context.Context, branchID string, limit, offset int) ([]*entity.InventoryLine, error) {
	query := `SELECT ` + stockColumns + ` FROM inventory_lines WHERE branch_id = $1 ORDER BY item_id LIMIT $2 OFFSET $3`
	return r.list(ctx, query, branchID, limit, offset)
}

// ListBelowMinimum líneas bajo su mínimo, mayor déficit primero.
func (r *StockRepo) ListBelowMinimum(ctx context.Context, branchID string) ([]*entity.InventoryLine, error) {
	query := `
		SELECT ` + stockColumns + ` FROM inventory_lines
		WHERE branch_id = $1 AND min_stock > 0 AND quantity < min_stock
		ORDER BY (min_stock - quantity) DESC, item_id`
	return r.list(ctx, query, branchID)
}

func (r *StockRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InventoryLine, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryLine
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
