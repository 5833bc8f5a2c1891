package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
	"github.com/jhoicas/Traspasos-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo bitácora stock_movements (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, branch_id, item_id, delta, balance_after, reason, reference_id, actor_id, unit_cost, created_at`

// Create persiste un movimiento del libro.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `INSERT INTO stock_movements (` + movementColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.BranchID, m.ItemID, m.Delta, m.BalanceAfter, m.Reason,
		m.ReferenceID, m.ActorID, m.UnitCost, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// ListByBranch movimientos de una sucursal, más recientes primero; itemID vacío no filtra.
func (r *StockMovementRepo) ListByBranch(ctx context.Context, branchID, itemID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + ` FROM stock_movements
		WHERE branch_id = $1 AND ($2 = '' OR item_id = $2)
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4`
	return r.list(ctx, query, branchID, itemID, limit, offset)
}

// ListByReference movimientos de un traspaso o lote de ajuste en orden de registro.
func (r *StockMovementRepo) ListByReference(ctx context.Context, referenceID string) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE reference_id = $1 ORDER BY created_at, id`
	return r.list(ctx, query, referenceID)
}

func (r *StockMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.StockMovement, error) {
		var m entity.StockMovement
		err := row.Scan(&m.ID, &m.BranchID, &m.ItemID, &m.Delta, &m.BalanceAfter, &m.Reason,
			&m.ReferenceID, &m.ActorID, &m.UnitCost, &m.CreatedAt)
		return &m, err
	})
}
