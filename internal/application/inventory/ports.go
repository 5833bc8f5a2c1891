package inventory

import (
	"context"

	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
	"github.com/jhoicas/Traspasos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn retorna error se hace Rollback; si no, Commit. Garantiza atomicidad del libro y los traspasos.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
}

// StockCache caché de lectura del listado de existencias por sucursal (consistencia eventual).
// Las escrituras invalidan después del commit.
type StockCache interface {
	GetBranch(ctx context.Context, branchID string, limit, offset int) ([]*entity.InventoryLine, bool, error)
	SetBranch(ctx context.Context, branchID string, limit, offset int, lines []*entity.InventoryLine) error
	Invalidate(ctx context.Context, branchIDs ...string) error
}

// NoopCache no guarda nada.
type NoopCache struct{}

func (NoopCache) GetBranch(context.Context, string, int, int) ([]*entity.InventoryLine, bool, error) {
	return nil, false, nil
}
func (NoopCache) SetBranch(context.Context, string, int, int, []*entity.InventoryLine) error {
	return nil
}
func (NoopCache) Invalidate(context.Context, ...string) error { return nil }
