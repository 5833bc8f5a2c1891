package repository

import (
	"context"

	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
)

// BranchRepository lectura de sucursales. GetByID devuelve (nil, nil) si no existe.
type BranchRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Branch, error)
	List(ctx context.Context) ([]*entity.Branch, error)
}
