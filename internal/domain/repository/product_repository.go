package repository

import (
	"context"

	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
)

// ProductRepository lectura del catálogo. GetByID/GetBySKU devuelven (nil, nil) si no existe.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error)
}
