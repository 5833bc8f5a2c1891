package repository

import (
	"context"

	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
)

// TransferRequestFilter filtro para listar solicitudes. Campos vacíos no filtran.
type TransferRequestFilter struct {
	BranchID string
	ItemID   string
	States   []string
}

// TransferRequestRepository puerto de persistencia de solicitudes de traspaso.
// GetByID y GetForUpdate devuelven (nil, nil) si no existe.
type TransferRequestRepository interface {
	Create(ctx context.Context, req *entity.TransferRequest) error
	GetByID(ctx context.Context, id string) (*entity.TransferRequest, error)
	GetForUpdate(ctx context.Context, id string) (*entity.TransferRequest, error)
	Update(ctx context.Context, req *entity.TransferRequest) error
	// List ordena por urgencia (urgent primero) y luego por antigüedad.
	List(ctx context.Context, filter TransferRequestFilter) ([]*entity.TransferRequest, error)
}
