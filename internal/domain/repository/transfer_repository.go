package repository

import (
	"context"

	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
)

// Rol de la sucursal en el filtro de traspasos.
const (
	TransferSideAny         = ""
	TransferSideOrigin      = "origin"
	TransferSideDestination = "destination"
)

// TransferFilter filtro de historial de traspasos.
type TransferFilter struct {
	BranchID string
	Side     string
	State    string
	Limit    int
	Offset   int
}

// TransferRepository puerto de persistencia de traspasos y sus renglones.
// GetByID y GetForUpdate devuelven (nil, nil) si no existe.
type TransferRepository interface {
	// Create inserta cabecera y renglones.
	Create(ctx context.Context, transfer *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error)
	// SaveReceipt persiste cantidades recibidas, estado, received_at y received_by.
	SaveReceipt(ctx context.Context, transfer *entity.Transfer) error
	List(ctx context.Context, filter TransferFilter) ([]*entity.Transfer, error)
}
