package transfer

import (
	"context"
	"fmt"

	"github.com/jhoicas/Traspasos-api/internal/application/authz"
	"github.com/jhoicas/Traspasos-api/internal/application/dto"
	"github.com/jhoicas/Traspasos-api/internal/domain"
	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
	"github.com/jhoicas/Traspasos-api/internal/domain/repository"
)

// QueryUseCase consultas de traspasos para UI y reportes.
type QueryUseCase struct {
	Deps
}

// NewQueryUseCase construye las consultas.
func NewQueryUseCase(deps Deps) *QueryUseCase {
	deps.defaults()
	return &QueryUseCase{Deps: deps}
}

// Get detalle del traspaso con sus renglones; visible para origen y destino.
func (uc *QueryUseCase) Get(ctx context.Context, actor authz.Actor, id string) (*entity.Transfer, error) {
	t, err := getTransfer(ctx, uc.Repos, id)
	if err != nil {
		return nil, err
	}
	if !uc.canView(actor, t.OriginBranchID) && !uc.canView(actor, t.DestinationBranchID) {
		return nil, domain.ErrForbidden
	}
	return t, nil
}

// InTransitByDestination envíos en camino hacia la sucursal (pendientes de recibir).
func (uc *QueryUseCase) InTransitByDestination(ctx context.Context, actor authz.Actor, branchID string, page dto.PageRequest) ([]*entity.Transfer, error) {
	return uc.History(ctx, actor, branchID, repository.TransferSideDestination, entity.TransferInTransit, page)
}

// History traspasos donde la sucursal es origen, destino o ambos (side vacío), más recientes primero.
func (uc *QueryUseCase) History(ctx context.Context, actor authz.Actor, branchID, side, state string, page dto.PageRequest) ([]*entity.Transfer, error) {
	if branchID == "" {
		return nil, fmt.Errorf("%w: branch_id es requerido", domain.ErrInvalidInput)
	}
	switch side {
	case repository.TransferSideAny, repository.TransferSideOrigin, repository.TransferSideDestination:
	default:
		return nil, fmt.Errorf("%w: side %q", domain.ErrInvalidInput, side)
	}
	switch state {
	case "", entity.TransferCreated, entity.TransferInTransit, entity.TransferReceived:
	default:
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, state)
	}
	if !uc.canView(actor, branchID) {
		return nil, domain.ErrForbidden
	}
	page.DefaultPage()
	return uc.Repos.Transfers.List(ctx, repository.TransferFilter{
		BranchID: branchID,
		Side:     side,
		State:    state,
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
}
