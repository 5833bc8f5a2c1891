package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/Traspasos-api/internal/application/authz"
	"github.com/jhoicas/Traspasos-api/internal/application/dto"
	"github.com/jhoicas/Traspasos-api/internal/application/events"
	"github.com/jhoicas/Traspasos-api/internal/domain"
	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
	"github.com/jhoicas/Traspasos-api/internal/domain/repository"
)

// RequestUseCase ciclo de vida de las solicitudes de traspaso:
// pending → approved | rejected, y approved → dispatched (solo desde el Engine).
type RequestUseCase struct {
	Deps
}

// NewRequestUseCase construye el gestor de solicitudes.
func NewRequestUseCase(deps Deps) *RequestUseCase {
	deps.defaults()
	return &RequestUseCase{Deps: deps}
}

// Create registra una solicitud pending de la sucursal al CEDIS.
func (uc *RequestUseCase) Create(ctx context.Context, actor authz.Actor, in dto.CreateTransferRequestInput) (*entity.TransferRequest, error) {
	return uc.create(ctx, actor, in, entity.RequestSourceManual)
}

func (uc *RequestUseCase) create(ctx context.Context, actor authz.Actor, in dto.CreateTransferRequestInput, source string) (*entity.TransferRequest, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.BranchID == uc.HubBranchID {
		return nil, fmt.Errorf("%w: el CEDIS no puede solicitarse traspasos a sí mismo", domain.ErrInvalidInput)
	}
	if !uc.Authz.CanActOnBranch(actor, in.BranchID, authz.ActionRequest) {
		return nil, domain.ErrForbidden
	}
	branch, err := uc.Repos.Branches.GetByID(ctx, in.BranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, fmt.Errorf("sucursal %s: %w", in.BranchID, domain.ErrNotFound)
	}
	product, err := uc.Repos.Products.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("producto %s: %w", in.ItemID, domain.ErrNotFound)
	}

	urgency := in.Urgency
	if urgency == "" {
		urgency = entity.UrgencyNormal
	}
	req := &entity.TransferRequest{
		ID:                uuid.New().String(),
		BranchID:          in.BranchID,
		ItemID:            in.ItemID,
		QuantityRequested: in.Quantity,
		Urgency:           urgency,
		State:             entity.RequestPending,
		Source:            source,
		Notes:             in.Notes,
		RequestedBy:       actor.UserID,
		CreatedAt:         uc.now(),
	}
	if err := uc.Repos.Requests.Create(ctx, req); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("ya existe una solicitud pendiente de %s para la sucursal %s: %w", productLabel(product), in.BranchID, domain.ErrDuplicate)
		}
		return nil, err
	}

	uc.publish(ctx, events.Event{
		Type:      events.RequestCreated,
		ActorID:   actor.UserID,
		BranchID:  req.BranchID,
		RequestID: req.ID,
		Data:      map[string]any{"item_id": req.ItemID, "quantity": req.QuantityRequested, "urgency": req.Urgency, "source": source},
	})
	return req, nil
}

// Approve aprueba con una cantidad (posiblemente parcial) que el CEDIS tiene disponible hoy.
func (uc *RequestUseCase) Approve(ctx context.Context, actor authz.Actor, id string, in dto.ApproveRequestInput) (*entity.TransferRequest, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !uc.Authz.CanActOnBranch(actor, uc.HubBranchID, authz.ActionDecide) {
		return nil, domain.ErrForbidden
	}

	var req *entity.TransferRequest
	err := uc.TxRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		req, err = lockRequest(ctx, repos, id)
		if err != nil {
			return err
		}
		if req.State != entity.RequestPending {
			return req.Approve(in.QuantityApproved, actor.UserID, uc.now())
		}
		if in.QuantityApproved > req.QuantityRequested {
			return fmt.Errorf("%w: cantidad aprobada %d mayor que la solicitada %d", domain.ErrInvalidInput, in.QuantityApproved, req.QuantityRequested)
		}
		available, err := uc.Ledger.Read(ctx, repos, uc.HubBranchID, req.ItemID)
		if err != nil {
			return err
		}
		if in.QuantityApproved > available {
			return fmt.Errorf("%w: producto %s (disponible %d, aprobado %d)", domain.ErrInsufficientHubStock, req.ItemID, available, in.QuantityApproved)
		}
		if err := req.Approve(in.QuantityApproved, actor.UserID, uc.now()); err != nil {
			return err
		}
		return repos.Requests.Update(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, events.Event{
		Type:      events.RequestApproved,
		ActorID:   actor.UserID,
		BranchID:  req.BranchID,
		RequestID: req.ID,
		Data:      map[string]any{"item_id": req.ItemID, "quantity_requested": req.QuantityRequested, "quantity_approved": in.QuantityApproved},
	})
	return req, nil
}

// Reject rechaza la solicitud (terminal). Sin motivo se guarda DefaultRejectionReason.
func (uc *RequestUseCase) Reject(ctx context.Context, actor authz.Actor, id string, in dto.RejectRequestInput) (*entity.TransferRequest, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !uc.Authz.CanActOnBranch(actor, uc.HubBranchID, authz.ActionDecide) {
		return nil, domain.ErrForbidden
	}
	reason := in.Reason
	if reason == "" {
		reason = DefaultRejectionReason
	}

	var req *entity.TransferRequest
	err := uc.TxRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		req, err = lockRequest(ctx, repos, id)
		if err != nil {
			return err
		}
		if err := req.Reject(reason, actor.UserID, uc.now()); err != nil {
			return err
		}
		return repos.Requests.Update(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, events.Event{
		Type:      events.RequestRejected,
		ActorID:   actor.UserID,
		BranchID:  req.BranchID,
		RequestID: req.ID,
		Data:      map[string]any{"item_id": req.ItemID, "reason": reason},
	})
	return req, nil
}

// Get detalle de una solicitud.
func (uc *RequestUseCase) Get(ctx context.Context, actor authz.Actor, id string) (*entity.TransferRequest, error) {
	req, err := uc.Repos.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("solicitud %s: %w", id, domain.ErrNotFound)
	}
	if !uc.canView(actor, req.BranchID) {
		return nil, domain.ErrForbidden
	}
	return req, nil
}

// ListPendingByBranch solicitudes pendientes de una sucursal, más urgentes primero.
func (uc *RequestUseCase) ListPendingByBranch(ctx context.Context, actor authz.Actor, branchID string) ([]*entity.TransferRequest, error) {
	return uc.listByState(ctx, actor, branchID, entity.RequestPending)
}

// ListApproved solicitudes aprobadas listas para despachar a la sucursal.
func (uc *RequestUseCase) ListApproved(ctx context.Context, actor authz.Actor, branchID string) ([]*entity.TransferRequest, error) {
	return uc.listByState(ctx, actor, branchID, entity.RequestApproved)
}

func (uc *RequestUseCase) listByState(ctx context.Context, actor authz.Actor, branchID, state string) ([]*entity.TransferRequest, error) {
	if branchID == "" {
		return nil, fmt.Errorf("%w: branch_id es requerido", domain.ErrInvalidInput)
	}
	if !uc.canView(actor, branchID) {
		return nil, domain.ErrForbidden
	}
	return uc.Repos.Requests.List(ctx, repository.TransferRequestFilter{BranchID: branchID, States: []string{state}})
}

// ListPendingGroupedByBranch vista del CEDIS: pendientes de todas las sucursales agrupadas,
// las sucursales con la solicitud más urgente/antigua primero.
func (uc *RequestUseCase) ListPendingGroupedByBranch(ctx context.Context, actor authz.Actor) ([]dto.PendingGroupDTO, error) {
	if !uc.canView(actor, uc.HubBranchID) {
		return nil, domain.ErrForbidden
	}
	pending, err := uc.Repos.Requests.List(ctx, repository.TransferRequestFilter{States: []string{entity.RequestPending}})
	if err != nil {
		return nil, err
	}
	branches, err := uc.Repos.Branches.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(branches))
	for _, b := range branches {
		names[b.ID] = b.Name
	}

	groups := []dto.PendingGroupDTO{}
	index := map[string]int{}
	for _, r := range pending {
		i, ok := index[r.BranchID]
		if !ok {
			i = len(groups)
			index[r.BranchID] = i
			groups = append(groups, dto.PendingGroupDTO{BranchID: r.BranchID, BranchName: names[r.BranchID]})
		}
		groups[i].Requests = append(groups[i].Requests, dto.NewTransferRequestDTO(r))
	}
	return groups, nil
}

// CreateFromShortages genera solicitudes automáticas para faltantes sin solicitud abierta.
// La cantidad cubre lo que falta para el mínimo y la urgencia sale de la cobertura actual.
func (uc *RequestUseCase) CreateFromShortages(ctx context.Context, shortages []entity.Shortage) ([]*entity.TransferRequest, error) {
	system := authz.Actor{UserID: "system", Role: authz.RoleSystem}
	var created []*entity.TransferRequest
	for _, s := range shortages {
		if s.OpenRequestID != "" || s.Missing() <= 0 || s.BranchID == uc.HubBranchID {
			continue
		}
		req, err := uc.create(ctx, system, dto.CreateTransferRequestInput{
			BranchID: s.BranchID,
			ItemID:   s.ItemID,
			Quantity: s.Missing(),
			Urgency:  s.SuggestedUrgency(),
			Notes:    fmt.Sprintf("Faltante detectado: existencia %d, mínimo %d", s.Current, s.Minimum),
		}, entity.RequestSourceAuto)
		if errors.Is(err, domain.ErrDuplicate) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("solicitud automática %s/%s: %w", s.BranchID, s.ItemID, err)
		}
		created = append(created, req)
	}
	if len(created) > 0 {
		uc.Log.Info().Int("requests", len(created)).Msg("solicitudes automáticas por faltante")
	}
	return created, nil
}

func lockRequest(ctx context.Context, repos repository.Repos, id string) (*entity.TransferRequest, error) {
	req, err := repos.Requests.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("solicitud %s: %w", id, domain.ErrNotFound)
	}
	return req, nil
}

func productLabel(p *entity.Product) string {
	if p.SKU != "" {
		return p.SKU
	}
	return p.ID
}
