package transfer

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/Traspasos-api/internal/application/authz"
	"github.com/jhoicas/Traspasos-api/internal/application/dto"
	"github.com/jhoicas/Traspasos-api/internal/application/events"
	"github.com/jhoicas/Traspasos-api/internal/application/inventory"
	"github.com/jhoicas/Traspasos-api/internal/domain"
	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
	"github.com/jhoicas/Traspasos-api/internal/domain/repository"
)

// Engine único componente que crea traspasos y debita el origen por un envío.
// Cada despacho es una sola transacción: o se debitan todos los renglones y se crea el traspaso
// in_transit, o no cambia nada.
type Engine struct {
	Deps
}

// NewEngine construye el motor de traspasos.
func NewEngine(deps Deps) *Engine {
	deps.defaults()
	return &Engine{Deps: deps}
}

// DispatchDirect dispersión: empuje de mercancía del origen al destino sin solicitud previa.
func (e *Engine) DispatchDirect(ctx context.Context, actor authz.Actor, in dto.DispatchDirectInput) (*entity.Transfer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !e.Authz.CanActOnBranch(actor, in.OriginBranchID, authz.ActionDispatch) {
		return nil, domain.ErrForbidden
	}
	if err := e.requireBranches(ctx, in.OriginBranchID, in.DestinationBranchID); err != nil {
		return nil, err
	}

	t := e.newTransfer(in.OriginBranchID, in.DestinationBranchID, entity.TransferKindDispersion, in.Notes, actor.UserID)
	for _, l := range in.Lines {
		t.Lines = append(t.Lines, entity.TransferLine{ID: uuid.New().String(), TransferID: t.ID, ItemID: l.ItemID, QuantitySent: l.Quantity})
	}

	err := e.TxRunner.Run(ctx, func(repos repository.Repos) error {
		return e.debitAndCreate(ctx, repos, t, actor.UserID)
	})
	if err != nil {
		return nil, err
	}
	e.afterDispatch(ctx, actor, t)
	return t, nil
}

// DispatchFromRequests despacha desde CEDIS las solicitudes aprobadas de una misma sucursal.
// Los renglones toman la cantidad aprobada (sumada por producto) y cada solicitud pasa a dispatched
// dentro de la misma transacción.
func (e *Engine) DispatchFromRequests(ctx context.Context, actor authz.Actor, in dto.DispatchFromRequestsInput) (*entity.Transfer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if e.HubBranchID == "" {
		return nil, fmt.Errorf("%w: CEDIS no configurado", domain.ErrInvalidInput)
	}
	if !e.Authz.CanActOnBranch(actor, e.HubBranchID, authz.ActionDispatch) {
		return nil, domain.ErrForbidden
	}

	ids := append([]string(nil), in.RequestIDs...)
	sort.Strings(ids)

	var t *entity.Transfer
	err := e.TxRunner.Run(ctx, func(repos repository.Repos) error {
		requests := make([]*entity.TransferRequest, 0, len(ids))
		for _, id := range ids {
			req, err := lockRequest(ctx, repos, id)
			if err != nil {
				return err
			}
			if req.State != entity.RequestApproved {
				return fmt.Errorf("solicitud %s en estado %s: %w", req.ID, req.State, domain.ErrInvalidStateTransition)
			}
			if len(requests) > 0 && requests[0].BranchID != req.BranchID {
				return fmt.Errorf("%w: las solicitudes pertenecen a sucursales distintas (%s, %s)", domain.ErrInvalidInput, requests[0].BranchID, req.BranchID)
			}
			if req.BranchID == e.HubBranchID {
				return fmt.Errorf("%w: solicitud %s tiene como destino el CEDIS", domain.ErrInvalidInput, req.ID)
			}
			requests = append(requests, req)
		}

		t = e.newTransfer(e.HubBranchID, requests[0].BranchID, entity.TransferKindRequest, in.Notes, actor.UserID)
		byItem := map[string]int{}
		for _, req := range requests {
			qty := *req.QuantityApproved
			if i, ok := byItem[req.ItemID]; ok {
				t.Lines[i].QuantitySent += qty
			} else {
				byItem[req.ItemID] = len(t.Lines)
				t.Lines = append(t.Lines, entity.TransferLine{ID: uuid.New().String(), TransferID: t.ID, ItemID: req.ItemID, QuantitySent: qty})
			}
			t.RequestIDs = append(t.RequestIDs, req.ID)
		}

		if err := e.debitAndCreate(ctx, repos, t, actor.UserID); err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				// el CEDIS bajó de existencia después de aprobar
				return fmt.Errorf("%w: %w", domain.ErrInsufficientHubStock, err)
			}
			return err
		}
		for _, req := range requests {
			if err := req.MarkDispatched(t.ID, t.CreatedAt); err != nil {
				return err
			}
			if err := repos.Requests.Update(ctx, req); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, id := range t.RequestIDs {
		e.publish(ctx, events.Event{
			Type:       events.RequestDispatched,
			ActorID:    actor.UserID,
			BranchID:   t.DestinationBranchID,
			RequestID:  id,
			TransferID: t.ID,
		})
	}
	e.afterDispatch(ctx, actor, t)
	return t, nil
}

// debitAndCreate bloquea y debita cada renglón en orden de producto (orden de bloqueo determinista)
// y registra el traspaso in_transit. Cualquier error deja a la transacción del caller en rollback.
func (e *Engine) debitAndCreate(ctx context.Context, repos repository.Repos, t *entity.Transfer, actorID string) error {
	lines := append([]entity.TransferLine(nil), t.Lines...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].ItemID < lines[j].ItemID })

	for _, l := range lines {
		if l.QuantitySent <= 0 {
			return fmt.Errorf("%w: cantidad de %s debe ser mayor que 0", domain.ErrInvalidInput, l.ItemID)
		}
		if _, err := e.Ledger.Apply(ctx, repos, inventory.Entry{
			BranchID:    t.OriginBranchID,
			ItemID:      l.ItemID,
			Delta:       -l.QuantitySent,
			Reason:      entity.ReasonTransferOut,
			ReferenceID: t.ID,
			ActorID:     actorID,
			Strict:      true,
		}); err != nil {
			return err
		}
	}
	t.State = entity.TransferInTransit
	return repos.Transfers.Create(ctx, t)
}

func (e *Engine) newTransfer(origin, destination, kind, notes, actorID string) *entity.Transfer {
	return &entity.Transfer{
		ID:                  uuid.New().String(),
		OriginBranchID:      origin,
		DestinationBranchID: destination,
		Kind:                kind,
		State:               entity.TransferCreated,
		Notes:               notes,
		CreatedBy:           actorID,
		CreatedAt:           e.now(),
	}
}

func (e *Engine) requireBranches(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		b, err := e.Repos.Branches.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("sucursal %s: %w", id, domain.ErrNotFound)
		}
	}
	return nil
}

func (e *Engine) afterDispatch(ctx context.Context, actor authz.Actor, t *entity.Transfer) {
	e.invalidate(ctx, t.OriginBranchID)
	e.Log.Info().
		Str("transfer_id", t.ID).
		Str("kind", t.Kind).
		Str("origin", t.OriginBranchID).
		Str("destination", t.DestinationBranchID).
		Int("lines", len(t.Lines)).
		Int64("units", t.TotalSent()).
		Msg("traspaso despachado")
	e.publish(ctx, events.Event{
		Type:          events.TransferDispatched,
		ActorID:       actor.UserID,
		TransferID:    t.ID,
		OriginID:      t.OriginBranchID,
		DestinationID: t.DestinationBranchID,
		Data:          map[string]any{"kind": t.Kind, "lines": len(t.Lines), "units": t.TotalSent(), "request_ids": t.RequestIDs},
	})
}
