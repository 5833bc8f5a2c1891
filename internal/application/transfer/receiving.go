package transfer

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/Traspasos-api/internal/application/authz"
	"github.com/jhoicas/Traspasos-api/internal/application/dto"
	"github.com/jhoicas/Traspasos-api/internal/application/events"
	"github.com/jhoicas/Traspasos-api/internal/application/inventory"
	"github.com/jhoicas/Traspasos-api/internal/domain"
	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
	"github.com/jhoicas/Traspasos-api/internal/domain/repository"
)

// ReceivingUseCase conciliación en destino: acredita lo recibido físicamente y cierra el traspaso.
type ReceivingUseCase struct {
	Deps
}

// NewReceivingUseCase construye el caso de uso de recepción.
func NewReceivingUseCase(deps Deps) *ReceivingUseCase {
	deps.defaults()
	return &ReceivingUseCase{Deps: deps}
}

// ConfirmReceipt confirma la recepción completa del traspaso en una sola llamada. Los renglones
// omitidos se dan por recibidos completos; las diferencias quedan registradas sin bloquear.
// Un traspaso ya recibido responde ErrAlreadyReceived sin volver a acreditar.
func (uc *ReceivingUseCase) ConfirmReceipt(ctx context.Context, actor authz.Actor, transferID string, in dto.ConfirmReceiptInput) (*entity.Transfer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	received := in.ReceivedMap()

	var t *entity.Transfer
	err := uc.TxRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		t, err = repos.Transfers.GetForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("traspaso %s: %w", transferID, domain.ErrNotFound)
		}
		if !uc.Authz.CanActOnBranch(actor, t.DestinationBranchID, authz.ActionReceive) {
			return domain.ErrForbidden
		}
		if t.State == entity.TransferReceived {
			return fmt.Errorf("traspaso %s: %w", transferID, domain.ErrAlreadyReceived)
		}
		for itemID, qty := range received {
			line, ok := t.Line(itemID)
			if !ok {
				return fmt.Errorf("%w: el producto %s no pertenece al traspaso", domain.ErrInvalidInput, itemID)
			}
			if qty > line.QuantitySent {
				return fmt.Errorf("%w: recibido %d de %s supera lo enviado %d", domain.ErrInvalidInput, qty, itemID, line.QuantitySent)
			}
		}
		if err := t.Receive(received, actor.UserID, uc.now()); err != nil {
			return fmt.Errorf("traspaso %s: %w", transferID, err)
		}

		lines := append([]entity.TransferLine(nil), t.Lines...)
		sort.Slice(lines, func(i, j int) bool { return lines[i].ItemID < lines[j].ItemID })
		for _, l := range lines {
			if *l.QuantityReceived == 0 {
				continue
			}
			if _, err := uc.Ledger.Apply(ctx, repos, inventory.Entry{
				BranchID:    t.DestinationBranchID,
				ItemID:      l.ItemID,
				Delta:       *l.QuantityReceived,
				Reason:      entity.ReasonTransferIn,
				ReferenceID: t.ID,
				ActorID:     actor.UserID,
			}); err != nil {
				return err
			}
		}
		return repos.Transfers.SaveReceipt(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, t.DestinationBranchID)
	logEvt := uc.Log.Info()
	if t.HasDiscrepancy() {
		logEvt = uc.Log.Warn()
	}
	logEvt.
		Str("transfer_id", t.ID).
		Str("destination", t.DestinationBranchID).
		Int64("sent", t.TotalSent()).
		Int64("received", t.TotalReceived()).
		Bool("has_discrepancy", t.HasDiscrepancy()).
		Msg("traspaso recibido")
	uc.publish(ctx, events.Event{
		Type:          events.TransferReceived,
		ActorID:       actor.UserID,
		TransferID:    t.ID,
		OriginID:      t.OriginBranchID,
		DestinationID: t.DestinationBranchID,
		Data: map[string]any{
			"has_discrepancy": t.HasDiscrepancy(),
			"sent":            t.TotalSent(),
			"received":        t.TotalReceived(),
		},
	})
	return t, nil
}

// Discrepancies renglones recibidos con diferencia. Vacío si no hubo diferencias;
// ErrInvalidStateTransition si el traspaso aún no se concilia.
func (uc *ReceivingUseCase) Discrepancies(ctx context.Context, actor authz.Actor, transferID string) ([]dto.DiscrepancyDTO, error) {
	t, err := getTransfer(ctx, uc.Repos, transferID)
	if err != nil {
		return nil, err
	}
	if !uc.canView(actor, t.OriginBranchID) && !uc.canView(actor, t.DestinationBranchID) {
		return nil, domain.ErrForbidden
	}
	if t.State != entity.TransferReceived {
		return nil, fmt.Errorf("traspaso %s en estado %s: %w", t.ID, t.State, domain.ErrInvalidStateTransition)
	}
	out := []dto.DiscrepancyDTO{}
	for _, l := range t.Lines {
		if d := l.Discrepancy(); d != 0 {
			out = append(out, dto.DiscrepancyDTO{ItemID: l.ItemID, Sent: l.QuantitySent, Received: *l.QuantityReceived, Discrepancy: d})
		}
	}
	return out, nil
}

func getTransfer(ctx context.Context, repos repository.Repos, id string) (*entity.Transfer, error) {
	t, err := repos.Transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("traspaso %s: %w", id, domain.ErrNotFound)
	}
	return t, nil
}
