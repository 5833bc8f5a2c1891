// Package events expone los cambios de estado de solicitudes y traspasos para que otros
// colaboradores (notificaciones, reportes) los lean. El núcleo no depende de su entrega.
package events

import (
	"context"
	"time"
)

// Tipos de evento.
const (
	RequestCreated     = "request.created"
	RequestApproved    = "request.approved"
	RequestRejected    = "request.rejected"
	RequestDispatched  = "request.dispatched"
	TransferDispatched = "transfer.dispatched"
	TransferReceived   = "transfer.received"
	StockAdjusted      = "stock.adjusted"
)

// Event cambio de estado ya confirmado (post-commit).
type Event struct {
	Type          string         `json:"type"`
	OccurredAt    time.Time      `json:"occurred_at"`
	ActorID       string         `json:"actor_id,omitempty"`
	BranchID      string         `json:"branch_id,omitempty"`
	RequestID     string         `json:"request_id,omitempty"`
	TransferID    string         `json:"transfer_id,omitempty"`
	OriginID      string         `json:"origin_branch_id,omitempty"`
	DestinationID string         `json:"destination_branch_id,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
}

// Publisher publica eventos. Los errores se registran pero no deshacen la operación ya confirmada.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Nop descarta los eventos.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
