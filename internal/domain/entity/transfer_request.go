package entity

import "time"

// Estados de una solicitud de traspaso (faltante) de sucursal a CEDIS.
const (
	RequestPending    = "pending"
	RequestApproved   = "approved"
	RequestRejected   = "rejected"
	RequestDispatched = "dispatched"
)

// Urgencias en orden de prioridad descendente.
const (
	UrgencyUrgent = "urgent"
	UrgencyHigh   = "high"
	UrgencyNormal = "normal"
	UrgencyLow    = "low"
)

// Origen de la solicitud.
const (
	RequestSourceManual = "manual"
	RequestSourceAuto   = "auto"
)

// UrgencyRank devuelve 1 para urgent … 4 para low; 0 si la urgencia no es válida.
func UrgencyRank(u string) int {
	switch u {
	case UrgencyUrgent:
		return 1
	case UrgencyHigh:
		return 2
	case UrgencyNormal:
		return 3
	case UrgencyLow:
		return 4
	}
	return 0
}

// TransferRequest pedido de una sucursal al CEDIS por una cantidad de un producto.
// Estados terminales: rejected, dispatched.
type TransferRequest struct {
	ID                string
	BranchID          string // sucursal solicitante (destino del traspaso)
	ItemID            string
	QuantityRequested int64
	QuantityApproved  *int64
	Urgency           string
	State             string
	Source            string
	Notes             string
	RejectionReason   string
	RequestedBy       string
	DecidedBy         string
	TransferID        string
	CreatedAt         time.Time
	DecidedAt         *time.Time
	DispatchedAt      *time.Time
}

// Approve pasa de pending a approved con la cantidad aprobada.
func (r *TransferRequest) Approve(qty int64, actorID string, now time.Time) error {
	if r.State != RequestPending {
		return errTransition(r.State, RequestApproved)
	}
	r.State = RequestApproved
	r.QuantityApproved = &qty
	r.DecidedBy = actorID
	r.DecidedAt = &now
	return nil
}

// Reject pasa de pending a rejected guardando el motivo.
func (r *TransferRequest) Reject(reason, actorID string, now time.Time) error {
	if r.State != RequestPending {
		return errTransition(r.State, RequestRejected)
	}
	r.State = RequestRejected
	r.RejectionReason = reason
	r.DecidedBy = actorID
	r.DecidedAt = &now
	return nil
}

// MarkDispatched pasa de approved a dispatched referenciando el traspaso creado.
func (r *TransferRequest) MarkDispatched(transferID string, now time.Time) error {
	if r.State != RequestApproved {
		return errTransition(r.State, RequestDispatched)
	}
	r.State = RequestDispatched
	r.TransferID = transferID
	r.DispatchedAt = &now
	return nil
}
