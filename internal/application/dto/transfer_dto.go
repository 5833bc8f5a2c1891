package dto

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
)

var positive = []validation.Rule{
	validation.Required.Error("debe ser mayor que 0"),
	validation.Min(int64(1)).Error("debe ser mayor que 0"),
}

// CreateTransferRequestInput body para POST /api/transfer-requests.
type CreateTransferRequestInput struct {
	BranchID string `json:"branch_id"`
	ItemID   string `json:"item_id"`
	Quantity int64  `json:"quantity"`
	Urgency  string `json:"urgency,omitempty"` // urgent|high|normal|low; vacío = normal
	Notes    string `json:"notes,omitempty"`
}

func (r CreateTransferRequestInput) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.BranchID, validation.Required),
		validation.Field(&r.ItemID, validation.Required),
		validation.Field(&r.Quantity, positive...),
		validation.Field(&r.Urgency, validation.In(entity.UrgencyUrgent, entity.UrgencyHigh, entity.UrgencyNormal, entity.UrgencyLow)),
		validation.Field(&r.Notes, validation.Length(0, 500)),
	))
}

// ApproveRequestInput body para PUT /api/transfer-requests/:id/approve.
type ApproveRequestInput struct {
	QuantityApproved int64 `json:"quantity_approved"`
}

func (r ApproveRequestInput) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.QuantityApproved, positive...),
	))
}

// RejectRequestInput body para PUT /api/transfer-requests/:id/reject.
type RejectRequestInput struct {
	Reason string `json:"reason,omitempty"`
}

func (r RejectRequestInput) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.Reason, validation.Length(0, 500)),
	))
}

// TransferLineInput renglón a despachar.
type TransferLineInput struct {
	ItemID   string `json:"item_id"`
	Quantity int64  `json:"quantity"`
}

func (l TransferLineInput) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.ItemID, validation.Required),
		validation.Field(&l.Quantity, positive...),
	)
}

// DispatchDirectInput body para POST /api/transfers/dispersion.
type DispatchDirectInput struct {
	OriginBranchID      string              `json:"origin_branch_id"`
	DestinationBranchID string              `json:"destination_branch_id"`
	Lines               []TransferLineInput `json:"lines"`
	Notes               string              `json:"notes,omitempty"`
}

func (r DispatchDirectInput) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.OriginBranchID, validation.Required),
		validation.Field(&r.DestinationBranchID, validation.Required,
			validation.NotIn(r.OriginBranchID).Error("origen y destino deben ser distintos")),
		validation.Field(&r.Lines, validation.Required.Error("se requiere al menos un renglón")),
		validation.Field(&r.Notes, validation.Length(0, 500)),
	)
	if err != nil {
		return invalid(err)
	}
	seen := make(map[string]struct{}, len(r.Lines))
	for _, l := range r.Lines {
		if _, dup := seen[l.ItemID]; dup {
			return invalid(validation.Errors{"lines": validation.NewError("duplicate_item", "producto repetido: "+l.ItemID)})
		}
		seen[l.ItemID] = struct{}{}
	}
	return nil
}

// DispatchFromRequestsInput body para POST /api/transfers/from-requests.
type DispatchFromRequestsInput struct {
	RequestIDs []string `json:"request_ids"`
	Notes      string   `json:"notes,omitempty"`
}

func (r DispatchFromRequestsInput) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.RequestIDs, validation.Required, validation.Each(validation.Required)),
		validation.Field(&r.Notes, validation.Length(0, 500)),
	)
	if err != nil {
		return invalid(err)
	}
	seen := make(map[string]struct{}, len(r.RequestIDs))
	for _, id := range r.RequestIDs {
		if _, dup := seen[id]; dup {
			return invalid(validation.Errors{"request_ids": validation.NewError("duplicate_request", "solicitud repetida: "+id)})
		}
		seen[id] = struct{}{}
	}
	return nil
}

// ReceivedLineInput cantidad física recibida de un producto.
type ReceivedLineInput struct {
	ItemID           string `json:"item_id"`
	QuantityReceived int64  `json:"quantity_received"`
}

func (l ReceivedLineInput) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.ItemID, validation.Required),
		validation.Field(&l.QuantityReceived, validation.Min(int64(0))),
	)
}

// ConfirmReceiptInput body para POST /api/transfers/:id/receive.
// Los renglones omitidos se dan por recibidos completos.
type ConfirmReceiptInput struct {
	Lines []ReceivedLineInput `json:"lines"`
}

func (r ConfirmReceiptInput) Validate() error {
	if err := validation.ValidateStruct(&r, validation.Field(&r.Lines)); err != nil {
		return invalid(err)
	}
	seen := make(map[string]struct{}, len(r.Lines))
	for _, l := range r.Lines {
		if _, dup := seen[l.ItemID]; dup {
			return invalid(validation.Errors{"lines": validation.NewError("duplicate_item", "producto repetido: "+l.ItemID)})
		}
		seen[l.ItemID] = struct{}{}
	}
	return nil
}

// ReceivedMap convierte los renglones en item_id → cantidad.
func (r ConfirmReceiptInput) ReceivedMap() map[string]int64 {
	m := make(map[string]int64, len(r.Lines))
	for _, l := range r.Lines {
		m[l.ItemID] = l.QuantityReceived
	}
	return m
}

// TransferRequestDTO solicitud de traspaso.
type TransferRequestDTO struct {
	ID                string     `json:"id"`
	BranchID          string     `json:"branch_id"`
	ItemID            string     `json:"item_id"`
	QuantityRequested int64      `json:"quantity_requested"`
	QuantityApproved  *int64     `json:"quantity_approved,omitempty"`
	Urgency           string     `json:"urgency"`
	State             string     `json:"state"`
	Source            string     `json:"source"`
	Notes             string     `json:"notes,omitempty"`
	RejectionReason   string     `json:"rejection_reason,omitempty"`
	RequestedBy       string     `json:"requested_by,omitempty"`
	DecidedBy         string     `json:"decided_by,omitempty"`
	TransferID        string     `json:"transfer_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	DecidedAt         *time.Time `json:"decided_at,omitempty"`
	DispatchedAt      *time.Time `json:"dispatched_at,omitempty"`
}

// NewTransferRequestDTO mapea la solicitud.
func NewTransferRequestDTO(r *entity.TransferRequest) TransferRequestDTO {
	return TransferRequestDTO{
		ID:                r.ID,
		BranchID:          r.BranchID,
		ItemID:            r.ItemID,
		QuantityRequested: r.QuantityRequested,
		QuantityApproved:  r.QuantityApproved,
		Urgency:           r.Urgency,
		State:             r.State,
		Source:            r.Source,
		Notes:             r.Notes,
		RejectionReason:   r.RejectionReason,
		RequestedBy:       r.RequestedBy,
		DecidedBy:         r.DecidedBy,
		TransferID:        r.TransferID,
		CreatedAt:         r.CreatedAt,
		DecidedAt:         r.DecidedAt,
		DispatchedAt:      r.DispatchedAt,
	}
}

// NewTransferRequestDTOs mapea una lista de solicitudes.
func NewTransferRequestDTOs(list []*entity.TransferRequest) []TransferRequestDTO {
	out := make([]TransferRequestDTO, 0, len(list))
	for _, r := range list {
		out = append(out, NewTransferRequestDTO(r))
	}
	return out
}

// PendingGroupDTO solicitudes pendientes de una sucursal (vista del CEDIS).
type PendingGroupDTO struct {
	BranchID   string               `json:"branch_id"`
	BranchName string               `json:"branch_name,omitempty"`
	Requests   []TransferRequestDTO `json:"requests"`
}

// TransferLineDTO renglón de traspaso; Discrepancy solo tras la recepción.
type TransferLineDTO struct {
	ItemID           string `json:"item_id"`
	QuantitySent     int64  `json:"quantity_sent"`
	QuantityReceived *int64 `json:"quantity_received,omitempty"`
	Discrepancy      *int64 `json:"discrepancy,omitempty"`
}

// TransferDTO traspaso con sus renglones.
type TransferDTO struct {
	ID                  string            `json:"id"`
	OriginBranchID      string            `json:"origin_branch_id"`
	DestinationBranchID string            `json:"destination_branch_id"`
	Kind                string            `json:"kind"`
	State               string            `json:"state"`
	Notes               string            `json:"notes,omitempty"`
	CreatedBy           string            `json:"created_by,omitempty"`
	ReceivedBy          string            `json:"received_by,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	ReceivedAt          *time.Time        `json:"received_at,omitempty"`
	TotalSent           int64             `json:"total_sent"`
	TotalReceived       int64             `json:"total_received"`
	HasDiscrepancy      bool              `json:"has_discrepancy"`
	RequestIDs          []string          `json:"request_ids,omitempty"`
	Lines               []TransferLineDTO `json:"lines"`
}

// NewTransferDTO mapea el traspaso.
func NewTransferDTO(t *entity.Transfer) TransferDTO {
	out := TransferDTO{
		ID:                  t.ID,
		OriginBranchID:      t.OriginBranchID,
		DestinationBranchID: t.DestinationBranchID,
		Kind:                t.Kind,
		State:               t.State,
		Notes:               t.Notes,
		CreatedBy:           t.CreatedBy,
		ReceivedBy:          t.ReceivedBy,
		CreatedAt:           t.CreatedAt,
		ReceivedAt:          t.ReceivedAt,
		TotalSent:           t.TotalSent(),
		TotalReceived:       t.TotalReceived(),
		HasDiscrepancy:      t.HasDiscrepancy(),
		RequestIDs:          t.RequestIDs,
		Lines:               make([]TransferLineDTO, 0, len(t.Lines)),
	}
	for _, l := range t.Lines {
		ld := TransferLineDTO{ItemID: l.ItemID, QuantitySent: l.QuantitySent, QuantityReceived: l.QuantityReceived}
		if l.Confirmed() {
			d := l.Discrepancy()
			ld.Discrepancy = &d
		}
		out.Lines = append(out.Lines, ld)
	}
	return out
}

// NewTransferDTOs mapea una lista de traspasos.
func NewTransferDTOs(list []*entity.Transfer) []TransferDTO {
	out := make([]TransferDTO, 0, len(list))
	for _, t := range list {
		out = append(out, NewTransferDTO(t))
	}
	return out
}

// DiscrepancyDTO diferencia enviada - recibida de un renglón.
type DiscrepancyDTO struct {
	ItemID      string `json:"item_id"`
	Sent        int64  `json:"sent"`
	Received    int64  `json:"received"`
	Discrepancy int64  `json:"discrepancy"`
}
