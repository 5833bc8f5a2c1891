package dto

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
)

// StockLineDTO existencia de un producto en una sucursal.
type StockLineDTO struct {
	BranchID  string    `json:"branch_id"`
	ItemID    string    `json:"item_id"`
	Quantity  int64     `json:"quantity"`
	MinStock  int64     `json:"min_stock"`
	Below     bool      `json:"below_minimum"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// NewStockLineDTO mapea la línea del libro.
func NewStockLineDTO(l *entity.InventoryLine) StockLineDTO {
	return StockLineDTO{
		BranchID:  l.BranchID,
		ItemID:    l.ItemID,
		Quantity:  l.Quantity,
		MinStock:  l.MinStock,
		Below:     l.Below(),
		UpdatedAt: l.UpdatedAt,
	}
}

// StockAdjustmentItem ajuste de un producto: Delta (relativo) o CountedQuantity (conteo físico), no ambos.
type StockAdjustmentItem struct {
	ItemID          string `json:"item_id"`
	Delta           *int64 `json:"delta,omitempty"`
	CountedQuantity *int64 `json:"counted_quantity,omitempty"`
}

func (i StockAdjustmentItem) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.ItemID, validation.Required),
		validation.Field(&i.Delta, validation.By(func(any) error {
			switch {
			case i.Delta == nil && i.CountedQuantity == nil:
				return validation.NewError("required", "delta o counted_quantity es requerido")
			case i.Delta != nil && i.CountedQuantity != nil:
				return validation.NewError("exclusive", "delta y counted_quantity son excluyentes")
			case i.Delta != nil && *i.Delta == 0:
				return validation.NewError("zero", "delta no puede ser 0")
			}
			return nil
		})),
		validation.Field(&i.CountedQuantity, validation.Min(int64(0))),
	)
}

// StockAdjustmentRequest body para POST /api/inventory/adjustments. Se aplica todo o nada.
type StockAdjustmentRequest struct {
	BranchID string                `json:"branch_id"`
	Reason   string                `json:"reason,omitempty"` // adjustment (defecto) | import
	Notes    string                `json:"notes,omitempty"`
	Items    []StockAdjustmentItem `json:"items"`
}

func (r StockAdjustmentRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.BranchID, validation.Required),
		validation.Field(&r.Reason, validation.In(entity.ReasonAdjustment, entity.ReasonImport)),
		validation.Field(&r.Items, validation.Required, validation.Length(1, 500)),
	)
	if err != nil {
		return invalid(err)
	}
	seen := make(map[string]struct{}, len(r.Items))
	for _, it := range r.Items {
		if _, dup := seen[it.ItemID]; dup {
			return invalid(validation.Errors{"items": validation.NewError("duplicate_item", "producto repetido: "+it.ItemID)})
		}
		seen[it.ItemID] = struct{}{}
	}
	return nil
}

// RegisterSaleRequest body para POST /api/inventory/sales (descuento desde el POS).
type RegisterSaleRequest struct {
	BranchID string `json:"branch_id"`
	ItemID   string `json:"item_id"`
	Quantity int64  `json:"quantity"`
	SaleID   string `json:"sale_id"`
}

func (r RegisterSaleRequest) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.BranchID, validation.Required),
		validation.Field(&r.ItemID, validation.Required),
		validation.Field(&r.Quantity, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.SaleID, validation.Required),
	))
}

// SetMinStockRequest body para PUT /api/inventory/min-stock.
type SetMinStockRequest struct {
	BranchID string `json:"branch_id"`
	ItemID   string `json:"item_id"`
	MinStock int64  `json:"min_stock"`
}

func (r SetMinStockRequest) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.BranchID, validation.Required),
		validation.Field(&r.ItemID, validation.Required),
		validation.Field(&r.MinStock, validation.Min(int64(0))),
	))
}

// MovementDTO renglón de la bitácora del libro.
type MovementDTO struct {
	ID           string          `json:"id"`
	BranchID     string          `json:"branch_id"`
	ItemID       string          `json:"item_id"`
	Delta        int64           `json:"delta"`
	BalanceAfter int64           `json:"balance_after"`
	Reason       string          `json:"reason"`
	ReferenceID  string          `json:"reference_id,omitempty"`
	ActorID      string          `json:"actor_id,omitempty"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewMovementDTO mapea el movimiento con su valuación.
func NewMovementDTO(m *entity.StockMovement) MovementDTO {
	return MovementDTO{
		ID:           m.ID,
		BranchID:     m.BranchID,
		ItemID:       m.ItemID,
		Delta:        m.Delta,
		BalanceAfter: m.BalanceAfter,
		Reason:       m.Reason,
		ReferenceID:  m.ReferenceID,
		ActorID:      m.ActorID,
		UnitCost:     m.UnitCost,
		TotalCost:    m.TotalCost(),
		CreatedAt:    m.CreatedAt,
	}
}

// ShortageDTO faltante de una sucursal con la existencia disponible en CEDIS.
type ShortageDTO struct {
	BranchID         string `json:"branch_id"`
	ItemID           string `json:"item_id"`
	SKU              string `json:"sku,omitempty"`
	Name             string `json:"name,omitempty"`
	Current          int64  `json:"current"`
	Minimum          int64  `json:"minimum"`
	Missing          int64  `json:"missing"`
	HubAvailable     int64  `json:"hub_available"`
	SuggestedUrgency string `json:"suggested_urgency"`
	OpenRequestID    string `json:"open_request_id,omitempty"`
	OpenRequestState string `json:"open_request_state,omitempty"`
}

// NewShortageDTO mapea el faltante.
func NewShortageDTO(s entity.Shortage) ShortageDTO {
	return ShortageDTO{
		BranchID:         s.BranchID,
		ItemID:           s.ItemID,
		SKU:              s.SKU,
		Name:             s.Name,
		Current:          s.Current,
		Minimum:          s.Minimum,
		Missing:          s.Missing(),
		HubAvailable:     s.HubAvailable,
		SuggestedUrgency: s.SuggestedUrgency(),
		OpenRequestID:    s.OpenRequestID,
		OpenRequestState: s.OpenRequestState,
	}
}
