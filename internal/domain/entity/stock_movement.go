package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Motivos de movimiento del libro de inventario.
const (
	ReasonSale        = "sale"
	ReasonTransferOut = "transfer_out"
	ReasonTransferIn  = "transfer_in"
	ReasonAdjustment  = "adjustment"
	ReasonImport      = "import"
)

// ValidReason indica si el motivo es uno de los admitidos por el libro.
func ValidReason(reason string) bool {
	switch reason {
	case ReasonSale, ReasonTransferOut, ReasonTransferIn, ReasonAdjustment, ReasonImport:
		return true
	}
	return false
}

// StockMovement registro inmutable de cada mutación del libro (bitácora).
// La suma de Delta por (branch, item) reproduce la existencia actual.
type StockMovement struct {
	ID           string
	BranchID     string
	ItemID       string
	Delta        int64 // positivo entrada, negativo salida
	BalanceAfter int64
	Reason       string
	ReferenceID  string // traspaso o lote de ajuste
	ActorID      string
	UnitCost     decimal.Decimal
	CreatedAt    time.Time
}

// TotalCost valor del movimiento al costo unitario registrado.
func (m StockMovement) TotalCost() decimal.Decimal {
	return m.UnitCost.Mul(decimal.NewFromInt(m.Delta))
}
