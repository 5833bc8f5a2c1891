package entity

import "time"

// InventoryLine existencia de un producto en una sucursal: (branch_id, item_id) → cantidad.
// Sin registro equivale a cantidad 0. Solo se modifica con el ajuste atómico del libro.
type InventoryLine struct {
	BranchID  string
	ItemID    string
	Quantity  int64
	MinStock  int64 // stock mínimo configurado; alimenta el detector de faltantes
	UpdatedAt time.Time
}

// Below indica si la línea está por debajo de su mínimo configurado.
func (l InventoryLine) Below() bool {
	return l.MinStock > 0 && l.Quantity < l.MinStock
}
