package entity

import "github.com/shopspring/decimal"

// Product proyección de solo lectura del catálogo: lo que los traspasos necesitan para valorizar
// movimientos y armar la remisión. El CRUD del catálogo vive fuera de este servicio.
type Product struct {
	ID   string
	SKU  string
	Name string
	Cost decimal.Decimal // costo promedio ponderado
}
