// Package inventory servicios de dominio para valorizar existencias en movimiento.
// El costo unitario es el promedio ponderado que mantiene el catálogo.
package inventory

import "github.com/shopspring/decimal"

// LineValue valor de una cantidad (con o sin signo) al costo unitario dado.
func LineValue(qty int64, unitCost decimal.Decimal) decimal.Decimal {
	if qty < 0 {
		qty = -qty
	}
	return unitCost.Mul(decimal.NewFromInt(qty))
}

// ShrinkValue valor de la merma de un renglón: lo enviado que no llegó.
// Sin merma (o con recepción pendiente, received < 0) devuelve cero.
func ShrinkValue(sent, received int64, unitCost decimal.Decimal) decimal.Decimal {
	if received < 0 || received >= sent {
		return decimal.Zero
	}
	return LineValue(sent-received, unitCost)
}
