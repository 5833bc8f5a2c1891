package entity

import "time"

// Branch representa una sucursal (tienda) o el CEDIS; cada una es dueña de su propio libro de inventario.
type Branch struct {
	ID        string
	Name      string
	IsHub     bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
