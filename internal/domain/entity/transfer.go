package entity

import "time"

// Estados de un traspaso (envío físico entre dos sucursales).
const (
	TransferCreated   = "created"
	TransferInTransit = "in_transit"
	TransferReceived  = "received"
)

// Tipos de traspaso.
const (
	TransferKindDispersion = "dispersion" // empuje iniciado por CEDIS
	TransferKindRequest    = "request"    // derivado de solicitudes aprobadas
)

// Transfer envío entre origen y destino. Se crea en in_transit junto con el débito del origen
// y se modifica una sola vez más, al recibirse.
type Transfer struct {
	ID                  string
	OriginBranchID      string
	DestinationBranchID string
	Kind                string
	State               string
	Notes               string
	CreatedBy           string
	ReceivedBy          string
	CreatedAt           time.Time
	ReceivedAt          *time.Time
	Lines               []TransferLine
	RequestIDs          []string
}

// TransferLine renglón de un traspaso. QuantityReceived es nil hasta la conciliación.
type TransferLine struct {
	ID               string
	TransferID       string
	ItemID           string
	QuantitySent     int64
	QuantityReceived *int64
}

// Confirmed indica si el renglón ya fue conciliado.
func (l TransferLine) Confirmed() bool {
	return l.QuantityReceived != nil
}

// Discrepancy cantidad enviada menos recibida; 0 mientras no se confirme.
func (l TransferLine) Discrepancy() int64 {
	if l.QuantityReceived == nil {
		return 0
	}
	return l.QuantitySent - *l.QuantityReceived
}

// Receive marca el traspaso como recibido aplicando las cantidades por producto.
// Solo in_transit admite recepción; un traspaso ya recibido no se vuelve a confirmar.
func (t *Transfer) Receive(received map[string]int64, actorID string, now time.Time) error {
	switch t.State {
	case TransferInTransit:
	case TransferReceived:
		return ErrAlreadyReceived
	default:
		return errTransition(t.State, TransferReceived)
	}
	for i := range t.Lines {
		if t.Lines[i].Confirmed() {
			return ErrAlreadyReceived
		}
		q, ok := received[t.Lines[i].ItemID]
		if !ok {
			q = t.Lines[i].QuantitySent
		}
		t.Lines[i].QuantityReceived = &q
	}
	t.State = TransferReceived
	t.ReceivedBy = actorID
	t.ReceivedAt = &now
	return nil
}

// TotalSent suma de cantidades enviadas.
func (t *Transfer) TotalSent() int64 {
	var n int64
	for _, l := range t.Lines {
		n += l.QuantitySent
	}
	return n
}

// TotalReceived suma de cantidades recibidas (0 si no se ha conciliado).
func (t *Transfer) TotalReceived() int64 {
	var n int64
	for _, l := range t.Lines {
		if l.QuantityReceived != nil {
			n += *l.QuantityReceived
		}
	}
	return n
}

// HasDiscrepancy indica si algún renglón se recibió con diferencia.
func (t *Transfer) HasDiscrepancy() bool {
	for _, l := range t.Lines {
		if l.Discrepancy() != 0 {
			return true
		}
	}
	return false
}

// Line busca el renglón de un producto.
func (t *Transfer) Line(itemID string) (TransferLine, bool) {
	for _, l := range t.Lines {
		if l.ItemID == itemID {
			return l, true
		}
	}
	return TransferLine{}, false
}
