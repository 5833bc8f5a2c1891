package entity

// Shortage faltante de una sucursal: producto por debajo de su mínimo configurado.
type Shortage struct {
	BranchID         string
	ItemID           string
	SKU              string
	Name             string
	Current          int64
	Minimum          int64
	HubAvailable     int64
	OpenRequestID    string // solicitud pending/approved existente, si la hay
	OpenRequestState string
}

// Missing unidades necesarias para volver al mínimo.
func (s Shortage) Missing() int64 {
	if s.Current >= s.Minimum {
		return 0
	}
	return s.Minimum - s.Current
}

// SuggestedUrgency urgencia según cobertura del mínimo: sin stock urgent, <25% high, <50% normal, resto low.
func (s Shortage) SuggestedUrgency() string {
	if s.Current <= 0 {
		return UrgencyUrgent
	}
	if s.Minimum <= 0 {
		return UrgencyLow
	}
	coverage := float64(s.Current) / float64(s.Minimum)
	switch {
	case coverage < 0.25:
		return UrgencyHigh
	case coverage < 0.5:
		return UrgencyNormal
	default:
		return UrgencyLow
	}
}
