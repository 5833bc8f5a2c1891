package entity

import (
	"fmt"

	"github.com/jhoicas/Traspasos-api/internal/domain"
)

// ErrAlreadyReceived alias local para mantener las entidades legibles.
var ErrAlreadyReceived = domain.ErrAlreadyReceived

func errTransition(from, to string) error {
	return fmt.Errorf("%w: %s → %s", domain.ErrInvalidStateTransition, from, to)
}
