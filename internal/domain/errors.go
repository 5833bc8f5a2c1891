package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los casos de uso los envuelven con fmt.Errorf("...: %w") para dar contexto; comparar con errors.Is.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrForbidden    = errors.New("acceso denegado")

	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInsufficientHubStock   = errors.New("stock insuficiente en CEDIS")
	ErrInvalidStateTransition = errors.New("transición de estado inválida")
	ErrAlreadyReceived        = errors.New("el traspaso ya fue recibido")

	// ErrTransient fallo de almacenamiento reintentable (serialización, deadlock, conexión).
	ErrTransient = errors.New("fallo transitorio de almacenamiento")
)

// IsRetryable indica si el caller puede reintentar la misma operación tal cual.
// ErrAlreadyReceived no es reintentable pero sí señal de éxito idempotente (ver IsIdempotentSuccess).
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsIdempotentSuccess indica que el estado final deseado ya se cumple.
func IsIdempotentSuccess(err error) bool {
	return errors.Is(err, ErrAlreadyReceived)
}

// IsBusinessRule agrupa errores de negocio en los que el caller puede reintentar con otra cantidad.
func IsBusinessRule(err error) bool {
	return errors.Is(err, ErrInsufficientStock) || errors.Is(err, ErrInsufficientHubStock)
}
