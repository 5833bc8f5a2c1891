// Package authz define el colaborador de autorización que consumen los casos de uso de traspasos.
// La autenticación ocurre fuera (JWT); aquí solo se decide si un actor puede tocar los registros
// de una sucursal.
package authz

// Actor usuario autenticado que ejecuta un comando.
type Actor struct {
	UserID   string
	BranchID string
	Role     string
}

// Acciones sobre una sucursal.
const (
	ActionRead     = "read"
	ActionRequest  = "request"  // crear solicitudes de faltantes
	ActionDecide   = "decide"   // aprobar/rechazar solicitudes (CEDIS)
	ActionDispatch = "dispatch" // crear traspasos y debitar origen
	ActionReceive  = "receive"  // confirmar recepción en destino
	ActionAdjust   = "adjust"   // ajustes manuales y mínimos
	ActionSell     = "sell"     // descuento por venta del POS
)

// Roles conocidos.
const (
	RoleSuperAdmin      = "superadmin"
	RoleAdmin           = "admin"
	RoleGerenteCedis    = "gerente_cedis"
	RoleGerenteSucursal = "gerente_sucursal"
	RoleEncargado       = "encargado"
	RoleVendedor        = "vendedor"
	RoleSystem          = "system" // jobs internos (faltantes automáticos, importaciones)
)

// IsKnownRole indica si role es uno de los roles que entiende RolePolicy.
func IsKnownRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleGerenteCedis, RoleGerenteSucursal, RoleEncargado, RoleVendedor, RoleSystem:
		return true
	}
	return false
}

// Authorizer decide si el actor puede ejecutar la acción sobre la sucursal.
type Authorizer interface {
	CanActOnBranch(actor Actor, branchID, action string) bool
}

// RolePolicy regla por defecto basada en el rol y la sucursal del token.
//   - superadmin, admin, system y gerente_cedis: cualquier sucursal y acción.
//   - Personal del CEDIS (sucursal = HubBranchID) con rol gerente/encargado: decidir y despachar.
//   - Personal de sucursal: solo su propia sucursal; vendedor solo lee, solicita y vende.
type RolePolicy struct {
	HubBranchID string
}

// NewRolePolicy construye la política con la sucursal CEDIS configurada.
func NewRolePolicy(hubBranchID string) *RolePolicy {
	return &RolePolicy{HubBranchID: hubBranchID}
}

func (p *RolePolicy) CanActOnBranch(actor Actor, branchID, action string) bool {
	switch actor.Role {
	case RoleSuperAdmin, RoleAdmin, RoleSystem, RoleGerenteCedis:
		return true
	case "":
		return false
	}

	hubStaff := actor.BranchID == p.HubBranchID && p.HubBranchID != "" && actor.Role != RoleVendedor
	switch action {
	case ActionDecide:
		return hubStaff
	case ActionDispatch:
		// el personal de CEDIS solo debita el libro del propio CEDIS
		return hubStaff && branchID == p.HubBranchID
	}

	if actor.BranchID == "" || actor.BranchID != branchID {
		return false
	}
	switch actor.Role {
	case RoleGerenteSucursal, RoleEncargado:
		return true
	case RoleVendedor:
		return action == ActionRead || action == ActionRequest || action == ActionSell
	}
	return false
}
