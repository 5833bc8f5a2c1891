// Package transfer implementa el flujo de traspasos CEDIS ↔ sucursales: solicitudes de faltantes,
// despacho (dispersión directa o a partir de solicitudes aprobadas) y conciliación en destino.
package transfer

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Traspasos-api/internal/application/authz"
	"github.com/jhoicas/Traspasos-api/internal/application/events"
	"github.com/jhoicas/Traspasos-api/internal/application/inventory"
	"github.com/jhoicas/Traspasos-api/internal/domain/repository"
)

// DefaultRejectionReason motivo usado cuando el CEDIS rechaza sin especificar.
const DefaultRejectionReason = "Sin stock"

// Deps colaboradores compartidos por los casos de uso del paquete.
type Deps struct {
	TxRunner    inventory.TxRunner
	Repos       repository.Repos // atados al pool; nunca se usan dentro de TxRunner.Run
	Ledger      *inventory.Ledger
	HubBranchID string
	Authz       authz.Authorizer
	Cache       inventory.StockCache
	Publisher   events.Publisher
	Log         zerolog.Logger
	Now         func() time.Time
}

func (d *Deps) defaults() {
	if d.Cache == nil {
		d.Cache = inventory.NoopCache{}
	}
	if d.Publisher == nil {
		d.Publisher = events.Nop{}
	}
	if d.Authz == nil {
		d.Authz = authz.NewRolePolicy(d.HubBranchID)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
}

func (d *Deps) now() time.Time {
	return d.Now().UTC()
}

// canView lectura de registros de una sucursal: su propio personal o quien decide desde CEDIS.
func (d *Deps) canView(actor authz.Actor, branchID string) bool {
	return d.Authz.CanActOnBranch(actor, branchID, authz.ActionRead) ||
		d.Authz.CanActOnBranch(actor, branchID, authz.ActionDecide)
}

func (d *Deps) publish(ctx context.Context, evt events.Event) {
	evt.OccurredAt = d.now()
	if err := d.Publisher.Publish(ctx, evt); err != nil {
		d.Log.Warn().Err(err).Str("event", evt.Type).Msg("no se pudo publicar evento")
	}
}

func (d *Deps) invalidate(ctx context.Context, branchIDs ...string) {
	if err := d.Cache.Invalidate(ctx, branchIDs...); err != nil {
		d.Log.Warn().Err(err).Strs("branches", branchIDs).Msg("no se pudo invalidar caché de stock")
	}
}
