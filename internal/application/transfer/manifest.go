package transfer

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Traspasos-api/internal/application/authz"
	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
	"github.com/jhoicas/Traspasos-api/internal/domain/inventory"
)

// ManifestLine renglón de la remisión con datos del catálogo y su valor al costo.
type ManifestLine struct {
	SKU      string
	Name     string
	Sent     int64
	Received *int64
	UnitCost decimal.Decimal
	Value    decimal.Decimal // enviado × costo
	Shrink   decimal.Decimal // (enviado − recibido) × costo; cero mientras no se reciba
}

// Manifest remisión impresa que acompaña al envío (valorizada).
type Manifest struct {
	Transfer    *entity.Transfer
	Origin      *entity.Branch
	Destination *entity.Branch
	Lines       []ManifestLine
	TotalValue  decimal.Decimal
	TotalShrink decimal.Decimal
}

// ManifestGenerator genera el PDF de la remisión.
type ManifestGenerator interface {
	Generate(m Manifest) ([]byte, error)
}

// ManifestUseCase arma la remisión de un traspaso y delega el render.
type ManifestUseCase struct {
	queries   *QueryUseCase
	generator ManifestGenerator
}

// NewManifestUseCase construye el caso de uso.
func NewManifestUseCase(queries *QueryUseCase, generator ManifestGenerator) *ManifestUseCase {
	return &ManifestUseCase{queries: queries, generator: generator}
}

// Build devuelve la remisión sin renderizar.
func (uc *ManifestUseCase) Build(ctx context.Context, actor authz.Actor, transferID string) (*Manifest, error) {
	t, err := uc.queries.Get(ctx, actor, transferID)
	if err != nil {
		return nil, err
	}
	repos := uc.queries.Repos
	origin, err := repos.Branches.GetByID(ctx, t.OriginBranchID)
	if err != nil {
		return nil, err
	}
	destination, err := repos.Branches.GetByID(ctx, t.DestinationBranchID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(t.Lines))
	for _, l := range t.Lines {
		ids = append(ids, l.ItemID)
	}
	products, err := repos.Products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	m := &Manifest{Transfer: t, Origin: origin, Destination: destination}
	for _, l := range t.Lines {
		ml := ManifestLine{SKU: l.ItemID, Sent: l.QuantitySent, Received: l.QuantityReceived}
		if p, ok := products[l.ItemID]; ok && p != nil {
			ml.SKU = p.SKU
			ml.Name = p.Name
			ml.UnitCost = p.Cost
		}
		ml.Value = inventory.LineValue(l.QuantitySent, ml.UnitCost)
		if l.QuantityReceived != nil {
			ml.Shrink = inventory.ShrinkValue(l.QuantitySent, *l.QuantityReceived, ml.UnitCost)
		}
		m.TotalValue = m.TotalValue.Add(ml.Value)
		m.TotalShrink = m.TotalShrink.Add(ml.Shrink)
		m.Lines = append(m.Lines, ml)
	}
	return m, nil
}

// Render remisión en PDF.
func (uc *ManifestUseCase) Render(ctx context.Context, actor authz.Actor, transferID string) ([]byte, error) {
	m, err := uc.Build(ctx, actor, transferID)
	if err != nil {
		return nil, err
	}
	return uc.generator.Generate(*m)
}
