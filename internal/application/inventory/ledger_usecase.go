package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Traspasos-api/internal/application/authz"
	"github.com/jhoicas/Traspasos-api/internal/application/dto"
	"github.com/jhoicas/Traspasos-api/internal/application/events"
	"github.com/jhoicas/Traspasos-api/internal/domain"
	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
	"github.com/jhoicas/Traspasos-api/internal/domain/repository"
)

// LedgerUseCase comandos y consultas del libro de inventario por sucursal:
// ajustes manuales y conteos físicos, stock mínimo, ventas y bitácora.
type LedgerUseCase struct {
	txRunner  TxRunner
	repos     repository.Repos // atados al pool, solo lectura
	ledger    *Ledger
	authz     authz.Authorizer
	cache     StockCache
	publisher events.Publisher
	log       zerolog.Logger
}

// NewLedgerUseCase construye el caso de uso. cache y publisher pueden ser nil.
func NewLedgerUseCase(
	txRunner TxRunner,
	repos repository.Repos,
	ledger *Ledger,
	authorizer authz.Authorizer,
	cache StockCache,
	publisher events.Publisher,
	log zerolog.Logger,
) *LedgerUseCase {
	if cache == nil {
		cache = NoopCache{}
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &LedgerUseCase{
		txRunner:  txRunner,
		repos:     repos,
		ledger:    ledger,
		authz:     authorizer,
		cache:     cache,
		publisher: publisher,
		log:       log,
	}
}

// Read devuelve la línea de inventario; un par sin registro se reporta en cero.
func (uc *LedgerUseCase) Read(ctx context.Context, actor authz.Actor, branchID, itemID string) (*entity.InventoryLine, error) {
	if !uc.authz.CanActOnBranch(actor, branchID, authz.ActionRead) {
		return nil, domain.ErrForbidden
	}
	line, err := uc.repos.Stock.Get(ctx, branchID, itemID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		line = &entity.InventoryLine{BranchID: branchID, ItemID: itemID}
	}
	return line, nil
}

// AdjustStock aplica un lote de ajustes en una sola transacción (todo o nada).
// CountedQuantity fija la existencia al conteo físico; si coincide con la actual no genera movimiento.
func (uc *LedgerUseCase) AdjustStock(ctx context.Context, actor authz.Actor, req dto.StockAdjustmentRequest) ([]*entity.StockMovement, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !uc.authz.CanActOnBranch(actor, req.BranchID, authz.ActionAdjust) {
		return nil, domain.ErrForbidden
	}
	if err := uc.requireBranch(ctx, req.BranchID); err != nil {
		return nil, err
	}
	reason := req.Reason
	if reason == "" {
		reason = entity.ReasonAdjustment
	}

	items := append([]dto.StockAdjustmentItem(nil), req.Items...)
	sort.Slice(items, func(i, j int) bool { return items[i].ItemID < items[j].ItemID })
	batchID := uuid.New().String()

	var movements []*entity.StockMovement
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		movements = movements[:0]
		for _, it := range items {
			var delta int64
			if it.CountedQuantity != nil {
				line, err := repos.Stock.GetForUpdate(ctx, req.BranchID, it.ItemID)
				if err != nil {
					return err
				}
				delta = *it.CountedQuantity - line.Quantity
				if delta == 0 {
					continue
				}
			} else {
				delta = *it.Delta
			}
			mov, err := uc.ledger.Apply(ctx, repos, Entry{
				BranchID:    req.BranchID,
				ItemID:      it.ItemID,
				Delta:       delta,
				Reason:      reason,
				ReferenceID: batchID,
				ActorID:     actor.UserID,
			})
			if err != nil {
				return err
			}
			movements = append(movements, mov)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, req.BranchID)
	uc.log.Info().
		Str("branch_id", req.BranchID).
		Str("batch_id", batchID).
		Str("reason", reason).
		Int("movements", len(movements)).
		Msg("ajuste de inventario aplicado")
	uc.publish(ctx, events.Event{
		Type:     events.StockAdjusted,
		ActorID:  actor.UserID,
		BranchID: req.BranchID,
		Data:     map[string]any{"batch_id": batchID, "reason": reason, "movements": len(movements), "notes": req.Notes},
	})
	return movements, nil
}

// SetMinStock configura el mínimo de la línea (umbral del detector de faltantes).
func (uc *LedgerUseCase) SetMinStock(ctx context.Context, actor authz.Actor, req dto.SetMinStockRequest) (*entity.InventoryLine, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !uc.authz.CanActOnBranch(actor, req.BranchID, authz.ActionAdjust) {
		return nil, domain.ErrForbidden
	}
	if err := uc.requireBranch(ctx, req.BranchID); err != nil {
		return nil, err
	}
	var out *entity.InventoryLine
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		p, err := repos.Products.GetByID(ctx, req.ItemID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("producto %s: %w", req.ItemID, domain.ErrNotFound)
		}
		line, err := repos.Stock.GetForUpdate(ctx, req.BranchID, req.ItemID)
		if err != nil {
			return err
		}
		line.MinStock = req.MinStock
		line.UpdatedAt = time.Now()
		if err := repos.Stock.Save(ctx, line); err != nil {
			return err
		}
		out = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx, req.BranchID)
	return out, nil
}

// RegisterSale descuenta una venta del punto de venta. El sale_id queda como referencia del movimiento.
func (uc *LedgerUseCase) RegisterSale(ctx context.Context, actor authz.Actor, req dto.RegisterSaleRequest) (*entity.StockMovement, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !uc.authz.CanActOnBranch(actor, req.BranchID, authz.ActionSell) {
		return nil, domain.ErrForbidden
	}
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		mov, err = uc.ledger.Apply(ctx, repos, Entry{
			BranchID:    req.BranchID,
			ItemID:      req.ItemID,
			Delta:       -req.Quantity,
			Reason:      entity.ReasonSale,
			ReferenceID: req.SaleID,
			ActorID:     actor.UserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx, req.BranchID)
	return mov, nil
}

// ListStock existencias de una sucursal. Con caché habilitada la lectura es eventualmente consistente.
func (uc *LedgerUseCase) ListStock(ctx context.Context, actor authz.Actor, branchID string, page dto.PageRequest) ([]*entity.InventoryLine, error) {
	if branchID == "" {
		return nil, fmt.Errorf("%w: branch_id es requerido", domain.ErrInvalidInput)
	}
	if !uc.authz.CanActOnBranch(actor, branchID, authz.ActionRead) {
		return nil, domain.ErrForbidden
	}
	page.DefaultPage()

	if lines, ok, err := uc.cache.GetBranch(ctx, branchID, page.Limit, page.Offset); err == nil && ok {
		return lines, nil
	} else if err != nil {
		uc.log.Warn().Err(err).Str("branch_id", branchID).Msg("caché de stock no disponible")
	}

	lines, err := uc.repos.Stock.ListByBranch(ctx, branchID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.SetBranch(ctx, branchID, page.Limit, page.Offset, lines); err != nil {
		uc.log.Warn().Err(err).Str("branch_id", branchID).Msg("no se pudo guardar en caché")
	}
	return lines, nil
}

// ListMovements bitácora del libro; itemID vacío lista todos los productos de la sucursal.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, actor authz.Actor, branchID, itemID string, page dto.PageRequest) ([]*entity.StockMovement, error) {
	if branchID == "" {
		return nil, fmt.Errorf("%w: branch_id es requerido", domain.ErrInvalidInput)
	}
	if !uc.authz.CanActOnBranch(actor, branchID, authz.ActionRead) {
		return nil, domain.ErrForbidden
	}
	page.DefaultPage()
	return uc.repos.Movements.ListByBranch(ctx, branchID, itemID, page.Limit, page.Offset)
}

func (uc *LedgerUseCase) requireBranch(ctx context.Context, branchID string) error {
	b, err := uc.repos.Branches.GetByID(ctx, branchID)
	if err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("sucursal %s: %w", branchID, domain.ErrNotFound)
	}
	return nil
}

func (uc *LedgerUseCase) invalidate(ctx context.Context, branchIDs ...string) {
	if err := uc.cache.Invalidate(ctx, branchIDs...); err != nil {
		uc.log.Warn().Err(err).Strs("branches", branchIDs).Msg("no se pudo invalidar caché de stock")
	}
}

func (uc *LedgerUseCase) publish(ctx context.Context, evt events.Event) {
	evt.OccurredAt = time.Now().UTC()
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		uc.log.Warn().Err(err).Str("event", evt.Type).Msg("no se pudo publicar evento")
	}
}
