package inventory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Traspasos-api/internal/application/authz"
	"github.com/jhoicas/Traspasos-api/internal/domain"
	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
	"github.com/jhoicas/Traspasos-api/internal/domain/repository"
)

// maxParallelBranches sucursales analizadas a la vez en DetectAll.
const maxParallelBranches = 4

// ShortageUseCase detecta faltantes: productos bajo su mínimo configurado en cada sucursal,
// con lo disponible en CEDIS y la solicitud abierta que ya los cubre (si existe).
type ShortageUseCase struct {
	repos       repository.Repos
	hubBranchID string
	authz       authz.Authorizer
	log         zerolog.Logger
}

// NewShortageUseCase construye el detector.
func NewShortageUseCase(repos repository.Repos, hubBranchID string, authorizer authz.Authorizer, log zerolog.Logger) *ShortageUseCase {
	return &ShortageUseCase{repos: repos, hubBranchID: hubBranchID, authz: authorizer, log: log}
}

// Detect faltantes de una sucursal, mayor déficit primero.
func (uc *ShortageUseCase) Detect(ctx context.Context, actor authz.Actor, branchID string) ([]entity.Shortage, error) {
	if branchID == "" {
		return nil, fmt.Errorf("%w: branch_id es requerido", domain.ErrInvalidInput)
	}
	if !uc.authz.CanActOnBranch(actor, branchID, authz.ActionRead) {
		return nil, domain.ErrForbidden
	}
	return uc.detect(ctx, branchID)
}

// DetectAll faltantes de todas las sucursales (excepto CEDIS), analizadas en paralelo.
func (uc *ShortageUseCase) DetectAll(ctx context.Context) (map[string][]entity.Shortage, error) {
	branches, err := uc.repos.Branches.List(ctx)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	out := make(map[string][]entity.Shortage)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelBranches)
	for _, b := range branches {
		if b.IsHub || b.ID == uc.hubBranchID {
			continue
		}
		branchID := b.ID
		g.Go(func() error {
			list, err := uc.detect(gctx, branchID)
			if err != nil {
				return fmt.Errorf("faltantes sucursal %s: %w", branchID, err)
			}
			if len(list) == 0 {
				return nil
			}
			mu.Lock()
			out[branchID] = list
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *ShortageUseCase) detect(ctx context.Context, branchID string) ([]entity.Shortage, error) {
	lines, err := uc.repos.Stock.ListBelowMinimum(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return []entity.Shortage{}, nil
	}

	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ItemID)
	}
	products, err := uc.repos.Products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	open, err := uc.repos.Requests.List(ctx, repository.TransferRequestFilter{
		BranchID: branchID,
		States:   []string{entity.RequestPending, entity.RequestApproved},
	})
	if err != nil {
		return nil, err
	}
	openByItem := make(map[string]*entity.TransferRequest, len(open))
	for _, r := range open {
		if _, seen := openByItem[r.ItemID]; !seen {
			openByItem[r.ItemID] = r
		}
	}

	out := make([]entity.Shortage, 0, len(lines))
	for _, l := range lines {
		s := entity.Shortage{
			BranchID: branchID,
			ItemID:   l.ItemID,
			Current:  l.Quantity,
			Minimum:  l.MinStock,
		}
		if p, ok := products[l.ItemID]; ok && p != nil {
			s.SKU = p.SKU
			s.Name = p.Name
		}
		if uc.hubBranchID != "" && uc.hubBranchID != branchID {
			hub, err := uc.repos.Stock.Get(ctx, uc.hubBranchID, l.ItemID)
			if err != nil {
				return nil, err
			}
			if hub != nil {
				s.HubAvailable = hub.Quantity
			}
		}
		if r, ok := openByItem[l.ItemID]; ok {
			s.OpenRequestID = r.ID
			s.OpenRequestState = r.State
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Missing() > out[j].Missing() })
	return out, nil
}
