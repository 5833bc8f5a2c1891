package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/jhoicas/Traspasos-api/internal/domain"
	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
	"github.com/jhoicas/Traspasos-api/internal/domain/repository"
)

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// ── Stock ─────────────────────────────────────────────────────────────────────

type stockRepo struct{ base }

func (r *stockRepo) Get(_ context.Context, branchID, itemID string) (*entity.InventoryLine, error) {
	defer r.read()()
	l, ok := r.st.stock[lineKey{branchID, itemID}]
	if !ok {
		l = entity.InventoryLine{BranchID: branchID, ItemID: itemID}
	}
	return &l, nil
}

func (r *stockRepo) GetForUpdate(_ context.Context, branchID, itemID string) (*entity.InventoryLine, error) {
	defer r.write()()
	k := lineKey{branchID, itemID}
	l, ok := r.st.stock[k]
	if !ok {
		l = entity.InventoryLine{BranchID: branchID, ItemID: itemID, UpdatedAt: time.Now().UTC()}
		r.st.stock[k] = l
	}
	return &l, nil
}

func (r *stockRepo) Save(_ context.Context, line *entity.InventoryLine) error {
	defer r.write()()
	r.st.stock[lineKey{line.BranchID, line.ItemID}] = *line
	return nil
}

func (r *stockRepo) ListByBranch(_ context.Context, branchID string, limit, offset int) ([]*entity.InventoryLine, error) {
	defer r.read()()
	var list []*entity.InventoryLine
	for k, v := range r.st.stock {
		if k.branchID == branchID {
			l := v
			list = append(list, &l)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ItemID < list[j].ItemID })
	return page(list, limit, offset), nil
}

func (r *stockRepo) ListBelowMinimum(_ context.Context, branchID string) ([]*entity.InventoryLine, error) {
	defer r.read()()
	var list []*entity.InventoryLine
	for k, v := range r.st.stock {
		if k.branchID == branchID && v.Below() {
			l := v
			list = append(list, &l)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		di, dj := list[i].MinStock-list[i].Quantity, list[j].MinStock-list[j].Quantity
		if di != dj {
			return di > dj
		}
		return list[i].ItemID < list[j].ItemID
	})
	return list, nil
}

// ── Movimientos ───────────────────────────────────────────────────────────────

type movementRepo struct{ base }

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	defer r.write()()
	r.st.movements = append(r.st.movements, *m)
	return nil
}

func (r *movementRepo) ListByBranch(_ context.Context, branchID, itemID string, limit, offset int) ([]*entity.StockMovement, error) {
	defer r.read()()
	var list []*entity.StockMovement
	for i := len(r.st.movements) - 1; i >= 0; i-- {
		m := r.st.movements[i]
		if m.BranchID != branchID || (itemID != "" && m.ItemID != itemID) {
			continue
		}
		list = append(list, &m)
	}
	return page(list, limit, offset), nil
}

func (r *movementRepo) ListByReference(_ context.Context, referenceID string) ([]*entity.StockMovement, error) {
	defer r.read()()
	var list []*entity.StockMovement
	for _, m := range r.st.movements {
		if m.ReferenceID == referenceID {
			m := m
			list = append(list, &m)
		}
	}
	return list, nil
}

// ── Solicitudes ───────────────────────────────────────────────────────────────

type requestRepo struct{ base }

func (r *requestRepo) Create(_ context.Context, req *entity.TransferRequest) error {
	defer r.write()()
	if req.State == entity.RequestPending {
		for _, other := range r.st.requests {
			if other.State == entity.RequestPending && other.BranchID == req.BranchID && other.ItemID == req.ItemID {
				return domain.ErrDuplicate
			}
		}
	}
	r.st.requests[req.ID] = *req
	return nil
}

func (r *requestRepo) GetByID(_ context.Context, id string) (*entity.TransferRequest, error) {
	defer r.read()()
	req, ok := r.st.requests[id]
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (r *requestRepo) GetForUpdate(ctx context.Context, id string) (*entity.TransferRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *requestRepo) Update(_ context.Context, req *entity.TransferRequest) error {
	defer r.write()()
	if _, ok := r.st.requests[req.ID]; !ok {
		return domain.ErrNotFound
	}
	r.st.requests[req.ID] = *req
	return nil
}

func (r *requestRepo) List(_ context.Context, f repository.TransferRequestFilter) ([]*entity.TransferRequest, error) {
	defer r.read()()
	var list []*entity.TransferRequest
	for _, req := range r.st.requests {
		if f.BranchID != "" && req.BranchID != f.BranchID {
			continue
		}
		if f.ItemID != "" && req.ItemID != f.ItemID {
			continue
		}
		if len(f.States) > 0 && !slices.Contains(f.States, req.State) {
			continue
		}
		req := req
		list = append(list, &req)
	}
	sort.Slice(list, func(i, j int) bool {
		ri, rj := entity.UrgencyRank(list[i].Urgency), entity.UrgencyRank(list[j].Urgency)
		if ri != rj {
			return ri < rj
		}
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

// ── Traspasos ─────────────────────────────────────────────────────────────────

type transferRepo struct{ base }

func copyTransfer(t entity.Transfer) entity.Transfer {
	t.Lines = append([]entity.TransferLine(nil), t.Lines...)
	t.RequestIDs = append([]string(nil), t.RequestIDs...)
	return t
}

func (r *transferRepo) Create(_ context.Context, t *entity.Transfer) error {
	defer r.write()()
	if _, exists := r.st.transfers[t.ID]; exists {
		return domain.ErrDuplicate
	}
	r.st.transfers[t.ID] = copyTransfer(*t)
	return nil
}

func (r *transferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	defer r.read()()
	t, ok := r.st.transfers[id]
	if !ok {
		return nil, nil
	}
	t = copyTransfer(t)
	return &t, nil
}

func (r *transferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, id)
}

func (r *transferRepo) SaveReceipt(_ context.Context, t *entity.Transfer) error {
	defer r.write()()
	if _, ok := r.st.transfers[t.ID]; !ok {
		return domain.ErrNotFound
	}
	r.st.transfers[t.ID] = copyTransfer(*t)
	return nil
}

func (r *transferRepo) List(_ context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	defer r.read()()
	var list []*entity.Transfer
	for _, t := range r.st.transfers {
		if f.BranchID != "" {
			switch f.Side {
			case repository.TransferSideOrigin:
				if t.OriginBranchID != f.BranchID {
					continue
				}
			case repository.TransferSideDestination:
				if t.DestinationBranchID != f.BranchID {
					continue
				}
			default:
				if t.OriginBranchID != f.BranchID && t.DestinationBranchID != f.BranchID {
					continue
				}
			}
		}
		if f.State != "" && t.State != f.State {
			continue
		}
		t = copyTransfer(t)
		list = append(list, &t)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return page(list, f.Limit, f.Offset), nil
}

// ── Catálogo ──────────────────────────────────────────────────────────────────

type productRepo struct{ base }

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer r.read()()
	p, ok := r.st.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	defer r.read()()
	for _, p := range r.st.products {
		if p.SKU == sku {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r *productRepo) GetByIDs(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	defer r.read()()
	out := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.st.products[id]; ok {
			p := p
			out[id] = &p
		}
	}
	return out, nil
}

type branchRepo struct{ base }

func (r *branchRepo) GetByID(_ context.Context, id string) (*entity.Branch, error) {
	defer r.read()()
	b, ok := r.st.branches[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *branchRepo) List(_ context.Context) ([]*entity.Branch, error) {
	defer r.read()()
	list := make([]*entity.Branch, 0, len(r.st.branches))
	for _, b := range r.st.branches {
		b := b
		list = append(list, &b)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}
