// Package memory implementa los repositorios y el TxRunner sobre mapas en memoria.
// Las transacciones se serializan con un mutex y trabajan sobre una copia del estado que
// solo se publica al confirmar, así un error deja el estado intacto.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
	"github.com/jhoicas/Traspasos-api/internal/domain/repository"
)

type lineKey struct {
	branchID string
	itemID   string
}

type state struct {
	branches  map[string]entity.Branch
	products  map[string]entity.Product
	stock     map[lineKey]entity.InventoryLine
	movements []entity.StockMovement
	requests  map[string]entity.TransferRequest
	transfers map[string]entity.Transfer
}

func newState() state {
	return state{
		branches:  map[string]entity.Branch{},
		products:  map[string]entity.Product{},
		stock:     map[lineKey]entity.InventoryLine{},
		requests:  map[string]entity.TransferRequest{},
		transfers: map[string]entity.Transfer{},
	}
}

// clone copia los mapas; los valores guardados nunca se mutan en sitio (los renglones de
// traspaso se copian al guardar y al leer), por lo que basta una copia superficial.
func (st state) clone() state {
	out := state{
		branches:  make(map[string]entity.Branch, len(st.branches)),
		products:  make(map[string]entity.Product, len(st.products)),
		stock:     make(map[lineKey]entity.InventoryLine, len(st.stock)),
		movements: st.movements[:len(st.movements):len(st.movements)],
		requests:  make(map[string]entity.TransferRequest, len(st.requests)),
		transfers: make(map[string]entity.Transfer, len(st.transfers)),
	}
	for k, v := range st.branches {
		out.branches[k] = v
	}
	for k, v := range st.products {
		out.products[k] = v
	}
	for k, v := range st.stock {
		out.stock[k] = v
	}
	for k, v := range st.requests {
		out.requests[k] = v
	}
	for k, v := range st.transfers {
		out.transfers[k] = v
	}
	return out
}

// Store almacén en memoria. Sirve para STORE_DRIVER=memory y para las pruebas de casos de uso.
type Store struct {
	mu sync.RWMutex
	st state

	// BeforeCommit gancho de pruebas: si retorna error la transacción se descarta como un fallo de commit.
	BeforeCommit func() error
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn sobre una copia del estado; solo si fn termina sin error (y el gancho de commit
// lo permite) la copia reemplaza al estado vigente.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(bind(s, &work, false)); err != nil {
		return err
	}
	if s.BeforeCommit != nil {
		if err := s.BeforeCommit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}
	s.st = work
	return nil
}

// Repos repositorios fuera de transacción (lecturas de consultas y listados).
func (s *Store) Repos() repository.Repos {
	return bind(s, &s.st, true)
}

func bind(s *Store, st *state, pooled bool) repository.Repos {
	b := base{s: s, st: st, pooled: pooled}
	return repository.Repos{
		Stock:     &stockRepo{b},
		Movements: &movementRepo{b},
		Requests:  &requestRepo{b},
		Transfers: &transferRepo{b},
		Products:  &productRepo{b},
		Branches:  &branchRepo{b},
	}
}

// base comparte el estado; fuera de transacción cada llamada toma el mutex del almacén.
type base struct {
	s      *Store
	st     *state
	pooled bool
}

func (b base) read() func() {
	if !b.pooled {
		return func() {}
	}
	b.s.mu.RLock()
	return b.s.mu.RUnlock
}

func (b base) write() func() {
	if !b.pooled {
		return func() {}
	}
	b.s.mu.Lock()
	return b.s.mu.Unlock
}

// AddBranch registra una sucursal.
func (s *Store) AddBranch(b entity.Branch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	b.UpdatedAt = b.CreatedAt
	s.st.branches[b.ID] = b
}

// AddProduct registra un producto del catálogo.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.products[p.ID] = p
}

// SetStock fija existencia y mínimo sin pasar por el libro (carga inicial de pruebas y demo).
func (s *Store) SetStock(branchID, itemID string, qty, minStock int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.stock[lineKey{branchID, itemID}] = entity.InventoryLine{
		BranchID:  branchID,
		ItemID:    itemID,
		Quantity:  qty,
		MinStock:  minStock,
		UpdatedAt: time.Now().UTC(),
	}
}

// NewSeeded almacén de demostración: CEDIS, dos sucursales y un catálogo corto con existencias.
func NewSeeded(hubBranchID string) *Store {
	s := NewStore()
	if hubBranchID == "" {
		hubBranchID = "cedis"
	}
	s.AddBranch(entity.Branch{ID: hubBranchID, Name: "CEDIS", IsHub: true})
	s.AddBranch(entity.Branch{ID: "suc-centro", Name: "Sucursal Centro"})
	s.AddBranch(entity.Branch{ID: "suc-norte", Name: "Sucursal Norte"})

	products := []entity.Product{
		{ID: "p-arroz", SKU: "ARR-1KG", Name: "Arroz 1kg", Cost: decimal.RequireFromString("2.35")},
		{ID: "p-aceite", SKU: "ACE-900", Name: "Aceite 900ml", Cost: decimal.RequireFromString("4.10")},
		{ID: "p-azucar", SKU: "AZU-1KG", Name: "Azúcar 1kg", Cost: decimal.RequireFromString("1.80")},
		{ID: "p-cafe", SKU: "CAF-500", Name: "Café 500g", Cost: decimal.RequireFromString("6.75")},
	}
	for _, p := range products {
		s.AddProduct(p)
		s.SetStock(hubBranchID, p.ID, 500, 0)
		s.SetStock("suc-centro", p.ID, 12, 20)
		s.SetStock("suc-norte", p.ID, 30, 20)
	}
	return s
}
