package transfer_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Traspasos-api/internal/application/authz"
	"github.com/jhoicas/Traspasos-api/internal/application/dto"
	"github.com/jhoicas/Traspasos-api/internal/application/events"
	"github.com/jhoicas/Traspasos-api/internal/domain"
	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
)

func dispersion(origin, dest string, lines ...dto.TransferLineInput) dto.DispatchDirectInput {
	return dto.DispatchDirectInput{OriginBranchID: origin, DestinationBranchID: dest, Lines: lines}
}

func line(item string, qty int64) dto.TransferLineInput {
	return dto.TransferLineInput{ItemID: item, Quantity: qty}
}

func TestDispatchDirect_DebitaOrigenYQuedaEnTransito(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock(hub, "x", 50, 0)

	tr, err := f.engine.DispatchDirect(context.Background(), cedisStaff, dispersion(hub, branchB, line("x", 20)))
	require.NoError(t, err)

	assert.Equal(t, int64(30), f.qty(t, hub, "x"))
	assert.Equal(t, int64(0), f.qty(t, branchB, "x"), "el destino no se acredita al despachar")
	assert.Equal(t, entity.TransferInTransit, tr.State)
	assert.Equal(t, entity.TransferKindDispersion, tr.Kind)
	require.Len(t, tr.Lines, 1)
	assert.Nil(t, tr.Lines[0].QuantityReceived)

	stored, err := f.queries.Get(context.Background(), managerB, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferInTransit, stored.State)
}

func TestDispatchDirect_StockInsuficienteNoCambiaNada(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock(branchC, "z", 5, 0)

	_, err := f.engine.DispatchDirect(context.Background(), cedisStaff, dispersion(branchC, branchB, line("z", 10)))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, domain.IsBusinessRule(err))

	assert.Equal(t, int64(5), f.qty(t, branchC, "z"))
	hist, err := f.queries.History(context.Background(), cedisStaff, branchC, "", "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, hist, "no debe existir traspaso")
}

func TestDispatchDirect_SinDespachoParcial(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock(hub, "x", 10, 0)
	f.store.SetStock(hub, "y", 1, 0)
	f.store.SetStock(hub, "z", 7, 0)

	_, err := f.engine.DispatchDirect(context.Background(), cedisStaff,
		dispersion(hub, branchB, line("z", 3), line("x", 4), line("y", 5)))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "SKU-y")

	assert.Equal(t, int64(10), f.qty(t, hub, "x"))
	assert.Equal(t, int64(1), f.qty(t, hub, "y"))
	assert.Equal(t, int64(7), f.qty(t, hub, "z"))
	movs, err := f.store.Repos().Movements.ListByBranch(context.Background(), hub, "", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestDispatchDirect_Validaciones(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock(hub, "x", 10, 0)
	ctx := context.Background()

	_, err := f.engine.DispatchDirect(ctx, cedisStaff, dispersion(hub, hub, line("x", 1)))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.engine.DispatchDirect(ctx, cedisStaff, dispersion(hub, branchB))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.engine.DispatchDirect(ctx, cedisStaff, dispersion(hub, branchB, line("x", -1)))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.engine.DispatchDirect(ctx, cedisStaff, dispersion(hub, "suc-inexistente", line("x", 1)))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.engine.DispatchDirect(ctx, managerB, dispersion(hub, branchB, line("x", 1)))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.Equal(t, int64(10), f.qty(t, hub, "x"))
}

func TestDispatchFromRequests_EscenarioCompleto(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil)
	f := newFixture(t, pub)
	f.store.SetStock(hub, "y", 8, 0)
	ctx := context.Background()

	req, err := f.requests.Create(ctx, managerB, dto.CreateTransferRequestInput{BranchID: branchB, ItemID: "y", Quantity: 10})
	require.NoError(t, err)
	assert.Equal(t, entity.RequestPending, req.State)
	assert.Equal(t, entity.UrgencyNormal, req.Urgency)

	req, err = f.requests.Approve(ctx, cedisStaff, req.ID, dto.ApproveRequestInput{QuantityApproved: 8})
	require.NoError(t, err)
	assert.Equal(t, entity.RequestApproved, req.State)

	tr, err := f.engine.DispatchFromRequests(ctx, cedisStaff, dto.DispatchFromRequestsInput{RequestIDs: []string{req.ID}})
	require.NoError(t, err)

	assert.Equal(t, int64(0), f.qty(t, hub, "y"))
	assert.Equal(t, hub, tr.OriginBranchID)
	assert.Equal(t, branchB, tr.DestinationBranchID)
	assert.Equal(t, entity.TransferKindRequest, tr.Kind)
	assert.Equal(t, []string{req.ID}, tr.RequestIDs)
	require.Len(t, tr.Lines, 1)
	assert.Equal(t, int64(8), tr.Lines[0].QuantitySent)

	got, err := f.requests.Get(ctx, managerB, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestDispatched, got.State)
	assert.Equal(t, tr.ID, got.TransferID)
	assert.NotNil(t, got.DispatchedAt)

	pub.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		return e.Type == events.TransferDispatched && e.TransferID == tr.ID
	}))
	pub.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		return e.Type == events.RequestDispatched && e.RequestID == req.ID
	}))
}

func TestDispatchFromRequests_AgrupaPorProducto(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock(hub, "x", 20, 0)
	f.store.SetStock(hub, "y", 20, 0)
	ctx := context.Background()

	approve := func(item string, qty int64) string {
		r, err := f.requests.Create(ctx, managerB, dto.CreateTransferRequestInput{BranchID: branchB, ItemID: item, Quantity: qty})
		require.NoError(t, err)
		_, err = f.requests.Approve(ctx, cedisStaff, r.ID, dto.ApproveRequestInput{QuantityApproved: qty})
		require.NoError(t, err)
		return r.ID
	}
	r1 := approve("x", 3)
	r2 := approve("y", 4)
	// una segunda solicitud del mismo producto solo es posible cuando la primera dejó de estar pending
	r3 := approve("x", 2)

	tr, err := f.engine.DispatchFromRequests(ctx, cedisStaff, dto.DispatchFromRequestsInput{RequestIDs: []string{r1, r2, r3}})
	require.NoError(t, err)
	require.Len(t, tr.Lines, 2)
	l, ok := tr.Line("x")
	require.True(t, ok)
	assert.Equal(t, int64(5), l.QuantitySent)
	assert.Equal(t, int64(15), f.qty(t, hub, "x"))
	assert.Equal(t, int64(16), f.qty(t, hub, "y"))
}

func TestDispatchFromRequests_DestinosMezcladosSeRechaza(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock(hub, "x", 20, 0)
	ctx := context.Background()

	rb, err := f.requests.Create(ctx, managerB, dto.CreateTransferRequestInput{BranchID: branchB, ItemID: "x", Quantity: 2})
	require.NoError(t, err)
	rc, err := f.requests.Create(ctx, managerC, dto.CreateTransferRequestInput{BranchID: branchC, ItemID: "x", Quantity: 2})
	require.NoError(t, err)
	_, err = f.requests.Approve(ctx, cedisStaff, rb.ID, dto.ApproveRequestInput{QuantityApproved: 2})
	require.NoError(t, err)
	_, err = f.requests.Approve(ctx, cedisStaff, rc.ID, dto.ApproveRequestInput{QuantityApproved: 2})
	require.NoError(t, err)

	_, err = f.engine.DispatchFromRequests(ctx, cedisStaff, dto.DispatchFromRequestsInput{RequestIDs: []string{rb.ID, rc.ID}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, int64(20), f.qty(t, hub, "x"))
	for _, id := range []string{rb.ID, rc.ID} {
		r, err := f.requests.Get(ctx, cedisStaff, id)
		require.NoError(t, err)
		assert.Equal(t, entity.RequestApproved, r.State)
	}
}

func TestDispatchFromRequests_SolicitudNoAprobada(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock(hub, "x", 20, 0)
	f.store.SetStock(hub, "y", 20, 0)
	ctx := context.Background()

	approved, err := f.requests.Create(ctx, managerB, dto.CreateTransferRequestInput{BranchID: branchB, ItemID: "x", Quantity: 2})
	require.NoError(t, err)
	_, err = f.requests.Approve(ctx, cedisStaff, approved.ID, dto.ApproveRequestInput{QuantityApproved: 2})
	require.NoError(t, err)
	pending, err := f.requests.Create(ctx, managerB, dto.CreateTransferRequestInput{BranchID: branchB, ItemID: "y", Quantity: 2})
	require.NoError(t, err)

	_, err = f.engine.DispatchFromRequests(ctx, cedisStaff, dto.DispatchFromRequestsInput{RequestIDs: []string{approved.ID, pending.ID}})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.Equal(t, int64(20), f.qty(t, hub, "x"))

	_, err = f.engine.DispatchFromRequests(ctx, cedisStaff, dto.DispatchFromRequestsInput{RequestIDs: []string{"no-existe"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDispatchFromRequests_NoSeDespachaDosVeces(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock(hub, "x", 20, 0)
	ctx := context.Background()

	r, err := f.requests.Create(ctx, managerB, dto.CreateTransferRequestInput{BranchID: branchB, ItemID: "x", Quantity: 5})
	require.NoError(t, err)
	_, err = f.requests.Approve(ctx, cedisStaff, r.ID, dto.ApproveRequestInput{QuantityApproved: 5})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.engine.DispatchFromRequests(ctx, cedisStaff, dto.DispatchFromRequestsInput{RequestIDs: []string{r.ID}})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, int64(15), f.qty(t, hub, "x"))
}

func TestDispatchDirect_ConcurrenteNuncaSobregira(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock(hub, "x", 10, 0)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.engine.DispatchDirect(ctx, cedisStaff, dispersion(hub, branchB, line("x", 2)))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, 5, ok)
	assert.Equal(t, int64(0), f.qty(t, hub, "x"))

	inTransit, err := f.queries.InTransitByDestination(ctx, managerB, branchB, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, inTransit, 5)
}

func TestDispatchFromRequests_CedisSinExistenciaTrasAprobarNoCambiaNada(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock(hub, "x", 10, 0)
	f.store.SetStock(hub, "y", 10, 0)
	ctx := context.Background()

	var ids []string
	for _, it := range []struct {
		item string
		qty  int64
	}{{"x", 5}, {"y", 8}} {
		r, err := f.requests.Create(ctx, managerB, dto.CreateTransferRequestInput{BranchID: branchB, ItemID: it.item, Quantity: it.qty})
		require.NoError(t, err)
		_, err = f.requests.Approve(ctx, cedisStaff, r.ID, dto.ApproveRequestInput{QuantityApproved: it.qty})
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}
	// venta en mostrador del CEDIS entre la aprobación y el despacho
	f.store.SetStock(hub, "y", 3, 0)

	_, err := f.engine.DispatchFromRequests(ctx, cedisStaff, dto.DispatchFromRequestsInput{RequestIDs: ids})
	require.ErrorIs(t, err, domain.ErrInsufficientHubStock)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "SKU-y")

	assert.Equal(t, int64(10), f.qty(t, hub, "x"), "el renglón ya debitado se revierte")
	assert.Equal(t, int64(3), f.qty(t, hub, "y"))
	movs, err := f.store.Repos().Movements.ListByBranch(ctx, hub, "", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, movs)
	hist, err := f.queries.History(ctx, cedisStaff, hub, "", "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, hist, "no debe existir traspaso")
	for _, id := range ids {
		r, err := f.requests.Get(ctx, managerB, id)
		require.NoError(t, err)
		assert.Equal(t, entity.RequestApproved, r.State)
		assert.Empty(t, r.TransferID)
	}
}

func TestDispatchDirect_EncargadoCedisSoloDesdeCedis(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock(hub, "x", 10, 0)
	f.store.SetStock(branchC, "x", 10, 0)
	ctx := context.Background()
	clerk := authz.Actor{UserID: "u-enc", BranchID: hub, Role: authz.RoleEncargado}

	_, err := f.engine.DispatchDirect(ctx, clerk, dispersion(branchC, branchB, line("x", 4)))
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, int64(10), f.qty(t, branchC, "x"))

	tr, err := f.engine.DispatchDirect(ctx, clerk, dispersion(hub, branchB, line("x", 4)))
	require.NoError(t, err)
	assert.Equal(t, int64(6), f.qty(t, hub, "x"))

	_, err = f.queries.Get(ctx, clerk, tr.ID)
	assert.NoError(t, err)
}
