package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Traspasos-api/internal/application/authz"
	"github.com/jhoicas/Traspasos-api/internal/application/inventory"
	"github.com/jhoicas/Traspasos-api/internal/domain"
	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
)

func TestShortage_Detect(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.SetStock("suc-1", "x", 2, 10)  // faltan 8
	s.SetStock("suc-1", "y", 15, 20) // faltan 5
	s.SetStock(hub, "x", 40, 0)
	require.NoError(t, s.Repos().Requests.Create(ctx, &entity.TransferRequest{
		ID: "r-1", BranchID: "suc-1", ItemID: "y", QuantityRequested: 5,
		Urgency: entity.UrgencyNormal, State: entity.RequestPending, CreatedAt: time.Now(),
	}))

	uc := inventory.NewShortageUseCase(s.Repos(), hub, authz.NewRolePolicy(hub), zerolog.Nop())
	list, err := uc.Detect(ctx, admin, "suc-1")
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "x", list[0].ItemID)
	assert.Equal(t, int64(8), list[0].Missing())
	assert.Equal(t, int64(40), list[0].HubAvailable)
	assert.Equal(t, "SKU-X", list[0].SKU)
	assert.Empty(t, list[0].OpenRequestID)

	assert.Equal(t, "y", list[1].ItemID)
	assert.Equal(t, "r-1", list[1].OpenRequestID)
}

func TestShortage_Detect_SucursalAjena(t *testing.T) {
	uc := inventory.NewShortageUseCase(newStore().Repos(), hub, authz.NewRolePolicy(hub), zerolog.Nop())
	actor := authz.Actor{UserID: "g", BranchID: "suc-2", Role: authz.RoleGerenteSucursal}
	_, err := uc.Detect(context.Background(), actor, "suc-1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestShortage_DetectAll_OmiteCedis(t *testing.T) {
	s := newStore()
	s.SetStock(hub, "x", 0, 100)
	s.SetStock("suc-1", "x", 0, 5)
	s.SetStock("suc-2", "y", 9, 5) // sobre el mínimo

	uc := inventory.NewShortageUseCase(s.Repos(), hub, authz.NewRolePolicy(hub), zerolog.Nop())
	all, err := uc.DetectAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
	require.Len(t, all["suc-1"], 1)
	assert.Equal(t, entity.UrgencyUrgent, all["suc-1"][0].SuggestedUrgency())
}
