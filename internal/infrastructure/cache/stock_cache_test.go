package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "stock:branch:suc-b", branchKey("suc-b"))
	assert.Equal(t, "50:100", pageField(50, 100))
}

// Requiere un Redis real: REDIS_TEST_URL=redis://localhost:6379/15
func TestStockCache_Redis(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL no definido")
	}
	ctx := context.Background()
	client, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	c := NewStockCache(client, time.Minute)
	require.NoError(t, c.Invalidate(ctx, "suc-b"))

	_, ok, err := c.GetBranch(ctx, "suc-b", 50, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	lines := []*entity.InventoryLine{{BranchID: "suc-b", ItemID: "p-1", Quantity: 7}}
	require.NoError(t, c.SetBranch(ctx, "suc-b", 50, 0, lines))

	got, ok, err := c.GetBranch(ctx, "suc-b", 50, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(7), got[0].Quantity)

	require.NoError(t, c.Invalidate(ctx, "suc-b", "suc-c"))
	_, ok, err = c.GetBranch(ctx, "suc-b", 50, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}
