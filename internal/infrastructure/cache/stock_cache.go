package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Traspasos-api/internal/application/inventory"
	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
)

const stockKeyPrefix = "stock:branch"

var _ inventory.StockCache = (*StockCache)(nil)

// StockCache guarda cada página del listado de existencias como campo de un hash por sucursal;
// invalidar una sucursal es un solo DEL.
type StockCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStockCache construye la caché; ttl <= 0 usa 30s.
func NewStockCache(client *redis.Client, ttl time.Duration) *StockCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StockCache{client: client, ttl: ttl}
}

func branchKey(branchID string) string {
	return fmt.Sprintf("%s:%s", stockKeyPrefix, branchID)
}

func pageField(limit, offset int) string {
	return fmt.Sprintf("%d:%d", limit, offset)
}

// GetBranch devuelve la página cacheada; ok=false si no existe.
func (c *StockCache) GetBranch(ctx context.Context, branchID string, limit, offset int) ([]*entity.InventoryLine, bool, error) {
	payload, err := c.client.HGet(ctx, branchKey(branchID), pageField(limit, offset)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis hget: %w", err)
	}
	var lines []*entity.InventoryLine
	if err := json.Unmarshal(payload, &lines); err != nil {
		return nil, false, fmt.Errorf("decode stock cache: %w", err)
	}
	return lines, true, nil
}

// SetBranch guarda la página y renueva el TTL del hash.
func (c *StockCache) SetBranch(ctx context.Context, branchID string, limit, offset int, lines []*entity.InventoryLine) error {
	payload, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode stock cache: %w", err)
	}
	key := branchKey(branchID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, pageField(limit, offset), payload)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

// Invalidate elimina todas las páginas de las sucursales indicadas.
func (c *StockCache) Invalidate(ctx context.Context, branchIDs ...string) error {
	if len(branchIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(branchIDs))
	for _, id := range branchIDs {
		keys = append(keys, branchKey(id))
	}
	return c.client.Del(ctx, keys...).Err()
}
