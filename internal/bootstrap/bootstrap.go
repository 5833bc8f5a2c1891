// Package bootstrap arma el grafo de dependencias compartido por el servidor HTTP y cedisctl.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Traspasos-api/internal/application/authz"
	"github.com/jhoicas/Traspasos-api/internal/application/events"
	"github.com/jhoicas/Traspasos-api/internal/application/inventory"
	"github.com/jhoicas/Traspasos-api/internal/application/transfer"
	"github.com/jhoicas/Traspasos-api/internal/domain/repository"
	"github.com/jhoicas/Traspasos-api/internal/infrastructure/cache"
	"github.com/jhoicas/Traspasos-api/internal/infrastructure/eventbus"
	"github.com/jhoicas/Traspasos-api/internal/infrastructure/memory"
	"github.com/jhoicas/Traspasos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Traspasos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Traspasos-api/pkg/config"
	"github.com/jhoicas/Traspasos-api/pkg/logger"
)

// Container casos de uso listos para usar y los recursos que hay que cerrar.
type Container struct {
	Config *config.Config
	Log    *logger.Logger
	Pool   *pgxpool.Pool // nil con STORE_DRIVER=memory
	Repos  repository.Repos

	Ledger    *inventory.LedgerUseCase
	Shortages *inventory.ShortageUseCase
	Requests  *transfer.RequestUseCase
	Engine    *transfer.Engine
	Receiving *transfer.ReceivingUseCase
	Queries   *transfer.QueryUseCase
	Manifest  *transfer.ManifestUseCase

	redis *redis.Client
}

// New abre almacenamiento, caché y publicador según la configuración y construye los casos de uso.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	c := &Container{Config: cfg, Log: log}

	var txRunner inventory.TxRunner
	switch cfg.App.StoreDriver {
	case "memory":
		store := memory.NewSeeded(cfg.Inventory.HubBranchID)
		txRunner, c.Repos = store, store.Repos()
		log.Warn().Msg("STORE_DRIVER=memory: datos de demostración, no persistentes")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		c.Pool = pool
		txRunner, c.Repos = postgres.NewTxRunner(pool), postgres.NewRepos(pool)
	}

	var stockCache inventory.StockCache = inventory.NoopCache{}
	var publisher events.Publisher = eventbus.NewLogPublisher(log.Component("events"))
	if cfg.Cache.Enabled || cfg.Events.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Cache.RedisURL)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.redis = client
		if cfg.Cache.Enabled {
			stockCache = cache.NewStockCache(client, time.Duration(cfg.Cache.StockTTLSeconds)*time.Second)
		}
		if cfg.Events.Enabled {
			publisher = eventbus.NewRedisPublisher(client, cfg.Events.Channel)
		}
	}

	hub := cfg.Inventory.HubBranchID
	policy := authz.NewRolePolicy(hub)
	ledger := inventory.NewLedger(cfg.Inventory.AllowNegative)

	c.Ledger = inventory.NewLedgerUseCase(txRunner, c.Repos, ledger, policy, stockCache, publisher, log.Component("ledger"))
	c.Shortages = inventory.NewShortageUseCase(c.Repos, hub, policy, log.Component("shortages"))

	deps := transfer.Deps{
		TxRunner:    txRunner,
		Repos:       c.Repos,
		Ledger:      ledger,
		HubBranchID: hub,
		Authz:       policy,
		Cache:       stockCache,
		Publisher:   publisher,
		Log:         log.Component("transfers"),
	}
	c.Requests = transfer.NewRequestUseCase(deps)
	c.Engine = transfer.NewEngine(deps)
	c.Receiving = transfer.NewReceivingUseCase(deps)
	c.Queries = transfer.NewQueryUseCase(deps)
	c.Manifest = transfer.NewManifestUseCase(c.Queries, pdf.NewManifestGenerator())
	return c, nil
}

// Close libera Redis y el pool.
func (c *Container) Close() {
	if c.redis != nil {
		_ = c.redis.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}
