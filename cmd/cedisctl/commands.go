package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"

	"github.com/jhoicas/Traspasos-api/internal/application/authz"
	"github.com/jhoicas/Traspasos-api/internal/application/dto"
	"github.com/jhoicas/Traspasos-api/internal/bootstrap"
	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
	"github.com/jhoicas/Traspasos-api/internal/infrastructure/csvimport"
	"github.com/jhoicas/Traspasos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Traspasos-api/pkg/config"
	"github.com/jhoicas/Traspasos-api/pkg/jwt"
	"github.com/jhoicas/Traspasos-api/pkg/logger"
)

// importBatch renglones por ajuste; coincide con el máximo que acepta AdjustStock.
const importBatch = 500

var systemActor = authz.Actor{UserID: "cedisctl", Role: authz.RoleSystem}

func open(c *cli.Context) (*bootstrap.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "cedisctl"})
	return bootstrap.New(c.Context, cfg, log)
}

func runMigrate(c *cli.Context) error {
	app, err := open(c)
	if err != nil {
		return err
	}
	defer app.Close()
	if app.Pool == nil {
		return fmt.Errorf("migrate requiere STORE_DRIVER=postgres")
	}
	return postgres.Migrate(c.Context, app.Pool, app.Log.Component("migrate"))
}

func runToken(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	role := c.String("role")
	if !authz.IsKnownRole(role) {
		return cli.Exit(fmt.Sprintf("rol desconocido: %s", role), 2)
	}
	minutes := c.Int("minutes")
	if minutes <= 0 {
		minutes = cfg.JWT.Expiration
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, c.String("user"), c.String("branch"), role, cfg.JWT.Issuer, minutes)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, tok)
	return nil
}

func runStockImport(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("falta el archivo CSV", 2)
	}
	delim := []rune(c.String("delimiter"))
	if len(delim) != 1 {
		return cli.Exit("--delimiter debe ser un solo carácter", 2)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	rows, err := csvimport.ReadStock(f, csvimport.Options{Delimiter: delim[0], Latin1: c.Bool("latin1")})
	if err != nil {
		return err
	}

	app, err := open(c)
	if err != nil {
		return err
	}
	defer app.Close()
	ctx := c.Context
	branchID := c.String("branch")

	items, mins, err := resolveRows(ctx, app, branchID, rows)
	if err != nil {
		return err
	}
	if c.Bool("dry-run") {
		fmt.Printf("%d renglones válidos para %s (sin escribir)\n", len(items), branchID)
		return nil
	}

	moved, setMins, err := importStock(ctx, app.Ledger, branchID, "importación "+path, items, mins, importBatch)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d renglones, %d movimientos, %d mínimos\n", branchID, len(items), moved, setMins)
	return nil
}

type stockWriter interface {
	AdjustStock(ctx context.Context, actor authz.Actor, req dto.StockAdjustmentRequest) ([]*entity.StockMovement, error)
	SetMinStock(ctx context.Context, actor authz.Actor, req dto.SetMinStockRequest) (*entity.InventoryLine, error)
}

// importStock aplica el conteo por lotes y fija los mínimos de cada lote en cuanto éste se confirma.
// Los lotes anteriores a un fallo quedan aplicados; como el conteo es absoluto, volver a correr
// el mismo archivo completa la importación sin duplicar existencias.
func importStock(ctx context.Context, w stockWriter, branchID, note string, items []dto.StockAdjustmentItem, mins []dto.SetMinStockRequest, batch int) (moved, setMins int, err error) {
	minByItem := make(map[string]dto.SetMinStockRequest, len(mins))
	for _, m := range mins {
		minByItem[m.ItemID] = m
	}
	for start := 0; start < len(items); start += batch {
		end := min(start+batch, len(items))
		movements, err := w.AdjustStock(ctx, systemActor, dto.StockAdjustmentRequest{
			BranchID: branchID,
			Reason:   entity.ReasonImport,
			Notes:    note,
			Items:    items[start:end],
		})
		if err != nil {
			return moved, setMins, fmt.Errorf("renglones %d-%d (aplicados 1-%d, reintentar el archivo es seguro): %w", start+1, end, start, err)
		}
		moved += len(movements)
		for _, it := range items[start:end] {
			m, ok := minByItem[it.ItemID]
			if !ok {
				continue
			}
			if _, err := w.SetMinStock(ctx, systemActor, m); err != nil {
				return moved, setMins, fmt.Errorf("mínimo de %s (aplicados 1-%d): %w", m.ItemID, end, err)
			}
			setMins++
		}
	}
	return moved, setMins, nil
}

// resolveRows traduce SKU → producto; un SKU desconocido aborta toda la importación.
func resolveRows(ctx context.Context, app *bootstrap.Container, branchID string, rows []csvimport.StockRow) ([]dto.StockAdjustmentItem, []dto.SetMinStockRequest, error) {
	items := make([]dto.StockAdjustmentItem, 0, len(rows))
	var mins []dto.SetMinStockRequest
	for _, r := range rows {
		p, err := app.Repos.Products.GetBySKU(ctx, r.SKU)
		if err != nil {
			return nil, nil, err
		}
		if p == nil {
			return nil, nil, fmt.Errorf("csv línea %d: SKU %s no existe en el catálogo", r.Line, r.SKU)
		}
		counted := r.Quantity
		items = append(items, dto.StockAdjustmentItem{ItemID: p.ID, CountedQuantity: &counted})
		if r.MinStock != nil {
			mins = append(mins, dto.SetMinStockRequest{BranchID: branchID, ItemID: p.ID, MinStock: *r.MinStock})
		}
	}
	return items, mins, nil
}

func runShortagesScan(c *cli.Context) error {
	app, err := open(c)
	if err != nil {
		return err
	}
	defer app.Close()
	return scan(c.Context, app, c.Bool("create-requests"))
}

func runShortagesWorker(c *cli.Context) error {
	app, err := open(c)
	if err != nil {
		return err
	}
	defer app.Close()

	expr := c.String("cron")
	if expr == "" {
		expr = app.Config.Shortage.Cron
	}
	log := app.Log.Component("shortage-worker")
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := cron.New()
	if _, err := sched.AddFunc(expr, func() {
		if err := scan(ctx, app, app.Config.Shortage.AutoRequest); err != nil {
			log.Error().Err(err).Msg("escaneo de faltantes")
		}
	}); err != nil {
		return fmt.Errorf("cron %q: %w", expr, err)
	}
	sched.Start()
	log.Info().Str("cron", expr).Bool("auto_request", app.Config.Shortage.AutoRequest).Msg("worker de faltantes iniciado")

	<-ctx.Done()
	<-sched.Stop().Done()
	log.Info().Msg("worker de faltantes detenido")
	return nil
}

func scan(ctx context.Context, app *bootstrap.Container, createRequests bool) error {
	log := app.Log.Component("shortages")
	all, err := app.Shortages.DetectAll(ctx)
	if err != nil {
		return err
	}
	var flat []entity.Shortage
	for branchID, list := range all {
		log.Info().Str("branch_id", branchID).Int("shortages", len(list)).Msg("faltantes detectados")
		flat = append(flat, list...)
	}
	if !createRequests || len(flat) == 0 {
		return nil
	}
	created, err := app.Requests.CreateFromShortages(ctx, flat)
	if err != nil {
		return err
	}
	log.Info().Int("created", len(created)).Msg("solicitudes automáticas creadas")
	return nil
}
