package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Traspasos-api/internal/application/authz"
	"github.com/jhoicas/Traspasos-api/internal/application/inventory"
	"github.com/jhoicas/Traspasos-api/internal/application/transfer"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *inventory.LedgerUseCase
	Shortages *inventory.ShortageUseCase
	Requests  *transfer.RequestUseCase
	Engine    *transfer.Engine
	Receiving *transfer.ReceivingUseCase
	Queries   *transfer.QueryUseCase
	Manifest  *transfer.ManifestUseCase
	JWTSecret string
	Log       zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas (requieren Bearer Token con un rol conocido)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret), RequireRole(
		authz.RoleSuperAdmin, authz.RoleAdmin, authz.RoleSystem, authz.RoleGerenteCedis,
		authz.RoleGerenteSucursal, authz.RoleEncargado, authz.RoleVendedor,
	))

	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Shortages, deps.Log)
	inv.Get("/stock", inventoryHandler.ListStock)
	inv.Get("/stock/:branch_id/:item_id", inventoryHandler.GetStock)
	inv.Post("/adjustments", inventoryHandler.AdjustStock)
	inv.Put("/min-stock", inventoryHandler.SetMinStock)
	inv.Post("/sales", inventoryHandler.RegisterSale)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Get("/shortages", inventoryHandler.ListShortages)

	// Las rutas estáticas van antes de /:id.
	requests := api.Group("/transfer-requests")
	requestHandler := NewTransferRequestHandler(deps.Requests, deps.Log)
	requests.Post("/", requestHandler.Create)
	requests.Get("/pending", requestHandler.ListPending)
	requests.Get("/pending/by-branch", requestHandler.ListPendingByBranch)
	requests.Get("/approved", requestHandler.ListApproved)
	requests.Get("/:id", requestHandler.Get)
	requests.Put("/:id/approve", requestHandler.Approve)
	requests.Put("/:id/reject", requestHandler.Reject)

	transfers := api.Group("/transfers")
	transferHandler := NewTransferHandler(deps.Engine, deps.Receiving, deps.Queries, deps.Manifest, deps.Log)
	transfers.Post("/dispersion", transferHandler.DispatchDirect)
	transfers.Post("/from-requests", transferHandler.DispatchFromRequests)
	transfers.Get("/in-transit", transferHandler.InTransit)
	transfers.Get("/history", transferHandler.History)
	transfers.Get("/:id", transferHandler.Get)
	transfers.Post("/:id/receive", transferHandler.ConfirmReceipt)
	transfers.Get("/:id/discrepancies", transferHandler.Discrepancies)
	transfers.Get("/:id/manifest.pdf", transferHandler.Manifest)
}
