package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/farmacia-logistica/internal/application/inventory"
	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Shipments  *inventory.ShipmentUseCase
	Ledger     *inventory.MovementLedger
	Pending    *inventory.PendingUseCase
	StockAudit *inventory.StockAuditUseCase
	Locations  repository.LocationRepository
	Health     *HealthHandler
	Gatherer   prometheus.Gatherer // nil = sin /metrics
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Health != nil {
		app.Get("/health", deps.Health.Health)
	}
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	shipmentHandler := NewShipmentHandler(deps.Shipments)
	shipments := api.Group("/shipments")
	shipments.Post("/", shipmentHandler.Dispatch)
	shipments.Post("/inbound", shipmentHandler.RegisterInbound)
	shipments.Get("/:id", shipmentHandler.GetByID)
	shipments.Post("/:id/receive", shipmentHandler.Receive)
	shipments.Post("/:id/cancel", RequireRole(entity.RoleAdmin, entity.RoleSupervisor), shipmentHandler.Cancel)
	shipments.Patch("/:id/notes", shipmentHandler.UpdateNotes)
	api.Post("/transfers", shipmentHandler.Transfer)

	movementHandler := NewMovementHandler(deps.Ledger)
	movements := api.Group("/movements")
	movements.Post("/", RequireRole(entity.RoleAdmin, entity.RoleSupervisor, entity.RoleBodeguero), movementHandler.Record)
	movements.Get("/", movementHandler.History)

	locationHandler := NewLocationHandler(deps.Locations, deps.Ledger, deps.Pending, deps.StockAudit)
	locations := api.Group("/locations")
	locations.Get("/", locationHandler.List)
	locations.Get("/:id/stock", locationHandler.Stock)
	locations.Get("/:id/pending", locationHandler.Pending)
	locations.Get("/:id/audit", RequireRole(entity.RoleAdmin), locationHandler.Audit)
	locations.Post("/:id/audit/repair", RequireRole(entity.RoleAdmin), locationHandler.Repair)
}
