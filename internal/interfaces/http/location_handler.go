package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-logistica/internal/application/dto"
	"github.com/jhoicas/farmacia-logistica/internal/application/inventory"
	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	domaininv "github.com/jhoicas/farmacia-logistica/internal/domain/inventory"
	"github.com/jhoicas/farmacia-logistica/internal/domain/repository"
)

// LocationHandler directorio, existencias, tablero de tránsito y auditoría por ubicación.
type LocationHandler struct {
	locations repository.LocationRepository
	ledger    *inventory.MovementLedger
	pending   *inventory.PendingUseCase
	audit     *inventory.StockAuditUseCase
}

// NewLocationHandler construye el handler.
func NewLocationHandler(locations repository.LocationRepository, ledger *inventory.MovementLedger, pending *inventory.PendingUseCase, audit *inventory.StockAuditUseCase) *LocationHandler {
	return &LocationHandler{locations: locations, ledger: ledger, pending: pending, audit: audit}
}

// List godoc
// @Summary      Listar ubicaciones
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        type    query  string  false  "STORE | WAREHOUSE | CENTRAL"
// @Param        active  query  bool    false  "Solo activas"
// @Success      200  {array}  dto.LocationResponse
// @Router       /api/locations [get]
func (h *LocationHandler) List(c *fiber.Ctx) error {
	f := entity.LocationFilter{
		Type:       entity.LocationType(strings.ToUpper(c.Query("type"))),
		OnlyActive: c.QueryBool("active", false),
	}
	list, err := h.locations.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		out = append(out, dto.NewLocationResponse(l))
	}
	return c.JSON(out)
}

// Stock godoc
// @Summary      Existencias por lote de una ubicación
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "Ubicación"
// @Success      200  {array}  dto.StockLotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{id}/stock [get]
func (h *LocationHandler) Stock(c *fiber.Ctx) error {
	lots, err := h.ledger.StockAt(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.StockLotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, dto.NewStockLotResponse(l))
	}
	return c.JSON(out)
}

// Pending godoc
// @Summary      Envíos y órdenes en tránsito
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        id         path   string  true   "Ubicación"
// @Param        direction  query  string  false  "INCOMING | OUTGOING | NEUTRAL | ALL"
// @Success      200  {array}  dto.PendingResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{id}/pending [get]
func (h *LocationHandler) Pending(c *fiber.Ctx) error {
	dir, ok := domaininv.ParseDirection(c.Query("direction"))
	if !ok {
		return invalidQuery(c, "direction")
	}
	items, err := h.pending.PendingForLocation(c.UserContext(), c.Params("id"), dir)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.PendingResponse, 0, len(items))
	for _, p := range items {
		out = append(out, dto.NewPendingResponse(p))
	}
	return c.JSON(out)
}

// Audit godoc
// @Summary      Verificar lotes contra el libro
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "Ubicación"
// @Success      200  {array}  dto.StockAuditResponse
// @Router       /api/locations/{id}/audit [get]
func (h *LocationHandler) Audit(c *fiber.Ctx) error {
	res, err := h.audit.VerifyLocation(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(auditResponses(res))
}

// Repair godoc
// @Summary      Reparar lotes desalineados con el libro
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "Ubicación"
// @Success      200  {array}  dto.StockAuditResponse
// @Router       /api/locations/{id}/audit/repair [post]
func (h *LocationHandler) Repair(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	res, err := h.audit.RepairLocation(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(auditResponses(res))
}

func auditResponses(res []inventory.StockAudit) []dto.StockAuditResponse {
	out := make([]dto.StockAuditResponse, 0, len(res))
	for _, a := range res {
		out = append(out, dto.NewStockAuditResponse(a))
	}
	return out
}
