package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-logistica/internal/application/dto"
	"github.com/jhoicas/farmacia-logistica/internal/application/inventory"
	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
)

// MovementHandler movimientos individuales e historial del libro (protegido).
type MovementHandler struct {
	ledger *inventory.MovementLedger
}

// NewMovementHandler construye el handler.
func NewMovementHandler(ledger *inventory.MovementLedger) *MovementHandler {
	return &MovementHandler{ledger: ledger}
}

// Record godoc
// @Summary      Registrar movimiento
// @Description  Ventas, mermas, ajustes e ingresos de compra sobre un lote.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "clave del lote, tipo y delta con signo"
// @Success      201   {object}  dto.MovementEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Record(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	entry, err := h.ledger.Record(c.UserContext(), in.ToInput(userID))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementEntryResponse(entry))
}

// History godoc
// @Summary      Historial de movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  true   "Ubicación"
// @Param        from         query  string  false  "RFC3339"
// @Param        to           query  string  false  "RFC3339"
// @Param        types        query  string  false  "Tipos separados por coma"
// @Param        cursor       query  int     false  "next_cursor de la página anterior"
// @Param        limit        query  int     false  "Máximo 200"
// @Success      200  {object}  dto.MovementHistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) History(c *fiber.Ctx) error {
	q := inventory.HistoryQuery{
		LocationID: c.Query("location_id"),
		Cursor:     int64(c.QueryInt("cursor", 0)),
		Limit:      c.QueryInt("limit", 0),
	}
	var err error
	if q.From, err = queryTime(c, "from"); err != nil {
		return invalidQuery(c, "from")
	}
	if q.To, err = queryTime(c, "to"); err != nil {
		return invalidQuery(c, "to")
	}
	if raw := c.Query("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				q.Types = append(q.Types, entity.MovementType(strings.ToUpper(t)))
			}
		}
	}

	page, err := h.ledger.History(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = inventory.DefaultHistoryLimit
	}
	if limit > inventory.MaxHistoryLimit {
		limit = inventory.MaxHistoryLimit
	}
	return c.JSON(dto.MovementHistoryResponse{
		Items: dto.NewMovementEntryResponses(page.Entries),
		Page:  dto.CursorPage{Limit: limit, NextCursor: page.NextCursor},
	})
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func invalidQuery(c *fiber.Ctx, key string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Code:    "INVALID_QUERY",
		Message: "parámetro inválido",
		Details: map[string]any{"param": key},
	})
}
