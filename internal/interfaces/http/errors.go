package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-logistica/internal/application/dto"
	"github.com/jhoicas/farmacia-logistica/internal/domain"
)

// retryAfterSeconds sugerencia al cliente ante contención.
const retryAfterSeconds = "1"

// writeError traduce errores del núcleo a status HTTP y cuerpo con detalle.
func writeError(c *fiber.Ctx, err error) error {
	status, code, msg := classify(err)
	if status == fiber.StatusServiceUnavailable && errors.Is(err, domain.ErrBusy) {
		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
	}
	if status == fiber.StatusInternalServerError {
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg, Details: details(err)})
}

func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrAuthorizationRequired):
		return fiber.StatusPreconditionRequired, "AUTHORIZATION_REQUIRED", err.Error()
	case errors.Is(err, domain.ErrAuthorizationInvalid):
		return fiber.StatusForbidden, "AUTHORIZATION_INVALID", err.Error()
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK", err.Error()
	case errors.Is(err, domain.ErrInvalidTransition):
		return fiber.StatusConflict, "INVALID_TRANSITION", err.Error()
	case errors.Is(err, domain.ErrUnknownLocation):
		return fiber.StatusNotFound, "UNKNOWN_LOCATION", err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, domain.ErrEmptyShipment):
		return fiber.StatusBadRequest, "EMPTY_SHIPMENT", err.Error()
	case errors.Is(err, domain.ErrInvalidQuantity):
		return fiber.StatusBadRequest, "INVALID_QUANTITY", err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION", err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN", err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED", err.Error()
	case errors.Is(err, domain.ErrBusy):
		return fiber.StatusServiceUnavailable, "BUSY", "recurso ocupado, reintente"
	case errors.Is(err, domain.ErrStorageUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "almacenamiento no disponible"
	default:
		return fiber.StatusInternalServerError, "INTERNAL", ""
	}
}

func details(err error) map[string]any {
	d := map[string]any{}
	var itemErr *domain.ItemError
	if errors.As(err, &itemErr) {
		if itemErr.ItemID != "" {
			d["item_id"] = itemErr.ItemID
		}
		if itemErr.ProductID != "" {
			d["product_id"] = itemErr.ProductID
		}
		d["quantity"] = itemErr.Quantity
	}
	var stockErr *domain.StockError
	if errors.As(err, &stockErr) {
		d["product_id"] = stockErr.ProductID
		d["location_id"] = stockErr.LocationID
		d["lot_number"] = stockErr.LotNumber
		d["requested"] = stockErr.Requested
		d["available"] = stockErr.Available
	}
	var authErr *domain.AuthorizationError
	if errors.As(err, &authErr) {
		d["total_quantity"] = authErr.TotalQuantity
		d["threshold"] = authErr.Threshold
	}
	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		d["shipment_id"] = trErr.ShipmentID
		d["from"] = trErr.From
		d["to"] = trErr.To
	}
	var locErr *domain.LocationError
	if errors.As(err, &locErr) {
		d["location_id"] = locErr.LocationID
	}
	if len(d) == 0 {
		return nil
	}
	return d
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}
