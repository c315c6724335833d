package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-logistica/internal/application/dto"
	"github.com/jhoicas/farmacia-logistica/internal/application/inventory"
)

// ShipmentHandler despachos, recepciones, cancelaciones y traslados directos (protegido).
type ShipmentHandler struct {
	uc *inventory.ShipmentUseCase
}

// NewShipmentHandler construye el handler.
func NewShipmentHandler(uc *inventory.ShipmentUseCase) *ShipmentHandler {
	return &ShipmentHandler{uc: uc}
}

// Dispatch godoc
// @Summary      Despachar envío
// @Description  Crea el envío y descuenta el origen en una sola transacción (DRAFT → IN_TRANSIT).
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DispatchRequest  true  "origen, destino, líneas y autorización opcional"
// @Success      201   {object}  dto.ShipmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      428   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/shipments [post]
func (h *ShipmentHandler) Dispatch(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.DispatchRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	s, err := h.uc.Dispatch(c.UserContext(), in.ToInput(userID))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewShipmentResponse(s))
}

// RegisterInbound godoc
// @Summary      Registrar ingreso de proveedor
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InboundRequest  true  "proveedor, destino, orden de compra y líneas"
// @Success      201   {object}  dto.ShipmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/shipments/inbound [post]
func (h *ShipmentHandler) RegisterInbound(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.InboundRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	s, err := h.uc.RegisterInbound(c.UserContext(), in.ToInput(userID))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewShipmentResponse(s))
}

// GetByID godoc
// @Summary      Obtener envío
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del envío"
// @Success      200  {object}  dto.ShipmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id} [get]
func (h *ShipmentHandler) GetByID(c *fiber.Ctx) error {
	s, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewShipmentResponse(s))
}

// Receive godoc
// @Summary      Recibir envío
// @Description  Concilia lo contado y reingresa en destino lo aceptado. RECEIVED o PARTIAL.
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del envío"
// @Param        body  body  dto.ReceiveRequest  true  "conteo por línea y condición"
// @Success      200   {object}  dto.ReceiveResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/receive [post]
func (h *ShipmentHandler) Receive(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.ReceiveRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.uc.Receive(c.UserContext(), in.ToInput(c.Params("id"), userID))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewReceiveResponse(res))
}

// Cancel godoc
// @Summary      Cancelar envío en tránsito
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del envío"
// @Success      200  {object}  dto.ShipmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/cancel [post]
func (h *ShipmentHandler) Cancel(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	s, err := h.uc.Cancel(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewShipmentResponse(s))
}

// UpdateNotes godoc
// @Summary      Actualizar notas del envío
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string            true  "ID del envío"
// @Param        body  body  dto.NotesRequest  true  "notas"
// @Success      200   {object}  dto.ShipmentResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/notes [patch]
func (h *ShipmentHandler) UpdateNotes(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.NotesRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	s, err := h.uc.UpdateNotes(c.UserContext(), c.Params("id"), in.Notes, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewShipmentResponse(s))
}

// Transfer godoc
// @Summary      Traslado directo entre sucursales
// @Description  Despacho y recepción completa en una transacción; termina en RECEIVED.
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DispatchRequest  true  "origen, destino, líneas y autorización opcional"
// @Success      201   {object}  dto.ReceiveResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      428   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *ShipmentHandler) Transfer(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.DispatchRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.uc.Transfer(c.UserContext(), in.ToInput(userID))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewReceiveResponse(res))
}
