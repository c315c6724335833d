package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrInvalidTransition     = errors.New("transición de estado no permitida")
	ErrEmptyShipment         = errors.New("el envío no tiene ítems")
	ErrUnknownLocation       = errors.New("ubicación desconocida")
	ErrInvalidQuantity       = errors.New("cantidad inválida")
	ErrAuthorizationRequired = errors.New("se requiere autorización de supervisor")
	ErrAuthorizationInvalid  = errors.New("autorización de supervisor inválida")

	// ErrBusy indica contención de bloqueo; el llamador puede reintentar.
	ErrBusy = errors.New("recurso ocupado, reintente")
	// ErrStorageUnavailable es fatal para la operación en curso y no se reintenta.
	ErrStorageUnavailable = errors.New("almacenamiento no disponible")
)

// StockError detalla un decremento rechazado por falta de stock.
type StockError struct {
	ProductID  string
	LocationID string
	LotNumber  string
	Requested  int64
	Available  int64
}

func (e *StockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s en %s (lote %q): solicitado %d, disponible %d",
		e.ProductID, e.LocationID, e.LotNumber, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// ItemError asocia un error de validación a un ítem concreto del envío.
type ItemError struct {
	ItemID    string
	ProductID string
	Quantity  int64
	Err       error
}

func (e *ItemError) Error() string {
	if e.ItemID != "" {
		return fmt.Sprintf("ítem %s (producto %s, cantidad %d): %v", e.ItemID, e.ProductID, e.Quantity, e.Err)
	}
	return fmt.Sprintf("producto %s (cantidad %d): %v", e.ProductID, e.Quantity, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// TransitionError describe una acción ilegal para el estado actual del envío.
type TransitionError struct {
	ShipmentID string
	From       string
	To         string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("envío %s: no se puede pasar de %s a %s", e.ShipmentID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// AuthorizationError indica que un traslado cruzó el umbral y la autorización falta o es inválida.
type AuthorizationError struct {
	TotalQuantity int64
	Threshold     int64
	Err           error // ErrAuthorizationRequired o ErrAuthorizationInvalid
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%v: cantidad total %d, umbral %d", e.Err, e.TotalQuantity, e.Threshold)
}

func (e *AuthorizationError) Unwrap() error { return e.Err }

// LocationError identifica la ubicación que no pudo resolverse.
type LocationError struct {
	LocationID string
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("ubicación desconocida: %q", e.LocationID)
}

func (e *LocationError) Unwrap() error { return ErrUnknownLocation }
