package repository

import (
	"context"

	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
)

// ShipmentRepository puerto de persistencia de envíos, ítems, recepciones y transiciones.
type ShipmentRepository interface {
	Create(ctx context.Context, s *entity.Shipment) error
	// GetByID devuelve nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Shipment, error)
	// GetForUpdate bloquea el envío dentro de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Shipment, error)
	// Update persiste estado, actores, notas, transiciones nuevas y recepciones.
	Update(ctx context.Context, s *entity.Shipment) error
	// ListInTransit envíos IN_TRANSIT cuyo origen o destino es la ubicación.
	ListInTransit(ctx context.Context, locationID string) ([]*entity.Shipment, error)
}
