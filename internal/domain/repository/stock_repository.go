package repository

import (
	"context"

	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
)

// StockLotRepository puerto para leer/actualizar lotes por producto+ubicación+lote.
// Usado dentro de transacciones para garantizar consistencia con el libro.
type StockLotRepository interface {
	// Get devuelve el lote o nil si no existe.
	Get(ctx context.Context, key entity.StockKey) (*entity.StockLot, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE); si no existe devuelve un lote vacío.
	GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockLot, error)
	Upsert(ctx context.Context, lot *entity.StockLot) error
	ListByLocation(ctx context.Context, locationID string) ([]*entity.StockLot, error)
}
