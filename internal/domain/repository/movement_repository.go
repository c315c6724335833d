package repository

import (
	"context"
	"time"

	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
)

// MovementFilter filtro de consulta del historial.
type MovementFilter struct {
	LocationID string
	From, To   *time.Time
	Types      []entity.MovementType
	BeforeSeq  int64 // 0 = desde el más reciente
	Limit      int
}

// MovementEntryRepository puerto de persistencia del libro (solo inserción).
type MovementEntryRepository interface {
	Append(ctx context.Context, entry *entity.MovementEntry) error
	// List devuelve filas ordenadas de la más reciente a la más antigua (Seq descendente).
	List(ctx context.Context, f MovementFilter) ([]*entity.MovementEntry, error)
	// SumByKey suma los deltas de una clave (recalcula el stock desde el libro).
	SumByKey(ctx context.Context, key entity.StockKey) (int64, error)
	ListByShipment(ctx context.Context, shipmentID string) ([]*entity.MovementEntry, error)
}
