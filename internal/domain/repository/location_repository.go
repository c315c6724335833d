package repository

import (
	"context"

	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
)

// LocationRepository directorio de ubicaciones (propiedad de un colaborador externo; solo lectura).
type LocationRepository interface {
	// GetByID devuelve nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	List(ctx context.Context, f entity.LocationFilter) ([]*entity.Location, error)
}
