package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo directorio de ubicaciones (sucursales, bodegas, central).
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador del directorio.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// GetByID obtiene una ubicación por ID o nil si no existe.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	var l entity.Location
	err := r.q.QueryRow(ctx, `SELECT id, name, type, active FROM locations WHERE id = $1`, id).
		Scan(&l.ID, &l.Name, &l.Type, &l.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get location", err)
	}
	return &l, nil
}

// List ubicaciones filtradas por tipo y estado, ordenadas por nombre.
func (r *LocationRepo) List(ctx context.Context, f entity.LocationFilter) ([]*entity.Location, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, type, active FROM locations
		WHERE ($1 = '' OR type = $1) AND (NOT $2 OR active)
		ORDER BY name`, string(f.Type), f.OnlyActive)
	if err != nil {
		return nil, mapError("list locations", err)
	}
	defer rows.Close()

	out := make([]*entity.Location, 0)
	for rows.Next() {
		var l entity.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Type, &l.Active); err != nil {
			return nil, mapError("scan location", err)
		}
		out = append(out, &l)
	}
	return out, mapError("list locations", rows.Err())
}

// Upsert alta o actualización de una ubicación (sincronización con el directorio externo).
func (r *LocationRepo) Upsert(ctx context.Context, l *entity.Location) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO locations (id, name, type, active) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, type = EXCLUDED.type, active = EXCLUDED.active`,
		l.ID, l.Name, string(l.Type), l.Active)
	return mapError("upsert location", err)
}
