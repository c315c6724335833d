package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/domain/repository"
)

var _ repository.SupervisorCredentialRepository = (*SupervisorCredentialRepo)(nil)

// SupervisorCredentialRepo hashes de PIN de supervisores.
type SupervisorCredentialRepo struct {
	q Querier
}

func NewSupervisorCredentialRepository(q Querier) *SupervisorCredentialRepo {
	return &SupervisorCredentialRepo{q: q}
}

func (r *SupervisorCredentialRepo) GetByUserID(ctx context.Context, userID string) (*entity.SupervisorCredential, error) {
	var c entity.SupervisorCredential
	err := r.q.QueryRow(ctx, `
		SELECT user_id, location_id, pin_hash, active, updated_at
		FROM supervisor_credentials WHERE user_id = $1`, userID).
		Scan(&c.UserID, &c.LocationID, &c.PinHash, &c.Active, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get supervisor credential", err)
	}
	return &c, nil
}

// ListActiveByLocation supervisores de la ubicación más los globales (location_id vacío).
func (r *SupervisorCredentialRepo) ListActiveByLocation(ctx context.Context, locationID string) ([]*entity.SupervisorCredential, error) {
	rows, err := r.q.Query(ctx, `
		SELECT user_id, location_id, pin_hash, active, updated_at
		FROM supervisor_credentials
		WHERE active AND (location_id = $1 OR location_id = '')`, locationID)
	if err != nil {
		return nil, mapError("list supervisor credentials", err)
	}
	defer rows.Close()

	out := make([]*entity.SupervisorCredential, 0)
	for rows.Next() {
		var c entity.SupervisorCredential
		if err := rows.Scan(&c.UserID, &c.LocationID, &c.PinHash, &c.Active, &c.UpdatedAt); err != nil {
			return nil, mapError("scan supervisor credential", err)
		}
		out = append(out, &c)
	}
	return out, mapError("list supervisor credentials", rows.Err())
}

// Upsert registra o rota el PIN (ya hasheado) de un supervisor.
func (r *SupervisorCredentialRepo) Upsert(ctx context.Context, c *entity.SupervisorCredential) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO supervisor_credentials (user_id, location_id, pin_hash, active, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id) DO UPDATE SET location_id = EXCLUDED.location_id, pin_hash = EXCLUDED.pin_hash,
		                                    active = EXCLUDED.active, updated_at = now()`,
		c.UserID, c.LocationID, c.PinHash, c.Active)
	return mapError("upsert supervisor credential", err)
}
