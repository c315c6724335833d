package repository

import (
	"context"

	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
)

// SupervisorCredentialRepository lectura de PINs (hash) de supervisores.
type SupervisorCredentialRepository interface {
	// GetByUserID devuelve nil si el usuario no tiene PIN registrado.
	GetByUserID(ctx context.Context, userID string) (*entity.SupervisorCredential, error)
	// ListActiveByLocation supervisores activos que pueden autorizar en la ubicación.
	ListActiveByLocation(ctx context.Context, locationID string) ([]*entity.SupervisorCredential, error)
}
