package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-logistica/internal/application/auth"
	"github.com/jhoicas/farmacia-logistica/internal/application/inventory"
	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/infrastructure/memory"
)

type brokenRepo struct{}

func (brokenRepo) GetByUserID(context.Context, string) (*entity.SupervisorCredential, error) {
	return nil, errors.New("db caída")
}

func (brokenRepo) ListActiveByLocation(context.Context, string) ([]*entity.SupervisorCredential, error) {
	return nil, errors.New("db caída")
}

func newVerifier(t *testing.T) *auth.PinVerifier {
	t.Helper()
	store := memory.NewStore()
	for _, c := range []struct {
		id, location, pin string
		active            bool
	}{
		{"sup-centro", "SUC-01", "4321", true},
		{"sup-global", "", "8888", true},
		{"sup-baja", "SUC-01", "1111", false},
	} {
		hash, err := auth.HashPin(c.pin)
		require.NoError(t, err)
		assert.NotEqual(t, c.pin, hash)
		store.AddCredential(entity.SupervisorCredential{UserID: c.id, LocationID: c.location, PinHash: hash, Active: c.active})
	}
	return auth.NewPinVerifier(store.Credentials())
}

func TestVerifySupervisorPin(t *testing.T) {
	v := newVerifier(t)
	ctx := context.Background()
	at := func(location, supervisor string) inventory.ActorContext {
		return inventory.ActorContext{ActorID: "u1", LocationID: location, SupervisorID: supervisor}
	}

	tests := []struct {
		name  string
		actor inventory.ActorContext
		pin   string
		want  string
	}{
		{"supervisor de la sede", at("SUC-01", ""), "4321", "sup-centro"},
		{"supervisor global", at("SUC-09", ""), "8888", "sup-global"},
		{"PIN de otra sede", at("SUC-09", ""), "4321", ""},
		{"supervisor inactivo", at("SUC-01", ""), "1111", ""},
		{"supervisor explícito", at("SUC-01", "sup-centro"), "4321", "sup-centro"},
		{"supervisor explícito con PIN ajeno", at("SUC-01", "sup-centro"), "8888", ""},
		{"supervisor explícito fuera de su sede", at("SUC-02", "sup-centro"), "4321", ""},
		{"supervisor explícito inactivo", at("SUC-01", "sup-baja"), "1111", ""},
		{"supervisor inexistente", at("SUC-01", "nadie"), "4321", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.VerifySupervisorPin(ctx, tt.actor, tt.pin)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerifySupervisorPin_ErrorDeAlmacenamiento(t *testing.T) {
	v := auth.NewPinVerifier(brokenRepo{})
	_, err := v.VerifySupervisorPin(context.Background(), inventory.ActorContext{LocationID: "SUC-01"}, "4321")
	assert.Error(t, err)
	_, err = v.VerifySupervisorPin(context.Background(), inventory.ActorContext{LocationID: "SUC-01", SupervisorID: "x"}, "4321")
	assert.Error(t, err)
}
