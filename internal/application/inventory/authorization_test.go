package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-logistica/internal/application/inventory"
	"github.com/jhoicas/farmacia-logistica/internal/domain"
	domaininv "github.com/jhoicas/farmacia-logistica/internal/domain/inventory"
)

type stubVerifier struct {
	id    string
	err   error
	calls int
	last  inventory.ActorContext
}

func (s *stubVerifier) VerifySupervisorPin(_ context.Context, actor inventory.ActorContext, _ string) (string, error) {
	s.calls++
	s.last = actor
	return s.id, s.err
}

func TestAuthorizer(t *testing.T) {
	ctx := context.Background()
	actorCtx := inventory.ActorContext{ActorID: actor, LocationID: storeA}

	t.Run("bajo el umbral no consulta", func(t *testing.T) {
		v := &stubVerifier{}
		by, err := inventory.NewAuthorizer(domaininv.DefaultPolicy(), v).Authorize(ctx, actorCtx, inventory.AuthorizationInput{}, 99)
		require.NoError(t, err)
		assert.Empty(t, by)
		assert.Zero(t, v.calls)
	})

	t.Run("PIN correcto con supervisor", func(t *testing.T) {
		v := &stubVerifier{id: "s9"}
		by, err := inventory.NewAuthorizer(domaininv.DefaultPolicy(), v).Authorize(ctx, actorCtx, inventory.AuthorizationInput{SupervisorID: "s9", PIN: "1234"}, 100)
		require.NoError(t, err)
		assert.Equal(t, "s9", by)
		assert.Equal(t, "s9", v.last.SupervisorID)
		assert.Equal(t, storeA, v.last.LocationID)
	})

	t.Run("PIN correcto sin supervisor registra a quien firmó", func(t *testing.T) {
		v := &stubVerifier{id: "s7"}
		by, err := inventory.NewAuthorizer(domaininv.DefaultPolicy(), v).Authorize(ctx, actorCtx, inventory.AuthorizationInput{PIN: "1234"}, 100)
		require.NoError(t, err)
		assert.Equal(t, "s7", by)
		assert.NotEqual(t, actor, by)
		assert.Empty(t, v.last.SupervisorID)
	})

	t.Run("PIN incorrecto", func(t *testing.T) {
		v := &stubVerifier{}
		_, err := inventory.NewAuthorizer(domaininv.DefaultPolicy(), v).Authorize(ctx, actorCtx, inventory.AuthorizationInput{PIN: "1234"}, 150)
		assert.ErrorIs(t, err, domain.ErrAuthorizationInvalid)
	})

	t.Run("sin verificador", func(t *testing.T) {
		_, err := inventory.NewAuthorizer(domaininv.DefaultPolicy(), nil).Authorize(ctx, actorCtx, inventory.AuthorizationInput{PIN: "1234"}, 150)
		assert.ErrorIs(t, err, domain.ErrAuthorizationInvalid)
	})

	t.Run("fallo del verificador", func(t *testing.T) {
		v := &stubVerifier{err: errors.New("timeout")}
		_, err := inventory.NewAuthorizer(domaininv.DefaultPolicy(), v).Authorize(ctx, actorCtx, inventory.AuthorizationInput{PIN: "1234"}, 150)
		assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
		var authErr *domain.AuthorizationError
		assert.False(t, errors.As(err, &authErr))
	})

	t.Run("umbral configurable", func(t *testing.T) {
		a := inventory.NewAuthorizer(domaininv.Policy{Threshold: 10}, &stubVerifier{id: "s9"})
		assert.Equal(t, int64(10), a.Policy().EffectiveThreshold())
		_, err := a.Authorize(ctx, actorCtx, inventory.AuthorizationInput{}, 10)
		assert.ErrorIs(t, err, domain.ErrAuthorizationRequired)
	})
}

func TestRejectionReason(t *testing.T) {
	assert.Equal(t, "insufficient_stock", inventory.RejectionReason(&domain.StockError{}))
	assert.Equal(t, "invalid_transition", inventory.RejectionReason(&domain.TransitionError{}))
	assert.Equal(t, "authorization_required", inventory.RejectionReason(&domain.AuthorizationError{Err: domain.ErrAuthorizationRequired}))
	assert.Equal(t, "unknown_location", inventory.RejectionReason(&domain.LocationError{}))
	assert.Equal(t, "internal", inventory.RejectionReason(errors.New("x")))
}
