package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/farmacia-logistica/internal/domain"
	"github.com/jhoicas/farmacia-logistica/internal/domain/inventory"
)

// AuthorizationInput PIN de supervisor presentado con el traslado.
type AuthorizationInput struct {
	SupervisorID string
	PIN          string
}

// Authorizer aplica la política de umbral antes de cualquier cerrojo o escritura.
type Authorizer struct {
	policy   inventory.Policy
	verifier CredentialVerifier
}

// NewAuthorizer construye el autorizador. Sin verificador, toda autorización requerida falla.
func NewAuthorizer(policy inventory.Policy, verifier CredentialVerifier) *Authorizer {
	return &Authorizer{policy: policy, verifier: verifier}
}

// Policy política vigente.
func (a *Authorizer) Policy() inventory.Policy { return a.policy }

// Authorize devuelve el supervisor que autorizó ("" si no hacía falta).
// Falta de PIN = ErrAuthorizationRequired; formato o PIN incorrecto = ErrAuthorizationInvalid;
// si el verificador falla la operación se aborta con ErrStorageUnavailable.
func (a *Authorizer) Authorize(ctx context.Context, actor ActorContext, in AuthorizationInput, totalQuantity int64) (string, error) {
	if !a.policy.RequiresAuthorization(totalQuantity) {
		return "", nil
	}
	deny := func(err error) error {
		return &domain.AuthorizationError{
			TotalQuantity: totalQuantity,
			Threshold:     a.policy.EffectiveThreshold(),
			Err:           err,
		}
	}
	if in.PIN == "" {
		return "", deny(domain.ErrAuthorizationRequired)
	}
	if !a.policy.ValidPinFormat(in.PIN) || a.verifier == nil {
		return "", deny(domain.ErrAuthorizationInvalid)
	}

	actor.SupervisorID = in.SupervisorID
	supervisorID, err := a.verifier.VerifySupervisorPin(ctx, actor, in.PIN)
	if err != nil {
		return "", fmt.Errorf("%w: verificar PIN: %v", domain.ErrStorageUnavailable, err)
	}
	if supervisorID == "" {
		return "", deny(domain.ErrAuthorizationInvalid)
	}
	return supervisorID, nil
}
