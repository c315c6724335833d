package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/farmacia-logistica/internal/application/inventory"
	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/domain/repository"
)

// PinVerifier valida PINs de supervisor contra hashes bcrypt.
type PinVerifier struct {
	repo repository.SupervisorCredentialRepository
}

var _ inventory.CredentialVerifier = (*PinVerifier)(nil)

// NewPinVerifier construye el verificador.
func NewPinVerifier(repo repository.SupervisorCredentialRepository) *PinVerifier {
	return &PinVerifier{repo: repo}
}

// HashPin genera el hash bcrypt de un PIN para persistirlo.
func HashPin(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return string(hash), nil
}

// VerifySupervisorPin con SupervisorID compara solo contra ese supervisor;
// sin él, contra cualquier supervisor activo de la ubicación del actor.
// Devuelve el ID del supervisor cuyo PIN coincide.
func (v *PinVerifier) VerifySupervisorPin(ctx context.Context, actor inventory.ActorContext, pin string) (string, error) {
	if actor.SupervisorID != "" {
		cred, err := v.repo.GetByUserID(ctx, actor.SupervisorID)
		if err != nil {
			return "", err
		}
		if cred == nil || !cred.Active || !coversLocation(cred, actor.LocationID) || !matches(cred.PinHash, pin) {
			return "", nil
		}
		return cred.UserID, nil
	}

	creds, err := v.repo.ListActiveByLocation(ctx, actor.LocationID)
	if err != nil {
		return "", err
	}
	for _, cred := range creds {
		if cred.Active && matches(cred.PinHash, pin) {
			return cred.UserID, nil
		}
	}
	return "", nil
}

func coversLocation(cred *entity.SupervisorCredential, locationID string) bool {
	return cred.LocationID == "" || cred.LocationID == locationID
}

func matches(hash, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
