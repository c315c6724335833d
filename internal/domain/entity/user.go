package entity

import "time"

// Roles válidos en el token del actor.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleBodeguero  = "bodeguero"
	RoleVendedor   = "vendedor"
)

// SupervisorCredential PIN de autorización de un supervisor.
// PinHash es bcrypt; el PIN plano nunca se persiste.
type SupervisorCredential struct {
	UserID     string
	LocationID string // vacío = vale para todas las ubicaciones
	PinHash    string
	Active     bool
	UpdatedAt  time.Time
}
