package inventory

import (
	"context"

	"github.com/jhoicas/farmacia-logistica/internal/domain/audit"
	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error no queda ninguna escritura; si no, todas se confirman juntas.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ctx context.Context,
		movRepo repository.MovementEntryRepository,
		lotRepo repository.StockLotRepository,
		shipRepo repository.ShipmentRepository,
	) error) error
}

// KeyLocker serializa escritores sobre las mismas claves (lotes, envíos).
// Lock deduplica y ordena las claves antes de adquirirlas; al vencer el plazo devuelve domain.ErrBusy.
type KeyLocker interface {
	Lock(ctx context.Context, keys []string) (unlock func(), err error)
}

// LocationDirectory resuelve ubicaciones; nil = desconocida.
type LocationDirectory interface {
	GetByID(ctx context.Context, id string) (*entity.Location, error)
}

// ActorContext quién pide la autorización y para qué ubicación.
type ActorContext struct {
	ActorID      string
	SupervisorID string // opcional; vacío = cualquier supervisor activo de la ubicación
	LocationID   string
}

// CredentialVerifier valida el PIN de un supervisor y devuelve quién lo firmó
// ("" si ningún supervisor coincide). Un error significa que no se pudo verificar.
type CredentialVerifier interface {
	VerifySupervisorPin(ctx context.Context, actor ActorContext, pin string) (supervisorID string, err error)
}

// AuditSink recibe eventos ya confirmados. No bloquea ni devuelve error.
type AuditSink interface {
	Publish(ctx context.Context, event audit.Event)
}

// PurchaseOrderSource órdenes de compra aún no recibidas.
type PurchaseOrderSource interface {
	ListPending(ctx context.Context) ([]*entity.PurchaseOrder, error)
}

type nopSink struct{}

func (nopSink) Publish(context.Context, audit.Event) {}
