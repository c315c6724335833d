package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/farmacia-logistica/internal/domain"
	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/domain/inventory"
	"github.com/jhoicas/farmacia-logistica/internal/domain/repository"
	"github.com/jhoicas/farmacia-logistica/internal/infrastructure/metrics"
	"github.com/jhoicas/farmacia-logistica/pkg/logger"
)

var tracer = otel.Tracer("github.com/jhoicas/farmacia-logistica/internal/application/inventory")

// RetryConfig reintentos ante domain.ErrBusy. MaxRetries 0 = un solo intento.
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetry 3 reintentos con backoff exponencial desde 50ms.
func DefaultRetry() RetryConfig {
	return RetryConfig{MaxRetries: 3, InitialInterval: 50 * time.Millisecond, MaxInterval: time.Second}
}

// Deps colaboradores compartidos por los casos de uso del núcleo.
// Los repositorios sirven las lecturas fuera de transacción.
type Deps struct {
	Tx        TxRunner
	Locker    KeyLocker // nil = sin cerrojo en proceso (solo bloqueos de fila de la BD)
	Locations LocationDirectory
	Movements repository.MovementEntryRepository
	Lots      repository.StockLotRepository
	Shipments repository.ShipmentRepository
	Audit     AuditSink
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
	Retry     RetryConfig
	Clock     func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Audit == nil {
		d.Audit = nopSink{}
	}
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	if d.Clock == nil {
		d.Clock = func() time.Time { return time.Now().UTC() }
	}
	if d.Retry == (RetryConfig{}) {
		d.Retry = DefaultRetry()
	}
	if d.Retry.MaxRetries < 0 {
		d.Retry.MaxRetries = 0
	}
	if d.Retry.InitialInterval <= 0 {
		d.Retry.InitialInterval = DefaultRetry().InitialInterval
	}
	return d
}

// exclusive adquiere las claves en orden canónico, ejecuta fn y libera.
// Solo domain.ErrBusy se reintenta; cualquier otro error corta de inmediato.
func (d Deps) exclusive(ctx context.Context, keys []string, fn func() error) error {
	keys = inventory.LockOrder(keys)
	attempt := func() error {
		err := d.lockAndRun(ctx, keys, fn)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrBusy) {
			d.Metrics.IncBusyRetry()
			return err
		}
		return backoff.Permanent(err)
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = d.Retry.InitialInterval
	if d.Retry.MaxInterval > 0 {
		expo.MaxInterval = d.Retry.MaxInterval
	}
	expo.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(d.Retry.MaxRetries)), ctx)
	return backoff.Retry(attempt, b)
}

func (d Deps) lockAndRun(ctx context.Context, keys []string, fn func() error) error {
	if d.Locker != nil && len(keys) > 0 {
		unlock, err := d.Locker.Lock(ctx, keys)
		if err != nil {
			return err
		}
		defer unlock()
	}
	return fn()
}

// requireLocation resuelve una ubicación; inexistente o inactiva = *domain.LocationError.
func (d Deps) requireLocation(ctx context.Context, id string) (*entity.Location, error) {
	if id == "" {
		return nil, &domain.LocationError{LocationID: id}
	}
	loc, err := d.Locations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil || !loc.Active {
		return nil, &domain.LocationError{LocationID: id}
	}
	return loc, nil
}

// reject registra el rechazo en métricas y en el span.
func (d Deps) reject(span trace.Span, err error) error {
	if err == nil {
		return nil
	}
	d.Metrics.IncRejection(RejectionReason(err))
	span.RecordError(err)
	span.SetStatus(codes.Error, RejectionReason(err))
	return err
}

// RejectionReason etiqueta estable para un error del núcleo.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrEmptyShipment):
		return "empty_shipment"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, domain.ErrUnknownLocation):
		return "unknown_location"
	case errors.Is(err, domain.ErrAuthorizationRequired):
		return "authorization_required"
	case errors.Is(err, domain.ErrAuthorizationInvalid):
		return "authorization_invalid"
	case errors.Is(err, domain.ErrBusy):
		return "busy"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "storage_unavailable"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal"
	}
}
