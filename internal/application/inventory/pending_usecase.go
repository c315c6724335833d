package inventory

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/farmacia-logistica/internal/domain"
	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/domain/inventory"
	"github.com/jhoicas/farmacia-logistica/internal/domain/repository"
	"github.com/jhoicas/farmacia-logistica/pkg/logger"
)

// PendingKind origen del pendiente.
type PendingKind string

const (
	PendingShipment      PendingKind = "SHIPMENT"
	PendingPurchaseOrder PendingKind = "PURCHASE_ORDER"
)

// PendingItem envío u orden de compra en tránsito visto desde una ubicación.
type PendingItem struct {
	Kind          PendingKind
	ID            string
	Status        string
	Direction     inventory.Direction
	Route         inventory.Route
	CreatedAt     time.Time
	ItemCount     int
	TotalQuantity int64
}

// PendingUseCase tablero de tránsito: envíos IN_TRANSIT y órdenes de compra pendientes.
type PendingUseCase struct {
	shipments repository.ShipmentRepository
	orders    PurchaseOrderSource
	locations LocationDirectory
	log       *logger.Logger
}

// NewPendingUseCase construye el caso de uso. orders nil = sin órdenes de compra.
func NewPendingUseCase(shipments repository.ShipmentRepository, orders PurchaseOrderSource, locations LocationDirectory, log *logger.Logger) *PendingUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PendingUseCase{shipments: shipments, orders: orders, locations: locations, log: log}
}

// PendingForLocation clasifica los pendientes por dirección respecto a locationID.
// dir vacío = entrantes y salientes (los NEUTRAL se omiten). Orden: más reciente primero.
func (uc *PendingUseCase) PendingForLocation(ctx context.Context, locationID string, dir inventory.Direction) ([]PendingItem, error) {
	ctx, span := tracer.Start(ctx, "pending.ForLocation")
	defer span.End()

	if locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	if uc.locations != nil {
		loc, err := uc.locations.GetByID(ctx, locationID)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, &domain.LocationError{LocationID: locationID}
		}
	}

	var (
		shipments []*entity.Shipment
		orders    []*entity.PurchaseOrder
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		shipments, err = uc.shipments.ListInTransit(gctx, locationID)
		return err
	})
	if uc.orders != nil {
		g.Go(func() error {
			var err error
			orders, err = uc.orders.ListPending(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]PendingItem, 0, len(shipments)+len(orders))
	keep := func(d inventory.Direction) bool {
		if dir == "" {
			return d != inventory.DirectionNeutral
		}
		return d == dir
	}
	for _, s := range shipments {
		if s == nil || s.Status != entity.StatusInTransit {
			continue
		}
		route := inventory.RouteOfShipment(s)
		d := inventory.Resolve(route, locationID)
		if !keep(d) {
			continue
		}
		out = append(out, PendingItem{
			Kind:          PendingShipment,
			ID:            s.ID,
			Status:        string(s.Status),
			Direction:     d,
			Route:         route,
			CreatedAt:     s.CreatedAt,
			ItemCount:     len(s.Items),
			TotalQuantity: s.TotalQuantity(),
		})
	}
	for _, o := range orders {
		if o == nil || !o.Pending() {
			continue
		}
		route := inventory.RouteOfOrder(o)
		d := inventory.Resolve(route, locationID)
		if !keep(d) {
			continue
		}
		out = append(out, PendingItem{
			Kind:          PendingPurchaseOrder,
			ID:            o.ID,
			Status:        o.Status,
			Direction:     d,
			Route:         route,
			CreatedAt:     o.CreatedAt,
			ItemCount:     o.ItemCount,
			TotalQuantity: o.TotalQuantity,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	uc.log.Debug().Str("location", locationID).Str("direction", string(dir)).Int("count", len(out)).Msg("pendientes calculados")
	return out, nil
}
