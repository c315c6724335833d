package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/farmacia-logistica/internal/domain"
	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/domain/repository"
)

// ShipmentRepository envíos en memoria.
type ShipmentRepository struct {
	s  *Store
	tx *txState
}

var _ repository.ShipmentRepository = (*ShipmentRepository)(nil)

func (r *ShipmentRepository) lookup(id string) *entity.Shipment {
	if r.tx != nil {
		if sh, ok := r.tx.shipments[id]; ok {
			return copyShipment(sh)
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return copyShipment(r.s.shipments[id])
}

func (r *ShipmentRepository) Create(ctx context.Context, sh *entity.Shipment) error {
	if r.lookup(sh.ID) != nil {
		return fmt.Errorf("%w: envío %s ya existe", domain.ErrInvalidInput, sh.ID)
	}
	return r.put(sh)
}

func (r *ShipmentRepository) GetByID(ctx context.Context, id string) (*entity.Shipment, error) {
	return r.lookup(id), nil
}

func (r *ShipmentRepository) GetForUpdate(ctx context.Context, id string) (*entity.Shipment, error) {
	return r.lookup(id), nil
}

func (r *ShipmentRepository) Update(ctx context.Context, sh *entity.Shipment) error {
	if r.lookup(sh.ID) == nil {
		return domain.ErrNotFound
	}
	return r.put(sh)
}

func (r *ShipmentRepository) put(sh *entity.Shipment) error {
	if r.tx != nil {
		r.tx.shipments[sh.ID] = copyShipment(sh)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.shipments[sh.ID] = copyShipment(sh)
	return nil
}

func (r *ShipmentRepository) ListInTransit(ctx context.Context, locationID string) ([]*entity.Shipment, error) {
	r.s.mu.RLock()
	out := make([]*entity.Shipment, 0)
	for _, sh := range r.s.shipments {
		if sh.Status == entity.StatusInTransit && (sh.OriginID == locationID || sh.DestinationID == locationID) {
			out = append(out, copyShipment(sh))
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
