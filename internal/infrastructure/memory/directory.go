package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/domain/repository"
)

// LocationRepository directorio de ubicaciones en memoria.
type LocationRepository struct{ s *Store }

var _ repository.LocationRepository = (*LocationRepository)(nil)

func (r *LocationRepository) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if l, ok := r.s.locations[id]; ok {
		c := *l
		return &c, nil
	}
	return nil, nil
}

func (r *LocationRepository) List(ctx context.Context, f entity.LocationFilter) ([]*entity.Location, error) {
	r.s.mu.RLock()
	out := make([]*entity.Location, 0, len(r.s.locations))
	for _, l := range r.s.locations {
		if f.Type != "" && l.Type != f.Type {
			continue
		}
		if f.OnlyActive && !l.Active {
			continue
		}
		c := *l
		out = append(out, &c)
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// PurchaseOrderRepository órdenes de compra en memoria.
type PurchaseOrderRepository struct{ s *Store }

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepository)(nil)

func (r *PurchaseOrderRepository) ListPending(ctx context.Context) ([]*entity.PurchaseOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.PurchaseOrder, 0)
	for _, o := range r.s.orders {
		if o.Pending() {
			c := *o
			out = append(out, &c)
		}
	}
	return out, nil
}

// CredentialRepository PINs de supervisores en memoria.
type CredentialRepository struct{ s *Store }

var _ repository.SupervisorCredentialRepository = (*CredentialRepository)(nil)

func (r *CredentialRepository) GetByUserID(ctx context.Context, userID string) (*entity.SupervisorCredential, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if c, ok := r.s.credentials[userID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *CredentialRepository) ListActiveByLocation(ctx context.Context, locationID string) ([]*entity.SupervisorCredential, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.SupervisorCredential, 0)
	for _, c := range r.s.credentials {
		if c.Active && (c.LocationID == "" || c.LocationID == locationID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}
