package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/domain/repository"
)

// MovementRepository libro en memoria; solo inserción.
type MovementRepository struct {
	s  *Store
	tx *txState
}

var _ repository.MovementEntryRepository = (*MovementRepository)(nil)

// Append en transacción deja la fila pendiente; el Seq se asigna al confirmar.
func (r *MovementRepository) Append(ctx context.Context, entry *entity.MovementEntry) error {
	if r.tx != nil {
		r.tx.entries = append(r.tx.entries, entry)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.seq++
	entry.Seq = r.s.seq
	r.s.entries = append(r.s.entries, copyEntry(entry))
	return nil
}

// all filas confirmadas más las pendientes de la transacción, en orden de inserción.
func (r *MovementRepository) all() []*entity.MovementEntry {
	r.s.mu.RLock()
	out := make([]*entity.MovementEntry, 0, len(r.s.entries))
	for _, e := range r.s.entries {
		out = append(out, copyEntry(e))
	}
	r.s.mu.RUnlock()
	if r.tx != nil {
		for _, e := range r.tx.entries {
			out = append(out, copyEntry(e))
		}
	}
	return out
}

func (r *MovementRepository) List(ctx context.Context, f repository.MovementFilter) ([]*entity.MovementEntry, error) {
	types := make(map[entity.MovementType]bool, len(f.Types))
	for _, t := range f.Types {
		types[t] = true
	}
	rows := r.all()
	out := make([]*entity.MovementEntry, 0)
	for i := len(rows) - 1; i >= 0; i-- {
		e := rows[i]
		if f.LocationID != "" && e.LocationID != f.LocationID {
			continue
		}
		if f.BeforeSeq > 0 && (e.Seq == 0 || e.Seq >= f.BeforeSeq) {
			continue
		}
		if f.From != nil && e.Timestamp.Before(*f.From) {
			continue
		}
		if f.To != nil && e.Timestamp.After(*f.To) {
			continue
		}
		if len(types) > 0 && !types[e.Type] {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (r *MovementRepository) SumByKey(ctx context.Context, key entity.StockKey) (int64, error) {
	var sum int64
	for _, e := range r.all() {
		if e.Key() == key {
			sum += e.Delta
		}
	}
	return sum, nil
}

func (r *MovementRepository) ListByShipment(ctx context.Context, shipmentID string) ([]*entity.MovementEntry, error) {
	out := make([]*entity.MovementEntry, 0)
	for _, e := range r.all() {
		if e.ShipmentID == shipmentID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
