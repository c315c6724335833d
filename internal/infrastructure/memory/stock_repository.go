package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/domain/repository"
)

// StockLotRepository implementa repository.StockLotRepository sobre Store.
type StockLotRepository struct {
	s  *Store
	tx *txState
}

var _ repository.StockLotRepository = (*StockLotRepository)(nil)

func (r *StockLotRepository) lookup(key entity.StockKey) *entity.StockLot {
	if r.tx != nil {
		if l, ok := r.tx.lots[key]; ok {
			return copyLot(l)
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return copyLot(r.s.lots[key])
}

func (r *StockLotRepository) Get(ctx context.Context, key entity.StockKey) (*entity.StockLot, error) {
	return r.lookup(key), nil
}

// GetForUpdate en memoria no bloquea: la exclusión la dan la transacción serializada y el KeyLocker.
func (r *StockLotRepository) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockLot, error) {
	if l := r.lookup(key); l != nil {
		return l, nil
	}
	return entity.NewEmptyLot(key), nil
}

func (r *StockLotRepository) Upsert(ctx context.Context, lot *entity.StockLot) error {
	if r.tx != nil {
		r.tx.lots[lot.Key()] = copyLot(lot)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.lots[lot.Key()] = copyLot(lot)
	return nil
}

func (r *StockLotRepository) ListByLocation(ctx context.Context, locationID string) ([]*entity.StockLot, error) {
	r.s.mu.RLock()
	merged := make(map[entity.StockKey]*entity.StockLot)
	for k, l := range r.s.lots {
		if k.LocationID == locationID {
			merged[k] = copyLot(l)
		}
	}
	r.s.mu.RUnlock()
	if r.tx != nil {
		for k, l := range r.tx.lots {
			if k.LocationID == locationID {
				merged[k] = copyLot(l)
			}
		}
	}

	out := make([]*entity.StockLot, 0, len(merged))
	for _, l := range merged {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].LotNumber < out[j].LotNumber
	})
	return out, nil
}
