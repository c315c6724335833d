package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/farmacia-logistica/internal/domain/repository"
)

// StockAuditUseCase compara cada lote de una ubicación contra la suma del libro.
type StockAuditUseCase struct {
	ledger *MovementLedger
	lots   repository.StockLotRepository
}

// NewStockAuditUseCase construye el caso de uso de auditoría de stock.
func NewStockAuditUseCase(ledger *MovementLedger, lots repository.StockLotRepository) *StockAuditUseCase {
	return &StockAuditUseCase{ledger: ledger, lots: lots}
}

// VerifyLocation audita todos los lotes de la ubicación.
// Orden: primero los descuadrados, de mayor a menor diferencia absoluta; luego por clave.
func (uc *StockAuditUseCase) VerifyLocation(ctx context.Context, locationID string) ([]StockAudit, error) {
	if _, err := uc.ledger.d.requireLocation(ctx, locationID); err != nil {
		return nil, err
	}
	lots, err := uc.lots.ListByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if len(lots) == 0 {
		return []StockAudit{}, nil
	}

	out := make([]StockAudit, 0, len(lots))
	for _, lot := range lots {
		a, err := uc.ledger.Verify(ctx, lot.Key())
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Consistent() != b.Consistent() {
			return !a.Consistent()
		}
		if da, db := abs(a.Drift), abs(b.Drift); da != db {
			return da > db
		}
		return a.Key.String() < b.Key.String()
	})
	return out, nil
}

// RepairLocation repara todos los lotes descuadrados de la ubicación.
func (uc *StockAuditUseCase) RepairLocation(ctx context.Context, locationID, actorID string) ([]StockAudit, error) {
	audits, err := uc.VerifyLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	repaired := make([]StockAudit, 0)
	for _, a := range audits {
		if a.Consistent() {
			break
		}
		r, err := uc.ledger.Repair(ctx, a.Key, actorID)
		if err != nil {
			return nil, err
		}
		repaired = append(repaired, *r)
	}
	return repaired, nil
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
