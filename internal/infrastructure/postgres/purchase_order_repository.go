package postgres

import (
	"context"

	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo lectura de la proyección de órdenes de compra.
type PurchaseOrderRepo struct {
	q Querier
}

func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// ListPending órdenes en estados pendientes (comparación sin distinguir mayúsculas).
func (r *PurchaseOrderRepo) ListPending(ctx context.Context) ([]*entity.PurchaseOrder, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, status, location_id, notes, created_at, item_count, total_quantity
		FROM purchase_orders
		WHERE upper(trim(status)) IN ('PENDING', 'APPROVED', 'SENT', 'IN_TRANSIT')
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, mapError("list pending purchase orders", err)
	}
	defer rows.Close()

	out := make([]*entity.PurchaseOrder, 0)
	for rows.Next() {
		var o entity.PurchaseOrder
		if err := rows.Scan(&o.ID, &o.Status, &o.LocationID, &o.Notes, &o.CreatedAt, &o.ItemCount, &o.TotalQuantity); err != nil {
			return nil, mapError("scan purchase order", err)
		}
		out = append(out, &o)
	}
	return out, mapError("list pending purchase orders", rows.Err())
}
