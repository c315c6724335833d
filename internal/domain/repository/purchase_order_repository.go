package repository

import (
	"context"

	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
)

// PurchaseOrderRepository lectura de órdenes de compra externas.
type PurchaseOrderRepository interface {
	// ListPending órdenes aún no recibidas (ver PurchaseOrder.Pending).
	ListPending(ctx context.Context) ([]*entity.PurchaseOrder, error)
}
