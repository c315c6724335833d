package entity

import (
	"strings"
	"time"
)

// PurchaseOrder proyección de solo lectura de una orden de compra externa.
// Notes puede codificar la ruta como "ORIGEN:Nombre(id)|DESTINO:Nombre(id)".
type PurchaseOrder struct {
	ID            string
	Status        string
	LocationID    string
	Notes         string
	CreatedAt     time.Time
	ItemCount     int
	TotalQuantity int64
}

// pendingOrderStatuses estados en los que la orden se considera mercancía en tránsito.
var pendingOrderStatuses = []string{"PENDING", "APPROVED", "SENT", "IN_TRANSIT"}

// Pending indica si la orden sigue pendiente de recepción.
func (o *PurchaseOrder) Pending() bool {
	st := strings.TrimSpace(o.Status)
	for _, s := range pendingOrderStatuses {
		if strings.EqualFold(st, s) {
			return true
		}
	}
	return false
}
