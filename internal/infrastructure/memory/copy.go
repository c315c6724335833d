package memory

import "github.com/jhoicas/farmacia-logistica/internal/domain/entity"

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyLot(l *entity.StockLot) *entity.StockLot {
	if l == nil {
		return nil
	}
	c := *l
	c.ExpiryDate = copyPtr(l.ExpiryDate)
	return &c
}

func copyEntry(e *entity.MovementEntry) *entity.MovementEntry {
	c := *e
	return &c
}

func copyShipment(s *entity.Shipment) *entity.Shipment {
	if s == nil {
		return nil
	}
	c := *s
	c.ReceivedAt = copyPtr(s.ReceivedAt)
	c.Items = make([]entity.ShipmentItem, len(s.Items))
	for i, it := range s.Items {
		it.ExpiryDate = copyPtr(it.ExpiryDate)
		c.Items[i] = it
	}
	c.Transitions = append([]entity.StatusChange(nil), s.Transitions...)
	c.Received = append([]entity.ReceivedItem(nil), s.Received...)
	return &c
}
