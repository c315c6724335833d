package audit

import "time"

// Action nombre estable del evento; se usa como clave en Kafka y en los logs.
type Action string

const (
	ActionMovementRecorded     Action = "movement.recorded"
	ActionShipmentDispatched   Action = "shipment.dispatched"
	ActionShipmentRegistered   Action = "shipment.registered"
	ActionShipmentReceived     Action = "shipment.received"
	ActionShipmentPartial      Action = "shipment.partial"
	ActionShipmentCancelled    Action = "shipment.cancelled"
	ActionShipmentNotesUpdated Action = "shipment.notes_updated"
	ActionAuthorizationDenied  Action = "authorization.denied"
	ActionStockRepaired        Action = "stock.repaired"
)

// Event registro de una acción confirmada. Independiente del transporte.
type Event struct {
	ID         string    `json:"id"`
	Action     Action    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
	ActorID    string    `json:"actor_id"`
	LocationID string    `json:"location_id,omitempty"`
	ShipmentID string    `json:"shipment_id,omitempty"`

	// Movimiento (movement.recorded, stock.repaired)
	ProductID      string `json:"product_id,omitempty"`
	LotNumber      string `json:"lot_number,omitempty"`
	MovementType   string `json:"movement_type,omitempty"`
	Delta          int64  `json:"delta,omitempty"`
	QuantityBefore int64  `json:"quantity_before,omitempty"`
	QuantityAfter  int64  `json:"quantity_after,omitempty"`

	// Envío (shipment.*)
	FromStatus string `json:"from_status,omitempty"`
	ToStatus   string `json:"to_status,omitempty"`

	Reference string `json:"reference,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Key clave de partición: el envío si existe, si no la ubicación.
func (e Event) Key() string {
	if e.ShipmentID != "" {
		return e.ShipmentID
	}
	return e.LocationID
}
