package entity

// ItemCondition estado físico de lo recibido.
type ItemCondition string

const (
	ConditionGood       ItemCondition = "GOOD"
	ConditionDamaged    ItemCondition = "DAMAGED"
	ConditionExpired    ItemCondition = "EXPIRED"
	ConditionNearExpiry ItemCondition = "NEAR_EXPIRY"
	ConditionMissing    ItemCondition = "MISSING"
)

// Valid indica si la condición es conocida.
func (c ItemCondition) Valid() bool {
	switch c {
	case ConditionGood, ConditionDamaged, ConditionExpired, ConditionNearExpiry, ConditionMissing:
		return true
	}
	return false
}

// ReceivedItem conteo de recepción para una línea del envío.
// Una línea puede tener varias filas si lo recibido se divide por condición.
type ReceivedItem struct {
	ShipmentItemID string
	Expected       int64
	Received       int64
	Condition      ItemCondition
}
