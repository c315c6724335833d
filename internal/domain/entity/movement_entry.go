package entity

import "time"

// MovementType clasifica cada fila del libro de movimientos (conjunto cerrado).
type MovementType string

const (
	MovementSale          MovementType = "SALE"
	MovementTransferOut   MovementType = "TRANSFER_OUT"
	MovementTransferIn    MovementType = "TRANSFER_IN"
	MovementReceipt       MovementType = "RECEIPT"
	MovementPurchaseEntry MovementType = "PURCHASE_ENTRY"
	MovementLoss          MovementType = "LOSS"
	MovementReturn        MovementType = "RETURN"
	MovementAdjustment    MovementType = "ADJUSTMENT"
)

// MovementTypes lista los tipos válidos.
var MovementTypes = []MovementType{
	MovementSale, MovementTransferOut, MovementTransferIn, MovementReceipt,
	MovementPurchaseEntry, MovementLoss, MovementReturn, MovementAdjustment,
}

// Valid indica si el tipo pertenece al conjunto cerrado.
func (t MovementType) Valid() bool {
	for _, v := range MovementTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Sign devuelve el signo que debe tener el delta: -1 salida, +1 entrada, 0 cualquiera (ajuste).
func (t MovementType) Sign() int {
	switch t {
	case MovementSale, MovementTransferOut, MovementLoss:
		return -1
	case MovementTransferIn, MovementReceipt, MovementPurchaseEntry, MovementReturn:
		return 1
	default:
		return 0
	}
}

// MovementEntry es una fila inmutable del libro. Las correcciones son filas nuevas.
type MovementEntry struct {
	ID             string
	Seq            int64 // orden total de inserción; base de la paginación
	ProductID      string
	LocationID     string
	LotNumber      string
	Type           MovementType
	Delta          int64
	QuantityBefore int64
	QuantityAfter  int64
	Timestamp      time.Time
	ActorID        string
	Reference      string // factura, orden, "cancel:<id>", etc.
	ShipmentID     string
}

// Key devuelve la clave del lote afectado.
func (m *MovementEntry) Key() StockKey {
	return StockKey{ProductID: m.ProductID, LocationID: m.LocationID, LotNumber: m.LotNumber}
}

// Consistent verifica la propiedad central del libro: after = before + delta.
func (m *MovementEntry) Consistent() bool {
	return m.QuantityAfter == m.QuantityBefore+m.Delta
}
