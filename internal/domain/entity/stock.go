package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockKey identifica un lote de producto en una ubicación. LotNumber vacío = sin lote.
type StockKey struct {
	ProductID  string
	LocationID string
	LotNumber  string
}

// String devuelve la clave canónica usada para ordenar y bloquear.
func (k StockKey) String() string {
	return "stock:" + k.ProductID + "|" + k.LocationID + "|" + k.LotNumber
}

// StockLot representa la cantidad disponible de un producto/lote en una ubicación.
// Solo el libro de movimientos la modifica; Quantity es derivable de la suma de deltas.
type StockLot struct {
	ProductID  string
	LocationID string
	LotNumber  string
	ExpiryDate *time.Time
	Quantity   int64
	UnitCost   decimal.Decimal // costo promedio ponderado
	SalePrice  decimal.Decimal
	UpdatedAt  time.Time
}

// Key devuelve la clave del lote.
func (l *StockLot) Key() StockKey {
	return StockKey{ProductID: l.ProductID, LocationID: l.LocationID, LotNumber: l.LotNumber}
}

// NewEmptyLot construye un lote vacío para una clave que aún no tiene existencias.
func NewEmptyLot(key StockKey) *StockLot {
	return &StockLot{
		ProductID:  key.ProductID,
		LocationID: key.LocationID,
		LotNumber:  key.LotNumber,
		UnitCost:   decimal.Zero,
		SalePrice:  decimal.Zero,
	}
}
