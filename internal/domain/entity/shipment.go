package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShipmentType tipo de movimiento físico.
type ShipmentType string

const (
	ShipmentOutbound    ShipmentType = "OUTBOUND"     // despacho
	ShipmentInterBranch ShipmentType = "INTER_BRANCH" // traslado entre sucursales
	ShipmentReturn      ShipmentType = "RETURN"       // logística inversa
	ShipmentInbound     ShipmentType = "INBOUND"      // recepción de orden de compra
)

// Valid indica si el tipo es conocido.
func (t ShipmentType) Valid() bool {
	switch t {
	case ShipmentOutbound, ShipmentInterBranch, ShipmentReturn, ShipmentInbound:
		return true
	}
	return false
}

// ShipmentStatus estado del envío.
type ShipmentStatus string

const (
	StatusDraft     ShipmentStatus = "DRAFT"
	StatusInTransit ShipmentStatus = "IN_TRANSIT"
	StatusReceived  ShipmentStatus = "RECEIVED"
	StatusPartial   ShipmentStatus = "PARTIAL"
	StatusCancelled ShipmentStatus = "CANCELLED"
)

// transitions enumera las transiciones legales.
var transitions = map[ShipmentStatus][]ShipmentStatus{
	StatusDraft:     {StatusInTransit},
	StatusInTransit: {StatusReceived, StatusPartial, StatusCancelled},
}

// Terminal indica si el estado ya no admite cambios.
func (s ShipmentStatus) Terminal() bool {
	return s == StatusReceived || s == StatusPartial || s == StatusCancelled
}

// CanTransition indica si from → to es legal.
func CanTransition(from, to ShipmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ShipmentItem línea de un envío. Quantity es la cantidad esperada.
type ShipmentItem struct {
	ID         string
	ProductID  string
	LotNumber  string
	ExpiryDate *time.Time
	Quantity   int64
	UnitCost   decimal.Decimal
	Sale       bool // sale del origen como SALE y no se reingresa en destino
}

// Key devuelve la clave del lote en la ubicación indicada.
func (i ShipmentItem) Key(locationID string) StockKey {
	return StockKey{ProductID: i.ProductID, LocationID: locationID, LotNumber: i.LotNumber}
}

// TransportMeta datos opcionales de transporte (texto libre).
type TransportMeta struct {
	Carrier        string
	TrackingNumber string
	PackageCount   int
}

// StatusChange registro de una transición aplicada.
type StatusChange struct {
	From    ShipmentStatus
	To      ShipmentStatus
	ActorID string
	At      time.Time
}

// Shipment movimiento físico de uno o más lotes entre dos ubicaciones.
type Shipment struct {
	ID            string
	Type          ShipmentType
	Status        ShipmentStatus
	OriginID      string // en INBOUND es la referencia del proveedor
	DestinationID string
	Items         []ShipmentItem
	Transport     TransportMeta
	CreatedBy     string
	AuthorizedBy  string
	ReceivedBy    string
	CreatedAt     time.Time
	ReceivedAt    *time.Time
	Notes         string
	Reference     string // orden de compra asociada (INBOUND)
	Transitions   []StatusChange
	Received      []ReceivedItem
}

// TotalQuantity suma las cantidades esperadas.
func (s *Shipment) TotalQuantity() int64 {
	var total int64
	for _, it := range s.Items {
		total += it.Quantity
	}
	return total
}

// Item busca una línea por ID.
func (s *Shipment) Item(id string) (ShipmentItem, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return ShipmentItem{}, false
}

// HasOriginLeg indica si el envío descontó stock en el origen.
func (s *Shipment) HasOriginLeg() bool {
	return s.Type != ShipmentInbound
}

// Transition aplica from → to si es legal y deja registro. Devuelve false si no lo es.
func (s *Shipment) Transition(to ShipmentStatus, actorID string, at time.Time) bool {
	if !CanTransition(s.Status, to) {
		return false
	}
	s.Transitions = append(s.Transitions, StatusChange{From: s.Status, To: to, ActorID: actorID, At: at})
	s.Status = to
	return true
}
