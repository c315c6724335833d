package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-logistica/internal/application/inventory"
	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	domaininv "github.com/jhoicas/farmacia-logistica/internal/domain/inventory"
)

// ShipmentItemRequest línea solicitada en despacho, traslado o ingreso de proveedor.
type ShipmentItemRequest struct {
	ProductID  string           `json:"product_id"`
	LotNumber  string           `json:"lot_number,omitempty"`
	Quantity   int64            `json:"quantity"`
	Sale       bool             `json:"sale,omitempty"`
	UnitCost   *decimal.Decimal `json:"unit_cost,omitempty"`
	ExpiryDate *time.Time       `json:"expiry_date,omitempty"`
}

// TransportRequest datos opcionales de transporte.
type TransportRequest struct {
	Carrier        string `json:"carrier,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	PackageCount   int    `json:"package_count,omitempty"`
}

// AuthorizationRequest PIN de supervisor para traslados sobre el umbral.
type AuthorizationRequest struct {
	SupervisorID string `json:"supervisor_id,omitempty"`
	PIN          string `json:"pin,omitempty"`
}

// DispatchRequest body para POST /api/shipments y POST /api/transfers.
type DispatchRequest struct {
	Type          string                `json:"type,omitempty"`
	OriginID      string                `json:"origin_id"`
	DestinationID string                `json:"destination_id"`
	Items         []ShipmentItemRequest `json:"items"`
	Transport     TransportRequest      `json:"transport"`
	Notes         string                `json:"notes,omitempty"`
	Authorization *AuthorizationRequest `json:"authorization,omitempty"`
}

// InboundRequest body para POST /api/shipments/inbound.
type InboundRequest struct {
	SupplierRef     string                `json:"supplier_ref"`
	DestinationID   string                `json:"destination_id"`
	PurchaseOrderID string                `json:"purchase_order_id,omitempty"`
	Items           []ShipmentItemRequest `json:"items"`
	Transport       TransportRequest      `json:"transport"`
	Notes           string                `json:"notes,omitempty"`
}

// ReceivedItemRequest conteo de una línea; varias filas por línea dividen el conteo por condición.
type ReceivedItemRequest struct {
	ShipmentItemID string `json:"shipment_item_id"`
	Received       int64  `json:"received"`
	Condition      string `json:"condition,omitempty"`
}

// ReceiveRequest body para POST /api/shipments/:id/receive.
type ReceiveRequest struct {
	Items []ReceivedItemRequest `json:"items"`
}

// NotesRequest body para PATCH /api/shipments/:id/notes.
type NotesRequest struct {
	Notes string `json:"notes"`
}

func toItemInputs(items []ShipmentItemRequest) []inventory.ItemInput {
	out := make([]inventory.ItemInput, 0, len(items))
	for _, it := range items {
		in := inventory.ItemInput{
			ProductID:  it.ProductID,
			LotNumber:  it.LotNumber,
			Quantity:   it.Quantity,
			Sale:       it.Sale,
			ExpiryDate: it.ExpiryDate,
		}
		if it.UnitCost != nil {
			in.UnitCost = *it.UnitCost
		}
		out = append(out, in)
	}
	return out
}

func (t TransportRequest) toEntity() entity.TransportMeta {
	return entity.TransportMeta{Carrier: t.Carrier, TrackingNumber: t.TrackingNumber, PackageCount: t.PackageCount}
}

// ToInput convierte el body al input del caso de uso.
func (r DispatchRequest) ToInput(actorID string) inventory.DispatchInput {
	in := inventory.DispatchInput{
		Type:          entity.ShipmentType(r.Type),
		OriginID:      r.OriginID,
		DestinationID: r.DestinationID,
		Items:         toItemInputs(r.Items),
		Transport:     r.Transport.toEntity(),
		ActorID:       actorID,
		Notes:         r.Notes,
	}
	if r.Authorization != nil {
		in.Authorization = inventory.AuthorizationInput{SupervisorID: r.Authorization.SupervisorID, PIN: r.Authorization.PIN}
	}
	return in
}

// ToInput convierte el body al input del caso de uso.
func (r InboundRequest) ToInput(actorID string) inventory.InboundInput {
	return inventory.InboundInput{
		SupplierRef:     r.SupplierRef,
		DestinationID:   r.DestinationID,
		PurchaseOrderID: r.PurchaseOrderID,
		Items:           toItemInputs(r.Items),
		Transport:       r.Transport.toEntity(),
		ActorID:         actorID,
		Notes:           r.Notes,
	}
}

// ToInput convierte el body al input del caso de uso.
func (r ReceiveRequest) ToInput(shipmentID, actorID string) inventory.ReceiveInput {
	rows := make([]entity.ReceivedItem, 0, len(r.Items))
	for _, it := range r.Items {
		rows = append(rows, entity.ReceivedItem{
			ShipmentItemID: it.ShipmentItemID,
			Received:       it.Received,
			Condition:      entity.ItemCondition(it.Condition),
		})
	}
	return inventory.ReceiveInput{ShipmentID: shipmentID, Items: rows, ActorID: actorID}
}

// ShipmentItemResponse línea del envío.
type ShipmentItemResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	LotNumber  string          `json:"lot_number,omitempty"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
	Quantity   int64           `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Sale       bool            `json:"sale,omitempty"`
}

// StatusChangeResponse transición aplicada.
type StatusChangeResponse struct {
	From    string    `json:"from"`
	To      string    `json:"to"`
	ActorID string    `json:"actor_id"`
	At      time.Time `json:"at"`
}

// ReceivedItemResponse fila de recepción persistida.
type ReceivedItemResponse struct {
	ShipmentItemID string `json:"shipment_item_id"`
	Expected       int64  `json:"expected"`
	Received       int64  `json:"received"`
	Condition      string `json:"condition"`
}

// ShipmentResponse salida de un envío.
type ShipmentResponse struct {
	ID            string                 `json:"id"`
	Type          string                 `json:"type"`
	Status        string                 `json:"status"`
	OriginID      string                 `json:"origin_id"`
	DestinationID string                 `json:"destination_id"`
	Items         []ShipmentItemResponse `json:"items"`
	Transport     TransportRequest       `json:"transport"`
	CreatedBy     string                 `json:"created_by"`
	AuthorizedBy  string                 `json:"authorized_by,omitempty"`
	ReceivedBy    string                 `json:"received_by,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	ReceivedAt    *time.Time             `json:"received_at,omitempty"`
	Notes         string                 `json:"notes,omitempty"`
	Reference     string                 `json:"reference,omitempty"`
	TotalQuantity int64                  `json:"total_quantity"`
	Transitions   []StatusChangeResponse `json:"transitions"`
	Received      []ReceivedItemResponse `json:"received,omitempty"`
}

// NewShipmentResponse mapea la entidad a la respuesta.
func NewShipmentResponse(s *entity.Shipment) ShipmentResponse {
	out := ShipmentResponse{
		ID:            s.ID,
		Type:          string(s.Type),
		Status:        string(s.Status),
		OriginID:      s.OriginID,
		DestinationID: s.DestinationID,
		Items:         make([]ShipmentItemResponse, 0, len(s.Items)),
		Transport: TransportRequest{
			Carrier:        s.Transport.Carrier,
			TrackingNumber: s.Transport.TrackingNumber,
			PackageCount:   s.Transport.PackageCount,
		},
		CreatedBy:     s.CreatedBy,
		AuthorizedBy:  s.AuthorizedBy,
		ReceivedBy:    s.ReceivedBy,
		CreatedAt:     s.CreatedAt,
		ReceivedAt:    s.ReceivedAt,
		Notes:         s.Notes,
		Reference:     s.Reference,
		TotalQuantity: s.TotalQuantity(),
		Transitions:   make([]StatusChangeResponse, 0, len(s.Transitions)),
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, ShipmentItemResponse{
			ID:         it.ID,
			ProductID:  it.ProductID,
			LotNumber:  it.LotNumber,
			ExpiryDate: it.ExpiryDate,
			Quantity:   it.Quantity,
			UnitCost:   it.UnitCost,
			Sale:       it.Sale,
		})
	}
	for _, tr := range s.Transitions {
		out.Transitions = append(out.Transitions, StatusChangeResponse{From: string(tr.From), To: string(tr.To), ActorID: tr.ActorID, At: tr.At})
	}
	for _, r := range s.Received {
		out.Received = append(out.Received, ReceivedItemResponse{
			ShipmentItemID: r.ShipmentItemID,
			Expected:       r.Expected,
			Received:       r.Received,
			Condition:      string(r.Condition),
		})
	}
	return out
}

// DiscrepancyResponse conciliación de una línea.
type DiscrepancyResponse struct {
	ItemID     string           `json:"item_id"`
	ProductID  string           `json:"product_id"`
	Expected   int64            `json:"expected"`
	Received   int64            `json:"received"`
	Accepted   int64            `json:"accepted"`
	Surplus    int64            `json:"surplus"`
	Difference int64            `json:"difference"`
	Conditions map[string]int64 `json:"conditions"`
	Discrepant bool             `json:"discrepant"`
}

// ReconciliationResponse resumen de la conciliación.
type ReconciliationResponse struct {
	Items          []DiscrepancyResponse `json:"items"`
	TotalExpected  int64                 `json:"total_expected"`
	TotalReceived  int64                 `json:"total_received"`
	TotalAccepted  int64                 `json:"total_accepted"`
	HasDiscrepancy bool                  `json:"has_discrepancy"`
}

// ReceiveResponse salida de recepción y traslado directo.
type ReceiveResponse struct {
	Shipment       ShipmentResponse        `json:"shipment"`
	Reconciliation ReconciliationResponse  `json:"reconciliation"`
	Entries        []MovementEntryResponse `json:"entries"`
}

// NewReceiveResponse mapea el resultado del caso de uso.
func NewReceiveResponse(r *inventory.ReceiveResult) ReceiveResponse {
	return ReceiveResponse{
		Shipment:       NewShipmentResponse(r.Shipment),
		Reconciliation: newReconciliationResponse(r.Reconciliation),
		Entries:        NewMovementEntryResponses(r.Entries),
	}
}

func newReconciliationResponse(rec domaininv.Reconciliation) ReconciliationResponse {
	out := ReconciliationResponse{
		Items:          make([]DiscrepancyResponse, 0, len(rec.Items)),
		TotalExpected:  rec.TotalExpected,
		TotalReceived:  rec.TotalReceived,
		TotalAccepted:  rec.TotalAccepted,
		HasDiscrepancy: rec.HasDiscrepancy,
	}
	for _, d := range rec.Items {
		conds := make(map[string]int64, len(d.Conditions))
		for c, n := range d.Conditions {
			conds[string(c)] = n
		}
		out.Items = append(out.Items, DiscrepancyResponse{
			ItemID:     d.ItemID,
			ProductID:  d.ProductID,
			Expected:   d.Expected,
			Received:   d.Received,
			Accepted:   d.Accepted,
			Surplus:    d.Surplus,
			Difference: d.Difference,
			Conditions: conds,
			Discrepant: d.Discrepant(),
		})
	}
	return out
}
