package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-logistica/internal/application/inventory"
	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
)

// RecordMovementRequest body para POST /api/movements.
type RecordMovementRequest struct {
	ProductID    string           `json:"product_id"`
	LocationID   string           `json:"location_id"`
	LotNumber    string           `json:"lot_number,omitempty"`
	Type         string           `json:"type"`
	Delta        int64            `json:"delta"`
	Reference    string           `json:"reference,omitempty"`
	AllowDeficit bool             `json:"allow_deficit,omitempty"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	ExpiryDate   *time.Time       `json:"expiry_date,omitempty"`
}

// ToInput convierte el body al input del libro.
func (r RecordMovementRequest) ToInput(actorID string) inventory.RecordInput {
	return inventory.RecordInput{
		Key:          entity.StockKey{ProductID: r.ProductID, LocationID: r.LocationID, LotNumber: r.LotNumber},
		Type:         entity.MovementType(r.Type),
		Delta:        r.Delta,
		ActorID:      actorID,
		Reference:    r.Reference,
		AllowDeficit: r.AllowDeficit,
		UnitCost:     r.UnitCost,
		ExpiryDate:   r.ExpiryDate,
	}
}

// MovementEntryResponse fila del libro.
type MovementEntryResponse struct {
	ID             string    `json:"id"`
	Seq            int64     `json:"seq"`
	ProductID      string    `json:"product_id"`
	LocationID     string    `json:"location_id"`
	LotNumber      string    `json:"lot_number,omitempty"`
	Type           string    `json:"type"`
	Delta          int64     `json:"delta"`
	QuantityBefore int64     `json:"quantity_before"`
	QuantityAfter  int64     `json:"quantity_after"`
	Timestamp      time.Time `json:"timestamp"`
	ActorID        string    `json:"actor_id"`
	Reference      string    `json:"reference,omitempty"`
	ShipmentID     string    `json:"shipment_id,omitempty"`
}

// NewMovementEntryResponse mapea una fila.
func NewMovementEntryResponse(e *entity.MovementEntry) MovementEntryResponse {
	return MovementEntryResponse{
		ID:             e.ID,
		Seq:            e.Seq,
		ProductID:      e.ProductID,
		LocationID:     e.LocationID,
		LotNumber:      e.LotNumber,
		Type:           string(e.Type),
		Delta:          e.Delta,
		QuantityBefore: e.QuantityBefore,
		QuantityAfter:  e.QuantityAfter,
		Timestamp:      e.Timestamp,
		ActorID:        e.ActorID,
		Reference:      e.Reference,
		ShipmentID:     e.ShipmentID,
	}
}

// NewMovementEntryResponses mapea varias filas; nunca devuelve nil.
func NewMovementEntryResponses(entries []*entity.MovementEntry) []MovementEntryResponse {
	out := make([]MovementEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewMovementEntryResponse(e))
	}
	return out
}

// MovementHistoryResponse página del historial.
type MovementHistoryResponse struct {
	Items []MovementEntryResponse `json:"items"`
	Page  CursorPage              `json:"page"`
}
