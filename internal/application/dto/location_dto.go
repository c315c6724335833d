package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-logistica/internal/application/inventory"
	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
)

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Active bool   `json:"active"`
}

// NewLocationResponse mapea la entidad.
func NewLocationResponse(l *entity.Location) LocationResponse {
	return LocationResponse{ID: l.ID, Name: l.Name, Type: string(l.Type), Active: l.Active}
}

// StockLotResponse existencias de un lote.
type StockLotResponse struct {
	ProductID  string          `json:"product_id"`
	LotNumber  string          `json:"lot_number,omitempty"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
	Quantity   int64           `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	SalePrice  decimal.Decimal `json:"sale_price"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewStockLotResponse mapea un lote.
func NewStockLotResponse(l *entity.StockLot) StockLotResponse {
	return StockLotResponse{
		ProductID:  l.ProductID,
		LotNumber:  l.LotNumber,
		ExpiryDate: l.ExpiryDate,
		Quantity:   l.Quantity,
		UnitCost:   l.UnitCost,
		SalePrice:  l.SalePrice,
		UpdatedAt:  l.UpdatedAt,
	}
}

// RouteResponse extremos conocidos de un pendiente.
type RouteResponse struct {
	OriginID        string `json:"origin_id,omitempty"`
	OriginName      string `json:"origin_name,omitempty"`
	DestinationID   string `json:"destination_id,omitempty"`
	DestinationName string `json:"destination_name,omitempty"`
}

// PendingResponse envío u orden en tránsito.
type PendingResponse struct {
	Kind          string        `json:"kind"`
	ID            string        `json:"id"`
	Status        string        `json:"status"`
	Direction     string        `json:"direction"`
	Route         RouteResponse `json:"route"`
	CreatedAt     time.Time     `json:"created_at"`
	ItemCount     int           `json:"item_count"`
	TotalQuantity int64         `json:"total_quantity"`
}

// NewPendingResponse mapea un pendiente.
func NewPendingResponse(p inventory.PendingItem) PendingResponse {
	return PendingResponse{
		Kind:      string(p.Kind),
		ID:        p.ID,
		Status:    p.Status,
		Direction: string(p.Direction),
		Route: RouteResponse{
			OriginID:        p.Route.OriginID,
			OriginName:      p.Route.OriginName,
			DestinationID:   p.Route.DestinationID,
			DestinationName: p.Route.DestinationName,
		},
		CreatedAt:     p.CreatedAt,
		ItemCount:     p.ItemCount,
		TotalQuantity: p.TotalQuantity,
	}
}

// StockAuditResponse diferencia entre el lote y su libro.
type StockAuditResponse struct {
	ProductID  string `json:"product_id"`
	LotNumber  string `json:"lot_number,omitempty"`
	Cached     int64  `json:"cached"`
	Ledger     int64  `json:"ledger"`
	Drift      int64  `json:"drift"`
	Consistent bool   `json:"consistent"`
}

// NewStockAuditResponse mapea un resultado de verificación.
func NewStockAuditResponse(a inventory.StockAudit) StockAuditResponse {
	return StockAuditResponse{
		ProductID:  a.Key.ProductID,
		LotNumber:  a.Key.LotNumber,
		Cached:     a.Cached,
		Ledger:     a.Ledger,
		Drift:      a.Drift,
		Consistent: a.Consistent(),
	}
}
