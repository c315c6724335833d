package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/domain/repository"
)

var _ repository.StockLotRepository = (*StockLotRepo)(nil)

// StockLotRepo implementación de StockLotRepository sobre PostgreSQL (usable con pool o tx).
type StockLotRepo struct {
	q Querier
}

// NewStockLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewStockLotRepository(q Querier) *StockLotRepo {
	return &StockLotRepo{q: q}
}

const selectLot = `
	SELECT product_id, location_id, lot_number, expiry_date, quantity, unit_cost, sale_price, updated_at
	FROM stock_lots`

func scanLot(row pgx.Row) (*entity.StockLot, error) {
	var l entity.StockLot
	err := row.Scan(&l.ProductID, &l.LocationID, &l.LotNumber, &l.ExpiryDate, &l.Quantity, &l.UnitCost, &l.SalePrice, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Get obtiene el lote o nil si no existe.
func (r *StockLotRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockLot, error) {
	l, err := scanLot(r.q.QueryRow(ctx, selectLot+`
		WHERE product_id = $1 AND location_id = $2 AND lot_number = $3`,
		key.ProductID, key.LocationID, key.LotNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get stock lot", err)
	}
	return l, nil
}

// GetForUpdate crea la fila vacía si falta y la bloquea (SELECT FOR UPDATE),
// así dos transacciones sobre una clave nueva también se serializan.
func (r *StockLotRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockLot, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_lots (product_id, location_id, lot_number)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id, location_id, lot_number) DO NOTHING`,
		key.ProductID, key.LocationID, key.LotNumber)
	if err != nil {
		return nil, mapError("ensure stock lot", err)
	}
	l, err := scanLot(r.q.QueryRow(ctx, selectLot+`
		WHERE product_id = $1 AND location_id = $2 AND lot_number = $3
		FOR UPDATE`,
		key.ProductID, key.LocationID, key.LotNumber))
	if err != nil {
		return nil, mapError("get stock lot for update", err)
	}
	return l, nil
}

// Upsert inserta o actualiza cantidad, costo y vencimiento del lote.
func (r *StockLotRepo) Upsert(ctx context.Context, lot *entity.StockLot) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_lots (product_id, location_id, lot_number, expiry_date, quantity, unit_cost, sale_price, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (product_id, location_id, lot_number)
		DO UPDATE SET expiry_date = EXCLUDED.expiry_date,
		              quantity    = EXCLUDED.quantity,
		              unit_cost   = EXCLUDED.unit_cost,
		              sale_price  = EXCLUDED.sale_price,
		              updated_at  = EXCLUDED.updated_at`,
		lot.ProductID, lot.LocationID, lot.LotNumber, lot.ExpiryDate, lot.Quantity, lot.UnitCost, lot.SalePrice, lot.UpdatedAt,
	)
	return mapError("upsert stock lot", err)
}

// ListByLocation lotes de una ubicación ordenados por producto y lote.
func (r *StockLotRepo) ListByLocation(ctx context.Context, locationID string) ([]*entity.StockLot, error) {
	rows, err := r.q.Query(ctx, selectLot+`
		WHERE location_id = $1
		ORDER BY product_id, lot_number`, locationID)
	if err != nil {
		return nil, mapError("list stock lots", err)
	}
	defer rows.Close()

	out := make([]*entity.StockLot, 0)
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, mapError("scan stock lot", err)
		}
		out = append(out, l)
	}
	return out, mapError("list stock lots", rows.Err())
}
