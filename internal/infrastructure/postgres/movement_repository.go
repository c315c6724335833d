package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/domain/repository"
)

var _ repository.MovementEntryRepository = (*MovementEntryRepo)(nil)

// MovementEntryRepo libro de movimientos; la tabla rechaza UPDATE y DELETE por trigger.
type MovementEntryRepo struct {
	q Querier
}

// NewMovementEntryRepository construye el adaptador del libro. Pasar pool o tx (Querier).
func NewMovementEntryRepository(q Querier) *MovementEntryRepo {
	return &MovementEntryRepo{q: q}
}

const selectEntry = `
	SELECT seq, id, product_id, location_id, lot_number, type, delta,
	       quantity_before, quantity_after, at, actor_id, reference, shipment_id
	FROM movement_entries`

func scanEntry(row pgx.Row) (*entity.MovementEntry, error) {
	var (
		e          entity.MovementEntry
		shipmentID *string
	)
	err := row.Scan(&e.Seq, &e.ID, &e.ProductID, &e.LocationID, &e.LotNumber, &e.Type, &e.Delta,
		&e.QuantityBefore, &e.QuantityAfter, &e.Timestamp, &e.ActorID, &e.Reference, &shipmentID)
	if err != nil {
		return nil, err
	}
	e.ShipmentID = deref(shipmentID)
	return &e, nil
}

// Append inserta la fila y devuelve en entry.Seq el orden asignado.
func (r *MovementEntryRepo) Append(ctx context.Context, entry *entity.MovementEntry) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO movement_entries (id, product_id, location_id, lot_number, type, delta,
		                              quantity_before, quantity_after, at, actor_id, reference, shipment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING seq`,
		entry.ID, entry.ProductID, entry.LocationID, entry.LotNumber, string(entry.Type), entry.Delta,
		entry.QuantityBefore, entry.QuantityAfter, entry.Timestamp, entry.ActorID, entry.Reference, nullable(entry.ShipmentID),
	).Scan(&entry.Seq)
	return mapError("append movement", err)
}

// List historial por ubicación, más reciente primero, paginado por seq.
func (r *MovementEntryRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.MovementEntry, error) {
	conds := []string{"location_id = $1"}
	args := []any{f.LocationID}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.BeforeSeq > 0 {
		add("seq < $%d", f.BeforeSeq)
	}
	if f.From != nil {
		add("at >= $%d", *f.From)
	}
	if f.To != nil {
		add("at <= $%d", *f.To)
	}
	if len(f.Types) > 0 {
		types := make([]string, len(f.Types))
		for i, t := range f.Types {
			types[i] = string(t)
		}
		add("type = ANY($%d)", types)
	}
	query := selectEntry + " WHERE " + strings.Join(conds, " AND ") + " ORDER BY seq DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return r.collect(ctx, "list movements", query, args...)
}

// SumByKey suma de deltas de una clave; base de la verificación lote vs libro.
func (r *MovementEntryRepo) SumByKey(ctx context.Context, key entity.StockKey) (int64, error) {
	var sum int64
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(delta), 0)::bigint FROM movement_entries
		WHERE product_id = $1 AND location_id = $2 AND lot_number = $3`,
		key.ProductID, key.LocationID, key.LotNumber).Scan(&sum)
	if err != nil {
		return 0, mapError("sum movements", err)
	}
	return sum, nil
}

// ListByShipment filas de un envío en orden de inserción.
func (r *MovementEntryRepo) ListByShipment(ctx context.Context, shipmentID string) ([]*entity.MovementEntry, error) {
	return r.collect(ctx, "list shipment movements", selectEntry+" WHERE shipment_id = $1 ORDER BY seq", shipmentID)
}

func (r *MovementEntryRepo) collect(ctx context.Context, op, query string, args ...any) ([]*entity.MovementEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	out := make([]*entity.MovementEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		out = append(out, e)
	}
	return out, mapError(op, rows.Err())
}
