package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmacia-logistica/internal/domain"
	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/domain/repository"
)

var _ repository.ShipmentRepository = (*ShipmentRepo)(nil)

// ShipmentRepo envíos con sus líneas, transiciones y recepciones.
type ShipmentRepo struct {
	q Querier
}

// NewShipmentRepository construye el adaptador de envíos. Pasar pool o tx (Querier).
func NewShipmentRepository(q Querier) *ShipmentRepo {
	return &ShipmentRepo{q: q}
}

const selectShipment = `
	SELECT id, type, status, origin_id, destination_id, carrier, tracking_number, package_count,
	       created_by, authorized_by, received_by, created_at, received_at, notes, reference
	FROM shipments`

func scanShipment(row pgx.Row) (*entity.Shipment, error) {
	var s entity.Shipment
	err := row.Scan(&s.ID, &s.Type, &s.Status, &s.OriginID, &s.DestinationID,
		&s.Transport.Carrier, &s.Transport.TrackingNumber, &s.Transport.PackageCount,
		&s.CreatedBy, &s.AuthorizedBy, &s.ReceivedBy, &s.CreatedAt, &s.ReceivedAt, &s.Notes, &s.Reference)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserta cabecera, líneas y transiciones.
func (r *ShipmentRepo) Create(ctx context.Context, s *entity.Shipment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO shipments (id, type, status, origin_id, destination_id, carrier, tracking_number, package_count,
		                       created_by, authorized_by, received_by, created_at, received_at, notes, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		s.ID, string(s.Type), string(s.Status), s.OriginID, s.DestinationID,
		s.Transport.Carrier, s.Transport.TrackingNumber, s.Transport.PackageCount,
		s.CreatedBy, s.AuthorizedBy, s.ReceivedBy, s.CreatedAt, s.ReceivedAt, s.Notes, s.Reference,
	)
	if err != nil {
		return mapError("insert shipment", err)
	}
	for i, it := range s.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO shipment_items (id, shipment_id, position, product_id, lot_number, expiry_date, quantity, unit_cost, sale)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, s.ID, i, it.ProductID, it.LotNumber, it.ExpiryDate, it.Quantity, it.UnitCost, it.Sale,
		)
		if err != nil {
			return mapError("insert shipment item", err)
		}
	}
	if err := r.insertTransitions(ctx, s.ID, s.Transitions); err != nil {
		return err
	}
	return r.replaceReceipts(ctx, s)
}

// GetByID obtiene un envío completo o nil si no existe.
func (r *ShipmentRepo) GetByID(ctx context.Context, id string) (*entity.Shipment, error) {
	return r.load(ctx, selectShipment+` WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera del envío hasta el fin de la transacción.
func (r *ShipmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Shipment, error) {
	return r.load(ctx, selectShipment+` WHERE id = $1 FOR UPDATE`, id)
}

func (r *ShipmentRepo) load(ctx context.Context, query, id string) (*entity.Shipment, error) {
	s, err := scanShipment(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get shipment", err)
	}
	if err := r.loadChildren(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *ShipmentRepo) loadChildren(ctx context.Context, s *entity.Shipment) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, lot_number, expiry_date, quantity, unit_cost, sale
		FROM shipment_items WHERE shipment_id = $1 ORDER BY position`, s.ID)
	if err != nil {
		return mapError("list shipment items", err)
	}
	s.Items = nil
	for rows.Next() {
		var it entity.ShipmentItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.LotNumber, &it.ExpiryDate, &it.Quantity, &it.UnitCost, &it.Sale); err != nil {
			rows.Close()
			return mapError("scan shipment item", err)
		}
		s.Items = append(s.Items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return mapError("list shipment items", err)
	}

	rows, err = r.q.Query(ctx, `
		SELECT from_status, to_status, actor_id, at
		FROM shipment_transitions WHERE shipment_id = $1 ORDER BY id`, s.ID)
	if err != nil {
		return mapError("list shipment transitions", err)
	}
	s.Transitions = nil
	for rows.Next() {
		var tr entity.StatusChange
		if err := rows.Scan(&tr.From, &tr.To, &tr.ActorID, &tr.At); err != nil {
			rows.Close()
			return mapError("scan shipment transition", err)
		}
		s.Transitions = append(s.Transitions, tr)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return mapError("list shipment transitions", err)
	}

	rows, err = r.q.Query(ctx, `
		SELECT shipment_item_id, expected, received, condition
		FROM shipment_receipts WHERE shipment_id = $1 ORDER BY id`, s.ID)
	if err != nil {
		return mapError("list shipment receipts", err)
	}
	defer rows.Close()
	s.Received = nil
	for rows.Next() {
		var ri entity.ReceivedItem
		if err := rows.Scan(&ri.ShipmentItemID, &ri.Expected, &ri.Received, &ri.Condition); err != nil {
			return mapError("scan shipment receipt", err)
		}
		s.Received = append(s.Received, ri)
	}
	return mapError("list shipment receipts", rows.Err())
}

// Update persiste estado, actores, notas, las transiciones que aún no estén guardadas y las recepciones.
func (r *ShipmentRepo) Update(ctx context.Context, s *entity.Shipment) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE shipments
		SET status = $2, authorized_by = $3, received_by = $4, received_at = $5, notes = $6
		WHERE id = $1`,
		s.ID, string(s.Status), s.AuthorizedBy, s.ReceivedBy, s.ReceivedAt, s.Notes,
	)
	if err != nil {
		return mapError("update shipment", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	var stored int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM shipment_transitions WHERE shipment_id = $1`, s.ID).Scan(&stored); err != nil {
		return mapError("count shipment transitions", err)
	}
	if stored < len(s.Transitions) {
		if err := r.insertTransitions(ctx, s.ID, s.Transitions[stored:]); err != nil {
			return err
		}
	}
	return r.replaceReceipts(ctx, s)
}

func (r *ShipmentRepo) insertTransitions(ctx context.Context, shipmentID string, trs []entity.StatusChange) error {
	for _, tr := range trs {
		_, err := r.q.Exec(ctx, `
			INSERT INTO shipment_transitions (shipment_id, from_status, to_status, actor_id, at)
			VALUES ($1, $2, $3, $4, $5)`,
			shipmentID, string(tr.From), string(tr.To), tr.ActorID, tr.At,
		)
		if err != nil {
			return mapError("insert shipment transition", err)
		}
	}
	return nil
}

func (r *ShipmentRepo) replaceReceipts(ctx context.Context, s *entity.Shipment) error {
	if len(s.Received) == 0 {
		return nil
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM shipment_receipts WHERE shipment_id = $1`, s.ID); err != nil {
		return mapError("clear shipment receipts", err)
	}
	for _, ri := range s.Received {
		_, err := r.q.Exec(ctx, `
			INSERT INTO shipment_receipts (shipment_id, shipment_item_id, expected, received, condition)
			VALUES ($1, $2, $3, $4, $5)`,
			s.ID, ri.ShipmentItemID, ri.Expected, ri.Received, string(ri.Condition),
		)
		if err != nil {
			return mapError("insert shipment receipt", err)
		}
	}
	return nil
}

// ListInTransit envíos IN_TRANSIT que salen o llegan a la ubicación, más reciente primero.
func (r *ShipmentRepo) ListInTransit(ctx context.Context, locationID string) ([]*entity.Shipment, error) {
	rows, err := r.q.Query(ctx, selectShipment+`
		WHERE status = $1 AND (origin_id = $2 OR destination_id = $2)
		ORDER BY created_at DESC`, string(entity.StatusInTransit), locationID)
	if err != nil {
		return nil, mapError("list shipments in transit", err)
	}
	var out []*entity.Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			rows.Close()
			return nil, mapError("scan shipment", err)
		}
		out = append(out, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapError("list shipments in transit", err)
	}
	for _, s := range out {
		if err := r.loadChildren(ctx, s); err != nil {
			return nil, err
		}
	}
	return out, nil
}
