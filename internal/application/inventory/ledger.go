package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/farmacia-logistica/internal/domain"
	"github.com/jhoicas/farmacia-logistica/internal/domain/audit"
	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/domain/inventory"
	"github.com/jhoicas/farmacia-logistica/internal/domain/repository"
)

// Límites de paginación del historial.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// MovementLedger es el único escritor de StockLot: cada cambio de cantidad
// queda como una fila inmutable del libro, en la misma transacción que el lote.
type MovementLedger struct {
	d Deps
}

// NewMovementLedger construye el libro.
func NewMovementLedger(d Deps) *MovementLedger {
	return &MovementLedger{d: d.withDefaults()}
}

// RecordInput entrada de un movimiento individual.
// UnitCost en entradas recalcula el costo promedio; ExpiryDate fija el vencimiento de un lote nuevo.
type RecordInput struct {
	Key          entity.StockKey
	Type         entity.MovementType
	Delta        int64
	ActorID      string
	Reference    string
	ShipmentID   string
	AllowDeficit bool // solo ADJUSTMENT
	UnitCost     *decimal.Decimal
	ExpiryDate   *time.Time
}

// validateRecord valida forma y coherencia tipo/signo. No consulta almacenamiento.
func validateRecord(in RecordInput) error {
	if in.ActorID == "" {
		return domain.ErrInvalidInput
	}
	if !in.Type.Valid() {
		return domain.ErrInvalidInput
	}
	if err := checkDelta(in); err != nil {
		return err
	}
	if in.AllowDeficit && in.Type != entity.MovementAdjustment {
		return domain.ErrInvalidInput
	}
	if in.Key.ProductID == "" {
		return domain.ErrInvalidInput
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

// checkDelta exige delta distinto de cero y con el signo que corresponde al tipo.
func checkDelta(in RecordInput) error {
	if in.Delta == 0 {
		return &domain.ItemError{ProductID: in.Key.ProductID, Quantity: in.Delta, Err: domain.ErrInvalidQuantity}
	}
	if sign := in.Type.Sign(); (sign < 0 && in.Delta > 0) || (sign > 0 && in.Delta < 0) {
		return &domain.ItemError{ProductID: in.Key.ProductID, Quantity: in.Delta, Err: domain.ErrInvalidQuantity}
	}
	return nil
}

// Record aplica un movimiento: bloquea la clave, lee el lote, valida que no quede
// negativo, actualiza el lote y agrega la fila, todo en una transacción.
func (l *MovementLedger) Record(ctx context.Context, in RecordInput) (*entity.MovementEntry, error) {
	ctx, span := tracer.Start(ctx, "ledger.Record")
	defer span.End()
	span.SetAttributes(
		attribute.String("movement.type", string(in.Type)),
		attribute.String("stock.key", in.Key.String()),
		attribute.Int64("movement.delta", in.Delta),
	)

	if err := validateRecord(in); err != nil {
		return nil, l.d.reject(span, err)
	}
	if _, err := l.d.requireLocation(ctx, in.Key.LocationID); err != nil {
		return nil, l.d.reject(span, err)
	}

	var entry *entity.MovementEntry
	err := l.d.exclusive(ctx, []string{in.Key.String()}, func() error {
		return l.d.Tx.Run(ctx, func(ctx context.Context, movRepo repository.MovementEntryRepository, lotRepo repository.StockLotRepository, _ repository.ShipmentRepository) error {
			e, _, err := applyMovement(ctx, movRepo, lotRepo, in, l.d.Clock())
			entry = e
			return err
		})
	})
	if err != nil {
		return nil, l.d.reject(span, err)
	}

	l.d.Metrics.IncMovement(string(entry.Type))
	l.d.Audit.Publish(ctx, movementEvent(entry))
	l.d.Logger.Debug().
		Str("entry_id", entry.ID).
		Str("type", string(entry.Type)).
		Str("key", entry.Key().String()).
		Int64("before", entry.QuantityBefore).
		Int64("after", entry.QuantityAfter).
		Msg("movimiento registrado")
	return entry, nil
}

// applyMovement es el núcleo del libro dentro de una transacción abierta.
// El llamador tiene el cerrojo de la clave. Tipo, signo y desborde se revisan aquí
// también: ningún camino interno escribe una fila incoherente.
func applyMovement(
	ctx context.Context,
	movRepo repository.MovementEntryRepository,
	lotRepo repository.StockLotRepository,
	in RecordInput,
	now time.Time,
) (*entity.MovementEntry, *entity.StockLot, error) {
	if !in.Type.Valid() {
		return nil, nil, domain.ErrInvalidInput
	}
	if err := checkDelta(in); err != nil {
		return nil, nil, err
	}
	lot, err := lotRepo.GetForUpdate(ctx, in.Key)
	if err != nil {
		return nil, nil, err
	}
	before := lot.Quantity
	after, ok := inventory.AddQuantity(before, in.Delta)
	if !ok {
		return nil, nil, &domain.ItemError{ProductID: in.Key.ProductID, Quantity: in.Delta, Err: domain.ErrInvalidQuantity}
	}
	if after < 0 && !(in.Type == entity.MovementAdjustment && in.AllowDeficit) {
		return nil, nil, &domain.StockError{
			ProductID:  in.Key.ProductID,
			LocationID: in.Key.LocationID,
			LotNumber:  in.Key.LotNumber,
			Requested:  -in.Delta,
			Available:  before,
		}
	}

	if in.Delta > 0 && in.UnitCost != nil && in.UnitCost.IsPositive() {
		lot.UnitCost = inventory.CostCalculator(before, lot.UnitCost, in.Delta, *in.UnitCost)
	}
	if lot.ExpiryDate == nil && in.ExpiryDate != nil {
		exp := *in.ExpiryDate
		lot.ExpiryDate = &exp
	}
	lot.Quantity = after
	lot.UpdatedAt = now
	if err := lotRepo.Upsert(ctx, lot); err != nil {
		return nil, nil, err
	}

	entry := &entity.MovementEntry{
		ID:             uuid.New().String(),
		ProductID:      in.Key.ProductID,
		LocationID:     in.Key.LocationID,
		LotNumber:      in.Key.LotNumber,
		Type:           in.Type,
		Delta:          in.Delta,
		QuantityBefore: before,
		QuantityAfter:  after,
		Timestamp:      now,
		ActorID:        in.ActorID,
		Reference:      in.Reference,
		ShipmentID:     in.ShipmentID,
	}
	if err := movRepo.Append(ctx, entry); err != nil {
		return nil, nil, err
	}
	return entry, lot, nil
}

// HistoryQuery filtros del historial. Cursor = Seq de la última fila de la página anterior.
type HistoryQuery struct {
	LocationID string
	From, To   *time.Time
	Types      []entity.MovementType
	Cursor     int64
	Limit      int
}

// HistoryPage página del historial; NextCursor 0 = no hay más.
type HistoryPage struct {
	Entries    []*entity.MovementEntry
	NextCursor int64
}

// History consulta el libro de una ubicación, de lo más reciente a lo más antiguo.
// Paginación por llave (Seq): las filas nuevas no desplazan las páginas ya leídas.
func (l *MovementLedger) History(ctx context.Context, q HistoryQuery) (*HistoryPage, error) {
	ctx, span := tracer.Start(ctx, "ledger.History")
	defer span.End()

	if q.LocationID == "" || q.Cursor < 0 {
		return nil, domain.ErrInvalidInput
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return nil, domain.ErrInvalidInput
	}
	for _, t := range q.Types {
		if !t.Valid() {
			return nil, domain.ErrInvalidInput
		}
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	rows, err := l.d.Movements.List(ctx, repository.MovementFilter{
		LocationID: q.LocationID,
		From:       q.From,
		To:         q.To,
		Types:      q.Types,
		BeforeSeq:  q.Cursor,
		Limit:      limit + 1,
	})
	if err != nil {
		return nil, err
	}
	page := &HistoryPage{Entries: rows}
	if len(rows) > limit {
		page.Entries = rows[:limit]
		page.NextCursor = rows[limit-1].Seq
	}
	if page.Entries == nil {
		page.Entries = []*entity.MovementEntry{}
	}
	return page, nil
}

// StockAudit comparación entre la cantidad del lote y la suma de sus movimientos.
type StockAudit struct {
	Key    entity.StockKey
	Cached int64 // cantidad guardada en el lote
	Ledger int64 // suma de deltas del libro
	Drift  int64 // Cached - Ledger
}

// Consistent true si el lote coincide con el libro.
func (a StockAudit) Consistent() bool { return a.Drift == 0 }

// Verify recalcula la cantidad de un lote desde el libro. Solo lectura.
func (l *MovementLedger) Verify(ctx context.Context, key entity.StockKey) (*StockAudit, error) {
	ctx, span := tracer.Start(ctx, "ledger.Verify")
	defer span.End()

	var out *StockAudit
	err := l.d.Tx.Run(ctx, func(ctx context.Context, movRepo repository.MovementEntryRepository, lotRepo repository.StockLotRepository, _ repository.ShipmentRepository) error {
		a, err := auditKey(ctx, movRepo, lotRepo, key, false)
		out = a
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Repair reescribe la cantidad del lote con la suma del libro. Devuelve el estado previo.
func (l *MovementLedger) Repair(ctx context.Context, key entity.StockKey, actorID string) (*StockAudit, error) {
	ctx, span := tracer.Start(ctx, "ledger.Repair")
	defer span.End()

	if actorID == "" || key.ProductID == "" || key.LocationID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *StockAudit
	err := l.d.exclusive(ctx, []string{key.String()}, func() error {
		return l.d.Tx.Run(ctx, func(ctx context.Context, movRepo repository.MovementEntryRepository, lotRepo repository.StockLotRepository, _ repository.ShipmentRepository) error {
			a, err := auditKey(ctx, movRepo, lotRepo, key, true)
			if err != nil {
				return err
			}
			out = a
			if a.Consistent() {
				return nil
			}
			lot, err := lotRepo.GetForUpdate(ctx, key)
			if err != nil {
				return err
			}
			lot.Quantity = a.Ledger
			lot.UpdatedAt = l.d.Clock()
			return lotRepo.Upsert(ctx, lot)
		})
	})
	if err != nil {
		return nil, l.d.reject(span, err)
	}
	if !out.Consistent() {
		l.d.Logger.Warn().
			Str("key", key.String()).
			Int64("cached", out.Cached).
			Int64("ledger", out.Ledger).
			Str("actor", actorID).
			Msg("lote reparado desde el libro")
		l.d.Audit.Publish(ctx, audit.Event{
			ID:             uuid.New().String(),
			Action:         audit.ActionStockRepaired,
			Timestamp:      l.d.Clock(),
			ActorID:        actorID,
			LocationID:     key.LocationID,
			ProductID:      key.ProductID,
			LotNumber:      key.LotNumber,
			QuantityBefore: out.Cached,
			QuantityAfter:  out.Ledger,
		})
	}
	return out, nil
}

func auditKey(ctx context.Context, movRepo repository.MovementEntryRepository, lotRepo repository.StockLotRepository, key entity.StockKey, forUpdate bool) (*StockAudit, error) {
	var (
		lot *entity.StockLot
		err error
	)
	if forUpdate {
		lot, err = lotRepo.GetForUpdate(ctx, key)
	} else {
		lot, err = lotRepo.Get(ctx, key)
	}
	if err != nil {
		return nil, err
	}
	sum, err := movRepo.SumByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	var cached int64
	if lot != nil {
		cached = lot.Quantity
	}
	return &StockAudit{Key: key, Cached: cached, Ledger: sum, Drift: cached - sum}, nil
}

// StockAt lotes de una ubicación.
func (l *MovementLedger) StockAt(ctx context.Context, locationID string) ([]*entity.StockLot, error) {
	if _, err := l.d.requireLocation(ctx, locationID); err != nil {
		return nil, err
	}
	lots, err := l.d.Lots.ListByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if lots == nil {
		lots = []*entity.StockLot{}
	}
	return lots, nil
}

func movementEvent(e *entity.MovementEntry) audit.Event {
	return audit.Event{
		ID:             uuid.New().String(),
		Action:         audit.ActionMovementRecorded,
		Timestamp:      e.Timestamp,
		ActorID:        e.ActorID,
		LocationID:     e.LocationID,
		ShipmentID:     e.ShipmentID,
		ProductID:      e.ProductID,
		LotNumber:      e.LotNumber,
		MovementType:   string(e.Type),
		Delta:          e.Delta,
		QuantityBefore: e.QuantityBefore,
		QuantityAfter:  e.QuantityAfter,
		Reference:      e.Reference,
	}
}
