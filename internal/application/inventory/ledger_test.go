package inventory_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-logistica/internal/application/inventory"
	"github.com/jhoicas/farmacia-logistica/internal/domain"
	"github.com/jhoicas/farmacia-logistica/internal/domain/audit"
	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
)

func TestRecord_EntradaYSalida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	k := key("X", storeA)

	f.seed(t, k, 200, "1000")
	e, err := f.ledger.Record(ctx, inventory.RecordInput{Key: k, Type: entity.MovementSale, Delta: -30, ActorID: actor, Reference: "FV-1"})
	require.NoError(t, err)

	assert.Equal(t, int64(200), e.QuantityBefore)
	assert.Equal(t, int64(170), e.QuantityAfter)
	assert.True(t, e.Consistent())
	assert.Positive(t, e.Seq)
	assert.Equal(t, int64(170), f.quantity(t, k))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Movements.WithLabelValues("SALE")))
	assert.Equal(t, 2, f.sink.count(audit.ActionMovementRecorded))
}

func TestRecord_CostoPromedioYVencimiento(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	k := key("X", storeA)

	f.seed(t, k, 10, "100")
	cost := decimal.RequireFromString("200")
	otherExpiry := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := f.ledger.Record(ctx, inventory.RecordInput{Key: k, Type: entity.MovementReceipt, Delta: 10, ActorID: actor, UnitCost: &cost, ExpiryDate: &otherExpiry})
	require.NoError(t, err)

	lot, err := f.store.Lots().Get(ctx, k)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("150").Equal(lot.UnitCost), lot.UnitCost.String())
	require.NotNil(t, lot.ExpiryDate)
	assert.Equal(t, 2027, lot.ExpiryDate.Year(), "el vencimiento de un lote existente no cambia")
}

func TestRecord_StockInsuficiente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	k := key("X", storeA)
	f.seed(t, k, 5, "10")

	_, err := f.ledger.Record(ctx, inventory.RecordInput{Key: k, Type: entity.MovementLoss, Delta: -6, ActorID: actor})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(6), stockErr.Requested)
	assert.Equal(t, int64(5), stockErr.Available)

	assert.Equal(t, int64(5), f.quantity(t, k))
	assert.Len(t, f.entries(t, storeA), 1, "el rechazo no escribe en el libro")
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Rejections.WithLabelValues("insufficient_stock")))
}

func TestRecord_AjusteConDeficit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	k := key("X", storeA)

	_, err := f.ledger.Record(ctx, inventory.RecordInput{Key: k, Type: entity.MovementAdjustment, Delta: -3, ActorID: actor})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	e, err := f.ledger.Record(ctx, inventory.RecordInput{Key: k, Type: entity.MovementAdjustment, Delta: -3, ActorID: actor, AllowDeficit: true})
	require.NoError(t, err)
	assert.Equal(t, int64(-3), e.QuantityAfter)
	assert.Equal(t, int64(-3), f.quantity(t, k))
}

func TestRecord_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	k := key("X", storeA)

	tests := []struct {
		name string
		in   inventory.RecordInput
		want error
	}{
		{"delta cero", inventory.RecordInput{Key: k, Type: entity.MovementAdjustment, Delta: 0, ActorID: actor}, domain.ErrInvalidQuantity},
		{"signo contrario", inventory.RecordInput{Key: k, Type: entity.MovementSale, Delta: 4, ActorID: actor}, domain.ErrInvalidQuantity},
		{"entrada negativa", inventory.RecordInput{Key: k, Type: entity.MovementReceipt, Delta: -4, ActorID: actor}, domain.ErrInvalidQuantity},
		{"tipo desconocido", inventory.RecordInput{Key: k, Type: "GIFT", Delta: 1, ActorID: actor}, domain.ErrInvalidInput},
		{"sin actor", inventory.RecordInput{Key: k, Type: entity.MovementReceipt, Delta: 1}, domain.ErrInvalidInput},
		{"déficit fuera de ajuste", inventory.RecordInput{Key: k, Type: entity.MovementSale, Delta: -1, ActorID: actor, AllowDeficit: true}, domain.ErrInvalidInput},
		{"ubicación desconocida", inventory.RecordInput{Key: key("X", "NOPE"), Type: entity.MovementReceipt, Delta: 1, ActorID: actor}, domain.ErrUnknownLocation},
		{"ubicación inactiva", inventory.RecordInput{Key: key("X", inactive), Type: entity.MovementReceipt, Delta: 1, ActorID: actor}, domain.ErrUnknownLocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.Record(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.entries(t, storeA))
}

func TestRecord_DesbordeDelSaldo(t *testing.T) {
	f := newFixture(t)
	k := key("X", storeA)
	f.seed(t, k, 30, "1")

	_, err := f.ledger.Record(context.Background(), inventory.RecordInput{Key: k, Type: entity.MovementPurchaseEntry, Delta: math.MaxInt64, ActorID: actor})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Equal(t, int64(30), f.quantity(t, k))
	assert.Len(t, f.entries(t, storeA), 1)
}

func TestRecord_FalloAlConfirmar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	k := key("X", storeA)
	f.seed(t, k, 10, "5")

	f.store.FailNextCommit(errors.New("disco lleno"))
	_, err := f.ledger.Record(ctx, inventory.RecordInput{Key: k, Type: entity.MovementSale, Delta: -4, ActorID: actor})
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)

	assert.Equal(t, int64(10), f.quantity(t, k))
	assert.Len(t, f.entries(t, storeA), 1)
}

func TestRecord_Ocupado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	k := key("X", storeA)
	f.seed(t, k, 10, "5")

	unlock, err := f.locker.Lock(ctx, []string{k.String()})
	require.NoError(t, err)
	defer unlock()

	_, err = f.ledger.Record(ctx, inventory.RecordInput{Key: k, Type: entity.MovementSale, Delta: -1, ActorID: actor})
	require.ErrorIs(t, err, domain.ErrBusy)
	assert.Equal(t, int64(10), f.quantity(t, k))
	assert.GreaterOrEqual(t, testutil.ToFloat64(f.metrics.BusyRetries), float64(1))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Rejections.WithLabelValues("busy")))
}

func TestRecord_ConcurrenciaSobreUnaClave(t *testing.T) {
	f := newFixture(t)
	f.deps.Retry = inventory.RetryConfig{MaxRetries: 50, InitialInterval: time.Millisecond, MaxInterval: 10 * time.Millisecond}
	ledger := inventory.NewMovementLedger(f.deps)
	k := key("X", storeA)
	f.seed(t, k, 100, "1")

	const workers = 20
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			_, err := ledger.Record(context.Background(), inventory.RecordInput{Key: k, Type: entity.MovementSale, Delta: -7, ActorID: actor})
			errs <- err
		}()
	}
	ok, short := 0, 0
	for i := 0; i < workers; i++ {
		err := <-errs
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			short++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}

	assert.Equal(t, 14, ok, "100/7 = 14 ventas caben")
	assert.Equal(t, 6, short)
	assert.Equal(t, int64(2), f.quantity(t, k))

	check, err := ledger.Verify(context.Background(), k)
	require.NoError(t, err)
	assert.True(t, check.Consistent())
	assert.Zero(t, f.locker.Held())
}

func TestHistory_PaginacionYFiltros(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	k := key("X", storeA)
	f.seed(t, k, 100, "1")
	for i := 0; i < 5; i++ {
		_, err := f.ledger.Record(ctx, inventory.RecordInput{Key: k, Type: entity.MovementSale, Delta: -1, ActorID: actor})
		require.NoError(t, err)
	}
	f.seed(t, key("Y", storeB), 3, "1")

	first, err := f.ledger.History(ctx, inventory.HistoryQuery{LocationID: storeA, Limit: 4})
	require.NoError(t, err)
	require.Len(t, first.Entries, 4)
	assert.NotZero(t, first.NextCursor)
	assert.Greater(t, first.Entries[0].Seq, first.Entries[3].Seq, "más reciente primero")

	// una fila nueva no desplaza la segunda página
	_, err = f.ledger.Record(ctx, inventory.RecordInput{Key: k, Type: entity.MovementSale, Delta: -1, ActorID: actor})
	require.NoError(t, err)

	second, err := f.ledger.History(ctx, inventory.HistoryQuery{LocationID: storeA, Limit: 4, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Entries, 2)
	assert.Zero(t, second.NextCursor)
	assert.Equal(t, entity.MovementPurchaseEntry, second.Entries[1].Type)

	purchases, err := f.ledger.History(ctx, inventory.HistoryQuery{LocationID: storeA, Types: []entity.MovementType{entity.MovementPurchaseEntry}})
	require.NoError(t, err)
	require.Len(t, purchases.Entries, 1)

	from := first.Entries[0].Timestamp.Add(time.Second)
	recent, err := f.ledger.History(ctx, inventory.HistoryQuery{LocationID: storeA, From: &from})
	require.NoError(t, err)
	assert.Len(t, recent.Entries, 1)

	empty, err := f.ledger.History(ctx, inventory.HistoryQuery{LocationID: warehouse})
	require.NoError(t, err)
	assert.NotNil(t, empty.Entries)
	assert.Empty(t, empty.Entries)
}

func TestHistory_ConsultaInvalida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	before := now.Add(-time.Hour)

	_, err := f.ledger.History(ctx, inventory.HistoryQuery{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.ledger.History(ctx, inventory.HistoryQuery{LocationID: storeA, From: &now, To: &before})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.ledger.History(ctx, inventory.HistoryQuery{LocationID: storeA, Types: []entity.MovementType{"GIFT"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVerifyRepair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	k := key("X", storeA)
	f.seed(t, k, 40, "1")

	// desvío del lote fuera del libro
	lot, err := f.store.Lots().Get(ctx, k)
	require.NoError(t, err)
	lot.Quantity = 55
	require.NoError(t, f.store.Lots().Upsert(ctx, lot))

	a, err := f.ledger.Verify(ctx, k)
	require.NoError(t, err)
	assert.Equal(t, int64(55), a.Cached)
	assert.Equal(t, int64(40), a.Ledger)
	assert.Equal(t, int64(15), a.Drift)

	repaired, err := f.ledger.Repair(ctx, k, actor)
	require.NoError(t, err)
	assert.Equal(t, int64(15), repaired.Drift)
	assert.Equal(t, int64(40), f.quantity(t, k))
	assert.Equal(t, 1, f.sink.count(audit.ActionStockRepaired))

	again, err := f.ledger.Verify(ctx, k)
	require.NoError(t, err)
	assert.True(t, again.Consistent())

	_, err = f.ledger.Repair(ctx, k, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStockAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, key("B", storeA), 2, "1")
	f.seed(t, key("A", storeA), 1, "1")

	lots, err := f.ledger.StockAt(ctx, storeA)
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.Equal(t, "A", lots[0].ProductID)

	_, err = f.ledger.StockAt(ctx, "NOPE")
	assert.ErrorIs(t, err, domain.ErrUnknownLocation)
}
