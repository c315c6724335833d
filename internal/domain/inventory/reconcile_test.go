package inventory_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-logistica/internal/domain"
	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/domain/inventory"
)

func items(qty ...int64) []entity.ShipmentItem {
	out := make([]entity.ShipmentItem, 0, len(qty))
	for i, q := range qty {
		out = append(out, entity.ShipmentItem{
			ID:        string(rune('a' + i)),
			ProductID: "P" + string(rune('1'+i)),
			Quantity:  q,
		})
	}
	return out
}

func TestReconcile_CompletoSinDiscrepancia(t *testing.T) {
	expected := items(10, 5)
	rec, err := inventory.Reconcile(expected, inventory.FullReceipt(expected), nil)
	require.NoError(t, err)

	assert.False(t, rec.HasDiscrepancy)
	assert.Equal(t, int64(15), rec.TotalExpected)
	assert.Equal(t, int64(15), rec.TotalReceived)
	assert.Equal(t, int64(15), rec.TotalAccepted)
	for _, d := range rec.Items {
		assert.Zero(t, d.Difference)
		assert.False(t, d.Discrepant())
	}
}

func TestReconcile_Faltante(t *testing.T) {
	expected := items(10)
	rec, err := inventory.Reconcile(expected, []entity.ReceivedItem{
		{ShipmentItemID: "a", Received: 8, Condition: entity.ConditionGood},
	}, nil)
	require.NoError(t, err)

	require.Len(t, rec.Items, 1)
	assert.True(t, rec.HasDiscrepancy)
	assert.Equal(t, int64(-2), rec.Items[0].Difference)
	assert.Equal(t, int64(8), rec.Items[0].Accepted)
}

func TestReconcile_ConteoDivididoPorCondicion(t *testing.T) {
	expected := items(10)
	rec, err := inventory.Reconcile(expected, []entity.ReceivedItem{
		{ShipmentItemID: "a", Received: 7, Condition: entity.ConditionGood},
		{ShipmentItemID: "a", Received: 2, Condition: entity.ConditionDamaged},
		{ShipmentItemID: "a", Received: 1, Condition: entity.ConditionNearExpiry},
	}, nil)
	require.NoError(t, err)

	d := rec.Items[0]
	assert.Equal(t, int64(10), d.Received)
	assert.Equal(t, int64(8), d.Accepted, "GOOD y NEAR_EXPIRY se reingresan")
	assert.Zero(t, d.Difference)
	assert.True(t, d.Discrepant(), "una condición distinta de GOOD es discrepancia")
	assert.Equal(t, int64(2), d.Conditions[entity.ConditionDamaged])
	assert.Len(t, d.Rows, 3)
	assert.True(t, rec.HasDiscrepancy)
}

func TestReconcile_LineaSinFilasEsMissing(t *testing.T) {
	expected := items(4, 6)
	rec, err := inventory.Reconcile(expected, []entity.ReceivedItem{
		{ShipmentItemID: "a", Received: 4},
	}, nil)
	require.NoError(t, err)

	require.Len(t, rec.Items, 2)
	assert.Equal(t, entity.ConditionGood, rec.Items[0].Rows[0].Condition, "condición vacía = GOOD")
	missing := rec.Items[1]
	assert.Equal(t, int64(0), missing.Received)
	assert.Equal(t, int64(-6), missing.Difference)
	require.Len(t, missing.Rows, 1)
	assert.Equal(t, entity.ConditionMissing, missing.Rows[0].Condition)
	assert.True(t, rec.HasDiscrepancy)
}

func TestReconcile_Sobrante(t *testing.T) {
	rec, err := inventory.Reconcile(items(5), []entity.ReceivedItem{
		{ShipmentItemID: "a", Received: 6, Condition: entity.ConditionGood},
	}, nil)
	require.NoError(t, err)
	d := rec.Items[0]
	assert.Equal(t, int64(6), d.Received)
	assert.Equal(t, int64(1), d.Difference)
	assert.Equal(t, int64(5), d.Accepted, "lo aceptado no supera lo despachado")
	assert.Equal(t, int64(1), d.Surplus)
	assert.Equal(t, int64(5), rec.TotalAccepted)
	assert.True(t, rec.HasDiscrepancy)
}

func TestReconcile_SobranteEnCondicionNoReingresable(t *testing.T) {
	rec, err := inventory.Reconcile(items(10), []entity.ReceivedItem{
		{ShipmentItemID: "a", Received: 4, Condition: entity.ConditionGood},
		{ShipmentItemID: "a", Received: 9, Condition: entity.ConditionDamaged},
	}, nil)
	require.NoError(t, err)
	d := rec.Items[0]
	assert.Equal(t, int64(4), d.Accepted)
	assert.Equal(t, int64(3), d.Surplus)
}

func TestReconcile_DesbordeEnUnaLinea(t *testing.T) {
	_, err := inventory.Reconcile(items(10), []entity.ReceivedItem{
		{ShipmentItemID: "a", Received: math.MaxInt64, Condition: entity.ConditionGood},
		{ShipmentItemID: "a", Received: math.MaxInt64, Condition: entity.ConditionGood},
	}, nil)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	var itemErr *domain.ItemError
	require.ErrorAs(t, err, &itemErr)
	assert.Equal(t, "a", itemErr.ItemID)
	assert.Equal(t, "P1", itemErr.ProductID)
}

func TestReconcile_DesbordeEnTotales(t *testing.T) {
	expected := items(math.MaxInt64, 1)
	_, err := inventory.Reconcile(expected, inventory.FullReceipt(expected), nil)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	var itemErr *domain.ItemError
	require.ErrorAs(t, err, &itemErr)
	assert.Equal(t, "b", itemErr.ItemID)
}

func TestAddQuantity(t *testing.T) {
	sum, ok := inventory.AddQuantity(30, 10)
	assert.True(t, ok)
	assert.Equal(t, int64(40), sum)

	_, ok = inventory.AddQuantity(math.MaxInt64, 1)
	assert.False(t, ok)
	_, ok = inventory.AddQuantity(math.MinInt64, -1)
	assert.False(t, ok)

	sum, ok = inventory.AddQuantity(math.MaxInt64, -1)
	assert.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64-1), sum)
}

func TestReconcile_CantidadNegativa(t *testing.T) {
	_, err := inventory.Reconcile(items(5), []entity.ReceivedItem{
		{ShipmentItemID: "a", Received: -1},
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))

	var itemErr *domain.ItemError
	require.ErrorAs(t, err, &itemErr)
	assert.Equal(t, "a", itemErr.ItemID)
}

func TestReconcile_ConjuntoReingresablePersonalizado(t *testing.T) {
	onlyGood := inventory.ParseConditionSet([]string{"GOOD"})
	rec, err := inventory.Reconcile(items(10), []entity.ReceivedItem{
		{ShipmentItemID: "a", Received: 6, Condition: entity.ConditionGood},
		{ShipmentItemID: "a", Received: 4, Condition: entity.ConditionNearExpiry},
	}, onlyGood)
	require.NoError(t, err)
	assert.Equal(t, int64(6), rec.TotalAccepted)
}

func TestParseConditionSet(t *testing.T) {
	set := inventory.ParseConditionSet([]string{"GOOD", "DAMAGED", "MISSING", "NOPE"})
	assert.True(t, set[entity.ConditionGood])
	assert.True(t, set[entity.ConditionDamaged])
	assert.False(t, set[entity.ConditionMissing], "MISSING nunca es reingresable")
	assert.Len(t, set, 2)

	assert.Equal(t, inventory.DefaultStockable(), inventory.ParseConditionSet(nil))
}

func TestFullReceipt(t *testing.T) {
	rows := inventory.FullReceipt(items(3, 9))
	require.Len(t, rows, 2)
	assert.Equal(t, entity.ReceivedItem{ShipmentItemID: "b", Expected: 9, Received: 9, Condition: entity.ConditionGood}, rows[1])
}
