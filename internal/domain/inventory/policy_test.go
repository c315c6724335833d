package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/domain/inventory"
)

func TestPolicy_Umbral(t *testing.T) {
	p := inventory.DefaultPolicy()
	assert.False(t, p.RequiresAuthorization(99))
	assert.True(t, p.RequiresAuthorization(100), "el umbral es inclusivo")
	assert.True(t, p.RequiresAuthorization(250))

	custom := inventory.Policy{Threshold: 20}
	assert.True(t, custom.RequiresAuthorization(20))
	assert.Equal(t, int64(20), custom.EffectiveThreshold())

	assert.Equal(t, inventory.DefaultAuthorizationThreshold, inventory.Policy{}.EffectiveThreshold())
}

func TestPolicy_FormatoPin(t *testing.T) {
	p := inventory.DefaultPolicy()
	assert.True(t, p.ValidPinFormat("1234"))
	assert.True(t, p.ValidPinFormat("12345678"))
	assert.False(t, p.ValidPinFormat("123"))
	assert.False(t, p.ValidPinFormat("123456789"))
	assert.False(t, p.ValidPinFormat("12a4"))
	assert.False(t, p.ValidPinFormat(""))

	six := inventory.Policy{PinMinLength: 6, PinMaxLength: 6}
	assert.False(t, six.ValidPinFormat("1234"))
	assert.True(t, six.ValidPinFormat("123456"))
}

func TestCostCalculator(t *testing.T) {
	d := decimal.RequireFromString

	got := inventory.CostCalculator(10, d("100"), 10, d("200"))
	assert.True(t, d("150").Equal(got), got.String())

	got = inventory.CostCalculator(3, d("10"), 1, d("11"))
	assert.True(t, d("10.25").Equal(got), got.String())

	got = inventory.CostCalculator(0, d("99"), 5, d("12.5"))
	assert.True(t, d("12.5").Equal(got), "sin stock se toma el costo de entrada")

	got = inventory.CostCalculator(-4, d("99"), 5, d("12.5"))
	assert.True(t, d("12.5").Equal(got), "el déficit no pondera")

	got = inventory.CostCalculator(7, d("8"), 0, d("50"))
	assert.True(t, d("8").Equal(got))
}

func TestLockOrder(t *testing.T) {
	got := inventory.LockOrder([]string{"stock:b", "", "shipment:1", "stock:a", "stock:b"})
	assert.Equal(t, []string{"shipment:1", "stock:a", "stock:b"}, got)
	assert.Empty(t, inventory.LockOrder(nil))
}

func TestStockLockKeys(t *testing.T) {
	its := []entity.ShipmentItem{
		{ProductID: "P1", LotNumber: "L1"},
		{ProductID: "P2"},
	}
	assert.Equal(t, []string{"stock:P1|BOD-01|L1", "stock:P2|BOD-01|"}, inventory.StockLockKeys(its, "BOD-01"))
	assert.Equal(t, "shipment:X", inventory.ShipmentLockKey("X"))
}
