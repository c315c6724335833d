package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-logistica/internal/application/auth"
	"github.com/jhoicas/farmacia-logistica/internal/application/inventory"
	"github.com/jhoicas/farmacia-logistica/internal/domain/audit"
	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	domaininv "github.com/jhoicas/farmacia-logistica/internal/domain/inventory"
	"github.com/jhoicas/farmacia-logistica/internal/infrastructure/lock"
	"github.com/jhoicas/farmacia-logistica/internal/infrastructure/memory"
	"github.com/jhoicas/farmacia-logistica/internal/infrastructure/metrics"
)

const (
	storeA     = "SUC-01"
	storeB     = "SUC-02"
	warehouse  = "BOD-01"
	inactive   = "SUC-OFF"
	actor      = "user-1"
	supervisor = "sup-1"
	goodPin    = "4321"
)

type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *recordingSink) Publish(_ context.Context, e audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) actions() []audit.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]audit.Action, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Action)
	}
	return out
}

func (s *recordingSink) count(a audit.Action) int {
	n := 0
	for _, got := range s.actions() {
		if got == a {
			n++
		}
	}
	return n
}

// tickingClock avanza un segundo por lectura; ordena el historial de forma determinista.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fixture struct {
	store     *memory.Store
	locker    *lock.MemoryLocker
	sink      *recordingSink
	metrics   *metrics.Metrics
	deps      inventory.Deps
	ledger    *inventory.MovementLedger
	shipments *inventory.ShipmentUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	store.AddLocation(entity.Location{ID: storeA, Name: "Sucursal Centro", Type: entity.LocationStore, Active: true})
	store.AddLocation(entity.Location{ID: storeB, Name: "Sucursal Norte", Type: entity.LocationStore, Active: true})
	store.AddLocation(entity.Location{ID: warehouse, Name: "Bodega Principal", Type: entity.LocationWarehouse, Active: true})
	store.AddLocation(entity.Location{ID: inactive, Name: "Sucursal Cerrada", Type: entity.LocationStore, Active: false})

	hash, err := auth.HashPin(goodPin)
	require.NoError(t, err)
	store.AddCredential(entity.SupervisorCredential{UserID: supervisor, LocationID: storeA, PinHash: hash, Active: true})

	clock := &tickingClock{now: time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)}
	sink := &recordingSink{}
	m := metrics.New(prometheus.NewRegistry())
	locker := lock.NewMemoryLocker(200 * time.Millisecond)

	deps := inventory.Deps{
		Tx:        store,
		Locker:    locker,
		Locations: store.Locations(),
		Movements: store.Movements(),
		Lots:      store.Lots(),
		Shipments: store.Shipments(),
		Audit:     sink,
		Metrics:   m,
		Retry:     inventory.RetryConfig{MaxRetries: 1, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond},
		Clock:     clock.Now,
	}
	authorizer := inventory.NewAuthorizer(domaininv.DefaultPolicy(), auth.NewPinVerifier(store.Credentials()))
	return &fixture{
		store:     store,
		locker:    locker,
		sink:      sink,
		metrics:   m,
		deps:      deps,
		ledger:    inventory.NewMovementLedger(deps),
		shipments: inventory.NewShipmentUseCase(deps, authorizer, nil),
	}
}

func key(product, location string) entity.StockKey {
	return entity.StockKey{ProductID: product, LocationID: location, LotNumber: "L1"}
}

// seed ingresa stock inicial como entrada de compra.
func (f *fixture) seed(t *testing.T, k entity.StockKey, qty int64, cost string) {
	t.Helper()
	c := decimal.RequireFromString(cost)
	exp := time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)
	_, err := f.ledger.Record(context.Background(), inventory.RecordInput{
		Key:        k,
		Type:       entity.MovementPurchaseEntry,
		Delta:      qty,
		ActorID:    actor,
		Reference:  "seed",
		UnitCost:   &c,
		ExpiryDate: &exp,
	})
	require.NoError(t, err)
}

func (f *fixture) quantity(t *testing.T, k entity.StockKey) int64 {
	t.Helper()
	lot, err := f.store.Lots().Get(context.Background(), k)
	require.NoError(t, err)
	if lot == nil {
		return 0
	}
	return lot.Quantity
}

func (f *fixture) entries(t *testing.T, location string) []*entity.MovementEntry {
	t.Helper()
	page, err := f.ledger.History(context.Background(), inventory.HistoryQuery{LocationID: location, Limit: inventory.MaxHistoryLimit})
	require.NoError(t, err)
	return page.Entries
}

func dispatchInput(origin, destination string, qty int64) inventory.DispatchInput {
	return inventory.DispatchInput{
		Type:          entity.ShipmentInterBranch,
		OriginID:      origin,
		DestinationID: destination,
		Items:         []inventory.ItemInput{{ProductID: "X", LotNumber: "L1", Quantity: qty}},
		ActorID:       actor,
	}
}
