package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/farmacia-logistica/internal/application/inventory"
	"github.com/jhoicas/farmacia-logistica/internal/domain"
	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/domain/repository"
)

// Store almacenamiento en proceso. Las transacciones se serializan y escriben
// en un área temporal que solo se aplica al confirmar.
type Store struct {
	txMu sync.Mutex // una transacción a la vez
	mu   sync.RWMutex

	lots        map[entity.StockKey]*entity.StockLot
	entries     []*entity.MovementEntry
	seq         int64
	shipments   map[string]*entity.Shipment
	locations   map[string]*entity.Location
	orders      map[string]*entity.PurchaseOrder
	credentials map[string]*entity.SupervisorCredential

	failNext error
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{
		lots:        make(map[entity.StockKey]*entity.StockLot),
		shipments:   make(map[string]*entity.Shipment),
		locations:   make(map[string]*entity.Location),
		orders:      make(map[string]*entity.PurchaseOrder),
		credentials: make(map[string]*entity.SupervisorCredential),
	}
}

var _ inventory.TxRunner = (*Store)(nil)

// FailNextCommit hace que la próxima confirmación falle con ErrStorageUnavailable.
func (s *Store) FailNextCommit(cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = cause
}

// AddLocation registra una ubicación en el directorio.
func (s *Store) AddLocation(loc entity.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := loc
	s.locations[loc.ID] = &l
}

// AddPurchaseOrder registra una orden de compra externa.
func (s *Store) AddPurchaseOrder(o entity.PurchaseOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := o
	s.orders[o.ID] = &c
}

// AddCredential registra el PIN (hash) de un supervisor.
func (s *Store) AddCredential(c entity.SupervisorCredential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := c
	s.credentials[c.UserID] = &cp
}

// Run ejecuta fn con repositorios atados a una transacción nueva.
func (s *Store) Run(ctx context.Context, fn func(
	ctx context.Context,
	movRepo repository.MovementEntryRepository,
	lotRepo repository.StockLotRepository,
	shipRepo repository.ShipmentRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := newTxState()
	if err := fn(ctx, &MovementRepository{s: s, tx: tx}, &StockLotRepository{s: s, tx: tx}, &ShipmentRepository{s: s, tx: tx}); err != nil {
		return err
	}
	return s.commit(tx)
}

// Lots repositorio de lotes fuera de transacción.
func (s *Store) Lots() *StockLotRepository { return &StockLotRepository{s: s} }

// Movements repositorio del libro fuera de transacción.
func (s *Store) Movements() *MovementRepository { return &MovementRepository{s: s} }

// Shipments repositorio de envíos fuera de transacción.
func (s *Store) Shipments() *ShipmentRepository { return &ShipmentRepository{s: s} }

// Locations directorio de ubicaciones.
func (s *Store) Locations() *LocationRepository { return &LocationRepository{s: s} }

// PurchaseOrders fuente de órdenes de compra.
func (s *Store) PurchaseOrders() *PurchaseOrderRepository { return &PurchaseOrderRepository{s: s} }

// Credentials credenciales de supervisores.
func (s *Store) Credentials() *CredentialRepository { return &CredentialRepository{s: s} }

type txState struct {
	lots      map[entity.StockKey]*entity.StockLot
	entries   []*entity.MovementEntry
	shipments map[string]*entity.Shipment
}

func newTxState() *txState {
	return &txState{
		lots:      make(map[entity.StockKey]*entity.StockLot),
		shipments: make(map[string]*entity.Shipment),
	}
}

func (s *Store) commit(tx *txState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext != nil {
		cause := s.failNext
		s.failNext = nil
		return fmt.Errorf("%w: commit: %v", domain.ErrStorageUnavailable, cause)
	}
	for k, lot := range tx.lots {
		s.lots[k] = copyLot(lot)
	}
	for _, e := range tx.entries {
		s.seq++
		e.Seq = s.seq
		s.entries = append(s.entries, copyEntry(e))
	}
	for id, sh := range tx.shipments {
		s.shipments[id] = copyShipment(sh)
	}
	return nil
}
