package inventory

import (
	"context"
	"errors"
	"strings"
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

// ShipmentUseCase máquina de estados de envíos. Toda escritura de stock pasa por el libro
// dentro de la misma transacción que el cambio de estado.
type ShipmentUseCase struct {
	d         Deps
	auth      *Authorizer
	stockable inventory.ConditionSet
}

// NewShipmentUseCase construye el caso de uso. stockable nil = GOOD y NEAR_EXPIRY.
func NewShipmentUseCase(d Deps, auth *Authorizer, stockable inventory.ConditionSet) *ShipmentUseCase {
	if stockable == nil {
		stockable = inventory.DefaultStockable()
	}
	if auth == nil {
		auth = NewAuthorizer(inventory.DefaultPolicy(), nil)
	}
	return &ShipmentUseCase{d: d.withDefaults(), auth: auth, stockable: stockable}
}

// ItemInput línea solicitada. UnitCost y ExpiryDate solo aplican a INBOUND;
// en el resto se copian del lote de origen al despachar.
type ItemInput struct {
	ProductID  string
	LotNumber  string
	Quantity   int64
	Sale       bool
	UnitCost   decimal.Decimal
	ExpiryDate *time.Time
}

// DispatchInput entrada de Dispatch y Transfer.
type DispatchInput struct {
	Type          entity.ShipmentType // vacío = OUTBOUND
	OriginID      string
	DestinationID string
	Items         []ItemInput
	Transport     entity.TransportMeta
	ActorID       string
	Notes         string
	Authorization AuthorizationInput
}

// InboundInput recepción esperada de un proveedor (sin tramo de origen).
type InboundInput struct {
	SupplierRef     string
	DestinationID   string
	PurchaseOrderID string
	Items           []ItemInput
	Transport       entity.TransportMeta
	ActorID         string
	Notes           string
}

// ReceiveInput conteo de recepción. Varias filas por línea = conteo dividido por condición.
type ReceiveInput struct {
	ShipmentID string
	Items      []entity.ReceivedItem
	ActorID    string
}

// ReceiveResult envío actualizado con su conciliación y las filas del libro escritas.
type ReceiveResult struct {
	Shipment       *entity.Shipment
	Reconciliation inventory.Reconciliation
	Entries        []*entity.MovementEntry
}

// totalQuantity suma las líneas; error si la suma desborda.
func totalQuantity(items []ItemInput) (int64, error) {
	var total int64
	for _, it := range items {
		sum, ok := inventory.AddQuantity(total, it.Quantity)
		if !ok {
			return 0, &domain.ItemError{ProductID: it.ProductID, Quantity: it.Quantity, Err: domain.ErrInvalidQuantity}
		}
		total = sum
	}
	return total, nil
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return domain.ErrEmptyShipment
	}
	for _, it := range items {
		if strings.TrimSpace(it.ProductID) == "" {
			return &domain.ItemError{ProductID: it.ProductID, Quantity: it.Quantity, Err: domain.ErrInvalidInput}
		}
		if it.Quantity <= 0 {
			return &domain.ItemError{ProductID: it.ProductID, Quantity: it.Quantity, Err: domain.ErrInvalidQuantity}
		}
		if it.UnitCost.IsNegative() {
			return &domain.ItemError{ProductID: it.ProductID, Quantity: it.Quantity, Err: domain.ErrInvalidInput}
		}
	}
	_, err := totalQuantity(items)
	return err
}

// prepare valida forma, ubicaciones y autorización. Nada de esto toma cerrojos.
func (uc *ShipmentUseCase) prepare(ctx context.Context, in DispatchInput) (string, error) {
	if in.ActorID == "" {
		return "", domain.ErrInvalidInput
	}
	if err := validateItems(in.Items); err != nil {
		return "", err
	}
	if in.OriginID == in.DestinationID {
		return "", domain.ErrInvalidInput
	}
	if _, err := uc.d.requireLocation(ctx, in.OriginID); err != nil {
		return "", err
	}
	if _, err := uc.d.requireLocation(ctx, in.DestinationID); err != nil {
		return "", err
	}
	total, err := totalQuantity(in.Items)
	if err != nil {
		return "", err
	}
	actor := ActorContext{ActorID: in.ActorID, LocationID: in.OriginID}
	authorizedBy, err := uc.auth.Authorize(ctx, actor, in.Authorization, total)
	if err != nil {
		var authErr *domain.AuthorizationError
		if errors.As(err, &authErr) {
			uc.d.Audit.Publish(ctx, audit.Event{
				ID:         uuid.New().String(),
				Action:     audit.ActionAuthorizationDenied,
				Timestamp:  uc.d.Clock(),
				ActorID:    in.ActorID,
				LocationID: in.OriginID,
				Reason:     authErr.Err.Error(),
				Delta:      authErr.TotalQuantity,
			})
		}
		return "", err
	}
	return authorizedBy, nil
}

func (uc *ShipmentUseCase) newShipment(typ entity.ShipmentType, origin, destination string, items []ItemInput, transport entity.TransportMeta, actorID, notes string, now time.Time) *entity.Shipment {
	s := &entity.Shipment{
		ID:            uuid.New().String(),
		Type:          typ,
		Status:        entity.StatusDraft,
		OriginID:      origin,
		DestinationID: destination,
		Items:         make([]entity.ShipmentItem, 0, len(items)),
		Transport:     transport,
		CreatedBy:     actorID,
		CreatedAt:     now,
		Notes:         notes,
	}
	for _, it := range items {
		item := entity.ShipmentItem{
			ID:         uuid.New().String(),
			ProductID:  strings.TrimSpace(it.ProductID),
			LotNumber:  strings.TrimSpace(it.LotNumber),
			Quantity:   it.Quantity,
			Sale:       it.Sale,
			UnitCost:   it.UnitCost,
			ExpiryDate: it.ExpiryDate,
		}
		s.Items = append(s.Items, item)
	}
	return s
}

// Dispatch crea el envío y descuenta el origen: DRAFT → IN_TRANSIT en una sola transacción.
// Si una línea falla no queda nada escrito.
func (uc *ShipmentUseCase) Dispatch(ctx context.Context, in DispatchInput) (*entity.Shipment, error) {
	ctx, span := tracer.Start(ctx, "shipment.Dispatch")
	defer span.End()

	if in.Type == "" {
		in.Type = entity.ShipmentOutbound
	}
	span.SetAttributes(attribute.String("shipment.type", string(in.Type)), attribute.Int("shipment.items", len(in.Items)))
	if in.Type == entity.ShipmentInbound || !in.Type.Valid() {
		return nil, uc.d.reject(span, domain.ErrInvalidInput)
	}
	authorizedBy, err := uc.prepare(ctx, in)
	if err != nil {
		return nil, uc.d.reject(span, err)
	}

	var (
		s       *entity.Shipment
		entries []*entity.MovementEntry
	)
	keys := inventory.StockLockKeys(toShipmentItems(in.Items), in.OriginID)
	err = uc.d.exclusive(ctx, keys, func() error {
		return uc.d.Tx.Run(ctx, func(ctx context.Context, movRepo repository.MovementEntryRepository, lotRepo repository.StockLotRepository, shipRepo repository.ShipmentRepository) error {
			now := uc.d.Clock()
			s = uc.newShipment(in.Type, in.OriginID, in.DestinationID, in.Items, in.Transport, in.ActorID, in.Notes, now)
			s.AuthorizedBy = authorizedBy
			out, err := dispatchLegs(ctx, movRepo, lotRepo, s, in.ActorID, now)
			if err != nil {
				return err
			}
			entries = out
			s.Transition(entity.StatusInTransit, in.ActorID, now)
			return shipRepo.Create(ctx, s)
		})
	})
	if err != nil {
		return nil, uc.d.reject(span, err)
	}

	uc.committed(ctx, s, entries, audit.ActionShipmentDispatched, 1)
	uc.d.Logger.Info().
		Str("shipment_id", s.ID).
		Str("type", string(s.Type)).
		Str("origin", s.OriginID).
		Str("destination", s.DestinationID).
		Int64("quantity", s.TotalQuantity()).
		Msg("envío despachado")
	return s, nil
}

// RegisterInbound registra mercancía de proveedor esperada en destino. No toca stock hasta Receive.
func (uc *ShipmentUseCase) RegisterInbound(ctx context.Context, in InboundInput) (*entity.Shipment, error) {
	ctx, span := tracer.Start(ctx, "shipment.RegisterInbound")
	defer span.End()

	if in.ActorID == "" || strings.TrimSpace(in.SupplierRef) == "" {
		return nil, uc.d.reject(span, domain.ErrInvalidInput)
	}
	if err := validateItems(in.Items); err != nil {
		return nil, uc.d.reject(span, err)
	}
	if _, err := uc.d.requireLocation(ctx, in.DestinationID); err != nil {
		return nil, uc.d.reject(span, err)
	}

	var s *entity.Shipment
	err := uc.d.Tx.Run(ctx, func(ctx context.Context, _ repository.MovementEntryRepository, _ repository.StockLotRepository, shipRepo repository.ShipmentRepository) error {
		now := uc.d.Clock()
		s = uc.newShipment(entity.ShipmentInbound, strings.TrimSpace(in.SupplierRef), in.DestinationID, in.Items, in.Transport, in.ActorID, in.Notes, now)
		s.Reference = in.PurchaseOrderID
		s.Transition(entity.StatusInTransit, in.ActorID, now)
		return shipRepo.Create(ctx, s)
	})
	if err != nil {
		return nil, uc.d.reject(span, err)
	}
	uc.committed(ctx, s, nil, audit.ActionShipmentRegistered, 1)
	return s, nil
}

// Receive concilia lo contado contra lo esperado y reingresa en destino las unidades aceptadas.
// Sin discrepancias termina en RECEIVED; con cualquier diferencia o condición distinta de GOOD, PARTIAL.
func (uc *ShipmentUseCase) Receive(ctx context.Context, in ReceiveInput) (*ReceiveResult, error) {
	ctx, span := tracer.Start(ctx, "shipment.Receive")
	defer span.End()
	span.SetAttributes(attribute.String("shipment.id", in.ShipmentID))

	if in.ActorID == "" || in.ShipmentID == "" {
		return nil, uc.d.reject(span, domain.ErrInvalidInput)
	}
	for _, r := range in.Items {
		if r.Received < 0 {
			return nil, uc.d.reject(span, &domain.ItemError{ItemID: r.ShipmentItemID, Quantity: r.Received, Err: domain.ErrInvalidQuantity})
		}
		if r.Condition != "" && !r.Condition.Valid() {
			return nil, uc.d.reject(span, &domain.ItemError{ItemID: r.ShipmentItemID, Quantity: r.Received, Err: domain.ErrInvalidInput})
		}
	}

	current, err := uc.get(ctx, in.ShipmentID)
	if err != nil {
		return nil, uc.d.reject(span, err)
	}
	if current.Status != entity.StatusInTransit {
		return nil, uc.d.reject(span, &domain.TransitionError{ShipmentID: current.ID, From: string(current.Status), To: string(entity.StatusReceived)})
	}
	for _, r := range in.Items {
		if _, ok := current.Item(r.ShipmentItemID); !ok {
			return nil, uc.d.reject(span, &domain.ItemError{ItemID: r.ShipmentItemID, Quantity: r.Received, Err: domain.ErrInvalidInput})
		}
	}
	if _, err := uc.d.requireLocation(ctx, current.DestinationID); err != nil {
		return nil, uc.d.reject(span, err)
	}

	var result *ReceiveResult
	keys := append(stockableKeys(current.Items, current.DestinationID), inventory.ShipmentLockKey(current.ID))
	err = uc.d.exclusive(ctx, keys, func() error {
		return uc.d.Tx.Run(ctx, func(ctx context.Context, movRepo repository.MovementEntryRepository, lotRepo repository.StockLotRepository, shipRepo repository.ShipmentRepository) error {
			s, err := lockShipment(ctx, shipRepo, in.ShipmentID)
			if err != nil {
				return err
			}
			if s.Status != entity.StatusInTransit {
				return &domain.TransitionError{ShipmentID: s.ID, From: string(s.Status), To: string(entity.StatusReceived)}
			}
			rec, err := inventory.Reconcile(s.Items, in.Items, uc.stockable)
			if err != nil {
				return err
			}
			now := uc.d.Clock()
			entries, err := receiveLegs(ctx, movRepo, lotRepo, s, rec, in.ActorID, now)
			if err != nil {
				return err
			}
			closeReceipt(s, rec, in.ActorID, now)
			if err := shipRepo.Update(ctx, s); err != nil {
				return err
			}
			result = &ReceiveResult{Shipment: s, Reconciliation: rec, Entries: entries}
			return nil
		})
	})
	if err != nil {
		return nil, uc.d.reject(span, err)
	}

	action := audit.ActionShipmentReceived
	if result.Shipment.Status == entity.StatusPartial {
		action = audit.ActionShipmentPartial
	}
	uc.committed(ctx, result.Shipment, result.Entries, action, 1)
	uc.d.Logger.Info().
		Str("shipment_id", result.Shipment.ID).
		Str("status", string(result.Shipment.Status)).
		Int64("expected", result.Reconciliation.TotalExpected).
		Int64("received", result.Reconciliation.TotalReceived).
		Int64("accepted", result.Reconciliation.TotalAccepted).
		Msg("envío recibido")
	return result, nil
}

// Cancel anula un envío en tránsito devolviendo al origen lo descontado con filas compensatorias.
// Nunca borra filas del libro. Si ya hubo entradas en destino, la cancelación se rechaza.
func (uc *ShipmentUseCase) Cancel(ctx context.Context, shipmentID, actorID string) (*entity.Shipment, error) {
	ctx, span := tracer.Start(ctx, "shipment.Cancel")
	defer span.End()
	span.SetAttributes(attribute.String("shipment.id", shipmentID))

	if actorID == "" || shipmentID == "" {
		return nil, uc.d.reject(span, domain.ErrInvalidInput)
	}
	current, err := uc.get(ctx, shipmentID)
	if err != nil {
		return nil, uc.d.reject(span, err)
	}
	if current.Status != entity.StatusInTransit {
		return nil, uc.d.reject(span, &domain.TransitionError{ShipmentID: current.ID, From: string(current.Status), To: string(entity.StatusCancelled)})
	}

	keys := []string{inventory.ShipmentLockKey(current.ID)}
	if current.HasOriginLeg() {
		keys = append(keys, inventory.StockLockKeys(current.Items, current.OriginID)...)
	}

	var (
		s       *entity.Shipment
		entries []*entity.MovementEntry
	)
	err = uc.d.exclusive(ctx, keys, func() error {
		return uc.d.Tx.Run(ctx, func(ctx context.Context, movRepo repository.MovementEntryRepository, lotRepo repository.StockLotRepository, shipRepo repository.ShipmentRepository) error {
			locked, err := lockShipment(ctx, shipRepo, shipmentID)
			if err != nil {
				return err
			}
			if locked.Status != entity.StatusInTransit {
				return &domain.TransitionError{ShipmentID: locked.ID, From: string(locked.Status), To: string(entity.StatusCancelled)}
			}
			prior, err := movRepo.ListByShipment(ctx, locked.ID)
			if err != nil {
				return err
			}
			for _, e := range prior {
				if e.LocationID == locked.DestinationID && e.Delta > 0 {
					return &domain.TransitionError{ShipmentID: locked.ID, From: string(locked.Status), To: string(entity.StatusCancelled)}
				}
			}
			now := uc.d.Clock()
			out := make([]*entity.MovementEntry, 0, len(prior))
			if locked.HasOriginLeg() {
				for _, e := range prior {
					if e.LocationID != locked.OriginID || e.Delta >= 0 {
						continue
					}
					entry, _, err := applyMovement(ctx, movRepo, lotRepo, RecordInput{
						Key:        e.Key(),
						Type:       entity.MovementTransferIn,
						Delta:      -e.Delta,
						ActorID:    actorID,
						Reference:  "cancel:" + locked.ID,
						ShipmentID: locked.ID,
					}, now)
					if err != nil {
						return err
					}
					out = append(out, entry)
				}
			}
			locked.Transition(entity.StatusCancelled, actorID, now)
			if err := shipRepo.Update(ctx, locked); err != nil {
				return err
			}
			s, entries = locked, out
			return nil
		})
	})
	if err != nil {
		return nil, uc.d.reject(span, err)
	}

	uc.committed(ctx, s, entries, audit.ActionShipmentCancelled, 1)
	uc.d.Logger.Info().Str("shipment_id", s.ID).Str("actor", actorID).Int("compensations", len(entries)).Msg("envío cancelado")
	return s, nil
}

// Transfer traslado directo entre sucursales: despacho y recepción completa en una sola
// transacción, con una única verificación de autorización. Termina en RECEIVED.
func (uc *ShipmentUseCase) Transfer(ctx context.Context, in DispatchInput) (*ReceiveResult, error) {
	ctx, span := tracer.Start(ctx, "shipment.Transfer")
	defer span.End()

	in.Type = entity.ShipmentInterBranch
	span.SetAttributes(attribute.Int("shipment.items", len(in.Items)))
	authorizedBy, err := uc.prepare(ctx, in)
	if err != nil {
		return nil, uc.d.reject(span, err)
	}

	items := toShipmentItems(in.Items)
	keys := append(inventory.StockLockKeys(items, in.OriginID), stockableKeys(items, in.DestinationID)...)

	var result *ReceiveResult
	err = uc.d.exclusive(ctx, keys, func() error {
		return uc.d.Tx.Run(ctx, func(ctx context.Context, movRepo repository.MovementEntryRepository, lotRepo repository.StockLotRepository, shipRepo repository.ShipmentRepository) error {
			now := uc.d.Clock()
			s := uc.newShipment(in.Type, in.OriginID, in.DestinationID, in.Items, in.Transport, in.ActorID, in.Notes, now)
			s.AuthorizedBy = authorizedBy
			out, err := dispatchLegs(ctx, movRepo, lotRepo, s, in.ActorID, now)
			if err != nil {
				return err
			}
			s.Transition(entity.StatusInTransit, in.ActorID, now)

			rec, err := inventory.Reconcile(s.Items, inventory.FullReceipt(s.Items), uc.stockable)
			if err != nil {
				return err
			}
			inbound, err := receiveLegs(ctx, movRepo, lotRepo, s, rec, in.ActorID, now)
			if err != nil {
				return err
			}
			closeReceipt(s, rec, in.ActorID, now)
			if err := shipRepo.Create(ctx, s); err != nil {
				return err
			}
			result = &ReceiveResult{Shipment: s, Reconciliation: rec, Entries: append(out, inbound...)}
			return nil
		})
	})
	if err != nil {
		return nil, uc.d.reject(span, err)
	}

	uc.committed(ctx, result.Shipment, result.Entries, audit.ActionShipmentReceived, 2)
	uc.d.Logger.Info().
		Str("shipment_id", result.Shipment.ID).
		Str("origin", result.Shipment.OriginID).
		Str("destination", result.Shipment.DestinationID).
		Int64("quantity", result.Shipment.TotalQuantity()).
		Msg("traslado aplicado")
	return result, nil
}

// UpdateNotes reemplaza las notas de un envío que aún no terminó.
func (uc *ShipmentUseCase) UpdateNotes(ctx context.Context, shipmentID, notes, actorID string) (*entity.Shipment, error) {
	ctx, span := tracer.Start(ctx, "shipment.UpdateNotes")
	defer span.End()

	if actorID == "" || shipmentID == "" {
		return nil, uc.d.reject(span, domain.ErrInvalidInput)
	}
	var s *entity.Shipment
	err := uc.d.exclusive(ctx, []string{inventory.ShipmentLockKey(shipmentID)}, func() error {
		return uc.d.Tx.Run(ctx, func(ctx context.Context, _ repository.MovementEntryRepository, _ repository.StockLotRepository, shipRepo repository.ShipmentRepository) error {
			locked, err := lockShipment(ctx, shipRepo, shipmentID)
			if err != nil {
				return err
			}
			if locked.Status.Terminal() {
				return &domain.TransitionError{ShipmentID: locked.ID, From: string(locked.Status), To: "NOTES"}
			}
			locked.Notes = notes
			s = locked
			return shipRepo.Update(ctx, locked)
		})
	})
	if err != nil {
		return nil, uc.d.reject(span, err)
	}
	uc.d.Audit.Publish(ctx, audit.Event{
		ID:         uuid.New().String(),
		Action:     audit.ActionShipmentNotesUpdated,
		Timestamp:  uc.d.Clock(),
		ActorID:    actorID,
		LocationID: s.OriginID,
		ShipmentID: s.ID,
		FromStatus: string(s.Status),
		ToStatus:   string(s.Status),
	})
	return s, nil
}

// Get devuelve el envío o domain.ErrNotFound.
func (uc *ShipmentUseCase) Get(ctx context.Context, id string) (*entity.Shipment, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.get(ctx, id)
}

func (uc *ShipmentUseCase) get(ctx context.Context, id string) (*entity.Shipment, error) {
	s, err := uc.d.Shipments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func lockShipment(ctx context.Context, shipRepo repository.ShipmentRepository, id string) (*entity.Shipment, error) {
	s, err := shipRepo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// committed publica eventos y métricas; solo se llama tras confirmar la transacción.
// applied = transiciones nuevas de esta operación (las últimas del registro).
func (uc *ShipmentUseCase) committed(ctx context.Context, s *entity.Shipment, entries []*entity.MovementEntry, action audit.Action, applied int) {
	for _, e := range entries {
		uc.d.Metrics.IncMovement(string(e.Type))
		uc.d.Audit.Publish(ctx, movementEvent(e))
	}
	for i := len(s.Transitions) - applied; i < len(s.Transitions); i++ {
		if i >= 0 {
			uc.d.Metrics.IncTransition(string(s.Transitions[i].To))
		}
	}
	from, actor := entity.StatusDraft, s.CreatedBy
	if n := len(s.Transitions); n > 0 {
		from, actor = s.Transitions[n-1].From, s.Transitions[n-1].ActorID
	}
	uc.d.Audit.Publish(ctx, audit.Event{
		ID:         uuid.New().String(),
		Action:     action,
		Timestamp:  uc.d.Clock(),
		ActorID:    actor,
		LocationID: s.OriginID,
		ShipmentID: s.ID,
		FromStatus: string(from),
		ToStatus:   string(s.Status),
		Reference:  s.Reference,
	})
}

// dispatchLegs descuenta cada línea en origen y copia vencimiento y costo del lote a la línea.
func dispatchLegs(ctx context.Context, movRepo repository.MovementEntryRepository, lotRepo repository.StockLotRepository, s *entity.Shipment, actorID string, now time.Time) ([]*entity.MovementEntry, error) {
	entries := make([]*entity.MovementEntry, 0, len(s.Items))
	for i := range s.Items {
		it := &s.Items[i]
		mt := entity.MovementTransferOut
		if it.Sale {
			mt = entity.MovementSale
		}
		entry, lot, err := applyMovement(ctx, movRepo, lotRepo, RecordInput{
			Key:        it.Key(s.OriginID),
			Type:       mt,
			Delta:      -it.Quantity,
			ActorID:    actorID,
			Reference:  "shipment:" + s.ID,
			ShipmentID: s.ID,
		}, now)
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				return nil, &domain.ItemError{ItemID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity, Err: err}
			}
			return nil, err
		}
		it.ExpiryDate = lot.ExpiryDate
		it.UnitCost = lot.UnitCost
		entries = append(entries, entry)
	}
	return entries, nil
}

// receiveLegs ingresa en destino las unidades aceptadas de cada línea.
func receiveLegs(ctx context.Context, movRepo repository.MovementEntryRepository, lotRepo repository.StockLotRepository, s *entity.Shipment, rec inventory.Reconciliation, actorID string, now time.Time) ([]*entity.MovementEntry, error) {
	mt := inboundType(s.Type)
	entries := make([]*entity.MovementEntry, 0, len(rec.Items))
	for _, d := range rec.Items {
		if d.Accepted <= 0 {
			continue
		}
		it, ok := s.Item(d.ItemID)
		if !ok || it.Sale {
			continue
		}
		in := RecordInput{
			Key:        it.Key(s.DestinationID),
			Type:       mt,
			Delta:      d.Accepted,
			ActorID:    actorID,
			Reference:  "shipment:" + s.ID,
			ShipmentID: s.ID,
			ExpiryDate: it.ExpiryDate,
		}
		if it.UnitCost.IsPositive() {
			cost := it.UnitCost
			in.UnitCost = &cost
		}
		entry, _, err := applyMovement(ctx, movRepo, lotRepo, in, now)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// closeReceipt guarda las filas conciliadas y aplica IN_TRANSIT → RECEIVED|PARTIAL.
func closeReceipt(s *entity.Shipment, rec inventory.Reconciliation, actorID string, now time.Time) {
	s.Received = s.Received[:0]
	for _, d := range rec.Items {
		s.Received = append(s.Received, d.Rows...)
	}
	to := entity.StatusReceived
	if rec.HasDiscrepancy {
		to = entity.StatusPartial
	}
	s.Transition(to, actorID, now)
	s.ReceivedBy = actorID
	at := now
	s.ReceivedAt = &at
}

func inboundType(t entity.ShipmentType) entity.MovementType {
	switch t {
	case entity.ShipmentInbound:
		return entity.MovementReceipt
	case entity.ShipmentReturn:
		return entity.MovementReturn
	default:
		return entity.MovementTransferIn
	}
}

// stockableKeys claves en destino de las líneas que se reingresan (las de venta no).
func stockableKeys(items []entity.ShipmentItem, locationID string) []string {
	keys := make([]string, 0, len(items))
	for _, it := range items {
		if it.Sale {
			continue
		}
		keys = append(keys, it.Key(locationID).String())
	}
	return keys
}

func toShipmentItems(items []ItemInput) []entity.ShipmentItem {
	out := make([]entity.ShipmentItem, 0, len(items))
	for _, it := range items {
		out = append(out, entity.ShipmentItem{
			ProductID: strings.TrimSpace(it.ProductID),
			LotNumber: strings.TrimSpace(it.LotNumber),
			Quantity:  it.Quantity,
			Sale:      it.Sale,
		})
	}
	return out
}
