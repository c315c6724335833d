package inventory

import (
	"github.com/jhoicas/farmacia-logistica/internal/domain"
	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
)

// ConditionSet conjunto de condiciones cuyas unidades se reingresan al stock vendible.
type ConditionSet map[entity.ItemCondition]bool

// DefaultStockable condiciones reingresables por defecto.
func DefaultStockable() ConditionSet {
	return ConditionSet{entity.ConditionGood: true, entity.ConditionNearExpiry: true}
}

// ParseConditionSet construye el conjunto desde nombres; ignora los desconocidos.
func ParseConditionSet(names []string) ConditionSet {
	set := ConditionSet{}
	for _, n := range names {
		c := entity.ItemCondition(n)
		if c.Valid() && c != entity.ConditionMissing {
			set[c] = true
		}
	}
	if len(set) == 0 {
		return DefaultStockable()
	}
	return set
}

// ItemDiscrepancy resultado de conciliar una línea del envío.
type ItemDiscrepancy struct {
	ItemID     string
	ProductID  string
	Expected   int64
	Received   int64 // total contado, cualquier condición
	Accepted   int64 // contado en condición reingresable, nunca más que Expected
	Surplus    int64 // unidades de más sobre Expected; no se reingresan
	Difference int64 // Received - Expected
	Conditions map[entity.ItemCondition]int64
	Rows       []entity.ReceivedItem
}

// Discrepant indica si la línea no cuadra o trae algo distinto de GOOD.
func (d ItemDiscrepancy) Discrepant() bool {
	if d.Received != d.Expected {
		return true
	}
	for cond := range d.Conditions {
		if cond != entity.ConditionGood {
			return true
		}
	}
	return false
}

// Reconciliation resultado completo de la conciliación.
type Reconciliation struct {
	Items          []ItemDiscrepancy
	TotalExpected  int64
	TotalReceived  int64
	TotalAccepted  int64
	HasDiscrepancy bool
}

// Reconcile compara lo esperado contra lo recibido. Es pura: solo clasifica.
// Las filas recibidas se agrupan por ID de línea (no por SKU); una línea sin filas
// se toma como 0 unidades MISSING. Cantidades negativas o sumas que desbordan se rechazan.
// Lo aceptado se limita a lo esperado: un sobrante se informa pero no entra al stock.
func Reconcile(expected []entity.ShipmentItem, received []entity.ReceivedItem, stockable ConditionSet) (Reconciliation, error) {
	for _, it := range expected {
		if it.Quantity < 0 {
			return Reconciliation{}, &domain.ItemError{ItemID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity, Err: domain.ErrInvalidQuantity}
		}
	}
	byItem := make(map[string][]entity.ReceivedItem, len(received))
	for _, r := range received {
		if r.Received < 0 {
			return Reconciliation{}, &domain.ItemError{ItemID: r.ShipmentItemID, Quantity: r.Received, Err: domain.ErrInvalidQuantity}
		}
		byItem[r.ShipmentItemID] = append(byItem[r.ShipmentItemID], r)
	}
	if stockable == nil {
		stockable = DefaultStockable()
	}

	out := Reconciliation{Items: make([]ItemDiscrepancy, 0, len(expected))}
	for _, it := range expected {
		rows := byItem[it.ID]
		if len(rows) == 0 {
			rows = []entity.ReceivedItem{{ShipmentItemID: it.ID, Received: 0, Condition: entity.ConditionMissing}}
		}
		d := ItemDiscrepancy{
			ItemID:     it.ID,
			ProductID:  it.ProductID,
			Expected:   it.Quantity,
			Conditions: make(map[entity.ItemCondition]int64, len(rows)),
			Rows:       make([]entity.ReceivedItem, 0, len(rows)),
		}
		var accepted int64
		for _, r := range rows {
			cond := r.Condition
			if cond == "" {
				cond = entity.ConditionGood
			}
			var okR, okC, okA bool
			d.Received, okR = AddQuantity(d.Received, r.Received)
			d.Conditions[cond], okC = AddQuantity(d.Conditions[cond], r.Received)
			okA = true
			if stockable[cond] {
				accepted, okA = AddQuantity(accepted, r.Received)
			}
			if !okR || !okC || !okA {
				return Reconciliation{}, overflow(it, r.Received)
			}
			d.Rows = append(d.Rows, entity.ReceivedItem{
				ShipmentItemID: it.ID,
				Expected:       it.Quantity,
				Received:       r.Received,
				Condition:      cond,
			})
		}
		d.Accepted = min(accepted, d.Expected)
		d.Surplus = max(d.Received-d.Expected, 0)
		d.Difference = d.Received - d.Expected

		var okE, okR, okA bool
		out.TotalExpected, okE = AddQuantity(out.TotalExpected, d.Expected)
		out.TotalReceived, okR = AddQuantity(out.TotalReceived, d.Received)
		out.TotalAccepted, okA = AddQuantity(out.TotalAccepted, d.Accepted)
		if !okE || !okR || !okA {
			return Reconciliation{}, overflow(it, d.Received)
		}
		if d.Discrepant() {
			out.HasDiscrepancy = true
		}
		out.Items = append(out.Items, d)
	}
	return out, nil
}

func overflow(it entity.ShipmentItem, qty int64) error {
	return &domain.ItemError{ItemID: it.ID, ProductID: it.ProductID, Quantity: qty, Err: domain.ErrInvalidQuantity}
}

// FullReceipt genera filas GOOD por la cantidad esperada de cada línea (traslado directo).
func FullReceipt(items []entity.ShipmentItem) []entity.ReceivedItem {
	out := make([]entity.ReceivedItem, 0, len(items))
	for _, it := range items {
		out = append(out, entity.ReceivedItem{
			ShipmentItemID: it.ID,
			Expected:       it.Quantity,
			Received:       it.Quantity,
			Condition:      entity.ConditionGood,
		})
	}
	return out
}
