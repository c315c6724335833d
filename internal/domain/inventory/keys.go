package inventory

import (
	"sort"

	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
)

// ShipmentLockKey clave de bloqueo de un envío.
func ShipmentLockKey(id string) string {
	return "shipment:" + id
}

// StockLockKeys claves de bloqueo de las líneas en una ubicación.
func StockLockKeys(items []entity.ShipmentItem, locationID string) []string {
	keys := make([]string, 0, len(items))
	for _, it := range items {
		keys = append(keys, it.Key(locationID).String())
	}
	return keys
}

// LockOrder deduplica y ordena lexicográficamente las claves.
// Todo adquirente de varios cerrojos debe tomarlos en este orden.
func LockOrder(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
