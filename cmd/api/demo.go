package main

import (
	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/infrastructure/memory"
)

// seedDemo ubicaciones mínimas para probar la API sin base de datos.
func seedDemo(store *memory.Store) {
	for _, loc := range []entity.Location{
		{ID: "CENTRAL", Name: "Central de distribución", Type: entity.LocationCentral, Active: true},
		{ID: "BOD-01", Name: "Bodega principal", Type: entity.LocationWarehouse, Active: true},
		{ID: "SUC-01", Name: "Sucursal Centro", Type: entity.LocationStore, Active: true},
		{ID: "SUC-02", Name: "Sucursal Norte", Type: entity.LocationStore, Active: true},
	} {
		store.AddLocation(loc)
	}
}
