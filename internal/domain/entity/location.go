package entity

// LocationType tipo de ubicación física.
type LocationType string

const (
	LocationStore     LocationType = "STORE"
	LocationWarehouse LocationType = "WAREHOUSE"
	LocationCentral   LocationType = "CENTRAL"
)

// Location representa una sucursal, bodega o central (la provee el directorio externo).
type Location struct {
	ID     string
	Name   string
	Type   LocationType
	Active bool
}

// LocationFilter filtro para listar ubicaciones.
type LocationFilter struct {
	Type       LocationType // vacío = todas
	OnlyActive bool
}
