package inventory

import (
	"regexp"
	"strings"

	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
)

// Direction clasificación de un envío u orden respecto a una ubicación.
type Direction string

const (
	DirectionIncoming Direction = "INCOMING"
	DirectionOutgoing Direction = "OUTGOING"
	DirectionNeutral  Direction = "NEUTRAL"
)

// ParseDirection interpreta un filtro de dirección; vacío o "ALL" devuelve "".
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ALL":
		return "", true
	case string(DirectionIncoming):
		return DirectionIncoming, true
	case string(DirectionOutgoing):
		return DirectionOutgoing, true
	case string(DirectionNeutral):
		return DirectionNeutral, true
	}
	return "", false
}

// Route extremos de un movimiento. Campos vacíos = desconocido.
type Route struct {
	OriginID        string
	OriginName      string
	DestinationID   string
	DestinationName string
}

// Empty indica que no se conoce ningún extremo.
func (r Route) Empty() bool {
	return r.OriginID == "" && r.DestinationID == ""
}

var (
	originPattern      = regexp.MustCompile(`(?i)ORIGEN\s*:\s*([^|()]*?)\s*\(\s*([^()|]*?)\s*\)`)
	destinationPattern = regexp.MustCompile(`(?i)DESTINO\s*:\s*([^|()]*?)\s*\(\s*([^()|]*?)\s*\)`)
)

// ParseRoute extrae "ORIGEN:Nombre(id)|DESTINO:Nombre(id)" de un texto libre.
// Es de mejor esfuerzo: cualquier formato no reconocido devuelve ok=false, nunca falla.
func ParseRoute(notes string) (Route, bool) {
	var r Route
	if m := originPattern.FindStringSubmatch(notes); m != nil {
		r.OriginName, r.OriginID = strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	if m := destinationPattern.FindStringSubmatch(notes); m != nil {
		r.DestinationName, r.DestinationID = strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return r, !r.Empty()
}

// RouteOfShipment ruta estructurada de un envío.
func RouteOfShipment(s *entity.Shipment) Route {
	if s == nil {
		return Route{}
	}
	return Route{OriginID: s.OriginID, DestinationID: s.DestinationID}
}

// RouteOfOrder ruta de una orden de compra: primero la codificada en notas,
// luego su propia ubicación como destino.
func RouteOfOrder(o *entity.PurchaseOrder) Route {
	if o == nil {
		return Route{}
	}
	if r, ok := ParseRoute(o.Notes); ok {
		return r
	}
	return Route{DestinationID: strings.TrimSpace(o.LocationID)}
}

// Resolve INCOMING si el destino es la ubicación, OUTGOING si lo es el origen, si no NEUTRAL.
func Resolve(r Route, viewpoint string) Direction {
	viewpoint = strings.TrimSpace(viewpoint)
	if viewpoint == "" {
		return DirectionNeutral
	}
	if r.DestinationID != "" && r.DestinationID == viewpoint {
		return DirectionIncoming
	}
	if r.OriginID != "" && r.OriginID == viewpoint {
		return DirectionOutgoing
	}
	return DirectionNeutral
}

// ResolveShipment atajo para envíos.
func ResolveShipment(s *entity.Shipment, viewpoint string) Direction {
	return Resolve(RouteOfShipment(s), viewpoint)
}

// ResolveOrder atajo para órdenes de compra.
func ResolveOrder(o *entity.PurchaseOrder, viewpoint string) Direction {
	return Resolve(RouteOfOrder(o), viewpoint)
}
