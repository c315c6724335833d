package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contadores del núcleo logístico. Todos los métodos aceptan receptor nil.
type Metrics struct {
	Movements          *prometheus.CounterVec
	Rejections         *prometheus.CounterVec
	Transitions        *prometheus.CounterVec
	BusyRetries        prometheus.Counter
	AuditDropped       prometheus.Counter
	AuditWriteFailures prometheus.Counter
}

// New registra las métricas en reg. Cada test debe usar su propio prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Movements: f.NewCounterVec(prometheus.CounterOpts{
			Name: "farmacia_ledger_movements_total",
			Help: "Movimientos registrados en el libro, por tipo",
		}, []string{"type"}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "farmacia_ledger_rejections_total",
			Help: "Operaciones rechazadas, por motivo",
		}, []string{"reason"}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "farmacia_shipment_transitions_total",
			Help: "Transiciones de estado de envíos, por estado destino",
		}, []string{"to"}),
		BusyRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "farmacia_lock_busy_retries_total",
			Help: "Reintentos por contención de cerrojos",
		}),
		AuditDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "farmacia_audit_events_dropped_total",
			Help: "Eventos de auditoría descartados por buffer lleno",
		}),
		AuditWriteFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "farmacia_audit_write_failures_total",
			Help: "Fallos de escritura de eventos de auditoría",
		}),
	}
}

// IncMovement cuenta un movimiento confirmado.
func (m *Metrics) IncMovement(movementType string) {
	if m == nil {
		return
	}
	m.Movements.WithLabelValues(movementType).Inc()
}

// IncRejection cuenta un rechazo con su motivo (insufficient_stock, busy, ...).
func (m *Metrics) IncRejection(reason string) {
	if m == nil {
		return
	}
	m.Rejections.WithLabelValues(reason).Inc()
}

// IncTransition cuenta una transición aplicada.
func (m *Metrics) IncTransition(to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(to).Inc()
}

func (m *Metrics) IncBusyRetry() {
	if m == nil {
		return
	}
	m.BusyRetries.Inc()
}

func (m *Metrics) IncAuditDropped() {
	if m == nil {
		return
	}
	m.AuditDropped.Inc()
}

func (m *Metrics) IncAuditWriteFailure() {
	if m == nil {
		return
	}
	m.AuditWriteFailures.Inc()
}
