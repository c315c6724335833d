package audit

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/farmacia-logistica/internal/application/inventory"
	"github.com/jhoicas/farmacia-logistica/internal/domain/audit"
	"github.com/jhoicas/farmacia-logistica/internal/infrastructure/metrics"
	"github.com/jhoicas/farmacia-logistica/pkg/logger"
)

// Writer destino de eventos (log, Kafka, ...).
type Writer interface {
	Name() string
	Write(ctx context.Context, events []audit.Event) error
}

// Config buffer y tolerancia a fallos del publicador.
type Config struct {
	BufferSize      int
	BatchSize       int
	FailureLimit    int           // fallos seguidos que abren el circuito de un escritor
	FailureCooldown time.Duration // tiempo que un escritor queda suspendido
}

type guardedWriter struct {
	w  Writer
	cb *circuitBreaker
}

// Publisher implementa inventory.AuditSink: Publish solo encola; un worker entrega.
type Publisher struct {
	buf     *RingBuffer
	writers []guardedWriter
	batch   int
	notify  chan struct{}
	flushMu sync.Mutex
	metrics *metrics.Metrics
	log     *logger.Logger
}

var _ inventory.AuditSink = (*Publisher)(nil)

// NewPublisher construye el publicador; hay que arrancar Run en una goroutine.
func NewPublisher(cfg Config, m *metrics.Metrics, log *logger.Logger, writers ...Writer) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	p := &Publisher{
		buf:     NewRingBuffer(cfg.BufferSize),
		batch:   cfg.BatchSize,
		notify:  make(chan struct{}, 1),
		metrics: m,
		log:     log,
	}
	for _, w := range writers {
		if w == nil {
			continue
		}
		p.writers = append(p.writers, guardedWriter{w: w, cb: newCircuitBreaker(cfg.FailureLimit, cfg.FailureCooldown)})
	}
	return p
}

// Publish nunca bloquea: si el buffer está lleno se pierde el evento más antiguo.
func (p *Publisher) Publish(_ context.Context, e audit.Event) {
	if p.buf.Enqueue(e) {
		p.metrics.IncAuditDropped()
	}
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// Run entrega eventos hasta que ctx termina; al salir vacía el buffer una última vez.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			drain, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			p.Flush(drain)
			cancel()
			return
		case <-p.notify:
			p.Flush(ctx)
		}
	}
}

// Flush entrega de forma síncrona todo lo pendiente.
func (p *Publisher) Flush(ctx context.Context) {
	p.flushMu.Lock()
	defer p.flushMu.Unlock()
	for {
		batch := p.buf.DequeueBatch(p.batch)
		if len(batch) == 0 {
			return
		}
		for _, gw := range p.writers {
			if !gw.cb.allow() {
				continue
			}
			if err := gw.w.Write(ctx, batch); err != nil {
				gw.cb.failure()
				p.metrics.IncAuditWriteFailure()
				p.log.Warn().Err(err).Str("writer", gw.w.Name()).Int("events", len(batch)).Bool("circuit_open", gw.cb.open()).Msg("fallo al escribir auditoría")
				continue
			}
			gw.cb.success()
		}
	}
}

// Pending eventos aún no entregados.
func (p *Publisher) Pending() int { return p.buf.Len() }
