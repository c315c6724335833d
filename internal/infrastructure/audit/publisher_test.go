package audit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-logistica/internal/domain/audit"
	"github.com/jhoicas/farmacia-logistica/internal/infrastructure/metrics"
	"github.com/jhoicas/farmacia-logistica/pkg/config"
	"github.com/jhoicas/farmacia-logistica/pkg/logger"
)

type fakeWriter struct {
	mu     sync.Mutex
	name   string
	fail   bool
	calls  int
	events []audit.Event
}

func (w *fakeWriter) Name() string { return w.name }

func (w *fakeWriter) Write(_ context.Context, events []audit.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.fail {
		return errors.New("broker caído")
	}
	w.events = append(w.events, events...)
	return nil
}

func (w *fakeWriter) received() []audit.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]audit.Event(nil), w.events...)
}

func event(i int) audit.Event {
	return audit.Event{ID: fmt.Sprintf("e%d", i), Action: audit.ActionMovementRecorded}
}

func TestRingBuffer_DescartaElMasAntiguo(t *testing.T) {
	b := NewRingBuffer(3)
	for i := 1; i <= 3; i++ {
		assert.False(t, b.Enqueue(event(i)))
	}
	assert.True(t, b.Enqueue(event(4)))
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, int64(1), b.Dropped())

	batch := b.DequeueBatch(2)
	require.Len(t, batch, 2)
	assert.Equal(t, "e2", batch[0].ID)
	assert.Equal(t, "e3", batch[1].ID)

	rest := b.DequeueBatch(0)
	require.Len(t, rest, 1)
	assert.Equal(t, "e4", rest[0].ID)
	assert.Nil(t, b.DequeueBatch(10))
}

func TestCircuitBreaker(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := newCircuitBreaker(2, time.Minute)
	cb.now = func() time.Time { return now }

	cb.failure()
	assert.True(t, cb.allow())
	cb.failure()
	assert.False(t, cb.allow())
	assert.True(t, cb.open())

	now = now.Add(time.Minute)
	assert.True(t, cb.allow(), "semiabierto tras el enfriamiento")
	cb.success()
	assert.False(t, cb.open())
}

func TestPublisher_EntregaEnOrden(t *testing.T) {
	w := &fakeWriter{name: "fake"}
	p := NewPublisher(Config{BufferSize: 16, BatchSize: 2}, nil, nil, w, nil)
	for i := 1; i <= 5; i++ {
		p.Publish(context.Background(), event(i))
	}
	assert.Equal(t, 5, p.Pending())

	p.Flush(context.Background())
	got := w.received()
	require.Len(t, got, 5)
	for i, e := range got {
		assert.Equal(t, fmt.Sprintf("e%d", i+1), e.ID)
	}
	assert.Equal(t, 3, w.calls, "lotes de 2")
	assert.Zero(t, p.Pending())
}

func TestPublisher_EscritorCaidoNoAfectaAlResto(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	bad := &fakeWriter{name: "bad", fail: true}
	good := &fakeWriter{name: "good"}
	p := NewPublisher(Config{BufferSize: 16, BatchSize: 1, FailureLimit: 2, FailureCooldown: time.Hour}, m, logger.Nop(), bad, good)

	for i := 1; i <= 4; i++ {
		p.Publish(context.Background(), event(i))
	}
	p.Flush(context.Background())

	assert.Len(t, good.received(), 4)
	assert.Equal(t, 2, bad.calls, "el circuito se abre tras dos fallos")
	assert.Equal(t, float64(2), testutil.ToFloat64(m.AuditWriteFailures))
}

func TestPublisher_BufferLlenoCuentaDescartes(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	p := NewPublisher(Config{BufferSize: 2}, m, nil)
	for i := 1; i <= 5; i++ {
		p.Publish(context.Background(), event(i))
	}
	assert.Equal(t, 2, p.Pending())
	assert.Equal(t, float64(3), testutil.ToFloat64(m.AuditDropped))
}

func TestPublisher_RunVaciaAlTerminar(t *testing.T) {
	w := &fakeWriter{name: "fake"}
	p := NewPublisher(Config{BufferSize: 64}, nil, nil, w)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	for i := 1; i <= 10; i++ {
		p.Publish(ctx, event(i))
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run no terminó")
	}
	assert.Len(t, w.received(), 10)
}

func TestLogWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewLogWriter(logger.New(logger.Config{Env: "production", Level: "info", Output: &buf}))
	assert.Equal(t, "log", w.Name())

	err := w.Write(context.Background(), []audit.Event{{
		ID:           "e1",
		Action:       audit.ActionMovementRecorded,
		ActorID:      "u1",
		ProductID:    "P1",
		LocationID:   "SUC-01",
		MovementType: "SALE",
		Delta:        -2,
	}})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, `"action":"movement.recorded"`)
	assert.Contains(t, out, `"component":"audit"`)
	assert.Contains(t, out, `"delta":-2`)
}

func TestNewKafkaWriter_SinBrokers(t *testing.T) {
	w, err := NewKafkaWriter(config.KafkaConfig{Topic: "farmacia.audit"})
	require.NoError(t, err)
	assert.Nil(t, w)
}
