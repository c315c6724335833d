package audit

import (
	"sync"

	"github.com/jhoicas/farmacia-logistica/internal/domain/audit"
)

// RingBuffer cola acotada; lleno, descarta el evento más antiguo.
type RingBuffer struct {
	mu       sync.Mutex
	events   []audit.Event
	head     int // próxima escritura
	tail     int // próxima lectura
	count    int
	capacity int
	dropped  int64
}

// NewRingBuffer capacity <= 0 usa 1024.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1024
	}
	return &RingBuffer{events: make([]audit.Event, capacity), capacity: capacity}
}

// Enqueue agrega el evento; devuelve true si tuvo que descartar el más antiguo.
func (b *RingBuffer) Enqueue(e audit.Event) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	dropped := false
	if b.count == b.capacity {
		b.tail = (b.tail + 1) % b.capacity
		b.count--
		b.dropped++
		dropped = true
	}
	b.events[b.head] = e
	b.head = (b.head + 1) % b.capacity
	b.count++
	return dropped
}

// DequeueBatch saca hasta n eventos en orden de llegada.
func (b *RingBuffer) DequeueBatch(n int) []audit.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return nil
	}
	if n <= 0 || n > b.count {
		n = b.count
	}
	out := make([]audit.Event, n)
	for i := 0; i < n; i++ {
		out[i] = b.events[b.tail]
		b.events[b.tail] = audit.Event{}
		b.tail = (b.tail + 1) % b.capacity
	}
	b.count -= n
	return out
}

func (b *RingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *RingBuffer) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
