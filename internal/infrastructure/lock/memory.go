package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/farmacia-logistica/internal/application/inventory"
	"github.com/jhoicas/farmacia-logistica/internal/domain"
	domaininv "github.com/jhoicas/farmacia-logistica/internal/domain/inventory"
)

// DefaultTimeout espera máxima por un cerrojo antes de devolver ErrBusy.
const DefaultTimeout = 2 * time.Second

// MemoryLocker cerrojos por clave dentro del proceso (un canal de capacidad 1 por clave).
type MemoryLocker struct {
	mu      sync.Mutex
	slots   map[string]*slot
	timeout time.Duration
}

type slot struct {
	ch   chan struct{}
	refs int
}

var _ inventory.KeyLocker = (*MemoryLocker)(nil)

// NewMemoryLocker timeout <= 0 usa DefaultTimeout.
func NewMemoryLocker(timeout time.Duration) *MemoryLocker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &MemoryLocker{slots: make(map[string]*slot), timeout: timeout}
}

// Lock adquiere todas las claves en orden canónico. Si alguna no se obtiene a tiempo
// libera las ya tomadas y devuelve domain.ErrBusy.
func (l *MemoryLocker) Lock(ctx context.Context, keys []string) (func(), error) {
	keys = domaininv.LockOrder(keys)
	wait, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	held := make([]string, 0, len(keys))
	for _, k := range keys {
		s := l.acquireSlot(k)
		select {
		case s.ch <- struct{}{}:
			held = append(held, k)
		case <-wait.Done():
			l.releaseSlot(k)
			l.unlock(held)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s", domain.ErrBusy, k)
		}
	}

	var once sync.Once
	return func() { once.Do(func() { l.unlock(held) }) }, nil
}

func (l *MemoryLocker) unlock(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		l.mu.Lock()
		s := l.slots[keys[i]]
		l.mu.Unlock()
		<-s.ch
		l.releaseSlot(keys[i])
	}
}

func (l *MemoryLocker) acquireSlot(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *MemoryLocker) releaseSlot(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		return
	}
	s.refs--
	if s.refs <= 0 {
		delete(l.slots, key)
	}
}

// Held número de claves con cerrojo o en espera; usado en tests.
func (l *MemoryLocker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
