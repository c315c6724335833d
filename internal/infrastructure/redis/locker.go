package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/farmacia-logistica/internal/application/inventory"
	"github.com/jhoicas/farmacia-logistica/internal/domain"
	domaininv "github.com/jhoicas/farmacia-logistica/internal/domain/inventory"
)

// releaseScript borra la clave solo si sigue siendo nuestra.
var releaseScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// LockerConfig parámetros del cerrojo distribuido.
type LockerConfig struct {
	Prefix     string        // prefijo de las claves en Redis
	TTL        time.Duration // vida máxima de un cerrojo huérfano
	Timeout    time.Duration // espera total antes de ErrBusy
	RetryEvery time.Duration
}

// Locker KeyLocker para varias instancias: SET NX PX por clave, liberación con Lua.
type Locker struct {
	client goredis.UniversalClient
	cfg    LockerConfig
}

var _ inventory.KeyLocker = (*Locker)(nil)

// NewLocker aplica valores por defecto a los campos vacíos.
func NewLocker(client goredis.UniversalClient, cfg LockerConfig) *Locker {
	if cfg.Prefix == "" {
		cfg.Prefix = "farmacia:lock:"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.RetryEvery <= 0 {
		cfg.RetryEvery = 20 * time.Millisecond
	}
	return &Locker{client: client, cfg: cfg}
}

// Lock toma las claves en orden canónico con un token propio.
// Contención = domain.ErrBusy; fallo de Redis = domain.ErrStorageUnavailable.
func (l *Locker) Lock(ctx context.Context, keys []string) (func(), error) {
	keys = domaininv.LockOrder(keys)
	token := uuid.New().String()
	wait, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	held := make([]string, 0, len(keys))
	for _, k := range keys {
		if err := l.acquire(wait, l.cfg.Prefix+k, token); err != nil {
			l.release(held, token)
			if errors.Is(err, domain.ErrBusy) && ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
		held = append(held, l.cfg.Prefix+k)
	}
	return func() { l.release(held, token) }, nil
}

func (l *Locker) acquire(ctx context.Context, key, token string) error {
	ticker := time.NewTicker(l.cfg.RetryEvery)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.cfg.TTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %s", domain.ErrBusy, key)
			}
			return fmt.Errorf("%w: redis setnx: %v", domain.ErrStorageUnavailable, err)
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s", domain.ErrBusy, key)
		case <-ticker.C:
		}
	}
}

// release usa un contexto propio: el del llamador puede haber vencido.
func (l *Locker) release(keys []string, token string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := len(keys) - 1; i >= 0; i-- {
		_ = releaseScript.Run(ctx, l.client, []string{keys[i]}, token).Err()
	}
}
