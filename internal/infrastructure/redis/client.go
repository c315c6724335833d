package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/farmacia-logistica/pkg/config"
)

// Client envuelve go-redis con chequeo de salud.
type Client struct {
	*goredis.Client
}

// New abre la conexión. Devuelve nil, nil si no hay dirección configurada.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	opts := &goredis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
	if u, err := goredis.ParseURL(cfg.Addr); err == nil {
		opts = u
	}
	c := goredis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{Client: c}, nil
}

// Health comprueba la conexión.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
