// Package redis holds the Redis client and the short lived locks built on it.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	// KeyPrefix namespaces every key written through Key, e.g. "kitchin".
	KeyPrefix   string
	DialTimeout time.Duration
}

type Client struct {
	rdb    *redis.Client
	prefix string
	logger ectologger.Logger
}

// NewClient connects and pings. A failed ping closes the client and returns the error.
func NewClient(ctx context.Context, cfg Config, logger ectologger.Logger) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})

	c := newClient(rdb, cfg.KeyPrefix, logger)

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	logger.WithFields(map[string]any{"addr": addr, "db": cfg.DB}).Info("connected to redis")
	return c, nil
}

func newClient(rdb *redis.Client, prefix string, logger ectologger.Logger) *Client {
	return &Client{
		rdb:    rdb,
		prefix: strings.TrimSuffix(prefix, ":"),
		logger: logger,
	}
}

// Key joins parts with ":" under the configured prefix.
func (c *Client) Key(parts ...string) string {
	if c.prefix != "" {
		parts = append([]string{c.prefix}, parts...)
	}
	return strings.Join(parts, ":")
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
