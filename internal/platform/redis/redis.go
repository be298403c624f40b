package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"quad-backend/internal/common/config"
)

// Open creates a Redis client from config and pings it.
func Open(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	addr := cfg.RedisAddr()
	if cfg.Redis.Host == "" {
		return nil, fmt.Errorf("empty redis host")
	}
	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return c, nil
}

// Keyspace builds namespaced keys: Keyspace("quad").Key("account", id) = "quad:account:<id>".
type Keyspace string

func (k Keyspace) Key(parts ...string) string {
	if k == "" {
		return strings.Join(parts, ":")
	}
	return string(k) + ":" + strings.Join(parts, ":")
}
