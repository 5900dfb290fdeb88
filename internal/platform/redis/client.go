// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis provides a managed client for volatile data storage.

Yomira ID keeps everything short-lived here: single-use reset, verification
and email-change tokens (consumed with GETDEL) and the session read-through
cache that shields Postgres from per-request session lookups.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options tunes the client built by [NewClient]. Zero fields keep the defaults.
type Options struct {
	// URL is a redis:// or rediss:// connection URL.
	URL string

	PoolSize     int
	MinIdleConns int

	DialTimeout time.Duration
	IOTimeout   time.Duration
}

const (
	defaultPoolSize     = 10
	defaultMinIdleConns = 2
	defaultDialTimeout  = 3 * time.Second
	defaultIOTimeout    = 2 * time.Second
	pingTimeout         = 2 * time.Second
)

// Pinger is the part of a go-redis client the health checks use.
type Pinger interface {
	Ping(context stdctx.Context) *redis.StatusCmd
}

// NewClient parses options.URL, applies the pool settings and verifies the
// connection before returning.
func NewClient(context stdctx.Context, options Options, logger *slog.Logger) (*redis.Client, error) {
	parsed, err := redis.ParseURL(options.URL)
	if err != nil {
		return nil, fmt.Errorf("redis_invalid_url: %w", err)
	}

	parsed.PoolSize = orDefault(options.PoolSize, defaultPoolSize)
	parsed.MinIdleConns = orDefault(options.MinIdleConns, defaultMinIdleConns)
	parsed.MaxIdleConns = parsed.PoolSize / 2
	parsed.DialTimeout = orDefault(options.DialTimeout, defaultDialTimeout)
	parsed.ReadTimeout = orDefault(options.IOTimeout, defaultIOTimeout)
	parsed.WriteTimeout = parsed.ReadTimeout

	client := redis.NewClient(parsed)

	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", parsed.Addr),
		slog.Int("db", parsed.DB),
		slog.Int("pool_size", parsed.PoolSize),
	)

	return client, nil
}

// Ping verifies that the Redis server answers within a short deadline.
func Ping(context stdctx.Context, client Pinger) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis_ping_failed: %w", err)
	}

	return nil
}

func orDefault[T int | time.Duration](value, fallback T) T {
	if value <= 0 {
		return fallback
	}
	return value
}
