// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisstore "github.com/taibuivan/yomira-id/internal/platform/redis"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

/*
TestNewClient connects, applies the pool settings and fails pings once the
server is gone.
*/
func TestNewClient(t *testing.T) {
	server := miniredis.RunT(t)
	ctx := context.Background()

	client, err := redisstore.NewClient(ctx, redisstore.Options{
		URL:      "redis://" + server.Addr() + "/3",
		PoolSize: 4,
	}, discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.Equal(t, 4, client.Options().PoolSize)
	assert.Equal(t, 3, client.Options().DB)
	assert.NoError(t, redisstore.Ping(ctx, client))

	server.Close()
	assert.ErrorContains(t, redisstore.Ping(ctx, client), "redis_ping_failed")
}

/*
TestNewClient_Rejects covers bad URLs and unreachable servers.
*/
func TestNewClient_Rejects(t *testing.T) {
	ctx := context.Background()

	_, err := redisstore.NewClient(ctx, redisstore.Options{URL: "http://nope"}, discard)
	assert.ErrorContains(t, err, "redis_invalid_url")

	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()

	_, err = redisstore.NewClient(ctx, redisstore.Options{URL: "redis://" + addr}, discard)
	assert.ErrorContains(t, err, "redis_ping_failed")
}
