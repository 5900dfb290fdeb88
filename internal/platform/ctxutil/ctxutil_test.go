// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-id/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-id/internal/platform/sec"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, requestID)
	assert.Equal(t, requestID, ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 1. Initially should return the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_AuthUser verifies that AuthClaims can be stored in context.
*/
func TestContext_AuthUser(t *testing.T) {
	ctx := context.Background()
	claims := &sec.AuthClaims{
		UserID: "user-123",
		Role:   "admin",
	}

	// 1. Initially should be nil
	assert.Nil(t, ctxutil.GetAuthUser(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithAuthUser(ctx, claims)
	retrieved := ctxutil.GetAuthUser(ctx)

	assert.NotNil(t, retrieved)
	assert.Equal(t, "user-123", retrieved.UserID)
	assert.Equal(t, "admin", retrieved.Role)
}

/*
TestSessionOnce_LoadsOncePerRequest verifies the per-request session cache.
*/
func TestSessionOnce_LoadsOncePerRequest(t *testing.T) {
	calls := 0
	load := func() (string, error) {
		calls++
		return "session-1", nil
	}

	ctx := ctxutil.WithSessionMemo(context.Background())
	for i := 0; i < 3; i++ {
		value, err := ctxutil.SessionOnce(ctx, load)
		assert.NoError(t, err)
		assert.Equal(t, "session-1", value)
	}
	assert.Equal(t, 1, calls)

	// A fresh request gets a fresh cache.
	_, _ = ctxutil.SessionOnce(ctxutil.WithSessionMemo(context.Background()), load)
	assert.Equal(t, 2, calls)
}

/*
TestSessionOnce_CachesErrors verifies that failures are memoised too.
*/
func TestSessionOnce_CachesErrors(t *testing.T) {
	calls := 0
	failure := errors.New("backend down")
	load := func() (*sec.AuthClaims, error) {
		calls++
		return nil, failure
	}

	ctx := ctxutil.WithSessionMemo(context.Background())
	_, err := ctxutil.SessionOnce(ctx, load)
	assert.ErrorIs(t, err, failure)
	_, err = ctxutil.SessionOnce(ctx, load)
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, 1, calls)

	// Without a memo the loader runs every time.
	_, _ = ctxutil.SessionOnce(context.Background(), load)
	assert.Equal(t, 2, calls)
}
