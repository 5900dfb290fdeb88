// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/constants"
	"github.com/taibuivan/yomira-id/internal/platform/sec"
)

// # Single-use Token Repository

// RedisTokenRepository implements [TokenRepository] for one kind of token.
// Keys are "<prefix><sha256(token)>" so raw tokens never reach Redis.
type RedisTokenRepository struct {
	client         redis.Cmdable
	prefix         string
	invalidMessage string
}

// NewResetTokenRepository stores password reset tokens.
func NewResetTokenRepository(client redis.Cmdable) *RedisTokenRepository {
	return &RedisTokenRepository{
		client:         client,
		prefix:         constants.RedisPrefixResetToken,
		invalidMessage: "Reset link is invalid or has expired",
	}
}

// NewVerificationTokenRepository stores email verification tokens.
func NewVerificationTokenRepository(client redis.Cmdable) *RedisTokenRepository {
	return &RedisTokenRepository{
		client:         client,
		prefix:         constants.RedisPrefixVerifyToken,
		invalidMessage: "Verification link is invalid or has expired",
	}
}

// NewEmailChangeTokenRepository stores email-change confirmation tokens.
func NewEmailChangeTokenRepository(client redis.Cmdable) *RedisTokenRepository {
	return &RedisTokenRepository{
		client:         client,
		prefix:         constants.RedisPrefixEmailChangeToken,
		invalidMessage: "Confirmation link is invalid or has expired",
	}
}

func (repository *RedisTokenRepository) key(token string) string {
	return repository.prefix + sec.HashToken(token)
}

/*
Set stores a token with its associated value and TTL.

Parameters:
  - context: context.Context
  - token: string
  - value: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisTokenRepository) Set(context context.Context, token, value string, ttl time.Duration) error {
	if err := repository.client.Set(context, repository.key(token), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis_token_set_failed: %w", err)
	}
	return nil
}

/*
Consume reads and deletes the token in one GETDEL round trip, so two
concurrent confirmations can never both succeed.

Returns:
  - string: The stored value
  - error: apperr.InvalidToken if absent, used or expired
*/
func (repository *RedisTokenRepository) Consume(context context.Context, token string) (string, error) {
	if token == "" {
		return "", apperr.InvalidToken(repository.invalidMessage)
	}

	value, err := repository.client.GetDel(context, repository.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.InvalidToken(repository.invalidMessage)
		}
		return "", fmt.Errorf("redis_token_consume_failed: %w", err)
	}

	return value, nil
}

// # Session Cache

// RedisSessionCache implements [SessionCache].
type RedisSessionCache struct {
	client redis.Cmdable
}

// NewSessionCache creates a Redis-backed session cache.
func NewSessionCache(client redis.Cmdable) *RedisSessionCache {
	return &RedisSessionCache{client: client}
}

// Get returns the cached session, or (nil, nil) on a miss.
func (cache *RedisSessionCache) Get(context context.Context, tokenHash string) (*CachedSession, error) {
	raw, err := cache.client.Get(context, constants.RedisPrefixSession+tokenHash).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis_session_cache_get_failed: %w", err)
	}

	var session CachedSession
	if err := json.Unmarshal(raw, &session); err != nil {
		// A corrupt entry is treated as a miss and overwritten on the next read.
		return nil, nil
	}
	return &session, nil
}

// Set caches session for ttl.
func (cache *RedisSessionCache) Set(context context.Context, tokenHash string, session *CachedSession, ttl time.Duration) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis_session_cache_encode_failed: %w", err)
	}
	if err := cache.client.Set(context, constants.RedisPrefixSession+tokenHash, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_cache_set_failed: %w", err)
	}
	return nil
}

// Delete evicts the given sessions.
func (cache *RedisSessionCache) Delete(context context.Context, tokenHashes ...string) error {
	if len(tokenHashes) == 0 {
		return nil
	}

	keys := make([]string, len(tokenHashes))
	for i, tokenHash := range tokenHashes {
		keys[i] = constants.RedisPrefixSession + tokenHash
	}

	if err := cache.client.Del(context, keys...).Err(); err != nil {
		return fmt.Errorf("redis_session_cache_delete_failed: %w", err)
	}
	return nil
}
