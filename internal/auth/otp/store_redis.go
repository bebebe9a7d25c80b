// Copyright (c) 2026 Handraise. All rights reserved.

package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/handraise/handraise/internal/platform/constants"
)

// RedisCooldownStore implements CooldownStore using Redis SET NX semantics.
type RedisCooldownStore struct {
	client *redis.Client
}

// NewRedisCooldownStore creates a new Redis-backed CooldownStore.
func NewRedisCooldownStore(client *redis.Client) *RedisCooldownStore {
	return &RedisCooldownStore{client: client}
}

/*
Acquire attempts to claim the send-cooldown slot for an identifier.

Description: A single SET NX EX round trip; the key self-expires, so a crash
can never wedge an identifier into a permanent cooldown.

Parameters:
  - context: context.Context
  - identifier: string
  - ttl: time.Duration

Returns:
  - bool: true when the slot was free
  - error: Connectivity failures
*/
func (store *RedisCooldownStore) Acquire(context context.Context, identifier string, ttl time.Duration) (bool, error) {
	key := constants.RedisPrefixOtpCooldown + identifier

	claimed, err := store.client.SetNX(context, key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis_otp_cooldown_acquire_failed: %w", err)
	}

	return claimed, nil
}
