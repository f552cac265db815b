// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/standup/internal/platform/constants"
	"github.com/taibuivan/standup/internal/platform/ctxutil"
	"github.com/taibuivan/standup/internal/platform/sec"
)

// # Identity Cache

// CachedIdentityFinder is a read-through Redis cache in front of another
// [sec.IdentityFinder].
//
// Only hits are cached; an unknown id always reaches the database. Redis
// failures are logged and the lookup falls back to the wrapped finder.
//
// [CachedIdentityFinder.Evict] leaves a tombstone for one TTL. While it exists
// lookups are not written back, so a read that loaded the row before the
// eviction cannot re-cache it.
type CachedIdentityFinder struct {
	next   sec.IdentityFinder
	client redis.Cmdable
	ttl    time.Duration
}

// NewCachedIdentityFinder wraps next with a Redis cache whose entries live for ttl.
func NewCachedIdentityFinder(next sec.IdentityFinder, client redis.Cmdable, ttl time.Duration) *CachedIdentityFinder {
	return &CachedIdentityFinder{next: next, client: client, ttl: ttl}
}

/*
FindIdentity returns the cached identity for id, loading and caching it on a miss.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *sec.Identity: The resolved identity
  - error: sec.ErrIdentityNotFound or errors from the wrapped finder
*/
func (cache *CachedIdentityFinder) FindIdentity(context context.Context, id int64) (*sec.Identity, error) {
	logger := ctxutil.GetLogger(context)
	key := identityKey(id)

	// ── 1. Cache lookup ──
	payload, err := cache.client.Get(context, key).Bytes()
	switch {
	case err == nil:
		var identity sec.Identity
		if err := json.Unmarshal(payload, &identity); err == nil && identity.Role.Valid() {
			return &identity, nil
		}
		logger.WarnContext(context, "identity_cache_entry_corrupt", slog.Int64("user_id", id))
	case errors.Is(err, redis.Nil):
		// Miss.
	default:
		logger.WarnContext(context, "identity_cache_read_failed",
			slog.Int64("user_id", id),
			slog.String("error", err.Error()),
		)
	}

	// ── 2. Source of truth ──
	identity, err := cache.next.FindIdentity(context, id)
	if err != nil {
		return nil, err
	}

	// ── 3. Populate ──
	payload, err = json.Marshal(identity)
	if err != nil {
		return identity, nil
	}
	keys := []string{key, tombstoneKey(id)}
	if err := populateScript.Run(context, cache.client, keys, payload, cache.ttl.Milliseconds()).Err(); err != nil {
		logger.WarnContext(context, "identity_cache_write_failed",
			slog.Int64("user_id", id),
			slog.String("error", err.Error()),
		)
	}

	return identity, nil
}

// Evict drops the cached identity for id and blocks write-back for one TTL.
func (cache *CachedIdentityFinder) Evict(context context.Context, id int64) error {
	_, err := cache.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.Set(context, tombstoneKey(id), 1, cache.ttl)
		pipe.Del(context, identityKey(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_identity_cache_evict_failed: %w", err)
	}
	return nil
}

// populateScript writes KEYS[1] unless the tombstone KEYS[2] exists.
var populateScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

func identityKey(id int64) string {
	return constants.RedisPrefixIdentity + strconv.FormatInt(id, 10)
}

func tombstoneKey(id int64) string {
	return constants.RedisPrefixIdentityEvicted + strconv.FormatInt(id, 10)
}
