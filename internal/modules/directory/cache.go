// README: Redis read-through cache for directory lookups by id.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"cabbook/internal/types"
)

// Cache failures are logged and treated as misses; the store stays authoritative.
type Cache struct {
	rdb redis.Cmdable
	ttl time.Duration
	log *slog.Logger
}

func NewCache(rdb redis.Cmdable, ttl time.Duration, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{rdb: rdb, ttl: ttl, log: log}
}

func userKey(id types.ID) string { return fmt.Sprintf("directory:user:%s", id) }
func cabKey(id types.ID) string  { return fmt.Sprintf("directory:cab:%s", id) }

func (c *Cache) User(ctx context.Context, id types.ID) (*User, bool) {
	var u User
	if !c.get(ctx, userKey(id), &u) {
		return nil, false
	}
	return &u, true
}

func (c *Cache) PutUser(ctx context.Context, u *User) {
	c.put(ctx, userKey(u.ID), u)
}

func (c *Cache) Cab(ctx context.Context, id types.ID) (*Cab, bool) {
	var cab Cab
	if !c.get(ctx, cabKey(id), &cab) {
		return nil, false
	}
	return &cab, true
}

func (c *Cache) PutCab(ctx context.Context, cab *Cab) {
	c.put(ctx, cabKey(cab.ID), cab)
}

func (c *Cache) ForgetCab(ctx context.Context, id types.ID) {
	if err := c.rdb.Del(ctx, cabKey(id)).Err(); err != nil {
		c.log.Warn("directory cache delete failed", "key", cabKey(id), "err", err)
	}
}

func (c *Cache) get(ctx context.Context, key string, dst any) bool {
	raw, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		c.log.Warn("directory cache read failed", "key", key, "err", err)
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		c.log.Warn("directory cache entry corrupt", "key", key, "err", err)
		return false
	}
	return true
}

func (c *Cache) put(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, string(raw), c.ttl).Err(); err != nil {
		c.log.Warn("directory cache write failed", "key", key, "err", err)
	}
}
