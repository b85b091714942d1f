package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/huiyuanXP/time-block-scheduler/domain"
)

type backend interface {
	AllUsers(ctx context.Context) ([]domain.User, error)
	SharedStickers(ctx context.Context, weekStart string) ([]domain.SharedSticker, error)
	ScheduledInRange(ctx context.Context, start, end string) ([]domain.SharedSticker, error)
	SetTaskName(ctx context.Context, userID int64, name string) error
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	CreateStickerBatch(ctx context.Context, userID int64, weekStart string, count int) (bool, error)
	UpdateSticker(ctx context.Context, userID, stickerID int64, upd domain.StickerUpdate) error
	ExpireStickersBefore(ctx context.Context, weekStart string) (int64, error)
}

const cachePrefix = "calendar:"

// Cache wraps a Storage instance with Redis-backed caching for the cross-user
// read projections (roster, shared calendar, scheduled ranges). Any write that
// can change those projections evicts them.
type Cache struct {
	*Storage
	base  backend
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching Storage wrapper using the provided Redis client
// and TTL.
func NewCache(base backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base storage is nil")
	}
	if ttl < 0 {
		ttl = 0
	}

	c := &Cache{
		base:  base,
		redis: client,
		ttl:   ttl,
	}
	if s, ok := base.(*Storage); ok {
		c.Storage = s
	}
	return c
}

func (c *Cache) AllUsers(ctx context.Context) ([]domain.User, error) {
	key := cachePrefix + "roster"
	var users []domain.User
	if c.load(ctx, key, &users) {
		return users, nil
	}

	users, err := c.base.AllUsers(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, users)
	return users, nil
}

func (c *Cache) SharedStickers(ctx context.Context, weekStart string) ([]domain.SharedSticker, error) {
	key := cachePrefix + "shared:" + weekStart
	var stickers []domain.SharedSticker
	if c.load(ctx, key, &stickers) {
		return stickers, nil
	}

	stickers, err := c.base.SharedStickers(ctx, weekStart)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, stickers)
	return stickers, nil
}

func (c *Cache) ScheduledInRange(ctx context.Context, start, end string) ([]domain.SharedSticker, error) {
	key := cachePrefix + "range:" + start + ":" + end
	var stickers []domain.SharedSticker
	if c.load(ctx, key, &stickers) {
		return stickers, nil
	}

	stickers, err := c.base.ScheduledInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, stickers)
	return stickers, nil
}

func (c *Cache) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	id, err := c.base.CreateUser(ctx, username, passwordHash)
	if err != nil {
		return 0, err
	}
	c.evict(ctx)
	return id, nil
}

func (c *Cache) SetTaskName(ctx context.Context, userID int64, name string) error {
	if err := c.base.SetTaskName(ctx, userID, name); err != nil {
		return err
	}
	c.evict(ctx)
	return nil
}

func (c *Cache) CreateStickerBatch(ctx context.Context, userID int64, weekStart string, count int) (bool, error) {
	created, err := c.base.CreateStickerBatch(ctx, userID, weekStart, count)
	if err != nil {
		return created, err
	}
	if created {
		c.evict(ctx)
	}
	return created, nil
}

func (c *Cache) UpdateSticker(ctx context.Context, userID, stickerID int64, upd domain.StickerUpdate) error {
	if err := c.base.UpdateSticker(ctx, userID, stickerID, upd); err != nil {
		return err
	}
	c.evict(ctx)
	return nil
}

func (c *Cache) ExpireStickersBefore(ctx context.Context, weekStart string) (int64, error) {
	n, err := c.base.ExpireStickersBefore(ctx, weekStart)
	if err != nil {
		return n, err
	}
	if n > 0 {
		c.evict(ctx)
	}
	return n, nil
}

func (c *Cache) load(ctx context.Context, key string, v any) bool {
	if c.redis == nil {
		return false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing storage without failing.
			_ = c.redis.Del(ctx, key).Err()
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return false
	}
	return true
}

func (c *Cache) store(ctx context.Context, key string, v any) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context) {
	if c.redis == nil {
		return
	}
	iter := c.redis.Scan(ctx, 0, cachePrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		_ = c.redis.Del(ctx, iter.Val()).Err()
	}
}
