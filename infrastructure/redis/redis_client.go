package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps the redis connection used for the day-presence cache and cached
// dashboard stats. All callers tolerate cache misses and cache errors; redis is
// an accelerator, never the source of truth.
type Client struct {
	rdb *redis.Client
}

func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func presenceKey(date string) string {
	return "attendance:present:" + date
}

// MarkPresent records that a student was seen on a given day. Keys expire after
// 48h so stale days clean themselves up.
func (c *Client) MarkPresent(ctx context.Context, studentID, date string) error {
	key := presenceKey(date)
	pipe := c.rdb.Pipeline()
	pipe.SAdd(ctx, key, studentID)
	pipe.Expire(ctx, key, 48*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

// IsPresent reports whether a student is already in the day-presence set. A
// false answer only means "not cached"; the database decides.
func (c *Client) IsPresent(ctx context.Context, studentID, date string) (bool, error) {
	return c.rdb.SIsMember(ctx, presenceKey(date), studentID).Result()
}

// PresentCount returns how many distinct students were seen on a given day.
func (c *Client) PresentCount(ctx context.Context, date string) (int64, error) {
	return c.rdb.SCard(ctx, presenceKey(date)).Result()
}

// SetStats caches a serialized stats payload under a named key.
func (c *Client) SetStats(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, "stats:"+key, payload, ttl).Err()
}

// GetStats returns a cached stats payload, or redis.Nil on a miss.
func (c *Client) GetStats(ctx context.Context, key string) ([]byte, error) {
	return c.rdb.Get(ctx, "stats:"+key).Bytes()
}

// IsCacheMiss reports whether err is a plain cache miss.
func IsCacheMiss(err error) bool {
	return err == redis.Nil
}
