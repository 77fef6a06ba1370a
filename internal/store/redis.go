package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	apperr "github.com/wardenbot/warden/internal/errors"
	"github.com/wardenbot/warden/internal/observability"
)

// Client is the shared store connection. All components read and write
// through it; nobody buffers sanction data across calls.
type Client struct {
	rdb     *redis.Client
	timeout time.Duration
}

// NewClient connects to Redis at addr, which may be a redis:// URL or a
// bare host:port.
func NewClient(addr string, timeout time.Duration) (*Client, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}
	return &Client{rdb: redis.NewClient(opts), timeout: timeout}, nil
}

// NewClientFromRedis wraps an existing connection. Used by tests.
func NewClientFromRedis(rdb *redis.Client, timeout time.Duration) *Client {
	return &Client{rdb: rdb, timeout: timeout}
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.wrap("ping", c.rdb.Ping(ctx).Err())
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// wrap folds driver errors into the store error taxonomy. A missing key is
// ErrNotFound; anything else means the store could not serve the call.
func (c *Client) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if err == redis.Nil {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, apperr.ErrStoreUnavailable, err)
}

func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	defer observability.TimeStoreCall("incr")()
	ctx, cancel := c.bound(ctx)
	defer cancel()
	n, err := c.rdb.Incr(ctx, key).Result()
	return n, c.wrap("incr", err)
}

func (c *Client) Get(ctx context.Context, key string) (string, error) {
	defer observability.TimeStoreCall("get")()
	ctx, cancel := c.bound(ctx)
	defer cancel()
	val, err := c.rdb.Get(ctx, key).Result()
	return val, c.wrap("get", err)
}

func (c *Client) Set(ctx context.Context, key, value string) error {
	defer observability.TimeStoreCall("set")()
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.wrap("set", c.rdb.Set(ctx, key, value, 0).Err())
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	defer observability.TimeStoreCall("del")()
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.wrap("del", c.rdb.Del(ctx, keys...).Err())
}

func (c *Client) SAdd(ctx context.Context, key, member string) error {
	defer observability.TimeStoreCall("sadd")()
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.wrap("sadd", c.rdb.SAdd(ctx, key, member).Err())
}

func (c *Client) SRem(ctx context.Context, key, member string) error {
	defer observability.TimeStoreCall("srem")()
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.wrap("srem", c.rdb.SRem(ctx, key, member).Err())
}

func (c *Client) SMembers(ctx context.Context, key string) ([]string, error) {
	defer observability.TimeStoreCall("smembers")()
	ctx, cancel := c.bound(ctx)
	defer cancel()
	members, err := c.rdb.SMembers(ctx, key).Result()
	return members, c.wrap("smembers", err)
}

func (c *Client) SIsMember(ctx context.Context, key, member string) (bool, error) {
	defer observability.TimeStoreCall("sismember")()
	ctx, cancel := c.bound(ctx)
	defer cancel()
	ok, err := c.rdb.SIsMember(ctx, key, member).Result()
	return ok, c.wrap("sismember", err)
}

func (c *Client) RPush(ctx context.Context, key string, values ...string) error {
	defer observability.TimeStoreCall("rpush")()
	ctx, cancel := c.bound(ctx)
	defer cancel()
	args := make([]interface{}, 0, len(values))
	for _, v := range values {
		args = append(args, v)
	}
	return c.wrap("rpush", c.rdb.RPush(ctx, key, args...).Err())
}

func (c *Client) LRange(ctx context.Context, key string) ([]string, error) {
	defer observability.TimeStoreCall("lrange")()
	ctx, cancel := c.bound(ctx)
	defer cancel()
	values, err := c.rdb.LRange(ctx, key, 0, -1).Result()
	return values, c.wrap("lrange", err)
}

// LRem removes the first list element equal to value. Element-wise removal
// keeps a concurrent append from being lost to a full-list rewrite.
func (c *Client) LRem(ctx context.Context, key, value string) error {
	defer observability.TimeStoreCall("lrem")()
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.wrap("lrem", c.rdb.LRem(ctx, key, 1, value).Err())
}

// Scan walks the keyspace for keys matching pattern.
func (c *Client) Scan(ctx context.Context, pattern string) ([]string, error) {
	defer observability.TimeStoreCall("scan")()
	ctx, cancel := c.bound(ctx)
	defer cancel()

	var keys []string
	iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, c.wrap("scan", iter.Err())
}
