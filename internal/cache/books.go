// Package cache provides a Redis read-through cache for book views.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rongwang/book-exchange-server/internal/metrics"
	"github.com/rongwang/book-exchange-server/internal/models"
	"github.com/rongwang/book-exchange-server/internal/utils"
)

const keyPrefix = "bookexchange:book:"

// tombstone replaces an invalidated entry. Fills use SET NX, so a read that
// started before the invalidation cannot repopulate the key until the
// tombstone expires.
const tombstone = "-"

// DefaultTombstoneTTL bounds how long an invalidated book bypasses the cache
const DefaultTombstoneTTL = 30 * time.Second

// NewClient connects to Redis. addr is either a redis:// URL or host:port.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL %q: %w", addr, err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// BookCache stores rendered book views. Failures are logged and treated
// as misses: the database stays the source of truth.
type BookCache struct {
	client       *redis.Client
	ttl          time.Duration
	tombstoneTTL time.Duration
	logger       *utils.Logger
}

func NewBookCache(client *redis.Client, ttl time.Duration, logger *utils.Logger) *BookCache {
	return &BookCache{
		client:       client,
		ttl:          ttl,
		tombstoneTTL: DefaultTombstoneTTL,
		logger:       logger,
	}
}

func bookKey(id int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, id)
}

func (c *BookCache) GetBook(ctx context.Context, id int64) (*models.BookView, bool) {
	data, err := c.client.Get(ctx, bookKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheLookups.WithLabelValues("miss").Inc()
		} else {
			metrics.CacheLookups.WithLabelValues("error").Inc()
			c.logger.Warn("book cache read failed", "book_id", id, "error", err)
		}
		return nil, false
	}
	if string(data) == tombstone {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	var view models.BookView
	if err := json.Unmarshal(data, &view); err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("book cache entry is corrupt", "book_id", id, "error", err)
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return &view, true
}

// SetBook fills an empty slot only. It never overwrites a tombstone.
func (c *BookCache) SetBook(ctx context.Context, view models.BookView) {
	data, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := c.client.SetNX(ctx, bookKey(view.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("book cache write failed", "book_id", view.ID, "error", err)
	}
}

// InvalidateBook replaces the entry with a short-lived tombstone
func (c *BookCache) InvalidateBook(ctx context.Context, id int64) {
	if err := c.client.Set(ctx, bookKey(id), tombstone, c.tombstoneTTL).Err(); err != nil {
		c.logger.Warn("book cache invalidation failed", "book_id", id, "error", err)
	}
}

func (c *BookCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *BookCache) Close() error {
	return c.client.Close()
}

// Noop is used when no Redis is configured
type Noop struct{}

func (Noop) GetBook(context.Context, int64) (*models.BookView, bool) { return nil, false }
func (Noop) SetBook(context.Context, models.BookView) {}
func (Noop) InvalidateBook(context.Context, int64) {}
func (Noop) Ping(context.Context) error { return nil }
func (Noop) Close() error { return nil }
