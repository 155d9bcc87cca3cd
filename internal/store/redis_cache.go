package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bcc32/bcc32.com-2018/internal/shortener"
)

// LinkCache decorates a shortener.Repository with Redis read caching.
// Cache entries carry the link's own expiry as their TTL, so Redis evicts
// them on its own; the engine still makes the authoritative expiry decision.
type LinkCache struct {
	store  shortener.Repository
	client *redis.Client
	prefix string
}

// NewLinkCache creates a Redis-cached decorator over a link store.
func NewLinkCache(store shortener.Repository, client *redis.Client) *LinkCache {
	return &LinkCache{
		store:  store,
		client: client,
		prefix: "link:",
	}
}

func (c *LinkCache) Save(ctx context.Context, link *shortener.ShortLink) error {
	if err := c.store.Save(ctx, link); err != nil {
		return err
	}

	c.cacheLink(ctx, link)

	return nil
}

func (c *LinkCache) GetByWord(ctx context.Context, word shortener.Word) (*shortener.ShortLink, error) {
	if link, err := c.getFromCache(ctx, word); err == nil {
		return link, nil
	}

	link, err := c.store.GetByWord(ctx, word)
	if err != nil {
		return nil, err
	}

	c.cacheLink(ctx, link)

	return link, nil
}

func (c *LinkCache) DeleteExpired(ctx context.Context, word shortener.Word, now time.Time) (bool, error) {
	deleted, err := c.store.DeleteExpired(ctx, word, now)
	if err != nil {
		return false, err
	}

	if deleted {
		_ = c.client.Del(ctx, c.prefix+string(word)).Err()
	}

	return deleted, nil
}

// Scans are reclamation and rehydration paths; they always read the
// durable store.

func (c *LinkCache) ScanExpired(ctx context.Context, now time.Time) ([]*shortener.ShortLink, error) {
	return c.store.ScanExpired(ctx, now)
}

func (c *LinkCache) ScanActive(ctx context.Context, now time.Time) ([]*shortener.ShortLink, error) {
	return c.store.ScanActive(ctx, now)
}

func (c *LinkCache) getFromCache(ctx context.Context, word shortener.Word) (*shortener.ShortLink, error) {
	result, err := c.client.HGetAll(ctx, c.prefix+string(word)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	link := &shortener.ShortLink{
		Word: word,
		URL:  result["url"],
	}

	if nanos, err := strconv.ParseInt(result["created_at"], 10, 64); err == nil {
		link.CreatedAt = time.Unix(0, nanos)
	}

	if nanos, err := strconv.ParseInt(result["expires_at"], 10, 64); err == nil {
		link.ExpiresAt = time.Unix(0, nanos)
	}

	return link, nil
}

func (c *LinkCache) cacheLink(ctx context.Context, link *shortener.ShortLink) {
	ttl := time.Until(link.ExpiresAt)
	if ttl <= 0 {
		return
	}

	key := c.prefix + string(link.Word)

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"url":        link.URL,
		"created_at": link.CreatedAt.UnixNano(),
		"expires_at": link.ExpiresAt.UnixNano(),
	})
	pipe.Expire(ctx, key, ttl)

	// Cache population is best effort.
	_, _ = pipe.Exec(ctx)
}

// Compile-time check.
var _ shortener.Repository = (*LinkCache)(nil)
