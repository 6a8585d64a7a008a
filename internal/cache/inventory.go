package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agora/internal/observability"
)

const (
	PostKeyPrefix     = "post:%d"
	PostListKeyPrefix = "posts:page:%d:limit:%d"
)

const (
	PostTTL     = 30 * time.Minute
	PostListTTL = 30 * time.Second
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func PostListKey(page, limit int) string {
	return fmt.Sprintf(PostListKeyPrefix, page, limit)
}

// Aside performs a cache-aside lookup: on hit it unmarshals the cached JSON
// into dest; on miss it calls fill (which must populate dest) and stores the
// result. Cache failures degrade to calling fill directly.
func Aside(ctx context.Context, key, class string, dest interface{}, ttl time.Duration, fill func() error) error {
	if client == nil {
		return fill()
	}

	raw, err := client.Get(ctx, key).Result()
	if err == nil {
		if unmarshalErr := json.Unmarshal([]byte(raw), dest); unmarshalErr == nil {
			observability.CacheRequests.WithLabelValues(class, "hit").Inc()
			return nil
		}
		// Corrupt entry; drop it and fall through to the source of truth.
		client.Del(ctx, key)
	}
	observability.CacheRequests.WithLabelValues(class, "miss").Inc()

	if err := fill(); err != nil {
		return err
	}

	if encoded, marshalErr := json.Marshal(dest); marshalErr == nil {
		client.Set(ctx, key, encoded, ttl)
	}
	return nil
}

// Invalidate removes a single key from the cache.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePost drops the cached post detail and all list pages. List pages
// are keyed by page and limit, so they are cleared by pattern scan.
func InvalidatePost(ctx context.Context, postID uint) {
	if client == nil {
		return
	}
	client.Del(ctx, PostKey(postID))
	InvalidatePostLists(ctx)
}

// InvalidatePostLists drops every cached post list page.
func InvalidatePostLists(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, "posts:page:*", 0).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}
