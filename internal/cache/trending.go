package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// TrendingKey is the sorted set holding active post ids scored by like count.
	TrendingKey = "trending:posts"

	// TrendingCap is the maximum number of posts kept in the set.
	TrendingCap = 500

	// TrendingTTL bounds staleness: after expiry the set is re-warmed from
	// the database on the next popular-sort listing.
	TrendingTTL = 10 * time.Minute
)

// PostScore pairs a post id with its like-count score.
type PostScore struct {
	PostID string
	Score  float64
}

// TrendingCache serves the popular-sort post listing. It is a best-effort
// read-path accelerator only: every write of record happens in Postgres and
// callers fall back to the database when the cache is cold or unavailable.
type TrendingCache interface {
	// Top returns post ids ordered by score descending, paged by offset/limit.
	Top(ctx context.Context, offset, limit int) ([]string, error)

	// Exists reports whether the trending set is warm.
	Exists(ctx context.Context) (bool, error)

	// Warm bulk-loads scores and refreshes the TTL.
	Warm(ctx context.Context, posts []PostScore) error

	// SetScore updates a single member's score after a like/unlike.
	SetScore(ctx context.Context, postID string, score float64) error

	// Remove drops a member (post soft-deleted or hidden).
	Remove(ctx context.Context, postID string) error

	// Size returns the number of cached posts.
	Size(ctx context.Context) (int64, error)
}

// RedisTrendingCache implements TrendingCache using a Redis sorted set.
type RedisTrendingCache struct {
	client *redis.Client
}

// NewTrendingCache creates a TrendingCache backed by Redis.
func NewTrendingCache(client *redis.Client) TrendingCache {
	return &RedisTrendingCache{client: client}
}

func (c *RedisTrendingCache) Top(ctx context.Context, offset, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}
	ids, err := c.client.ZRevRange(ctx, TrendingKey, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange trending: %w", err)
	}
	return ids, nil
}

func (c *RedisTrendingCache) Exists(ctx context.Context) (bool, error) {
	n, err := c.client.Exists(ctx, TrendingKey).Result()
	if err != nil {
		return false, fmt.Errorf("exists trending: %w", err)
	}
	return n > 0, nil
}

// Warm pipelines ZADD for all members, trims to the cap and refreshes the TTL.
func (c *RedisTrendingCache) Warm(ctx context.Context, posts []PostScore) error {
	if len(posts) == 0 {
		return nil
	}

	members := make([]redis.Z, len(posts))
	for i, p := range posts {
		members[i] = redis.Z{Score: p.Score, Member: p.PostID}
	}

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, TrendingKey, members...)
	pipe.ZRemRangeByRank(ctx, TrendingKey, 0, int64(-TrendingCap-1))
	pipe.Expire(ctx, TrendingKey, TrendingTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("warm trending: %w", err)
	}
	return nil
}

// SetScore only touches members already present: adding arbitrary posts on
// like would let the set grow past the cap between warms.
func (c *RedisTrendingCache) SetScore(ctx context.Context, postID string, score float64) error {
	err := c.client.ZAddXX(ctx, TrendingKey, redis.Z{Score: score, Member: postID}).Err()
	if err != nil {
		return fmt.Errorf("zadd trending: %w", err)
	}
	return nil
}

func (c *RedisTrendingCache) Remove(ctx context.Context, postID string) error {
	if err := c.client.ZRem(ctx, TrendingKey, postID).Err(); err != nil {
		return fmt.Errorf("zrem trending: %w", err)
	}
	return nil
}

func (c *RedisTrendingCache) Size(ctx context.Context) (int64, error) {
	n, err := c.client.ZCard(ctx, TrendingKey).Result()
	if err != nil {
		return 0, fmt.Errorf("zcard trending: %w", err)
	}
	return n, nil
}
