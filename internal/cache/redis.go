package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/vivaply/recommendation-service/internal/domain"
)

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func buildKey(userID int64, language string) string {
	return fmt.Sprintf("rec:user:%d:lang:%s", userID, language)
}

// Get recommendations from cache. The second return reports a hit.
func (c *Cache) Get(ctx context.Context, userID int64, language string) (*domain.RecommendationLists, bool, error) {
	key := buildKey(userID, language)
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("get recommendations from cache: %w", err)
	}

	var lists domain.RecommendationLists
	if err := json.Unmarshal([]byte(val), &lists); err != nil {
		return nil, false, fmt.Errorf("unmarshal recommendations %s: %w", key, err)
	}

	return &lists, true, nil
}

// Store recommendations in cache
func (c *Cache) Set(ctx context.Context, userID int64, language string, lists *domain.RecommendationLists) error {
	key := buildKey(userID, language)
	val, err := json.Marshal(lists)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}

	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("set recommendations in cache: %w", err)
	}

	return nil
}

// Clear user cache: used when the user's library changes
func (c *Cache) ClearUserCache(ctx context.Context, userID int64) error {
	pattern := fmt.Sprintf("rec:user:%d:lang:*", userID)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache delete %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}

// Ping connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
