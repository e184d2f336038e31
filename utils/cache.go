package utils

import (
	"ImageHosting/internal/dto"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis cache client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
	}
}

// Get reads a cached value.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// Set writes a cached value.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, string(data), expiration).Err()
}

// Delete removes a cache entry.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// DeleteByPattern deletes cache entries by pattern.
func (c *RedisCache) DeleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return nil
}

// BuildCacheKey builds a cache key.
func BuildCacheKey(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key += fmt.Sprintf(":%v", param)
	}
	return key
}

const CacheKeyImageList = "images:list"

type ImageListCache struct {
	Images []dto.ImageInfo `json:"images"`
}

// GetImageListFromCache reads a cached gallery page. A nil cache is a
// miss, so callers work unchanged when Redis is unavailable.
func GetImageListFromCache(ctx context.Context, cache Cache, limit, page int) (*ImageListCache, bool) {
	if cache == nil {
		return nil, false
	}
	key := BuildCacheKey(CacheKeyImageList, limit, page)

	var result ImageListCache
	if err := cache.Get(ctx, key, &result); err != nil {
		return nil, false
	}
	return &result, true
}

// SetImageListToCache writes a cached gallery page.
func SetImageListToCache(ctx context.Context, cache Cache, limit, page int, data *ImageListCache, expiration time.Duration) error {
	if cache == nil {
		return nil
	}
	key := BuildCacheKey(CacheKeyImageList, limit, page)
	return cache.Set(ctx, key, data, expiration)
}

// InvalidateImageListCache clears every cached gallery page. Uploads and
// deletes shift page boundaries, so all pages go at once.
func InvalidateImageListCache(ctx context.Context, cache Cache) error {
	if cache == nil {
		return nil
	}
	return cache.DeleteByPattern(ctx, CacheKeyImageList+":*")
}
