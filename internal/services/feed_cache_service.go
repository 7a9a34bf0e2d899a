package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/strappedupmami/journeyatlas/internal/models"
)

// FeedCacheService is the optional distributed feed cache. With multiple
// replicas the in-process cache alone would rebuild the same feed on each
// node; Redis lets replicas share composed feeds. Every failure degrades
// to a cache miss.
type FeedCacheService struct {
	client *redis.Client
}

// NewFeedCacheService connects to Redis and verifies the connection.
func NewFeedCacheService(redisURL string) (*FeedCacheService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("✅ [FEED-CACHE] Connected to Redis")
	return &FeedCacheService{client: client}, nil
}

// Get fetches a cached feed response. Misses and errors both report not
// found.
func (s *FeedCacheService) Get(ctx context.Context, key string) (models.ProactiveFeedResponse, bool) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("⚠️ [FEED-CACHE] Get failed for %s: %v", key, err)
		}
		return models.ProactiveFeedResponse{}, false
	}

	var response models.ProactiveFeedResponse
	if err := json.Unmarshal(data, &response); err != nil {
		log.Printf("⚠️ [FEED-CACHE] Corrupt cache entry for %s: %v", key, err)
		return models.ProactiveFeedResponse{}, false
	}
	return response, true
}

// Set stores a feed response with a TTL. Errors are logged and dropped.
func (s *FeedCacheService) Set(ctx context.Context, key string, response models.ProactiveFeedResponse, ttl time.Duration) {
	data, err := json.Marshal(response)
	if err != nil {
		log.Printf("⚠️ [FEED-CACHE] Marshal failed for %s: %v", key, err)
		return
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("⚠️ [FEED-CACHE] Set failed for %s: %v", key, err)
	}
}

// Delete drops one cached entry.
func (s *FeedCacheService) Delete(ctx context.Context, key string) {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		log.Printf("⚠️ [FEED-CACHE] Delete failed for %s: %v", key, err)
	}
}

// Close shuts down the Redis client.
func (s *FeedCacheService) Close() error {
	return s.client.Close()
}
