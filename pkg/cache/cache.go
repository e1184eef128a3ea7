package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"storefront-catalog-api/internal/models"
)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	ctx    context.Context
}

func NewRedisCache() *RedisCache {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	redisDB := 0
	if db := os.Getenv("REDIS_DB"); db != "" {
		if dbNum, err := strconv.Atoi(db); err == nil {
			redisDB = dbNum
		}
	}

	ttlSeconds := 600 // 10 minutes default
	if ttl := os.Getenv("CACHE_TTL"); ttl != "" {
		if t, err := strconv.Atoi(ttl); err == nil {
			ttlSeconds = t
		}
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("Failed to parse Redis URL: %v", err)
		return nil
	}
	opt.DB = redisDB

	client := redis.NewClient(opt)
	ctx := context.Background()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Printf("Redis connection failed: %v", err)
		return nil
	}

	log.Printf("Redis connected successfully, DB: %d, TTL: %d seconds", redisDB, ttlSeconds)

	return &RedisCache{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
		ctx:    ctx,
	}
}

// GetCatalog returns a cached listing response, or nil on miss.
func (r *RedisCache) GetCatalog(key string) (*models.CatalogResponse, error) {
	if r == nil || r.client == nil {
		return nil, fmt.Errorf("redis client not available")
	}

	val, err := r.client.Get(r.ctx, key).Result()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get error: %v", err)
	}

	var response models.CatalogResponse
	if err := json.Unmarshal([]byte(val), &response); err != nil {
		return nil, fmt.Errorf("json unmarshal error: %v", err)
	}
	return &response, nil
}

func (r *RedisCache) SetCatalog(key string, response *models.CatalogResponse) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("redis client not available")
	}

	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("json marshal error: %v", err)
	}
	return r.client.Set(r.ctx, key, data, r.ttl).Err()
}

// GetEntry returns a cached canonical entry by base id, or nil on miss.
// Entries land here via the ingest worker.
func (r *RedisCache) GetEntry(baseID string) (*models.CatalogEntry, error) {
	if r == nil || r.client == nil {
		return nil, fmt.Errorf("redis client not available")
	}

	val, err := r.client.Get(r.ctx, entryKey(baseID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get error: %v", err)
	}

	var entry models.CatalogEntry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil, fmt.Errorf("json unmarshal error: %v", err)
	}
	return &entry, nil
}

func (r *RedisCache) SetEntry(entry models.CatalogEntry) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("redis client not available")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("json marshal error: %v", err)
	}
	return r.client.Set(r.ctx, entryKey(entry.BaseID), data, r.ttl).Err()
}

func entryKey(baseID string) string {
	return fmt.Sprintf("entry:%s", baseID)
}

func (r *RedisCache) GenerateCatalogKey(params models.ListParams) string {
	key := fmt.Sprintf("catalog:p%d:l%d", params.Page, params.Limit)
	if params.Collection != "" {
		key += fmt.Sprintf(":c%s", params.Collection)
	}
	return key
}

func (r *RedisCache) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *RedisCache) IsAvailable() bool {
	return r != nil && r.client != nil
}

func (r *RedisCache) GetStats() map[string]interface{} {
	if r == nil || r.client == nil {
		return map[string]interface{}{
			"status": "unavailable",
		}
	}

	info := r.client.Info(r.ctx, "memory").Val()
	return map[string]interface{}{
		"status":      "connected",
		"ttl_seconds": int(r.ttl.Seconds()),
		"memory_info": info,
	}
}

func (r *RedisCache) GetAllKeys() []string {
	if r == nil || r.client == nil {
		return []string{}
	}
	keys := make([]string, 0)
	for _, pattern := range []string{"catalog:*", "entry:*"} {
		found, err := r.client.Keys(r.ctx, pattern).Result()
		if err != nil {
			continue
		}
		keys = append(keys, found...)
	}
	return keys
}

func (r *RedisCache) FlushCache() error {
	if r == nil || r.client == nil {
		return fmt.Errorf("redis client not available")
	}
	return r.client.FlushDB(r.ctx).Err()
}

func (r *RedisCache) GetKeyTTL(key string) time.Duration {
	if r == nil || r.client == nil {
		return 0
	}
	ttl, err := r.client.TTL(r.ctx, key).Result()
	if err != nil {
		return 0
	}
	return ttl
}
