package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // Page numbers in keys
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// GetCache retrieves a value from Redis and unmarshals it into dest, a nil client is a miss
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil // Caching disabled
	}
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	if rdb == nil {
		return nil // Caching disabled
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes keys from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, keys ...string) error {
	if rdb == nil || len(keys) == 0 {
		return nil // Caching disabled
	}
	return rdb.Del(ctx, keys...).Err() // Delete keys from Redis
}

// DeleteCacheMatching deletes every key matching a glob pattern, scanning instead of blocking on KEYS
func DeleteCacheMatching(ctx context.Context, rdb *redis.Client, pattern string) error {
	if rdb == nil {
		return nil // Caching disabled
	}
	var keys []string                                 // Keys to delete
	iter := rdb.Scan(ctx, 0, pattern, 100).Iterator() // Cursor over matching keys
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err // Scan failed
	}
	return DeleteCache(ctx, rdb, keys...)
}

// AccountCacheKey is the cache key of a single account view
func AccountCacheKey(userID string) string {
	return "account:user:" + userID
}

// AccountListCachePattern matches every cached admin page of accounts
const AccountListCachePattern = "admin:accounts:*"

// AccountListCacheKey is the cache key of one admin page of accounts
func AccountListCacheKey(page, pageSize int) string {
	return "admin:accounts:page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
}
