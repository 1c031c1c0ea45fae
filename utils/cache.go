package utils

import (
	"context"
	"log"
	"time"

	"visionvend/config"

	"github.com/go-redis/redis/v8"
)

// SnapshotClient is the redis client backing the session snapshot read model.
var SnapshotClient *redis.Client

// InitSnapshotCache initializes the Redis client using the snapshot DB from AppConfig.
func InitSnapshotCache() {
	SnapshotClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSnapshotDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := SnapshotClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Snapshot): %v", err)
	}
}

// GetSnapshotClient returns the snapshot cache client.
func GetSnapshotClient() *redis.Client {
	if SnapshotClient == nil {
		InitSnapshotCache()
	}
	return SnapshotClient
}
