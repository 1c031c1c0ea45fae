// Package snapshot keeps the latest session snapshot in redis for the presentation layer.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"visionvend/models"
	"visionvend/services/metrics"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Get when no snapshot has been published for the kiosk.
var ErrNotFound = errors.New("snapshot not found")

const keyPrefix = "kiosk:snapshot:"

func snapshotKey(kioskID string) string {
	return fmt.Sprintf("%s%s", keyPrefix, kioskID)
}

// RedisStore is a session.Observer that writes snapshots to redis from its own goroutine.
// Only the newest unwritten snapshot is kept; older ones are skipped.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *zap.Logger
	latest chan models.Snapshot
}

func NewRedisStore(client *redis.Client, kioskID string, ttl time.Duration, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		key:    snapshotKey(kioskID),
		ttl:    ttl,
		logger: logger,
		latest: make(chan models.Snapshot, 1),
	}
}

// Observe queues snap for writing without blocking, replacing any snapshot not yet written.
func (s *RedisStore) Observe(snap models.Snapshot) {
	for {
		select {
		case s.latest <- snap:
			return
		default:
		}
		select {
		case <-s.latest:
		default:
		}
	}
}

// Run writes queued snapshots until ctx is cancelled.
func (s *RedisStore) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-s.latest:
			if err := s.Save(ctx, snap); err != nil {
				metrics.SnapshotPublishFailuresTotal.Inc()
				s.logger.Warn("snapshot: failed to publish", zap.Uint64("version", snap.Version), zap.Error(err))
			}
		}
	}
}

func (s *RedisStore) Save(ctx context.Context, snap models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, data, s.ttl).Err()
}

// Get returns the last snapshot written for this kiosk.
func (s *RedisStore) Get(ctx context.Context) (models.Snapshot, error) {
	val, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return models.Snapshot{}, err
	}
	var snap models.Snapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
