package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jrj02/npc-dialogue/internal/logger"
	"github.com/jrj02/npc-dialogue/pkg/chat"
	"github.com/jrj02/npc-dialogue/pkg/eval"
	"github.com/redis/go-redis/v9"
)

const (
	// transcriptTTL bounds how long finished conversations are retained.
	transcriptTTL = 24 * time.Hour

	// maxMetricsPerConversation caps the telemetry list per conversation.
	maxMetricsPerConversation = 100
)

// RedisStorage implements the Storage interface using Redis.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance.
func NewRedisStorage(redisAddr string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	return &RedisStorage{
		client: rdb,
		logger: logger,
	}
}

func transcriptKey(id uuid.UUID) string {
	return "transcript:" + id.String()
}

func metricsKey(id uuid.UUID) string {
	return "metrics:" + id.String()
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		logger.WithError(r.logger, err).Error("Failed to close Redis connection")
		return err
	}
	return nil
}

// WaitForConnection waits for Redis to become available during startup.
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}
		r.logger.Info("Redis connection established")
		return nil
	}
	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func (r *RedisStorage) SaveTranscript(ctx context.Context, id uuid.UUID, turns []chat.Turn) error {
	data, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	if err := r.client.Set(ctx, transcriptKey(id), string(data), transcriptTTL).Err(); err != nil {
		logger.WithError(logger.WithConversationID(r.logger, id.String()), err).
			Error("Failed to save transcript")
		return fmt.Errorf("failed to save transcript: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadTranscript(ctx context.Context, id uuid.UUID) ([]chat.Turn, error) {
	data, err := r.client.Get(ctx, transcriptKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}

	var turns []chat.Turn
	if err := json.Unmarshal([]byte(data), &turns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
	}
	return turns, nil
}

func (r *RedisStorage) RecordMetrics(ctx context.Context, id uuid.UUID, m *eval.Metrics) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	key := metricsKey(id)
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, string(data))
	pipe.LTrim(ctx, key, -maxMetricsPerConversation, -1)
	pipe.Expire(ctx, key, transcriptTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.WithError(logger.WithConversationID(r.logger, id.String()), err).
			Error("Failed to record metrics")
		return fmt.Errorf("failed to record metrics: %w", err)
	}
	return nil
}
