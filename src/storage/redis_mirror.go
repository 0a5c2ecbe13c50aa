package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"github.com/go-redis/redis/v8"
)

const (
	defaultRedisPrefix  = "marketdash:"
	defaultRedisChannel = "marketdash:snapshots"
	latestSnapshotKey   = "snapshot:latest"
)

var _ interfaces.ISnapshotSink = (*RedisMirror)(nil)

// -----------------------------------------------------------------------------

// RedisMirror keeps the latest snapshot under a key and announces every
// publish on a channel, so other processes can follow the dashboard.
type RedisMirror struct {
	Client  *redis.Client
	Logger  *logger.Logger
	prefix  string
	channel string
	ttl     time.Duration
}

// -----------------------------------------------------------------------------

func NewRedisMirror(cfg models.MRedisConfig, log *logger.Logger) *RedisMirror {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		MaxRetries:   1,
	})
	return NewRedisMirrorWithClient(client, cfg, log)
}

func NewRedisMirrorWithClient(client *redis.Client, cfg models.MRedisConfig, log *logger.Logger) *RedisMirror {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	channel := cfg.Channel
	if channel == "" {
		channel = defaultRedisChannel
	}
	return &RedisMirror{
		Client:  client,
		Logger:  log,
		prefix:  prefix,
		channel: channel,
		ttl:     time.Duration(cfg.TTLSeconds) * time.Second,
	}
}

// -----------------------------------------------------------------------------

func (m *RedisMirror) Name() string {
	return "redis"
}

// Ping checks the connection once at startup.
func (m *RedisMirror) Ping(ctx context.Context) error {
	if err := m.Client.Ping(ctx).Err(); err != nil {
		return helpers.NewStorageError("redis ping", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (m *RedisMirror) Publish(ctx context.Context, snap models.MSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return helpers.NewStorageError("encode snapshot", err)
	}

	pipe := m.Client.TxPipeline()
	pipe.Set(ctx, m.prefix+latestSnapshotKey, payload, m.ttl)
	pipe.Publish(ctx, m.channel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return helpers.NewStorageError("redis mirror", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// Latest reads back the mirrored snapshot. ok is false when nothing has been
// mirrored yet or the key expired.
func (m *RedisMirror) Latest(ctx context.Context) (models.MSnapshot, bool, error) {
	raw, err := m.Client.Get(ctx, m.prefix+latestSnapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.MSnapshot{}, false, nil
	}
	if err != nil {
		return models.MSnapshot{}, false, helpers.NewStorageError("redis get", err)
	}

	var snap models.MSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return models.MSnapshot{}, false, helpers.NewStorageError("decode snapshot", err)
	}
	return snap, true, nil
}

// -----------------------------------------------------------------------------

func (m *RedisMirror) Close() error {
	return m.Client.Close()
}
