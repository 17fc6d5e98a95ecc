package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bronystylecrazy/gokeyence/internal/config"
)

// RedisSink publishes events on a channel and keeps the latest event of
// every monitor under <channel>:<plc>:<name>. Works with Redis and Valkey.
type RedisSink struct {
	client  *redis.Client
	channel string
}

// NewRedisSink connects and pings the server.
func NewRedisSink(ctx context.Context, cfg config.RedisConfig) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: connect to %s: %w", cfg.Address, err)
	}

	return &RedisSink{client: client, channel: cfg.Channel}, nil
}

func (s *RedisSink) Name() string { return "redis" }

// Key returns the key holding the latest event for evt's monitor
func (s *RedisSink) Key(evt Event) string {
	return KeyFor(s.channel, evt)
}

func (s *RedisSink) Publish(ctx context.Context, evt Event) error {
	payload, err := evt.Encode()
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.Key(evt), payload, 0)
	pipe.Publish(ctx, s.channel, payload)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}

// KeyFor joins channel, plc and monitor name into a key.
func KeyFor(channel string, evt Event) string {
	return fmt.Sprintf("%s:%s:%s", channel, evt.PLC, evt.Name)
}
