package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mossy-p/camrelay/config"
	"github.com/mossy-p/camrelay/internal/events"
	"github.com/redis/go-redis/v9"
)

// Keys written by the presence mirror.
const (
	EventsChannel = "camrelay:events"
	CameraKey     = "camrelay:camera"
	ViewersKey    = "camrelay:viewers"
)

const presenceTTL = 24 * time.Hour

// Client mirrors relay presence into Redis and publishes lifecycle events
// for dashboards. Nothing is ever read back into the relay.
type Client struct {
	rdb *redis.Client
}

// Connect initializes the Redis client
func Connect(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Reset clears presence left behind by a previous process.
func (c *Client) Reset(ctx context.Context) error {
	if err := c.rdb.Del(ctx, CameraKey, ViewersKey).Err(); err != nil {
		return fmt.Errorf("reset presence: %w", err)
	}
	return nil
}

// Handle implements events.Sink.
func (c *Client) Handle(ctx context.Context, ev events.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		switch ev.Kind {
		case events.CameraRegistered:
			pipe.Set(ctx, CameraKey, ev.ConnID, presenceTTL)
		case events.CameraLeft:
			pipe.Del(ctx, CameraKey)
		case events.ViewerJoined:
			pipe.SAdd(ctx, ViewersKey, ev.ConnID)
			pipe.Expire(ctx, ViewersKey, presenceTTL)
		case events.ViewerLeft:
			pipe.SRem(ctx, ViewersKey, ev.ConnID)
		}
		pipe.Publish(ctx, EventsChannel, payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis %s: %w", ev.Kind, err)
	}
	return nil
}
