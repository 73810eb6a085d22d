package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mossy-p/camrelay/config"
	"github.com/mossy-p/camrelay/internal/events"
	"github.com/mossy-p/camrelay/internal/redis"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewPublisherWithoutRedis(t *testing.T) {
	publisher, closeEvents := newPublisher(context.Background(), &config.Config{}, discardLogger())
	defer closeEvents()

	if publisher != nil {
		t.Errorf("Expected no publisher when Redis is disabled, got %T", publisher)
	}
}

func TestNewPublisherRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{Redis: config.RedisConfig{Host: mr.Host(), Port: mr.Port()}}
	mr.Close()

	publisher, closeEvents := newPublisher(context.Background(), cfg, discardLogger())
	defer closeEvents()

	if publisher != nil {
		t.Errorf("Expected the relay to run without events, got %T", publisher)
	}
}

func TestNewPublisherMirrorsPresence(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.Set(redis.CameraKey, "stale")
	cfg := &config.Config{Redis: config.RedisConfig{Host: mr.Host(), Port: mr.Port()}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisher, closeEvents := newPublisher(ctx, cfg, discardLogger())
	defer closeEvents()
	if publisher == nil {
		t.Fatal("Expected a publisher with Redis reachable")
	}
	if mr.Exists(redis.CameraKey) {
		t.Error("Expected stale presence to be reset at startup")
	}

	publisher.Publish(events.Event{Kind: events.CameraRegistered, ConnID: "cam"})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got, _ := mr.Get(redis.CameraKey); got == "cam" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("Expected camera_registered to reach Redis")
}
