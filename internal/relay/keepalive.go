package relay

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPingInterval is the ping period used when none is configured.
const DefaultPingInterval = 30 * time.Second

// Keepalive pings every open connection on a fixed period so idle peers and
// the network in between keep the socket alive. With a non-zero idle timeout
// it also evicts peers that have gone quiet, via Hub.Disconnect.
type Keepalive struct {
	hub         *Hub
	interval    time.Duration
	idleTimeout time.Duration
	logger      *slog.Logger
}

func NewKeepalive(hub *Hub, interval, idleTimeout time.Duration, logger *slog.Logger) *Keepalive {
	if interval <= 0 {
		interval = DefaultPingInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Keepalive{
		hub:         hub,
		interval:    interval,
		idleTimeout: idleTimeout,
		logger:      logger,
	}
}

// Run sweeps on every tick until ctx is done.
func (k *Keepalive) Run(ctx context.Context) {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			pinged, evicted := k.Sweep(now)
			if evicted > 0 {
				k.logger.Info("evicted idle connections", "evicted", evicted, "pinged", pinged)
			}
		}
	}
}

// Sweep runs one keepalive pass as of now.
func (k *Keepalive) Sweep(now time.Time) (pinged, evicted int) {
	for _, c := range k.hub.registry.Conns() {
		if k.idleTimeout > 0 && now.Sub(c.LastSeen()) > k.idleTimeout {
			k.logger.Debug("connection idle", "conn", c.ID, "last_seen", c.LastSeen())
			k.hub.Disconnect(c)
			evicted++
			continue
		}
		if c.Ping() {
			pinged++
		}
	}
	return pinged, evicted
}
