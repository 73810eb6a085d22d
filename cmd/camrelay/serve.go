package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/mossy-p/camrelay/config"
	"github.com/mossy-p/camrelay/internal/events"
	"github.com/mossy-p/camrelay/internal/handlers"
	"github.com/mossy-p/camrelay/internal/logging"
	"github.com/mossy-p/camrelay/internal/redis"
	"github.com/mossy-p/camrelay/internal/relay"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var (
	flagPort        string
	flagEnvironment string
	flagLogLevel    string
	flagRedisHost   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the signaling relay",
	Long: `Run the signaling relay.

Flags override environment variables (PORT, ENVIRONMENT, LOG_LEVEL,
REDIS_HOST); everything else is configured through the environment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.Options{
			Port:        flagPort,
			Environment: flagEnvironment,
			LogLevel:    flagLogLevel,
			RedisHost:   flagRedisHost,
		})
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&flagPort, "port", "p", "", "Listening port (default 8080)")
	serveCmd.Flags().StringVarP(&flagEnvironment, "env", "e", "", "Environment name; \"production\" enables gin release mode")
	serveCmd.Flags().StringVarP(&flagLogLevel, "log-level", "l", "", "Log level: debug, info, warn, error")
	serveCmd.Flags().StringVar(&flagRedisHost, "redis-host", "", "Redis host for presence and events (disabled when empty)")
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.Init(cfg.LogLevel)

	publisher, closeEvents := newPublisher(ctx, cfg, logger)
	defer closeEvents()

	hub := relay.NewHub(relay.Options{Logger: logger, Events: publisher})
	go relay.NewKeepalive(hub, cfg.PingInterval, cfg.IdleTimeout, logger).Run(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handlers.NewRouter(handlers.New(hub, cfg, logger)),
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
	}

	logger.Info("starting camera signaling relay",
		"addr", ln.Addr().String(),
		"environment", cfg.Environment,
		"ping_interval", cfg.PingInterval,
		"idle_timeout", cfg.IdleTimeout,
		"redis", cfg.Redis.Enabled(),
	)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", "err", err)
		return srv.Close()
	}
	return nil
}

// newPublisher wires the Redis presence mirror when one is configured. Redis
// is optional, so a failed connection only costs the mirror; the returned
// publisher is nil in that case and the relay runs without events.
func newPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (relay.Publisher, func()) {
	if !cfg.Redis.Enabled() {
		return nil, func() {}
	}

	client, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, running without presence mirror", "addr", cfg.Redis.Addr(), "err", err)
		return nil, func() {}
	}

	if err := client.Reset(ctx); err != nil {
		logger.Warn("failed to reset presence", "err", err)
	}

	bus := events.NewBus(client, 1024, logger)
	go bus.Run(ctx)
	logger.Info("redis connection established", "addr", cfg.Redis.Addr())
	return bus, func() { client.Close() }
}
