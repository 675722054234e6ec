package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ibadah-companion-backend/config"
	"ibadah-companion-backend/internal/api"
	"ibadah-companion-backend/internal/db"
	"ibadah-companion-backend/internal/logging"
	"ibadah-companion-backend/internal/mw"
	"ibadah-companion-backend/internal/notification"
	"ibadah-companion-backend/internal/reminder"
	"ibadah-companion-backend/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder service",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
}

func runServeCmd(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}

	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Pretty)
	log.Logger = logger
	logger.Info().Str("path", configPath).Int("locales", len(cfg.Locales)).Msg("configuration loaded")

	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Warn().Msg("VAPID keys are not configured; web push reminders are disabled")
	}
	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	appStore := store.NewGormStore(gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, &webpushOptions)
	workerPool.Start(ctx)

	var publishers []notification.Publisher
	if cfg.MQTT.Enabled {
		mqttPublisher, err := notification.NewMQTTPublisher(&cfg.MQTT)
		if err != nil {
			logger.Error().Err(err).Msg("MQTT publisher unavailable; continuing without it")
		} else {
			defer mqttPublisher.Close()
			publishers = append(publishers, mqttPublisher)
		}
	}

	reminderSvc := reminder.NewService(cfg, appStore, workerPool, publishers...)
	go reminderSvc.Run(ctx)

	cacheStore, closeCache := newResponseStore(ctx, cfg)
	defer closeCache()

	router := api.NewRouter(cfg, appStore, &webpushOptions, cacheStore, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info().Msg("shutdown signal received, stopping services")
	case err := <-serverErr:
		return fmt.Errorf("HTTP server ListenAndServe: %w", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server Shutdown: %w", err)
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info().Msg("server gracefully stopped")
	return nil
}

// newResponseStore picks the response cache backend. An unreachable redis
// falls back to memory.
func newResponseStore(ctx context.Context, cfg *config.Config) (mw.ResponseStore, func()) {
	memory := func() (mw.ResponseStore, func()) {
		return mw.NewMemoryStore(cfg.CacheTTL(), 2*cfg.CacheTTL()), func() {}
	}
	if cfg.Cache.Backend != "redis" {
		return memory()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("redis unreachable; using in-memory response cache")
		_ = client.Close()
		return memory()
	}
	log.Info().Str("addr", cfg.Cache.RedisAddr).Msg("using redis response cache")
	return mw.NewRedisStore(client, "ibadah:http:"), func() { _ = client.Close() }
}
