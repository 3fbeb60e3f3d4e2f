package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aria-khodro/cargo-relay/internal/app/ingress"
	"github.com/aria-khodro/cargo-relay/internal/app/registry"
	"github.com/aria-khodro/cargo-relay/internal/app/server"
	"github.com/aria-khodro/cargo-relay/internal/config"
	"github.com/aria-khodro/cargo-relay/internal/core/contracts"
	"github.com/aria-khodro/cargo-relay/internal/core/services"
	"github.com/aria-khodro/cargo-relay/internal/platform/telemetry"
	"github.com/aria-khodro/cargo-relay/internal/plugins/fcm"
	"github.com/aria-khodro/cargo-relay/internal/plugins/identity"
	natsPlugin "github.com/aria-khodro/cargo-relay/internal/plugins/nats"
	redisPlugin "github.com/aria-khodro/cargo-relay/internal/plugins/redis"
	"github.com/aria-khodro/cargo-relay/internal/plugins/sqlite"
	"github.com/aria-khodro/cargo-relay/internal/plugins/webhook"
	"github.com/aria-khodro/cargo-relay/pkg/logging"
)

func main() {
	// Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logging.NewLogger("cargo-relay", "unknown", "info", "json").Error("config load failed", "err", err)
		os.Exit(1)
	}

	// Logger
	log := logging.NewLogger(cfg.Service.Name, cfg.Service.Env, cfg.Logger.Level, cfg.Logger.Format)
	log.Info("starting application")

	otelShutdown, err := telemetry.InitTelemetry(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize telemetry", "err", err)
	}
	defer func() {
		if otelShutdown == nil {
			return
		}
		log.Info("flushing telemetry...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", "err", err)
		}
	}()

	// Infra
	var rdb *redis.Client
	if rdb, err = redisPlugin.NewClient(ctx, cfg.Database.Redis); err != nil {
		log.Error("redis connection failed", "url", cfg.Database.Redis.URL, "err", err)
		return
	}
	defer rdb.Close()
	log.Info("redis connected")

	// Adapters
	var tokens contracts.TokenStore
	switch cfg.Database.Driver {
	case "sqlite":
		sqliteTokens, err := sqlite.NewTokenStore(cfg.Database.SQLite)
		if err != nil {
			log.Error("sqlite open failed", "path", cfg.Database.SQLite.DatabasePath, "err", err)
			return
		}
		defer sqliteTokens.Close()
		tokens = sqliteTokens
	default:
		tokens = redisPlugin.NewTokenStore(rdb)
	}
	presence := redisPlugin.NewPresenceStore(rdb)
	publisher := redisPlugin.NewPublisher(rdb, cfg.Database.Redis.KeyPrefix)

	provider, err := fcm.NewProvider(ctx, cfg.FCM, log)
	if err != nil {
		log.Error("fcm init failed", "err", err)
		return
	}

	var sink contracts.WebhookSink
	var eventSink contracts.WebhookSink
	if cfg.Webhook.URL != "" || cfg.Webhook.CoordsURL != "" {
		wh := webhook.NewClient(cfg.Webhook)
		sink = wh
		if cfg.Webhook.URL != "" {
			eventSink = wh
		}
	}
	verifier := identity.NewVerifier(cfg)

	// Core Services
	hub := registry.NewHub()
	coords := services.NewCoordsBuffer(log, sink, cfg.Telemetry.FlushInterval)
	go coords.Run(ctx)
	dispatcher := services.NewDispatcher(log, tokens, provider)
	router := services.NewRouter(log, hub, dispatcher, coords, eventSink, cfg.Telemetry.Event)
	sockets := services.NewSocketService(log, hub, presence, publisher, publisher, coords)

	// Ingress
	httpBackend := ingress.NewHTTPBackend(log, cfg.DevMode)
	var backends []contracts.IngressBackend
	if cfg.Subscribers.HTTP {
		backends = append(backends, httpBackend)
	}
	if cfg.Subscribers.Redis {
		backends = append(backends, redisPlugin.NewSubscriber(log, rdb, cfg.Database.Redis.KeyPrefix, cfg.DevMode))
	}
	if cfg.Subscribers.NATS {
		backends = append(backends, natsPlugin.NewSubscriber(log, cfg.NATS.URL, cfg.NATS.SubjectPrefix))
	}
	manager := ingress.NewManager(log, backends...)
	if err := manager.Start(ctx, router.Route); err != nil {
		log.Error("ingress start failed", "err", err)
		return
	}

	// Server
	srv := server.NewServer(log, cfg, sockets, verifier, httpBackend)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			log.Error("server failed", "err", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := manager.Stop(shutdownCtx); err != nil {
		log.Error("ingress stop failed", "err", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "err", err)
	}
	log.Info("application stopped")
}
