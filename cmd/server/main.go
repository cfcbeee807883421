// Command server runs the fest registration backend: the payment webhook,
// public catalog and verification routes, the admin API, and the audit
// outbox worker.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	adminhandler "aakar/internal/admin/handler"
	adminservice "aakar/internal/admin/service"
	"aakar/internal/audit"
	eventscache "aakar/internal/events/cache"
	eventshandler "aakar/internal/events/handler"
	eventsstore "aakar/internal/events/store"
	jwttoken "aakar/internal/jwt_token"
	participanthandler "aakar/internal/participant/handler"
	participantstore "aakar/internal/participant/store"
	"aakar/internal/platform/config"
	"aakar/internal/platform/httpserver"
	"aakar/internal/platform/logger"
	"aakar/internal/platform/metrics"
	"aakar/internal/platform/redis"
	"aakar/internal/ticket"
	ticketstorage "aakar/internal/ticket/storage"
	httptransport "aakar/internal/transport/http"
	"aakar/internal/webhook"
	webhookhandler "aakar/internal/webhook/handler"
	webhookmetrics "aakar/internal/webhook/metrics"
	webhookservice "aakar/internal/webhook/service"
)

func main() {
	// .env is a local development convenience; absence is not an error.
	_ = godotenv.Load()

	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("failed to load configuration", "error", err.Error())
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = redis.New(cfg.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	} else {
		log.Warn("redis not configured, event cache disabled")
	}

	blobs, err := ticketstorage.New(ctx, cfg.Blob)
	if err != nil {
		return err
	}
	generator, err := ticket.NewGenerator(blobs, cfg.BaseURL, cfg.TicketBackground)
	if err != nil {
		return err
	}

	participants := participantstore.NewPostgres(db)
	txRunner := participantstore.NewPostgresTx(db)
	auditStore := audit.NewPostgres(db)

	var outboxWorker *audit.Worker
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := audit.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer publisher.Close()
		outboxWorker = audit.NewWorker(auditStore, publisher, cfg.Kafka.Poll, log)
	} else {
		// Outbox rows accumulate until a broker is configured.
		log.Warn("kafka not configured, audit publication disabled")
	}

	catalog := eventsstore.NewPostgres(db)
	catalogCache := eventscache.New(catalog, redisClient, cfg.EventCacheTTL, eventscache.NewMetrics(), log)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTTTL)

	webhookMetrics := webhookmetrics.New()
	reconciler := webhookservice.NewService(
		participants,
		txRunner,
		generator,
		auditStore,
		webhookMetrics,
		log,
	)

	adminSvc := adminservice.New(
		participants,
		catalog,
		catalogCache,
		jwtService,
		adminservice.Credentials{Username: cfg.AdminUser, PasswordHash: cfg.AdminPasswordHash},
		log,
	)

	checks := []httptransport.HealthCheck{
		{Name: "postgres", Check: db.PingContext},
	}
	if redisClient != nil {
		checks = append(checks, httptransport.HealthCheck{Name: "redis", Check: redisClient.Health})
	}

	httpMetrics := metrics.New()
	router := httptransport.NewRouter(log, httpMetrics, checks,
		webhookhandler.New(webhook.NewVerifier(cfg.WebhookSecret), reconciler, webhookMetrics, log),
		eventshandler.New(catalogCache, log),
		participanthandler.New(participants, log),
		adminhandler.New(adminSvc, jwtService, log),
	)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if outboxWorker != nil {
		g.Go(func() error {
			return outboxWorker.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server stopped")
	return nil
}
