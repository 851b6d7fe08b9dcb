package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/weiawesome/wes-io-live/support-service/internal/config"
	"github.com/weiawesome/wes-io-live/support-service/internal/domain"
	"github.com/weiawesome/wes-io-live/support-service/internal/handler"
	"github.com/weiawesome/wes-io-live/support-service/internal/hub"
	"github.com/weiawesome/wes-io-live/support-service/internal/kafka"
	"github.com/weiawesome/wes-io-live/support-service/internal/maintenance"
	"github.com/weiawesome/wes-io-live/support-service/internal/metrics"
	"github.com/weiawesome/wes-io-live/support-service/internal/repository"
	"github.com/weiawesome/wes-io-live/support-service/internal/service"
	"github.com/weiawesome/wes-io-live/support-service/pkg/database"
	"github.com/weiawesome/wes-io-live/support-service/pkg/jwt"
	pkglog "github.com/weiawesome/wes-io-live/support-service/pkg/log"
	"github.com/weiawesome/wes-io-live/support-service/pkg/middleware"
	"github.com/weiawesome/wes-io-live/support-service/pkg/pubsub"
)

// Tokens are issued elsewhere; the lifetime only matters for GenerateToken.
const verifyOnlyTTL = time.Hour

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			initLogger(cfg)
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := pkglog.L()
	instanceID := uuid.New().String()
	ctx = pkglog.WithLogger(ctx, logger.With().Str(pkglog.FieldInstance, instanceID).Logger())

	// Database
	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := database.AutoMigrate(db, domain.Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database migration completed")

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// Auth
	tokens, err := jwt.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, verifyOnlyTTL)
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}

	// Domain event stream
	var events kafka.EventProducer = kafka.NoopProducer{}
	if cfg.Events.Enabled {
		producer, err := kafka.NewConfluentProducer(cfg.Events.Brokers, cfg.Events.Topic, cfg.Events.Partitions)
		if err != nil {
			return fmt.Errorf("create event producer: %w", err)
		}
		events = producer
		logger.Info().Str("topic", cfg.Events.Topic).Msg("event stream enabled")
	}
	defer events.Close()

	repo := repository.NewGormThreadRepository(db)

	var sweeper *maintenance.Sweeper
	if cfg.Maintenance.Enabled {
		if sweeper, err = maintenance.NewSweeper(repo, events, m, cfg.Maintenance); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	// Group registry, relayed across instances when a bus is configured
	h := hub.NewHub(m)
	var groups service.GroupPublisher = h
	if cfg.Bus.Enabled() {
		bus, err := pubsub.NewPubSub(cfg.Bus, instanceID)
		if err != nil {
			return fmt.Errorf("connect bus: %w", err)
		}
		defer bus.Close()

		relay := hub.NewRelay(h, bus, instanceID)
		groups = relay
		g.Go(func() error { return relay.Run(gctx) })
		logger.Info().Str("driver", cfg.Bus.Driver).Msg("group relay enabled")
	}

	// Services
	notifier := service.NewNotifier(groups, events)
	pipeline := service.NewPipeline(repo, notifier, m)
	lifecycle := service.NewLifecycle(repo, pipeline, notifier, m)

	if sweeper != nil {
		g.Go(func() error { return sweeper.Run(gctx) })
	}

	// HTTP
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": h.ClientCount(), "groups": h.Groups()})
	})
	handler.NewHTTPHandler(lifecycle, pipeline, middleware.NewAuthMiddleware(tokens)).RegisterRoutes(r)

	mux := http.NewServeMux()
	handler.NewWSHandler(h, lifecycle, tokens, m, cfg.WebSocket).RegisterRoutes(mux, pkglog.HTTPMiddleware(logger))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/", r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info().Str("addr", addr).Str("instance", instanceID).Msg("support-service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		// Hijacked WebSocket connections are not tracked by Shutdown.
		h.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
