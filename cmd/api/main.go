package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/getmentor/profile-editor/config"
	"github.com/getmentor/profile-editor/internal/cache"
	"github.com/getmentor/profile-editor/internal/database/postgres"
	"github.com/getmentor/profile-editor/internal/database/redis"
	"github.com/getmentor/profile-editor/internal/handlers"
	"github.com/getmentor/profile-editor/internal/middleware"
	"github.com/getmentor/profile-editor/internal/models"
	"github.com/getmentor/profile-editor/internal/preview"
	"github.com/getmentor/profile-editor/internal/repository"
	"github.com/getmentor/profile-editor/internal/services"
	"github.com/getmentor/profile-editor/pkg/db"
	"github.com/getmentor/profile-editor/pkg/httpclient"
	"github.com/getmentor/profile-editor/pkg/logger"
	"github.com/getmentor/profile-editor/pkg/messaging"
	"github.com/getmentor/profile-editor/pkg/metrics"
	"github.com/getmentor/profile-editor/pkg/profiling"
	"github.com/getmentor/profile-editor/pkg/retry"
	"github.com/getmentor/profile-editor/pkg/tracing"
	"github.com/getmentor/profile-editor/pkg/yandex"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const (
	profileRoutePrefix = "/api/v1/profile"
	previewCloseURL    = profileRoutePrefix + "/preview/close"
)

// buildSlot opens the configured storage backend. The returned cleanup releases its connections.
func buildSlot(ctx context.Context, cfg *config.Config) (repository.Slot, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		logger.Warn("Using in-memory store: the profile is lost on restart")
		return cache.NewSlotCache(), noop, nil

	case config.StoreBackendFile:
		return repository.NewFileSlot(cfg.Store.FilePath), noop, nil

	case config.StoreBackendRedis:
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if closeErr := client.Close(); closeErr != nil {
				logger.Error("Failed to close redis client", zap.Error(closeErr))
			}
		}
		return repository.NewRetryingSlot(redis.NewSlot(client), retry.StoreConfig()), cleanup, nil

	case config.StoreBackendPostgres:
		poolCfg := db.PoolConfigFrom(cfg.Database)
		if err := db.RunMigrationsWithConfig(poolCfg, db.DefaultMigrationsPath); err != nil {
			return nil, nil, err
		}
		pool, err := db.NewPool(ctx, poolCfg)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() { db.Close(pool) }
		return repository.NewRetryingSlot(postgres.NewClient(pool), retry.StoreConfig()), cleanup, nil

	case config.StoreBackendS3:
		client, err := yandex.NewStorageClient(cfg.YandexStorage)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRetryingSlot(client, retry.StoreConfig()), noop, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

// buildPublishers wires profile-saved event delivery. The returned cleanup closes broker connections.
func buildPublishers(cfg *config.Config) ([]services.EventPublisher, func()) {
	var publishers []services.EventPublisher
	cleanup := func() {}

	if cfg.Events.ProfileSavedTriggerURL != "" {
		publishers = append(publishers, services.NewTriggerPublisher(
			cfg.Events.ProfileSavedTriggerURL,
			httpclient.NewStandardClient(httpclient.DefaultTimeout),
		))
	}

	if cfg.Events.AMQPURL != "" {
		mq, err := messaging.NewRabbitMQ(cfg.Events.AMQPURL, cfg.Events.AMQPQueue)
		if err != nil {
			// Saving must keep working without the broker
			logger.Error("AMQP publisher disabled", zap.Error(err))
		} else {
			publishers = append(publishers, services.NewAMQPPublisher(mq.Channel, cfg.Events.AMQPQueue))
			cleanup = mq.Close
		}
	}

	return publishers, cleanup
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting profile editor",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
		zap.String("store_backend", cfg.Store.Backend),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.InitProfiler(cfg.Profiling, cfg.Observability, cfg.Server.AppEnv,
		map[string]string{"store_backend": cfg.Store.Backend})
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	slot, closeSlot, err := buildSlot(appCtx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize profile store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer closeSlot()

	publishers, closePublishers := buildPublishers(cfg)
	defer closePublishers()

	// The form loads the stored profile once, before the first request is served
	store := repository.NewProfileRepository(slot, cfg.Store.Key)
	form := services.NewProfileForm(appCtx, store,
		services.WithRequireBio(cfg.Profile.RequireBio),
		services.WithStoreKey(store.Key()),
		services.WithEventPublishers(publishers...),
		services.WithPreviewListener(func(profile models.Profile) {
			logger.Debug("Profile preview opened", zap.String("summary", strings.Join(preview.Lines(profile), "; ")))
		}),
	)

	var ready atomic.Bool
	profileHandler := handlers.NewProfileHandler(form, previewCloseURL)
	healthHandler := handlers.NewHealthHandler(slot.Name(), ready.Load)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName)) // OpenTelemetry tracing
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:5173", "http://127.0.0.1:5173")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "traceparent", "tracestate"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	generalRateLimiter := middleware.NewRateLimiter(appCtx, 100, 200) // 100 req/sec, burst of 200
	uploadRateLimiter := middleware.NewRateLimiter(appCtx, 2, 5)      // 2 req/sec, burst of 5

	// Operational endpoints
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	profile := router.Group(profileRoutePrefix)
	profile.Use(generalRateLimiter.Middleware())
	profileHandler.Register(profile,
		uploadRateLimiter.Middleware(),
		middleware.BodySizeLimitMiddleware(cfg.Profile.ResumeMaxBytes),
	)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Bind before reporting ready, then serve in a goroutine
	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		logger.Fatal("Server failed to start", zap.Error(err))
	}
	ready.Store(true)

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ready.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
