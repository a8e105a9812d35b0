// Package main is the entry point for the media-search-service API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"media-search-service/internal/app/service"
	"media-search-service/internal/config"
	"media-search-service/internal/domain"
	"media-search-service/internal/infra/cache"
	"media-search-service/internal/infra/provider/registry"
	rediscache "media-search-service/internal/infra/redis"
	"media-search-service/internal/job"
	"media-search-service/internal/logger"
	"media-search-service/internal/metrics"
	"media-search-service/internal/transport/httpserver"
	"media-search-service/internal/transport/httpserver/handler"
	"media-search-service/internal/validator"
	"media-search-service/pkg/locker"
)

func main() {
	cfg, err := config.Load(os.Getenv("APP_CONFIG_FILE"))
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(
		logger.Config{
			Level:   cfg.Logger.Level,
			Format:  cfg.Logger.Format,
			Output:  cfg.Logger.Output,
			Service: cfg.App.Name,
			Env:     cfg.App.Env,
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	restoreGlobals, err := logger.Replace(log)
	if err != nil {
		panic("failed to install logger: " + err.Error())
	}
	defer restoreGlobals()

	if err := cfg.Validate(); err != nil {
		log.Fatal("configuration rejected", zap.Error(err))
	}

	log.Info("starting media-search-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.Register(promRegistry)

	// Cache store and cross-instance locker
	var (
		store       domain.Cache
		distLocker  locker.DistributedLocker
		redisClient *redis.Client
	)

	if cfg.Cache.Enabled {
		switch cfg.Cache.Backend {
		case config.CacheBackendRedis:
			redisClient = redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr(),
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err := redisClient.Ping(ctx).Err(); err != nil {
				log.Fatal("failed to connect to Redis", zap.Error(err))
			}
			defer func() { _ = redisClient.Close() }()

			store = rediscache.NewCache(redisClient, log.Logger, cfg.Cache.KeyPrefix)
			distLocker = locker.NewRedisLocker(redisClient, log.Logger)

			log.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr()))
		default:
			memory := cache.NewMemoryCache(log.Logger, cfg.Cache.KeyPrefix)
			go memory.RunJanitor(ctx, cfg.Cache.JanitorInterval)
			store = memory
		}

		log.Info("cache enabled",
			zap.Duration("ttl", cfg.Cache.TTL),
			zap.String("key_prefix", cfg.Cache.KeyPrefix),
		)
	} else {
		log.Info("cache disabled, concurrent lookups are still coalesced")
	}

	lookup := cache.NewLookup[domain.Media](store, cache.LookupConfig{
		TTL:     cfg.Cache.TTL,
		Locker:  distLocker,
		LockTTL: cfg.Cache.LockTTL,
	}, log.Logger)

	// Metadata provider
	omdbClient := registry.NewProvider(cfg.OMDB, log.Logger)

	// Services
	searchSvc := service.NewSearchService(omdbClient, lookup, log.Logger)

	var (
		warmer    handler.Warmer
		scheduler *job.WarmupScheduler
	)
	if len(cfg.Warmup.Titles) > 0 {
		titles := make([]domain.LookupRequest, 0, len(cfg.Warmup.Titles))
		for _, raw := range cfg.Warmup.Titles {
			// Already checked by cfg.Validate.
			title, _ := config.ParseWarmupTitle(raw)
			titles = append(titles, title)
		}
		warmupSvc := service.NewWarmupService(searchSvc, titles, 0, log.Logger)
		warmer = warmupSvc

		if cfg.Warmup.Enabled {
			scheduler = job.NewWarmupScheduler(
				warmupSvc,
				job.WarmupConfig{
					Interval: cfg.Warmup.Interval,
					Timeout:  cfg.Warmup.Timeout,
				},
				log.Logger,
				distLocker,
			)
		}
	}

	// HTTP server
	deps := httpserver.Deps{
		Search:   searchSvc,
		Warmer:   warmer,
		Gatherer: promRegistry,
	}
	if store != nil {
		deps.Store = store
	}

	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:      cfg.App.Port,
			BodyLimit: 64 * 1024,
			Debug:     cfg.App.Debug,
		},
		deps,
		validator.New(),
		log.Logger,
	)

	if scheduler != nil {
		scheduler.Start()
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		if scheduler != nil {
			scheduler.Stop()
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.App.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
