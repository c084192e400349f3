package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"

	"github.com/slidinglog/rate-limiter/config"
	"github.com/slidinglog/rate-limiter/internal/handler"
	"github.com/slidinglog/rate-limiter/internal/limiter"
	"github.com/slidinglog/rate-limiter/internal/metrics"
	"github.com/slidinglog/rate-limiter/internal/middleware"
	"github.com/slidinglog/rate-limiter/internal/storage/memory"
	redisstore "github.com/slidinglog/rate-limiter/internal/storage/redis"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load(os.Getenv("RATELIMITER_CONFIG"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := initStorage(ctx, cfg, logger)

	l := limiter.New(store, cfg.Limits.Clients, cfg.Limits.Default)
	m := metrics.New()
	rateLimitMW := middleware.NewRateLimitMiddleware(l, logger, m)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Get("/api/hello", rateLimitMW.Handler(handler.HelloHandler))
	r.Get("/api/status", handler.StatusHandler)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		log.Fatal(err)
	}

	logger.Info("server stopped")
}

func initStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) limiter.Store {
	switch cfg.Storage.Type {
	case "redis":
		return initRedisStorage(cfg, logger)
	default:
		logger.Info("using in-memory storage", "sweep_interval", cfg.Storage.SweepInterval)
		s := memory.NewStore()
		go s.Run(ctx, cfg.Storage.SweepInterval)
		return s
	}
}

func initRedisStorage(cfg *config.Config, logger *slog.Logger) limiter.Store {
	logger.Info("connecting to Redis", "addr", cfg.Storage.Redis.Addr)
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Storage.Redis.Addr,
		Password: cfg.Storage.Redis.Password,
		DB:       cfg.Storage.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Storage.Redis.DialTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		log.Fatal(err)
	}

	logger.Info("successfully connected to Redis")
	return redisstore.NewStore(rdb)
}
