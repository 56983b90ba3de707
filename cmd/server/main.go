package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/microblog/config"
	"github.com/d60-Lab/microblog/internal/api"
	"github.com/d60-Lab/microblog/internal/api/handler"
	"github.com/d60-Lab/microblog/internal/api/middleware"
	"github.com/d60-Lab/microblog/internal/cache"
	"github.com/d60-Lab/microblog/internal/repository"
	"github.com/d60-Lab/microblog/internal/service"
	"github.com/d60-Lab/microblog/pkg/auth"
	"github.com/d60-Lab/microblog/pkg/database"
	"github.com/d60-Lab/microblog/pkg/logger"
	"github.com/d60-Lab/microblog/pkg/monitor"
	"github.com/d60-Lab/microblog/pkg/tracing"
)

var version = "dev"

// @title Microblog API
// @version 1.0
// @description 用户、关注关系与关注流
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Encoding); err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	flush, err := monitor.InitSentry(cfg.Sentry, version)
	if err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	defer flush()

	ctx := context.Background()
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		logger.Warn("tracing init failed", zap.Error(err))
		shutdownTracing = func(context.Context) error { return nil }
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("database init failed", zap.Error(err))
		os.Exit(1)
	}
	defer func() { _ = database.Close(db) }()

	// repositories
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	feedRepo := repository.NewFeedRepository(db)

	metrics := middleware.NewMetrics()

	var counts service.CountCache
	if cfg.Redis.Enabled {
		client, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, counts served from database", zap.Error(err))
		} else {
			defer client.Close()
			cc := cache.NewCountCache(client, cfg.Redis.CountTTL)
			metrics.GaugeFunc("count_cache_hits", "Follower/following count cache hits", func() float64 {
				return float64(cc.Stats().Hits)
			})
			metrics.GaugeFunc("count_cache_misses", "Follower/following count cache misses", func() float64 {
				return float64(cc.Stats().Misses)
			})
			metrics.GaugeFunc("count_cache_stale_fills", "Count cache fills skipped after concurrent invalidation", func() float64 {
				return float64(cc.Stats().StaleFills)
			})
			counts = cc
		}
	}

	pager := service.Pager{DefaultSize: cfg.Feed.DefaultPageSize, MaxSize: cfg.Feed.MaxPageSize}
	userSvc := service.NewUserService(userRepo)
	relSvc := service.NewRelationshipService(followRepo, userRepo, counts, pager)
	postSvc := service.NewPostService(db, pager)
	feedSvc := service.NewFeedService(feedRepo, pager)

	recorder := service.NewLastSeenRecorder(userRepo, cfg.LastSeen.QueueSize, cfg.LastSeen.MinInterval)
	stopRecorder := recorder.Start(cfg.LastSeen.Workers)
	metrics.GaugeFunc("last_seen_queue_length", "Pending last-seen writes", func() float64 {
		return float64(recorder.QueueLen())
	})

	tokens := auth.NewManager(cfg.JWT.Secret, cfg.JWT.Expire)
	h := handler.New(handler.Options{
		Users:         userSvc,
		Posts:         postSvc,
		Relationships: relSvc,
		Feed:          feedSvc,
		Pager:         pager,
		Tokens:        tokens,
		CookieName:    cfg.JWT.CookieName,
		SecureCookie:  cfg.Server.Mode == "release",
	})

	var limiter *middleware.IPRateLimiter
	if cfg.RateLimit.RPS > 0 {
		limiter = middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	router := api.NewRouter(h, api.RouterOptions{
		Mode:        cfg.Server.Mode,
		ServiceName: cfg.Tracing.ServiceName,
		Tracing:     cfg.Tracing.Enabled,
		Swagger:     cfg.Server.Mode != "release",
		Tokens:      tokens,
		CookieName:  cfg.JWT.CookieName,
		Toucher:     recorder,
		Limiter:     limiter,
		Metrics:     metrics,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	janitorDone := make(chan struct{})
	if limiter != nil {
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					limiter.Cleanup()
				case <-janitorDone:
					return
				}
			}
		}()
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
	close(janitorDone)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	// 先停 HTTP 再排空 last_seen 队列
	if err := stopRecorder(shutdownCtx); err != nil {
		logger.Warn("last_seen recorder drain incomplete", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
}
