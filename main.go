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

	"github.com/gin-gonic/gin"
	"github.com/gogotex/collections/internal/collection/repository"
	"github.com/gogotex/collections/internal/collection/service"
	"github.com/gogotex/collections/internal/config"
	"github.com/gogotex/collections/internal/sessions"
	"github.com/gogotex/collections/internal/storage"
	"github.com/gogotex/collections/pkg/logger"
	"github.com/gogotex/collections/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	// LOG_LEVEL is read again from config below; this covers config errors
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)
	logger.UseFile(cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups)
	defer func() { _ = logger.Close() }()
	logger.Infof("config loaded: engine=%s namespace=%q demo_login=%v seed=%v rate_limit=%v",
		cfg.Storage.Engine, cfg.Storage.Namespace, cfg.Demo.LoggedIn, cfg.Demo.Seed, cfg.RateLimit.Enabled)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open storage: %v", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := backend.Close(closeCtx); err != nil {
			logger.Warnf("closing storage: %v", err)
		}
	}()

	sess := sessions.NewService(backend.Engine, cfg.Demo.LoggedIn)
	repo := repository.NewStoreRepo(backend.Engine)
	res, err := service.Seed(ctx, sess, repo, cfg.Demo.Seed)
	if err != nil {
		logger.Fatalf("failed to seed demo data: %v", err)
	}
	logger.Debugf("seed: user=%v collections=%v", res.User, res.Collections)

	limiterRedis := backend.Redis
	if cfg.RateLimit.Enabled && cfg.RateLimit.UseRedis && limiterRedis == nil {
		limiterRedis = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := limiterRedis.Ping(ctx).Err(); err != nil {
			logger.Warnf("rate limiter redis unreachable (%s), using in-memory limiter: %v", cfg.Redis.Addr(), err)
			_ = limiterRedis.Close()
			limiterRedis = nil
		} else {
			defer func() { _ = limiterRedis.Close() }()
		}
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	r, err := newRouter(&app{cfg: cfg, engine: backend.Engine, sessions: sess, repo: repo, limiterRedis: limiterRedis})
	if err != nil {
		logger.Fatalf("failed to build router: %v", err)
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting collections service on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Errorf("server failed: %v", err)
	case <-ctx.Done():
		logger.Infof("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}
