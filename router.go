package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gogotex/collections/handlers"
	"github.com/gogotex/collections/internal/collection/handler"
	"github.com/gogotex/collections/internal/collection/repository"
	"github.com/gogotex/collections/internal/collection/service"
	"github.com/gogotex/collections/internal/config"
	"github.com/gogotex/collections/internal/sessions"
	"github.com/gogotex/collections/internal/storage"
	"github.com/gogotex/collections/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

// app bundles what the router needs.
type app struct {
	cfg      *config.Config
	engine   storage.Engine
	sessions *sessions.Service
	repo     repository.Repository
	// limiterRedis backs the redis rate limiter; nil falls back to memory.
	limiterRedis *redis.Client
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}

func newRouter(a *app) (*gin.Engine, error) {
	tmpl, err := handlers.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(corsConfig(a.cfg.CORS.AllowedOrigins)))
	r.Use(middleware.RequestID())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: the storage engine must answer a ping
	r.GET("/ready", func(c *gin.Context) {
		uptime := time.Since(startTime).String()
		if err := a.engine.Ping(c.Request.Context()); err != nil {
			middleware.Log(c).Warnf("readiness: %s ping failed: %v", a.engine.Name(), err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": gin.H{"storage": false}, "engine": a.engine.Name(), "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": gin.H{"storage": true}, "engine": a.engine.Name(), "uptime": uptime})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterSwagger(r)

	// everything below reads the session
	sessioned := r.Group("")
	sessioned.Use(middleware.SessionUser(a.sessions))
	if a.cfg.RateLimit.Enabled {
		if a.cfg.RateLimit.UseRedis && a.limiterRedis != nil {
			win := time.Duration(a.cfg.RateLimit.WindowSeconds) * time.Second
			sessioned.Use(middleware.RedisRateLimitMiddleware(a.limiterRedis, a.cfg.RateLimit.RPS, a.cfg.RateLimit.Burst, win))
		} else {
			sessioned.Use(middleware.RateLimitMiddleware(a.cfg.RateLimit.RPS, a.cfg.RateLimit.Burst))
		}
	}

	svc := service.New(a.repo, service.WithDemoSeed(a.cfg.Demo.Seed))
	handlers.NewPageHandler(svc).Register(sessioned)
	handlers.NewSessionHandler(a.sessions).Register(sessioned)
	handler.RegisterCollectionRoutes(sessioned, svc)
	return r, nil
}
