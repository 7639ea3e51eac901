package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"classrecord/internal/attendance"
	"classrecord/internal/auth"
	"classrecord/internal/cache"
	"classrecord/internal/config"
	"classrecord/internal/httpapi"
	"classrecord/internal/httpmiddleware"
	"classrecord/internal/metrics"
	"classrecord/internal/queue"
	"classrecord/internal/store"
	"classrecord/internal/worker"
)

func main() {
	cfg := config.Load()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx := context.Background()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var q queue.Queue
	var memQueue *queue.InMemory
	if cfg.QueueBackend == "memory" {
		memQueue = queue.NewInMemory(64)
		q = memQueue
	} else {
		q = queue.NewRedisQueue(redisClient.Client, queue.DefaultKey)
	}

	var stats attendance.StatsCache
	if redisClient.Healthy(ctx) {
		stats = cache.NewRedisStats(redisClient.Client, cfg.StatsCacheTTL)
	} else {
		log.Printf("warning: redis not reachable at %s, using in-process stats cache", cfg.RedisAddr)
		stats = cache.NewMemory(cfg.StatsCacheTTL)
	}

	var limiter httpmiddleware.Limiter
	if cfg.RateLimitBackend == "redis" {
		limiter = httpmiddleware.NewRedisWindow(redisClient.Client, cfg.RateLimitPerMin)
	} else {
		limiter = httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	}

	svc := attendance.NewService(attendance.NewRepository(db.Client), stats, q)

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	if memQueue != nil {
		// The memory queue is only visible here, so its consumer runs in-process.
		messages, err := memQueue.Consume(workerCtx)
		if err != nil {
			return err
		}
		go worker.New(svc, cfg.LowAttendanceThreshold).Run(workerCtx, messages)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))
	r.Use(httpmiddleware.SecurityHeaders(cfg.Production()))
	r.Use(httpmiddleware.RateLimit(limiter))
	r.Use(metrics.GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Healthy(c.Request.Context())
		status := http.StatusOK
		if !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	api := r.Group("/api")
	httpapi.Register(api, httpapi.New(svc), auth.Bearer(cfg.JWTSigningKey, cfg.JWTIssuer))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}
