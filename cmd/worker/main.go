package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"classrecord/internal/attendance"
	"classrecord/internal/cache"
	"classrecord/internal/config"
	"classrecord/internal/queue"
	"classrecord/internal/store"
	"classrecord/internal/worker"
)

// Worker consumes attendance events, recomputes section statistics into the
// shared cache and reports students under the attendance threshold.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		log.Println("warning: memory queue only receives events published in this process")
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, queue.DefaultKey)
	}

	svc := attendance.NewService(
		attendance.NewRepository(db.Client),
		cache.NewRedisStats(redisClient.Client, cfg.StatsCacheTTL),
		nil,
	)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	worker.New(svc, cfg.LowAttendanceThreshold).Run(ctx, messages)
	log.Println("worker stopped")
}
