// cmd/historian/main.go drains resolved rounds from the Redis history queue and
// archives them to Postgres.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/cardparty/internal/cache"
	"github.com/jason-s-yu/cardparty/internal/config"
	"github.com/jason-s-yu/cardparty/internal/database"
	"github.com/jason-s-yu/cardparty/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := cfg.NewLogger()
	if cfg.RedisAddr == "" || cfg.DatabaseURL == "" {
		logger.Fatal("REDIS_ADDR and DATABASE_URL are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	store := database.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatalf("postgres: %v", err)
	}

	queue := cache.NewRoundQueue(rdb, cfg.HistoryQueue)
	svc := historian.New(queue, store, historian.Options{
		BatchSize:  cfg.HistorianBatchSize,
		FlushDelay: cfg.HistorianFlush,
	}, logger)

	logger.Infof("draining %q into round_results", queue.Name())
	svc.Run(ctx)
	logger.Info("Historian shutdown complete.")
}
