package main

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-storeops-service/config"
	"github.com/fekuna/omnipos-storeops-service/internal/rtde/repository"
	"github.com/fekuna/omnipos-storeops-service/internal/rtde/sweeper"
	"github.com/fekuna/omnipos-storeops-service/pkg/cache"
	"github.com/fekuna/omnipos-storeops-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-storeops-service/pkg/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// sweeper removes expired RTD&E sessions once and exits. Run it from cron
// when the API's in-process sweeper is disabled.
func main() {
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	appLogger := logger.NewZapLogger(&logger.ZapLoggerConfig{
		Encoding: "json",
		Level:    cfg.Logger.Level,
	})
	defer appLogger.Sync()

	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()

	var locker cache.Locker
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Redis, sweeping without the shared lock", zap.Error(err))
		locker = cache.NewMemoryCache()
	} else {
		defer redisClient.Close()
		locker = redisClient
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s := sweeper.NewSweeper(repository.NewPGRepository(db), locker, cfg.Session.SweepInterval, appLogger)
	deleted, err := s.RunOnce(ctx)
	if err != nil {
		appLogger.Fatal("Sweep failed", zap.Error(err))
	}
	appLogger.Info("Sweep finished", zap.Int64("deleted", deleted))
}
