package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-storeops-service/config"
	"github.com/fekuna/omnipos-storeops-service/pkg/broker"
	"github.com/fekuna/omnipos-storeops-service/pkg/cache"
	"github.com/fekuna/omnipos-storeops-service/pkg/database"
	"github.com/fekuna/omnipos-storeops-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-storeops-service/pkg/httpx"
	"github.com/fekuna/omnipos-storeops-service/pkg/i18n"
	"github.com/fekuna/omnipos-storeops-service/pkg/logger"
	"github.com/fekuna/omnipos-storeops-service/pkg/middleware"
	"github.com/fekuna/omnipos-storeops-service/pkg/search"

	catH "github.com/fekuna/omnipos-storeops-service/internal/catalog/handler"
	catListenerPkg "github.com/fekuna/omnipos-storeops-service/internal/catalog/listener"
	catRepoPkg "github.com/fekuna/omnipos-storeops-service/internal/catalog/repository"
	catUCPkg "github.com/fekuna/omnipos-storeops-service/internal/catalog/usecase"

	milkH "github.com/fekuna/omnipos-storeops-service/internal/milkorder/handler"
	milkRepoPkg "github.com/fekuna/omnipos-storeops-service/internal/milkorder/repository"
	milkUCPkg "github.com/fekuna/omnipos-storeops-service/internal/milkorder/usecase"

	rtdeH "github.com/fekuna/omnipos-storeops-service/internal/rtde/handler"
	rtdeRepoPkg "github.com/fekuna/omnipos-storeops-service/internal/rtde/repository"
	"github.com/fekuna/omnipos-storeops-service/internal/rtde/sweeper"
	rtdeUCPkg "github.com/fekuna/omnipos-storeops-service/internal/rtde/usecase"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
	}
	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Initialize i18n
	if err := i18n.Init(); err != nil {
		appLogger.Fatal("Could not load locale files", zap.Error(err))
	}

	// 4. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		appLogger.Fatal("Could not migrate database", zap.Error(err))
	}

	// 5. Initialize Redis
	var (
		store  cache.Store
		locker cache.Locker
	)
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Redis, using in-process cache and locks", zap.Error(err))
		mem := cache.NewMemoryCache()
		store, locker = mem, mem
	} else {
		defer redisClient.Close()
		store, locker = redisClient, redisClient
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// 6. Initialize Kafka
	var publisher broker.Publisher = broker.NopPublisher{}
	if cfg.Kafka.EnableEvents {
		producer := broker.NewProducer(&broker.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.EventsTopic})
		defer producer.Close()
		publisher = producer
		appLogger.Info("Kafka producer ready", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.EventsTopic))
	}

	// 7. Initialize Elasticsearch
	var indexer catUCPkg.Indexer
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch (catalog search uses the database)", zap.Error(err))
	} else {
		indexer = esClient
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 8. Initialize Repositories
	catRepo := catRepoPkg.NewPGRepository(db)
	milkRepo := milkRepoPkg.NewPGRepository(db)
	rtdeRepo := rtdeRepoPkg.NewPGRepository(db)

	// 9. Initialize UseCases
	catUC := catUCPkg.NewCatalogUseCase(catRepo, store, indexer, appLogger)
	milkUC := milkUCPkg.NewMilkOrderUseCase(milkRepo, catUC, locker, publisher, appLogger,
		milkUCPkg.WithLocation(cfg.Server.Location()))
	rtdeUC := rtdeUCPkg.NewRTDEUseCase(rtdeRepo, catUC, locker, publisher, appLogger,
		rtdeUCPkg.WithTTL(cfg.Session.RTDETTL))

	// 10. Start background workers
	if cfg.Kafka.EnableCatalog {
		consumer := broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.CatalogTopic,
			GroupID: cfg.Kafka.CatalogGroup,
		})
		defer consumer.Close()
		go catListenerPkg.NewCatalogListener(consumer, catUC, appLogger).Start(ctx)
	}
	if cfg.Session.SweepEnabled {
		go sweeper.NewSweeper(rtdeRepo, locker, cfg.Session.SweepInterval, appLogger).Start(ctx)
	}

	// 11. Initialize Handlers
	api := http.NewServeMux()
	catH.NewCatalogHandler(catUC, appLogger).Register(api)
	milkH.NewMilkOrderHandler(milkUC, appLogger).Register(api)
	rtdeH.NewRTDEHandler(rtdeUC, appLogger).Register(api)

	jwtAuth := middleware.NewJWTAuth(cfg.JWT.SecretKey, httpx.Unauthorized)
	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", healthz(db))
	root.Handle("/api/", jwtAuth.Middleware(api))

	// 12. Start HTTP Server
	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	srv := &http.Server{
		Addr:              port,
		Handler:           middleware.RequestLogger(appLogger)(root),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

func healthz(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
