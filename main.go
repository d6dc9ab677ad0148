package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/johnlemossilva-pixel/mini-royale-backend/handlers"
	"github.com/johnlemossilva-pixel/mini-royale-backend/middleware"
	"github.com/johnlemossilva-pixel/mini-royale-backend/models"
	"github.com/johnlemossilva-pixel/mini-royale-backend/services"
	"github.com/johnlemossilva-pixel/mini-royale-backend/utils"
	"github.com/johnlemossilva-pixel/mini-royale-backend/workers"

	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}

	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()

	policy, err := services.ParseMalformedPolicy(cfg.MalformedPolicy)
	if err != nil {
		logger.Fatal("invalid MATCH_MALFORMED_POLICY", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to get database handle", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := db.AutoMigrate(
		&models.Player{},
		&models.MatchRecord{},
		&models.MatchOutcomeRecord{},
	); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormStore := services.NewGormPlayerStore(db, cfg.StoreTimeout)
	checks := map[string]handlers.Pinger{"database": gormStore}

	var store services.PlayerStore = gormStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		cached := services.NewCachedPlayerStore(gormStore, rdb, cfg.ProfileCacheTTL, logger.Named("cache"))
		store = cached
		checks["cache"] = cached
		logger.Info("profile cache enabled", zap.Duration("ttl", cfg.ProfileCacheTTL))
	}

	history := services.NewGormMatchLog(db, cfg.StoreTimeout)
	resolver := services.NewResolver(services.NewRandomSource(), policy)
	playerService := services.NewPlayerService(store, logger.Named("players"))
	matchService := services.NewMatchService(store, resolver, history, logger.Named("matches"))

	var sched gocron.Scheduler
	if cfg.ArchiveEnabled() {
		bucket, err := utils.NewR2Bucket(ctx, cfg.R2)
		if err != nil {
			logger.Fatal("failed to initialize R2 client", zap.Error(err))
		}
		archiver := workers.NewMatchArchiver(db, bucket, cfg.ArchiveAfter, cfg.ArchiveBatch, logger.Named("archiver"))
		sched, err = workers.StartArchiveScheduler(ctx, archiver, cfg.ArchiveInterval, logger.Named("archiver"))
		if err != nil {
			logger.Fatal("failed to start archive scheduler", zap.Error(err))
		}
		logger.Info("match archiving enabled",
			zap.String("bucket", cfg.R2.Bucket),
			zap.Duration("interval", cfg.ArchiveInterval),
		)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(middleware.RequestContextMiddleware(logger.Named("http")))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, X-Request-ID",
		ExposeHeaders:    "X-Request-ID",
		AllowCredentials: true,
	}))

	handlers.SetupHealthRoutes(app, checks)
	handlers.SetupPlayerRoutes(app, playerService, matchService)
	handlers.SetupMatchRoutes(app, matchService)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("server error", zap.Error(err))
			stop()
		}
	}()
	logger.Info("server running",
		zap.String("port", cfg.Port),
		zap.Strings("cors_origins", cfg.AllowedOrigins),
	)

	<-ctx.Done()
	logger.Info("shutting down server")
	if sched != nil {
		if err := sched.Shutdown(); err != nil {
			logger.Warn("scheduler shutdown", zap.Error(err))
		}
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
}
