package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"phPortfolio/internal/ai"
	"phPortfolio/internal/api"
	"phPortfolio/internal/auth"
	"phPortfolio/internal/cache"
	"phPortfolio/internal/config"
	"phPortfolio/internal/cv"
	"phPortfolio/internal/database"
	"phPortfolio/internal/github"
	"phPortfolio/internal/media"
	"phPortfolio/internal/notify"
	"phPortfolio/internal/storage"
	"phPortfolio/internal/store"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	logger.Info("database ready",
		slog.String("host", cfg.Database.Host),
		slog.String("name", cfg.Database.Name),
	)

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Error("close asynq client failed", slog.Any("error", err))
		}
	}()

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))

	privateKey, err := os.ReadFile(cfg.Auth.PrivateKeyPath)
	if err != nil {
		log.Fatalf("read jwt private key: %v", err)
	}
	publicKey, err := os.ReadFile(cfg.Auth.PublicKeyPath)
	if err != nil {
		log.Fatalf("read jwt public key: %v", err)
	}
	authService, err := auth.NewAuthService(
		privateKey,
		publicKey,
		time.Duration(cfg.Auth.AccessTokenTTLMinutes)*time.Minute,
		time.Duration(cfg.Auth.RefreshTokenTTLHours)*time.Hour,
	)
	if err != nil {
		log.Fatalf("init auth service: %v", err)
	}

	contentStore := store.NewStore(db, logger)
	contentCache := cache.New(redisClient, logger, cache.DefaultTTL)
	mediaService := media.NewService(storageClient, logger, cfg.Media.ClamdAddr, asynqClient)
	ghClient := github.NewClient("", cfg.GitHub.Token)
	aiGenerator := ai.NewGenerator(ai.NewClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.DefaultModel))
	notifier := notify.NewPublisher(redisClient, logger)
	cvBuilder := cv.NewBuilder(contentStore)

	router := api.NewRouter(logger)
	api.RegisterRoutes(router, api.Dependencies{
		Config:      cfg,
		DB:          db,
		Redis:       redisClient,
		AsynqClient: asynqClient,
		Logger:      logger,

		Store:       contentStore,
		Cache:       contentCache,
		Storage:     storageClient,
		Media:       mediaService,
		GitHub:      ghClient,
		AIGenerator: aiGenerator,
		Notifier:    notifier,
		CVBuilder:   cvBuilder,
		AuthService: authService,
	})

	address := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("api listening", slog.String("address", address))
	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}
