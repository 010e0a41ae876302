package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dotwork/testadmin-service/internal/cache"
	"github.com/dotwork/testadmin-service/internal/config"
	"github.com/dotwork/testadmin-service/internal/events"
	"github.com/dotwork/testadmin-service/internal/grader"
	"github.com/dotwork/testadmin-service/internal/handlers"
	"github.com/dotwork/testadmin-service/internal/mailer"
	"github.com/dotwork/testadmin-service/internal/repositories/postgres"
	"github.com/dotwork/testadmin-service/internal/services"
	"github.com/dotwork/testadmin-service/internal/storage"
	"github.com/dotwork/testadmin-service/internal/token"
	"github.com/dotwork/testadmin-service/internal/utils"
	"github.com/dotwork/testadmin-service/internal/validator"
	"github.com/dotwork/testadmin-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var (
		slogBase *slog.Logger
		logger   utils.Logger
	)
	if cfg.Environment == "development" {
		slogBase = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		logger = utils.NewSlogLogger(slogBase)
	} else {
		gin.SetMode(gin.ReleaseMode)
		slogBase = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
		logger = utils.NewSlogLogger(slogBase)
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	ctx := context.Background()

	store, err := storage.NewMinioStore(storage.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		logger.Error("Failed to initialize object storage", "error", err)
		os.Exit(1)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		logger.Error("Failed to ensure screenshot bucket", "error", err)
		os.Exit(1)
	}

	publisher, err := events.NewKafkaPublisher(events.PublisherConfig{
		KafkaBrokers: cfg.KafkaBrokers,
		TopicName:    cfg.KafkaTopic,
		Logger:       slogBase,
	})
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	evaluator, err := grader.NewGeminiEvaluator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	if err != nil {
		logger.Error("Failed to initialize grader", "error", err)
		os.Exit(1)
	}

	inviteCodec, err := token.NewCodec([]byte(cfg.InviteJWTSecret), cfg.InviteEncKey)
	if err != nil {
		logger.Error("Failed to initialize invite codec", "error", err)
		os.Exit(1)
	}
	sessions := token.NewSessionCodec([]byte(cfg.JWTSecret))

	repo := postgres.NewRepository(db)
	cacheSvc := cache.NewRedisCache(redisClient, logger)
	smtpMailer := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, logger)
	v := validator.New()

	testService := services.NewTestService(repo, cacheSvc, publisher, logger, v, cfg.AppBaseURL)
	inviteService := services.NewInviteService(repo, cacheSvc, inviteCodec, sessions, smtpMailer, publisher, logger, v, cfg.AppBaseURL)
	gradingService := services.NewGradingService(repo, evaluator, publisher, logger)
	attemptService := services.NewAttemptService(repo, gradingService, publisher, logger, v)
	userService := services.NewUserService(repo, sessions, smtpMailer, logger, v)
	proctoringService := services.NewProctoringService(repo, store, logger)
	exportService := services.NewExportService(repo, logger)

	handlerManager := handlers.NewHandlerManager(
		userService,
		testService,
		inviteService,
		attemptService,
		gradingService,
		proctoringService,
		exportService,
		sessions,
		logger,
		cfg.Environment == "production",
	)

	router := gin.New()
	router.Use(gin.Recovery())
	handlerManager.SetupRoutes(router, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Server stopped")
}
