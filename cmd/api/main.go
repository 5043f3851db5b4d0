package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillcam-io/skillcam-api/internal/config"
	"github.com/skillcam-io/skillcam-api/internal/database"
	"github.com/skillcam-io/skillcam-api/internal/handler"
	"github.com/skillcam-io/skillcam-api/internal/middleware"
	"github.com/skillcam-io/skillcam-api/internal/models"
	"github.com/skillcam-io/skillcam-api/internal/repository"
	"github.com/skillcam-io/skillcam-api/internal/router"
	"github.com/skillcam-io/skillcam-api/internal/service"
	"github.com/skillcam-io/skillcam-api/pkg/ai"
	"github.com/skillcam-io/skillcam-api/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Submission{},
		&models.AIEvaluation{},
		&models.TrainerFeedback{},
		&models.WaitlistEntry{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis is optional; without it list caching is disabled.
	var cache *service.SubmissionCache
	if cfg.RedisURL != "" {
		redisClient, err := database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		cache = service.NewSubmissionCache(redisClient, cfg.ListCacheTTL, logger)
	}

	store, err := storage.New(storage.Config{
		Endpoint:       cfg.StorageEndpoint,
		AccessKey:      cfg.StorageAccessKey,
		SecretKey:      cfg.StorageSecretKey,
		UseSSL:         cfg.StorageUseSSL,
		PublicEndpoint: cfg.StoragePublicEndpoint,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create storage client: %v", err)
	}

	bucketCtx, cancelBuckets := context.WithTimeout(context.Background(), 15*time.Second)
	if err := store.EnsureBuckets(bucketCtx); err != nil {
		cancelBuckets()
		log.Fatalf("failed to prepare storage buckets: %v", err)
	}
	cancelBuckets()

	// The AI evaluator is optional; without an API key the analyze endpoint
	// reports itself unavailable.
	var evaluator ai.Evaluator
	if cfg.OpenAIAPIKey != "" {
		openAIEvaluator, err := ai.NewOpenAIEvaluator(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.AIModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create ai evaluator: %v", err)
		}
		evaluator = openAIEvaluator
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	waitlistRepo := repository.NewWaitlistRepository(db)

	userService := service.NewUserService(userRepo, logger)
	waitlistService := service.NewWaitlistService(waitlistRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, evaluationRepo, feedbackRepo, validate, cache, logger)
	evaluationService := service.NewEvaluationService(evaluationRepo, submissionRepo, validate, cache, logger)
	feedbackService := service.NewFeedbackService(feedbackRepo, submissionRepo, validate, cache, logger)
	uploadService := service.NewUploadService(store, userRepo, validate, cfg.MaxVideoUploadMB, cfg.SignedReadTTL, cfg.SignedUploadTTL, logger)
	analysisService := service.NewAnalysisService(submissionRepo, evaluationRepo, store, evaluator, cfg.SignedReadTTL, cache, logger)

	healthHandler := handler.NewHealthHandler(cfg.AppName, cfg.AppEnv)
	waitlistHandler := handler.NewWaitlistHandler(waitlistService, logger)
	userHandler := handler.NewUserHandler(userService, validate, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, analysisService, logger)
	evaluationHandler := handler.NewEvaluationHandler(evaluationService, submissionService, logger)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService, logger)
	uploadHandler := handler.NewUploadHandler(uploadService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.MaxVideoUploadMB + 1) << 20,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		HealthHandler:     healthHandler,
		WaitlistHandler:   waitlistHandler,
		UserHandler:       userHandler,
		SubmissionHandler: submissionHandler,
		EvaluationHandler: evaluationHandler,
		FeedbackHandler:   feedbackHandler,
		UploadHandler:     uploadHandler,
		AuthMiddleware:    middleware.Authenticate(cfg.AuthJWTSecret, userService),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
