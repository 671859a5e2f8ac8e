package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"jonglaw/internal/api"
	"jonglaw/internal/api/handlers"
	"jonglaw/internal/repository"
	"jonglaw/internal/service"
	"jonglaw/pkg/auth"
	"jonglaw/pkg/config"
	"jonglaw/pkg/lawapi"
	"jonglaw/pkg/logger"
	"jonglaw/pkg/postgres"

	"go.uber.org/zap"
)

// @title JongLaw AI API
// @version 1.0
// @description Legal research assistant: RAG-backed legal Q&A over Korean statutes and precedents, report history and law watch notifications

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting JongLaw AI service")

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	reportRepo := repository.NewReportRepository(db, appLogger)
	subscriptionRepo := repository.NewSubscriptionRepository(db, appLogger)
	notificationRepo := repository.NewNotificationRepository(db, appLogger)
	watchRepo := repository.NewWatchRepository(db, appLogger)
	vectorRepo := repository.NewVectorRepository(db, appLogger)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)
	lawClient := lawapi.NewClient(&cfg.LawAPI, appLogger)

	gemini, err := service.NewGeminiProvider(ctx, cfg.Gemini, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize Gemini client", zap.Error(err))
	}
	defer gemini.Close()

	// Services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)
	cache := service.NewMetadataCache(vectorRepo, cfg.RAG.MetadataScanSize, appLogger)
	processor := service.NewDocumentProcessor()
	ragService := service.NewRAGService(
		gemini.ChatModel(), gemini.ReportModel(), gemini.Embedder(),
		vectorRepo, cache, cfg.RAG, appLogger,
	)
	syncService := service.NewSyncService(lawClient, ragService, processor, appLogger)
	reportService := service.NewReportService(reportRepo, ragService, appLogger)
	visionService := service.NewVisionService(gemini.VisionModel(), gemini.ChatModel(), appLogger)
	watchService := service.NewWatchService(lawClient, subscriptionRepo, notificationRepo, watchRepo, appLogger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	queryHandler := handlers.NewQueryHandler(ragService, syncService, reportService, appLogger)
	historyHandler := handlers.NewHistoryHandler(reportService, appLogger)
	lawHandler := handlers.NewLawHandler(lawClient, ragService, appLogger)
	uploadHandler := handlers.NewUploadHandler(ragService, processor, visionService, appLogger)
	watchHandler := handlers.NewWatchHandler(watchService, appLogger)

	app := api.SetupRouter(
		authHandler, queryHandler, historyHandler,
		lawHandler, uploadHandler, watchHandler,
		jwtManager, appLogger,
	)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
