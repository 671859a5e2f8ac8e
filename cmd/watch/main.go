package main

import (
	"context"
	"log"

	"jonglaw/internal/repository"
	"jonglaw/internal/service"
	"jonglaw/pkg/config"
	"jonglaw/pkg/lawapi"
	"jonglaw/pkg/logger"
	"jonglaw/pkg/postgres"

	"go.uber.org/zap"
)

// One-shot legal watch scan, meant to run from cron. The HTTP endpoint
// triggers the same scan; this binary exists so scheduling does not
// depend on the API being exposed.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	lawClient := lawapi.NewClient(&cfg.LawAPI, appLogger)
	subscriptionRepo := repository.NewSubscriptionRepository(db, appLogger)
	notificationRepo := repository.NewNotificationRepository(db, appLogger)
	watchRepo := repository.NewWatchRepository(db, appLogger)

	watchService := service.NewWatchService(lawClient, subscriptionRepo, notificationRepo, watchRepo, appLogger)

	updates, err := watchService.CheckUpdates(ctx)
	if err != nil {
		appLogger.Fatal("Watch scan failed", zap.Error(err))
	}

	appLogger.Info("Watch scan finished", zap.Int("updates_found", len(updates)))
	for _, u := range updates {
		appLogger.Info("law updated",
			zap.String("law", u.LawName),
			zap.String("new_date", u.NewDate),
			zap.String("amendment_type", u.AmendmentType))
	}
}
