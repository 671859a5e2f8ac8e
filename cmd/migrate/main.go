package main

import (
	"context"
	"log"

	"jonglaw/pkg/config"
	"jonglaw/pkg/logger"
	"jonglaw/pkg/postgres"

	"go.uber.org/zap"
)

// Schema setup for a fresh database. Statements are idempotent so the
// tool can run repeatedly.
var statements = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		nickname TEXT NOT NULL,
		password TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS reports (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		query TEXT NOT NULL,
		answer TEXT NOT NULL,
		engine TEXT NOT NULL DEFAULT '',
		sources JSONB NOT NULL DEFAULT '[]',
		chat_history JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS reports_user_created_idx ON reports (user_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS subscriptions (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		law_name TEXT NOT NULL,
		mst TEXT NOT NULL DEFAULT '',
		last_enforced_date TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, law_name)
	)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		link TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_user_created_idx ON notifications (user_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS documents (
		id UUID PRIMARY KEY,
		content TEXT NOT NULL,
		metadata JSONB NOT NULL DEFAULT '{}',
		embedding vector(3072),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS documents_metadata_mst_idx ON documents ((metadata->>'mst'))`,
	`CREATE INDEX IF NOT EXISTS documents_metadata_source_idx ON documents ((metadata->>'source'))`,
	// ivfflat/hnsw cap out at 2000 dims; index the halfvec cast instead.
	`CREATE INDEX IF NOT EXISTS documents_embedding_idx
		ON documents USING hnsw ((embedding::halfvec(3072)) halfvec_cosine_ops)`,
}

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

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			appLogger.Fatal("Migration statement failed",
				zap.String("statement", stmt), zap.Error(err))
		}
	}

	appLogger.Info("Migration completed", zap.Int("statements", len(statements)))
}
