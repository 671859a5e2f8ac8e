package repository

import (
	"context"

	"jonglaw/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// WatchRepository applies the results of a watch scan. All notifications
// and subscription date bumps accumulated during one scan land in a
// single transaction, so a scan either fully records or leaves no trace.
type WatchRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewWatchRepository(db *pgxpool.Pool, logger *zap.Logger) *WatchRepository {
	return &WatchRepository{
		db:     db,
		logger: logger,
	}
}

func (r *WatchRepository) CommitScan(ctx context.Context, notifications []*models.Notification, updated []*models.Subscription) error {
	if len(notifications) == 0 && len(updated) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, n := range notifications {
		query := squirrel.Insert("notifications").
			Columns("id", "user_id", "type", "title", "message", "is_read", "link", "created_at").
			Values(n.ID, n.UserID, n.Type, n.Title, n.Message, n.IsRead, n.Link, n.CreatedAt).
			PlaceholderFormat(squirrel.Dollar)

		sql, args, err := query.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}
	}

	for _, sub := range updated {
		query := squirrel.Update("subscriptions").
			Set("last_enforced_date", sub.LastEnforcedDate).
			Set("mst", sub.MST).
			Where(squirrel.Eq{"id": sub.ID}).
			PlaceholderFormat(squirrel.Dollar)

		sql, args, err := query.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	r.logger.Info("watch scan committed",
		zap.Int("notifications", len(notifications)),
		zap.Int("subscriptions_updated", len(updated)))
	return nil
}
