package repository

import (
	"context"
	"errors"

	"jonglaw/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type SubscriptionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSubscriptionRepository(db *pgxpool.Pool, logger *zap.Logger) *SubscriptionRepository {
	return &SubscriptionRepository{
		db:     db,
		logger: logger,
	}
}

const subscriptionColumns = "id, user_id, law_name, mst, last_enforced_date, created_at"

func (r *SubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	query := squirrel.Insert("subscriptions").
		Columns("id", "user_id", "law_name", "mst", "last_enforced_date", "created_at").
		Values(sub.ID, sub.UserID, sub.LawName, sub.MST, sub.LastEnforcedDate, sub.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *SubscriptionRepository) GetByUserAndLaw(ctx context.Context, userID uuid.UUID, lawName string) (*models.Subscription, error) {
	query := squirrel.Select(subscriptionColumns).
		From("subscriptions").
		Where(squirrel.Eq{"user_id": userID, "law_name": lawName}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var sub models.Subscription
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&sub.ID, &sub.UserID, &sub.LawName, &sub.MST, &sub.LastEnforcedDate, &sub.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Subscription, error) {
	return r.list(ctx, squirrel.Eq{"user_id": userID})
}

// ListAll returns every subscription across all users for the watch scan.
func (r *SubscriptionRepository) ListAll(ctx context.Context) ([]*models.Subscription, error) {
	return r.list(ctx, nil)
}

func (r *SubscriptionRepository) list(ctx context.Context, where any) ([]*models.Subscription, error) {
	query := squirrel.Select(subscriptionColumns).
		From("subscriptions").
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar)
	if where != nil {
		query = query.Where(where)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		var sub models.Subscription
		if err := rows.Scan(
			&sub.ID, &sub.UserID, &sub.LawName, &sub.MST, &sub.LastEnforcedDate, &sub.CreatedAt,
		); err != nil {
			return nil, err
		}
		subs = append(subs, &sub)
	}

	return subs, rows.Err()
}

func (r *SubscriptionRepository) Delete(ctx context.Context, userID uuid.UUID, lawName string) (bool, error) {
	query := squirrel.Delete("subscriptions").
		Where(squirrel.Eq{"user_id": userID, "law_name": lawName}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
