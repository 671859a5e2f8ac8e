package repository

import (
	"context"
	"encoding/json"

	"jonglaw/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ReportRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewReportRepository(db *pgxpool.Pool, logger *zap.Logger) *ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	sources, err := json.Marshal(report.Sources)
	if err != nil {
		return err
	}
	history, err := json.Marshal(report.ChatHistory)
	if err != nil {
		return err
	}

	query := squirrel.Insert("reports").
		Columns("id", "user_id", "query", "answer", "engine", "sources", "chat_history", "created_at").
		Values(report.ID, report.UserID, report.Query, report.Answer, report.Engine, sources, history, report.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	query := squirrel.Select("id", "user_id", "query", "answer", "engine", "sources", "chat_history", "created_at").
		From("reports").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return r.scanReport(r.db.QueryRow(ctx, sql, args...))
}

func (r *ReportRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Report, error) {
	query := squirrel.Select("id", "user_id", "query", "answer", "engine", "sources", "chat_history", "created_at").
		From("reports").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		report, err := r.scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

func (r *ReportRepository) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	query := squirrel.Delete("reports").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
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

// AppendChatHistory replaces the stored follow-up history with the given
// turns. Callers append to the loaded history and pass the full list.
func (r *ReportRepository) AppendChatHistory(ctx context.Context, id uuid.UUID, history []models.ChatTurn) error {
	data, err := json.Marshal(history)
	if err != nil {
		return err
	}

	query := squirrel.Update("reports").
		Set("chat_history", data).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ReportRepository) scanReport(row rowScanner) (*models.Report, error) {
	var report models.Report
	var sources, history []byte

	err := row.Scan(
		&report.ID, &report.UserID, &report.Query, &report.Answer,
		&report.Engine, &sources, &history, &report.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(sources) > 0 {
		if err := json.Unmarshal(sources, &report.Sources); err != nil {
			return nil, err
		}
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &report.ChatHistory); err != nil {
			return nil, err
		}
	}

	return &report, nil
}
