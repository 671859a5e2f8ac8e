package service

import (
	"context"
	"errors"
	"time"

	"jonglaw/internal/dto"
	"jonglaw/internal/models"
	"jonglaw/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrReportNotFound  = errors.New("report not found")
	ErrReportForbidden = errors.New("report belongs to another user")
)

// ReportService persists generated reports and drives the follow-up
// conversation attached to each one.
type ReportService struct {
	reportRepo *repository.ReportRepository
	rag        *RAGService
	logger     *zap.Logger
}

func NewReportService(reportRepo *repository.ReportRepository, rag *RAGService, logger *zap.Logger) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		rag:        rag,
		logger:     logger,
	}
}

// SaveReport stores a pipeline result as a report for its user.
func (s *ReportService) SaveReport(ctx context.Context, userID uuid.UUID, query string, result *QueryResult) (*models.Report, error) {
	report := &models.Report{
		ID:        uuid.New(),
		UserID:    userID,
		Query:     query,
		Answer:    result.Answer,
		Engine:    result.Engine,
		Sources:   result.Sources,
		CreatedAt: time.Now(),
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *ReportService) ListReports(ctx context.Context, userID uuid.UUID) ([]*models.Report, error) {
	return s.reportRepo.ListByUser(ctx, userID)
}

// GetReport fetches one report, visible only to its owner.
func (s *ReportService) GetReport(ctx context.Context, reportID, userID uuid.UUID) (*models.Report, error) {
	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report == nil || report.UserID != userID {
		return nil, ErrReportNotFound
	}
	return report, nil
}

func (s *ReportService) DeleteReport(ctx context.Context, reportID, userID uuid.UUID) error {
	deleted, err := s.reportRepo.Delete(ctx, reportID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrReportNotFound
	}
	return nil
}

// Followup answers a question against a stored report and appends both
// the question and the answer to the report's chat history. Ownership
// violations are reported distinctly from a missing report.
func (s *ReportService) Followup(ctx context.Context, reportID, userID uuid.UUID, query string) (*dto.FollowupResponse, error) {
	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrReportNotFound
	}
	if report.UserID != userID {
		return nil, ErrReportForbidden
	}

	answer, model, err := s.rag.QueryFollowup(ctx, query, report.Answer, report.ChatHistory)
	if err != nil {
		return nil, err
	}

	history := append(report.ChatHistory,
		models.ChatTurn{Role: "user", Content: query},
		models.ChatTurn{Role: "assistant", Content: answer},
	)
	if err := s.reportRepo.AppendChatHistory(ctx, report.ID, history); err != nil {
		s.logger.Error("failed to persist chat history",
			zap.String("report_id", report.ID.String()), zap.Error(err))
	}

	return &dto.FollowupResponse{Answer: answer, Model: model}, nil
}
