package handlers

import (
	"time"

	"jonglaw/internal/dto"
	"jonglaw/internal/models"
	"jonglaw/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type HistoryHandler struct {
	reportService *service.ReportService
	logger        *zap.Logger
}

func NewHistoryHandler(reportService *service.ReportService, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// List godoc
// @Summary List report history
// @Description List the authenticated user's reports, newest first
// @Tags history
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ReportResponse
// @Failure 401 {object} map[string]string
// @Router /history [get]
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	reports, err := h.reportService.ListReports(c.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list reports", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load history"})
	}

	resp := make([]dto.ReportResponse, 0, len(reports))
	for _, r := range reports {
		resp = append(resp, toReportResponse(r))
	}
	return c.JSON(resp)
}

// Get godoc
// @Summary Get one report
// @Description Fetch a single report with its follow-up history
// @Tags history
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} dto.ReportResponse
// @Failure 404 {object} map[string]string
// @Router /history/{id} [get]
func (h *HistoryHandler) Get(c *fiber.Ctx) error {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid report id"})
	}

	report, err := h.reportService.GetReport(c.Context(), reportID, userID)
	if err != nil {
		if err == service.ErrReportNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Report not found"})
		}
		h.logger.Error("failed to load report", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load report"})
	}
	return c.JSON(toReportResponse(report))
}

// Delete godoc
// @Summary Delete a report
// @Tags history
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /history/{id} [delete]
func (h *HistoryHandler) Delete(c *fiber.Ctx) error {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid report id"})
	}

	if err := h.reportService.DeleteReport(c.Context(), reportID, userID); err != nil {
		if err == service.ErrReportNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Report not found"})
		}
		h.logger.Error("failed to delete report", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete report"})
	}
	return c.JSON(fiber.Map{"message": "Report deleted successfully"})
}

// Followup godoc
// @Summary Follow-up chat on a report
// @Description Ask a deeper question about a previously generated report
// @Tags history
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param request body dto.FollowupRequest true "Follow-up question"
// @Success 200 {object} dto.FollowupResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /chat/report/{id} [post]
func (h *HistoryHandler) Followup(c *fiber.Ctx) error {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid report id"})
	}

	var req dto.FollowupRequest
	if err := c.BodyParser(&req); err != nil || req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	resp, err := h.reportService.Followup(c.Context(), reportID, userID, req.Query)
	if err != nil {
		switch err {
		case service.ErrReportNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Report not found"})
		case service.ErrReportForbidden:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not have permission to view this report"})
		}
		h.logger.Error("follow-up failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Follow-up failed"})
	}
	return c.JSON(resp)
}

func toReportResponse(r *models.Report) dto.ReportResponse {
	return dto.ReportResponse{
		ID:          r.ID.String(),
		Query:       r.Query,
		Answer:      r.Answer,
		Engine:      r.Engine,
		Sources:     r.Sources,
		ChatHistory: r.ChatHistory,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
}
