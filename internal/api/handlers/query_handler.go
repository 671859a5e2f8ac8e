package handlers

import (
	"jonglaw/internal/dto"
	"jonglaw/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QueryHandler drives the main ask-a-question flow: auto-sync of the
// laws and precedents a query needs, then the retrieval pipeline, then
// optional report persistence.
type QueryHandler struct {
	ragService    *service.RAGService
	syncService   *service.SyncService
	reportService *service.ReportService
	logger        *zap.Logger
}

func NewQueryHandler(ragService *service.RAGService, syncService *service.SyncService, reportService *service.ReportService, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		ragService:    ragService,
		syncService:   syncService,
		reportService: reportService,
		logger:        logger,
	}
}

// Query godoc
// @Summary Ask a legal question
// @Description Run the retrieval pipeline for a question. Works anonymously; report-type answers are saved to history for authenticated users.
// @Tags query
// @Accept json
// @Produce json
// @Param request body dto.QueryRequest true "Query request"
// @Success 200 {object} dto.QueryResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /query [post]
func (h *QueryHandler) Query(c *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := c.BodyParser(&req); err != nil || req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx := c.Context()

	requiredLaws, err := h.ragService.DetectRequiredLaws(ctx, req.Query)
	if err != nil {
		h.logger.Error("required-law detection failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Query failed",
		})
	}
	h.syncService.EnsureLaws(ctx, requiredLaws)
	h.syncService.SyncPrecedents(ctx, req.Query)

	result, err := h.ragService.Query(ctx, req.Query, requiredLaws)
	if err != nil {
		h.logger.Error("query pipeline failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Query failed",
		})
	}

	resp := dto.QueryResponse{
		Answer:  result.Answer,
		Sources: result.Sources,
		Intent:  result.Intent,
		Engine:  result.Engine,
	}

	// Reports are only persisted for logged-in users.
	if userID, ok := userIDFromCtx(c); ok && result.Intent == service.IntentReport {
		report, err := h.reportService.SaveReport(ctx, userID, req.Query, result)
		if err != nil {
			h.logger.Error("failed to save report", zap.Error(err))
		} else {
			resp.ReportID = report.ID.String()
		}
	}

	return c.JSON(resp)
}
