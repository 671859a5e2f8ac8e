package handlers

import (
	"strconv"

	"jonglaw/internal/dto"
	"jonglaw/internal/service"
	"jonglaw/pkg/lawapi"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type LawHandler struct {
	lawClient  *lawapi.Client
	ragService *service.RAGService
	logger     *zap.Logger
}

func NewLawHandler(lawClient *lawapi.Client, ragService *service.RAGService, logger *zap.Logger) *LawHandler {
	return &LawHandler{
		lawClient:  lawClient,
		ragService: ragService,
		logger:     logger,
	}
}

// Search godoc
// @Summary Search laws
// @Description Search statutes by name via the national law API
// @Tags laws
// @Produce json
// @Param query query string true "Search text"
// @Param page query int false "Page number"
// @Success 200 {array} lawapi.LawSummary
// @Failure 400 {object} map[string]string
// @Router /laws/search [get]
func (h *LawHandler) Search(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query is required"})
	}

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	results, err := h.lawClient.SearchLaws(c.Context(), query, page)
	if err != nil {
		h.logger.Error("law search failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Law search failed"})
	}
	return c.JSON(results)
}

// GetArticle godoc
// @Summary Get one article of a law
// @Description Return the indexed text of a specific article
// @Tags laws
// @Produce json
// @Param law_name query string true "Law name"
// @Param article_no query string true "Article number, e.g. 제750조"
// @Success 200 {object} dto.ArticleResponse
// @Failure 404 {object} map[string]string
// @Router /laws/article [get]
func (h *LawHandler) GetArticle(c *fiber.Ctx) error {
	lawName := c.Query("law_name")
	articleNo := c.Query("article_no")
	if lawName == "" || articleNo == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "law_name and article_no are required"})
	}

	text, err := h.ragService.GetArticleText(c.Context(), lawName, articleNo)
	if err != nil {
		h.logger.Error("article lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Article lookup failed"})
	}
	if text == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Article not found"})
	}
	return c.JSON(dto.ArticleResponse{Text: text})
}

// Synced godoc
// @Summary List synced law identifiers
// @Description List the serial numbers of laws currently in the index
// @Tags laws
// @Produce json
// @Success 200 {array} string
// @Router /laws/synced [get]
func (h *LawHandler) Synced(c *fiber.Ctx) error {
	return c.JSON(h.ragService.SyncedMSTs(c.Context()))
}

// Recommend godoc
// @Summary Recommend laws for a case
// @Description Suggest up to ten statutes relevant to a case description
// @Tags laws
// @Accept json
// @Produce json
// @Param request body dto.RecommendLawsRequest true "Case description"
// @Success 200 {array} string
// @Failure 400 {object} map[string]string
// @Router /laws/recommend [post]
func (h *LawHandler) Recommend(c *fiber.Ctx) error {
	var req dto.RecommendLawsRequest
	if err := c.BodyParser(&req); err != nil || req.Case == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	laws, err := h.ragService.RecommendLaws(c.Context(), req.Case)
	if err != nil {
		h.logger.Error("law recommendation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Recommendation failed"})
	}
	return c.JSON(laws)
}
