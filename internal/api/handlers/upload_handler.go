package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strings"

	"jonglaw/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var imageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// UploadHandler manages user-uploaded PDFs and the contract analysis
// endpoint that accepts both images and PDFs.
type UploadHandler struct {
	ragService    *service.RAGService
	processor     *service.DocumentProcessor
	visionService *service.VisionService
	logger        *zap.Logger
}

func NewUploadHandler(ragService *service.RAGService, processor *service.DocumentProcessor, visionService *service.VisionService, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		ragService:    ragService,
		processor:     processor,
		visionService: visionService,
		logger:        logger,
	}
}

// Upload godoc
// @Summary Upload a PDF document
// @Description Index a PDF so its content is searchable in queries
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF file"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /upload [post]
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only PDF files are supported"})
	}

	content, err := readMultipartFile(fileHeader)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to read file"})
	}

	docs, err := h.processor.ProcessPDF(content, fileHeader.Filename)
	if err != nil {
		h.logger.Error("pdf processing failed", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to process PDF"})
	}

	if err := h.ragService.AddDocuments(c.Context(), docs); err != nil {
		h.logger.Error("failed to index upload", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to index document"})
	}

	return c.JSON(fiber.Map{"message": fmt.Sprintf("File %s uploaded and processed", fileHeader.Filename)})
}

// List godoc
// @Summary List uploaded documents
// @Tags uploads
// @Produce json
// @Success 200 {array} string
// @Router /uploads [get]
func (h *UploadHandler) List(c *fiber.Ctx) error {
	sources, err := h.ragService.ListUserUploads(c.Context())
	if err != nil {
		h.logger.Error("failed to list uploads", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list uploads"})
	}
	if sources == nil {
		sources = []string{}
	}
	return c.JSON(sources)
}

// Delete godoc
// @Summary Delete an uploaded document
// @Tags uploads
// @Produce json
// @Param source path string true "Source file name"
// @Success 200 {object} map[string]string
// @Router /uploads/{source} [delete]
func (h *UploadHandler) Delete(c *fiber.Ctx) error {
	source, err := urlDecodeParam(c, "source")
	if err != nil || source == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "source is required"})
	}

	if err := h.ragService.DeleteUserUpload(c.Context(), source); err != nil {
		h.logger.Error("failed to delete upload", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete upload"})
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("Source %s deleted", source)})
}

// AnalyzeDocument godoc
// @Summary Analyze a contract document
// @Description Review an uploaded contract (image or PDF) for toxic clauses and missing items
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image or PDF file"
// @Param description formData string false "Additional context from the user"
// @Success 200 {object} dto.AnalyzeDocumentResponse
// @Failure 400 {object} map[string]string
// @Router /analyze-document [post]
func (h *UploadHandler) AnalyzeDocument(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}
	description := c.FormValue("description")

	content, err := readMultipartFile(fileHeader)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to read file"})
	}

	contentType := fileHeader.Header.Get("Content-Type")
	switch {
	case imageContentTypes[contentType]:
		result, err := h.visionService.AnalyzeContract(c.Context(), content, contentType, "", description)
		if err != nil {
			h.logger.Error("image analysis failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Analysis failed"})
		}
		return c.JSON(result)

	case contentType == "application/pdf" || strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf"):
		docs, err := h.processor.ProcessPDF(content, fileHeader.Filename)
		if err != nil {
			h.logger.Error("pdf processing failed", zap.Error(err))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to process PDF"})
		}
		var texts []string
		for _, doc := range docs {
			texts = append(texts, doc.Content)
		}
		result, err := h.visionService.AnalyzeContract(c.Context(), nil, "", strings.Join(texts, "\n"), description)
		if err != nil {
			h.logger.Error("pdf analysis failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Analysis failed"})
		}
		return c.JSON(result)

	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only image or PDF files are supported"})
	}
}

func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// urlDecodeParam unescapes a path parameter; upload source names can
// contain spaces and Korean characters.
func urlDecodeParam(c *fiber.Ctx, name string) (string, error) {
	return url.PathUnescape(c.Params(name))
}
