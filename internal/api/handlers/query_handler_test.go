package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"jonglaw/internal/dto"
	"jonglaw/internal/service"
	"jonglaw/pkg/config"
	"jonglaw/pkg/lawapi"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubModel struct {
	reply string
	err   error
}

func (m *stubModel) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return m.reply, m.err
}

func (m *stubModel) Name() string { return "stub" }

type stubEmbedder struct{}

func (e *stubEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1}, nil
}

func (e *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{0.1}
	}
	return out, nil
}

type stubLawAPI struct{}

func (s *stubLawAPI) SearchLaws(ctx context.Context, query string, page int) ([]lawapi.LawSummary, error) {
	return nil, nil
}

func (s *stubLawAPI) SearchPrecedents(ctx context.Context, query string, page int) ([]lawapi.PrecedentSummary, error) {
	return nil, nil
}

func (s *stubLawAPI) GetLawDetail(ctx context.Context, mst string) (*lawapi.LawDetail, error) {
	return nil, nil
}

func (s *stubLawAPI) GetPrecedentDetail(ctx context.Context, precID string) (*lawapi.PrecedentDetail, error) {
	return nil, nil
}

func newQueryTestApp(chat, report *stubModel) *fiber.App {
	logger := zap.NewNop()
	cache := service.NewMetadataCache(nil, 1000, logger)
	rag := service.NewRAGService(chat, report, &stubEmbedder{}, nil, cache, config.RAGConfig{
		ChunkSize:       1000,
		ChunkOverlap:    100,
		InsertBatchSize: 50,
		MatchThreshold:  0.3,
		MatchCount:      25,
		ContextLimit:    10,
	}, logger)
	sync := service.NewSyncService(&stubLawAPI{}, rag, service.NewDocumentProcessor(), logger)
	handler := NewQueryHandler(rag, sync, nil, logger)

	app := fiber.New()
	app.Post("/query", handler.Query)
	return app
}

func TestQueryHandler_LawDetectionFailureFailsRequest(t *testing.T) {
	report := &stubModel{err: errors.New("quota exceeded")}
	app := newQueryTestApp(&stubModel{reply: "CHAT"}, report)

	req := httptest.NewRequest("POST", "/query", strings.NewReader(`{"query":"전세금 반환"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestQueryHandler_AnswersWithoutStore(t *testing.T) {
	app := newQueryTestApp(&stubModel{reply: "CHAT"}, &stubModel{reply: "None"})

	req := httptest.NewRequest("POST", "/query", strings.NewReader(`{"query":"전세금 반환"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out dto.QueryResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "Fallback", out.Engine)
	assert.NotEmpty(t, out.Answer)
}

func TestQueryHandler_EmptyQueryRejected(t *testing.T) {
	app := newQueryTestApp(&stubModel{reply: "CHAT"}, &stubModel{reply: "None"})

	req := httptest.NewRequest("POST", "/query", strings.NewReader(`{"query":""}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
