package service

import (
	"context"
	"fmt"
	"strings"

	"jonglaw/pkg/config"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// TextModel is the narrow surface the pipeline needs from a chat model.
type TextModel interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Name() string
}

// Embedder turns text into vectors for indexing and retrieval.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// VisionModel analyzes an image together with an instruction prompt.
type VisionModel interface {
	AnalyzeImage(ctx context.Context, prompt, mimeType string, data []byte) (string, error)
}

// GeminiProvider owns one genai client and hands out model handles for
// the chat, report and vision tiers plus the embedder.
type GeminiProvider struct {
	client *genai.Client
	cfg    config.GeminiConfig
	logger *zap.Logger
}

func NewGeminiProvider(ctx context.Context, cfg config.GeminiConfig, logger *zap.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, cfg: cfg, logger: logger}, nil
}

func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// ChatModel is the fast tier used for intent classification and general
// question answering.
func (p *GeminiProvider) ChatModel() TextModel {
	return &geminiModel{client: p.client, modelName: p.cfg.ChatModel}
}

// ReportModel is the slow tier used for long-form legal reports.
func (p *GeminiProvider) ReportModel() TextModel {
	return &geminiModel{client: p.client, modelName: p.cfg.ReportModel}
}

func (p *GeminiProvider) VisionModel() VisionModel {
	return &geminiVision{client: p.client, modelName: p.cfg.VisionModel}
}

func (p *GeminiProvider) Embedder() Embedder {
	return &geminiEmbedder{client: p.client, modelName: p.cfg.EmbedModel}
}

type geminiModel struct {
	client    *genai.Client
	modelName string
}

func (g *geminiModel) Name() string {
	return g.modelName
}

func (g *geminiModel) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return normalizeContent(resp), nil
}

type geminiVision struct {
	client    *genai.Client
	modelName string
}

func (g *geminiVision) AnalyzeImage(ctx context.Context, prompt, mimeType string, data []byte) (string, error) {
	m := g.client.GenerativeModel(g.modelName)

	format := strings.TrimPrefix(mimeType, "image/")
	resp, err := m.GenerateContent(ctx, genai.Text(prompt), genai.ImageData(format, data))
	if err != nil {
		return "", fmt.Errorf("gemini vision: %w", err)
	}
	return normalizeContent(resp), nil
}

type geminiEmbedder struct {
	client    *genai.Client
	modelName string
}

func (g *geminiEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	em := g.client.EmbeddingModel(g.modelName)

	resp, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if resp.Embedding == nil {
		return nil, fmt.Errorf("gemini embed: empty response")
	}
	return resp.Embedding.Values, nil
}

// EmbedTexts batches all texts in one request.
func (g *geminiEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := g.client.EmbeddingModel(g.modelName)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini batch embed: %w", err)
	}

	out := make([][]float32, 0, len(resp.Embeddings))
	for _, e := range resp.Embeddings {
		out = append(out, e.Values)
	}
	return out, nil
}

// normalizeContent joins all text parts of the first candidate and
// undoes the escaped quotes some model versions emit in plain text.
func normalizeContent(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}

	out := b.String()
	out = strings.ReplaceAll(out, `\"`, `"`)
	out = strings.ReplaceAll(out, `\'`, `'`)
	return strings.TrimSpace(out)
}
