package service

import (
	"context"
	"errors"
	"testing"

	"jonglaw/internal/models"
	"jonglaw/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeModel struct {
	name    string
	reply   string
	err     error
	prompts []string
}

func (f *fakeModel) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.prompts = append(f.prompts, userPrompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeModel) Name() string { return f.name }

type fakeEmbedder struct{}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

type fakeStore struct {
	matches       []*models.DocumentMatch
	article       *models.Document
	articleNoSeen string
	inserted      [][]*models.Document
	deletedMSTs   []string
}

func (f *fakeStore) InsertBatch(ctx context.Context, docs []*models.Document, embeddings [][]float32) error {
	f.inserted = append(f.inserted, docs)
	return nil
}

func (f *fakeStore) SimilaritySearch(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*models.DocumentMatch, error) {
	return f.matches, nil
}

func (f *fakeStore) DeleteByMST(ctx context.Context, mst string) (int64, error) {
	f.deletedMSTs = append(f.deletedMSTs, mst)
	return 1, nil
}

func (f *fakeStore) DeleteUpload(ctx context.Context, source string) (int64, error) {
	return 1, nil
}

func (f *fakeStore) FindArticle(ctx context.Context, lawName, articleNo string) (*models.Document, error) {
	f.articleNoSeen = articleNo
	return f.article, nil
}

func (f *fakeStore) ListUploadSources(ctx context.Context) ([]string, error) {
	return []string{"b.pdf", "a.pdf"}, nil
}

type fakeScanner struct {
	metas []models.DocumentMetadata
	calls int
}

func (f *fakeScanner) ScanMetadata(ctx context.Context, limit int) ([]models.DocumentMetadata, error) {
	f.calls++
	return f.metas, nil
}

func testRAGConfig() config.RAGConfig {
	return config.RAGConfig{
		ChunkSize:        1000,
		ChunkOverlap:     100,
		InsertBatchSize:  50,
		MatchThreshold:   0.3,
		MatchCount:       25,
		ContextLimit:     10,
		MetadataScanSize: 1000,
	}
}

func newTestRAG(chat, report *fakeModel, store VectorStore, scanner metadataScanner) *RAGService {
	logger := zap.NewNop()
	if scanner == nil {
		scanner = &fakeScanner{}
	}
	cache := NewMetadataCache(scanner, 1000, logger)
	return NewRAGService(chat, report, &fakeEmbedder{}, store, cache, testRAGConfig(), logger)
}

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		name  string
		query string
		reply string
		err   error
		want  string
	}{
		{"short query classified chat", "이혼 절차?", "CHAT", nil, IntentChat},
		{"model says report", "위자료 기준?", "REPORT", nil, IntentReport},
		{"long query forces report", "전세 계약이 만료되었는데 집주인이 보증금을 돌려주지 않습니다", "CHAT", nil, IntentReport},
		{"query mentions report", "report 형식으로", "CHAT", nil, IntentReport},
		{"model failure defaults to report", "질문?", "", errors.New("rate limit"), IntentReport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &fakeModel{name: "chat", reply: tt.reply, err: tt.err}
			rag := newTestRAG(chat, &fakeModel{name: "report"}, &fakeStore{}, nil)

			assert.Equal(t, tt.want, rag.DetectIntent(context.Background(), tt.query))
		})
	}
}

func TestDetectRequiredLaws(t *testing.T) {
	report := &fakeModel{name: "report", reply: "민법, 주택임대차보호법\n상가건물 임대차보호법"}
	rag := newTestRAG(&fakeModel{name: "chat"}, report, &fakeStore{}, nil)

	laws, err := rag.DetectRequiredLaws(context.Background(), "임대차 질문")

	require.NoError(t, err)
	assert.Equal(t, []string{"민법", "주택임대차보호법", "상가건물 임대차보호법"}, laws)
}

func TestDetectRequiredLaws_NoneSentinel(t *testing.T) {
	report := &fakeModel{name: "report", reply: "None"}
	rag := newTestRAG(&fakeModel{name: "chat"}, report, &fakeStore{}, nil)

	laws, err := rag.DetectRequiredLaws(context.Background(), "안녕하세요")

	require.NoError(t, err)
	assert.Empty(t, laws)
}

func TestRecommendLaws_CapsAtTen(t *testing.T) {
	report := &fakeModel{name: "report", reply: "법1,법2,법3,법4,법5,법6,법7,법8,법9,법10,법11,법12"}
	rag := newTestRAG(&fakeModel{name: "chat"}, report, &fakeStore{}, nil)

	laws, err := rag.RecommendLaws(context.Background(), "사례 설명")

	require.NoError(t, err)
	assert.Len(t, laws, 10)
	assert.Equal(t, "법1", laws[0])
	assert.Equal(t, "법10", laws[9])
}

func TestQuery_DegradedModeWithoutStore(t *testing.T) {
	chat := &fakeModel{name: "chat", reply: "CHAT"}
	rag := newTestRAG(chat, &fakeModel{name: "report"}, nil, nil)

	result, err := rag.Query(context.Background(), "질문입니다", nil)

	require.NoError(t, err)
	assert.Equal(t, EngineFallback, result.Engine)
	assert.Contains(t, result.Answer, "법률 데이터베이스")
	assert.Empty(t, result.Sources)
}

func TestQuery_FiltersRanksAndDeduplicates(t *testing.T) {
	store := &fakeStore{
		matches: []*models.DocumentMatch{
			{
				Document: models.Document{
					Content:  "불법행위 책임 일반론",
					Metadata: models.DocumentMetadata{Source: "민법", Type: models.SourceTypeLaw},
				},
				Similarity: 0.9,
			},
			{
				Document: models.Document{
					Content:  "무관한 형법 조문",
					Metadata: models.DocumentMetadata{Source: "형법", Type: models.SourceTypeLaw},
				},
				Similarity: 0.8,
			},
			{
				Document: models.Document{
					Content:  "손해배상 관련 판례 요지",
					Metadata: models.DocumentMetadata{Source: "대법원 2020다1", Type: models.SourceTypePrecedent},
				},
				Similarity: 0.7,
			},
			{
				Document: models.Document{
					Content:  "불법행위 책임 일반론",
					Metadata: models.DocumentMetadata{Source: "민법", Type: models.SourceTypeLaw},
				},
				Similarity: 0.6,
			},
		},
	}
	chat := &fakeModel{name: "gemini-chat", reply: "CHAT 답변"}
	rag := newTestRAG(chat, &fakeModel{name: "report"}, store, nil)

	result, err := rag.Query(context.Background(), "손해배상 기준?", []string{"민법"})

	require.NoError(t, err)
	assert.Equal(t, IntentChat, result.Intent)
	assert.Equal(t, "gemini-chat", result.Engine)

	// Target law is seeded first, then context sources in rank order.
	require.GreaterOrEqual(t, len(result.Sources), 2)
	assert.Equal(t, models.SourceRef{Source: "민법", Type: "law"}, result.Sources[0])
	assert.Contains(t, result.Sources, models.SourceRef{Source: "대법원 2020다1", Type: "precedent"})

	// The off-target law never shows up.
	for _, src := range result.Sources {
		assert.NotEqual(t, "형법", src.Source)
	}

	// The final prompt ranks the keyword-boosted precedent first and
	// contains the deduplicated law text once.
	finalPrompt := chat.prompts[len(chat.prompts)-1]
	assert.Contains(t, finalPrompt, "[대법원 2020다1] 손해배상 관련 판례 요지")
	assert.Equal(t, 1, countOccurrences(finalPrompt, "불법행위 책임 일반론"))
	assert.NotContains(t, finalPrompt, "무관한 형법 조문")
}

func TestQuery_ReportIntentUsesReportModel(t *testing.T) {
	store := &fakeStore{}
	chat := &fakeModel{name: "chat", reply: "REPORT"}
	report := &fakeModel{name: "gemini-report", reply: "리포트 본문"}
	rag := newTestRAG(chat, report, store, nil)

	result, err := rag.Query(context.Background(), "계약 해지에 따른 손해배상 범위를 검토해주세요", nil)

	require.NoError(t, err)
	assert.Equal(t, IntentReport, result.Intent)
	assert.Equal(t, "gemini-report", result.Engine)
	assert.Equal(t, "리포트 본문", result.Answer)
}

func TestQuery_SyncedSourceMentionedInQueryBecomesTarget(t *testing.T) {
	scanner := &fakeScanner{metas: []models.DocumentMetadata{
		{Source: "도로교통법", Type: models.SourceTypeLaw, MST: "111"},
	}}
	store := &fakeStore{
		matches: []*models.DocumentMatch{
			{
				Document: models.Document{
					Content:  "음주운전 처벌 조항",
					Metadata: models.DocumentMetadata{Source: "도로교통법", Type: models.SourceTypeLaw},
				},
			},
			{
				Document: models.Document{
					Content:  "다른 법의 조항",
					Metadata: models.DocumentMetadata{Source: "형법", Type: models.SourceTypeLaw},
				},
			},
		},
	}
	chat := &fakeModel{name: "chat", reply: "CHAT"}
	rag := newTestRAG(chat, &fakeModel{name: "report"}, store, scanner)

	result, err := rag.Query(context.Background(), "도로교통법 음주 기준?", nil)

	require.NoError(t, err)
	finalPrompt := chat.prompts[len(chat.prompts)-1]
	assert.Contains(t, finalPrompt, "음주운전 처벌 조항")
	assert.NotContains(t, finalPrompt, "다른 법의 조항")
	assert.Contains(t, result.Sources, models.SourceRef{Source: "도로교통법", Type: "law"})
}

func TestGetArticleText_NormalizesArticleNumber(t *testing.T) {
	store := &fakeStore{article: &models.Document{Content: "제750조 전문"}}
	rag := newTestRAG(&fakeModel{name: "chat"}, &fakeModel{name: "report"}, store, nil)

	text, err := rag.GetArticleText(context.Background(), "민법", "750")

	require.NoError(t, err)
	assert.Equal(t, "제750조 전문", text)
	assert.Equal(t, "제750조", store.articleNoSeen)
}

func TestGetArticleText_FallbackRequiresMatchingSource(t *testing.T) {
	store := &fakeStore{
		matches: []*models.DocumentMatch{{
			Document: models.Document{
				Content:  "다른 법의 내용",
				Metadata: models.DocumentMetadata{Source: "형법", Type: models.SourceTypeLaw},
			},
		}},
	}
	rag := newTestRAG(&fakeModel{name: "chat"}, &fakeModel{name: "report"}, store, nil)

	text, err := rag.GetArticleText(context.Background(), "민법", "제750조")

	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestAddDocuments_BatchesAndInvalidatesCache(t *testing.T) {
	scanner := &fakeScanner{}
	store := &fakeStore{}
	logger := zap.NewNop()
	cache := NewMetadataCache(scanner, 1000, logger)

	cfg := testRAGConfig()
	cfg.InsertBatchSize = 2
	rag := NewRAGService(&fakeModel{name: "chat"}, &fakeModel{name: "report"}, &fakeEmbedder{}, store, cache, cfg, logger)

	// Force a cache load so invalidation is observable.
	cache.Sources(context.Background())
	assert.Equal(t, 1, scanner.calls)

	docs := []*models.Document{
		{Content: "문서 1", Metadata: models.DocumentMetadata{Source: "a", Type: models.SourceTypeUpload}},
		{Content: "문서 2", Metadata: models.DocumentMetadata{Source: "a", Type: models.SourceTypeUpload}},
		{Content: "문서 3", Metadata: models.DocumentMetadata{Source: "a", Type: models.SourceTypeUpload}},
	}
	require.NoError(t, rag.AddDocuments(context.Background(), docs))

	require.Len(t, store.inserted, 2)
	assert.Len(t, store.inserted[0], 2)
	assert.Len(t, store.inserted[1], 1)

	// The next read rebuilds the snapshot.
	cache.Sources(context.Background())
	assert.Equal(t, 2, scanner.calls)
}

func TestListUserUploads_Sorted(t *testing.T) {
	rag := newTestRAG(&fakeModel{name: "chat"}, &fakeModel{name: "report"}, &fakeStore{}, nil)

	sources, err := rag.ListUserUploads(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, sources)
}

func TestRankByKeywords_StableForTies(t *testing.T) {
	matches := []*models.DocumentMatch{
		{Document: models.Document{Content: "아무 관련 없는 내용 하나"}, Similarity: 0.9},
		{Document: models.Document{Content: "역시 무관한 내용 둘"}, Similarity: 0.8},
		{Document: models.Document{Content: "손해배상 기준에 관한 문서"}, Similarity: 0.7},
	}

	rankByKeywords(matches, "손해배상 기준")

	assert.Equal(t, 20, matches[0].Boost)
	assert.Contains(t, matches[0].Content, "손해배상")
	// Zero-boost entries keep their retrieval order.
	assert.Contains(t, matches[1].Content, "하나")
	assert.Contains(t, matches[2].Content, "둘")
}

func countOccurrences(s, sub string) int {
	count := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			count++
		}
	}
	return count
}
