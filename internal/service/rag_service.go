package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"jonglaw/internal/models"
	"jonglaw/pkg/config"

	"go.uber.org/zap"
)

const (
	IntentChat   = "CHAT"
	IntentReport = "REPORT"

	// EngineFallback marks answers produced without a vector store.
	EngineFallback = "Fallback"
)

const persona = `당신의 이름은 'JongLaw AI'입니다.
당신은 사용자의 법률 질의를 변호사 수준의 체계적인 법률 검토 프로세스로 처리하여, 구조화된 법률 검토 보고서를 생성 및 제공하는 전문 법률 어시스턴트입니다.`

const fallbackAnswer = "죄송합니다. 현재 법률 데이터베이스(Vector DB)가 연결되어 있지 않아 정확한 검토가 어렵습니다. 관리자에게 문의하여 데이터베이스 설정을 확인해주세요."

// VectorStore is the retrieval surface the pipeline needs. A nil store
// puts the engine into degraded mode where queries still answer but
// without any retrieved context.
type VectorStore interface {
	InsertBatch(ctx context.Context, docs []*models.Document, embeddings [][]float32) error
	SimilaritySearch(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*models.DocumentMatch, error)
	DeleteByMST(ctx context.Context, mst string) (int64, error)
	DeleteUpload(ctx context.Context, source string) (int64, error)
	FindArticle(ctx context.Context, lawName, articleNo string) (*models.Document, error)
	ListUploadSources(ctx context.Context) ([]string, error)
}

// QueryResult is the outcome of one pipeline run.
type QueryResult struct {
	Answer  string
	Sources []models.SourceRef
	Intent  string
	Engine  string
}

var lawListSplitRe = regexp.MustCompile(`[,|\n]`)

// RAGService runs the retrieval-augmented pipeline: intent detection,
// filtered similarity search, keyword re-ranking, context assembly and
// generation on the tier the intent selects.
type RAGService struct {
	chatModel   TextModel
	reportModel TextModel
	embedder    Embedder
	store       VectorStore
	cache       *MetadataCache
	chunker     *Chunker
	cfg         config.RAGConfig
	logger      *zap.Logger
}

func NewRAGService(
	chatModel TextModel,
	reportModel TextModel,
	embedder Embedder,
	store VectorStore,
	cache *MetadataCache,
	cfg config.RAGConfig,
	logger *zap.Logger,
) *RAGService {
	return &RAGService{
		chatModel:   chatModel,
		reportModel: reportModel,
		embedder:    embedder,
		store:       store,
		cache:       cache,
		chunker:     NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		cfg:         cfg,
		logger:      logger,
	}
}

// SyncedSources exposes the cached source names for query-time matching.
func (s *RAGService) SyncedSources(ctx context.Context) []string {
	return s.cache.Sources(ctx)
}

// SyncedMSTs exposes the cached law serial numbers for sync checks.
func (s *RAGService) SyncedMSTs(ctx context.Context) []string {
	return s.cache.MSTs(ctx)
}

// HasPrecedent reports whether a precedent is already indexed.
func (s *RAGService) HasPrecedent(ctx context.Context, precID string) bool {
	return s.cache.HasPrecedent(ctx, precID)
}

// DetectIntent classifies a query as CHAT or REPORT. Long queries and
// queries that mention REPORT are treated as report requests regardless
// of the model's verdict, and a model failure also falls back to REPORT
// so a broken classifier never downgrades an analysis request.
func (s *RAGService) DetectIntent(ctx context.Context, userQuery string) string {
	prompt := fmt.Sprintf("질문을 분석하여 'CHAT' 또는 'REPORT'로 분류하십시오.\n질문: %s\n답변: 오직 단어 하나만 반환.", userQuery)

	content, err := s.chatModel.Generate(ctx, "", prompt)
	if err != nil {
		s.logger.Warn("intent detection failed", zap.Error(err))
		return IntentReport
	}

	verdict := strings.ToUpper(strings.TrimSpace(content))
	isReport := strings.Contains(verdict, IntentReport) ||
		strings.Contains(strings.ToUpper(userQuery), IntentReport) ||
		len([]rune(userQuery)) > 20
	if isReport {
		return IntentReport
	}
	return IntentChat
}

// DetectRequiredLaws extracts the statute names a query depends on so
// the sync layer can fetch them before retrieval.
func (s *RAGService) DetectRequiredLaws(ctx context.Context, userQuery string) ([]string, error) {
	prompt := fmt.Sprintf("질문에 답변하기 위해 참조해야 하는 대한민국의 법령 명칭을 추출하십시오.\n질문: %s\n형식: 법령 명칭만 쉼표(,)로 구분. 없으면 'None'.", userQuery)

	content, err := s.reportModel.Generate(ctx, "", prompt)
	if err != nil {
		return nil, err
	}
	if strings.Contains(content, "None") || strings.TrimSpace(content) == "" {
		return nil, nil
	}

	return splitLawList(content, 0), nil
}

// RecommendLaws suggests up to ten statutes relevant to a case description.
func (s *RAGService) RecommendLaws(ctx context.Context, caseDescription string) ([]string, error) {
	prompt := fmt.Sprintf("당신은 대한민국 법률 전문가입니다. 아래 사례를 해결하기 위해 반드시 검토해야 할 대한민국 법령 10가지를 추천하십시오.\n사례: %s\n형식: 법령 명칭만 쉼표(,)로 구분. 추가 설명 생략.", caseDescription)

	content, err := s.reportModel.Generate(ctx, "", prompt)
	if err != nil {
		return nil, err
	}
	return splitLawList(content, 10), nil
}

// Query runs the full pipeline for one user question. targetLaws are
// the statutes the caller already knows are relevant; synced sources
// mentioned verbatim in the query are added to them.
func (s *RAGService) Query(ctx context.Context, userQuery string, targetLaws []string) (*QueryResult, error) {
	intent := s.DetectIntent(ctx, userQuery)

	targetSources := append([]string(nil), targetLaws...)
	for _, src := range s.SyncedSources(ctx) {
		if strings.Contains(userQuery, src) && !containsString(targetSources, src) {
			targetSources = append(targetSources, src)
		}
	}

	if s.store == nil {
		return &QueryResult{
			Answer: fallbackAnswer,
			Intent: intent,
			Engine: EngineFallback,
		}, nil
	}

	queryEmbedding, err := s.embedder.EmbedText(ctx, userQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := s.store.SimilaritySearch(ctx, queryEmbedding, s.cfg.MatchThreshold, s.cfg.MatchCount)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	matches = filterMatches(matches, targetSources)
	if len(matches) > 15 {
		matches = matches[:15]
	}
	rankByKeywords(matches, userQuery)

	context, sources := s.buildContext(matches, targetLaws)

	var model TextModel
	var finalPrompt string
	if intent == IntentChat {
		model = s.chatModel
		finalPrompt = fmt.Sprintf("%s\n\n질문: %s\n\n참고 법령 및 판례:\n%s\n\n위 가이드라인에 따라 친절하고 전문적으로 답변하십시오.", persona, userQuery, context)
	} else {
		model = s.reportModel
		finalPrompt = fmt.Sprintf("%s\n\n질문: %s\n\n참고 법령 및 자료(판례 포함):\n%s\n\n전문 변호사로서 [사건 개요, 법률 분석, 판례 분석, 결론, 향후 조치] 순서로 체계적인 자문 리포트를 작성하십시오. 특히 제공된 '판례'를 분석하여 유사 사례에서의 판단 기준을 명확히 제시하십시오.", persona, userQuery, context)
	}

	answer, err := model.Generate(ctx, "", finalPrompt)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	return &QueryResult{
		Answer:  answer,
		Sources: sources,
		Intent:  intent,
		Engine:  model.Name(),
	}, nil
}

// QueryFollowup answers a question grounded in a previously generated
// report and the conversation so far. Always runs on the chat tier.
func (s *RAGService) QueryFollowup(ctx context.Context, userQuery, reportContext string, chatHistory []models.ChatTurn) (string, string, error) {
	var history strings.Builder
	for i, turn := range chatHistory {
		if i > 0 {
			history.WriteString("\n")
		}
		fmt.Fprintf(&history, "%s: %s", strings.ToUpper(turn.Role), turn.Content)
	}

	prompt := fmt.Sprintf(`당신은 앞서 작성된 법률 리포트에 대해 심층적인 답변을 제공하는 전문 법률 어시스턴트 'JongLaw AI'입니다.

[리포트 원문 내용]
%s

[이전 대화 내역]
%s

[현재 질문]
%s

가이드라인:
1. 리포트의 내용을 바탕으로 질문에 대해 구체적이고 전문적으로 답변하십시오.
2. 리포트에 언급된 특정 용어(예: '부당이득', '불법행위' 등)나 법리가 있다면 그 맥락을 유지하며 설명하십시오.
3. 이전 대화의 흐름이 있다면 이를 고려하여 답변하십시오.
4. 답변은 친절하고 정중한 전문 변호사의 어조를 유지하십시오.`, reportContext, history.String(), userQuery)

	answer, err := s.chatModel.Generate(ctx, "", prompt)
	if err != nil {
		return "", "", fmt.Errorf("follow-up failed: %w", err)
	}
	return answer, s.chatModel.Name(), nil
}

// GetArticleText fetches the stored text of one article. Accepts bare
// numbers like "750" as well as the full "제750조" form. A metadata miss
// falls back to a narrow vector search scoped to the law name.
func (s *RAGService) GetArticleText(ctx context.Context, lawName, articleNo string) (string, error) {
	if s.store == nil {
		return "", nil
	}

	if !strings.HasPrefix(articleNo, "제") {
		articleNo = "제" + articleNo
	}
	if !strings.HasSuffix(articleNo, "조") {
		articleNo = articleNo + "조"
	}

	doc, err := s.store.FindArticle(ctx, lawName, articleNo)
	if err != nil {
		return "", err
	}
	if doc != nil {
		return doc.Content, nil
	}

	embedding, err := s.embedder.EmbedText(ctx, fmt.Sprintf("[%s] %s", lawName, articleNo))
	if err != nil {
		return "", err
	}
	matches, err := s.store.SimilaritySearch(ctx, embedding, 0.5, 1)
	if err != nil {
		return "", err
	}
	if len(matches) > 0 && strings.Contains(matches[0].Metadata.Source, lawName) {
		return matches[0].Content, nil
	}
	return "", nil
}

// AddDocuments chunks, embeds and indexes documents in batches, then
// invalidates the metadata cache.
func (s *RAGService) AddDocuments(ctx context.Context, docs []*models.Document) error {
	if s.store == nil {
		s.logger.Warn("cannot add documents, vector store not configured")
		return nil
	}

	chunks := s.chunker.SplitDocuments(docs)
	if len(chunks) == 0 {
		return nil
	}

	s.logger.Info("indexing chunks", zap.Int("count", len(chunks)))

	for start := 0; start < len(chunks); start += s.cfg.InsertBatchSize {
		end := start + s.cfg.InsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}
		embeddings, err := s.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed batch: %w", err)
		}

		if err := s.store.InsertBatch(ctx, batch, embeddings); err != nil {
			return err
		}
	}

	s.cache.Invalidate()
	return nil
}

// DeleteByMST removes an indexed law and invalidates the cache.
func (s *RAGService) DeleteByMST(ctx context.Context, mst string) error {
	if s.store == nil {
		return nil
	}
	deleted, err := s.store.DeleteByMST(ctx, mst)
	if err != nil {
		return err
	}
	s.logger.Info("deleted law chunks", zap.String("mst", mst), zap.Int64("count", deleted))
	s.cache.Invalidate()
	return nil
}

// DeleteUserUpload removes all chunks of one uploaded document and
// invalidates the cache.
func (s *RAGService) DeleteUserUpload(ctx context.Context, source string) error {
	if s.store == nil {
		return nil
	}
	deleted, err := s.store.DeleteUpload(ctx, source)
	if err != nil {
		return err
	}
	s.logger.Info("deleted upload chunks", zap.String("source", source), zap.Int64("count", deleted))
	s.cache.Invalidate()
	return nil
}

// ListUserUploads returns the source names of all uploaded documents,
// sorted for stable listing.
func (s *RAGService) ListUserUploads(ctx context.Context) ([]string, error) {
	if s.store == nil {
		return nil, nil
	}
	sources, err := s.store.ListUploadSources(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(sources)
	return sources, nil
}

// filterMatches applies the source filter retrieval cannot express in
// SQL: when target sources exist, a match survives only if it belongs
// to a target law, a user upload or a precedent. With no targets every
// match passes.
func filterMatches(matches []*models.DocumentMatch, targetSources []string) []*models.DocumentMatch {
	if len(targetSources) == 0 {
		return matches
	}

	filtered := matches[:0]
	for _, m := range matches {
		isTarget := containsString(targetSources, m.Metadata.Source)
		isUpload := m.Metadata.Type == models.SourceTypeUpload
		isPrecedent := m.Metadata.Type == models.SourceTypePrecedent
		if isTarget || isUpload || isPrecedent {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// rankByKeywords assigns each match a boost of 10 per query keyword it
// contains and reorders by boost. The sort is stable so similarity
// order survives among equal boosts.
func rankByKeywords(matches []*models.DocumentMatch, userQuery string) {
	var keywords []string
	for _, k := range strings.Fields(userQuery) {
		if len([]rune(k)) > 1 {
			keywords = append(keywords, k)
		}
	}

	for _, m := range matches {
		boost := 0
		for _, kw := range keywords {
			if strings.Contains(m.Content, kw) {
				boost += 10
			}
		}
		m.Boost = boost
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Boost > matches[j].Boost
	})
}

// buildContext assembles the prompt context and the source list. Target
// laws are seeded into the sources first so they show up even when no
// chunk of theirs survived retrieval; duplicate chunk texts collapse to
// one context entry.
func (s *RAGService) buildContext(matches []*models.DocumentMatch, targetLaws []string) (string, []models.SourceRef) {
	var parts []string
	seen := make(map[string]struct{})
	var sources []models.SourceRef

	for _, law := range targetLaws {
		if law != "" && strings.ToLower(law) != "none" {
			sources = append(sources, models.SourceRef{Source: law, Type: string(models.SourceTypeLaw)})
		}
	}

	for _, m := range matches {
		content := strings.TrimSpace(m.Content)
		src := strings.TrimSpace(m.Metadata.Source)
		if src == "" {
			src = "Unknown"
		}
		srcType := string(m.Metadata.Type)
		if srcType == "" {
			srcType = "unknown"
		}

		if _, dup := seen[content]; dup {
			continue
		}
		parts = append(parts, fmt.Sprintf("[%s] %s", src, content))
		seen[content] = struct{}{}

		known := false
		for _, ref := range sources {
			if ref.Source == src {
				known = true
				break
			}
		}
		if !known {
			sources = append(sources, models.SourceRef{Source: src, Type: srcType})
		}
	}

	if len(parts) > s.cfg.ContextLimit {
		parts = parts[:s.cfg.ContextLimit]
	}
	return strings.Join(parts, "\n\n"), sources
}

func splitLawList(content string, limit int) []string {
	var laws []string
	for _, raw := range lawListSplitRe.Split(content, -1) {
		law := strings.TrimSpace(raw)
		if law == "" || strings.ToLower(law) == "none" {
			continue
		}
		laws = append(laws, law)
		if limit > 0 && len(laws) == limit {
			break
		}
	}
	return laws
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
