package service

import (
	"context"
	"strings"

	"jonglaw/pkg/lawapi"

	"go.uber.org/zap"
)

// lawSearcher is the slice of the law API the sync layer uses.
type lawSearcher interface {
	SearchLaws(ctx context.Context, query string, page int) ([]lawapi.LawSummary, error)
	SearchPrecedents(ctx context.Context, query string, page int) ([]lawapi.PrecedentSummary, error)
	GetLawDetail(ctx context.Context, mst string) (*lawapi.LawDetail, error)
	GetPrecedentDetail(ctx context.Context, precID string) (*lawapi.PrecedentDetail, error)
}

// precedentSyncLimit caps how many search hits get indexed per query.
const precedentSyncLimit = 3

// SyncService pulls statutes and precedents from the law API into the
// vector store on demand, so a query never runs against a store that is
// missing the laws it names. Sync failures are logged and swallowed;
// the query proceeds with whatever is indexed.
type SyncService struct {
	lawAPI    lawSearcher
	rag       *RAGService
	processor *DocumentProcessor
	logger    *zap.Logger
}

func NewSyncService(lawAPI lawSearcher, rag *RAGService, processor *DocumentProcessor, logger *zap.Logger) *SyncService {
	return &SyncService{
		lawAPI:    lawAPI,
		rag:       rag,
		processor: processor,
		logger:    logger,
	}
}

// EnsureLaws makes sure each required law is indexed. A law counts as
// synced when its name and a synced source name contain each other in
// either direction, which tolerates abbreviated statute names.
func (s *SyncService) EnsureLaws(ctx context.Context, requiredLaws []string) {
	if len(requiredLaws) == 0 {
		return
	}

	syncedSources := s.rag.SyncedSources(ctx)
	for _, lawName := range requiredLaws {
		if isLawSynced(lawName, syncedSources) {
			continue
		}
		if err := s.syncLaw(ctx, lawName); err != nil {
			s.logger.Warn("auto-sync failed for law",
				zap.String("law", lawName), zap.Error(err))
		}
	}
}

func (s *SyncService) syncLaw(ctx context.Context, lawName string) error {
	results, err := s.lawAPI.SearchLaws(ctx, lawName, 1)
	if err != nil {
		return err
	}

	match := lawapi.BestMatch(results, lawName)
	if match == nil {
		s.logger.Info("no search result for law", zap.String("law", lawName))
		return nil
	}

	detail, err := s.lawAPI.GetLawDetail(ctx, match.MST)
	if err != nil {
		return err
	}

	docs := s.processor.ProcessLaw(detail, match.MST)
	if len(docs) == 0 {
		return nil
	}

	// Re-sync replaces any stale chunks of an older revision.
	if err := s.rag.DeleteByMST(ctx, match.MST); err != nil {
		return err
	}
	return s.rag.AddDocuments(ctx, docs)
}

// SyncPrecedents indexes the top precedent search hits for a query,
// skipping ones already in the store.
func (s *SyncService) SyncPrecedents(ctx context.Context, userQuery string) {
	results, err := s.lawAPI.SearchPrecedents(ctx, userQuery, 1)
	if err != nil {
		s.logger.Warn("precedent search failed", zap.Error(err))
		return
	}

	if len(results) > precedentSyncLimit {
		results = results[:precedentSyncLimit]
	}

	for _, prec := range results {
		if prec.ID == "" || s.rag.HasPrecedent(ctx, prec.ID) {
			continue
		}

		s.logger.Info("auto-syncing precedent",
			zap.String("case", prec.CaseName), zap.String("id", prec.ID))

		detail, err := s.lawAPI.GetPrecedentDetail(ctx, prec.ID)
		if err != nil {
			s.logger.Warn("failed to fetch precedent detail",
				zap.String("id", prec.ID), zap.Error(err))
			continue
		}

		docs := s.processor.ProcessPrecedent(detail, prec.ID)
		if err := s.rag.AddDocuments(ctx, docs); err != nil {
			s.logger.Warn("failed to index precedent",
				zap.String("id", prec.ID), zap.Error(err))
		}
	}
}

func isLawSynced(lawName string, syncedSources []string) bool {
	for _, src := range syncedSources {
		if strings.Contains(src, lawName) || strings.Contains(lawName, src) {
			return true
		}
	}
	return false
}
