package service

import (
	"context"
	"sync"

	"jonglaw/internal/models"

	"go.uber.org/zap"
)

type metadataScanner interface {
	ScanMetadata(ctx context.Context, limit int) ([]models.DocumentMetadata, error)
}

// MetadataCache keeps the set of synced source names and law serial
// numbers in memory so retrieval filtering and sync checks do not hit
// the store on every query. It fills lazily on first use and empties on
// Invalidate; a scan failure yields an empty snapshot rather than an
// error, matching the degraded behavior of the rest of the pipeline.
type MetadataCache struct {
	scanner  metadataScanner
	scanSize int
	logger   *zap.Logger

	mu      sync.Mutex
	loaded  bool
	sources map[string]struct{}
	msts    map[string]struct{}
	precIDs map[string]struct{}
}

func NewMetadataCache(scanner metadataScanner, scanSize int, logger *zap.Logger) *MetadataCache {
	return &MetadataCache{
		scanner:  scanner,
		scanSize: scanSize,
		logger:   logger,
	}
}

// Sources returns the known source names, refreshing the cache if needed.
func (c *MetadataCache) Sources(ctx context.Context) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoaded(ctx)

	out := make([]string, 0, len(c.sources))
	for s := range c.sources {
		out = append(out, s)
	}
	return out
}

// MSTs returns the known law serial numbers, refreshing the cache if needed.
func (c *MetadataCache) MSTs(ctx context.Context) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoaded(ctx)

	out := make([]string, 0, len(c.msts))
	for m := range c.msts {
		out = append(out, m)
	}
	return out
}

// HasMST reports whether the law serial number is already synced.
func (c *MetadataCache) HasMST(ctx context.Context, mst string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoaded(ctx)

	_, ok := c.msts[mst]
	return ok
}

// HasPrecedent reports whether the precedent id is already indexed.
func (c *MetadataCache) HasPrecedent(ctx context.Context, precID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoaded(ctx)

	_, ok := c.precIDs[precID]
	return ok
}

// Invalidate drops the snapshot. The next read rebuilds it from the store.
func (c *MetadataCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.sources = nil
	c.msts = nil
	c.precIDs = nil
}

// ensureLoaded must be called with the mutex held.
func (c *MetadataCache) ensureLoaded(ctx context.Context) {
	if c.loaded {
		return
	}

	c.sources = make(map[string]struct{})
	c.msts = make(map[string]struct{})
	c.precIDs = make(map[string]struct{})
	c.loaded = true

	if c.scanner == nil {
		return
	}

	metas, err := c.scanner.ScanMetadata(ctx, c.scanSize)
	if err != nil {
		c.logger.Error("failed to refresh metadata cache", zap.Error(err))
		return
	}

	for _, m := range metas {
		if m.Source != "" {
			c.sources[m.Source] = struct{}{}
		}
		if m.MST != "" {
			c.msts[m.MST] = struct{}{}
		}
		if m.PrecID != "" {
			c.precIDs[m.PrecID] = struct{}{}
		}
	}

	c.logger.Debug("metadata cache refreshed",
		zap.Int("sources", len(c.sources)),
		zap.Int("msts", len(c.msts)))
}
