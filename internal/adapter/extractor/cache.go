package extractor

import (
	"context"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/davoram/hearth/internal/core/domain"
	"github.com/davoram/hearth/internal/core/ports"
)

// CachingExtractor memoises metadata snapshots per model ID. Snapshots
// are immutable, so concurrent readers after the first extraction need
// no locking; two goroutines racing on a cold entry both extract and the
// first store wins - wasted work, not a correctness bug. Eviction
// replaces entries wholesale, never merges.
type CachingExtractor struct {
	inner ports.MetadataExtractor
	cache *xsync.Map[string, *domain.ModelMetadata]
}

func NewCaching(inner ports.MetadataExtractor) *CachingExtractor {
	return &CachingExtractor{
		inner: inner,
		cache: xsync.NewMap[string, *domain.ModelMetadata](),
	}
}

func (c *CachingExtractor) Extract(ctx context.Context, modelID string) (*domain.ModelMetadata, error) {
	if meta, ok := c.cache.Load(modelID); ok {
		return meta, nil
	}

	meta, err := c.inner.Extract(ctx, modelID)
	if err != nil {
		return nil, err
	}

	// single-writer-wins: keep whichever snapshot landed first so all
	// readers agree on one consistent view
	actual, _ := c.cache.LoadOrStore(modelID, meta)
	return actual, nil
}

func (c *CachingExtractor) Invalidate(modelID string) {
	c.cache.Delete(modelID)
	c.inner.Invalidate(modelID)
}

// Size reports how many models currently have cached metadata.
func (c *CachingExtractor) Size() int {
	return c.cache.Size()
}
