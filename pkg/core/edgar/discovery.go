package edgar

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SearchClient is the primary discovery path.
type SearchClient interface {
	Search(ctx context.Context, start, end time.Time) ([]FilingReference, error)
}

// IndexFetcher is the fallback discovery path.
type IndexFetcher interface {
	Fetch(ctx context.Context, start, end time.Time) ([]FilingReference, error)
}

// Discovery orchestrates the two discovery tiers. The full-text search
// result is used verbatim when non-empty; the master index is consulted only
// when search fails or comes back empty. The two paths are never merged.
type Discovery struct {
	search SearchClient
	index  IndexFetcher
	log    *zap.Logger
}

// NewDiscovery wires the two discovery paths together.
func NewDiscovery(search SearchClient, index IndexFetcher, log *zap.Logger) *Discovery {
	return &Discovery{search: search, index: index, log: log}
}

// Discover returns the deduplicated candidate list for [start, end]. Total
// failure of both paths yields an empty list; a run with zero candidates is
// a valid run, not an error.
func (d *Discovery) Discover(ctx context.Context, start, end time.Time) []FilingReference {
	refs, err := d.search.Search(ctx, start, end)
	switch {
	case err != nil:
		d.log.Warn("full-text search failed, falling back to master index", zap.Error(err))
	case len(refs) > 0:
		d.log.Info("discovered filings via full-text search", zap.Int("count", len(refs)))
		return dedupe(refs)
	default:
		d.log.Info("full-text search returned no filings, falling back to master index")
	}

	refs, err = d.index.Fetch(ctx, start, end)
	if err != nil {
		d.log.Error("master index fallback failed", zap.Error(err))
		return nil
	}

	d.log.Info("discovered filings via master index", zap.Int("count", len(refs)))
	return dedupe(refs)
}

// dedupe drops repeat references, keyed by accession number when present and
// filename otherwise. First occurrence wins; order is preserved.
func dedupe(refs []FilingReference) []FilingReference {
	seen := make(map[string]bool, len(refs))
	out := refs[:0:0]
	for _, ref := range refs {
		key := ref.AccessionNumber
		if key == "" {
			key = ref.Filename
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ref)
	}
	return out
}
