package edgar

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"formdwatch/pkg/core/fetch"
)

const masterIndexURL = "https://www.sec.gov/Archives/edgar/full-index/%d/QTR%d/master.idx"

// quarterStep is the stride used to walk a date range collecting fiscal
// quarters. 32 days guarantees no month, and therefore no quarter, is
// stepped over.
const quarterStep = 32 * 24 * time.Hour

// Quarter identifies one fiscal quarter of the EDGAR full index.
type Quarter struct {
	Year   int
	Number int // 1-4
}

func quarterOf(t time.Time) Quarter {
	return Quarter{Year: t.Year(), Number: (int(t.Month())-1)/3 + 1}
}

// QuartersInRange returns the quarters whose master index could contain
// filings in [start, end], in chronological order without duplicates. The
// end date's own quarter is always included.
func QuartersInRange(start, end time.Time) []Quarter {
	seen := make(map[Quarter]bool)
	var quarters []Quarter

	add := func(q Quarter) {
		if !seen[q] {
			seen[q] = true
			quarters = append(quarters, q)
		}
	}

	for t := dayStart(start); !t.After(dayStart(end)); t = t.Add(quarterStep) {
		add(quarterOf(t))
	}
	add(quarterOf(end))

	return quarters
}

// MasterIndexFetcher is the fallback discovery path: it downloads each
// relevant quarter's master index and keeps the Form D / D-A entries filed
// within the requested range.
type MasterIndexFetcher struct {
	fetch fetch.Doer
	log   *zap.Logger
}

// NewMasterIndexFetcher creates a fetcher over the given paced fetcher.
func NewMasterIndexFetcher(doer fetch.Doer, log *zap.Logger) *MasterIndexFetcher {
	return &MasterIndexFetcher{fetch: doer, log: log}
}

// Fetch retrieves and parses the master index for every quarter overlapping
// [start, end]. A quarter that cannot be fetched is logged and skipped; the
// remaining quarters still contribute results.
func (f *MasterIndexFetcher) Fetch(ctx context.Context, start, end time.Time) ([]FilingReference, error) {
	var refs []FilingReference

	for _, q := range QuartersInRange(start, end) {
		url := fmt.Sprintf(masterIndexURL, q.Year, q.Number)

		resp, err := f.fetch.Get(ctx, url)
		if err != nil {
			f.log.Warn("master index fetch failed",
				zap.Int("year", q.Year), zap.Int("quarter", q.Number), zap.Error(err))
			continue
		}
		if !resp.OK() {
			f.log.Warn("master index unavailable",
				zap.Int("year", q.Year), zap.Int("quarter", q.Number),
				zap.Int("status", resp.StatusCode))
			continue
		}

		for _, ref := range ParseIndex(string(resp.Body)) {
			if inRange(ref.DateFiled, start, end) {
				refs = append(refs, ref)
			}
		}
	}

	return refs, nil
}
