// Package pipeline sequences one scheduled run: discover, enrich, filter,
// publish, persist. Runs are stateless; each invocation starts from the
// lookback window alone.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"formdwatch/pkg/core/config"
	"formdwatch/pkg/core/edgar"
	"formdwatch/pkg/core/filter"
	"formdwatch/pkg/core/formd"
	"formdwatch/pkg/core/publish"
)

// Discoverer produces the run's candidate filing list.
type Discoverer interface {
	Discover(ctx context.Context, start, end time.Time) []edgar.FilingReference
}

// Resolver enriches one candidate into an offering record.
type Resolver interface {
	Resolve(ctx context.Context, ref edgar.FilingReference) (*formd.OfferingRecord, error)
}

// Sink delivers the filtered batch downstream.
type Sink interface {
	Deliver(ctx context.Context, records []formd.OfferingRecord) bool
}

// Archiver persists the run artifact and report.
type Archiver interface {
	WriteArtifact(res *publish.RunResult) (string, error)
	WriteReport(res *publish.RunResult) (string, error)
}

// Driver runs the pipeline end to end. Every per-filing failure is skipped;
// only an artifact-write failure is fatal.
type Driver struct {
	cfg       config.Config
	discovery Discoverer
	resolver  Resolver
	filter    *filter.OfferingFilter
	sink      Sink
	archive   Archiver
	log       *zap.Logger
	out       io.Writer
}

// New creates a driver from its collaborators. out receives the
// human-readable run summary.
func New(cfg config.Config, discovery Discoverer, resolver Resolver, offeringFilter *filter.OfferingFilter, sink Sink, archive Archiver, log *zap.Logger, out io.Writer) *Driver {
	return &Driver{
		cfg:       cfg,
		discovery: discovery,
		resolver:  resolver,
		filter:    offeringFilter,
		sink:      sink,
		archive:   archive,
		log:       log,
		out:       out,
	}
}

// Run executes one pipeline pass over the configured lookback window ending
// now. The returned RunResult is also written to the artifact file and, on
// success, delivered downstream.
func (d *Driver) Run(ctx context.Context) (*publish.RunResult, error) {
	now := time.Now()
	start := now.AddDate(0, 0, -d.cfg.LookbackDays)

	d.log.Info("starting form d pull",
		zap.Int("lookback_days", d.cfg.LookbackDays),
		zap.Int64("min_offering", d.cfg.MinOffering),
		zap.Int64("max_offering", d.cfg.MaxOffering))

	// Stage 1: discovery.
	refs := d.discovery.Discover(ctx, start, now)

	// Stage 2: enrichment, strictly sequential. Each filing is independent;
	// a skipped filing only reduces the parsed count.
	var records []formd.OfferingRecord
	for i, ref := range refs {
		record, err := d.resolver.Resolve(ctx, ref)
		if err != nil {
			continue // already logged by the resolver
		}
		records = append(records, *record)

		if (i+1)%50 == 0 {
			d.log.Info("enrichment progress", zap.Int("processed", i+1), zap.Int("total", len(refs)))
		}
	}
	d.log.Info("parsed filings", zap.Int("count", len(records)))

	// Stage 3: filtering.
	filtered := d.filter.Apply(records)
	d.log.Info("filings in target range", zap.Int("count", len(filtered)))

	// Stage 4: delivery. Failure is recorded, never fatal.
	delivered := d.sink.Deliver(ctx, filtered)

	res := &publish.RunResult{
		RunID:           uuid.NewString(),
		RunDate:         now,
		LookbackDays:    d.cfg.LookbackDays,
		FundingRange:    publish.Range{Min: d.cfg.MinOffering, Max: d.cfg.MaxOffering},
		TotalDiscovered: len(refs),
		TotalParsed:     len(records),
		TotalFiltered:   len(filtered),
		Delivered:       delivered,
		Results:         filtered,
	}

	// Stage 5: persistence. The artifact is the run's durable output; not
	// being able to write it is the one fatal failure.
	if _, err := d.archive.WriteArtifact(res); err != nil {
		return res, fmt.Errorf("run completed but artifact write failed: %w", err)
	}
	if _, err := d.archive.WriteReport(res); err != nil {
		d.log.Error("run report write failed", zap.Error(err))
	}

	publish.PrintSummary(d.out, res)
	return res, nil
}
