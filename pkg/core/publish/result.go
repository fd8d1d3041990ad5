// Package publish delivers filtered offering records to the downstream
// webhook and persists the per-run artifact and report.
package publish

import (
	"fmt"
	"io"
	"time"

	"formdwatch/pkg/core/formd"
)

// Range is the configured funding window of a run.
type Range struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// RunResult aggregates one pipeline execution: counts at each stage, the
// configured range and the final filtered record list. It is the shape of
// the JSON run artifact.
type RunResult struct {
	RunID           string                 `json:"run_id"`
	RunDate         time.Time              `json:"run_date"`
	LookbackDays    int                    `json:"lookback_days"`
	FundingRange    Range                  `json:"funding_range"`
	TotalDiscovered int                    `json:"total_in_index"`
	TotalParsed     int                    `json:"total_parsed"`
	TotalFiltered   int                    `json:"total_filtered"`
	Delivered       bool                   `json:"delivered"`
	Results         []formd.OfferingRecord `json:"results"`
}

// PrintSummary writes the human-readable run summary: stage counts and up to
// the first ten filtered companies with amounts.
func PrintSummary(w io.Writer, res *RunResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, "SEC Form D Pull Summary")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Total filings in index: %d\n", res.TotalDiscovered)
	fmt.Fprintf(w, "Successfully parsed: %d\n", res.TotalParsed)
	fmt.Fprintf(w, "In target range ($%.1fM - $%.1fM): %d\n",
		float64(res.FundingRange.Min)/1e6, float64(res.FundingRange.Max)/1e6, res.TotalFiltered)
	fmt.Fprintf(w, "Delivered to webhook: %s\n", yesNo(res.Delivered))

	if len(res.Results) == 0 {
		return
	}

	fmt.Fprintln(w, "\nFiltered Companies:")
	for i, rec := range res.Results {
		if i == 10 {
			fmt.Fprintf(w, "  ... and %d more\n", len(res.Results)-10)
			break
		}
		fmt.Fprintf(w, "  - %s: $%d\n", rec.CompanyName, rec.TotalOfferingAmount)
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
