package publish

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

// RenderReport builds the markdown run report. The output is validated with
// goldmark before being returned; a report that does not parse is a bug in
// the renderer, surfaced as an error rather than written to disk.
func RenderReport(res *RunResult) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# SEC Form D Pull %s\n\n", res.RunDate.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "Run `%s`, lookback %d day(s), range $%d - $%d.\n\n",
		res.RunID, res.LookbackDays, res.FundingRange.Min, res.FundingRange.Max)

	fmt.Fprintf(&b, "| Stage | Count |\n|---|---|\n")
	fmt.Fprintf(&b, "| Discovered | %d |\n", res.TotalDiscovered)
	fmt.Fprintf(&b, "| Parsed | %d |\n", res.TotalParsed)
	fmt.Fprintf(&b, "| Filtered | %d |\n", res.TotalFiltered)
	fmt.Fprintf(&b, "| Delivered | %s |\n\n", yesNo(res.Delivered))

	if len(res.Results) > 0 {
		fmt.Fprintf(&b, "## Matches\n\n")
		for _, rec := range res.Results {
			fmt.Fprintf(&b, "- **%s**: $%d (%s, %s)\n",
				rec.CompanyName, rec.TotalOfferingAmount, rec.IndustryGroup, rec.State)
		}
	}

	report := b.String()
	if !validMarkdown(report) {
		return "", fmt.Errorf("rendered run report is not valid markdown")
	}
	return report, nil
}

// validMarkdown checks the report parses. Goldmark is permissive, so this is
// a sanity check, not a linter.
func validMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	return parser.Parse(text.NewReader([]byte(input))) != nil
}
