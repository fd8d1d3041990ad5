package formd

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"formdwatch/pkg/core/edgar"
	"formdwatch/pkg/core/fetch"
)

const (
	archiveBaseURL = "https://www.sec.gov"
	filingIndexURL = "https://www.sec.gov/Archives/edgar/data/%s/%s/%s-index.htm"
	filingDocURL   = "https://www.sec.gov/Archives/edgar/data/%s/%s/%s"
)

// Two filename conventions appear in index documents: the dashed accession
// form and a bare digit run.
var (
	accessionDashed = regexp.MustCompile(`edgar/data/\d+/(\d{10}-\d{2}-\d{6})`)
	accessionBare   = regexp.MustCompile(`edgar/data/\d+/(\d+)`)
)

// Direct document names tried when the filing's index page is unreachable.
var directDocNames = []string{"primary_doc.xml", "formd.xml"}

// DetailResolver locates and fetches one filing's primary XML document and
// hands it to the parser. Every failure is scoped to the single filing.
type DetailResolver struct {
	fetch  fetch.Doer
	parser *Parser
	log    *zap.Logger
}

// NewDetailResolver creates a resolver over the given paced fetcher.
func NewDetailResolver(doer fetch.Doer, log *zap.Logger) *DetailResolver {
	return &DetailResolver{fetch: doer, parser: NewParser(), log: log}
}

// Resolve returns the OfferingRecord for one discovered filing, or an error
// wrapping one of ErrNotFound, ErrUnreachable or ErrMalformed. Errors are
// logged here with the issuer's name; callers skip the filing and continue.
func (r *DetailResolver) Resolve(ctx context.Context, ref edgar.FilingReference) (*OfferingRecord, error) {
	record, err := r.resolve(ctx, ref)
	if err != nil {
		r.log.Warn("skipping filing",
			zap.String("company", ref.CompanyName),
			zap.String("filename", ref.Filename),
			zap.Error(err))
		return nil, err
	}
	return record, nil
}

func (r *DetailResolver) resolve(ctx context.Context, ref edgar.FilingReference) (*OfferingRecord, error) {
	accession := extractAccession(ref.Filename)
	if accession == "" {
		return nil, fmt.Errorf("%w: cannot extract accession number from %q", ErrNotFound, ref.Filename)
	}
	// Carry the resolved accession into the record.
	if ref.AccessionNumber == "" {
		ref.AccessionNumber = accession
	}

	accNoDash := strings.ReplaceAll(accession, "-", "")
	indexURL := fmt.Sprintf(filingIndexURL, ref.CIK, accNoDash, accession)

	resp, err := r.fetch.Get(ctx, indexURL)
	if err != nil || !resp.OK() {
		// Index page unreachable: try the conventional document names.
		return r.resolveDirect(ctx, ref, accNoDash)
	}

	docURL, found := findXMLDocument(string(resp.Body), ref.CIK, accNoDash)
	if !found {
		return nil, fmt.Errorf("%w: no xml document linked from %s", ErrNotFound, indexURL)
	}

	docResp, err := r.fetch.Get(ctx, docURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if !docResp.OK() {
		return nil, fmt.Errorf("%w: status %d fetching %s", ErrUnreachable, docResp.StatusCode, docURL)
	}

	return r.parser.Parse(string(docResp.Body), ref)
}

// resolveDirect guesses the primary document URL, using the first name that
// returns content.
func (r *DetailResolver) resolveDirect(ctx context.Context, ref edgar.FilingReference, accNoDash string) (*OfferingRecord, error) {
	for _, name := range directDocNames {
		url := fmt.Sprintf(filingDocURL, ref.CIK, accNoDash, name)
		resp, err := r.fetch.Get(ctx, url)
		if err != nil || !resp.OK() {
			continue
		}
		return r.parser.Parse(string(resp.Body), ref)
	}
	return nil, fmt.Errorf("%w: index page and direct document urls all failed", ErrNotFound)
}

// extractAccession pulls the accession number out of an index filename,
// preferring the dashed form.
func extractAccession(filename string) string {
	if m := accessionDashed.FindStringSubmatch(filename); m != nil {
		return m[1]
	}
	if m := accessionBare.FindStringSubmatch(filename); m != nil {
		return m[1]
	}
	return ""
}

// findXMLDocument scans a filing index page for the primary XML document.
// Stylesheet-transformed renditions (paths containing "xsl") are skipped;
// among the rest, a file literally named primary_doc.xml wins, otherwise the
// first XML link found is used.
func findXMLDocument(pageHTML, cik, accNoDash string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return "", false
	}

	var candidates []string
	doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		lower := strings.ToLower(href)
		if !strings.HasSuffix(lower, ".xml") {
			return
		}
		if strings.Contains(lower, "xsl") {
			return
		}
		candidates = append(candidates, href)
	})
	if len(candidates) == 0 {
		return "", false
	}

	chosen := candidates[0]
	for _, href := range candidates {
		if strings.HasSuffix(strings.ToLower(href), "primary_doc.xml") {
			chosen = href
			break
		}
	}

	return resolveDocumentURL(chosen, cik, accNoDash), true
}

// resolveDocumentURL turns an index-page href (absolute, root-relative or
// bare filename) into a full URL.
func resolveDocumentURL(href, cik, accNoDash string) string {
	switch {
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "/"):
		return archiveBaseURL + href
	default:
		return fmt.Sprintf(filingDocURL, cik, accNoDash, href)
	}
}
