package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"go.uber.org/zap"

	"formdwatch/pkg/core/fetch"
)

const (
	// EFTS (EDGAR Full-Text Search) endpoint.
	fullTextSearchURL = "https://efts.sec.gov/LATEST/search-index"

	// fullTextPageSize caps a search at one page. More than 200 D/D-A
	// filings in a window means the tail is lost; the client logs a
	// warning when it hits the cap so high-volume days are visible.
	fullTextPageSize = 200
)

// FullTextSearchClient queries EFTS for Form D / D-A filings in a date range.
type FullTextSearchClient struct {
	fetch fetch.Doer
	log   *zap.Logger
}

// NewFullTextSearchClient creates a search client over the given fetcher.
func NewFullTextSearchClient(doer fetch.Doer, log *zap.Logger) *FullTextSearchClient {
	return &FullTextSearchClient{fetch: doer, log: log}
}

type searchRequest struct {
	Query     string   `json:"q"`
	DateRange string   `json:"dateRange"`
	StartDate string   `json:"startdt"`
	EndDate   string   `json:"enddt"`
	Forms     []string `json:"forms"`
	From      string   `json:"from"`
	Size      string   `json:"size"`
}

type searchResponse struct {
	Hits struct {
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

type searchHit struct {
	// ID is the composite "accession:document" identifier.
	ID     string `json:"_id"`
	Source struct {
		DisplayNames []string `json:"display_names"`
		CIKs         []string `json:"ciks"`
		Form         string   `json:"form"`
		FileDate     string   `json:"file_date"`
		FileName     string   `json:"file_name"`
	} `json:"_source"`
}

// Search issues a single-page EFTS query for forms D and D/A filed within
// [start, end]. A non-200 status or undecodable response is returned as an
// error so the caller can fall back to the master index.
func (c *FullTextSearchClient) Search(ctx context.Context, start, end time.Time) ([]FilingReference, error) {
	payload := searchRequest{
		Query:     "*",
		DateRange: "custom",
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		Forms:     []string{FormD, FormDA},
		From:      "0",
		Size:      fmt.Sprintf("%d", fullTextPageSize),
	}

	resp, err := c.fetch.PostJSON(ctx, fullTextSearchURL, payload)
	if err != nil {
		return nil, fmt.Errorf("full-text search request failed: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("full-text search returned status %d", resp.StatusCode)
	}

	result, err := decodeSearchResponse(resp.Body)
	if err != nil {
		return nil, err
	}

	hits := result.Hits.Hits
	if len(hits) >= fullTextPageSize {
		c.log.Warn("full-text search hit the single-page cap; filings beyond the first page are not discovered",
			zap.Int("page_size", fullTextPageSize))
	}

	refs := make([]FilingReference, 0, len(hits))
	for _, hit := range hits {
		ref := hit.toReference()
		if ref.CIK == "" || ref.Filename == "" {
			c.log.Debug("dropping search hit without cik or filename",
				zap.String("company", ref.CompanyName))
			continue
		}
		if ref.FormType != FormD && ref.FormType != FormDA {
			c.log.Debug("dropping search hit with unexpected form type",
				zap.String("company", ref.CompanyName),
				zap.String("form", ref.FormType))
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// decodeSearchResponse unmarshals the EFTS body, repairing the JSON when a
// strict decode fails. EFTS occasionally returns truncated or otherwise
// sloppy bodies under load.
func decodeSearchResponse(body []byte) (*searchResponse, error) {
	var result searchResponse
	if err := json.Unmarshal(body, &result); err == nil {
		return &result, nil
	}

	repaired, err := jsonrepair.RepairJSON(string(body))
	if err != nil {
		return nil, fmt.Errorf("full-text search response is not valid JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &result); err != nil {
		return nil, fmt.Errorf("failed to parse full-text search response: %w", err)
	}
	return &result, nil
}

func (h searchHit) toReference() FilingReference {
	company := "Unknown"
	if len(h.Source.DisplayNames) > 0 && h.Source.DisplayNames[0] != "" {
		company = h.Source.DisplayNames[0]
	}

	cik := ""
	if len(h.Source.CIKs) > 0 {
		cik = h.Source.CIKs[0]
	}

	filed, _ := time.Parse("2006-01-02", h.Source.FileDate)

	// The composite _id is "accession:document"; the accession is the part
	// before the separator. No separator means no usable accession.
	accession := ""
	if i := strings.Index(h.ID, ":"); i > 0 {
		accession = h.ID[:i]
	}

	return FilingReference{
		CompanyName:     company,
		FormType:        h.Source.Form,
		CIK:             cik,
		DateFiled:       filed,
		Filename:        h.Source.FileName,
		AccessionNumber: accession,
	}
}
