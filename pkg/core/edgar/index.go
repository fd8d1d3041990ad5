package edgar

import (
	"regexp"
	"strings"
	"time"
)

// Index documents use either pipe delimiters or runs of two-plus spaces.
var spaceRunDelimiter = regexp.MustCompile(`\s{2,}`)

// ParseIndex extracts Form D / D-A filing references from the raw text of an
// EDGAR index document. The header section, terminated by a line of dashes,
// is discarded. Data lines carry at least five fields:
//
//	CIK|Company Name|Form Type|Date Filed|Filename
//
// Malformed lines (too few fields, unparsable date, empty CIK or filename)
// are skipped silently; index files are messy and a bad line must never
// poison the rest of the document.
func ParseIndex(content string) []FilingReference {
	var refs []FilingReference

	dataStarted := false
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "-----") {
			dataStarted = true
			continue
		}
		if !dataStarted || strings.TrimSpace(line) == "" {
			continue
		}

		var parts []string
		if strings.Contains(line, "|") {
			parts = strings.Split(line, "|")
		} else {
			parts = spaceRunDelimiter.Split(strings.TrimSpace(line), -1)
		}
		if len(parts) < 5 {
			continue
		}

		formType := strings.TrimSpace(parts[2])
		if formType != FormD && formType != FormDA {
			continue
		}

		cik := strings.TrimLeft(strings.TrimSpace(parts[0]), "0")
		filename := strings.TrimSpace(parts[4])
		if cik == "" || filename == "" {
			continue
		}

		filed, err := time.Parse("2006-01-02", strings.TrimSpace(parts[3]))
		if err != nil {
			continue
		}

		refs = append(refs, FilingReference{
			CompanyName:     strings.TrimSpace(parts[1]),
			FormType:        formType,
			CIK:             cik,
			DateFiled:       filed,
			Filename:        filename,
			AccessionNumber: AccessionFromFilename(filename),
		})
	}

	return refs
}
