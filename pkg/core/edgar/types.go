// Package edgar discovers Form D / D-A filings on SEC EDGAR. Discovery is
// two-tier: the full-text search API is tried first, with the quarterly
// master index as the fallback path.
package edgar

import (
	"strings"
	"time"
)

// Form types accepted by the pipeline.
const (
	FormD  = "D"
	FormDA = "D/A"
)

// FilingReference is a discovered candidate filing, prior to detail
// enrichment. References with an empty CIK or filename are dropped at the
// source; consumers can rely on both being present.
type FilingReference struct {
	CompanyName     string
	FormType        string // FormD or FormDA
	CIK             string
	DateFiled       time.Time
	Filename        string
	AccessionNumber string // NNNNNNNNNN-NN-NNNNNN, may be empty
}

// AccessionFromFilename derives an accession number from an index filename:
// the last path segment with any ".txt" suffix stripped.
// "edgar/data/123/0001234567-24-000001.txt" -> "0001234567-24-000001".
func AccessionFromFilename(filename string) string {
	seg := filename
	if i := strings.LastIndex(filename, "/"); i >= 0 {
		seg = filename[i+1:]
	}
	return strings.TrimSuffix(seg, ".txt")
}

// dayStart truncates a time to UTC midnight of its calendar date. Index
// dates parse as UTC while run windows are built from local time, so the
// location must be discarded before comparing.
func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// inRange reports whether filed falls within [start, end], inclusive,
// comparing calendar dates only.
func inRange(filed, start, end time.Time) bool {
	d := dayStart(filed)
	return !d.Before(dayStart(start)) && !d.After(dayStart(end))
}
