// Package filter applies the amount-range and industry-exclusion policy to
// parsed offering records.
package filter

import (
	"formdwatch/pkg/core/formd"
)

// OfferingFilter selects records inside an inclusive dollar range while
// excluding fund and financial-industry issuers.
type OfferingFilter struct {
	min      int64
	max      int64
	excluded map[string]struct{}
}

// New creates a filter for [min, max] with the given excluded industry
// groups.
func New(min, max int64, excludedIndustries []string) *OfferingFilter {
	excluded := make(map[string]struct{}, len(excludedIndustries))
	for _, industry := range excludedIndustries {
		excluded[industry] = struct{}{}
	}
	return &OfferingFilter{min: min, max: max, excluded: excluded}
}

// Apply returns the records that pass the policy, in input order. A record
// passes iff its amount is not the indefinite sentinel, falls within
// [min, max] inclusive, its industry group is not excluded, and it has no
// investment fund type (any fund type means a pooled vehicle regardless of
// the industry text).
func (f *OfferingFilter) Apply(records []formd.OfferingRecord) []formd.OfferingRecord {
	filtered := make([]formd.OfferingRecord, 0, len(records))
	for _, rec := range records {
		if f.Includes(rec) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// Includes reports whether a single record passes the policy.
func (f *OfferingFilter) Includes(rec formd.OfferingRecord) bool {
	if rec.TotalOfferingAmount == formd.IndefiniteOffering {
		return false
	}
	if rec.TotalOfferingAmount < f.min || rec.TotalOfferingAmount > f.max {
		return false
	}
	if _, ok := f.excluded[rec.IndustryGroup]; ok {
		return false
	}
	if rec.InvestmentFundType != "" {
		return false
	}
	return true
}
