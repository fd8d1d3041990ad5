package edgar

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeSearch struct {
	refs  []FilingReference
	err   error
	calls int
}

func (f *fakeSearch) Search(context.Context, time.Time, time.Time) ([]FilingReference, error) {
	f.calls++
	return f.refs, f.err
}

type fakeIndex struct {
	refs  []FilingReference
	err   error
	calls int
}

func (f *fakeIndex) Fetch(context.Context, time.Time, time.Time) ([]FilingReference, error) {
	f.calls++
	return f.refs, f.err
}

func ref(company, accession string) FilingReference {
	return FilingReference{
		CompanyName:     company,
		FormType:        FormD,
		CIK:             "1234567",
		Filename:        "edgar/data/1234567/" + accession + ".txt",
		AccessionNumber: accession,
	}
}

func TestDiscoverUsesSearchResultVerbatim(t *testing.T) {
	search := &fakeSearch{refs: []FilingReference{ref("Acme", "0001-24-000001")}}
	index := &fakeIndex{refs: []FilingReference{ref("Other", "0002-24-000002")}}
	d := NewDiscovery(search, index, zap.NewNop())

	refs := d.Discover(context.Background(), time.Now().AddDate(0, 0, -1), time.Now())

	if len(refs) != 1 || refs[0].CompanyName != "Acme" {
		t.Fatalf("expected the search result, got %v", refs)
	}
	if index.calls != 0 {
		t.Errorf("index fallback must not run when search succeeds, ran %d times", index.calls)
	}
}

func TestDiscoverFallsBackOnSearchError(t *testing.T) {
	search := &fakeSearch{err: errors.New("transport down")}
	index := &fakeIndex{refs: []FilingReference{ref("Fallback Co", "0002-24-000002")}}
	d := NewDiscovery(search, index, zap.NewNop())

	refs := d.Discover(context.Background(), time.Now().AddDate(0, 0, -1), time.Now())

	if index.calls != 1 {
		t.Fatalf("expected exactly one fallback fetch, got %d", index.calls)
	}
	if len(refs) != 1 || refs[0].CompanyName != "Fallback Co" {
		t.Fatalf("expected fallback result, got %v", refs)
	}
}

func TestDiscoverFallsBackOnEmptySearch(t *testing.T) {
	search := &fakeSearch{}
	index := &fakeIndex{refs: []FilingReference{ref("Fallback Co", "0002-24-000002")}}
	d := NewDiscovery(search, index, zap.NewNop())

	refs := d.Discover(context.Background(), time.Now().AddDate(0, 0, -1), time.Now())
	if index.calls != 1 || len(refs) != 1 {
		t.Fatalf("expected fallback on empty search, calls=%d refs=%v", index.calls, refs)
	}
}

func TestDiscoverBothPathsFailing(t *testing.T) {
	search := &fakeSearch{err: errors.New("down")}
	index := &fakeIndex{err: errors.New("also down")}
	d := NewDiscovery(search, index, zap.NewNop())

	refs := d.Discover(context.Background(), time.Now().AddDate(0, 0, -1), time.Now())
	if len(refs) != 0 {
		t.Fatalf("expected an empty candidate list, got %v", refs)
	}
}

func TestDiscoverDeduplicates(t *testing.T) {
	search := &fakeSearch{refs: []FilingReference{
		ref("Acme", "0001-24-000001"),
		ref("Beta", "0002-24-000002"),
		ref("Acme Again", "0001-24-000001"),
	}}
	d := NewDiscovery(search, &fakeIndex{}, zap.NewNop())

	refs := d.Discover(context.Background(), time.Now().AddDate(0, 0, -1), time.Now())
	if len(refs) != 2 {
		t.Fatalf("expected duplicates removed, got %d refs", len(refs))
	}
	if refs[0].CompanyName != "Acme" || refs[1].CompanyName != "Beta" {
		t.Errorf("first occurrence must win and order be preserved, got %v", refs)
	}
}
