package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"formdwatch/pkg/core/fetch"
	"formdwatch/pkg/core/formd"
)

func testClient() *fetch.Client {
	c := fetch.NewClient("formdwatch-test test@example.com")
	c.SetPace(0)
	return c
}

func testRecords() []formd.OfferingRecord {
	return []formd.OfferingRecord{
		{CompanyName: "Acme Robotics Inc", TotalOfferingAmount: 3_000_000, IndustryGroup: "Technology"},
		{CompanyName: "Beta Labs LLC", TotalOfferingAmount: 2_500_000, IndustryGroup: "Other"},
	}
}

func testResult() *RunResult {
	return &RunResult{
		RunID:           "run-1",
		RunDate:         time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC),
		LookbackDays:    1,
		FundingRange:    Range{Min: 2_000_000, Max: 6_000_000},
		TotalDiscovered: 3,
		TotalParsed:     3,
		TotalFiltered:   2,
		Delivered:       true,
		Results:         testRecords(),
	}
}

func TestDeliverPostsBatch(t *testing.T) {
	var got struct {
		Records []formd.OfferingRecord `json:"records"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected json content type, got %q", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	w := NewWebhook(testClient(), srv.URL, io.Discard, zap.NewNop())
	if !w.Deliver(context.Background(), testRecords()) {
		t.Fatal("expected delivery success on 202")
	}
	if len(got.Records) != 2 || got.Records[0].CompanyName != "Acme Robotics Inc" {
		t.Errorf("unexpected delivered batch %v", got.Records)
	}
}

func TestDeliverServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	w := NewWebhook(testClient(), srv.URL, io.Discard, zap.NewNop())
	if w.Deliver(context.Background(), testRecords()) {
		t.Fatal("a 500 from the webhook must report delivery failure")
	}
}

func TestDeliverEmptyBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for an empty batch")
	}))
	defer srv.Close()

	w := NewWebhook(testClient(), srv.URL, io.Discard, zap.NewNop())
	if !w.Deliver(context.Background(), nil) {
		t.Fatal("an empty batch is a trivially successful delivery")
	}
}

func TestDeliverUnconfigured(t *testing.T) {
	var buf bytes.Buffer
	w := NewWebhook(testClient(), "", &buf, zap.NewNop())
	if w.Deliver(context.Background(), testRecords()) {
		t.Fatal("dry-run mode must report delivery failure")
	}

	out := buf.String()
	if !strings.Contains(out, "Acme Robotics Inc") || !strings.Contains(out, "Beta Labs LLC") {
		t.Errorf("dry-run must dump the records to the injected writer:\n%s", out)
	}
}

func TestWriteArtifactRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writer := NewArtifactWriter(dir, zap.NewNop())

	path, err := writer.WriteArtifact(testResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "form_d_results_20240102_150405.json" {
		t.Errorf("unexpected artifact name %q", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}
	var back RunResult
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("artifact is not valid JSON: %v", err)
	}
	if back.TotalFiltered != 2 || len(back.Results) != 2 {
		t.Errorf("artifact lost data: %+v", back)
	}
	if back.FundingRange.Min != 2_000_000 || back.FundingRange.Max != 6_000_000 {
		t.Errorf("artifact lost the configured range: %+v", back.FundingRange)
	}
}

func TestWriteArtifactBadDirectory(t *testing.T) {
	// A file where the directory should be makes the write fail.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	writer := NewArtifactWriter(blocker, zap.NewNop())
	if _, err := writer.WriteArtifact(testResult()); err == nil {
		t.Fatal("expected an error writing into a non-directory")
	}
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	writer := NewArtifactWriter(dir, zap.NewNop())

	path, err := writer.WriteReport(testResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	report := string(data)
	if !strings.Contains(report, "Acme Robotics Inc") {
		t.Errorf("report missing company name:\n%s", report)
	}
	if !strings.Contains(report, "| Filtered | 2 |") {
		t.Errorf("report missing stage counts:\n%s", report)
	}
}

func TestPrintSummaryTruncatesAtTen(t *testing.T) {
	res := testResult()
	res.Results = nil
	for i := 0; i < 12; i++ {
		res.Results = append(res.Results, formd.OfferingRecord{
			CompanyName:         fmt.Sprintf("Company %d", i),
			TotalOfferingAmount: 3_000_000,
		})
	}
	res.TotalFiltered = len(res.Results)

	var buf bytes.Buffer
	PrintSummary(&buf, res)

	out := buf.String()
	if !strings.Contains(out, "Company 9") {
		t.Errorf("expected the tenth company listed:\n%s", out)
	}
	if strings.Contains(out, "Company 10") {
		t.Errorf("expected the list truncated at ten:\n%s", out)
	}
	if !strings.Contains(out, "... and 2 more") {
		t.Errorf("expected the truncation tail:\n%s", out)
	}
	if !strings.Contains(out, "In target range ($2.0M - $6.0M): 12") {
		t.Errorf("expected the range line:\n%s", out)
	}
}
