package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetSetsUserAgent(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	c := NewClient("formdwatch-test test@example.com")
	c.SetPace(0)

	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.OK() || string(resp.Body) != "hello" {
		t.Errorf("unexpected response %+v", resp)
	}
	if gotAgent != "formdwatch-test test@example.com" {
		t.Errorf("unexpected user agent %q", gotAgent)
	}
}

func TestGetReturnsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient("agent")
	c.SetPace(0)

	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("a 404 is a response, not an error: %v", err)
	}
	if resp.OK() || resp.StatusCode != http.StatusNotFound {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestPostJSONEncodesPayload(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient("agent")
	c.SetPace(0)

	resp, err := c.PostJSON(context.Background(), srv.URL, map[string]string{"q": "*"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("unexpected status %d", resp.StatusCode)
	}
	if got["q"] != "*" {
		t.Errorf("payload lost in transit: %v", got)
	}
}

func TestPacingDelaysSuccessiveCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := NewClient("agent")
	c.SetPace(40 * time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := c.Get(context.Background(), srv.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// Three calls: the second and third each wait out the pace interval.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("expected pacing of at least 80ms across 3 calls, got %v", elapsed)
	}
}
