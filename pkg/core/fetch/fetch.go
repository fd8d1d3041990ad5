// Package fetch provides the HTTP capability shared by every EDGAR-facing
// component. SEC requires an identifying User-Agent on every request and
// expects automated clients to stay under 10 requests per second, so the
// client paces successive calls with a fixed minimum interval.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	// PaceInterval is the minimum gap between successive requests.
	PaceInterval = 150 * time.Millisecond

	defaultTimeout = 30 * time.Second
)

// Response is the subset of an HTTP response the pipeline cares about.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the response carried a 200 status.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode == http.StatusOK
}

// Doer is the injected fetch capability. Implementations must be safe for
// sequential reuse across components; the pipeline issues one call at a time.
type Doer interface {
	Get(ctx context.Context, url string) (*Response, error)
	PostJSON(ctx context.Context, url string, payload interface{}) (*Response, error)
}

// Client is the paced production Doer. One Client is shared by discovery,
// detail resolution and delivery so the pacing budget is honored in
// aggregate, not per component.
type Client struct {
	httpClient *http.Client
	userAgent  string
	pace       time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewClient creates a paced client that sends userAgent on every request.
func NewClient(userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  userAgent,
		pace:       PaceInterval,
	}
}

// SetPace overrides the inter-request interval. Used by tests; production
// code keeps the default.
func (c *Client) SetPace(d time.Duration) {
	c.mu.Lock()
	c.pace = d
	c.mu.Unlock()
}

// wait blocks until at least the pace interval has passed since the previous
// request issued through this client.
func (c *Client) wait() {
	c.mu.Lock()
	now := time.Now()
	sleep := c.last.Add(c.pace).Sub(now)
	if sleep < 0 {
		sleep = 0
	}
	c.last = now.Add(sleep)
	c.mu.Unlock()

	if sleep > 0 {
		time.Sleep(sleep)
	}
}

// Get issues a paced GET and returns the status and body. Non-200 statuses
// are returned to the caller, not treated as errors; only transport failures
// error.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	c.wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	return c.do(req)
}

// PostJSON issues a paced POST with a JSON-encoded payload.
func (c *Client) PostJSON(ctx context.Context, url string, payload interface{}) (*Response, error) {
	c.wait()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", req.URL, err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
