package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"formdwatch/pkg/core/fetch"
	"formdwatch/pkg/core/formd"
)

// Webhook posts the filtered record set to the downstream consumer as one
// batch. Delivery failures are reported as a boolean, never as an error;
// the run continues to artifact-writing regardless.
type Webhook struct {
	fetch fetch.Doer
	url   string
	out   io.Writer
	log   *zap.Logger
}

// NewWebhook creates a webhook sink. An empty url puts the sink in dry-run
// mode: records are written to out and delivery reports false.
func NewWebhook(doer fetch.Doer, url string, out io.Writer, log *zap.Logger) *Webhook {
	return &Webhook{fetch: doer, url: url, out: out, log: log}
}

type webhookPayload struct {
	Records []formd.OfferingRecord `json:"records"`
}

// Deliver posts the records in one request. An empty record set is a
// trivially successful delivery.
func (w *Webhook) Deliver(ctx context.Context, records []formd.OfferingRecord) bool {
	if len(records) == 0 {
		w.log.Info("no records to deliver")
		return true
	}

	if w.url == "" {
		w.log.Warn("webhook url not configured, printing records instead")
		dump, err := json.MarshalIndent(records, "", "  ")
		if err == nil {
			fmt.Fprintln(w.out, string(dump))
		}
		return false
	}

	resp, err := w.fetch.PostJSON(ctx, w.url, webhookPayload{Records: records})
	if err != nil {
		w.log.Error("webhook delivery failed", zap.Error(err))
		return false
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		w.log.Info("delivered records to webhook", zap.Int("count", len(records)))
		return true
	default:
		w.log.Error("webhook rejected batch",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", resp.Body))
		return false
	}
}
