package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rostersync-backend/lib/sis"
	"rostersync-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	batchSize    = 50
	batchTimeout = 15 * time.Second
)

// Credential is a resolved endpoint/token pair, ready to use.
type Credential struct {
	Endpoint string
	Token    string
}

// Outcome is the per-batch accounting of one push. Counts are in
// records, but success and failure are decided per batch: one bad
// record fails its whole batch of 50.
type Outcome struct {
	SuccessCount int      `json:"successCount"`
	FailedCount  int      `json:"failedCount"`
	Errors       []string `json:"errors,omitempty"`
}

// PushProgressFunc is invoked after each batch completes, success or
// failure, with the cumulative record count attempted so far.
type PushProgressFunc func(sent, total int)

type Pusher struct {
	http *resty.Client
}

func NewPusher() *Pusher {
	client := resty.New()
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")

	telemetry.InstrumentResty(client, "services/sync/http")

	return &Pusher{http: client}
}

// Push sends records in order, in batches of 50. Batches are
// independent: a failed batch is recorded in the outcome and the next
// one is still attempted.
func (p *Pusher) Push(ctx context.Context, records []sis.Record, cred Credential, onProgress PushProgressFunc) Outcome {
	ctx, span := tracer.Start(ctx, "Push")
	defer span.End()
	span.SetAttributes(attribute.Int("records", len(records)))

	var outcome Outcome
	sent := 0
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		err := p.sendBatch(ctx, batch, cred)
		sent += len(batch)
		if err != nil {
			span.RecordError(err)
			outcome.FailedCount += len(batch)
			outcome.Errors = append(outcome.Errors, err.Error())
		} else {
			outcome.SuccessCount += len(batch)
		}

		if onProgress != nil {
			onProgress(sent, len(records))
		}
	}

	span.SetAttributes(
		attribute.Int("success_count", outcome.SuccessCount),
		attribute.Int("failed_count", outcome.FailedCount),
	)
	return outcome
}

func (p *Pusher) sendBatch(ctx context.Context, batch []sis.Record, cred Credential) error {
	ctx, span := tracer.Start(ctx, "sendBatch")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	res, err := p.http.R().
		SetContext(ctx).
		SetHeader("authorization", "Bearer "+cred.Token).
		SetBody(map[string]any{"students": batch}).
		Post(apiURL(cred.Endpoint, "/api/v1/sync/students"))
	if err != nil {
		span.SetStatus(codes.Error, "failed to send batch")
		return err
	}
	if !res.IsSuccess() {
		err := fmt.Errorf("status %d: %s", res.StatusCode(), string(res.Body()))
		span.SetStatus(codes.Error, "sync api rejected batch")
		return err
	}
	return nil
}

// CheckHealth verifies both connectivity and the bearer token against
// the sync api.
func (p *Pusher) CheckHealth(ctx context.Context, cred Credential) error {
	ctx, span := tracer.Start(ctx, "CheckHealth")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	res, err := p.http.R().
		SetContext(ctx).
		SetHeader("authorization", "Bearer "+cred.Token).
		Get(apiURL(cred.Endpoint, "/api/v1/health"))
	if err != nil {
		span.SetStatus(codes.Error, "health check failed")
		return err
	}
	if !res.IsSuccess() {
		err := fmt.Errorf("status %d: %s", res.StatusCode(), string(res.Body()))
		span.SetStatus(codes.Error, "health check rejected")
		return err
	}
	return nil
}

func apiURL(endpoint, path string) string {
	return strings.TrimSuffix(endpoint, "/") + path
}
