// Package client talks to the remote scoring service: batch submission and
// per-job result queries. All wire-shape ambiguity (array-wrapped
// envelopes, historical field names, empty bodies) is absorbed here so the
// poll coordinator only ever sees normalized outcomes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/replylab/replyrank/internal/batch"
	"github.com/replylab/replyrank/internal/dataset"
	"github.com/replylab/replyrank/internal/logging"
	"github.com/replylab/replyrank/internal/score"
)

// Sentinel errors for submission and polling failures.
var (
	// ErrMissingEndpoint indicates the client was constructed without a
	// base URL.
	ErrMissingEndpoint = errors.New("scoring endpoint is required")

	// ErrMissingJobID indicates a successful submission response that did
	// not carry a job identifier.
	ErrMissingJobID = errors.New("submission response missing job identifier")

	// ErrSubmitRejected indicates a non-success submission status.
	ErrSubmitRejected = errors.New("submission rejected by scoring service")

	// ErrJobQueryFailed indicates a results query that failed with a
	// status other than 404. The coordinator retries these next round.
	ErrJobQueryFailed = errors.New("job status query failed")
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 16 << 20

// FileMeta describes the uploaded file a submission belongs to.
type FileMeta struct {
	Filename  string
	TotalRows int
}

// JobUpdate is the normalized outcome of one job status query.
// Done is true only when the service reported completion AND attached at
// least one record; a "done" flag with no data is treated as still pending
// to guard against completion being flagged before results are written.
type JobUpdate struct {
	Done    bool
	Records []score.ResultRecord
}

// Client is an HTTP client for the scoring service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client. Used by tests and by
// callers that need custom transport settings.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the scoring service at endpoint.
func New(endpoint string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, ErrMissingEndpoint
	}

	c := &Client{
		baseURL:    strings.TrimRight(endpoint, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// submitRequest is the submission endpoint's request body.
type submitRequest struct {
	Items        []dataset.Row `json:"items"`
	Filename     string        `json:"filename"`
	TotalRows    int           `json:"totalRows"`
	BatchIndex   int           `json:"batchIndex"`
	TotalBatches int           `json:"totalBatches"`
}

// submitResponse is the submission endpoint's success body.
type submitResponse struct {
	JobID string `json:"jobId"`
}

// SubmitBatch submits one batch for scoring and returns the opaque job
// identifier. Any non-success status, or a success response without a job
// identifier, is an error; the caller treats it as fatal to the submission.
func (c *Client) SubmitBatch(ctx context.Context, b batch.Batch[dataset.Row], meta FileMeta) (string, error) {
	body, err := json.Marshal(submitRequest{
		Items:        b.Rows,
		Filename:     meta.Filename,
		TotalRows:    meta.TotalRows,
		BatchIndex:   b.Index,
		TotalBatches: b.TotalBatches,
	})
	if err != nil {
		return "", fmt.Errorf("encoding submission request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/jobs", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submitting batch: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("reading submission response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: status %d", ErrSubmitRejected, resp.StatusCode)
	}

	var sr submitResponse
	if err := json.Unmarshal(data, &sr); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingJobID, err)
	}
	if sr.JobID == "" {
		return "", ErrMissingJobID
	}

	logging.FromContext(ctx).Debug().
		Str("job_id", sr.JobID).
		Int("batch_index", b.Index).
		Int("rows", len(b.Rows)).
		Msg("batch submitted")

	return sr.JobID, nil
}

// FetchJob queries the results endpoint for one job. The mapping to
// outcomes follows the poll rules:
//   - 404, empty body, or unparsable body: still pending, no error
//   - "processing", or "done" with zero records: still pending
//   - "done" with records: JobUpdate{Done: true, Records: ...}
//   - any other failure status or transport error: error (retried next round)
func (c *Client) FetchJob(ctx context.Context, jobID string) (JobUpdate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/jobs/"+jobID, nil)
	if err != nil {
		return JobUpdate{}, fmt.Errorf("building job query: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return JobUpdate{}, fmt.Errorf("%w: %v", ErrJobQueryFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return JobUpdate{}, fmt.Errorf("%w: reading body: %v", ErrJobQueryFailed, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// The service 404s until the job record exists. Still pending.
		return JobUpdate{}, nil
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return JobUpdate{}, fmt.Errorf("%w: status %d", ErrJobQueryFailed, resp.StatusCode)
	}

	return decodeJobEnvelope(data), nil
}
