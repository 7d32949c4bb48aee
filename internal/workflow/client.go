package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/valetapp/valet/internal/logging"
)

// ExecutionTimeout bounds a single workflow call. External workflows have
// operator-controlled latency, so this is the one hard timeout in the core.
const ExecutionTimeout = 30 * time.Second

// Invocation is the wire body sent to a workflow endpoint.
type Invocation struct {
	WorkflowID string          `json:"workflow_id"`
	Timestamp  string          `json:"timestamp"` // RFC 3339
	Data       json.RawMessage `json:"data"`
}

// Client executes external workflows over HTTP. Calls are independent;
// concurrent invocations of the same workflow are allowed and not deduped.
type Client struct {
	registry *Registry
	http     *http.Client
	timeout  time.Duration
	log      *logging.Logger
}

// ClientOption configures the execution client.
type ClientOption func(*Client)

// WithTimeout overrides the execution bound (used in tests).
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// NewClient creates a workflow execution client.
func NewClient(registry *Registry, log *logging.Logger, opts ...ClientOption) *Client {
	c := &Client{
		registry: registry,
		http:     &http.Client{},
		timeout:  ExecutionTimeout,
		log:      log.Sub("workflow"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes one workflow call: resolve the endpoint, POST the invocation,
// and return the endpoint's JSON output. Exactly one network attempt is made;
// all failure modes are normalized to the typed errors in this package.
func (c *Client) Run(ctx context.Context, id string, params json.RawMessage) (json.RawMessage, error) {
	url, err := c.registry.Endpoint(id)
	if err != nil {
		return nil, err
	}

	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}

	body, err := json.Marshal(Invocation{
		WorkflowID: id,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Data:       params,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling invocation: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.log.Info().Str("workflow", id).Msg("executing workflow")
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.log.Warn().Str("workflow", id).Dur("elapsed", time.Since(start)).Msg("workflow timed out")
			return nil, &TimeoutError{WorkflowID: id, Limit: c.timeout}
		}
		return nil, fmt.Errorf("workflow %q request failed: %w", id, err)
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)
	// The deadline can also fire mid-body, after headers arrived.
	if readErr != nil && (errors.Is(readErr, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)) {
		c.log.Warn().Str("workflow", id).Dur("elapsed", time.Since(start)).Msg("workflow timed out")
		return nil, &TimeoutError{WorkflowID: id, Limit: c.timeout}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := "no error details provided"
		if readErr == nil && len(bytes.TrimSpace(respBody)) > 0 {
			text = string(respBody)
		}
		return nil, &RemoteExecutionError{
			WorkflowID: id,
			StatusCode: resp.StatusCode,
			Body:       text,
		}
	}
	if readErr != nil {
		return nil, fmt.Errorf("reading workflow %q response: %w", id, readErr)
	}

	if !json.Valid(respBody) {
		return nil, &RemoteExecutionError{
			WorkflowID: id,
			StatusCode: resp.StatusCode,
			Body:       "response is not valid JSON",
		}
	}

	c.log.Info().
		Str("workflow", id).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("workflow completed")

	return json.RawMessage(respBody), nil
}
