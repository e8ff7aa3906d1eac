package streamclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/c360/surfacestream/errors"
	"github.com/c360/surfacestream/protocol"
)

// Transport opens agent streams and sends outbound envelopes. Errors must be
// classified: client-class failures (HTTP 4xx and equivalents) wrap as
// invalid so the reconnect loop treats them as fatal; everything else wraps
// as transient and is retried.
type Transport interface {
	// Stream opens the inbound event stream for an agent endpoint.
	Stream(ctx context.Context, endpoint string) (io.ReadCloser, error)

	// Send posts an outbound envelope and returns the response event
	// stream, which may be empty.
	Send(ctx context.Context, endpoint string, payload []byte) (io.ReadCloser, error)
}

// HTTPTransport implements Transport over plain HTTP: GET for the inbound
// stream, POST for outbound envelopes. Request timeouts belong to the
// supplied http.Client; cancellation flows through the request context, which
// also aborts in-flight body reads.
type HTTPTransport struct {
	client       *http.Client
	headers      http.Header
	capabilities string
}

// NewHTTPTransport creates an HTTPTransport. A nil client falls back to
// http.DefaultClient. Extra headers are attached to every request.
func NewHTTPTransport(client *http.Client, headers http.Header) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}

	caps, err := json.Marshal(protocol.DefaultCapabilities())
	if err != nil {
		// DefaultCapabilities is a static value; this cannot fail
		caps = []byte("{}")
	}

	return &HTTPTransport{
		client:       client,
		headers:      headers,
		capabilities: string(caps),
	}
}

// Stream opens the inbound event stream with a GET request.
func (t *HTTPTransport) Stream(ctx context.Context, endpoint string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.WrapInvalid(err, "HTTPTransport", "Stream", "build request")
	}
	t.applyHeaders(req)
	req.Header.Set("Accept", "application/x-ndjson, text/event-stream")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, errors.WrapTransient(err, "HTTPTransport", "Stream", "open stream")
	}

	if err := classifyStatus(resp, "Stream"); err != nil {
		return nil, err
	}

	return resp.Body, nil
}

// Send posts an outbound envelope; the response body is the (possibly empty)
// event stream carrying the agent's reply messages.
func (t *HTTPTransport) Send(ctx context.Context, endpoint string, payload []byte) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.WrapInvalid(err, "HTTPTransport", "Send", "build request")
	}
	t.applyHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson, text/event-stream")
	req.Header.Set(protocol.CapabilitiesHeader, t.capabilities)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, errors.WrapTransient(err, "HTTPTransport", "Send", "post envelope")
	}

	if err := classifyStatus(resp, "Send"); err != nil {
		return nil, err
	}

	return resp.Body, nil
}

func (t *HTTPTransport) applyHeaders(req *http.Request) {
	for key, values := range t.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}
}

// classifyStatus drains and closes the body on failure statuses. 4xx maps to
// the invalid class (fatal, caller intervention required); everything else
// non-2xx is transient.
func classifyStatus(resp *http.Response, operation string) error {
	if resp.StatusCode < 300 {
		return nil
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()

	statusErr := fmt.Errorf("agent returned %s: %w", resp.Status, errors.ErrClientError)
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return errors.WrapInvalid(statusErr, "HTTPTransport", operation, "check response status")
	}
	return errors.WrapTransient(
		fmt.Errorf("agent returned %s", resp.Status),
		"HTTPTransport", operation, "check response status")
}
