package streamclient

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/c360/surfacestream/dispatch"
	"github.com/c360/surfacestream/errors"
	"github.com/c360/surfacestream/jsonl"
	"github.com/c360/surfacestream/pkg/backoff"
	"github.com/c360/surfacestream/protocol"
)

// Client owns the transport-level connection lifecycle for one agent
// endpoint. At most one reconnect loop runs per Client: starting a new
// connection supersedes and cancels a prior one. Outbound requests are
// independent one-shot operations that may run concurrently with the active
// loop; they never touch the reconnect attempt counter or connection state.
type Client struct {
	transport  Transport
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
	policy     backoff.Policy
	metrics    *Metrics
	errLimiter *rate.Limiter

	mu     sync.Mutex
	cancel context.CancelFunc

	stateMu sync.RWMutex
	state   ConnectionState
	subs    map[string]func(ConnectionState)
}

// New creates a stream client feeding the given dispatcher.
func New(transport Transport, dispatcher *dispatch.Dispatcher, opts ...Option) *Client {
	c := &Client{
		transport:  transport,
		dispatcher: dispatcher,
		logger:     slog.Default(),
		policy:     backoff.Default(),
		errLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
		state:      StateDisconnected,
		subs:       make(map[string]func(ConnectionState)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// OnStateChanged registers a callback invoked whenever the connection state
// changes. Duplicate transitions are suppressed. Returns an unsubscribe
// function.
func (c *Client) OnStateChanged(fn func(ConnectionState)) func() {
	id := uuid.NewString()

	c.stateMu.Lock()
	c.subs[id] = fn
	c.stateMu.Unlock()

	return func() {
		c.stateMu.Lock()
		delete(c.subs, id)
		c.stateMu.Unlock()
	}
}

// Connect opens the inbound event stream and runs the reconnect loop until
// ctx is cancelled, Disconnect is called, or a client-class failure occurs.
// Transient failures are retried with exponential backoff and jitter;
// client-class failures (HTTP 4xx equivalents: bad route, unauthorized) are
// returned to the caller without retrying. Cancellation returns nil.
//
// Connect blocks for the lifetime of the connection; callers normally run it
// in its own goroutine. A second Connect supersedes the first.
func (c *Client) Connect(ctx context.Context, endpoint string) error {
	runCtx := c.begin(ctx)
	defer c.setState(StateDisconnected)

	attempt := 0
	for {
		if runCtx.Err() != nil {
			return nil
		}

		if attempt == 0 {
			c.setState(StateConnecting)
		} else {
			c.setState(StateReconnecting)
		}
		c.metrics.incConnectAttempts()

		body, err := c.transport.Stream(runCtx, endpoint)
		switch {
		case err == nil:
			attempt = c.consume(runCtx, body, attempt)
			if runCtx.Err() != nil {
				return nil
			}
			attempt++
			c.metrics.incReconnects()
			c.logger.Info("stream ended, scheduling reconnect",
				"endpoint", endpoint,
				"attempt", attempt)

		case runCtx.Err() != nil:
			return nil

		case errors.IsInvalid(err):
			// Wrong route, bad request, unauthorized: retrying cannot
			// help, the caller has to intervene.
			c.logger.Error("connection rejected by agent",
				"endpoint", endpoint,
				"error", err)
			return err

		default:
			attempt++
			c.logger.Warn("connection attempt failed",
				"endpoint", endpoint,
				"attempt", attempt,
				"error", err)
		}

		c.setState(StateReconnecting)
		if err := backoff.Wait(runCtx, c.policy.Delay(attempt)); err != nil {
			return nil
		}
	}
}

// consume reads the stream until it ends or fails, dispatching each decoded
// message. The attempt counter resets to zero on the first message, once the
// connection has proven itself.
func (c *Client) consume(ctx context.Context, body io.ReadCloser, attempt int) int {
	defer func() {
		_ = body.Close()
	}()

	dec := jsonl.NewDecoder(body, c.logger)
	for {
		msg, err := dec.Next(ctx)
		if err != nil {
			if err != io.EOF && ctx.Err() == nil {
				c.logger.Warn("stream read failed", "error", err)
			}
			return attempt
		}

		if c.State() != StateConnected {
			attempt = 0
			c.setState(StateConnected)
		}

		c.dispatcher.Dispatch(msg)
		c.metrics.incMessages()
	}
}

// SendAction sends a user action to the agent. The response body is itself an
// event stream (possibly empty) that is dispatched synchronously with this
// call. dataModel, when non-nil, is the snapshot attached for surfaces
// created with the sendDataModel flag. Failures on this path are returned to
// the caller and never retried internally.
func (c *Client) SendAction(ctx context.Context, endpoint string, action *protocol.UserAction, dataModel any) error {
	if action == nil {
		return errors.WrapInvalid(errors.ErrInvalidMessage, "Client", "SendAction", "validate action")
	}

	c.logger.Debug("sending action",
		"action", action.Name,
		"surface_id", action.SurfaceID)

	err := c.send(ctx, endpoint, &protocol.ClientMessage{
		Version:   protocol.Version,
		Action:    action,
		DataModel: dataModel,
	})
	c.metrics.incRequest("action", outcome(err))
	return err
}

// SendErrorReport notifies the agent of a client-side error. Reports are
// rate-limited; a throttled report is logged and dropped without error so an
// error storm in the rendering layer cannot flood the agent.
func (c *Client) SendErrorReport(ctx context.Context, endpoint string, report *protocol.ErrorReport) error {
	if report == nil {
		return errors.WrapInvalid(errors.ErrInvalidMessage, "Client", "SendErrorReport", "validate report")
	}

	if !c.errLimiter.Allow() {
		c.logger.Warn("dropping rate-limited error report",
			"surface_id", report.SurfaceID,
			"code", report.Code)
		c.metrics.incRequest("error_report", "throttled")
		return nil
	}

	err := c.send(ctx, endpoint, &protocol.ClientMessage{
		Version: protocol.Version,
		Error:   report,
	})
	c.metrics.incRequest("error_report", outcome(err))
	return err
}

func (c *Client) send(ctx context.Context, endpoint string, env *protocol.ClientMessage) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return errors.WrapInvalid(err, "Client", "send", "marshal envelope")
	}

	body, err := c.transport.Send(ctx, endpoint, payload)
	if err != nil {
		return err
	}
	defer func() {
		_ = body.Close()
	}()

	dec := jsonl.NewDecoder(body, c.logger)
	for {
		msg, err := dec.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.WrapTransient(err, "Client", "send", "read response stream")
		}

		c.dispatcher.Dispatch(msg)
		c.metrics.incMessages()
	}
}

// Disconnect cancels the active reconnect loop, if any. In-flight reads are
// abandoned and pending backoff delays interrupted. Disconnecting an already
// disconnected client is a no-op.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Close disconnects the client. Closing twice is safe.
func (c *Client) Close() error {
	c.Disconnect()
	return nil
}

// begin cancels any prior loop and installs a fresh cancellable context.
func (c *Client) begin(ctx context.Context) context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	return runCtx
}

// setState records a transition and notifies subscribers, suppressing
// duplicates. Subscriber panics are isolated per callback.
func (c *Client) setState(next ConnectionState) {
	c.stateMu.Lock()
	if c.state == next {
		c.stateMu.Unlock()
		return
	}
	c.state = next
	callbacks := make([]func(ConnectionState), 0, len(c.subs))
	for _, fn := range c.subs {
		callbacks = append(callbacks, fn)
	}
	c.stateMu.Unlock()

	c.logger.Debug("connection state changed", "state", next.String())
	c.metrics.observeState(next)

	for _, fn := range callbacks {
		c.notify(fn, next)
	}
}

func (c *Client) notify(fn func(ConnectionState), state ConnectionState) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("subscriber panic in state notification",
				"state", state.String(),
				"panic", r)
		}
	}()
	fn(state)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
