package streamclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/c360/surfacestream/errors"
	"github.com/c360/surfacestream/protocol"
)

// WebSocketTransport implements Transport over a WebSocket connection. Each
// text frame from the agent carries one protocol line and is surfaced to the
// line decoder with a trailing newline. Outbound envelopes are written as a
// single text message on a short-lived connection; any acknowledgment
// messages arrive on the live inbound stream, so Send returns an empty
// response stream.
type WebSocketTransport struct {
	dialer  *websocket.Dialer
	headers http.Header
}

// NewWebSocketTransport creates a WebSocketTransport. A nil dialer falls
// back to websocket.DefaultDialer. The capabilities declaration rides along
// as a handshake header.
func NewWebSocketTransport(dialer *websocket.Dialer, headers http.Header) *WebSocketTransport {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	merged := http.Header{}
	for key, values := range headers {
		for _, v := range values {
			merged.Add(key, v)
		}
	}
	caps, err := json.Marshal(protocol.DefaultCapabilities())
	if err != nil {
		// DefaultCapabilities is a static value; this cannot fail
		caps = []byte("{}")
	}
	merged.Set(protocol.CapabilitiesHeader, string(caps))

	return &WebSocketTransport{
		dialer:  dialer,
		headers: merged,
	}
}

// Stream dials the agent endpoint and adapts the frame sequence to a line
// stream. Cancelling ctx closes the connection, unblocking any pending read.
func (t *WebSocketTransport) Stream(ctx context.Context, endpoint string) (io.ReadCloser, error) {
	conn, resp, err := t.dialer.DialContext(ctx, endpoint, t.headers)
	if err != nil {
		if resp != nil && resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, errors.WrapInvalid(err, "WebSocketTransport", "Stream", "dial agent")
		}
		return nil, errors.WrapTransient(err, "WebSocketTransport", "Stream", "dial agent")
	}

	stream := &wsStream{
		conn: conn,
		done: make(chan struct{}),
	}
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stream.done:
		}
	}()

	return stream, nil
}

// Send writes the envelope as one text message and returns an empty response
// stream.
func (t *WebSocketTransport) Send(ctx context.Context, endpoint string, payload []byte) (io.ReadCloser, error) {
	conn, resp, err := t.dialer.DialContext(ctx, endpoint, t.headers)
	if err != nil {
		if resp != nil && resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, errors.WrapInvalid(err, "WebSocketTransport", "Send", "dial agent")
		}
		return nil, errors.WrapTransient(err, "WebSocketTransport", "Send", "dial agent")
	}
	defer func() {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return nil, errors.WrapTransient(err, "WebSocketTransport", "Send", "write envelope")
	}

	return io.NopCloser(bytes.NewReader(nil)), nil
}

// wsStream adapts a websocket connection to io.ReadCloser, delivering one
// frame per line.
type wsStream struct {
	conn *websocket.Conn
	buf  []byte
	done chan struct{}
}

func (s *wsStream) Read(p []byte) (int, error) {
	for len(s.buf) == 0 {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return 0, io.EOF
			}
			return 0, err
		}
		s.buf = append(data, '\n')
	}

	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

func (s *wsStream) Close() error {
	close(s.done)
	return s.conn.Close()
}
