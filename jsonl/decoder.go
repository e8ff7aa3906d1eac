// Package jsonl decodes a line-delimited JSON event stream into protocol
// messages. It tolerates SSE framing: blank lines, ": comment" lines, a
// "data:" prefix, and the [DONE] sentinel are all recognized, and malformed
// lines are logged and skipped without aborting the stream.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/c360/surfacestream/protocol"
)

const (
	doneSentinel = "[DONE]"

	// Scanner buffer sizing: start at 64 KiB, allow single lines up to 1 MiB
	initialBufferSize = 64 * 1024
	maxLineSize       = 1024 * 1024
)

// Decoder turns a byte stream into a sequence of decoded protocol messages.
// It is a pull-based iterator: callers invoke Next until io.EOF or
// cancellation. Decoder is not safe for concurrent use.
type Decoder struct {
	scanner *bufio.Scanner
	logger  *slog.Logger
}

// NewDecoder creates a Decoder reading from r. A nil logger falls back to
// slog.Default().
func NewDecoder(r io.Reader, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialBufferSize), maxLineSize)

	return &Decoder{
		scanner: scanner,
		logger:  logger,
	}
}

// Next returns the next decoded message. It returns io.EOF when the
// underlying stream ends, and ctx.Err() when the context is cancelled.
// Malformed lines are logged and skipped.
func (d *Decoder) Next(ctx context.Context) (*protocol.Message, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !d.scanner.Scan() {
			if err := d.scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}

		line := strings.TrimSpace(d.scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		// SSE framing: strip a "data:" prefix with or without one
		// following space
		if rest, ok := strings.CutPrefix(line, "data:"); ok {
			line = strings.TrimPrefix(rest, " ")
		}

		if line == "" || line == doneSentinel {
			continue
		}

		var msg protocol.Message
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			d.logger.Warn("skipping malformed stream line",
				"error", err,
				"line", truncate(line, 100))
			continue
		}

		return &msg, nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
