// Package streamclient maintains the connection between a surface host and
// its agent.
//
// # Overview
//
// A Client runs a reconnect loop around a Transport: it opens the agent's
// event stream, decodes line-delimited protocol messages, and hands each one
// to the dispatcher. When the stream ends or a transient failure occurs, the
// client waits out an exponential backoff delay with jitter and reconnects.
// Client-class failures (bad route, unauthorized) are never retried; they
// surface to the caller immediately.
//
// # Transports
//
// Two transports are provided:
//
//   - HTTPTransport streams GET responses and accepts SSE "data:" framing as
//     well as plain JSONL.
//   - WebSocketTransport adapts text frames on a websocket connection to the
//     same line-oriented stream.
//
// Both carry the client capabilities header on outbound requests.
//
// # Outbound requests
//
// SendAction and SendErrorReport post client-to-agent envelopes. Their
// response bodies are event streams in their own right and are dispatched
// synchronously with the call, so an action's resulting surface updates are
// visible in the store when SendAction returns. Error reports are
// rate-limited and dropped, not failed, when over budget.
//
// # Connection state
//
// The client exposes a small state machine (Disconnected, Connecting,
// Connected, Reconnecting). Subscribers registered with OnStateChanged see
// each transition exactly once; duplicate transitions are suppressed.
package streamclient
