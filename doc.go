// Package surfacestream is a client engine for server-driven user
// interfaces. A remote agent describes a UI as a stream of events; this
// module reconstructs and maintains a local mirror of that UI and exposes it
// to an embedding rendering layer.
//
// # Architecture
//
// The engine is a pipeline of small packages:
//
//	┌─────────────────────────────────────┐
//	│         streamclient                │  Connection lifecycle,
//	│  (transports, reconnect, backoff)   │  outbound requests
//	└─────────────────────────────────────┘
//	           ↓ decoded lines (jsonl)
//	┌─────────────────────────────────────┐
//	│           dispatch                  │  Message type routing
//	└─────────────────────────────────────┘
//	           ↓ state mutations
//	┌─────────────────────────────────────┐
//	│           surface                   │  Surface store: components,
//	│   (store, readiness, notifiers)     │  data models, validation
//	└─────────────────────────────────────┘
//	           ↓ bindings (binding)
//	┌─────────────────────────────────────┐
//	│       embedding renderer            │  Resolves components via
//	│      (registry, callbacks)          │  registry, subscribes to
//	└─────────────────────────────────────┘  change notifications
//
// Agents push five message kinds: surface creation, component updates, data
// model patches, surface deletion, and scoped errors. The store applies each
// one and notifies subscribers, holding back change notifications until a
// surface has its root component and is safe to render.
//
// # Packages
//
//   - protocol: wire message types and the client-to-agent envelope
//   - jsonl: tolerant line-delimited JSON decoding, with SSE framing support
//   - surface: the mirrored surface state and its notification fan-out
//   - binding: JSON Pointer resolution and ${...} format strings
//   - dispatch: routes decoded messages to store operations
//   - streamclient: transports, reconnection, actions, error reports
//   - registry: renderer and local-action lookup for the embedding layer
//   - config: file plus environment configuration
//
// # Embedding
//
// A renderer wires the pieces together: create a surface.Store, subscribe to
// its notifications, build a dispatch.Dispatcher over it, and hand that to a
// streamclient.Client running against the agent's endpoint. User input flows
// back through Client.SendAction; render failures through
// Client.SendErrorReport. The cmd/surfacestream command shows the full
// wiring.
package surfacestream
