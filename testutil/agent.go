package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
)

// ScriptedAgent is an in-process surface agent for testing. GET requests
// receive a scripted JSONL event stream; POST requests record the submitted
// payload and answer with an optional response script. Thread-safe for
// concurrent use.
type ScriptedAgent struct {
	// StreamScript lines are served, newline-terminated, to each GET.
	StreamScript []string
	// ActionScript lines are served in response to each POST.
	ActionScript []string
	// FailFirst makes the agent answer the first N GETs with HTTP 500
	// before serving the script.
	FailFirst int
	// Hold keeps GET streams open after the script until the request
	// context is cancelled, instead of ending the stream.
	Hold bool

	server *httptest.Server

	streamRequests atomic.Int64
	actionRequests atomic.Int64

	mu      sync.Mutex
	actions []string
}

// NewScriptedAgent starts the agent's HTTP server. Callers must Close it.
func NewScriptedAgent(stream ...string) *ScriptedAgent {
	a := &ScriptedAgent{StreamScript: stream}
	a.server = httptest.NewServer(http.HandlerFunc(a.handle))
	return a
}

// URL returns the agent's endpoint.
func (a *ScriptedAgent) URL() string {
	return a.server.URL
}

// Close shuts down the agent's server.
func (a *ScriptedAgent) Close() {
	a.server.Close()
}

// StreamRequests reports how many GET stream requests the agent has served,
// including deliberately failed ones.
func (a *ScriptedAgent) StreamRequests() int {
	return int(a.streamRequests.Load())
}

// ActionRequests reports how many POST requests the agent has served.
func (a *ScriptedAgent) ActionRequests() int {
	return int(a.actionRequests.Load())
}

// Actions returns the raw bodies of all POST requests received so far.
func (a *ScriptedAgent) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.actions))
	copy(out, a.actions)
	return out
}

func (a *ScriptedAgent) handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.handleStream(w, r)
	case http.MethodPost:
		a.handleAction(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (a *ScriptedAgent) handleStream(w http.ResponseWriter, r *http.Request) {
	n := a.streamRequests.Add(1)
	if int(n) <= a.FailFirst {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/jsonl")
	w.WriteHeader(http.StatusOK)
	writeScript(w, a.StreamScript)

	if a.Hold {
		<-r.Context().Done()
	}
}

func (a *ScriptedAgent) handleAction(w http.ResponseWriter, r *http.Request) {
	a.actionRequests.Add(1)

	body, _ := io.ReadAll(r.Body)
	a.mu.Lock()
	a.actions = append(a.actions, string(body))
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/jsonl")
	w.WriteHeader(http.StatusOK)
	writeScript(w, a.ActionScript)
}

func writeScript(w http.ResponseWriter, lines []string) {
	flusher, _ := w.(http.Flusher)
	for _, line := range lines {
		_, _ = io.WriteString(w, strings.TrimRight(line, "\n")+"\n")
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// StatusAgent answers every request with a fixed HTTP status and no body.
// Useful for exercising client-error and server-error handling.
type StatusAgent struct {
	server   *httptest.Server
	requests atomic.Int64
}

// NewStatusAgent starts an agent that always responds with code.
func NewStatusAgent(code int) *StatusAgent {
	a := &StatusAgent{}
	a.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.requests.Add(1)
		w.WriteHeader(code)
	}))
	return a
}

// URL returns the agent's endpoint.
func (a *StatusAgent) URL() string {
	return a.server.URL
}

// Requests reports how many requests the agent has received.
func (a *StatusAgent) Requests() int {
	return int(a.requests.Load())
}

// Close shuts down the agent's server.
func (a *StatusAgent) Close() {
	a.server.Close()
}
