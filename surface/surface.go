// Package surface maintains the client-side mirror of agent-defined UI
// surfaces: each surface's component table, JSON data model, validation-error
// overlay and readiness state, with change notifications for the rendering
// layer.
package surface

import (
	"encoding/json"
	"sync"

	"github.com/c360/surfacestream/binding"
)

// RootComponentID is the component id whose arrival marks a surface as ready
// for rendering.
const RootComponentID = "root"

// Component is a typed, flat property bag. Components reference other
// components only via id lists (a "children" property holding an array of
// ids), never by embedding.
type Component struct {
	ID         string
	Type       string
	Properties map[string]any
}

// Surface is the runtime state of one agent UI session. All reads go through
// accessor methods; mutations happen only via the owning Store, so a reader
// never observes a component table or data model mid-update.
type Surface struct {
	mu sync.RWMutex

	id            string
	catalogID     string
	theme         json.RawMessage
	sendDataModel bool
	ready         bool

	components       map[string]*Component
	dataModel        any
	validationErrors map[string]string
}

func newSurface(id, catalogID string, sendDataModel bool, theme json.RawMessage) *Surface {
	return &Surface{
		id:               id,
		catalogID:        catalogID,
		theme:            theme,
		sendDataModel:    sendDataModel,
		components:       make(map[string]*Component),
		validationErrors: make(map[string]string),
	}
}

// ID returns the server-assigned surface identifier.
func (s *Surface) ID() string {
	return s.id
}

// CatalogID returns the component catalog identifier, or "" if none was sent.
func (s *Surface) CatalogID() string {
	return s.catalogID
}

// Theme returns the opaque theme metadata as received from the agent.
func (s *Surface) Theme() json.RawMessage {
	return s.theme
}

// SendDataModel reports whether the agent asked for a data model snapshot to
// accompany outbound user actions.
func (s *Surface) SendDataModel() bool {
	return s.sendDataModel
}

// IsReady reports whether the surface has received its root component.
// Readiness is monotonic: once true it never reverts.
func (s *Surface) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Component returns the component with the given id, if present.
func (s *Surface) Component(id string) (*Component, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.components[id]
	return c, ok
}

// Root returns the root component, or nil if it has not arrived yet.
func (s *Surface) Root() *Component {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.components[RootComponentID]
}

// ComponentIDs returns the ids of all components currently in the table.
func (s *Surface) ComponentIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.components))
	for id := range s.components {
		ids = append(ids, id)
	}
	return ids
}

// Children resolves a component's "children" id array against the component
// table. Dangling ids and non-string entries are skipped.
func (s *Surface) Children(parentID string) []*Component {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parent, ok := s.components[parentID]
	if !ok {
		return nil
	}

	childIDs, ok := parent.Properties["children"].([]any)
	if !ok {
		return nil
	}

	children := make([]*Component, 0, len(childIDs))
	for _, raw := range childIDs {
		id, ok := raw.(string)
		if !ok {
			continue
		}
		if child, ok := s.components[id]; ok {
			children = append(children, child)
		}
	}
	return children
}

// DataModel returns the surface's current data model value, which may be nil
// if none has been received. The returned value is treated as immutable by
// all writers; callers must not modify it.
func (s *Surface) DataModel() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataModel
}

// ResolveBinding resolves a JSON Pointer path against the surface's data
// model. Returns false if no data model exists or the path does not resolve.
func (s *Surface) ResolveBinding(path string) (any, bool) {
	s.mu.RLock()
	model := s.dataModel
	s.mu.RUnlock()

	if model == nil {
		return nil, false
	}
	return binding.Resolve(model, path)
}

// ValidationError returns the validation message recorded for a data-model
// path, if any.
func (s *Surface) ValidationError(path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.validationErrors[path]
	return msg, ok
}

// ValidationErrors returns a copy of the current validation-error overlay.
func (s *Surface) ValidationErrors() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.validationErrors))
	for k, v := range s.validationErrors {
		out[k] = v
	}
	return out
}
