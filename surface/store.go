package surface

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/c360/surfacestream/binding"
	"github.com/c360/surfacestream/protocol"
)

// Store owns the set of active surfaces and notifies subscribers of
// externally visible changes. Mutations are driven by the message dispatcher
// from a single stream loop; reads may happen concurrently from the
// rendering layer. All mutation entry points absorb internal failures
// (malformed JSON, panicking subscribers) rather than propagating them, so a
// live surface never disappears because of a transient error.
type Store struct {
	mu       sync.RWMutex
	surfaces map[string]*Surface
	logger   *slog.Logger

	created *notifier
	changed *notifier
	deleted *notifier
}

// NewStore creates an empty surface store. A nil logger falls back to
// slog.Default().
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		surfaces: make(map[string]*Surface),
		logger:   logger,
		created:  newNotifier("created", logger),
		changed:  newNotifier("changed", logger),
		deleted:  newNotifier("deleted", logger),
	}
}

// OnSurfaceCreated registers a callback on the "created" channel, fired when
// a surface entry is created (before it is render-ready). Returns an
// unsubscribe function.
func (st *Store) OnSurfaceCreated(fn func(surfaceID string)) func() {
	return st.created.subscribe(fn)
}

// OnSurfaceChanged registers a callback on the "changed" channel, fired when
// a ready surface's externally visible state changes.
func (st *Store) OnSurfaceChanged(fn func(surfaceID string)) func() {
	return st.changed.subscribe(fn)
}

// OnSurfaceDeleted registers a callback on the "deleted" channel, fired when
// a surface is removed. The matching "changed" notification follows it.
func (st *Store) OnSurfaceDeleted(fn func(surfaceID string)) func() {
	return st.deleted.subscribe(fn)
}

// GetSurface returns the surface with the given id, if present.
func (st *Store) GetSurface(surfaceID string) (*Surface, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.surfaces[surfaceID]
	return s, ok
}

// SurfaceIDs returns the ids of all active surfaces.
func (st *Store) SurfaceIDs() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	ids := make([]string, 0, len(st.surfaces))
	for id := range st.surfaces {
		ids = append(ids, id)
	}
	return ids
}

// CreateSurface creates or replaces a surface entry. Construction is
// expected to continue with component and data updates before the surface is
// render-ready, so only the "created" bookkeeping channel fires here; the
// "changed" channel stays silent.
func (st *Store) CreateSurface(surfaceID, catalogID string, sendDataModel bool, theme json.RawMessage) {
	st.logger.Info("creating surface",
		"surface_id", surfaceID,
		"catalog_id", catalogID,
		"send_data_model", sendDataModel)

	st.mu.Lock()
	st.surfaces[surfaceID] = newSurface(surfaceID, catalogID, sendDataModel, theme)
	st.mu.Unlock()

	st.created.notify(surfaceID)
}

// UpdateComponents inserts or replaces component definitions. Replacement is
// wholesale: a later entry for the same id fully supersedes the prior
// property bag. If the update brings in the root component the surface
// becomes ready; "changed" fires only for ready surfaces, buffering partial
// construction.
func (st *Store) UpdateComponents(surfaceID string, updates []protocol.ComponentUpdate) {
	s, ok := st.GetSurface(surfaceID)
	if !ok {
		st.logger.Warn("cannot update components for unknown surface", "surface_id", surfaceID)
		return
	}

	st.logger.Debug("updating components",
		"surface_id", surfaceID,
		"count", len(updates))

	s.mu.Lock()
	for _, u := range updates {
		if u.ID == "" {
			st.logger.Warn("skipping component without id", "surface_id", surfaceID)
			continue
		}
		s.components[u.ID] = &Component{
			ID:         u.ID,
			Type:       u.Component,
			Properties: u.Properties,
		}
	}

	if !s.ready {
		if _, ok := s.components[RootComponentID]; ok {
			s.ready = true
			st.logger.Info("surface ready", "surface_id", surfaceID)
		}
	}
	ready := s.ready
	s.mu.Unlock()

	if ready {
		st.changed.notify(surfaceID)
	}
}

// UpdateDataModel replaces or patches a surface's data model. A nil/empty/"/"
// path replaces the model wholesale; any other path applies a path-write that
// produces a new document. A value that fails to decode is logged and leaves
// the prior data model untouched, and suppresses the change notification.
func (st *Store) UpdateDataModel(surfaceID, path string, value json.RawMessage) {
	s, ok := st.GetSurface(surfaceID)
	if !ok {
		st.logger.Warn("cannot update data model for unknown surface", "surface_id", surfaceID)
		return
	}

	if value != nil {
		var decoded any
		if err := json.Unmarshal(value, &decoded); err != nil {
			st.logger.Error("failed to decode data model update",
				"surface_id", surfaceID,
				"path", path,
				"error", err)
			return
		}

		s.mu.Lock()
		if path == "" || path == "/" {
			st.logger.Debug("replacing data model", "surface_id", surfaceID)
			s.dataModel = decoded
		} else {
			st.logger.Debug("patching data model", "surface_id", surfaceID, "path", path)
			s.dataModel = binding.SetValueAtPath(s.dataModel, path, decoded)
		}
		s.mu.Unlock()
	}

	if s.IsReady() {
		st.changed.notify(surfaceID)
	}
}

// DeleteSurface removes a surface, releasing its state. Notifies "deleted"
// followed by "changed", in that order. Unknown ids are a logged no-op.
func (st *Store) DeleteSurface(surfaceID string) {
	st.mu.Lock()
	_, ok := st.surfaces[surfaceID]
	if ok {
		delete(st.surfaces, surfaceID)
	}
	st.mu.Unlock()

	if !ok {
		st.logger.Warn("cannot delete unknown surface", "surface_id", surfaceID)
		return
	}

	st.logger.Info("deleted surface", "surface_id", surfaceID)
	st.deleted.notify(surfaceID)
	st.changed.notify(surfaceID)
}

// SetValidationError records a validation message for a data-model path
// without touching the data model itself. Fires "changed" whenever the
// surface exists, ready or not, since errors are renderer-facing state.
func (st *Store) SetValidationError(surfaceID, path, message string) {
	s, ok := st.GetSurface(surfaceID)
	if !ok {
		st.logger.Warn("cannot set validation error for unknown surface", "surface_id", surfaceID)
		return
	}

	s.mu.Lock()
	s.validationErrors[path] = message
	s.mu.Unlock()

	st.changed.notify(surfaceID)
}

// ClearValidationError removes the validation message for a path. Clearing
// one path never affects others.
func (st *Store) ClearValidationError(surfaceID, path string) {
	s, ok := st.GetSurface(surfaceID)
	if !ok {
		st.logger.Warn("cannot clear validation error for unknown surface", "surface_id", surfaceID)
		return
	}

	s.mu.Lock()
	delete(s.validationErrors, path)
	s.mu.Unlock()

	st.changed.notify(surfaceID)
}

// ResolveBinding resolves a JSON Pointer path against a surface's data
// model. Returns false if the surface or its data model is missing.
func (st *Store) ResolveBinding(surfaceID, path string) (any, bool) {
	s, ok := st.GetSurface(surfaceID)
	if !ok {
		return nil, false
	}
	return s.ResolveBinding(path)
}
