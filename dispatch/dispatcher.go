// Package dispatch routes inbound protocol messages to surface store
// mutations by their type discriminant.
package dispatch

import (
	"log/slog"

	"github.com/c360/surfacestream/protocol"
	"github.com/c360/surfacestream/surface"
)

// Dispatcher is a stateless router from a message's type discriminant to the
// corresponding store mutation. Required fields are validated defensively:
// unknown types and incomplete messages are logged and ignored, never fatal.
type Dispatcher struct {
	store  *surface.Store
	logger *slog.Logger
}

// New creates a Dispatcher targeting the given store. A nil logger falls
// back to slog.Default().
func New(store *surface.Store, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:  store,
		logger: logger,
	}
}

// Dispatch routes one message.
func (d *Dispatcher) Dispatch(msg *protocol.Message) {
	if msg == nil {
		return
	}

	d.logger.Debug("dispatching message",
		"type", msg.Type,
		"surface_id", msg.SurfaceID)

	switch msg.Type {
	case protocol.TypeCreateSurface:
		d.handleCreateSurface(msg)
	case protocol.TypeUpdateComponents:
		d.handleUpdateComponents(msg)
	case protocol.TypeUpdateDataModel:
		d.handleUpdateDataModel(msg)
	case protocol.TypeDeleteSurface:
		d.handleDeleteSurface(msg)
	case protocol.TypeError:
		d.handleError(msg)
	default:
		d.logger.Warn("unknown message type",
			"type", msg.Type,
			"surface_id", msg.SurfaceID)
	}
}

func (d *Dispatcher) requireSurfaceID(msg *protocol.Message) bool {
	if msg.SurfaceID == "" {
		d.logger.Warn("message missing surfaceId", "type", msg.Type)
		return false
	}
	return true
}

func (d *Dispatcher) handleCreateSurface(msg *protocol.Message) {
	if !d.requireSurfaceID(msg) {
		return
	}

	sendDataModel := msg.SendDataModel != nil && *msg.SendDataModel
	d.store.CreateSurface(msg.SurfaceID, msg.CatalogID, sendDataModel, msg.Theme)
}

func (d *Dispatcher) handleUpdateComponents(msg *protocol.Message) {
	if !d.requireSurfaceID(msg) {
		return
	}
	if len(msg.Components) == 0 {
		d.logger.Warn("updateComponents message missing components", "surface_id", msg.SurfaceID)
		return
	}

	d.store.UpdateComponents(msg.SurfaceID, msg.Components)
}

func (d *Dispatcher) handleUpdateDataModel(msg *protocol.Message) {
	if !d.requireSurfaceID(msg) {
		return
	}

	d.store.UpdateDataModel(msg.SurfaceID, msg.Path, msg.Value)
}

func (d *Dispatcher) handleDeleteSurface(msg *protocol.Message) {
	if !d.requireSurfaceID(msg) {
		return
	}

	d.store.DeleteSurface(msg.SurfaceID)
}

// handleError records agent-reported validation errors as per-path surface
// state. Error messages without a path are operational reports, not
// validation state; they are logged and dropped.
func (d *Dispatcher) handleError(msg *protocol.Message) {
	if !d.requireSurfaceID(msg) {
		return
	}

	if msg.Path != "" && msg.ErrorMessage != "" {
		d.store.SetValidationError(msg.SurfaceID, msg.Path, msg.ErrorMessage)
		return
	}

	d.logger.Warn("agent error report",
		"surface_id", msg.SurfaceID,
		"code", msg.Code,
		"message", msg.ErrorMessage)
}
