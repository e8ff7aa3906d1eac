// Package registry provides lookup tables for the rendering layer: component
// renderers keyed by catalog type tag, and locally-handled actions keyed by
// action name. Type tags are matched case-insensitively so catalog authors
// and agents do not have to agree on casing.
package registry

import (
	"strings"
	"sync"

	"github.com/c360/surfacestream/errors"
)

// ComponentRegistry maps component type tags to renderer values. T is
// whatever the embedding renderer needs per component type: a factory
// function, a template reference, a widget constructor. Thread-safe for
// concurrent use.
type ComponentRegistry[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
	// names preserves the registered casing for Types().
	names map[string]string
}

// NewComponentRegistry creates an empty component registry.
func NewComponentRegistry[T any]() *ComponentRegistry[T] {
	return &ComponentRegistry[T]{
		entries: make(map[string]T),
		names:   make(map[string]string),
	}
}

// Register associates a renderer with a component type tag. Registering an
// already-known tag replaces the prior entry, so embedders can override
// standard catalog renderers with their own.
func (r *ComponentRegistry[T]) Register(typeTag string, renderer T) error {
	if typeTag == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"ComponentRegistry", "Register", "type tag validation")
	}

	key := strings.ToLower(typeTag)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = renderer
	r.names[key] = typeTag
	return nil
}

// StandardComponentTypes lists the component type tags of the standard
// catalog.
var StandardComponentTypes = []string{
	"Text", "Image", "Icon", "Divider",
	"Row", "Column", "Card", "List", "Tabs",
	"Button", "TextField", "CheckBox", "ChoicePicker", "DateTimeInput", "Slider",
	"Video", "AudioPlayer",
}

// RegisterStandardCatalog pre-populates the registry with one renderer per
// standard catalog type, produced by the given factory. Individual entries
// can still be overridden afterwards.
func (r *ComponentRegistry[T]) RegisterStandardCatalog(factory func(typeTag string) T) error {
	if factory == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"ComponentRegistry", "RegisterStandardCatalog", "factory validation")
	}

	for _, typeTag := range StandardComponentTypes {
		if err := r.Register(typeTag, factory(typeTag)); err != nil {
			return err
		}
	}
	return nil
}

// Resolve looks up the renderer for a component type tag.
func (r *ComponentRegistry[T]) Resolve(typeTag string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, ok := r.entries[strings.ToLower(typeTag)]
	return renderer, ok
}

// Types returns the registered type tags in their original casing. The order
// is unspecified.
func (r *ComponentRegistry[T]) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, name)
	}
	return out
}

// ActionHandler executes a locally-handled action with its resolved context
// values. Handlers run synchronously on the dispatching goroutine.
type ActionHandler func(surfaceID string, context map[string]any) error

// ActionRegistry maps action names to local handlers. Actions with a
// registered handler are executed in-process instead of being sent to the
// agent. Names are matched case-insensitively.
type ActionRegistry struct {
	mu       sync.RWMutex
	handlers map[string]ActionHandler
}

// NewActionRegistry creates an empty action registry.
func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{handlers: make(map[string]ActionHandler)}
}

// Register associates a handler with an action name.
func (r *ActionRegistry) Register(name string, handler ActionHandler) error {
	if name == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"ActionRegistry", "Register", "action name validation")
	}
	if handler == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"ActionRegistry", "Register", "handler validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[strings.ToLower(name)] = handler
	return nil
}

// IsRegistered reports whether the action is handled locally.
func (r *ActionRegistry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.handlers[strings.ToLower(name)]
	return ok
}

// Execute runs the handler for the named action. Unknown actions return an
// invalid-class error so callers can fall back to sending the action to the
// agent.
func (r *ActionRegistry) Execute(name, surfaceID string, context map[string]any) error {
	r.mu.RLock()
	handler, ok := r.handlers[strings.ToLower(name)]
	r.mu.RUnlock()

	if !ok {
		return errors.WrapInvalid(errors.ErrInvalidMessage,
			"ActionRegistry", "Execute", "handler lookup")
	}

	return handler(surfaceID, context)
}
