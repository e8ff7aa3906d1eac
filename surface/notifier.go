package surface

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// notifier is an explicit list of registered callbacks for one lifecycle
// channel. Delivery is synchronous and ordered; a panicking subscriber is
// logged and isolated so it cannot break other subscribers or the emitting
// mutation.
type notifier struct {
	mu      sync.RWMutex
	subs    map[string]func(surfaceID string)
	channel string
	logger  *slog.Logger
}

func newNotifier(channel string, logger *slog.Logger) *notifier {
	return &notifier{
		subs:    make(map[string]func(surfaceID string)),
		channel: channel,
		logger:  logger,
	}
}

// subscribe registers fn and returns a function that removes it again.
func (n *notifier) subscribe(fn func(surfaceID string)) func() {
	id := uuid.NewString()

	n.mu.Lock()
	n.subs[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

func (n *notifier) notify(surfaceID string) {
	n.mu.RLock()
	callbacks := make([]func(string), 0, len(n.subs))
	for _, fn := range n.subs {
		callbacks = append(callbacks, fn)
	}
	n.mu.RUnlock()

	for _, fn := range callbacks {
		n.invoke(fn, surfaceID)
	}
}

func (n *notifier) invoke(fn func(string), surfaceID string) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("subscriber panic in surface notification",
				"channel", n.channel,
				"surface_id", surfaceID,
				"panic", r)
		}
	}()
	fn(surfaceID)
}
