package syntax

import (
	"log/slog"
	"strings"

	"github.com/vango-dev/emtpl/pkg/value"
)

// EventPrefix marks event attributes.
const EventPrefix = "et:"

// EventHandler binds et:name="path" attributes to component funcs. The
// result key is the event name and the value the callback. An attribute
// whose path is not a func is dropped without binding an event.
type EventHandler struct {
	Logger *slog.Logger
}

func (h *EventHandler) TryRender(ev *Event) (Result, error) {
	if !hasPrefixFold(ev.AttrKey, EventPrefix) {
		return Result{}, nil
	}
	name := ev.AttrKey[len(EventPrefix):]
	path, _ := ev.Target.(string)
	path = strings.TrimPrefix(unwrap(path), "this.")

	ev.Break = true
	fn := ev.Scope.Lookup(path)
	if !value.IsFunc(fn) {
		logger(h.Logger).Warn("event handler not found", "event", name, "path", path)
		return Result{Matched: true, Remove: true}, nil
	}
	return Result{Matched: true, AttrKey: name, Value: fn, IsEvent: true}, nil
}
