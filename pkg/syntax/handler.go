package syntax

import (
	"log/slog"
	"strings"

	"github.com/vango-dev/emtpl/pkg/expr"
	"github.com/vango-dev/emtpl/pkg/vdom"
)

// Event is the input to a handler. Handlers may set Break to stop the
// chain for this attribute.
type Event struct {
	// AttrKey is the attribute name, or "" for a text node.
	AttrKey string

	// Target is the raw attribute value or text.
	Target any

	// Scope resolves identifiers: loop data first, then the component.
	Scope *expr.Scope

	// Node is the element that owns the attribute.
	Node *vdom.Element

	Break bool
}

// Component returns the component of the event's scope.
func (ev *Event) Component() any {
	if ev.Scope == nil {
		return nil
	}
	return ev.Scope.Component
}

// Result is the outcome of a handler.
type Result struct {
	// Matched is set when the handler produced Value.
	Matched bool

	// AttrKey is the rendered attribute name when it differs from the
	// source key.
	AttrKey string

	Value any

	// IsEvent moves the attribute to the element's events.
	IsEvent bool

	// Remove drops the attribute from the rendered set.
	Remove bool
}

// Handler renders one attribute value.
type Handler interface {
	TryRender(ev *Event) (Result, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ev *Event) (Result, error)

// TryRender calls f(ev).
func (f HandlerFunc) TryRender(ev *Event) (Result, error) { return f(ev) }

// Chain is an ordered list of handlers.
type Chain []Handler

// DefaultHandlers returns the standard chain.
func DefaultHandlers() Chain {
	return Chain{
		&EventHandler{},
		&DirectExprHandler{},
		&SpreadHandler{},
		NewTextHandler(TextOptions{}),
	}
}

// Run offers ev to each handler until one sets Break. The returned result
// merges every matched result: the last value wins, a renamed key sticks,
// and IsEvent and Remove accumulate.
func (c Chain) Run(ev *Event) (Result, error) {
	var out Result
	for _, h := range c {
		r, err := h.TryRender(ev)
		if err != nil {
			return Result{}, err
		}
		if r.Matched {
			out.Matched = true
			out.Value = r.Value
			if r.AttrKey != "" {
				out.AttrKey = r.AttrKey
			}
		}
		out.IsEvent = out.IsEvent || r.IsEvent
		out.Remove = out.Remove || r.Remove
		if ev.Break {
			break
		}
	}
	return out, nil
}

// hasPrefixFold reports whether s starts with prefix, ignoring case.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// unwrap strips surrounding {{ }} and whitespace from a directive value.
func unwrap(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{{") && strings.HasSuffix(s, "}}") {
		s = strings.TrimSpace(s[2 : len(s)-2])
	}
	return s
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
