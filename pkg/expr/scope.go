package expr

import "github.com/vango-dev/emtpl/pkg/value"

// Scope is the resolution chain for identifiers: loop data first, then
// the component.
type Scope struct {
	Data      map[string]any
	Component any
}

// NewScope creates a Scope.
func NewScope(component any, data map[string]any) *Scope {
	return &Scope{Data: data, Component: component}
}

// Lookup resolves a dotted path. A nil result from the scope data falls
// through to the component. An empty path is the component itself.
func (s *Scope) Lookup(path string) any {
	if s == nil {
		return nil
	}
	if path == "" {
		return s.Component
	}
	if s.Data != nil {
		if v, ok := value.Lookup(s.Data, path); ok && v != nil {
			return v
		}
	}
	return value.Get(s.Component, path)
}

// With returns a Scope whose data is s's data extended by data.
func (s *Scope) With(data map[string]any) *Scope {
	merged := make(map[string]any, len(data))
	if s != nil {
		for k, v := range s.Data {
			merged[k] = v
		}
	}
	for k, v := range data {
		merged[k] = v
	}
	var component any
	if s != nil {
		component = s.Component
	}
	return &Scope{Data: merged, Component: component}
}
