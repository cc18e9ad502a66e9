package source

import (
	"context"
	"sort"
	"sync"
)

// Memory holds templates in a map. It is safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	templates map[string]string
}

// NewMemory creates a memory source seeded with templates.
func NewMemory(templates map[string]string) *Memory {
	m := &Memory{templates: make(map[string]string, len(templates))}
	for k, v := range templates {
		m.templates[k] = v
	}
	return m
}

// Put adds or replaces a template.
func (m *Memory) Put(name, markup string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[name] = markup
}

// Load implements Source.
func (m *Memory) Load(_ context.Context, name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	markup, ok := m.templates[name]
	if !ok {
		return "", notFound(name)
	}
	return markup, nil
}

// List implements Source.
func (m *Memory) List(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.templates))
	for k := range m.templates {
		names = append(names, k)
	}
	sort.Strings(names)
	return names, nil
}
