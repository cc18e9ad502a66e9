package vdom

import (
	"strconv"
	"sync"
)

// IDGenerator generates virtual IDs for rendered nodes.
type IDGenerator struct {
	prefix  string
	counter uint64
	mu      sync.Mutex
}

// NewIDGenerator creates a generator producing prefix1, prefix2, ...
// An empty prefix defaults to "v".
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "v"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next virtual ID.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return g.prefix + strconv.FormatUint(g.counter, 10)
}

// Reset resets the counter to 0.
func (g *IDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter = 0
}

// Current returns the current counter value without incrementing.
func (g *IDGenerator) Current() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counter
}

// AssignVirtualIDs gives every live node without a VirtualID a fresh one.
// Deleted subtrees are skipped.
func AssignVirtualIDs(root *Element, gen *IDGenerator) {
	Walk(root, func(n *Element) bool {
		if n.Status == StatusDelete {
			return false
		}
		if n.VirtualID == "" {
			n.VirtualID = gen.Next()
		}
		return true
	})
}

// CollectVirtualIDs returns a map of VirtualID to node.
func CollectVirtualIDs(root *Element) map[string]*Element {
	result := make(map[string]*Element)
	Walk(root, func(n *Element) bool {
		if n.VirtualID != "" {
			result[n.VirtualID] = n
		}
		return true
	})
	return result
}

// FindByVirtualID finds a node by its VirtualID.
func FindByVirtualID(root *Element, id string) *Element {
	var found *Element
	Walk(root, func(n *Element) bool {
		if found != nil {
			return false
		}
		if n.VirtualID == id {
			found = n
			return false
		}
		return true
	})
	return found
}
