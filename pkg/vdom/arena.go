package vdom

import (
	"fmt"
	"sync"

	"github.com/vango-dev/emtpl/internal/errors"
)

// Handle addresses an open arena session. The zero Handle is never valid.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.gen == 0 }

// String returns a debug form of the handle.
func (h Handle) String() string {
	return fmt.Sprintf("session#%d.%d", h.index, h.gen)
}

type slot struct {
	target *Element
	gen    uint32
	live   bool
}

// Arena hands out sessions over target nodes. Structural edits go through
// a session handle; a released handle goes stale and every operation on it
// fails with R003, even after its slot has been reused.
type Arena struct {
	mu    sync.Mutex
	slots []slot
	free  []uint32
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Acquire opens a session on target.
func (a *Arena) Acquire(target *Element) Handle {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.gen++
		s.target = target
		s.live = true
		return Handle{index: idx, gen: s.gen}
	}

	a.slots = append(a.slots, slot{target: target, gen: 1, live: true})
	return Handle{index: uint32(len(a.slots) - 1), gen: 1}
}

// Release closes the session. Releasing a stale handle is an error.
func (a *Arena) Release(h Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.slot(h)
	if err != nil {
		return err
	}
	s.live = false
	s.target = nil
	a.free = append(a.free, h.index)
	return nil
}

// Live returns the number of open sessions.
func (a *Arena) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.slots) - len(a.free)
}

func (a *Arena) slot(h Handle) (*slot, error) {
	if int(h.index) >= len(a.slots) {
		return nil, errors.New("R003").WithDetail(h.String())
	}
	s := &a.slots[h.index]
	if !s.live || s.gen != h.gen {
		return nil, errors.New("R003").WithDetail(h.String())
	}
	return s, nil
}

// Target returns the node the session was opened on.
func (a *Arena) Target(h Handle) (*Element, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.slot(h)
	if err != nil {
		return nil, err
	}
	return s.target, nil
}

// Append adds child at the end of the target's children.
func (a *Arena) Append(h Handle, child *Element) error {
	t, err := a.Target(h)
	if err != nil {
		return err
	}
	t.AppendChild(child)
	return nil
}

// AppendAt inserts children before position index.
func (a *Arena) AppendAt(h Handle, index int, children ...*Element) error {
	t, err := a.Target(h)
	if err != nil {
		return err
	}
	if index < 0 || index > len(t.Children) {
		return fmt.Errorf("vdom: insert index %d out of range [0,%d]", index, len(t.Children))
	}
	out := make([]*Element, 0, len(t.Children)+len(children))
	out = append(out, t.Children[:index]...)
	out = append(out, children...)
	out = append(out, t.Children[index:]...)
	t.Children = out
	repath(t, index)
	return nil
}

// ReplaceAt replaces the child at index with zero or more nodes.
func (a *Arena) ReplaceAt(h Handle, index int, children ...*Element) error {
	t, err := a.Target(h)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(t.Children) {
		return fmt.Errorf("vdom: replace index %d out of range [0,%d)", index, len(t.Children))
	}
	out := make([]*Element, 0, len(t.Children)-1+len(children))
	out = append(out, t.Children[:index]...)
	out = append(out, children...)
	out = append(out, t.Children[index+1:]...)
	t.Children = out
	repath(t, index)
	return nil
}

// Remove detaches child from the target. It reports whether child was found.
func (a *Arena) Remove(h Handle, child *Element) (bool, error) {
	t, err := a.Target(h)
	if err != nil {
		return false, err
	}
	for i, c := range t.Children {
		if c == child {
			return true, a.RemoveAt(h, i)
		}
	}
	return false, nil
}

// RemoveAt detaches the child at index.
func (a *Arena) RemoveAt(h Handle, index int) error {
	return a.ReplaceAt(h, index)
}

// repath re-derives the paths of t's children from position from onwards.
func repath(t *Element, from int) {
	for i := from; i < len(t.Children); i++ {
		UpdatePaths(t.Children[i], t.Path, i)
	}
}

// ElementByPath resolves an absolute path, as stored in Element.Path, to a
// node in the target's subtree. An empty remainder returns the target; a
// path outside the subtree or an unknown position returns nil.
func (a *Arena) ElementByPath(h Handle, path []int) (*Element, error) {
	t, err := a.Target(h)
	if err != nil {
		return nil, err
	}
	return lookup(t, path), nil
}

// ChildByPath resolves path relative to the target: each index selects a
// child of the previous node. An empty path returns the target.
func (a *Arena) ChildByPath(h Handle, path []int) (*Element, error) {
	t, err := a.Target(h)
	if err != nil {
		return nil, err
	}
	return descend(t, path), nil
}

func lookup(t *Element, path []int) *Element {
	if !hasPrefix(path, t.Path) {
		return nil
	}
	return descend(t, path[len(t.Path):])
}

func descend(node *Element, path []int) *Element {
	for _, idx := range path {
		if idx < 0 || idx >= len(node.Children) {
			return nil
		}
		node = node.Children[idx]
	}
	return node
}

func hasPrefix(path, prefix []int) bool {
	if len(path) < len(prefix) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Parent returns the parent of node, resolved through the target.
func (a *Arena) Parent(h Handle, node *Element) (*Element, error) {
	t, err := a.Target(h)
	if err != nil {
		return nil, err
	}
	if len(node.Path) == 0 {
		return nil, nil
	}
	return lookup(t, node.Path[:len(node.Path)-1]), nil
}

// Prev returns the closest preceding sibling of node that is not deleted.
func (a *Arena) Prev(h Handle, node *Element) (*Element, error) {
	parent, err := a.Parent(h, node)
	if err != nil || parent == nil {
		return nil, err
	}
	for i := node.Index() - 1; i >= 0; i-- {
		if i < len(parent.Children) && parent.Children[i].Status != StatusDelete {
			return parent.Children[i], nil
		}
	}
	return nil, nil
}

// Next returns the sibling right after node.
func (a *Arena) Next(h Handle, node *Element) (*Element, error) {
	parent, err := a.Parent(h, node)
	if err != nil || parent == nil {
		return nil, err
	}
	i := node.Index() + 1
	if i < len(parent.Children) {
		return parent.Children[i], nil
	}
	return nil, nil
}

// Clone returns a deep copy of the target.
func (a *Arena) Clone(h Handle) (*Element, error) {
	t, err := a.Target(h)
	if err != nil {
		return nil, err
	}
	return t.Clone(), nil
}

// SetStatus sets the status of the target and all its descendants.
func (a *Arena) SetStatus(h Handle, s Status) error {
	t, err := a.Target(h)
	if err != nil {
		return err
	}
	SetStatus(t, s)
	return nil
}

// SetChildrenStatus sets the status of the target's descendants only.
func (a *Arena) SetChildrenStatus(h Handle, s Status) error {
	t, err := a.Target(h)
	if err != nil {
		return err
	}
	for _, ch := range t.Children {
		SetStatus(ch, s)
	}
	return nil
}
