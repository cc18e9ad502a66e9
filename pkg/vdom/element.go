package vdom

import "github.com/vango-dev/emtpl/pkg/value"

// Reserved tag names.
const (
	TagText    = "text"
	TagComment = "<!--"
	TagForEach = "forEach"
	TagDoctype = "!DOCTYPE"
	TagScript  = "script"
	TagRoot    = "VirtualRoot"
)

// Reserved attribute keys.
const (
	AttrKey    = "key"
	AttrIf     = "if"
	AttrEmIf   = "em:if"
	AttrSpread = "..."
	AttrFor    = "em:for"
)

// Element is a virtual node.
type Element struct {
	TagName  string
	Props    Props
	Children []*Element

	// InnerHTML is the text of text and comment nodes, and the serialized
	// children of element nodes.
	InnerHTML string

	// Value is the native result of a text node that is a single binding.
	Value any

	// Events maps event names to bound callbacks.
	Events map[string]any

	// Data holds loop-scoped variables for this subtree.
	Data map[string]any

	// Path is the chain of child indices from the root.
	Path []int

	Status         Status
	ChangeAttrs    map[string]any
	DeleteAttrs    []string
	DeleteElements []*Element

	// VirtualID identifies the node across renders.
	VirtualID string

	// ComponentID marks the root of a nested component whose subtree is
	// diffed by that component's own pass.
	ComponentID string

	// Ref is the attached platform object, if any.
	Ref any

	// AttrCode is the serialized rendered attribute set used for matching.
	AttrCode string

	// Diffed is set on a previous node once it has been matched.
	Diffed bool

	// TextChanged is set on a matched text or comment node whose content
	// differs from the previous render. Its status stays NORMAL.
	TextChanged bool

	SelfClosing bool
}

// NewElement creates an element with the given attributes.
func NewElement(tag string, props ...Prop) *Element {
	return &Element{TagName: tag, Props: NewProps(props...)}
}

// NewText creates a text node.
func NewText(text string) *Element {
	return &Element{TagName: TagText, InnerHTML: text}
}

// IsText reports whether e is a text node.
func (e *Element) IsText() bool { return e.TagName == TagText }

// IsComment reports whether e is a comment node.
func (e *Element) IsComment() bool { return e.TagName == TagComment }

// IsBlank reports whether e is a text node containing only whitespace.
func (e *Element) IsBlank() bool {
	if !e.IsText() {
		return false
	}
	for _, r := range e.InnerHTML {
		switch r {
		case ' ', '\t', '\r', '\n', '\f', '\v':
		default:
			return false
		}
	}
	return true
}

// Key returns the key attribute as a string, or "" when unset.
func (e *Element) Key() string {
	v, ok := e.Props.Get(AttrKey)
	if !ok || value.IsEmpty(v) {
		return ""
	}
	return value.ToString(v)
}

// Index returns e's position among its siblings, or -1 for a root.
func (e *Element) Index() int {
	if len(e.Path) == 0 {
		return -1
	}
	return e.Path[len(e.Path)-1]
}

// AppendChild adds child at the end of e's children and sets its path.
func (e *Element) AppendChild(child *Element) {
	e.Children = append(e.Children, child)
	UpdatePaths(child, e.Path, len(e.Children)-1)
}

// Clone returns a deep copy of e. Attribute values, scope data and event
// callbacks are shared; maps, slices and children are copied.
// DeleteElements are not carried over since they belong to another tree.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	c := *e
	c.Props = e.Props.Clone()
	c.Events = copyMap(e.Events)
	c.Data = copyMap(e.Data)
	c.ChangeAttrs = copyMap(e.ChangeAttrs)
	c.Path = append([]int(nil), e.Path...)
	c.DeleteAttrs = append([]string(nil), e.DeleteAttrs...)
	c.DeleteElements = nil
	if e.Children != nil {
		c.Children = make([]*Element, len(e.Children))
		for i, ch := range e.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// UpdatePaths sets e's path to parent+[index] and re-derives its subtree.
func UpdatePaths(e *Element, parent []int, index int) {
	path := make([]int, len(parent)+1)
	copy(path, parent)
	path[len(parent)] = index
	e.Path = path
	for i, ch := range e.Children {
		UpdatePaths(ch, path, i)
	}
}

// ResetPaths re-derives the paths of e's whole subtree from e.Path.
func ResetPaths(e *Element) {
	for i, ch := range e.Children {
		UpdatePaths(ch, e.Path, i)
	}
}

// Walk visits e and its descendants depth-first. Returning false from fn
// skips the node's children.
func Walk(e *Element, fn func(*Element) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, ch := range e.Children {
		Walk(ch, fn)
	}
}

// SetStatus sets the status of e and all its descendants.
func SetStatus(e *Element, s Status) {
	Walk(e, func(n *Element) bool {
		n.Status = s
		return true
	})
}

// CountStatus counts the nodes below root by status, root excluded.
func CountStatus(root *Element) map[Status]int {
	counts := make(map[Status]int)
	if root == nil {
		return counts
	}
	for _, ch := range root.Children {
		Walk(ch, func(n *Element) bool {
			counts[n.Status]++
			return true
		})
	}
	return counts
}

// CountDeleted returns the number of previous nodes collected in the
// DeleteElements of root's subtree.
func CountDeleted(root *Element) int {
	n := 0
	Walk(root, func(e *Element) bool {
		n += len(e.DeleteElements)
		return true
	})
	return n
}

// Count returns the number of nodes in e's subtree, e included.
func Count(e *Element) int {
	n := 0
	Walk(e, func(*Element) bool {
		n++
		return true
	})
	return n
}
