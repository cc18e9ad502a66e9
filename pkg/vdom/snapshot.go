package vdom

import (
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vango-dev/emtpl/pkg/value"
)

// Snapshot is the wire form of a rendered tree. Callbacks, scope data and
// platform references are not part of it; event names are kept.
type Snapshot struct {
	Tag            string         `json:"tag" msgpack:"t" yaml:"tag"`
	Props          []Prop         `json:"props,omitempty" msgpack:"p,omitempty" yaml:"props,omitempty"`
	InnerHTML      string         `json:"innerHTML,omitempty" msgpack:"h,omitempty" yaml:"innerHTML,omitempty"`
	Status         string         `json:"status" msgpack:"s" yaml:"status"`
	ChangeAttrs    map[string]any `json:"changeAttrs,omitempty" msgpack:"c,omitempty" yaml:"changeAttrs,omitempty"`
	DeleteAttrs    []string       `json:"deleteAttrs,omitempty" msgpack:"d,omitempty" yaml:"deleteAttrs,omitempty"`
	DeleteElements []*Snapshot    `json:"deleteElements,omitempty" msgpack:"x,omitempty" yaml:"deleteElements,omitempty"`
	Events         []string       `json:"events,omitempty" msgpack:"e,omitempty" yaml:"events,omitempty"`
	VirtualID      string         `json:"virtualId,omitempty" msgpack:"v,omitempty" yaml:"virtualId,omitempty"`
	ComponentID    string         `json:"componentId,omitempty" msgpack:"m,omitempty" yaml:"componentId,omitempty"`
	AttrCode       string         `json:"attrCode,omitempty" msgpack:"a,omitempty" yaml:"attrCode,omitempty"`
	SelfClosing    bool           `json:"selfClosing,omitempty" msgpack:"sc,omitempty" yaml:"selfClosing,omitempty"`
	Children       []*Snapshot    `json:"children,omitempty" msgpack:"ch,omitempty" yaml:"children,omitempty"`
}

// ToSnapshot converts a tree to its wire form. Function-valued attributes
// are dropped.
func ToSnapshot(e *Element) *Snapshot {
	if e == nil {
		return nil
	}
	s := &Snapshot{
		Tag:         e.TagName,
		InnerHTML:   e.InnerHTML,
		Status:      e.Status.String(),
		DeleteAttrs: append([]string(nil), e.DeleteAttrs...),
		VirtualID:   e.VirtualID,
		ComponentID: e.ComponentID,
		AttrCode:    e.AttrCode,
		SelfClosing: e.SelfClosing,
	}
	for _, kv := range e.Props.All() {
		if value.IsFunc(kv.Value) {
			continue
		}
		s.Props = append(s.Props, kv)
	}
	for k, v := range e.ChangeAttrs {
		if value.IsFunc(v) {
			continue
		}
		if s.ChangeAttrs == nil {
			s.ChangeAttrs = make(map[string]any, len(e.ChangeAttrs))
		}
		s.ChangeAttrs[k] = v
	}
	for name := range e.Events {
		s.Events = append(s.Events, name)
	}
	sort.Strings(s.Events)
	for _, d := range e.DeleteElements {
		s.DeleteElements = append(s.DeleteElements, ToSnapshot(d))
	}
	for _, ch := range e.Children {
		s.Children = append(s.Children, ToSnapshot(ch))
	}
	return s
}

// FromSnapshot rebuilds a tree from its wire form and derives every path.
// Recorded events come back with nil callbacks.
func FromSnapshot(s *Snapshot) (*Element, error) {
	e, err := fromSnapshot(s)
	if err != nil || e == nil {
		return e, err
	}
	ResetPaths(e)
	return e, nil
}

func fromSnapshot(s *Snapshot) (*Element, error) {
	if s == nil {
		return nil, nil
	}
	status, err := ParseStatus(s.Status)
	if err != nil {
		return nil, err
	}
	e := &Element{
		TagName:     s.Tag,
		Props:       NewProps(s.Props...),
		InnerHTML:   s.InnerHTML,
		Status:      status,
		ChangeAttrs: s.ChangeAttrs,
		DeleteAttrs: s.DeleteAttrs,
		VirtualID:   s.VirtualID,
		ComponentID: s.ComponentID,
		AttrCode:    s.AttrCode,
		SelfClosing: s.SelfClosing,
	}
	if len(s.Events) > 0 {
		e.Events = make(map[string]any, len(s.Events))
		for _, name := range s.Events {
			e.Events[name] = nil
		}
	}
	for _, d := range s.DeleteElements {
		de, err := fromSnapshot(d)
		if err != nil {
			return nil, err
		}
		e.DeleteElements = append(e.DeleteElements, de)
	}
	for _, cs := range s.Children {
		ch, err := fromSnapshot(cs)
		if err != nil {
			return nil, err
		}
		e.Children = append(e.Children, ch)
	}
	return e, nil
}

// Encode serializes a tree with msgpack.
func Encode(e *Element) ([]byte, error) {
	return msgpack.Marshal(ToSnapshot(e))
}

// Decode rebuilds a tree from Encode output.
func Decode(b []byte) (*Element, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return FromSnapshot(&s)
}
