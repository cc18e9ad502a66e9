package vdom

// Prop is a single attribute.
type Prop struct {
	Key   string `json:"key" msgpack:"k"`
	Value any    `json:"value" msgpack:"v"`
}

// Props is an ordered attribute map. The zero value is ready to use.
// Setting an existing key keeps its position; new keys are appended.
type Props struct {
	keys   []string
	values map[string]any
}

// NewProps creates Props from pairs in order.
func NewProps(pairs ...Prop) Props {
	var p Props
	for _, kv := range pairs {
		p.Set(kv.Key, kv.Value)
	}
	return p
}

// Get returns the value stored under key.
func (p *Props) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Value returns the value stored under key, or nil.
func (p *Props) Value(key string) any {
	return p.values[key]
}

// String returns the value under key when it is a string.
func (p *Props) String(key string) string {
	s, _ := p.values[key].(string)
	return s
}

// Has reports whether key is present.
func (p *Props) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Set stores v under key.
func (p *Props) Set(key string, v any) {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = v
}

// Delete removes key.
func (p *Props) Delete(key string) {
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i:i], p.keys[i+1:]...)
			break
		}
	}
}

// Rename moves the value under from to key to, keeping from's position.
// An existing value under to is overwritten and its old slot dropped.
func (p *Props) Rename(from, to string) {
	v, ok := p.values[from]
	if !ok || from == to {
		return
	}
	p.Delete(to)
	for i, k := range p.keys {
		if k == from {
			p.keys[i] = to
			break
		}
	}
	delete(p.values, from)
	p.values[to] = v
}

// Keys returns the attribute names in order.
func (p *Props) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Len returns the number of attributes.
func (p *Props) Len() int {
	return len(p.keys)
}

// All returns the attributes as ordered pairs.
func (p *Props) All() []Prop {
	if len(p.keys) == 0 {
		return nil
	}
	out := make([]Prop, len(p.keys))
	for i, k := range p.keys {
		out[i] = Prop{Key: k, Value: p.values[k]}
	}
	return out
}

// Map returns an unordered copy of the attributes.
func (p *Props) Map() map[string]any {
	out := make(map[string]any, len(p.keys))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// Clone returns a copy that shares attribute values but not storage.
func (p *Props) Clone() Props {
	if len(p.keys) == 0 {
		return Props{}
	}
	c := Props{
		keys:   append([]string(nil), p.keys...),
		values: make(map[string]any, len(p.values)),
	}
	for k, v := range p.values {
		c.values[k] = v
	}
	return c
}
