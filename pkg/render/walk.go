package render

import (
	"strconv"
	"strings"

	"github.com/vango-dev/emtpl/pkg/expr"
	"github.com/vango-dev/emtpl/pkg/syntax"
	"github.com/vango-dev/emtpl/pkg/value"
	"github.com/vango-dev/emtpl/pkg/vdom"
)

// pass is the state of one Render call.
type pass struct {
	r     *Renderer
	opts  *Options
	stats *Stats
}

// children renders and diffs the children of parent against old's
// children. It reports whether any binding below parent produced output.
func (p *pass) children(parent, old *vdom.Element, scope *expr.Scope) (bool, error) {
	changed, err := p.expand(parent, scope)
	if err != nil {
		return false, err
	}

	lastMatch := -1
	for _, node := range parent.Children {
		nodeScope := scope
		if len(node.Data) > 0 {
			nodeScope = scope.With(node.Data)
		}

		if node.Status != vdom.StatusDelete && !node.IsText() && !node.IsComment() {
			visible, err := p.condition(node, nodeScope)
			if err != nil {
				return false, err
			}
			if !visible {
				vdom.SetStatus(node, vdom.StatusDelete)
				changed = true
			}
		}

		expanded := false
		if node.Status != vdom.StatusDelete {
			c, err := p.attributes(node, nodeScope)
			if err != nil {
				return false, err
			}
			changed = changed || c
			if expanded, err = p.expand(node, nodeScope); err != nil {
				return false, err
			}
		}

		match := p.match(node, old, &lastMatch)

		if node.Status == vdom.StatusDelete || node.ComponentID != "" {
			continue
		}
		c, err := p.children(node, match, nodeScope)
		if err != nil {
			return false, err
		}
		if c || expanded {
			node.InnerHTML = InnerHTML(node)
			changed = true
		}
	}

	if old != nil {
		for _, o := range old.Children {
			if o.Diffed {
				continue
			}
			o.Diffed = true
			vdom.SetStatus(o, vdom.StatusDelete)
			parent.DeleteElements = append(parent.DeleteElements, o)
			p.stats.Deleted++
		}
	}
	return changed, nil
}

// condition evaluates and consumes the if and em:if attributes.
func (p *pass) condition(node *vdom.Element, scope *expr.Scope) (bool, error) {
	visible := true
	for _, key := range []string{vdom.AttrIf, vdom.AttrEmIf} {
		raw, ok := node.Props.Get(key)
		if !ok {
			continue
		}
		ev := &syntax.Event{AttrKey: key, Target: raw, Scope: scope, Node: node}
		res, err := p.r.handlers.Run(ev)
		if err != nil {
			return false, err
		}
		v := raw
		if res.Matched {
			v = res.Value
		}
		node.Props.Delete(key)
		if !truthy(v) {
			visible = false
		}
	}
	return visible, nil
}

// truthy is value.Truthy with the string "false" counted as false.
func truthy(v any) bool {
	if s, ok := v.(string); ok && strings.EqualFold(strings.TrimSpace(s), "false") {
		return false
	}
	return value.Truthy(v)
}

// attributes renders node's attributes, or its content for a text node,
// and records the rendered attribute code used for matching.
func (p *pass) attributes(node *vdom.Element, scope *expr.Scope) (bool, error) {
	switch {
	case node.IsText():
		ev := &syntax.Event{Target: node.InnerHTML, Scope: scope, Node: node}
		res, err := p.r.handlers.Run(ev)
		if err != nil {
			return false, err
		}
		if !res.Matched {
			return false, nil
		}
		node.Value = res.Value
		node.InnerHTML = value.ToString(res.Value)
		return true, nil
	case node.IsComment(), node.TagName == vdom.TagDoctype:
		return false, nil
	}

	changed := false
	done := make(map[string]bool)
	for {
		key, ok := nextKey(&node.Props, done)
		if !ok {
			break
		}
		done[key] = true

		raw := node.Props.Value(key)
		ev := &syntax.Event{AttrKey: key, Target: raw, Scope: scope, Node: node}
		res, err := p.r.handlers.Run(ev)
		if err != nil {
			return false, err
		}

		switch {
		case res.IsEvent:
			if node.Events == nil {
				node.Events = make(map[string]any)
			}
			name := res.AttrKey
			if name == "" {
				name = key
			}
			node.Events[name] = res.Value
			node.Props.Delete(key)
			changed = true
		case res.Remove:
			node.Props.Delete(key)
		case res.Matched:
			changed = true
			if res.AttrKey != "" && res.AttrKey != key {
				node.Props.Rename(key, res.AttrKey)
				done[res.AttrKey] = true
				key = res.AttrKey
			}
			node.Props.Set(key, res.Value)
		}
	}

	node.AttrCode = attrCode(&node.Props)
	return changed, nil
}

// nextKey returns the first attribute not yet rendered. Spreads may add
// attributes while rendering, so the key list is read on every step.
func nextKey(p *vdom.Props, done map[string]bool) (string, bool) {
	for _, k := range p.Keys() {
		if !done[k] {
			return k, true
		}
	}
	return "", false
}

// attrCode serializes rendered attributes as key="value" pairs.
func attrCode(p *vdom.Props) string {
	var b strings.Builder
	for i, kv := range p.All() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(kv.Key)
		b.WriteByte('=')
		b.WriteString(strconv.Quote(value.ToString(kv.Value)))
	}
	return b.String()
}
