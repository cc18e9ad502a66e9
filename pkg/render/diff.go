package render

import (
	"sort"

	"github.com/vango-dev/emtpl/pkg/value"
	"github.com/vango-dev/emtpl/pkg/vdom"
)

// match finds node's counterpart among old's unclaimed children, claims it
// and sets node's status. lastMatch is the highest old index matched so far
// in this sibling list. It returns nil when nothing matched, leaving node
// as it is.
func (p *pass) match(node, old *vdom.Element, lastMatch *int) *vdom.Element {
	if old == nil {
		return nil
	}
	for j, o := range old.Children {
		if o.Diffed || !p.same(node, o) {
			continue
		}
		o.Diffed = true

		if node.Status != vdom.StatusDelete {
			changes, deletes := diffAttrs(&node.Props, &o.Props)
			changed := len(changes) > 0 || len(deletes) > 0
			shifted := j < *lastMatch

			switch {
			case o.Status == vdom.StatusDelete:
				node.Status = vdom.StatusAppend
			case shifted && changed:
				node.Status = vdom.StatusMoveUpdate
			case shifted:
				node.Status = vdom.StatusMove
			case changed:
				node.Status = vdom.StatusUpdate
			default:
				node.Status = vdom.StatusNormal
			}
			if node.Status.Changed() {
				node.ChangeAttrs = changes
				node.DeleteAttrs = deletes
			}
			if (node.IsText() || node.IsComment()) && node.Status != vdom.StatusAppend {
				node.TextChanged = node.InnerHTML != o.InnerHTML
			}
		}

		if o.Status != vdom.StatusDelete {
			node.Ref = o.Ref
		}
		if node.VirtualID == "" && o.Status != vdom.StatusDelete {
			node.VirtualID = o.VirtualID
		}
		if node.ComponentID == "" {
			node.ComponentID = o.ComponentID
		}
		*lastMatch = max(*lastMatch, j)
		return o
	}
	return nil
}

// same reports whether old can be node's counterpart. Keyed nodes match on
// key; unkeyed nodes match when similar enough. A node keyed on one side
// only never matches.
func (p *pass) same(node, old *vdom.Element) bool {
	if node.TagName != old.TagName {
		return false
	}
	nk, ok := node.Key(), old.Key()
	switch {
	case nk != "" && ok != "":
		return nk == ok
	case nk != "" || ok != "":
		return false
	}
	return p.similarity(node, old) >= p.r.threshold
}

// similarity scores two unkeyed nodes with the same tag.
func (p *pass) similarity(node, old *vdom.Element) float64 {
	if node.IsText() || node.IsComment() {
		if node.InnerHTML == old.InnerHTML {
			return 1
		}
		return p.r.nearMiss
	}
	score := structural(node, old)
	if node.AttrCode != "" {
		score = max(score, SimilarPrecision(node.AttrCode, old.AttrCode, p.r.precision))
	}
	return score
}

// structural is 1 when both nodes have the same child tags in order.
func structural(a, b *vdom.Element) float64 {
	if len(a.Children) != len(b.Children) {
		return 0
	}
	for i := range a.Children {
		if a.Children[i].TagName != b.Children[i].TagName {
			return 0
		}
	}
	return 1
}

// diffAttrs compares rendered attributes. Changes hold new values for keys
// that differ or are new; deletes hold keys only old has, sorted.
func diffAttrs(cur, old *vdom.Props) (map[string]any, []string) {
	var changes map[string]any
	for _, kv := range cur.All() {
		ov, ok := old.Get(kv.Key)
		if ok && value.Equal(kv.Value, ov) {
			continue
		}
		if changes == nil {
			changes = make(map[string]any)
		}
		changes[kv.Key] = kv.Value
	}

	var deletes []string
	for _, k := range old.Keys() {
		if !cur.Has(k) {
			deletes = append(deletes, k)
		}
	}
	sort.Strings(deletes)
	return changes, deletes
}
