package vdom

import (
	"regexp"
	"strings"

	"github.com/vango-dev/emtpl/pkg/value"
)

var (
	selectorTag  = regexp.MustCompile(`^([a-zA-Z0-9_\-]+)`)
	selectorPart = regexp.MustCompile(`[#.][a-zA-Z0-9_\-]+`)
)

// ElementsBySelector returns the nodes under root (root included) matching
// selector. A selector is a comma-separated list of compound selectors made
// of an optional tag name followed by .class and #id parts, e.g.
// "li.active, #main, a".
func ElementsBySelector(root *Element, selector string) []*Element {
	var compounds [][]string
	for _, alt := range strings.Split(selector, ",") {
		if parts := parseCompound(strings.TrimSpace(alt)); len(parts) > 0 {
			compounds = append(compounds, parts)
		}
	}
	if len(compounds) == 0 {
		return nil
	}

	var out []*Element
	Walk(root, func(n *Element) bool {
		for _, parts := range compounds {
			if matchCompound(n, parts) {
				out = append(out, n)
				break
			}
		}
		return true
	})
	return out
}

func parseCompound(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	if m := selectorTag.FindString(s); m != "" {
		parts = append(parts, m)
		s = s[len(m):]
	}
	return append(parts, selectorPart.FindAllString(s, -1)...)
}

func matchCompound(n *Element, parts []string) bool {
	if n.IsText() || n.IsComment() {
		return false
	}
	for _, p := range parts {
		switch p[0] {
		case '.':
			if !hasClass(n, p[1:]) {
				return false
			}
		case '#':
			if value.ToString(n.Props.Value("id")) != p[1:] {
				return false
			}
		default:
			if n.TagName != p {
				return false
			}
		}
	}
	return true
}

func hasClass(n *Element, class string) bool {
	for _, c := range strings.Fields(value.ToString(n.Props.Value("class"))) {
		if c == class {
			return true
		}
	}
	return false
}

// HasChange reports whether a rendered tree differs from its previous
// render: some node below root is not NORMAL or some node recorded deletions.
// The status of root itself is not considered.
func HasChange(root *Element) bool {
	if root == nil {
		return false
	}
	if len(root.DeleteElements) > 0 {
		return true
	}
	for _, ch := range root.Children {
		if ch.Status != StatusNormal || ch.TextChanged || HasChange(ch) {
			return true
		}
	}
	return false
}

// Release drops platform references, attributes, events and scope data
// from a superseded tree so they can be reclaimed.
func Release(root *Element) {
	Walk(root, func(n *Element) bool {
		n.Ref = nil
		n.Props = Props{}
		n.Events = nil
		n.Data = nil
		n.Value = nil
		n.ChangeAttrs = nil
		n.DeleteElements = nil
		return true
	})
}
