package render

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vango-dev/emtpl/internal/errors"
	"github.com/vango-dev/emtpl/pkg/expr"
	"github.com/vango-dev/emtpl/pkg/value"
	"github.com/vango-dev/emtpl/pkg/vdom"
)

var forRe = regexp.MustCompile(`^let\s+([A-Za-z0-9_$]+)\s+in\s+([A-Za-z0-9_.$\-]+)$`)

// entry is one iteration of a list directive.
type entry struct {
	key  any
	item any
}

// iterate lists the entries of a slice, map or struct. Slice keys are ints,
// other keys strings.
func iterate(v any) []entry {
	if v == nil {
		return nil
	}
	es := value.Entries(v)
	out := make([]entry, len(es))
	array := value.IsArray(v)
	for i, e := range es {
		out[i] = entry{key: e.Key, item: e.Value}
		if array {
			out[i].key = i
		}
	}
	return out
}

// expand replaces list directives and content placeholders among parent's
// children and reports whether it changed any. Deleted children are left
// alone, which makes expand idempotent.
func (p *pass) expand(parent *vdom.Element, scope *expr.Scope) (bool, error) {
	if len(parent.Children) == 0 {
		return false, nil
	}
	h := p.r.arena.Acquire(parent)
	defer p.r.arena.Release(h)

	expanded := false
	for i := 0; i < len(parent.Children); i++ {
		node := parent.Children[i]
		if node.Status == vdom.StatusDelete {
			continue
		}
		nodeScope := scope
		if len(node.Data) > 0 {
			nodeScope = scope.With(node.Data)
		}

		var clones []*vdom.Element
		switch {
		case node.TagName == vdom.TagForEach:
			var err error
			clones, err = p.forEach(node, nodeScope)
			if err != nil {
				return false, err
			}
		case !node.IsText() && !value.IsEmpty(node.Props.Value(vdom.AttrFor)):
			clones = p.repeat(node, nodeScope)
			if len(clones) == 0 {
				node.Props.Delete(vdom.AttrFor)
			}
		case node.TagName == p.r.contentTag:
			expanded = true
			vdom.SetStatus(node, vdom.StatusDelete)
			content := make([]*vdom.Element, len(p.opts.Content))
			for j, c := range p.opts.Content {
				content[j] = c.Clone()
			}
			if err := p.r.arena.AppendAt(h, i+1, content...); err != nil {
				return false, err
			}
			i += len(content)
			continue
		default:
			continue
		}

		expanded = true
		if len(clones) == 0 {
			vdom.SetStatus(node, vdom.StatusDelete)
			continue
		}
		if err := p.r.arena.ReplaceAt(h, i, clones...); err != nil {
			return false, err
		}
		i += len(clones) - 1
	}
	return expanded, nil
}

// repeat expands em:for="let item in path". Each clone gets the item and
// its index in scope; object items also get a key field set to the index.
func (p *pass) repeat(node *vdom.Element, scope *expr.Scope) []*vdom.Element {
	formula := strings.TrimSpace(value.ToString(node.Props.Value(vdom.AttrFor)))
	m := forRe.FindStringSubmatch(formula)
	if m == nil {
		p.r.logger.Warn("invalid em:for", "value", formula, "path", pathString(node.Path))
		return nil
	}
	itemKey, path := m[1], strings.TrimPrefix(m[2], "this.")

	var clones []*vdom.Element
	for _, e := range iterate(scope.Lookup(path)) {
		item := e.item
		if value.IsObject(item) {
			obj := value.Extend(make(map[string]any), item)
			obj["key"] = e.key
			item = obj
		}
		c := node.Clone()
		c.Props.Delete(vdom.AttrFor)
		c.Data = scopeData(node.Data, itemKey, item, "index", e.key)
		clones = append(clones, c)
	}
	return clones
}

// forEach expands <forEach data="path" item="x" index="i">. The wrapper
// must hold exactly one non-blank child, and that child must have a key.
// Clone keys are the child's key followed by the iteration key.
func (p *pass) forEach(node *vdom.Element, scope *expr.Scope) ([]*vdom.Element, error) {
	var child *vdom.Element
	count := 0
	for _, c := range node.Children {
		if c.IsBlank() {
			continue
		}
		child = c
		count++
	}
	if count != 1 {
		return nil, errors.New("C001").
			WithDetail("forEach at path " + pathString(node.Path) + " has " + strconv.Itoa(count) + " children").
			WithSuggestion("Wrap the repeated markup in a single element")
	}
	templateKey, ok := child.Props.Get(vdom.AttrKey)
	if !ok || value.IsEmpty(templateKey) {
		return nil, errors.New("C002").
			WithDetail("<" + child.TagName + "> in forEach at path " + pathString(node.Path)).
			WithSuggestion(`Add a key attribute, e.g. key="{{item.id}}"`)
	}

	path := strings.TrimPrefix(unwrapBinding(value.ToString(node.Props.Value("data"))), "this.")
	itemKey := node.Props.String("item")
	if itemKey == "" {
		itemKey = "item"
	}
	indexKey := node.Props.String("index")
	if indexKey == "" {
		indexKey = "index"
	}

	var clones []*vdom.Element
	for _, e := range iterate(scope.Lookup(path)) {
		c := child.Clone()
		c.Data = scopeData(child.Data, itemKey, e.item, indexKey, e.key)
		c.Props.Set(vdom.AttrKey, value.ToString(templateKey)+value.ToString(e.key))
		clones = append(clones, c)
	}
	return clones, nil
}

func scopeData(base map[string]any, itemKey string, item any, indexKey string, index any) map[string]any {
	data := make(map[string]any, len(base)+2)
	for k, v := range base {
		data[k] = v
	}
	data[itemKey] = item
	data[indexKey] = index
	return data
}

func unwrapBinding(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{{") && strings.HasSuffix(s, "}}") {
		s = strings.TrimSpace(s[2 : len(s)-2])
	}
	return s
}
