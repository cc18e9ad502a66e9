package render

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/vango-dev/emtpl/pkg/value"
	"github.com/vango-dev/emtpl/pkg/vdom"
)

// HTMLOptions configures HTML output.
type HTMLOptions struct {
	// Pretty enables indented output. Should only be used for debugging
	// as it changes whitespace in the document.
	Pretty bool

	// Indent is the string used per indentation level in pretty mode.
	// Defaults to two spaces.
	Indent string
}

// HTML renders the children of a rendered tree's root as HTML. Deleted
// nodes, events and directive attributes are left out.
func HTML(root *vdom.Element) string {
	var buf bytes.Buffer
	WriteHTML(&buf, root, HTMLOptions{})
	return buf.String()
}

// InnerHTML renders e's children as HTML.
func InnerHTML(e *vdom.Element) string {
	return HTML(e)
}

// WriteHTML streams the children of root to w.
func WriteHTML(w io.Writer, root *vdom.Element, opts HTMLOptions) error {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	hw := &htmlWriter{w: w, opts: opts}
	for _, ch := range root.Children {
		hw.node(ch, 0)
	}
	return hw.err
}

// htmlWriter keeps the first write error and drops all output after it.
type htmlWriter struct {
	w    io.Writer
	opts HTMLOptions
	err  error
}

func (hw *htmlWriter) write(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

func (hw *htmlWriter) node(e *vdom.Element, depth int) {
	if e == nil || e.Status == vdom.StatusDelete {
		return
	}
	switch e.TagName {
	case vdom.TagText:
		hw.write(escapeHTML(e.InnerHTML))
	case vdom.TagComment:
		hw.write("<!--" + e.InnerHTML + "-->")
	case vdom.TagDoctype:
		hw.write("<!DOCTYPE")
		if e.InnerHTML != "" {
			hw.write(" " + e.InnerHTML)
		}
		hw.write(">")
		hw.newline()
	case vdom.TagForEach:
		for _, ch := range e.Children {
			hw.node(ch, depth)
		}
	default:
		hw.element(e, depth)
	}
}

func (hw *htmlWriter) element(e *vdom.Element, depth int) {
	tag := e.TagName
	if hw.opts.Pretty && depth > 0 {
		hw.indent(depth)
	}

	hw.write("<" + tag)
	hw.attributes(e)

	if isVoidElement(tag) {
		hw.write(">")
		hw.newline()
		return
	}
	hw.write(">")

	block := len(e.Children) > 0 && !isInlineElement(tag)
	if block {
		hw.newline()
	}
	for _, ch := range e.Children {
		hw.node(ch, depth+1)
	}
	if hw.opts.Pretty && block {
		hw.indent(depth)
	}

	hw.write("</" + tag + ">")
	hw.newline()
}

func (hw *htmlWriter) attributes(e *vdom.Element) {
	for _, kv := range e.Props.All() {
		key, v := kv.Key, kv.Value
		if skipAttr(key) || value.IsFunc(v) {
			continue
		}

		if b, ok := v.(bool); ok && isBooleanAttr(key) {
			if b {
				hw.write(" " + key)
			}
			continue
		}
		if key == v {
			hw.write(" " + key)
			continue
		}
		hw.write(" " + key + `="` + escapeAttr(attrToString(v)) + `"`)
	}
}

func (hw *htmlWriter) newline() {
	if hw.opts.Pretty {
		hw.write("\n")
	}
}

func (hw *htmlWriter) indent(depth int) {
	hw.write(strings.Repeat(hw.opts.Indent, depth))
}

// skipAttr reports whether key is a directive rather than an attribute.
func skipAttr(key string) bool {
	switch key {
	case vdom.AttrKey, vdom.AttrSpread, vdom.AttrFor, vdom.AttrIf, vdom.AttrEmIf:
		return true
	}
	return strings.HasPrefix(key, "et:")
}

// attrToString converts an attribute value to a string. Objects are
// written as JSON.
func attrToString(v any) string {
	if value.IsObject(v) {
		b, err := json.Marshal(v)
		if err == nil {
			return string(b)
		}
	}
	return value.ToString(v)
}
