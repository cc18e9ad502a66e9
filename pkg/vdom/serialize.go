package vdom

import (
	"strings"

	"github.com/vango-dev/emtpl/pkg/value"
)

// Markup serializes e and its subtree back to template markup.
func Markup(e *Element) string {
	var b strings.Builder
	writeMarkup(&b, e)
	return b.String()
}

// InnerMarkup serializes e's children.
func InnerMarkup(e *Element) string {
	var b strings.Builder
	for _, ch := range e.Children {
		writeMarkup(&b, ch)
	}
	return b.String()
}

func writeMarkup(b *strings.Builder, e *Element) {
	switch e.TagName {
	case TagText:
		b.WriteString(e.InnerHTML)
	case TagComment:
		b.WriteString("<!--")
		b.WriteString(e.InnerHTML)
		b.WriteString("-->")
	case TagDoctype:
		b.WriteString("<!DOCTYPE")
		if e.InnerHTML != "" {
			b.WriteByte(' ')
			b.WriteString(e.InnerHTML)
		}
		b.WriteByte('>')
	default:
		b.WriteByte('<')
		b.WriteString(e.TagName)
		b.WriteString(AttrMarkup(&e.Props))
		if e.SelfClosing {
			b.WriteString(" />")
			return
		}
		b.WriteByte('>')
		for _, ch := range e.Children {
			writeMarkup(b, ch)
		}
		b.WriteString("</")
		b.WriteString(e.TagName)
		b.WriteByte('>')
	}
}

// AttrMarkup serializes attributes as markup, each preceded by a space.
// Spread attributes are written as ...path and attributes whose value equals
// their name are written bare.
func AttrMarkup(p *Props) string {
	var b strings.Builder
	for _, kv := range p.All() {
		b.WriteByte(' ')
		s := value.ToString(kv.Value)
		switch {
		case kv.Key == AttrSpread:
			b.WriteString("...")
			b.WriteString(s)
		case s == kv.Key:
			b.WriteString(kv.Key)
		default:
			b.WriteString(kv.Key)
			b.WriteByte('=')
			b.WriteString(QuoteAttr(s))
		}
	}
	return b.String()
}

// QuoteAttr quotes an attribute value. Double quotes are preferred; single
// quotes are used when the value contains unescaped double quotes only.
func QuoteAttr(s string) string {
	dq := hasUnescaped(s, '"')
	if !dq {
		return `"` + s + `"`
	}
	if !hasUnescaped(s, '\'') {
		return "'" + s + "'"
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' && (i == 0 || s[i-1] != '\\') {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

func hasUnescaped(s string, q byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == q && (i == 0 || s[i-1] != '\\') {
			return true
		}
	}
	return false
}
