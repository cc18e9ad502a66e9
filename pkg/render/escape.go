package render

import (
	"regexp"
	"strings"
)

// charRefRe matches a named or numeric character reference.
var charRefRe = regexp.MustCompile(`^&(?:#[0-9]{1,7}|#[xX][0-9a-fA-F]{1,6}|[A-Za-z][A-Za-z0-9]{1,31});`)

var (
	textEscaper = strings.NewReplacer(
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
		"\n", "&#10;",
		"\r", "&#13;",
		"\t", "&#9;",
	)
)

// escapeHTML escapes text content. Character references written in the
// template, such as &nbsp; or &#169;, pass through unchanged.
func escapeHTML(s string) string {
	if !strings.ContainsAny(s, `&<>"'`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for {
		i := strings.IndexByte(s, '&')
		if i < 0 {
			b.WriteString(textEscaper.Replace(s))
			return b.String()
		}
		b.WriteString(textEscaper.Replace(s[:i]))
		if ref := charRefRe.FindString(s[i:]); ref != "" {
			b.WriteString(ref)
			s = s[i+len(ref):]
			continue
		}
		b.WriteString("&amp;")
		s = s[i+1:]
	}
}

// escapeAttr escapes an attribute value, including whitespace that
// would otherwise be normalized by the browser.
func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
