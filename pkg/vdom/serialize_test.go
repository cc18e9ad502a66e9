package vdom

import "testing"

func TestMarkup(t *testing.T) {
	root := NewElement(TagRoot)
	div := NewElement("div", Prop{"class", "card"}, Prop{"checked", "checked"}, Prop{AttrSpread, "attrs"})
	root.AppendChild(&Element{TagName: TagDoctype, InnerHTML: "html"})
	root.AppendChild(div)
	div.AppendChild(NewText("Hi "))
	div.AppendChild(&Element{TagName: TagComment, InnerHTML: " note "})
	div.AppendChild(&Element{TagName: "br", SelfClosing: true})
	div.AppendChild(NewElement("b", Prop{"data-n", 3}))

	want := `<!DOCTYPE html><div class="card" checked ...attrs>Hi <!-- note --><br /><b data-n="3"></b></div>`
	if got := InnerMarkup(root); got != want {
		t.Errorf("InnerMarkup() =\n%s\nwant\n%s", got, want)
	}
	if got := Markup(NewText("plain")); got != "plain" {
		t.Errorf("Markup(text) = %q", got)
	}
}

func TestQuoteAttr(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", `"plain"`},
		{`say "hi"`, `'say "hi"'`},
		{`esc \"ok\"`, `"esc \"ok\""`},
		{`both "a" 'b'`, `"both \"a\" 'b'"`},
		{"", `""`},
	}
	for _, tt := range tests {
		if got := QuoteAttr(tt.in); got != tt.want {
			t.Errorf("QuoteAttr(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
