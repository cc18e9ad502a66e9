package parser

import (
	"regexp"
	"strings"

	"github.com/vango-dev/emtpl/internal/config"
	"github.com/vango-dev/emtpl/internal/errors"
	"github.com/vango-dev/emtpl/pkg/vdom"
)

var (
	tagNameRe    = regexp.MustCompile(`^<([A-Za-z0-9_\-]+)`)
	closeTagRe   = regexp.MustCompile(`^</\s*([A-Za-z0-9_\-]+)\s*>`)
	attrKeyRe    = regexp.MustCompile(`^[A-Za-z0-9\-_.:]+`)
	spreadPathRe = regexp.MustCompile(`^\.\.\.([A-Za-z0-9\-_.]*)`)
)

// Options configures a Parser.
type Options struct {
	// VoidTags close immediately without a closing tag. Matching is
	// case-insensitive. Nil means config.DefaultVoidTags.
	VoidTags []string

	// RootTag is the tag of the returned wrapper element.
	RootTag string
}

// Parser parses template markup.
type Parser struct {
	void map[string]bool
	root string
}

// New creates a Parser.
func New(opts Options) *Parser {
	tags := opts.VoidTags
	if tags == nil {
		tags = config.DefaultVoidTags
	}
	p := &Parser{
		void: make(map[string]bool, len(tags)),
		root: opts.RootTag,
	}
	for _, t := range tags {
		p.void[strings.ToLower(t)] = true
	}
	if p.root == "" {
		p.root = config.DefaultRootTag
	}
	return p
}

var defaultParser = New(Options{})

// Parse parses markup with the default options.
func Parse(markup string) (*vdom.Element, error) {
	return defaultParser.Parse(markup)
}

// Parse parses markup into a tree rooted at a wrapper element.
func (p *Parser) Parse(markup string) (*vdom.Element, error) {
	st := &state{
		p:      p,
		src:    markup,
		root:   &vdom.Element{TagName: p.root, Status: vdom.StatusAppend},
		atLine: true,
	}
	st.stack = []*vdom.Element{st.root}

	if err := st.run(); err != nil {
		return nil, err
	}
	return st.root, nil
}

// state is the cursor over one markup string.
type state struct {
	p     *Parser
	src   string
	pos   int
	root  *vdom.Element
	stack []*vdom.Element

	// atLine is set after a tag so the next text run drops its leading newlines.
	atLine bool
}

func (st *state) top() *vdom.Element {
	return st.stack[len(st.stack)-1]
}

func (st *state) fail(code string, offset int) *errors.TemplateError {
	return errors.New(code).WithLocation(st.src, offset)
}

func (st *state) run() error {
	for st.pos < len(st.src) {
		var err error
		if st.src[st.pos] == '<' {
			err = st.markup()
			st.atLine = true
		} else {
			err = st.text()
			st.atLine = false
		}
		if err != nil {
			return err
		}
	}

	// Unclosed elements are closed at end of input.
	for len(st.stack) > 0 {
		n := st.stack[len(st.stack)-1]
		n.InnerHTML = vdom.InnerMarkup(n)
		st.stack = st.stack[:len(st.stack)-1]
	}
	return nil
}

// text consumes everything up to the next '<'.
func (st *state) text() error {
	start := st.pos
	end := strings.IndexByte(st.src[start:], '<')
	if end < 0 {
		end = len(st.src)
	} else {
		end += start
	}
	st.pos = end

	run := st.src[start:end]
	if i := strings.Index(run, "-->"); i >= 0 {
		return st.fail("P002", start+i)
	}
	if st.atLine {
		run = strings.TrimLeft(run, "\r\n")
	}
	if strings.TrimSpace(run) == "" {
		return nil
	}
	st.top().AppendChild(&vdom.Element{
		TagName:   vdom.TagText,
		InnerHTML: run,
		Status:    vdom.StatusAppend,
	})
	return nil
}

// markup consumes one construct starting with '<'.
func (st *state) markup() error {
	rest := st.src[st.pos:]
	switch {
	case strings.HasPrefix(rest, "<<"):
		return st.fail("P001", st.pos)
	case strings.HasPrefix(rest, "<!--"):
		return st.comment()
	case strings.HasPrefix(rest, "</"):
		return st.closeTag()
	case len(rest) >= 9 && strings.EqualFold(rest[:9], "<!DOCTYPE"):
		return st.doctype()
	}
	return st.openTag()
}

func (st *state) comment() error {
	start := st.pos
	bodyStart := start + len("<!--")
	end := strings.Index(st.src[bodyStart:], "-->")
	if end < 0 {
		return st.fail("P004", start)
	}
	body := st.src[bodyStart : bodyStart+end]
	if i := strings.Index(body, "<!--"); i >= 0 {
		return st.fail("P003", bodyStart+i)
	}
	st.top().AppendChild(&vdom.Element{
		TagName:   vdom.TagComment,
		InnerHTML: body,
		Status:    vdom.StatusAppend,
	})
	st.pos = bodyStart + end + len("-->")
	return nil
}

func (st *state) doctype() error {
	start := st.pos
	end := strings.IndexByte(st.src[start:], '>')
	if end < 0 {
		return st.fail("P008", start)
	}
	st.top().AppendChild(&vdom.Element{
		TagName:     vdom.TagDoctype,
		InnerHTML:   strings.TrimSpace(st.src[start+len("<!DOCTYPE") : start+end]),
		Status:      vdom.StatusAppend,
		SelfClosing: true,
	})
	st.pos = start + end + 1
	return nil
}

func (st *state) closeTag() error {
	m := closeTagRe.FindStringSubmatch(st.src[st.pos:])
	if m == nil {
		return st.fail("P007", st.pos)
	}
	name := m[1]
	top := st.top()
	if len(st.stack) == 1 || top.TagName != name {
		err := st.fail("P005", st.pos).WithDetail("</" + name + ">")
		if len(st.stack) > 1 {
			err = err.WithSuggestion("Close <" + top.TagName + "> first")
		}
		return err
	}
	top.InnerHTML = vdom.InnerMarkup(top)
	st.stack = st.stack[:len(st.stack)-1]
	st.pos += len(m[0])
	return nil
}

func (st *state) openTag() error {
	start := st.pos
	m := tagNameRe.FindStringSubmatch(st.src[start:])
	if m == nil {
		return st.fail("P007", start)
	}
	name := m[1]
	if strings.EqualFold(name, vdom.TagScript) {
		return st.fail("P006", start)
	}

	st.pos = start + len(m[0])
	if st.pos < len(st.src) {
		switch st.src[st.pos] {
		case ' ', '\t', '\r', '\n', '>', '/':
		default:
			return st.fail("P007", start)
		}
	}

	node := &vdom.Element{TagName: name, Status: vdom.StatusAppend}
	selfClosing, err := st.attrs(&node.Props, start)
	if err != nil {
		return err
	}

	st.top().AppendChild(node)
	if selfClosing || st.p.void[strings.ToLower(name)] {
		node.SelfClosing = true
		return nil
	}
	st.stack = append(st.stack, node)
	return nil
}

// attrs reads the attribute block up to and including '>' or '/>'.
func (st *state) attrs(props *vdom.Props, tagStart int) (selfClosing bool, err error) {
	for {
		st.skipSpace()
		if st.pos >= len(st.src) {
			return false, st.fail("P008", tagStart)
		}
		rest := st.src[st.pos:]
		switch {
		case rest[0] == '>':
			st.pos++
			return false, nil
		case strings.HasPrefix(rest, "/>"):
			st.pos += 2
			return true, nil
		case strings.HasPrefix(rest, "..."):
			m := spreadPathRe.FindStringSubmatch(rest)
			props.Set(vdom.AttrSpread, m[1])
			st.pos += len(m[0])
			continue
		}

		key := attrKeyRe.FindString(rest)
		if key == "" {
			return false, st.fail("P007", st.pos).WithDetail("invalid attribute")
		}
		st.pos += len(key)

		st.skipSpace()
		if st.pos >= len(st.src) || st.src[st.pos] != '=' {
			props.Set(key, key)
			continue
		}
		st.pos++
		st.skipSpace()

		val, err := st.attrValue(tagStart)
		if err != nil {
			return false, err
		}
		props.Set(key, val)
	}
}

// attrValue reads a quoted or bare value. Backslash-escaped quotes of the
// same kind do not terminate a quoted value and are kept as written.
func (st *state) attrValue(tagStart int) (string, error) {
	if st.pos >= len(st.src) {
		return "", st.fail("P008", tagStart)
	}
	q := st.src[st.pos]
	if q != '"' && q != '\'' {
		start := st.pos
		for st.pos < len(st.src) {
			c := st.src[st.pos]
			if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '>' || strings.HasPrefix(st.src[st.pos:], "/>") {
				break
			}
			st.pos++
		}
		return st.src[start:st.pos], nil
	}

	start := st.pos + 1
	for i := start; i < len(st.src); i++ {
		if st.src[i] == q && st.src[i-1] != '\\' {
			st.pos = i + 1
			return st.src[start:i], nil
		}
	}
	return "", st.fail("P008", tagStart)
}

func (st *state) skipSpace() {
	for st.pos < len(st.src) {
		switch st.src[st.pos] {
		case ' ', '\t', '\r', '\n':
			st.pos++
		default:
			return
		}
	}
}
