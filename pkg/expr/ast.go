package expr

import (
	"strconv"
	"strings"
)

// Node is an expression tree node.
type Node interface {
	Eval(s *Scope) any
	String() string
}

// Literal is a constant.
type Literal struct {
	Value any
}

// Ident is a dotted path resolved against the scope. An empty Path is the
// component itself.
type Ident struct {
	Path string
}

// Unary is a prefix operator application.
type Unary struct {
	Op string
	X  Node
}

// Binary is an infix operator application, including && and ||.
type Binary struct {
	Op   string
	X, Y Node
}

// Cond is cond ? Then : Else.
type Cond struct {
	Test, Then, Else Node
}

func (n *Literal) String() string {
	switch v := n.Value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "?"
}

func (n *Ident) String() string {
	if n.Path == "" {
		return "this"
	}
	return n.Path
}

func (n *Unary) String() string { return n.Op + n.X.String() }

func (n *Binary) String() string {
	return "(" + n.X.String() + " " + n.Op + " " + n.Y.String() + ")"
}

func (n *Cond) String() string {
	return "(" + n.Test.String() + " ? " + n.Then.String() + " : " + n.Else.String() + ")"
}

// precedence of binary operators; higher binds tighter.
var precedence = map[string]int{
	"||":  1,
	"&&":  2,
	"|":   3,
	"&":   4,
	"==":  5,
	"!=":  5,
	"===": 5,
	"!==": 5,
	"<":   6,
	">":   6,
	"<=":  6,
	">=":  6,
	"+":   7,
	"-":   7,
	"*":   8,
	"/":   8,
	"%":   8,
}

type parser struct {
	src  string
	toks []Token
	i    int
}

// Parse parses src into an expression tree.
func Parse(src string) (Node, error) {
	toks, err := NewLexer(src).Scan()
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	if p.peek().Type == EOF {
		return nil, p.errAt(p.peek(), "empty expression")
	}
	n, err := p.conditional()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Type != EOF {
		return nil, p.errAt(t, "unexpected %q", t.Lexeme)
	}
	return n, nil
}

func (p *parser) peek() Token { return p.toks[p.i] }

func (p *parser) advance() Token {
	t := p.toks[p.i]
	if t.Type != EOF {
		p.i++
	}
	return t
}

func (p *parser) errAt(t Token, format string, args ...any) error {
	return syntaxError(p.src, t.Pos, format, args...)
}

// conditional parses the right-associative ternary.
func (p *parser) conditional() (Node, error) {
	test, err := p.binary(1)
	if err != nil {
		return nil, err
	}
	if p.peek().Type != QUESTION {
		return test, nil
	}
	p.advance()
	then, err := p.conditional()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Type != COLON {
		return nil, p.errAt(t, "expected ':' in conditional")
	}
	p.advance()
	els, err := p.conditional()
	if err != nil {
		return nil, err
	}
	return &Cond{Test: test, Then: then, Else: els}, nil
}

// binary parses operators of at least minPrec by precedence climbing.
func (p *parser) binary(minPrec int) (Node, error) {
	x, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		prec, ok := precedence[t.Lexeme]
		if t.Type != OP || !ok || prec < minPrec {
			return x, nil
		}
		p.advance()
		y, err := p.binary(prec + 1)
		if err != nil {
			return nil, err
		}
		x = &Binary{Op: t.Lexeme, X: x, Y: y}
	}
}

func (p *parser) unary() (Node, error) {
	t := p.peek()
	if t.Type == OP && (t.Lexeme == "!" || t.Lexeme == "-" || t.Lexeme == "+") {
		p.advance()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: t.Lexeme, X: x}, nil
	}
	return p.primary()
}

func (p *parser) primary() (Node, error) {
	t := p.advance()
	switch t.Type {
	case NUMBER, STRING, LITERAL:
		return &Literal{Value: t.Literal}, nil
	case IDENT:
		path := t.Lexeme
		if path == "this" {
			path = ""
		}
		path = strings.TrimPrefix(path, "this.")
		return &Ident{Path: path}, nil
	case LPAREN:
		n, err := p.conditional()
		if err != nil {
			return nil, err
		}
		if r := p.peek(); r.Type != RPAREN {
			return nil, p.errAt(r, "expected ')'")
		}
		p.advance()
		return n, nil
	case EOF:
		return nil, p.errAt(t, "unexpected end of expression")
	}
	return nil, p.errAt(t, "unexpected %q", t.Lexeme)
}
