package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenType is the kind of a token.
type TokenType int

const (
	EOF TokenType = iota
	NUMBER
	STRING
	IDENT
	LITERAL // true, false, null, undefined
	OP
	LPAREN
	RPAREN
	QUESTION
	COLON
)

// Token is a lexical token.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Pos     int
}

// keywordOps maps keyword operators to their symbols.
var keywordOps = map[string]string{
	"eq":   "==",
	"neq":  "!=",
	"seq":  "===",
	"sneq": "!==",
	"lt":   "<",
	"gt":   ">",
	"lteq": "<=",
	"gteq": ">=",
}

var literals = map[string]any{
	"true":      true,
	"false":     false,
	"null":      nil,
	"undefined": nil,
}

// Longest first so that "===" wins over "==".
var symbols = []string{
	"===", "!==",
	"==", "!=", "<=", ">=", "&&", "||",
	"<", ">", "!", "+", "-", "*", "/", "%", "|", "&",
}

// SyntaxError reports a malformed expression.
type SyntaxError struct {
	Src string
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d in %q", e.Msg, e.Pos, e.Src)
}

// Lexer splits an expression into tokens.
type Lexer struct {
	src string
	cur int
}

// NewLexer creates a Lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

func (l *Lexer) err(pos int, format string, args ...any) error {
	return syntaxError(l.src, pos, format, args...)
}

func syntaxError(src string, pos int, format string, args ...any) error {
	return &SyntaxError{Src: src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Scan returns all tokens of the source, ending with EOF.
func (l *Lexer) Scan() ([]Token, error) {
	var toks []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) next() (Token, error) {
	for l.cur < len(l.src) && isSpace(l.src[l.cur]) {
		l.cur++
	}
	start := l.cur
	if l.cur >= len(l.src) {
		return Token{Type: EOF, Pos: start}, nil
	}

	c := l.src[l.cur]
	switch {
	case c == '(':
		l.cur++
		return Token{Type: LPAREN, Lexeme: "(", Pos: start}, nil
	case c == ')':
		l.cur++
		return Token{Type: RPAREN, Lexeme: ")", Pos: start}, nil
	case c == '?':
		l.cur++
		return Token{Type: QUESTION, Lexeme: "?", Pos: start}, nil
	case c == ':':
		l.cur++
		return Token{Type: COLON, Lexeme: ":", Pos: start}, nil
	case c == '"' || c == '\'':
		s, err := l.scanString(c)
		if err != nil {
			return Token{}, err
		}
		return Token{Type: STRING, Lexeme: l.src[start:l.cur], Literal: s, Pos: start}, nil
	case isDigit(c) || (c == '.' && l.cur+1 < len(l.src) && isDigit(l.src[l.cur+1])):
		lit, err := l.scanNumber()
		if err != nil {
			return Token{}, err
		}
		return Token{Type: NUMBER, Lexeme: l.src[start:l.cur], Literal: lit, Pos: start}, nil
	case isIdentStart(c):
		word := l.scanIdentifier()
		if op, ok := keywordOps[word]; ok {
			return Token{Type: OP, Lexeme: op, Pos: start}, nil
		}
		if lit, ok := literals[word]; ok {
			return Token{Type: LITERAL, Lexeme: word, Literal: lit, Pos: start}, nil
		}
		return Token{Type: IDENT, Lexeme: word, Pos: start}, nil
	}

	for _, sym := range symbols {
		if strings.HasPrefix(l.src[l.cur:], sym) {
			l.cur += len(sym)
			return Token{Type: OP, Lexeme: sym, Pos: start}, nil
		}
	}
	return Token{}, l.err(start, "unexpected character %q", c)
}

func (l *Lexer) scanString(quote byte) (string, error) {
	start := l.cur
	l.cur++
	var b strings.Builder
	for l.cur < len(l.src) {
		c := l.src[l.cur]
		switch c {
		case quote:
			l.cur++
			return b.String(), nil
		case '\\':
			if l.cur+1 >= len(l.src) {
				return "", l.err(start, "unterminated string")
			}
			l.cur++
			switch e := l.src[l.cur]; e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(e)
			}
		default:
			b.WriteByte(c)
		}
		l.cur++
	}
	return "", l.err(start, "unterminated string")
}

func (l *Lexer) scanNumber() (any, error) {
	start := l.cur
	float := false
	for l.cur < len(l.src) {
		c := l.src[l.cur]
		if c == '.' && !float {
			float = true
		} else if !isDigit(c) {
			break
		}
		l.cur++
	}
	text := l.src[start:l.cur]
	if !float {
		if n, err := strconv.Atoi(text); err == nil {
			return n, nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, l.err(start, "invalid number %q", text)
	}
	return f, nil
}

// scanIdentifier reads a dotted path such as this.items.0.name.
func (l *Lexer) scanIdentifier() string {
	start := l.cur
	for l.cur < len(l.src) && (isIdentPart(l.src[l.cur]) || l.src[l.cur] == '.') {
		l.cur++
	}
	return l.src[start:l.cur]
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$'
}
func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
