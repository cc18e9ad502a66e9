package expr

import (
	"math"
	"sync"

	"github.com/vango-dev/emtpl/pkg/value"
)

const maxCached = 4096

var (
	cacheMu sync.RWMutex
	cache   = make(map[string]Node)
)

// Compile parses src, reusing a previously parsed tree when available.
func Compile(src string) (Node, error) {
	cacheMu.RLock()
	n, ok := cache[src]
	cacheMu.RUnlock()
	if ok {
		return n, nil
	}

	n, err := Parse(src)
	if err != nil {
		return nil, err
	}

	cacheMu.Lock()
	if len(cache) >= maxCached {
		cache = make(map[string]Node)
	}
	cache[src] = n
	cacheMu.Unlock()
	return n, nil
}

// Eval parses and evaluates src against s.
func Eval(src string, s *Scope) (any, error) {
	n, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return n.Eval(s), nil
}

func (n *Literal) Eval(*Scope) any { return n.Value }

func (n *Ident) Eval(s *Scope) any { return s.Lookup(n.Path) }

func (n *Cond) Eval(s *Scope) any {
	if value.Truthy(n.Test.Eval(s)) {
		return n.Then.Eval(s)
	}
	return n.Else.Eval(s)
}

func (n *Unary) Eval(s *Scope) any {
	x := n.X.Eval(s)
	switch n.Op {
	case "!":
		return !value.Truthy(x)
	case "-":
		if i, ok := integer(x); ok {
			return -i
		}
		f, _ := value.ToNumber(x)
		return -f
	default:
		if i, ok := integer(x); ok {
			return i
		}
		f, _ := value.ToNumber(x)
		return f
	}
}

func (n *Binary) Eval(s *Scope) any {
	x := n.X.Eval(s)
	switch n.Op {
	case "&&":
		if !value.Truthy(x) {
			return x
		}
		return n.Y.Eval(s)
	case "||":
		if value.Truthy(x) {
			return x
		}
		return n.Y.Eval(s)
	}

	y := n.Y.Eval(s)
	switch n.Op {
	case "==":
		return LooseEqual(x, y)
	case "!=":
		return !LooseEqual(x, y)
	case "===":
		return StrictEqual(x, y)
	case "!==":
		return !StrictEqual(x, y)
	case "<", ">", "<=", ">=":
		return compare(n.Op, x, y)
	case "+":
		return add(x, y)
	case "|", "&":
		return bitwise(n.Op, x, y)
	}
	return arith(n.Op, x, y)
}

// integer returns v as an int when it has an integer kind or is a bool.
func integer(v any) (int, bool) {
	switch t := v.(type) {
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case int:
		return t, true
	}
	if value.IsInteger(v) {
		f, _ := value.ToNumber(v)
		return int(f), true
	}
	return 0, false
}

// primitive reports whether v converts to a number rather than a string
// under +.
func primitive(v any) bool {
	if v == nil {
		return true
	}
	if _, ok := v.(bool); ok {
		return true
	}
	return value.IsNumber(v)
}

func add(x, y any) any {
	if !primitive(x) || !primitive(y) {
		return value.ToString(x) + value.ToString(y)
	}
	if a, ok := integer(x); ok {
		if b, ok := integer(y); ok {
			return a + b
		}
	}
	a, _ := value.ToNumber(x)
	b, _ := value.ToNumber(y)
	return a + b
}

func arith(op string, x, y any) any {
	if op != "/" {
		if a, ok := integer(x); ok {
			if b, ok := integer(y); ok {
				switch op {
				case "-":
					return a - b
				case "*":
					return a * b
				case "%":
					if b == 0 {
						return math.NaN()
					}
					return a % b
				}
			}
		}
	}
	a, _ := value.ToNumber(x)
	b, _ := value.ToNumber(y)
	switch op {
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		return a / b
	case "%":
		return math.Mod(a, b)
	}
	return math.NaN()
}

func bitwise(op string, x, y any) any {
	a, b := int32bits(x), int32bits(y)
	if op == "|" {
		return int(a | b)
	}
	return int(a & b)
}

func int32bits(v any) int32 {
	f, ok := value.ToNumber(v)
	if !ok || math.IsInf(f, 0) {
		return 0
	}
	return int32(int64(f))
}

func compare(op string, x, y any) bool {
	if a, ok := x.(string); ok {
		if b, ok := y.(string); ok {
			switch op {
			case "<":
				return a < b
			case ">":
				return a > b
			case "<=":
				return a <= b
			default:
				return a >= b
			}
		}
	}
	a, aok := value.ToNumber(x)
	b, bok := value.ToNumber(y)
	if !aok || !bok {
		return false
	}
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	default:
		return a >= b
	}
}

type kind int

const (
	kindNil kind = iota
	kindBool
	kindNumber
	kindString
	kindOther
)

func kindOf(v any) kind {
	switch v.(type) {
	case nil:
		return kindNil
	case bool:
		return kindBool
	case string:
		return kindString
	}
	if value.IsNumber(v) {
		return kindNumber
	}
	return kindOther
}

// LooseEqual implements ==: nil equals only nil, and mixed primitives are
// compared as numbers.
func LooseEqual(x, y any) bool {
	kx, ky := kindOf(x), kindOf(y)
	switch {
	case kx == kindNil || ky == kindNil:
		return kx == ky
	case kx == kindString && ky == kindString:
		return x.(string) == y.(string)
	case kx == kindOther || ky == kindOther:
		return value.Equal(x, y)
	}
	a, aok := value.ToNumber(x)
	b, bok := value.ToNumber(y)
	return aok && bok && a == b
}

// StrictEqual implements ===: values of different kinds are never equal.
// Numbers compare by value regardless of their Go type.
func StrictEqual(x, y any) bool {
	kx, ky := kindOf(x), kindOf(y)
	if kx != ky {
		return false
	}
	switch kx {
	case kindNil:
		return true
	case kindNumber:
		a, _ := value.ToNumber(x)
		b, _ := value.ToNumber(y)
		return a == b
	case kindOther:
		return value.Equal(x, y)
	}
	return x == y
}
