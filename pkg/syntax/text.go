package syntax

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/vango-dev/emtpl/internal/config"
	"github.com/vango-dev/emtpl/internal/errors"
	"github.com/vango-dev/emtpl/pkg/expr"
	"github.com/vango-dev/emtpl/pkg/value"
	"github.com/vango-dev/emtpl/pkg/vdom"
)

var (
	bindingRe   = regexp.MustCompile(`\{\{([^\\}]+)\}\}`)
	pathRe      = regexp.MustCompile(`^\s*[A-Za-z0-9_.$]+\s*$`)
	callRe      = regexp.MustCompile(`^\s*([A-Za-z0-9_.$]+)\(([^}]*)\)\s*$`)
	logicRe     = regexp.MustCompile(`\s(eq|neq|seq|sneq|lt|gt|lteq|gteq|&&|\|\||\+|-|\*|/|%)\s`)
	injectRe    = regexp.MustCompile(`(?i)script:`)
	scriptURLRe = regexp.MustCompile(`(?i)^\s*(java|vb)?script:`)
	numberRe    = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)
)

// TextOptions configures a TextHandler.
type TextOptions struct {
	// Guard replaces bindings that would produce a script URL.
	// Empty means config.DefaultInjectionGuard.
	Guard string

	// GuardedAttrs are the attributes the guard applies to.
	// Nil means config.DefaultGuardedAttrs.
	GuardedAttrs []string

	Logger *slog.Logger

	// OnBlocked is called for each rejected binding.
	OnBlocked func(attr, binding string)
}

// TextHandler rewrites {{ }} bindings. Each binding is resolved by the
// first matching form:
//
//	{{a.b.c}}          path lookup; funcs are called without arguments
//	{{fn(x, 'lit')}}   call with resolved or literal arguments
//	{{expr|fallback}}  fallback when expr is falsy
//	{{c ? a : b}}      script conditional
//	{{a eq b}}         script with an operator surrounded by spaces
//
// When the value is exactly one binding the result keeps its native type;
// otherwise results are stringified in place.
type TextHandler struct {
	guard     string
	guarded   map[string]bool
	logger    *slog.Logger
	onBlocked func(attr, binding string)
}

// NewTextHandler creates a TextHandler.
func NewTextHandler(opts TextOptions) *TextHandler {
	h := &TextHandler{
		guard:     opts.Guard,
		guarded:   make(map[string]bool),
		logger:    opts.Logger,
		onBlocked: opts.OnBlocked,
	}
	if h.guard == "" {
		h.guard = config.DefaultInjectionGuard
	}
	attrs := opts.GuardedAttrs
	if attrs == nil {
		attrs = config.DefaultGuardedAttrs
	}
	for _, a := range attrs {
		h.guarded[strings.ToLower(a)] = true
	}
	return h
}

func (h *TextHandler) TryRender(ev *Event) (Result, error) {
	if hasPrefixFold(ev.AttrKey, EventPrefix) || hasPrefixFold(ev.AttrKey, DirectPrefix) {
		return Result{}, nil
	}
	target, ok := ev.Target.(string)
	if !ok {
		return Result{}, nil
	}
	locs := bindingRe.FindAllStringSubmatchIndex(target, -1)
	if len(locs) == 0 {
		return Result{}, nil
	}

	guarded := h.guarded[strings.ToLower(ev.AttrKey)]
	whole := len(locs) == 1 && strings.TrimSpace(target) == target[locs[0][0]:locs[0][1]]

	var (
		b       strings.Builder
		last    int
		matched bool
		native  any
	)
	for _, loc := range locs {
		seg, inner := target[loc[0]:loc[1]], target[loc[2]:loc[3]]
		b.WriteString(target[last:loc[0]])
		last = loc[1]

		if guarded && injectRe.MatchString(inner) {
			h.block(ev.AttrKey, seg)
			ev.Break = true
			return Result{Matched: true, Value: h.guard}, nil
		}

		v, ok, err := h.binding(ev, inner)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			b.WriteString(seg)
			continue
		}
		matched = true
		native = v
		b.WriteString(value.ToString(v))
	}
	if !matched {
		return Result{}, nil
	}
	b.WriteString(target[last:])

	out := any(b.String())
	if whole {
		out = native
	}
	if guarded {
		if s, ok := out.(string); ok && scriptURLRe.MatchString(s) {
			h.block(ev.AttrKey, target)
			out = h.guard
		}
	}
	ev.Break = ev.AttrKey != vdom.AttrSpread
	return Result{Matched: true, Value: out}, nil
}

func (h *TextHandler) block(attr, binding string) {
	logger(h.logger).Warn("blocked script binding", "attr", attr, "binding", binding)
	if h.onBlocked != nil {
		h.onBlocked(attr, binding)
	}
}

// binding resolves the inside of one {{ }} segment. ok is false when no
// form applies and the segment is kept verbatim.
func (h *TextHandler) binding(ev *Event, inner string) (v any, ok bool, err error) {
	logic := logicRe.MatchString(inner)

	if !logic && pathRe.MatchString(inner) {
		key := strings.TrimSpace(inner)
		switch strings.ToLower(key) {
		case "true":
			return true, true, nil
		case "false":
			return false, true, nil
		}
		v := ev.Scope.Lookup(strings.TrimPrefix(key, "this."))
		if value.IsFunc(v) {
			v, err = value.Call(v)
			if err != nil {
				return nil, false, errors.New("R002").WithDetail("{{" + inner + "}}").Wrap(err)
			}
		}
		return v, true, nil
	}

	if m := callRe.FindStringSubmatch(inner); m != nil {
		fn := ev.Scope.Lookup(strings.TrimPrefix(m[1], "this."))
		if !value.IsFunc(fn) {
			return nil, true, nil
		}
		var args []any
		if strings.TrimSpace(m[2]) != "" {
			for _, a := range strings.Split(m[2], ",") {
				args = append(args, h.literal(ev, a))
			}
		}
		v, err := value.Call(fn, args...)
		if err != nil {
			return nil, false, errors.New("R002").WithDetail("{{" + inner + "}}").Wrap(err)
		}
		return v, true, nil
	}

	if i := defaultSplit(inner); i >= 0 && !logic {
		v := ev.Scope.Lookup(strings.TrimPrefix(strings.TrimSpace(inner[:i]), "this."))
		if value.Truthy(v) {
			return v, true, nil
		}
		return h.literal(ev, inner[i+1:]), true, nil
	}

	if q := strings.IndexByte(inner, '?'); (q >= 0 && strings.IndexByte(inner[q:], ':') >= 0) || logic {
		v, err := expr.Eval(inner, ev.Scope)
		if err != nil {
			return nil, false, errors.New("R004").WithDetail("{{" + inner + "}}").Wrap(err)
		}
		return v, true, nil
	}

	return nil, false, nil
}

// literal reads a quoted string, number or boolean, and otherwise
// resolves s as a path.
func (h *TextHandler) literal(ev *Event, s string) any {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	if numberRe.MatchString(s) {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return ev.Scope.Lookup(strings.TrimPrefix(s, "this."))
}

// defaultSplit returns the index of the last '|' that is not part of '||',
// or -1.
func defaultSplit(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != '|' {
			continue
		}
		if (i > 0 && s[i-1] == '|') || (i+1 < len(s) && s[i+1] == '|') {
			continue
		}
		return i
	}
	return -1
}
