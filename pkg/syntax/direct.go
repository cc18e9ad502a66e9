package syntax

import (
	"github.com/vango-dev/emtpl/internal/errors"
	"github.com/vango-dev/emtpl/pkg/expr"
	"github.com/vango-dev/emtpl/pkg/value"
	"github.com/vango-dev/emtpl/pkg/vdom"
)

// DirectPrefix marks attributes whose value is a script.
const DirectPrefix = "em:"

// DirectExprHandler evaluates em:name="script" and assigns the result to
// name. em:for is left to list expansion.
type DirectExprHandler struct{}

func (h *DirectExprHandler) TryRender(ev *Event) (Result, error) {
	if !hasPrefixFold(ev.AttrKey, DirectPrefix) || ev.AttrKey == vdom.AttrFor {
		return Result{}, nil
	}
	src := value.ToString(ev.Target)
	v, err := expr.Eval(unwrap(src), ev.Scope)
	if err != nil {
		return Result{}, errors.New("R004").
			WithDetail(ev.AttrKey + `="` + src + `"`).
			Wrap(err)
	}
	ev.Break = true
	return Result{Matched: true, AttrKey: ev.AttrKey[len(DirectPrefix):], Value: v}, nil
}
