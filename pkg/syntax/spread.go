package syntax

import (
	"strings"

	"github.com/vango-dev/emtpl/pkg/value"
	"github.com/vango-dev/emtpl/pkg/vdom"
)

// spreadExcluded are never copied by a spread.
var spreadExcluded = []string{"id", "children"}

// SpreadHandler merges the fields of the object named by a ...path
// attribute into the node's attributes and drops the placeholder.
type SpreadHandler struct{}

func (h *SpreadHandler) TryRender(ev *Event) (Result, error) {
	if ev.AttrKey != vdom.AttrSpread {
		return Result{}, nil
	}
	path, _ := ev.Target.(string)
	path = strings.TrimPrefix(unwrap(path), "this.")

	if obj := ev.Scope.Lookup(path); obj != nil && value.IsObject(obj) && ev.Node != nil {
		for _, e := range value.Entries(obj) {
			if e.Key == vdom.AttrSpread || contains(spreadExcluded, e.Key) {
				continue
			}
			ev.Node.Props.Set(e.Key, e.Value)
		}
		ev.Break = true
	}
	return Result{Remove: true}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
