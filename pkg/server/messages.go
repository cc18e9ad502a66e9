package server

import (
	stderrors "errors"

	"github.com/vango-dev/emtpl/internal/errors"
	"github.com/vango-dev/emtpl/pkg/vdom"
)

// RenderRequest asks for one render. Exactly one of Template and Markup
// must be set.
type RenderRequest struct {
	// Template names a template of the engine's source.
	Template string `json:"template,omitempty" msgpack:"template,omitempty"`

	// Markup is inline template markup.
	Markup string `json:"markup,omitempty" msgpack:"markup,omitempty"`

	// State is the component the template renders against.
	State map[string]any `json:"state,omitempty" msgpack:"state,omitempty"`

	// Snapshot names a stored render to diff against. The result replaces
	// it. HTTP only.
	Snapshot string `json:"snapshot,omitempty" msgpack:"snapshot,omitempty"`

	// Reset drops the live session's previous render first.
	Reset bool `json:"reset,omitempty" msgpack:"reset,omitempty"`
}

// RenderResponse is the result of a render.
type RenderResponse struct {
	// Seq numbers the replies of a live session, starting at 1.
	Seq uint64 `json:"seq,omitempty" msgpack:"seq,omitempty"`

	HTML string         `json:"html,omitempty" msgpack:"html,omitempty"`
	Tree *vdom.Snapshot `json:"tree,omitempty" msgpack:"tree,omitempty"`

	// Changed reports whether anything differs from the previous render.
	Changed bool `json:"changed" msgpack:"changed"`

	// Rev is the store revision when the render was saved.
	Rev uint64 `json:"rev,omitempty" msgpack:"rev,omitempty"`

	Error *ErrorBody `json:"error,omitempty" msgpack:"error,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code       string `json:"code,omitempty" msgpack:"code,omitempty"`
	Category   string `json:"category,omitempty" msgpack:"category,omitempty"`
	Message    string `json:"message" msgpack:"message"`
	Detail     string `json:"detail,omitempty" msgpack:"detail,omitempty"`
	Suggestion string `json:"suggestion,omitempty" msgpack:"suggestion,omitempty"`
	Line       int    `json:"line,omitempty" msgpack:"line,omitempty"`
	Column     int    `json:"column,omitempty" msgpack:"column,omitempty"`
}

func errorBody(err error) *ErrorBody {
	var te *errors.TemplateError
	if !stderrors.As(err, &te) {
		return &ErrorBody{Message: err.Error()}
	}
	body := &ErrorBody{
		Code:       te.Code,
		Category:   string(te.Category),
		Message:    te.Message,
		Detail:     te.Detail,
		Suggestion: te.Suggestion,
	}
	if te.Location != nil {
		body.Line = te.Location.Line
		body.Column = te.Location.Column
	}
	return body
}
