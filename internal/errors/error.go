package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Category represents the type of error.
type Category string

const (
	CategoryParse  Category = "parse"
	CategoryConfig Category = "config"
	CategoryRender Category = "render"
	CategorySource Category = "source"
	CategoryStore  Category = "store"
	CategoryCLI    Category = "cli"
)

// Location is a position inside a markup string.
type Location struct {
	Offset int
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	return fmt.Sprintf("line %d, column %d", l.Line, l.Column)
}

// TemplateError is a structured error with a registry code and optional markup location.
type TemplateError struct {
	// Code is a unique error identifier (e.g., "P001").
	Code string

	// Category is the error type (parse, config, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the markup position where the error occurred.
	Location *Location

	// Snippet is the markup line containing Location.
	Snippet string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *TemplateError) Error() string {
	var b strings.Builder
	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Location != nil {
		b.WriteString(" (")
		b.WriteString(e.Location.String())
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *TemplateError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a TemplateError with the same code.
func (e *TemplateError) Is(target error) bool {
	t, ok := target.(*TemplateError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithLocation records the position of offset inside markup.
func (e *TemplateError) WithLocation(markup string, offset int) *TemplateError {
	if offset < 0 {
		offset = 0
	}
	if offset > len(markup) {
		offset = len(markup)
	}
	line := 1 + strings.Count(markup[:offset], "\n")
	lineStart := strings.LastIndexByte(markup[:offset], '\n') + 1
	lineEnd := strings.IndexByte(markup[offset:], '\n')
	if lineEnd < 0 {
		lineEnd = len(markup)
	} else {
		lineEnd += offset
	}
	e.Location = &Location{Offset: offset, Line: line, Column: offset - lineStart + 1}
	e.Snippet = strings.TrimRight(markup[lineStart:lineEnd], "\r")
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *TemplateError) WithSuggestion(s string) *TemplateError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *TemplateError) WithDetail(d string) *TemplateError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *TemplateError) Wrap(err error) *TemplateError {
	e.Wrapped = err
	return e
}

// New creates a TemplateError from a registered error code.
func New(code string) *TemplateError {
	template, ok := registry[code]
	if !ok {
		return &TemplateError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &TemplateError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
	}
}

// Newf creates a new TemplateError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *TemplateError {
	return &TemplateError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a TemplateError.
func FromError(err error, code string) *TemplateError {
	if err == nil {
		return nil
	}
	var te *TemplateError
	if stderrors.As(err, &te) {
		return te
	}
	return New(code).Wrap(err)
}

// CategoryOf returns the category of the first TemplateError in err's chain.
func CategoryOf(err error) Category {
	var te *TemplateError
	if stderrors.As(err, &te) {
		return te.Category
	}
	return ""
}

// CodeOf returns the code of the first TemplateError in err's chain.
func CodeOf(err error) string {
	var te *TemplateError
	if stderrors.As(err, &te) {
		return te.Code
	}
	return ""
}

// IsParse reports whether err is a markup parse error.
func IsParse(err error) bool { return CategoryOf(err) == CategoryParse }

// IsConfiguration reports whether err is a directive or configuration error.
func IsConfiguration(err error) bool { return CategoryOf(err) == CategoryConfig }
