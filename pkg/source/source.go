// Package source loads template markup by name.
//
// Three backends are provided: a local directory, an in-memory map for
// tests and embedding, and an S3 bucket.
//
//	src := source.NewDir("templates", ".html")
//	markup, err := src.Load(ctx, "card")
package source

import (
	"context"
	"path"
	"strings"

	"github.com/vango-dev/emtpl/internal/config"
	"github.com/vango-dev/emtpl/internal/errors"
)

// Source is the interface for template storage backends.
type Source interface {
	// Load returns the markup of the named template. A missing template
	// is reported with code S001.
	Load(ctx context.Context, name string) (string, error)

	// List returns the names of all templates, sorted.
	List(ctx context.Context) ([]string, error)
}

// cleanName validates a template name. Names are slash-separated and may
// not escape the source root.
func cleanName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" || strings.HasPrefix(n, "/") || strings.Contains(n, "\\") {
		return "", notFound(name)
	}
	n = path.Clean(n)
	if n == "." || n == ".." || strings.HasPrefix(n, "../") {
		return "", notFound(name)
	}
	return n, nil
}

func notFound(name string) error {
	return errors.New("S001").
		WithDetail("template " + name).
		WithSuggestion("Check the template name and the configured template source")
}

// IsNotFound reports whether err is a missing-template error.
func IsNotFound(err error) bool {
	return errors.CodeOf(err) == "S001"
}

// FromConfig returns the S3 source when a bucket is configured and the
// directory source otherwise.
func FromConfig(cfg *config.Config) Source {
	t := cfg.Templates
	if t.Bucket != "" {
		return NewS3(NewS3Client(t.Region), t.Bucket, t.Prefix, t.Extension)
	}
	return NewDir(cfg.TemplatesPath(), t.Extension)
}
