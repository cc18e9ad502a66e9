package source

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vango-dev/emtpl/internal/errors"
)

// Dir loads templates from files below a directory. Template "a/b" is
// the file a/b plus the extension.
type Dir struct {
	root string
	ext  string
}

// NewDir creates a directory source. ext includes the leading dot.
func NewDir(root, ext string) *Dir {
	return &Dir{root: root, ext: ext}
}

// Load implements Source.
func (d *Dir) Load(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	n, err := cleanName(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(d.root, filepath.FromSlash(n)+d.ext))
	if err != nil {
		if os.IsNotExist(err) {
			return "", notFound(name)
		}
		return "", errors.New("S002").Wrap(err)
	}
	return string(data), nil
}

// List implements Source.
func (d *Dir) List(ctx context.Context) ([]string, error) {
	var names []string
	err := filepath.WalkDir(d.root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(p, d.ext) {
			return nil
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		names = append(names, strings.TrimSuffix(filepath.ToSlash(rel), d.ext))
		return nil
	})
	if err != nil {
		return nil, errors.New("S002").Wrap(err)
	}
	sort.Strings(names)
	return names, nil
}
