package store

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/emtpl/internal/errors"
	"github.com/vango-dev/emtpl/pkg/parser"
	"github.com/vango-dev/emtpl/pkg/vdom"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openTemp(t)
	tree, err := parser.Parse(`<div class="a"><p>hi</p><input value="x"/></div>`)
	if err != nil {
		t.Fatal(err)
	}
	tree.Children[0].VirtualID = "v1"

	rev, err := s.Put("page", tree)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if rev != 1 {
		t.Errorf("rev = %d, want 1", rev)
	}

	got, err := s.Get("page")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(vdom.InnerMarkup(tree), vdom.InnerMarkup(got)); diff != "" {
		t.Errorf("markup mismatch (-want +got):\n%s", diff)
	}
	if got.Children[0].VirtualID != "v1" {
		t.Errorf("VirtualID = %q, want v1", got.Children[0].VirtualID)
	}
	if got.Children[0].Children[1].Path[1] != 1 {
		t.Errorf("Path = %v, want derived paths", got.Children[0].Children[1].Path)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTemp(t)
	got, err := s.Get("nope")
	if err != nil || got != nil {
		t.Errorf("Get(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestRevisionsAndNames(t *testing.T) {
	s := openTemp(t)
	tree, _ := parser.Parse(`<p>x</p>`)
	for _, name := range []string{"b", "a", "b"} {
		if _, err := s.Put(name, tree); err != nil {
			t.Fatal(err)
		}
	}
	rec, err := s.Record("b")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Rev != 3 || rec.Name != "b" {
		t.Errorf("Record = %d %q, want 3 b", rec.Rev, rec.Name)
	}

	names, err := s.Names()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, names); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}

	if err := s.Delete("a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("a"); err != nil {
		t.Errorf("second Delete = %v", err)
	}
	names, _ = s.Names()
	if diff := cmp.Diff([]string{"b"}, names); diff != "" {
		t.Errorf("Names after delete (-want +got):\n%s", diff)
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	tree, _ := parser.Parse(`<span>kept</span>`)
	if _, err := s.Put("x", tree); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.Get("x")
	if err != nil || got == nil {
		t.Fatalf("Get after reopen = %v, %v", got, err)
	}
	if m := vdom.InnerMarkup(got); m != "<span>kept</span>" {
		t.Errorf("Markup = %q", m)
	}
}

func TestOpenFailure(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "x.db"))
	if errors.CodeOf(err) != "S010" {
		t.Errorf("CodeOf = %q, want S010", errors.CodeOf(err))
	}
}
