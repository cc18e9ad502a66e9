package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/emtpl"
	"github.com/vango-dev/emtpl/internal/errors"
	"github.com/vango-dev/emtpl/pkg/vdom"
)

// project writes an emtpl.json with a views directory and a snapshot
// database path into a temp dir, plus the given files.
func project(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files["emtpl.json"] = `{"templates": {"dir": "views"}, "store": {"path": "snap.db"}}`
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func run(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", dir}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

const listMarkup = `<ul class="l"><li em:for="let it in items">{{it}}</li></ul>`

func TestParseCommand(t *testing.T) {
	dir := project(t, map[string]string{"list.html": listMarkup})
	file := filepath.Join(dir, "list.html")

	out, _, err := run(t, dir, "parse", "--format", "markup", file)
	if err != nil {
		t.Fatal(err)
	}
	if out != listMarkup+"\n" {
		t.Errorf("markup = %q, want %q", out, listMarkup)
	}

	out, _, err = run(t, dir, "parse", file)
	if err != nil {
		t.Fatal(err)
	}
	var snap vdom.Snapshot
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if snap.Children[0].Tag != "ul" {
		t.Errorf("Tag = %q, want ul", snap.Children[0].Tag)
	}

	out, _, err = run(t, dir, "parse", "--format", "yaml", file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "tag: ul") {
		t.Errorf("yaml output missing tag: ul\n%s", out)
	}
}

func TestParseCommandErrors(t *testing.T) {
	dir := project(t, map[string]string{"bad.html": "<ul></li>", "ok.html": "<p/>"})

	_, _, err := run(t, dir, "parse", filepath.Join(dir, "bad.html"))
	if errors.CodeOf(err) != "P005" {
		t.Errorf("CodeOf = %q, want P005", errors.CodeOf(err))
	}

	_, _, err = run(t, dir, "parse", "--format", "xml", filepath.Join(dir, "ok.html"))
	if errors.CodeOf(err) != "X001" {
		t.Errorf("unknown format: CodeOf = %q, want X001", errors.CodeOf(err))
	}

	_, _, err = run(t, dir, "parse", filepath.Join(dir, "missing.html"))
	if errors.CodeOf(err) != "X001" {
		t.Errorf("CodeOf = %q, want X001", errors.CodeOf(err))
	}
}

func TestRenderCommand(t *testing.T) {
	dir := project(t, map[string]string{
		"list.html":       listMarkup,
		"views/card.html": `<div>{{title}}</div>`,
		"state.yaml":      "items: [a, b]\ntitle: Hi\n",
		"state.json":      `{"items": ["x"], "title": "Yo"}`,
		"bad.yaml":        "- not\n- a map\n",
	})
	file := filepath.Join(dir, "list.html")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"yaml state", []string{"render", file, "--state", filepath.Join(dir, "state.yaml")}, `<ul class="l"><li>a</li><li>b</li></ul>` + "\n"},
		{"json state", []string{"render", file, "--state", filepath.Join(dir, "state.json")}, `<ul class="l"><li>x</li></ul>` + "\n"},
		{"no state", []string{"render", file}, `<ul class="l"></ul>` + "\n"},
		{"named template", []string{"render", "--template", "card", "--state", filepath.Join(dir, "state.yaml")}, "<div>Hi</div>\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, dir, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}

	errTests := []struct {
		name string
		args []string
		code string
	}{
		{"file and template", []string{"render", file, "--template", "card"}, "X001"},
		{"neither", []string{"render"}, "X001"},
		{"bad state", []string{"render", file, "--state", filepath.Join(dir, "bad.yaml")}, "X001"},
		{"missing template", []string{"render", "--template", "nope"}, "S001"},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, dir, tt.args...)
			if errors.CodeOf(err) != tt.code {
				t.Errorf("CodeOf(%v) = %q, want %q", err, errors.CodeOf(err), tt.code)
			}
		})
	}
}

func TestRenderCommandSnapshot(t *testing.T) {
	dir := project(t, map[string]string{
		"list.html": listMarkup,
		"a.yaml":    "items: [a, b]\n",
		"b.yaml":    "items: [a]\n",
	})
	file := filepath.Join(dir, "list.html")

	_, errOut, err := run(t, dir, "render", file, "--state", filepath.Join(dir, "a.yaml"), "--snapshot", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(errOut, "saved snapshot list (rev 1)") {
		t.Errorf("stderr = %q", errOut)
	}

	out, _, err := run(t, dir, "render", file, "--state", filepath.Join(dir, "b.yaml"), "--snapshot", "list", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var snap vdom.Snapshot
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	ul := snap.Children[0]
	if ul.Status != "NORMAL" || len(ul.DeleteElements) != 1 {
		t.Errorf("ul = %s with %d deletions, want NORMAL with 1", ul.Status, len(ul.DeleteElements))
	}
	if _, err := os.Stat(filepath.Join(dir, "snap.db")); err != nil {
		t.Errorf("snapshot database not created: %v", err)
	}
}

func TestDiffCommand(t *testing.T) {
	dir := project(t, map[string]string{
		"p.html":    `<p class="{{c}}">{{t}}</p><i if="{{show}}">x</i><b>new</b>`,
		"old.yaml":  "c: a\nt: one\nshow: true\n",
		"new.yaml":  "c: b\nt: two\nshow: false\n",
		"same.yaml": "c: a\nt: one\nshow: true\n",
	})
	file := filepath.Join(dir, "p.html")

	out, _, err := run(t, dir, "diff", file, "--old", filepath.Join(dir, "old.yaml"), "--new", filepath.Join(dir, "new.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"STATUS", `UPDATE  0`, `class="b"`, "TEXT", `"two"`, "DELETE  1"} {
		if !strings.Contains(out, want) {
			t.Errorf("diff output missing %q:\n%s", want, out)
		}
	}

	out, _, err = run(t, dir, "diff", file, "--old", filepath.Join(dir, "old.yaml"), "--new", filepath.Join(dir, "same.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if out != "no changes\n" {
		t.Errorf("output = %q, want no changes", out)
	}

	out, _, err = run(t, dir, "diff", file, "--old", filepath.Join(dir, "old.yaml"), "--new", filepath.Join(dir, "new.yaml"), "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var changes []Change
	if err := json.Unmarshal([]byte(out), &changes); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(changes) == 0 || changes[0].Status != "UPDATE" || changes[0].Set["class"] != "b" {
		t.Errorf("changes = %+v", changes)
	}

	if _, _, err := run(t, dir, "diff", file); errors.CodeOf(err) != "X001" {
		t.Errorf("missing --new: CodeOf = %q, want X001", errors.CodeOf(err))
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	if _, _, err := run(t, dir, "init", dir); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"emtpl.json", "state.yaml", filepath.Join("templates", "index.html")} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("init did not create %s: %v", name, err)
		}
	}

	_, _, err := run(t, dir, "init", dir)
	if errors.CodeOf(err) != "X001" {
		t.Errorf("second init CodeOf(%v) = %q, want X001", err, errors.CodeOf(err))
	}
	if _, _, err := run(t, dir, "init", "--force", dir); err != nil {
		t.Errorf("init --force: %v", err)
	}

	out, _, err := run(t, dir, "render", "-t", "index", "--state", filepath.Join(dir, "state.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Hello, World", "<li>first</li>", "<li>second</li>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Nothing here") {
		t.Errorf("output rendered hidden paragraph:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	dir := project(t, map[string]string{})
	out, _, err := run(t, dir, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if out != emtpl.Version+"\n" {
		t.Errorf("version = %q, want %q", out, emtpl.Version)
	}
}

func TestPathString(t *testing.T) {
	if got := pathString([]int{0, 2, 1}); got != "0.2.1" {
		t.Errorf("pathString = %q, want 0.2.1", got)
	}
	if got := pathString(nil); got != "" {
		t.Errorf("pathString(nil) = %q, want empty", got)
	}
}
