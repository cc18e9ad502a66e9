package vdom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		s    Status
		want string
	}{
		{StatusAppend, "APPEND"},
		{StatusDelete, "DELETE"},
		{StatusNormal, "NORMAL"},
		{StatusUpdate, "UPDATE"},
		{StatusMove, "MOVE"},
		{StatusMoveUpdate, "MOVEUPDATE"},
		{Status(99), "Status(99)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestStatusText(t *testing.T) {
	b, err := StatusMoveUpdate.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	var s Status
	if err := s.UnmarshalText(b); err != nil {
		t.Fatal(err)
	}
	if s != StatusMoveUpdate {
		t.Errorf("UnmarshalText = %v, want MOVEUPDATE", s)
	}
	if err := s.UnmarshalText([]byte("GONE")); err == nil {
		t.Error("UnmarshalText(GONE) should fail")
	}
	if !StatusUpdate.Changed() || StatusMove.Changed() {
		t.Error("Changed() classification wrong")
	}
}

func TestPropsOrder(t *testing.T) {
	var p Props
	p.Set("b", 1)
	p.Set("a", 2)
	p.Set("c", 3)
	p.Set("b", 4)

	if diff := cmp.Diff([]string{"b", "a", "c"}, p.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	if v, _ := p.Get("b"); v != 4 {
		t.Errorf("Get(b) = %v, want 4", v)
	}

	p.Delete("a")
	p.Delete("missing")
	if diff := cmp.Diff([]string{"b", "c"}, p.Keys()); diff != "" {
		t.Errorf("Keys() after Delete mismatch (-want +got):\n%s", diff)
	}

	p.Rename("b", "z")
	if diff := cmp.Diff([]Prop{{"z", 4}, {"c", 3}}, p.All()); diff != "" {
		t.Errorf("All() after Rename mismatch (-want +got):\n%s", diff)
	}

	p.Rename("z", "c")
	if diff := cmp.Diff([]Prop{{"c", 4}}, p.All()); diff != "" {
		t.Errorf("All() after Rename onto existing key mismatch (-want +got):\n%s", diff)
	}
}

func TestPropsCloneIsIndependent(t *testing.T) {
	p := NewProps(Prop{"a", 1}, Prop{"b", 2})
	c := p.Clone()
	c.Set("a", 10)
	c.Delete("b")
	c.Set("d", 4)

	if v, _ := p.Get("a"); v != 1 {
		t.Errorf("original a = %v, want 1", v)
	}
	if p.Len() != 2 || !p.Has("b") || p.Has("d") {
		t.Errorf("original mutated: %v", p.All())
	}
}

func TestElementKey(t *testing.T) {
	tests := []struct {
		name string
		el   *Element
		want string
	}{
		{"no key", NewElement("li"), ""},
		{"string key", NewElement("li", Prop{AttrKey, "a1"}), "a1"},
		{"numeric key", NewElement("li", Prop{AttrKey, 7}), "7"},
		{"empty key", NewElement("li", Prop{AttrKey, ""}), ""},
		{"nil key", NewElement("li", Prop{AttrKey, nil}), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.el.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsBlank(t *testing.T) {
	if !NewText(" \n\t").IsBlank() {
		t.Error("whitespace text should be blank")
	}
	if NewText(" x ").IsBlank() {
		t.Error("non-empty text should not be blank")
	}
	if NewElement("div").IsBlank() {
		t.Error("elements are never blank")
	}
}

func TestClone(t *testing.T) {
	root := NewElement("ul", Prop{"class", "list"})
	li := NewElement("li", Prop{AttrKey, "1"})
	li.Data = map[string]any{"item": "x"}
	li.Events = map[string]any{"click": func() {}}
	root.AppendChild(li)
	li.AppendChild(NewText("hello"))
	root.DeleteElements = []*Element{NewElement("b")}

	c := root.Clone()

	if c == root || c.Children[0] == li {
		t.Fatal("Clone() shares nodes")
	}
	if c.DeleteElements != nil {
		t.Error("Clone() carried DeleteElements")
	}
	c.Children[0].Props.Set("class", "changed")
	c.Children[0].Data["item"] = "y"
	c.Children[0].Path[0] = 9

	if li.Props.Has("class") {
		t.Error("Clone() shares props")
	}
	if li.Data["item"] != "x" {
		t.Error("Clone() shares data map")
	}
	if li.Path[0] != 0 {
		t.Error("Clone() shares path")
	}
	if c.Children[0].Children[0].InnerHTML != "hello" {
		t.Error("Clone() lost grandchildren")
	}
	if (*Element)(nil).Clone() != nil {
		t.Error("nil Clone() should be nil")
	}
}

func TestUpdatePaths(t *testing.T) {
	root := NewElement(TagRoot)
	a := NewElement("a")
	b := NewElement("b")
	root.AppendChild(a)
	root.AppendChild(b)
	b.AppendChild(NewText("x"))

	if diff := cmp.Diff([]int{1, 0}, b.Children[0].Path); diff != "" {
		t.Errorf("grandchild path mismatch (-want +got):\n%s", diff)
	}

	root.Path = []int{3}
	ResetPaths(root)
	if diff := cmp.Diff([]int{3, 1, 0}, b.Children[0].Path); diff != "" {
		t.Errorf("path after ResetPaths mismatch (-want +got):\n%s", diff)
	}
	if a.Index() != 0 || b.Index() != 1 || NewElement("x").Index() != -1 {
		t.Error("Index() wrong")
	}
}

func TestWalkSetStatusCount(t *testing.T) {
	root := NewElement("div")
	root.AppendChild(NewElement("p"))
	root.Children[0].AppendChild(NewText("t"))
	root.AppendChild(NewElement("span"))

	if got := Count(root); got != 4 {
		t.Errorf("Count() = %d, want 4", got)
	}

	SetStatus(root.Children[0], StatusDelete)
	if root.Children[0].Children[0].Status != StatusDelete {
		t.Error("SetStatus did not reach descendants")
	}
	if root.Children[1].Status != StatusAppend {
		t.Error("SetStatus leaked to siblings")
	}

	var seen []string
	Walk(root, func(n *Element) bool {
		seen = append(seen, n.TagName)
		return n.TagName != "p"
	})
	if diff := cmp.Diff([]string{"div", "p", "span"}, seen); diff != "" {
		t.Errorf("Walk order mismatch (-want +got):\n%s", diff)
	}
}

func TestCountStatus(t *testing.T) {
	root := NewElement(TagRoot)
	root.AppendChild(NewElement("p"))
	root.Children[0].AppendChild(NewText("t"))
	root.AppendChild(NewElement("span"))
	root.Children[0].Status = StatusUpdate
	root.Children[0].DeleteElements = []*Element{NewElement("a"), NewElement("b")}
	root.Children[1].Status = StatusNormal
	root.Children[1].DeleteElements = []*Element{NewElement("c")}

	want := map[Status]int{StatusUpdate: 1, StatusAppend: 1, StatusNormal: 1}
	if diff := cmp.Diff(want, CountStatus(root)); diff != "" {
		t.Errorf("CountStatus() mismatch (-want +got):\n%s", diff)
	}
	if got := CountDeleted(root); got != 3 {
		t.Errorf("CountDeleted() = %d, want 3", got)
	}
	if got := CountStatus(nil); len(got) != 0 {
		t.Errorf("CountStatus(nil) = %v, want empty", got)
	}
}

func TestIDGenerator(t *testing.T) {
	gen := NewIDGenerator("")
	if got := gen.Next(); got != "v1" {
		t.Errorf("Next() = %q, want v1", got)
	}
	if got := gen.Next(); got != "v2" {
		t.Errorf("Next() = %q, want v2", got)
	}
	if gen.Current() != 2 {
		t.Errorf("Current() = %d, want 2", gen.Current())
	}
	gen.Reset()
	if got := NewIDGenerator("n").Next(); got != "n1" {
		t.Errorf("Next() = %q, want n1", got)
	}
	if gen.Current() != 0 {
		t.Errorf("Current() after Reset = %d, want 0", gen.Current())
	}
}

func TestAssignVirtualIDs(t *testing.T) {
	root := NewElement(TagRoot)
	keep := NewElement("a")
	keep.VirtualID = "old"
	gone := NewElement("b")
	gone.Status = StatusDelete
	gone.AppendChild(NewText("inner"))
	root.AppendChild(keep)
	root.AppendChild(gone)
	root.AppendChild(NewElement("c"))

	AssignVirtualIDs(root, NewIDGenerator("v"))

	if keep.VirtualID != "old" {
		t.Errorf("existing VirtualID replaced: %q", keep.VirtualID)
	}
	if gone.VirtualID != "" || gone.Children[0].VirtualID != "" {
		t.Error("deleted subtree received IDs")
	}
	ids := CollectVirtualIDs(root)
	if len(ids) != 3 {
		t.Errorf("CollectVirtualIDs() = %d ids, want 3", len(ids))
	}
	if FindByVirtualID(root, "old") != keep {
		t.Error("FindByVirtualID(old) did not return the node")
	}
	if FindByVirtualID(root, "nope") != nil {
		t.Error("FindByVirtualID(nope) should be nil")
	}
}
