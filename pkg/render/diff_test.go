package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/emtpl/pkg/vdom"
)

// rerender renders oldMarkup with oldComp, then newMarkup against it.
func rerender(t *testing.T, r *Renderer, oldMarkup string, oldComp any, newMarkup string, newComp any) (prev, root *vdom.Element) {
	t.Helper()
	prev, err := r.Render(parse(t, oldMarkup), nil, oldComp, nil)
	if err != nil {
		t.Fatalf("first Render error = %v", err)
	}
	root, err = r.Render(parse(t, newMarkup), prev, newComp, nil)
	if err != nil {
		t.Fatalf("second Render error = %v", err)
	}
	return prev, root
}

func TestDiffAttributeUpdate(t *testing.T) {
	const markup = `<button data-value="{{demoVersion}}" data-tag="{{obj}}">demo{{time}}</button>`
	obj := map[string]any{"v": 1}
	_, root := rerender(t, newRenderer(),
		markup, map[string]any{"demoVersion": 1, "time": "1700", "obj": obj},
		markup, map[string]any{"demoVersion": 2, "time": "1700_2", "obj": obj})

	button := root.Children[0]
	if button.Status != vdom.StatusUpdate {
		t.Errorf("Status = %v, want UPDATE", button.Status)
	}
	if diff := cmp.Diff(map[string]any{"data-value": 2}, button.ChangeAttrs); diff != "" {
		t.Errorf("ChangeAttrs mismatch (-want +got):\n%s", diff)
	}
	if got := button.Children[0].Status; got != vdom.StatusNormal {
		t.Errorf("text Status = %v, want NORMAL", got)
	}
}

func TestDiffIf(t *testing.T) {
	tests := []struct {
		name     string
		markup   string
		old, new bool
		want     vdom.Status
	}{
		{"false to true", `<button if="{{visible}}" event='point' zip="7z" batch="region" class="app" >demo</button>`, false, true, vdom.StatusAppend},
		{"true to false", `<button if="{{visible}}" batch="region" class="app" event='point'>demo</button>`, true, false, vdom.StatusDelete},
		{"true to true", `<button if="{{visible}}" class="app">demo</button>`, true, true, vdom.StatusNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, root := rerender(t, newRenderer(),
				tt.markup, map[string]any{"visible": tt.old},
				tt.markup, map[string]any{"visible": tt.new})
			if got := root.Children[0].Status; got != tt.want {
				t.Errorf("Status = %v, want %v", got, tt.want)
			}
			if len(root.DeleteElements) != 0 {
				t.Errorf("DeleteElements = %d, want 0", len(root.DeleteElements))
			}
		})
	}
}

func TestDiffInsertNode(t *testing.T) {
	const (
		code1 = `<div data-id='haha'><label em:for="let item in this.listData" key="doForR_{{item.key}}">{{item.title}}</label></div>`
		code2 = `<div data-id='haha'><button et:a="testA" data-num="2332" data-tag="app map">Hello</button><label em:for="let item in this.listData" data-value="{{item.value}}" key="doForR_{{item.key}}">{{item.title}}</label></div>`
	)
	data := map[string]any{
		"testA": func() {},
		"listData": []any{
			map[string]any{"title": "AA", "value": "11"},
			map[string]any{"title": "BB", "value": "22"},
			map[string]any{"title": "BB", "value": "33"},
		},
	}
	_, root := rerender(t, newRenderer(), code1, data, code2, data)

	div := root.Children[0]
	if div.Status != vdom.StatusNormal {
		t.Errorf("div Status = %v, want NORMAL", div.Status)
	}
	if got := div.Children[0]; got.TagName != "button" || got.Status != vdom.StatusAppend {
		t.Errorf("Children[0] = <%s> %v, want <button> APPEND", got.TagName, got.Status)
	}
	for i, want := range []string{"11", "22", "33"} {
		label := div.Children[i+1]
		if label.Status != vdom.StatusUpdate {
			t.Errorf("label %d Status = %v, want UPDATE", i, label.Status)
		}
		if diff := cmp.Diff(map[string]any{"data-value": want}, label.ChangeAttrs); diff != "" {
			t.Errorf("label %d ChangeAttrs mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestDiffDelete(t *testing.T) {
	_, root := rerender(t, newRenderer(),
		`<button>Hello world</button><i class='demo'/><label>DEMO</label>`, nil,
		`<button>Hello world</button><label>DEMO</label>`, nil)

	if len(root.DeleteElements) != 1 {
		t.Fatalf("len(DeleteElements) = %d, want 1", len(root.DeleteElements))
	}
	del := root.DeleteElements[0]
	if del.TagName != "i" || del.Status != vdom.StatusDelete {
		t.Errorf("DeleteElements[0] = <%s> %v, want <i> DELETE", del.TagName, del.Status)
	}
	for _, n := range root.Children {
		if n.Status != vdom.StatusNormal {
			t.Errorf("<%s> Status = %v, want NORMAL", n.TagName, n.Status)
		}
	}
}

func TestDiffObjectAttr(t *testing.T) {
	const markup = `<button data-value="{{info}}">Hello world</button><label>DEMO</label>`
	_, root := rerender(t, newRenderer(),
		markup, map[string]any{"info": map[string]any{"title": "App"}},
		markup, map[string]any{"info": map[string]any{"title": "App1"}})

	v, ok := root.Children[0].ChangeAttrs["data-value"].(map[string]any)
	if !ok {
		t.Fatalf("ChangeAttrs[data-value] = %T, want map", root.Children[0].ChangeAttrs["data-value"])
	}
	if v["title"] != "App1" {
		t.Errorf("title = %v, want App1", v["title"])
	}
}

func TestDiffReorder(t *testing.T) {
	_, root := rerender(t, newRenderer(),
		`<button data-value="{{info}}">Hello world</button><label test='l'>DEMO</label><i for="demoApp">APP</i>`,
		map[string]any{"info": map[string]any{"title": "App"}},
		`<label>DEMO</label><i for="demoApp">APP</i><button data-value="{{info}}">Hello world</button>`,
		map[string]any{"info": map[string]any{"title": "App1"}})

	want := []vdom.Status{vdom.StatusUpdate, vdom.StatusNormal, vdom.StatusMoveUpdate}
	for i, s := range want {
		if got := root.Children[i].Status; got != s {
			t.Errorf("Children[%d] Status = %v, want %v", i, got, s)
		}
	}
	if diff := cmp.Diff([]string{"test"}, root.Children[0].DeleteAttrs); diff != "" {
		t.Errorf("DeleteAttrs mismatch (-want +got):\n%s", diff)
	}
}

const keyedList = `<ul class="list"><forEach data="list" item="it"><li key="x" class="{{it.cls}}">{{it.name}}</li></forEach></ul>`

func items(classes ...string) map[string]any {
	list := make([]any, len(classes))
	for i, c := range classes {
		list[i] = map[string]any{"cls": c, "name": "n"}
	}
	return map[string]any{"list": list}
}

func TestDiffKeyedUpdate(t *testing.T) {
	_, root := rerender(t, newRenderer(),
		keyedList, items("a", "b", "c"),
		keyedList, items("a", "b2", "c"))

	ul := root.Children[0]
	for i, want := range []vdom.Status{vdom.StatusNormal, vdom.StatusUpdate, vdom.StatusNormal} {
		if got := ul.Children[i].Status; got != want {
			t.Errorf("li %d Status = %v, want %v", i, got, want)
		}
	}
	if diff := cmp.Diff(map[string]any{"class": "b2"}, ul.Children[1].ChangeAttrs); diff != "" {
		t.Errorf("ChangeAttrs mismatch (-want +got):\n%s", diff)
	}
	if ul.Children[0].ChangeAttrs != nil || ul.Children[0].DeleteAttrs != nil {
		t.Error("unchanged node should carry no attribute changes")
	}
}

func TestDiffKeyedRemove(t *testing.T) {
	_, root := rerender(t, newRenderer(),
		keyedList, items("a", "b", "c", "d"),
		keyedList, items("a", "b", "c"))

	ul := root.Children[0]
	if len(ul.DeleteElements) != 1 {
		t.Fatalf("len(DeleteElements) = %d, want 1", len(ul.DeleteElements))
	}
	del := ul.DeleteElements[0]
	if del.Key() != "x3" || del.Status != vdom.StatusDelete {
		t.Errorf("DeleteElements[0] key=%q status=%v, want x3 DELETE", del.Key(), del.Status)
	}
}

func TestDiffKeyedMove(t *testing.T) {
	const markup = `<ol><li em:for="let it in list" key="{{it.id}}">{{it.id}}</li></ol>`
	ids := func(ids ...string) map[string]any {
		list := make([]any, len(ids))
		for i, id := range ids {
			list[i] = map[string]any{"id": id}
		}
		return map[string]any{"list": list}
	}
	_, root := rerender(t, newRenderer(), markup, ids("a", "b", "c"), markup, ids("c", "a", "b"))

	ol := root.Children[0]
	want := []vdom.Status{vdom.StatusNormal, vdom.StatusMove, vdom.StatusMove}
	for i, s := range want {
		if got := ol.Children[i].Status; got != s {
			t.Errorf("li %s Status = %v, want %v", ol.Children[i].Key(), got, s)
		}
	}
}

func TestDiffKeyOnOneSide(t *testing.T) {
	_, root := rerender(t, newRenderer(),
		`<p key="a">x</p>`, nil,
		`<p>x</p>`, nil)

	if got := root.Children[0].Status; got != vdom.StatusAppend {
		t.Errorf("Status = %v, want APPEND", got)
	}
	if len(root.DeleteElements) != 1 {
		t.Errorf("len(DeleteElements) = %d, want 1", len(root.DeleteElements))
	}
}

func TestDiffTextNearMiss(t *testing.T) {
	const markup = `<p>{{msg}}</p>`
	old, cur := map[string]any{"msg": "hello"}, map[string]any{"msg": "goodbye"}

	_, root := rerender(t, newRenderer(), markup, old, markup, cur)
	if got := root.Children[0].Children[0].Status; got != vdom.StatusNormal {
		t.Errorf("default threshold: text Status = %v, want NORMAL", got)
	}

	strict := New(Config{Logger: quiet(), SimilarityThreshold: 0.95})
	_, root = rerender(t, strict, markup, old, markup, cur)
	p := root.Children[0]
	if got := p.Children[0].Status; got != vdom.StatusAppend {
		t.Errorf("strict threshold: text Status = %v, want APPEND", got)
	}
	if len(p.DeleteElements) != 1 {
		t.Errorf("strict threshold: len(DeleteElements) = %d, want 1", len(p.DeleteElements))
	}
}

func TestDiffTextChanged(t *testing.T) {
	const markup = `<p>{{title}}</p>`

	_, root := rerender(t, newRenderer(), markup, map[string]any{"title": "a"}, markup, map[string]any{"title": "b"})
	p := root.Children[0]
	text := p.Children[0]
	if p.Status != vdom.StatusNormal || text.Status != vdom.StatusNormal {
		t.Errorf("Status = %v/%v, want NORMAL/NORMAL", p.Status, text.Status)
	}
	if !text.TextChanged {
		t.Error("TextChanged = false for a changed binding")
	}
	if !vdom.HasChange(root) {
		t.Error("HasChange() = false when only text changed")
	}
	if got := HTML(root); got != "<p>b</p>" {
		t.Errorf("HTML = %q, want <p>b</p>", got)
	}

	_, root = rerender(t, newRenderer(), markup, map[string]any{"title": "a"}, markup, map[string]any{"title": "a"})
	if root.Children[0].Children[0].TextChanged {
		t.Error("TextChanged = true for identical text")
	}
	if vdom.HasChange(root) {
		t.Error("HasChange() = true for an identical render")
	}
}

func TestDiffRefPropagation(t *testing.T) {
	r := newRenderer()
	tree := parse(t, `<div><span>a</span></div>`)

	prev, err := r.Render(tree, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	prev.Children[0].Ref = "div#1"

	for i := 0; i < 2; i++ {
		root, err := r.Render(tree, prev, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if root.Children[0].Ref != "div#1" {
			t.Errorf("render %d: Ref = %v, want div#1", i, root.Children[0].Ref)
		}
		if len(root.DeleteElements) != 0 {
			t.Errorf("render %d: DeleteElements = %d, want 0", i, len(root.DeleteElements))
		}
	}
}

func TestDiffComponentBoundaryFromPrevious(t *testing.T) {
	r := newRenderer()
	tree := parse(t, `<div><section>{{title}}</section></div>`)

	prev, err := r.Render(tree, nil, map[string]any{"title": "a"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	prev.Children[0].Children[0].ComponentID = "child-1"

	root, err := r.Render(tree, prev, map[string]any{"title": "b"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	section := root.Children[0].Children[0]
	if section.ComponentID != "child-1" {
		t.Errorf("ComponentID = %q, want child-1", section.ComponentID)
	}
	if got := section.Children[0].InnerHTML; got != "{{title}}" {
		t.Errorf("component children were walked: %q", got)
	}
}

func TestDiffAttrs(t *testing.T) {
	cur := vdom.NewProps(vdom.Prop{Key: "a", Value: 1}, vdom.Prop{Key: "b", Value: "x"}, vdom.Prop{Key: "n", Value: true})
	old := vdom.NewProps(vdom.Prop{Key: "a", Value: 1.0}, vdom.Prop{Key: "b", Value: "y"}, vdom.Prop{Key: "z", Value: 1}, vdom.Prop{Key: "c", Value: 2})

	changes, deletes := diffAttrs(&cur, &old)
	if diff := cmp.Diff(map[string]any{"b": "x", "n": true}, changes); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"c", "z"}, deletes); diff != "" {
		t.Errorf("deletes mismatch (-want +got):\n%s", diff)
	}
}

func TestStructural(t *testing.T) {
	a := parse(t, `<div><p>x</p><i>y</i></div>`).Children[0]
	b := parse(t, `<div><p>other</p><i>z</i></div>`).Children[0]
	c := parse(t, `<div><i>y</i><p>x</p></div>`).Children[0]

	if structural(a, b) != 1 {
		t.Error("same child tags should score 1")
	}
	if structural(a, c) != 0 {
		t.Error("reordered child tags should score 0")
	}
}
