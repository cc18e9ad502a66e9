package value

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type address struct {
	City string `json:"city"`
}

type user struct {
	Name    string
	Address *address `json:"address"`
	Tags    []string
	private int
}

func (u *user) Greeting() string { return "hi " + u.Name }

func TestGet(t *testing.T) {
	u := &user{Name: "ann", Address: &address{City: "Oslo"}, Tags: []string{"a", "b"}}
	state := map[string]any{
		"title": "Hello",
		"user":  u,
		"list":  []any{map[string]any{"id": 1}, map[string]any{"id": 2}},
		"nil":   nil,
	}

	tests := []struct {
		path string
		want any
	}{
		{"title", "Hello"},
		{"user.name", "ann"},
		{"user.Name", "ann"},
		{"user.address.city", "Oslo"},
		{"user.tags.1", "b"},
		{"user.tags.length", 2},
		{"list.1.id", 2},
		{"title.length", 5},
		{"missing", nil},
		{"user.missing", nil},
		{"list.9", nil},
		{"nil", nil},
		{"user.private", nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := Get(state, tt.path)
			if !Equal(got, tt.want) && !(got == nil && tt.want == nil) {
				t.Errorf("Get(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestLookupEmptyPath(t *testing.T) {
	obj := map[string]any{"a": 1}
	got, ok := Lookup(obj, "")
	if !ok || !Equal(got, obj) {
		t.Errorf("Lookup(obj, \"\") = %v, %v", got, ok)
	}
	if _, ok := Lookup(nil, "a"); ok {
		t.Error("Lookup(nil) should not resolve")
	}
}

func TestGetMethod(t *testing.T) {
	u := &user{Name: "bob"}
	fn := Get(map[string]any{"u": u}, "u.greeting")
	if !IsFunc(fn) {
		t.Fatalf("Get(u.greeting) = %T, want func", fn)
	}
	got, err := Call(fn)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hi bob" {
		t.Errorf("Call() = %v, want %q", got, "hi bob")
	}
}

func TestSet(t *testing.T) {
	state := map[string]any{}
	if err := Set(state, "a.b.c", 3); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := Get(state, "a.b.c"); got != 3 {
		t.Errorf("Get(a.b.c) = %v, want 3", got)
	}

	u := &user{Address: &address{}}
	if err := Set(u, "address.city", "Rome"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if u.Address.City != "Rome" {
		t.Errorf("City = %q, want Rome", u.Address.City)
	}

	if err := Set(user{}, "name", "x"); err == nil {
		t.Error("Set on non-pointer struct should fail")
	}
	if err := Set(state, "", 1); err == nil {
		t.Error("Set with empty path should fail")
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{0, false},
		{0.0, false},
		{math.NaN(), false},
		{-1, true},
		{"", false},
		{"false", true},
		{"0", true},
		{[]int{}, true},
		{map[string]any{}, true},
		{(*user)(nil), false},
		{struct{}{}, true},
	}
	for _, tt := range tests {
		if got := Truthy(tt.v); got != tt.want {
			t.Errorf("Truthy(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestToString(t *testing.T) {
	tests := []struct {
		v    any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{true, "true"},
		{42, "42"},
		{int64(-7), "-7"},
		{uint8(9), "9"},
		{2.5, "2.5"},
		{3.0, "3"},
		{1e21, "1e+21"},
		{math.Inf(1), "Infinity"},
		{[]any{1, "a", nil}, "1,a,"},
		{map[string]any{}, "[object Object]"},
		{errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		if got := ToString(tt.v); got != tt.want {
			t.Errorf("ToString(%#v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		v      any
		want   float64
		wantOK bool
	}{
		{3, 3, true},
		{"4.5", 4.5, true},
		{" 12 ", 12, true},
		{"", 0, true},
		{true, 1, true},
		{false, 0, true},
		{"abc", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := ToNumber(tt.v)
		if ok != tt.wantOK {
			t.Errorf("ToNumber(%#v) ok = %v, want %v", tt.v, ok, tt.wantOK)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ToNumber(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestIsEmptyAndKinds(t *testing.T) {
	if !IsEmpty(nil) || !IsEmpty("") || !IsEmpty([]int(nil)) {
		t.Error("IsEmpty should be true for nil, \"\" and nil slice")
	}
	if IsEmpty(0) || IsEmpty(" ") || IsEmpty([]int{}) {
		t.Error("IsEmpty should be false for 0, \" \" and empty slice")
	}
	if !IsObject(map[string]any{}) || !IsObject(&user{}) || IsObject([]int{}) || IsObject("x") {
		t.Error("IsObject classification wrong")
	}
	if !IsArray([]int{}) || IsArray(map[string]any{}) {
		t.Error("IsArray classification wrong")
	}
	if !IsFunc(func() {}) || IsFunc(nil) || IsFunc((func())(nil)) {
		t.Error("IsFunc classification wrong")
	}
	if !IsInteger(int8(1)) || IsInteger(1.0) {
		t.Error("IsInteger classification wrong")
	}
}

func TestEqual(t *testing.T) {
	fn := func() {}
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"ints", 1, 1, true},
		{"int and int64", 2, int64(2), true},
		{"int and float", 2, 2.0, true},
		{"number and string", 2, "2", false},
		{"strings", "a", "a", true},
		{"nil and nil", nil, nil, true},
		{"nil and empty string", nil, "", false},
		{"maps", map[string]any{"a": 1, "b": []any{1, 2}}, map[string]any{"a": int8(1), "b": []any{1, 2}}, true},
		{"maps differ", map[string]any{"a": 1}, map[string]any{"a": 2}, false},
		{"maps different size", map[string]any{"a": 1}, map[string]any{"a": 1, "b": 2}, false},
		{"slices", []string{"a"}, []any{"a"}, true},
		{"same func", fn, fn, true},
		{"structs", address{"x"}, address{"x"}, true},
		{"struct pointers", &address{"x"}, &address{"x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%#v, %#v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestEntries(t *testing.T) {
	got := Entries(map[string]any{"b": 2, "10": "x", "2": "y", "a": 1})
	want := []Entry{{"2", "y"}, {"10", "x"}, {"a", 1}, {"b", 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Entries(map) mismatch (-want +got):\n%s", diff)
	}

	got = Entries([]string{"x", "y"})
	want = []Entry{{"0", "x"}, {"1", "y"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Entries(slice) mismatch (-want +got):\n%s", diff)
	}

	got = Entries(address{City: "Oslo"})
	want = []Entry{{"city", "Oslo"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Entries(struct) mismatch (-want +got):\n%s", diff)
	}

	if Entries(42) != nil {
		t.Error("Entries(42) should be nil")
	}
}

func TestExtend(t *testing.T) {
	got := Extend(map[string]any{"id": "keep"}, map[string]any{"id": "x", "title": "t", "children": 1}, "id", "children")
	want := map[string]any{"id": "keep", "title": "t"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extend mismatch (-want +got):\n%s", diff)
	}
}

func TestCall(t *testing.T) {
	sum := func(a, b int) int { return a + b }
	got, err := Call(sum, 100.0, "200")
	if err != nil {
		t.Fatal(err)
	}
	if got != 300 {
		t.Errorf("Call(sum) = %v, want 300", got)
	}

	concat := func(parts ...string) string {
		out := ""
		for _, p := range parts {
			out += p
		}
		return out
	}
	if got, _ := Call(concat, "a", 1, true); got != "a1true" {
		t.Errorf("Call(concat) = %v, want a1true", got)
	}

	// Missing arguments are zero values.
	if got, _ := Call(sum, 1); got != 1 {
		t.Errorf("Call(sum, 1) = %v, want 1", got)
	}

	failing := func() (string, error) { return "", errors.New("nope") }
	if _, err := Call(failing); err == nil || err.Error() != "nope" {
		t.Errorf("Call(failing) error = %v, want nope", err)
	}

	panicking := func() int { panic("bad") }
	if _, err := Call(panicking); err == nil {
		t.Error("Call(panicking) should return an error")
	}

	if _, err := Call("not a func"); err == nil {
		t.Error("Call(string) should fail")
	}
}
