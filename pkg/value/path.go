package value

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Get returns the value at path inside obj, or nil if any segment is missing.
func Get(obj any, path string) any {
	v, _ := Lookup(obj, path)
	return v
}

// Lookup returns the value at path inside obj and whether every segment resolved.
// An empty path returns obj itself.
func Lookup(obj any, path string) (any, bool) {
	if obj == nil {
		return nil, false
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return obj, true
	}

	rv := reflect.ValueOf(obj)
	for _, seg := range strings.Split(path, ".") {
		next, ok := child(rv, seg)
		if !ok {
			return nil, false
		}
		rv = next
	}
	if !rv.IsValid() || !rv.CanInterface() {
		return nil, false
	}
	return rv.Interface(), true
}

// child resolves one path segment against v.
func child(v reflect.Value, seg string) (reflect.Value, bool) {
	if !v.IsValid() {
		return reflect.Value{}, false
	}

	if c, ok := element(indirect(v), seg); ok {
		return c, true
	}
	if m := method(v, seg); m.IsValid() {
		return m, true
	}
	return reflect.Value{}, false
}

// element resolves seg as a map key, index or struct field of v.
func element(v reflect.Value, seg string) (reflect.Value, bool) {
	if !v.IsValid() {
		return reflect.Value{}, false
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, false
		}
		mv := v.MapIndex(reflect.ValueOf(seg).Convert(v.Type().Key()))
		if !mv.IsValid() {
			return reflect.Value{}, false
		}
		return mv, true

	case reflect.Slice, reflect.Array:
		if seg == "length" {
			return reflect.ValueOf(v.Len()), true
		}
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= v.Len() {
			return reflect.Value{}, false
		}
		return v.Index(idx), true

	case reflect.String:
		if seg == "length" {
			return reflect.ValueOf(utf8.RuneCountInString(v.String())), true
		}
		return reflect.Value{}, false

	case reflect.Struct:
		if f := field(v, seg); f.IsValid() {
			return f, true
		}
	}
	return reflect.Value{}, false
}

// field finds a struct field by json tag or by case-insensitive name.
func field(v reflect.Value, name string) reflect.Value {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := strings.Split(f.Tag.Get("json"), ",")[0]
		if tag == name || strings.EqualFold(f.Name, name) {
			return v.Field(i)
		}
	}
	return reflect.Value{}
}

// method returns the bound method of v named seg (first letter upper-cased).
func method(v reflect.Value, seg string) reflect.Value {
	if seg == "" || !v.CanInterface() {
		return reflect.Value{}
	}
	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	r, size := utf8.DecodeRuneInString(seg)
	name := string(unicode.ToUpper(r)) + seg[size:]
	if m := v.MethodByName(name); m.IsValid() {
		return m
	}
	if v.Kind() != reflect.Ptr && v.CanAddr() {
		return v.Addr().MethodByName(name)
	}
	return reflect.Value{}
}

// indirect dereferences pointers and interfaces until a concrete value is reached.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// Set stores val at path inside obj. Intermediate map[string]any levels are
// created as needed; struct fields must be reachable through a pointer.
func Set(obj any, path string, val any) error {
	path = strings.TrimSpace(path)
	if obj == nil || path == "" {
		return fmt.Errorf("value: cannot set %q on %T", path, obj)
	}
	segs := strings.Split(path, ".")
	return set(reflect.ValueOf(obj), segs, val)
}

func set(v reflect.Value, segs []string, val any) error {
	v = indirect(v)
	if !v.IsValid() {
		return fmt.Errorf("value: nil container at %q", segs[0])
	}
	seg := segs[0]
	last := len(segs) == 1

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("value: map key type %s is not a string", v.Type().Key())
		}
		if v.IsNil() {
			return fmt.Errorf("value: nil map at %q", seg)
		}
		key := reflect.ValueOf(seg).Convert(v.Type().Key())
		if last {
			nv, err := assignable(val, v.Type().Elem())
			if err != nil {
				return err
			}
			v.SetMapIndex(key, nv)
			return nil
		}
		next := v.MapIndex(key)
		if !next.IsValid() || (next.Kind() == reflect.Interface && next.IsNil()) {
			created := map[string]any{}
			nv, err := assignable(created, v.Type().Elem())
			if err != nil {
				return err
			}
			v.SetMapIndex(key, nv)
			return set(reflect.ValueOf(created), segs[1:], val)
		}
		return set(next, segs[1:], val)

	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= v.Len() {
			return fmt.Errorf("value: index %q out of range", seg)
		}
		if last {
			return setValue(v.Index(idx), val)
		}
		return set(v.Index(idx), segs[1:], val)

	case reflect.Struct:
		f := field(v, seg)
		if !f.IsValid() {
			return fmt.Errorf("value: no field %q in %s", seg, v.Type())
		}
		if last {
			return setValue(f, val)
		}
		return set(f, segs[1:], val)
	}
	return fmt.Errorf("value: cannot descend into %s at %q", v.Kind(), seg)
}

func setValue(dst reflect.Value, val any) error {
	if !dst.CanSet() {
		return fmt.Errorf("value: %s is not settable", dst.Type())
	}
	nv, err := assignable(val, dst.Type())
	if err != nil {
		return err
	}
	dst.Set(nv)
	return nil
}

// assignable converts val to a reflect.Value assignable to t.
func assignable(val any, t reflect.Type) (reflect.Value, error) {
	if val == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(val)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(t) && rv.Kind() != reflect.String {
		return rv.Convert(t), nil
	}
	if rv.Kind() == reflect.String && t.Kind() == reflect.String {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("value: cannot assign %T to %s", val, t)
}
