package value

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Entry is one key/value pair of an iterable value.
type Entry struct {
	Key   string
	Value any
}

// Entries lists the pairs of v in iteration order: slices and arrays by
// index, maps by sorted key, structs by field declaration order (json tag
// name when present). Any other value has no entries.
func Entries(v any) []Entry {
	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return nil
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]Entry, rv.Len())
		for i := range out {
			out[i] = Entry{Key: strconv.Itoa(i), Value: rv.Index(i).Interface()}
		}
		return out

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i].String(), keys[j].String()) })
		out := make([]Entry, len(keys))
		for i, k := range keys {
			out[i] = Entry{Key: k.String(), Value: rv.MapIndex(k).Interface()}
		}
		return out

	case reflect.Struct:
		t := rv.Type()
		out := make([]Entry, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name := strings.Split(f.Tag.Get("json"), ",")[0]
			if name == "-" {
				continue
			}
			if name == "" {
				name = f.Name
			}
			out = append(out, Entry{Key: name, Value: rv.Field(i).Interface()})
		}
		return out
	}
	return nil
}

// lessKey orders integer-like keys numerically before other keys, the way
// JavaScript enumerates object properties.
func lessKey(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return ai < bi
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	}
	return a < b
}

// Extend copies every entry of src into dst, skipping the excluded keys,
// and returns dst. A nil dst is allocated.
func Extend(dst map[string]any, src any, exclude ...string) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	for _, e := range Entries(src) {
		if contains(exclude, e.Key) {
			continue
		}
		dst[e.Key] = e.Value
	}
	return dst
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Equal reports deep equality with JavaScript-like number handling: numbers
// of any kind compare by value, funcs compare by identity.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return IsEmpty(a) && IsEmpty(b) && !IsString(a) && !IsString(b)
	}
	if an, ok := number(a); ok {
		bn, ok := number(b)
		return ok && an == bn
	}
	return equal(reflect.ValueOf(a), reflect.ValueOf(b))
}

func equal(a, b reflect.Value) bool {
	a, b = indirect(a), indirect(b)
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.CanInterface() && b.CanInterface() {
		if an, ok := number(a.Interface()); ok {
			bn, ok := number(b.Interface())
			return ok && an == bn
		}
	}

	switch a.Kind() {
	case reflect.Map:
		if b.Kind() != reflect.Map || a.Len() != b.Len() {
			return false
		}
		for _, k := range a.MapKeys() {
			if k.Kind() != b.Type().Key().Kind() {
				return false
			}
			bv := b.MapIndex(k.Convert(b.Type().Key()))
			if !bv.IsValid() || !equal(a.MapIndex(k), bv) {
				return false
			}
		}
		return true

	case reflect.Slice, reflect.Array:
		if (b.Kind() != reflect.Slice && b.Kind() != reflect.Array) || a.Len() != b.Len() {
			return false
		}
		for i := 0; i < a.Len(); i++ {
			if !equal(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true

	case reflect.Func:
		return b.Kind() == reflect.Func && a.Pointer() == b.Pointer()
	}

	if a.Type() != b.Type() {
		return false
	}
	if a.CanInterface() && b.CanInterface() {
		return reflect.DeepEqual(a.Interface(), b.Interface())
	}
	return false
}

// Call invokes fn with args converted to its parameter types and returns its
// first result. A trailing non-nil error result is returned as the error.
// Panics inside fn are recovered and reported as errors.
func Call(fn any, args ...any) (result any, err error) {
	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("value: %T is not callable", fn)
	}
	t := rv.Type()

	in := make([]reflect.Value, 0, len(args))
	for i, arg := range args {
		var pt reflect.Type
		switch {
		case t.IsVariadic() && i >= t.NumIn()-1:
			pt = t.In(t.NumIn() - 1).Elem()
		case i < t.NumIn():
			pt = t.In(i)
		default:
			// Extra arguments are dropped, as in JavaScript.
			continue
		}
		av, cerr := convertArg(arg, pt)
		if cerr != nil {
			return nil, cerr
		}
		in = append(in, av)
	}
	for len(in) < t.NumIn() && !(t.IsVariadic() && len(in) == t.NumIn()-1) {
		in = append(in, reflect.Zero(t.In(len(in))))
	}

	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("value: call panicked: %v", r)
		}
	}()

	out := rv.Call(in)
	if len(out) == 0 {
		return nil, nil
	}
	if last := out[len(out)-1]; last.Type().Implements(errorType) && len(out) > 1 {
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
	} else if len(out) == 1 && last.Type().Implements(errorType) {
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
		return nil, nil
	}
	return out[0].Interface(), nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func convertArg(arg any, t reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(arg)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if IsNumber(arg) {
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return rv.Convert(t), nil
		case reflect.String:
			return reflect.ValueOf(ToString(arg)).Convert(t), nil
		}
	}
	if t.Kind() == reflect.String {
		return reflect.ValueOf(ToString(arg)).Convert(t), nil
	}
	if rv.Kind() == reflect.String {
		if n, ok := ToNumber(arg); ok {
			return convertArg(n, t)
		}
	}
	return reflect.Value{}, fmt.Errorf("value: cannot pass %T as %s", arg, t)
}
