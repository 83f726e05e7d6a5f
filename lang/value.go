package lang

import (
	"cmp"
	"errors"
	"fmt"
	"reflect"
	"slices"
)

// Stringify returns the text emitted for v.
//
// Nil emits nothing, byte slices emit their content, and everything else
// uses its fmt.Stringer implementation or default fmt formatting.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case fmt.Stringer:
		return val.String()
	case error:
		return val.Error()
	default:
		return fmt.Sprint(val)
	}
}

// Truthy reports whether v counts as true in a condition.
//
// Nil, false, numeric zero, and empty strings, slices, arrays and maps are
// false. Every other value is true.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case float64:
		return val != 0
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	default:
		return true
	}
}

// toInt converts an integral value to int.
func toInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case float64:
		if val == float64(int(val)) {
			return int(val), true
		}

		return 0, false
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return int(rv.Uint()), true
	case reflect.Float32:
		f := rv.Float()
		if f == float64(int(f)) {
			return int(f), true
		}
	}

	return 0, false
}

// pair is one step of an iteration: an index or key, and the element.
type pair struct {
	key, val any
}

// iterate returns the iteration steps of v.
//
// Slices and arrays yield (index, element). Maps yield (key, value) in sorted
// key order and report keyed. Strings yield (index, rune as string). An
// integer n yields (i, i) for i in [0, n). Nil is not iterable; a nil
// slice or map is empty.
func iterate(v any) (steps []pair, keyed bool, err error) {
	if v == nil {
		return nil, false, ErrNotIterable.Wrap(errors.New("nil"))
	}

	if s, ok := v.(string); ok {
		i := 0
		for _, r := range s {
			steps = append(steps, pair{i, string(r)})
			i++
		}

		return steps, false, nil
	}

	if n, ok := v.(int); ok {
		steps = make([]pair, 0, max(n, 0))
		for i := range max(n, 0) {
			steps = append(steps, pair{i, i})
		}

		return steps, false, nil
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		steps = make([]pair, rv.Len())
		for i := range rv.Len() {
			steps[i] = pair{i, rv.Index(i).Interface()}
		}

		return steps, false, nil

	case reflect.Map:
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
		})

		steps = make([]pair, len(keys))
		for i, k := range keys {
			steps[i] = pair{k.Interface(), rv.MapIndex(k).Interface()}
		}

		return steps, true, nil

	default:
		return nil, false, ErrNotIterable.Wrap(fmt.Errorf("%T", v))
	}
}
