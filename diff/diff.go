// Package diff compares JSON-like values and reports where they differ.
//
// A report maps a slash separated path to a short description of the
// change. Callers mostly care whether the report is empty: the pipeline uses
// it to decide whether a view needs to be rendered again.
package diff

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// ErrUnsupportedKind is returned for values that have no JSON form.
var ErrUnsupportedKind = errors.New("unsupported kind")

const (
	toNull    = "non-null => null"
	fromNull  = "null => non-null"
	keyAdd    = "+key"
	keyRemove = "-key"
)

// Report maps a path to the change found there.
type Report map[string]string

// Empty reports whether no difference was found.
func (r Report) Empty() bool { return len(r) == 0 }

// String renders the report one "path: change" per line in path order.
func (r Report) String() string {
	paths := make([]string, 0, len(r))
	for p := range r {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	var b strings.Builder
	for i, p := range paths {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", displayPath(p), r[p])
	}
	return b.String()
}

func displayPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

// Diff compares a and b. Typed values (structs, typed maps and slices) are
// first brought into JSON form, so a model and its decoded snapshot compare
// equal when they serialise the same.
func Diff(a, b any) (Report, error) {
	na, err := Normalize(a)
	if err != nil {
		return nil, err
	}
	nb, err := Normalize(b)
	if err != nil {
		return nil, err
	}
	r := Report{}
	if err := compare(r, "", na, nb); err != nil {
		return nil, err
	}
	return r, nil
}

// Changed reports whether Diff finds any difference.
func Changed(a, b any) (bool, error) {
	r, err := Diff(a, b)
	if err != nil {
		return false, err
	}
	return !r.Empty(), nil
}

// Normalize converts v into the JSON value space: nil, bool, float64,
// string, []any and map[string]any. The result shares nothing with v.
func Normalize(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case bool, string, float64:
		return t, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %q: %w", t, ErrUnsupportedKind)
		}
		return f, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			n, err := Normalize(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			n, err := Normalize(e)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	}

	switch reflect.ValueOf(v).Kind() { //nolint:exhaustive
	case reflect.Chan, reflect.Func, reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
		return nil, fmt.Errorf("%T: %w", v, ErrUnsupportedKind)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%T: %w: %v", v, ErrUnsupportedKind, err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%T: %w", v, err)
	}
	return out, nil
}

func compare(r Report, path string, a, b any) error {
	switch {
	case a == nil && b == nil:
		return nil
	case b == nil:
		r[path] = toNull
		return nil
	case a == nil:
		r[path] = fromNull
		return nil
	}

	ka, err := kindOf(path, a)
	if err != nil {
		return err
	}
	kb, err := kindOf(path, b)
	if err != nil {
		return err
	}
	if ka != kb {
		r[path] = "type " + ka + " => " + kb
		return nil
	}

	switch av := a.(type) {
	case []any:
		return compareArrays(r, path, av, b.([]any))
	case map[string]any:
		return compareObjects(r, path, av, b.(map[string]any))
	default:
		if a != b {
			r[path] = literal(a) + " => " + literal(b)
		}
		return nil
	}
}

func compareArrays(r Report, path string, a, b []any) error {
	if delta := len(b) - len(a); delta != 0 {
		if delta > 0 {
			r[path] = "[+" + strconv.Itoa(delta) + "]"
		} else {
			r[path] = "[" + strconv.Itoa(delta) + "]"
		}
		return nil
	}
	for i := range a {
		if err := compare(r, path+"/["+strconv.Itoa(i)+"]", a[i], b[i]); err != nil {
			return err
		}
	}
	return nil
}

func compareObjects(r Report, path string, a, b map[string]any) error {
	for k, av := range a {
		p := path + "/" + k
		bv, ok := b[k]
		if !ok {
			r[p] = keyRemove
			continue
		}
		if err := compare(r, p, av, bv); err != nil {
			return err
		}
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			r[path+"/"+k] = keyAdd
		}
	}
	return nil
}

func kindOf(path string, v any) (string, error) {
	switch v.(type) {
	case bool:
		return "boolean", nil
	case float64:
		return "number", nil
	case string:
		return "string", nil
	case []any:
		return "array", nil
	case map[string]any:
		return "object", nil
	}
	return "", fmt.Errorf("%s: %T: %w", displayPath(path), v, ErrUnsupportedKind)
}

func literal(v any) string {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case string:
		return t
	}
	return fmt.Sprint(v)
}
