package harness

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/onsi/gomega/format"
	"github.com/onsi/gomega/types"

	"github.com/whaaaley/cynthia/internal/pattern"
)

// MatchObject succeeds when actual contains expected as a deep subset:
// every key of an expected object must be present and match, arrays match
// element-wise with equal length, scalars compare by value with numbers
// compared numerically.
func MatchObject(expected any) types.GomegaMatcher {
	return &valueMatcher{expected: expected, subset: true, verb: "to match object"}
}

// EqualValue is the toBe matcher: deep equality over the normalized JSON
// form, so 5 and 5.0 are equal and NaN equals NaN.
func EqualValue(expected any) types.GomegaMatcher {
	return &valueMatcher{expected: expected, verb: "to be"}
}

type valueMatcher struct {
	expected any
	subset   bool
	verb     string
}

func (m *valueMatcher) Match(actual any) (bool, error) {
	a, errA := normalize(actual)
	e, errE := normalize(m.expected)
	if errA != nil || errE != nil {
		// values JSON cannot represent (funcs, channels) compare as Go values
		return reflect.DeepEqual(actual, m.expected), nil
	}
	if m.subset {
		return isSubset(a, e), nil
	}
	return same(a, e), nil
}

func (m *valueMatcher) FailureMessage(actual any) string {
	return format.Message(actual, m.verb, m.expected)
}

func (m *valueMatcher) NegatedFailureMessage(actual any) string {
	return format.Message(actual, "not "+m.verb, m.expected)
}

// normalize maps v onto the JSON data model (nil, bool, float64, string,
// []any, map[string]any). Undefined object entries are dropped. Non-finite
// numbers stay float64 so NaN can match NaN.
func normalize(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string, bool, float64:
		return x, nil
	case *pattern.Object:
		if x == nil {
			return nil, nil
		}
		out := make(map[string]any, x.Len())
		for _, k := range x.Keys() {
			val, _ := x.Get(k)
			if val == pattern.Undefined {
				continue
			}
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		out := make([]any, rv.Len())
		for i := range out {
			n, err := normalize(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			val := iter.Value().Interface()
			if val == pattern.Undefined {
				continue
			}
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = n
		}
		return out, nil
	}

	// structs honor their json tags; Null, Undefined and Expr marshal
	// themselves
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	return out, nil
}

// same is deep equality over normalized values with NaN equal to itself,
// as Object.is compares numbers.
func same(actual, expected any) bool {
	switch e := expected.(type) {
	case float64:
		a, ok := actual.(float64)
		return ok && (a == e || (math.IsNaN(a) && math.IsNaN(e)))
	case []any:
		a, ok := actual.([]any)
		if !ok || len(a) != len(e) {
			return false
		}
		for i := range e {
			if !same(a[i], e[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		a, ok := actual.(map[string]any)
		if !ok || len(a) != len(e) {
			return false
		}
		for k, ev := range e {
			av, ok := a[k]
			if !ok || !same(av, ev) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(actual, expected)
	}
}

func isSubset(actual, expected any) bool {
	switch e := expected.(type) {
	case map[string]any:
		a, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, ev := range e {
			av, ok := a[k]
			if !ok || !isSubset(av, ev) {
				return false
			}
		}
		return true
	case []any:
		a, ok := actual.([]any)
		if !ok || len(a) != len(e) {
			return false
		}
		for i := range e {
			if !isSubset(a[i], e[i]) {
				return false
			}
		}
		return true
	default:
		return same(actual, expected)
	}
}
