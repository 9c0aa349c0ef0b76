package pattern

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

type nullValue struct{}
type undefinedValue struct{}

var (
	// Null is the JavaScript null literal.
	Null = nullValue{}
	// Undefined is the JavaScript undefined value, and the rendering of a
	// missing argument.
	Undefined = undefinedValue{}
)

func (nullValue) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// undefined has no JSON form; JSON.stringify drops it from objects and
// renders it as null inside arrays.
func (undefinedValue) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// Expr is a non-literal expression kept as its source text, e.g. `testFn(x)`.
type Expr string

func (e Expr) MarshalJSON() ([]byte, error) { return MarshalJSON(string(e)) }

// Object is an insertion-ordered string-keyed map, the value form of a
// JavaScript object literal.
type Object struct {
	keys   []string
	values map[string]any
}

func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Set adds or replaces key. Replacing keeps the original position.
func (o *Object) Set(key string, value any) *Object {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
	return o
}

func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

func (o *Object) Len() int {
	return len(o.keys)
}

func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, k := range o.keys {
		v := o.values[k]
		if _, skip := v.(undefinedValue); skip {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := MarshalJSON(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := MarshalJSON(v)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON encodes v the way JSON.stringify does for this value domain:
// compact, without HTML escaping, NaN and the infinities as null.
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(finite(v)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// finite replaces non-finite floats with Null inside the generic containers
// the value domain is built from. *Object values pass through; their
// MarshalJSON comes back here per entry.
func finite(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return Null
		}
	case float32:
		if f := float64(x); math.IsNaN(f) || math.IsInf(f, 0) {
			return Null
		}
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = finite(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = finite(e)
		}
		return out
	}
	return v
}

const functionPlaceholder = "[Function]"

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// FormatValue renders v as a compact single-line inspection string:
// strings quoted, arrays as "[ 1, 2 ]", objects as "{ a: 1 }", functions as
// "[Function]" and expressions as their source text. A map, slice, pointer
// or *Object reached again inside itself renders as "[Circular]".
func FormatValue(v any) string {
	p := printer{seen: make(map[visit]bool)}
	p.value(v)
	return p.b.String()
}

const circularPlaceholder = "[Circular]"

// visit identifies a container on the current path. Slices include their
// length so a shorter view of the same backing array is not a cycle.
type visit struct {
	ptr  uintptr
	kind reflect.Kind
	n    int
}

type printer struct {
	b    strings.Builder
	seen map[visit]bool
}

// enter reports whether the container is new on the current path, writing
// the circular placeholder when it is not.
func (p *printer) enter(v visit) bool {
	if p.seen[v] {
		p.b.WriteString(circularPlaceholder)
		return false
	}
	p.seen[v] = true
	return true
}

func (p *printer) leave(v visit) {
	delete(p.seen, v)
}

func (p *printer) value(v any) {
	switch x := v.(type) {
	case nil, nullValue:
		p.b.WriteString("null")
		return
	case undefinedValue:
		p.b.WriteString("undefined")
		return
	case Expr:
		p.b.WriteString(string(x))
		return
	case string:
		p.b.WriteString(quote(x))
		return
	case bool:
		p.b.WriteString(strconv.FormatBool(x))
		return
	case float64:
		p.b.WriteString(formatNumber(x))
		return
	case float32:
		p.b.WriteString(formatNumber(float64(x)))
		return
	case *Object:
		if x == nil {
			p.b.WriteString("null")
			return
		}
		key := visit{ptr: reflect.ValueOf(x).Pointer(), kind: reflect.Pointer}
		if !p.enter(key) {
			return
		}
		p.entries(x.keys, func(k string) any { return x.values[k] })
		p.leave(key)
		return
	case error:
		p.b.WriteString(x.Error())
		return
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func:
		p.b.WriteString(functionPlaceholder)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		p.b.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		p.b.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		p.b.WriteString(formatNumber(rv.Float()))
	case reflect.String:
		p.b.WriteString(quote(rv.String()))
	case reflect.Bool:
		p.b.WriteString(strconv.FormatBool(rv.Bool()))
	case reflect.Pointer:
		if rv.IsNil() {
			p.b.WriteString("null")
			return
		}
		key := visit{ptr: rv.Pointer(), kind: reflect.Pointer}
		if !p.enter(key) {
			return
		}
		p.value(rv.Elem().Interface())
		p.leave(key)
	case reflect.Interface:
		if rv.IsNil() {
			p.b.WriteString("null")
			return
		}
		p.value(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			p.b.WriteString("[]")
			return
		}
		if rv.Kind() == reflect.Slice {
			key := visit{ptr: rv.Pointer(), kind: reflect.Slice, n: rv.Len()}
			if !p.enter(key) {
				return
			}
			defer p.leave(key)
		}
		p.b.WriteString("[ ")
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.value(rv.Index(i).Interface())
		}
		p.b.WriteString(" ]")
	case reflect.Map:
		if rv.IsNil() || rv.Len() == 0 {
			p.b.WriteString("{}")
			return
		}
		key := visit{ptr: rv.Pointer(), kind: reflect.Map}
		if !p.enter(key) {
			return
		}
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]reflect.Value, rv.Len())
		for _, k := range rv.MapKeys() {
			s := fmt.Sprint(k.Interface())
			keys = append(keys, s)
			byKey[s] = rv.MapIndex(k)
		}
		sort.Strings(keys)
		p.entries(keys, func(k string) any { return byKey[k].Interface() })
		p.leave(key)
	case reflect.Struct:
		t := rv.Type()
		var keys []string
		fields := make(map[string]any)
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			keys = append(keys, f.Name)
			fields[f.Name] = rv.Field(i).Interface()
		}
		p.entries(keys, func(k string) any { return fields[k] })
	default:
		fmt.Fprintf(&p.b, "%v", v)
	}
}

func (p *printer) entries(keys []string, get func(string) any) {
	if len(keys) == 0 {
		p.b.WriteString("{}")
		return
	}
	p.b.WriteString("{ ")
	for i, k := range keys {
		if i > 0 {
			p.b.WriteString(", ")
		}
		if identRe.MatchString(k) {
			p.b.WriteString(k)
		} else {
			p.b.WriteString(quote(k))
		}
		p.b.WriteString(": ")
		p.value(get(k))
	}
	p.b.WriteString(" }")
}

// quote prefers double quotes and switches to single quotes when that
// avoids escaping.
func quote(s string) string {
	if strings.Contains(s, `"`) && !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	return strconv.Quote(s)
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Plain renders strings without quotes and everything else with FormatValue,
// the way a value reads when interpolated into a sentence.
func Plain(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return FormatValue(v)
}

// Truthy reports JavaScript truthiness for the value domain used here.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil, nullValue, undefinedValue:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case int:
		return x != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32:
		return rv.Float() != 0
	case reflect.Pointer, reflect.Interface, reflect.Func:
		return !rv.IsNil()
	}
	return true
}
