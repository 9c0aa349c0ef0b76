package spec

import (
	"math"

	"github.com/whaaaley/cynthia/internal/pattern"
	"github.com/whaaaley/cynthia/internal/syntax"
)

// Value converts a literal expression into the value domain shared with the
// pattern and model packages. Anything that is not a literal becomes an
// Expr holding its source text.
func Value(e syntax.Expr) any {
	return convert(e, nil)
}

type lookupFunc func(name string) (any, bool)

func convert(e syntax.Expr, lookup lookupFunc) any {
	switch x := e.(type) {
	case nil:
		return pattern.Undefined
	case *syntax.Literal:
		return literal(x)
	case *syntax.Ident:
		switch x.Name {
		case "undefined":
			return pattern.Undefined
		case "NaN":
			return math.NaN()
		case "Infinity":
			return math.Inf(1)
		}
		if lookup != nil {
			if v, ok := lookup(x.Name); ok {
				return v
			}
		}
		return pattern.Expr(x.Text())
	case *syntax.Array:
		out := make([]any, 0, len(x.Elems))
		for _, el := range x.Elems {
			out = append(out, convert(el, lookup))
		}
		return out
	case *syntax.Object:
		obj := pattern.NewObject()
		for _, p := range x.Props {
			if p.Key == "" {
				return pattern.Expr(x.Text())
			}
			obj.Set(p.Key, convert(p.Value, lookup))
		}
		return obj
	}
	return pattern.Expr(e.Text())
}

func literal(l *syntax.Literal) any {
	switch l.Kind {
	case syntax.LiteralString, syntax.LiteralTemplate:
		if s, ok := l.StringValue(); ok {
			return s
		}
	case syntax.LiteralNumber:
		if f, ok := l.Number(); ok {
			return f
		}
	case syntax.LiteralBool:
		return l.Raw() == "true"
	case syntax.LiteralNull:
		return pattern.Null
	case syntax.LiteralUndefined:
		return pattern.Undefined
	}
	return pattern.Expr(l.Raw())
}

// method is the final name segment of a callee: "describe" for both
// describe(...) and t.describe(...).
func method(c *syntax.Call) string {
	switch callee := c.Callee.(type) {
	case *syntax.Ident:
		return callee.Name
	case *syntax.Member:
		return callee.Property
	}
	return ""
}

// label is the string value of argument i, or its source text.
func label(c *syntax.Call, i int) string {
	if i >= len(c.Args) {
		return ""
	}
	if s, ok := Value(c.Args[i]).(string); ok {
		return s
	}
	return c.Args[i].Text()
}

func funcArg(c *syntax.Call, i int) *syntax.Func {
	if i >= len(c.Args) {
		return nil
	}
	f, _ := c.Args[i].(*syntax.Func)
	return f
}
