package spec

import (
	"github.com/whaaaley/cynthia/internal/harness"
	"github.com/whaaaley/cynthia/internal/model"
	"github.com/whaaaley/cynthia/internal/pattern"
	"github.com/whaaaley/cynthia/internal/syntax"
)

// replaySuites feeds the describe/it/expect calls of a DSL test file into a
// Builder without executing the file.
//
//	t.describe('math', () => {
//	  t.it('adds', () => {
//	    t.expect([1, 2]).toBe(3)
//	  })
//	})
func replaySuites(f *syntax.File) model.TestState {
	b := harness.NewBuilder()
	for _, c := range f.Calls() {
		replayCall(b, c)
	}
	return b.State()
}

func replayCall(b *harness.Builder, c *syntax.Call) {
	switch method(c) {
	case "describe":
		b.Describe(label(c, 0), replayBody(b, funcArg(c, 1)))
		return
	case "it":
		b.It(label(c, 0), replayBody(b, funcArg(c, 1)))
		return
	}
	replayMatcher(b, c)
}

func replayBody(b *harness.Builder, fn *syntax.Func) func() {
	if fn == nil {
		return nil
	}
	return func() {
		for _, c := range fn.Calls() {
			replayCall(b, c)
		}
	}
}

// replayMatcher records expect(input).toBe(v) and the not./toMatchObject
// variants. Other calls are ignored.
func replayMatcher(b *harness.Builder, c *syntax.Call) {
	m, ok := c.Callee.(*syntax.Member)
	if !ok || (m.Property != "toBe" && m.Property != "toMatchObject") {
		return
	}

	target, negated := m.Object, false
	if not, ok := target.(*syntax.Member); ok && not.Property == "not" {
		target, negated = not.Object, true
	}
	expect, ok := target.(*syntax.Call)
	if !ok || method(expect) != "expect" {
		return
	}

	a := b.Expect(expectInput(expect)...)
	if negated {
		a = a.Not()
	}

	var value any = pattern.Undefined
	if len(c.Args) > 0 {
		value = Value(c.Args[0])
	}
	if m.Property == "toBe" {
		a.ToBe(value)
	} else {
		a.ToMatchObject(value)
	}
}

// expectInput spreads an array literal argument into the recorded input.
// A non-array argument is recorded as a single input value.
func expectInput(c *syntax.Call) []any {
	if len(c.Args) == 0 {
		return []any{}
	}
	if arr, ok := c.Args[0].(*syntax.Array); ok {
		return Value(arr).([]any)
	}
	out := make([]any, 0, len(c.Args))
	for _, a := range c.Args {
		out = append(out, Value(a))
	}
	return out
}

func countExpectations(s model.TestState) int {
	n := 0
	for _, suite := range s.Suites {
		for _, t := range suite.Tests {
			n += len(t.Expects)
		}
	}
	return n
}
