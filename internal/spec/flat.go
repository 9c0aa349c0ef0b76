package spec

import (
	"github.com/whaaaley/cynthia/internal/capture"
	"github.com/whaaaley/cynthia/internal/pattern"
	"github.com/whaaaley/cynthia/internal/syntax"
)

func noop(...any) (any, error) { return nil, nil }

// assertionModule registers every catalog assertion. The proxy runs capture
// only, so the functions are never called.
func assertionModule() capture.Module {
	names := pattern.AssertionNames()
	m := make(capture.Module, 0, len(names))
	for _, n := range names {
		m = append(m, capture.Entry{Name: n, Role: capture.RoleAssertion, Fn: noop})
	}
	return m
}

func bddModule() capture.Module {
	return capture.Module{
		{Name: capture.DescribeName, Role: capture.RoleBehavior, Fn: noop},
		{Name: capture.ItName, Role: capture.RoleBehavior, Fn: noop},
	}
}

// flatReplay walks assertion-style test code through a capture-only proxy.
// Variables bound to non-literal initializers are substituted by the
// initializer's source, so `const r = testFn(1); assertEquals(r, 2)` reads
// as `assertEquals(testFn(1), 2)`.
type flatReplay struct {
	proxy    *capture.Proxy
	bindings map[string]any
}

func replayFlat(f *syntax.File) (*capture.Proxy, error) {
	r := &flatReplay{
		proxy:    capture.New(capture.Options{CaptureOnly: true}, assertionModule(), bddModule()),
		bindings: make(map[string]any),
	}
	if err := r.stmts(f.Stmts); err != nil {
		return nil, err
	}
	return r.proxy, nil
}

func (r *flatReplay) stmts(stmts []syntax.Stmt) error {
	for _, s := range stmts {
		switch st := s.(type) {
		case *syntax.ExprStmt:
			if c, ok := st.X.(*syntax.Call); ok {
				if err := r.call(c); err != nil {
					return err
				}
			}
		case *syntax.VarStmt:
			for _, d := range st.Decls {
				if d.Init == nil {
					continue
				}
				if c, ok := d.Init.(*syntax.Call); ok && r.proxy.Has(c.Name()) {
					if err := r.call(c); err != nil {
						return err
					}
					continue
				}
				r.bindings[d.Name] = convert(d.Init, r.lookup)
			}
		}
	}
	return nil
}

func (r *flatReplay) lookup(name string) (any, bool) {
	v, ok := r.bindings[name]
	return v, ok
}

func (r *flatReplay) call(c *syntax.Call) error {
	name := c.Name()
	if !r.proxy.Has(name) {
		return nil
	}

	args := make([]any, 0, len(c.Args))
	var bodyErr error
	for _, a := range c.Args {
		if fn, ok := a.(*syntax.Func); ok {
			args = append(args, r.body(fn, &bodyErr))
			continue
		}
		args = append(args, convert(a, r.lookup))
	}

	if _, err := r.proxy.Call(name, args...); err != nil {
		return err
	}
	return bodyErr
}

// body returns a callback the proxy runs for behavior entries. Bindings made
// inside the body stay visible afterwards; block scoping is not modeled.
func (r *flatReplay) body(fn *syntax.Func, errp *error) func() {
	return func() {
		if fn.Expr != nil {
			if c, ok := fn.Expr.(*syntax.Call); ok {
				*errp = r.call(c)
			}
			return
		}
		*errp = r.stmts(fn.Body)
	}
}
