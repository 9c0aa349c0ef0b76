// Package capture records calls made through a registered set of assertion
// and behavior functions, so that the call sequence of one test file can be
// serialized into a specification.
//
// Behavior-role functions (describe, it) have their callback argument
// invoked synchronously so that nested calls land in the log. Errors and
// panics raised inside those callbacks are logged at debug level and
// otherwise swallowed, so capture continues past a failing assertion.
package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	ErrUnknownFunction = errors.New("unknown function")
	ErrNotCallable     = errors.New("export is not callable")
)

type Role int

const (
	RoleAssertion Role = iota
	RoleBehavior
)

func (r Role) String() string {
	if r == RoleBehavior {
		return "behavior"
	}
	return "assertion"
}

// Func is a registered function. A nil error means the call passed.
type Func func(args ...any) (any, error)

// Entry is one named export. An entry without Fn is a plain value and is
// returned by Proxy.Value unchanged.
type Entry struct {
	Name  string
	Role  Role
	Fn    Func
	Value any
}

// Module is an ordered list of exports. Later modules shadow earlier ones
// on name collisions.
type Module []Entry

type CapturedCall struct {
	Function  string
	Args      []any
	Timestamp int64 // unix milliseconds
}

type Options struct {
	// CaptureOnly records calls without forwarding them to the original
	// function; every call returns (nil, nil).
	CaptureOnly bool
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Proxy is not safe for concurrent use. Create one per test file.
type Proxy struct {
	opts    Options
	entries map[string]Entry
	order   []string
	calls   []CapturedCall
}

func New(opts Options, modules ...Module) *Proxy {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	p := &Proxy{
		opts:    opts,
		entries: make(map[string]Entry),
	}
	for _, m := range modules {
		for _, e := range m {
			if _, seen := p.entries[e.Name]; !seen {
				p.order = append(p.order, e.Name)
			}
			p.entries[e.Name] = e
		}
	}
	return p
}

// Call records the invocation of name and, unless capture-only, forwards
// it to the original function, returning its result and error unchanged.
func (p *Proxy) Call(name string, args ...any) (any, error) {
	e, ok := p.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	if e.Fn == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotCallable, name)
	}

	p.calls = append(p.calls, CapturedCall{
		Function:  name,
		Args:      append([]any(nil), args...),
		Timestamp: p.opts.Clock().UnixMilli(),
	})

	if e.Role == RoleBehavior {
		if cb := callback(args); cb != nil {
			if err := runSwallowed(cb); err != nil {
				slog.Debug("swallowed error in behavior callback",
					"function", name,
					"error", err)
			}
		}
	}

	if p.opts.CaptureOnly {
		return nil, nil
	}
	return e.Fn(args...)
}

// Lookup returns a wrapper that routes through Call.
func (p *Proxy) Lookup(name string) (Func, bool) {
	e, ok := p.entries[name]
	if !ok || e.Fn == nil {
		return nil, false
	}
	return func(args ...any) (any, error) {
		return p.Call(name, args...)
	}, true
}

// Value returns a non-function export.
func (p *Proxy) Value(name string) (any, bool) {
	e, ok := p.entries[name]
	if !ok || e.Fn != nil {
		return nil, false
	}
	return e.Value, true
}

func (p *Proxy) Has(name string) bool {
	_, ok := p.entries[name]
	return ok
}

func (p *Proxy) Role(name string) (Role, bool) {
	e, ok := p.entries[name]
	return e.Role, ok
}

// Names lists the exports in registration order.
func (p *Proxy) Names() []string {
	return append([]string(nil), p.order...)
}

// CapturedCalls returns a copy of the log in call order.
func (p *Proxy) CapturedCalls() []CapturedCall {
	return append([]CapturedCall(nil), p.calls...)
}

func (p *Proxy) Serialize() (string, error) {
	return Serialize(p.calls)
}

func callback(args []any) func() error {
	for _, a := range args {
		switch fn := a.(type) {
		case func():
			return func() error { fn(); return nil }
		case func() error:
			return fn
		}
	}
	return nil
}

func runSwallowed(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
