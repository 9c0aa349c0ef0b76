// Package harness records describe/it/expect calls into a model.TestState
// and replays a recorded state against a candidate implementation.
package harness

import (
	"log/slog"

	"github.com/whaaaley/cynthia/internal/model"
)

type Status int

const (
	StatusOK Status = iota
	// StatusNoSuite is returned by It and by inert assertions when no suite
	// is open. Nothing is recorded.
	StatusNoSuite
)

func (s Status) String() string {
	if s == StatusNoSuite {
		return "no active suite"
	}
	return "ok"
}

// Builder is the in-memory DSL. Its suite stack is local to the instance;
// nested describes record flat suites and restore the outer suite when
// their body returns.
type Builder struct {
	state model.TestState
	stack []int
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Describe opens a suite, runs body, then closes it. A nil body is allowed.
func (b *Builder) Describe(name string, body func()) Status {
	b.state.Suites = append(b.state.Suites, model.Suite{Name: name})
	b.stack = append(b.stack, len(b.state.Suites)-1)
	defer func() { b.stack = b.stack[:len(b.stack)-1] }()

	if body != nil {
		body()
	}
	return StatusOK
}

// It appends a test to the current suite and runs body.
func (b *Builder) It(name string, body func()) Status {
	suite, ok := b.current()
	if !ok {
		slog.Warn("it called without an active suite, call describe first", "test", name)
		return StatusNoSuite
	}
	suite.Tests = append(suite.Tests, model.Test{Name: name})
	if body != nil {
		body()
	}
	return StatusOK
}

// Expect starts an expectation on the most recent test of the current
// suite. Without one, the returned assertion is inert.
func (b *Builder) Expect(input ...any) Assertion {
	suite, ok := b.current()
	if !ok || len(suite.Tests) == 0 {
		slog.Warn("expect called without an active test, call describe and it first")
		return Assertion{}
	}
	return Assertion{
		b:     b,
		suite: b.stack[len(b.stack)-1],
		test:  len(suite.Tests) - 1,
		input: append([]any(nil), input...),
	}
}

// State returns the recorded state. The result shares no slices with
// later recordings.
func (b *Builder) State() model.TestState {
	out := model.TestState{Suites: make([]model.Suite, len(b.state.Suites))}
	for i, s := range b.state.Suites {
		tests := make([]model.Test, len(s.Tests))
		for j, t := range s.Tests {
			tests[j] = model.Test{Name: t.Name, Expects: append([]model.Expectation(nil), t.Expects...)}
		}
		out.Suites[i] = model.Suite{Name: s.Name, Tests: tests}
	}
	return out
}

func (b *Builder) current() (*model.Suite, bool) {
	if len(b.stack) == 0 {
		return nil, false
	}
	return &b.state.Suites[b.stack[len(b.stack)-1]], true
}

// Assertion appends one expectation per matcher call. The zero value is
// inert.
type Assertion struct {
	b       *Builder
	suite   int
	test    int
	input   []any
	negated bool
}

func (a Assertion) Inert() bool {
	return a.b == nil
}

func (a Assertion) Not() Assertion {
	a.negated = !a.negated
	return a
}

func (a Assertion) ToBe(value any) Status {
	if a.negated {
		return a.record(model.MatcherNotToBe, value)
	}
	return a.record(model.MatcherToBe, value)
}

func (a Assertion) ToMatchObject(value any) Status {
	if a.negated {
		return a.record(model.MatcherNotToMatchObject, value)
	}
	return a.record(model.MatcherToMatchObject, value)
}

func (a Assertion) record(m model.Matcher, value any) Status {
	if a.b == nil {
		return StatusNoSuite
	}
	t := &a.b.state.Suites[a.suite].Tests[a.test]
	t.Expects = append(t.Expects, model.NewExpectation(a.input, m, value))
	return StatusOK
}
