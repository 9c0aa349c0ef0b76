// Package model holds the recorded test state that the DSL builder produces
// and the runner replays.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/whaaaley/cynthia/internal/pattern"
)

var (
	ErrNoMatcher        = errors.New("expectation has no matcher")
	ErrMultipleMatchers = errors.New("expectation has more than one matcher")
	ErrUnknownMatcher   = errors.New("unknown matcher")
)

type Matcher string

const (
	MatcherToBe             Matcher = "toBe"
	MatcherToMatchObject    Matcher = "toMatchObject"
	MatcherNotToBe          Matcher = "not.toBe"
	MatcherNotToMatchObject Matcher = "not.toMatchObject"
)

// Matchers lists the known matchers in declaration order.
var Matchers = []Matcher{MatcherToBe, MatcherToMatchObject, MatcherNotToBe, MatcherNotToMatchObject}

func (m Matcher) Valid() bool {
	switch m {
	case MatcherToBe, MatcherToMatchObject, MatcherNotToBe, MatcherNotToMatchObject:
		return true
	}
	return false
}

// Negated reports whether m is a not.* matcher.
func (m Matcher) Negated() bool {
	return m == MatcherNotToBe || m == MatcherNotToMatchObject
}

// Expectation is one recorded assertion. A well-formed expectation carries
// exactly one matcher key; Matcher reports violations.
type Expectation struct {
	Input    []any
	Matchers map[Matcher]any
}

func NewExpectation(input []any, m Matcher, value any) Expectation {
	return Expectation{Input: input, Matchers: map[Matcher]any{m: value}}
}

// Matcher returns the single matcher and its expected value.
func (e Expectation) Matcher() (Matcher, any, error) {
	switch len(e.Matchers) {
	case 0:
		return "", nil, ErrNoMatcher
	case 1:
		for m, v := range e.Matchers {
			if !m.Valid() {
				return "", nil, fmt.Errorf("%w: %s", ErrUnknownMatcher, m)
			}
			return m, v, nil
		}
	}
	keys := make([]string, 0, len(e.Matchers))
	for m := range e.Matchers {
		keys = append(keys, string(m))
	}
	sort.Strings(keys)
	return "", nil, fmt.Errorf("%w: %v", ErrMultipleMatchers, keys)
}

// MarshalJSON writes the flat form {"input":[...],"toBe":...} with the
// value encoding of pattern.MarshalJSON.
func (e Expectation) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"input":`)
	input := e.Input
	if input == nil {
		input = []any{}
	}
	data, err := pattern.MarshalJSON(input)
	if err != nil {
		return nil, err
	}
	buf.Write(data)

	for _, m := range sortedMatchers(e.Matchers) {
		key, _ := json.Marshal(string(m))
		val, err := pattern.MarshalJSON(e.Matchers[m])
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (e *Expectation) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Expectation{Matchers: make(map[Matcher]any)}
	for k, v := range raw {
		if k == "input" {
			if err := json.Unmarshal(v, &e.Input); err != nil {
				return fmt.Errorf("input: %w", err)
			}
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		e.Matchers[Matcher(k)] = val
	}
	return nil
}

// known matchers first in declaration order, then unknown keys sorted
func sortedMatchers(ms map[Matcher]any) []Matcher {
	out := make([]Matcher, 0, len(ms))
	for _, m := range Matchers {
		if _, ok := ms[m]; ok {
			out = append(out, m)
		}
	}
	var extra []string
	for m := range ms {
		if !m.Valid() {
			extra = append(extra, string(m))
		}
	}
	sort.Strings(extra)
	for _, m := range extra {
		out = append(out, Matcher(m))
	}
	return out
}

type Test struct {
	Name    string        `json:"name"`
	Expects []Expectation `json:"expects"`
}

type Suite struct {
	Name  string `json:"name"`
	Tests []Test `json:"tests"`
}

type TestState struct {
	Suites []Suite `json:"suites"`
}

// Validate checks every expectation for exactly one known matcher.
func (s TestState) Validate() error {
	for _, suite := range s.Suites {
		for _, t := range suite.Tests {
			for i, e := range t.Expects {
				if _, _, err := e.Matcher(); err != nil {
					return fmt.Errorf("%s > %s > expectation %d: %w", suite.Name, t.Name, i+1, err)
				}
			}
		}
	}
	return nil
}
