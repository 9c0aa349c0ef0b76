// Package syntax converts TypeScript test sources into a small closed set of
// node kinds. tree-sitter produces the concrete tree; everything downstream
// works on the types declared here.
package syntax

import (
	"strconv"
	"strings"
)

type Expr interface {
	Text() string
	Line() int
	exprNode()
}

type Stmt interface {
	Text() string
	Line() int
	stmtNode()
}

type base struct {
	text string
	line int
}

func (b base) Text() string { return b.text }

// Line is 1-based.
func (b base) Line() int { return b.line }

type Call struct {
	base
	Callee Expr
	Args   []Expr
}

// Name is the source text of the callee, e.g. "describe" or "Deno.test".
func (c *Call) Name() string { return c.Callee.Text() }

type Member struct {
	base
	Object   Expr
	Property string
}

type Ident struct {
	base
	Name string
}

type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBool
	LiteralNull
	LiteralUndefined
	LiteralTemplate
	LiteralRegex
)

type Literal struct {
	base
	Kind LiteralKind
	// Interpolated is set on template literals containing ${...}.
	Interpolated bool
}

// Raw is the literal as written, quotes included.
func (l *Literal) Raw() string { return l.text }

// StringValue returns the unquoted value of a string or plain template literal.
func (l *Literal) StringValue() (string, bool) {
	switch l.Kind {
	case LiteralString:
		return Unquote(l.text), true
	case LiteralTemplate:
		if l.Interpolated {
			return "", false
		}
		return Unquote(l.text), true
	}
	return "", false
}

// Number parses a numeric literal, including hex/octal/binary forms,
// separators and a leading sign.
func (l *Literal) Number() (float64, bool) {
	if l.Kind != LiteralNumber {
		return 0, false
	}
	return parseNumber(l.text)
}

func (*Literal) exprNode() {}

type Array struct {
	base
	Elems []Expr
}

// Property is one member of an object literal. Key is empty for members
// without a static key (spreads, computed keys, methods).
type Property struct {
	Key   string
	Value Expr
}

type Object struct {
	base
	Props []Property
}

// Func is an arrow function or function expression. Exactly one of Body and
// Expr is set; Expr holds a concise arrow body.
type Func struct {
	base
	Params []string
	Body   []Stmt
	Expr   Expr
}

// Calls returns the calls made directly in the function body: expression
// statements that are calls, initializers of variable declarations that are
// calls, and a concise body that is a call. Source order is kept.
func (f *Func) Calls() []*Call {
	var out []*Call
	if f.Expr != nil {
		if c, ok := f.Expr.(*Call); ok {
			out = append(out, c)
		}
		return out
	}
	for _, s := range f.Body {
		switch st := s.(type) {
		case *ExprStmt:
			if c, ok := st.X.(*Call); ok {
				out = append(out, c)
			}
		case *VarStmt:
			for _, d := range st.Decls {
				if c, ok := d.Init.(*Call); ok {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

// Raw is any expression outside the closed set, kept as source text.
type Raw struct {
	base
	Type string
}

func (*Call) exprNode()   {}
func (*Member) exprNode() {}
func (*Ident) exprNode()  {}
func (*Array) exprNode()  {}
func (*Object) exprNode() {}
func (*Func) exprNode()   {}
func (*Raw) exprNode()    {}

type ExprStmt struct {
	base
	X Expr
}

type Decl struct {
	Name string
	Init Expr // nil without an initializer
}

type VarStmt struct {
	base
	Kind  string // const, let or var
	Decls []Decl
}

type RawStmt struct {
	base
	Type string
}

func (*ExprStmt) stmtNode() {}
func (*VarStmt) stmtNode()  {}
func (*RawStmt) stmtNode()  {}

type File struct {
	Path  string
	Stmts []Stmt
	// HasErrors is set when tree-sitter recovered from syntax errors.
	HasErrors bool
}

// Calls returns the top-level expression statements that are calls.
func (f *File) Calls() []*Call {
	var out []*Call
	for _, s := range f.Stmts {
		if es, ok := s.(*ExprStmt); ok {
			if c, ok := es.X.(*Call); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// Unquote strips the surrounding quotes of a string or template literal and
// resolves JavaScript escape sequences. Text without quotes is returned
// unchanged.
func Unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	q := raw[0]
	if (q != '\'' && q != '"' && q != '`') || raw[len(raw)-1] != q {
		return raw
	}
	body := raw[1 : len(raw)-1]
	if !strings.Contains(body, `\`) {
		return body
	}

	var b strings.Builder
	rs := []rune(body)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r != '\\' || i+1 >= len(rs) {
			b.WriteRune(r)
			continue
		}
		i++
		switch rs[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
			// line continuation
		case 'u':
			n, width := unicodeEscape(rs[i+1:])
			if width == 0 {
				b.WriteRune('u')
				continue
			}
			b.WriteRune(rune(n))
			i += width
		case 'x':
			if i+2 < len(rs) {
				if n, err := strconv.ParseUint(string(rs[i+1:i+3]), 16, 8); err == nil {
					b.WriteRune(rune(n))
					i += 2
					continue
				}
			}
			b.WriteRune('x')
		default:
			b.WriteRune(rs[i])
		}
	}
	return b.String()
}

// unicodeEscape decodes the part after "\u": either XXXX or {X...}.
func unicodeEscape(rs []rune) (uint64, int) {
	if len(rs) > 0 && rs[0] == '{' {
		end := -1
		for j, r := range rs {
			if r == '}' {
				end = j
				break
			}
		}
		if end < 2 {
			return 0, 0
		}
		n, err := strconv.ParseUint(string(rs[1:end]), 16, 32)
		if err != nil {
			return 0, 0
		}
		return n, end + 1
	}
	if len(rs) < 4 {
		return 0, 0
	}
	n, err := strconv.ParseUint(string(rs[:4]), 16, 32)
	if err != nil {
		return 0, 0
	}
	return n, 4
}

func parseNumber(raw string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), "_", "")
	s = strings.TrimSuffix(s, "n")
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = strings.TrimSpace(s[1:])
	case strings.HasPrefix(s, "+"):
		s = strings.TrimSpace(s[1:])
	}

	var f float64
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		f = float64(i)
	} else if v, err := strconv.ParseFloat(s, 64); err == nil {
		f = v
	} else {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}
