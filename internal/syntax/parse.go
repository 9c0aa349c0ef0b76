package syntax

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

var (
	ErrInvalidContent = errors.New("invalid source content")
	ErrParse          = errors.New("parse failed")
)

// Parse converts src into a File. The TSX grammar is used for .tsx and .jsx
// paths, the TypeScript grammar otherwise.
func Parse(ctx context.Context, src []byte, path string) (*File, error) {
	if !utf8.Valid(src) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidContent, path)
	}

	parser := sitter.NewParser()
	defer parser.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx", ".jsx":
		parser.SetLanguage(tsx.GetLanguage())
	default:
		parser.SetLanguage(typescript.GetLanguage())
	}

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%w: %s: empty tree", ErrParse, path)
	}

	c := converter{src: src}
	f := &File{Path: path, HasErrors: root.HasError()}
	for _, n := range c.named(root) {
		f.Stmts = append(f.Stmts, c.stmt(n))
	}
	return f, nil
}

func ParseFile(ctx context.Context, path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(ctx, src, path)
}

type converter struct {
	src []byte
}

func (c converter) base(n *sitter.Node) base {
	return base{text: n.Content(c.src), line: int(n.StartPoint().Row) + 1}
}

// named returns the named children of n, comments excluded.
func (c converter) named(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func (c converter) first(n *sitter.Node) *sitter.Node {
	if kids := c.named(n); len(kids) > 0 {
		return kids[0]
	}
	return nil
}

func (c converter) stmt(n *sitter.Node) Stmt {
	switch n.Type() {
	case "expression_statement":
		if x := c.first(n); x != nil {
			return &ExprStmt{base: c.base(n), X: c.expr(x)}
		}
	case "lexical_declaration", "variable_declaration":
		vs := &VarStmt{base: c.base(n), Kind: "var"}
		if kw := n.Child(0); kw != nil && !kw.IsNamed() {
			vs.Kind = kw.Type()
		}
		for _, d := range c.named(n) {
			if d.Type() != "variable_declarator" {
				continue
			}
			decl := Decl{}
			if name := d.ChildByFieldName("name"); name != nil {
				decl.Name = name.Content(c.src)
			}
			if value := d.ChildByFieldName("value"); value != nil {
				decl.Init = c.expr(value)
			}
			vs.Decls = append(vs.Decls, decl)
		}
		return vs
	}
	return &RawStmt{base: c.base(n), Type: n.Type()}
}

func (c converter) expr(n *sitter.Node) Expr {
	switch n.Type() {
	case "await_expression", "parenthesized_expression", "as_expression",
		"satisfies_expression", "non_null_expression":
		if inner := c.first(n); inner != nil {
			return c.expr(inner)
		}

	case "call_expression":
		call := &Call{base: c.base(n)}
		if fn := n.ChildByFieldName("function"); fn != nil {
			call.Callee = c.expr(fn)
		} else {
			call.Callee = &Raw{base: c.base(n), Type: n.Type()}
		}
		if args := n.ChildByFieldName("arguments"); args != nil && args.Type() == "arguments" {
			for _, a := range c.named(args) {
				call.Args = append(call.Args, c.expr(a))
			}
		}
		return call

	case "member_expression":
		m := &Member{base: c.base(n)}
		if obj := n.ChildByFieldName("object"); obj != nil {
			m.Object = c.expr(obj)
		}
		if prop := n.ChildByFieldName("property"); prop != nil {
			m.Property = prop.Content(c.src)
		}
		return m

	case "identifier", "this", "super":
		return &Ident{base: c.base(n), Name: n.Content(c.src)}

	case "string":
		return &Literal{base: c.base(n), Kind: LiteralString}
	case "number":
		return &Literal{base: c.base(n), Kind: LiteralNumber}
	case "true", "false":
		return &Literal{base: c.base(n), Kind: LiteralBool}
	case "null":
		return &Literal{base: c.base(n), Kind: LiteralNull}
	case "undefined":
		return &Literal{base: c.base(n), Kind: LiteralUndefined}
	case "regex":
		return &Literal{base: c.base(n), Kind: LiteralRegex}
	case "template_string":
		lit := &Literal{base: c.base(n), Kind: LiteralTemplate}
		for _, part := range c.named(n) {
			if part.Type() == "template_substitution" {
				lit.Interpolated = true
				break
			}
		}
		return lit

	case "unary_expression":
		op := n.ChildByFieldName("operator")
		arg := n.ChildByFieldName("argument")
		if op != nil && arg != nil && arg.Type() == "number" {
			if o := op.Type(); o == "-" || o == "+" {
				return &Literal{base: c.base(n), Kind: LiteralNumber}
			}
		}

	case "array":
		arr := &Array{base: c.base(n)}
		for _, e := range c.named(n) {
			arr.Elems = append(arr.Elems, c.expr(e))
		}
		return arr

	case "object":
		obj := &Object{base: c.base(n)}
		for _, p := range c.named(n) {
			obj.Props = append(obj.Props, c.property(p))
		}
		return obj

	case "arrow_function":
		fn := &Func{base: c.base(n)}
		if param := n.ChildByFieldName("parameter"); param != nil {
			fn.Params = []string{param.Content(c.src)}
		} else if params := n.ChildByFieldName("parameters"); params != nil {
			fn.Params = c.params(params)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			if body.Type() == "statement_block" {
				fn.Body = c.block(body)
			} else {
				fn.Expr = c.expr(body)
			}
		}
		return fn

	case "function_expression", "function", "generator_function":
		fn := &Func{base: c.base(n)}
		if params := n.ChildByFieldName("parameters"); params != nil {
			fn.Params = c.params(params)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			fn.Body = c.block(body)
		}
		return fn
	}
	return &Raw{base: c.base(n), Type: n.Type()}
}

func (c converter) property(p *sitter.Node) Property {
	switch p.Type() {
	case "pair":
		prop := Property{}
		if key := p.ChildByFieldName("key"); key != nil {
			switch key.Type() {
			case "property_identifier", "number":
				prop.Key = key.Content(c.src)
			case "string":
				prop.Key = Unquote(key.Content(c.src))
			}
		}
		if value := p.ChildByFieldName("value"); value != nil {
			prop.Value = c.expr(value)
		}
		if prop.Value == nil {
			prop.Value = &Raw{base: c.base(p), Type: p.Type()}
		}
		return prop
	case "shorthand_property_identifier":
		name := p.Content(c.src)
		return Property{Key: name, Value: &Ident{base: c.base(p), Name: name}}
	}
	return Property{Value: &Raw{base: c.base(p), Type: p.Type()}}
}

func (c converter) params(n *sitter.Node) []string {
	var out []string
	for _, p := range c.named(n) {
		if pat := p.ChildByFieldName("pattern"); pat != nil {
			out = append(out, pat.Content(c.src))
			continue
		}
		out = append(out, p.Content(c.src))
	}
	return out
}

func (c converter) block(n *sitter.Node) []Stmt {
	var out []Stmt
	for _, s := range c.named(n) {
		out = append(out, c.stmt(s))
	}
	return out
}
