// Package rubyparse builds syntax trees from Ruby source with tree-sitter.
//
// Only the shapes the matcher cares about get dedicated nodes: calls,
// constants, identifiers, symbols and keyword argument maps. Everything
// else becomes syntax.Other so that calls nested anywhere stay reachable.
package rubyparse

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"

	"deprecheck/internal/source"
	"deprecheck/internal/syntax"
)

// Parser wraps a tree-sitter parser configured for Ruby.
// A Parser is not safe for concurrent use; give each worker its own.
type Parser struct {
	ts *sitter.Parser
}

// New creates a Ruby parser.
func New() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(ruby.GetLanguage())
	return &Parser{ts: p}
}

// Close releases the underlying parser.
func (p *Parser) Close() {
	if p != nil && p.ts != nil {
		p.ts.Close()
		p.ts = nil
	}
}

// Parse parses file with a throwaway parser.
func Parse(ctx context.Context, file *source.File) (*syntax.Tree, error) {
	p := New()
	defer p.Close()
	return p.Parse(ctx, file)
}

// Parse converts file into a syntax tree. Syntax errors do not fail the
// parse: they are listed in Tree.Errors and the rest of the tree is kept.
func (p *Parser) Parse(ctx context.Context, file *source.File) (*syntax.Tree, error) {
	if file == nil {
		return nil, fmt.Errorf("rubyparse: nil file")
	}
	tree, err := p.ts.ParseCtx(ctx, nil, file.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: tree-sitter parse failed: %w", file.Path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%s: tree-sitter returned nil root node", file.Path)
	}

	c := &converter{file: file.ID, src: file.Content, scope: &localScope{vars: map[string]bool{}}}
	out := &syntax.Tree{File: file, Root: c.node(root, roleExpr)}
	if root.HasError() {
		out.Errors = c.errors(root, nil)
	}
	return out, nil
}

// role says how an identifier at this position is read.
type role uint8

const (
	roleExpr    role = iota // локальная переменная или вызов без получателя
	roleBinding             // assigned local variable or parameter
	roleName                // method name in def, alias or undef
)

type converter struct {
	file  source.FileID
	src   []byte
	scope *localScope
}

// enter opens a local scope and returns the function restoring the outer one.
func (c *converter) enter(fresh bool) func() {
	outer := c.scope
	c.scope = &localScope{vars: map[string]bool{}}
	if !fresh {
		c.scope.parent = outer
	}
	return func() { c.scope = outer }
}

func (c *converter) span(n *sitter.Node) source.Span {
	return source.Span{File: c.file, Start: n.StartByte(), End: n.EndByte()}
}

func (c *converter) text(n *sitter.Node) string {
	return n.Content(c.src)
}

func (c *converter) node(n *sitter.Node, r role) syntax.Node {
	switch n.Type() {
	case "call":
		return c.call(n)
	case "identifier":
		return c.identifier(n, r)
	case "constant":
		return syntax.NewConstant(c.span(n), c.text(n))
	case "scope_resolution":
		return c.scopeResolution(n)
	case "simple_symbol":
		return syntax.NewSymbol(c.span(n), strings.TrimPrefix(c.text(n), ":"))
	case "hash_key_symbol":
		return syntax.NewSymbol(c.span(n), c.text(n))
	case "hash":
		return c.hash(n)
	case "pair":
		key, value := c.pair(n)
		return syntax.NewOther(c.span(n), "pair", nonNil(key, value))
	}
	return c.other(n)
}

func (c *converter) identifier(n *sitter.Node, r role) syntax.Node {
	name := c.text(n)
	sp := c.span(n)
	switch r {
	case roleName:
		return syntax.NewIdentifier(sp, name)
	case roleBinding:
		c.scope.bind(name)
		return syntax.NewIdentifier(sp, name)
	}
	// имя, присвоенное раньше в этой области видимости, читается как переменная
	if c.scope.bound(name) {
		return syntax.NewIdentifier(sp, name)
	}
	return syntax.NewCall(sp, nil, name, sp, nil)
}

// call converts a tree-sitter call. A call carrying a block becomes an
// Other("block") holding the bare call and the block, so the call span
// ends with its arguments.
func (c *converter) call(n *sitter.Node) syntax.Node {
	method := n.ChildByFieldName("method")
	if method == nil || method.Type() == "argument_list" || method.StartByte() == method.EndByte() {
		return c.other(n)
	}

	var receiver syntax.Node
	if recv := n.ChildByFieldName("receiver"); recv != nil {
		receiver = c.node(recv, roleExpr)
	}

	end := method.EndByte()
	var args []syntax.Node
	if list := n.ChildByFieldName("arguments"); list != nil {
		args = c.arguments(list)
		end = list.EndByte()
	}

	sp := source.Span{File: c.file, Start: n.StartByte(), End: end}
	newCall := syntax.NewCall
	if c.safeNav(n, method) {
		newCall = syntax.NewSafeNavCall
	}
	call := newCall(sp, receiver, c.text(method), c.span(method), args)

	block := n.ChildByFieldName("block")
	if block == nil {
		return call
	}
	return syntax.NewOther(c.span(n), "block", []syntax.Node{call, c.other(block)})
}

// safeNav reports whether the call operator is &.
func (c *converter) safeNav(call, method *sitter.Node) bool {
	if op := call.ChildByFieldName("operator"); op != nil {
		return op.Type() == "&."
	}
	recv := call.ChildByFieldName("receiver")
	if recv == nil {
		return false
	}
	return strings.TrimSpace(string(c.src[recv.EndByte():method.StartByte()])) == "&."
}

// arguments converts an argument_list. The trailing run of bare pairs is
// folded into one KeywordArgs, as Ruby passes them as a single hash.
func (c *converter) arguments(list *sitter.Node) []syntax.Node {
	children := c.namedChildren(list)
	tail := len(children)
	for tail > 0 {
		t := children[tail-1].Type()
		if t != "pair" && t != "hash_splat_argument" {
			break
		}
		tail--
	}

	out := make([]syntax.Node, 0, tail+1)
	for _, ch := range children[:tail] {
		out = append(out, c.node(ch, roleExpr))
	}
	if tail < len(children) {
		run := children[tail:]
		sp := source.Span{File: c.file, Start: run[0].StartByte(), End: run[len(run)-1].EndByte()}
		out = append(out, c.keywordArgs(sp, "bare_hash", run, false))
	}
	return out
}

func (c *converter) hash(n *sitter.Node) syntax.Node {
	return c.keywordArgs(c.span(n), "hash", c.namedChildren(n), true)
}

// keywordArgs builds a KeywordArgs when every entry is a pair. Splats make
// the key set unknown, so such maps stay Other.
func (c *converter) keywordArgs(sp source.Span, typ string, entries []*sitter.Node, braced bool) syntax.Node {
	pairs := make([]syntax.Pair, 0, len(entries))
	plain := true
	for _, e := range entries {
		if e.Type() != "pair" {
			plain = false
			break
		}
		key, value := c.pair(e)
		pairs = append(pairs, syntax.Pair{Key: key, Value: value})
	}
	if plain {
		return syntax.NewKeywordArgs(sp, pairs, braced)
	}
	children := make([]syntax.Node, 0, len(entries))
	for _, e := range entries {
		children = append(children, c.node(e, roleExpr))
	}
	return syntax.NewOther(sp, typ, children)
}

func (c *converter) pair(n *sitter.Node) (key, value syntax.Node) {
	if k := n.ChildByFieldName("key"); k != nil {
		key = c.node(k, roleExpr)
	}
	if v := n.ChildByFieldName("value"); v != nil {
		value = c.node(v, roleExpr)
	}
	return key, value
}

// scopeResolution handles ::File (rooted) and A::File (scoped).
func (c *converter) scopeResolution(n *sitter.Node) syntax.Node {
	name := n.ChildByFieldName("name")
	if name == nil || name.Type() != "constant" {
		return c.other(n)
	}
	scope := n.ChildByFieldName("scope")
	if scope == nil {
		return syntax.NewRootedConstant(c.span(n), c.text(name))
	}
	return syntax.NewScopedConstant(c.span(n), c.node(scope, roleExpr), c.text(name))
}

func (c *converter) other(n *sitter.Node) syntax.Node {
	if fresh, ok := scopeKinds[n.Type()]; ok {
		defer c.enter(fresh)()
	}
	children := c.namedChildren(n)
	out := make([]syntax.Node, 0, len(children))
	binding := bindingFields[n.Type()]
	for _, ch := range children {
		r := roleExpr
		if binding != nil && binding(n, ch) {
			r = roleBinding
			if definedNames[n.Type()] {
				r = roleName
			}
		}
		out = append(out, c.node(ch, r))
	}
	return syntax.NewOther(c.span(n), n.Type(), out)
}

// namedChildren lists named children without comments.
func (c *converter) namedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		ch := n.NamedChild(i)
		if ch == nil || ch.Type() == "comment" {
			continue
		}
		out = append(out, ch)
	}
	return out
}

// errors collects ERROR and MISSING nodes. The contents of an ERROR node
// are not searched further.
func (c *converter) errors(n *sitter.Node, out []syntax.ParseError) []syntax.ParseError {
	switch {
	case n.IsMissing():
		return append(out, syntax.ParseError{
			Span:    c.span(n),
			Message: fmt.Sprintf("missing %q", n.Type()),
			Missing: true,
		})
	case n.Type() == "ERROR":
		return append(out, syntax.ParseError{
			Span:    c.span(n),
			Message: fmt.Sprintf("syntax error near %q", excerpt(c.text(n))),
		})
	case !n.HasError():
		return out
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if ch := n.Child(i); ch != nil {
			out = c.errors(ch, out)
		}
	}
	return out
}

func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	const limit = 20
	if r := []rune(s); len(r) > limit {
		return string(r[:limit]) + "..."
	}
	return s
}

func nonNil(nodes ...syntax.Node) []syntax.Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
