package syntax

import (
	"deprecheck/internal/source"
)

// Kind is the tag of a node shape.
type Kind uint8

const (
	KindOther Kind = iota
	KindCall
	KindConstant
	KindIdentifier
	KindSymbol
	KindKeywordArgs
)

func (k Kind) String() string {
	switch k {
	case KindCall:
		return "call"
	case KindConstant:
		return "constant"
	case KindIdentifier:
		return "identifier"
	case KindSymbol:
		return "symbol"
	case KindKeywordArgs:
		return "keyword_args"
	default:
		return "other"
	}
}

// Node is implemented only by the node types of this package.
type Node interface {
	Kind() Kind
	Span() source.Span
	sealed()
}

type base struct {
	span source.Span
}

func (b base) Span() source.Span { return b.span }
func (base) sealed()             {}

// Call is a method invocation: receiver.selector(args).
type Call struct {
	base
	receiver     Node
	selector     string
	selectorSpan source.Span
	args         []Node
	safeNav      bool
}

// NewCall builds a call node. receiver may be nil.
func NewCall(span source.Span, receiver Node, selector string, selectorSpan source.Span, args []Node) *Call {
	return &Call{
		base:         base{span: span},
		receiver:     receiver,
		selector:     selector,
		selectorSpan: selectorSpan,
		args:         append([]Node(nil), args...),
	}
}

// NewSafeNavCall builds receiver&.selector(args).
func NewSafeNavCall(span source.Span, receiver Node, selector string, selectorSpan source.Span, args []Node) *Call {
	c := NewCall(span, receiver, selector, selectorSpan, args)
	c.safeNav = true
	return c
}

func (*Call) Kind() Kind { return KindCall }

// SafeNav reports whether the call is dispatched with &.
func (c *Call) SafeNav() bool { return c.safeNav }

// Receiver returns the receiver expression or nil for bare calls.
func (c *Call) Receiver() Node { return c.receiver }

func (c *Call) Selector() string { return c.selector }

func (c *Call) SelectorSpan() source.Span { return c.selectorSpan }

// NumArgs returns the number of arguments.
func (c *Call) NumArgs() int { return len(c.args) }

// Arg returns the i-th argument.
func (c *Call) Arg(i int) Node { return c.args[i] }

// Args returns a copy of the argument list.
func (c *Call) Args() []Node { return append([]Node(nil), c.args...) }

// Constant is a constant reference: Name, ::Name or Scope::Name.
type Constant struct {
	base
	name   string
	rooted bool
	scope  Node
}

// NewConstant builds an unqualified constant reference.
func NewConstant(span source.Span, name string) *Constant {
	return &Constant{base: base{span: span}, name: name}
}

// NewRootedConstant builds a root-qualified reference (::Name).
func NewRootedConstant(span source.Span, name string) *Constant {
	return &Constant{base: base{span: span}, name: name, rooted: true}
}

// NewScopedConstant builds a namespaced reference (Scope::Name).
func NewScopedConstant(span source.Span, scope Node, name string) *Constant {
	return &Constant{base: base{span: span}, name: name, scope: scope}
}

func (*Constant) Kind() Kind { return KindConstant }

// Name returns the last segment of the reference.
func (c *Constant) Name() string { return c.name }

// Rooted reports whether the reference was written as ::Name.
func (c *Constant) Rooted() bool { return c.rooted }

// Scope returns the namespace for Scope::Name references, nil otherwise.
func (c *Constant) Scope() Node { return c.scope }

// Identifier is a local name that is not a call.
type Identifier struct {
	base
	name string
}

func NewIdentifier(span source.Span, name string) *Identifier {
	return &Identifier{base: base{span: span}, name: name}
}

func (*Identifier) Kind() Kind { return KindIdentifier }

func (i *Identifier) Name() string { return i.name }

// Symbol is a symbol literal; Name excludes the leading colon and trailing
// colon of the key form.
type Symbol struct {
	base
	name string
}

func NewSymbol(span source.Span, name string) *Symbol {
	return &Symbol{base: base{span: span}, name: name}
}

func (*Symbol) Kind() Kind { return KindSymbol }

func (s *Symbol) Name() string { return s.name }

// Pair is one key/value entry of a KeywordArgs node.
type Pair struct {
	Key   Node
	Value Node
}

// KeywordArgs is a key/value argument map, either bare (f(a: 1)) or braced (f({a: 1})).
type KeywordArgs struct {
	base
	pairs  []Pair
	braced bool
}

func NewKeywordArgs(span source.Span, pairs []Pair, braced bool) *KeywordArgs {
	return &KeywordArgs{base: base{span: span}, pairs: append([]Pair(nil), pairs...), braced: braced}
}

func (*KeywordArgs) Kind() Kind { return KindKeywordArgs }

func (k *KeywordArgs) Len() int { return len(k.pairs) }

func (k *KeywordArgs) Pair(i int) Pair { return k.pairs[i] }

func (k *KeywordArgs) Braced() bool { return k.braced }

// KeyName returns the symbol name of the i-th key; ok is false for non-symbol keys.
func (k *KeywordArgs) KeyName(i int) (string, bool) {
	sym, ok := k.pairs[i].Key.(*Symbol)
	if !ok {
		return "", false
	}
	return sym.Name(), true
}

// Other is any node the checker does not interpret. Type is the front-end's
// node type name.
type Other struct {
	base
	typ      string
	children []Node
}

func NewOther(span source.Span, typ string, children []Node) *Other {
	return &Other{base: base{span: span}, typ: typ, children: append([]Node(nil), children...)}
}

func (*Other) Kind() Kind { return KindOther }

func (o *Other) Type() string { return o.typ }

func (o *Other) Children() []Node { return append([]Node(nil), o.children...) }
