// Package syntax defines the immutable expression tree the checker works on.
//
// The tree is a closed set of node shapes: Call, Constant, Identifier, Symbol,
// KeywordArgs and Other. Node is a sealed interface, so a type switch over
// those six types is exhaustive. Nodes are built once by a front-end (see
// internal/rubyparse) through the New* constructors and are never mutated
// afterwards; rewriting works on source text, not on the tree.
//
// Every node carries the source.Span it was parsed from. Call additionally
// keeps the span of its selector, which is where diagnostics point.
package syntax
