// Package testkit holds checks shared by parser and checker tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"deprecheck/internal/syntax"
)

// CheckSpanInvariants runs a minimal set of span invariants on a converted tree:
// 1) every node span points at the tree's file, is not inverted and lies within the content
// 2) a call's selector lies within the call span and after its receiver
// 3) a call's arguments start after the selector
func CheckSpanInvariants(tree *syntax.Tree) error {
	if tree == nil || tree.File == nil {
		return fmt.Errorf("nil tree or file")
	}
	if tree.Root == nil {
		return nil
	}
	lenContent, err := safecast.Conv[uint32](len(tree.File.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	var firstErr error
	syntax.Walk(tree.Root, func(n syntax.Node) bool {
		if firstErr != nil {
			return false
		}
		sp := n.Span()
		switch {
		case sp.File != tree.File.ID:
			firstErr = fmt.Errorf("%s span points to different file id: got=%d want=%d", n.Kind(), sp.File, tree.File.ID)
		case sp.End < sp.Start:
			firstErr = fmt.Errorf("%s span is inverted: %v", n.Kind(), sp)
		case sp.End > lenContent:
			firstErr = fmt.Errorf("%s span end beyond content: %d > %d", n.Kind(), sp.End, lenContent)
		}
		if firstErr != nil {
			return false
		}
		if call, ok := n.(*syntax.Call); ok {
			firstErr = checkCall(call)
		}
		return firstErr == nil
	})
	return firstErr
}

func checkCall(call *syntax.Call) error {
	sp, sel := call.Span(), call.SelectorSpan()
	if !sp.Contains(sel) {
		return fmt.Errorf("call %q: selector %v outside call %v", call.Selector(), sel, sp)
	}
	if recv := call.Receiver(); recv != nil && recv.Span().End > sel.Start {
		return fmt.Errorf("call %q: receiver %v ends after selector %v", call.Selector(), recv.Span(), sel)
	}
	for i := range call.NumArgs() {
		if arg := call.Arg(i); arg.Span().Start < sel.End {
			return fmt.Errorf("call %q: argument %d at %v starts before selector end", call.Selector(), i, arg.Span())
		}
	}
	return nil
}
