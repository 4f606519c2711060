// Package match decides whether a syntax node is an offence against a rule.
// Everything here is a pure function of its inputs.
package match

import (
	"fmt"

	"deprecheck/internal/rules"
	"deprecheck/internal/syntax"
)

// Match links an offending call to the rule it violates.
// Index is the rule position inside the RuleSet.
type Match struct {
	Call  *syntax.Call
	Rule  rules.Rule
	Index int
}

// Matches reports whether n is a call that r flags.
func Matches(n syntax.Node, r rules.Rule) bool {
	call, ok := n.(*syntax.Call)
	if !ok || call == nil {
		return false
	}
	if call.Selector() == "" {
		panic(fmt.Sprintf("match: call at %s has no selector", call.Span()))
	}
	// &. меняет семантику на nil-получателе; такие вызовы не трогаем
	if call.SafeNav() {
		return false
	}

	if !receiverMatches(call.Receiver(), r.Constant) {
		return false
	}
	if call.Selector() != r.Method {
		return false
	}
	if r.ArgumentName == "" {
		return true
	}
	return soleKeyword(call, r.ArgumentName)
}

// MatchAll evaluates every rule of rs against n and returns one Match per
// matching rule in rule-set order.
func MatchAll(n syntax.Node, rs *rules.RuleSet) []Match {
	call, ok := n.(*syntax.Call)
	if !ok {
		return nil
	}
	var out []Match
	for i := 0; i < rs.Len(); i++ {
		r := rs.At(i)
		if Matches(call, r) {
			out = append(out, Match{Call: call, Rule: r, Index: i})
		}
	}
	return out
}

// receiverMatches: no constant means no receiver at all; otherwise the
// receiver must be that constant, bare or root-qualified.
func receiverMatches(recv syntax.Node, constant string) bool {
	if constant == "" {
		return recv == nil
	}
	c, ok := recv.(*syntax.Constant)
	if !ok {
		return false
	}
	// A::File is a different constant; only name-based equality is supported.
	if c.Scope() != nil {
		return false
	}
	return c.Name() == constant
}

// soleKeyword: exactly one argument, a keyword map with exactly one entry
// keyed by the symbol key.
func soleKeyword(call *syntax.Call, key string) bool {
	if call.NumArgs() != 1 {
		return false
	}
	kw, ok := call.Arg(0).(*syntax.KeywordArgs)
	if !ok || kw.Len() != 1 {
		return false
	}
	name, ok := kw.KeyName(0)
	return ok && name == key
}
