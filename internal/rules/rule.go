package rules

import "strings"

// Rule describes one deprecated call and what replaces it.
//
// Constant and ArgumentName are optional: an empty Constant means the call
// must have no receiver, an empty ArgumentName means arguments are not
// inspected.
type Rule struct {
	Method       string
	Replacement  string
	Constant     string
	ArgumentName string
}

// Deprecated returns the display form of the deprecated call:
// Const.method(key:), Const.method or method.
func (r Rule) Deprecated() string {
	var b strings.Builder
	if r.Constant != "" {
		b.WriteString(r.Constant)
		b.WriteByte('.')
	}
	b.WriteString(r.Method)
	if r.Constant != "" && r.ArgumentName != "" {
		b.WriteByte('(')
		b.WriteString(r.ArgumentName)
		b.WriteString(":)")
	}
	return b.String()
}

// Fixable reports whether the rule carries a replacement usable for a rewrite.
func (r Rule) Fixable() bool {
	return strings.TrimSpace(r.Replacement) != ""
}

// builtins is the fixed default table; order is evaluation order.
var builtins = [...]Rule{
	{Constant: "File", Method: "exists?", Replacement: "File.exist?"},
	{Constant: "Dir", Method: "exists?", Replacement: "Dir.exist?"},
	{Method: "iterator?", Replacement: "block_given?"},
}

// Builtins returns a fresh copy of the default rule table.
func Builtins() []Rule {
	out := make([]Rule, len(builtins))
	copy(out, builtins[:])
	return out
}
