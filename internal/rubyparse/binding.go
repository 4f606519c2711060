package rubyparse

import sitter "github.com/smacker/go-tree-sitter"

// bindingFields tells, per parent node type, which children are names
// being bound rather than read. Identifiers there never become calls.
var bindingFields = map[string]func(parent, child *sitter.Node) bool{
	"assignment":                   field("left"),
	"operator_assignment":          field("left"),
	"method":                       field("name"),
	"singleton_method":             field("name"),
	"optional_parameter":           field("name"),
	"keyword_parameter":            field("name"),
	"for":                          field("pattern"),
	"method_parameters":            all,
	"lambda_parameters":            all,
	"block_parameters":             all,
	"parameters":                   all,
	"splat_parameter":              all,
	"hash_splat_parameter":         all,
	"block_parameter":              all,
	"destructured_parameter":       all,
	"left_assignment_list":         all,
	"destructured_left_assignment": all,
	"rest_assignment":              all,
	"exception_variable":           all,
	"alias":                        all,
	"undef":                        all,
}

// definedNames bind method names, not local variables.
var definedNames = map[string]bool{
	"method":           true,
	"singleton_method": true,
	"alias":            true,
	"undef":            true,
}

// scopeKinds: true opens a fresh local scope, false a nested one that
// still sees the enclosing locals.
var scopeKinds = map[string]bool{
	"method":           true,
	"singleton_method": true,
	"class":            true,
	"singleton_class":  true,
	"module":           true,
	"block":            false,
	"do_block":         false,
	"lambda":           false,
}

// localScope holds the local variables assigned so far, in source order.
type localScope struct {
	vars   map[string]bool
	parent *localScope // nil for a fresh scope
}

func (s *localScope) bind(name string) {
	s.vars[name] = true
}

func (s *localScope) bound(name string) bool {
	for ; s != nil; s = s.parent {
		if s.vars[name] {
			return true
		}
	}
	return false
}

func all(_, _ *sitter.Node) bool { return true }

func field(name string) func(parent, child *sitter.Node) bool {
	return func(parent, child *sitter.Node) bool {
		f := parent.ChildByFieldName(name)
		return f != nil &&
			f.StartByte() == child.StartByte() &&
			f.EndByte() == child.EndByte() &&
			f.Type() == child.Type()
	}
}
