package match

import (
	"testing"

	"deprecheck/internal/rules"
	"deprecheck/internal/source"
	"deprecheck/internal/syntax"
)

var zero source.Span

func constant(name string) syntax.Node { return syntax.NewConstant(zero, name) }

func call(recv syntax.Node, sel string, args ...syntax.Node) *syntax.Call {
	return syntax.NewCall(zero, recv, sel, zero, args)
}

func ident(name string) syntax.Node { return syntax.NewIdentifier(zero, name) }

func kwargs(keys ...string) syntax.Node {
	pairs := make([]syntax.Pair, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, syntax.Pair{Key: syntax.NewSymbol(zero, k), Value: syntax.NewOther(zero, "string", nil)})
	}
	return syntax.NewKeywordArgs(zero, pairs, false)
}

var (
	fileExists = rules.Rule{Constant: "File", Method: "exists?", Replacement: "File.exist?"}
	dirExists  = rules.Rule{Constant: "Dir", Method: "exists?", Replacement: "Dir.exist?"}
	iterator   = rules.Rule{Method: "iterator?", Replacement: "block_given?"}
	fileOpen   = rules.Rule{Constant: "File", Method: "open", Replacement: "File.new", ArgumentName: "mode"}
)

func TestMatchesBuiltins(t *testing.T) {
	tests := []struct {
		name string
		node syntax.Node
		rule rules.Rule
		want bool
	}{
		{"File.exists?(path)", call(constant("File"), "exists?", ident("path")), fileExists, true},
		{"::File.exists?(path)", call(syntax.NewRootedConstant(zero, "File"), "exists?", ident("path")), fileExists, true},
		{"Dir.exists?(path)", call(constant("Dir"), "exists?", ident("path")), dirExists, true},
		{"iterator?", call(nil, "iterator?"), iterator, true},
		{"iterator? with args still matches", call(nil, "iterator?", ident("x")), iterator, true},

		{"wrong selector", call(constant("File"), "exist?", ident("path")), fileExists, false},
		{"selector is case sensitive", call(constant("File"), "Exists?", ident("path")), fileExists, false},
		{"wrong receiver", call(constant("Dir"), "exists?", ident("path")), fileExists, false},
		{"missing receiver", call(nil, "exists?", ident("path")), fileExists, false},
		{"receiver is not a constant", call(ident("file"), "exists?"), fileExists, false},
		{"namespaced receiver", call(syntax.NewScopedConstant(zero, constant("A"), "File"), "exists?"), fileExists, false},
		{"unexpected receiver", call(constant("Kernel"), "iterator?"), iterator, false},
		{"not a call", ident("iterator?"), iterator, false},
		{"constant node", constant("File"), fileExists, false},
		{"safe navigation", syntax.NewSafeNavCall(zero, constant("File"), "exists?", zero, []syntax.Node{ident("path")}), fileExists, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.node, tt.rule); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesArgumentKey(t *testing.T) {
	tests := []struct {
		name string
		node syntax.Node
		want bool
	}{
		{`File.open(mode: "r")`, call(constant("File"), "open", kwargs("mode")), true},
		{`File.open({mode: "r"})`, call(constant("File"), "open", syntax.NewKeywordArgs(zero, []syntax.Pair{{Key: syntax.NewSymbol(zero, "mode")}}, true)), true},
		{`File.open(mode: "r", encoding: "utf-8")`, call(constant("File"), "open", kwargs("mode", "encoding")), false},
		{`File.open("r")`, call(constant("File"), "open", syntax.NewOther(zero, "string", nil)), false},
		{`File.open`, call(constant("File"), "open"), false},
		{`File.open(enc: "r")`, call(constant("File"), "open", kwargs("enc")), false},
		{`File.open(path, mode: "r")`, call(constant("File"), "open", ident("path"), kwargs("mode")), false},
		{`File.open("mode" => "r")`, call(constant("File"), "open", syntax.NewKeywordArgs(zero, []syntax.Pair{{Key: syntax.NewOther(zero, "string", nil)}}, false)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.node, fileOpen); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchAllYieldsEveryRule(t *testing.T) {
	rs, err := rules.New(rules.Builtins(), []rules.Entry{
		{Constant: "File", Method: "exists?", Replacement: "File.file?"},
	})
	if err != nil {
		t.Fatalf("rules.New: %v", err)
	}
	got := MatchAll(call(constant("File"), "exists?", ident("p")), rs)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].Index != 0 || got[1].Index != 3 {
		t.Errorf("matches out of rule-set order: %d, %d", got[0].Index, got[1].Index)
	}
	if got[1].Rule.Replacement != "File.file?" {
		t.Errorf("second match rule = %+v", got[1].Rule)
	}

	if len(MatchAll(call(constant("File"), "exist?"), rs)) != 0 {
		t.Errorf("already-correct call must not match")
	}
}

func TestMatchesPanicsOnEmptySelector(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for call without selector")
		}
	}()
	Matches(call(nil, ""), iterator)
}
