package scan

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mpyw/ifcollapse/pkg/directive"
)

func TestParseCondition(t *testing.T) {
	sym := &directive.Ident{Name: "SYM"}
	other := &directive.Ident{Name: "OTHER"}

	tests := map[string]struct {
		input string
		want  directive.Expr
	}{
		"identifier": {
			input: " SYM ",
			want:  sym,
		},
		"negation": {
			input: "!SYM",
			want:  &directive.Not{X: sym},
		},
		"negation with space": {
			input: "! SYM",
			want:  &directive.Not{X: sym},
		},
		"and binds tighter than or": {
			input: "A || SYM && OTHER",
			want: &directive.Binary{
				Op: "||",
				X:  &directive.Ident{Name: "A"},
				Y:  &directive.Binary{Op: "&&", X: sym, Y: other},
			},
		},
		"equality": {
			input: "SYM == true",
			want:  &directive.Binary{Op: "==", X: sym, Y: &directive.Literal{Value: true}},
		},
		"parenthesized negation": {
			input: "!(SYM)",
			want:  &directive.Not{X: &directive.Paren{X: sym}},
		},
		"defined call": {
			input: "defined(SYM)",
			want:  &directive.Call{Func: "defined", Args: []directive.Expr{sym}},
		},
		"defined without parens": {
			input: "defined SYM",
			want:  &directive.Call{Func: "defined", Args: []directive.Expr{sym}},
		},
		"call with two args": {
			input: "canImport(UIKit, OTHER)",
			want:  &directive.Call{Func: "canImport", Args: []directive.Expr{&directive.Ident{Name: "UIKit"}, other}},
		},
		"numeric zero": {
			input: "0",
			want:  &directive.Literal{Value: false},
		},
		"numeric one": {
			input: "1",
			want:  &directive.Literal{Value: true},
		},
		"dangling operator": {
			input: "SYM &&",
			want:  &directive.BadExpr{Text: "SYM &&"},
		},
		"unclosed paren": {
			input: "(SYM",
			want:  &directive.BadExpr{Text: "(SYM"},
		},
		"trailing token": {
			input: "SYM OTHER",
			want:  &directive.BadExpr{Text: "SYM OTHER"},
		},
		"unknown character": {
			input: "SYM > 1",
			want:  &directive.BadExpr{Text: "SYM > 1"},
		},
		"empty": {
			input: "",
			want:  &directive.BadExpr{Text: ""},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := ParseCondition(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseCondition(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestEval(t *testing.T) {
	defines := map[string]bool{"SYM": true, "DEBUG": true}

	tests := map[string]struct {
		input string
		want  bool
	}{
		"defined symbol":       {input: "SYM", want: true},
		"undefined symbol":     {input: "OTHER", want: false},
		"negated":              {input: "!SYM", want: false},
		"and":                  {input: "SYM && OTHER", want: false},
		"or":                   {input: "SYM || OTHER", want: true},
		"equality":             {input: "SYM == DEBUG", want: true},
		"inequality":           {input: "SYM != OTHER", want: true},
		"literal":              {input: "true && !false", want: true},
		"defined":              {input: "defined(SYM)", want: true},
		"defined parenthesize": {input: "defined((OTHER))", want: false},
		"unknown call":         {input: "os(iOS)", want: false},
		"bad expression":       {input: "SYM &&", want: false},
		"nested parens":        {input: "(SYM && (DEBUG || OTHER))", want: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Eval(ParseCondition(tt.input), defines); got != tt.want {
				t.Errorf("Eval(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
