package scan_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mpyw/ifcollapse/pkg/config"
	"github.com/mpyw/ifcollapse/pkg/directive"
	"github.com/mpyw/ifcollapse/pkg/scan"
)

var csharp = config.Dialect{
	Name:            "csharp",
	Extensions:      []string{".cs"},
	If:              []string{"if"},
	Elif:            []string{"elif"},
	Else:            []string{"else"},
	Endif:           []string{"endif"},
	LineComment:     "//",
	BlockComment:    []string{"/*", "*/"},
	VerbatimStrings: true,
	RawStrings:      true,
}

var cDialect = config.Dialect{
	Name:         "c",
	Extensions:   []string{".c"},
	If:           []string{"if"},
	Ifdef:        []string{"ifdef"},
	Ifndef:       []string{"ifndef"},
	Elif:         []string{"elif"},
	Else:         []string{"else"},
	Endif:        []string{"endif"},
	LineComment:  "//",
	BlockComment: []string{"/*", "*/"},
}

var fsharp = config.Dialect{
	Name:            "fsharp",
	Extensions:      []string{".fs"},
	If:              []string{"if"},
	Else:            []string{"else"},
	Endif:           []string{"endif"},
	LineComment:     "//",
	BlockComment:    []string{"(*", "*)"},
	VerbatimStrings: true,
	RawStrings:      true,
}

func TestParse_Directives(t *testing.T) {
	src := "using System;\n" +
		"    #if SYM // keep\n" +
		"A();\n" +
		"#else  \r\n" +
		"B();\n" +
		"#endif"

	doc := scan.Parse(src, csharp, nil)
	nodes := doc.Directives()
	if len(nodes) != 3 {
		t.Fatalf("Directives() = %d nodes, want 3", len(nodes))
	}

	type got struct {
		Kind     directive.Kind
		Text     string
		Trailing []directive.TriviaKind
		Line     int
	}
	project := func(n *directive.Node) got {
		var kinds []directive.TriviaKind
		for _, tr := range n.Trailing {
			kinds = append(kinds, tr.Kind)
		}
		return got{Kind: n.Kind, Text: src[n.Span.Start:n.Span.End], Trailing: kinds, Line: n.Line}
	}

	want := []got{
		{Kind: directive.Open, Text: "    #if SYM // keep", Trailing: []directive.TriviaKind{directive.EndOfLine}, Line: 2},
		{Kind: directive.Else, Text: "#else", Trailing: []directive.TriviaKind{directive.Whitespace, directive.EndOfLine}, Line: 4},
		{Kind: directive.Close, Text: "#endif", Line: 6},
	}
	var gotNodes []got
	for _, n := range nodes {
		gotNodes = append(gotNodes, project(n))
	}
	if diff := cmp.Diff(want, gotNodes); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}

	if c, ok := directive.Recognize(nodes[0].Cond); !ok || c.Symbol != "SYM" || c.Negated {
		t.Errorf("open condition = %v, want bare SYM", nodes[0].Cond)
	}

	elseSpan := directive.LocateSpan(nodes[1])
	if got := src[elseSpan.Start:elseSpan.End]; got != "#else  \r\n" {
		t.Errorf("LocateSpan(else) covers %q", got)
	}
}

func TestParse_IgnoresOtherDirectives(t *testing.T) {
	src := "#region Foo\n#define X\n#pragma warning disable\n# \n#if X\n#endif\n#endregion\n"
	doc := scan.Parse(src, csharp, nil)
	if n := len(doc.Directives()); n != 2 {
		t.Errorf("Directives() = %d nodes, want 2", n)
	}
}

func TestParse_HashNotAtLineStart(t *testing.T) {
	doc := scan.Parse("var s = \"#if SYM\";\n", csharp, nil)
	if n := len(doc.Directives()); n != 0 {
		t.Errorf("Directives() = %d nodes, want 0", n)
	}
}

func TestParse_CommentsAndStrings(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		src       string
		dialect   config.Dialect
		wantLines []int
	}{
		"block comment": {
			src:       "/*\n#if SYM\nA\n#else\nB\n#endif\n*/\n#if SYM\n#endif\n",
			dialect:   csharp,
			wantLines: []int{8, 9},
		},
		"block comment closed on its line": {
			src:       "/* note */ x();\n#if SYM\n#endif\n",
			dialect:   csharp,
			wantLines: []int{2, 3},
		},
		"block comment opened after code": {
			src:       "x(); /* begin\n#if SYM\n#endif\nend */\n",
			dialect:   csharp,
			wantLines: nil,
		},
		"verbatim string": {
			src:       "var s = @\"\n#if SYM\n\"\"quoted\"\"\n#endif\n\";\n#if SYM\n#endif\n",
			dialect:   csharp,
			wantLines: []int{6, 7},
		},
		"interpolated verbatim string": {
			src:       "var s = $@\"\n#if SYM\n#endif\n\";\n",
			dialect:   csharp,
			wantLines: nil,
		},
		"raw string": {
			src:       "var s = \"\"\"\n#if SYM\nA\n#endif\n\"\"\";\n#if SYM\n#endif\n",
			dialect:   csharp,
			wantLines: []int{6, 7},
		},
		"raw string with longer delimiter": {
			src:       "var s = \"\"\"\"\n\"\"\"\n#if SYM\n#endif\n\"\"\"\";\n#if SYM\n#endif\n",
			dialect:   csharp,
			wantLines: []int{6, 7},
		},
		"raw string on one line": {
			src:       "var s = \"\"\"a\"\"\";\n#if SYM\n#endif\n",
			dialect:   csharp,
			wantLines: []int{2, 3},
		},
		"comment marker in string": {
			src:       "var s = \"a\\\"/*\";\n#if SYM\n#endif\n",
			dialect:   csharp,
			wantLines: []int{2, 3},
		},
		"string marker in line comment": {
			src:       "// @\" /*\n#if SYM\n#endif\n",
			dialect:   csharp,
			wantLines: []int{2, 3},
		},
		"quote character literal": {
			src:       "var c = '\"'; var d = '\\'';\n#if SYM\n#endif\n",
			dialect:   csharp,
			wantLines: []int{2, 3},
		},
		"no verbatim strings in c": {
			src:       "x = @\"\n#if SYM\n#endif\n",
			dialect:   cDialect,
			wantLines: []int{2, 3},
		},
		"fsharp block comment": {
			src:       "(*\n#if SYM\n#endif\n*)\nlet f = (*) 2\n#if SYM\n#endif\n",
			dialect:   fsharp,
			wantLines: []int{6, 7},
		},
		"fsharp type parameter": {
			src:       "let id (x: 'a) = x\n#if SYM\n#endif\n",
			dialect:   fsharp,
			wantLines: []int{2, 3},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var got []int
			for _, n := range scan.Parse(tt.src, tt.dialect, nil).Directives() {
				got = append(got, n.Line)
			}
			if diff := cmp.Diff(tt.wantLines, got); diff != "" {
				t.Errorf("directive lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_IfdefIfndef(t *testing.T) {
	src := "#ifdef SYM\n#endif\n#ifndef SYM\n#endif\n#ifdef\n#endif\n"
	nodes := scan.Parse(src, cDialect, nil).Directives()

	tests := map[string]struct {
		node   *directive.Node
		want   directive.ConditionMatch
		wantOK bool
	}{
		"ifdef":       {node: nodes[0], want: directive.ConditionMatch{Symbol: "SYM"}, wantOK: true},
		"ifndef":      {node: nodes[2], want: directive.ConditionMatch{Symbol: "SYM", Negated: true}, wantOK: true},
		"empty ifdef": {node: nodes[4]},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := directive.Recognize(tt.node.Cond)
			if ok != tt.wantOK {
				t.Fatalf("Recognize() ok = %v, want %v", ok, tt.wantOK)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Recognize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_ElseIf(t *testing.T) {
	nodes := scan.Parse("#if A\n#elif B\n#else\n#endif\n", csharp, nil).Directives()
	if !nodes[1].IsElseIf() {
		t.Error("elif should be an else-if node")
	}
	if nodes[2].IsElseIf() {
		t.Error("else should not be an else-if node")
	}
}

func TestParse_IsActive(t *testing.T) {
	src := "#if SYM\n" + // 0: top level, active
		"#if !SYM\n" + // 1: inside taken branch, active
		"#endif\n" + // 2
		"#else\n" + // 3
		"#if SYM\n" + // 4: inside dead else branch, inactive
		"#endif\n" + // 5
		"#endif\n" + // 6
		"#if false\n" + // 7: active
		"#if SYM\n" + // 8: inactive
		"#endif\n" + // 9
		"#elif OTHER\n" + // 10
		"#if SYM\n" + // 11: OTHER undefined, inactive
		"#endif\n" + // 12
		"#elif SYM\n" + // 13
		"#if SYM\n" + // 14: active
		"#endif\n" + // 15
		"#endif\n" + // 16
		"#endif\n" // 17: stray

	doc := scan.Parse(src, csharp, map[string]bool{"SYM": true})
	nodes := doc.Directives()

	want := map[int]bool{0: true, 1: true, 4: false, 7: true, 8: false, 11: false, 14: true, 17: false}
	for i, w := range want {
		if got := doc.IsActive(nodes[i]); got != w {
			t.Errorf("IsActive(node %d, line %d) = %v, want %v", i, nodes[i].Line, got, w)
		}
	}
}

func TestDocument_Position(t *testing.T) {
	src := "ab\ncd\r\nef"
	doc := scan.Parse(src, csharp, nil)

	tests := map[string]struct {
		offset   int
		wantLine int
		wantCol  int
	}{
		"start":            {offset: 0, wantLine: 1, wantCol: 1},
		"end of line one":  {offset: 2, wantLine: 1, wantCol: 3},
		"line two":         {offset: 4, wantLine: 2, wantCol: 2},
		"after crlf":       {offset: 7, wantLine: 3, wantCol: 1},
		"end of last line": {offset: 9, wantLine: 3, wantCol: 3},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			line, col := doc.Position(tt.offset)
			if line != tt.wantLine || col != tt.wantCol {
				t.Errorf("Position(%d) = %d:%d, want %d:%d", tt.offset, line, col, tt.wantLine, tt.wantCol)
			}
		})
	}

	if got := doc.LineText(2); got != "cd" {
		t.Errorf("LineText(2) = %q, want %q", got, "cd")
	}
	if got := doc.LineText(4); got != "" {
		t.Errorf("LineText(4) = %q, want empty", got)
	}
}

func TestParse_Empty(t *testing.T) {
	doc := scan.Parse("", csharp, nil)
	if len(doc.Directives()) != 0 {
		t.Error("empty source should have no directives")
	}
	if line, col := doc.Position(0); line != 1 || col != 1 {
		t.Errorf("Position(0) = %d:%d, want 1:1", line, col)
	}
}
