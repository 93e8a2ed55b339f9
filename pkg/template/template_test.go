package template_test

import (
	"testing"

	"github.com/mpyw/ifcollapse/pkg/template"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input   string
		wantErr bool
	}{
		"plain text": {
			input: "// Copyright Example Corp.",
		},
		"with year": {
			input: "// Copyright {{.Year}} Example Corp.",
		},
		"with quote function": {
			input: "// {{.FileName | quote}}",
		},
		"with case functions": {
			input: "// {{.Symbol | upper}} {{.Symbol | lower}}",
		},
		"multiline": {
			input: `// Copyright {{.Year}} Example Corp.
// Licensed under the MIT License.`,
		},
		"invalid template": {
			input:   "// {{.Year}",
			wantErr: true,
		},
		"unknown function": {
			input:   "// {{.Year | backtick}}",
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := template.Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTemplate_Render(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		tmpl string
		vars template.Vars
		want string
	}{
		"plain text gets trailing newline": {
			tmpl: "// Copyright Example Corp.",
			want: "// Copyright Example Corp.\n",
		},
		"year": {
			tmpl: "// Copyright (c) {{.Year}} Example Corp.",
			vars: template.Vars{Year: 2026},
			want: "// Copyright (c) 2026 Example Corp.\n",
		},
		"quoted file name": {
			tmpl: "// File: {{.FileName | quote}}",
			vars: template.Vars{FileName: "Program.cs"},
			want: "// File: \"Program.cs\"\n",
		},
		"case functions": {
			tmpl: "// {{.Symbol | lower}} / {{.Symbol | upper}}",
			vars: template.Vars{Symbol: "Net6_0"},
			want: "// net6_0 / NET6_0\n",
		},
		"trailing blank lines collapse": {
			tmpl: "// Licensed under MIT.\n\n\n",
			want: "// Licensed under MIT.\n",
		},
		"leading indentation kept": {
			tmpl: "  // indented\n",
			want: "  // indented\n",
		},
		"multiline with conditional": {
			tmpl: `// Copyright {{.Year}} Example Corp.
{{if .Symbol}}// Built without {{.Symbol}} guards.
{{end}}`,
			vars: template.Vars{Year: 2026, Symbol: "LEGACY"},
			want: "// Copyright 2026 Example Corp.\n// Built without LEGACY guards.\n",
		},
		"empty output": {
			tmpl: "{{if .Symbol}}// set{{end}}",
			want: "",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tmpl, err := template.Parse(tt.tmpl)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			got, err := tmpl.Render(tt.vars)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("Render() =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestTemplate_Raw(t *testing.T) {
	t.Parallel()

	raw := "// Copyright {{.Year}}"
	tmpl := template.MustParse(raw)

	if tmpl.Raw() != raw {
		t.Errorf("Raw() = %q, want %q", tmpl.Raw(), raw)
	}
}

func TestMustParse_Panic(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Error("MustParse() should panic on invalid template")
		}
	}()

	template.MustParse(`{{.Invalid`)
}

func TestTemplate_Render_Error(t *testing.T) {
	t.Parallel()

	tmpl, err := template.Parse(`{{.NonExistent.Field}}`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	_, err = tmpl.Render(template.Vars{})
	if err == nil {
		t.Error("Render() should error when accessing non-existent field")
	}
}
