// Package template renders license header templates for ifcollapse.
package template

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

// Vars holds the variables available in templates.
type Vars struct {
	// FileName is the base name of the file being processed (e.g., "Program.cs")
	FileName string
	// Year is the current year (e.g., 2026)
	Year int
	// Symbol is the symbol being collapsed (e.g., "NET6_0_OR_GREATER")
	Symbol string
}

// Template wraps a parsed header template.
type Template struct {
	tmpl *template.Template
	raw  string
}

// funcs returns the template function map.
func funcs() template.FuncMap {
	return template.FuncMap{
		"quote": strconv.Quote,
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
	}
}

// Parse parses a template string.
func Parse(text string) (*Template, error) {
	tmpl, err := template.New("header").Funcs(funcs()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Template{tmpl: tmpl, raw: text}, nil
}

// MustParse parses a template string and panics on error.
func MustParse(text string) *Template {
	t, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return t
}

// Render executes the template with the given variables. Leading text is kept
// as written; trailing whitespace is replaced by a single newline so the
// header always ends its last line.
func (t *Template) Render(vars Vars) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	out := strings.TrimRight(buf.String(), " \t\r\n")
	if out == "" {
		return "", nil
	}
	return out + "\n", nil
}

// Raw returns the original template string.
func (t *Template) Raw() string {
	return t.raw
}
