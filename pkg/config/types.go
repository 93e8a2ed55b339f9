package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dialect describes the directive syntax of one source language.
type Dialect struct {
	Name       string   `yaml:"name" json:"name"`
	Extensions []string `yaml:"extensions" json:"extensions"`
	// If are keywords opening a block with a condition expression
	If []string `yaml:"if" json:"if,omitempty"`
	// Ifdef are keywords opening a block on a defined symbol
	Ifdef []string `yaml:"ifdef" json:"ifdef,omitempty"`
	// Ifndef are keywords opening a block on an undefined symbol
	Ifndef []string `yaml:"ifndef" json:"ifndef,omitempty"`
	// Elif are else-if keywords
	Elif []string `yaml:"elif" json:"elif,omitempty"`
	Else []string `yaml:"else" json:"else,omitempty"`
	// Endif are keywords closing a block
	Endif []string `yaml:"endif" json:"endif,omitempty"`
	// LineComment is the line comment marker (e.g., "//")
	LineComment string `yaml:"line_comment" json:"line_comment,omitempty"`
	// BlockComment is the opening and closing block comment marker pair
	// (e.g., ["/*", "*/"])
	BlockComment []string `yaml:"block_comment" json:"block_comment,omitempty"`
	// VerbatimStrings enables @"..." strings that span lines
	VerbatimStrings bool `yaml:"verbatim_strings" json:"verbatim_strings,omitempty"`
	// RawStrings enables """...""" strings that span lines
	RawStrings bool `yaml:"raw_strings" json:"raw_strings,omitempty"`
}

// MatchesPath reports whether the dialect handles the file at path.
func (d Dialect) MatchesPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range d.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// DialectsFile represents the structure of dialects.yaml.
type DialectsFile struct {
	Dialects []Dialect `yaml:"dialects"`
}

// Hooks defines shell commands to run before and after processing.
type Hooks struct {
	// Pre are shell commands to run before processing
	Pre []string `yaml:"pre" json:"pre,omitempty"`
	// Post are shell commands to run after processing
	Post []string `yaml:"post" json:"post,omitempty"`
}

// Template can be an inline string or a reference to a file.
type Template struct {
	Inline string
	File   string
}

// UnmarshalYAML implements custom unmarshaling for Template.
// Accepts either a string (inline template) or an object with "file" field.
func (t *Template) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		t.Inline = value.Value
		return nil
	case yaml.MappingNode:
		var obj struct {
			File string `yaml:"file"`
		}
		if err := value.Decode(&obj); err != nil {
			return err // unreachable via LoadConfig: schema validation catches malformed objects first
		}
		t.File = obj.File
		return nil
	default:
		return fmt.Errorf("template must be a string or an object with 'file' field")
	}
}

// IsZero reports whether no template was configured.
func (t Template) IsZero() bool {
	return t.Inline == "" && t.File == ""
}

// Content returns the template content, loading from file if necessary.
// Relative file paths are resolved against baseDir.
func (t *Template) Content(baseDir string) (string, error) {
	if t.Inline != "" {
		return t.Inline, nil
	}
	if t.File != "" {
		path := t.File
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read template file: %w", err)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("template is empty")
}

// Dialects can be a simple array of Dialect or an object with custom/default fields.
// Simple form: dialects: []
// Extended form: dialects: { custom: [], default: true }
type Dialects struct {
	// Custom are user-defined dialects
	Custom []Dialect
	// Default indicates whether to include default dialects (default: true)
	Default *bool
}

// UseDefault returns whether default dialects should be used.
func (d *Dialects) UseDefault() bool {
	if d.Default == nil {
		return true
	}
	return *d.Default
}

// UnmarshalYAML implements custom unmarshaling for Dialects.
func (d *Dialects) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var arr []Dialect
		if err := value.Decode(&arr); err != nil {
			return err // unreachable via LoadConfig: schema validation catches malformed arrays first
		}
		d.Custom = arr
		return nil
	case yaml.MappingNode:
		var obj struct {
			Custom  []Dialect `yaml:"custom"`
			Default *bool     `yaml:"default"`
		}
		if err := value.Decode(&obj); err != nil {
			return err // unreachable via LoadConfig: schema validation catches malformed objects first
		}
		d.Custom = obj.Custom
		d.Default = obj.Default
		return nil
	default:
		return fmt.Errorf("dialects must be an array or an object with 'custom' and 'default' fields")
	}
}

// Header configures license header normalization.
type Header struct {
	// Template renders the expected header
	Template Template `yaml:"template" json:"template"`
	// KeepPhrase marks a comment paragraph that is preserved below the header
	KeepPhrase string `yaml:"keep_phrase" json:"keep_phrase,omitempty"`
}

// Enabled reports whether a header template was configured.
func (h Header) Enabled() bool {
	return !h.Template.IsZero()
}

// Config represents the user configuration file.
type Config struct {
	// Symbol is the compile-time symbol whose blocks are collapsed
	Symbol string `yaml:"symbol" json:"symbol"`
	// Defines are additional symbols considered defined when deciding which
	// directives are live
	Defines []string `yaml:"defines" json:"defines,omitempty"`
	// Patterns are the paths to process (e.g., "./...")
	Patterns []string `yaml:"patterns" json:"patterns,omitempty"`
	// Exclude are glob patterns of paths to skip
	Exclude []string `yaml:"exclude" json:"exclude,omitempty"`
	// Dialects defines directive syntaxes (custom dialects and default toggle)
	Dialects Dialects `yaml:"dialects" json:"dialects,omitempty"`
	// Header configures license header normalization
	Header Header `yaml:"header" json:"header,omitempty"`
	// Jobs is the number of files processed in parallel (0 = GOMAXPROCS)
	Jobs int `yaml:"jobs" json:"jobs,omitempty"`
	// Hooks are shell commands to run before and after processing
	Hooks Hooks `yaml:"hooks" json:"hooks,omitempty"`

	baseDir string
}
