package config

import (
	"path/filepath"
	"strings"
)

// DialectRegistry maps file extensions to dialects.
type DialectRegistry struct {
	dialects map[string]Dialect // key: lowercased extension including the dot
}

// NewDialectRegistry creates a registry, optionally loading default dialects.
func NewDialectRegistry(includeDefaults bool) *DialectRegistry {
	r := &DialectRegistry{
		dialects: make(map[string]Dialect),
	}
	if includeDefaults {
		for _, d := range defaultDialects {
			r.Register(d)
		}
	}
	return r
}

// NewDialectRegistryFromConfig creates a registry honoring the dialects
// section of cfg. Custom dialects override defaults for the same extension.
func NewDialectRegistryFromConfig(cfg *Config) *DialectRegistry {
	r := NewDialectRegistry(cfg.Dialects.UseDefault())
	for _, d := range cfg.Dialects.Custom {
		r.Register(d)
	}
	return r
}

// Register adds a dialect for each of its extensions.
func (r *DialectRegistry) Register(d Dialect) {
	for _, ext := range d.Extensions {
		r.dialects[normalizeExt(ext)] = d
	}
}

// Lookup finds a dialect by extension (with or without the leading dot).
func (r *DialectRegistry) Lookup(ext string) (Dialect, bool) {
	d, ok := r.dialects[normalizeExt(ext)]
	return d, ok
}

// ForPath finds the dialect handling the file at path.
func (r *DialectRegistry) ForPath(path string) (Dialect, bool) {
	ext := filepath.Ext(path)
	if ext == "" {
		return Dialect{}, false
	}
	return r.Lookup(ext)
}

// All returns all registered dialects, one entry per name.
func (r *DialectRegistry) All() []Dialect {
	seen := make(map[string]bool)
	result := make([]Dialect, 0, len(r.dialects))
	for _, d := range r.dialects {
		if seen[d.Name] {
			continue
		}
		seen[d.Name] = true
		result = append(result, d)
	}
	return result
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
