// Package testutil provides testing utilities for ifcollapse.
package testutil

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"
)

// Case is one golden fixture. An archive holds an optional "config.yaml"
// section, one "input/<name>" section and an optional "output/<name>"
// section. A missing output means the input must come back unchanged.
type Case struct {
	Name     string
	Comment  string
	Config   []byte
	Filename string
	Input    []byte
	Want     []byte
}

// LoadCase reads a golden archive.
func LoadCase(t *testing.T, path string) Case {
	t.Helper()

	ar, err := txtar.ParseFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}

	c := Case{
		Name:    strings.TrimSuffix(filepath.Base(path), ".txtar"),
		Comment: strings.TrimSpace(string(ar.Comment)),
	}
	for _, f := range ar.Files {
		switch {
		case f.Name == "config.yaml":
			c.Config = f.Data
		case strings.HasPrefix(f.Name, "input/"):
			c.Filename = strings.TrimPrefix(f.Name, "input/")
			c.Input = f.Data
		case strings.HasPrefix(f.Name, "output/"):
			c.Want = f.Data
		default:
			t.Fatalf("%s: unexpected section %q", path, f.Name)
		}
	}
	if c.Filename == "" {
		t.Fatalf("%s: missing input section", path)
	}
	if c.Want == nil {
		c.Want = c.Input
	}
	return c
}

// GoldenTest runs transform on every archive in dir and compares the result
// with the archive's output section.
func GoldenTest(t *testing.T, dir string, transform func(t *testing.T, c Case) ([]byte, error)) {
	t.Helper()

	paths, err := filepath.Glob(filepath.Join(dir, "*.txtar"))
	if err != nil {
		t.Fatalf("failed to list %s: %v", dir, err)
	}
	if len(paths) == 0 {
		t.Fatalf("no golden archives in %s", dir)
	}

	for _, path := range paths {
		c := LoadCase(t, path)
		t.Run(c.Name, func(t *testing.T) {
			got, err := transform(t, c)
			if err != nil {
				t.Fatalf("transform failed: %v", err)
			}
			if diff := cmp.Diff(string(c.Want), string(got)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
