package processor

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mpyw/ifcollapse/pkg/analyzer"
	"github.com/mpyw/ifcollapse/pkg/report"
)

// fileResult is the outcome of one file. Each worker owns one slot.
type fileResult struct {
	path     string
	source   string
	reports  []analyzer.Report
	modified bool
	err      error
}

// Process processes the files matched by patterns. A pattern is a file, a
// directory (its files only), a directory followed by "/..." (recursive) or a
// glob. Per-file failures are collected in the result; the returned error is
// reserved for bad patterns and cancellation.
func (p *Processor) Process(ctx context.Context, patterns []string) (*ProcessResult, error) {
	files, err := p.Expand(patterns)
	if err != nil {
		return nil, err
	}

	result := &ProcessResult{}
	if len(files) == 0 {
		return result, nil
	}

	jobs := p.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.processFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range results {
		result.FilesProcessed++
		if r.err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", r.path, r.err))
			continue
		}
		if r.modified {
			result.FilesModified++
			if p.verbose {
				p.logger.Info("modified", "file", r.path)
			}
		}
		if len(r.reports) > 0 {
			result.Findings += len(r.reports)
			result.Reports = append(result.Reports, report.File{
				Path:    r.path,
				Source:  r.source,
				Reports: r.reports,
			})
		}
	}

	return result, nil
}

func (p *Processor) processFile(path string) fileResult {
	res := fileResult{path: path}

	info, err := os.Stat(path)
	if err != nil {
		res.err = fmt.Errorf("failed to stat file: %w", err)
		return res
	}
	src, err := os.ReadFile(path)
	if err != nil {
		res.err = fmt.Errorf("failed to read file: %w", err)
		return res
	}
	res.source = string(src)

	out, reports, err := p.TransformSource(src, path)
	if err != nil {
		res.err = err
		return res
	}
	res.reports = reports
	res.modified = !bytes.Equal(src, out)

	// Write if not dry run
	if res.modified && !p.dryRun && !p.check {
		if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
			res.err = fmt.Errorf("failed to write file: %w", err)
		}
	}
	return res
}

// Expand resolves patterns to a sorted, de-duplicated list of files that have
// a registered dialect and are not excluded.
func (p *Processor) Expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		path = filepath.Clean(path)
		if seen[path] || p.excluded(path) {
			return
		}
		if _, ok := p.registry.ForPath(path); !ok {
			return
		}
		seen[path] = true
		files = append(files, path)
	}

	for _, pattern := range patterns {
		if root, ok := strings.CutSuffix(pattern, "..."); ok {
			root = strings.TrimSuffix(root, "/")
			if root == "" {
				root = "."
			}
			if err := p.walk(root, true, add); err != nil {
				return nil, err
			}
			continue
		}

		info, err := os.Stat(pattern)
		switch {
		case err == nil && info.IsDir():
			if err := p.walk(pattern, false, add); err != nil {
				return nil, err
			}
		case err == nil:
			add(pattern)
		default:
			matches, gerr := filepath.Glob(pattern)
			if gerr != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", pattern, gerr)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no files match %q", pattern)
			}
			for _, m := range matches {
				if mi, err := os.Stat(m); err == nil && !mi.IsDir() {
					add(m)
				}
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

func (p *Processor) walk(root string, recursive bool, add func(string)) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if !recursive || IsIgnoredDir(d.Name()) || p.excluded(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return nil
}

// excluded reports whether path or its base name matches an exclude glob.
func (p *Processor) excluded(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range p.exclude {
		if ok, _ := filepath.Match(pattern, slashed); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
			return true
		}
	}
	return false
}

// IsIgnoredDir reports whether a directory is never descended into:
// testdata, vendor and hidden directories.
func IsIgnoredDir(name string) bool {
	switch name {
	case "testdata", "vendor":
		return true
	}
	return len(name) > 1 && strings.HasPrefix(name, ".")
}
