// Package processor collapses conditional blocks across source files.
package processor

import (
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mpyw/ifcollapse/pkg/analyzer"
	"github.com/mpyw/ifcollapse/pkg/config"
	"github.com/mpyw/ifcollapse/pkg/report"
	"github.com/mpyw/ifcollapse/pkg/template"
)

// ErrNoDialect is returned for files whose extension has no registered dialect.
var ErrNoDialect = errors.New("no dialect registered")

// Processor handles source transformation.
type Processor struct {
	registry   *config.DialectRegistry
	symbol     string
	defines    map[string]bool
	header     *template.Template
	keepPhrase string
	exclude    []string
	jobs       int
	dryRun     bool
	check      bool
	verbose    bool
	logger     *log.Logger
	sink       analyzer.ReportSink
	now        func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithDryRun enables dry run mode (no file writes).
func WithDryRun(dryRun bool) Option {
	return func(p *Processor) {
		p.dryRun = dryRun
	}
}

// WithCheck enables check mode: files are analyzed and reported, never written.
func WithCheck(check bool) Option {
	return func(p *Processor) {
		p.check = check
	}
}

// WithVerbose enables verbose output.
func WithVerbose(verbose bool) Option {
	return func(p *Processor) {
		p.verbose = verbose
	}
}

// WithHeader enables license header normalization with the given template.
// An empty keepPhrase disables preservation.
func WithHeader(tmpl *template.Template, keepPhrase string) Option {
	return func(p *Processor) {
		p.header = tmpl
		p.keepPhrase = keepPhrase
	}
}

// WithJobs limits the number of files processed in parallel.
// Zero or less means GOMAXPROCS.
func WithJobs(n int) Option {
	return func(p *Processor) {
		p.jobs = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Processor) {
		p.logger = l
	}
}

// WithSink forwards every report to sink as files are transformed.
func WithSink(sink analyzer.ReportSink) Option {
	return func(p *Processor) {
		p.sink = sink
	}
}

// WithExclude skips paths matching any of the glob patterns.
func WithExclude(patterns []string) Option {
	return func(p *Processor) {
		p.exclude = patterns
	}
}

// WithClock sets the time source used for the header's Year variable.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.now = now
	}
}

// New creates a new Processor. The symbol and every entry of defines are
// treated as defined when deciding which regions are live.
func New(registry *config.DialectRegistry, symbol string, defines []string, opts ...Option) *Processor {
	p := &Processor{
		registry: registry,
		symbol:   symbol,
		defines:  map[string]bool{symbol: true},
		logger:   log.New(io.Discard),
		now:      time.Now,
	}
	for _, d := range defines {
		p.defines[d] = true
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessResult holds the result of processing.
type ProcessResult struct {
	FilesProcessed int
	FilesModified  int
	Findings       int
	Reports        []report.File
	Errors         []error
}
