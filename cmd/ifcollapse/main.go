// Command ifcollapse collapses conditional compilation blocks guarded by a
// symbol down to the branch that is live when the symbol is defined.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"os/signal"
	"regexp"
	"strings"
	"sync"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/mpyw/ifcollapse/internal"
	"github.com/mpyw/ifcollapse/internal/watch"
	"github.com/mpyw/ifcollapse/pkg/config"
	"github.com/mpyw/ifcollapse/pkg/processor"
	"github.com/mpyw/ifcollapse/pkg/report"
	"github.com/mpyw/ifcollapse/pkg/template"
)

const defaultConfigFile = "ifcollapse.yaml"

// errFindings is returned in check mode when something would change.
var errFindings = errors.New("findings reported")

var symbolPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, errFindings) {
			fmt.Fprintf(stderr, "%sifcollapse: %v%s\n", internal.StderrColor(internal.ColorRed), err, internal.StderrColor(internal.ColorReset))
		}
		os.Exit(1)
	}
}

// defineFlags collects repeated -D flags.
type defineFlags []string

func (d *defineFlags) String() string {
	return strings.Join(*d, ",")
}

func (d *defineFlags) Set(v string) error {
	if !symbolPattern.MatchString(v) {
		return fmt.Errorf("invalid symbol %q", v)
	}
	*d = append(*d, v)
	return nil
}

type options struct {
	dryRun  bool
	check   bool
	verbose bool
	silent  bool
	format  string
}

func run() error {
	var (
		configFile string
		symbol     string
		defines    defineFlags
		opts       options
		watchMode  bool
		noHooks    bool
		jobs       int
	)

	flag.StringVar(&configFile, "config", defaultConfigFile, "path to configuration file (.yaml or .toml)")
	flag.StringVar(&symbol, "symbol", "", "symbol whose conditional blocks are collapsed (overrides config)")
	flag.Var(&defines, "D", "additional defined symbol (repeatable)")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "report changes without writing files")
	flag.BoolVar(&opts.check, "check", false, "report changes without writing files and exit 1 if any")
	flag.StringVar(&opts.format, "format", "text", "report format: text or json")
	flag.BoolVar(&opts.verbose, "verbose", false, "print processed files and skipped blocks")
	flag.BoolVar(&opts.silent, "silent", false, "suppress all output except errors")
	flag.BoolVar(&watchMode, "watch", false, "keep running and reprocess files when they change")
	flag.BoolVar(&noHooks, "no-hooks", false, "skip pre/post hooks")
	flag.IntVar(&jobs, "jobs", 0, "number of files processed in parallel (0 = GOMAXPROCS)")
	flag.Parse()

	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format %q", opts.format)
	}
	if opts.format == "json" {
		// Human-readable lines would corrupt the JSON stream
		opts.silent = true
	}

	// Load configuration; the default file is optional
	cfg, err := config.LoadConfig(configFile)
	if errors.Is(err, fs.ErrNotExist) && !isFlagPassed("config") {
		cfg, err = &config.Config{}, nil
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with explicitly passed flags
	if isFlagPassed("symbol") {
		cfg.Symbol = symbol
	}
	cfg.Defines = append(cfg.Defines, defines...)
	if isFlagPassed("jobs") {
		cfg.Jobs = jobs
	}

	// Validate
	if cfg.Symbol == "" {
		return fmt.Errorf("symbol is required: set it in the config file or pass -symbol")
	}
	if !symbolPattern.MatchString(cfg.Symbol) {
		return fmt.Errorf("invalid symbol %q", cfg.Symbol)
	}

	// Get patterns from args or config
	patterns := flag.Args()
	if len(patterns) == 0 {
		patterns = cfg.Patterns
	}
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	logger := newLogger(opts)

	// Run pre hooks
	if !noHooks && len(cfg.Hooks.Pre) > 0 {
		if err := runHooks("pre", cfg.Hooks.Pre, opts.silent); err != nil {
			return err
		}
	}

	registry := config.NewDialectRegistryFromConfig(cfg)
	procOpts := []processor.Option{
		processor.WithDryRun(opts.dryRun),
		processor.WithCheck(opts.check),
		processor.WithVerbose(opts.verbose && !opts.silent),
		processor.WithJobs(cfg.Jobs),
		processor.WithExclude(cfg.Exclude),
		processor.WithLogger(logger),
	}
	if cfg.Header.Enabled() {
		content, err := cfg.HeaderContent()
		if err != nil {
			return fmt.Errorf("failed to load header template: %w", err)
		}
		tmpl, err := template.Parse(content)
		if err != nil {
			return fmt.Errorf("failed to parse template: %w", err)
		}
		procOpts = append(procOpts, processor.WithHeader(tmpl, cfg.Header.KeepPhrase))
	}
	proc := processor.New(registry, cfg.Symbol, cfg.Defines, procOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := execute(ctx, proc, cfg.Symbol, patterns, opts)
	if err != nil {
		return err
	}

	// Run post hooks
	if !noHooks && len(cfg.Hooks.Post) > 0 {
		if err := runHooks("post", cfg.Hooks.Post, opts.silent); err != nil {
			return err
		}
	}

	if watchMode {
		return watchAndProcess(ctx, proc, registry, cfg.Symbol, patterns, opts, logger)
	}

	if opts.check && result.Findings > 0 {
		return errFindings
	}
	return nil
}

func newLogger(opts options) *log.Logger {
	level := log.InfoLevel
	switch {
	case opts.silent:
		level = log.ErrorLevel
	case opts.verbose:
		level = log.DebugLevel
	}
	return log.NewWithOptions(stderr, log.Options{
		Prefix: "ifcollapse",
		Level:  level,
	})
}

// execute runs one processing pass and prints its reports and summary.
func execute(ctx context.Context, proc *processor.Processor, symbol string, patterns []string, opts options) (*processor.ProcessResult, error) {
	// Print execution header
	if !opts.silent {
		action := "collapsing"
		if opts.check || opts.dryRun {
			action = "checking"
		}
		fmt.Fprintf(stdout, "%s▶ ifcollapse%s %s%s %s in %s%s\n",
			internal.StdoutColor(internal.ColorCyan), internal.StdoutColor(internal.ColorReset),
			internal.StdoutColor(internal.ColorDim), action, symbol, strings.Join(patterns, " "), internal.StdoutColor(internal.ColorReset))
	}

	result, err := proc.Process(ctx, patterns)
	if err != nil {
		return nil, err
	}

	if err := printReports(result, opts); err != nil {
		return nil, err
	}

	// Report results
	if !opts.silent && (opts.verbose || opts.dryRun) {
		fmt.Fprintf(stdout, "  Files processed: %d\n", result.FilesProcessed)
		fmt.Fprintf(stdout, "  Files modified: %d\n", result.FilesModified)
		fmt.Fprintf(stdout, "  Findings: %d\n", result.Findings)
	} else if !opts.silent && opts.check && result.Findings > 0 {
		fmt.Fprintf(stdout, "  %s✗%s %d findings in %d files\n", internal.StdoutColor(internal.ColorRed), internal.StdoutColor(internal.ColorReset), result.Findings, len(result.Reports))
	} else if !opts.silent {
		fmt.Fprintf(stdout, "  %s✓%s %d files processed, %d modified\n", internal.StdoutColor(internal.ColorGreen), internal.StdoutColor(internal.ColorReset), result.FilesProcessed, result.FilesModified)
	}

	if len(result.Errors) > 0 {
		fmt.Fprintln(stderr, "Errors:")
		for _, e := range result.Errors {
			fmt.Fprintf(stderr, "  %v\n", e)
		}
		return nil, fmt.Errorf("%d error(s) occurred", len(result.Errors))
	}
	return result, nil
}

// printReports writes findings as JSON, or as text when they would not be
// applied or verbose output was requested.
func printReports(result *processor.ProcessResult, opts options) error {
	if opts.format == "json" {
		return report.JSON(stdout, result.Reports)
	}
	if opts.silent || !(opts.check || opts.dryRun || opts.verbose) {
		return nil
	}
	for _, f := range result.Reports {
		if err := report.Text(stdout, f, internal.StdoutTTY()); err != nil {
			return err
		}
	}
	return nil
}

// watchAndProcess reprocesses patterns whenever a file with a known dialect
// changes, until ctx is cancelled.
func watchAndProcess(ctx context.Context, proc *processor.Processor, registry *config.DialectRegistry, symbol string, patterns []string, opts options, logger *log.Logger) error {
	var mu sync.Mutex
	handler := func(changed []string) {
		mu.Lock()
		defer mu.Unlock()

		logger.Debug("change detected", "files", changed)
		if _, err := execute(ctx, proc, symbol, patterns, opts); err != nil && ctx.Err() == nil {
			logger.Error("processing failed", "err", err)
		}
	}
	filter := func(path string) bool {
		_, ok := registry.ForPath(path)
		return ok
	}

	w, err := watch.New(watch.Roots(patterns), filter, handler, watch.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	logger.Info("watching for changes", "patterns", patterns)

	<-ctx.Done()
	return w.Close()
}

// runHooks executes a list of shell commands sequentially.
// If any command fails (non-zero exit code), execution stops and an error is returned.
func runHooks(phase string, commands []string, silent bool) error {
	if !silent {
		fmt.Fprintf(stdout, "%s▶ %s%s\n", internal.StdoutColor(internal.ColorYellow), phase, internal.StdoutColor(internal.ColorReset))
	}

	for _, cmdStr := range commands {
		if !silent {
			fmt.Fprintf(stdout, "  %s$ %s%s\n", internal.StdoutColor(internal.ColorDim), cmdStr, internal.StdoutColor(internal.ColorReset))
		}

		cmd := exec.Command("sh", "-c", cmdStr)
		cmd.Stdout = stdout
		cmd.Stderr = stderr

		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s hook failed: %s: %w", phase, cmdStr, err)
		}
	}

	return nil
}

// isFlagPassed checks if a flag was explicitly passed on the command line.
func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
