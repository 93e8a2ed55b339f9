package processor

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/mpyw/ifcollapse/internal/skip"
	"github.com/mpyw/ifcollapse/pkg/analyzer"
	"github.com/mpyw/ifcollapse/pkg/config"
	"github.com/mpyw/ifcollapse/pkg/directive"
	"github.com/mpyw/ifcollapse/pkg/header"
	"github.com/mpyw/ifcollapse/pkg/prune"
	"github.com/mpyw/ifcollapse/pkg/scan"
	"github.com/mpyw/ifcollapse/pkg/template"
)

// Action represents a rewrite applied to a whole file.
// Implementations encapsulate the logic for each action type.
type Action interface {
	// Apply returns the rewritten text.
	Apply(text string) (string, error)
}

// collapseAction removes every collapsible block, re-analyzing until no
// finding is left. The first pass uses initial, found on the input text.
type collapseAction struct {
	analyzer *analyzer.Analyzer
	dialect  config.Dialect
	defines  map[string]bool
	logger   *log.Logger
	initial  []analyzer.Finding
	budget   int
}

func (a collapseAction) Apply(text string) (string, error) {
	findings := a.initial
	for pass := 1; ; pass++ {
		if pass > 1 {
			findings = a.analyzer.Findings(a.document(text))
		}
		if len(findings) == 0 {
			return text, nil
		}
		if pass > a.budget {
			return "", fmt.Errorf("collapse did not settle after %d passes", a.budget)
		}

		next, deferred, err := prune.ApplyAll(text, findings)
		if err != nil {
			return "", fmt.Errorf("failed to collapse: %w", err)
		}
		a.logger.Debug("collapsed blocks", "symbol", a.analyzer.Symbol(), "pass", pass, "applied", len(findings)-len(deferred), "deferred", len(deferred))
		text = next
	}
}

func (a collapseAction) document(text string) directive.Document {
	doc := scan.Parse(text, a.dialect, a.defines)
	return newSkipDocument(doc, text, a.dialect.LineComment)
}

// headerAction replaces a missing or wrong license header.
type headerAction struct {
	analyzer header.Analyzer
}

func (a headerAction) Apply(text string) (string, error) {
	f, ok := a.analyzer.Check(text)
	if !ok {
		return text, nil
	}
	return a.analyzer.Fix(text, f), nil
}

// skipDocument hides open directives marked with a trailing skip comment by
// reporting them as inactive.
type skipDocument struct {
	directive.Document
	skipped map[*directive.Node]bool
}

func newSkipDocument(doc directive.Document, text, lineComment string) directive.Document {
	skipped := make(map[*directive.Node]bool)
	for _, n := range doc.Directives() {
		if n.Kind == directive.Open && skip.HasDirective(text, n, lineComment) {
			skipped[n] = true
		}
	}
	if len(skipped) == 0 {
		return doc
	}
	return skipDocument{Document: doc, skipped: skipped}
}

func (d skipDocument) IsActive(n *directive.Node) bool {
	return !d.skipped[n] && d.Document.IsActive(n)
}

// detectActions determines what to apply to a file and what to report.
// Reports use offsets into text.
func (p *Processor) detectActions(text string, d config.Dialect, filename string) ([]Action, []analyzer.Report, error) {
	logger := p.logger.With("file", filename)

	collapse := collapseAction{
		analyzer: analyzer.New(p.symbol, analyzer.WithLogger(logger)),
		dialect:  d,
		defines:  p.defines,
		logger:   logger,
	}

	var (
		actions []Action
		reports []analyzer.Report
	)
	doc := collapse.document(text)
	collapse.initial = collapse.analyzer.Findings(doc)
	collapse.budget = len(doc.Directives()) + 1
	for _, f := range collapse.initial {
		reports = append(reports, f.Report())
	}
	if len(collapse.initial) > 0 {
		actions = append(actions, collapse)
	}

	if p.header != nil {
		rendered, err := p.header.Render(template.Vars{
			FileName: filepath.Base(filename),
			Year:     p.now().Year(),
			Symbol:   p.symbol,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to render header: %w", err)
		}
		h := header.Analyzer{Header: rendered, KeepPhrase: p.keepPhrase, LineComment: d.LineComment}
		if f, ok := h.Check(text); ok {
			reports = append(reports, f.Report())
		}
		// Collapsing can change the leading trivia, so the header is always
		// re-checked after the collapse.
		actions = append(actions, headerAction{analyzer: h})
	}

	return actions, reports, nil
}
