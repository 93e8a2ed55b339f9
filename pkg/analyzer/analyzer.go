// Package analyzer finds conditional blocks gated on a target symbol.
package analyzer

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/mpyw/ifcollapse/pkg/directive"
	"github.com/mpyw/ifcollapse/pkg/match"
)

// SkipReason explains why an open directive produced no finding.
type SkipReason uint8

const (
	NotSkipped SkipReason = iota
	Inactive
	RecognitionMiss
	OtherSymbol
	StructuralIncomplete
	AmbiguousElse
	ElseIfChain
	LocationInvalid
)

func (r SkipReason) String() string {
	switch r {
	case NotSkipped:
		return "not skipped"
	case Inactive:
		return "inactive"
	case RecognitionMiss:
		return "unrecognized condition"
	case OtherSymbol:
		return "other symbol"
	case StructuralIncomplete:
		return "no matching close"
	case AmbiguousElse:
		return "ambiguous else"
	case ElseIfChain:
		return "else-if chain"
	case LocationInvalid:
		return "invalid location"
	default:
		return "unknown"
	}
}

// Analyzer finds blocks whose open directive tests Symbol.
type Analyzer struct {
	symbol string
	logger *log.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger used for skip decisions.
func WithLogger(l *log.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// New creates an Analyzer for the given target symbol.
func New(symbol string, opts ...Option) *Analyzer {
	a := &Analyzer{
		symbol: symbol,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Symbol returns the target symbol.
func (a *Analyzer) Symbol() string {
	return a.symbol
}

// Analyze inspects a single open directive. It reads doc only and is safe to
// call concurrently.
func (a *Analyzer) Analyze(doc directive.Document, open *directive.Node) (Finding, SkipReason, bool) {
	if open.Kind != directive.Open || !doc.IsActive(open) {
		return Finding{}, Inactive, false
	}

	cond, ok := directive.Recognize(open.Cond)
	if !ok {
		return Finding{}, RecognitionMiss, false
	}
	if cond.Symbol != a.symbol {
		return Finding{}, OtherSymbol, false
	}

	records := match.Block(doc.Directives(), open)
	closeRec, ok := match.Close(records)
	if !ok {
		return Finding{}, StructuralIncomplete, false
	}

	var elseSpan *directive.Span
	switch elses := match.Elses(records, 1); len(elses) {
	case 0:
	case 1:
		if elses[0].Node.IsElseIf() {
			return Finding{}, ElseIfChain, false
		}
		s := directive.LocateSpan(elses[0].Node)
		elseSpan = &s
	default:
		return Finding{}, AmbiguousElse, false
	}

	openSpan := directive.LocateSpan(open)
	closeSpan := directive.LocateSpan(closeRec.Node)
	if !usable(openSpan) || !usable(closeSpan) || (elseSpan != nil && !usable(*elseSpan)) {
		return Finding{}, LocationInvalid, false
	}

	return Finding{
		Open:    openSpan,
		Else:    elseSpan,
		Close:   closeSpan,
		Negated: cond.Negated,
	}, NotSkipped, true
}

func usable(s directive.Span) bool {
	return s.IsValid() && !s.IsEmpty()
}

// Findings returns every finding in doc in source order.
func (a *Analyzer) Findings(doc directive.Document) []Finding {
	var findings []Finding
	for _, n := range doc.Directives() {
		if n.Kind != directive.Open {
			continue
		}
		f, reason, ok := a.Analyze(doc, n)
		if !ok {
			if reason != OtherSymbol && reason != Inactive {
				a.logger.Debug("skipped directive", "line", n.Line, "reason", reason)
			}
			continue
		}
		findings = append(findings, f)
	}
	return findings
}

// Run reports every finding in doc to sink and returns how many were reported.
func (a *Analyzer) Run(doc directive.Document, sink ReportSink) int {
	findings := a.Findings(doc)
	for _, f := range findings {
		sink.Report(f.Report())
	}
	return len(findings)
}
