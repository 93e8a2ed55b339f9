package analyzer

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/mpyw/ifcollapse/pkg/directive"
)

// Code identifies reports produced by the block analyzer.
const Code = "ConsolidateConditionalDirective"

// PropNegated is the report property carrying Finding.Negated.
const PropNegated = "isNegated"

// ErrMalformedReport is returned when a Report does not describe a Finding.
var ErrMalformedReport = errors.New("malformed report")

// Finding is one collapsible directive block. All spans are EOL-extended.
type Finding struct {
	Open    directive.Span
	Else    *directive.Span
	Close   directive.Span
	Negated bool
}

// HasElse reports whether the block has an else branch.
func (f Finding) HasElse() bool {
	return f.Else != nil
}

// Report is the generic reporting shape of a finding.
type Report struct {
	Code       string
	Message    string
	Primary    directive.Span
	Secondary  []directive.Span
	Properties map[string]string
}

// Report converts the finding to its reporting shape. Secondary locations are
// [else, close] or [close].
func (f Finding) Report() Report {
	secondary := make([]directive.Span, 0, 2)
	if f.Else != nil {
		secondary = append(secondary, *f.Else)
	}
	secondary = append(secondary, f.Close)

	return Report{
		Code:       Code,
		Message:    "conditional block can be consolidated to its active branch",
		Primary:    f.Open,
		Secondary:  secondary,
		Properties: map[string]string{PropNegated: strconv.FormatBool(f.Negated)},
	}
}

// FromReport decodes a Finding from its reporting shape.
func FromReport(r Report) (Finding, error) {
	raw, ok := r.Properties[PropNegated]
	if !ok {
		return Finding{}, fmt.Errorf("%w: missing %s property", ErrMalformedReport, PropNegated)
	}
	negated, err := strconv.ParseBool(raw)
	if err != nil {
		return Finding{}, fmt.Errorf("%w: %s=%q", ErrMalformedReport, PropNegated, raw)
	}

	f := Finding{Open: r.Primary, Negated: negated}
	switch len(r.Secondary) {
	case 1:
		f.Close = r.Secondary[0]
	case 2:
		elseSpan := r.Secondary[0]
		f.Else = &elseSpan
		f.Close = r.Secondary[1]
	default:
		return Finding{}, fmt.Errorf("%w: %d secondary locations", ErrMalformedReport, len(r.Secondary))
	}
	return f, nil
}

// ReportSink receives reports.
type ReportSink interface {
	Report(Report)
}

// SinkFunc adapts a function to ReportSink.
type SinkFunc func(Report)

// Report calls f(r).
func (f SinkFunc) Report(r Report) {
	f(r)
}

// Collector is a ReportSink that stores reports. It is safe for concurrent use.
type Collector struct {
	mu      sync.Mutex
	reports []Report
}

// Report stores r.
func (c *Collector) Report(r Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, r)
}

// Reports returns a copy of the stored reports.
func (c *Collector) Reports() []Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Report(nil), c.reports...)
}
