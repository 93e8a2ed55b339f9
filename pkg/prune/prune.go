// Package prune removes the inactive branch and directive markers of a
// finding from source text.
package prune

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mpyw/ifcollapse/pkg/analyzer"
	"github.com/mpyw/ifcollapse/pkg/directive"
)

// ErrOutOfRange is returned when a finding does not fit the text it is
// applied to.
var ErrOutOfRange = errors.New("deletion range out of text bounds")

// Ranges returns the deletion ranges for f in original coordinates, in
// ascending order.
//
//	negated  else  deleted
//	false    yes   open, [else.start, close.end)
//	false    no    open, close
//	true     yes   [open.start, else.end), close
//	true     no    [open.start, close.end)
func Ranges(f analyzer.Finding) []directive.Span {
	switch {
	case !f.Negated && f.Else != nil:
		return []directive.Span{
			f.Open,
			{Start: f.Else.Start, End: f.Close.End},
		}
	case !f.Negated:
		return []directive.Span{f.Open, f.Close}
	case f.Else != nil:
		return []directive.Span{
			{Start: f.Open.Start, End: f.Else.End},
			f.Close,
		}
	default:
		return []directive.Span{{Start: f.Open.Start, End: f.Close.End}}
	}
}

// Apply returns text with f's ranges removed.
func Apply(text string, f analyzer.Finding) (string, error) {
	ranges := Ranges(f)
	if err := check(text, ranges); err != nil {
		return "", err
	}
	return deleteRanges(text, ranges), nil
}

// ApplyAll removes the ranges of every finding that does not conflict with a
// previously accepted one, in a single batch. Conflicting findings, such as
// nested blocks on the same symbol, are returned as deferred so the caller
// can re-analyze the result.
func ApplyAll(text string, findings []analyzer.Finding) (string, []analyzer.Finding, error) {
	var (
		accepted []directive.Span
		deferred []analyzer.Finding
	)

	for _, f := range findings {
		ranges := Ranges(f)
		if err := check(text, ranges); err != nil {
			return "", nil, err
		}
		if conflicts(accepted, f) {
			deferred = append(deferred, f)
			continue
		}
		accepted = append(accepted, ranges...)
	}

	return deleteRanges(text, accepted), deferred, nil
}

// conflicts reports whether f touches any accepted range. The whole block
// [open.start, close.end) is compared, so a block nested in a region that is
// already being deleted is left for the next pass.
func conflicts(accepted []directive.Span, f analyzer.Finding) bool {
	block := directive.Span{Start: f.Open.Start, End: f.Close.End}
	for _, a := range accepted {
		if a.Overlaps(block) {
			return true
		}
	}
	return false
}

func check(text string, ranges []directive.Span) error {
	for _, r := range ranges {
		if !r.IsValid() || r.End > len(text) {
			return fmt.Errorf("%w: %s in %d bytes", ErrOutOfRange, r, len(text))
		}
	}
	return nil
}

// deleteRanges removes non-overlapping ranges, walking them in descending
// start order so earlier offsets stay valid.
func deleteRanges(text string, ranges []directive.Span) string {
	if len(ranges) == 0 {
		return text
	}

	sorted := append([]directive.Span(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start > sorted[j].Start
	})

	out := text
	for _, r := range sorted {
		out = out[:r.Start] + out[r.End:]
	}
	return out
}
