// Package report renders analyzer reports for humans and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/mpyw/ifcollapse/internal"
	"github.com/mpyw/ifcollapse/pkg/analyzer"
	"github.com/mpyw/ifcollapse/pkg/directive"
)

// File groups the reports produced for one source file. Spans in Reports are
// offsets into Source.
type File struct {
	Path    string
	Source  string
	Reports []analyzer.Report
}

// Position is a 1-based line and column. Column counts bytes.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Location is a span together with its start and end positions.
type Location struct {
	Start    int      `json:"start"`
	End      int      `json:"end"`
	StartPos Position `json:"start_pos"`
	EndPos   Position `json:"end_pos"`
}

type jsonReport struct {
	File       string            `json:"file"`
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Primary    Location          `json:"primary"`
	Secondary  []Location        `json:"secondary,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

// lines indexes line starts of a source text.
type lines struct {
	text   string
	starts []int
}

func newLines(text string) *lines {
	l := &lines{text: text, starts: []int{0}}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			l.starts = append(l.starts, i+1)
		}
	}
	return l
}

func (l *lines) position(offset int) Position {
	offset = max(0, min(offset, len(l.text)))
	i := sort.Search(len(l.starts), func(i int) bool {
		return l.starts[i] > offset
	}) - 1
	return Position{Line: i + 1, Column: offset - l.starts[i] + 1}
}

// line returns the text of a 1-based line without its terminator.
func (l *lines) line(n int) string {
	start := l.starts[n-1]
	end := len(l.text)
	if n < len(l.starts) {
		end = l.starts[n]
	}
	return strings.TrimRight(l.text[start:end], "\r\n")
}

func (l *lines) location(s directive.Span) Location {
	return Location{
		Start:    s.Start,
		End:      s.End,
		StartPos: l.position(s.Start),
		EndPos:   l.position(s.End),
	}
}

// Text writes one entry per report:
//
//	path:line:col: Code: message
//	    source line
//	    ^^^^^^^^^^^
//
// The caret underline covers the primary span on its first line and is
// measured in display cells.
func Text(w io.Writer, f File, color bool) error {
	idx := newLines(f.Source)
	for _, r := range f.Reports {
		pos := idx.position(r.Primary.Start)
		src := idx.line(pos.Line)

		if _, err := fmt.Fprintf(w, "%s: %s: %s\n",
			internal.Paint(color, internal.ColorBold, fmt.Sprintf("%s:%d:%d", f.Path, pos.Line, pos.Column)),
			internal.Paint(color, internal.ColorYellow, r.Code),
			r.Message,
		); err != nil {
			return err
		}

		col := min(pos.Column-1, len(src))
		end := min(col+r.Primary.Len(), len(src))
		if _, err := fmt.Fprintf(w, "    %s\n    %s%s\n",
			src,
			indent(src[:col]),
			internal.Paint(color, internal.ColorRed, strings.Repeat("^", max(1, runewidth.StringWidth(src[col:end])))),
		); err != nil {
			return err
		}
	}
	return nil
}

// indent returns blank padding as wide as prefix, keeping tabs.
func indent(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}

// JSON writes every report of every file as a single JSON array.
func JSON(w io.Writer, files []File) error {
	out := make([]jsonReport, 0)
	for _, f := range files {
		idx := newLines(f.Source)
		for _, r := range f.Reports {
			jr := jsonReport{
				File:       f.Path,
				Code:       r.Code,
				Message:    r.Message,
				Primary:    idx.location(r.Primary),
				Properties: r.Properties,
			}
			for _, s := range r.Secondary {
				jr.Secondary = append(jr.Secondary, idx.location(s))
			}
			out = append(out, jr)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode reports: %w", err)
	}
	return nil
}
