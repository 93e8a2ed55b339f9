// Package header checks and rewrites the license header at the top of a file.
package header

import (
	"strconv"
	"strings"

	"github.com/mpyw/ifcollapse/pkg/analyzer"
	"github.com/mpyw/ifcollapse/pkg/directive"
)

// Code identifies reports produced by the header analyzer.
const Code = "ReplaceLicenseHeader"

// DefaultKeepPhrase marks a comment paragraph that survives header replacement.
const DefaultKeepPhrase = "Purpose:"

// Finding describes a missing or mismatched header.
type Finding struct {
	// Span is the leading trivia to replace; empty at offset 0 when there is none.
	Span directive.Span
	// NoHeader is set when the file has no leading comments at all.
	NoHeader bool
	// Preserve holds the comment lines kept below the new header.
	Preserve string
}

// Report converts the finding to the generic reporting shape.
func (f Finding) Report() analyzer.Report {
	msg := "wrong license header"
	if f.NoHeader {
		msg = "missing license header"
	}
	return analyzer.Report{
		Code:       Code,
		Message:    msg,
		Primary:    f.Span,
		Properties: map[string]string{"hasNoHeader": strconv.FormatBool(f.NoHeader)},
	}
}

// Analyzer compares leading trivia against a rendered header.
type Analyzer struct {
	// Header is the required header text, ending with a newline.
	Header string
	// KeepPhrase starts a comment paragraph copied below the header.
	KeepPhrase string
	// LineComment is the dialect's line comment prefix.
	LineComment string
}

// Check reports whether text needs its header replaced.
func (a Analyzer) Check(text string) (Finding, bool) {
	if a.Header == "" {
		return Finding{}, false
	}

	want := withLineEnding(a.Header, lineEnding(text))
	end := LeadingEnd(text, a.LineComment)
	if end == 0 {
		if strings.HasPrefix(text, want) {
			return Finding{}, false
		}
		return Finding{Span: directive.Span{}, NoHeader: true}, true
	}

	trivia := text[:end]
	if strings.HasPrefix(trivia, want) {
		return Finding{}, false
	}
	return Finding{
		Span:     directive.Span{Start: 0, End: end},
		Preserve: a.preserve(trivia),
	}, true
}

// Fix replaces the finding's span with the header and any preserved block,
// followed by one blank line. Inserted lines use the line terminator of the
// replaced comments, or of the file when there were none.
func (a Analyzer) Fix(text string, f Finding) string {
	eol := lineEnding(text[f.Span.Start:f.Span.End])
	if !strings.Contains(text[f.Span.Start:f.Span.End], "\n") {
		eol = lineEnding(text)
	}

	var b strings.Builder
	b.WriteString(withLineEnding(a.Header, eol))
	if f.Preserve != "" {
		marker := a.LineComment + eol
		b.WriteString(marker)
		b.WriteString(withLineEnding(f.Preserve, eol))
		b.WriteString(marker)
	}
	b.WriteString(eol)
	b.WriteString(text[f.Span.End:])
	return b.String()
}

// lineEnding returns the terminator of the first line of s, "\n" by default.
func lineEnding(s string) string {
	if i := strings.IndexByte(s, '\n'); i > 0 && s[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// withLineEnding rewrites every line terminator in s to eol.
func withLineEnding(s, eol string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if eol == "\n" {
		return s
	}
	return strings.ReplaceAll(s, "\n", eol)
}

// preserve extracts the lines from the first one containing the keep phrase
// up to the first line left empty once comment markers are trimmed.
func (a Analyzer) preserve(trivia string) string {
	if a.KeepPhrase == "" {
		return ""
	}

	var (
		out    strings.Builder
		inside bool
	)
	for _, line := range strings.SplitAfter(trivia, "\n") {
		body := strings.Trim(strings.TrimRight(line, "\r\n"), "*/ \t")
		if !inside {
			if !strings.Contains(body, a.KeepPhrase) {
				continue
			}
			inside = true
		} else if body == "" {
			break
		}
		out.WriteString(line)
	}

	s := out.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}

// LeadingEnd returns the offset just past the leading trivia of text: the
// maximal run of blank lines, line comments and block comments at the top.
func LeadingEnd(text, lineComment string) int {
	var (
		offset  int
		inBlock bool
	)
	for offset < len(text) {
		next := strings.IndexByte(text[offset:], '\n')
		lineEnd := len(text)
		if next >= 0 {
			lineEnd = offset + next + 1
		}
		line := strings.TrimSpace(text[offset:lineEnd])

		switch {
		case inBlock:
			if strings.Contains(line, "*/") {
				inBlock = false
				if rest := strings.TrimSpace(line[strings.Index(line, "*/")+2:]); rest != "" {
					return offset
				}
			}
		case line == "":
		case lineComment != "" && strings.HasPrefix(line, lineComment):
		case strings.HasPrefix(line, "/*"):
			closeAt := strings.Index(line[2:], "*/")
			if closeAt < 0 {
				inBlock = true
			} else if rest := strings.TrimSpace(line[2+closeAt+2:]); rest != "" {
				return offset
			}
		default:
			return offset
		}
		offset = lineEnd
	}
	return offset
}
