// Package scan builds a directive document model from raw source text.
package scan

import (
	"slices"
	"sort"
	"strings"

	"github.com/mpyw/ifcollapse/pkg/config"
	"github.com/mpyw/ifcollapse/pkg/directive"
)

// Document is a directive.Document over raw text. It is immutable after Parse
// and safe for concurrent reads.
type Document struct {
	text       string
	nodes      []*directive.Node
	active     map[*directive.Node]bool
	lineStarts []int
}

var _ directive.Document = (*Document)(nil)

// frame is one level of the conditional stack used to decide which regions
// are live.
type frame struct {
	parentLive bool
	taken      bool
	live       bool
}

// Parse scans src for directives of dialect d. A directive is a line whose
// first non-blank character is '#' followed by one of the dialect keywords,
// and which does not start inside a block comment or a multi-line string.
// Its span starts at the beginning of the line, so indentation is removed
// together with the directive.
func Parse(src string, d config.Dialect, defines map[string]bool) *Document {
	doc := &Document{
		text:   src,
		active: make(map[*directive.Node]bool),
	}

	var stack []*frame
	live := func() bool {
		if len(stack) == 0 {
			return true
		}
		return stack[len(stack)-1].live
	}

	if src == "" {
		doc.lineStarts = []int{0}
		return doc
	}

	lex := &lexer{d: d}
	lineNo := 0
	for start := 0; start < len(src); {
		lineNo++
		doc.lineStarts = append(doc.lineStarts, start)

		end := start
		for end < len(src) && src[end] != '\n' && src[end] != '\r' {
			end++
		}
		eolEnd := end
		if end < len(src) {
			if src[end] == '\r' && end+1 < len(src) && src[end+1] == '\n' {
				eolEnd = end + 2
			} else {
				eolEnd = end + 1
			}
		}

		var n *directive.Node
		if lex.atCode() {
			n = parseLine(src, start, end, eolEnd, d)
		}
		lex.advance(src[start:end])

		if n != nil {
			n.Line = lineNo
			doc.nodes = append(doc.nodes, n)

			switch n.Kind {
			case directive.Open:
				cur := live()
				doc.active[n] = cur
				taken := cur && Eval(n.Cond, defines)
				stack = append(stack, &frame{parentLive: cur, taken: taken, live: taken})
			case directive.Else:
				if len(stack) == 0 {
					break
				}
				f := stack[len(stack)-1]
				doc.active[n] = f.parentLive
				if n.Cond != nil {
					f.live = f.parentLive && !f.taken && Eval(n.Cond, defines)
					f.taken = f.taken || f.live
				} else {
					f.live = f.parentLive && !f.taken
					f.taken = true
				}
			case directive.Close:
				if len(stack) == 0 {
					break
				}
				doc.active[n] = stack[len(stack)-1].parentLive
				stack = stack[:len(stack)-1]
			}
		}

		start = eolEnd
	}

	return doc
}

func parseLine(src string, start, end, eolEnd int, d config.Dialect) *directive.Node {
	i := start
	for i < end && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	if i == end || src[i] != '#' {
		return nil
	}
	i++
	for i < end && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	k := i
	for k < end && isIdentPart(src[k]) {
		k++
	}
	keyword := src[i:k]
	if keyword == "" {
		return nil
	}
	rest := stripComment(src[k:end], d.LineComment)

	n := &directive.Node{}
	switch {
	case slices.Contains(d.If, keyword):
		n.Kind = directive.Open
		n.Cond = ParseCondition(rest)
	case slices.Contains(d.Ifdef, keyword):
		n.Kind = directive.Open
		n.Cond = symbolCondition(rest, false)
	case slices.Contains(d.Ifndef, keyword):
		n.Kind = directive.Open
		n.Cond = symbolCondition(rest, true)
	case slices.Contains(d.Elif, keyword):
		n.Kind = directive.Else
		n.Cond = ParseCondition(rest)
	case slices.Contains(d.Else, keyword):
		n.Kind = directive.Else
	case slices.Contains(d.Endif, keyword):
		n.Kind = directive.Close
	default:
		return nil
	}

	contentEnd := end
	for contentEnd > start && (src[contentEnd-1] == ' ' || src[contentEnd-1] == '\t') {
		contentEnd--
	}
	n.Span = directive.Span{Start: start, End: contentEnd}
	if contentEnd < end {
		n.Trailing = append(n.Trailing, directive.Trivia{
			Kind: directive.Whitespace,
			Span: directive.Span{Start: contentEnd, End: end},
		})
	}
	if eolEnd > end {
		n.Trailing = append(n.Trailing, directive.Trivia{
			Kind: directive.EndOfLine,
			Span: directive.Span{Start: end, End: eolEnd},
		})
	}
	return n
}

// symbolCondition builds the condition of an ifdef/ifndef directive.
func symbolCondition(rest string, negate bool) directive.Expr {
	name := strings.TrimSpace(rest)
	if name == "" || !isIdentStart(name[0]) || strings.IndexFunc(name, func(r rune) bool {
		return r > 0x7f || !isIdentPart(byte(r))
	}) >= 0 {
		return &directive.BadExpr{Text: name}
	}
	var e directive.Expr = &directive.Ident{Name: name}
	if negate {
		e = &directive.Not{X: e}
	}
	return e
}

func stripComment(s, lineComment string) string {
	if lineComment != "" {
		if i := strings.Index(s, lineComment); i >= 0 {
			s = s[:i]
		}
	}
	if i := strings.Index(s, "/*"); i >= 0 {
		s = s[:i]
	}
	return s
}

// Text returns the source text.
func (d *Document) Text() string {
	return d.text
}

// Directives returns every directive in source order.
func (d *Document) Directives() []*directive.Node {
	return d.nodes
}

// IsActive reports whether n lies in a live region. Stray else and close
// directives are never active.
func (d *Document) IsActive(n *directive.Node) bool {
	return d.active[n]
}

// Position converts a byte offset to a 1-based line and byte column.
func (d *Document) Position(offset int) (line, col int) {
	i := sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > offset
	}) - 1
	if i < 0 {
		i = 0
	}
	return i + 1, offset - d.lineStarts[i] + 1
}

// LineText returns the text of a 1-based line without its line terminator.
func (d *Document) LineText(line int) string {
	if line < 1 || line > len(d.lineStarts) {
		return ""
	}
	start := d.lineStarts[line-1]
	end := len(d.text)
	if line < len(d.lineStarts) {
		end = d.lineStarts[line]
	}
	return strings.TrimRight(d.text[start:end], "\r\n")
}
