// Package directive defines the conditional-directive document model shared by
// the matcher, the analyzer and the pruner.
package directive

import "fmt"

// Span is a half-open byte range [Start, End) in the original text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsEmpty reports whether the span covers no bytes.
func (s Span) IsEmpty() bool {
	return s.End <= s.Start
}

// IsValid reports whether the span is anchored in the text (0 <= Start <= End).
func (s Span) IsValid() bool {
	return s.Start >= 0 && s.End >= s.Start
}

// Contains reports whether offset lies within the span.
func (s Span) Contains(offset int) bool {
	return s.Start <= offset && offset < s.End
}

// Overlaps reports whether two non-empty spans share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Kind is the role of a directive within an open/else/close triad.
type Kind uint8

const (
	Open Kind = iota + 1
	Else
	Close
)

func (k Kind) String() string {
	switch k {
	case Open:
		return "open"
	case Else:
		return "else"
	case Close:
		return "close"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// TriviaKind classifies text that trails a directive on its line.
type TriviaKind uint8

const (
	Whitespace TriviaKind = iota + 1
	EndOfLine
)

// Trivia is a piece of non-directive text attached to a directive.
type Trivia struct {
	Kind TriviaKind
	Span Span
}

// Node is a single directive occurrence.
//
// Cond is set for Open nodes. An Else node with a non-nil Cond stands for an
// else-if occurrence, which is not a separate construct in this model.
type Node struct {
	Kind     Kind
	Span     Span
	Trailing []Trivia
	Cond     Expr
	// Line is the 1-based line number of the directive.
	Line int
}

// IsElseIf reports whether the node is an else-if occurrence.
func (n *Node) IsElseIf() bool {
	return n.Kind == Else && n.Cond != nil
}

// Document is a read-only view of the directives in one source text.
type Document interface {
	// Directives returns every directive in source order.
	Directives() []*Node
	// IsActive reports whether the directive lies in a live region under the
	// ambient symbol set.
	IsActive(n *Node) bool
}
