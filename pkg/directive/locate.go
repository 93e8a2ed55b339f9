package directive

// LocateSpan returns the span to delete for a directive. When the node's last
// trailing trivia is an end-of-line marker, the span is extended to swallow
// it; otherwise the raw span is returned unchanged.
func LocateSpan(n *Node) Span {
	if len(n.Trailing) == 0 {
		return n.Span
	}
	last := n.Trailing[len(n.Trailing)-1]
	if last.Kind != EndOfLine {
		return n.Span
	}
	return Span{Start: n.Span.Start, End: last.Span.End}
}

// ConditionMatch is a recognized directive condition.
type ConditionMatch struct {
	Symbol  string
	Negated bool
}

// Recognize classifies a condition. Only a bare identifier and the negation of
// a bare identifier are recognized.
func Recognize(e Expr) (ConditionMatch, bool) {
	switch x := e.(type) {
	case *Ident:
		return ConditionMatch{Symbol: x.Name}, true
	case *Not:
		if id, ok := x.X.(*Ident); ok {
			return ConditionMatch{Symbol: id.Name, Negated: true}, true
		}
	}
	return ConditionMatch{}, false
}
