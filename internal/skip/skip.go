// Package skip detects ifcollapse:skip markers in source comments.
package skip

import (
	"strings"

	"github.com/mpyw/ifcollapse/pkg/directive"
	"github.com/mpyw/ifcollapse/pkg/header"
)

const skipDirective = "ifcollapse:skip"

// isSkipComment checks if a comment text is a skip directive.
// Supports both "//ifcollapse:skip" and "// ifcollapse:skip", as well as the
// block comment form "/* ifcollapse:skip */".
func isSkipComment(text, lineComment string) bool {
	text = strings.TrimSpace(text)
	switch {
	case lineComment != "" && strings.HasPrefix(text, lineComment):
		text = strings.TrimPrefix(text, lineComment)
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	default:
		return false
	}
	text = strings.TrimSpace(text)
	return strings.HasPrefix(text, skipDirective)
}

// HasFileDirective checks if the leading comments of text contain a skip
// directive. Such files are left untouched.
func HasFileDirective(text, lineComment string) bool {
	end := header.LeadingEnd(text, lineComment)
	for _, line := range strings.Split(text[:end], "\n") {
		if isSkipComment(line, lineComment) {
			return true
		}
	}
	return false
}

// HasDirective checks if directive n carries a trailing skip comment, as in
// "#if SYM // ifcollapse:skip".
func HasDirective(text string, n *directive.Node, lineComment string) bool {
	if !n.Span.IsValid() || n.Span.End > len(text) {
		return false
	}
	line := text[n.Span.Start:n.Span.End]
	for _, marker := range []string{lineComment, "/*"} {
		if marker == "" {
			continue
		}
		if i := strings.Index(line, marker); i >= 0 && isSkipComment(line[i:], lineComment) {
			return true
		}
	}
	return false
}
