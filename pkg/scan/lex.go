package scan

import (
	"strings"

	"github.com/mpyw/ifcollapse/pkg/config"
)

// lexMode is the construct a line starts inside of.
type lexMode int

const (
	inCode lexMode = iota
	inBlockComment
	inVerbatimString
	inRawString
)

// lexer tracks comments and strings that span lines, so '#' lines inside
// them are not taken for directives. Single-line constructs are skipped only
// to find where multi-line ones begin.
type lexer struct {
	d      config.Dialect
	mode   lexMode
	quotes int // delimiter length of the open raw string
}

// atCode reports whether the next line starts outside comments and strings.
func (l *lexer) atCode() bool {
	return l.mode == inCode
}

// advance consumes one line without its terminator.
func (l *lexer) advance(line string) {
	for i := 0; i < len(line); {
		switch l.mode {
		case inBlockComment:
			end := l.d.BlockComment[1]
			j := strings.Index(line[i:], end)
			if j < 0 {
				return
			}
			i += j + len(end)
			l.mode = inCode
		case inVerbatimString:
			j := strings.IndexByte(line[i:], '"')
			if j < 0 {
				return
			}
			i += j + 1
			if i < len(line) && line[i] == '"' {
				// "" is an escaped quote
				i++
				continue
			}
			l.mode = inCode
		case inRawString:
			j := strings.Index(line[i:], strings.Repeat(`"`, l.quotes))
			if j < 0 {
				return
			}
			i += j + l.quotes
			l.mode = inCode
		default:
			i = l.code(line, i)
		}
	}
}

// code consumes the token at line[i] and returns the offset after it.
func (l *lexer) code(line string, i int) int {
	rest := line[i:]
	switch {
	case l.d.LineComment != "" && strings.HasPrefix(rest, l.d.LineComment):
		return len(line)
	case l.opensBlockComment(rest):
		l.mode = inBlockComment
		return i + len(l.d.BlockComment[0])
	case l.d.RawStrings && strings.HasPrefix(rest, `"""`):
		n := 3
		for i+n < len(line) && line[i+n] == '"' {
			n++
		}
		l.mode = inRawString
		l.quotes = n
		return i + n
	case l.d.VerbatimStrings && (strings.HasPrefix(rest, `@"`) || strings.HasPrefix(rest, `@$"`)):
		l.mode = inVerbatimString
		return i + strings.IndexByte(rest, '"') + 1
	case rest[0] == '"':
		return skipString(line, i)
	case rest[0] == '\'':
		return skipChar(line, i)
	}
	return i + 1
}

func (l *lexer) opensBlockComment(rest string) bool {
	if len(l.d.BlockComment) != 2 || !strings.HasPrefix(rest, l.d.BlockComment[0]) {
		return false
	}
	// (*) is the F# multiplication operator, not a comment
	return !strings.HasPrefix(rest, "(*)")
}

// skipString skips a single-line string literal opened at line[i]. An
// unterminated literal ends with the line.
func skipString(line string, i int) int {
	for j := i + 1; j < len(line); j++ {
		switch line[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return len(line)
}

// skipChar skips a character literal opened at line[i]. A lone quote, such
// as an F# type parameter, is consumed by itself.
func skipChar(line string, i int) int {
	if i+2 < len(line) && line[i+1] == '\\' {
		if j := strings.IndexByte(line[i+3:], '\''); j >= 0 {
			return i + 3 + j + 1
		}
		return i + 1
	}
	if i+2 < len(line) && line[i+2] == '\'' {
		return i + 3
	}
	return i + 1
}
