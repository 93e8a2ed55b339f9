package scan

import (
	"fmt"
	"strings"

	"github.com/mpyw/ifcollapse/pkg/directive"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokOp
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(s string) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case isIdentStart(c):
			j := i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: s[i:j]})
			i = j
		case c >= '0' && c <= '9':
			j := i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: s[i:j]})
			i = j
		case strings.HasPrefix(s[i:], "&&"), strings.HasPrefix(s[i:], "||"),
			strings.HasPrefix(s[i:], "=="), strings.HasPrefix(s[i:], "!="):
			toks = append(toks, token{kind: tokOp, text: s[i : i+2]})
			i += 2
		case c == '!' || c == '(' || c == ')' || c == ',':
			toks = append(toks, token{kind: tokOp, text: s[i : i+1]})
			i++
		default:
			return nil, fmt.Errorf("unexpected character %q", c)
		}
	}
	return append(toks, token{kind: tokEOF}), nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// exprParser is a recursive descent parser over the precedence levels
// ||, &&, ==/!=, unary !.
type exprParser struct {
	toks []token
	pos  int
}

// ParseCondition parses a directive condition. Unparsable input yields a
// *directive.BadExpr holding the trimmed text.
func ParseCondition(text string) directive.Expr {
	text = strings.TrimSpace(text)
	bad := &directive.BadExpr{Text: text}

	toks, err := tokenize(text)
	if err != nil {
		return bad
	}
	p := &exprParser{toks: toks}
	e, err := p.parseOr()
	if err != nil || p.peek().kind != tokEOF {
		return bad
	}
	return e
}

func (p *exprParser) peek() token {
	return p.toks[p.pos]
}

func (p *exprParser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *exprParser) acceptOp(ops ...string) (string, bool) {
	t := p.peek()
	if t.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if t.text == op {
			p.pos++
			return op, true
		}
	}
	return "", false
}

func (p *exprParser) parseOr() (directive.Expr, error) {
	return p.parseBinary(p.parseAnd, "||")
}

func (p *exprParser) parseAnd() (directive.Expr, error) {
	return p.parseBinary(p.parseEquality, "&&")
}

func (p *exprParser) parseEquality() (directive.Expr, error) {
	return p.parseBinary(p.parseUnary, "==", "!=")
}

func (p *exprParser) parseBinary(operand func() (directive.Expr, error), ops ...string) (directive.Expr, error) {
	x, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp(ops...)
		if !ok {
			return x, nil
		}
		y, err := operand()
		if err != nil {
			return nil, err
		}
		x = &directive.Binary{Op: op, X: x, Y: y}
	}
}

func (p *exprParser) parseUnary() (directive.Expr, error) {
	if _, ok := p.acceptOp("!"); ok {
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &directive.Not{X: x}, nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (directive.Expr, error) {
	t := p.next()
	switch t.kind {
	case tokOp:
		if t.text != "(" {
			return nil, fmt.Errorf("unexpected %q", t.text)
		}
		x, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, ok := p.acceptOp(")"); !ok {
			return nil, fmt.Errorf("missing )")
		}
		return &directive.Paren{X: x}, nil

	case tokNumber:
		return &directive.Literal{Value: strings.TrimLeft(t.text, "0") != ""}, nil

	case tokIdent:
		switch t.text {
		case "true":
			return &directive.Literal{Value: true}, nil
		case "false":
			return &directive.Literal{Value: false}, nil
		}
		if _, ok := p.acceptOp("("); ok {
			return p.parseCall(t.text)
		}
		// C allows the operand of defined without parentheses
		if t.text == "defined" && p.peek().kind == tokIdent {
			arg := p.next()
			return &directive.Call{Func: t.text, Args: []directive.Expr{&directive.Ident{Name: arg.text}}}, nil
		}
		return &directive.Ident{Name: t.text}, nil
	}
	return nil, fmt.Errorf("unexpected end of condition")
}

func (p *exprParser) parseCall(name string) (directive.Expr, error) {
	call := &directive.Call{Func: name}
	if _, ok := p.acceptOp(")"); ok {
		return call, nil
	}
	for {
		arg, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		if _, ok := p.acceptOp(")"); ok {
			return call, nil
		}
		if _, ok := p.acceptOp(","); !ok {
			return nil, fmt.Errorf("expected , or ) in call to %s", name)
		}
	}
}

// Eval evaluates a condition under the given defined symbols. Identifiers and
// defined(X) are true iff the symbol is defined; other calls and unparsable
// conditions are false.
func Eval(e directive.Expr, defines map[string]bool) bool {
	switch x := e.(type) {
	case *directive.Ident:
		return defines[x.Name]
	case *directive.Not:
		return !Eval(x.X, defines)
	case *directive.Paren:
		return Eval(x.X, defines)
	case *directive.Literal:
		return x.Value
	case *directive.Binary:
		switch x.Op {
		case "&&":
			return Eval(x.X, defines) && Eval(x.Y, defines)
		case "||":
			return Eval(x.X, defines) || Eval(x.Y, defines)
		case "==":
			return Eval(x.X, defines) == Eval(x.Y, defines)
		case "!=":
			return Eval(x.X, defines) != Eval(x.Y, defines)
		}
	case *directive.Call:
		if x.Func == "defined" && len(x.Args) == 1 {
			if id, ok := unparen(x.Args[0]).(*directive.Ident); ok {
				return defines[id.Name]
			}
		}
	}
	return false
}

func unparen(e directive.Expr) directive.Expr {
	for {
		p, ok := e.(*directive.Paren)
		if !ok {
			return e
		}
		e = p.X
	}
}
