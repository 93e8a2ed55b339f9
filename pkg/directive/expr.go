package directive

import "strings"

// Expr is a parsed directive condition.
type Expr interface {
	exprNode()
	String() string
}

// Ident is a bare symbol reference.
type Ident struct {
	Name string
}

// Not is a logical negation.
type Not struct {
	X Expr
}

// Binary is a binary logical or comparison expression.
type Binary struct {
	Op string // "&&", "||", "==", "!="
	X  Expr
	Y  Expr
}

// Paren is a parenthesized expression.
type Paren struct {
	X Expr
}

// Literal is a boolean literal.
type Literal struct {
	Value bool
}

// Call is a function-like operator such as defined(X).
type Call struct {
	Func string
	Args []Expr
}

// BadExpr holds a condition that could not be parsed.
type BadExpr struct {
	Text string
}

func (*Ident) exprNode()   {}
func (*Not) exprNode()     {}
func (*Binary) exprNode()  {}
func (*Paren) exprNode()   {}
func (*Literal) exprNode() {}
func (*Call) exprNode()    {}
func (*BadExpr) exprNode() {}

func (e *Ident) String() string  { return e.Name }
func (e *Not) String() string    { return "!" + e.X.String() }
func (e *Binary) String() string { return e.X.String() + " " + e.Op + " " + e.Y.String() }
func (e *Paren) String() string  { return "(" + e.X.String() + ")" }
func (e *BadExpr) String() string {
	return e.Text
}

func (e *Literal) String() string {
	if e.Value {
		return "true"
	}
	return "false"
}

func (e *Call) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return e.Func + "(" + strings.Join(args, ", ") + ")"
}
