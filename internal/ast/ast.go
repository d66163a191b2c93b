// Package ast defines the Abstract Syntax Tree node types produced by the
// parser and annotated in place by the semantic analyzer.
package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tinyxlang/tinyx/internal/token"
)

// Node is the base interface every AST node implements.
type Node interface {
	TokenLiteral() string
	Pos() token.Position
	String() string
}

// Expression is any node that produces a value and therefore carries the
// semantic analyzer's folded Type/Val annotations.
type Expression interface {
	Node
	expressionNode()
	GetType() string
	SetType(string)
	GetVal() Value
	SetVal(Value)
}

// Statement is a node that performs an action but does not itself produce
// a value.
type Statement interface {
	Node
	statementNode()
}

// Value is the tagged scalar the semantic analyzer folds expressions to
// and the PM's data memory holds at runtime: int64, float64, or bool.
type Value struct {
	Kind ValueKind
	Int  int64
	Real float64
	Bool bool
}

type ValueKind int

const (
	NoValue ValueKind = iota
	IntValue
	RealValue
	BoolValue
)

func IntVal(v int64) Value    { return Value{Kind: IntValue, Int: v} }
func RealVal(v float64) Value { return Value{Kind: RealValue, Real: v} }
func BoolVal(v bool) Value    { return Value{Kind: BoolValue, Bool: v} }

// AsFloat returns the value widened to float64, regardless of its kind.
func (v Value) AsFloat() float64 {
	switch v.Kind {
	case RealValue:
		return v.Real
	case IntValue:
		return float64(v.Int)
	case BoolValue:
		if v.Bool {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func (v Value) String() string {
	switch v.Kind {
	case IntValue:
		return fmt.Sprintf("%d", v.Int)
	case RealValue:
		return fmt.Sprintf("%g", v.Real)
	case BoolValue:
		if v.Bool {
			return "True"
		}
		return "False"
	default:
		return "<novalue>"
	}
}

// annotation holds the mutable fields the semantic analyzer attaches to
// expression nodes: the declared/inferred type and the constant-folded
// value. Embedding it gives every expression node GetType/SetType and
// GetVal/SetVal without repeating the boilerplate per node kind.
type annotation struct {
	Type string
	Val  Value
}

func (a *annotation) GetType() string   { return a.Type }
func (a *annotation) SetType(t string)  { a.Type = t }
func (a *annotation) GetVal() Value     { return a.Val }
func (a *annotation) SetVal(v Value)    { a.Val = v }

// Program is the root node: "main" "{" declarations statements "}".
type Program struct {
	Token        token.Token // the "main" keyword
	Declarations []*VarDecl
	Statements   []Statement
}

func (p *Program) TokenLiteral() string { return p.Token.Lexeme }
func (p *Program) Pos() token.Position  { return p.Token.Pos }
func (p *Program) String() string {
	var out bytes.Buffer
	out.WriteString("main {\n")
	for _, d := range p.Declarations {
		out.WriteString("  " + d.String() + "\n")
	}
	for _, s := range p.Statements {
		out.WriteString("  " + s.String() + "\n")
	}
	out.WriteString("}\n")
	return out.String()
}

// VarDecl is one `type variable-list ;` declaration.
type VarDecl struct {
	Token token.Token // the type keyword token
	Type  string      // "int" | "real" | "boolean"
	Names []*Identifier
}

func (d *VarDecl) statementNode()       {}
func (d *VarDecl) TokenLiteral() string { return d.Token.Lexeme }
func (d *VarDecl) Pos() token.Position  { return d.Token.Pos }
func (d *VarDecl) String() string {
	names := make([]string, len(d.Names))
	for i, n := range d.Names {
		names[i] = n.Value
	}
	return fmt.Sprintf("%s %s;", d.Type, strings.Join(names, ", "))
}

// Identifier is a variable reference. IncDec marks a read that the
// increment/decrement desugaring synthesized, which suppresses location
// tracking in the semantic pass.
type Identifier struct {
	annotation
	Token  token.Token
	Value  string
	IncDec bool
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Lexeme }
func (i *Identifier) Pos() token.Position  { return i.Token.Pos }
func (i *Identifier) String() string       { return i.Value }

// IntegerLiteral is an INT token used as an expression.
type IntegerLiteral struct {
	annotation
	Token token.Token
	Value int64
}

func (l *IntegerLiteral) expressionNode()      {}
func (l *IntegerLiteral) TokenLiteral() string { return l.Token.Lexeme }
func (l *IntegerLiteral) Pos() token.Position  { return l.Token.Pos }
func (l *IntegerLiteral) String() string       { return l.Token.Lexeme }

// RealLiteral is a REAL token used as an expression.
type RealLiteral struct {
	annotation
	Token token.Token
	Value float64
}

func (l *RealLiteral) expressionNode()      {}
func (l *RealLiteral) TokenLiteral() string { return l.Token.Lexeme }
func (l *RealLiteral) Pos() token.Position  { return l.Token.Pos }
func (l *RealLiteral) String() string       { return l.Token.Lexeme }

// BooleanLiteral is a True/False token used as an expression.
type BooleanLiteral struct {
	annotation
	Token token.Token
	Value bool
}

func (l *BooleanLiteral) expressionNode()      {}
func (l *BooleanLiteral) TokenLiteral() string { return l.Token.Lexeme }
func (l *BooleanLiteral) Pos() token.Position  { return l.Token.Pos }
func (l *BooleanLiteral) String() string       { return l.Token.Lexeme }

// BinaryExpr is a left-associative binary operator node: relational,
// additive, or multiplicative.
type BinaryExpr struct {
	annotation
	Token    token.Token // the operator token
	Operator string
	Left     Expression
	Right    Expression
}

func (b *BinaryExpr) expressionNode()      {}
func (b *BinaryExpr) TokenLiteral() string { return b.Token.Lexeme }
func (b *BinaryExpr) Pos() token.Position  { return b.Token.Pos }
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Operator, b.Right.String())
}

// UnaryExpr is a prefix `+`/`-` applied to a single operand (superfactor).
type UnaryExpr struct {
	annotation
	Token    token.Token
	Operator string
	Operand  Expression
}

func (u *UnaryExpr) expressionNode()      {}
func (u *UnaryExpr) TokenLiteral() string { return u.Token.Lexeme }
func (u *UnaryExpr) Pos() token.Position  { return u.Token.Pos }
func (u *UnaryExpr) String() string {
	return fmt.Sprintf("(%s%s)", u.Operator, u.Operand.String())
}

// Placeholder is the synthetic "Ø" node the parser inserts in condition
// mode when a multiplicative operator is missing between two factors. It
// behaves like a binary node with a nonce operator so downstream stages
// can still walk it, but the semantic analyzer never folds a real value
// for it.
type Placeholder struct {
	annotation
	Token token.Token
	Left  Expression
	Right Expression
}

func (p *Placeholder) expressionNode()      {}
func (p *Placeholder) TokenLiteral() string { return "Ø" }
func (p *Placeholder) Pos() token.Position  { return p.Token.Pos }
func (p *Placeholder) String() string {
	return fmt.Sprintf("(%s Ø %s)", p.Left.String(), p.Right.String())
}

// AssignStmt is `ID := expression ;`, including desugared `++`/`--` forms
// whose Value is a synthesized BinaryExpr.
type AssignStmt struct {
	Token  token.Token // the ID token
	Target *Identifier
	Value  Expression
}

func (a *AssignStmt) statementNode()       {}
func (a *AssignStmt) TokenLiteral() string { return a.Token.Lexeme }
func (a *AssignStmt) Pos() token.Position  { return a.Token.Pos }
func (a *AssignStmt) String() string {
	return fmt.Sprintf("Assign to: %s := %s;", a.Target.Value, a.Value.String())
}

// CinStmt is `cin ID ;`.
type CinStmt struct {
	Token  token.Token
	Target *Identifier
}

func (c *CinStmt) statementNode()       {}
func (c *CinStmt) TokenLiteral() string { return c.Token.Lexeme }
func (c *CinStmt) Pos() token.Position  { return c.Token.Pos }
func (c *CinStmt) String() string       { return fmt.Sprintf("cin %s;", c.Target.Value) }

// CoutStmt is `cout expression ;`.
type CoutStmt struct {
	Token token.Token
	Value Expression
}

func (c *CoutStmt) statementNode()       {}
func (c *CoutStmt) TokenLiteral() string { return c.Token.Lexeme }
func (c *CoutStmt) Pos() token.Position  { return c.Token.Pos }
func (c *CoutStmt) String() string       { return fmt.Sprintf("cout %s;", c.Value.String()) }

// CoutlnStmt is `coutln expression ;`.
type CoutlnStmt struct {
	Token token.Token
	Value Expression
}

func (c *CoutlnStmt) statementNode()       {}
func (c *CoutlnStmt) TokenLiteral() string { return c.Token.Lexeme }
func (c *CoutlnStmt) Pos() token.Position  { return c.Token.Pos }
func (c *CoutlnStmt) String() string       { return fmt.Sprintf("coutln %s;", c.Value.String()) }

// BlockStmt is `"{" statement-list "}"`.
type BlockStmt struct {
	Token      token.Token // the "{" token
	Statements []Statement
}

func (b *BlockStmt) statementNode()       {}
func (b *BlockStmt) TokenLiteral() string { return b.Token.Lexeme }
func (b *BlockStmt) Pos() token.Position  { return b.Token.Pos }
func (b *BlockStmt) String() string {
	var out bytes.Buffer
	out.WriteString("{\n")
	for _, s := range b.Statements {
		out.WriteString("  " + s.String() + "\n")
	}
	out.WriteString("}")
	return out.String()
}

// IfStmt is `if ( expression ) then block [ else block ]`.
type IfStmt struct {
	Token     token.Token
	Condition Expression
	Then      *BlockStmt
	Else      *BlockStmt // nil when no else branch
}

func (f *IfStmt) statementNode()       {}
func (f *IfStmt) TokenLiteral() string { return f.Token.Lexeme }
func (f *IfStmt) Pos() token.Position  { return f.Token.Pos }
func (f *IfStmt) String() string {
	s := fmt.Sprintf("if (%s) then %s", f.Condition.String(), f.Then.String())
	if f.Else != nil {
		s += " else " + f.Else.String()
	}
	return s
}

// WhileStmt is `while ( expression ) block`.
type WhileStmt struct {
	Token     token.Token
	Condition Expression
	Body      *BlockStmt
}

func (w *WhileStmt) statementNode()       {}
func (w *WhileStmt) TokenLiteral() string { return w.Token.Lexeme }
func (w *WhileStmt) Pos() token.Position  { return w.Token.Pos }
func (w *WhileStmt) String() string {
	return fmt.Sprintf("while (%s) %s", w.Condition.String(), w.Body.String())
}

// RepeatStmt is `repeat block until ( expression ) ;`.
type RepeatStmt struct {
	Token     token.Token
	Body      *BlockStmt
	Condition Expression
}

func (r *RepeatStmt) statementNode()       {}
func (r *RepeatStmt) TokenLiteral() string { return r.Token.Lexeme }
func (r *RepeatStmt) Pos() token.Position  { return r.Token.Pos }
func (r *RepeatStmt) String() string {
	return fmt.Sprintf("repeat %s until (%s);", r.Body.String(), r.Condition.String())
}

// BreakStmt is `rompe ;`, valid only inside a loop body.
type BreakStmt struct {
	Token token.Token
}

func (b *BreakStmt) statementNode()       {}
func (b *BreakStmt) TokenLiteral() string { return b.Token.Lexeme }
func (b *BreakStmt) Pos() token.Position  { return b.Token.Pos }
func (b *BreakStmt) String() string       { return "rompe;" }
