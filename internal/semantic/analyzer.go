// Package semantic implements two-pass semantic analysis: a pre-order
// declaration pass that builds the symbol table, followed by a post-order
// statement pass that type-checks, constant-folds, and records every
// identifier reference.
package semantic

import (
	"errors"
	"fmt"
	"math"

	"github.com/tinyxlang/tinyx/internal/ast"
	"github.com/tinyxlang/tinyx/internal/token"
)

// ErrSyntaxErrorsRemain is returned by Analyze when the parser reported
// unresolved syntax errors; analysis never runs against a malformed tree.
var ErrSyntaxErrorsRemain = errors.New("SYNTAX_ERRORS_REMAIN")

// Analyzer walks a parsed *ast.Program and annotates every expression node
// in place with its folded Type/Val.
type Analyzer struct {
	symtab   *SymbolTable
	errors   []string
	errorPos []token.Position
	seen     map[string]bool
}

// New creates an Analyzer with a fresh symbol table.
func New() *Analyzer {
	return &Analyzer{
		symtab: NewSymbolTable(),
		seen:   make(map[string]bool),
	}
}

// SymbolTable exposes the table built during Analyze, for the symtab.txt
// artifact and for codegen's memory-location lookups.
func (a *Analyzer) SymbolTable() *SymbolTable { return a.symtab }

// Errors returns every recorded semantic error, deduplicated by full
// message text, in the order first seen.
func (a *Analyzer) Errors() []string { return a.errors }

// ErrorPositions returns the source position of each entry in Errors, in
// the same order.
func (a *Analyzer) ErrorPositions() []token.Position { return a.errorPos }

// Analyze runs both passes over prog. parserErrors/parserErrorPos are the
// parser's own diagnostics: analysis refuses to run against a tree the
// parser couldn't fully recover.
func (a *Analyzer) Analyze(prog *ast.Program, parserErrors []string, parserErrorPos []token.Position) error {
	if len(parserErrors) > 0 {
		pos := token.Position{}
		if len(parserErrorPos) > 0 {
			pos = parserErrorPos[0]
		}
		return fmt.Errorf("%w: %s (first at %s)", ErrSyntaxErrorsRemain, parserErrors[0], pos.String())
	}

	for _, decl := range prog.Declarations {
		a.declare(decl)
	}
	for _, stmt := range prog.Statements {
		a.analyzeStmt(stmt)
	}
	return nil
}

func (a *Analyzer) declare(decl *ast.VarDecl) {
	for _, id := range decl.Names {
		if _, exists := a.symtab.Lookup(id.Value); exists {
			a.recordError(id.Pos(), fmt.Sprintf("ALREADY_DECLARED: %s", id.Value))
			continue
		}
		info := a.symtab.Declare(id.Value, decl.Type, id.Pos())
		id.SetType(info.Type)
		id.SetVal(info.Value)
	}
}

func (a *Analyzer) analyzeStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		for _, inner := range s.Statements {
			a.analyzeStmt(inner)
		}
	case *ast.AssignStmt:
		a.analyzeAssign(s)
	case *ast.CinStmt:
		a.analyzeCin(s)
	case *ast.CoutStmt:
		a.analyzeExpr(s.Value)
	case *ast.CoutlnStmt:
		a.analyzeExpr(s.Value)
	case *ast.IfStmt:
		a.analyzeCondition(s.Condition)
		a.analyzeStmt(s.Then)
		if s.Else != nil {
			a.analyzeStmt(s.Else)
		}
	case *ast.WhileStmt:
		a.analyzeCondition(s.Condition)
		a.analyzeStmt(s.Body)
	case *ast.RepeatStmt:
		a.analyzeStmt(s.Body)
		a.analyzeCondition(s.Condition)
	case *ast.BreakStmt:
		// Nothing to fold. Neither this pass nor codegen checks that a
		// rompe sits inside a loop; inside one, a break targets its
		// innermost enclosing loop.
	}
}

func (a *Analyzer) analyzeAssign(s *ast.AssignStmt) {
	a.analyzeExpr(s.Value)

	info, ok := a.symtab.Lookup(s.Target.Value)
	if !ok {
		a.recordError(s.Target.Pos(), fmt.Sprintf("NOT_DECLARED: %s", s.Target.Value))
		s.Target.SetType("int")
		s.Target.SetVal(ast.IntVal(0))
		return
	}

	rhsType := s.Value.GetType()
	rhsVal := s.Value.GetVal()

	var folded ast.Value
	switch {
	case info.Type == "real":
		if isKnown(rhsVal) {
			folded = ast.RealVal(a.realValue(s.Value))
		} else {
			folded = ast.Value{}
		}
	case rhsType == info.Type:
		folded = rhsVal
	default:
		a.recordError(s.Target.Pos(),
			fmt.Sprintf("TYPE_MISMATCH: cannot assign %s to %s %s", rhsType, info.Type, s.Target.Value))
		folded = info.Value
	}

	s.Target.SetType(info.Type)
	s.Target.SetVal(folded)
	info.Value = folded
	info.Locations = append(info.Locations, s.Target.Pos())
}

// realValue recomputes e's folded value under real-division semantics,
// matching codegen's promotion of every division to a real result once the
// destination is known to be real: a division that already folded to a
// truncated int (7/2 -> 3) must not survive unchanged into a real-typed
// assignment (7/2 -> 3.5).
func (a *Analyzer) realValue(e ast.Expression) float64 {
	switch v := e.(type) {
	case *ast.BinaryExpr:
		switch v.Operator {
		case "+":
			return a.realValue(v.Left) + a.realValue(v.Right)
		case "-":
			return a.realValue(v.Left) - a.realValue(v.Right)
		case "*":
			return a.realValue(v.Left) * a.realValue(v.Right)
		case "/":
			return a.realValue(v.Left) / a.realValue(v.Right)
		default:
			return v.GetVal().AsFloat()
		}
	case *ast.UnaryExpr:
		if v.Operator == "-" {
			return -a.realValue(v.Operand)
		}
		return a.realValue(v.Operand)
	case *ast.Placeholder:
		return a.realValue(v.Left)
	default:
		return e.GetVal().AsFloat()
	}
}

func (a *Analyzer) analyzeCin(s *ast.CinStmt) {
	info, ok := a.symtab.Lookup(s.Target.Value)
	if !ok {
		a.recordError(s.Target.Pos(), fmt.Sprintf("NOT_DECLARED: %s", s.Target.Value))
		return
	}
	s.Target.SetType(info.Type)
	// The value read at runtime isn't known at analysis time; mark it
	// unknown rather than leaving the stale declaration-time default,
	// which would make later constant folding through it unsound (e.g. a
	// division by a cin'd variable wrongly folding as divide-by-zero).
	info.Value = ast.Value{}
	s.Target.SetVal(ast.Value{})
	info.Locations = append(info.Locations, s.Target.Pos())
}

func isKnown(v ast.Value) bool { return v.Kind != ast.NoValue }

// analyzeCondition folds e and, if it isn't already a relational
// comparison, coerces it to boolean by a nonzero test.
func (a *Analyzer) analyzeCondition(e ast.Expression) {
	a.analyzeExpr(e)
	if isRelational(e) {
		return
	}
	e.SetType("boolean")
	if v := e.GetVal(); isKnown(v) {
		e.SetVal(ast.BoolVal(v.AsFloat() != 0))
	}
}

func isRelational(e ast.Expression) bool {
	bin, ok := e.(*ast.BinaryExpr)
	if !ok {
		return false
	}
	switch bin.Operator {
	case "<", "<=", ">", ">=", "==", "!=":
		return true
	default:
		return false
	}
}

func (a *Analyzer) analyzeExpr(e ast.Expression) {
	switch v := e.(type) {
	case *ast.IntegerLiteral:
		v.SetType("int")
		v.SetVal(ast.IntVal(v.Value))
	case *ast.RealLiteral:
		v.SetType("real")
		v.SetVal(ast.RealVal(v.Value))
	case *ast.BooleanLiteral:
		v.SetType("boolean")
		v.SetVal(ast.BoolVal(v.Value))
	case *ast.Identifier:
		a.analyzeIdentifier(v)
	case *ast.UnaryExpr:
		a.analyzeExpr(v.Operand)
		a.foldUnary(v)
	case *ast.BinaryExpr:
		a.analyzeExpr(v.Left)
		a.analyzeExpr(v.Right)
		a.foldBinary(v)
	case *ast.Placeholder:
		a.analyzeExpr(v.Left)
		a.analyzeExpr(v.Right)
		// A Ø node never folds to a real value; it carries the left
		// operand's type/value through so downstream passes don't choke
		// on a NoValue, but its presence already implies a recorded error.
		v.SetType(v.Left.GetType())
		v.SetVal(v.Left.GetVal())
	}
}

func (a *Analyzer) analyzeIdentifier(id *ast.Identifier) {
	info, ok := a.symtab.Lookup(id.Value)
	if !ok {
		a.recordError(id.Pos(), fmt.Sprintf("NOT_DECLARED: %s", id.Value))
		id.SetType("int")
		id.SetVal(ast.IntVal(0))
		return
	}
	id.SetType(info.Type)
	id.SetVal(info.Value)
	if !id.IncDec {
		info.Locations = append(info.Locations, id.Pos())
	}
}

func (a *Analyzer) foldUnary(u *ast.UnaryExpr) {
	t := u.Operand.GetType()
	v := u.Operand.GetVal()
	u.SetType(t)
	if !isKnown(v) {
		u.SetVal(ast.Value{})
		return
	}
	switch u.Operator {
	case "-":
		if t == "real" {
			u.SetVal(ast.RealVal(-v.AsFloat()))
		} else {
			u.SetVal(ast.IntVal(-v.Int))
		}
	default: // "+"
		u.SetVal(v)
	}
}

func (a *Analyzer) foldBinary(b *ast.BinaryExpr) {
	lt, rt := b.Left.GetType(), b.Right.GetType()
	lv, rv := b.Left.GetVal(), b.Right.GetVal()
	isReal := lt == "real" || rt == "real"
	known := isKnown(lv) && isKnown(rv)

	switch b.Operator {
	case "+", "-", "*":
		if isReal {
			b.SetType("real")
		} else {
			b.SetType("int")
		}
		if !known {
			b.SetVal(ast.Value{})
			return
		}
		if isReal {
			b.SetVal(ast.RealVal(arith(b.Operator, lv.AsFloat(), rv.AsFloat())))
		} else {
			b.SetVal(ast.IntVal(int64(arith(b.Operator, float64(lv.Int), float64(rv.Int)))))
		}
	case "/":
		if isReal {
			b.SetType("real")
		} else {
			b.SetType("int")
		}
		if !known {
			b.SetVal(ast.Value{})
			return
		}
		if rv.AsFloat() == 0 {
			a.recordError(b.Pos(), "DIVISION_BY_ZERO")
			b.SetVal(ast.RealVal(math.Inf(1)))
			return
		}
		if isReal {
			b.SetVal(ast.RealVal(lv.AsFloat() / rv.AsFloat()))
		} else {
			b.SetVal(ast.IntVal(lv.Int / rv.Int))
		}
	case "<", "<=", ">", ">=", "==", "!=":
		b.SetType("boolean")
		if !known {
			b.SetVal(ast.Value{})
			return
		}
		b.SetVal(ast.BoolVal(compare(b.Operator, lv, rv, isReal)))
	}
}

func arith(op string, a, b float64) float64 {
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	default: // "*"
		return a * b
	}
}

func compare(op string, lv, rv ast.Value, numeric bool) bool {
	if !numeric && lv.Kind == ast.BoolValue && rv.Kind == ast.BoolValue {
		switch op {
		case "==":
			return lv.Bool == rv.Bool
		case "!=":
			return lv.Bool != rv.Bool
		}
	}
	l, r := lv.AsFloat(), rv.AsFloat()
	switch op {
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	case "==":
		return l == r
	default: // "!="
		return l != r
	}
}

func (a *Analyzer) recordError(pos token.Position, msg string) {
	full := fmt.Sprintf("%s at %s", msg, pos.String())
	if a.seen[full] {
		return
	}
	a.seen[full] = true
	a.errors = append(a.errors, full)
	a.errorPos = append(a.errorPos, pos)
}
