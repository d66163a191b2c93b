package pm

import (
	"errors"
	"fmt"

	"github.com/tinyxlang/tinyx/internal/ast"
	"github.com/tinyxlang/tinyx/internal/semantic"
)

// ErrSemanticErrorsRemain is returned by Compile when the semantic pass
// reported unresolved errors; codegen never runs against an untrustworthy
// annotation.
var ErrSemanticErrorsRemain = errors.New("SEMANTIC_ERRORS_REMAIN")

// ErrBugInEmit signals an internal codegen invariant violation: a backup
// past the highest location ever emitted.
var ErrBugInEmit = errors.New("BUG_IN_EMIT")

// Compiler walks an annotated AST and emits a PM instruction listing.
type Compiler struct {
	buf          *EmitBuffer
	symtab       *semantic.SymbolTable
	tmpOffset    int
	breakPending bool
	breakLoc     int
	realCtx      bool
}

func newCompiler(symtab *semantic.SymbolTable) *Compiler {
	return &Compiler{buf: NewEmitBuffer(), symtab: symtab}
}

// Compile refuses to run if semanticErrors is non-empty (the
// SEMANTIC_ERRORS_REMAIN refusal precondition); otherwise it emits the
// prelude, the program body, and the HALT epilogue, returning the
// resulting EmitBuffer.
func Compile(prog *ast.Program, symtab *semantic.SymbolTable, semanticErrors []string) (buf *EmitBuffer, err error) {
	if len(semanticErrors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrSemanticErrorsRemain, semanticErrors[0])
	}

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()

	c := newCompiler(symtab)
	c.prelude()
	for _, stmt := range prog.Statements {
		c.stmt(stmt)
	}
	c.buf.EmitRO(HALT, 0, 0, 0, "")
	return c.buf, nil
}

func (c *Compiler) prelude() {
	c.buf.EmitRM(LD, RegMP, 0, RegAC, "load max addr")
	c.buf.EmitRM(ST, RegAC, 0, RegAC, "clear dMem[0]")
}

func (c *Compiler) mustBackup(loc int) {
	if err := c.buf.Backup(loc); err != nil {
		panic(err)
	}
}

func (c *Compiler) stmt(s ast.Statement) {
	switch v := s.(type) {
	case *ast.BlockStmt:
		for _, inner := range v.Statements {
			c.stmt(inner)
		}
	case *ast.AssignStmt:
		c.assign(v)
	case *ast.CinStmt:
		c.cin(v)
	case *ast.CoutStmt:
		c.expr(v.Value)
		c.buf.EmitRO(OUT, RegAC, 0, 0, "")
	case *ast.CoutlnStmt:
		c.expr(v.Value)
		c.buf.EmitRO(OUTLN, RegAC, 0, 0, "")
	case *ast.IfStmt:
		c.ifStmt(v)
	case *ast.WhileStmt:
		c.whileStmt(v)
	case *ast.RepeatStmt:
		c.repeatStmt(v)
	case *ast.BreakStmt:
		c.breakPending = true
		c.breakLoc = c.buf.Skip(1)
	}
}

func (c *Compiler) assign(s *ast.AssignStmt) {
	info, _ := c.symtab.Lookup(s.Target.Value)
	// A real-typed target needs every division under it computed in real
	// arithmetic, not truncated to int and coerced afterward: coercing an
	// already-truncated quotient on store can't recover the fractional part.
	c.realCtx = info.Type == "real"
	c.expr(s.Value)
	c.realCtx = false
	c.buf.EmitRM(ST, RegAC, info.MemLocation, RegGP, fmt.Sprintf("%s :=", s.Target.Value))
}

func (c *Compiler) cin(s *ast.CinStmt) {
	info, _ := c.symtab.Lookup(s.Target.Value)
	c.buf.EmitRO(IN, RegAC, 0, 0, "")
	c.buf.EmitRM(ST, RegAC, info.MemLocation, RegGP, fmt.Sprintf("cin %s", s.Target.Value))
}

func (c *Compiler) ifStmt(s *ast.IfStmt) {
	c.expr(s.Condition)
	loc1 := c.buf.Skip(1)
	c.stmt(s.Then)

	if s.Else == nil {
		curr := c.buf.Skip(0)
		c.mustBackup(loc1)
		c.buf.EmitRMAbs(JEQ, RegAC, curr, "if false -> end")
		c.buf.Restore()
		return
	}

	loc2 := c.buf.Skip(1)
	curr := c.buf.Skip(0)
	c.mustBackup(loc1)
	c.buf.EmitRMAbs(JEQ, RegAC, curr, "if false -> else")
	c.buf.Restore()

	c.stmt(s.Else)
	curr2 := c.buf.Skip(0)
	c.mustBackup(loc2)
	c.buf.EmitRMAbs(LDA, RegPC, curr2, "jump past else")
	c.buf.Restore()
}

func (c *Compiler) whileStmt(s *ast.WhileStmt) {
	savedBreak, savedLoc := c.breakPending, c.breakLoc
	c.breakPending = false

	loc1 := c.buf.Skip(0)
	c.expr(s.Condition)
	loc2 := c.buf.Skip(1)
	c.stmt(s.Body)

	curr := c.buf.Skip(0)
	c.mustBackup(loc2)
	c.buf.EmitRMAbs(JEQ, RegAC, curr+1, "while false -> end")
	if c.breakPending {
		c.mustBackup(c.breakLoc)
		c.buf.EmitRMAbs(LDA, RegPC, curr+1, "rompe -> end")
	}
	c.buf.Restore()
	c.buf.EmitRMAbs(LDA, RegPC, loc1, "loop back")

	c.breakPending, c.breakLoc = savedBreak, savedLoc
}

func (c *Compiler) repeatStmt(s *ast.RepeatStmt) {
	savedBreak, savedLoc := c.breakPending, c.breakLoc
	c.breakPending = false

	loc1 := c.buf.Skip(0)
	c.stmt(s.Body)
	c.expr(s.Condition)

	if c.breakPending {
		loc2 := c.buf.Skip(0)
		c.mustBackup(c.breakLoc)
		c.buf.EmitRMAbs(LDA, RegPC, loc2+1, "rompe -> end")
		c.buf.Restore()
	}
	c.buf.EmitRMAbs(JEQ, RegAC, loc1, "until false -> loop back")

	c.breakPending, c.breakLoc = savedBreak, savedLoc
}

// expr emits code that leaves its result in AC.
func (c *Compiler) expr(e ast.Expression) {
	switch v := e.(type) {
	case *ast.IntegerLiteral, *ast.RealLiteral, *ast.BooleanLiteral:
		c.loadConstant(e)
	case *ast.Identifier:
		info, _ := c.symtab.Lookup(v.Value)
		c.buf.EmitRM(LD, RegAC, info.MemLocation, RegGP, v.Value)
	case *ast.UnaryExpr:
		c.unary(v)
	case *ast.BinaryExpr:
		c.binary(v)
	case *ast.Placeholder:
		// A Ø node already carries a recorded parse error; its folded
		// value mirrors the left operand, so compile that operand only.
		c.expr(v.Left)
	}
}

func (c *Compiler) loadConstant(e ast.Expression) {
	val := e.GetVal()
	var num float64
	switch val.Kind {
	case ast.BoolValue:
		if val.Bool {
			num = 1
		}
	case ast.RealValue:
		num = val.Real
	default:
		num = float64(val.Int)
	}
	c.buf.EmitRA(LDC, RegAC, num, RegAC, "")
}

func (c *Compiler) push() {
	c.buf.EmitRM(ST, RegAC, c.tmpOffset, RegMP, "push")
	c.tmpOffset--
}

func (c *Compiler) pop() {
	c.tmpOffset++
	c.buf.EmitRM(LD, RegAC1, c.tmpOffset, RegMP, "pop")
}

func (c *Compiler) unary(u *ast.UnaryExpr) {
	c.buf.EmitRA(LDC, RegAC, 0, RegAC, "")
	c.push()
	c.expr(u.Operand)
	c.pop()
	if u.Operator == "-" {
		c.buf.EmitRO(SUB, RegAC, RegAC1, RegAC, "")
	} else {
		c.buf.EmitRO(ADD, RegAC, RegAC1, RegAC, "")
	}
}

func (c *Compiler) binary(b *ast.BinaryExpr) {
	c.expr(b.Left)
	c.push()
	c.expr(b.Right)
	c.pop()
	c.applyOp(b.Operator)
}

func (c *Compiler) applyOp(op string) {
	switch op {
	case "+":
		c.buf.EmitRO(ADD, RegAC, RegAC1, RegAC, "")
	case "-":
		c.buf.EmitRO(SUB, RegAC, RegAC1, RegAC, "")
	case "*":
		c.buf.EmitRO(MUL, RegAC, RegAC1, RegAC, "")
	case "/":
		if c.realCtx {
			c.buf.EmitRO(DIVR, RegAC, RegAC1, RegAC, "")
		} else {
			c.buf.EmitRO(DIV, RegAC, RegAC1, RegAC, "")
		}
	default:
		c.compare(op)
	}
}

func (c *Compiler) compare(op string) {
	c.buf.EmitRO(SUB, RegAC, RegAC1, RegAC, "")
	c.buf.EmitRA(cmpOpcode(op), RegAC, 2, RegPC, "")
	c.buf.EmitRA(LDC, RegAC, 0, RegAC, "")
	c.buf.EmitRA(LDA, RegPC, 1, RegPC, "")
	c.buf.EmitRA(LDC, RegAC, 1, RegAC, "")
}

func cmpOpcode(op string) Opcode {
	switch op {
	case "<":
		return JLT
	case "<=":
		return JLE
	case ">":
		return JGT
	case ">=":
		return JGE
	case "==":
		return JEQ
	default: // "!="
		return JNE
	}
}
