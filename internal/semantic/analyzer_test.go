package semantic

import (
	"math"
	"strings"
	"testing"

	"github.com/tinyxlang/tinyx/internal/ast"
	"github.com/tinyxlang/tinyx/internal/lexer"
	"github.com/tinyxlang/tinyx/internal/parser"
)

func analyze(t *testing.T, src string) (*ast.Program, *Analyzer) {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("unexpected fatal parse error: %v", err)
	}
	a := New()
	_ = a.Analyze(prog, p.Errors(), p.ErrorPositions())
	return prog, a
}

func TestDeclarationAssignsSequentialMemLocations(t *testing.T) {
	_, a := analyze(t, `main { int x; real y; boolean z; }`)
	if len(a.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", a.Errors())
	}
	for i, name := range []string{"x", "y", "z"} {
		info, ok := a.SymbolTable().Lookup(name)
		if !ok {
			t.Fatalf("expected %s to be declared", name)
		}
		if info.MemLocation != i {
			t.Fatalf("expected %s at mem_location %d, got %d", name, i, info.MemLocation)
		}
	}
}

func TestAlreadyDeclared(t *testing.T) {
	_, a := analyze(t, `main { int x; int x; }`)
	if !containsError(a, "ALREADY_DECLARED: x") {
		t.Fatalf("expected ALREADY_DECLARED, got %v", a.Errors())
	}
}

func TestNotDeclared(t *testing.T) {
	_, a := analyze(t, `main { cout x; }`)
	if !containsError(a, "NOT_DECLARED: x") {
		t.Fatalf("expected NOT_DECLARED, got %v", a.Errors())
	}
}

func TestDivisionByZeroFoldsToInfinity(t *testing.T) {
	prog, a := analyze(t, `main { int x; x := 1 / 0; }`)
	if !containsError(a, "DIVISION_BY_ZERO") {
		t.Fatalf("expected DIVISION_BY_ZERO, got %v", a.Errors())
	}
	assign := prog.Statements[0].(*ast.AssignStmt)
	bin := assign.Value.(*ast.BinaryExpr)
	if bin.GetVal().Kind != ast.RealValue || !math.IsInf(bin.GetVal().Real, 1) {
		t.Fatalf("expected folded +Inf, got %#v", bin.GetVal())
	}
}

func TestConstantFoldingArithmetic(t *testing.T) {
	prog, a := analyze(t, `main { int x; x := 2 + 3 * 4; }`)
	if len(a.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", a.Errors())
	}
	assign := prog.Statements[0].(*ast.AssignStmt)
	if assign.Value.GetVal().Int != 14 {
		t.Fatalf("expected folded value 14, got %v", assign.Value.GetVal())
	}
}

func TestRealCoercionOnAssignment(t *testing.T) {
	prog, a := analyze(t, `main { real x; x := 3; }`)
	if len(a.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", a.Errors())
	}
	assign := prog.Statements[0].(*ast.AssignStmt)
	if assign.Target.GetType() != "real" || assign.Target.GetVal().Kind != ast.RealValue {
		t.Fatalf("expected target coerced to real, got %#v", assign.Target.GetVal())
	}
}

func TestTypeMismatchOnAssignment(t *testing.T) {
	_, a := analyze(t, `main { boolean x; int y; x := y; }`)
	if !containsError(a, "TYPE_MISMATCH") {
		t.Fatalf("expected TYPE_MISMATCH, got %v", a.Errors())
	}
}

func TestConditionCoercedToBoolean(t *testing.T) {
	prog, a := analyze(t, `main { int x; x := 5; if (x) then { cout x; } }`)
	if len(a.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", a.Errors())
	}
	ifStmt := prog.Statements[1].(*ast.IfStmt)
	if ifStmt.Condition.GetType() != "boolean" || !ifStmt.Condition.GetVal().Bool {
		t.Fatalf("expected condition coerced to boolean true, got %#v", ifStmt.Condition.GetVal())
	}
}

func TestRelationalConditionNotDoubleCoerced(t *testing.T) {
	prog, a := analyze(t, `main { int x; x := 5; if (x > 1) then { cout x; } }`)
	if len(a.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", a.Errors())
	}
	ifStmt := prog.Statements[1].(*ast.IfStmt)
	if ifStmt.Condition.GetType() != "boolean" || !ifStmt.Condition.GetVal().Bool {
		t.Fatalf("expected relational condition to fold true, got %#v", ifStmt.Condition.GetVal())
	}
}

func TestSyntaxErrorsRemainRefusesAnalysis(t *testing.T) {
	p := parser.New(lexer.New(`main { int x x := 1; }`))
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	a := New()
	aerr := a.Analyze(prog, p.Errors(), p.ErrorPositions())
	if aerr == nil || !strings.Contains(aerr.Error(), "SYNTAX_ERRORS_REMAIN") {
		t.Fatalf("expected SYNTAX_ERRORS_REMAIN, got %v", aerr)
	}
}

func TestErrorsDedupedByMessage(t *testing.T) {
	// ++x reports NOT_DECLARED for both the desugared read of x and the
	// assignment target, and both carry x's own position, so the two
	// messages are identical and must collapse into one.
	_, a := analyze(t, `main { ++x; }`)
	count := 0
	for _, e := range a.Errors() {
		if strings.Contains(e, "NOT_DECLARED: x") {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected NOT_DECLARED: x deduped to 1 occurrence, got %d in %v", count, a.Errors())
	}
}

func TestSymbolTableDump(t *testing.T) {
	_, a := analyze(t, `main { int x; x := 7; }`)
	dump := a.SymbolTable().Dump()
	if !strings.Contains(dump, "x: 0#") {
		t.Fatalf("expected dump to describe x at mem_location 0, got %q", dump)
	}
}

func containsError(a *Analyzer, substr string) bool {
	for _, e := range a.Errors() {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}
