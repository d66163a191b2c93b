package parser

import (
	"testing"

	"github.com/tinyxlang/tinyx/internal/ast"
	"github.com/tinyxlang/tinyx/internal/lexer"
)

func parse(t *testing.T, src string) (*ast.Program, *Parser) {
	t.Helper()
	l := lexer.New(src)
	p := New(l)
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	return prog, p
}

func TestParseSimpleProgram(t *testing.T) {
	prog, p := parse(t, `main { int x; x := 2 + 3 * 4; cout x; }`)
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	if len(prog.Declarations) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(prog.Declarations))
	}
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	assign, ok := prog.Statements[0].(*ast.AssignStmt)
	if !ok {
		t.Fatalf("expected AssignStmt, got %T", prog.Statements[0])
	}
	bin, ok := assign.Value.(*ast.BinaryExpr)
	if !ok || bin.Operator != "+" {
		t.Fatalf("expected top-level '+' node, got %#v", assign.Value)
	}
}

func TestExpressionLeftAssociativity(t *testing.T) {
	prog, p := parse(t, `main { int x; x := 1 - 2 - 3; }`)
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	assign := prog.Statements[0].(*ast.AssignStmt)
	outer, ok := assign.Value.(*ast.BinaryExpr)
	if !ok || outer.Operator != "-" {
		t.Fatalf("expected outer '-' node, got %#v", assign.Value)
	}
	inner, ok := outer.Left.(*ast.BinaryExpr)
	if !ok || inner.Operator != "-" {
		t.Fatalf("expected (1 - 2) on the left, got %#v", outer.Left)
	}
}

func TestIncrementDecrementDesugaring(t *testing.T) {
	for _, src := range []string{
		`main { int i; ++i; }`,
		`main { int i; i++; }`,
	} {
		prog, p := parse(t, src)
		if len(p.Errors()) != 0 {
			t.Fatalf("unexpected errors for %q: %v", src, p.Errors())
		}
		assign, ok := prog.Statements[0].(*ast.AssignStmt)
		if !ok {
			t.Fatalf("expected AssignStmt for %q, got %T", src, prog.Statements[0])
		}
		bin, ok := assign.Value.(*ast.BinaryExpr)
		if !ok || bin.Operator != "+" {
			t.Fatalf("expected desugared '+' node for %q, got %#v", src, assign.Value)
		}
		read, ok := bin.Left.(*ast.Identifier)
		if !ok || !read.IncDec {
			t.Fatalf("expected IncDec-marked identifier operand for %q", src)
		}
	}
}

func TestMissingSemicolonRecoversWithOneError(t *testing.T) {
	prog, p := parse(t, `main { int x x := 1; }`)
	if len(p.Errors()) != 1 {
		t.Fatalf("expected exactly 1 error, got %d: %v", len(p.Errors()), p.Errors())
	}
	if len(prog.Declarations) != 1 || len(prog.Statements) != 1 {
		t.Fatalf("expected declaration and assignment to still be parsed, got decls=%d stmts=%d",
			len(prog.Declarations), len(prog.Statements))
	}
}

func TestConditionPlaceholderInsertion(t *testing.T) {
	// Two consecutive factors inside a condition with no operator between
	// them: the parser must insert a Ø node rather than silently dropping
	// the second operand.
	prog, p := parse(t, `main { int x; if (x 5) then { cout x; } }`)
	if len(p.Errors()) == 0 {
		t.Fatalf("expected a recorded placeholder error")
	}
	ifStmt, ok := prog.Statements[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected IfStmt, got %T", prog.Statements[0])
	}
	if _, ok := ifStmt.Condition.(*ast.Placeholder); !ok {
		t.Fatalf("expected Placeholder condition, got %#v", ifStmt.Condition)
	}
}

func TestCodeAfterMain(t *testing.T) {
	_, p := parse(t, `main { } garbage`)
	found := false
	for _, e := range p.Errors() {
		if contains(e, "CODE_AFTER_MAIN") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected CODE_AFTER_MAIN error, got %v", p.Errors())
	}
}

func TestCodeBeforeMain(t *testing.T) {
	_, p := parse(t, `main { int x;`)
	found := false
	for _, e := range p.Errors() {
		if contains(e, "CODE_BEFORE_MAIN") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected CODE_BEFORE_MAIN error, got %v", p.Errors())
	}
}

func TestMalformedDeclarationNameIsDropped(t *testing.T) {
	// A digit where an identifier is expected must be discarded during
	// recovery, not fabricated into a spurious Identifier node.
	prog, p := parse(t, `main { int 5, y; }`)
	if len(p.Errors()) == 0 {
		t.Fatalf("expected at least one recorded error")
	}
	if len(prog.Declarations) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(prog.Declarations))
	}
	for _, id := range prog.Declarations[0].Names {
		if id.Value == "5" {
			t.Fatalf("malformed token must not produce a fabricated Identifier, got %#v", prog.Declarations[0].Names)
		}
	}
}

func TestLexicalErrorAborts(t *testing.T) {
	l := lexer.New("main { int x; x := 1 @ 2; }")
	p := New(l)
	_, err := p.ParseProgram()
	if err == nil {
		t.Fatalf("expected a LexicalError")
	}
	if _, ok := err.(*LexicalError); !ok {
		t.Fatalf("expected *LexicalError, got %T", err)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
