package pm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tinyxlang/tinyx/internal/lexer"
	"github.com/tinyxlang/tinyx/internal/parser"
	"github.com/tinyxlang/tinyx/internal/semantic"
)

func run(t *testing.T, src, stdin string) string {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("unexpected fatal parse error: %v", err)
	}
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}

	a := semantic.New()
	if err := a.Analyze(prog, p.Errors(), p.ErrorPositions()); err != nil {
		t.Fatalf("unexpected semantic error: %v", err)
	}

	buf, err := Compile(prog, a.SymbolTable(), a.Errors())
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	instrs, err := ParseListing(buf.Listing())
	if err != nil {
		t.Fatalf("listing failed to round-trip: %v", err)
	}

	var out bytes.Buffer
	vm := NewVM(a.SymbolTable(), strings.NewReader(stdin), &out)
	vm.Load(instrs)
	if _, err := vm.Run(); err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	return out.String()
}

func TestArithmeticPrecedence(t *testing.T) {
	got := run(t, `main { int x; x := 2 + 3 * 4; cout x; }`, "")
	if got != "14" {
		t.Fatalf("expected %q, got %q", "14", got)
	}
}

func TestWhileLoopFactorial(t *testing.T) {
	src := `main { int n; int f; n := 5; f := 1; while (n > 0) { f := f * n; --n; } coutln f; }`
	got := run(t, src, "")
	if got != "120\n" {
		t.Fatalf("expected %q, got %q", "120\n", got)
	}
}

func TestRepeatUntilWithBreak(t *testing.T) {
	src := `main { int i; i := 0; repeat { ++i; if (i == 3) then { rompe; } } until (i == 10); coutln i; }`
	got := run(t, src, "")
	if got != "3\n" {
		t.Fatalf("expected %q, got %q", "3\n", got)
	}
}

func TestRealDivisionCoercion(t *testing.T) {
	got := run(t, `main { real x; x := 7 / 2; coutln x; }`, "")
	if got != "3.5\n" {
		t.Fatalf("expected %q, got %q", "3.5\n", got)
	}
}

func TestIntDivisionTruncates(t *testing.T) {
	got := run(t, `main { int x; x := 7 / 2; coutln x; }`, "")
	if got != "3\n" {
		t.Fatalf("expected %q, got %q", "3\n", got)
	}
}

func TestBooleanConditionBranch(t *testing.T) {
	src := `main { boolean b; b := 3 < 5; if (b) then { coutln 1; } else { coutln 0; } }`
	got := run(t, src, "")
	if got != "1\n" {
		t.Fatalf("expected %q, got %q", "1\n", got)
	}
}

func TestCinReadsStdin(t *testing.T) {
	got := run(t, `main { int x; cin x; coutln x; }`, "42\n")
	if got != "42\n" {
		t.Fatalf("expected %q, got %q", "42\n", got)
	}
}

func TestCompileRefusesWhenSemanticErrorsRemain(t *testing.T) {
	p := parser.New(lexer.New(`main { int x; x := 5 / 0; }`))
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("unexpected fatal parse error: %v", err)
	}
	a := semantic.New()
	_ = a.Analyze(prog, p.Errors(), p.ErrorPositions())
	if len(a.Errors()) == 0 {
		t.Fatalf("expected a DIVISION_BY_ZERO semantic error")
	}
	if _, err := Compile(prog, a.SymbolTable(), a.Errors()); err == nil {
		t.Fatalf("expected Compile to refuse with semantic errors pending")
	}
}

func TestDivisionByZeroAtRuntime(t *testing.T) {
	// y is read at runtime, so its value is unknown to the analyzer and the
	// division survives semantic analysis; the PM's own DIV guard must catch
	// the zero divisor that only shows up once the program actually runs.
	p := parser.New(lexer.New(`main { int x; int y; cin y; x := 5 / y; }`))
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("unexpected fatal parse error: %v", err)
	}
	a := semantic.New()
	if err := a.Analyze(prog, p.Errors(), p.ErrorPositions()); err != nil {
		t.Fatalf("unexpected semantic error: %v", err)
	}
	if len(a.Errors()) != 0 {
		t.Fatalf("expected no semantic errors, got %v", a.Errors())
	}
	buf, err := Compile(prog, a.SymbolTable(), a.Errors())
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	var out bytes.Buffer
	vm := NewVM(a.SymbolTable(), strings.NewReader("0\n"), &out)
	vm.Load(buf.Instructions())
	if _, err := vm.Run(); err == nil {
		t.Fatalf("expected DIVISION_BY_ZERO at runtime")
	}
}

func TestListingRoundTrip(t *testing.T) {
	p := parser.New(lexer.New(`main { int x; x := 2 + 3 * 4; cout x; }`))
	prog, _ := p.ParseProgram()
	a := semantic.New()
	_ = a.Analyze(prog, p.Errors(), p.ErrorPositions())
	buf, err := Compile(prog, a.SymbolTable(), a.Errors())
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	instrs, err := ParseListing(buf.Listing())
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	want := buf.Instructions()
	if len(instrs) != len(want) {
		t.Fatalf("expected %d instructions, got %d", len(want), len(instrs))
	}
	for i := range want {
		if instrs[i] != want[i] {
			t.Fatalf("instruction %d mismatch: got %#v, want %#v", i, instrs[i], want[i])
		}
	}
}

func TestEmitBufferBackupPastHighestEmittedIsBug(t *testing.T) {
	b := NewEmitBuffer()
	b.EmitRO(HALT, 0, 0, 0, "")
	if err := b.Backup(5); err == nil {
		t.Fatalf("expected BUG_IN_EMIT for backup past highestEmitted")
	}
}
