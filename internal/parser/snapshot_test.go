package parser

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/tinyxlang/tinyx/internal/ast"
	"github.com/tinyxlang/tinyx/internal/lexer"
)

// TestASTRenderSnapshot pins the indented tree render for a program that
// exercises every statement kind, rather than hand-asserting every node.
func TestASTRenderSnapshot(t *testing.T) {
	src := `main {
  int n; int f;
  n := 5; f := 1;
  while (n > 0) { f := f * n; --n; }
  repeat { cin n; } until (n == 0);
  if (f > 0) then { coutln f; } else { cout 0; }
}`
	p := New(lexer.New(src))
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("unexpected fatal parse error: %v", err)
	}
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	snaps.MatchSnapshot(t, ast.Print(prog))
}
