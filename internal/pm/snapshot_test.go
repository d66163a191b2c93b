package pm

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/tinyxlang/tinyx/internal/lexer"
	"github.com/tinyxlang/tinyx/internal/parser"
	"github.com/tinyxlang/tinyx/internal/semantic"
)

// TestInstructionListingSnapshot pins the generated PM instruction listing
// for a program exercising arithmetic, a while loop, and a conditional.
func TestInstructionListingSnapshot(t *testing.T) {
	src := `main {
  int n; int f;
  n := 5; f := 1;
  while (n > 0) { f := f * n; --n; }
  if (f > 0) then { coutln f; } else { cout 0; }
}`
	p := parser.New(lexer.New(src))
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("unexpected fatal parse error: %v", err)
	}

	a := semantic.New()
	if err := a.Analyze(prog, p.Errors(), p.ErrorPositions()); err != nil {
		t.Fatalf("unexpected semantic error: %v", err)
	}
	if len(a.Errors()) != 0 {
		t.Fatalf("unexpected semantic errors: %v", a.Errors())
	}

	buf, err := Compile(prog, a.SymbolTable(), a.Errors())
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	snaps.MatchSnapshot(t, buf.Listing())
}
