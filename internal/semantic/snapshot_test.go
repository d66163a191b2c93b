package semantic

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// TestSymbolTableDumpSnapshot pins the symtab.txt-style dump for a program
// declaring every type, assigned, folded, and referenced more than once.
func TestSymbolTableDumpSnapshot(t *testing.T) {
	_, a := analyze(t, `main {
  int x; real y; boolean z;
  x := 2 + 3 * 4;
  y := x;
  z := x > 10;
  cout x;
}`)
	if len(a.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", a.Errors())
	}
	snaps.MatchSnapshot(t, a.SymbolTable().Dump())
}
