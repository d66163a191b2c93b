package lexer

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/tinyxlang/tinyx/internal/token"
)

// TestTokenStreamSnapshot pins the exact token dump for a representative
// program, snapshotting the derived textual artifact instead of
// re-asserting every field by hand.
func TestTokenStreamSnapshot(t *testing.T) {
	src := `main {
  int x; real y; boolean done;
  x := 2 + 3 * 4;
  if (x > 10) then { cout x; } else { coutln 0; }
  while (x > 0) { --x; }
}`
	l := New(src)
	var sb strings.Builder
	for {
		tok := l.NextToken()
		sb.WriteString(tok.String())
		sb.WriteString("\n")
		if tok.Category == token.EOF {
			break
		}
	}
	snaps.MatchSnapshot(t, sb.String())
}
