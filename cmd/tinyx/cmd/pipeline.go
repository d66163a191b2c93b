package cmd

import (
	"fmt"
	"os"

	"github.com/tinyxlang/tinyx/internal/ast"
	"github.com/tinyxlang/tinyx/internal/errors"
	"github.com/tinyxlang/tinyx/internal/lexer"
	"github.com/tinyxlang/tinyx/internal/parser"
	"github.com/tinyxlang/tinyx/internal/token"
)

var noColor bool

// wantColor reports whether diagnostics should carry ANSI color: off when
// --no-color is set, or when stderr isn't a terminal (piped to a file or
// another process).
func wantColor() bool {
	if noColor {
		return false
	}
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// parseSource lexes and parses input, surfacing the parser's own fatal
// error (a lexical error) separately from its recoverable
// diagnostics, so every subcommand can report both the same way.
func parseSource(input, filename string) (*ast.Program, []string, []token.Position, error) {
	p := parser.New(lexer.New(input))
	prog, err := p.ParseProgram()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fatal parse error: %w", err)
	}
	return prog, p.Errors(), p.ErrorPositions(), nil
}

// reportErrors renders diagnostics from any pipeline stage with a
// source-excerpt-and-caret, the way every stage of this toolchain reports
// problems back to the terminal.
func reportErrors(msgs []string, pos []token.Position, source, file string) {
	compilerErrors := errors.FromStringErrors(msgs, pos, source, file)
	fmt.Fprint(os.Stderr, errors.FormatErrors(compilerErrors, wantColor()))
	fmt.Fprintln(os.Stderr)
}
