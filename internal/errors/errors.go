// Package errors provides shared diagnostic formatting for every pipeline
// stage: a CompilerError carries a source excerpt and a caret pointing at
// the offending column.
package errors

import (
	"fmt"
	"strings"

	"github.com/tinyxlang/tinyx/internal/token"
)

// CompilerError is one diagnostic with enough context to render a
// source-excerpt-and-caret message.
type CompilerError struct {
	Message string
	Source  string
	File    string
	Pos     token.Position
}

// NewCompilerError builds a CompilerError.
func NewCompilerError(pos token.Position, message, source, file string) *CompilerError {
	return &CompilerError{Pos: pos, Message: message, Source: source, File: file}
}

// Error implements the error interface with an uncolored rendering.
func (e *CompilerError) Error() string { return e.Format(false) }

// Format renders the error with a source excerpt and caret. When color is
// true, ANSI codes highlight the caret line for terminal output.
func (e *CompilerError) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "Error in %s:%d:%d\n", e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "Error at %d:%d\n", e.Pos.Line, e.Pos.Column)
	}

	if line := sourceLine(e.Source, e.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")

		sb.WriteString(strings.Repeat(" ", len(prefix)+max(e.Pos.Column-1, 0)))
		if color {
			sb.WriteString("\033[1;31m^\033[0m")
		} else {
			sb.WriteString("^")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(e.Message)
	return sb.String()
}

func sourceLine(source string, line int) string {
	lines := strings.Split(source, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// FormatErrors joins multiple diagnostics for batch reporting, each
// separated by a blank line.
func FormatErrors(errs []*CompilerError, color bool) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Format(color)
	}
	return strings.Join(parts, "\n\n")
}

// FromStringErrors wraps plain "message" strings that already carry their
// own location text (as the parser and semantic stages produce)
// into CompilerErrors carrying the shared source/file context, so the CLI
// can render every stage the same way.
func FromStringErrors(msgs []string, pos []token.Position, source, file string) []*CompilerError {
	out := make([]*CompilerError, len(msgs))
	for i, m := range msgs {
		var p token.Position
		if i < len(pos) {
			p = pos[i]
		}
		out[i] = NewCompilerError(p, m, source, file)
	}
	return out
}
