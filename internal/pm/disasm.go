package pm

import (
	"fmt"
	"io"
)

// Disassemble writes a header followed by the buffer's instruction
// listing to w. Kept separate from the compiler itself, mirroring how a
// disassembler inspects already-generated code rather than producing it;
// Compile emits the listing, this is a debugging aid layered on top.
func Disassemble(w io.Writer, buf *EmitBuffer) {
	fmt.Fprintf(w, "* %d instruction(s)\n", buf.HighestEmitted())
	fmt.Fprint(w, buf.Listing())
}
