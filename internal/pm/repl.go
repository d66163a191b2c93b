package pm

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// REPL is the interactive PM front end: prompt "Enter command:",
// commands g/c/h/q.
type REPL struct {
	vm  *VM
	in  *bufio.Scanner
	out io.Writer
}

// NewREPL wires a REPL to the given VM and injected I/O streams.
func NewREPL(vm *VM, in io.Reader, out io.Writer) *REPL {
	return &REPL{vm: vm, in: bufio.NewScanner(in), out: out}
}

// Run serves commands until `q` or the input stream is exhausted.
func (r *REPL) Run() error {
	for {
		fmt.Fprint(r.out, "Enter command: ")
		if !r.in.Scan() {
			return r.in.Err()
		}
		switch cmd := strings.TrimSpace(r.in.Text()); cmd {
		case "g":
			count, err := r.vm.Run()
			if err != nil {
				fmt.Fprintf(r.out, "error: %v\n", err)
				continue
			}
			fmt.Fprintf(r.out, "halted after %d instruction(s)\n", count)
		case "c":
			r.vm.Reset()
		case "h":
			fmt.Fprintln(r.out, "g: run to completion   c: reset machine state   h: this help   q: quit")
		case "q":
			return nil
		default:
			fmt.Fprintf(r.out, "unknown command %q\n", cmd)
		}
	}
}
