// Command tinyx drives the Tiny-Extended compiler pipeline: lexer, parser,
// semantic analyzer, PM codegen, and the PM register machine itself.
package main

import (
	"fmt"
	"os"

	"github.com/tinyxlang/tinyx/cmd/tinyx/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
