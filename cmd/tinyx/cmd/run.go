package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tinyxlang/tinyx/internal/pm"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Compile and run a Tiny-Extended program on the PM machine",
	Long: `Compile a Tiny-Extended program through the full pipeline and hand the
resulting instruction listing to the PM machine's interactive REPL,
wiring os.Stdin/os.Stdout to the program's cin/cout/coutln.`,
	Args: cobra.ExactArgs(1),
	RunE: runProgram,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runProgram(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	buf, symtab, err := compilePipeline(string(content), filename)
	if err != nil {
		return err
	}

	instrs, err := pm.ParseListing(buf.Listing())
	if err != nil {
		return fmt.Errorf("internal error: generated listing failed to parse: %w", err)
	}

	vm := pm.NewVM(symtab, os.Stdin, os.Stdout)
	vm.Load(instrs)

	repl := pm.NewREPL(vm, os.Stdin, os.Stdout)
	return repl.Run()
}
