package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tinyxlang/tinyx/internal/pm"
	"github.com/tinyxlang/tinyx/internal/semantic"
)

var (
	compileOutput      string
	compileDisassemble bool
)

var compileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Compile a Tiny-Extended program to a PM instruction listing",
	Long: `Compile a Tiny-Extended program through the full pipeline (lex, parse,
analyze, codegen) and write the resulting PM instruction listing.

Examples:
  # Compile a script, writing program.pm next to it
  tinyx compile program.tx

  # Compile with a custom output path
  tinyx compile program.tx -o out.pm

  # Compile and also print the disassembly to stderr
  tinyx compile program.tx --disassemble`,
	Args: cobra.ExactArgs(1),
	RunE: compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "output file (default: <input>.pm)")
	compileCmd.Flags().BoolVar(&compileDisassemble, "disassemble", false, "print disassembled bytecode to stderr")
}

func compileScript(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	input := string(content)

	if verbose {
		fmt.Fprintf(os.Stderr, "Compiling %s...\n", filename)
	}

	buf, symtab, err := compilePipeline(input, filename)
	if err != nil {
		return err
	}

	if compileDisassemble {
		fmt.Fprintf(os.Stderr, "\n== Disassembly: %s ==\n", filename)
		pm.Disassemble(os.Stderr, buf)
		fmt.Fprintln(os.Stderr)
	}

	outFile := compileOutput
	if outFile == "" {
		ext := filepath.Ext(filename)
		if ext != "" {
			outFile = strings.TrimSuffix(filename, ext) + ".pm"
		} else {
			outFile = filename + ".pm"
		}
	}

	if err := os.WriteFile(outFile, []byte(buf.Listing()), 0o644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outFile, err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "%d instruction(s) written to %s\n", buf.HighestEmitted(), outFile)
		fmt.Fprintf(os.Stderr, "symbol table:\n%s", symtab.Dump())
	} else {
		fmt.Printf("Compiled %s -> %s\n", filename, outFile)
	}
	return nil
}

// compilePipeline runs lex/parse/analyze/codegen over input, reporting
// diagnostics the same way every subcommand does, and returns the
// generated instruction buffer alongside the symbol table codegen used.
func compilePipeline(input, filename string) (*pm.EmitBuffer, *semantic.SymbolTable, error) {
	prog, parserErrs, parserErrPos, err := parseSource(input, filename)
	if err != nil {
		return nil, nil, err
	}
	if len(parserErrs) > 0 {
		reportErrors(parserErrs, parserErrPos, input, filename)
		return nil, nil, fmt.Errorf("parsing failed with %d error(s)", len(parserErrs))
	}

	a := semantic.New()
	if aerr := a.Analyze(prog, parserErrs, parserErrPos); aerr != nil {
		return nil, nil, fmt.Errorf("semantic analysis refused: %w", aerr)
	}
	if len(a.Errors()) > 0 {
		reportErrors(a.Errors(), a.ErrorPositions(), input, filename)
		return nil, nil, fmt.Errorf("semantic analysis failed with %d error(s)", len(a.Errors()))
	}

	buf, err := pm.Compile(prog, a.SymbolTable(), a.Errors())
	if err != nil {
		return nil, nil, fmt.Errorf("codegen failed: %w", err)
	}
	return buf, a.SymbolTable(), nil
}
