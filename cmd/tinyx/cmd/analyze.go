package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tinyxlang/tinyx/internal/semantic"
)

var analyzeExpr string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Run semantic analysis and print the symbol table",
	Long: `Run the two-pass semantic analyzer over a Tiny-Extended program and
print its resulting symbol table (name, memory location, reference
locations, folded value, and type).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeExpr, "eval", "e", "", "analyze inline code instead of reading from file")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	input, filename, err := readProgramInput(analyzeExpr, args)
	if err != nil {
		return err
	}

	prog, parserErrs, parserErrPos, err := parseSource(input, filename)
	if err != nil {
		return err
	}
	if len(parserErrs) > 0 {
		reportErrors(parserErrs, parserErrPos, input, filename)
		return fmt.Errorf("parsing failed with %d error(s)", len(parserErrs))
	}

	a := semantic.New()
	if err := a.Analyze(prog, parserErrs, parserErrPos); err != nil {
		return fmt.Errorf("semantic analysis refused: %w", err)
	}

	if len(a.Errors()) > 0 {
		reportErrors(a.Errors(), a.ErrorPositions(), input, filename)
		return fmt.Errorf("semantic analysis failed with %d error(s)", len(a.Errors()))
	}

	fmt.Print(a.SymbolTable().Dump())
	return nil
}
