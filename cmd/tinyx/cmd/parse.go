package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tinyxlang/tinyx/internal/ast"
)

var parseExpr string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a Tiny-Extended program and print its AST",
	Long: `Parse a Tiny-Extended program and display its Abstract Syntax Tree.

Use -e to parse an inline expression instead of reading a file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseExpr, "eval", "e", "", "parse inline code instead of reading from file")
}

func runParse(cmd *cobra.Command, args []string) error {
	input, filename, err := readProgramInput(parseExpr, args)
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

	fmt.Println(ast.Print(prog))
	return nil
}
