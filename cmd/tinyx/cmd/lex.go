package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tinyxlang/tinyx/internal/lexer"
	"github.com/tinyxlang/tinyx/internal/token"
)

var (
	evalExpr   string
	showPos    bool
	showType   bool
	onlyErrors bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a Tiny-Extended file or expression",
	Long: `Tokenize a Tiny-Extended program and print the resulting tokens.

Examples:
  # Tokenize a script file
  tinyx lex program.tx

  # Tokenize inline code
  tinyx lex -e "main { int x; x := 1; }"

  # Show token categories and positions
  tinyx lex --show-type --show-pos program.tx

  # Show only illegal tokens
  tinyx lex --only-errors program.tx`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&showType, "show-type", false, "show token category names")
	lexCmd.Flags().BoolVar(&onlyErrors, "only-errors", false, "show only illegal tokens")
}

func lexScript(cmd *cobra.Command, args []string) error {
	input, filename, err := readProgramInput(evalExpr, args)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Printf("Tokenizing: %s\n", filename)
		fmt.Printf("Input length: %d bytes\n", len(input))
		fmt.Println("---")
	}

	l := lexer.New(input)
	tokenCount, errorCount := 0, 0

	for {
		tok := l.NextToken()
		if onlyErrors && tok.Category != token.ILLEGAL {
			if tok.Category == token.EOF {
				break
			}
			continue
		}

		tokenCount++
		if tok.Category == token.ILLEGAL {
			errorCount++
		}
		printToken(tok)

		if tok.Category == token.EOF {
			break
		}
	}

	if verbose {
		fmt.Println("---")
		fmt.Printf("Total tokens: %d\n", tokenCount)
		if errorCount > 0 {
			fmt.Printf("Errors: %d\n", errorCount)
		}
	}

	if onlyErrors && errorCount > 0 {
		return fmt.Errorf("found %d illegal token(s)", errorCount)
	}
	return nil
}

func printToken(tok token.Token) {
	var output string

	if showType {
		output = fmt.Sprintf("[%-8s]", tok.Category)
	}

	switch {
	case tok.Category == token.EOF:
		output += " EOF"
	case tok.Category == token.ILLEGAL:
		output += fmt.Sprintf(" ILLEGAL: %q", tok.Lexeme)
	default:
		output += fmt.Sprintf(" %q", tok.Lexeme)
	}

	if showPos {
		output += fmt.Sprintf(" @%s", tok.Pos.String())
	}
	fmt.Println(output)
}

// readProgramInput resolves source text either from an inline -e expression
// or an explicit file argument; with neither it returns an error (stdin is
// not read).
func readProgramInput(eval string, args []string) (input, filename string, err error) {
	switch {
	case eval != "":
		return eval, "<eval>", nil
	case len(args) == 1:
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	default:
		return "", "", fmt.Errorf("either provide a file path or use -e for inline code")
	}
}
