package parser

import "strconv"

// parseIntLiteral and parseRealLiteral convert a lexeme the lexer has
// already validated against [0-9]+ / [0-9]+\.[0-9]+, so the error return
// is unreachable in practice; zero is a safe fallback if it ever isn't.
func parseIntLiteral(lexeme string) int64 {
	v, _ := strconv.ParseInt(lexeme, 10, 64)
	return v
}

func parseRealLiteral(lexeme string) float64 {
	v, _ := strconv.ParseFloat(lexeme, 64)
	return v
}
