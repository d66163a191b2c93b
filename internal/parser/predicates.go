package parser

import "github.com/tinyxlang/tinyx/internal/token"

// tokenPred is a predicate over a token, used both to describe what a
// production expects next and to describe a synchronizing set a recovery
// scan stops at.
type tokenPred func(token.Token) bool

func isLexeme(lexemes ...string) tokenPred {
	return func(t token.Token) bool {
		for _, l := range lexemes {
			if t.Lexeme == l {
				return true
			}
		}
		return false
	}
}

func isCategory(cats ...token.Category) tokenPred {
	return func(t token.Token) bool {
		for _, c := range cats {
			if t.Category == c {
				return true
			}
		}
		return false
	}
}

func anyOf(preds ...tokenPred) tokenPred {
	return func(t token.Token) bool {
		for _, p := range preds {
			if p(t) {
				return true
			}
		}
		return false
	}
}

var (
	isID      = isCategory(token.IDENT)
	isNum     = isCategory(token.INT, token.REAL)
	isIncDec  = isLexeme("++", "--")
	isAddOp   = isLexeme("+", "-")
	isMulOp   = isLexeme("*", "/")
	isRelOp   = isLexeme("<=", "<", ">=", ">", "==", "!=")
	isTypeKw  = isLexeme("int", "real", "boolean")
	isEOF     = isCategory(token.EOF)
)

// startsFactor reports whether t can begin a factor: "(" | NUM | ID | True | False.
var startsFactor = anyOf(isLexeme("("), isNum, isID, isCategory(token.BOOLEAN))

// startsStatement reports whether t can begin a statement.
var startsStatement = anyOf(
	isLexeme("if", "while", "repeat", "cin", "cout", "coutln", "rompe", "{"),
	isID,
	isIncDec,
)

// declSync is where declaration-list recovery gives up and lets the
// caller try the next construct: the start of another declaration, the
// start of a statement, or the block's closing brace / end of input.
var declSync = anyOf(isTypeKw, startsStatement, isLexeme("}"), isEOF)

// stmtSync is where statement-level recovery (missing ";", bad operand,
// ...) gives up: the start of the next statement, a block delimiter, or
// end of input.
var stmtSync = anyOf(startsStatement, isLexeme("}", ";"), isEOF)

// exprSync is where expression recovery gives up.
var exprSync = anyOf(isLexeme(")", ";", "{", "}"), isEOF)

// blockStartSync/declOrStmtSync/condStartSync are narrower syncsets used around
// specific punctuation (parens, braces, "then"/"until") so a single
// missing token only swallows up to that boundary.
var blockStartSync = anyOf(isLexeme("{"), stmtSync)
var declOrStmtSync = anyOf(isTypeKw, startsStatement, isLexeme("}"), isEOF)
var condStartSync = anyOf(startsFactor, isLexeme(")"), stmtSync)
