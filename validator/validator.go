// Package validator runs a second, cheaper pass over a token stream
// before parsing: bracket balance, token-adjacency rules, and (for the
// REPL) whether a partial line of input is worth sending to the parser
// yet.
package validator

import (
	"github.com/informatter/exprlang/exprerr"
	"github.com/informatter/exprlang/token"
)

// Validate reports the first structural problem found in tokens, or nil
// if the stream is well-formed enough to attempt parsing. It does not
// replace parser.Parse's own errors — it exists so a caller (the CLI,
// Evaluator.Validate) can report a fast diagnostic without building an
// AST. The pass is optional and can be disabled at Evaluator
// construction.
func Validate(tokens []token.Token) error {
	if len(tokens) == 0 || tokens[0].Kind == token.EOF {
		return exprerr.NewParseException(exprerr.EmptyExpression, 0, "expression is empty")
	}

	depth := 0
	var previous *token.Token

	for i := range tokens {
		tok := tokens[i]

		switch tok.Kind {
		case token.LeftBracket:
			depth++
		case token.RightBracket:
			depth--
			if depth < 0 {
				return exprerr.NewParseException(exprerr.BracketMismatch, tok.Start, "unmatched ')'")
			}
		}

		if previous != nil {
			if err := checkAdjacency(*previous, tok); err != nil {
				return err
			}
		}
		if tok.Kind != token.EOF {
			previous = &tokens[i]
		}
	}

	if depth != 0 {
		return exprerr.NewParseException(exprerr.BracketMismatch, tokens[len(tokens)-1].Start, "unmatched '('")
	}
	return nil
}

func isOperand(tok token.Token) bool {
	switch tok.Kind {
	case token.Integer, token.FloatingPoint, token.Symbol, token.RightBracket:
		return true
	default:
		return false
	}
}

// startsOperand reports whether tok can begin a new primary expression
// on its own, ignoring Operator tokens entirely: whether an Operator
// token means "binary" or "unary" depends on what precedes it, which the
// parser already disambiguates, so this validator pass never needs to
// treat an operator as ambiguous.
func startsOperand(tok token.Token) bool {
	switch tok.Kind {
	case token.Integer, token.FloatingPoint, token.Symbol:
		return true
	default:
		return false
	}
}

// checkAdjacency rejects the missing-operator errors the shunting-yard
// parser can't always pin down cleanly on its own: two operand-shaped
// tokens back to back with no operator between them (e.g. "2 x", or
// "2 3"), and a non-symbol operand directly before '(' (e.g. "2(" or
// ")("), which must be rejected rather than treated as implicit
// multiplication.
func checkAdjacency(prev, cur token.Token) error {
	if isOperand(prev) && startsOperand(cur) {
		return exprerr.NewParseException(exprerr.UnexpectedToken, cur.Start,
			"missing operator between '"+prev.Value+"' and '"+cur.Value+"'")
	}
	if isOperand(prev) && cur.Kind == token.LeftBracket && prev.Kind != token.Symbol {
		return exprerr.NewParseException(exprerr.UnexpectedToken, cur.Start,
			"missing operator before '('")
	}
	return nil
}

// IsInputComplete reports whether a REPL line buffer looks finished —
// brackets balanced and not ending on a token that demands another
// operand (a trailing operator, comma, or unmatched '('). The REPL uses
// it to decide whether to keep appending lines before handing the
// buffer to the parser.
func IsInputComplete(tokens []token.Token) bool {
	depth := 0
	var lastMeaningful *token.Token
	for i := range tokens {
		tok := tokens[i]
		switch tok.Kind {
		case token.LeftBracket:
			depth++
		case token.RightBracket:
			depth--
		}
		if tok.Kind != token.EOF {
			lastMeaningful = &tokens[i]
		}
	}
	if depth != 0 {
		return false
	}
	if lastMeaningful == nil {
		return false
	}
	switch lastMeaningful.Kind {
	case token.Operator, token.ArgumentSeparator, token.LeftBracket:
		return false
	default:
		return true
	}
}
