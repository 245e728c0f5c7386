// Package lexer tokenizes expression source text into an ordered token
// stream. It is locale-aware only in a narrow sense: the decimal
// separator and the argument separator are caller-supplied single
// characters, not a full culture/locale system.
package lexer

import (
	"strconv"
	"strings"

	"github.com/informatter/exprlang/exprerr"
	"github.com/informatter/exprlang/token"
)

// longestMatchOperators lists multi-character operator lexemes, longest
// first, so the scanner can try them before falling back to single
// characters. "<>" is a documented synonym for "!=".
var longestMatchOperators = []string{
	"<=", ">=", "!=", "<>", "==", "&&", "||",
}

const singleCharOperators = "+-*/%^<>="

func isLetter(r rune) bool {
	return r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isIdentChar(r rune) bool {
	return isLetter(r) || isDigit(r)
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

// Lexer scans a rune slice into a token.Token stream one token at a
// time. It holds no evaluation state, only cursor position.
type Lexer struct {
	characters []rune
	total      int
	position   int

	decimalSeparator  rune
	argumentSeparator rune
}

// New creates a Lexer for input, using decimalSeparator ('.' or ',') to
// recognize the fractional part of numeric literals and
// argumentSeparator to tokenize function-call argument boundaries.
// decimalSeparator and argumentSeparator must differ.
func New(input string, decimalSeparator, argumentSeparator rune) *Lexer {
	return &Lexer{
		characters:        []rune(input),
		total:             len([]rune(input)),
		decimalSeparator:  decimalSeparator,
		argumentSeparator: argumentSeparator,
	}
}

func (l *Lexer) isFinished() bool {
	return l.position >= l.total
}

func (l *Lexer) current() rune {
	if l.isFinished() {
		return 0
	}
	return l.characters[l.position]
}

func (l *Lexer) peekAt(offset int) rune {
	idx := l.position + offset
	if idx >= l.total {
		return 0
	}
	return l.characters[idx]
}

func (l *Lexer) advance() {
	l.position++
}

func (l *Lexer) skipWhitespace() {
	for !l.isFinished() && isWhitespace(l.current()) {
		l.advance()
	}
}

// Scan tokenizes the full input and returns the ordered token stream,
// terminated by an EOF token. Scanning stops at the first error.
func (l *Lexer) Scan() ([]token.Token, error) {
	tokens := []token.Token{}

	for {
		l.skipWhitespace()
		if l.isFinished() {
			break
		}

		start := l.position
		r := l.current()

		switch {
		case isDigit(r) || r == l.decimalSeparator:
			tok, err := l.scanNumber(start)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)

		case isLetter(r):
			tokens = append(tokens, l.scanSymbol(start))

		case r == '(':
			l.advance()
			tokens = append(tokens, token.Make(token.LeftBracket, "(", start, 1))

		case r == ')':
			l.advance()
			tokens = append(tokens, token.Make(token.RightBracket, ")", start, 1))

		case r == l.argumentSeparator:
			l.advance()
			tokens = append(tokens, token.Make(token.ArgumentSeparator, string(r), start, 1))

		default:
			tok, ok := l.scanOperator(start)
			if !ok {
				return nil, exprerr.NewParseException(exprerr.UnknownCharacter, start,
					"unexpected character '"+string(r)+"'")
			}
			tokens = append(tokens, tok)
		}
	}

	tokens = append(tokens, token.Make(token.EOF, "", l.position, 0))
	return tokens, nil
}

// scanOperator tries every longest-match multi-character operator before
// falling back to a single-character one.
func (l *Lexer) scanOperator(start int) (token.Token, bool) {
	remaining := string(l.characters[l.position:min(l.position+2, l.total)])
	for _, op := range longestMatchOperators {
		if strings.HasPrefix(remaining, op) {
			l.position += len(op)
			value := op
			if op == "<>" {
				value = token.NotEqual
			}
			return token.Make(token.Operator, value, start, len([]rune(op))), true
		}
	}

	r := l.current()
	if strings.ContainsRune(singleCharOperators, r) {
		l.advance()
		return token.Make(token.Operator, string(r), start, 1), true
	}
	return token.Token{}, false
}

// scanSymbol consumes a maximal run of letters/digits/underscore
// beginning with a letter or underscore.
func (l *Lexer) scanSymbol(start int) token.Token {
	for !l.isFinished() && isIdentChar(l.current()) {
		l.advance()
	}
	value := string(l.characters[start:l.position])
	return token.Make(token.Symbol, value, start, l.position-start)
}

// scanNumber consumes a maximal run of digits, optionally containing
// exactly one decimal-separator character and an optional exponent
// (e[+-]?digits). No separator/exponent => Integer, parsed as signed
// 64-bit and promoted to FloatingPoint on overflow. Any separator or
// exponent => FloatingPoint.
func (l *Lexer) scanNumber(start int) (token.Token, error) {
	sawSeparator := false
	sawExponent := false

	for !l.isFinished() {
		r := l.current()
		if isDigit(r) {
			l.advance()
			continue
		}
		if r == l.decimalSeparator && !sawSeparator && !sawExponent {
			sawSeparator = true
			l.advance()
			continue
		}
		if (r == 'e' || r == 'E') && !sawExponent {
			lookahead := 1
			if sign := l.peekAt(1); sign == '+' || sign == '-' {
				lookahead = 2
			}
			if !isDigit(l.peekAt(lookahead)) {
				// not actually an exponent (e.g. a trailing identifier); stop here
				break
			}
			sawExponent = true
			l.advance() // consume 'e'/'E'
			if sign := l.current(); sign == '+' || sign == '-' {
				l.advance()
			}
			continue
		}
		break
	}

	raw := string(l.characters[start:l.position])
	if raw == "" || raw == string(l.decimalSeparator) {
		return token.Token{}, exprerr.NewParseException(exprerr.MalformedNumber, start,
			"malformed numeric literal '"+raw+"'")
	}

	length := l.position - start
	if !sawSeparator && !sawExponent {
		return token.Make(token.Integer, raw, start, length), nil
	}

	normalized := strings.ReplaceAll(raw, string(l.decimalSeparator), ".")
	if _, err := strconv.ParseFloat(normalized, 64); err != nil {
		return token.Token{}, exprerr.NewParseException(exprerr.MalformedNumber, start,
			"malformed numeric literal '"+raw+"'")
	}
	// The token carries the '.'-normalized form: downstream stages (the
	// parser's strconv.ParseFloat, the optimizer's constant folding)
	// only ever need to parse a valid Go float literal, not reproduce
	// the caller's chosen decimal separator.
	return token.Make(token.FloatingPoint, normalized, start, length), nil
}
