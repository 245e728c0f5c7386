// Package parser builds an ast.Operation tree from a token.Token stream
// using the shunting-yard algorithm: an explicit operand stack and
// operator stack driven by a precedence table, producing the AST
// directly rather than a postfix stream.
package parser

import (
	"github.com/informatter/exprlang/ast"
	"github.com/informatter/exprlang/exprerr"
	"github.com/informatter/exprlang/registry"
	"github.com/informatter/exprlang/token"
)

// Parser turns a token stream into an ast.Operation. Functions, when
// non-nil, is consulted to resolve a call's arity; when nil, arity is
// not checked at parse time (it still fails later, at evaluation time,
// when the executor's registry lookup misses).
type Parser struct {
	tokens    []token.Token
	position  int
	functions *registry.FunctionRegistry
}

// New creates a Parser over tokens. functions may be nil.
func New(tokens []token.Token, functions *registry.FunctionRegistry) *Parser {
	return &Parser{tokens: tokens, functions: functions}
}

// Parse consumes the entire token stream and returns the resulting
// ast.Operation tree, or the first ParseException encountered.
func Parse(tokens []token.Token, functions *registry.FunctionRegistry) (ast.Operation, error) {
	return New(tokens, functions).Parse()
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.position]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.position-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == token.EOF
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.position++
	}
	return p.previous()
}

func (p *Parser) check(kind token.Kind) bool {
	if p.isAtEnd() {
		return kind == token.EOF
	}
	return p.peek().Kind == kind
}

// operator describes a binary or unary operator on the operator stack,
// carrying enough information to pop-and-apply in precedence order.
type operator struct {
	lexeme        string
	precedence    int
	rightAssoc    bool
	isUnaryMinus  bool
	isFunctionArg bool // sentinel: marks a '(' pushed for a function call
	funcName      string
	argCount      int
}

const leftParenSentinel = "("

// precedenceOf returns an operator's binding power; higher binds
// tighter. Logical Or binds loosest, exponentiation tightest among
// binary operators.
func precedenceOf(lexeme string) (prec int, rightAssoc bool) {
	switch lexeme {
	case token.Or:
		return 1, false
	case token.And:
		return 2, false
	case token.Equal, token.NotEqual:
		return 3, false
	case token.Less, token.LessOrEqual, token.Greater, token.GreaterOrEqual:
		return 4, false
	case token.Add, token.Sub:
		return 5, false
	case token.Mul, token.Div, token.Mod:
		return 6, false
	case token.Pow:
		return 7, true
	default:
		return 0, false
	}
}

// Unary minus binds tighter than every binary operator, including '^':
// "-2^2" is (-2)^2, and "2^-3" is 2^(-3).
const unaryMinusPrecedence = 8

func binaryKindOf(lexeme string) ast.BinaryKind {
	switch lexeme {
	case token.Add:
		return ast.Addition
	case token.Sub:
		return ast.Subtraction
	case token.Mul:
		return ast.Multiplication
	case token.Div:
		return ast.Division
	case token.Mod:
		return ast.Modulo
	case token.Pow:
		return ast.Exponentiation
	case token.And:
		return ast.And
	case token.Or:
		return ast.Or
	case token.Less:
		return ast.LessThan
	case token.LessOrEqual:
		return ast.LessOrEqualThan
	case token.Greater:
		return ast.GreaterThan
	case token.GreaterOrEqual:
		return ast.GreaterOrEqualThan
	case token.Equal:
		return ast.Equal
	case token.NotEqual:
		return ast.NotEqual
	default:
		panic("parser: binaryKindOf called with a non-binary-operator lexeme: " + lexeme)
	}
}

// Parse runs the shunting-yard algorithm over the full token stream.
func (p *Parser) Parse() (ast.Operation, error) {
	if p.isAtEnd() {
		return nil, exprerr.NewParseException(exprerr.EmptyExpression, 0, "expression is empty")
	}

	var operands []ast.Operation
	var operators []operator

	// expectOperand tracks whether the next token should start an
	// operand (true) or continue a binary operator (false); it is what
	// lets '-' be recognized as unary at expression-start, after an
	// operator, after '(', and after ','.
	expectOperand := true

	applyTop := func() error {
		top := operators[len(operators)-1]
		operators = operators[:len(operators)-1]

		if top.isUnaryMinus {
			if len(operands) < 1 {
				return exprerr.NewParseException(exprerr.MissingOperand, 0,
					"unary '-' is missing its operand")
			}
			arg := operands[len(operands)-1]
			operands = operands[:len(operands)-1]
			operands = append(operands, ast.UnaryMinus{Arg: arg})
			return nil
		}

		if len(operands) < 2 {
			return exprerr.NewParseException(exprerr.MissingOperand, 0,
				"operator '"+top.lexeme+"' is missing an operand")
		}
		right := operands[len(operands)-1]
		left := operands[len(operands)-2]
		operands = operands[:len(operands)-2]
		operands = append(operands, ast.BinaryOp{Kind: binaryKindOf(top.lexeme), Left: left, Right: right})
		return nil
	}

	for !p.isAtEnd() {
		tok := p.peek()

		switch {
		case tok.Kind == token.Integer:
			operands = append(operands, parseIntegerLiteral(tok))
			p.advance()
			expectOperand = false

		case tok.Kind == token.FloatingPoint:
			operands = append(operands, parseFloatLiteral(tok))
			p.advance()
			expectOperand = false

		case tok.Kind == token.Symbol:
			p.advance()
			if p.check(token.LeftBracket) {
				node, err := p.parseFunctionCall(tok)
				if err != nil {
					return nil, err
				}
				operands = append(operands, node)
			} else {
				operands = append(operands, ast.Variable{Name: tok.Value})
			}
			expectOperand = false

		case tok.Kind == token.LeftBracket:
			operators = append(operators, operator{lexeme: leftParenSentinel})
			p.advance()
			expectOperand = true

		case tok.Kind == token.RightBracket:
			if err := p.unwindToLeftParen(&operands, &operators, applyTop); err != nil {
				return nil, err
			}
			p.advance()
			expectOperand = false

		case tok.Kind == token.Operator && tok.Value == token.Sub && expectOperand:
			operators = append(operators, operator{
				lexeme:       token.Sub,
				precedence:   unaryMinusPrecedence,
				isUnaryMinus: true,
			})
			p.advance()
			expectOperand = true

		case tok.Kind == token.Operator:
			prec, rightAssoc := precedenceOf(tok.Value)
			if prec == 0 {
				return nil, exprerr.NewParseException(exprerr.UnexpectedToken, tok.Start,
					"unknown operator '"+tok.Value+"'")
			}
			for len(operators) > 0 {
				top := operators[len(operators)-1]
				if top.lexeme == leftParenSentinel || top.isFunctionArg {
					break
				}
				topBinds := top.precedence > prec || (top.precedence == prec && !rightAssoc)
				if !topBinds {
					break
				}
				if err := applyTop(); err != nil {
					return nil, err
				}
			}
			operators = append(operators, operator{lexeme: tok.Value, precedence: prec, rightAssoc: rightAssoc})
			p.advance()
			expectOperand = true

		default:
			return nil, exprerr.NewParseException(exprerr.UnexpectedToken, tok.Start,
				"unexpected token '"+tok.Value+"'")
		}
	}

	for len(operators) > 0 {
		top := operators[len(operators)-1]
		if top.lexeme == leftParenSentinel {
			return nil, exprerr.NewParseException(exprerr.BracketMismatch, 0, "unmatched '('")
		}
		if err := applyTop(); err != nil {
			return nil, err
		}
	}

	if len(operands) != 1 {
		return nil, exprerr.NewParseException(exprerr.MissingOperand, 0,
			"expression does not reduce to a single value")
	}
	return operands[0], nil
}

// unwindToLeftParen pops and applies operators until the matching '(' is
// found, then discards the sentinel. If the popped sentinel belongs to a
// function call, the caller's parseFunctionCall handles it separately;
// this is only reached for plain grouping parentheses.
func (p *Parser) unwindToLeftParen(operands *[]ast.Operation, operators *[]operator, applyTop func() error) error {
	for {
		if len(*operators) == 0 {
			return exprerr.NewParseException(exprerr.BracketMismatch, p.peek().Start, "unmatched ')'")
		}
		top := (*operators)[len(*operators)-1]
		if top.lexeme == leftParenSentinel {
			*operators = (*operators)[:len(*operators)-1]
			return nil
		}
		if err := applyTop(); err != nil {
			return err
		}
	}
}

// parseFunctionCall parses "name(" arg1 , arg2 , ... ")" into an
// ast.Function, recursively parsing each argument as its own
// sub-expression via a nested Parser over the slice of tokens between
// matching brackets at depth 0 relative to the call.
func (p *Parser) parseFunctionCall(nameTok token.Token) (ast.Operation, error) {
	p.advance() // consume '('

	var args []ast.Operation

	if p.check(token.RightBracket) {
		p.advance()
		return p.finishFunction(nameTok, args)
	}

	for {
		argTokens, err := p.collectArgument()
		if err != nil {
			return nil, err
		}
		// argTokens shares p.tokens' backing array; capping its capacity
		// makes append copy instead of overwriting the next outer token.
		argTokens = append(argTokens[:len(argTokens):len(argTokens)], token.Make(token.EOF, "", 0, 0))
		argAST, err := New(argTokens, p.functions).Parse()
		if err != nil {
			return nil, err
		}
		args = append(args, argAST)

		if p.check(token.ArgumentSeparator) {
			p.advance()
			continue
		}
		if p.check(token.RightBracket) {
			p.advance()
			break
		}
		return nil, exprerr.NewParseException(exprerr.UnexpectedToken, p.peek().Start,
			"expected ',' or ')' in argument list")
	}

	return p.finishFunction(nameTok, args)
}

// collectArgument slices out the tokens belonging to the current
// argument (up to the next top-level ',' or the closing ')'), tracking
// nested bracket depth so that commas inside a nested call are not
// mistaken for argument boundaries.
func (p *Parser) collectArgument() ([]token.Token, error) {
	depth := 0
	start := p.position
	for {
		if p.isAtEnd() {
			return nil, exprerr.NewParseException(exprerr.BracketMismatch, p.peek().Start,
				"unterminated function call")
		}
		tok := p.peek()
		switch tok.Kind {
		case token.LeftBracket:
			depth++
		case token.RightBracket:
			if depth == 0 {
				return p.tokens[start:p.position], nil
			}
			depth--
		case token.ArgumentSeparator:
			if depth == 0 {
				return p.tokens[start:p.position], nil
			}
		}
		p.advance()
	}
}

func (p *Parser) finishFunction(nameTok token.Token, args []ast.Operation) (ast.Operation, error) {
	if p.functions != nil {
		info, ok := p.functions.Lookup(nameTok.Value)
		if !ok {
			return nil, exprerr.NewParseException(exprerr.UnknownIdentifier, nameTok.Start,
				"unknown function '"+nameTok.Value+"'")
		}
		if !info.Accepts(len(args)) {
			return nil, exprerr.NewParseException(exprerr.ArityMismatch, nameTok.Start,
				"function '"+nameTok.Value+"' does not accept "+itoa(len(args))+" argument(s)")
		}
	}
	return ast.Function{Name: nameTok.Value, Arguments: args}, nil
}

func parseIntegerLiteral(tok token.Token) ast.Operation {
	v, ok := parseInt64(tok.Value)
	if !ok {
		f, _ := parseFloat(tok.Value)
		return ast.FloatingPointConstant{Value: f}
	}
	return ast.IntegerConstant{Value: v}
}

func parseFloatLiteral(tok token.Token) ast.Operation {
	f, _ := parseFloat(tok.Value)
	return ast.FloatingPointConstant{Value: f}
}
