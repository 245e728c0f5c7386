// Package evaluator is the library's external entry point: Evaluate,
// CreateDelegate, Validate, Functions, Constants. It sequences the
// whole pipeline (lexer -> validator -> parser -> optimizer ->
// interpreter/compiler) into one reusable facade instead of duplicating
// that sequence in every caller.
package evaluator

import (
	"github.com/informatter/exprlang/ast"
	"github.com/informatter/exprlang/cache"
	"github.com/informatter/exprlang/compiler"
	"github.com/informatter/exprlang/exprerr"
	"github.com/informatter/exprlang/interpreter"
	"github.com/informatter/exprlang/lexer"
	"github.com/informatter/exprlang/optimizer"
	"github.com/informatter/exprlang/parser"
	"github.com/informatter/exprlang/registry"
	"github.com/informatter/exprlang/token"
	"github.com/informatter/exprlang/validator"
)

// Evaluator evaluates expression text against a variable map, using the
// function/constant registries and execution mode fixed by its Config at
// construction time.
type Evaluator struct {
	config    Config
	functions *registry.FunctionRegistry
	constants *registry.ConstantRegistry
	cache     *cache.Cache
}

// New builds an Evaluator from cfg, registering the default
// function/constant tables first (when enabled) and then cfg.Functions/
// cfg.Constants, in that order, so caller-supplied entries can safely
// override a default in non-guarded mode.
func New(cfg Config) (*Evaluator, error) {
	if cfg.CultureDecimalSeparator != '.' && cfg.CultureDecimalSeparator != ',' {
		return nil, exprerr.NewArgumentException("decimal separator must be '.' or ','")
	}
	if cfg.CultureArgumentSeparator == cfg.CultureDecimalSeparator {
		return nil, exprerr.NewArgumentException("argument separator must differ from the decimal separator")
	}

	functions := registry.NewFunctionRegistry(cfg.CaseSensitive, cfg.GuardedModeEnabled)
	constants := registry.NewConstantRegistry(cfg.CaseSensitive, cfg.GuardedModeEnabled)

	e := &Evaluator{config: cfg, functions: functions, constants: constants}

	if cfg.RegisterDefaultConstants {
		for _, c := range defaultConstants {
			if err := e.registerConstant(c); err != nil {
				return nil, err
			}
		}
	}
	if cfg.RegisterDefaultFunctions {
		for _, f := range defaultFunctions {
			if err := e.registerFunction(f); err != nil {
				return nil, err
			}
		}
	}
	for _, c := range cfg.Constants {
		if err := e.registerConstant(c); err != nil {
			return nil, err
		}
	}
	for _, f := range cfg.Functions {
		if err := e.registerFunction(f); err != nil {
			return nil, err
		}
	}

	if cfg.CacheEnabled {
		if cfg.CacheMaximumSize <= 0 || cfg.CacheReductionSize <= 0 ||
			cfg.CacheReductionSize > cfg.CacheMaximumSize {
			return nil, exprerr.NewArgumentException(
				"cache sizes must be positive with reduction size <= maximum size")
		}
		c, err := cache.New(cfg.CacheMaximumSize, cfg.CacheReductionSize)
		if err != nil {
			return nil, err
		}
		e.cache = c
	}

	return e, nil
}

// registerConstant adds c to the constant registry. In guarded mode a
// name already registered as a function is rejected: a name cannot be
// both a constant and a function.
func (e *Evaluator) registerConstant(c ConstantDefinition) error {
	if e.config.GuardedModeEnabled && e.functions.Has(c.Name) {
		return exprerr.NewArgumentException(
			"'" + c.Name + "' is already registered as a function (guarded mode)")
	}
	return e.constants.Register(registry.ConstantInfo{Name: c.Name, Value: c.Value})
}

// registerFunction adds f to the function registry, under the same
// cross-kind guarded-mode check as registerConstant.
func (e *Evaluator) registerFunction(f FunctionDefinition) error {
	if e.config.GuardedModeEnabled && e.constants.Has(f.Name) {
		return exprerr.NewArgumentException(
			"'" + f.Name + "' is already registered as a constant (guarded mode)")
	}
	return e.functions.Register(registry.FunctionInfo{
		Name:               f.Name,
		NumberOfParameters: f.NumberOfParameters,
		IsDynamicArity:     f.IsDynamicArity,
		IsIdempotent:       f.IsIdempotent,
		Callable:           registry.Function(f.Callable),
	})
}

// Functions returns the names of every registered function.
func (e *Evaluator) Functions() []string {
	return e.functions.Names()
}

// Constants returns the names of every registered constant.
func (e *Evaluator) Constants() []string {
	return e.constants.Names()
}

// Validate runs the tokenizer and (when enabled) the validation pass and
// a full parse, without evaluating anything, reporting the first
// structural problem found.
func (e *Evaluator) Validate(expression string) error {
	tokens, err := e.scan(expression)
	if err != nil {
		return err
	}
	if e.config.ValidationEnabled {
		if err := validator.Validate(tokens); err != nil {
			return err
		}
	}
	_, err = parser.Parse(tokens, e.functions)
	return err
}

// Evaluate parses, optimizes, and runs expression once against
// variables, using whichever execution mode and cache settings Config
// specifies.
func (e *Evaluator) Evaluate(expression string, variables map[string]float64) (float64, error) {
	fn, err := e.CreateDelegate(expression)
	if err != nil {
		return 0, err
	}
	return fn(variables)
}

// Delegate evaluates a previously-built formula against a fresh
// variable map on every call.
type Delegate func(variables map[string]float64) (float64, error)

// CreateDelegate builds expression once — tokenizing, optionally
// validating, parsing, optionally optimizing, and (in Compiled mode)
// emitting bytecode — and returns a Delegate that re-runs that prebuilt
// form against whatever variable map it's given. When the cache is
// enabled, repeated calls with identical expression text reuse the same
// prebuilt form.
func (e *Evaluator) CreateDelegate(expression string) (Delegate, error) {
	if e.cache == nil {
		return e.build(expression)
	}

	entry, err := e.cache.Get(expression, func() (cache.Entry, error) {
		return e.build(expression)
	})
	if err != nil {
		return nil, err
	}
	return entry.(Delegate), nil
}

// Parse tokenizes, optionally validates, parses, and (when enabled)
// optimizes expression, returning the resulting tree without evaluating
// it. Used by tooling that needs to inspect a formula's structure, such
// as the disassemble/dump-ast CLI subcommand.
func (e *Evaluator) Parse(expression string) (ast.Operation, error) {
	tokens, err := e.scan(expression)
	if err != nil {
		return nil, err
	}
	if e.config.ValidationEnabled {
		if err := validator.Validate(tokens); err != nil {
			return nil, err
		}
	}
	op, err := parser.Parse(tokens, e.functions)
	if err != nil {
		return nil, err
	}
	if e.config.OptimizerEnabled {
		op = optimizer.Optimize(op, e.constants, e.functions)
	}
	return op, nil
}

// Disassemble parses expression and compiles it to bytecode, returning
// a human-readable instruction listing, regardless of the Evaluator's
// own configured ExecutionMode.
func (e *Evaluator) Disassemble(expression string) (string, error) {
	op, err := e.Parse(expression)
	if err != nil {
		return "", err
	}
	bytecode, err := compiler.Compile(op)
	if err != nil {
		return "", err
	}
	return bytecode.Disassemble(), nil
}

func (e *Evaluator) scan(expression string) ([]token.Token, error) {
	return lexer.New(expression, e.config.CultureDecimalSeparator, e.config.CultureArgumentSeparator).Scan()
}

func (e *Evaluator) build(expression string) (Delegate, error) {
	tokens, err := e.scan(expression)
	if err != nil {
		return nil, err
	}
	if e.config.ValidationEnabled {
		if err := validator.Validate(tokens); err != nil {
			return nil, err
		}
	}

	op, err := parser.Parse(tokens, e.functions)
	if err != nil {
		return nil, err
	}

	// Captured from the unoptimized tree: guarded mode's variable-map
	// completeness check must still catch a missing variable even when
	// the optimizer folds its subtree away (e.g. "x*0" never touches x
	// at evaluation time).
	freeVariables := ast.FreeVariables(op)

	if e.config.OptimizerEnabled {
		op = optimizer.Optimize(op, e.constants, e.functions)
	}

	var run func(variables map[string]float64) (float64, error)
	switch e.config.ExecutionMode {
	case Compiled:
		bytecode, err := compiler.Compile(op)
		if err != nil {
			return nil, err
		}
		run = func(variables map[string]float64) (float64, error) {
			return compiler.NewVM(bytecode, variables, e.constants, e.functions).Run()
		}

	default:
		run = func(variables map[string]float64) (float64, error) {
			return interpreter.Evaluate(op, variables, e.constants, e.functions)
		}
	}

	if !e.config.GuardedModeEnabled {
		return run, nil
	}
	return func(variables map[string]float64) (float64, error) {
		if err := e.checkVariablesComplete(freeVariables, variables); err != nil {
			return 0, err
		}
		return run(variables)
	}, nil
}

// checkVariablesComplete verifies every name in freeVariables resolves
// against either variables or the constant registry before the
// expression runs.
func (e *Evaluator) checkVariablesComplete(freeVariables []string, variables map[string]float64) error {
	for _, name := range freeVariables {
		if _, ok := variables[name]; ok {
			continue
		}
		if e.constants.Has(name) {
			continue
		}
		return exprerr.NewVariableNotDefinedException(name)
	}
	return nil
}
