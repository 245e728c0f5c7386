package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"github.com/informatter/exprlang/evaluator"
)

// evalCmd evaluates a single expression given as an argument, with
// optional variable bindings.
type evalCmd struct {
	compiled  bool
	variables string
}

func (*evalCmd) Name() string     { return "eval" }
func (*evalCmd) Synopsis() string { return "Evaluate an expression" }
func (*evalCmd) Usage() string {
	return `eval [-compiled] [-vars x=1,y=2] "<expression>"
  Evaluate an expression and print the result.
`
}

func (cmd *evalCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.compiled, "compiled", false, "use the compiled (bytecode) executor instead of the tree-walking interpreter")
	f.StringVar(&cmd.variables, "vars", "", "comma-separated name=value variable bindings, e.g. x=1,y=2")
}

func (cmd *evalCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 no expression provided\n")
		return subcommands.ExitUsageError
	}
	expression := strings.Join(args, " ")

	variables, err := parseVariables(cmd.variables)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %s\n", err)
		return subcommands.ExitUsageError
	}

	cfg := evaluator.DefaultConfig()
	if cmd.compiled {
		cfg.ExecutionMode = evaluator.Compiled
	}
	eval, err := evaluator.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %s\n", err)
		return subcommands.ExitFailure
	}

	result, err := eval.Evaluate(expression, variables)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return subcommands.ExitFailure
	}

	fmt.Println(result)
	return subcommands.ExitSuccess
}

// parseVariables parses "x=1,y=2" into a variable map.
func parseVariables(raw string) (map[string]float64, error) {
	if raw == "" {
		return nil, nil
	}
	variables := make(map[string]float64)
	for _, pair := range strings.Split(raw, ",") {
		name, valueStr, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("malformed variable binding %q, expected name=value", pair)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(valueStr), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed variable value in %q: %w", pair, err)
		}
		variables[strings.TrimSpace(name)] = value
	}
	return variables, nil
}
