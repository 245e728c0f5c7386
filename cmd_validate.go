package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/informatter/exprlang/evaluator"
)

// validateCmd checks an expression for lexical and structural errors
// without evaluating it.
type validateCmd struct{}

func (*validateCmd) Name() string     { return "validate" }
func (*validateCmd) Synopsis() string { return "Check an expression for errors without evaluating it" }
func (*validateCmd) Usage() string {
	return `validate "<expression>"
  Report whether an expression is well-formed.
`
}

func (*validateCmd) SetFlags(f *flag.FlagSet) {}

func (*validateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 no expression provided\n")
		return subcommands.ExitUsageError
	}
	expression := strings.Join(args, " ")

	eval, err := evaluator.New(evaluator.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %s\n", err)
		return subcommands.ExitFailure
	}

	if err := eval.Validate(expression); err != nil {
		fmt.Printf("invalid: %s\n", err)
		return subcommands.ExitFailure
	}

	fmt.Println("valid")
	return subcommands.ExitSuccess
}
