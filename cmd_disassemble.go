package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/informatter/exprlang/ast"
	"github.com/informatter/exprlang/evaluator"
)

// disassembleCmd prints a parsed expression's bytecode listing and/or
// its AST as JSON.
type disassembleCmd struct {
	dumpAST  string
	bytecode bool
}

func (*disassembleCmd) Name() string     { return "disassemble" }
func (*disassembleCmd) Synopsis() string { return "Print an expression's bytecode and/or AST" }
func (*disassembleCmd) Usage() string {
	return `disassemble [-ast <path>] "<expression>"
  Print the compiled bytecode listing for an expression, and optionally
  dump its parsed AST to a JSON file.
`
}

func (cmd *disassembleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.dumpAST, "ast", "", "write the parsed AST as JSON to this path")
	f.BoolVar(&cmd.bytecode, "bytecode", true, "print the bytecode disassembly")
}

func (cmd *disassembleCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if cmd.dumpAST != "" {
		op, err := eval.Parse(expression)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			return subcommands.ExitFailure
		}
		if err := ast.WriteJSONToFile(op, cmd.dumpAST); err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to write AST dump: %s\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("wrote AST to %s\n", cmd.dumpAST)
	}

	if cmd.bytecode {
		listing, err := eval.Disassemble(expression)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			return subcommands.ExitFailure
		}
		fmt.Print(listing)
	}

	return subcommands.ExitSuccess
}
