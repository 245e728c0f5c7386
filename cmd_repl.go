package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"github.com/informatter/exprlang/evaluator"
	"github.com/informatter/exprlang/lexer"
	"github.com/informatter/exprlang/validator"
)

// replCmd is an interactive read-eval-print loop with multi-line
// buffering: a line that leaves brackets unbalanced or ends on an
// operator keeps accumulating under a "... " prompt until the input
// looks complete. Line editing and history come from
// github.com/chzyer/readline.
type replCmd struct {
	compiled bool
}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive expression evaluation session" }
func (*replCmd) Usage() string {
	return `repl [-compiled]
  Start an interactive session for evaluating expressions.
`
}

func (cmd *replCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.compiled, "compiled", false, "use the compiled (bytecode) executor instead of the tree-walking interpreter")
}

const banner = `
  ____ _  _ ___  ____ ___ _  _ ___ ___
 |__ |  \ | | __|__ |__ |  \ |  __| __|
 |___|_|\_|___|_____|_||_|\_||_____|

`

func (cmd *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Print(banner)
	fmt.Println("Type an expression and press enter. Type 'exit' to quit.")
	fmt.Println()

	cfg := evaluator.DefaultConfig()
	if cmd.compiled {
		cfg.ExecutionMode = evaluator.Compiled
	}
	eval, err := evaluator.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %s\n", err)
		return subcommands.ExitFailure
	}

	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %s\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	var buffer strings.Builder

	for {
		if buffer.Len() == 0 {
			rl.SetPrompt(">>> ")
		} else {
			rl.SetPrompt("... ")
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return subcommands.ExitSuccess
			}
			fmt.Fprintf(os.Stderr, "💥 %s\n", err)
			return subcommands.ExitFailure
		}

		if strings.TrimSpace(line) == "exit" && buffer.Len() == 0 {
			return subcommands.ExitSuccess
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		tokens, err := lexer.New(source, cfg.CultureDecimalSeparator, cfg.CultureArgumentSeparator).Scan()
		if err != nil {
			fmt.Println(err)
			buffer.Reset()
			continue
		}

		if !validator.IsInputComplete(tokens) {
			continue
		}

		result, err := eval.Evaluate(source, nil)
		if err != nil {
			fmt.Println(err)
			buffer.Reset()
			continue
		}

		fmt.Println(result)
		buffer.Reset()
	}
}
