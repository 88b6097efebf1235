package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"platypus/internal/ast"
	"platypus/internal/evaluator"
	"platypus/internal/history"
	"platypus/internal/parser"
	"platypus/internal/repl"
	"platypus/internal/util"
)

func dispatch(config util.Configuration, args []string) int {
	if len(args) == 0 {
		printHelp()
		return 1
	}

	switch args[0] {
	case "run":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Error: No input file provided")
			return 1
		}
		return runFile(config, args[1], os.Stdout, os.Stderr)
	case "repl":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		// the first Ctrl+C ends the session, a second one kills the process
		context.AfterFunc(ctx, stop)
		return runRepl(ctx, config, os.Stdin, os.Stdout, os.Stderr)
	default:
		fmt.Fprintf(os.Stderr, "Error: Unknown command '%s'\n", args[0])
		return 1
	}
}

// runFile parses and executes one source file with a fresh evaluator and
// returns the process exit code.
func runFile(config util.Configuration, filename string, out, errOut io.Writer) int {
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(errOut, "Error reading file '%s': %v\n", filename, err)
		return 1
	}
	source := string(src)

	program, err := parser.Parse(source)
	if err != nil {
		repl.PrintError(errOut, source, err)
		return 1
	}

	if config.DebugAST {
		if err := dumpAST(program, filename, config.DebugASTFormat); err != nil {
			slog.Warn("failed to write AST", slog.Any("error", err))
		}
	}

	ev := evaluator.New(
		evaluator.WithOutput(out),
		evaluator.WithMaxDepth(config.MaxDepth),
	)
	if err := ev.Execute(program); err != nil {
		fmt.Fprintf(errOut, "Error: %s\n", err)
		return 1
	}
	return 0
}

func dumpAST(program *ast.Program, filename, format string) error {
	ext := format
	if format == parser.FormatText {
		ext = "txt"
	}
	target := filename + ".ast." + ext
	slog.Debug("writing AST", slog.String("file", target), slog.String("format", format))
	return parser.WriteAST(program, target, format)
}

func runRepl(ctx context.Context, config util.Configuration, in io.Reader, out, errOut io.Writer) int {
	var opts []repl.Option

	if config.History.DSN != "" {
		store, err := history.Open(ctx, config.History.Driver, config.History.DSN, config.History.MaxEntries)
		if err != nil {
			fmt.Fprintf(errOut, "Error: %s\n", err)
			return 1
		}
		defer store.Close()
		opts = append(opts, repl.WithHistory(store))
	}

	ev := evaluator.New(
		evaluator.WithOutput(out),
		evaluator.WithMaxDepth(config.MaxDepth),
		evaluator.WithContext(ctx),
	)

	fmt.Fprintf(out, "Platypus REPL v%s\n", config.Version)
	fmt.Fprintln(out, "Type 'exit' or press Ctrl+D to quit")
	fmt.Fprintln(out)

	if err := repl.New(ev, opts...).Start(ctx, in, out, errOut); err != nil && err != context.Canceled {
		fmt.Fprintf(errOut, "Error reading input: %v\n", err)
		return 1
	}

	fmt.Fprintln(out, "Goodbye!")
	return 0
}
