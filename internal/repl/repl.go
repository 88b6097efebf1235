package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"platypus/internal/ast"
	"platypus/internal/evaluator"
	"platypus/internal/history"
	"platypus/internal/lexer"
	"platypus/internal/object"
	"platypus/internal/parser"
	"platypus/internal/util"
	"strings"

	"github.com/google/uuid"
)

const (
	PROMPT         = ">> "
	HistoryCommand = ":history"
	ExitCommand    = "exit"

	defaultHistoryLimit = 20
)

// Repl reads one line at a time and runs it against a single evaluator, so
// bindings persist for the whole session.
type Repl struct {
	ev           *evaluator.Evaluator
	history      *history.Store
	historyLimit int
	session      uuid.UUID
	logger       *slog.Logger
}

type Option func(*Repl)

// WithHistory journals every input to store and enables :history.
func WithHistory(store *history.Store) Option {
	return func(r *Repl) { r.history = store }
}

// WithHistoryLimit sets how many entries :history lists.
func WithHistoryLimit(n int) Option {
	return func(r *Repl) { r.historyLimit = n }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Repl) { r.logger = logger }
}

func New(ev *evaluator.Evaluator, opts ...Option) *Repl {
	r := &Repl{
		ev:           ev,
		historyLimit: defaultHistoryLimit,
		session:      uuid.New(),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repl) Session() uuid.UUID {
	return r.session
}

// Start runs until in is exhausted, the user types exit, or ctx is done.
// Errors in the evaluated code are reported on errOut and do not end the
// session.
func (r *Repl) Start(ctx context.Context, in io.Reader, out, errOut io.Writer) error {
	r.logger.Info("repl session started", slog.String("session", r.session.String()))

	// a blocked read cannot observe ctx, so lines arrive over a channel
	var readErr error
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr = scanner.Err()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(out, PROMPT)

		var text string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return ctx.Err()
		case next, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				if err := ctx.Err(); err != nil {
					return err
				}
				return readErr
			}
			text = next
		}

		line := strings.TrimSpace(text)
		switch line {
		case "":
			continue
		case ExitCommand:
			return nil
		case HistoryCommand:
			r.printHistory(ctx, out, errOut)
			continue
		}

		result, err := r.eval(line)
		if err != nil {
			PrintError(errOut, line, err)
		} else if result != "" {
			fmt.Fprintln(out, result)
		}

		r.record(ctx, line, result, err)
	}
}

// eval returns the text to echo, which is empty unless the line was a single
// expression with a non-null value.
func (r *Repl) eval(line string) (string, error) {
	program, err := parser.Parse(line)
	if err != nil {
		return "", err
	}

	if len(program.Statements) == 1 {
		if stmt, ok := program.Statements[0].(*ast.ExpressionStatement); ok {
			val, err := r.ev.Evaluate(stmt.Expression)
			if err != nil {
				return "", err
			}
			if val == object.NULL {
				return "", nil
			}
			return val.Inspect(), nil
		}
	}

	return "", r.ev.Execute(program)
}

func (r *Repl) record(ctx context.Context, line, result string, evalErr error) {
	if r.history == nil {
		return
	}

	entry := history.Entry{SessionID: r.session, Input: line, Output: result}
	if evalErr != nil {
		entry.Error = evalErr.Error()
	}
	// an interrupted line is still journaled
	if _, err := r.history.Append(context.WithoutCancel(ctx), entry); err != nil {
		r.logger.Warn("failed to record history", slog.Any("error", err))
	}
}

func (r *Repl) printHistory(ctx context.Context, out, errOut io.Writer) {
	if r.history == nil {
		fmt.Fprintln(errOut, "Error: history is not enabled")
		return
	}

	entries, err := r.history.Recent(ctx, r.historyLimit)
	if err != nil {
		fmt.Fprintf(errOut, "Error: %s\n", err)
		return
	}
	for _, e := range entries {
		marker := " "
		if e.Error != "" {
			marker = "!"
		}
		fmt.Fprintf(out, "%s %s %s\n", e.ExecutedAt.Format("2006-01-02 15:04:05"), marker, e.Input)
	}
}

// PrintError reports err, adding the offending source line for scan and
// parse errors.
func PrintError(w io.Writer, src string, err error) {
	fmt.Fprintf(w, "Error: %s\n", err)

	var scanErr *lexer.ScanError
	var parseErr *parser.ParseError
	switch {
	case errors.As(err, &scanErr):
		fmt.Fprintln(w, util.GetContextLines(src, scanErr.Line, scanErr.Column))
	case errors.As(err, &parseErr):
		fmt.Fprintln(w, util.GetContextLines(src, parseErr.Line, parseErr.Column))
	}
}

