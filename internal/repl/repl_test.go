package repl

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"platypus/internal/evaluator"
	"platypus/internal/history"
	"strings"
	"testing"
	"time"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func startSession(t *testing.T, input string, opts ...Option) (string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	ev := evaluator.New(evaluator.WithOutput(&out), evaluator.WithLogger(quiet))
	r := New(ev, append([]Option{WithLogger(quiet)}, opts...)...)

	if err := r.Start(context.Background(), strings.NewReader(input), &out, &errOut); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return out.String(), errOut.String()
}

func TestSessionEchoesExpressions(t *testing.T) {
	input := "x = 1\nx + 1\nprint(x)\n\n[x, \"a\"]\nexit\nprint(99)\n"
	out, errOut := startSession(t, input)

	expected := ">> >> 2\n>> 1\n>> >> [1, a]\n>> "
	if out != expected {
		t.Errorf("expected output %q, got %q", expected, out)
	}
	if errOut != "" {
		t.Errorf("unexpected errors %q", errOut)
	}
}

func TestSessionSurvivesErrors(t *testing.T) {
	input := "1 / 0\nx = @\ny = 2\ny\n"
	out, errOut := startSession(t, input)

	if !strings.HasSuffix(out, ">> 2\n>> \n") {
		t.Errorf("session did not continue after errors, got %q", out)
	}
	if !strings.Contains(errOut, "Error: Division by zero\n") {
		t.Errorf("missing runtime error in %q", errOut)
	}
	if !strings.Contains(errOut, "Error: Unexpected character '@' at line 1, column 5\n") {
		t.Errorf("missing scan error in %q", errOut)
	}
	if !strings.Contains(errOut, "  >    1 | x = @\n") {
		t.Errorf("missing source context in %q", errOut)
	}
}

func TestSessionFunctionsAcrossLines(t *testing.T) {
	input := "func double(n) { return n * 2 }\nclass P { v = 3 }\np = new P()\ndouble(p.v)\n"
	out, errOut := startSession(t, input)

	if errOut != "" {
		t.Fatalf("unexpected errors %q", errOut)
	}
	if !strings.Contains(out, ">> 6\n") {
		t.Errorf("expected 6 to be echoed, got %q", out)
	}
}

func TestHistoryCommand(t *testing.T) {
	ctx := context.Background()
	store, err := history.Open(ctx, history.DriverSQLite, filepath.Join(t.TempDir(), "history.db"), 100)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	input := "a = 1\na / 0\n:history\n"
	out, errOut := startSession(t, input, WithHistory(store))

	if !strings.Contains(errOut, "Error: Division by zero") {
		t.Errorf("missing runtime error in %q", errOut)
	}
	if !strings.Contains(out, "   a = 1\n") {
		t.Errorf("history listing missing first input: %q", out)
	}
	if !strings.Contains(out, " ! a / 0\n") {
		t.Errorf("history listing should flag the failed input: %q", out)
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 journal entries, got %d", len(entries))
	}
	if entries[1].Error != "Division by zero" {
		t.Errorf("expected the error to be journaled, got %q", entries[1].Error)
	}
}

func TestHistoryDisabled(t *testing.T) {
	_, errOut := startSession(t, ":history\n")
	if !strings.Contains(errOut, "history is not enabled") {
		t.Errorf("expected a notice, got %q", errOut)
	}
}

func TestStartStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ev := evaluator.New(evaluator.WithOutput(io.Discard), evaluator.WithLogger(quiet))
	err := New(ev, WithLogger(quiet)).Start(ctx, strings.NewReader("1\n"), io.Discard, io.Discard)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCancelWhileWaitingForInput(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pr, pw := io.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	ev := evaluator.New(evaluator.WithOutput(io.Discard), evaluator.WithLogger(quiet))
	r := New(ev, WithLogger(quiet))

	done := make(chan error, 1)
	go func() {
		done <- r.Start(ctx, pr, &out, io.Discard)
	}()

	// the write returns once the session has taken the line, after which
	// Start is blocked waiting for the next one
	if _, err := io.WriteString(pw, "x = 1\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestInterruptStopsRunawayLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	printed, pw := io.Pipe()
	defer printed.Close()

	var errOut bytes.Buffer
	ev := evaluator.New(evaluator.WithOutput(pw), evaluator.WithLogger(quiet), evaluator.WithContext(ctx))
	r := New(ev, WithLogger(quiet))

	done := make(chan error, 1)
	go func() {
		done <- r.Start(ctx, strings.NewReader("print(1); while (true) { }\n"), io.Discard, &errOut)
	}()

	// the loop is running once print has been consumed
	buf := make([]byte, 2)
	if _, err := io.ReadFull(printed, buf); err != nil {
		t.Fatalf("read: %v", err)
	}
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop was not interrupted")
	}
	if !strings.Contains(errOut.String(), "Error: Execution interrupted: context canceled") {
		t.Errorf("expected an interrupt error, got %q", errOut.String())
	}
}
