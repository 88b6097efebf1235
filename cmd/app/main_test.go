package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"platypus/internal/util"
	"strings"
	"testing"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.plat")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunFile(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		code   int
		stdout string
		stderr string
	}{
		{"prints", "for (i = 0; i < 3; i = i + 1) print(i)", 0, "0\n1\n2\n", ""},
		{"runtime error", "print(1)\nprint(1 / 0)\nprint(2)", 1, "1\n", "Error: Division by zero\n"},
		{"parse error", "x = (1 + ", 1, "", "Error: unexpected token end of input at line 1, column 10\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			code := runFile(util.DefaultConfiguration(), writeSource(t, tt.src), &out, &errOut)
			if code != tt.code {
				t.Errorf("expected exit code %d, got %d", tt.code, code)
			}
			if out.String() != tt.stdout {
				t.Errorf("expected stdout %q, got %q", tt.stdout, out.String())
			}
			if !strings.HasPrefix(errOut.String(), tt.stderr) {
				t.Errorf("expected stderr to start with %q, got %q", tt.stderr, errOut.String())
			}
		})
	}
}

func TestRunFileMissing(t *testing.T) {
	var out, errOut bytes.Buffer
	code := runFile(util.DefaultConfiguration(), filepath.Join(t.TempDir(), "nope.plat"), &out, &errOut)
	if code != 1 || !strings.HasPrefix(errOut.String(), "Error reading file") {
		t.Errorf("unexpected result %d %q", code, errOut.String())
	}
}

func TestRunFileWritesAST(t *testing.T) {
	config := util.DefaultConfiguration()
	config.DebugAST = true

	for _, format := range []string{"json", "yaml", "text"} {
		config.DebugASTFormat = format
		path := writeSource(t, "x = 1")

		var out, errOut bytes.Buffer
		if code := runFile(config, path, &out, &errOut); code != 0 {
			t.Fatalf("%s: exit code %d: %s", format, code, errOut.String())
		}

		ext := format
		if format == "text" {
			ext = "txt"
		}
		data, err := os.ReadFile(path + ".ast." + ext)
		if err != nil {
			t.Fatalf("%s: AST file not written: %v", format, err)
		}
		if !strings.Contains(string(data), "x") {
			t.Errorf("%s: unexpected AST dump %q", format, data)
		}
	}
}

func TestRunRepl(t *testing.T) {
	config := util.DefaultConfiguration()
	config.Version = "test"
	config.History.DSN = filepath.Join(t.TempDir(), "history.db")

	var out, errOut bytes.Buffer
	code := runRepl(context.Background(), config, strings.NewReader("a = 2\na * 3\n"), &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, errOut.String())
	}

	got := out.String()
	if !strings.HasPrefix(got, "Platypus REPL vtest\n") {
		t.Errorf("missing banner in %q", got)
	}
	if !strings.Contains(got, ">> 6\n") {
		t.Errorf("missing echoed value in %q", got)
	}
	if !strings.HasSuffix(got, "Goodbye!\n") {
		t.Errorf("missing farewell in %q", got)
	}
}

func TestRunReplCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out, errOut bytes.Buffer
	code := runRepl(ctx, util.DefaultConfiguration(), strings.NewReader("print(1)\n"), &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, errOut.String())
	}
	if !strings.HasSuffix(out.String(), "Goodbye!\n") {
		t.Errorf("missing farewell in %q", out.String())
	}
}

func TestApplyFlag(t *testing.T) {
	config := util.DefaultConfiguration()

	logLevel = "debug"
	maxDepth = 42
	historyDSN = "h.db"
	defer func() {
		logLevel = "error"
		maxDepth = 10000
		historyDSN = ""
	}()

	for _, name := range []string{"log-level", "max-depth", "history"} {
		applyFlag(&config, name)
	}

	if config.LogLevel != "debug" || config.MaxDepth != 42 || config.History.DSN != "h.db" {
		t.Errorf("flags not applied: %+v", config)
	}
	if config.DebugASTFormat != "json" {
		t.Errorf("unset flags should not change config, got %q", config.DebugASTFormat)
	}
}

func TestLogLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"none", slog.LevelError},
	}

	for _, tt := range tests {
		if got := logLevelFromString(tt.input); got != tt.expected {
			t.Errorf("%q: expected %v, got %v", tt.input, tt.expected, got)
		}
	}
}
