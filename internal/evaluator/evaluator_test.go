package evaluator

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"platypus/internal/ast"
	"platypus/internal/object"
	"platypus/internal/parser"
	"testing"
	"time"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestEvaluator(out io.Writer, opts ...Option) *Evaluator {
	return New(append([]Option{WithOutput(out), WithLogger(quiet)}, opts...)...)
}

func run(t *testing.T, input string, opts ...Option) (string, error) {
	t.Helper()
	program, err := parser.Parse(input)
	if err != nil {
		t.Fatalf("%q: parse error: %v", input, err)
	}
	var out bytes.Buffer
	err = newTestEvaluator(&out, opts...).Execute(program)
	return out.String(), err
}

func evaluate(t *testing.T, ev *Evaluator, input string) (object.Object, error) {
	t.Helper()
	program, err := parser.Parse(input)
	if err != nil {
		t.Fatalf("%q: parse error: %v", input, err)
	}
	if len(program.Statements) != 1 {
		t.Fatalf("%q: expected a single statement, got %d", input, len(program.Statements))
	}
	stmt, ok := program.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("%q: expected an expression statement, got %T", input, program.Statements[0])
	}
	return ev.Evaluate(stmt.Expression)
}

func TestEvaluateLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected object.Object
	}{
		{"3.14", &object.Number{Value: 3.14}},
		{"42", &object.Number{Value: 42}},
		{`"hi\tthere"`, &object.String{Value: "hi\tthere"}},
		{"true", object.TRUE},
		{"false", object.FALSE},
		{"null", object.NULL},
		{"[1, \"a\", [true]]", &object.Array{Elements: []object.Object{
			&object.Number{Value: 1},
			&object.String{Value: "a"},
			&object.Array{Elements: []object.Object{object.TRUE}},
		}}},
	}

	ev := newTestEvaluator(io.Discard)
	for _, tt := range tests {
		got, err := evaluate(t, ev, tt.input)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.input, err)
			continue
		}
		if !object.Equal(got, tt.expected) {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.expected.Inspect(), got.Inspect())
		}
	}
}

func TestOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"7 / 2", "3.5"},
		{"10 - 2 - 3", "5"},
		{`"foo" + "bar"`, "foobar"},
		{`"2" * 3`, "6"},
		{`"10" / "4"`, "2.5"},
		{"true * 5", "5"},
		{`-"3"`, "-3"},
		{"-true", "-1"},
		{"1 < 2", "true"},
		{`"3" >= 3`, "true"},
		{"2 <= 1", "false"},
		{"1 == 1", "true"},
		{`1 == "1"`, "false"},
		{"null == null", "true"},
		{"[1, 2] == [1, 2]", "true"},
		{"[1, 2] != [2, 1]", "true"},
		{"1 && 0", "false"},
		{`"" || "x"`, "true"},
		{"![]", "true"},
		{"!0", "true"},
		{"!!\"a\"", "true"},
	}

	ev := newTestEvaluator(io.Discard)
	for _, tt := range tests {
		got, err := evaluate(t, ev, tt.input)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.input, err)
			continue
		}
		if got.Inspect() != tt.expected {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.expected, got.Inspect())
		}
	}
}

func TestLogicalOperatorsEvaluateBothSides(t *testing.T) {
	out, err := run(t, `
		f = () => print("side");
		x = false && f();
		y = true || f();
		print(x);
		print(y);
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := "side\nside\nfalse\ntrue\n"
	if out != expected {
		t.Errorf("expected %q, got %q", expected, out)
	}
}

func TestClosureCapturesValues(t *testing.T) {
	ev := newTestEvaluator(io.Discard)
	program, err := parser.Parse("a = 1; f = () => a; a = 2;")
	if err != nil {
		t.Fatal(err)
	}
	if err := ev.Execute(program); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := evaluate(t, ev, "f()")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Inspect() != "1" {
		t.Errorf("expected closure to see 1, got %s", got.Inspect())
	}
}

func TestCallsDoNotShareClosureState(t *testing.T) {
	out, err := run(t, `
		count = 0;
		func inc() {
			count = count + 1;
			return count;
		}
		print(inc());
		print(inc());
		print(count);
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "1\n1\n0\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestVarStatementMutatesEnclosingBinding(t *testing.T) {
	out, err := run(t, `
		x = 1;
		{
			x = 5;
			y = 2;
		}
		print(x);
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "5\n" {
		t.Errorf("expected 5, got %q", out)
	}

	// y was defined inside the block and is gone afterwards
	_, err = run(t, "{ y = 2 } print(y)")
	if !errors.Is(err, ErrUndefinedName) {
		t.Errorf("expected UndefinedName, got %v", err)
	}
}

func TestLoops(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"for (x in [1, 2, 3]) print(x)", "1\n2\n3\n"},
		{"for (i = 0; i < 3; i = i + 1) print(i)", "0\n1\n2\n"},
		{"i = 3; while (i > 0) { print(i); i = i - 1 }", "3\n2\n1\n"},
		{"for (x in []) print(x)", ""},
		{"while (false) print(1)", ""},
	}

	for _, tt := range tests {
		out, err := run(t, tt.input)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.input, err)
			continue
		}
		if out != tt.expected {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, out)
		}
	}
}

func TestFunctions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"func add(a, b) { return a + b } print(add(2, 3))", "5\n"},
		{"func fib(n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2) } print(fib(10))", "55\n"},
		{"func noop() { } print(noop())", "null\n"},
		{"func bare() { return } print(bare())", "null\n"},
		{"func first(xs) { for (x in xs) { if (x > 1) return x } return null } print(first([1, 2, 3]))", "2\n"},
		{"sq = (x) => x * x; print(sq(4))", "16\n"},
		{"k = () => 7; print(k())", "7\n"},
		{"func outer() { n = 10; g = (x) => x + n; return g } h = outer(); print(h(1))", "11\n"},
		{"func f() { } print(f)", "<function(0)>\n"},
		{"print((a, b) => a)", "<lambda(2)>\n"},
		{"print(len)", "<native function len(1)>\n"},
		{"return 1; print(2)", "2\n"},
	}

	for _, tt := range tests {
		out, err := run(t, tt.input)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.input, err)
			continue
		}
		if out != tt.expected {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, out)
		}
	}
}

func TestPrivateAccess(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		err      error
	}{
		{"_secret = 1; print(_secret)", "", ErrPrivateAccessViolation},
		{"_secret = 1; func peek() { return _secret } print(peek())", "1\n", nil},
		{"_secret = 1; peek = () => _secret; print(peek())", "1\n", nil},
		{"func _hidden() { return 1 } _hidden()", "", ErrPrivateAccessViolation},
		{"func _hidden() { return 1 } func open() { return _hidden() } print(open())", "1\n", nil},
		{"class _A { } a = new _A()", "", ErrPrivateAccessViolation},
		{"class A { _p = 1 } a = new A(); print(a._p)", "", ErrPrivateAccessViolation},
		{"class A { _p = 1 func get() { return this._p } } a = new A(); print(a.get())", "1\n", nil},
		{"class A { _p = 1 } a = new A(); a._p = 2", "", ErrPrivateAccessViolation},
		{"class A { func _m() { return 1 } } a = new A(); a._m()", "", ErrPrivateAccessViolation},
	}

	for _, tt := range tests {
		out, err := run(t, tt.input)
		if tt.err != nil {
			if !errors.Is(err, tt.err) {
				t.Errorf("%q: expected %v, got %v", tt.input, tt.err, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.input, err)
			continue
		}
		if out != tt.expected {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, out)
		}
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`match (5) { case 1 => "a" case _ => "b" }`, "b"},
		{`match (1) { case 1 => "a" case _ => "b" }`, "a"},
		{`match ("x") { case Number => 1 case String => 2 }`, "2"},
		{`match (null) { case 0 => "zero" case null => "nothing" }`, "nothing"},
		{`match (true) { case false => 0 case true => 1 }`, "1"},
		{`match ([1]) { case Array => "list" }`, "list"},
	}

	ev := newTestEvaluator(io.Discard)
	for _, tt := range tests {
		got, err := evaluate(t, ev, tt.input)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.input, err)
			continue
		}
		if got.Inspect() != tt.expected {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.expected, got.Inspect())
		}
	}

	_, err := evaluate(t, ev, `match (5) { case 1 => "a" }`)
	if !errors.Is(err, ErrUnmatchedCase) {
		t.Errorf("expected UnmatchedCase, got %v", err)
	}
}

func TestClasses(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			"class A { x = 1 } class B extends A { y = 2 } b = new B(); print(b.x); print(b.y)",
			"1\n2\n",
		},
		{
			"class A { x = 1 } class B extends A { x = 3 } print(new B().x)",
			"3\n",
		},
		{
			"class A { x = 1 } class B extends A { y = 2 func setX(v) { this.x = v } } b = new B(); b.setX(9); print(b.x); print(b.y)",
			"9\n2\n",
		},
		{
			"class Counter { count = 0 func inc() { count = count + 1; return count } } c = new Counter(); c.inc(); print(c.inc()); print(c.count)",
			"2\n2\n",
		},
		{
			"class P { name func setName(n) { this.name = n } } p = new P(); print(p.name); p.setName(\"rex\"); print(p.name)",
			"null\nrex\n",
		},
		{
			"class A { func tag() { extra = 1 } } a = new A(); a.tag(); print(a.extra)",
			"1\n",
		},
		{
			"class A { x = 1 } a = new A(); a.x = 4; print(a.x)",
			"4\n",
		},
		{
			"class A { x = [] } a = new A(); b = a; b.x = 1; print(a.x)",
			"[]\n",
		},
		{
			"class A { } print(new A()); print(A); print(typeof(new A())); print(typeof(A))",
			"<A object>\n<class A>\nObject\nClass\n",
		},
		{
			"class A { x = 1 } print(new A() == new A())",
			"true\n",
		},
		{
			"n = 0; class A { id = n } n = 5; print(new A().id)",
			"5\n",
		},
	}

	for _, tt := range tests {
		out, err := run(t, tt.input)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.input, err)
			continue
		}
		if out != tt.expected {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, out)
		}
	}
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`print(typeof(1))`, "Number\n"},
		{`print(typeof("s"))`, "String\n"},
		{`print(typeof(null))`, "Null\n"},
		{`print(typeof(print))`, "Function\n"},
		{`print(typeof((x) => x))`, "Function\n"},
		{`print(len("abc"))`, "3\n"},
		{`print(len([1, 2]))`, "2\n"},
		{`print(map([1, 2, 3], (x) => x * 2))`, "[2, 4, 6]\n"},
		{`print(map([], (x) => x))`, "[]\n"},
		{`print(filter([1, 2, 3, 4], (x) => x > 2))`, "[3, 4]\n"},
		{`print(print(1))`, "1\nnull\n"},
		{`print(1.5)`, "1.5\n"},
	}

	for _, tt := range tests {
		out, err := run(t, tt.input)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.input, err)
			continue
		}
		if out != tt.expected {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, out)
		}
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		input   string
		err     error
		message string
	}{
		{"1 / 0", ErrDivisionByZero, "Division by zero"},
		{"x = 0; 5 / x", ErrDivisionByZero, "Division by zero"},
		{"print(y)", ErrUndefinedName, "Undefined variable: y"},
		{"g()", ErrUndefinedName, "Undefined function: g"},
		{`1 + "a"`, ErrTypeMismatch, "Cannot add Number and String"},
		{"true + 1", ErrTypeMismatch, "Cannot add Boolean and Number"},
		{`"a" - 1`, ErrTypeMismatch, "Cannot convert 'a' to number"},
		{"null < 1", ErrTypeMismatch, "Cannot convert Null to number"},
		{"func f(a) { return a } f(1, 2)", ErrTypeMismatch, "f expects 1 arguments but got 2"},
		{"x = 1; x()", ErrTypeMismatch, "x is not a function"},
		{"len(1)", ErrTypeMismatch, "argument to `len` not supported, got Number"},
		{"for (x in 5) print(x)", ErrTypeMismatch, "Cannot iterate over Number in foreach loop"},
		{"map([1], (a, b) => a)", ErrTypeMismatch, "second argument to `map` must be a lambda of one parameter"},
		{"filter(1, (a) => a)", ErrTypeMismatch, "first argument to `filter` must be Array, got Number"},
		{"x = 1; x.y", ErrTypeMismatch, "Cannot access property 'y' on Number"},
		{"class A { } a = new A(); a.z", ErrUndefinedName, "Property 'z' not found on object"},
		{"class B extends A { }", ErrUnknownClassOrMethod, "Parent class 'A' not found"},
		{"new Missing()", ErrUnknownClassOrMethod, "Class 'Missing' not found"},
		{"class A { func hi() { return 1 } } class B extends A { } b = new B(); b.hi()", ErrUnknownClassOrMethod, "Method 'hi' not found in class 'B'"},
		{"class A { func m(a) { } } a = new A(); a.m()", ErrTypeMismatch, "m expects 1 arguments but got 0"},
	}

	for _, tt := range tests {
		_, err := run(t, tt.input)
		if !errors.Is(err, tt.err) {
			t.Errorf("%q: expected %v, got %v", tt.input, tt.err, err)
			continue
		}
		if err.Error() != tt.message {
			t.Errorf("%q: expected message %q, got %q", tt.input, tt.message, err.Error())
		}
	}
}

func TestErrorAbortsRemainingStatements(t *testing.T) {
	out, err := run(t, `print(1); print(1 / 0); print(2)`)
	if !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected DivisionByZero, got %v", err)
	}
	if out != "1\n" {
		t.Errorf("expected only the first print, got %q", out)
	}
}

func TestMaxDepth(t *testing.T) {
	_, err := run(t, "func f(n) { return f(n + 1) } f(0)", WithMaxDepth(50))
	if !errors.Is(err, ErrStackOverflow) {
		t.Fatalf("expected StackOverflow, got %v", err)
	}
	if err.Error() != "Maximum call depth of 50 exceeded" {
		t.Errorf("unexpected message %q", err.Error())
	}

	out, err := run(t, "func down(n) { if (n == 0) return 0; return down(n - 1) } print(down(40))", WithMaxDepth(50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "0\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestContextInterruptsLoops(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []string{
		"while (true) { }",
		"for (i = 0; true; i = i + 1) { }",
		"for (x in [1, 2, 3]) { print(x) }",
		"func spin(n) { return spin(n + 1) } spin(0)",
	}
	for _, input := range tests {
		out, err := run(t, input, WithContext(cancelled), WithMaxDepth(0))
		if !errors.Is(err, ErrInterrupted) {
			t.Errorf("%q: expected Interrupted, got %v", input, err)
		}
		if out != "" {
			t.Errorf("%q: expected no output, got %q", input, out)
		}
	}
}

func TestDeadlineStopsRunawayLoop(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := run(t, "x = 0; while (true) { x = x + 1 }", WithContext(ctx))
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrInterrupted) {
			t.Fatalf("expected Interrupted, got %v", err)
		}
		if err.Error() != "Execution interrupted: context deadline exceeded" {
			t.Errorf("unexpected message %q", err.Error())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("loop was not interrupted")
	}
}

func TestBuiltinsCanBeShadowed(t *testing.T) {
	_, err := run(t, "map = 1; map([1], (x) => x)")
	if !errors.Is(err, ErrTypeMismatch) || err.Error() != "map is not a function" {
		t.Errorf("expected a user binding to shadow map, got %v", err)
	}

	out, err := run(t, "func map(a, b) { return 0 } print(map([1], (x) => x))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "0\n" {
		t.Errorf("expected the user function to win, got %q", out)
	}
}

func TestCallablesCompareByIdentity(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"func f() { } print(f == f)", "true\n"},
		{"func f() { } g = f; print(g == f)", "true\n"},
		{"func f() { } func g() { } print(f == g)", "false\n"},
		{"l = (x) => x; print(l == l)", "true\n"},
		{"a = (x) => x; b = (x) => x; print(a == b)", "false\n"},
	}
	for _, tt := range tests {
		out, err := run(t, tt.input)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.input, err)
		}
		if out != tt.expected {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, out)
		}
	}
}

func TestSessionSurvivesErrors(t *testing.T) {
	var out bytes.Buffer
	ev := newTestEvaluator(&out)

	inputs := []struct {
		input   string
		wantErr bool
	}{
		{"x = 1;", false},
		{"func boom() { { return 1 / 0 } } boom();", true},
		{"y = x + 1; print(y);", false},
	}
	for _, in := range inputs {
		program, err := parser.Parse(in.input)
		if err != nil {
			t.Fatalf("%q: parse error: %v", in.input, err)
		}
		err = ev.Execute(program)
		if (err != nil) != in.wantErr {
			t.Fatalf("%q: error = %v, wantErr %v", in.input, err, in.wantErr)
		}
		if ev.env.Depth() != 0 {
			t.Fatalf("%q: %d frames left on the stack", in.input, ev.env.Depth())
		}
	}

	if out.String() != "2\n" {
		t.Errorf("unexpected output %q", out.String())
	}
	if len(ev.Globals()) != 3 {
		t.Errorf("expected 3 globals, got %v", ev.Globals())
	}
}
