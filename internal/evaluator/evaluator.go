package evaluator

import (
	"context"
	"io"
	"log/slog"
	"os"
	"platypus/internal/ast"
	"platypus/internal/object"
	"strings"
)

const DefaultMaxDepth = 10000

// Evaluator walks the AST directly. One instance lives for a whole batch run
// or interactive session, so globals persist between Execute calls.
//
// Whether execution is inside a function, lambda or method body is not
// stored here; it is passed down as the inCall argument so private names
// are checked against where execution currently is.
type Evaluator struct {
	ctx      context.Context
	env      *object.Environment
	out      io.Writer
	logger   *slog.Logger
	maxDepth int
	depth    int
}

type Option func(*Evaluator)

// WithOutput sets where print writes. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Evaluator) { e.out = w }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = logger }
}

// WithMaxDepth bounds nested calls; zero or less disables the guard.
func WithMaxDepth(depth int) Option {
	return func(e *Evaluator) { e.maxDepth = depth }
}

// WithContext lets a caller interrupt running code. Loops and calls check
// ctx and fail with an Interrupted error once it is done.
func WithContext(ctx context.Context) Option {
	return func(e *Evaluator) { e.ctx = ctx }
}

func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		ctx:      context.Background(),
		out:      os.Stdout,
		logger:   slog.Default(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.env = object.NewEnvironment(newBuiltins())
	return e
}

func (e *Evaluator) Output() io.Writer {
	return e.out
}

// Globals lists the names bound at top level.
func (e *Evaluator) Globals() []string {
	return e.env.Globals()
}

// Execute runs every top-level statement for its side effects. A `return`
// at top level is ignored. The first error aborts the run.
func (e *Evaluator) Execute(program *ast.Program) error {
	base := e.env.Depth()
	for _, stmt := range program.Statements {
		if _, err := e.execStatement(stmt, false); err != nil {
			e.reset(base)
			return err
		}
	}
	return nil
}

// Evaluate evaluates a single expression at top level and returns its value.
func (e *Evaluator) Evaluate(expr ast.Expression) (object.Object, error) {
	base := e.env.Depth()
	val, err := e.evalExpression(expr, false)
	if err != nil {
		e.reset(base)
		return nil, err
	}
	return val, nil
}

// reset drops frames left behind by an aborted evaluation so the next
// input in the same session starts from a clean scope stack.
func (e *Evaluator) reset(base int) {
	e.env.Unwind(base)
	e.depth = 0
}

func (e *Evaluator) interrupted() error {
	if err := e.ctx.Err(); err != nil {
		return newError(Interrupted, "Execution interrupted: %v", err)
	}
	return nil
}

// execStatement returns a *object.ReturnValue when a return statement was
// executed, nil otherwise.
func (e *Evaluator) execStatement(stmt ast.Statement, inCall bool) (object.Object, error) {
	switch node := stmt.(type) {

	case *ast.VarStatement:
		val, err := e.evalExpression(node.Value, inCall)
		if err != nil {
			return nil, err
		}
		// rebinding an existing name mutates it where it lives, even in an
		// enclosing scope; only unknown names are defined locally
		if _, ok := e.env.Get(node.Name.Value); ok {
			e.env.Set(node.Name.Value, val)
		} else {
			e.env.Define(node.Name.Value, val)
		}
		return nil, nil

	case *ast.FunctionStatement:
		fn := &object.Function{
			Name:       node.Name.Value,
			Parameters: node.ParameterNames(),
			Body:       node.Body,
			Closure:    e.env.Snapshot(),
		}
		e.env.Define(fn.Name, fn)
		return nil, nil

	case *ast.ClassStatement:
		return nil, e.declareClass(node)

	case *ast.ReturnStatement:
		if node.ReturnValue == nil {
			return &object.ReturnValue{Value: object.NULL}, nil
		}
		val, err := e.evalExpression(node.ReturnValue, inCall)
		if err != nil {
			return nil, err
		}
		return &object.ReturnValue{Value: val}, nil

	case *ast.ExpressionStatement:
		_, err := e.evalExpression(node.Expression, inCall)
		return nil, err

	case *ast.IfStatement:
		cond, err := e.evalExpression(node.Condition, inCall)
		if err != nil {
			return nil, err
		}
		if object.IsTruthy(cond) {
			return e.execStatement(node.ThenBranch, inCall)
		} else if node.ElseBranch != nil {
			return e.execStatement(node.ElseBranch, inCall)
		}
		return nil, nil

	case *ast.WhileStatement:
		for {
			if err := e.interrupted(); err != nil {
				return nil, err
			}
			cond, err := e.evalExpression(node.Condition, inCall)
			if err != nil {
				return nil, err
			}
			if !object.IsTruthy(cond) {
				return nil, nil
			}
			if ret, err := e.execStatement(node.Body, inCall); err != nil || ret != nil {
				return ret, err
			}
		}

	case *ast.ForStatement:
		return e.execFor(node, inCall)

	case *ast.ForEachStatement:
		iterable, err := e.evalExpression(node.Iterable, inCall)
		if err != nil {
			return nil, err
		}
		array, ok := iterable.(*object.Array)
		if !ok {
			return nil, newError(TypeMismatch, "Cannot iterate over %s in foreach loop", iterable.Type())
		}
		for _, item := range array.Elements {
			if err := e.interrupted(); err != nil {
				return nil, err
			}
			e.env.Define(node.Variable.Value, item)
			if ret, err := e.execStatement(node.Body, inCall); err != nil || ret != nil {
				return ret, err
			}
		}
		return nil, nil

	case *ast.BlockStatement:
		e.env.Push(nil)
		ret, err := e.execStatements(node.Statements, inCall)
		e.env.Pop()
		return ret, err

	default:
		return nil, newError(TypeMismatch, "unsupported statement %T", stmt)
	}
}

func (e *Evaluator) execFor(node *ast.ForStatement, inCall bool) (object.Object, error) {
	if node.Init != nil {
		if _, err := e.execStatement(node.Init, inCall); err != nil {
			return nil, err
		}
	}

	for {
		if err := e.interrupted(); err != nil {
			return nil, err
		}
		if node.Condition != nil {
			cond, err := e.evalExpression(node.Condition, inCall)
			if err != nil {
				return nil, err
			}
			if !object.IsTruthy(cond) {
				return nil, nil
			}
		}

		if ret, err := e.execStatement(node.Body, inCall); err != nil || ret != nil {
			return ret, err
		}

		if node.Increment != nil {
			if _, err := e.evalExpression(node.Increment, inCall); err != nil {
				return nil, err
			}
		}
	}
}

// execStatements runs statements in order, stopping at the first return.
func (e *Evaluator) execStatements(stmts []ast.Statement, inCall bool) (object.Object, error) {
	for _, stmt := range stmts {
		ret, err := e.execStatement(stmt, inCall)
		if err != nil || ret != nil {
			return ret, err
		}
	}
	return nil, nil
}

func (e *Evaluator) evalExpression(exp ast.Expression, inCall bool) (object.Object, error) {
	switch node := exp.(type) {

	case *ast.NumberLiteral:
		return &object.Number{Value: node.Value}, nil

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}, nil

	case *ast.BooleanLiteral:
		return object.NativeBoolToBooleanObject(node.Value), nil

	case *ast.NullLiteral:
		return object.NULL, nil

	case *ast.Identifier:
		return e.evalIdentifier(node, inCall)

	case *ast.AssignExpression:
		val, err := e.evalExpression(node.Value, inCall)
		if err != nil {
			return nil, err
		}
		e.env.Set(node.Name.Value, val)
		return val, nil

	case *ast.PropertyAssignExpression:
		return e.evalPropertyAssign(node, inCall)

	case *ast.PrefixExpression:
		right, err := e.evalExpression(node.Right, inCall)
		if err != nil {
			return nil, err
		}
		return e.evalPrefixExpression(node.Operator, right)

	case *ast.InfixExpression:
		// both operands are always evaluated, && and || included
		left, err := e.evalExpression(node.Left, inCall)
		if err != nil {
			return nil, err
		}
		right, err := e.evalExpression(node.Right, inCall)
		if err != nil {
			return nil, err
		}
		return e.evalInfixExpression(node.Operator, left, right)

	case *ast.CallExpression:
		return e.evalCallExpression(node, inCall)

	case *ast.LambdaExpression:
		return &object.Lambda{
			Parameters: node.ParameterNames(),
			Body:       node.Body,
			Closure:    e.env.Snapshot(),
		}, nil

	case *ast.MatchExpression:
		return e.evalMatchExpression(node, inCall)

	case *ast.ArrayLiteral:
		elements, err := e.evalExpressions(node.Elements, inCall)
		if err != nil {
			return nil, err
		}
		return &object.Array{Elements: elements}, nil

	case *ast.NewExpression:
		return e.evalNewExpression(node, inCall)

	case *ast.MethodCallExpression:
		return e.evalMethodCall(node, inCall)

	case *ast.PropertyExpression:
		return e.evalPropertyExpression(node, inCall)

	default:
		return nil, newError(TypeMismatch, "unsupported expression %T", exp)
	}
}

func (e *Evaluator) evalExpressions(exps []ast.Expression, inCall bool) ([]object.Object, error) {
	result := make([]object.Object, 0, len(exps))

	for _, exp := range exps {
		evaluated, err := e.evalExpression(exp, inCall)
		if err != nil {
			return nil, err
		}
		result = append(result, evaluated)
	}

	return result, nil
}

func isPrivate(name string) bool {
	return strings.HasPrefix(name, "_")
}

func (e *Evaluator) evalIdentifier(node *ast.Identifier, inCall bool) (object.Object, error) {
	if isPrivate(node.Value) && !inCall {
		return nil, newError(PrivateAccessViolation, "Cannot access private variable '%s' from outside a function", node.Value)
	}
	if val, ok := e.env.Get(node.Value); ok {
		return val, nil
	}
	return nil, newError(UndefinedName, "Undefined variable: %s", node.Value)
}

func (e *Evaluator) evalPrefixExpression(operator string, right object.Object) (object.Object, error) {
	switch operator {
	case "!":
		return object.NativeBoolToBooleanObject(!object.IsTruthy(right)), nil
	case "-":
		n, err := object.ToNumber(right)
		if err != nil {
			return nil, newError(TypeMismatch, "%s", err.Error())
		}
		return &object.Number{Value: -n}, nil
	default:
		return nil, newError(TypeMismatch, "unknown operator: %s%s", operator, right.Type())
	}
}

func (e *Evaluator) evalInfixExpression(operator string, left, right object.Object) (object.Object, error) {
	switch operator {
	case "+":
		switch l := left.(type) {
		case *object.Number:
			if r, ok := right.(*object.Number); ok {
				return &object.Number{Value: l.Value + r.Value}, nil
			}
		case *object.String:
			if r, ok := right.(*object.String); ok {
				return &object.String{Value: l.Value + r.Value}, nil
			}
		}
		return nil, newError(TypeMismatch, "Cannot add %s and %s", left.Type(), right.Type())

	case "==":
		return object.NativeBoolToBooleanObject(object.Equal(left, right)), nil
	case "!=":
		return object.NativeBoolToBooleanObject(!object.Equal(left, right)), nil
	case "&&":
		return object.NativeBoolToBooleanObject(object.IsTruthy(left) && object.IsTruthy(right)), nil
	case "||":
		return object.NativeBoolToBooleanObject(object.IsTruthy(left) || object.IsTruthy(right)), nil
	}

	a, err := object.ToNumber(left)
	if err != nil {
		return nil, newError(TypeMismatch, "%s", err.Error())
	}
	b, err := object.ToNumber(right)
	if err != nil {
		return nil, newError(TypeMismatch, "%s", err.Error())
	}

	switch operator {
	case "-":
		return &object.Number{Value: a - b}, nil
	case "*":
		return &object.Number{Value: a * b}, nil
	case "/":
		if b == 0 {
			return nil, newError(DivisionByZero, "Division by zero")
		}
		return &object.Number{Value: a / b}, nil
	case "<":
		return object.NativeBoolToBooleanObject(a < b), nil
	case "<=":
		return object.NativeBoolToBooleanObject(a <= b), nil
	case ">":
		return object.NativeBoolToBooleanObject(a > b), nil
	case ">=":
		return object.NativeBoolToBooleanObject(a >= b), nil
	default:
		return nil, newError(TypeMismatch, "unknown operator: %s %s %s", left.Type(), operator, right.Type())
	}
}

func (e *Evaluator) evalMatchExpression(node *ast.MatchExpression, inCall bool) (object.Object, error) {
	value, err := e.evalExpression(node.Value, inCall)
	if err != nil {
		return nil, err
	}

	for _, c := range node.Cases {
		matched, err := e.patternMatches(c.Pattern, value, inCall)
		if err != nil {
			return nil, err
		}
		if matched {
			return e.evalExpression(c.Body, inCall)
		}
	}

	return nil, newError(UnmatchedCase, "No matching case found for %s", describeValue(value))
}

// patternMatches never binds: a bare name compares against the runtime type
// name of the value.
func (e *Evaluator) patternMatches(pattern ast.Pattern, value object.Object, inCall bool) (bool, error) {
	switch p := pattern.(type) {
	case *ast.WildcardPattern:
		return true, nil
	case *ast.TypePattern:
		return string(value.Type()) == p.Name, nil
	case *ast.LiteralPattern:
		lit, err := e.evalExpression(p.Value, inCall)
		if err != nil {
			return false, err
		}
		return object.Equal(lit, value), nil
	default:
		return false, newError(TypeMismatch, "unsupported pattern %T", pattern)
	}
}

func describeValue(obj object.Object) string {
	if s, ok := obj.(*object.String); ok {
		return "\"" + s.Value + "\""
	}
	return obj.Inspect()
}
