package evaluator

import (
	"fmt"
	"platypus/internal/object"
)

func newBuiltins() map[string]object.Object {
	builtins := map[string]*object.Native{
		"typeof": funcTypeOf(),
		"print":  funcPrint(),
		"len":    funcLen(),

		// higher order
		"map":    funcMap(),
		"filter": funcFilter(),
	}

	registry := make(map[string]object.Object, len(builtins))
	for name, fn := range builtins {
		fn.Name = name
		registry[name] = fn
	}
	return registry
}

func funcTypeOf() *object.Native {
	return &object.Native{
		Arity: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			return &object.String{Value: string(args[0].Type())}, nil
		},
	}
}

func funcPrint() *object.Native {
	return &object.Native{
		Arity: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			if _, err := fmt.Fprintln(ctx.Output(), args[0].Inspect()); err != nil {
				return nil, fmt.Errorf("print: %w", err)
			}
			return object.NULL, nil
		},
	}
}

// funcLen counts array elements or the bytes of a string.
func funcLen() *object.Native {
	return &object.Native{
		Arity: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			switch arg := args[0].(type) {
			case *object.Array:
				return &object.Number{Value: float64(len(arg.Elements))}, nil
			case *object.String:
				return &object.Number{Value: float64(len(arg.Value))}, nil
			default:
				return nil, newError(TypeMismatch, "argument to `len` not supported, got %s", arg.Type())
			}
		},
	}
}

func funcMap() *object.Native {
	return &object.Native{
		Arity: 2,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			arr, fn, err := higherOrderArgs("map", args)
			if err != nil {
				return nil, err
			}

			result := make([]object.Object, len(arr.Elements))
			for i, el := range arr.Elements {
				val, err := ctx.CallLambda(fn, el)
				if err != nil {
					return nil, err
				}
				result[i] = val
			}
			return &object.Array{Elements: result}, nil
		},
	}
}

// funcFilter keeps the elements for which the predicate is truthy.
func funcFilter() *object.Native {
	return &object.Native{
		Arity: 2,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			arr, fn, err := higherOrderArgs("filter", args)
			if err != nil {
				return nil, err
			}

			result := make([]object.Object, 0, len(arr.Elements))
			for _, el := range arr.Elements {
				keep, err := ctx.CallLambda(fn, el)
				if err != nil {
					return nil, err
				}
				if object.IsTruthy(keep) {
					result = append(result, el)
				}
			}
			return &object.Array{Elements: result}, nil
		},
	}
}

func higherOrderArgs(name string, args []object.Object) (*object.Array, *object.Lambda, error) {
	arr, ok := args[0].(*object.Array)
	if !ok {
		return nil, nil, newError(TypeMismatch, "first argument to `%s` must be Array, got %s", name, args[0].Type())
	}
	fn, ok := args[1].(*object.Lambda)
	if !ok || len(fn.Parameters) != 1 {
		return nil, nil, newError(TypeMismatch, "second argument to `%s` must be a lambda of one parameter", name)
	}
	return arr, fn, nil
}
