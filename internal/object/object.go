package object

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"platypus/internal/ast"
	"strconv"
	"strings"
)

// Runtime type names; these are what typeof returns and what type patterns
// in match compare against.
const (
	NUMBER_OBJ   = "Number"
	STRING_OBJ   = "String"
	BOOLEAN_OBJ  = "Boolean"
	ARRAY_OBJ    = "Array"
	FUNCTION_OBJ = "Function"
	CLASS_OBJ    = "Class"
	INSTANCE_OBJ = "Object"
	NULL_OBJ     = "Null"

	RETURN_VALUE_OBJ = "RETURN_VALUE"
)

var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

// EvaluatorContext provides the bridge between builtins written in Go and
// the interpreter that invokes them.
type EvaluatorContext interface {
	Output() io.Writer
	CallLambda(fn *Lambda, args ...Object) (Object, error)
}

type BuiltinFunction func(ctx EvaluatorContext, args ...Object) (Object, error)

type ObjectType string

type Object interface {
	Type() ObjectType
	Inspect() string
}

type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return FormatNumber(n.Value) }

// FormatNumber renders integral values without a decimal point and all
// others in their shortest round-trip form.
func FormatNumber(f float64) string {
	if f == 0 {
		return "0" // also folds -0
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

// NativeBoolToBooleanObject returns one of the shared TRUE/FALSE values.
func NativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "null" }

type Array struct {
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	var out bytes.Buffer

	elements := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		elements[i] = e.Inspect()
	}

	out.WriteString("[")
	out.WriteString(strings.Join(elements, ", "))
	out.WriteString("]")

	return out.String()
}

// Function is a named function value. Body is shared with the parsed
// program; AST nodes are never mutated after parsing.
type Function struct {
	Name       string
	Parameters []string
	Body       []ast.Statement
	Closure    map[string]Object
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string  { return fmt.Sprintf("<function(%d)>", len(f.Parameters)) }

type Lambda struct {
	Parameters []string
	Body       ast.Expression
	Closure    map[string]Object
}

func (l *Lambda) Type() ObjectType { return FUNCTION_OBJ }
func (l *Lambda) Inspect() string  { return fmt.Sprintf("<lambda(%d)>", len(l.Parameters)) }

type Native struct {
	Name  string
	Arity int
	Fn    BuiltinFunction
}

func (n *Native) Type() ObjectType { return FUNCTION_OBJ }
func (n *Native) Inspect() string  { return fmt.Sprintf("<native function %s(%d)>", n.Name, n.Arity) }

type Method struct {
	Name       string
	Parameters []string
	Body       []ast.Statement
}

// Class keeps only its own methods. Default properties are kept as
// expressions and evaluated at each construction, parent chain first.
type Class struct {
	Name     string
	Parent   *Class
	Methods  map[string]*Method
	Defaults []*ast.ClassProperty
}

func (c *Class) Type() ObjectType { return CLASS_OBJ }
func (c *Class) Inspect() string  { return fmt.Sprintf("<class %s>", c.Name) }

// Instance is an object created by `new`. Its property map is never edited
// in place; updates produce a new Instance with a copied map.
type Instance struct {
	ClassName  string
	Properties map[string]Object
}

func (i *Instance) Type() ObjectType { return INSTANCE_OBJ }
func (i *Instance) Inspect() string  { return fmt.Sprintf("<%s object>", i.ClassName) }

// With returns a copy of the instance with one property replaced.
func (i *Instance) With(name string, val Object) *Instance {
	props := i.CopyProperties()
	props[name] = val
	return &Instance{ClassName: i.ClassName, Properties: props}
}

func (i *Instance) CopyProperties() map[string]Object {
	props := make(map[string]Object, len(i.Properties)+1)
	for k, v := range i.Properties {
		props[k] = v
	}
	return props
}

type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// IsTruthy: null, false, zero, the empty string and the empty array are
// falsy; everything else is truthy.
func IsTruthy(obj Object) bool {
	switch o := obj.(type) {
	case *Null:
		return false
	case *Boolean:
		return o.Value
	case *Number:
		return o.Value != 0
	case *String:
		return o.Value != ""
	case *Array:
		return len(o.Elements) > 0
	default:
		return obj != nil
	}
}

// ToNumber is the numeric conversion shared by arithmetic, comparison and
// unary minus.
func ToNumber(obj Object) (float64, error) {
	switch o := obj.(type) {
	case *Number:
		return o.Value, nil
	case *String:
		f, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			return 0, fmt.Errorf("Cannot convert '%s' to number", o.Value)
		}
		return f, nil
	case *Boolean:
		if o.Value {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("Cannot convert %s to number", obj.Type())
	}
}

// Equal is structural: same variant and same content. Callables and classes
// compare by identity, instances by class name and properties.
func Equal(a, b Object) bool {
	switch x := a.(type) {
	case *Number:
		y, ok := b.(*Number)
		return ok && x.Value == y.Value
	case *String:
		y, ok := b.(*String)
		return ok && x.Value == y.Value
	case *Boolean:
		y, ok := b.(*Boolean)
		return ok && x.Value == y.Value
	case *Null:
		_, ok := b.(*Null)
		return ok
	case *Array:
		y, ok := b.(*Array)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !Equal(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	case *Instance:
		y, ok := b.(*Instance)
		if !ok || x.ClassName != y.ClassName || len(x.Properties) != len(y.Properties) {
			return false
		}
		for k, v := range x.Properties {
			w, found := y.Properties[k]
			if !found || !Equal(v, w) {
				return false
			}
		}
		return true
	case *Native:
		y, ok := b.(*Native)
		return ok && x.Name == y.Name
	default:
		return a == b
	}
}
