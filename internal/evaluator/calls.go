package evaluator

import (
	"log/slog"
	"platypus/internal/ast"
	"platypus/internal/object"
)

func (e *Evaluator) evalCallExpression(node *ast.CallExpression, inCall bool) (object.Object, error) {
	name := node.Function.Value
	if isPrivate(name) && !inCall {
		return nil, newError(PrivateAccessViolation, "Cannot call private function '%s' from outside a function", name)
	}

	args, err := e.evalExpressions(node.Arguments, inCall)
	if err != nil {
		return nil, err
	}

	fn, ok := e.env.Get(name)
	if !ok {
		return nil, newError(UndefinedName, "Undefined function: %s", name)
	}

	e.logger.Debug("calling function",
		slog.String("name", name),
		slog.Int("args", len(args)),
		slog.Int("depth", e.depth))

	return e.applyFunction(name, fn, args)
}

// CallLambda lets natives such as map and filter invoke user lambdas.
func (e *Evaluator) CallLambda(fn *object.Lambda, args ...object.Object) (object.Object, error) {
	return e.applyFunction("lambda", fn, args)
}

func (e *Evaluator) applyFunction(name string, fn object.Object, args []object.Object) (object.Object, error) {
	switch fn := fn.(type) {

	case *object.Function:
		if err := checkArity(name, len(fn.Parameters), len(args)); err != nil {
			return nil, err
		}
		ret, err := e.invoke(fn.Closure, fn.Parameters, args, func() (object.Object, error) {
			return e.execStatements(fn.Body, true)
		})
		if err != nil {
			return nil, err
		}
		return unwrapReturnValue(ret), nil

	case *object.Lambda:
		if err := checkArity(name, len(fn.Parameters), len(args)); err != nil {
			return nil, err
		}
		return e.invoke(fn.Closure, fn.Parameters, args, func() (object.Object, error) {
			return e.evalExpression(fn.Body, true)
		})

	case *object.Native:
		if err := checkArity(name, fn.Arity, len(args)); err != nil {
			return nil, err
		}
		return fn.Fn(e, args...)

	default:
		return nil, newError(TypeMismatch, "%s is not a function", name)
	}
}

// invoke runs body in a fresh frame seeded from the closure snapshot with the
// parameters bound on top. The frame is popped whether or not body fails.
func (e *Evaluator) invoke(closure map[string]object.Object, params []string, args []object.Object, body func() (object.Object, error)) (object.Object, error) {
	if err := e.enter(); err != nil {
		return nil, err
	}
	defer e.leave()

	e.env.Push(closure)
	defer e.env.Pop()

	for i, param := range params {
		e.env.Define(param, args[i])
	}

	return body()
}

func (e *Evaluator) enter() error {
	if err := e.interrupted(); err != nil {
		return err
	}
	if e.maxDepth > 0 && e.depth >= e.maxDepth {
		return newError(StackOverflow, "Maximum call depth of %d exceeded", e.maxDepth)
	}
	e.depth++
	return nil
}

func (e *Evaluator) leave() {
	e.depth--
}

func checkArity(name string, want, got int) error {
	if want != got {
		return newError(TypeMismatch, "%s expects %d arguments but got %d", name, want, got)
	}
	return nil
}

func unwrapReturnValue(obj object.Object) object.Object {
	if rv, ok := obj.(*object.ReturnValue); ok {
		return rv.Value
	}
	return object.NULL
}

func (e *Evaluator) declareClass(node *ast.ClassStatement) error {
	class := &object.Class{
		Name:     node.Name.Value,
		Methods:  make(map[string]*object.Method, len(node.Methods)),
		Defaults: node.Properties,
	}

	if node.Parent != nil {
		parent, ok := e.env.Get(node.Parent.Value)
		if !ok {
			return newError(UnknownClassOrMethod, "Parent class '%s' not found", node.Parent.Value)
		}
		parentClass, ok := parent.(*object.Class)
		if !ok {
			return newError(UnknownClassOrMethod, "'%s' is not a class", node.Parent.Value)
		}
		class.Parent = parentClass
	}

	for _, m := range node.Methods {
		class.Methods[m.Name.Value] = &object.Method{
			Name:       m.Name.Value,
			Parameters: m.ParameterNames(),
			Body:       m.Body,
		}
	}

	e.logger.Debug("declared class",
		slog.String("name", class.Name),
		slog.Int("methods", len(class.Methods)),
		slog.Int("properties", len(class.Defaults)))

	e.env.Define(class.Name, class)
	return nil
}

// evalNewExpression builds an instance from the default properties of the
// class and its ancestors. Constructor arguments are accepted by the grammar
// but never evaluated or bound.
func (e *Evaluator) evalNewExpression(node *ast.NewExpression, inCall bool) (object.Object, error) {
	name := node.Class.Value
	if isPrivate(name) && !inCall {
		return nil, newError(PrivateAccessViolation, "Cannot instantiate private class '%s' from outside a function", name)
	}

	val, ok := e.env.Get(name)
	if !ok {
		return nil, newError(UnknownClassOrMethod, "Class '%s' not found", name)
	}
	class, ok := val.(*object.Class)
	if !ok {
		return nil, newError(UnknownClassOrMethod, "'%s' is not a class", name)
	}

	props := make(map[string]object.Object)
	if err := e.applyDefaults(class, props, inCall); err != nil {
		return nil, err
	}

	e.logger.Debug("constructed object",
		slog.String("class", name),
		slog.Int("properties", len(props)))

	return &object.Instance{ClassName: name, Properties: props}, nil
}

func (e *Evaluator) applyDefaults(class *object.Class, props map[string]object.Object, inCall bool) error {
	if class.Parent != nil {
		if err := e.applyDefaults(class.Parent, props, inCall); err != nil {
			return err
		}
	}
	for _, prop := range class.Defaults {
		val, err := e.evalExpression(prop.Value, inCall)
		if err != nil {
			return err
		}
		props[prop.Name.Value] = val
	}
	return nil
}

func (e *Evaluator) evalPropertyExpression(node *ast.PropertyExpression, inCall bool) (object.Object, error) {
	name := node.Property.Value
	if isPrivate(name) && !inCall {
		return nil, newError(PrivateAccessViolation, "Cannot access private property '%s' from outside a method", name)
	}

	obj, err := e.evalExpression(node.Object, inCall)
	if err != nil {
		return nil, err
	}
	inst, ok := obj.(*object.Instance)
	if !ok {
		return nil, newError(TypeMismatch, "Cannot access property '%s' on %s", name, obj.Type())
	}

	val, ok := inst.Properties[name]
	if !ok {
		return nil, newError(UndefinedName, "Property '%s' not found on object", name)
	}
	return val, nil
}

// evalPropertyAssign stores a copy of the instance with the property
// replaced. Only a receiver held in a plain variable is rebound.
func (e *Evaluator) evalPropertyAssign(node *ast.PropertyAssignExpression, inCall bool) (object.Object, error) {
	name := node.Property.Value
	if isPrivate(name) && !inCall {
		return nil, newError(PrivateAccessViolation, "Cannot assign private property '%s' from outside a method", name)
	}

	obj, err := e.evalExpression(node.Object, inCall)
	if err != nil {
		return nil, err
	}
	val, err := e.evalExpression(node.Value, inCall)
	if err != nil {
		return nil, err
	}

	inst, ok := obj.(*object.Instance)
	if !ok {
		return nil, newError(TypeMismatch, "Cannot set property '%s' on %s", name, obj.Type())
	}

	if ident, ok := node.Object.(*ast.Identifier); ok {
		e.env.Set(ident.Value, inst.With(name, val))
	}
	return val, nil
}

func (e *Evaluator) evalMethodCall(node *ast.MethodCallExpression, inCall bool) (object.Object, error) {
	name := node.Method.Value
	if isPrivate(name) && !inCall {
		return nil, newError(PrivateAccessViolation, "Cannot call private method '%s' from outside a method", name)
	}

	obj, err := e.evalExpression(node.Object, inCall)
	if err != nil {
		return nil, err
	}
	inst, ok := obj.(*object.Instance)
	if !ok {
		return nil, newError(TypeMismatch, "Cannot call method '%s' on %s", name, obj.Type())
	}

	args, err := e.evalExpressions(node.Arguments, inCall)
	if err != nil {
		return nil, err
	}

	method, err := e.lookupMethod(inst.ClassName, name)
	if err != nil {
		return nil, err
	}
	if err := checkArity(name, len(method.Parameters), len(args)); err != nil {
		return nil, err
	}

	e.logger.Debug("calling method",
		slog.String("class", inst.ClassName),
		slog.String("name", name),
		slog.Int("depth", e.depth))

	ret, updated, err := e.runMethod(inst, method, args)
	if err != nil {
		return nil, err
	}

	if ident, ok := node.Object.(*ast.Identifier); ok {
		e.env.Set(ident.Value, updated)
	}
	return unwrapReturnValue(ret), nil
}

// lookupMethod only consults the class's own methods; parents contribute
// default properties but not behaviour.
func (e *Evaluator) lookupMethod(className, name string) (*object.Method, error) {
	val, ok := e.env.Get(className)
	if !ok {
		return nil, newError(UnknownClassOrMethod, "Class '%s' not found", className)
	}
	class, ok := val.(*object.Class)
	if !ok {
		return nil, newError(UnknownClassOrMethod, "'%s' is not a class", className)
	}
	method, ok := class.Methods[name]
	if !ok {
		return nil, newError(UnknownClassOrMethod, "Method '%s' not found in class '%s'", name, className)
	}
	return method, nil
}

// runMethod executes method with the receiver's properties as loose
// bindings. Afterwards every binding that was added or rebound, other than
// this and the parameters, is folded into a copy of the receiver.
func (e *Evaluator) runMethod(inst *object.Instance, method *object.Method, args []object.Object) (object.Object, *object.Instance, error) {
	seed := inst.CopyProperties()
	seed["this"] = inst
	for i, param := range method.Parameters {
		seed[param] = args[i]
	}

	if err := e.enter(); err != nil {
		return nil, nil, err
	}
	e.env.Push(seed)
	ret, err := e.execStatements(method.Body, true)
	frame := e.env.Pop()
	e.leave()
	if err != nil {
		return nil, nil, err
	}

	props := inst.CopyProperties()
	if this, ok := frame["this"].(*object.Instance); ok && this != inst {
		for k, v := range this.Properties {
			if inst.Properties[k] != v {
				props[k] = v
			}
		}
	}

	excluded := make(map[string]bool, len(method.Parameters)+1)
	excluded["this"] = true
	for _, param := range method.Parameters {
		excluded[param] = true
	}
	for k, v := range frame {
		if excluded[k] {
			continue
		}
		if before, ok := seed[k]; !ok || before != v {
			props[k] = v
		}
	}

	return ret, &object.Instance{ClassName: inst.ClassName, Properties: props}, nil
}
