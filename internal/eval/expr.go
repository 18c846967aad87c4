package eval

import (
	"fmt"
	"math"
	"strings"

	"github.com/lapis-lang/lapis/internal/ast"
	"github.com/lapis-lang/lapis/internal/diag"
	"github.com/lapis-lang/lapis/internal/object"
	"github.com/lapis-lang/lapis/internal/sourcemap"
)

func (it *Interpreter) eval(e ast.Expr) (object.Value, error) {
	switch x := e.(type) {
	case *ast.LiteralExpr:
		return it.evalLiteral(x)
	case *ast.IdentifierExpr:
		return it.evalIdentifier(x)
	case *ast.BinaryExpr:
		return it.evalBinary(x)
	case *ast.UnaryExpr:
		return it.evalUnary(x)
	case *ast.CallExpr:
		return it.evalCall(x)
	case *ast.GetExpr:
		return it.evalGet(x)
	case *ast.SetExpr:
		return it.evalSet(x)
	case *ast.IndexExpr:
		return it.evalIndex(x)
	case *ast.IndexSetExpr:
		return it.evalIndexSet(x)
	case *ast.ArrayExpr:
		return it.evalArray(x)
	case *ast.DictionaryExpr:
		return it.evalDictionary(x)
	case *ast.AssignmentExpr:
		return it.evalAssignment(x)
	case *ast.LogicalExpr:
		return it.evalLogical(x)
	case *ast.ThisExpr:
		return it.evalThis(x)
	case *ast.PostfixExpr:
		return it.evalPostfix(x)
	case *ast.TemplateLiteralExpr:
		return it.evalTemplateLiteral(x)
	default:
		return nil, diag.InternalErrorDiag(fmt.Sprintf("unknown expression type %T", e))
	}
}

func (it *Interpreter) evalLiteral(e *ast.LiteralExpr) (object.Value, error) {
	switch v := e.Value.(type) {
	case nil:
		return object.Null{}, nil
	case bool:
		return object.Bool(v), nil
	case int64:
		return object.Int(v), nil
	case float64:
		return object.Float(v), nil
	case string:
		return object.Str(v), nil
	default:
		return nil, diag.InternalErrorDiag(fmt.Sprintf("unknown literal value type %T", e.Value))
	}
}

func (it *Interpreter) evalIdentifier(e *ast.IdentifierExpr) (object.Value, error) {
	v, found, denied := it.env.Get(e.Name, false)
	if denied {
		return nil, diag.AccessViolationError(e.Span(), e.Name)
	}
	if !found {
		return nil, diag.UndefinedVariableError(e.Span(), e.Name)
	}
	return v, nil
}

func (it *Interpreter) evalThis(e *ast.ThisExpr) (object.Value, error) {
	v, found, _ := it.env.Get("this", false)
	if !found {
		return nil, diag.RuntimeErrorDiag(e.Span(), "'this' is not bound outside of a method")
	}
	return v, nil
}

func isNumeric(v object.Value) bool {
	switch v.(type) {
	case object.Int, object.Float:
		return true
	}
	return false
}

func toFloat64(v object.Value) float64 {
	switch x := v.(type) {
	case object.Int:
		return float64(x)
	case object.Float:
		return float64(x)
	}
	return 0
}

func bothInt(a, b object.Value) (object.Int, object.Int, bool) {
	ai, ok1 := a.(object.Int)
	bi, ok2 := b.(object.Int)
	return ai, bi, ok1 && ok2
}

func pyModFloat(a, b float64) float64 {
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

func pyModInt(a, b object.Int) object.Int {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

func (it *Interpreter) evalBinary(e *ast.BinaryExpr) (object.Value, error) {
	left, err := it.eval(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := it.eval(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Operator {
	case "==":
		return object.Bool(object.Equal(left, right)), nil
	case "!=":
		return object.Bool(!object.Equal(left, right)), nil
	case "+":
		if isNumeric(left) && isNumeric(right) {
			if ai, bi, ok := bothInt(left, right); ok {
				return ai + bi, nil
			}
			return object.Float(toFloat64(left) + toFloat64(right)), nil
		}
		if _, ok := left.(object.Str); ok {
			return object.Str(object.ToDisplayString(left) + object.ToDisplayString(right)), nil
		}
		if _, ok := right.(object.Str); ok {
			return object.Str(object.ToDisplayString(left) + object.ToDisplayString(right)), nil
		}
		return nil, diag.InvalidBinaryOperationError(e.Span(), e.Left.Span(), e.Right.Span(), "+", left.TypeName(), right.TypeName())
	case "-", "*", "/", "**", "%", ">", ">=", "<", "<=":
		if !isNumeric(left) || !isNumeric(right) {
			return nil, diag.InvalidBinaryOperationError(e.Span(), e.Left.Span(), e.Right.Span(), e.Operator, left.TypeName(), right.TypeName())
		}
		return it.evalNumericBinary(e, left, right)
	default:
		return nil, diag.InternalErrorDiag(fmt.Sprintf("unknown binary operator '%s'", e.Operator))
	}
}

func (it *Interpreter) evalNumericBinary(e *ast.BinaryExpr, left, right object.Value) (object.Value, error) {
	af, bf := toFloat64(left), toFloat64(right)
	switch e.Operator {
	case "-":
		if ai, bi, ok := bothInt(left, right); ok {
			return ai - bi, nil
		}
		return object.Float(af - bf), nil
	case "*":
		if ai, bi, ok := bothInt(left, right); ok {
			return ai * bi, nil
		}
		return object.Float(af * bf), nil
	case "/":
		if bf == 0 {
			return nil, diag.DivisionByZeroError(e.Span())
		}
		return object.Float(af / bf), nil
	case "%":
		if bf == 0 {
			return nil, diag.DivisionByZeroError(e.Span())
		}
		if ai, bi, ok := bothInt(left, right); ok {
			return pyModInt(ai, bi), nil
		}
		return object.Float(pyModFloat(af, bf)), nil
	case "**":
		result := math.Pow(af, bf)
		if ai, bi, ok := bothInt(left, right); ok && bi >= 0 {
			_ = ai
			return object.Int(int64(result)), nil
		}
		return object.Float(result), nil
	case ">":
		return object.Bool(af > bf), nil
	case ">=":
		return object.Bool(af >= bf), nil
	case "<":
		return object.Bool(af < bf), nil
	case "<=":
		return object.Bool(af <= bf), nil
	default:
		return nil, diag.InternalErrorDiag(fmt.Sprintf("unknown binary operator '%s'", e.Operator))
	}
}

func (it *Interpreter) evalUnary(e *ast.UnaryExpr) (object.Value, error) {
	operand, err := it.eval(e.Operand)
	if err != nil {
		return nil, err
	}
	switch e.Operator {
	case "-":
		if !isNumeric(operand) {
			return nil, diag.InvalidUnaryOperationError(e.Span(), "-", operand.TypeName())
		}
		if i, ok := operand.(object.Int); ok {
			return -i, nil
		}
		return -operand.(object.Float), nil
	case "!":
		return object.Bool(!object.IsTruthy(operand)), nil
	default:
		return nil, diag.InternalErrorDiag(fmt.Sprintf("unknown unary operator '%s'", e.Operator))
	}
}

func (it *Interpreter) evalLogical(e *ast.LogicalExpr) (object.Value, error) {
	left, err := it.eval(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Operator == "||" {
		if object.IsTruthy(left) {
			return left, nil
		}
		return it.eval(e.Right)
	}
	if !object.IsTruthy(left) {
		return left, nil
	}
	return it.eval(e.Right)
}

func (it *Interpreter) evalPostfix(e *ast.PostfixExpr) (object.Value, error) {
	ident, ok := e.Operand.(*ast.IdentifierExpr)
	if !ok {
		return nil, diag.RuntimeErrorDiag(e.Span(), "postfix operator requires a variable operand")
	}
	current, found, denied := it.env.Get(ident.Name, false)
	if denied {
		return nil, diag.AccessViolationError(e.Span(), ident.Name)
	}
	if !found {
		return nil, diag.UndefinedVariableError(e.Span(), ident.Name)
	}
	if !isNumeric(current) {
		return nil, diag.RuntimeErrorDiag(e.Span(), fmt.Sprintf("'%s' must be a number for '%s'", ident.Name, e.Operator))
	}

	var next object.Value
	delta := object.Int(1)
	if e.Operator == "--" {
		delta = -1
	}
	if i, ok := current.(object.Int); ok {
		next = i + delta
	} else {
		next = current.(object.Float) + object.Float(delta)
	}
	it.env.Assign(ident.Name, next, false)
	return current, nil
}

func (it *Interpreter) evalAssignment(e *ast.AssignmentExpr) (object.Value, error) {
	val, err := it.eval(e.Value)
	if err != nil {
		return nil, err
	}
	found, denied := it.env.Assign(e.Name, val, false)
	if denied {
		return nil, diag.AccessViolationError(e.Span(), e.Name)
	}
	if !found {
		return nil, diag.UndefinedVariableError(e.Span(), e.Name)
	}
	return val, nil
}

func (it *Interpreter) evalArray(e *ast.ArrayExpr) (object.Value, error) {
	elems := make([]object.Value, len(e.Elements))
	for i, el := range e.Elements {
		v, err := it.eval(el)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return object.NewArray(elems), nil
}

// dictKey normalizes an index/dictionary key to the string a Dictionary is
// keyed by: strings pass through, anything else renders through its
// canonical display form, letting any value serve as a key.
func dictKey(v object.Value) string {
	if s, ok := v.(object.Str); ok {
		return string(s)
	}
	return object.ToDisplayString(v)
}

func (it *Interpreter) evalDictionary(e *ast.DictionaryExpr) (object.Value, error) {
	d := object.NewDictionary()
	for _, p := range e.Pairs {
		k, err := it.eval(p.Key)
		if err != nil {
			return nil, err
		}
		v, err := it.eval(p.Value)
		if err != nil {
			return nil, err
		}
		d.Set(dictKey(k), v)
	}
	return d, nil
}

func (it *Interpreter) evalTemplateLiteral(e *ast.TemplateLiteralExpr) (object.Value, error) {
	var b strings.Builder
	for _, part := range e.Parts {
		if part.Expr == nil {
			b.WriteString(part.Text)
			continue
		}
		v, err := it.eval(part.Expr)
		if err != nil {
			return nil, err
		}
		b.WriteString(object.ToDisplayString(v))
	}
	return object.Str(b.String()), nil
}

func (it *Interpreter) evalGet(e *ast.GetExpr) (object.Value, error) {
	obj, err := it.eval(e.Object)
	if err != nil {
		return nil, err
	}
	switch o := obj.(type) {
	case *object.Instance:
		if v, ok := o.Fields[e.Name]; ok {
			return v, nil
		}
		if m := o.Class.FindMethod(e.Name); m != nil {
			return &object.BoundMethod{Instance: o, Method: m}, nil
		}
		return nil, diag.NoPropertyError(e.Span(), o.TypeName(), e.Name)
	case *object.Module:
		v, ok := o.Get(e.Name)
		if !ok {
			return nil, diag.NoPropertyError(e.Span(), o.TypeName(), e.Name)
		}
		return v, nil
	case *object.Dictionary:
		v, ok := o.Get(e.Name)
		if !ok {
			return object.Null{}, nil
		}
		return v, nil
	case object.Str:
		return it.stringMethod(e.Span(), o, e.Name)
	case *object.Array:
		return it.arrayMethod(e.Span(), o, e.Name)
	case object.Bool:
		return it.booleanMethod(e.Span(), o, e.Name)
	case object.Int, object.Float:
		return it.numberMethod(e.Span(), o, e.Name)
	default:
		return nil, diag.NoPropertyError(e.Span(), obj.TypeName(), e.Name)
	}
}

func (it *Interpreter) evalSet(e *ast.SetExpr) (object.Value, error) {
	obj, err := it.eval(e.Object)
	if err != nil {
		return nil, err
	}
	val, err := it.eval(e.Value)
	if err != nil {
		return nil, err
	}
	switch o := obj.(type) {
	case *object.Instance:
		o.Fields[e.Name] = val
		return val, nil
	case *object.Dictionary:
		o.Set(e.Name, val)
		return val, nil
	default:
		return nil, diag.RuntimeErrorDiag(e.Span(), "only instances and dictionaries have assignable fields")
	}
}

func (it *Interpreter) evalIndex(e *ast.IndexExpr) (object.Value, error) {
	obj, err := it.eval(e.Object)
	if err != nil {
		return nil, err
	}
	idx, err := it.eval(e.Index)
	if err != nil {
		return nil, err
	}
	switch o := obj.(type) {
	case *object.Array:
		i, ok := idx.(object.Int)
		if !ok {
			return nil, diag.RuntimeErrorDiag(e.Index.Span(), "array index must be a number")
		}
		n := int(i)
		if n < 0 || n >= len(o.Elements) {
			return nil, diag.IndexOutOfBoundsError(e.Span(), n, len(o.Elements))
		}
		return o.Elements[n], nil
	case *object.Dictionary:
		v, ok := o.Get(dictKey(idx))
		if !ok {
			return object.Null{}, nil
		}
		return v, nil
	default:
		return nil, diag.NotIndexableError(e.Span(), obj.TypeName())
	}
}

func (it *Interpreter) evalIndexSet(e *ast.IndexSetExpr) (object.Value, error) {
	obj, err := it.eval(e.Object)
	if err != nil {
		return nil, err
	}
	idx, err := it.eval(e.Index)
	if err != nil {
		return nil, err
	}
	val, err := it.eval(e.Value)
	if err != nil {
		return nil, err
	}
	switch o := obj.(type) {
	case *object.Array:
		i, ok := idx.(object.Int)
		if !ok {
			return nil, diag.RuntimeErrorDiag(e.Index.Span(), "array index must be a number")
		}
		n := int(i)
		if n < 0 || n >= len(o.Elements) {
			return nil, diag.IndexOutOfBoundsError(e.Span(), n, len(o.Elements))
		}
		o.Elements[n] = val
		return val, nil
	case *object.Dictionary:
		o.Set(dictKey(idx), val)
		return val, nil
	default:
		return nil, diag.NotIndexableError(e.Span(), obj.TypeName())
	}
}

func (it *Interpreter) evalCall(e *ast.CallExpr) (object.Value, error) {
	callee, err := it.eval(e.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]object.Value, len(e.Arguments))
	for i, a := range e.Arguments {
		v, err := it.eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return it.call(e.Span(), callee, args)
}

func (it *Interpreter) call(span sourcemap.Span, callee object.Value, args []object.Value) (object.Value, error) {
	callable, ok := callee.(object.Callable)
	if !ok {
		return nil, diag.CannotCallError(span, callee.TypeName())
	}
	if arity := callable.Arity(); arity != -1 && arity != len(args) {
		return nil, diag.WrongArityError(span, arity, len(args))
	}
	var decl *ast.FunctionStmt
	switch c := callable.(type) {
	case *object.Function:
		decl = c.Decl
	case *object.BoundMethod:
		decl = c.Method.Decl
	case *object.Class:
		if init := c.FindMethod("init"); init != nil {
			decl = init.Decl
		}
	}
	if decl != nil && decl.VariadicParam != "" && len(args) < len(decl.Params) {
		return nil, diag.WrongArityError(span, len(decl.Params), len(args))
	}

	switch c := callable.(type) {
	case *object.Function:
		return it.callFunction(c, args)
	case *object.BoundMethod:
		return it.callBoundMethod(c, args)
	case *object.Class:
		return it.instantiate(c, args)
	case *object.Builtin:
		v, err := c.Fn(it.callerAt(span), args)
		if err != nil {
			if d, ok := err.(*diag.Diagnostic); ok {
				return nil, d
			}
			return nil, diag.RuntimeErrorDiag(span, err.Error())
		}
		return v, nil
	default:
		return nil, diag.InternalErrorDiag(fmt.Sprintf("unreachable callable type %T", callable))
	}
}

// callerAt builds the object.Caller a builtin uses to invoke a Lapis-level
// callback; nested call errors are reported at the builtin's own call site.
func (it *Interpreter) callerAt(span sourcemap.Span) object.Caller {
	return func(callee object.Value, args []object.Value) (object.Value, error) {
		return it.call(span, callee, args)
	}
}

func bindParams(env *object.Environment, decl *ast.FunctionStmt, args []object.Value) {
	fixed := len(decl.Params)
	for i, p := range decl.Params {
		var v object.Value = object.Null{}
		if i < len(args) {
			v = args[i]
		}
		env.Define(p, v, ast.Private)
	}
	if decl.VariadicParam != "" {
		var rest []object.Value
		if len(args) > fixed {
			rest = append(rest, args[fixed:]...)
		}
		env.Define(decl.VariadicParam, object.NewArray(rest), ast.Private)
	}
}

func (it *Interpreter) callFunction(f *object.Function, args []object.Value) (object.Value, error) {
	env := object.NewChildEnvironment(f.Closure)
	bindParams(env, f.Decl, args)

	fl, err := it.execBlock(f.Decl.Body, env)
	if err != nil {
		return nil, err
	}
	if fl.kind == sigReturn {
		return fl.value, nil
	}
	return object.Null{}, nil
}

func (it *Interpreter) callBoundMethod(b *object.BoundMethod, args []object.Value) (object.Value, error) {
	env := object.NewChildEnvironment(b.Method.Closure)
	env.Define("this", b.Instance, ast.Private)
	bindParams(env, b.Method.Decl, args)

	fl, err := it.execBlock(b.Method.Decl.Body, env)
	if err != nil {
		return nil, err
	}
	if b.Method.IsInitializer {
		return b.Instance, nil
	}
	if fl.kind == sigReturn {
		return fl.value, nil
	}
	return object.Null{}, nil
}

func (it *Interpreter) instantiate(c *object.Class, args []object.Value) (object.Value, error) {
	instance := object.NewInstance(c)
	if init := c.FindMethod("init"); init != nil {
		if _, err := it.callBoundMethod(&object.BoundMethod{Instance: instance, Method: init}, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}
