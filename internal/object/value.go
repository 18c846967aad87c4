// Package object defines the runtime value representation, lexical
// environments, and callable/class/instance data shapes the evaluator
// operates over.
package object

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lapis-lang/lapis/internal/ast"
)

// Kind discriminates the dynamic type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindDictionary
	KindFunction
	KindBoundMethod
	KindClass
	KindInstance
	KindBuiltin
	KindModule
)

var kindNames = [...]string{
	KindNull:        "null",
	KindBool:        "boolean",
	KindInt:         "number",
	KindFloat:       "number",
	KindString:      "string",
	KindArray:       "array",
	KindDictionary:  "dictionary",
	KindFunction:    "function",
	KindBoundMethod: "function",
	KindClass:       "class",
	KindInstance:    "instance",
	KindBuiltin:     "function",
	KindModule:      "module",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is implemented by every runtime value. TypeName reports the
// human-readable type name used in diagnostics ("number", "string", ...).
type Value interface {
	Kind() Kind
	TypeName() string
}

// Null is the single null value.
type Null struct{}

func (Null) Kind() Kind        { return KindNull }
func (Null) TypeName() string  { return "null" }

// Bool wraps a boolean value.
type Bool bool

func (Bool) Kind() Kind       { return KindBool }
func (Bool) TypeName() string { return "boolean" }

// Int wraps a 64-bit integer value. Whole-valued numeric literals lex as Int.
type Int int64

func (Int) Kind() Kind       { return KindInt }
func (Int) TypeName() string { return "number" }

// Float wraps a 64-bit floating point value. Mixed int/float arithmetic
// promotes its result to Float.
type Float float64

func (Float) Kind() Kind       { return KindFloat }
func (Float) TypeName() string { return "number" }

// Str wraps a string value.
type Str string

func (Str) Kind() Kind       { return KindString }
func (Str) TypeName() string { return "string" }

// Array is an ordered, mutable sequence. It is a reference type: assigning
// an Array value copies the pointer, not the backing slice.
type Array struct {
	Elements []Value
}

func NewArray(elements []Value) *Array { return &Array{Elements: elements} }

func (*Array) Kind() Kind       { return KindArray }
func (*Array) TypeName() string { return "array" }

// Dictionary is an insertion-ordered mapping from string keys to values. It
// is a reference type, mirroring Array.
type Dictionary struct {
	keys   []string
	values map[string]Value
}

func NewDictionary() *Dictionary {
	return &Dictionary{values: make(map[string]Value)}
}

func (*Dictionary) Kind() Kind       { return KindDictionary }
func (*Dictionary) TypeName() string { return "dictionary" }

// Set inserts or updates a key, preserving first-insertion order.
func (d *Dictionary) Set(key string, value Value) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Get returns the value for key and whether it was present.
func (d *Dictionary) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Delete removes key if present.
func (d *Dictionary) Delete(key string) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Keys returns keys in insertion order.
func (d *Dictionary) Keys() []string { return d.keys }

// Len reports the number of entries.
func (d *Dictionary) Len() int { return len(d.keys) }

// Function is a user-defined function or method, capturing its declaration
// and defining environment (closure).
type Function struct {
	Decl          *ast.FunctionStmt
	Closure       *Environment
	IsInitializer bool
}

func (*Function) Kind() Kind       { return KindFunction }
func (*Function) TypeName() string { return "function" }

// Arity reports the fixed parameter count, or -1 if the function is
// variadic (accepts >= len(Params) arguments).
func (f *Function) Arity() int {
	if f.Decl.VariadicParam != "" {
		return -1
	}
	return len(f.Decl.Params)
}

// BoundMethod pairs an instance with one of its class's methods; calling it
// binds "this" to Instance before running Method's body.
type BoundMethod struct {
	Instance *Instance
	Method   *Function
}

func (*BoundMethod) Kind() Kind       { return KindBoundMethod }
func (*BoundMethod) TypeName() string { return "function" }

func (b *BoundMethod) Arity() int { return b.Method.Arity() }

// Class is a user-defined class: a name, an access modifier, and a method
// table (including the optional "init" constructor).
type Class struct {
	Name           string
	Methods        map[string]*Function
	AccessModifier ast.AccessModifier
}

func NewClass(name string, methods map[string]*Function, modifier ast.AccessModifier) *Class {
	return &Class{Name: name, Methods: methods, AccessModifier: modifier}
}

func (*Class) Kind() Kind       { return KindClass }
func (*Class) TypeName() string { return "class" }

// FindMethod looks up a method by name, returning nil if absent.
func (c *Class) FindMethod(name string) *Function {
	return c.Methods[name]
}

// Arity reports the constructor's arity, or 0 if there is no "init".
func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// Instance is an instantiation of a Class with its own field storage.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: make(map[string]Value)}
}

func (*Instance) Kind() Kind       { return KindInstance }
func (*Instance) TypeName() string { return "instance" }

// Caller invokes a Lapis-level callable from within a builtin, so methods
// like Array.map/filter/reduce/sort can run a user-supplied function or
// bound method without this package importing the evaluator.
type Caller func(callee Value, args []Value) (Value, error)

// BuiltinFunc is the signature every host-provided builtin implements. args
// are already evaluated; call lets the builtin invoke a Lapis-level
// callback (e.g. Array.map's function argument).
type BuiltinFunc func(call Caller, args []Value) (Value, error)

// Builtin wraps a host Go function as a callable Lapis value.
type Builtin struct {
	Name string
	Arit int // -1 means variadic
	Fn   BuiltinFunc
}

func (*Builtin) Kind() Kind       { return KindBuiltin }
func (*Builtin) TypeName() string { return "function" }

func (b *Builtin) Arity() int { return b.Arit }

// Module is a host-provided namespace (Console, Math, File) of builtin
// callables, addressed by dot access like any other property lookup.
type Module struct {
	Name    string
	Members map[string]Value
}

func NewModule(name string) *Module {
	return &Module{Name: name, Members: make(map[string]Value)}
}

func (*Module) Kind() Kind       { return KindModule }
func (*Module) TypeName() string { return "module" }

// Get looks up a member by name, returning whether it was present.
func (m *Module) Get(name string) (Value, bool) {
	v, ok := m.Members[name]
	return v, ok
}

// Set defines or overwrites a member, used while building the module.
func (m *Module) Set(name string, v Value) { m.Members[name] = v }

// Callable is implemented by every value that can appear as a call
// expression's callee.
type Callable interface {
	Value
	Arity() int
}

var (
	_ Callable = (*Function)(nil)
	_ Callable = (*BoundMethod)(nil)
	_ Callable = (*Class)(nil)
	_ Callable = (*Builtin)(nil)
)

// IsTruthy implements the language's truthiness rule: null and false are
// falsy; zero-valued numbers are falsy; empty strings/arrays/dictionaries
// are falsy; everything else is truthy.
func IsTruthy(v Value) bool {
	switch x := v.(type) {
	case nil, Null:
		return false
	case Bool:
		return bool(x)
	case Int:
		return x != 0
	case Float:
		return x != 0
	case Str:
		return len(x) > 0
	case *Array:
		return len(x.Elements) > 0
	case *Dictionary:
		return x.Len() > 0
	default:
		return true
	}
}

// Equal implements structural equality across Lapis values.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case nil:
		return b == nil || b == Value(Null{})
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Int:
		switch y := b.(type) {
		case Int:
			return x == y
		case Float:
			return Float(x) == y
		}
		return false
	case Float:
		switch y := b.(type) {
		case Int:
			return x == Float(y)
		case Float:
			return x == y
		}
		return false
	case Str:
		y, ok := b.(Str)
		return ok && x == y
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
	case *Dictionary:
		y, ok := b.(*Dictionary)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for _, k := range x.Keys() {
			xv, _ := x.Get(k)
			yv, ok := y.Get(k)
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// ToDisplayString renders a value the way Console.print and string
// concatenation do: null -> "null", booleans lowercase, numbers via Go's
// default formatting, arrays/dictionaries bracketed and comma-joined.
func ToDisplayString(v Value) string {
	switch x := v.(type) {
	case nil, Null:
		return "null"
	case Bool:
		if x {
			return "true"
		}
		return "false"
	case Int:
		return strconv.FormatInt(int64(x), 10)
	case Float:
		return strconv.FormatFloat(float64(x), 'g', -1, 64)
	case Str:
		return string(x)
	case *Array:
		parts := make([]string, len(x.Elements))
		for i, e := range x.Elements {
			parts[i] = ToDisplayString(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Dictionary:
		parts := make([]string, 0, x.Len())
		for _, k := range x.Keys() {
			v, _ := x.Get(k)
			parts = append(parts, fmt.Sprintf("%s: %s", k, ToDisplayString(v)))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Instance:
		return fmt.Sprintf("<instance %s>", x.Class.Name)
	case *Class:
		return fmt.Sprintf("<class %s>", x.Name)
	case *Function, *BoundMethod, *Builtin:
		return "<function>"
	case *Module:
		return fmt.Sprintf("<module %s>", x.Name)
	default:
		return fmt.Sprintf("%v", x)
	}
}
