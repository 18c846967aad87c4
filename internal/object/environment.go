package object

import "github.com/lapis-lang/lapis/internal/ast"

// variable holds a bound value plus the access modifier it was declared
// with, so cross-module lookups can enforce public/private.
type variable struct {
	value    Value
	modifier ast.AccessModifier
}

func (v variable) accessibleFrom(externalFile bool) bool {
	if v.modifier == ast.Public {
		return true
	}
	return !externalFile
}

// Environment is a lexically nested scope: a mapping from name to variable
// plus an optional pointer to the enclosing scope. A fresh Environment is
// created per function/method call, per block, and per loop iteration.
type Environment struct {
	enclosing *Environment
	values    map[string]*variable
}

// NewEnvironment creates a root environment with no enclosing scope.
func NewEnvironment() *Environment {
	return &Environment{values: make(map[string]*variable)}
}

// NewChildEnvironment creates a scope nested inside enclosing.
func NewChildEnvironment(enclosing *Environment) *Environment {
	return &Environment{enclosing: enclosing, values: make(map[string]*variable)}
}

// Enclosing returns the parent scope, or nil at the root.
func (e *Environment) Enclosing() *Environment { return e.enclosing }

// Define binds name to value in this environment, shadowing any binding of
// the same name in an enclosing scope.
func (e *Environment) Define(name string, value Value, modifier ast.AccessModifier) {
	e.values[name] = &variable{value: value, modifier: modifier}
}

// Get resolves name in this environment or an enclosing one, returning the
// value, whether it was found, and whether access was denied (distinct from
// not-found so callers can raise the right diagnostic).
func (e *Environment) Get(name string, externalFile bool) (value Value, found bool, denied bool) {
	for env := e; env != nil; env = env.enclosing {
		if v, ok := env.values[name]; ok {
			if !v.accessibleFrom(externalFile) {
				return nil, true, true
			}
			return v.value, true, false
		}
	}
	return nil, false, false
}

// Assign rebinds an existing name in this environment or an enclosing one.
// It reports the same found/denied distinction as Get.
func (e *Environment) Assign(name string, value Value, externalFile bool) (found bool, denied bool) {
	for env := e; env != nil; env = env.enclosing {
		if v, ok := env.values[name]; ok {
			if !v.accessibleFrom(externalFile) {
				return true, true
			}
			v.value = value
			return true, false
		}
	}
	return false, false
}

// GetAllPublic returns every public binding defined directly in this
// environment (not its ancestors) — used when importing a module.
func (e *Environment) GetAllPublic() map[string]Value {
	result := make(map[string]Value)
	for name, v := range e.values {
		if v.modifier == ast.Public {
			result[name] = v.value
		}
	}
	return result
}
