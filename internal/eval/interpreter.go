// Package eval implements the tree-walking evaluator: it executes a parsed
// ast.Program against a lexically scoped object.Environment, handling
// closures, classes, exceptions, and module imports.
package eval

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lapis-lang/lapis/internal/ast"
	"github.com/lapis-lang/lapis/internal/diag"
	"github.com/lapis-lang/lapis/internal/lexer"
	"github.com/lapis-lang/lapis/internal/object"
	"github.com/lapis-lang/lapis/internal/parser"
	"github.com/lapis-lang/lapis/internal/sourcemap"
)

// signalKind distinguishes the kind of non-local control-flow transfer a
// statement produced, if any. Propagated alongside error through every
// statement-executing method instead of panicking, so transfers stay
// ordinary values the caller can inspect and route.
type signalKind int

const (
	sigNone signalKind = iota
	sigReturn
	sigBreak
	sigContinue
)

// flow carries a pending return/break/continue (and the returned value, for
// sigReturn) out of a statement or block.
type flow struct {
	kind  signalKind
	value object.Value
}

var none = flow{kind: sigNone}

// moduleCache is shared by pointer across an Interpreter and every child
// instance it spawns to evaluate package imports, so the same absolute file
// path resolves to the same cached globals no matter which importer reaches
// it first (spec requires shared module globals and circular-import reuse
// within one root invocation).
type moduleCache struct {
	resolved map[string]*object.Environment
}

// Interpreter evaluates a single parsed program (or, for module imports, one
// imported file) against its own global environment.
type Interpreter struct {
	sm      *sourcemap.SourceMap
	globals *object.Environment
	env     *object.Environment

	stdout io.Writer
	stdin  *bufio.Reader

	modules *moduleCache
}

// New creates an Interpreter with a fresh global environment populated with
// the built-in Console/Math/File modules, reading registered source files
// through sm.
func New(sm *sourcemap.SourceMap) *Interpreter {
	it := newInterpreter(sm, &moduleCache{resolved: make(map[string]*object.Environment)})
	it.stdout = os.Stdout
	it.stdin = bufio.NewReader(os.Stdin)
	return it
}

func newInterpreter(sm *sourcemap.SourceMap, cache *moduleCache) *Interpreter {
	globals := object.NewEnvironment()
	it := &Interpreter{sm: sm, globals: globals, env: globals, modules: cache}
	it.defineBuiltins()
	return it
}

// newChild creates an Interpreter for evaluating an imported file: it shares
// this interpreter's source map, module cache, and I/O streams but starts
// from a fresh global environment (imports never see the importer's
// locals).
func (it *Interpreter) newChild() *Interpreter {
	child := newInterpreter(it.sm, it.modules)
	child.stdout = it.stdout
	child.stdin = it.stdin
	return child
}

// SetStdout redirects Console.print output and the Console.input/
// Console.number prompts.
func (it *Interpreter) SetStdout(w io.Writer) { it.stdout = w }

// SetStdin redirects Console.input/Console.number reads.
func (it *Interpreter) SetStdin(r io.Reader) { it.stdin = bufio.NewReader(r) }

// Globals returns the interpreter's top-level environment, primarily so an
// embedder can inspect public bindings after a run completes.
func (it *Interpreter) Globals() *object.Environment { return it.globals }

// Interpret executes every top-level statement of program in order. A
// return/break/continue escaping every enclosing loop or function is a
// runtime error, matching the language's rule that those only make sense
// inside the construct they transfer out of.
func (it *Interpreter) Interpret(program *ast.Program) error {
	for _, stmt := range program.Statements {
		fl, err := it.execStmt(stmt)
		if err != nil {
			return err
		}
		switch fl.kind {
		case sigBreak, sigContinue:
			return diag.BreakOrContinueOutsideLoopError(stmt.Span())
		case sigReturn:
			return diag.RuntimeErrorDiag(stmt.Span(), "return outside of function")
		}
	}
	return nil
}

func (it *Interpreter) execStmt(stmt ast.Stmt) (flow, error) {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		_, err := it.eval(s.Expression)
		return none, err
	case *ast.VarStmt:
		return none, it.execVar(s)
	case *ast.BlockStmt:
		return it.execBlock(s.Statements, object.NewChildEnvironment(it.env))
	case *ast.FunctionStmt:
		it.env.Define(s.Name, &object.Function{Decl: s, Closure: it.env}, s.AccessModifier)
		return none, nil
	case *ast.ClassStmt:
		return none, it.execClass(s)
	case *ast.IfStmt:
		return it.execIf(s)
	case *ast.WhileStmt:
		return it.execWhile(s)
	case *ast.ForStmt:
		return it.execFor(s)
	case *ast.ReturnStmt:
		var v object.Value = object.Null{}
		if s.Value != nil {
			val, err := it.eval(s.Value)
			if err != nil {
				return none, err
			}
			v = val
		}
		return flow{kind: sigReturn, value: v}, nil
	case *ast.BreakStmt:
		return flow{kind: sigBreak}, nil
	case *ast.ContinueStmt:
		return flow{kind: sigContinue}, nil
	case *ast.TryStmt:
		return it.execTry(s)
	case *ast.SwitchStmt:
		return it.execSwitch(s)
	case *ast.PackageStmt:
		return none, it.execPackage(s)
	default:
		return none, diag.InternalErrorDiag(fmt.Sprintf("unknown statement type %T", stmt))
	}
}

// execBlock executes statements in env, restoring the previous environment
// before returning, and stops at the first error or non-none flow.
func (it *Interpreter) execBlock(statements []ast.Stmt, env *object.Environment) (flow, error) {
	previous := it.env
	it.env = env
	defer func() { it.env = previous }()

	for _, stmt := range statements {
		fl, err := it.execStmt(stmt)
		if err != nil {
			return none, err
		}
		if fl.kind != sigNone {
			return fl, nil
		}
	}
	return none, nil
}

func (it *Interpreter) execVar(s *ast.VarStmt) error {
	var v object.Value = object.Null{}
	if s.Initializer != nil {
		val, err := it.eval(s.Initializer)
		if err != nil {
			return err
		}
		v = val
	}
	it.env.Define(s.Name, v, s.AccessModifier)
	return nil
}

func (it *Interpreter) execClass(s *ast.ClassStmt) error {
	methods := make(map[string]*object.Function, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name] = &object.Function{Decl: m, Closure: it.env}
	}
	if s.Constructor != nil {
		methods["init"] = &object.Function{Decl: s.Constructor, Closure: it.env, IsInitializer: true}
	}
	it.env.Define(s.Name, object.NewClass(s.Name, methods, s.AccessModifier), s.AccessModifier)
	return nil
}

func (it *Interpreter) execIf(s *ast.IfStmt) (flow, error) {
	cond, err := it.eval(s.Condition)
	if err != nil {
		return none, err
	}
	if object.IsTruthy(cond) {
		return it.execStmt(s.ThenBranch)
	}
	for _, elif := range s.ElifBranches {
		c, err := it.eval(elif.Condition)
		if err != nil {
			return none, err
		}
		if object.IsTruthy(c) {
			return it.execStmt(elif.Body)
		}
	}
	if s.ElseBranch != nil {
		return it.execStmt(s.ElseBranch)
	}
	return none, nil
}

func (it *Interpreter) execWhile(s *ast.WhileStmt) (flow, error) {
	for {
		cond, err := it.eval(s.Condition)
		if err != nil {
			return none, err
		}
		if !object.IsTruthy(cond) {
			return none, nil
		}
		fl, err := it.execStmt(s.Body)
		if err != nil {
			return none, err
		}
		switch fl.kind {
		case sigBreak:
			return none, nil
		case sigContinue:
			continue
		case sigReturn:
			return fl, nil
		}
	}
}

func (it *Interpreter) execFor(s *ast.ForStmt) (flow, error) {
	iterable, err := it.eval(s.Iterable)
	if err != nil {
		return none, err
	}
	arr, ok := iterable.(*object.Array)
	if !ok {
		return none, diag.NotIterableError(s.Iterable.Span(), iterable.TypeName())
	}

	for _, elem := range arr.Elements {
		loopEnv := object.NewChildEnvironment(it.env)
		loopEnv.Define(s.Variable, elem, ast.Private)

		fl, err := it.execLoopBody(s.Body, loopEnv)
		if err != nil {
			return none, err
		}
		switch fl.kind {
		case sigBreak:
			return none, nil
		case sigContinue:
			continue
		case sigReturn:
			return fl, nil
		}
	}
	return none, nil
}

// execLoopBody runs a for-loop iteration's body in loopEnv. A block body
// executes directly in loopEnv (the iteration variable and the block's own
// declarations share one scope, matching how a fresh per-iteration
// environment is threaded through in the reference implementation); any
// other body form is executed with it.env swapped to loopEnv.
func (it *Interpreter) execLoopBody(body ast.Stmt, loopEnv *object.Environment) (flow, error) {
	if block, ok := body.(*ast.BlockStmt); ok {
		return it.execBlock(block.Statements, loopEnv)
	}
	previous := it.env
	it.env = loopEnv
	defer func() { it.env = previous }()
	return it.execStmt(body)
}

func (it *Interpreter) execTry(s *ast.TryStmt) (flow, error) {
	fl, err := it.execBlock(s.TryBody, object.NewChildEnvironment(it.env))

	if err != nil && len(s.CatchClauses) > 0 {
		clause := s.CatchClauses[0]
		catchEnv := object.NewChildEnvironment(it.env)
		if clause.Variable != "" {
			catchEnv.Define(clause.Variable, errorToValue(err), ast.Private)
		}
		fl, err = it.execBlock(clause.Body, catchEnv)
	}

	if s.FinallyBody != nil {
		finFl, finErr := it.execBlock(s.FinallyBody, object.NewChildEnvironment(it.env))
		if finErr != nil {
			return none, finErr
		}
		if finFl.kind != sigNone {
			return finFl, nil
		}
	}

	return fl, err
}

// errorToValue wraps a runtime error as the value bound to a catch clause's
// variable: a dictionary carrying the error's message (a diagnostic's plain
// Message, without severity or code), readable from script as e.message.
func errorToValue(err error) object.Value {
	message := err.Error()
	if d, ok := err.(*diag.Diagnostic); ok {
		message = d.Message
	}
	dict := object.NewDictionary()
	dict.Set("message", object.Str(message))
	return dict
}

func (it *Interpreter) execSwitch(s *ast.SwitchStmt) (flow, error) {
	discriminant, err := it.eval(s.Expression)
	if err != nil {
		return none, err
	}

	var matched, defaultCase *ast.CaseClause
	for i := range s.Cases {
		c := &s.Cases[i]
		if c.IsDefault {
			defaultCase = c
			continue
		}
		for _, valExpr := range c.Values {
			v, err := it.eval(valExpr)
			if err != nil {
				return none, err
			}
			if object.Equal(discriminant, v) {
				matched = c
				break
			}
		}
		if matched != nil {
			break
		}
	}

	chosen := matched
	if chosen == nil {
		chosen = defaultCase
	}
	if chosen == nil {
		return none, nil
	}

	fl, err := it.execBlock(chosen.Body, object.NewChildEnvironment(it.env))
	if err != nil {
		return none, err
	}
	if fl.kind == sigBreak {
		return none, nil
	}
	return fl, nil
}

func (it *Interpreter) execPackage(s *ast.PackageStmt) error {
	absPath, err := filepath.Abs(s.Path)
	if err != nil {
		return diag.ImportErrorDiag(s.Span(), fmt.Sprintf("cannot resolve import path '%s': %s", s.Path, err))
	}

	moduleEnv, ok := it.modules.resolved[absPath]
	if !ok {
		content, err := os.ReadFile(absPath)
		if err != nil {
			return diag.ImportErrorDiag(s.Span(), fmt.Sprintf("cannot import '%s': %s", s.Path, err))
		}

		l := lexer.New(it.sm, absPath, string(content))
		toks, lexErr := l.Tokenize()
		if lexErr != nil {
			return diag.ImportErrorDiag(s.Span(), fmt.Sprintf("cannot import '%s': %s", s.Path, lexErr))
		}

		p := parser.New(it.sm, absPath, toks)
		program, errs := p.Parse(parser.DefaultMaxErrors)
		if len(errs) > 0 {
			return diag.ImportErrorDiag(s.Span(), fmt.Sprintf("cannot import '%s': %s", s.Path, errs[0]))
		}

		child := it.newChild()
		moduleEnv = child.globals
		// Registered before evaluation so a circular import re-entering this
		// same path sees the (possibly still-empty) shared globals instead
		// of recursing into another parse/evaluate cycle.
		it.modules.resolved[absPath] = moduleEnv

		if err := child.Interpret(program); err != nil {
			return diag.ImportErrorDiag(s.Span(), fmt.Sprintf("error importing '%s': %s", s.Path, err))
		}
	}

	return it.bindImported(s, moduleEnv)
}

func (it *Interpreter) bindImported(s *ast.PackageStmt, moduleEnv *object.Environment) error {
	if s.Imports == nil {
		for name, v := range moduleEnv.GetAllPublic() {
			it.env.Define(name, v, ast.Private)
		}
		return nil
	}

	for _, name := range s.Imports {
		v, found, denied := moduleEnv.Get(name, true)
		if denied {
			return diag.ImportErrorDiag(s.Span(), fmt.Sprintf("cannot import '%s' from '%s': private", name, s.Path))
		}
		if !found {
			return diag.ImportErrorDiag(s.Span(), fmt.Sprintf("cannot import '%s' from '%s': not defined", name, s.Path))
		}
		it.env.Define(name, v, ast.Private)
	}
	return nil
}
