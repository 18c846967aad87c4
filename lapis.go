// Package lapis is the embeddable entry point for the Lapis interpreter:
// compile a source string or file into a Program, then Run it against a
// pluggable stdout/stdin pair.
package lapis

import (
	"fmt"
	"io"
	"os"

	"github.com/lapis-lang/lapis/internal/ast"
	"github.com/lapis-lang/lapis/internal/diag"
	"github.com/lapis-lang/lapis/internal/eval"
	"github.com/lapis-lang/lapis/internal/lexer"
	"github.com/lapis-lang/lapis/internal/object"
	"github.com/lapis-lang/lapis/internal/parser"
	"github.com/lapis-lang/lapis/internal/sourcemap"
)

// Version identifies this module for embedders.
const Version = "0.1.0"

// Program is source that has been lexed and parsed successfully and is
// ready to run.
type Program struct {
	sm   *sourcemap.SourceMap
	tree *ast.Program
	path string
}

// FromString compiles source under a synthetic path, for embedders that
// don't have a real file (REPL input, a string stored in a database row).
func FromString(source string) (*Program, []*diag.Diagnostic) {
	return compile("<string>", source, parser.DefaultMaxErrors)
}

// FromFile reads and compiles the file at path.
func FromFile(path string) (*Program, []*diag.Diagnostic) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, []*diag.Diagnostic{diag.ImportErrorDiag(sourcemap.Span{}, fmt.Sprintf("cannot read '%s': %s", path, err))}
	}
	return compile(path, string(content), parser.DefaultMaxErrors)
}

// FromFileWithMaxErrors is FromFile with an explicit parser error cap
// instead of parser.DefaultMaxErrors.
func FromFileWithMaxErrors(path string, maxErrors int) (*Program, []*diag.Diagnostic) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, []*diag.Diagnostic{diag.ImportErrorDiag(sourcemap.Span{}, fmt.Sprintf("cannot read '%s': %s", path, err))}
	}
	return compile(path, string(content), maxErrors)
}

func compile(path, source string, maxErrors int) (*Program, []*diag.Diagnostic) {
	sm := sourcemap.New()
	l := lexer.New(sm, path, source)
	toks, lexErr := l.Tokenize()
	if lexErr != nil {
		d, ok := lexErr.(*diag.Diagnostic)
		if !ok {
			d = diag.InternalErrorDiag(lexErr.Error())
		}
		return nil, []*diag.Diagnostic{d}
	}

	p := parser.New(sm, path, toks)
	tree, diags := p.Parse(maxErrors)
	if len(diags) > 0 {
		return nil, diags
	}
	return &Program{sm: sm, tree: tree, path: path}, nil
}

// Must panics if compilation produced any diagnostics, for callers that
// only ever pass known-good source (embedded scripts, tests):
//
//	prog := lapis.Must(lapis.FromString(src))
func Must(p *Program, diags []*diag.Diagnostic) *Program {
	if len(diags) > 0 {
		panic(diags[0])
	}
	return p
}

// Runner wraps an interpreter bound to one Program, so an embedder can
// redirect I/O and run it (possibly more than once, with a fresh global
// state via NewRunner each time).
type Runner struct {
	it *eval.Interpreter
}

// NewRunner creates a Runner for p with stdout/stdin defaulted to the
// process's own.
func NewRunner(p *Program) *Runner {
	return &Runner{it: eval.New(p.sm)}
}

// Statements returns the program's top-level statements, letting a caller
// (the CLI's -trace mode) walk the tree without reaching into internal/ast
// parsing machinery itself.
func (p *Program) Statements() []ast.Stmt { return p.tree.Statements }

// Position resolves a span from the program's own tree to a 1-indexed
// line/column, for trace/diagnostic output.
func (p *Program) Position(span sourcemap.Span) (sourcemap.Position, error) {
	return p.sm.OffsetToPosition(span.FileID, span.Start)
}

// Render formats a diagnostic against this program's source map.
func (p *Program) Render(d *diag.Diagnostic) string { return d.Render(p.sm) }

// SetStdout redirects Console.print output and the Console.input/
// Console.number prompts.
func (r *Runner) SetStdout(w io.Writer) { r.it.SetStdout(w) }

// SetStdin redirects Console.input/Console.number reads.
func (r *Runner) SetStdin(in io.Reader) { r.it.SetStdin(in) }

// Globals returns the runner's top-level environment, so an embedder can
// pre-populate bindings before Run or inspect public bindings after it.
func (r *Runner) Globals() *object.Environment { return r.it.Globals() }

// Run executes the program's statements in order, returning the first
// unhandled runtime error.
func (r *Runner) Run(p *Program) error {
	return r.it.Interpret(p.tree)
}

// Run is a convenience wrapper that compiles source and runs it in one
// call, writing Console output to the process's stdout and reading Console
// input from its stdin.
func Run(source string) error {
	p, diags := FromString(source)
	if len(diags) > 0 {
		return diags[0]
	}
	return NewRunner(p).Run(p)
}

// RunFile is Run's file-based counterpart.
func RunFile(path string) error {
	p, diags := FromFileWithMaxErrors(path, parser.DefaultMaxErrors)
	if len(diags) > 0 {
		return diags[0]
	}
	return NewRunner(p).Run(p)
}
