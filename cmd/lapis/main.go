// Command lapis runs a Lapis source file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lapis-lang/lapis"
	"github.com/lapis-lang/lapis/internal/diag"
	"github.com/lapis-lang/lapis/internal/logging"
)

func main() {
	trace := flag.Bool("trace", false, "log each top-level statement's source position before running")
	maxErrors := flag.Int("max-errors", 20, "maximum parser errors to report before stopping")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: lapis [-trace] [-max-errors N] <file.lap>")
		os.Exit(2)
	}
	os.Exit(run(flag.Arg(0), *trace, *maxErrors))
}

func run(path string, trace bool, maxErrors int) int {
	logger := logging.Default()
	logger.SetDebug(trace)

	prog, diags := lapis.FromFileWithMaxErrors(path, maxErrors)
	if len(diags) > 0 {
		reportAll(prog, diags)
		return 1
	}

	if trace {
		for _, stmt := range prog.Statements() {
			if pos, err := prog.Position(stmt.Span()); err == nil {
				logger.Tracef("exec", "%s:%s", path, pos)
			}
		}
	}

	runner := lapis.NewRunner(prog)
	if err := runner.Run(prog); err != nil {
		if d, ok := err.(*diag.Diagnostic); ok {
			fmt.Fprintln(os.Stderr, prog.Render(d))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}

func reportAll(prog *lapis.Program, diags []*diag.Diagnostic) {
	for _, d := range diags {
		if prog != nil {
			fmt.Fprintln(os.Stderr, prog.Render(d))
		} else {
			fmt.Fprintln(os.Stderr, d.Error())
		}
	}
}
