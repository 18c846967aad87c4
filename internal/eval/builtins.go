package eval

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/lapis-lang/lapis/internal/ast"
	"github.com/lapis-lang/lapis/internal/object"
)

// defineBuiltins populates the interpreter's globals with the Console, Math
// and File modules every program can reach without an import.
func (it *Interpreter) defineBuiltins() {
	it.globals.Define("Console", it.newConsoleModule(), ast.Public)
	it.globals.Define("Math", newMathModule(), ast.Public)
	it.globals.Define("File", newFileModule(), ast.Public)
}

func (it *Interpreter) newConsoleModule() *object.Module {
	m := object.NewModule("Console")

	m.Set("print", method("print", -1, func(_ object.Caller, args []object.Value) (object.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = object.ToDisplayString(a)
		}
		fmt.Fprintln(it.stdout, strings.Join(parts, " "))
		return object.Null{}, nil
	}))

	m.Set("input", method("input", -1, func(_ object.Caller, args []object.Value) (object.Value, error) {
		if len(args) > 0 {
			fmt.Fprint(it.stdout, object.ToDisplayString(args[0]))
		}
		line, err := it.stdin.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("failed to read input: %s", err)
		}
		return object.Str(strings.TrimRight(line, "\r\n")), nil
	}))

	m.Set("number", method("number", -1, func(_ object.Caller, args []object.Value) (object.Value, error) {
		if len(args) > 0 {
			fmt.Fprint(it.stdout, object.ToDisplayString(args[0]))
		}
		line, err := it.stdin.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("failed to read input: %s", err)
		}
		text := strings.TrimSpace(line)
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return object.Int(n), nil
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not a number", text)
		}
		return object.Float(f), nil
	}))

	m.Set("error", method("error", 1, func(_ object.Caller, args []object.Value) (object.Value, error) {
		return nil, fmt.Errorf("%s", object.ToDisplayString(args[0]))
	}))

	return m
}

func requireNumber(name string, args []object.Value, i int) (float64, error) {
	if !isNumeric(args[i]) {
		return 0, fmt.Errorf("%s expects a number argument, got %s", name, args[i].TypeName())
	}
	return toFloat64(args[i]), nil
}

func newMathModule() *object.Module {
	m := object.NewModule("Math")

	m.Set("sqrt", method("sqrt", 1, func(_ object.Caller, args []object.Value) (object.Value, error) {
		n, err := requireNumber("sqrt", args, 0)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("sqrt of a negative number")
		}
		return object.Float(math.Sqrt(n)), nil
	}))

	m.Set("abs", method("abs", 1, func(_ object.Caller, args []object.Value) (object.Value, error) {
		if i, ok := args[0].(object.Int); ok {
			if i < 0 {
				return -i, nil
			}
			return i, nil
		}
		n, err := requireNumber("abs", args, 0)
		if err != nil {
			return nil, err
		}
		return object.Float(math.Abs(n)), nil
	}))

	m.Set("floor", method("floor", 1, func(_ object.Caller, args []object.Value) (object.Value, error) {
		n, err := requireNumber("floor", args, 0)
		if err != nil {
			return nil, err
		}
		return object.Int(int64(math.Floor(n))), nil
	}))

	m.Set("ceil", method("ceil", 1, func(_ object.Caller, args []object.Value) (object.Value, error) {
		n, err := requireNumber("ceil", args, 0)
		if err != nil {
			return nil, err
		}
		return object.Int(int64(math.Ceil(n))), nil
	}))

	m.Set("round", method("round", 1, func(_ object.Caller, args []object.Value) (object.Value, error) {
		n, err := requireNumber("round", args, 0)
		if err != nil {
			return nil, err
		}
		return object.Int(int64(math.Round(n))), nil
	}))

	m.Set("pow", method("pow", 2, func(_ object.Caller, args []object.Value) (object.Value, error) {
		base, err := requireNumber("pow", args, 0)
		if err != nil {
			return nil, err
		}
		exp, err := requireNumber("pow", args, 1)
		if err != nil {
			return nil, err
		}
		result := math.Pow(base, exp)
		if ai, bi, ok := bothInt(args[0], args[1]); ok && bi >= 0 {
			_ = ai
			return object.Int(int64(result)), nil
		}
		return object.Float(result), nil
	}))

	m.Set("min", method("min", -1, func(_ object.Caller, args []object.Value) (object.Value, error) {
		return mathExtreme("min", args, func(a, b float64) bool { return a < b })
	}))

	m.Set("max", method("max", -1, func(_ object.Caller, args []object.Value) (object.Value, error) {
		return mathExtreme("max", args, func(a, b float64) bool { return a > b })
	}))

	return m
}

func mathExtreme(name string, args []object.Value, better func(a, b float64) bool) (object.Value, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%s expects at least one argument", name)
	}
	best := args[0]
	bestF, err := requireNumber(name, args, 0)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(args); i++ {
		f, err := requireNumber(name, args, i)
		if err != nil {
			return nil, err
		}
		if better(f, bestF) {
			bestF = f
			best = args[i]
		}
	}
	return best, nil
}

func requireString(name string, args []object.Value, i int) (string, error) {
	s, ok := args[i].(object.Str)
	if !ok {
		return "", fmt.Errorf("%s expects a string argument, got %s", name, args[i].TypeName())
	}
	return string(s), nil
}

func newFileModule() *object.Module {
	m := object.NewModule("File")

	m.Set("read", method("read", 1, func(_ object.Caller, args []object.Value) (object.Value, error) {
		path, err := requireString("read", args, 0)
		if err != nil {
			return nil, err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read '%s': %s", path, err)
		}
		return object.Str(content), nil
	}))

	m.Set("write", method("write", 2, func(_ object.Caller, args []object.Value) (object.Value, error) {
		path, err := requireString("write", args, 0)
		if err != nil {
			return nil, err
		}
		content, err := requireString("write", args, 1)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("cannot write '%s': %s", path, err)
		}
		return object.Null{}, nil
	}))

	m.Set("append", method("append", 2, func(_ object.Caller, args []object.Value) (object.Value, error) {
		path, err := requireString("append", args, 0)
		if err != nil {
			return nil, err
		}
		content, err := requireString("append", args, 1)
		if err != nil {
			return nil, err
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("cannot append to '%s': %s", path, err)
		}
		defer f.Close()
		if _, err := f.WriteString(content); err != nil {
			return nil, fmt.Errorf("cannot append to '%s': %s", path, err)
		}
		return object.Null{}, nil
	}))

	m.Set("exists", method("exists", 1, func(_ object.Caller, args []object.Value) (object.Value, error) {
		path, err := requireString("exists", args, 0)
		if err != nil {
			return nil, err
		}
		_, statErr := os.Stat(path)
		return object.Bool(statErr == nil), nil
	}))

	m.Set("delete", method("delete", 1, func(_ object.Caller, args []object.Value) (object.Value, error) {
		path, err := requireString("delete", args, 0)
		if err != nil {
			return nil, err
		}
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("cannot delete '%s': %s", path, err)
		}
		return object.Null{}, nil
	}))

	m.Set("list", method("list", 1, func(_ object.Caller, args []object.Value) (object.Value, error) {
		path, err := requireString("list", args, 0)
		if err != nil {
			return nil, err
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("cannot list '%s': %s", path, err)
		}
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		sort.Strings(names)
		values := make([]object.Value, len(names))
		for i, n := range names {
			values[i] = object.Str(n)
		}
		return object.NewArray(values), nil
	}))

	return m
}
