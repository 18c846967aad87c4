package eval

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/lapis-lang/lapis/internal/object"
	"github.com/lapis-lang/lapis/internal/sourcemap"
)

// method builds a zero-receiver-argument Builtin: name is reported in
// errors, arity is the fixed parameter count (-1 for variadic), and fn
// closes over whatever receiver value the method was looked up on.
func method(name string, arity int, fn object.BuiltinFunc) *object.Builtin {
	return &object.Builtin{Name: name, Arit: arity, Fn: fn}
}

func noSuchMethod(typeName, name string) error {
	return fmt.Errorf("%s has no method '%s'", typeName, name)
}

// ---- string methods ----

func (it *Interpreter) stringMethod(span sourcemap.Span, s object.Str, name string) (object.Value, error) {
	str := string(s)
	switch name {
	case "length":
		return method(name, 0, func(object.Caller, []object.Value) (object.Value, error) {
			return object.Int(len(str)), nil
		}), nil
	case "split":
		return method(name, 1, func(_ object.Caller, args []object.Value) (object.Value, error) {
			delim, ok := args[0].(object.Str)
			if !ok {
				return nil, fmt.Errorf("split expects a string delimiter")
			}
			parts := strings.Split(str, string(delim))
			elems := make([]object.Value, len(parts))
			for i, p := range parts {
				elems[i] = object.Str(p)
			}
			return object.NewArray(elems), nil
		}), nil
	case "replace":
		return method(name, 2, func(_ object.Caller, args []object.Value) (object.Value, error) {
			oldS, ok1 := args[0].(object.Str)
			newS, ok2 := args[1].(object.Str)
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("replace expects two strings")
			}
			return object.Str(strings.ReplaceAll(str, string(oldS), string(newS))), nil
		}), nil
	case "contains":
		return method(name, 1, func(_ object.Caller, args []object.Value) (object.Value, error) {
			sub, ok := args[0].(object.Str)
			if !ok {
				return nil, fmt.Errorf("contains expects a string")
			}
			return object.Bool(strings.Contains(str, string(sub))), nil
		}), nil
	case "toInt":
		return method(name, 0, func(object.Caller, []object.Value) (object.Value, error) {
			n, err := strconv.ParseInt(strings.TrimSpace(str), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot convert '%s' to a number", str)
			}
			return object.Int(n), nil
		}), nil
	case "toFloat":
		return method(name, 0, func(object.Caller, []object.Value) (object.Value, error) {
			f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
			if err != nil {
				return nil, fmt.Errorf("cannot convert '%s' to a number", str)
			}
			return object.Float(f), nil
		}), nil
	case "toBool":
		return method(name, 0, func(object.Caller, []object.Value) (object.Value, error) {
			switch strings.ToLower(str) {
			case "true", "1", "yes", "on":
				return object.Bool(true), nil
			case "false", "0", "no", "off", "":
				return object.Bool(false), nil
			default:
				return nil, fmt.Errorf("cannot convert '%s' to a boolean", str)
			}
		}), nil
	case "toString":
		return method(name, 0, func(object.Caller, []object.Value) (object.Value, error) {
			return s, nil
		}), nil
	case "format":
		return method(name, -1, func(_ object.Caller, args []object.Value) (object.Value, error) {
			return formatString(str, args)
		}), nil
	default:
		return nil, noSuchMethod("string", name)
	}
}

var formatPlaceholder = regexp.MustCompile(`\{([^}]+)\}`)

func formatString(template string, args []object.Value) (object.Value, error) {
	vars := make(map[string]object.Value)
	if len(args) == 1 {
		d, ok := args[0].(*object.Dictionary)
		if !ok {
			return nil, fmt.Errorf("format expects a dictionary or key/value pairs")
		}
		for _, k := range d.Keys() {
			v, _ := d.Get(k)
			vars[k] = v
		}
	} else if len(args) > 0 {
		if len(args)%2 != 0 {
			return nil, fmt.Errorf("format expects an even number of key/value arguments")
		}
		for i := 0; i < len(args); i += 2 {
			key, ok := args[i].(object.Str)
			if !ok {
				return nil, fmt.Errorf("format keys must be strings")
			}
			vars[string(key)] = args[i+1]
		}
	}

	var outerErr error
	result := formatPlaceholder.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		v, ok := vars[name]
		if !ok {
			outerErr = fmt.Errorf("format: missing variable '%s'", name)
			return match
		}
		return object.ToDisplayString(v)
	})
	if outerErr != nil {
		return nil, outerErr
	}
	return object.Str(result), nil
}

// ---- number methods ----

func (it *Interpreter) numberMethod(span sourcemap.Span, n object.Value, name string) (object.Value, error) {
	switch name {
	case "toString":
		return method(name, 0, func(object.Caller, []object.Value) (object.Value, error) {
			return object.Str(object.ToDisplayString(n)), nil
		}), nil
	case "toInt":
		return method(name, 0, func(object.Caller, []object.Value) (object.Value, error) {
			return object.Int(int64(toFloat64(n))), nil
		}), nil
	case "toFloat":
		return method(name, 0, func(object.Caller, []object.Value) (object.Value, error) {
			return object.Float(toFloat64(n)), nil
		}), nil
	case "toBool":
		return method(name, 0, func(object.Caller, []object.Value) (object.Value, error) {
			return object.Bool(toFloat64(n) != 0), nil
		}), nil
	default:
		return nil, noSuchMethod("number", name)
	}
}

// ---- boolean methods ----

func (it *Interpreter) booleanMethod(span sourcemap.Span, b object.Bool, name string) (object.Value, error) {
	switch name {
	case "toString":
		return method(name, 0, func(object.Caller, []object.Value) (object.Value, error) {
			return object.Str(object.ToDisplayString(b)), nil
		}), nil
	case "toInt":
		return method(name, 0, func(object.Caller, []object.Value) (object.Value, error) {
			if b {
				return object.Int(1), nil
			}
			return object.Int(0), nil
		}), nil
	case "toFloat":
		return method(name, 0, func(object.Caller, []object.Value) (object.Value, error) {
			if b {
				return object.Float(1), nil
			}
			return object.Float(0), nil
		}), nil
	default:
		return nil, noSuchMethod("boolean", name)
	}
}

// ---- array methods ----

func asInt(v object.Value) (int, bool) {
	i, ok := v.(object.Int)
	return int(i), ok
}

// normalizeIndex maps a (possibly negative, Python-slice-style) index
// against length, clamping into [0, length].
func normalizeIndex(i, length int) int {
	if i < 0 {
		i += length
	}
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}

func (it *Interpreter) arrayMethod(span sourcemap.Span, a *object.Array, name string) (object.Value, error) {
	switch name {
	case "map":
		return method(name, 1, func(call object.Caller, args []object.Value) (object.Value, error) {
			fn := args[0]
			out := make([]object.Value, len(a.Elements))
			for i, e := range a.Elements {
				v, err := call(fn, []object.Value{e})
				if err != nil {
					return nil, err
				}
				out[i] = v
			}
			return object.NewArray(out), nil
		}), nil
	case "filter":
		return method(name, 1, func(call object.Caller, args []object.Value) (object.Value, error) {
			fn := args[0]
			var out []object.Value
			for _, e := range a.Elements {
				v, err := call(fn, []object.Value{e})
				if err != nil {
					return nil, err
				}
				if object.IsTruthy(v) {
					out = append(out, e)
				}
			}
			return object.NewArray(out), nil
		}), nil
	case "reduce":
		return method(name, 2, func(call object.Caller, args []object.Value) (object.Value, error) {
			fn := args[0]
			acc := args[1]
			for _, e := range a.Elements {
				v, err := call(fn, []object.Value{acc, e})
				if err != nil {
					return nil, err
				}
				acc = v
			}
			return acc, nil
		}), nil
	case "length":
		return method(name, 0, func(object.Caller, []object.Value) (object.Value, error) {
			return object.Int(len(a.Elements)), nil
		}), nil
	case "push":
		return method(name, -1, func(_ object.Caller, args []object.Value) (object.Value, error) {
			a.Elements = append(a.Elements, args...)
			return object.Int(len(a.Elements)), nil
		}), nil
	case "pop":
		return method(name, 0, func(object.Caller, []object.Value) (object.Value, error) {
			if len(a.Elements) == 0 {
				return object.Null{}, nil
			}
			last := a.Elements[len(a.Elements)-1]
			a.Elements = a.Elements[:len(a.Elements)-1]
			return last, nil
		}), nil
	case "shift":
		return method(name, 0, func(object.Caller, []object.Value) (object.Value, error) {
			if len(a.Elements) == 0 {
				return object.Null{}, nil
			}
			first := a.Elements[0]
			a.Elements = a.Elements[1:]
			return first, nil
		}), nil
	case "unshift":
		return method(name, -1, func(_ object.Caller, args []object.Value) (object.Value, error) {
			a.Elements = append(append([]object.Value{}, args...), a.Elements...)
			return object.Int(len(a.Elements)), nil
		}), nil
	case "splice":
		return method(name, -1, func(_ object.Caller, args []object.Value) (object.Value, error) {
			return arraySplice(a, args)
		}), nil
	case "slice":
		return method(name, -1, func(_ object.Caller, args []object.Value) (object.Value, error) {
			return arraySlice(a, args)
		}), nil
	case "indexOf":
		return method(name, -1, func(_ object.Caller, args []object.Value) (object.Value, error) {
			idx, err := arrayIndexOf(a, args)
			if err != nil {
				return nil, err
			}
			return object.Int(idx), nil
		}), nil
	case "includes":
		return method(name, -1, func(_ object.Caller, args []object.Value) (object.Value, error) {
			idx, err := arrayIndexOf(a, args)
			if err != nil {
				return nil, err
			}
			return object.Bool(idx != -1), nil
		}), nil
	case "reverse":
		return method(name, 0, func(object.Caller, []object.Value) (object.Value, error) {
			for i, j := 0, len(a.Elements)-1; i < j; i, j = i+1, j-1 {
				a.Elements[i], a.Elements[j] = a.Elements[j], a.Elements[i]
			}
			return a, nil
		}), nil
	case "sort":
		return method(name, -1, func(call object.Caller, args []object.Value) (object.Value, error) {
			return arraySort(call, a, args)
		}), nil
	case "join":
		return method(name, -1, func(_ object.Caller, args []object.Value) (object.Value, error) {
			sep := ","
			if len(args) > 0 {
				s, ok := args[0].(object.Str)
				if !ok {
					return nil, fmt.Errorf("join expects a string separator")
				}
				sep = string(s)
			}
			parts := make([]string, len(a.Elements))
			for i, e := range a.Elements {
				if _, ok := e.(object.Null); ok {
					parts[i] = ""
					continue
				}
				parts[i] = object.ToDisplayString(e)
			}
			return object.Str(strings.Join(parts, sep)), nil
		}), nil
	case "concat":
		return method(name, -1, func(_ object.Caller, args []object.Value) (object.Value, error) {
			out := append([]object.Value{}, a.Elements...)
			for _, arg := range args {
				if arr, ok := arg.(*object.Array); ok {
					out = append(out, arr.Elements...)
				} else {
					out = append(out, arg)
				}
			}
			return object.NewArray(out), nil
		}), nil
	default:
		return nil, noSuchMethod("array", name)
	}
}

func arraySplice(a *object.Array, args []object.Value) (object.Value, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("splice expects a start index")
	}
	start, ok := asInt(args[0])
	if !ok {
		return nil, fmt.Errorf("splice start must be a number")
	}
	start = normalizeIndex(start, len(a.Elements))

	deleteCount := len(a.Elements) - start
	if len(args) > 1 {
		dc, ok := asInt(args[1])
		if !ok {
			return nil, fmt.Errorf("splice deleteCount must be a number")
		}
		deleteCount = dc
	}
	if deleteCount < 0 {
		deleteCount = 0
	}
	if start+deleteCount > len(a.Elements) {
		deleteCount = len(a.Elements) - start
	}

	removed := append([]object.Value{}, a.Elements[start:start+deleteCount]...)
	var inserted []object.Value
	if len(args) > 2 {
		inserted = args[2:]
	}

	tail := append([]object.Value{}, a.Elements[start+deleteCount:]...)
	a.Elements = append(a.Elements[:start], append(append([]object.Value{}, inserted...), tail...)...)
	return object.NewArray(removed), nil
}

func arraySlice(a *object.Array, args []object.Value) (object.Value, error) {
	start, end := 0, len(a.Elements)
	if len(args) > 0 {
		s, ok := asInt(args[0])
		if !ok {
			return nil, fmt.Errorf("slice start must be a number")
		}
		start = normalizeIndex(s, len(a.Elements))
	}
	if len(args) > 1 {
		e, ok := asInt(args[1])
		if !ok {
			return nil, fmt.Errorf("slice end must be a number")
		}
		end = normalizeIndex(e, len(a.Elements))
	}
	if end < start {
		end = start
	}
	return object.NewArray(append([]object.Value{}, a.Elements[start:end]...)), nil
}

func arrayIndexOf(a *object.Array, args []object.Value) (int, error) {
	if len(args) == 0 {
		return -1, fmt.Errorf("indexOf expects a search element")
	}
	target := args[0]
	from := 0
	if len(args) > 1 {
		f, ok := asInt(args[1])
		if !ok {
			return -1, fmt.Errorf("fromIndex must be a number")
		}
		from = normalizeIndex(f, len(a.Elements))
	}
	for i := from; i < len(a.Elements); i++ {
		if object.Equal(a.Elements[i], target) {
			return i, nil
		}
	}
	return -1, nil
}

func arraySort(call object.Caller, a *object.Array, args []object.Value) (object.Value, error) {
	if len(args) == 0 {
		sort.SliceStable(a.Elements, func(i, j int) bool {
			return object.ToDisplayString(a.Elements[i]) < object.ToDisplayString(a.Elements[j])
		})
		return a, nil
	}

	cmp := args[0]
	var sortErr error
	sort.SliceStable(a.Elements, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		v, err := call(cmp, []object.Value{a.Elements[i], a.Elements[j]})
		if err != nil {
			sortErr = err
			return false
		}
		if !isNumeric(v) {
			sortErr = fmt.Errorf("sort compare function must return a number")
			return false
		}
		return toFloat64(v) < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return a, nil
}
