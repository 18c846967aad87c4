package eval

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/lapis-lang/lapis/internal/lexer"
	"github.com/lapis-lang/lapis/internal/parser"
	"github.com/lapis-lang/lapis/internal/sourcemap"
	"github.com/stretchr/testify/require"
)

// run parses and interprets source, returning everything Console.print
// wrote and any error from the run itself.
func run(t *testing.T, source string) (string, error) {
	t.Helper()
	sm := sourcemap.New()
	l := lexer.New(sm, "test.lap", source)
	toks, err := l.Tokenize()
	require.NoError(t, err)

	p := parser.New(sm, "test.lap", toks)
	program, diags := p.Parse(parser.DefaultMaxErrors)
	require.Empty(t, diags)

	it := New(sm)
	var out bytes.Buffer
	it.SetStdout(&out)
	it.SetStdin(strings.NewReader(""))
	runErr := it.Interpret(program)
	return out.String(), runErr
}

func runOK(t *testing.T, source string) string {
	t.Helper()
	out, err := run(t, source)
	require.NoError(t, err)
	return out
}

func TestVarAndPrint(t *testing.T) {
	out := runOK(t, `
var x = 1;
var y = 2;
Console.print(x + y);
`)
	require.Equal(t, "3\n", out)
}

func TestStringConcatenationAndTemplate(t *testing.T) {
	out := runOK(t, `
var name = "world";
Console.print("hello, " + name);
Console.print(` + "`greeting: {name}`" + `);
`)
	require.Equal(t, "hello, world\ngreeting: world\n", out)
}

func TestIfElifElse(t *testing.T) {
	out := runOK(t, `
var x = 2;
if (x == 1)
	Console.print("one");
elif (x == 2)
	Console.print("two");
else
	Console.print("other");
end
`)
	require.Equal(t, "two\n", out)
}

func TestWhileBreakContinue(t *testing.T) {
	out := runOK(t, `
var i = 0;
while (i < 10)
	i = i + 1;
	if (i == 3)
		continue;
	end
	if (i == 6)
		break;
	end
	Console.print(i);
end
`)
	require.Equal(t, "1\n2\n4\n5\n", out)
}

func TestForOverArray(t *testing.T) {
	out := runOK(t, `
var total = 0;
for n in [1, 2, 3, 4]
	total = total + n;
end
Console.print(total);
`)
	require.Equal(t, "10\n", out)
}

func TestFunctionClosure(t *testing.T) {
	out := runOK(t, `
func makeCounter()
	var count = 0;
	func increment()
		count = count + 1;
		return count;
	end
	return increment;
end

var counter = makeCounter();
Console.print(counter());
Console.print(counter());
Console.print(counter());
`)
	require.Equal(t, "1\n2\n3\n", out)
}

func TestClassInstanceMethod(t *testing.T) {
	out := runOK(t, `
class Counter
	func init(start)
		this.value = start;
	end

	func increment()
		this.value = this.value + 1;
		return this.value;
	end
end

var c = Counter(10);
Console.print(c.increment());
Console.print(c.increment());
`)
	require.Equal(t, "11\n12\n", out)
}

func TestSwitchFirstMatchWins(t *testing.T) {
	out := runOK(t, `
var x = 2;
switch (x)
case 1:
	Console.print("one");
case 2, 3:
	Console.print("two-or-three");
default:
	Console.print("other");
end
`)
	require.Equal(t, "two-or-three\n", out)
}

func TestTryCatchFinally(t *testing.T) {
	out := runOK(t, `
try
	Console.error("boom");
	Console.print("unreachable");
catch (e)
	Console.print("caught: " + e.message);
finally
	Console.print("cleanup");
end
`)
	require.Equal(t, "caught: boom\ncleanup\n", out)
}

func TestTryFinallyRunsOnUncaughtControlFlow(t *testing.T) {
	out := runOK(t, `
func f()
	try
		return 1;
	finally
		Console.print("finally");
	end
end
Console.print(f());
`)
	require.Equal(t, "finally\n1\n", out)
}

func TestArrayMethods(t *testing.T) {
	out := runOK(t, `
func double(n)
	return n * 2;
end
func isEven(n)
	return n % 2 == 0;
end
func sum(acc, n)
	return acc + n;
end

var nums = [3, 1, 2];
Console.print(nums.sort());
var doubled = nums.map(double);
Console.print(doubled);
var evens = doubled.filter(isEven);
Console.print(evens.length());
var total = nums.reduce(sum, 0);
Console.print(total);
`)
	require.Equal(t, "[1, 2, 3]\n[2, 4, 6]\n3\n6\n", out)
}

func TestArrayPushPopIndexOf(t *testing.T) {
	out := runOK(t, `
var arr = [1, 2, 3];
arr.push(4);
Console.print(arr);
Console.print(arr.pop());
Console.print(arr.indexOf(2));
Console.print(arr.includes(99));
`)
	require.Equal(t, "[1, 2, 3, 4]\n4\n1\nfalse\n", out)
}

func TestStringMethods(t *testing.T) {
	out := runOK(t, `
var s = "Hello,World";
var parts = s.split(",");
Console.print(parts.length());
Console.print(s.contains("World"));
Console.print(s.toString());
`)
	require.Equal(t, "2\ntrue\nHello,World\n", out)
}

func TestMathModule(t *testing.T) {
	out := runOK(t, `
Console.print(Math.sqrt(16));
Console.print(Math.abs(-5));
Console.print(Math.max(1, 9, 4));
Console.print(Math.floor(3.7));
`)
	require.Equal(t, "4\n5\n9\n3\n", out)
}

func TestPythonFlooredModulo(t *testing.T) {
	out := runOK(t, `
Console.print(-7 % 3);
Console.print(7 % -3);
`)
	require.Equal(t, "2\n-2\n", out)
}

func TestUndefinedVariableIsError(t *testing.T) {
	_, err := run(t, `Console.print(missing);`)
	require.Error(t, err)
}

func TestBreakOutsideLoopIsError(t *testing.T) {
	_, err := run(t, `break;`)
	require.Error(t, err)
}

func TestDivisionByZeroIsError(t *testing.T) {
	_, err := run(t, `var x = 1 / 0;`)
	require.Error(t, err)
}

func TestPrivateBindingVisibleWithinOwnScope(t *testing.T) {
	_, err := run(t, `
var x = 1;
func f()
	return x;
end
Console.print(f());
`)
	require.NoError(t, err)
}

func TestModuleImportSnapshotsPublicBindings(t *testing.T) {
	dir := t.TempDir()
	libPath := dir + "/lib.lap"
	writeFile(t, libPath, `
public var shared = 0;
public func bump()
	shared = shared + 1;
	return shared;
end
`)

	sm := sourcemap.New()
	source := `
package "` + libPath + `";
Console.print(bump());
Console.print(bump());
Console.print(shared);
`
	l := lexer.New(sm, "test.lap", source)
	toks, err := l.Tokenize()
	require.NoError(t, err)
	p := parser.New(sm, "test.lap", toks)
	program, diags := p.Parse(parser.DefaultMaxErrors)
	require.Empty(t, diags)

	it := New(sm)
	var out bytes.Buffer
	it.SetStdout(&out)
	require.NoError(t, it.Interpret(program))
	// bump() mutates the module's own shared environment on each call, but
	// the importer's "shared" binding is a value snapshot taken at import
	// time (0), so it does not track those later in-module mutations.
	require.Equal(t, "1\n2\n0\n", out.String())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestWrongArityIsError(t *testing.T) {
	_, err := run(t, `
func add(a, b)
	return a + b;
end
Console.print(add(1));
`)
	require.Error(t, err)
}

func TestVariadicBindsRemainder(t *testing.T) {
	out := runOK(t, `
func sum(first, rest**)
	var total = first;
	for x in rest
		total = total + x;
	end
	return total;
end
Console.print(sum(1, 2, 3, 4));
`)
	require.Equal(t, "10\n", out)
}

func TestEqualitySymmetry(t *testing.T) {
	out := runOK(t, `
Console.print(1 == 1);
Console.print(1 == 2);
Console.print(2 == 1);
Console.print("a" == "a");
Console.print([1,2] == [1,2]);
`)
	require.Equal(t, "true\nfalse\nfalse\ntrue\ntrue\n", out)
}

func TestScopeDisciplineBlockLocalVarInvisibleAfter(t *testing.T) {
	_, err := run(t, `
if (true)
	var inner = 1;
end
Console.print(inner);
`)
	require.Error(t, err)
}

func TestImportIdempotenceTwoPackageStatementsRunOnce(t *testing.T) {
	dir := t.TempDir()
	libPath := dir + "/lib.lap"
	writeFile(t, libPath, `
public var loadCount = 0;
loadCount = loadCount + 1;
`)

	sm := sourcemap.New()
	source := `
package "` + libPath + `";
package "` + libPath + `";
Console.print(loadCount);
`
	l := lexer.New(sm, "test.lap", source)
	toks, err := l.Tokenize()
	require.NoError(t, err)
	p := parser.New(sm, "test.lap", toks)
	program, diags := p.Parse(parser.DefaultMaxErrors)
	require.Empty(t, diags)

	it := New(sm)
	var out bytes.Buffer
	it.SetStdout(&out)
	require.NoError(t, it.Interpret(program))
	require.Equal(t, "1\n", out.String())
}
