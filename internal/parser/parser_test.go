package parser

import (
	"testing"

	"github.com/lapis-lang/lapis/internal/ast"
	"github.com/lapis-lang/lapis/internal/lexer"
	"github.com/lapis-lang/lapis/internal/sourcemap"
	"github.com/stretchr/testify/require"
)

func parseSource(t *testing.T, source string) (*ast.Program, []error) {
	t.Helper()
	sm := sourcemap.New()
	l := lexer.New(sm, "test.lap", source)
	toks, err := l.Tokenize()
	require.NoError(t, err)

	p := New(sm, "test.lap", toks)
	program, diags := p.Parse(DefaultMaxErrors)
	errs := make([]error, len(diags))
	for i, d := range diags {
		errs[i] = d
	}
	return program, errs
}

func parseOK(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, errs := parseSource(t, source)
	require.Empty(t, errs)
	return program
}

func TestParserVarDeclaration(t *testing.T) {
	program := parseOK(t, `var x = 1;`)
	require.Len(t, program.Statements, 1)
	stmt := program.Statements[0].(*ast.VarStmt)
	require.Equal(t, "x", stmt.Name)
	require.Equal(t, ast.Private, stmt.AccessModifier)
	lit := stmt.Initializer.(*ast.LiteralExpr)
	require.Equal(t, int64(1), lit.Value)
}

func TestParserPublicVarDeclaration(t *testing.T) {
	program := parseOK(t, `public var x = 1;`)
	stmt := program.Statements[0].(*ast.VarStmt)
	require.Equal(t, ast.Public, stmt.AccessModifier)
}

func TestParserVarDeclarationWithoutInitializer(t *testing.T) {
	program := parseOK(t, `var x;`)
	stmt := program.Statements[0].(*ast.VarStmt)
	require.Nil(t, stmt.Initializer)
}

func TestParserFunctionDeclarationWithVariadic(t *testing.T) {
	program := parseOK(t, `
func sum(a, b, rest**)
	return a;
end
`)
	stmt := program.Statements[0].(*ast.FunctionStmt)
	require.Equal(t, "sum", stmt.Name)
	require.Equal(t, []string{"a", "b"}, stmt.Params)
	require.Equal(t, "rest", stmt.VariadicParam)
}

func TestParserVariadicNotLastIsAnError(t *testing.T) {
	_, errs := parseSource(t, `
func sum(a**, b)
	return a;
end
`)
	require.NotEmpty(t, errs)
}

func TestParserClassDeclarationWithInitAndMethods(t *testing.T) {
	program := parseOK(t, `
class Point
	func init(x, y)
		this.x = x;
	end

	func sum()
		return this.x;
	end
end
`)
	stmt := program.Statements[0].(*ast.ClassStmt)
	require.Equal(t, "Point", stmt.Name)
	require.NotNil(t, stmt.Constructor)
	require.Equal(t, "init", stmt.Constructor.Name)
	require.Len(t, stmt.Methods, 1)
	require.Equal(t, "sum", stmt.Methods[0].Name)
}

func TestParserIfElifElse(t *testing.T) {
	program := parseOK(t, `
if (x == 1)
	return 1;
elif (x == 2)
	return 2;
else
	return 3;
end
`)
	stmt := program.Statements[0].(*ast.IfStmt)
	require.Len(t, stmt.ElifBranches, 1)
	require.NotNil(t, stmt.ElseBranch)
}

func TestParserWhileLoop(t *testing.T) {
	program := parseOK(t, `
while (true)
	break;
end
`)
	stmt := program.Statements[0].(*ast.WhileStmt)
	require.IsType(t, &ast.LiteralExpr{}, stmt.Condition)
}

func TestParserForInLoop(t *testing.T) {
	program := parseOK(t, `
for item in items
	continue;
end
`)
	stmt := program.Statements[0].(*ast.ForStmt)
	require.Equal(t, "item", stmt.Variable)
}

func TestParserTryCatchFinally(t *testing.T) {
	program := parseOK(t, `
try
	var x = 1;
catch (e)
	var y = 2;
finally
	var z = 3;
end
`)
	stmt := program.Statements[0].(*ast.TryStmt)
	require.Len(t, stmt.CatchClauses, 1)
	require.Equal(t, "e", stmt.CatchClauses[0].Variable)
	require.NotNil(t, stmt.FinallyBody)
}

func TestParserSwitchCaseDefault(t *testing.T) {
	program := parseOK(t, `
switch (x)
case 1:
	var a = 1;
default:
	var b = 2;
end
`)
	stmt := program.Statements[0].(*ast.SwitchStmt)
	require.Len(t, stmt.Cases, 2)
	require.False(t, stmt.Cases[0].IsDefault)
	require.True(t, stmt.Cases[1].IsDefault)
}

func TestParserBinaryPrecedence(t *testing.T) {
	program := parseOK(t, `var x = 1 + 2 * 3;`)
	stmt := program.Statements[0].(*ast.VarStmt)
	bin := stmt.Initializer.(*ast.BinaryExpr)
	require.Equal(t, "+", bin.Operator)
	right := bin.Right.(*ast.BinaryExpr)
	require.Equal(t, "*", right.Operator)
}

func TestParserPowerIsRightAssociative(t *testing.T) {
	program := parseOK(t, `var x = 2 ** 3 ** 2;`)
	stmt := program.Statements[0].(*ast.VarStmt)
	bin := stmt.Initializer.(*ast.BinaryExpr)
	require.Equal(t, "**", bin.Operator)
	left := bin.Left.(*ast.LiteralExpr)
	require.Equal(t, int64(2), left.Value)
	right := bin.Right.(*ast.BinaryExpr)
	require.Equal(t, "**", right.Operator)
}

func TestParserUnaryAndPostfix(t *testing.T) {
	program := parseOK(t, `var x = -a++;`)
	stmt := program.Statements[0].(*ast.VarStmt)
	unary := stmt.Initializer.(*ast.UnaryExpr)
	require.Equal(t, "-", unary.Operator)
	postfix := unary.Operand.(*ast.PostfixExpr)
	require.Equal(t, "++", postfix.Operator)
}

func TestParserCallGetAndIndexChain(t *testing.T) {
	program := parseOK(t, `var x = foo.bar(1, 2)[0];`)
	stmt := program.Statements[0].(*ast.VarStmt)
	idx := stmt.Initializer.(*ast.IndexExpr)
	call := idx.Object.(*ast.CallExpr)
	require.Len(t, call.Arguments, 2)
	get := call.Callee.(*ast.GetExpr)
	require.Equal(t, "bar", get.Name)
}

func TestParserAssignmentTargets(t *testing.T) {
	program := parseOK(t, `
x = 1;
obj.field = 2;
arr[0] = 3;
`)
	require.IsType(t, &ast.AssignmentExpr{}, program.Statements[0].(*ast.ExpressionStmt).Expression)
	require.IsType(t, &ast.SetExpr{}, program.Statements[1].(*ast.ExpressionStmt).Expression)
	require.IsType(t, &ast.IndexSetExpr{}, program.Statements[2].(*ast.ExpressionStmt).Expression)
}

func TestParserInvalidAssignmentTargetIsAnError(t *testing.T) {
	_, errs := parseSource(t, `1 + 1 = 2;`)
	require.NotEmpty(t, errs)
}

func TestParserArrayLiteral(t *testing.T) {
	program := parseOK(t, `var x = [1, 2, 3];`)
	stmt := program.Statements[0].(*ast.VarStmt)
	arr := stmt.Initializer.(*ast.ArrayExpr)
	require.Len(t, arr.Elements, 3)
}

func TestParserDictionaryLiteralBareKeysAndTrailingComma(t *testing.T) {
	program := parseOK(t, `
var x = {
	a: 1,
	"b": 2,
};
`)
	stmt := program.Statements[0].(*ast.VarStmt)
	dict := stmt.Initializer.(*ast.DictionaryExpr)
	require.Len(t, dict.Pairs, 2)
	firstKey := dict.Pairs[0].Key.(*ast.LiteralExpr)
	require.Equal(t, "a", firstKey.Value)
	secondKey := dict.Pairs[1].Key.(*ast.LiteralExpr)
	require.Equal(t, "b", secondKey.Value)
}

func TestParserTemplateLiteralReparsesEmbeddedExpression(t *testing.T) {
	program := parseOK(t, "var x = `hi {name}!`;")
	stmt := program.Statements[0].(*ast.VarStmt)
	tmpl := stmt.Initializer.(*ast.TemplateLiteralExpr)
	require.Len(t, tmpl.Parts, 3)
	require.Equal(t, "hi ", tmpl.Parts[0].Text)
	ident := tmpl.Parts[1].Expr.(*ast.IdentifierExpr)
	require.Equal(t, "name", ident.Name)
	require.Equal(t, "!", tmpl.Parts[2].Text)
}

func TestParserTemplateLiteralEmbeddedExpressionWithCall(t *testing.T) {
	program := parseOK(t, "var x = `{fn(1, 2)}`;")
	stmt := program.Statements[0].(*ast.VarStmt)
	tmpl := stmt.Initializer.(*ast.TemplateLiteralExpr)
	require.Len(t, tmpl.Parts, 1)
	call := tmpl.Parts[0].Expr.(*ast.CallExpr)
	require.Len(t, call.Arguments, 2)
}

func TestParserPackageStatementWithUseClause(t *testing.T) {
	program := parseOK(t, `package "./math.lap" use add, subtract;`)
	stmt := program.Statements[0].(*ast.PackageStmt)
	require.Equal(t, "./math.lap", stmt.Path)
	require.Equal(t, []string{"add", "subtract"}, stmt.Imports)
}

func TestParserPackageStatementWithoutUseClauseImportsNil(t *testing.T) {
	program := parseOK(t, `package "./math.lap";`)
	stmt := program.Statements[0].(*ast.PackageStmt)
	require.Nil(t, stmt.Imports)
}

func TestParserSynchronizeRecoversAfterError(t *testing.T) {
	program, errs := parseSource(t, `
var x = ;
var y = 2;
`)
	require.NotEmpty(t, errs)
	require.Len(t, program.Statements, 1)
	stmt := program.Statements[0].(*ast.VarStmt)
	require.Equal(t, "y", stmt.Name)
}

func TestParserMaxErrorsStopsEarly(t *testing.T) {
	sm := sourcemap.New()
	l := lexer.New(sm, "test.lap", "var x = ;\nvar y = ;\nvar z = ;\n")
	toks, err := l.Tokenize()
	require.NoError(t, err)

	p := New(sm, "test.lap", toks)
	_, errs := p.Parse(2)
	require.Len(t, errs, 2)
}
