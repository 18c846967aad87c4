package lexer

import (
	"testing"

	"github.com/lapis-lang/lapis/internal/sourcemap"
	"github.com/lapis-lang/lapis/internal/token"
	"github.com/stretchr/testify/require"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

type lexerTestCase struct {
	input    string
	expected []token.Kind
}

func testLexer(t *testing.T, cases []lexerTestCase) {
	t.Helper()
	for _, c := range cases {
		sm := sourcemap.New()
		l := New(sm, "test.lap", c.input)
		toks, err := l.Tokenize()
		require.NoErrorf(t, err, "input %q", c.input)
		require.Equalf(t, c.expected, kinds(toks), "input %q", c.input)
	}
}

func TestLexerSingleCharTokens(t *testing.T) {
	testLexer(t, []lexerTestCase{
		{`(`, []token.Kind{token.LEFT_PAREN, token.EOF}},
		{`)`, []token.Kind{token.RIGHT_PAREN, token.EOF}},
		{`{`, []token.Kind{token.LEFT_BRACE, token.EOF}},
		{`}`, []token.Kind{token.RIGHT_BRACE, token.EOF}},
		{`[`, []token.Kind{token.LEFT_BRACKET, token.EOF}},
		{`]`, []token.Kind{token.RIGHT_BRACKET, token.EOF}},
		{`,`, []token.Kind{token.COMMA, token.EOF}},
		{`.`, []token.Kind{token.DOT, token.EOF}},
		{`;`, []token.Kind{token.SEMICOLON, token.EOF}},
		{`:`, []token.Kind{token.COLON, token.EOF}},
		{`%`, []token.Kind{token.MODULO, token.EOF}},
	})
}

func TestLexerMultiCharOperatorsPreferLongestMatch(t *testing.T) {
	testLexer(t, []lexerTestCase{
		{`+`, []token.Kind{token.PLUS, token.EOF}},
		{`++`, []token.Kind{token.PLUS_PLUS, token.EOF}},
		{`-`, []token.Kind{token.MINUS, token.EOF}},
		{`--`, []token.Kind{token.MINUS_MINUS, token.EOF}},
		{`*`, []token.Kind{token.MULTIPLY, token.EOF}},
		{`**`, []token.Kind{token.POWER, token.EOF}},
		{`=`, []token.Kind{token.ASSIGN, token.EOF}},
		{`==`, []token.Kind{token.EQUAL, token.EOF}},
		{`!`, []token.Kind{token.NOT, token.EOF}},
		{`!=`, []token.Kind{token.NOT_EQUAL, token.EOF}},
		{`<`, []token.Kind{token.LESS, token.EOF}},
		{`<=`, []token.Kind{token.LESS_EQUAL, token.EOF}},
		{`>`, []token.Kind{token.GREATER, token.EOF}},
		{`>=`, []token.Kind{token.GREATER_EQUAL, token.EOF}},
		{`&&`, []token.Kind{token.AND, token.EOF}},
		{`||`, []token.Kind{token.OR, token.EOF}},
	})
}

func TestLexerLoneAmpersandOrPipeIsUnexpectedCharacter(t *testing.T) {
	for _, input := range []string{"&", "|", "& &", "a & b"} {
		sm := sourcemap.New()
		l := New(sm, "test.lap", input)
		_, err := l.Tokenize()
		require.Errorf(t, err, "input %q", input)
	}
}

func TestLexerKeywordsAndIdentifiers(t *testing.T) {
	testLexer(t, []lexerTestCase{
		{`var`, []token.Kind{token.VAR, token.EOF}},
		{`func`, []token.Kind{token.FUNC, token.EOF}},
		{`class`, []token.Kind{token.CLASS, token.EOF}},
		{`if else elif`, []token.Kind{token.IF, token.ELSE, token.ELIF, token.EOF}},
		{`while for in`, []token.Kind{token.WHILE, token.FOR, token.IN, token.EOF}},
		{`return end this init`, []token.Kind{token.RETURN, token.END, token.THIS, token.INIT, token.EOF}},
		{`public private`, []token.Kind{token.PUBLIC, token.PRIVATE, token.EOF}},
		{`break continue`, []token.Kind{token.BREAK, token.CONTINUE, token.EOF}},
		{`try catch finally`, []token.Kind{token.TRY, token.CATCH, token.FINALLY, token.EOF}},
		{`switch case default`, []token.Kind{token.SWITCH, token.CASE, token.DEFAULT, token.EOF}},
		{`package use`, []token.Kind{token.PACKAGE, token.USE, token.EOF}},
		{`foo_bar baz2`, []token.Kind{token.IDENTIFIER, token.IDENTIFIER, token.EOF}},
	})
}

func TestLexerBooleanAndNullLiterals(t *testing.T) {
	sm := sourcemap.New()
	l := New(sm, "test.lap", "true false null")
	toks, err := l.Tokenize()
	require.NoError(t, err)
	require.Equal(t, []token.Kind{token.TRUE, token.FALSE, token.NULL, token.EOF}, kinds(toks))
	require.Equal(t, true, toks[0].Literal)
	require.Equal(t, false, toks[1].Literal)
	require.Nil(t, toks[2].Literal)
}

func TestLexerIntegerAndFloatLiterals(t *testing.T) {
	sm := sourcemap.New()
	l := New(sm, "test.lap", "42 3.5")
	toks, err := l.Tokenize()
	require.NoError(t, err)
	require.Equal(t, []token.Kind{token.NUMBER, token.NUMBER, token.EOF}, kinds(toks))
	require.Equal(t, int64(42), toks[0].Literal)
	require.Equal(t, 3.5, toks[1].Literal)
}

func TestLexerStringLiteralEscapes(t *testing.T) {
	sm := sourcemap.New()
	l := New(sm, "test.lap", `"a\nb\tc\\d\"e"`)
	toks, err := l.Tokenize()
	require.NoError(t, err)
	require.Equal(t, []token.Kind{token.STRING, token.EOF}, kinds(toks))
	require.Equal(t, "a\nb\tc\\d\"e", toks[0].Literal)
}

func TestLexerUnterminatedStringReportsError(t *testing.T) {
	sm := sourcemap.New()
	l := New(sm, "test.lap", `"unterminated`)
	_, err := l.Tokenize()
	require.Error(t, err)
}

func TestLexerSingleLineCommentIsSkipped(t *testing.T) {
	sm := sourcemap.New()
	l := New(sm, "test.lap", "var x // trailing comment\n")
	toks, err := l.Tokenize()
	require.NoError(t, err)
	require.Equal(t, []token.Kind{token.VAR, token.IDENTIFIER, token.NEWLINE, token.EOF}, kinds(toks))
}

func TestLexerNestedBlockComments(t *testing.T) {
	sm := sourcemap.New()
	l := New(sm, "test.lap", "var /* outer /* inner */ still outer */ x")
	toks, err := l.Tokenize()
	require.NoError(t, err)
	require.Equal(t, []token.Kind{token.VAR, token.IDENTIFIER, token.EOF}, kinds(toks))
}

func TestLexerUnterminatedBlockCommentReportsError(t *testing.T) {
	sm := sourcemap.New()
	l := New(sm, "test.lap", "/* never closed")
	_, err := l.Tokenize()
	require.Error(t, err)
}

func TestLexerTemplateLiteralLiteralTextOnly(t *testing.T) {
	sm := sourcemap.New()
	l := New(sm, "test.lap", "`hello world`")
	toks, err := l.Tokenize()
	require.NoError(t, err)
	require.Equal(t, []token.Kind{token.TEMPLATE_LITERAL, token.EOF}, kinds(toks))
	parts := toks[0].Literal.([]token.TemplatePart)
	require.Equal(t, []token.TemplatePart{{Text: "hello world"}}, parts)
}

func TestLexerTemplateLiteralCapturesExpressionVerbatim(t *testing.T) {
	sm := sourcemap.New()
	l := New(sm, "test.lap", "`hi {name}!`")
	toks, err := l.Tokenize()
	require.NoError(t, err)
	parts := toks[0].Literal.([]token.TemplatePart)
	require.Equal(t, []token.TemplatePart{
		{Text: "hi "},
		{ExprSource: "name"},
		{Text: "!"},
	}, parts)
}

func TestLexerTemplateLiteralCapturesIndexExpressionWithQuotes(t *testing.T) {
	sm := sourcemap.New()
	l := New(sm, "test.lap", "`val: {dict[\"k\"]}`")
	toks, err := l.Tokenize()
	require.NoError(t, err)
	parts := toks[0].Literal.([]token.TemplatePart)
	require.Equal(t, []token.TemplatePart{
		{Text: "val: "},
		{ExprSource: `dict["k"]`},
	}, parts)
}

func TestLexerTemplateLiteralWithDictLiteralExpression(t *testing.T) {
	sm := sourcemap.New()
	l := New(sm, "test.lap", "`{fn({a: 1})}`")
	toks, err := l.Tokenize()
	require.NoError(t, err)
	parts := toks[0].Literal.([]token.TemplatePart)
	require.Equal(t, []token.TemplatePart{
		{ExprSource: "fn({a: 1})"},
	}, parts)
}

func TestLexerUnterminatedTemplateLiteralReportsError(t *testing.T) {
	sm := sourcemap.New()
	l := New(sm, "test.lap", "`unterminated")
	_, err := l.Tokenize()
	require.Error(t, err)
}

func TestLexerUnterminatedTemplateExpressionReportsError(t *testing.T) {
	sm := sourcemap.New()
	l := New(sm, "test.lap", "`{oops`")
	_, err := l.Tokenize()
	require.Error(t, err)
}

func TestLexerTokenSpansAreRegisteredInSourceMap(t *testing.T) {
	sm := sourcemap.New()
	l := New(sm, "test.lap", "var x")
	toks, err := l.Tokenize()
	require.NoError(t, err)

	text, err := sm.GetSpanText(toks[0].Span)
	require.NoError(t, err)
	require.Equal(t, "var", text)

	text, err = sm.GetSpanText(toks[1].Span)
	require.NoError(t, err)
	require.Equal(t, "x", text)
}

func TestLexerUnexpectedCharacterReportsError(t *testing.T) {
	sm := sourcemap.New()
	l := New(sm, "test.lap", "@")
	_, err := l.Tokenize()
	require.Error(t, err)
}
