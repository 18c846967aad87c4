// Package token defines the lexical token kinds produced by the lexer and
// consumed by the parser.
package token

import (
	"fmt"

	"github.com/lapis-lang/lapis/internal/sourcemap"
)

// Kind identifies the lexical category of a Token.
type Kind int

const (
	EOF Kind = iota
	ILLEGAL

	// Literals
	NUMBER
	STRING
	TEMPLATE_LITERAL
	IDENTIFIER
	BOOLEAN

	// Keywords
	PACKAGE
	USE
	VAR
	FUNC
	CLASS
	IF
	ELSE
	ELIF
	WHILE
	FOR
	IN
	RETURN
	END
	THIS
	INIT
	PUBLIC
	PRIVATE
	TRUE
	FALSE
	NULL
	BREAK
	CONTINUE
	TRY
	CATCH
	FINALLY
	SWITCH
	CASE
	DEFAULT

	// Arithmetic operators
	PLUS
	MINUS
	MULTIPLY
	DIVIDE
	POWER
	MODULO

	ASSIGN
	PLUS_PLUS
	MINUS_MINUS

	// Comparison
	EQUAL
	NOT_EQUAL
	LESS
	LESS_EQUAL
	GREATER
	GREATER_EQUAL

	// Logical
	AND
	OR
	NOT

	// Delimiters
	LEFT_PAREN
	RIGHT_PAREN
	LEFT_BRACE
	RIGHT_BRACE
	LEFT_BRACKET
	RIGHT_BRACKET
	COMMA
	SEMICOLON
	DOT
	COLON

	NEWLINE
	TAB
	COMMENT
)

var kindNames = map[Kind]string{
	EOF:               "EOF",
	ILLEGAL:           "ILLEGAL",
	NUMBER:            "NUMBER",
	STRING:            "STRING",
	TEMPLATE_LITERAL:  "TEMPLATE_LITERAL",
	IDENTIFIER:        "IDENTIFIER",
	BOOLEAN:           "BOOLEAN",
	PACKAGE:           "package",
	USE:               "use",
	VAR:               "var",
	FUNC:              "func",
	CLASS:             "class",
	IF:                "if",
	ELSE:              "else",
	ELIF:              "elif",
	WHILE:             "while",
	FOR:               "for",
	IN:                "in",
	RETURN:            "return",
	END:               "end",
	THIS:              "this",
	INIT:              "init",
	PUBLIC:            "public",
	PRIVATE:           "private",
	TRUE:              "true",
	FALSE:             "false",
	NULL:              "null",
	BREAK:             "break",
	CONTINUE:          "continue",
	TRY:               "try",
	CATCH:             "catch",
	FINALLY:           "finally",
	SWITCH:            "switch",
	CASE:              "case",
	DEFAULT:           "default",
	PLUS:              "+",
	MINUS:             "-",
	MULTIPLY:          "*",
	DIVIDE:            "/",
	POWER:             "**",
	MODULO:            "%",
	ASSIGN:            "=",
	PLUS_PLUS:         "++",
	MINUS_MINUS:       "--",
	EQUAL:             "==",
	NOT_EQUAL:         "!=",
	LESS:              "<",
	LESS_EQUAL:        "<=",
	GREATER:           ">",
	GREATER_EQUAL:     ">=",
	AND:               "&&",
	OR:                "||",
	NOT:               "!",
	LEFT_PAREN:        "(",
	RIGHT_PAREN:       ")",
	LEFT_BRACE:        "{",
	RIGHT_BRACE:       "}",
	LEFT_BRACKET:      "[",
	RIGHT_BRACKET:     "]",
	COMMA:             ",",
	SEMICOLON:         ";",
	DOT:               ".",
	COLON:             ":",
	NEWLINE:           "NEWLINE",
	TAB:               "TAB",
	COMMENT:           "COMMENT",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// Keywords maps reserved words to their Kind. Identifiers not present here
// lex as IDENTIFIER.
var Keywords = map[string]Kind{
	"package":  PACKAGE,
	"use":      USE,
	"var":      VAR,
	"func":     FUNC,
	"class":    CLASS,
	"if":       IF,
	"else":     ELSE,
	"elif":     ELIF,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"return":   RETURN,
	"end":      END,
	"this":     THIS,
	"init":     INIT,
	"public":   PUBLIC,
	"private":  PRIVATE,
	"true":     TRUE,
	"false":    FALSE,
	"null":     NULL,
	"break":    BREAK,
	"continue": CONTINUE,
	"try":      TRY,
	"catch":    CATCH,
	"finally":  FINALLY,
	"switch":   SWITCH,
	"case":     CASE,
	"default":  DEFAULT,
}

// Symbols lists every operator/delimiter lexeme in longest-match-first
// order: "**" before "*", "==" before "=", and so on. The lexer does not
// read this table; it matches operators with its own switch.
var Symbols = []struct {
	Lexeme string
	Kind   Kind
}{
	{"**", POWER},
	{"++", PLUS_PLUS},
	{"--", MINUS_MINUS},
	{"==", EQUAL},
	{"!=", NOT_EQUAL},
	{"<=", LESS_EQUAL},
	{">=", GREATER_EQUAL},
	{"&&", AND},
	{"||", OR},
	{"+", PLUS},
	{"-", MINUS},
	{"*", MULTIPLY},
	{"/", DIVIDE},
	{"%", MODULO},
	{"=", ASSIGN},
	{"<", LESS},
	{">", GREATER},
	{"!", NOT},
	{"(", LEFT_PAREN},
	{")", RIGHT_PAREN},
	{"{", LEFT_BRACE},
	{"}", RIGHT_BRACE},
	{"[", LEFT_BRACKET},
	{"]", RIGHT_BRACKET},
	{",", COMMA},
	{";", SEMICOLON},
	{".", DOT},
	{":", COLON},
}

// TemplatePart is one piece of a lexed template literal: either a literal
// text chunk (ExprSource empty) or an embedded expression's raw source
// text captured verbatim between unescaped '{' and its matching '}'
// (Text empty), to be re-lexed and parsed by the parser.
type TemplatePart struct {
	Text       string
	ExprSource string
}

// Token is a single lexical unit with its source span and, for literals,
// a decoded value.
type Token struct {
	Kind    Kind
	Lexeme  string
	Literal any
	Line    int
	Column  int
	Span    sourcemap.Span
}

func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("%s(%s, %v)", t.Kind, t.Lexeme, t.Literal)
	}
	return fmt.Sprintf("%s(%s)", t.Kind, t.Lexeme)
}
