// Package lexer converts Lapis source text into a token stream, registering
// the source with a sourcemap.SourceMap so every token carries a precise
// byte span.
package lexer

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lapis-lang/lapis/internal/diag"
	"github.com/lapis-lang/lapis/internal/sourcemap"
	"github.com/lapis-lang/lapis/internal/token"
)

const eof rune = -1

// Lexer scans one registered source file into a flat token slice.
type Lexer struct {
	sm     *sourcemap.SourceMap
	fileID int
	input  string

	start int // byte offset where the current token begins
	pos   int // current byte offset (scan cursor)

	line, column           int
	startLine, startColumn int

	tokens []token.Token
}

// New registers source under path in sm and returns a Lexer ready to scan it.
func New(sm *sourcemap.SourceMap, path, source string) *Lexer {
	return &Lexer{
		sm:          sm,
		fileID:      sm.AddFile(path, source),
		input:       source,
		line:        1,
		column:      1,
		startLine:   1,
		startColumn: 1,
	}
}

// Tokenize scans the entire input and returns its tokens, always ending
// with an EOF token. It stops at the first lexical error.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	for !l.atEnd() {
		l.start = l.pos
		l.startLine, l.startColumn = l.line, l.column
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}
	l.start = l.pos
	l.startLine, l.startColumn = l.line, l.column
	l.emit(token.EOF, "", nil)
	return l.tokens, nil
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.input) }

func (l *Lexer) next() rune {
	if l.atEnd() {
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += w
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *Lexer) peek() rune {
	if l.atEnd() {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

func (l *Lexer) peekNext() rune {
	if l.atEnd() {
		return eof
	}
	_, w := utf8.DecodeRuneInString(l.input[l.pos:])
	if l.pos+w >= len(l.input) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos+w:])
	return r
}

// match consumes the next rune if it equals expected.
func (l *Lexer) match(expected rune) bool {
	if l.peek() != expected {
		return false
	}
	l.next()
	return true
}

func (l *Lexer) currentSpan() sourcemap.Span {
	return sourcemap.Span{FileID: l.fileID, Start: l.start, End: l.pos}
}

func (l *Lexer) emit(kind token.Kind, lexeme string, literal any) {
	if lexeme == "" {
		lexeme = l.input[l.start:l.pos]
	}
	l.tokens = append(l.tokens, token.Token{
		Kind:    kind,
		Lexeme:  lexeme,
		Literal: literal,
		Line:    l.startLine,
		Column:  l.startColumn,
		Span:    l.currentSpan(),
	})
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isAlpha(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isAlphaNumeric(r rune) bool { return isAlpha(r) || isDigit(r) }

func (l *Lexer) scanToken() error {
	c := l.next()

	switch c {
	case '(':
		l.emit(token.LEFT_PAREN, "", nil)
	case ')':
		l.emit(token.RIGHT_PAREN, "", nil)
	case '{':
		l.emit(token.LEFT_BRACE, "", nil)
	case '}':
		l.emit(token.RIGHT_BRACE, "", nil)
	case '[':
		l.emit(token.LEFT_BRACKET, "", nil)
	case ']':
		l.emit(token.RIGHT_BRACKET, "", nil)
	case ',':
		l.emit(token.COMMA, "", nil)
	case '.':
		l.emit(token.DOT, "", nil)
	case ';':
		l.emit(token.SEMICOLON, "", nil)
	case ':':
		l.emit(token.COLON, "", nil)
	case '%':
		l.emit(token.MODULO, "", nil)
	case '+':
		if l.match('+') {
			l.emit(token.PLUS_PLUS, "", nil)
		} else {
			l.emit(token.PLUS, "", nil)
		}
	case '-':
		if l.match('-') {
			l.emit(token.MINUS_MINUS, "", nil)
		} else {
			l.emit(token.MINUS, "", nil)
		}
	case '*':
		if l.match('*') {
			l.emit(token.POWER, "", nil)
		} else {
			l.emit(token.MULTIPLY, "", nil)
		}
	case '/':
		switch {
		case l.match('/'):
			for l.peek() != '\n' && !l.atEnd() {
				l.next()
			}
		case l.match('*'):
			return l.multiLineComment()
		default:
			l.emit(token.DIVIDE, "", nil)
		}
	case '=':
		if l.match('=') {
			l.emit(token.EQUAL, "", nil)
		} else {
			l.emit(token.ASSIGN, "", nil)
		}
	case '!':
		if l.match('=') {
			l.emit(token.NOT_EQUAL, "", nil)
		} else {
			l.emit(token.NOT, "", nil)
		}
	case '<':
		if l.match('=') {
			l.emit(token.LESS_EQUAL, "", nil)
		} else {
			l.emit(token.LESS, "", nil)
		}
	case '>':
		if l.match('=') {
			l.emit(token.GREATER_EQUAL, "", nil)
		} else {
			l.emit(token.GREATER, "", nil)
		}
	case '&':
		if l.match('&') {
			l.emit(token.AND, "", nil)
		} else {
			return diag.UnexpectedCharacterError(l.currentSpan(), string(c))
		}
	case '|':
		if l.match('|') {
			l.emit(token.OR, "", nil)
		} else {
			return diag.UnexpectedCharacterError(l.currentSpan(), string(c))
		}
	case ' ', '\r':
		// ignored
	case '\t':
		l.emit(token.TAB, "", nil)
	case '\n':
		l.emit(token.NEWLINE, "", nil)
	case '"':
		return l.stringLiteral('"')
	case '\'':
		return l.stringLiteral('\'')
	case '`':
		return l.templateLiteral()
	case eof:
		// nothing left to scan
	default:
		switch {
		case isDigit(c):
			return l.number()
		case isAlpha(c):
			l.identifier()
		default:
			return diag.UnexpectedCharacterError(l.currentSpan(), string(c))
		}
	}
	return nil
}

func (l *Lexer) stringLiteral(quote rune) error {
	var b strings.Builder
	for l.peek() != quote && !l.atEnd() {
		if l.peek() == '\\' {
			l.next()
			if l.atEnd() {
				return diag.UnterminatedStringError(l.currentSpan())
			}
			b.WriteString(decodeEscape(l.next(), quote))
			continue
		}
		b.WriteRune(l.next())
	}
	if l.atEnd() {
		return diag.UnterminatedStringError(l.currentSpan())
	}
	l.next() // closing quote
	l.emit(token.STRING, "", b.String())
	return nil
}

func decodeEscape(escaped, quote rune) string {
	switch escaped {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case '\\':
		return "\\"
	case '"':
		return "\""
	case '\'':
		return "'"
	default:
		if escaped == quote {
			return string(quote)
		}
		return "\\" + string(escaped)
	}
}

// templateLiteral scans a backtick-delimited template literal. Text runs
// accumulate verbatim; an unescaped '{' opens an embedded expression region
// whose raw source is captured until its matching '}' (nested braces are
// tracked so a dictionary literal or block inside the expression lexes
// correctly), to be re-lexed and parsed by the parser.
func (l *Lexer) templateLiteral() error {
	var parts []token.TemplatePart
	var text strings.Builder

	flushText := func() {
		if text.Len() > 0 {
			parts = append(parts, token.TemplatePart{Text: text.String()})
			text.Reset()
		}
	}

	for l.peek() != '`' && !l.atEnd() {
		switch l.peek() {
		case '\\':
			l.next()
			if l.atEnd() {
				return diag.UnterminatedTemplateLiteralError(l.currentSpan())
			}
			esc := l.next()
			switch esc {
			case 'n':
				text.WriteByte('\n')
			case 't':
				text.WriteByte('\t')
			case '\\':
				text.WriteByte('\\')
			case '`':
				text.WriteByte('`')
			case '{':
				text.WriteByte('{')
			case '}':
				text.WriteByte('}')
			default:
				text.WriteByte('\\')
				text.WriteRune(esc)
			}
		case '{':
			l.next() // consume '{'
			flushText()

			var exprSrc strings.Builder
			depth := 1
			for depth > 0 {
				if l.atEnd() {
					return diag.UnterminatedTemplateLiteralError(l.currentSpan())
				}
				switch l.peek() {
				case '{':
					depth++
					exprSrc.WriteRune(l.next())
				case '}':
					depth--
					if depth == 0 {
						l.next() // consume closing '}'
						continue
					}
					exprSrc.WriteRune(l.next())
				default:
					exprSrc.WriteRune(l.next())
				}
			}
			parts = append(parts, token.TemplatePart{ExprSource: exprSrc.String()})
		default:
			text.WriteRune(l.next())
		}
	}

	if l.atEnd() {
		return diag.UnterminatedTemplateLiteralError(l.currentSpan())
	}
	flushText()
	l.next() // closing backtick
	l.emit(token.TEMPLATE_LITERAL, "", parts)
	return nil
}

func (l *Lexer) number() error {
	for isDigit(l.peek()) {
		l.next()
	}
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.next()
		for isDigit(l.peek()) {
			l.next()
		}
	}

	text := l.input[l.start:l.pos]
	if !strings.Contains(text, ".") {
		intValue, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return diag.InvalidNumberError(l.currentSpan(), text)
		}
		l.emit(token.NUMBER, "", intValue)
		return nil
	}

	floatValue, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return diag.InvalidNumberError(l.currentSpan(), text)
	}
	if floatValue == math.Trunc(floatValue) && math.Abs(floatValue) < math.MaxInt64 {
		l.emit(token.NUMBER, "", int64(floatValue))
		return nil
	}
	l.emit(token.NUMBER, "", floatValue)
	return nil
}

func (l *Lexer) identifier() {
	for isAlphaNumeric(l.peek()) {
		l.next()
	}
	text := l.input[l.start:l.pos]
	kind, isKeyword := token.Keywords[text]
	if !isKeyword {
		l.emit(token.IDENTIFIER, text, text)
		return
	}

	switch kind {
	case token.TRUE:
		l.emit(kind, text, true)
	case token.FALSE:
		l.emit(kind, text, false)
	case token.NULL:
		l.emit(kind, text, nil)
	default:
		l.emit(kind, text, nil)
	}
}

func (l *Lexer) multiLineComment() error {
	nesting := 1
	for nesting > 0 && !l.atEnd() {
		switch {
		case l.peek() == '/' && l.peekNext() == '*':
			l.next()
			l.next()
			nesting++
		case l.peek() == '*' && l.peekNext() == '/':
			l.next()
			l.next()
			nesting--
		default:
			l.next()
		}
	}
	if nesting > 0 {
		return diag.UnterminatedCommentError(l.currentSpan())
	}
	return nil
}
