package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeywordsCoverAllReservedWords(t *testing.T) {
	for _, word := range []string{
		"package", "use", "var", "func", "class", "if", "else", "elif",
		"while", "for", "in", "return", "end", "this", "init", "public",
		"private", "true", "false", "null", "break", "continue", "try",
		"catch", "finally", "switch", "case", "default",
	} {
		_, ok := Keywords[word]
		require.Truef(t, ok, "missing keyword %q", word)
	}
}

func TestSymbolsAreLongestMatchFirst(t *testing.T) {
	firstIndex := map[byte]int{}
	for i, s := range Symbols {
		lead := s.Lexeme[0]
		if prev, ok := firstIndex[lead]; ok {
			require.GreaterOrEqualf(t, len(Symbols[prev].Lexeme), len(s.Lexeme),
				"symbol %q at index %d must not come before shorter-prefix sibling %q", Symbols[prev].Lexeme, prev, s.Lexeme)
		} else {
			firstIndex[lead] = i
		}
	}
	require.Equal(t, POWER, Symbols[0].Kind)
}

func TestKindStringRoundTrip(t *testing.T) {
	require.Equal(t, "+", PLUS.String())
	require.Equal(t, "package", PACKAGE.String())
	require.Equal(t, "UNKNOWN", Kind(-1).String())
}

func TestTokenStringIncludesLiteral(t *testing.T) {
	tok := Token{Kind: STRING, Lexeme: `"hi"`, Literal: "hi"}
	require.Contains(t, tok.String(), "hi")

	tok2 := Token{Kind: SEMICOLON, Lexeme: ";"}
	require.Equal(t, ";(;)", tok2.String())
}
