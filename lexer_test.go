package cyphersql_test

import (
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/rlch/cyphersql"
	"github.com/stretchr/testify/require"
)

type tokenExpect struct {
	typ lexer.TokenType
	val string
}

func lexTokens(t *testing.T, input string) []tokenExpect {
	t.Helper()

	tokens, err := cyphersql.Tokenize(cyphersql.CypherDialect{}, input)
	require.NoError(t, err)

	var out []tokenExpect

	for _, tok := range tokens {
		if tok.Type == cyphersql.TokenWhitespace || tok.Type == cyphersql.TokenEOF {
			continue
		}

		out = append(out, tokenExpect{typ: tok.Type, val: tok.Value})
	}

	return out
}

func assertTokens(t *testing.T, expected, got []tokenExpect) {
	t.Helper()

	require.Equal(t, expected, got)
}

func TestTokenize_Identifiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected []tokenExpect
	}{
		{"foo", []tokenExpect{{cyphersql.TokenIdent, "foo"}}},
		{"foo_bar", []tokenExpect{{cyphersql.TokenIdent, "foo_bar"}}},
		{"foo123", []tokenExpect{{cyphersql.TokenIdent, "foo123"}}},
		{"$param", []tokenExpect{{cyphersql.TokenIdent, "$param"}}},
		{"_private", []tokenExpect{{cyphersql.TokenIdent, "_private"}}},
		{"`weird name`", []tokenExpect{{cyphersql.TokenIdent, "`weird name`"}}},
		{"foo bar", []tokenExpect{{cyphersql.TokenIdent, "foo"}, {cyphersql.TokenIdent, "bar"}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			assertTokens(t, tt.expected, lexTokens(t, tt.input))
		})
	}
}

func TestTokenize_Numbers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected []tokenExpect
	}{
		{"123", []tokenExpect{{cyphersql.TokenNumber, "123"}}},
		{"123.456", []tokenExpect{{cyphersql.TokenNumber, "123.456"}}},
		{"1e10", []tokenExpect{{cyphersql.TokenNumber, "1e10"}}},
		{"1.5e-3", []tokenExpect{{cyphersql.TokenNumber, "1.5e-3"}}},
		// Range bounds must stay intact: the digits never swallow the dots.
		{"1..2", []tokenExpect{
			{cyphersql.TokenNumber, "1"},
			{cyphersql.TokenDot, "."},
			{cyphersql.TokenDot, "."},
			{cyphersql.TokenNumber, "2"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			assertTokens(t, tt.expected, lexTokens(t, tt.input))
		})
	}
}

func TestTokenize_Strings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected []tokenExpect
	}{
		{`'hello'`, []tokenExpect{{cyphersql.TokenString, `'hello'`}}},
		{`"hello"`, []tokenExpect{{cyphersql.TokenString, `"hello"`}}},
		{`'it\'s'`, []tokenExpect{{cyphersql.TokenString, `'it\'s'`}}},
		{`'a' 'b'`, []tokenExpect{{cyphersql.TokenString, `'a'`}, {cyphersql.TokenString, `'b'`}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			assertTokens(t, tt.expected, lexTokens(t, tt.input))
		})
	}
}

func TestTokenize_Operators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected []tokenExpect
	}{
		{"->", []tokenExpect{{cyphersql.TokenOp, "->"}}},
		{"<=", []tokenExpect{{cyphersql.TokenOp, "<="}}},
		{">=", []tokenExpect{{cyphersql.TokenOp, ">="}}},
		{"<>", []tokenExpect{{cyphersql.TokenOp, "<>"}}},
		{"!=", []tokenExpect{{cyphersql.TokenOp, "!="}}},
		{"<-", []tokenExpect{{cyphersql.TokenOp, "<"}, {cyphersql.TokenOp, "-"}}},
		{"a|b", []tokenExpect{
			{cyphersql.TokenIdent, "a"},
			{cyphersql.TokenPipe, "|"},
			{cyphersql.TokenIdent, "b"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			assertTokens(t, tt.expected, lexTokens(t, tt.input))
		})
	}
}

func TestTokenize_Pattern(t *testing.T) {
	t.Parallel()

	got := lexTokens(t, "(n:Person)-[r:KNOWS]->(m)")

	expected := []tokenExpect{
		{cyphersql.TokenLParen, "("},
		{cyphersql.TokenIdent, "n"},
		{cyphersql.TokenColon, ":"},
		{cyphersql.TokenIdent, "Person"},
		{cyphersql.TokenRParen, ")"},
		{cyphersql.TokenOp, "-"},
		{cyphersql.TokenLBracket, "["},
		{cyphersql.TokenIdent, "r"},
		{cyphersql.TokenColon, ":"},
		{cyphersql.TokenIdent, "KNOWS"},
		{cyphersql.TokenRBracket, "]"},
		{cyphersql.TokenOp, "->"},
		{cyphersql.TokenLParen, "("},
		{cyphersql.TokenIdent, "m"},
		{cyphersql.TokenRParen, ")"},
	}

	assertTokens(t, expected, got)
}

func TestTokenize_Comments(t *testing.T) {
	t.Parallel()

	got := lexTokens(t, "foo // trailing comment\nbar")

	expected := []tokenExpect{
		{cyphersql.TokenIdent, "foo"},
		{cyphersql.TokenComment, "// trailing comment"},
		{cyphersql.TokenIdent, "bar"},
	}

	assertTokens(t, expected, got)
}

func TestTokenize_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"unterminated string", `'never ends`},
		{"string with newline", "'line\nbreak'"},
		{"unterminated quoted identifier", "`never ends"},
		{"unexpected character", "foo @ bar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := cyphersql.Tokenize(cyphersql.CypherDialect{}, tt.input)
			require.Error(t, err)

			var lexErr *cyphersql.LexerError
			require.ErrorAs(t, err, &lexErr)
		})
	}
}

func TestTokenize_Positions(t *testing.T) {
	t.Parallel()

	tokens, err := cyphersql.Tokenize(cyphersql.CypherDialect{}, "foo\nbar")
	require.NoError(t, err)

	require.Len(t, tokens, 4) // foo, whitespace, bar, EOF
	require.Equal(t, 1, tokens[0].Pos.Line)
	require.Equal(t, 1, tokens[0].Pos.Column)
	require.Equal(t, 2, tokens[2].Pos.Line)
	require.Equal(t, 1, tokens[2].Pos.Column)
}
