package cyphersql

import "github.com/alecthomas/participle/v2/lexer"

// TokenStream is a cursor over a lexed query. Whitespace and comments are
// elided at construction so the grammar never sees trivia.
type TokenStream struct {
	tokens []lexer.Token
	pos    int
}

// NewTokenStream builds a stream from raw lexer output.
func NewTokenStream(tokens []lexer.Token) *TokenStream {
	significant := make([]lexer.Token, 0, len(tokens))

	for _, tok := range tokens {
		if tok.Type == TokenWhitespace || tok.Type == TokenComment {
			continue
		}

		significant = append(significant, tok)
	}

	return &TokenStream{tokens: significant}
}

// Lex tokenizes input with the dialect's rules and returns a ready stream.
func Lex(dialect Dialect, input string) (*TokenStream, error) {
	tokens, err := Tokenize(dialect, input)
	if err != nil {
		return nil, err
	}

	return NewTokenStream(tokens), nil
}

// Peek returns the current token without consuming it.
func (s *TokenStream) Peek() lexer.Token {
	return s.PeekNth(0)
}

// PeekNth returns the token n positions ahead without consuming anything.
// Positions past the end return the EOF token.
func (s *TokenStream) PeekNth(n int) lexer.Token {
	idx := s.pos + n
	if idx >= len(s.tokens) {
		return s.eofToken()
	}

	return s.tokens[idx]
}

// Next consumes and returns the current token.
func (s *TokenStream) Next() lexer.Token {
	tok := s.Peek()
	if s.pos < len(s.tokens) {
		s.pos++
	}

	return tok
}

// Pos returns the source position of the current token, for error messages.
func (s *TokenStream) Pos() lexer.Position {
	return s.Peek().Pos
}

func (s *TokenStream) eofToken() lexer.Token {
	if len(s.tokens) == 0 {
		return lexer.EOFToken(lexer.Position{Line: 1, Column: 1})
	}

	last := s.tokens[len(s.tokens)-1]
	if last.Type == TokenEOF {
		return last
	}

	return lexer.EOFToken(last.Pos)
}
