package cyphersql

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

// Token type constants - negative values as per participle convention.
const (
	TokenEOF        lexer.TokenType = lexer.EOF
	TokenComment    lexer.TokenType = -(iota + 2) //nolint:mnd // participle convention
	TokenIdent                                    // identifiers including $-prefixed and quoted
	TokenNumber                                   // integer and decimal literals
	TokenString                                   // quoted strings
	TokenOp                                       // operators, including multi-char -> <= >= <> !=
	TokenDot                                      // .
	TokenColon                                    // :
	TokenComma                                    // ,
	TokenPipe                                     // |
	TokenLParen                                   // (
	TokenRParen                                   // )
	TokenLBracket                                 // [
	TokenRBracket                                 // ]
	TokenLBrace                                   // {
	TokenRBrace                                   // }
	TokenWhitespace                               // spaces, tabs, newlines
)

// Lexer errors.
var (
	ErrUnterminatedString     = &LexerError{msg: "unterminated string"}
	ErrUnterminatedIdentifier = &LexerError{msg: "unterminated quoted identifier"}
	ErrUnexpectedCharacter    = &LexerError{msg: "unexpected character"}
)

// LexerError represents a lexer error with position.
type LexerError struct {
	msg string
	pos lexer.Position
	ch  rune
}

func (e *LexerError) Error() string {
	if e.ch != 0 {
		return e.pos.String() + ": " + e.msg + ": " + string(e.ch)
	}

	return e.pos.String() + ": " + e.msg
}

func (e *LexerError) withPos(pos lexer.Position) *LexerError {
	return &LexerError{msg: e.msg, pos: pos, ch: e.ch}
}

func (e *LexerError) withChar(ch rune) *LexerError {
	return &LexerError{msg: e.msg, pos: e.pos, ch: ch}
}

// Tokenize scans a complete query into tokens using the dialect's lexical
// rules. It returns every token including whitespace; NewTokenStream elides
// the trivia.
func Tokenize(dialect Dialect, input string) ([]lexer.Token, error) {
	l := &lexerState{dialect: dialect, input: input, line: 1, col: 1}

	var tokens []lexer.Token

	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}

		if tok.Type == TokenEOF {
			tokens = append(tokens, tok)

			return tokens, nil
		}

		tokens = append(tokens, tok)
	}
}

// lexerState holds the state for lexing.
type lexerState struct {
	dialect Dialect
	input   string
	offset  int
	line    int
	col     int
}

// multiCharOps are operators lexed as a single Op token. Note that ".." is
// deliberately absent: the relationship-length grammar consumes two Dot
// tokens so that "1..2" lexes as Number Dot Dot Number.
var multiCharOps = []string{"->", "<=", ">=", "<>", "!="}

// next returns the next token.
func (l *lexerState) next() (lexer.Token, error) {
	if l.eof() {
		return lexer.EOFToken(l.pos()), nil
	}

	start := l.pos()
	r := l.peek()

	// Whitespace
	if isSpace(r) {
		for !l.eof() && isSpace(l.peek()) {
			l.advance()
		}

		return l.token(TokenWhitespace, start), nil
	}

	// Comment
	if r == '/' && l.peekAt(1) == '/' {
		for !l.eof() && l.peek() != '\n' {
			l.advance()
		}

		return l.token(TokenComment, start), nil
	}

	// Quoted identifier (backtick in Cypher)
	if quote := l.dialect.IdentifierQuote(); quote != 0 && r == quote {
		return l.scanQuotedIdentifier(start, quote)
	}

	// String
	if r == '"' || r == '\'' {
		return l.scanString(start, r)
	}

	// Number
	if isDigit(r) {
		return l.scanNumber(start), nil
	}

	// Identifier
	if l.dialect.IsIdentifierStart(r) {
		l.advance()

		for !l.eof() && l.dialect.IsIdentifierPart(l.peek()) {
			l.advance()
		}

		return l.token(TokenIdent, start), nil
	}

	// Multi-character operators (check before single-char)
	for _, op := range multiCharOps {
		if l.match(op) {
			for range len(op) {
				l.advance()
			}

			return l.token(TokenOp, start), nil
		}
	}

	// Single character tokens
	l.advance()

	switch r {
	case '.':
		return l.token(TokenDot, start), nil
	case ':':
		return l.token(TokenColon, start), nil
	case ',':
		return l.token(TokenComma, start), nil
	case '|':
		return l.token(TokenPipe, start), nil
	case '(':
		return l.token(TokenLParen, start), nil
	case ')':
		return l.token(TokenRParen, start), nil
	case '[':
		return l.token(TokenLBracket, start), nil
	case ']':
		return l.token(TokenRBracket, start), nil
	case '{':
		return l.token(TokenLBrace, start), nil
	case '}':
		return l.token(TokenRBrace, start), nil
	}

	if strings.ContainsRune("+-*/%^<>=!", r) {
		return l.token(TokenOp, start), nil
	}

	return lexer.Token{}, ErrUnexpectedCharacter.withPos(start).withChar(r)
}

func (l *lexerState) pos() lexer.Position {
	return lexer.Position{
		Offset: l.offset,
		Line:   l.line,
		Column: l.col,
	}
}

func (l *lexerState) eof() bool {
	return l.offset >= len(l.input)
}

func (l *lexerState) peek() rune {
	if l.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])

	return r
}

func (l *lexerState) peekAt(n int) rune {
	off := l.offset + n
	if off >= len(l.input) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[off:])

	return r
}

func (l *lexerState) advance() rune {
	if l.eof() {
		return 0
	}

	r, size := utf8.DecodeRuneInString(l.input[l.offset:])
	l.offset += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return r
}

func (l *lexerState) match(s string) bool {
	return strings.HasPrefix(l.input[l.offset:], s)
}

func (l *lexerState) token(typ lexer.TokenType, start lexer.Position) lexer.Token {
	return lexer.Token{
		Type:  typ,
		Value: l.input[start.Offset:l.offset],
		Pos:   start,
	}
}

// scanQuotedIdentifier scans a delimited identifier. The token value keeps
// the quotes; the parser unquotes.
func (l *lexerState) scanQuotedIdentifier(start lexer.Position, quote rune) (lexer.Token, error) {
	l.advance() // opening quote

	for !l.eof() {
		if l.peek() == quote {
			l.advance() // closing quote

			return l.token(TokenIdent, start), nil
		}

		l.advance()
	}

	return lexer.Token{}, ErrUnterminatedIdentifier.withPos(start)
}

func (l *lexerState) scanString(start lexer.Position, quote rune) (lexer.Token, error) {
	l.advance() // opening quote

	for !l.eof() {
		ch := l.peek()
		if ch == '\\' && l.peekAt(1) != 0 {
			l.advance() // backslash
			l.advance() // escaped char

			continue
		}

		if ch == quote {
			l.advance() // closing quote

			return l.token(TokenString, start), nil
		}

		if ch == '\n' {
			return lexer.Token{}, ErrUnterminatedString.withPos(start)
		}

		l.advance()
	}

	return lexer.Token{}, ErrUnterminatedString.withPos(start)
}

func (l *lexerState) scanNumber(start lexer.Position) lexer.Token {
	for !l.eof() && isDigit(l.peek()) {
		l.advance()
	}

	// Fractional part. A lone "." or ".." after the digits is not consumed,
	// which keeps range bounds like "1..2" intact.
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance() // .

		for !l.eof() && isDigit(l.peek()) {
			l.advance()
		}
	}

	// Exponent
	if l.peek() == 'e' || l.peek() == 'E' {
		if isDigit(l.peekAt(1)) || ((l.peekAt(1) == '+' || l.peekAt(1) == '-') && isDigit(l.peekAt(2))) {
			l.advance() // e/E

			if l.peek() == '+' || l.peek() == '-' {
				l.advance()
			}

			for !l.eof() && isDigit(l.peek()) {
				l.advance()
			}
		}
	}

	return l.token(TokenNumber, start)
}

// Character helpers.

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}
