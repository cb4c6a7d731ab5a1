package cyphersql

import (
	"errors"

	"github.com/alecthomas/participle/v2/lexer"
)

// Sentinel errors.
var (
	ErrUnknownDialect = errors.New("unknown dialect")
	ErrConfigNotFound = errors.New("config file not found")
)

// ParseError is returned for any grammar mismatch. Parsing aborts on the
// first error; there is no recovery or multi-error collection.
type ParseError struct {
	Msg string
	Pos lexer.Position
}

func (e *ParseError) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// parseErrorf builds a ParseError at the given position.
func parseErrorf(pos lexer.Position, msg string) *ParseError {
	return &ParseError{Msg: msg, Pos: pos}
}

// TranslateError is returned when a parsed statement cannot be mapped onto
// the relational schema.
type TranslateError struct {
	Msg string
}

func (e *TranslateError) Error() string {
	return e.Msg
}

func translateErrorf(msg string) *TranslateError {
	return &TranslateError{Msg: msg}
}
