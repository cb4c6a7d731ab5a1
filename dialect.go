package cyphersql

import "fmt"

// Dialect supplies the lexical rules and grammar capabilities the tokenizer
// and parser consult. Grammar variations are modelled as queries on this
// interface rather than as parser subclasses.
type Dialect interface {
	// Name returns the dialect identifier (e.g., "cypher").
	Name() string

	// IsIdentifierStart reports whether ch may begin an identifier.
	IsIdentifierStart(ch rune) bool

	// IsIdentifierPart reports whether ch may continue an identifier.
	IsIdentifierPart(ch rune) bool

	// IdentifierQuote returns the delimiter for quoted identifiers,
	// or 0 when the dialect has none.
	IdentifierQuote() rune

	// SupportsMapLiterals reports whether {key: value} literals are part
	// of the dialect's expression grammar.
	SupportsMapLiterals() bool
}

// DialectFactory creates a Dialect instance.
type DialectFactory func() Dialect

var dialects = make(map[string]DialectFactory)

// RegisterDialect registers a dialect factory by name.
func RegisterDialect(name string, factory DialectFactory) {
	dialects[name] = factory
}

// NewDialect creates a dialect instance by name.
func NewDialect(name string) (Dialect, error) { //nolint:ireturn
	factory, ok := dialects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDialect, name)
	}

	return factory(), nil
}

// RegisteredDialects returns the names of all registered dialects.
func RegisteredDialects() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}

	return names
}

//nolint:gochecknoinits // Dialect self-registration pattern
func init() {
	RegisterDialect("cypher", func() Dialect { return CypherDialect{} })
}

// CypherDialect implements the Cypher lexical rules: identifiers may start
// with a letter, underscore, or $ (parameters), and quoted identifiers use
// backticks.
type CypherDialect struct{}

// Name returns the dialect identifier.
func (CypherDialect) Name() string { return "cypher" }

// IsIdentifierStart reports whether ch may begin an identifier.
func (CypherDialect) IsIdentifierStart(ch rune) bool {
	return isLetter(ch) || ch == '_' || ch == '$'
}

// IsIdentifierPart reports whether ch may continue an identifier.
func (CypherDialect) IsIdentifierPart(ch rune) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_' || ch == '$'
}

// IdentifierQuote returns the backtick used for delimited identifiers.
func (CypherDialect) IdentifierQuote() rune { return '`' }

// SupportsMapLiterals reports that Cypher has {key: value} map syntax.
func (CypherDialect) SupportsMapLiterals() bool { return true }

var _ Dialect = CypherDialect{}
