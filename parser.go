package cyphersql

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Parser is a recursive descent parser over a token stream. One Parser
// handles one statement; it is not safe for concurrent use.
type Parser struct {
	stream  *TokenStream
	dialect Dialect
	depth   int
}

// NewParser creates a parser for the given dialect and stream.
func NewParser(dialect Dialect, stream *TokenStream) *Parser {
	return &Parser{stream: stream, dialect: dialect}
}

// Parse tokenizes and parses a single complete statement. Trailing input
// after the statement is an error.
func Parse(dialect Dialect, input string) (Statement, error) { //nolint:ireturn
	stream, err := Lex(dialect, input)
	if err != nil {
		return nil, err
	}

	p := NewParser(dialect, stream)

	stmt, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}

	if tok := p.stream.Peek(); tok.Type != TokenEOF {
		return nil, parseErrorf(tok.Pos, "expected end of statement, got "+quoteToken(tok))
	}

	return stmt, nil
}

// ParseStatement parses one statement starting at the current token.
func (p *Parser) ParseStatement() (Statement, error) { //nolint:ireturn
	tok := p.stream.Peek()

	switch {
	case p.parseKeyword("MATCH"):
		return p.parseMatch(false)
	case p.parseKeyword("OPTIONAL"):
		if err := p.expectKeyword("MATCH"); err != nil {
			return nil, err
		}

		return p.parseMatch(true)
	case p.parseKeyword("CREATE"):
		return p.parseCreate()
	case p.parseKeyword("MERGE"):
		return p.parseMerge()
	case p.parseKeyword("DELETE"):
		return p.parseDelete(false)
	case p.parseKeyword("DETACH"):
		if err := p.expectKeyword("DELETE"); err != nil {
			return nil, err
		}

		return p.parseDelete(true)
	}

	return nil, parseErrorf(tok.Pos, "expected MATCH, CREATE, MERGE, or DELETE, got "+quoteToken(tok))
}

func (p *Parser) parseMatch(optional bool) (Statement, error) { //nolint:ireturn
	patterns, err := p.parsePatternList()
	if err != nil {
		return nil, err
	}

	stmt := &MatchStatement{Optional: optional, Patterns: patterns}

	if p.parseKeyword("WHERE") {
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		stmt.Where = where
	}

	if p.peekKeyword("RETURN") {
		ret, err := p.parseReturnClause()
		if err != nil {
			return nil, err
		}

		stmt.Return = ret
	}

	return stmt, nil
}

func (p *Parser) parseCreate() (Statement, error) { //nolint:ireturn
	patterns, err := p.parsePatternList()
	if err != nil {
		return nil, err
	}

	return &CreateStatement{Patterns: patterns}, nil
}

func (p *Parser) parseMerge() (Statement, error) { //nolint:ireturn
	patterns, err := p.parsePatternList()
	if err != nil {
		return nil, err
	}

	stmt := &MergeStatement{Patterns: patterns}

	for p.peekKeyword("ON") {
		onPos := p.stream.Pos()
		p.stream.Next()

		switch {
		case p.parseKeyword("CREATE"):
			if stmt.OnCreate != nil {
				return nil, parseErrorf(onPos, "duplicate ON CREATE clause")
			}

			if err := p.expectKeyword("SET"); err != nil {
				return nil, err
			}

			clauses, err := p.parseSetClauses()
			if err != nil {
				return nil, err
			}

			stmt.OnCreate = clauses
		case p.parseKeyword("MATCH"):
			if stmt.OnMatch != nil {
				return nil, parseErrorf(onPos, "duplicate ON MATCH clause")
			}

			if err := p.expectKeyword("SET"); err != nil {
				return nil, err
			}

			clauses, err := p.parseSetClauses()
			if err != nil {
				return nil, err
			}

			stmt.OnMatch = clauses
		default:
			return nil, parseErrorf(p.stream.Pos(), "expected CREATE or MATCH after ON, got "+quoteToken(p.stream.Peek()))
		}
	}

	return stmt, nil
}

func (p *Parser) parseDelete(detach bool) (Statement, error) { //nolint:ireturn
	stmt := &DeleteStatement{Detach: detach}

	for {
		target, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		stmt.Targets = append(stmt.Targets, target)

		if p.stream.Peek().Type != TokenComma {
			break
		}

		p.stream.Next()
	}

	if p.parseKeyword("WHERE") {
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		stmt.Where = where
	}

	return stmt, nil
}

func (p *Parser) parseReturnClause() (*ReturnClause, error) {
	if err := p.expectKeyword("RETURN"); err != nil {
		return nil, err
	}

	clause := &ReturnClause{
		Distinct: p.parseKeyword("DISTINCT"),
	}

	items, err := p.parseProjectionItems()
	if err != nil {
		return nil, err
	}

	clause.Items = items

	if p.parseKeyword("ORDER") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}

		keys, err := p.parseOrderKeys()
		if err != nil {
			return nil, err
		}

		clause.OrderBy = keys
	}

	if p.parseKeyword("SKIP") {
		skip, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		clause.Skip = skip
	}

	if p.parseKeyword("LIMIT") {
		limit, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		clause.Limit = limit
	}

	return clause, nil
}

// parsePatternList parses one or more comma-separated patterns.
func (p *Parser) parsePatternList() ([]*Pattern, error) {
	var patterns []*Pattern

	for {
		if p.stream.Peek().Type != TokenLParen {
			return nil, parseErrorf(p.stream.Pos(), "expected pattern starting with '(', got "+quoteToken(p.stream.Peek()))
		}

		pattern, err := p.parsePattern()
		if err != nil {
			return nil, err
		}

		patterns = append(patterns, pattern)

		if p.stream.Peek().Type != TokenComma {
			return patterns, nil
		}

		p.stream.Next()
	}
}

// parsePattern parses (node)(-[rel]-(node))*.
func (p *Parser) parsePattern() (*Pattern, error) {
	node, err := p.parseNodePattern()
	if err != nil {
		return nil, err
	}

	elements := []PatternElement{node}

	for p.atRelationshipStart() {
		rel, err := p.parseRelationshipPattern()
		if err != nil {
			return nil, err
		}

		if p.stream.Peek().Type != TokenLParen {
			return nil, parseErrorf(p.stream.Pos(), "expected node after relationship, got "+quoteToken(p.stream.Peek()))
		}

		next, err := p.parseNodePattern()
		if err != nil {
			return nil, err
		}

		elements = append(elements, rel, next)
	}

	return NewPattern(elements)
}

func (p *Parser) atRelationshipStart() bool {
	tok := p.stream.Peek()

	return tok.Type == TokenOp && (tok.Value == "<" || tok.Value == "-")
}

func (p *Parser) parseNodePattern() (*NodePattern, error) {
	if err := p.expectToken(TokenLParen, "("); err != nil {
		return nil, err
	}

	node := &NodePattern{}

	// A leading colon means the node has no variable: (:Label).
	if p.stream.Peek().Type == TokenIdent {
		node.Variable = p.unquoteIdent(p.stream.Next().Value)
	}

	for p.stream.Peek().Type == TokenColon {
		p.stream.Next()

		label, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}

		node.Labels = append(node.Labels, label)
	}

	if p.stream.Peek().Type == TokenLBrace {
		props, err := p.parseMapLiteral()
		if err != nil {
			return nil, err
		}

		node.Properties = props
	}

	if err := p.expectToken(TokenRParen, ")"); err != nil {
		return nil, err
	}

	return node, nil
}

// parseRelationshipPattern parses the dashes, direction markers, and the
// optional bracketed body: <-[r:TYPE1|TYPE2*1..3 {props}]->. Bare arrows
// like --> and -- carry no body at all.
func (p *Parser) parseRelationshipPattern() (*RelationshipPattern, error) {
	rel := &RelationshipPattern{}

	left := false
	if p.consumeOp("<") {
		left = true
	}

	if !p.consumeOp("-") {
		return nil, parseErrorf(p.stream.Pos(), "expected '-' before relationship, got "+quoteToken(p.stream.Peek()))
	}

	if p.stream.Peek().Type == TokenLBracket {
		if err := p.parseRelationshipBody(rel); err != nil {
			return nil, err
		}
	}

	right := false

	switch {
	case p.consumeOp("->"):
		right = true
	case p.consumeOp("-"):
		if p.consumeOp(">") {
			right = true
		}
	default:
		return nil, parseErrorf(p.stream.Pos(), "expected relationship direction, got "+quoteToken(p.stream.Peek()))
	}

	switch {
	case left && right:
		rel.Direction = DirectionBoth
	case left:
		rel.Direction = DirectionLeft
	case right:
		rel.Direction = DirectionRight
	default:
		rel.Direction = DirectionNone
	}

	return rel, nil
}

// parseRelationshipBody parses [variable? types? length? properties?]
// including both brackets.
func (p *Parser) parseRelationshipBody(rel *RelationshipPattern) error {
	if err := p.expectToken(TokenLBracket, "["); err != nil {
		return err
	}

	// Inside the brackets a bare identifier can only be the variable; types
	// always follow a colon.
	if p.stream.Peek().Type == TokenIdent {
		rel.Variable = p.unquoteIdent(p.stream.Next().Value)
	}

	// Repeated colon groups accumulate: [:A:B] means the same as [:A|B].
	for p.stream.Peek().Type == TokenColon {
		p.stream.Next()

		for {
			relType, err := p.parseIdentifier()
			if err != nil {
				return err
			}

			rel.Types = append(rel.Types, relType)

			if p.stream.Peek().Type != TokenPipe {
				break
			}

			p.stream.Next()

			// |:TYPE and |TYPE are both accepted.
			if p.stream.Peek().Type == TokenColon {
				p.stream.Next()
			}
		}
	}

	if p.consumeOp("*") {
		length, err := p.parseRelationshipLength()
		if err != nil {
			return err
		}

		rel.Length = length
	}

	if p.stream.Peek().Type == TokenLBrace {
		props, err := p.parseMapLiteral()
		if err != nil {
			return err
		}

		rel.Properties = props
	}

	return p.expectToken(TokenRBracket, "]")
}

// parseRelationshipLength parses what follows the * in a length spec: a bare
// *, an exact count, or a min..max range with either bound optional.
func (p *Parser) parseRelationshipLength() (RelationshipLength, error) { //nolint:ireturn
	if p.stream.Peek().Type == TokenNumber {
		lower, err := p.parseLengthBound()
		if err != nil {
			return nil, err
		}

		if !p.consumeRange() {
			return &ExactLength{Count: lower}, nil
		}

		length := &RangeLength{Min: &lower}

		if p.stream.Peek().Type == TokenNumber {
			upper, err := p.parseLengthBound()
			if err != nil {
				return nil, err
			}

			length.Max = &upper
		}

		return length, nil
	}

	if p.consumeRange() {
		length := &RangeLength{}

		if p.stream.Peek().Type == TokenNumber {
			upper, err := p.parseLengthBound()
			if err != nil {
				return nil, err
			}

			length.Max = &upper
		}

		return length, nil
	}

	return &VariableLength{}, nil
}

// consumeRange consumes the two adjacent dots of a range bound separator.
func (p *Parser) consumeRange() bool {
	if p.stream.Peek().Type != TokenDot || p.stream.PeekNth(1).Type != TokenDot {
		return false
	}

	p.stream.Next()
	p.stream.Next()

	return true
}

func (p *Parser) parseLengthBound() (uint64, error) {
	tok := p.stream.Next()

	n, err := strconv.ParseUint(tok.Value, 10, 64)
	if err != nil {
		return 0, parseErrorf(tok.Pos, "invalid number in relationship length: "+quoteToken(tok))
	}

	return n, nil
}

// parseSetClauses parses a comma-separated SET clause list.
func (p *Parser) parseSetClauses() ([]*SetClause, error) {
	var clauses []*SetClause

	for {
		clause, err := p.parseSetClause()
		if err != nil {
			return nil, err
		}

		clauses = append(clauses, clause)

		if p.stream.Peek().Type != TokenComma {
			return clauses, nil
		}

		p.stream.Next()
	}
}

func (p *Parser) parseSetClause() (*SetClause, error) {
	variable, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}

	switch p.stream.Peek().Type {
	case TokenDot:
		p.stream.Next()

		property, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}

		clause := &SetClause{Target: &PropertyTarget{Variable: variable, Property: property}}

		if err := p.expectOp("="); err != nil {
			return nil, err
		}

		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		clause.Value = value

		return clause, nil

	case TokenColon:
		p.stream.Next()

		label, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}

		// Label targets carry no value: SET n:Label.
		return &SetClause{Target: &LabelTarget{Variable: variable, Label: label}}, nil
	}

	clause := &SetClause{Target: &VariableTarget{Variable: variable}}

	if err := p.expectOp("="); err != nil {
		return nil, err
	}

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	clause.Value = value

	return clause, nil
}

// Token helpers.

func (p *Parser) expectToken(typ lexer.TokenType, want string) error {
	tok := p.stream.Peek()
	if tok.Type != typ {
		return parseErrorf(tok.Pos, "expected \""+want+"\", got "+quoteToken(tok))
	}

	p.stream.Next()

	return nil
}

func (p *Parser) consumeOp(op string) bool {
	tok := p.stream.Peek()
	if tok.Type != TokenOp || tok.Value != op {
		return false
	}

	p.stream.Next()

	return true
}

func (p *Parser) expectOp(op string) error {
	if !p.consumeOp(op) {
		return parseErrorf(p.stream.Pos(), "expected \""+op+"\", got "+quoteToken(p.stream.Peek()))
	}

	return nil
}

// peekKeyword reports whether the current token is the given keyword,
// without consuming it. Keywords match case-insensitively.
func (p *Parser) peekKeyword(kw string) bool {
	tok := p.stream.Peek()

	return tok.Type == TokenIdent && strings.EqualFold(tok.Value, kw)
}

// parseKeyword consumes the keyword if present and reports whether it did.
func (p *Parser) parseKeyword(kw string) bool {
	if !p.peekKeyword(kw) {
		return false
	}

	p.stream.Next()

	return true
}

func (p *Parser) expectKeyword(kw string) error {
	if !p.parseKeyword(kw) {
		return parseErrorf(p.stream.Pos(), "expected "+kw+", got "+quoteToken(p.stream.Peek()))
	}

	return nil
}

// parseIdentifier expects an identifier token and returns its unquoted text.
func (p *Parser) parseIdentifier() (string, error) {
	tok := p.stream.Peek()
	if tok.Type != TokenIdent {
		return "", parseErrorf(tok.Pos, "expected identifier, got "+quoteToken(tok))
	}

	p.stream.Next()

	return p.unquoteIdent(tok.Value), nil
}

// unquoteIdent strips the dialect's identifier quotes when present.
func (p *Parser) unquoteIdent(raw string) string {
	quote := p.dialect.IdentifierQuote()
	if quote == 0 || len(raw) < 2 {
		return raw
	}

	if rune(raw[0]) == quote && rune(raw[len(raw)-1]) == quote {
		return raw[1 : len(raw)-1]
	}

	return raw
}

func (p *Parser) enterNesting() error {
	p.depth++
	if p.depth > maxNestingDepth {
		return parseErrorf(p.stream.Pos(), "expression nesting too deep")
	}

	return nil
}

func (p *Parser) leaveNesting() {
	p.depth--
}

// quoteToken renders a token for error messages.
func quoteToken(tok lexer.Token) string {
	if tok.Type == TokenEOF {
		return "end of input"
	}

	return strconv.Quote(tok.Value)
}
