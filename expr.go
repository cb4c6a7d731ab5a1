package cyphersql

import (
	"strings"
)

// maxNestingDepth bounds expression recursion so malformed input fails with
// a ParseError instead of exhausting the call stack.
const maxNestingDepth = 64

// Expr is a generic value expression: WHERE predicates, SET values, SKIP and
// LIMIT values, map-literal contents, and projection expressions.
type Expr interface {
	String() string
	expr()
}

// Ident is a bare identifier reference.
type Ident struct {
	Name string
}

func (*Ident) expr() {}

func (e *Ident) String() string { return e.Name }

// Parameter is a $-prefixed query parameter.
type Parameter struct {
	Name string
}

func (*Parameter) expr() {}

func (e *Parameter) String() string { return "$" + e.Name }

// CompoundIdent is a dotted reference such as n.name.
type CompoundIdent struct {
	Parts []string
}

func (*CompoundIdent) expr() {}

func (e *CompoundIdent) String() string { return strings.Join(e.Parts, ".") }

// StringLiteral holds the unescaped string value.
type StringLiteral struct {
	Value string
}

func (*StringLiteral) expr() {}

func (e *StringLiteral) String() string {
	escaped := strings.ReplaceAll(e.Value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, "'", `\'`)

	return "'" + escaped + "'"
}

// NumberLiteral keeps the source text of the number so rendering never
// reformats values.
type NumberLiteral struct {
	Value string
}

func (*NumberLiteral) expr() {}

func (e *NumberLiteral) String() string { return e.Value }

// BoolLiteral is true or false.
type BoolLiteral struct {
	Value bool
}

func (*BoolLiteral) expr() {}

func (e *BoolLiteral) String() string {
	if e.Value {
		return "true"
	}

	return "false"
}

// NullLiteral is null.
type NullLiteral struct{}

func (*NullLiteral) expr() {}

func (*NullLiteral) String() string { return "null" }

// MapEntry is a single key/value pair in a map literal.
type MapEntry struct {
	Key   string
	Value Expr
}

// MapLiteral is an ordered {key: value, ...} literal. Entry order is the
// declaration order; property construction during translation depends on it.
type MapLiteral struct {
	Entries []MapEntry
}

func (*MapLiteral) expr() {}

func (e *MapLiteral) String() string {
	if len(e.Entries) == 0 {
		return "{}"
	}

	parts := make([]string, len(e.Entries))
	for i, entry := range e.Entries {
		parts[i] = entry.Key + ": " + entry.Value.String()
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

// ListLiteral is a [value, ...] literal.
type ListLiteral struct {
	Values []Expr
}

func (*ListLiteral) expr() {}

func (e *ListLiteral) String() string {
	parts := make([]string, len(e.Values))
	for i, value := range e.Values {
		parts[i] = value.String()
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// UnaryExpr is NOT x or -x.
type UnaryExpr struct {
	Op      string
	Operand Expr
}

func (*UnaryExpr) expr() {}

func (e *UnaryExpr) String() string {
	if e.Op == "-" {
		return "-" + e.Operand.String()
	}

	return e.Op + " " + e.Operand.String()
}

// BinaryExpr is a binary operation; Op is the canonical operator text.
type BinaryExpr struct {
	Left  Expr
	Op    string
	Right Expr
}

func (*BinaryExpr) expr() {}

func (e *BinaryExpr) String() string {
	return e.Left.String() + " " + e.Op + " " + e.Right.String()
}

// FuncCall is name(args...).
type FuncCall struct {
	Name string
	Args []Expr
}

func (*FuncCall) expr() {}

func (e *FuncCall) String() string {
	parts := make([]string, len(e.Args))
	for i, arg := range e.Args {
		parts[i] = arg.String()
	}

	return e.Name + "(" + strings.Join(parts, ", ") + ")"
}

// ParenExpr preserves explicit grouping from the source.
type ParenExpr struct {
	Expr Expr
}

func (*ParenExpr) expr() {}

func (e *ParenExpr) String() string { return "(" + e.Expr.String() + ")" }

// Operator precedence levels. Higher binds tighter.
const (
	precOr         = 1
	precXor        = 2
	precAnd        = 3
	precComparison = 4
	precAdditive   = 5
	precMultiplic  = 6
)

// parseExpr parses a full expression with precedence climbing.
func (p *Parser) parseExpr() (Expr, error) {
	if err := p.enterNesting(); err != nil {
		return nil, err
	}
	defer p.leaveNesting()

	return p.parseBinaryExpr(1)
}

func (p *Parser) parseBinaryExpr(minPrec int) (Expr, error) {
	left, err := p.parseUnaryExpr()
	if err != nil {
		return nil, err
	}

	for {
		op, prec := p.peekBinaryOp()
		if prec == 0 || prec < minPrec {
			return left, nil
		}

		p.stream.Next()

		right, err := p.parseBinaryExpr(prec + 1)
		if err != nil {
			return nil, err
		}

		left = &BinaryExpr{Left: left, Op: op, Right: right}
	}
}

// peekBinaryOp returns the canonical operator text and its precedence, or
// ("", 0) when the current token is not a binary operator.
func (p *Parser) peekBinaryOp() (string, int) {
	tok := p.stream.Peek()

	switch tok.Type {
	case TokenOp:
		switch tok.Value {
		case "=", "<>", "!=", "<", "<=", ">", ">=":
			return tok.Value, precComparison
		case "+", "-":
			return tok.Value, precAdditive
		case "*", "/", "%":
			return tok.Value, precMultiplic
		}
	case TokenIdent:
		switch {
		case strings.EqualFold(tok.Value, "AND"):
			return "AND", precAnd
		case strings.EqualFold(tok.Value, "OR"):
			return "OR", precOr
		case strings.EqualFold(tok.Value, "XOR"):
			return "XOR", precXor
		}
	}

	return "", 0
}

func (p *Parser) parseUnaryExpr() (Expr, error) {
	if err := p.enterNesting(); err != nil {
		return nil, err
	}
	defer p.leaveNesting()

	tok := p.stream.Peek()

	if tok.Type == TokenIdent && strings.EqualFold(tok.Value, "NOT") {
		p.stream.Next()

		operand, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}

		return &UnaryExpr{Op: "NOT", Operand: operand}, nil
	}

	if tok.Type == TokenOp && tok.Value == "-" {
		p.stream.Next()

		operand, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}

		return &UnaryExpr{Op: "-", Operand: operand}, nil
	}

	return p.parsePrimaryExpr()
}

func (p *Parser) parsePrimaryExpr() (Expr, error) {
	tok := p.stream.Peek()

	switch tok.Type {
	case TokenLParen:
		p.stream.Next()

		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if err := p.expectToken(TokenRParen, ")"); err != nil {
			return nil, err
		}

		return &ParenExpr{Expr: inner}, nil

	case TokenLBrace:
		return p.parseMapLiteral()

	case TokenLBracket:
		return p.parseListLiteral()

	case TokenString:
		p.stream.Next()

		return &StringLiteral{Value: unquoteString(tok.Value)}, nil

	case TokenNumber:
		p.stream.Next()

		return &NumberLiteral{Value: tok.Value}, nil

	case TokenIdent:
		return p.parseIdentExpr()
	}

	return nil, parseErrorf(tok.Pos, "expected expression, got "+quoteToken(tok))
}

func (p *Parser) parseIdentExpr() (Expr, error) {
	tok := p.stream.Next()

	switch {
	case strings.EqualFold(tok.Value, "true"):
		return &BoolLiteral{Value: true}, nil
	case strings.EqualFold(tok.Value, "false"):
		return &BoolLiteral{Value: false}, nil
	case strings.EqualFold(tok.Value, "null"):
		return &NullLiteral{}, nil
	}

	name := p.unquoteIdent(tok.Value)

	// Function call
	if p.stream.Peek().Type == TokenLParen {
		p.stream.Next()

		args, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}

		return &FuncCall{Name: name, Args: args}, nil
	}

	if strings.HasPrefix(name, "$") {
		return &Parameter{Name: strings.TrimPrefix(name, "$")}, nil
	}

	// Dotted access: n.name, n.address.city
	parts := []string{name}
	for p.stream.Peek().Type == TokenDot && p.stream.PeekNth(1).Type == TokenIdent {
		p.stream.Next() // dot
		parts = append(parts, p.unquoteIdent(p.stream.Next().Value))
	}

	if len(parts) > 1 {
		return &CompoundIdent{Parts: parts}, nil
	}

	return &Ident{Name: name}, nil
}

func (p *Parser) parseCallArgs() ([]Expr, error) {
	var args []Expr

	if p.stream.Peek().Type == TokenRParen {
		p.stream.Next()

		return args, nil
	}

	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		if p.stream.Peek().Type != TokenComma {
			break
		}

		p.stream.Next()
	}

	if err := p.expectToken(TokenRParen, ")"); err != nil {
		return nil, err
	}

	return args, nil
}

// parseMapLiteral parses {key: value, ...} including the braces. The dialect
// must support map literals.
func (p *Parser) parseMapLiteral() (Expr, error) {
	if !p.dialect.SupportsMapLiterals() {
		return nil, parseErrorf(p.stream.Pos(), "map literals are not supported by dialect "+p.dialect.Name())
	}

	if err := p.enterNesting(); err != nil {
		return nil, err
	}
	defer p.leaveNesting()

	if err := p.expectToken(TokenLBrace, "{"); err != nil {
		return nil, err
	}

	var entries []MapEntry

	if p.stream.Peek().Type == TokenRBrace {
		p.stream.Next()

		return &MapLiteral{}, nil
	}

	for {
		key, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}

		if err := p.expectToken(TokenColon, ":"); err != nil {
			return nil, err
		}

		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		entries = append(entries, MapEntry{Key: key, Value: value})

		if p.stream.Peek().Type != TokenComma {
			break
		}

		p.stream.Next()
	}

	if err := p.expectToken(TokenRBrace, "}"); err != nil {
		return nil, err
	}

	return &MapLiteral{Entries: entries}, nil
}

func (p *Parser) parseListLiteral() (Expr, error) {
	if err := p.enterNesting(); err != nil {
		return nil, err
	}
	defer p.leaveNesting()

	if err := p.expectToken(TokenLBracket, "["); err != nil {
		return nil, err
	}

	var values []Expr

	if p.stream.Peek().Type == TokenRBracket {
		p.stream.Next()

		return &ListLiteral{}, nil
	}

	for {
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		values = append(values, value)

		if p.stream.Peek().Type != TokenComma {
			break
		}

		p.stream.Next()
	}

	if err := p.expectToken(TokenRBracket, "]"); err != nil {
		return nil, err
	}

	return &ListLiteral{Values: values}, nil
}

// parseProjectionItems parses the comma-separated RETURN item list.
func (p *Parser) parseProjectionItems() ([]*ProjectionItem, error) {
	var items []*ProjectionItem

	for {
		item, err := p.parseProjectionItem()
		if err != nil {
			return nil, err
		}

		items = append(items, item)

		if p.stream.Peek().Type != TokenComma {
			return items, nil
		}

		p.stream.Next()
	}
}

func (p *Parser) parseProjectionItem() (*ProjectionItem, error) {
	tok := p.stream.Peek()
	if tok.Type == TokenOp && tok.Value == "*" {
		p.stream.Next()

		return &ProjectionItem{Wildcard: true}, nil
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	item := &ProjectionItem{Expr: expr}

	if p.parseKeyword("AS") {
		alias, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}

		item.Alias = alias
	}

	return item, nil
}

// parseOrderKeys parses the comma-separated ORDER BY key list.
func (p *Parser) parseOrderKeys() ([]*OrderKey, error) {
	var keys []*OrderKey

	for {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		key := &OrderKey{Expr: expr}

		switch {
		case p.parseKeyword("DESC"):
			key.Desc = true
		case p.parseKeyword("ASC"):
		}

		keys = append(keys, key)

		if p.stream.Peek().Type != TokenComma {
			return keys, nil
		}

		p.stream.Next()
	}
}

// unquoteString strips the surrounding quotes and resolves escapes.
func unquoteString(raw string) string {
	if len(raw) < 2 {
		return raw
	}

	inner := raw[1 : len(raw)-1]
	if !strings.ContainsRune(inner, '\\') {
		return inner
	}

	var b strings.Builder

	for i := 0; i < len(inner); i++ {
		ch := inner[i]
		if ch != '\\' || i == len(inner)-1 {
			b.WriteByte(ch)

			continue
		}

		i++

		switch inner[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(inner[i])
		}
	}

	return b.String()
}
