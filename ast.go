package cyphersql

import (
	"errors"
	"strconv"
	"strings"
)

// Pattern construction errors.
var (
	ErrEmptyPattern      = errors.New("pattern must contain at least one element")
	ErrPatternBoundary   = errors.New("pattern must start and end with a node")
	ErrPatternAlternate  = errors.New("pattern elements must alternate between nodes and relationships")
	ErrAdjacentRelations = errors.New("pattern cannot contain adjacent relationships")
)

// Statement is a parsed graph query statement. The variants are closed:
// MatchStatement, CreateStatement, MergeStatement, and DeleteStatement.
type Statement interface {
	String() string
	stmt()
}

// MatchStatement is MATCH pattern [WHERE condition] [RETURN items],
// optionally prefixed with OPTIONAL.
type MatchStatement struct {
	Optional bool
	Patterns []*Pattern
	Where    Expr
	Return   *ReturnClause
}

func (*MatchStatement) stmt() {}

func (s *MatchStatement) String() string {
	var b strings.Builder

	if s.Optional {
		b.WriteString("OPTIONAL ")
	}

	b.WriteString("MATCH ")
	writePatterns(&b, s.Patterns)

	if s.Where != nil {
		b.WriteString(" WHERE ")
		b.WriteString(s.Where.String())
	}

	if s.Return != nil {
		b.WriteString(" ")
		b.WriteString(s.Return.String())
	}

	return b.String()
}

// CreateStatement is CREATE pattern[, pattern...].
type CreateStatement struct {
	Patterns []*Pattern
}

func (*CreateStatement) stmt() {}

func (s *CreateStatement) String() string {
	var b strings.Builder

	b.WriteString("CREATE ")
	writePatterns(&b, s.Patterns)

	return b.String()
}

// MergeStatement is MERGE pattern [ON CREATE SET ...] [ON MATCH SET ...].
type MergeStatement struct {
	Patterns []*Pattern
	OnCreate []*SetClause
	OnMatch  []*SetClause
}

func (*MergeStatement) stmt() {}

func (s *MergeStatement) String() string {
	var b strings.Builder

	b.WriteString("MERGE ")
	writePatterns(&b, s.Patterns)

	if len(s.OnCreate) > 0 {
		b.WriteString(" ON CREATE SET ")
		writeSetClauses(&b, s.OnCreate)
	}

	if len(s.OnMatch) > 0 {
		b.WriteString(" ON MATCH SET ")
		writeSetClauses(&b, s.OnMatch)
	}

	return b.String()
}

// DeleteStatement is [DETACH] DELETE targets [WHERE condition].
type DeleteStatement struct {
	Detach  bool
	Targets []Expr
	Where   Expr
}

func (*DeleteStatement) stmt() {}

func (s *DeleteStatement) String() string {
	var b strings.Builder

	if s.Detach {
		b.WriteString("DETACH ")
	}

	b.WriteString("DELETE ")

	for i, target := range s.Targets {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(target.String())
	}

	if s.Where != nil {
		b.WriteString(" WHERE ")
		b.WriteString(s.Where.String())
	}

	return b.String()
}

// Pattern describes nodes and relationships in a graph. Elements alternate
// Node, Relationship, Node, ...; the first and last are always nodes. Use
// NewPattern to construct one; the invariant is enforced there, not by
// positional indexing at use sites.
type Pattern struct {
	elements []PatternElement
}

// NewPattern validates the alternation invariant and builds a Pattern.
func NewPattern(elements []PatternElement) (*Pattern, error) {
	if len(elements) == 0 {
		return nil, ErrEmptyPattern
	}

	for i, element := range elements {
		_, isNode := element.(*NodePattern)

		wantNode := i%2 == 0
		if isNode == wantNode {
			continue
		}

		if i == 0 {
			return nil, ErrPatternBoundary
		}

		if !isNode {
			if _, prevRel := elements[i-1].(*RelationshipPattern); prevRel {
				return nil, ErrAdjacentRelations
			}
		}

		return nil, ErrPatternAlternate
	}

	if _, ok := elements[len(elements)-1].(*NodePattern); !ok {
		return nil, ErrPatternBoundary
	}

	return &Pattern{elements: elements}, nil
}

// Elements returns the pattern's elements. The returned slice is a copy;
// patterns are immutable once constructed.
func (p *Pattern) Elements() []PatternElement {
	out := make([]PatternElement, len(p.elements))
	copy(out, p.elements)

	return out
}

func (p *Pattern) String() string {
	var b strings.Builder

	for _, element := range p.elements {
		b.WriteString(element.String())
	}

	return b.String()
}

// PatternElement is either a NodePattern or a RelationshipPattern.
type PatternElement interface {
	String() string
	patternElement()
}

// NodePattern is (variable?:Label1:Label2... {properties}?). Labels keep
// declaration order and are not deduplicated.
type NodePattern struct {
	Variable   string
	Labels     []string
	Properties Expr
}

func (*NodePattern) patternElement() {}

func (n *NodePattern) String() string {
	var b strings.Builder

	b.WriteString("(")
	b.WriteString(n.Variable)

	for _, label := range n.Labels {
		b.WriteString(":")
		b.WriteString(label)
	}

	if n.Properties != nil {
		b.WriteString(" ")
		b.WriteString(n.Properties.String())
	}

	b.WriteString(")")

	return b.String()
}

// Direction of a relationship.
type Direction int

// Relationship directions.
const (
	DirectionNone  Direction = iota // -[...]-
	DirectionLeft                   // <-[...]-
	DirectionRight                  // -[...]->
	DirectionBoth                   // <-[...]->
)

func (d Direction) String() string {
	switch d {
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	case DirectionBoth:
		return "both"
	default:
		return "none"
	}
}

// RelationshipPattern is a direction-bracketed relationship. Types carry OR
// semantics: the relationship matches any of them.
type RelationshipPattern struct {
	Variable   string
	Types      []string
	Properties Expr
	Direction  Direction
	Length     RelationshipLength
}

func (*RelationshipPattern) patternElement() {}

// String renders the relationship with its connecting dashes so that
// canonical output re-parses: a leading < for Left and Both, a trailing >
// for Right and Both. Both therefore renders with markers on both sides,
// which is preserved behavior.
func (r *RelationshipPattern) String() string {
	var b strings.Builder

	if r.Direction == DirectionLeft || r.Direction == DirectionBoth {
		b.WriteString("<")
	}

	b.WriteString("-[")
	b.WriteString(r.Variable)

	for i, relType := range r.Types {
		if i == 0 {
			b.WriteString(":")
		} else {
			b.WriteString("|")
		}

		b.WriteString(relType)
	}

	if r.Length != nil {
		b.WriteString(r.Length.String())
	}

	if r.Properties != nil {
		b.WriteString(" ")
		b.WriteString(r.Properties.String())
	}

	b.WriteString("]-")

	if r.Direction == DirectionRight || r.Direction == DirectionBoth {
		b.WriteString(">")
	}

	return b.String()
}

// RelationshipLength is a variable-length path specification. Variants:
// ExactLength (*n), RangeLength (*min..max with either bound optional), and
// VariableLength (*). A RangeLength with both bounds absent is semantically
// identical to VariableLength but stays a distinct representation.
type RelationshipLength interface {
	String() string
	relationshipLength()
}

// ExactLength is *n.
type ExactLength struct {
	Count uint64
}

func (*ExactLength) relationshipLength() {}

func (l *ExactLength) String() string {
	return "*" + strconv.FormatUint(l.Count, 10)
}

// RangeLength is *min..max; either bound may be absent.
type RangeLength struct {
	Min *uint64
	Max *uint64
}

func (*RangeLength) relationshipLength() {}

func (l *RangeLength) String() string {
	var b strings.Builder

	b.WriteString("*")

	if l.Min != nil {
		b.WriteString(strconv.FormatUint(*l.Min, 10))
	}

	b.WriteString("..")

	if l.Max != nil {
		b.WriteString(strconv.FormatUint(*l.Max, 10))
	}

	return b.String()
}

// VariableLength is a bare *.
type VariableLength struct{}

func (*VariableLength) relationshipLength() {}

func (*VariableLength) String() string { return "*" }

// ReturnClause renders DISTINCT, items, ORDER BY, SKIP, LIMIT in that fixed
// order. SKIP must textually precede LIMIT in the source; that is a grammar
// constraint, not a defect.
type ReturnClause struct {
	Distinct bool
	Items    []*ProjectionItem
	OrderBy  []*OrderKey
	Limit    Expr
	Skip     Expr
}

func (r *ReturnClause) String() string {
	var b strings.Builder

	b.WriteString("RETURN")

	if r.Distinct {
		b.WriteString(" DISTINCT")
	}

	b.WriteString(" ")

	for i, item := range r.Items {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(item.String())
	}

	if len(r.OrderBy) > 0 {
		b.WriteString(" ORDER BY ")

		for i, key := range r.OrderBy {
			if i > 0 {
				b.WriteString(", ")
			}

			b.WriteString(key.String())
		}
	}

	if r.Skip != nil {
		b.WriteString(" SKIP ")
		b.WriteString(r.Skip.String())
	}

	if r.Limit != nil {
		b.WriteString(" LIMIT ")
		b.WriteString(r.Limit.String())
	}

	return b.String()
}

// ProjectionItem is a single RETURN item: either the * wildcard or an
// expression with an optional alias.
type ProjectionItem struct {
	Wildcard bool
	Expr     Expr
	Alias    string
}

func (p *ProjectionItem) String() string {
	if p.Wildcard {
		return "*"
	}

	if p.Alias != "" {
		return p.Expr.String() + " AS " + p.Alias
	}

	return p.Expr.String()
}

// OrderKey is a single ORDER BY key. Ascending is the default and renders
// without a direction keyword.
type OrderKey struct {
	Expr Expr
	Desc bool
}

func (k *OrderKey) String() string {
	if k.Desc {
		return k.Expr.String() + " DESC"
	}

	return k.Expr.String()
}

// SetClause assigns a value to a target: variable.property, a bare
// variable, or variable:Label.
type SetClause struct {
	Target SetTarget
	Value  Expr
}

func (c *SetClause) String() string {
	if c.Value == nil {
		return c.Target.String()
	}

	return c.Target.String() + " = " + c.Value.String()
}

// SetTarget is the left side of a SET clause.
type SetTarget interface {
	String() string
	setTarget()
}

// PropertyTarget sets variable.property.
type PropertyTarget struct {
	Variable string
	Property string
}

func (*PropertyTarget) setTarget() {}

func (t *PropertyTarget) String() string {
	return t.Variable + "." + t.Property
}

// VariableTarget replaces an entire node or relationship.
type VariableTarget struct {
	Variable string
}

func (*VariableTarget) setTarget() {}

func (t *VariableTarget) String() string { return t.Variable }

// LabelTarget adds a label: variable:Label.
type LabelTarget struct {
	Variable string
	Label    string
}

func (*LabelTarget) setTarget() {}

func (t *LabelTarget) String() string {
	return t.Variable + ":" + t.Label
}

func writePatterns(b *strings.Builder, patterns []*Pattern) {
	for i, pattern := range patterns {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(pattern.String())
	}
}

func writeSetClauses(b *strings.Builder, clauses []*SetClause) {
	for i, clause := range clauses {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(clause.String())
	}
}
