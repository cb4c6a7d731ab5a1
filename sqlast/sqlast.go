// Package sqlast models the relational statements the translator emits. It
// is a rendering AST, not a general SQL parser: every node knows how to
// print itself as SQL text and nothing reads SQL back in.
package sqlast

import "strings"

// Statement is a renderable SQL statement.
type Statement interface {
	String() string
	stmt()
}

// SelectStatement is a SELECT with optional joins, filtering, ordering, and
// pagination.
type SelectStatement struct {
	Distinct bool
	Items    []SelectItem
	From     *TableRef
	Joins    []Join
	Where    Expr
	OrderBy  []OrderKey
	Limit    Expr
	Offset   Expr
}

func (*SelectStatement) stmt() {}

func (s *SelectStatement) String() string {
	var b strings.Builder

	b.WriteString("SELECT ")

	if s.Distinct {
		b.WriteString("DISTINCT ")
	}

	for i, item := range s.Items {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(item.String())
	}

	if s.From != nil {
		b.WriteString(" FROM ")
		b.WriteString(s.From.String())
	}

	for _, join := range s.Joins {
		b.WriteString(" ")
		b.WriteString(join.String())
	}

	if s.Where != nil {
		b.WriteString(" WHERE ")
		b.WriteString(s.Where.String())
	}

	if len(s.OrderBy) > 0 {
		b.WriteString(" ORDER BY ")

		for i, key := range s.OrderBy {
			if i > 0 {
				b.WriteString(", ")
			}

			b.WriteString(key.String())
		}
	}

	if s.Limit != nil {
		b.WriteString(" LIMIT ")
		b.WriteString(s.Limit.String())
	}

	if s.Offset != nil {
		b.WriteString(" OFFSET ")
		b.WriteString(s.Offset.String())
	}

	return b.String()
}

// InsertStatement is INSERT INTO table (columns) followed by either a VALUES
// row or a SELECT source.
type InsertStatement struct {
	Table   string
	Columns []string
	Values  []Expr
	Select  *SelectStatement
}

func (*InsertStatement) stmt() {}

func (s *InsertStatement) String() string {
	var b strings.Builder

	b.WriteString("INSERT INTO ")
	b.WriteString(s.Table)
	b.WriteString(" (")
	b.WriteString(strings.Join(s.Columns, ", "))
	b.WriteString(") ")

	if s.Select != nil {
		b.WriteString(s.Select.String())

		return b.String()
	}

	b.WriteString("VALUES (")

	for i, value := range s.Values {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(value.String())
	}

	b.WriteString(")")

	return b.String()
}

// Assignment is one column = value pair in an UPDATE.
type Assignment struct {
	Column string
	Value  Expr
}

func (a Assignment) String() string {
	return a.Column + " = " + a.Value.String()
}

// UpdateStatement is UPDATE table SET assignments [WHERE condition].
type UpdateStatement struct {
	Table string
	Set   []Assignment
	Where Expr
}

func (*UpdateStatement) stmt() {}

func (s *UpdateStatement) String() string {
	var b strings.Builder

	b.WriteString("UPDATE ")
	b.WriteString(s.Table)
	b.WriteString(" SET ")

	for i, assignment := range s.Set {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(assignment.String())
	}

	if s.Where != nil {
		b.WriteString(" WHERE ")
		b.WriteString(s.Where.String())
	}

	return b.String()
}

// DeleteStatement is DELETE FROM table [WHERE condition].
type DeleteStatement struct {
	Table string
	Where Expr
}

func (*DeleteStatement) stmt() {}

func (s *DeleteStatement) String() string {
	var b strings.Builder

	b.WriteString("DELETE FROM ")
	b.WriteString(s.Table)

	if s.Where != nil {
		b.WriteString(" WHERE ")
		b.WriteString(s.Where.String())
	}

	return b.String()
}

// TableRef is a table with an optional alias.
type TableRef struct {
	Table string
	Alias string
}

func (t *TableRef) String() string {
	if t.Alias == "" {
		return t.Table
	}

	return t.Table + " " + t.Alias
}

// Join is an inner join. A nil On condition renders as ON TRUE, the cross
// join spelling used when a new pattern starts with no shared variable.
type Join struct {
	Table *TableRef
	On    Expr
}

func (j Join) String() string {
	if j.On == nil {
		return "JOIN " + j.Table.String() + " ON TRUE"
	}

	return "JOIN " + j.Table.String() + " ON " + j.On.String()
}

// SelectItem is a projected expression. Implicit marks aliases synthesized
// by the translator, which render with a lowercase "as"; explicit aliases
// from the source render with "AS".
type SelectItem struct {
	Expr     Expr
	Alias    string
	Implicit bool
}

func (s SelectItem) String() string {
	if s.Alias == "" {
		return s.Expr.String()
	}

	if s.Implicit {
		return s.Expr.String() + " as " + s.Alias
	}

	return s.Expr.String() + " AS " + s.Alias
}

// OrderKey is one ORDER BY key.
type OrderKey struct {
	Expr Expr
	Desc bool
}

func (k OrderKey) String() string {
	if k.Desc {
		return k.Expr.String() + " DESC"
	}

	return k.Expr.String() + " ASC"
}

// Expr is a renderable SQL expression.
type Expr interface {
	String() string
	expr()
}

// Raw is verbatim SQL text. The translator uses it for fragments it has
// already rendered, such as rewritten predicate text.
type Raw struct {
	SQL string
}

func (*Raw) expr() {}

func (e *Raw) String() string { return e.SQL }

// Ident is an unqualified column or alias reference.
type Ident struct {
	Name string
}

func (*Ident) expr() {}

func (e *Ident) String() string { return e.Name }

// Qualified is an alias.column reference.
type Qualified struct {
	Table  string
	Column string
}

func (*Qualified) expr() {}

func (e *Qualified) String() string { return e.Table + "." + e.Column }

// String is a single-quoted SQL string literal; embedded quotes double.
type String struct {
	Value string
}

func (*String) expr() {}

func (e *String) String() string {
	return "'" + strings.ReplaceAll(e.Value, "'", "''") + "'"
}

// Number keeps the literal text of a numeric value.
type Number struct {
	Value string
}

func (*Number) expr() {}

func (e *Number) String() string { return e.Value }

// Bool renders TRUE or FALSE.
type Bool struct {
	Value bool
}

func (*Bool) expr() {}

func (e *Bool) String() string {
	if e.Value {
		return "TRUE"
	}

	return "FALSE"
}

// Null renders NULL.
type Null struct{}

func (*Null) expr() {}

func (*Null) String() string { return "NULL" }

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

// Binary is a binary operation rendered with single spaces around Op.
type Binary struct {
	Left  Expr
	Op    string
	Right Expr
}

func (*Binary) expr() {}

func (e *Binary) String() string {
	return e.Left.String() + " " + e.Op + " " + e.Right.String()
}

// Paren is explicit grouping.
type Paren struct {
	Expr Expr
}

func (*Paren) expr() {}

func (e *Paren) String() string { return "(" + e.Expr.String() + ")" }

// Subquery is a parenthesized scalar subquery.
type Subquery struct {
	Select *SelectStatement
}

func (*Subquery) expr() {}

func (e *Subquery) String() string { return "(" + e.Select.String() + ")" }

// InSubquery is expr IN (select).
type InSubquery struct {
	Expr   Expr
	Select *SelectStatement
}

func (*InSubquery) expr() {}

func (e *InSubquery) String() string {
	return e.Expr.String() + " IN (" + e.Select.String() + ")"
}

// Exists is [NOT] EXISTS (select).
type Exists struct {
	Not    bool
	Select *SelectStatement
}

func (*Exists) expr() {}

func (e *Exists) String() string {
	if e.Not {
		return "NOT EXISTS (" + e.Select.String() + ")"
	}

	return "EXISTS (" + e.Select.String() + ")"
}

// And folds conditions into a left-nested AND chain. Nil inputs are skipped;
// an empty input returns nil.
func And(conds ...Expr) Expr { //nolint:ireturn
	var out Expr

	for _, cond := range conds {
		if cond == nil {
			continue
		}

		if out == nil {
			out = cond

			continue
		}

		out = &Binary{Left: out, Op: "AND", Right: cond}
	}

	return out
}

// Or folds conditions into a left-nested OR chain. Nil inputs are skipped.
func Or(conds ...Expr) Expr { //nolint:ireturn
	var out Expr

	for _, cond := range conds {
		if cond == nil {
			continue
		}

		if out == nil {
			out = cond

			continue
		}

		out = &Binary{Left: out, Op: "OR", Right: cond}
	}

	return out
}
