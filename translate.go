package cyphersql

import (
	"strconv"
	"strings"

	"github.com/rlch/cyphersql/sqlast"
)

// Translate maps a parsed statement onto the relational schema described by
// cfg. MATCH becomes a SELECT, CREATE a sequence of INSERTs, MERGE an
// UPDATE/INSERT upsert pair, and DELETE one or two DELETEs.
func Translate(stmt Statement, cfg SchemaConfig) ([]sqlast.Statement, error) {
	t := &translator{cfg: cfg}

	switch s := stmt.(type) {
	case *MatchStatement:
		return t.translateMatch(s)
	case *CreateStatement:
		return t.translateCreate(s)
	case *MergeStatement:
		return t.translateMerge(s)
	case *DeleteStatement:
		return t.translateDelete(s)
	}

	return nil, translateErrorf("unsupported statement type")
}

// translator carries the schema config and the alias counters. Counters are
// never reset between patterns so synthesized aliases stay unique across a
// whole statement.
type translator struct {
	cfg       SchemaConfig
	nodeCount int
	relCount  int
}

// nodeTable picks the table a node pattern maps to: the first label when
// label tables are enabled, otherwise the shared node table.
func (t *translator) nodeTable(labels []string) string {
	if t.cfg.UseLabelTables && len(labels) > 0 {
		return labels[0]
	}

	return t.cfg.NodeTable
}

func (t *translator) nodeAlias(node *NodePattern) string {
	t.nodeCount++

	if node.Variable != "" {
		return node.Variable
	}

	return "n" + strconv.Itoa(t.nodeCount)
}

func (t *translator) relAlias(rel *RelationshipPattern) string {
	t.relCount++

	if rel.Variable != "" {
		return rel.Variable
	}

	return "r" + strconv.Itoa(t.relCount)
}

func (t *translator) translateMatch(stmt *MatchStatement) ([]sqlast.Statement, error) {
	sel := &sqlast.SelectStatement{}

	var conds []sqlast.Expr

	for _, pattern := range stmt.Patterns {
		if err := t.matchPattern(pattern, sel, &conds); err != nil {
			return nil, err
		}
	}

	// The source WHERE clause goes through verbatim, after the conditions
	// derived from the patterns.
	if stmt.Where != nil {
		conds = append(conds, &sqlast.Raw{SQL: stmt.Where.String()})
	}

	sel.Where = sqlast.And(conds...)

	if err := t.matchProjection(stmt.Return, sel); err != nil {
		return nil, err
	}

	return []sqlast.Statement{sel}, nil
}

// matchPattern adds tables, joins, and predicate conditions for one pattern.
// The first node of the first pattern becomes the FROM table; the first node
// of every later pattern joins ON TRUE since nothing relates it yet.
// Relationship endpoints drive the remaining join conditions: for a
// left-pointing relationship the roles of from_id and to_id swap.
// Relationship lengths are not encoded in the joins; every relationship
// matches a single hop regardless of its length spec.
func (t *translator) matchPattern(pattern *Pattern, sel *sqlast.SelectStatement, conds *[]sqlast.Expr) error {
	elements := pattern.Elements()

	first, ok := elements[0].(*NodePattern)
	if !ok {
		return translateErrorf("pattern must start with a node")
	}

	prevAlias := t.nodeAlias(first)
	firstRef := &sqlast.TableRef{Table: t.nodeTable(first.Labels), Alias: prevAlias}

	if sel.From == nil {
		sel.From = firstRef
	} else {
		sel.Joins = append(sel.Joins, sqlast.Join{Table: firstRef})
	}

	t.nodeConds(first, prevAlias, conds)

	for i := 1; i < len(elements); i += 2 {
		rel := elements[i].(*RelationshipPattern)
		next := elements[i+1].(*NodePattern)

		relAlias := t.relAlias(rel)
		nextAlias := t.nodeAlias(next)

		// The relationship join may only reference aliases already in
		// scope, so the previous node binds in the first ON and the next
		// node in the second. A left-pointing relationship swaps which
		// endpoint column each node matches.
		prevColumn, nextColumn := "from_id", "to_id"
		if rel.Direction == DirectionLeft {
			prevColumn, nextColumn = "to_id", "from_id"
		}

		sel.Joins = append(sel.Joins,
			sqlast.Join{
				Table: &sqlast.TableRef{Table: t.cfg.RelationshipTable, Alias: relAlias},
				On: &sqlast.Binary{
					Left:  &sqlast.Qualified{Table: prevAlias, Column: "id"},
					Op:    "=",
					Right: &sqlast.Qualified{Table: relAlias, Column: prevColumn},
				},
			},
			sqlast.Join{
				Table: &sqlast.TableRef{Table: t.nodeTable(next.Labels), Alias: nextAlias},
				On: &sqlast.Binary{
					Left:  &sqlast.Qualified{Table: relAlias, Column: nextColumn},
					Op:    "=",
					Right: &sqlast.Qualified{Table: nextAlias, Column: "id"},
				},
			},
		)

		t.relConds(rel, relAlias, conds)
		t.nodeConds(next, nextAlias, conds)

		prevAlias = nextAlias
	}

	return nil
}

// nodeConds appends label and property conditions for a node. Label
// conditions only apply on the shared node table; with label tables the
// table choice already constrains the label.
func (t *translator) nodeConds(node *NodePattern, alias string, conds *[]sqlast.Expr) {
	if !t.cfg.UseLabelTables {
		for _, label := range node.Labels {
			*conds = append(*conds, &sqlast.Binary{
				Left:  &sqlast.Qualified{Table: alias, Column: "label"},
				Op:    "=",
				Right: &sqlast.String{Value: label},
			})
		}
	}

	t.propertyConds(node.Properties, alias, conds)
}

// relConds appends type and property conditions for a relationship.
// Multiple types combine with OR: the relationship matches any of them.
func (t *translator) relConds(rel *RelationshipPattern, alias string, conds *[]sqlast.Expr) {
	if len(rel.Types) > 0 {
		typeConds := make([]sqlast.Expr, len(rel.Types))
		for i, relType := range rel.Types {
			typeConds[i] = &sqlast.Binary{
				Left:  &sqlast.Qualified{Table: alias, Column: "type"},
				Op:    "=",
				Right: &sqlast.String{Value: relType},
			}
		}

		cond := sqlast.Or(typeConds...)
		if len(typeConds) > 1 {
			cond = &sqlast.Paren{Expr: cond}
		}

		*conds = append(*conds, cond)
	}

	t.propertyConds(rel.Properties, alias, conds)
}

// propertyConds turns an inline {key: value} map into equality conditions
// over json_extract.
func (t *translator) propertyConds(props Expr, alias string, conds *[]sqlast.Expr) {
	mapLit, ok := props.(*MapLiteral)
	if !ok {
		return
	}

	for _, entry := range mapLit.Entries {
		*conds = append(*conds, &sqlast.Binary{
			Left:  jsonExtract(alias, entry.Key),
			Op:    "=",
			Right: literalExpr(entry.Value),
		})
	}
}

func (t *translator) matchProjection(ret *ReturnClause, sel *sqlast.SelectStatement) error {
	if ret == nil {
		sel.Items = []sqlast.SelectItem{{Expr: &sqlast.Raw{SQL: "*"}}}

		return nil
	}

	sel.Distinct = ret.Distinct

	for _, item := range ret.Items {
		sel.Items = append(sel.Items, t.projectItem(item))
	}

	for _, key := range ret.OrderBy {
		sel.OrderBy = append(sel.OrderBy, sqlast.OrderKey{
			Expr: t.projectExpr(key.Expr),
			Desc: key.Desc,
		})
	}

	if ret.Limit != nil {
		sel.Limit = &sqlast.Raw{SQL: ret.Limit.String()}
	}

	if ret.Skip != nil {
		sel.Offset = &sqlast.Raw{SQL: ret.Skip.String()}
	}

	return nil
}

// projectItem renders one RETURN item. A property access like n.name becomes
// json_extract(n.properties, '$.name') and keeps the property name as an
// implicit alias so result columns stay readable.
func (t *translator) projectItem(item *ProjectionItem) sqlast.SelectItem {
	if item.Wildcard {
		return sqlast.SelectItem{Expr: &sqlast.Raw{SQL: "*"}}
	}

	out := sqlast.SelectItem{Expr: t.projectExpr(item.Expr), Alias: item.Alias}

	if compound, ok := item.Expr.(*CompoundIdent); ok && out.Alias == "" {
		out.Alias = compound.Parts[len(compound.Parts)-1]
		out.Implicit = true
	}

	return out
}

// projectExpr rewrites property accesses in projections and order keys;
// anything else renders verbatim.
func (t *translator) projectExpr(expr Expr) sqlast.Expr { //nolint:ireturn
	if compound, ok := expr.(*CompoundIdent); ok && len(compound.Parts) > 1 {
		return jsonExtract(compound.Parts[0], strings.Join(compound.Parts[1:], "."))
	}

	return &sqlast.Raw{SQL: expr.String()}
}

func (t *translator) translateCreate(stmt *CreateStatement) ([]sqlast.Statement, error) {
	var nodeInserts, relInserts []sqlast.Statement

	for _, pattern := range stmt.Patterns {
		elements := pattern.Elements()

		for i, element := range elements {
			switch e := element.(type) {
			case *NodePattern:
				insert, err := t.insertNode(e)
				if err != nil {
					return nil, err
				}

				nodeInserts = append(nodeInserts, insert)
			case *RelationshipPattern:
				from := elements[i-1].(*NodePattern)
				to := elements[i+1].(*NodePattern)

				insert, err := t.insertRelationship(e, from, to)
				if err != nil {
					return nil, err
				}

				relInserts = append(relInserts, insert)
			}
		}
	}

	// Node rows must exist before the relationship endpoint subqueries can
	// resolve them.
	return append(nodeInserts, relInserts...), nil
}

func (t *translator) insertNode(node *NodePattern) (*sqlast.InsertStatement, error) {
	props, err := propertiesJSON(node.Properties, nil)
	if err != nil {
		return nil, err
	}

	if t.cfg.UseLabelTables && len(node.Labels) > 0 {
		return &sqlast.InsertStatement{
			Table:   t.nodeTable(node.Labels),
			Columns: []string{"properties"},
			Values:  []sqlast.Expr{props},
		}, nil
	}

	return &sqlast.InsertStatement{
		Table:   t.cfg.NodeTable,
		Columns: []string{"label", "properties"},
		Values:  []sqlast.Expr{labelExpr(node.Labels), props},
	}, nil
}

func (t *translator) insertRelationship(rel *RelationshipPattern, from, to *NodePattern) (*sqlast.InsertStatement, error) {
	if rel.Direction == DirectionLeft {
		from, to = to, from
	}

	props, err := propertiesJSON(rel.Properties, nil)
	if err != nil {
		return nil, err
	}

	relType := sqlast.Expr(&sqlast.Null{})
	if len(rel.Types) > 0 {
		relType = &sqlast.String{Value: rel.Types[0]}
	}

	fromID, err := t.nodeIDSubquery(from)
	if err != nil {
		return nil, err
	}

	toID, err := t.nodeIDSubquery(to)
	if err != nil {
		return nil, err
	}

	return &sqlast.InsertStatement{
		Table:   t.cfg.RelationshipTable,
		Columns: []string{"from_id", "to_id", "type", "properties"},
		Values:  []sqlast.Expr{fromID, toID, relType, props},
	}, nil
}

// nodeIDSubquery resolves a relationship endpoint to the most recently
// inserted node matching the endpoint's label and properties.
func (t *translator) nodeIDSubquery(node *NodePattern) (*sqlast.Subquery, error) {
	conds, err := t.bareNodeConds(node)
	if err != nil {
		return nil, err
	}

	return &sqlast.Subquery{
		Select: &sqlast.SelectStatement{
			Items: []sqlast.SelectItem{{Expr: &sqlast.FuncCall{Name: "max", Args: []sqlast.Expr{&sqlast.Ident{Name: "id"}}}}},
			From:  &sqlast.TableRef{Table: t.nodeTable(node.Labels)},
			Where: sqlast.And(conds...),
		},
	}, nil
}

// bareNodeConds builds label and property conditions with unqualified
// columns, for statements that address a table without an alias.
func (t *translator) bareNodeConds(node *NodePattern) ([]sqlast.Expr, error) {
	var conds []sqlast.Expr

	if !t.cfg.UseLabelTables {
		for _, label := range node.Labels {
			conds = append(conds, &sqlast.Binary{
				Left:  &sqlast.Ident{Name: "label"},
				Op:    "=",
				Right: &sqlast.String{Value: label},
			})
		}
	}

	if node.Properties != nil {
		mapLit, ok := node.Properties.(*MapLiteral)
		if !ok {
			return nil, translateErrorf("node properties must be a map literal")
		}

		for _, entry := range mapLit.Entries {
			conds = append(conds, &sqlast.Binary{
				Left:  bareJSONExtract(entry.Key),
				Op:    "=",
				Right: literalExpr(entry.Value),
			})
		}
	}

	return conds, nil
}

// translateMerge emits an upsert pair per node: an UPDATE applying the ON
// MATCH clauses to existing rows, then an INSERT ... SELECT guarded by NOT
// EXISTS, with ON CREATE values folded into the inserted properties.
func (t *translator) translateMerge(stmt *MergeStatement) ([]sqlast.Statement, error) {
	var statements []sqlast.Statement

	for _, pattern := range stmt.Patterns {
		elements := pattern.Elements()
		if len(elements) != 1 {
			return nil, translateErrorf("MERGE with relationship patterns is not supported")
		}

		node := elements[0].(*NodePattern)

		conds, err := t.bareNodeConds(node)
		if err != nil {
			return nil, err
		}

		if len(stmt.OnMatch) > 0 {
			update, err := t.mergeUpdate(node, conds, stmt.OnMatch)
			if err != nil {
				return nil, err
			}

			statements = append(statements, update)
		}

		insert, err := t.mergeInsert(node, conds, stmt.OnCreate)
		if err != nil {
			return nil, err
		}

		statements = append(statements, insert)
	}

	return statements, nil
}

func (t *translator) mergeUpdate(node *NodePattern, conds []sqlast.Expr, onMatch []*SetClause) (*sqlast.UpdateStatement, error) {
	args := []sqlast.Expr{&sqlast.Ident{Name: "properties"}}

	for _, clause := range onMatch {
		target, ok := clause.Target.(*PropertyTarget)
		if !ok {
			return nil, translateErrorf("only property SET targets are supported in MERGE")
		}

		args = append(args, &sqlast.String{Value: "$." + target.Property}, literalExpr(clause.Value))
	}

	return &sqlast.UpdateStatement{
		Table: t.nodeTable(node.Labels),
		Set: []sqlast.Assignment{{
			Column: "properties",
			Value:  &sqlast.FuncCall{Name: "json_set", Args: args},
		}},
		Where: sqlast.And(conds...),
	}, nil
}

func (t *translator) mergeInsert(node *NodePattern, conds []sqlast.Expr, onCreate []*SetClause) (*sqlast.InsertStatement, error) {
	props, err := propertiesJSON(node.Properties, onCreate)
	if err != nil {
		return nil, err
	}

	guard := &sqlast.Exists{
		Not: true,
		Select: &sqlast.SelectStatement{
			Items: []sqlast.SelectItem{{Expr: &sqlast.Number{Value: "1"}}},
			From:  &sqlast.TableRef{Table: t.nodeTable(node.Labels)},
			Where: sqlast.And(conds...),
		},
	}

	columns := []string{"label", "properties"}
	items := []sqlast.SelectItem{{Expr: labelExpr(node.Labels)}, {Expr: props}}

	if t.cfg.UseLabelTables && len(node.Labels) > 0 {
		columns = []string{"properties"}
		items = items[1:]
	}

	return &sqlast.InsertStatement{
		Table:   t.nodeTable(node.Labels),
		Columns: columns,
		Select: &sqlast.SelectStatement{
			Items: items,
			Where: guard,
		},
	}, nil
}

// translateDelete deletes from the node table using the rewritten WHERE
// predicate. DETACH first removes relationships touching the doomed nodes.
func (t *translator) translateDelete(stmt *DeleteStatement) ([]sqlast.Statement, error) {
	where, err := t.bareExpr(stmt.Where)
	if err != nil {
		return nil, err
	}

	nodeDelete := &sqlast.DeleteStatement{Table: t.cfg.NodeTable, Where: where}

	if !stmt.Detach {
		return []sqlast.Statement{nodeDelete}, nil
	}

	relDelete := &sqlast.DeleteStatement{Table: t.cfg.RelationshipTable}

	if where != nil {
		ids := func() *sqlast.SelectStatement {
			return &sqlast.SelectStatement{
				Items: []sqlast.SelectItem{{Expr: &sqlast.Ident{Name: "id"}}},
				From:  &sqlast.TableRef{Table: t.cfg.NodeTable},
				Where: where,
			}
		}

		relDelete.Where = sqlast.Or(
			&sqlast.InSubquery{Expr: &sqlast.Ident{Name: "from_id"}, Select: ids()},
			&sqlast.InSubquery{Expr: &sqlast.Ident{Name: "to_id"}, Select: ids()},
		)
	}

	return []sqlast.Statement{relDelete, nodeDelete}, nil
}

// bareExpr rewrites an expression for statements without table aliases:
// variable.property becomes json_extract(properties, '$.property') and the
// variable qualifier drops away.
func (t *translator) bareExpr(expr Expr) (sqlast.Expr, error) { //nolint:ireturn
	if expr == nil {
		return nil, nil
	}

	switch e := expr.(type) {
	case *CompoundIdent:
		return bareJSONExtract(strings.Join(e.Parts[1:], ".")), nil
	case *Ident:
		return &sqlast.Ident{Name: e.Name}, nil
	case *BinaryExpr:
		left, err := t.bareExpr(e.Left)
		if err != nil {
			return nil, err
		}

		right, err := t.bareExpr(e.Right)
		if err != nil {
			return nil, err
		}

		return &sqlast.Binary{Left: left, Op: e.Op, Right: right}, nil
	case *UnaryExpr:
		operand, err := t.bareExpr(e.Operand)
		if err != nil {
			return nil, err
		}

		if e.Op == "-" {
			return &sqlast.Raw{SQL: "-" + operand.String()}, nil
		}

		return &sqlast.Raw{SQL: e.Op + " " + operand.String()}, nil
	case *ParenExpr:
		inner, err := t.bareExpr(e.Expr)
		if err != nil {
			return nil, err
		}

		return &sqlast.Paren{Expr: inner}, nil
	case *StringLiteral, *NumberLiteral, *BoolLiteral, *NullLiteral, *Parameter:
		return literalExpr(expr), nil
	}

	return nil, translateErrorf("unsupported expression in DELETE: " + expr.String())
}

// propertiesJSON renders a property map plus optional ON CREATE assignments
// as a json_object call, or the empty object literal when both are absent.
func propertiesJSON(props Expr, onCreate []*SetClause) (sqlast.Expr, error) { //nolint:ireturn
	var args []sqlast.Expr

	if props != nil {
		mapLit, ok := props.(*MapLiteral)
		if !ok {
			return nil, translateErrorf("properties must be a map literal")
		}

		for _, entry := range mapLit.Entries {
			args = append(args, &sqlast.String{Value: entry.Key}, literalExpr(entry.Value))
		}
	}

	for _, clause := range onCreate {
		target, ok := clause.Target.(*PropertyTarget)
		if !ok {
			return nil, translateErrorf("only property SET targets are supported in MERGE")
		}

		args = append(args, &sqlast.String{Value: target.Property}, literalExpr(clause.Value))
	}

	if len(args) == 0 {
		return &sqlast.String{Value: "{}"}, nil
	}

	return &sqlast.FuncCall{Name: "json_object", Args: args}, nil
}

// literalExpr converts a literal value expression to its SQL counterpart.
// Anything non-literal renders verbatim.
func literalExpr(expr Expr) sqlast.Expr { //nolint:ireturn
	switch e := expr.(type) {
	case *StringLiteral:
		return &sqlast.String{Value: e.Value}
	case *NumberLiteral:
		return &sqlast.Number{Value: e.Value}
	case *BoolLiteral:
		return &sqlast.Bool{Value: e.Value}
	case *NullLiteral:
		return &sqlast.Null{}
	}

	return &sqlast.Raw{SQL: expr.String()}
}

func labelExpr(labels []string) sqlast.Expr { //nolint:ireturn
	if len(labels) == 0 {
		return &sqlast.Null{}
	}

	return &sqlast.String{Value: labels[0]}
}

func jsonExtract(alias, path string) *sqlast.FuncCall {
	return &sqlast.FuncCall{
		Name: "json_extract",
		Args: []sqlast.Expr{
			&sqlast.Qualified{Table: alias, Column: "properties"},
			&sqlast.String{Value: "$." + path},
		},
	}
}

func bareJSONExtract(path string) *sqlast.FuncCall {
	return &sqlast.FuncCall{
		Name: "json_extract",
		Args: []sqlast.Expr{
			&sqlast.Ident{Name: "properties"},
			&sqlast.String{Value: "$." + path},
		},
	}
}
