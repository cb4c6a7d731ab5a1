// Package cyphersql parses Cypher-style graph queries and translates them
// into SQL over a configurable relational schema. The pipeline is three
// stages: a dialect-driven tokenizer, a recursive descent parser producing a
// typed statement AST, and a translator emitting sqlast statements that
// render as SQL text.
package cyphersql

import "github.com/rlch/cyphersql/sqlast"

// Transpile parses a single query and renders the SQL statements it maps
// to. Every caller goes through this one path; there is no secondary
// translation mode.
func Transpile(query string, cfg SchemaConfig) ([]string, error) {
	stmts, err := TranspileStatements(query, cfg)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(stmts))
	for i, stmt := range stmts {
		out[i] = stmt.String()
	}

	return out, nil
}

// TranspileStatements is Transpile without the final rendering, for callers
// that want to inspect or post-process the SQL AST.
func TranspileStatements(query string, cfg SchemaConfig) ([]sqlast.Statement, error) {
	stmt, err := Parse(CypherDialect{}, query)
	if err != nil {
		return nil, err
	}

	return Translate(stmt, cfg)
}
