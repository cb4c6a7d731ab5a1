package cyphersql_test

import (
	"testing"

	"github.com/rlch/cyphersql"
	"github.com/stretchr/testify/require"
)

// sharedTables maps every node onto one shared table with a label column.
var sharedTables = cyphersql.SchemaConfig{
	NodeTable:         "nodes",
	RelationshipTable: "relationships",
	UseLabelTables:    false,
}

func TestTranspile_Match(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		query    string
		cfg      cyphersql.SchemaConfig
		expected []string
	}{
		{
			name:  "single node",
			query: "MATCH (n:Person) RETURN n.name",
			cfg:   sharedTables,
			expected: []string{
				"SELECT json_extract(n.properties, '$.name') as name FROM nodes n WHERE n.label = 'Person'",
			},
		},
		{
			name:  "single node with label table",
			query: "MATCH (n:Person) RETURN n.name",
			cfg:   cyphersql.DefaultSchemaConfig(),
			expected: []string{
				"SELECT json_extract(n.properties, '$.name') as name FROM Person n",
			},
		},
		{
			name:  "relationship joins on endpoints",
			query: "MATCH (n:Person)-[r:KNOWS]->(m:Person) RETURN n.name, m.name",
			cfg:   sharedTables,
			expected: []string{
				"SELECT json_extract(n.properties, '$.name') as name, json_extract(m.properties, '$.name') as name" +
					" FROM nodes n JOIN relationships r ON n.id = r.from_id JOIN nodes m ON r.to_id = m.id" +
					" WHERE n.label = 'Person' AND r.type = 'KNOWS' AND m.label = 'Person'",
			},
		},
		{
			name:  "left direction swaps endpoint columns",
			query: "MATCH (a)<-[r:KNOWS]-(b) RETURN a.name",
			cfg:   sharedTables,
			expected: []string{
				"SELECT json_extract(a.properties, '$.name') as name" +
					" FROM nodes a JOIN relationships r ON a.id = r.to_id JOIN nodes b ON r.from_id = b.id" +
					" WHERE r.type = 'KNOWS'",
			},
		},
		{
			name:  "alternate relationship types",
			query: "MATCH (a)-[r:KNOWS|LIKES]->(b) RETURN r",
			cfg:   sharedTables,
			expected: []string{
				"SELECT r FROM nodes a JOIN relationships r ON a.id = r.from_id JOIN nodes b ON r.to_id = b.id" +
					" WHERE (r.type = 'KNOWS' OR r.type = 'LIKES')",
			},
		},
		{
			name:  "anonymous elements get numbered aliases",
			query: "MATCH (:Person)-[:KNOWS]->(:Person) RETURN *",
			cfg:   sharedTables,
			expected: []string{
				"SELECT * FROM nodes n1 JOIN relationships r1 ON n1.id = r1.from_id JOIN nodes n2 ON r1.to_id = n2.id" +
					" WHERE n1.label = 'Person' AND r1.type = 'KNOWS' AND n2.label = 'Person'",
			},
		},
		{
			name:  "inline properties",
			query: "MATCH (n:Person {name: 'Alice'}) RETURN n",
			cfg:   sharedTables,
			expected: []string{
				"SELECT n FROM nodes n WHERE n.label = 'Person' AND json_extract(n.properties, '$.name') = 'Alice'",
			},
		},
		{
			name:  "where and return modifiers",
			query: "MATCH (n:Person) WHERE n.age > 30 RETURN DISTINCT n.name AS fullName ORDER BY n.age DESC SKIP 5 LIMIT 10",
			cfg:   sharedTables,
			expected: []string{
				"SELECT DISTINCT json_extract(n.properties, '$.name') AS fullName FROM nodes n" +
					" WHERE n.label = 'Person' AND n.age > 30" +
					" ORDER BY json_extract(n.properties, '$.age') DESC LIMIT 10 OFFSET 5",
			},
		},
		{
			name:  "no return clause selects everything",
			query: "MATCH (n)",
			cfg:   sharedTables,
			expected: []string{
				"SELECT * FROM nodes n",
			},
		},
		{
			name:  "second pattern joins on true",
			query: "MATCH (a:A), (b:B) RETURN a, b",
			cfg:   sharedTables,
			expected: []string{
				"SELECT a, b FROM nodes a JOIN nodes b ON TRUE WHERE a.label = 'A' AND b.label = 'B'",
			},
		},
		{
			name:  "length spec does not change the join",
			query: "MATCH (a)-[r:KNOWS*1..3]->(b) RETURN r",
			cfg:   sharedTables,
			expected: []string{
				"SELECT r FROM nodes a JOIN relationships r ON a.id = r.from_id JOIN nodes b ON r.to_id = b.id" +
					" WHERE r.type = 'KNOWS'",
			},
		},
		{
			name:  "bare arrow relationship",
			query: "MATCH (a:Person)-->(b) RETURN b",
			cfg:   sharedTables,
			expected: []string{
				"SELECT b FROM nodes a JOIN relationships r1 ON a.id = r1.from_id JOIN nodes b ON r1.to_id = b.id" +
					" WHERE a.label = 'Person'",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := cyphersql.Transpile(tt.query, tt.cfg)
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestTranspile_Create(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		query    string
		cfg      cyphersql.SchemaConfig
		expected []string
	}{
		{
			name:  "node without properties",
			query: "CREATE (n:Person)",
			cfg:   sharedTables,
			expected: []string{
				"INSERT INTO nodes (label, properties) VALUES ('Person', '{}')",
			},
		},
		{
			name:  "node with properties",
			query: "CREATE (n:Person {name: 'Alice', age: 30})",
			cfg:   sharedTables,
			expected: []string{
				"INSERT INTO nodes (label, properties) VALUES ('Person', json_object('name', 'Alice', 'age', 30))",
			},
		},
		{
			name:  "node without label",
			query: "CREATE (n)",
			cfg:   sharedTables,
			expected: []string{
				"INSERT INTO nodes (label, properties) VALUES (NULL, '{}')",
			},
		},
		{
			name:  "label table drops the label column",
			query: "CREATE (n:Person {name: 'Alice'})",
			cfg:   cyphersql.DefaultSchemaConfig(),
			expected: []string{
				"INSERT INTO Person (properties) VALUES (json_object('name', 'Alice'))",
			},
		},
		{
			name:  "relationship inserts after its endpoints",
			query: "CREATE (a:Person {name: 'Alice'})-[:KNOWS]->(b:Person {name: 'Bob'})",
			cfg:   sharedTables,
			expected: []string{
				"INSERT INTO nodes (label, properties) VALUES ('Person', json_object('name', 'Alice'))",
				"INSERT INTO nodes (label, properties) VALUES ('Person', json_object('name', 'Bob'))",
				"INSERT INTO relationships (from_id, to_id, type, properties) VALUES (" +
					"(SELECT max(id) FROM nodes WHERE label = 'Person' AND json_extract(properties, '$.name') = 'Alice'), " +
					"(SELECT max(id) FROM nodes WHERE label = 'Person' AND json_extract(properties, '$.name') = 'Bob'), " +
					"'KNOWS', '{}')",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := cyphersql.Transpile(tt.query, tt.cfg)
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestTranspile_Merge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		query    string
		cfg      cyphersql.SchemaConfig
		expected []string
	}{
		{
			name: "upsert with on create and on match",
			query: "MERGE (n:Person {name: 'Alice'})" +
				" ON CREATE SET n.created = true ON MATCH SET n.seen = true",
			cfg: sharedTables,
			expected: []string{
				"UPDATE nodes SET properties = json_set(properties, '$.seen', TRUE)" +
					" WHERE label = 'Person' AND json_extract(properties, '$.name') = 'Alice'",
				"INSERT INTO nodes (label, properties) SELECT 'Person', json_object('name', 'Alice', 'created', TRUE)" +
					" WHERE NOT EXISTS (SELECT 1 FROM nodes WHERE label = 'Person' AND json_extract(properties, '$.name') = 'Alice')",
			},
		},
		{
			name:  "bare merge only inserts",
			query: "MERGE (n:Person {name: 'Alice'})",
			cfg:   sharedTables,
			expected: []string{
				"INSERT INTO nodes (label, properties) SELECT 'Person', json_object('name', 'Alice')" +
					" WHERE NOT EXISTS (SELECT 1 FROM nodes WHERE label = 'Person' AND json_extract(properties, '$.name') = 'Alice')",
			},
		},
		{
			name:  "merge against label table",
			query: "MERGE (n:Person {name: 'Alice'})",
			cfg:   cyphersql.DefaultSchemaConfig(),
			expected: []string{
				"INSERT INTO Person (properties) SELECT json_object('name', 'Alice')" +
					" WHERE NOT EXISTS (SELECT 1 FROM Person WHERE json_extract(properties, '$.name') = 'Alice')",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := cyphersql.Transpile(tt.query, tt.cfg)
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestTranspile_Delete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{
			name:  "delete with predicate",
			query: "DELETE n WHERE n.age > 65",
			expected: []string{
				"DELETE FROM nodes WHERE json_extract(properties, '$.age') > 65",
			},
		},
		{
			name:  "detach delete removes relationships first",
			query: "DETACH DELETE n WHERE n.age > 65",
			expected: []string{
				"DELETE FROM relationships WHERE" +
					" from_id IN (SELECT id FROM nodes WHERE json_extract(properties, '$.age') > 65)" +
					" OR to_id IN (SELECT id FROM nodes WHERE json_extract(properties, '$.age') > 65)",
				"DELETE FROM nodes WHERE json_extract(properties, '$.age') > 65",
			},
		},
		{
			name:  "detach delete without predicate",
			query: "DETACH DELETE n",
			expected: []string{
				"DELETE FROM relationships",
				"DELETE FROM nodes",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := cyphersql.Transpile(tt.query, sharedTables)
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestTranspile_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   string
		wantMsg string
	}{
		{
			name:    "merge with relationship pattern",
			query:   "MERGE (a)-[:KNOWS]->(b)",
			wantMsg: "MERGE with relationship patterns is not supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := cyphersql.Transpile(tt.query, sharedTables)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantMsg)

			var translateErr *cyphersql.TranslateError
			require.ErrorAs(t, err, &translateErr)
		})
	}
}

func TestTranspile_ParseErrorsPropagate(t *testing.T) {
	t.Parallel()

	_, err := cyphersql.Transpile("MATCH (n RETURN n", sharedTables)
	require.Error(t, err)

	var parseErr *cyphersql.ParseError
	require.ErrorAs(t, err, &parseErr)
}
