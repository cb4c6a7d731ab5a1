package cyphersql_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rlch/cyphersql"
	"github.com/stretchr/testify/require"
)

func TestDefaultSchemaConfig(t *testing.T) {
	t.Parallel()

	cfg := cyphersql.DefaultSchemaConfig()

	require.Equal(t, "nodes", cfg.NodeTable)
	require.Equal(t, "relationships", cfg.RelationshipTable)
	require.True(t, cfg.UseLabelTables)
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, ".cyphersql.yaml")

	content := `dialect: cypher
schema:
  node_table: vertices
  relationship_table: edges
  use_label_tables: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := cyphersql.LoadConfigFile(path)
	require.NoError(t, err)
	require.Equal(t, "cypher", cfg.Dialect)
	require.Equal(t, "vertices", cfg.Schema.NodeTable)
	require.Equal(t, "edges", cfg.Schema.RelationshipTable)
	require.False(t, cfg.Schema.UseLabelTables)
}

func TestLoadConfigFile_PartialKeepsDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "cyphersql.yaml")

	content := `schema:
  node_table: vertices
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := cyphersql.LoadConfigFile(path)
	require.NoError(t, err)
	require.Equal(t, "vertices", cfg.Schema.NodeTable)
	require.Equal(t, "relationships", cfg.Schema.RelationshipTable)
	require.True(t, cfg.Schema.UseLabelTables)
}

func TestFindConfig_WalksUp(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	path := filepath.Join(root, ".cyphersql.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dialect: cypher\n"), 0o600))

	found, err := cyphersql.FindConfig(nested)
	require.NoError(t, err)
	require.Equal(t, path, found)
}

func TestFindConfig_NotFound(t *testing.T) {
	t.Parallel()

	_, err := cyphersql.FindConfig(t.TempDir())
	require.ErrorIs(t, err, cyphersql.ErrConfigNotFound)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "sub")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	content := `schema:
  use_label_tables: false
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".cyphersql.yml"), []byte(content), 0o600))

	cfg, err := cyphersql.LoadConfig(nested)
	require.NoError(t, err)
	require.False(t, cfg.Schema.UseLabelTables)
}
