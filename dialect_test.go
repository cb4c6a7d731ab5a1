package cyphersql_test

import (
	"testing"

	"github.com/rlch/cyphersql"
	"github.com/stretchr/testify/require"
)

func TestNewDialect(t *testing.T) {
	t.Parallel()

	dialect, err := cyphersql.NewDialect("cypher")
	require.NoError(t, err)
	require.Equal(t, "cypher", dialect.Name())
}

func TestNewDialect_Unknown(t *testing.T) {
	t.Parallel()

	_, err := cyphersql.NewDialect("sparql")
	require.ErrorIs(t, err, cyphersql.ErrUnknownDialect)
	require.Contains(t, err.Error(), "sparql")
}

func TestRegisterDialect(t *testing.T) {
	t.Parallel()

	require.Contains(t, cyphersql.RegisteredDialects(), "cypher")
}

func TestCypherDialect_Identifiers(t *testing.T) {
	t.Parallel()

	d := cyphersql.CypherDialect{}

	tests := []struct {
		ch    rune
		start bool
		part  bool
	}{
		{'a', true, true},
		{'Z', true, true},
		{'_', true, true},
		{'$', true, true},
		{'7', false, true},
		{'-', false, false},
		{' ', false, false},
	}

	for _, tt := range tests {
		require.Equal(t, tt.start, d.IsIdentifierStart(tt.ch), "IsIdentifierStart(%q)", tt.ch)
		require.Equal(t, tt.part, d.IsIdentifierPart(tt.ch), "IsIdentifierPart(%q)", tt.ch)
	}

	require.Equal(t, '`', d.IdentifierQuote())
	require.True(t, d.SupportsMapLiterals())
}
