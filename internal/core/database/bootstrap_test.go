package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBootstrapSQLUsesConfiguredDimension(t *testing.T) {
	script, err := renderBootstrapSQL(1536)
	require.NoError(t, err)
	assert.Contains(t, script, "VECTOR(1536)")
	assert.False(t, strings.Contains(script, "__EMBED_DIM__"),
		"placeholder must not survive rendering")
}

func TestRenderBootstrapSQLDefaultsDimension(t *testing.T) {
	script, err := renderBootstrapSQL(0)
	require.NoError(t, err)
	assert.Contains(t, script, "VECTOR(768)")
}
