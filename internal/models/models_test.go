package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeValidate(t *testing.T) {
	assert.NoError(t, UserScope("u1").Validate())
	assert.NoError(t, GroupScope("g1").Validate())

	assert.Error(t, Scope{Kind: ScopeUser}.Validate())
	assert.Error(t, Scope{Kind: "team", ID: "x"}.Validate())
	assert.Error(t, Scope{}.Validate())
}

func TestDocumentScopeRoundTrip(t *testing.T) {
	d := Document{OwnerKind: ScopeGroup, OwnerID: "g7"}
	assert.Equal(t, GroupScope("g7"), d.Scope())
}

func TestDocumentUpdateEmpty(t *testing.T) {
	assert.True(t, (&DocumentUpdate{}).Empty())

	status := "x"
	assert.False(t, (&DocumentUpdate{Status: &status}).Empty())
	assert.False(t, (&DocumentUpdate{NumChunksDelta: 1}).Empty())
	assert.False(t, (&DocumentUpdate{Keywords: []string{"k"}}).Empty())

	// ForcePercent alone changes nothing.
	assert.True(t, (&DocumentUpdate{ForcePercent: true}).Empty())
}
