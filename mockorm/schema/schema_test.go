package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJunctionName(t *testing.T) {
	t.Run("user pets and pet owners", func(t *testing.T) {
		usToJoin := JunctionToken("User", "pets")
		joinToThem := JunctionToken("Pet", "owners")
		assert.Equal(t, "user_pets", usToJoin)
		assert.Equal(t, "pet_owners", joinToThem)
		assert.Equal(t, "pet_owners_user_pets", JunctionName(usToJoin, joinToThem))
	})
	t.Run("is symmetric", func(t *testing.T) {
		assert.Equal(t, JunctionName("a_b", "c_d"), JunctionName("c_d", "a_b"))
	})
	t.Run("sorts composite tokens, not collection names", func(t *testing.T) {
		// "_" sorts before "s", so the shorter collection name wins here.
		assert.Equal(t, "team_zmembers_teams_x", JunctionName("teams_x", "team_zmembers"))
	})
}

func TestSchemaAttribute(t *testing.T) {
	s := New("Pet", map[string]Attribute{
		"name":   Scalar{},
		"owner":  ForeignKeyRef{Model: "User"},
		"owners": HasManyRef{Collection: "User", Via: "pets"},
	})

	a, ok := s.Attribute("owner")
	assert.True(t, ok)
	assert.Equal(t, ForeignKeyRef{Model: "User"}, a)

	_, ok = s.Attribute("missing")
	assert.False(t, ok)

	assert.NotNil(t, New("Empty", nil).Attributes)
}
