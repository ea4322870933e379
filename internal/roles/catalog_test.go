package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Shape(t *testing.T) {
	all := All()
	require.Len(t, all, 15)

	assert.Len(t, ByTeam(Werewolves), 3)
	assert.Len(t, ByTeam(Villagers), 12)

	seen := map[string]bool{}
	for _, r := range all {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
		assert.NotEmpty(t, r.Name)
		assert.NotEmpty(t, r.Image)
		assert.NotEmpty(t, r.Power)
	}

	assert.Equal(t, LoupGarouUltime, all[0].ID)
	assert.Equal(t, Ange, all[len(all)-1].ID)
}

func TestAll_ReturnsCopy(t *testing.T) {
	a := All()
	a[0].Name = "changed"
	assert.Equal(t, "Loup Garou Ultime", MustGet(LoupGarouUltime).Name)
}

func TestGet(t *testing.T) {
	r, ok := Get(Voyante)
	require.True(t, ok)
	assert.Equal(t, Villagers, r.Team)

	_, ok = Get(GameMasterID)
	assert.False(t, ok, "game master is not a catalog role")

	assert.Panics(t, func() { MustGet("nope") })
}
