package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(DefaultActions())
	require.NoError(t, err)
	return c
}

func names(actions []Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Name
	}
	return out
}

func TestCatalogUnlockedAt(t *testing.T) {
	c := defaultCatalog(t)

	assert.Equal(t, []string{"Basic Synthesis"}, names(c.UnlockedAt(1)))
	assert.Equal(t, []string{"Basic Synthesis", "Basic Touch", "Master's Mend"}, names(c.UnlockedAt(10)))
	assert.Len(t, c.UnlockedAt(90), 7)
	assert.Len(t, c.UnlockedAt(0), 7)
}

func TestCatalogFilter(t *testing.T) {
	c := defaultCatalog(t)

	got, err := c.Filter(30, []string{"basic touch", "Basic Synthesis", "Muscle Memory"})
	require.NoError(t, err)
	// Muscle Memory is not unlocked at level 30
	assert.Equal(t, []string{"Basic Synthesis", "Basic Touch"}, names(got))

	_, err = c.Filter(30, []string{"Basic Synthesiss"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAction))
}

func TestCatalogLookup(t *testing.T) {
	c := defaultCatalog(t)

	a, err := c.Lookup("Veneration")
	require.NoError(t, err)
	assert.Equal(t, SkillVeneration, a.Skill)

	a, err = c.Lookup("masters mend")
	require.Error(t, err)

	var ue *UnknownActionError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Master's Mend", ue.Suggestion)
	assert.Contains(t, err.Error(), "did you mean")
	assert.Equal(t, Action{}, a)

	_, err = c.Lookup("Hasty Touch Deluxe Edition")
	require.ErrorAs(t, err, &ue)
	assert.Empty(t, ue.Suggestion)
}

func TestNewCatalogRejectsDuplicates(t *testing.T) {
	actions := append(DefaultActions(), DefaultActions()[0])
	_, err := NewCatalog(actions)
	assert.Error(t, err)

	_, err = NewCatalog([]Action{{Skill: Skill(99), Name: "Mystery"}})
	assert.Error(t, err)
}
