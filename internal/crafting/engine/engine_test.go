package engine

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/crafting-macro-server/internal/crafting/config"
	"github.com/rsned/crafting-macro-server/internal/crafting/db"
	"github.com/rsned/crafting-macro-server/internal/crafting/search"
	"github.com/rsned/crafting-macro-server/internal/crafting/sim"
	"github.com/rsned/crafting-macro-server/internal/crafting/validate"
	"github.com/rsned/crafting-macro-server/pkg/crafting"
)

func newTestEngine(t *testing.T, mutate func(*config.Config)) (*Engine, *db.DB) {
	t.Helper()
	database, err := db.OpenAndInit(context.Background(), db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	e, err := New(database, cfg)
	require.NoError(t, err)
	return e, database
}

// touchRequest allows three touches and a finishing synthesis run of three.
func touchRequest() crafting.MacroRequest {
	return crafting.MacroRequest{
		PlayerStatus: crafting.PlayerStatus{CraftingLevel: 5, CP: 400},
		Recipe: crafting.Recipe{
			Name:             "Bronze Ingot",
			RequiredProgress: 360,
			MaxQuality:       1000,
			BaseDurability:   60,
		},
	}
}

func TestGenerateMacroStrategies(t *testing.T) {
	for _, kind := range search.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			e, _ := newTestEngine(t, nil)
			req := touchRequest()
			req.Strategy = string(kind)

			resp, err := e.GenerateMacro(context.Background(), req)
			require.NoError(t, err)

			assert.Equal(t, string(kind), resp.Strategy)
			assert.True(t, resp.ProgressComplete)
			assert.Equal(t, 360, resp.FinalProgress)
			assert.Equal(t, 200, resp.FinalQuality)
			assert.Equal(t, 36, resp.TotalCPUsed)
			assert.Equal(t, 10, resp.DurabilityRemaining)
			assert.Equal(t, 20, resp.QualityPercentage)
			assert.Len(t, resp.ActionSequence, 5)
			assert.Equal(t, "Basic Synthesis", resp.ActionSequence[4])
			require.Len(t, resp.MacroText, 1)
			assert.Equal(t, 5, strings.Count(resp.MacroText[0], "/ac "))
			assert.Contains(t, resp.MacroText[0], "/echo ### macro fin (1/1) <se.1>")
			assert.Positive(t, resp.ExploredStates)
			assert.NotEmpty(t, resp.StopReason)
			assert.NotEmpty(t, resp.RunID)
			assert.False(t, resp.Cached)
		})
	}
}

func TestGenerateMacroCachesResponses(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	first, err := e.GenerateMacro(ctx, touchRequest())
	require.NoError(t, err)
	second, err := e.GenerateMacro(ctx, touchRequest())
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.Equal(t, first.ActionSequence, second.ActionSequence)
	assert.Equal(t, first.RunID, second.RunID)

	runs, err := e.RecentRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	// A different objective is a different search.
	req := touchRequest()
	progressFirst := false
	req.QualityFocus = &progressFirst
	third, err := e.GenerateMacro(ctx, req)
	require.NoError(t, err)
	assert.False(t, third.Cached)
}

func TestGenerateMacroCacheIsNotShared(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	first, err := e.GenerateMacro(ctx, touchRequest())
	require.NoError(t, err)
	want := slices.Clone(first.ActionSequence)
	first.ActionSequence[0] = "Hasty Touch"
	first.MacroText[0] = ""

	second, err := e.GenerateMacro(ctx, touchRequest())
	require.NoError(t, err)
	require.True(t, second.Cached)
	assert.Equal(t, want, second.ActionSequence)
	assert.Contains(t, second.MacroText[0], "/ac ")

	second.ActionSequence[1] = "Hasty Touch"
	third, err := e.GenerateMacro(ctx, touchRequest())
	require.NoError(t, err)
	assert.Equal(t, want, third.ActionSequence)
}

func TestGenerateMacroSkipsCacheAfterDeadline(t *testing.T) {
	e, _ := newTestEngine(t, func(c *config.Config) {
		c.History.Enabled = false
	})
	_, err := e.Catalog(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cut, err := e.GenerateMacro(ctx, touchRequest())
	require.NoError(t, err)
	assert.Equal(t, string(search.StopDeadline), cut.StopReason)
	assert.False(t, cut.ProgressComplete)
	assert.Zero(t, e.cache.Len())

	full, err := e.GenerateMacro(context.Background(), touchRequest())
	require.NoError(t, err)
	assert.False(t, full.Cached)
	assert.True(t, full.ProgressComplete)
	assert.Equal(t, 1, e.cache.Len())
}

func TestGenerateMacroWithoutCacheOrHistory(t *testing.T) {
	e, _ := newTestEngine(t, func(c *config.Config) {
		c.Cache.Size = 0
		c.History.Enabled = false
		c.Search.Parallel = false
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		resp, err := e.GenerateMacro(ctx, touchRequest())
		require.NoError(t, err)
		assert.False(t, resp.Cached)
		assert.Empty(t, resp.RunID)
	}

	runs, err := e.RecentRuns(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestGenerateMacroHistoryPruning(t *testing.T) {
	e, _ := newTestEngine(t, func(c *config.Config) {
		c.Cache.Size = 0
		c.History.Keep = 2
	})
	ctx := context.Background()

	var last string
	for i := 0; i < 3; i++ {
		resp, err := e.GenerateMacro(ctx, touchRequest())
		require.NoError(t, err)
		last = resp.RunID
	}

	runs, err := e.RecentRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	run, err := e.GetRun(ctx, last)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "Bronze Ingot", run.RecipeName)
	assert.Equal(t, "quality-first", run.Objective)
	assert.Len(t, run.Actions, 5)
}

func TestGenerateMacroErrors(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	t.Run("validation", func(t *testing.T) {
		req := touchRequest()
		req.PlayerStatus.CraftingLevel = 0
		req.Recipe.RequiredProgress = 0

		_, err := e.GenerateMacro(ctx, req)
		var verr *validate.Error
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Problems, 2)
		assert.Contains(t, err.Error(), "playerStatus.craftingLevel")
		assert.Contains(t, err.Error(), "recipe.requiredProgress")
	})

	t.Run("unknown strategy", func(t *testing.T) {
		req := touchRequest()
		req.Strategy = "genetic"
		_, err := e.GenerateMacro(ctx, req)
		assert.ErrorIs(t, err, search.ErrUnknownStrategy)
	})

	t.Run("unknown skill", func(t *testing.T) {
		req := touchRequest()
		req.AvailableSkills = []string{"Basic Synthesis", "Basic Tuch"}
		_, err := e.GenerateMacro(ctx, req)
		assert.ErrorIs(t, err, sim.ErrUnknownAction)

		var uerr *sim.UnknownActionError
		require.True(t, errors.As(err, &uerr))
		assert.Equal(t, "Basic Touch", uerr.Suggestion)
	})

	t.Run("nothing unlocked", func(t *testing.T) {
		req := touchRequest()
		req.PlayerStatus.CraftingLevel = 1
		req.AvailableSkills = []string{"Basic Touch"}
		_, err := e.GenerateMacro(ctx, req)
		var verr *validate.Error
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, err.Error(), "no skills available at crafting level 1")
	})
}

func TestAvailableSkills(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	skills, err := e.AvailableSkills(ctx, 5)
	require.NoError(t, err)
	require.Len(t, skills, 2)
	assert.Equal(t, crafting.SkillInfo{
		Name:           "Basic Touch",
		Variant:        "basic-touch",
		Category:       "quality",
		CPCost:         18,
		DurabilityCost: 10,
		WaitSeconds:    3,
		UnlockLevel:    5,
	}, skills[1])

	all, err := e.AvailableSkills(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, len(sim.DefaultActions()))
}

func TestReloadCatalog(t *testing.T) {
	e, database := newTestEngine(t, nil)
	ctx := context.Background()

	c, err := e.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(sim.DefaultActions()), c.Len())

	synth, _ := sim.DefaultAction(sim.SkillBasicSynthesis)
	synth.Name = "Rapid Synthesis"
	require.NoError(t, db.NewSkillStore(database).ReplaceSkills(ctx, []sim.Action{synth}))

	// The loaded catalog stays until reloaded.
	c, err = e.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(sim.DefaultActions()), c.Len())

	c, err = e.ReloadCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	_, err = c.Lookup("Rapid Synthesis")
	assert.NoError(t, err)
}

func TestQualityPercentage(t *testing.T) {
	assert.Equal(t, 0, qualityPercentage(100, 0))
	assert.Equal(t, 20, qualityPercentage(200, 1000))
	assert.Equal(t, 33, qualityPercentage(1, 3))
	assert.Equal(t, 67, qualityPercentage(2, 3))
	assert.Equal(t, 100, qualityPercentage(1000, 1000))
}
