package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/crafting-macro-server/internal/crafting/sim"
)

func TestBestFirstProgressFirstStopsAtFirstGoal(t *testing.T) {
	goal := sim.Goal{RequiredProgress: 360, MaxQuality: 1000, BaseDurability: 60}
	actions := pick(t, sim.SkillBasicSynthesis, sim.SkillBasicTouch)

	bf := NewBestFirst(DefaultOptions())
	res, err := bf.FindOptimalPath(context.Background(), sim.NewState(goal, 400), actions, goal, ProgressFirst, true)
	require.NoError(t, err)

	assert.Equal(t, StopFirstGoal, res.Stop)
	assert.Equal(t, []string{"Basic Synthesis", "Basic Synthesis", "Basic Synthesis"}, res.Names())
	assert.Equal(t, 0, res.UsedCP)
	// root, S, SS and SSS are the only states popped
	assert.Equal(t, 4, res.Explored)
}

func TestBestFirstQualityFirstSearchesPastFirstGoal(t *testing.T) {
	goal := sim.Goal{RequiredProgress: 360, MaxQuality: 1000, BaseDurability: 60}
	actions := pick(t, sim.SkillBasicSynthesis, sim.SkillBasicTouch)

	bf := NewBestFirst(DefaultOptions())
	res, err := bf.FindOptimalPath(context.Background(), sim.NewState(goal, 400), actions, goal, QualityFirst, true)
	require.NoError(t, err)

	assert.Equal(t, StopExhausted, res.Stop)
	assert.Equal(t, 200, res.FinalQuality)
}

func TestBestFirstNodeLimit(t *testing.T) {
	goal := sim.Goal{RequiredProgress: 2000, MaxQuality: 5000, BaseDurability: 80}
	actions := sim.DefaultActions()

	opts := DefaultOptions()
	opts.MaxNodes = 5
	bf := NewBestFirst(opts)
	res, err := bf.FindOptimalPath(context.Background(), sim.NewState(goal, 500), actions, goal, QualityFirst, true)
	require.NoError(t, err)

	assert.Equal(t, StopNodeLimit, res.Stop)
	assert.Equal(t, 5, res.Explored)
	assert.False(t, res.Complete(goal))
	assert.NotEmpty(t, res.Path)
}

func TestBestFirstPathCap(t *testing.T) {
	goal := sim.Goal{RequiredProgress: 1200, MaxQuality: 1000, BaseDurability: 200}
	actions := pick(t, sim.SkillBasicSynthesis)

	opts := DefaultOptions()
	opts.MaxActions = 3
	bf := NewBestFirst(opts)
	res, err := bf.FindOptimalPath(context.Background(), sim.NewState(goal, 0), actions, goal, ProgressFirst, true)
	require.NoError(t, err)

	assert.Len(t, res.Path, 3)
	assert.Equal(t, 360, res.FinalProgress)
	assert.False(t, res.Complete(goal))
}

func TestFrontierOrder(t *testing.T) {
	q := frontier{
		{f: 3, seq: 0},
		{f: 1, seq: 2},
		{f: 1, seq: 1},
	}
	assert.True(t, q.Less(2, 1))
	assert.True(t, q.Less(1, 0))
	assert.False(t, q.Less(0, 2))
}
