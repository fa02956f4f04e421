package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rsned/crafting-macro-server/internal/crafting/sim"
)

func TestCompletedScore(t *testing.T) {
	goal := sim.Goal{RequiredProgress: 360, MaxQuality: 1000, BaseDurability: 60}
	s := sim.State{Progress: 360, Quality: 200, CP: 364, Durability: 10}

	q := NewScorer(goal, QualityFirst)
	assert.InDelta(t, 2+0.364+10.0/60, q.Completed(s), 1e-9)

	p := NewScorer(goal, ProgressFirst)
	assert.InDelta(t, 0.4+5*0.364+3*10.0/60, p.Completed(s), 1e-9)
}

func TestCompletedScoreQualityAboveMax(t *testing.T) {
	goal := sim.Goal{RequiredProgress: 100, MaxQuality: 200, BaseDurability: 50}
	sc := NewScorer(goal, QualityFirst)

	at := sim.State{Progress: 100, Quality: 200}
	over := sim.State{Progress: 100, Quality: 300}
	assert.InDelta(t, 15.0, sc.Completed(over), 1e-9)
	assert.Greater(t, sc.Completed(over), sc.Completed(at))
}

func TestCompletedScoreDefaultDurabilityScale(t *testing.T) {
	goal := sim.Goal{RequiredProgress: 120, MaxQuality: 100}
	sc := NewScorer(goal, QualityFirst)
	assert.InDelta(t, float64(sim.DefaultDurability), sc.DurabilityScale, 0)
	assert.InDelta(t, 1.0, sc.Completed(sim.State{Progress: 120, Durability: 70}), 1e-9)
}

func TestHeuristic(t *testing.T) {
	goal := sim.Goal{RequiredProgress: 360, MaxQuality: 1000, BaseDurability: 60}
	q := NewScorer(goal, QualityFirst)
	p := NewScorer(goal, ProgressFirst)

	tests := []struct {
		name  string
		sc    Scorer
		state sim.State
		want  float64
	}{
		{name: "quality-first outstanding", sc: q, state: sim.State{Progress: 120}, want: 200},
		{name: "quality-first complete", sc: q, state: sim.State{Progress: 360, Quality: 500}, want: 50},
		{name: "quality-first over max quality", sc: q, state: sim.State{Progress: 400, Quality: 1500}, want: -50},
		{name: "progress-first outstanding", sc: p, state: sim.State{Progress: 0, Quality: 900}, want: 30},
		{name: "progress-first complete", sc: p, state: sim.State{Progress: 360, Quality: 100}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.sc.Heuristic(tt.state), 1e-9)
		})
	}
}

func TestScoreSplitsOnCompletion(t *testing.T) {
	goal := sim.Goal{RequiredProgress: 360, MaxQuality: 1000, BaseDurability: 60}
	sc := NewScorer(goal, QualityFirst)

	incomplete := sim.State{Progress: 240, Quality: 900, CP: 400, Durability: 50}
	complete := sim.State{Progress: 360, CP: 0, Durability: 10}

	assert.Equal(t, -sc.Heuristic(incomplete), sc.Score(incomplete))
	assert.Equal(t, sc.Completed(complete), sc.Score(complete))
	assert.Greater(t, sc.Score(complete), sc.Score(incomplete))
}

func TestScoreIsReproducible(t *testing.T) {
	goal := sim.Goal{RequiredProgress: 1234, MaxQuality: 4321, BaseDurability: 55}
	s := sim.State{Progress: 777, Quality: 333, CP: 211, Durability: 35}
	for _, obj := range []Objective{QualityFirst, ProgressFirst} {
		sc := NewScorer(goal, obj)
		first := sc.Score(s)
		for range 10 {
			assert.Equal(t, first, sc.Score(s))
		}
	}
}

func TestObjectiveFor(t *testing.T) {
	assert.Equal(t, QualityFirst, ObjectiveFor(true))
	assert.Equal(t, ProgressFirst, ObjectiveFor(false))
	assert.Equal(t, "progress-first", ProgressFirst.String())
}
