package search

import "github.com/rsned/crafting-macro-server/internal/crafting/sim"

// Objective selects the scoring formula and the termination policy.
type Objective int

const (
	QualityFirst Objective = iota
	ProgressFirst
)

// ObjectiveFor maps the request's quality-focus flag onto an Objective.
func ObjectiveFor(qualityFocus bool) Objective {
	if qualityFocus {
		return QualityFirst
	}
	return ProgressFirst
}

func (o Objective) String() string {
	if o == ProgressFirst {
		return "progress-first"
	}
	return "quality-first"
}

// DefaultCPScale normalises remaining CP in completed-state scores.
const DefaultCPScale = 1000

// progressPerStep approximates the progress of one synthesis step.
const progressPerStep = 120

// Scorer ranks states for one goal and objective. It is a pure function of
// its fields and the state passed in.
type Scorer struct {
	Goal            sim.Goal
	Objective       Objective
	CPScale         float64
	DurabilityScale float64
}

// NewScorer returns a Scorer with the default normalisation scales.
func NewScorer(goal sim.Goal, objective Objective) Scorer {
	return Scorer{
		Goal:            goal,
		Objective:       objective,
		CPScale:         DefaultCPScale,
		DurabilityScale: float64(goal.Durability()),
	}
}

func (sc Scorer) qualityRatio(s sim.State) float64 {
	if sc.Goal.MaxQuality <= 0 {
		return 0
	}
	return float64(s.Quality) / float64(sc.Goal.MaxQuality)
}

// Completed scores a state that meets the progress goal. Higher is better.
func (sc Scorer) Completed(s sim.State) float64 {
	q := sc.qualityRatio(s)
	cp := float64(s.CP) / sc.CPScale
	dur := float64(s.Durability) / sc.DurabilityScale

	if sc.Objective == ProgressFirst {
		return 2*q + 5*cp + 3*dur
	}
	return 10*q + cp + dur
}

// Heuristic estimates the remaining cost from s. It is not admissible.
func (sc Scorer) Heuristic(s sim.State) float64 {
	remaining := max(sc.Goal.RequiredProgress-s.Progress, 0)
	progress := float64(remaining) / progressPerStep * 10

	if sc.Objective == ProgressFirst {
		return progress
	}
	if remaining > 0 {
		return progress * 10
	}
	return (1 - sc.qualityRatio(s)) * 100
}

// Score ranks any state: complete states by Completed, the rest by the
// negated heuristic.
func (sc Scorer) Score(s sim.State) float64 {
	if s.Complete(sc.Goal) {
		return sc.Completed(s)
	}
	return -sc.Heuristic(s)
}
