package search

import (
	"fmt"

	"github.com/rsned/crafting-macro-server/internal/crafting/sim"
)

// StopReason says why a search ended.
type StopReason string

const (
	// StopFirstGoal: a progress-first search popped its first goal state.
	StopFirstGoal StopReason = "first-goal"
	// StopExhausted: nothing was left to expand.
	StopExhausted StopReason = "exhausted"
	// StopNodeLimit: the explored-node cap was hit.
	StopNodeLimit StopReason = "node-limit"
	// StopDepthLimit: the beam ran its full depth.
	StopDepthLimit StopReason = "depth-limit"
	// StopDeadline: the context was cancelled or timed out.
	StopDeadline StopReason = "deadline"
)

// Result is the outcome of one search.
type Result struct {
	Path  []sim.Action
	Score float64
	Final sim.State

	FinalProgress int
	FinalQuality  int
	UsedCP        int
	Actions       int

	Explored int
	Stop     StopReason
}

// Complete reports whether the result reaches the progress goal.
func (r *Result) Complete(goal sim.Goal) bool {
	return r.Final.Complete(goal)
}

// Names returns the action names of the path.
func (r *Result) Names() []string {
	out := make([]string, len(r.Path))
	for i, a := range r.Path {
		out[i] = a.Name
	}
	return out
}

// emptyResult is returned when the search found nothing worth reporting.
func emptyResult(initial sim.State, explored int, stop StopReason) *Result {
	final := initial.Clone()
	return &Result{
		Final:         final,
		FinalProgress: final.Progress,
		FinalQuality:  final.Quality,
		Explored:      explored,
		Stop:          stop,
	}
}

// assemble turns a winning path into a Result. The path is replayed from
// initial and must land on the state the strategy reported.
func assemble(initial sim.State, path []sim.Action, reported sim.State, sc Scorer, explored int, stop StopReason) (*Result, error) {
	if len(path) == 0 {
		return emptyResult(initial, explored, stop), nil
	}

	final, err := sim.Reapply(initial, path)
	if err != nil {
		return nil, fmt.Errorf("verifying path: %w", err)
	}
	if final.Progress != reported.Progress ||
		final.Quality != reported.Quality ||
		final.CP != reported.CP ||
		final.Durability != reported.Durability {
		return nil, fmt.Errorf("verifying path: replay reached %v, search reported %v", final, reported)
	}

	return &Result{
		Path:          path,
		Score:         sc.Score(final),
		Final:         final,
		FinalProgress: final.Progress,
		FinalQuality:  final.Quality,
		UsedCP:        initial.CP - final.CP,
		Actions:       len(path),
		Explored:      explored,
		Stop:          stop,
	}, nil
}
