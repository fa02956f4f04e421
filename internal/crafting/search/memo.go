package search

import (
	"context"
	"sync/atomic"

	"github.com/rsned/crafting-macro-server/internal/crafting/sim"
)

// Memo searches every reachable state up to MemoDepth steps, caching the best
// continuation of each state it solves. It is exhaustive within its depth and
// meant for small catalogs.
type Memo struct {
	opts     Options
	explored atomic.Int64
}

// NewMemo returns a memoized recursive strategy.
func NewMemo(opts Options) *Memo {
	return &Memo{opts: opts.withDefaults()}
}

// ExploredStateCount implements Strategy.
func (m *Memo) ExploredStateCount() int {
	return int(m.explored.Load())
}

// solution is the best continuation found from a state.
type solution struct {
	path  []sim.Action
	final sim.State
	score float64
}

type memoRun struct {
	ctx                  context.Context
	actions              []sim.Action
	goal                 sim.Goal
	sc                   Scorer
	policy               sim.KeyPolicy
	maxDepth             int
	durabilityConstraint bool

	cache    map[string]solution
	explored *atomic.Int64
	stopped  bool
}

// FindOptimalPath implements Strategy.
func (m *Memo) FindOptimalPath(
	ctx context.Context,
	initial sim.State,
	actions []sim.Action,
	goal sim.Goal,
	objective Objective,
	durabilityConstraint bool,
) (*Result, error) {
	m.explored.Store(0)
	run := &memoRun{
		ctx:                  ctx,
		actions:              actions,
		goal:                 goal,
		sc:                   NewScorer(goal, objective),
		policy:               m.opts.KeyPolicy,
		maxDepth:             m.opts.MemoDepth,
		durabilityConstraint: durabilityConstraint,
		cache:                make(map[string]solution),
		explored:             &m.explored,
	}

	sol, err := run.solve(initial, 0)
	if err != nil {
		return nil, err
	}

	stop := StopExhausted
	if run.stopped {
		stop = StopDeadline
	}
	explored := m.ExploredStateCount()
	m.opts.Logger.Debug("memo search finished",
		"explored", explored,
		"stop", stop,
		"cached", len(run.cache),
		"complete", sol.final.Complete(goal),
	)
	return assemble(initial, sol.path, sol.final, run.sc, explored, stop)
}

func (r *memoRun) terminal(s sim.State) solution {
	return solution{final: s, score: r.sc.Score(s)}
}

func (r *memoRun) solve(s sim.State, depth int) (solution, error) {
	if r.stopped || r.ctx.Err() != nil {
		r.stopped = true
		return r.terminal(s), nil
	}

	key := s.Key(r.policy)
	if sol, ok := r.cache[key]; ok {
		return sol, nil
	}
	r.explored.Add(1)

	if s.Complete(r.goal) || depth >= r.maxDepth {
		sol := r.terminal(s)
		r.cache[key] = sol
		return sol, nil
	}

	next, err := successors(s, r.actions, r.durabilityConstraint)
	if err != nil {
		return solution{}, err
	}

	best := r.terminal(s)
	found := false
	for _, t := range next {
		sub, err := r.solve(t.state, depth+1)
		if err != nil {
			return solution{}, err
		}
		if found && sub.score <= best.score {
			continue
		}
		path := make([]sim.Action, 0, len(sub.path)+1)
		path = append(path, t.action)
		path = append(path, sub.path...)
		best = solution{path: path, final: sub.final, score: sub.score}
		found = true
	}

	if !r.stopped {
		r.cache[key] = best
	}
	return best, nil
}
