package search

import (
	"context"
	"math"
	"sort"
	"sync/atomic"

	"github.com/rsned/crafting-macro-server/internal/crafting/sim"
)

// Beam keeps the best BeamWidth states of each generation and expands them
// for at most BeamDepth generations.
type Beam struct {
	opts     Options
	explored atomic.Int64
}

// NewBeam returns a beam strategy. Expansion is parallel when opts.Pool is set.
func NewBeam(opts Options) *Beam {
	return &Beam{opts: opts.withDefaults()}
}

// ExploredStateCount implements Strategy. Every generated child counts.
func (b *Beam) ExploredStateCount() int {
	return int(b.explored.Load())
}

type candidate struct {
	node  *node
	score float64
}

// FindOptimalPath implements Strategy.
func (b *Beam) FindOptimalPath(
	ctx context.Context,
	initial sim.State,
	actions []sim.Action,
	goal sim.Goal,
	objective Objective,
	durabilityConstraint bool,
) (*Result, error) {
	b.explored.Store(0)
	sc := NewScorer(goal, objective)

	root := &node{state: initial}
	if initial.Complete(goal) {
		return emptyResult(initial, 0, StopExhausted), nil
	}

	beam := []candidate{{node: root, score: sc.Score(initial)}}
	last := beam
	var best *node
	bestScore := math.Inf(-1)
	stop := StopDepthLimit

	for depth := 0; depth < b.opts.BeamDepth; depth++ {
		if ctx.Err() != nil {
			stop = StopDeadline
			break
		}

		children, err := b.expand(ctx, beam, actions, durabilityConstraint)
		if err != nil {
			if ctx.Err() != nil {
				stop = StopDeadline
				break
			}
			return nil, err
		}
		b.explored.Add(int64(len(children)))

		seen := make(map[string]bool, len(children))
		pool := make([]candidate, 0, len(children))
		for _, c := range children {
			if c.state.Complete(goal) {
				if score := sc.Completed(c.state); best == nil || score > bestScore {
					best, bestScore = c, score
				}
				continue
			}
			key := c.state.Key(b.opts.KeyPolicy)
			if seen[key] {
				continue
			}
			seen[key] = true
			pool = append(pool, candidate{node: c, score: sc.Score(c.state)})
		}

		if len(pool) == 0 {
			stop = StopExhausted
			break
		}
		sort.SliceStable(pool, func(i, j int) bool {
			return pool[i].score > pool[j].score
		})
		if len(pool) > b.opts.BeamWidth {
			pool = pool[:b.opts.BeamWidth]
		}
		beam, last = pool, pool
	}

	explored := b.ExploredStateCount()
	b.opts.Logger.Debug("beam search finished",
		"explored", explored,
		"stop", stop,
		"goal_found", best != nil,
		"workers", b.opts.Pool.Workers(),
	)

	if best == nil {
		// last is sorted, so its head is the best incomplete state.
		best = last[0].node
	}
	return assemble(initial, best.path(), best.state, sc, explored, stop)
}

// expand generates the children of every beam member. Children are returned
// grouped by member in beam order, whatever order the workers finish in.
func (b *Beam) expand(ctx context.Context, beam []candidate, actions []sim.Action, durabilityConstraint bool) ([]*node, error) {
	groups := make([][]*node, len(beam))
	err := b.opts.Pool.Each(ctx, len(beam), func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, err := successors(beam[i].node.state, actions, durabilityConstraint)
		if err != nil {
			return err
		}
		kids := make([]*node, len(next))
		for j, t := range next {
			kids[j] = beam[i].node.child(t)
		}
		groups[i] = kids
		return nil
	})
	if err != nil {
		return nil, err
	}

	var total int
	for _, g := range groups {
		total += len(g)
	}
	out := make([]*node, 0, total)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out, nil
}
