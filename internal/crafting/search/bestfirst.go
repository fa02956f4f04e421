package search

import (
	"container/heap"
	"context"
	"math"
	"sync/atomic"

	"github.com/rsned/crafting-macro-server/internal/crafting/sim"
)

// BestFirst expands states in order of path cost plus heuristic.
type BestFirst struct {
	opts     Options
	explored atomic.Int64
}

// NewBestFirst returns a best-first strategy.
func NewBestFirst(opts Options) *BestFirst {
	return &BestFirst{opts: opts.withDefaults()}
}

// ExploredStateCount implements Strategy.
func (b *BestFirst) ExploredStateCount() int {
	return int(b.explored.Load())
}

// FindOptimalPath implements Strategy.
func (b *BestFirst) FindOptimalPath(
	ctx context.Context,
	initial sim.State,
	actions []sim.Action,
	goal sim.Goal,
	objective Objective,
	durabilityConstraint bool,
) (*Result, error) {
	b.explored.Store(0)
	sc := NewScorer(goal, objective)

	open := &frontier{}
	seq := 0
	heap.Push(open, &queued{node: &node{state: initial}, f: sc.Heuristic(initial), seq: seq})

	closed := make(map[string]bool)
	var nearest *queued
	var best *node
	bestScore := math.Inf(-1)
	stop := StopExhausted

	for open.Len() > 0 {
		if ctx.Err() != nil {
			stop = StopDeadline
			break
		}
		if b.ExploredStateCount() >= b.opts.MaxNodes {
			stop = StopNodeLimit
			break
		}

		cur := heap.Pop(open).(*queued)
		key := cur.node.state.Key(b.opts.KeyPolicy)
		if closed[key] {
			continue
		}
		closed[key] = true
		b.explored.Add(1)

		if cur.node.state.Complete(goal) {
			if score := sc.Completed(cur.node.state); best == nil || score > bestScore {
				best, bestScore = cur.node, score
			}
			if objective == ProgressFirst {
				stop = StopFirstGoal
				break
			}
			continue
		}
		if nearest == nil || sc.Heuristic(cur.node.state) < sc.Heuristic(nearest.node.state) {
			nearest = cur
		}
		if cur.node.depth >= b.opts.MaxActions {
			continue
		}

		next, err := successors(cur.node.state, actions, durabilityConstraint)
		if err != nil {
			return nil, err
		}
		for _, t := range next {
			if closed[t.state.Key(b.opts.KeyPolicy)] {
				continue
			}
			seq++
			g := cur.g + t.action.Cost()
			heap.Push(open, &queued{
				node: cur.node.child(t),
				g:    g,
				f:    float64(g) + sc.Heuristic(t.state),
				seq:  seq,
			})
		}
	}

	explored := b.ExploredStateCount()
	b.opts.Logger.Debug("best-first search finished",
		"explored", explored,
		"stop", stop,
		"goal_found", best != nil,
		"open", open.Len(),
	)

	if best == nil {
		best = open.closest(sc)
	}
	if best == nil && nearest != nil {
		// Nothing left open: fall back to the closest state that was expanded.
		best = nearest.node
	}
	if best == nil {
		return emptyResult(initial, explored, stop), nil
	}
	return assemble(initial, best.path(), best.state, sc, explored, stop)
}

// queued is a frontier entry.
type queued struct {
	node *node
	g    int
	f    float64
	seq  int
}

// frontier is a min-heap on f, ties broken by insertion order.
type frontier []*queued

func (q frontier) Len() int { return len(q) }

func (q frontier) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}

func (q frontier) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *frontier) Push(x any) { *q = append(*q, x.(*queued)) }

func (q *frontier) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// closest returns the open node with the smallest heuristic, earliest first.
func (q frontier) closest(sc Scorer) *node {
	var best *queued
	bestH := math.Inf(1)
	for _, item := range q {
		h := sc.Heuristic(item.node.state)
		if best == nil || h < bestH || (h == bestH && item.seq < best.seq) {
			best, bestH = item, h
		}
	}
	if best == nil {
		return nil
	}
	return best.node
}
