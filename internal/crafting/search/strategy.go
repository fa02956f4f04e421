// Package search finds action sequences that complete a recipe. Three
// strategies share one contract: a best-first priority-queue search, a
// width-bounded beam search and an exhaustive memoized recursion.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rsned/crafting-macro-server/internal/crafting/sim"
)

// ErrUnknownStrategy is returned for a strategy name New does not know.
var ErrUnknownStrategy = errors.New("unknown search strategy")

// Strategy is implemented by every search algorithm. A Strategy value holds
// per-call state and is not safe for concurrent FindOptimalPath calls.
type Strategy interface {
	FindOptimalPath(
		ctx context.Context,
		initial sim.State,
		actions []sim.Action,
		goal sim.Goal,
		objective Objective,
		durabilityConstraint bool,
	) (*Result, error)

	// ExploredStateCount reports the states explored by the last call.
	ExploredStateCount() int
}

// Kind names a strategy.
type Kind string

const (
	KindBestFirst Kind = "best-first"
	KindBeam      Kind = "beam"
	KindMemo      Kind = "memo"
)

// DefaultKind is used when a request does not pick a strategy.
const DefaultKind = KindBeam

var kindAliases = map[string]Kind{
	"best-first": KindBestFirst,
	"bestfirst":  KindBestFirst,
	"astar":      KindBestFirst,
	"a*":         KindBestFirst,
	"beam":       KindBeam,
	"memo":       KindMemo,
	"dp":         KindMemo,
	"recursive":  KindMemo,
}

// ParseKind maps a strategy name or alias onto a Kind. An empty name gives
// DefaultKind.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultKind, nil
	}
	if k, ok := kindAliases[name]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Kinds returns the canonical strategy names.
func Kinds() []Kind {
	return []Kind{KindBestFirst, KindBeam, KindMemo}
}

// Options tunes the strategies. Zero fields take the DefaultOptions value.
type Options struct {
	KeyPolicy sim.KeyPolicy

	// Best-first limits.
	MaxNodes   int
	MaxActions int

	// Beam limits.
	BeamWidth int
	BeamDepth int

	// Memo recursion limit.
	MemoDepth int

	// Pool runs beam expansion in parallel. Nil expands sequentially.
	Pool *WorkerPool

	Logger *slog.Logger
}

// DefaultOptions returns the stock search limits.
func DefaultOptions() Options {
	return Options{
		KeyPolicy:  sim.KeyHistoryLength,
		MaxNodes:   100000,
		MaxActions: 90,
		BeamWidth:  1000,
		BeamDepth:  30,
		MemoDepth:  50,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxNodes <= 0 {
		o.MaxNodes = d.MaxNodes
	}
	if o.MaxActions <= 0 {
		o.MaxActions = d.MaxActions
	}
	if o.BeamWidth <= 0 {
		o.BeamWidth = d.BeamWidth
	}
	if o.BeamDepth <= 0 {
		o.BeamDepth = d.BeamDepth
	}
	if o.MemoDepth <= 0 {
		o.MemoDepth = d.MemoDepth
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// New returns a fresh strategy of the given kind.
func New(kind Kind, opts Options) (Strategy, error) {
	switch kind {
	case KindBestFirst:
		return NewBestFirst(opts), nil
	case KindBeam:
		return NewBeam(opts), nil
	case KindMemo:
		return NewMemo(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, kind)
	}
}

// transition is one legal move out of a state.
type transition struct {
	action sim.Action
	state  sim.State
}

// successors applies every executable action to s. With durabilityConstraint
// set, moves that leave no durability are dropped before they are returned.
func successors(s sim.State, actions []sim.Action, durabilityConstraint bool) ([]transition, error) {
	out := make([]transition, 0, len(actions))
	for _, a := range actions {
		if !a.CanExecute(s) {
			continue
		}
		next, err := a.Apply(s)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", a.Name, err)
		}
		if durabilityConstraint && next.Durability <= 0 {
			continue
		}
		out = append(out, transition{action: a, state: next.Record(a.Name)})
	}
	return out, nil
}

// node is a search tree vertex. Paths are recovered through parent links.
type node struct {
	state  sim.State
	parent *node
	action sim.Action
	depth  int
}

func (n *node) child(t transition) *node {
	return &node{state: t.state, parent: n, action: t.action, depth: n.depth + 1}
}

func (n *node) path() []sim.Action {
	out := make([]sim.Action, n.depth)
	for cur := n; cur.parent != nil; cur = cur.parent {
		out[cur.depth-1] = cur.action
	}
	return out
}
