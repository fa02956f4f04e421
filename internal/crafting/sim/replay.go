package sim

import "errors"

// Halt says why a replay stopped.
type Halt string

const (
	// HaltExhausted means every action in the sequence ran.
	HaltExhausted Halt = "exhausted"
	// HaltComplete means the progress goal was reached.
	HaltComplete Halt = "complete"
	// HaltBroken means durability ran out.
	HaltBroken Halt = "broken"
	// HaltIllegal means an action could not execute.
	HaltIllegal Halt = "illegal"
)

// Step is one executed action and the state it produced.
type Step struct {
	Index  int    `json:"index"`
	Action string `json:"action"`
	State  State  `json:"state"`
}

// Trace is the outcome of a replay.
type Trace struct {
	Initial State  `json:"initial"`
	Steps   []Step `json:"steps"`
	Final   State  `json:"final"`
	Halt    Halt   `json:"halt"`
	// Skipped counts the actions never reached because the replay stopped early.
	Skipped int `json:"skipped"`
}

// Replay runs actions in order from initial. After each action every timed
// buff ages one step and the action is recorded in the history. The replay
// stops once the goal is met or durability runs out.
//
// An inapplicable action ends the replay with an *IllegalActionError; the
// returned trace then holds the steps that did execute.
func Replay(initial State, actions []Action, goal Goal) (*Trace, error) {
	cur := initial.Clone()
	trace := &Trace{
		Initial: initial.Clone(),
		Steps:   make([]Step, 0, len(actions)),
		Halt:    HaltExhausted,
	}

	for i, a := range actions {
		if reason := a.blocked(cur); reason != "" {
			trace.Final = cur
			trace.Halt = HaltIllegal
			trace.Skipped = len(actions) - i
			return trace, &IllegalActionError{Action: a.Name, Step: i, Reason: reason}
		}

		next, err := a.Apply(cur)
		if err != nil {
			return trace, err
		}
		next.Buffs = next.Buffs.Tick()
		next = next.Record(a.Name)

		trace.Steps = append(trace.Steps, Step{Index: i, Action: a.Name, State: next})
		cur = next

		if goal.RequiredProgress > 0 && cur.Complete(goal) {
			trace.Halt = HaltComplete
			trace.Skipped = len(actions) - i - 1
			break
		}
		if cur.Broken() {
			trace.Halt = HaltBroken
			trace.Skipped = len(actions) - i - 1
			break
		}
	}

	trace.Final = cur
	return trace, nil
}

// ReplayNames resolves names against the catalog and replays them.
func ReplayNames(initial State, names []string, catalog *Catalog, goal Goal) (*Trace, error) {
	actions, err := catalog.Resolve(names)
	if err != nil {
		return nil, err
	}
	return Replay(initial, actions, goal)
}

// Reapply runs actions the way the search does: no buff aging and no early
// stop. It is used to check a path returned by a search strategy.
func Reapply(initial State, actions []Action) (State, error) {
	cur := initial.Clone()
	for i, a := range actions {
		next, err := a.Apply(cur)
		if err != nil {
			var ie *IllegalActionError
			if errors.As(err, &ie) {
				ie.Step = i
			}
			return cur, err
		}
		cur = next.Record(a.Name)
	}
	return cur, nil
}
