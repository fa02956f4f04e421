package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/rsned/crafting-macro-server/internal/crafting/macro"
	"github.com/rsned/crafting-macro-server/internal/crafting/sim"
	"github.com/rsned/crafting-macro-server/internal/crafting/validate"
	"github.com/rsned/crafting-macro-server/pkg/crafting"
)

// SimulateMacro replays a fixed action sequence and reports the state after
// every step. An action that cannot execute ends the replay; the response
// then carries the steps that ran and the reason in Error.
func (e *Engine) SimulateMacro(ctx context.Context, req crafting.SimulateRequest) (*crafting.SimulateResponse, error) {
	if err := e.validator.Struct(req); err != nil {
		return nil, err
	}

	names := req.Actions
	if len(names) == 0 {
		if strings.TrimSpace(req.MacroText) == "" {
			return nil, validate.Problemf("one of actions or macroText is required")
		}
		names = macro.Parse(req.MacroText)
		if len(names) == 0 {
			return nil, validate.Problemf("macroText contains no /ac lines")
		}
	}

	goal := goalOf(req.Recipe)
	initial := sim.NewState(goal, req.PlayerStatus.CP)
	for i, text := range req.InitialBuffs {
		b, err := sim.ParseBuff(text)
		if err != nil {
			return nil, validate.Problemf("initialBuffs[%d]: %v", i, err)
		}
		initial.Buffs = initial.Buffs.With(b)
	}

	catalog, err := e.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	trace, err := sim.ReplayNames(initial, names, catalog, goal)
	var illegal *sim.IllegalActionError
	if err != nil && !errors.As(err, &illegal) {
		return nil, err
	}

	resp := &crafting.SimulateResponse{
		Steps:               make([]crafting.SimulationStep, 0, len(trace.Steps)),
		FinalQuality:        trace.Final.Quality,
		FinalProgress:       trace.Final.Progress,
		TotalCPUsed:         initial.CP - trace.Final.CP,
		DurabilityRemaining: trace.Final.Durability,
		QualityPercentage:   qualityPercentage(trace.Final.Quality, goal.MaxQuality),
		ProgressComplete:    trace.Final.Complete(goal),
		Halt:                string(trace.Halt),
		SkippedActions:      trace.Skipped,
	}
	if illegal != nil {
		resp.Error = illegal.Error()
	}
	for _, st := range trace.Steps {
		resp.Steps = append(resp.Steps, crafting.SimulationStep{
			Step:       st.Index + 1,
			Action:     st.Action,
			Progress:   st.State.Progress,
			Quality:    st.State.Quality,
			Durability: st.State.Durability,
			CP:         st.State.CP,
			Buffs:      buffStatuses(st.State.Buffs),
		})
	}

	e.logger.Debug("simulated macro", "actions", len(names), "halt", trace.Halt, "steps", len(trace.Steps))
	return resp, nil
}

func buffStatuses(bs sim.Buffs) []crafting.BuffStatus {
	if len(bs) == 0 {
		return nil
	}
	out := make([]crafting.BuffStatus, 0, len(bs))
	for _, b := range bs {
		st := crafting.BuffStatus{Name: b.Name, Stacks: b.Stacks}
		if b.Timed() {
			st.Duration = b.Duration
		}
		out = append(out, st)
	}
	return out
}
