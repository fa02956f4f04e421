package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/crafting-macro-server/internal/crafting/macro"
	"github.com/rsned/crafting-macro-server/internal/crafting/sim"
	"github.com/rsned/crafting-macro-server/internal/crafting/validate"
	"github.com/rsned/crafting-macro-server/pkg/crafting"
)

func simRequest(actions ...string) crafting.SimulateRequest {
	return crafting.SimulateRequest{
		PlayerStatus: crafting.PlayerStatus{CraftingLevel: 50, CP: 200},
		Recipe:       crafting.Recipe{RequiredProgress: 360, MaxQuality: 400},
		Actions:      actions,
	}
}

func TestSimulateMacroActions(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	resp, err := e.SimulateMacro(context.Background(),
		simRequest("Basic Touch", "Basic Synthesis", "Basic Synthesis", "Basic Synthesis", "Basic Touch"))
	require.NoError(t, err)

	assert.Equal(t, string(sim.HaltComplete), resp.Halt)
	assert.Equal(t, 1, resp.SkippedActions)
	assert.Empty(t, resp.Error)
	require.Len(t, resp.Steps, 4)
	assert.Equal(t, 1, resp.Steps[0].Step)
	assert.Equal(t, "Basic Touch", resp.Steps[0].Action)
	assert.Equal(t, 100, resp.Steps[0].Quality)
	assert.Equal(t, 182, resp.Steps[0].CP)

	assert.True(t, resp.ProgressComplete)
	assert.Equal(t, 360, resp.FinalProgress)
	assert.Equal(t, 100, resp.FinalQuality)
	assert.Equal(t, 25, resp.QualityPercentage)
	assert.Equal(t, 18, resp.TotalCPUsed)
	assert.Equal(t, 30, resp.DurabilityRemaining)
}

func TestSimulateMacroText(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	veneration, _ := sim.DefaultAction(sim.SkillVeneration)
	synth, _ := sim.DefaultAction(sim.SkillBasicSynthesis)
	req := simRequest()
	req.MacroText = macro.Format([]sim.Action{veneration, synth, synth})[0]

	resp, err := e.SimulateMacro(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, resp.Steps, 3)
	assert.Equal(t, string(sim.HaltExhausted), resp.Halt)
	assert.Equal(t, 288, resp.FinalProgress)
	require.Len(t, resp.Steps[0].Buffs, 1)
	assert.Equal(t, crafting.BuffStatus{Name: sim.BuffVeneration, Duration: 3}, resp.Steps[0].Buffs[0])
}

func TestSimulateMacroInitialBuffs(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	req := simRequest("Basic Synthesis", "Basic Touch")
	req.InitialBuffs = []string{"Veneration:1", "Inner Quiet:3"}
	resp, err := e.SimulateMacro(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, resp.Steps, 2)
	assert.Equal(t, 144, resp.Steps[0].Progress)
	assert.Equal(t, 130, resp.Steps[1].Quality)
	assert.Equal(t, []crafting.BuffStatus{{Name: sim.BuffInnerQuiet, Stacks: 4}}, resp.Steps[1].Buffs)
}

func TestSimulateMacroIllegalAction(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	req := simRequest("Basic Synthesis", "Basic Touch", "Basic Synthesis")
	req.PlayerStatus.CP = 10
	resp, err := e.SimulateMacro(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, string(sim.HaltIllegal), resp.Halt)
	assert.Equal(t, 2, resp.SkippedActions)
	assert.Len(t, resp.Steps, 1)
	assert.Contains(t, resp.Error, "step 2")
	assert.Contains(t, resp.Error, "insufficient CP")
	assert.Equal(t, 120, resp.FinalProgress)
}

func TestSimulateMacroErrors(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  crafting.SimulateRequest
		want string
	}{
		{"no input", simRequest(), "one of actions or macroText is required"},
		{"no ac lines", func() crafting.SimulateRequest {
			r := simRequest()
			r.MacroText = "/echo hello"
			return r
		}(), "macroText contains no /ac lines"},
		{"bad buff", func() crafting.SimulateRequest {
			r := simRequest("Basic Synthesis")
			r.InitialBuffs = []string{"Veneration:0"}
			return r
		}(), "initialBuffs[0]"},
		{"bad status", func() crafting.SimulateRequest {
			r := simRequest("Basic Synthesis")
			r.PlayerStatus.CP = 5000
			return r
		}(), "playerStatus.cp must be at most 1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.SimulateMacro(ctx, tt.req)
			var verr *validate.Error
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := e.SimulateMacro(ctx, simRequest("Basic Synthesis", "Prudent Touch"))
	assert.ErrorIs(t, err, sim.ErrUnknownAction)
}
