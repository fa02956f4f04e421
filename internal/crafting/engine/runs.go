package engine

import (
	"context"

	"github.com/rsned/crafting-macro-server/internal/crafting/search"
	"github.com/rsned/crafting-macro-server/pkg/crafting"
)

// recordRun stores a generation in the run history and returns its ID.
// History is best effort: failures are logged and yield an empty ID.
func (e *Engine) recordRun(ctx context.Context, req crafting.MacroRequest, objective search.Objective, resp *crafting.MacroResponse) string {
	run := &crafting.MacroRun{
		RecipeName: req.Recipe.Name,
		Strategy:   resp.Strategy,
		Objective:  objective.String(),
		Actions:    resp.ActionSequence,
		Quality:    resp.FinalQuality,
		Progress:   resp.FinalProgress,
		Complete:   resp.ProgressComplete,
		Score:      resp.Score,
		Explored:   resp.ExploredStates,
		ElapsedMs:  resp.CalculationTimeMs,
		StopReason: resp.StopReason,
	}
	if err := e.runs.RecordRun(ctx, run); err != nil {
		e.logger.Warn("failed to record macro run", "error", err)
		return ""
	}

	if e.history.Keep > 0 {
		if n, err := e.runs.PruneRuns(ctx, e.history.Keep); err != nil {
			e.logger.Warn("failed to prune macro runs", "error", err)
		} else if n > 0 {
			e.logger.Debug("pruned macro runs", "removed", n)
		}
	}
	return run.ID
}

// RecentRuns returns up to limit stored generations, newest first.
func (e *Engine) RecentRuns(ctx context.Context, limit int) ([]crafting.MacroRun, error) {
	return e.runs.RecentRuns(ctx, limit)
}

// GetRun returns a stored generation, or nil if there is none with that ID.
func (e *Engine) GetRun(ctx context.Context, id string) (*crafting.MacroRun, error) {
	return e.runs.GetRun(ctx, id)
}
