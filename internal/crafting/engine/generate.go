package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/rsned/crafting-macro-server/internal/crafting/macro"
	"github.com/rsned/crafting-macro-server/internal/crafting/search"
	"github.com/rsned/crafting-macro-server/internal/crafting/sim"
	"github.com/rsned/crafting-macro-server/internal/crafting/validate"
	"github.com/rsned/crafting-macro-server/pkg/crafting"
)

// GenerateMacro searches for the best action sequence for a recipe and
// renders it as macro text.
func (e *Engine) GenerateMacro(ctx context.Context, req crafting.MacroRequest) (*crafting.MacroResponse, error) {
	startTime := time.Now()

	if err := e.validator.Struct(req); err != nil {
		return nil, err
	}

	// Apply defaults
	strategyName := req.Strategy
	if strategyName == "" {
		strategyName = e.search.Strategy
	}
	kind, err := search.ParseKind(strategyName)
	if err != nil {
		return nil, err
	}
	timeLimit := e.search.TimeLimit
	if req.TimeLimitMs > 0 {
		timeLimit = time.Duration(req.TimeLimitMs) * time.Millisecond
	}

	catalog, err := e.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	actions, err := catalog.Filter(req.PlayerStatus.CraftingLevel, req.AvailableSkills)
	if err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		return nil, validate.Problemf("no skills available at crafting level %d", req.PlayerStatus.CraftingLevel)
	}

	key := cacheKey(req, kind, timeLimit)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			resp := cloneResponse(cached)
			resp.Cached = true
			resp.CalculationTimeMs = time.Since(startTime).Milliseconds()
			e.logger.Debug("macro cache hit", "strategy", kind)
			return &resp, nil
		}
	}

	goal := goalOf(req.Recipe)
	initial := sim.NewState(goal, req.PlayerStatus.CP)
	objective := search.ObjectiveFor(req.WantsQuality())

	ctx, span := e.tracer.Start(ctx, "engine.GenerateMacro")
	defer span.End()
	span.SetAttributes(
		attribute.String("crafting.strategy", string(kind)),
		attribute.String("crafting.objective", objective.String()),
		attribute.Int("crafting.actions", len(actions)),
		attribute.Int("crafting.required_progress", goal.RequiredProgress),
	)

	strategy, err := search.New(kind, e.searchOptions())
	if err != nil {
		return nil, err
	}

	searchCtx, cancel := context.WithTimeout(ctx, timeLimit)
	defer cancel()

	res, err := strategy.FindOptimalPath(searchCtx, initial, actions, goal, objective, req.KeepsDurability())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("searching for macro: %w", err)
	}

	elapsed := time.Since(startTime)
	span.SetAttributes(
		attribute.Int("crafting.explored", res.Explored),
		attribute.String("crafting.stop_reason", string(res.Stop)),
		attribute.Float64("crafting.score", res.Score),
	)
	span.SetStatus(codes.Ok, "")

	resp := crafting.MacroResponse{
		MacroText:           macro.Format(res.Path),
		ActionSequence:      res.Names(),
		FinalQuality:        res.FinalQuality,
		FinalProgress:       res.FinalProgress,
		TotalCPUsed:         res.UsedCP,
		DurabilityRemaining: res.Final.Durability,
		QualityPercentage:   qualityPercentage(res.FinalQuality, goal.MaxQuality),
		ProgressComplete:    res.Complete(goal),
		CalculationTimeMs:   elapsed.Milliseconds(),
		ExploredStates:      res.Explored,
		Strategy:            string(kind),
		StopReason:          string(res.Stop),
		Score:               res.Score,
	}
	if resp.MacroText == nil {
		resp.MacroText = []string{}
	}

	e.logger.Info("generated macro",
		"strategy", kind,
		"objective", objective,
		"actions", len(res.Path),
		"explored", res.Explored,
		"score", res.Score,
		"stop", res.Stop,
		"elapsed", elapsed)

	if e.history.Enabled {
		resp.RunID = e.recordRun(ctx, req, objective, &resp)
	}
	// A search cut short by the time limit may do better next time.
	if e.cache != nil && res.Stop != search.StopDeadline {
		e.cache.Add(key, cloneResponse(resp))
	}

	return &resp, nil
}

// cacheKey fingerprints everything that influences a search result.
func cacheKey(req crafting.MacroRequest, kind search.Kind, timeLimit time.Duration) string {
	data, _ := json.Marshal(struct {
		Player    crafting.PlayerStatus `json:"p"`
		Recipe    crafting.Recipe       `json:"r"`
		Skills    []string              `json:"s"`
		Quality   bool                  `json:"q"`
		Durable   bool                  `json:"d"`
		Kind      search.Kind           `json:"k"`
		TimeLimit time.Duration         `json:"t"`
	}{
		Player:    req.PlayerStatus,
		Recipe:    req.Recipe,
		Skills:    req.AvailableSkills,
		Quality:   req.WantsQuality(),
		Durable:   req.KeepsDurability(),
		Kind:      kind,
		TimeLimit: timeLimit,
	})
	return string(data)
}

// cloneResponse copies resp so that cached entries and the responses handed
// to callers share no slices.
func cloneResponse(resp crafting.MacroResponse) crafting.MacroResponse {
	resp.MacroText = slices.Clone(resp.MacroText)
	resp.ActionSequence = slices.Clone(resp.ActionSequence)
	return resp
}
