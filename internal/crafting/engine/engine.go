// Package engine contains the macro generation and simulation logic.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/rsned/crafting-macro-server/internal/crafting/config"
	"github.com/rsned/crafting-macro-server/internal/crafting/db"
	"github.com/rsned/crafting-macro-server/internal/crafting/search"
	"github.com/rsned/crafting-macro-server/internal/crafting/sim"
	"github.com/rsned/crafting-macro-server/internal/crafting/validate"
	"github.com/rsned/crafting-macro-server/pkg/crafting"
)

// TracerName names the engine's OpenTelemetry tracer.
const TracerName = "github.com/rsned/crafting-macro-server/engine"

// Engine answers macro generation, simulation and skill queries.
type Engine struct {
	skills *db.SkillStore
	runs   *db.RunStore

	search  config.SearchConfig
	history config.HistoryConfig
	pool    *search.WorkerPool
	cache   *lru.Cache[string, crafting.MacroResponse]

	validator *validate.Validator
	logger    *slog.Logger
	tracer    trace.Tracer

	mu      sync.RWMutex
	catalog *sim.Catalog
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithTracer sets the tracer. The default comes from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// New creates a new Engine over the given database. cfg supplies the search,
// cache and history settings; nil uses config.DefaultConfig().
func New(database *db.DB, cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	e := &Engine{
		skills:    db.NewSkillStore(database),
		runs:      db.NewRunStore(database),
		search:    cfg.Search,
		history:   cfg.History,
		validator: validate.New("json"),
		logger:    slog.Default(),
		tracer:    otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(e)
	}

	if cfg.Search.Parallel {
		e.pool = search.NewWorkerPool(cfg.Search.Workers)
	}
	if cfg.Cache.Size > 0 {
		cache, err := lru.New[string, crafting.MacroResponse](cfg.Cache.Size)
		if err != nil {
			return nil, fmt.Errorf("creating response cache: %w", err)
		}
		e.cache = cache
	}

	return e, nil
}

// Catalog returns the skill catalog, loading it from the database on first
// use. An empty registry is seeded with the built-in skills.
func (e *Engine) Catalog(ctx context.Context) (*sim.Catalog, error) {
	e.mu.RLock()
	c := e.catalog
	e.mu.RUnlock()
	if c != nil {
		return c, nil
	}
	return e.ReloadCatalog(ctx)
}

// ReloadCatalog rebuilds the catalog from the database and drops cached
// responses. Call it after the skill registry changes.
func (e *Engine) ReloadCatalog(ctx context.Context) (*sim.Catalog, error) {
	seeded, err := e.skills.SeedDefaults(ctx)
	if err != nil {
		return nil, err
	}
	if seeded {
		e.logger.Info("seeded built-in skills")
	}

	actions, err := e.skills.ListSkills(ctx)
	if err != nil {
		return nil, err
	}
	c, err := sim.NewCatalog(actions)
	if err != nil {
		return nil, fmt.Errorf("building catalog: %w", err)
	}

	e.mu.Lock()
	e.catalog = c
	e.mu.Unlock()

	if e.cache != nil {
		e.cache.Purge()
	}
	e.logger.Debug("loaded skill catalog", "skills", c.Len())
	return c, nil
}

// searchOptions turns the configured limits into strategy options.
func (e *Engine) searchOptions() search.Options {
	// Validated config values always parse.
	policy, _ := sim.ParseKeyPolicy(e.search.KeyPolicy)
	return search.Options{
		KeyPolicy:  policy,
		MaxNodes:   e.search.BestFirst.MaxNodes,
		MaxActions: e.search.BestFirst.MaxActions,
		BeamWidth:  e.search.Beam.Width,
		BeamDepth:  e.search.Beam.Depth,
		MemoDepth:  e.search.Memo.MaxDepth,
		Pool:       e.pool,
		Logger:     e.logger,
	}
}

// goalOf maps a recipe onto the search goal.
func goalOf(r crafting.Recipe) sim.Goal {
	return sim.Goal{
		RequiredProgress: r.RequiredProgress,
		MaxQuality:       r.MaxQuality,
		BaseDurability:   r.BaseDurability,
	}
}

// qualityPercentage returns quality as a rounded share of maxQuality.
func qualityPercentage(quality, maxQuality int) int {
	if maxQuality <= 0 {
		return 0
	}
	return (200*quality + maxQuality) / (2 * maxQuality)
}
