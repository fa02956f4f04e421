// Package crafting contains the request and response types of the crafting
// macro server. Field names follow the public JSON API.
package crafting

import "time"

// ============================================
// INPUT TYPES
// ============================================

// PlayerStatus describes the crafter.
type PlayerStatus struct {
	CraftingLevel int `json:"craftingLevel" validate:"gte=1,lte=100"`
	Craftsmanship int `json:"craftsmanship" validate:"gte=0"`
	Control       int `json:"control" validate:"gte=0"`
	CP            int `json:"cp" validate:"gte=0,lte=1000"`
}

// Difficulty classifies a recipe. The optimizer does not use it.
type Difficulty string

const (
	DifficultyNormal Difficulty = "NORMAL"
	DifficultyHard   Difficulty = "HARD"
	DifficultyExpert Difficulty = "EXPERT"
)

// Recipe is the item being crafted.
type Recipe struct {
	Name             string     `json:"name,omitempty"`
	RequiredProgress int        `json:"requiredProgress" validate:"gt=0"`
	MaxQuality       int        `json:"maxQuality" validate:"gte=0"`
	BaseDurability   int        `json:"baseDurability" validate:"gte=0,lte=200"`
	Difficulty       Difficulty `json:"difficulty,omitempty" validate:"omitempty,oneof=NORMAL HARD EXPERT"`
}

// MacroRequest asks for an optimized macro.
type MacroRequest struct {
	PlayerStatus PlayerStatus `json:"playerStatus"`
	Recipe       Recipe       `json:"recipe"`

	// AvailableSkills restricts the search to these skill names. Empty means
	// every skill unlocked at the player's level.
	AvailableSkills []string `json:"availableSkills,omitempty" validate:"omitempty,dive,required"`

	// QualityFocus defaults to true.
	QualityFocus *bool `json:"qualityFocus,omitempty"`
	// DurabilityConstraint defaults to true.
	DurabilityConstraint *bool `json:"durabilityConstraint,omitempty"`

	// Strategy picks the search algorithm: best-first, beam or memo.
	Strategy string `json:"strategy,omitempty"`
	// TimeLimitMs caps the search time. Zero uses the server default.
	TimeLimitMs int `json:"timeLimitMs,omitempty" validate:"gte=0,lte=60000"`
}

// WantsQuality returns QualityFocus with its default applied.
func (r *MacroRequest) WantsQuality() bool {
	return r.QualityFocus == nil || *r.QualityFocus
}

// KeepsDurability returns DurabilityConstraint with its default applied.
func (r *MacroRequest) KeepsDurability() bool {
	return r.DurabilityConstraint == nil || *r.DurabilityConstraint
}

// SimulateRequest replays a fixed action sequence. Exactly one of Actions
// and MacroText is used; Actions wins when both are set.
type SimulateRequest struct {
	PlayerStatus PlayerStatus `json:"playerStatus"`
	Recipe       Recipe       `json:"recipe"`

	Actions   []string `json:"actions,omitempty" validate:"omitempty,dive,required"`
	MacroText string   `json:"macroText,omitempty"`

	// InitialBuffs are legacy "Name" or "Name:N" strings active at the start.
	InitialBuffs []string `json:"initialBuffs,omitempty"`
}

// ============================================
// OUTPUT TYPES
// ============================================

// MacroResponse is the result of a macro generation.
type MacroResponse struct {
	MacroText      []string `json:"macroText"`
	ActionSequence []string `json:"actionSequence"`

	FinalQuality        int `json:"finalQuality"`
	FinalProgress       int `json:"finalProgress"`
	TotalCPUsed         int `json:"totalCPUsed"`
	DurabilityRemaining int `json:"durabilityRemaining"`

	QualityPercentage int  `json:"qualityPercentage"`
	ProgressComplete  bool `json:"progressComplete"`

	CalculationTimeMs int64   `json:"calculationTimeMs"`
	ExploredStates    int     `json:"exploredStates"`
	Strategy          string  `json:"strategy"`
	StopReason        string  `json:"stopReason"`
	Score             float64 `json:"score"`
	Cached            bool    `json:"cached,omitempty"`
	RunID             string  `json:"runId,omitempty"`
}

// BuffStatus is one active buff in a simulation step.
type BuffStatus struct {
	Name     string `json:"name"`
	Duration int    `json:"duration,omitempty"`
	Stacks   int    `json:"stacks,omitempty"`
}

// SimulationStep is the state after one replayed action.
type SimulationStep struct {
	Step       int          `json:"step"`
	Action     string       `json:"action"`
	Progress   int          `json:"progress"`
	Quality    int          `json:"quality"`
	Durability int          `json:"durability"`
	CP         int          `json:"cp"`
	Buffs      []BuffStatus `json:"buffs,omitempty"`
}

// SimulateResponse is the outcome of replaying a macro.
type SimulateResponse struct {
	Steps []SimulationStep `json:"steps"`

	FinalQuality        int  `json:"finalQuality"`
	FinalProgress       int  `json:"finalProgress"`
	TotalCPUsed         int  `json:"totalCPUsed"`
	DurabilityRemaining int  `json:"durabilityRemaining"`
	QualityPercentage   int  `json:"qualityPercentage"`
	ProgressComplete    bool `json:"progressComplete"`

	// Halt is complete, broken, exhausted or illegal.
	Halt           string `json:"halt"`
	SkippedActions int    `json:"skippedActions"`
	// Error is set when an action could not execute.
	Error string `json:"error,omitempty"`
}

// ============================================
// SKILL TYPES
// ============================================

// SkillInfo describes a registered skill.
type SkillInfo struct {
	Name           string `json:"name"`
	Variant        string `json:"variant"`
	Category       string `json:"category"`
	CPCost         int    `json:"cpCost"`
	DurabilityCost int    `json:"durabilityCost"`
	WaitSeconds    int    `json:"waitSeconds"`
	UnlockLevel    int    `json:"unlockLevel"`
}

// ============================================
// HISTORY TYPES
// ============================================

// MacroRun is a stored record of one generation.
type MacroRun struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	RecipeName string    `json:"recipeName,omitempty"`
	Strategy   string    `json:"strategy"`
	Objective  string    `json:"objective"`
	Actions    []string  `json:"actions"`
	Quality    int       `json:"quality"`
	Progress   int       `json:"progress"`
	Complete   bool      `json:"complete"`
	Score      float64   `json:"score"`
	Explored   int       `json:"explored"`
	ElapsedMs  int64     `json:"elapsedMs"`
	StopReason string    `json:"stopReason"`
}
