package sim

import (
	"fmt"
	"strconv"
)

// Category groups actions by what they change.
type Category int

const (
	CategoryProgress Category = iota
	CategoryQuality
	CategoryBuff
	CategoryRepair
	CategoryCPRecovery
	CategoryCombo
)

var categoryNames = [...]string{
	CategoryProgress:   "progress",
	CategoryQuality:    "quality",
	CategoryBuff:       "buff",
	CategoryRepair:     "repair",
	CategoryCPRecovery: "cp-recovery",
	CategoryCombo:      "combo",
}

func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "Category(" + strconv.Itoa(int(c)) + ")"
}

// ParseCategory maps a category name such as "quality" onto a Category.
func ParseCategory(name string) (Category, error) {
	for c, n := range categoryNames {
		if n == name {
			return Category(c), nil
		}
	}
	return 0, fmt.Errorf("unknown action category %q", name)
}

// Action is one usable crafting skill. The Skill selects the behaviour; the
// remaining fields are the skill's fixed attributes.
type Action struct {
	Skill          Skill
	Name           string
	Category       Category
	CPCost         int
	DurabilityCost int
	// WaitSeconds is the macro wait after the action. The search ignores it.
	WaitSeconds int
	UnlockLevel int
}

// CanExecute reports whether the action may be applied to s.
func (a Action) CanExecute(s State) bool {
	return a.blocked(s) == ""
}

// blocked returns why the action cannot run on s, or "" when it can.
func (a Action) blocked(s State) string {
	if s.Durability <= 0 {
		return "durability exhausted"
	}
	if a.CPCost > 0 && s.CP < a.CPCost {
		return "insufficient CP"
	}
	v, ok := variants[a.Skill]
	if !ok {
		return "unregistered skill"
	}
	if v.allowed != nil && !v.allowed(s) {
		return v.requirement
	}
	return ""
}

// Apply returns the state after performing the action on s. s itself is not
// modified. Applying an action that cannot execute returns an
// *IllegalActionError.
func (a Action) Apply(s State) (State, error) {
	if reason := a.blocked(s); reason != "" {
		return State{}, &IllegalActionError{Action: a.Name, Step: -1, Reason: reason}
	}

	next := s.Clone()
	next.CP -= a.CPCost
	next.Durability -= a.DurabilityCost
	return variants[a.Skill].effect(next), nil
}

// Cost is the path cost the best-first search charges for the action.
func (a Action) Cost() int {
	return max(a.CPCost, 1) + 2
}

// scaled multiplies base by each percentage and truncates once at the end,
// so the result does not depend on the order of the modifiers.
func scaled(base int, percents ...int) int {
	num, den := base, 1
	for _, p := range percents {
		num *= p
		den *= 100
	}
	return num / den
}
