package sim

import (
	"fmt"
	"strconv"
)

// Skill identifies the behaviour of an action.
type Skill int

const (
	SkillBasicSynthesis Skill = iota + 1
	SkillBasicTouch
	SkillMastersMend
	SkillInnerQuiet
	SkillVeneration
	SkillInnovation
	SkillMuscleMemory
)

// variant is the behaviour table entry for one skill.
type variant struct {
	key         string
	allowed     func(State) bool
	requirement string
	// effect receives a state that already paid the CP and durability cost
	// and is owned by the caller.
	effect func(State) State
}

var variants = map[Skill]variant{
	SkillBasicSynthesis: {
		key: "basic-synthesis",
		effect: func(s State) State {
			var pct []int
			if s.Buffs.Has(BuffMuscleMemory) {
				pct = append(pct, 150)
				s.Buffs = s.Buffs.Without(BuffMuscleMemory)
			}
			if s.Buffs.Has(BuffVeneration) {
				pct = append(pct, 120)
			}
			s.Progress += scaled(120, pct...)
			return s
		},
	},
	SkillBasicTouch: {
		key: "basic-touch",
		effect: func(s State) State {
			var pct []int
			if s.Buffs.Has(BuffInnovation) {
				pct = append(pct, 150)
			}
			if iq, ok := s.Buffs.Get(BuffInnerQuiet); ok {
				pct = append(pct, 100+10*iq.Stacks)
				iq.Stacks = min(iq.Stacks+1, MaxInnerQuietStacks)
				s.Buffs = s.Buffs.With(iq)
			}
			s.Quality += scaled(100, pct...)
			return s
		},
	},
	SkillMastersMend: {
		key: "masters-mend",
		effect: func(s State) State {
			s.Durability += 30
			if s.MaxDurability > 0 && s.Durability > s.MaxDurability {
				s.Durability = s.MaxDurability
			}
			return s
		},
	},
	SkillInnerQuiet: {
		key:         "inner-quiet",
		allowed:     notActive(BuffInnerQuiet),
		requirement: "Inner Quiet is already active",
		effect: func(s State) State {
			s.Buffs = s.Buffs.With(Buff{Name: BuffInnerQuiet, Duration: Unbounded, Stacks: 1})
			return s
		},
	},
	SkillVeneration: {
		key:         "veneration",
		allowed:     notActive(BuffVeneration),
		requirement: "Veneration is already active",
		effect:      grant(BuffVeneration, 4),
	},
	SkillInnovation: {
		key:         "innovation",
		allowed:     notActive(BuffInnovation),
		requirement: "Innovation is already active",
		effect:      grant(BuffInnovation, 4),
	},
	SkillMuscleMemory: {
		key:         "muscle-memory",
		allowed:     func(s State) bool { return len(s.History) == 0 },
		requirement: "only usable as the first step",
		effect: func(s State) State {
			s.Progress += 300
			s.Buffs = s.Buffs.With(Buff{Name: BuffMuscleMemory, Duration: 5})
			return s
		},
	},
}

func notActive(name string) func(State) bool {
	return func(s State) bool { return !s.Buffs.Has(name) }
}

func grant(name string, steps int) func(State) State {
	return func(s State) State {
		s.Buffs = s.Buffs.With(Buff{Name: name, Duration: steps})
		return s
	}
}

func (k Skill) String() string {
	if v, ok := variants[k]; ok {
		return v.key
	}
	return "Skill(" + strconv.Itoa(int(k)) + ")"
}

// ParseSkill maps a variant key such as "basic-synthesis" onto a Skill.
func ParseSkill(key string) (Skill, error) {
	for k, v := range variants {
		if v.key == key {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown skill variant %q", key)
}

// DefaultActions returns the built-in skill registry, ordered by unlock level.
func DefaultActions() []Action {
	return []Action{
		{Skill: SkillBasicSynthesis, Name: "Basic Synthesis", Category: CategoryProgress, DurabilityCost: 10, WaitSeconds: 3, UnlockLevel: 1},
		{Skill: SkillBasicTouch, Name: "Basic Touch", Category: CategoryQuality, CPCost: 18, DurabilityCost: 10, WaitSeconds: 3, UnlockLevel: 5},
		{Skill: SkillMastersMend, Name: "Master's Mend", Category: CategoryRepair, CPCost: 88, WaitSeconds: 3, UnlockLevel: 7},
		{Skill: SkillInnerQuiet, Name: "Inner Quiet", Category: CategoryBuff, CPCost: 18, WaitSeconds: 2, UnlockLevel: 11},
		{Skill: SkillVeneration, Name: "Veneration", Category: CategoryBuff, CPCost: 18, WaitSeconds: 2, UnlockLevel: 21},
		{Skill: SkillInnovation, Name: "Innovation", Category: CategoryBuff, CPCost: 18, WaitSeconds: 2, UnlockLevel: 26},
		{Skill: SkillMuscleMemory, Name: "Muscle Memory", Category: CategoryCombo, CPCost: 6, DurabilityCost: 10, WaitSeconds: 3, UnlockLevel: 54},
	}
}

// DefaultAction returns the built-in action for skill k.
func DefaultAction(k Skill) (Action, bool) {
	for _, a := range DefaultActions() {
		if a.Skill == k {
			return a, true
		}
	}
	return Action{}, false
}
