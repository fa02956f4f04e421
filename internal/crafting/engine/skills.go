package engine

import (
	"context"

	"github.com/rsned/crafting-macro-server/pkg/crafting"
)

// AvailableSkills lists the skills unlocked at a crafting level, lowest
// unlock level first. A level of zero or less lists every skill.
func (e *Engine) AvailableSkills(ctx context.Context, level int) ([]crafting.SkillInfo, error) {
	catalog, err := e.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	actions := catalog.UnlockedAt(level)
	skills := make([]crafting.SkillInfo, 0, len(actions))
	for _, a := range actions {
		skills = append(skills, crafting.SkillInfo{
			Name:           a.Name,
			Variant:        a.Skill.String(),
			Category:       a.Category.String(),
			CPCost:         a.CPCost,
			DurabilityCost: a.DurabilityCost,
			WaitSeconds:    a.WaitSeconds,
			UnlockLevel:    a.UnlockLevel,
		})
	}
	return skills, nil
}
