// Package sync imports skill registries from JSON exports into the database.
package sync

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/rsned/crafting-macro-server/internal/crafting/db"
	"github.com/rsned/crafting-macro-server/internal/crafting/sim"
)

// Metadata keys written after an import.
const (
	KeySkillsLastSync = "skills_last_sync"
	KeySkillsCount    = "skills_count"
	KeySkillsSource   = "skills_source"
)

// Syncer handles skill registry imports.
type Syncer struct {
	db     *db.DB
	skills *db.SkillStore
}

// NewSyncer creates a new Syncer.
func NewSyncer(database *db.DB) *Syncer {
	return &Syncer{db: database, skills: db.NewSkillStore(database)}
}

// ImportSkillsFromFile replaces the skill registry with the skills in a JSON
// file and returns how many were imported.
func (s *Syncer) ImportSkillsFromFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading file: %w", err)
	}

	n, err := s.ImportSkills(ctx, data)
	if err != nil {
		return 0, err
	}
	if err := s.db.SetSyncMetadata(ctx, KeySkillsSource, path); err != nil {
		return 0, err
	}
	return n, nil
}

// ImportSkills replaces the skill registry with the skills in data. The
// document is either an array of skills or an object with a "skills" array.
func (s *Syncer) ImportSkills(ctx context.Context, data []byte) (int, error) {
	actions, err := ParseSkills(data)
	if err != nil {
		return 0, err
	}

	if err := s.skills.ReplaceSkills(ctx, actions); err != nil {
		return 0, fmt.Errorf("inserting skills: %w", err)
	}

	if err := s.db.SetSyncMetadata(ctx, KeySkillsLastSync, time.Now().Format(time.RFC3339)); err != nil {
		return 0, err
	}
	if err := s.db.SetSyncMetadata(ctx, KeySkillsCount, fmt.Sprintf("%d", len(actions))); err != nil {
		return 0, err
	}

	return len(actions), nil
}

// ResetSkills restores the built-in skill registry.
func (s *Syncer) ResetSkills(ctx context.Context) error {
	if err := s.skills.ReplaceSkills(ctx, sim.DefaultActions()); err != nil {
		return fmt.Errorf("resetting skills: %w", err)
	}
	return s.db.SetSyncMetadata(ctx, KeySkillsSource, "builtin")
}

// ParseSkills reads skill definitions. Several field spellings are accepted
// for each attribute, and attributes left out are taken from the built-in
// definition of the same skill.
func ParseSkills(data []byte) ([]sim.Action, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parsing JSON: invalid document")
	}

	root := gjson.ParseBytes(data)
	list := root
	if root.IsObject() {
		list = root.Get("skills")
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("parsing JSON: expected an array of skills")
	}

	var (
		actions  []sim.Action
		parseErr error
	)
	list.ForEach(func(_, v gjson.Result) bool {
		a, err := transformSkill(v)
		if err != nil {
			parseErr = fmt.Errorf("skill %d: %w", len(actions)+1, err)
			return false
		}
		actions = append(actions, a)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	if _, err := sim.NewCatalog(actions); err != nil {
		return nil, fmt.Errorf("validating skills: %w", err)
	}
	return actions, nil
}

// first returns the first of paths present in v.
func first(v gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if r := v.Get(p); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

// transformSkill converts one import record to an action.
func transformSkill(v gjson.Result) (sim.Action, error) {
	name := strings.TrimSpace(first(v, "name", "skill_name", "skillName").String())
	if name == "" {
		return sim.Action{}, fmt.Errorf("missing name")
	}

	// Handle variant - fall back to matching a built-in skill by name
	var (
		base sim.Action
		ok   bool
	)
	if key := first(v, "variant", "type", "id"); key.Exists() {
		skill, err := sim.ParseSkill(normaliseKey(key.String()))
		if err != nil {
			return sim.Action{}, fmt.Errorf("%s: %w", name, err)
		}
		base, ok = sim.DefaultAction(skill)
	} else {
		base, ok = builtinByName(name)
	}
	if !ok {
		return sim.Action{}, fmt.Errorf("%s: cannot tell which skill this is", name)
	}

	a := base
	a.Name = name

	if r := first(v, "category"); r.Exists() {
		cat, err := sim.ParseCategory(strings.ToLower(r.String()))
		if err != nil {
			return sim.Action{}, fmt.Errorf("%s: %w", name, err)
		}
		a.Category = cat
	}
	if r := first(v, "cp_cost", "cpCost", "cp"); r.Exists() {
		a.CPCost = int(r.Int())
	}
	if r := first(v, "durability_cost", "durabilityCost", "durability"); r.Exists() {
		a.DurabilityCost = int(r.Int())
	}
	if r := first(v, "wait_seconds", "waitSeconds", "execute_time", "executeTime", "wait"); r.Exists() {
		a.WaitSeconds = int(r.Int())
	}
	if r := first(v, "unlock_level", "unlockLevel", "level"); r.Exists() {
		a.UnlockLevel = int(r.Int())
	}

	if a.CPCost < 0 || a.DurabilityCost < 0 || a.WaitSeconds < 0 || a.UnlockLevel < 1 {
		return sim.Action{}, fmt.Errorf("%s: costs must not be negative and unlock level must be at least 1", name)
	}
	return a, nil
}

// normaliseKey turns "Basic Synthesis", "BASIC_SYNTHESIS" or "basicSynthesis"
// style keys into the "basic-synthesis" form.
func normaliseKey(key string) string {
	var sb strings.Builder
	for i, r := range strings.TrimSpace(key) {
		switch {
		case r == ' ' || r == '_' || r == '-':
			sb.WriteByte('-')
		case r == '\'':
		case r >= 'A' && r <= 'Z':
			if i > 0 && !strings.HasSuffix(sb.String(), "-") && strings.ToUpper(key) != key {
				sb.WriteByte('-')
			}
			sb.WriteRune(r + ('a' - 'A'))
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func builtinByName(name string) (sim.Action, bool) {
	for _, a := range sim.DefaultActions() {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return sim.Action{}, false
}
