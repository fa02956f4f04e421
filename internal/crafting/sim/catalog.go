package sim

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Catalog is a read-only registry of the actions available to a server.
// It is built once and shared by every request.
type Catalog struct {
	actions []Action
	byName  map[string]Action
	byFold  map[string]Action
}

// NewCatalog builds a catalog. Actions are kept in unlock-level order.
func NewCatalog(actions []Action) (*Catalog, error) {
	c := &Catalog{
		actions: make([]Action, 0, len(actions)),
		byName:  make(map[string]Action, len(actions)),
		byFold:  make(map[string]Action, len(actions)),
	}
	for _, a := range actions {
		if a.Name == "" {
			return nil, fmt.Errorf("action for skill %s has no name", a.Skill)
		}
		if _, ok := variants[a.Skill]; !ok {
			return nil, fmt.Errorf("action %q: unregistered skill %d", a.Name, int(a.Skill))
		}
		if _, dup := c.byName[a.Name]; dup {
			return nil, fmt.Errorf("duplicate action %q", a.Name)
		}
		c.actions = append(c.actions, a)
		c.byName[a.Name] = a
		c.byFold[strings.ToLower(a.Name)] = a
	}
	sort.SliceStable(c.actions, func(i, j int) bool {
		return c.actions[i].UnlockLevel < c.actions[j].UnlockLevel
	})
	return c, nil
}

// All returns every action in the catalog.
func (c *Catalog) All() []Action {
	out := make([]Action, len(c.actions))
	copy(out, c.actions)
	return out
}

// Len returns the number of registered actions.
func (c *Catalog) Len() int {
	return len(c.actions)
}

// Lookup finds an action by name. Names match exactly first and then
// case-insensitively.
func (c *Catalog) Lookup(name string) (Action, error) {
	if a, ok := c.byName[name]; ok {
		return a, nil
	}
	if a, ok := c.byFold[strings.ToLower(strings.TrimSpace(name))]; ok {
		return a, nil
	}
	return Action{}, &UnknownActionError{Name: name, Suggestion: c.Suggest(name)}
}

// Resolve looks up each name in order.
func (c *Catalog) Resolve(names []string) ([]Action, error) {
	out := make([]Action, 0, len(names))
	for _, name := range names {
		a, err := c.Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// UnlockedAt returns the actions available at the given crafting level.
// A level of zero or less returns the whole catalog.
func (c *Catalog) UnlockedAt(level int) []Action {
	if level <= 0 {
		return c.All()
	}
	var out []Action
	for _, a := range c.actions {
		if a.UnlockLevel <= level {
			out = append(out, a)
		}
	}
	return out
}

// Filter returns the actions unlocked at level, narrowed to allow when it is
// not empty. Every allowed name must exist in the catalog.
func (c *Catalog) Filter(level int, allow []string) ([]Action, error) {
	unlocked := c.UnlockedAt(level)
	if len(allow) == 0 {
		return unlocked, nil
	}

	wanted := make(map[string]bool, len(allow))
	for _, name := range allow {
		a, err := c.Lookup(name)
		if err != nil {
			return nil, err
		}
		wanted[a.Name] = true
	}

	var out []Action
	for _, a := range unlocked {
		if wanted[a.Name] {
			out = append(out, a)
		}
	}
	return out, nil
}

// Suggest returns the catalog name closest to name, or "" when nothing is
// close enough to be a plausible typo.
func (c *Catalog) Suggest(name string) string {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return ""
	}

	best, bestDist := "", -1
	for _, a := range c.actions {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(a.Name))
		if bestDist < 0 || d < bestDist {
			best, bestDist = a.Name, d
		}
	}
	if bestDist < 0 || bestDist > max(2, len(needle)/3) {
		return ""
	}
	return best
}
