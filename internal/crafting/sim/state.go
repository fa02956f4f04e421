// Package sim models a crafting attempt: the resource state, the buff ledger,
// the registered skills and the step-by-step replay of a macro.
package sim

import (
	"fmt"
	"strconv"
)

// DefaultDurability is used when a recipe does not state its base durability.
const DefaultDurability = 70

// Goal is the part of a recipe the simulator and the search care about.
type Goal struct {
	RequiredProgress int `json:"required_progress"`
	MaxQuality       int `json:"max_quality"`
	BaseDurability   int `json:"base_durability"`
}

// Durability returns the recipe durability, falling back to DefaultDurability.
func (g Goal) Durability() int {
	if g.BaseDurability > 0 {
		return g.BaseDurability
	}
	return DefaultDurability
}

// State is one point of a crafting attempt. States are values: transitions
// build a new State and never write through to the one they started from.
type State struct {
	Progress   int `json:"progress"`
	Quality    int `json:"quality"`
	Durability int `json:"durability"`
	CP         int `json:"cp"`

	// MaxDurability caps durability restoration. Zero means no cap.
	MaxDurability int `json:"max_durability,omitempty"`

	Buffs   Buffs    `json:"buffs,omitempty"`
	History []string `json:"history,omitempty"`
}

// NewState returns the starting state for a recipe and a player CP pool.
func NewState(goal Goal, cp int) State {
	d := goal.Durability()
	return State{
		Durability:    d,
		CP:            cp,
		MaxDurability: d,
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Buffs = s.Buffs.Clone()
	if s.History != nil {
		out.History = make([]string, len(s.History), len(s.History)+1)
		copy(out.History, s.History)
	}
	return out
}

// Record returns a copy of s with name appended to its history.
func (s State) Record(name string) State {
	out := s.Clone()
	out.History = append(out.History, name)
	return out
}

// Complete reports whether the progress goal is met.
func (s State) Complete(g Goal) bool {
	return s.Progress >= g.RequiredProgress
}

// Broken reports whether the item has run out of durability.
func (s State) Broken() bool {
	return s.Durability <= 0
}

func (s State) String() string {
	return fmt.Sprintf("progress=%d quality=%d durability=%d cp=%d buffs=%v steps=%d",
		s.Progress, s.Quality, s.Durability, s.CP, s.Buffs, len(s.History))
}

// KeyPolicy selects which parts of a state identify it for deduplication.
type KeyPolicy int

const (
	// KeyHistoryLength matches resources, buffs and the number of steps taken.
	KeyHistoryLength KeyPolicy = iota
	// KeyResources matches resources and buffs only.
	KeyResources
	// KeyFullHistory matches resources, buffs and the exact step sequence.
	KeyFullHistory
)

var keyPolicyNames = map[KeyPolicy]string{
	KeyHistoryLength: "history-length",
	KeyResources:     "resources",
	KeyFullHistory:   "full-history",
}

func (p KeyPolicy) String() string {
	if name, ok := keyPolicyNames[p]; ok {
		return name
	}
	return "KeyPolicy(" + strconv.Itoa(int(p)) + ")"
}

// ParseKeyPolicy maps a configuration name onto a KeyPolicy.
func ParseKeyPolicy(name string) (KeyPolicy, error) {
	if name == "" {
		return KeyHistoryLength, nil
	}
	for p, n := range keyPolicyNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown key policy %q", name)
}

// Key returns the deduplication fingerprint of s under policy p.
func (s State) Key(p KeyPolicy) string {
	buf := make([]byte, 0, 64)
	buf = strconv.AppendInt(buf, int64(s.Progress), 10)
	buf = append(buf, ':')
	buf = strconv.AppendInt(buf, int64(s.Quality), 10)
	buf = append(buf, ':')
	buf = strconv.AppendInt(buf, int64(s.Durability), 10)
	buf = append(buf, ':')
	buf = strconv.AppendInt(buf, int64(s.CP), 10)
	buf = append(buf, '|')
	buf = s.Buffs.appendKey(buf)

	switch p {
	case KeyHistoryLength:
		buf = append(buf, '#')
		buf = strconv.AppendInt(buf, int64(len(s.History)), 10)
	case KeyFullHistory:
		for _, name := range s.History {
			buf = append(buf, '>')
			buf = append(buf, name...)
		}
	}
	return string(buf)
}
