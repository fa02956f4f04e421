package sim

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Unbounded is the Duration of a buff that persists until it is removed.
const Unbounded = -1

// Buff names understood by the registered skills.
const (
	BuffMuscleMemory = "Muscle Memory"
	BuffVeneration   = "Veneration"
	BuffInnovation   = "Innovation"
	BuffInnerQuiet   = "Inner Quiet"
)

// MaxInnerQuietStacks caps the Inner Quiet stack count.
const MaxInnerQuietStacks = 11

// stackBuffs carry a stack count instead of a countdown.
var stackBuffs = map[string]bool{
	BuffInnerQuiet: true,
}

// Buff is a named modifier on a crafting state.
type Buff struct {
	Name     string `json:"name"`
	Duration int    `json:"duration"`
	Stacks   int    `json:"stacks,omitempty"`
}

// Timed reports whether the buff counts down on each simulated step.
func (b Buff) Timed() bool {
	return b.Duration != Unbounded
}

// String renders the buff in the legacy "Name:N" form.
func (b Buff) String() string {
	switch {
	case b.Stacks > 0:
		return b.Name + ":" + strconv.Itoa(b.Stacks)
	case b.Timed():
		return b.Name + ":" + strconv.Itoa(b.Duration)
	default:
		return b.Name
	}
}

// ParseBuff reads a buff from the legacy "Name" or "Name:N" text form.
// For stack buffs N is the stack count, otherwise it is the remaining
// duration. A bare name is unbounded.
func ParseBuff(text string) (Buff, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Buff{}, fmt.Errorf("empty buff")
	}

	name, count, found := strings.Cut(text, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return Buff{}, fmt.Errorf("buff %q has no name", text)
	}
	if !found {
		if stackBuffs[name] {
			return Buff{Name: name, Duration: Unbounded, Stacks: 1}, nil
		}
		return Buff{Name: name, Duration: Unbounded}, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil || n <= 0 {
		return Buff{}, fmt.Errorf("buff %q has invalid count %q", name, count)
	}
	if stackBuffs[name] {
		return Buff{Name: name, Duration: Unbounded, Stacks: min(n, MaxInnerQuietStacks)}, nil
	}
	return Buff{Name: name, Duration: n}, nil
}

// Buffs is an ordered buff ledger. Every operation returns a new ledger and
// leaves the receiver untouched.
type Buffs []Buff

// Get returns the buff with the given name.
func (bs Buffs) Get(name string) (Buff, bool) {
	for _, b := range bs {
		if b.Name == name {
			return b, true
		}
	}
	return Buff{}, false
}

// Has reports whether a buff with the given name is active.
func (bs Buffs) Has(name string) bool {
	_, ok := bs.Get(name)
	return ok
}

// With adds b, replacing any buff of the same name in place.
func (bs Buffs) With(b Buff) Buffs {
	out := make(Buffs, 0, len(bs)+1)
	replaced := false
	for _, existing := range bs {
		if existing.Name == b.Name {
			out = append(out, b)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, b)
	}
	return out
}

// Without removes the named buff.
func (bs Buffs) Without(name string) Buffs {
	out := make(Buffs, 0, len(bs))
	for _, b := range bs {
		if b.Name != name {
			out = append(out, b)
		}
	}
	return out
}

// Tick ages every timed buff by one step and drops the ones that run out.
// Unbounded and stack buffs are carried over unchanged.
func (bs Buffs) Tick() Buffs {
	out := make(Buffs, 0, len(bs))
	for _, b := range bs {
		if !b.Timed() {
			out = append(out, b)
			continue
		}
		b.Duration--
		if b.Duration > 0 {
			out = append(out, b)
		}
	}
	return out
}

// Clone returns a copy that does not share a backing array with bs.
func (bs Buffs) Clone() Buffs {
	if bs == nil {
		return nil
	}
	out := make(Buffs, len(bs))
	copy(out, bs)
	return out
}

// appendKey writes an order-independent encoding of the ledger.
func (bs Buffs) appendKey(buf []byte) []byte {
	sorted := bs.Clone()
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		if sorted[i].Duration != sorted[j].Duration {
			return sorted[i].Duration < sorted[j].Duration
		}
		return sorted[i].Stacks < sorted[j].Stacks
	})
	for _, b := range sorted {
		buf = append(buf, b.Name...)
		buf = append(buf, '/')
		buf = strconv.AppendInt(buf, int64(b.Duration), 10)
		buf = append(buf, '/')
		buf = strconv.AppendInt(buf, int64(b.Stacks), 10)
		buf = append(buf, ';')
	}
	return buf
}
