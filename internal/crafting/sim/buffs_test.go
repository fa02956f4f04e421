package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffsTick(t *testing.T) {
	ledger := Buffs{
		{Name: BuffVeneration, Duration: 1},
		{Name: BuffInnerQuiet, Duration: Unbounded, Stacks: 4},
		{Name: BuffInnovation, Duration: 3},
		{Name: "Steady Hand", Duration: Unbounded},
	}

	next := ledger.Tick()
	assert.Equal(t, Buffs{
		{Name: BuffInnerQuiet, Duration: Unbounded, Stacks: 4},
		{Name: BuffInnovation, Duration: 2},
		{Name: "Steady Hand", Duration: Unbounded},
	}, next)

	// original ledger untouched
	assert.Len(t, ledger, 4)
	assert.Equal(t, 3, ledger[2].Duration)
}

func TestBuffsWithReplaces(t *testing.T) {
	ledger := Buffs{{Name: BuffVeneration, Duration: 1}, {Name: BuffInnovation, Duration: 2}}

	next := ledger.With(Buff{Name: BuffVeneration, Duration: 4})
	assert.Equal(t, Buffs{{Name: BuffVeneration, Duration: 4}, {Name: BuffInnovation, Duration: 2}}, next)
	assert.Equal(t, 1, ledger[0].Duration)

	next = next.With(Buff{Name: BuffMuscleMemory, Duration: 5})
	assert.Len(t, next, 3)
	assert.Equal(t, BuffMuscleMemory, next[2].Name)
}

func TestBuffsWithout(t *testing.T) {
	ledger := Buffs{{Name: BuffVeneration, Duration: 1}, {Name: BuffInnovation, Duration: 2}}
	next := ledger.Without(BuffVeneration)
	assert.False(t, next.Has(BuffVeneration))
	assert.True(t, next.Has(BuffInnovation))
	assert.True(t, ledger.Has(BuffVeneration))
}

func TestParseBuff(t *testing.T) {
	tests := []struct {
		in      string
		want    Buff
		wantErr bool
	}{
		{in: "Veneration:4", want: Buff{Name: BuffVeneration, Duration: 4}},
		{in: "Steady Hand", want: Buff{Name: "Steady Hand", Duration: Unbounded}},
		{in: "Inner Quiet:3", want: Buff{Name: BuffInnerQuiet, Duration: Unbounded, Stacks: 3}},
		{in: "Inner Quiet:40", want: Buff{Name: BuffInnerQuiet, Duration: Unbounded, Stacks: MaxInnerQuietStacks}},
		{in: " Innovation : 2 ", want: Buff{Name: BuffInnovation, Duration: 2}},
		{in: "", wantErr: true},
		{in: ":3", wantErr: true},
		{in: "Veneration:x", wantErr: true},
		{in: "Veneration:0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBuff(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuffString(t *testing.T) {
	assert.Equal(t, "Veneration:4", Buff{Name: BuffVeneration, Duration: 4}.String())
	assert.Equal(t, "Inner Quiet:2", Buff{Name: BuffInnerQuiet, Duration: Unbounded, Stacks: 2}.String())
	assert.Equal(t, "Steady Hand", Buff{Name: "Steady Hand", Duration: Unbounded}.String())
}
