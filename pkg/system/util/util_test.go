package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMA_SequenceAlphaPointFive(t *testing.T) {
	e := NewEMA(0.5)
	got := make([]float64, 0, 4)
	got = append(got, e.Next(10)) // 10
	got = append(got, e.Next(20)) // 0.5*20 + 0.5*10 = 15
	got = append(got, e.Next(20)) // 0.5*20 + 0.5*15 = 17.5
	got = append(got, e.Next(40)) // 0.5*40 + 0.5*17.5 = 28.75

	want := []float64{10, 15, 17.5, 28.75}
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, "i=%d", i)
	}
}

func TestEMA_AlphaBounds(t *testing.T) {
	// alpha is clamped to [0,1]
	e := NewEMA(7)
	assert.Equal(t, 10.0, e.Next(10))
	assert.Equal(t, 20.0, e.Next(20))

	e = NewEMA(-1)
	assert.Equal(t, 10.0, e.Next(10))
	assert.Equal(t, 10.0, e.Next(20))
}

func TestEMA_ClosedFormMatch(t *testing.T) {
	alpha := 0.3
	target := 100.0
	steps := 50

	e := NewEMA(alpha)
	_ = e.Next(0.0)

	var out float64
	for i := 0; i < steps; i++ {
		out = e.Next(target)
	}

	// y_n = target * (1 - (1-alpha)^n), given initial 0 before applying target
	want := target * (1 - math.Pow(1-alpha, float64(steps)))
	assert.InDelta(t, want, out, 1e-6)
}

func TestDeltaU32(t *testing.T) {
	t.Run("normal_increase", func(t *testing.T) {
		assert.Equal(t, uint64(10), DeltaU32(110, 100))
	})
	t.Run("no_change", func(t *testing.T) {
		assert.Equal(t, uint64(0), DeltaU32(100, 100))
	})
	t.Run("wrap", func(t *testing.T) {
		assert.Equal(t, uint64(101), DeltaU32(100, math.MaxUint32))
	})
	t.Run("high_bits_ignored", func(t *testing.T) {
		assert.Equal(t, uint64(5), DeltaU32(0xdead_0000_0005, 0xbeef_0000_0000))
	})
	t.Run("bounded", func(t *testing.T) {
		for _, p := range [][2]uint64{{0, 1}, {1, 0}, {math.MaxUint32, 0}, {7, 1 << 31}} {
			d := DeltaU32(p[0], p[1])
			assert.Less(t, d, uint64(1)<<32)
		}
	})
}

func TestSafeDiv(t *testing.T) {
	require.InDelta(t, 2.5, SafeDiv(5, 2), 1e-12)
	assert.Equal(t, 0.0, SafeDiv(5, 0))
	assert.Equal(t, 0.0, SafeDiv(5, 1e-15))
	assert.Equal(t, 0.0, SafeDiv(5, -2))
	assert.Equal(t, 0.0, SafeDiv(5, math.NaN()))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.5))
	assert.Equal(t, 1.0, Clamp01(1.5))
	assert.Equal(t, 0.25, Clamp01(0.25))
	assert.Equal(t, 0.0, Clamp01(math.NaN()))
}
