package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPxPtMmRoundTrip 验证 px↔pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPxPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 16, 24, 96, 1000}
	for _, px := range samples {
		assert.InDelta(t, px, px*PxToPt*PtToPx, 1e-9, "px→pt→px")
		assert.InDelta(t, px, px*PxToMm*MmToPx, 1e-9, "px→mm→px")
	}
	// 96px = 1in = 72pt = 25.4mm
	assert.InDelta(t, 72.0, 96*PxToPt, 1e-9)
	assert.InDelta(t, 25.4, 96*PxToMm, 1e-9)
	assert.InDelta(t, 25.4, 72*PtToMm, 1e-9)
}

func TestParseRawLengthStr(t *testing.T) {
	tests := []struct {
		in   string
		want Length
	}{
		{"16px", Length{16, UnitPX}},
		{" 12PT ", Length{12, UnitPT}},
		{"4.5mm", Length{4.5, UnitMM}},
		{"1.25em", Length{1.25, UnitEM}},
		{"18", Length{18, UnitNone}},
		{"", Length{0, UnitNone}},
		{"abc", Length{0, UnitNone}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseRawLengthStr(tt.in), tt.in)
	}
}

func TestLengthToPX(t *testing.T) {
	assert.InDelta(t, 16.0, Length{12, UnitPT}.ToPX(0), 1e-9)
	assert.InDelta(t, 24.0, Length{1.5, UnitEM}.ToPX(16), 1e-9)
	assert.InDelta(t, 96.0, Length{25.4, UnitMM}.ToPX(0), 1e-9)
	assert.InDelta(t, 7.0, Length{7, UnitNone}.ToPX(16), 1e-9)
}

// TestLineHeightMultiplier 覆盖倍数与绝对行高两种写法。
func TestLineHeightMultiplier(t *testing.T) {
	lh, ok := ParseLineHeight("1.5")
	require.True(t, ok)
	assert.Equal(t, LineHeightFactor, lh.Kind)
	assert.InDelta(t, 1.5, lh.Multiplier(16), 1e-9)

	lh, ok = ParseLineHeight("1.2x")
	require.True(t, ok)
	assert.InDelta(t, 1.2, lh.Multiplier(20), 1e-9)

	lh, ok = ParseLineHeight("24px")
	require.True(t, ok)
	assert.Equal(t, LineHeightAbsolute, lh.Kind)
	assert.InDelta(t, 1.5, lh.Multiplier(16), 1e-9)

	_, ok = ParseLineHeight("normal")
	assert.False(t, ok)
	_, ok = ParseLineHeight("-1")
	assert.False(t, ok)
	assert.False(t, math.IsNaN(LineHeightSpec{}.Multiplier(0)))
}
