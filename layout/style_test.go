package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStyleOverridesBase(t *testing.T) {
	style, err := ParseStyle(`font-size: 20px; line-height: 30px; padding: 8px 4px; width: 320px; word-break: break-all`, DefaultStyle())
	require.NoError(t, err)

	assert.InDelta(t, 20.0, style.FontSize, 1e-9)
	assert.InDelta(t, 1.5, style.LineHeight, 1e-9)
	assert.InDelta(t, 8.0, style.Padding, 1e-9)
	assert.InDelta(t, 320.0, style.Width, 1e-9)
	assert.Equal(t, WrapBreakAll, style.Wrap)
}

// 与阅读器隐藏测量元素相同的声明应得到默认样式。
func TestParseStyleMatchesReaderDefaults(t *testing.T) {
	base := DefaultStyle()
	style, err := ParseStyle(`
		font-size: 16px;
		line-height: 1.5;
		word-break: break-word;
		white-space: pre-wrap;
		padding: 12px;
	`, base)
	require.NoError(t, err)
	assert.Equal(t, base, style)
}

func TestParseStyleWrapBreakWordIsAnywhere(t *testing.T) {
	style, err := ParseStyle(`wrap: break-word`, Style{Wrap: WrapNormal})
	require.NoError(t, err)
	assert.Equal(t, WrapAnywhere, style.Wrap)
}

func TestParseStyleUnits(t *testing.T) {
	style, err := ParseStyle(`font-size: 12pt; padding: 1em`, DefaultStyle())
	require.NoError(t, err)
	assert.InDelta(t, 16.0, style.FontSize, 1e-9)
	assert.InDelta(t, 16.0, style.Padding, 1e-9)
}

func TestParseStyleFont(t *testing.T) {
	style, err := ParseStyle(`font: "embed:lmsans10-regular"; font-family: "Latin Modern Sans", sans-serif; font-weight: bold`, DefaultStyle())
	require.NoError(t, err)
	assert.Equal(t, "embed:lmsans10-regular", style.Font.Src)
	assert.Equal(t, "Latin Modern Sans", style.Font.Family)
	assert.Equal(t, "bold", style.Font.Style)
}

func TestParseStyleNoWrap(t *testing.T) {
	style, err := ParseStyle(`white-space: nowrap`, DefaultStyle())
	require.NoError(t, err)
	assert.Equal(t, WrapNoWrap, style.Wrap)

	style, err = ParseStyle(`white-space: pre-wrap`, style)
	require.NoError(t, err)
	assert.Equal(t, WrapAnywhere, style.Wrap)
}

func TestParseStyleRejectsBadValues(t *testing.T) {
	base := DefaultStyle()
	for _, input := range []string{
		`font-size: 0`,
		`font-size: big`,
		`line-height: -2`,
		`width: -10px`,
		`padding: wide`,
		`font-size 12px`,
	} {
		got, err := ParseStyle(input, base)
		assert.Error(t, err, input)
		assert.Equal(t, base, got, input)
	}
}

func TestParseStyleIgnoresUnknownProperties(t *testing.T) {
	style, err := ParseStyle(`color: red; font-size: 18px`, DefaultStyle())
	require.NoError(t, err)
	assert.InDelta(t, 18.0, style.FontSize, 1e-9)
}
