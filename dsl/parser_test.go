package dsl_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/folio/dsl"
)

const sampleStyle = `
/* 阅读器默认样式 */
font-size: 16px;
line-height: 1.5;
padding: 12px;
white-space: pre-wrap;
word-break: break-word;
font-family: "Latin Modern", serif;
# 注释
font: 'embed:lmroman10-regular'
`

func TestParseStylesheet(t *testing.T) {
	sheet, err := dsl.ParseString(sampleStyle)
	require.NoError(t, err)
	require.Len(t, sheet.Declarations, 7)

	assert.Equal(t, "font-size", sheet.Declarations[0].Name())
	assert.Equal(t, "16px", sheet.Declarations[0].Value())
	assert.Equal(t, "1.5", sheet.Lookup("line-height").Value())
	assert.Equal(t, "pre-wrap", sheet.Lookup("WHITE-SPACE").Value())
	assert.Equal(t, "Latin Modern serif", sheet.Lookup("font-family").Value())
	assert.Equal(t, "embed:lmroman10-regular", sheet.Lookup("font").Value())
	assert.Nil(t, sheet.Lookup("color"))
}

func TestParseAcceptsRuleBody(t *testing.T) {
	sheet, err := dsl.Parse(strings.NewReader(`{ font-size: 18px; ; padding: 4px 8px }`))
	require.NoError(t, err)
	require.Len(t, sheet.Declarations, 2)
	assert.Equal(t, "4px 8px", sheet.Lookup("padding").Value())
}

func TestLookupLastDeclarationWins(t *testing.T) {
	sheet, err := dsl.ParseString(`font-size: 12px; font-size: 20px`)
	require.NoError(t, err)
	assert.Equal(t, "20px", sheet.Lookup("font-size").Value())
}

func TestParseEmpty(t *testing.T) {
	sheet, err := dsl.ParseString("")
	require.NoError(t, err)
	assert.Empty(t, sheet.Declarations)
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		`font-size 16px`,
		`: 16px`,
		`font-size: ;`,
		`font-size: "unterminated`,
	} {
		_, err := dsl.ParseString(input)
		assert.Error(t, err, input)
	}
}
