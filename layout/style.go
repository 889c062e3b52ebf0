package layout

import (
	"fmt"
	"strings"

	"github.com/ByLCY/folio/dsl"
)

// ParseStyle 解析声明字符串并叠加到 base 上，例如 "font-size: 18px; line-height: 1.6"。
func ParseStyle(input string, base Style) (Style, error) {
	if strings.TrimSpace(input) == "" {
		return base, nil
	}
	sheet, err := dsl.ParseString(input)
	if err != nil {
		return base, fmt.Errorf("解析样式失败: %w", err)
	}
	return ApplyDeclarations(base, sheet)
}

// ApplyDeclarations 按声明顺序把样式属性叠加到 base 上（后写覆盖先写）。
// 支持 font-size、line-height、padding、width、wrap、white-space、word-break、overflow-wrap、
// font、font-family、font-style；其余属性暂未实现，忽略即可。
func ApplyDeclarations(base Style, sheet *dsl.Stylesheet) (Style, error) {
	style := base
	if sheet == nil {
		return style, nil
	}
	for _, decl := range sheet.Declarations {
		value := decl.Value()
		switch decl.Name() {
		case "font-size":
			px, err := positiveLength(value, style.FontSize)
			if err != nil {
				return base, fmt.Errorf("font-size: %w", err)
			}
			style.FontSize = px
		case "line-height":
			lh, ok := ParseLineHeight(value)
			if !ok {
				if strings.EqualFold(strings.TrimSpace(value), "normal") {
					style.LineHeight = DefaultLineHeight
					continue
				}
				return base, fmt.Errorf("line-height: 无效取值 %q", value)
			}
			style.LineHeight = lh.Multiplier(style.FontSize)
		case "padding":
			// 只保留第一个取值，四边内边距相同
			first := value
			if len(decl.Terms) > 0 {
				first = decl.Terms[0].String()
			}
			l := ParseRawLengthStr(first)
			if l.Value < 0 || (l.Value == 0 && strings.TrimSpace(first) != "0" && l.Unit == UnitNone) {
				return base, fmt.Errorf("padding: 无效取值 %q", value)
			}
			style.Padding = l.ToPX(style.FontSize)
		case "width":
			px, err := positiveLength(value, style.FontSize)
			if err != nil {
				return base, fmt.Errorf("width: %w", err)
			}
			style.Width = px
		case "wrap":
			style.Wrap = NormalizeWrap(value)
		case "white-space":
			switch strings.ToLower(value) {
			case "nowrap", "pre":
				style.Wrap = WrapNoWrap
			case "pre-wrap", "pre-line", "normal", "break-spaces":
				if style.Wrap == WrapNoWrap {
					style.Wrap = WrapAnywhere
				}
			}
		case "word-break":
			switch strings.ToLower(value) {
			case "break-all":
				style.Wrap = WrapBreakAll
			case "break-word":
				style.Wrap = WrapAnywhere
			case "normal", "keep-all":
				style.Wrap = WrapNormal
			}
		case "overflow-wrap", "word-wrap":
			switch strings.ToLower(value) {
			case "anywhere", "break-word":
				style.Wrap = WrapAnywhere
			case "normal":
				style.Wrap = WrapNormal
			}
		case "font":
			style.Font.Src = value
		case "font-family":
			if len(decl.Terms) > 0 {
				style.Font.Family = decl.Terms[0].String()
			}
		case "font-style", "font-weight":
			style.Font.Style = strings.TrimSpace(style.Font.Style + " " + value)
		}
	}
	return style, nil
}

func positiveLength(value string, fontSize float64) (float64, error) {
	l := ParseRawLengthStr(value)
	if l.Value <= 0 {
		return 0, fmt.Errorf("无效取值 %q", value)
	}
	return l.ToPX(fontSize), nil
}
