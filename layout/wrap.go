package layout

import (
	"math"
	"strings"
	"unicode"
)

// 折行策略。
const (
	WrapAnywhere  = "anywhere"   // 优先在空白处分割，超过宽度时在词内拆分
	WrapBreakAll  = "break-all"  // 忽略空白机会，纯按宽度切分
	WrapNoWrap    = "nowrap"     // 仅按显式换行划分
	WrapNormal    = "normal"     // 只在空白处分割，超长的词允许溢出
)

// NormalizeWrap 将各种别名统一为上面的四种策略，未知取值按 anywhere 处理。
func NormalizeWrap(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "", "auto", "anywhere", "break-word", "overflow-wrap:anywhere", "overflow-anywhere", "pre-wrap":
		return WrapAnywhere
	case "break-all", "word-break:break-all":
		return WrapBreakAll
	case "nowrap", "no-wrap", "pre":
		return WrapNoWrap
	case "normal":
		return WrapNormal
	default:
		return WrapAnywhere
	}
}

// WidthFunc 返回一段文本的绘制宽度（px）。
type WidthFunc func(s string) float64

// WrapLines 按贪心算法把 content 拆成不超过 limit 的行，宽度由 measure 提供。
// 显式换行总是被保留；返回行只填 Content 与 Width，高度交由调用方回填。
func WrapLines(content string, limit float64, wrap string, measure WidthFunc) []TextLine {
	if limit <= 0 {
		limit = math.MaxFloat64
	}

	switch NormalizeWrap(wrap) {
	case WrapNoWrap:
		parts := strings.Split(strings.ReplaceAll(content, "\r", ""), "\n")
		lines := make([]TextLine, 0, len(parts))
		for _, p := range parts {
			lines = append(lines, TextLine{Content: p, Width: measure(p)})
		}
		return lines
	case WrapBreakAll:
		return wrapRunes(content, limit, measure)
	case WrapNormal:
		return wrapTokens(content, limit, measure, false)
	default:
		return wrapTokens(content, limit, measure, true)
	}
}

type lineBuilder struct {
	lines        []TextLine
	builder      strings.Builder
	width        float64
	afterNewline bool
}

func (b *lineBuilder) emit(force bool) {
	if b.builder.Len() == 0 {
		if force {
			b.lines = append(b.lines, TextLine{Content: "", Width: 0})
		}
		return
	}
	b.lines = append(b.lines, TextLine{Content: b.builder.String(), Width: b.width})
	b.builder.Reset()
	b.width = 0
}

func (b *lineBuilder) add(s string, w float64) {
	b.builder.WriteString(s)
	b.width += w
	b.afterNewline = false
}

func (b *lineBuilder) newline() {
	b.emit(true)
	b.afterNewline = true
}

// finish 输出最后一行；只有末尾是显式换行或全文为空时才补一个空行。
func (b *lineBuilder) finish() []TextLine {
	if b.builder.Len() > 0 {
		b.emit(false)
	} else if len(b.lines) == 0 || b.afterNewline {
		b.emit(true)
	}
	return b.lines
}

func wrapRunes(content string, limit float64, measure WidthFunc) []TextLine {
	var b lineBuilder
	for _, r := range content {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			b.newline()
			continue
		}
		s := string(r)
		cw := measure(s)
		if b.width > 0 && b.width+cw > limit {
			b.emit(false)
		}
		b.add(s, cw)
		if b.width > limit {
			b.emit(false)
		}
	}
	return b.finish()
}

// wrapTokens 优先在空白处分割；splitLong 为 true 时超宽的词会被拆开。
func wrapTokens(content string, limit float64, measure WidthFunc, splitLong bool) []TextLine {
	var b lineBuilder
	for _, token := range tokenizeContent(content) {
		if token == "\n" {
			b.newline()
			continue
		}

		tokenWidth := measure(token)
		if b.width > 0 && b.width+tokenWidth > limit {
			b.emit(false)
		}
		if tokenWidth <= limit || !splitLong {
			b.add(token, tokenWidth)
			if b.width > limit {
				b.emit(false)
			}
			continue
		}

		for _, chunk := range splitTokenByWidth(token, limit, measure) {
			chunkWidth := measure(chunk)
			if b.width > 0 && b.width+chunkWidth > limit {
				b.emit(false)
			}
			b.add(chunk, chunkWidth)
			if b.width > limit {
				b.emit(false)
			}
		}
	}
	return b.finish()
}

func tokenizeContent(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

func splitTokenByWidth(token string, limit float64, measure WidthFunc) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var current []rune
	for _, r := range token {
		current = append(current, r)
		if len(current) > 1 && measure(string(current)) > limit {
			parts = append(parts, string(current[:len(current)-1]))
			current = current[len(current)-1:]
		}
	}
	if len(current) > 0 {
		parts = append(parts, string(current))
	}
	return parts
}
