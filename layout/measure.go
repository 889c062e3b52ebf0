package layout

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
)

// Unbounded 是测量失败时报告的高度，保证任何容量都放不下。
const Unbounded = math.MaxInt32

// Measurer 以 Typesetter 为后端实现测量：给定文本与样式，返回渲染后的像素高度。
// 高度 = 上下内边距 + 每个行框高度之和，向上取整到整像素。
//
// Measurer 不向调用方返回错误：排版失败时记录第一条错误（见 Err）并报告 Unbounded。
type Measurer struct {
	Typesetter Typesetter

	mu    sync.Mutex
	err   error
	calls int
}

// NewMeasurer creates a Measurer backed by ts. A nil ts falls back to explicit line breaks only.
func NewMeasurer(ts Typesetter) *Measurer {
	return &Measurer{Typesetter: ts}
}

// Measure 返回 text 在 style 下的渲染高度（px）。
func (m *Measurer) Measure(text string, style Style) int {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if text == "" {
		return int(math.Ceil(2 * style.Padding))
	}
	lines, err := layoutLines(text, style, m.Typesetter)
	if err != nil {
		m.mu.Lock()
		if m.err == nil {
			m.err = err
		}
		m.mu.Unlock()
		return Unbounded
	}
	return int(math.Ceil(boxHeight(lines, style) - 1e-9))
}

// Err 返回测量过程中遇到的第一条排版错误。
func (m *Measurer) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Calls reports how many measurements have been taken.
func (m *Measurer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// boxHeight 计算包含内边距的盒高度；每行至少占一个行框（fontSize × lineHeight）。
func boxHeight(lines []TextLine, style Style) float64 {
	total := 2 * style.Padding
	linePx := style.LinePx()
	for _, ln := range lines {
		h := ln.Height + ln.GapBefore
		if h < linePx {
			h = linePx
		}
		total += h
	}
	return total
}

func layoutLines(content string, style Style, ts Typesetter) ([]TextLine, error) {
	width := style.ContentWidth()
	if ts == nil {
		// 没有排版后端时只按显式换行拆分
		parts := strings.Split(content, "\n")
		out := make([]TextLine, 0, len(parts))
		for _, p := range parts {
			out = append(out, TextLine{Content: p, Width: width, Height: style.LinePx()})
		}
		return out, nil
	}
	lines, err := ts.LayoutLines(content, width, style.Font, style.FontSize, style.LinePx(), style.Wrap)
	if err != nil {
		return nil, fmt.Errorf("排版失败: %w", err)
	}
	if len(lines) > 0 {
		lines[0].GapBefore = 0
	}
	return lines, nil
}

// EstimateTypesetter 用平均字宽模型排版：每个字符宽度为 Factor × fontSize，
// 东亚宽字符按两倍计算（宽度取自 go-runewidth）。它不依赖任何字体文件，适合测试与无字体环境。
type EstimateTypesetter struct {
	Factor float64 // 平均字宽系数，<=0 时取 0.55
}

var _ Typesetter = EstimateTypesetter{}

// LayoutLines 实现 Typesetter 接口。
func (e EstimateTypesetter) LayoutLines(content string, width float64, _ FontResource, fontSize, lineHeight float64, wrap string) ([]TextLine, error) {
	if fontSize <= 0 {
		return nil, fmt.Errorf("字号必须为正数: %g", fontSize)
	}
	factor := e.Factor
	if factor <= 0 {
		factor = 0.55
	}
	advance := fontSize * factor
	measure := func(s string) float64 {
		w := 0.0
		for _, r := range s {
			w += float64(runewidth.RuneWidth(r)) * advance
		}
		return w
	}
	lines := WrapLines(content, width, wrap, measure)
	for i := range lines {
		lines[i].Height = lineHeight
	}
	return lines, nil
}

// Compose 将分页文本排成 Book：为每页计算行与高度，并标记超出容量的页。
func Compose(title string, pages []string, capacity int, style Style, ts Typesetter) (*Book, error) {
	book := &Book{
		Title:    title,
		Capacity: capacity,
		Style:    style,
		Leaves:   make([]Leaf, 0, len(pages)),
	}
	for i, content := range pages {
		lines, err := layoutLines(content, style, ts)
		if err != nil {
			return nil, fmt.Errorf("第 %d 页: %w", i+1, err)
		}
		height := boxHeight(lines, style)
		book.Leaves = append(book.Leaves, Leaf{
			Number:   i + 1,
			Content:  content,
			Lines:    lines,
			Height:   height,
			Overflow: math.Ceil(height-1e-9) > float64(capacity),
		})
	}
	return book, nil
}
