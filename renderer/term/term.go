// Package termrenderer 以终端字符格为单位排版，并把分页结果输出为纯文本。
package termrenderer

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
)

// 默认字符格尺寸（px），对应 16px 字号。
const (
	DefaultCellWidth = 8.0
	DefaultRowHeight = layout.DefaultFontSize * layout.DefaultLineHeight
)

// DefaultHeader 是每页之前输出的分隔行模板。
const DefaultHeader = "-- ${page} / ${total} --"

// Typesetter 把 px 宽度换算为终端列数后折行。字号越大，每列占的像素越多，
// 一行能容纳的字符就越少；东亚宽字符占两列。
type Typesetter struct {
	CellWidth float64 // 16px 字号下一列的宽度（px），<=0 时取 DefaultCellWidth
}

var _ layout.Typesetter = Typesetter{}

// Columns 返回 width（px）在 fontSize 下可容纳的列数，至少为 1。
func (t Typesetter) Columns(width, fontSize float64) int {
	cell := t.CellWidth
	if cell <= 0 {
		cell = DefaultCellWidth
	}
	if fontSize > 0 {
		cell *= fontSize / layout.DefaultFontSize
	}
	cols := int(math.Floor(width/cell + 1e-9))
	if cols < 1 {
		return 1
	}
	return cols
}

// LayoutLines 实现 layout.Typesetter 接口。返回行的 Width 以列为单位换算回 px。
func (t Typesetter) LayoutLines(content string, width float64, _ layout.FontResource, fontSize, lineHeight float64, wrap string) ([]layout.TextLine, error) {
	if fontSize <= 0 {
		return nil, fmt.Errorf("字号必须为正数: %g", fontSize)
	}
	cols := t.Columns(width, fontSize)
	perCol := width / float64(cols)
	lines := layout.WrapLines(content, float64(cols), wrap, func(s string) float64 {
		return float64(runewidth.StringWidth(s))
	})
	for i := range lines {
		lines[i].Width *= perCol
		lines[i].Height = lineHeight
	}
	return lines, nil
}

// Wrap 返回 content 在 style 下折出的各行文本，供界面逐行显示。
func (t Typesetter) Wrap(content string, style layout.Style) []string {
	lines, err := t.LayoutLines(content, style.ContentWidth(), style.Font, style.FontSize, style.LinePx(), style.Wrap)
	if err != nil {
		return strings.Split(content, "\n")
	}
	out := make([]string, len(lines))
	for i, ln := range lines {
		out[i] = ln.Content
	}
	return out
}

// Renderer 把 Book 输出为纯文本，每页前带一行页码。
type Renderer struct {
	Header string // 页眉模板，空字符串表示不输出页眉
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer returns a text renderer using DefaultHeader.
func NewRenderer() *Renderer { return &Renderer{Header: DefaultHeader} }

// Render 实现 renderer.Renderer。行内容来自 Compose 的排版结果，因此与测量保持一致。
func (r *Renderer) Render(book *layout.Book) ([]byte, error) {
	if book == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	var buf bytes.Buffer
	total := len(book.Leaves)
	for i, leaf := range book.Leaves {
		if i > 0 {
			buf.WriteByte('\n')
		}
		if r.Header != "" {
			vars := binding.PageVars(book.Title, i, total, book.Style.FontSize)
			buf.WriteString(binding.Interpolate(r.Header, vars))
			buf.WriteByte('\n')
		}
		for _, line := range leaf.Lines {
			buf.WriteString(strings.TrimRight(line.Content, " \t"))
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}
