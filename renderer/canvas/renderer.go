package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
)

// Renderer measures text with real font metrics via github.com/tdewolff/canvas
// and writes paginated books as PDF.
type Renderer struct {
	fonts *fontCache
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // 通过 builtin:<name> 引用
}

// Resource is a font given either inline or by path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer resolves relative font paths against baseDir.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected fonts.
func NewRendererWithOptions(opts Options) *Renderer {
	return &Renderer{fonts: newFontCache(opts)}
}

// LayoutLines 实现 layout.Typesetter 接口，使用贪心换行算法。
// 约定：入参与返回值均为 px。canvas 的字体系统使用 pt 创建字体面、以 mm 返回宽度，在边界做换算。
func (r *Renderer) LayoutLines(content string, width float64, font layout.FontResource, fontSize, lineHeight float64, wrap string) ([]layout.TextLine, error) {
	if fontSize <= 0 {
		return nil, fmt.Errorf("字号必须为正数: %g", fontSize)
	}
	face, err := r.fonts.face(font, fontSize*layout.PxToPt, color.Black)
	if err != nil {
		return nil, err
	}

	lines := layout.WrapLines(content, width, wrap, func(s string) float64 {
		return face.TextWidth(s) * layout.MmToPx
	})
	textHeight := face.Metrics().LineHeight * layout.MmToPx
	if textHeight <= 0 {
		textHeight = lineHeight
	}
	leading := math.Max(lineHeight-textHeight, 0)
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = textHeight
		}
		if i == 0 {
			lines[i].GapBefore = 0
		} else {
			lines[i].GapBefore = leading
		}
	}
	return lines, nil
}

// Render renders every leaf of the book as one PDF page. The page is as wide
// as the style's viewport and as tall as the book's capacity (or the leaf,
// when a forced page overflows).
func (r *Renderer) Render(book *layout.Book) ([]byte, error) {
	if book == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(book.Leaves) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	style := book.Style
	face, err := r.fonts.face(style.Font, style.FontSize*layout.PxToPt, canvas.Hex("#1e1e1e"))
	if err != nil {
		return nil, err
	}

	pageW := style.Width * layout.PxToMm
	pageH := func(leaf layout.Leaf) float64 {
		return math.Max(float64(book.Capacity), leaf.Height) * layout.PxToMm
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, pageW, pageH(book.Leaves[0]), nil)
	writer.SetInfo(book.Title, "", "", "", "folio")
	for i, leaf := range book.Leaves {
		h := pageH(leaf)
		if i > 0 {
			writer.NewPage(pageW, h)
		}
		c := canvas.New(pageW, h)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 左上角为原点，与排版坐标一致
		r.drawLeaf(ctx, leaf, style, face)
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawLeaf(ctx *canvas.Context, leaf layout.Leaf, style layout.Style, face *canvas.FontFace) {
	x := style.Padding * layout.PxToMm
	cursorY := style.Padding * layout.PxToMm
	linePx := style.LinePx()
	ascent := face.Metrics().Ascent
	for _, line := range leaf.Lines {
		// 行框高度至少为 fontSize × lineHeight，与测量时一致
		box := math.Max(line.Height+line.GapBefore, linePx) * layout.PxToMm
		if line.Content != "" {
			half := (box - line.Height*layout.PxToMm) / 2
			ctx.DrawText(x, cursorY+half+ascent, canvas.NewTextLine(face, line.Content, canvas.Left))
		}
		cursorY += box
	}
}
