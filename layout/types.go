package layout

// 该文件定义排版样式与分页结果，供测量、渲染与调试 JSON 共用。

// Style 描述一次分页所使用的排版参数，长度单位统一为 px。
// Style 是可比较的值类型，可直接作为缓存键。
type Style struct {
	FontSize   float64      `json:"fontSize" yaml:"font-size"`     // 字号（px）
	LineHeight float64      `json:"lineHeight" yaml:"line-height"` // 行高倍数，例如 1.5
	Padding    float64      `json:"padding" yaml:"padding"`        // 四边内边距（px）
	Width      float64      `json:"width" yaml:"width"`            // 视口宽度（px），包含左右内边距
	Wrap       string       `json:"wrap" yaml:"wrap"`              // 折行策略：anywhere(默认，同 CSS break-word)/break-all/nowrap/normal
	Font       FontResource `json:"font" yaml:"font"`
}

// 阅读器的默认排版参数。
const (
	DefaultFontSize   = 16.0
	DefaultLineHeight = 1.5
	DefaultPadding    = 12.0
	DefaultWidth      = 390.0
)

// DefaultStyle 返回阅读器默认样式：16px、1.5 倍行高、12px 内边距、保留空白并允许词内折行。
func DefaultStyle() Style {
	return Style{
		FontSize:   DefaultFontSize,
		LineHeight: DefaultLineHeight,
		Padding:    DefaultPadding,
		Width:      DefaultWidth,
		Wrap:       WrapAnywhere,
		Font:       FontResource{Name: "Body", Src: "embed:lmroman10-regular"},
	}
}

// ContentWidth 返回扣除左右内边距后的可用行宽（px），不会小于 0。
func (s Style) ContentWidth() float64 {
	w := s.Width - 2*s.Padding
	if w < 0 {
		return 0
	}
	return w
}

// LinePx 返回单个行框的高度（px）。
func (s Style) LinePx() float64 {
	lh := s.LineHeight
	if lh <= 0 {
		lh = DefaultLineHeight
	}
	return s.FontSize * lh
}

// WithFontSize returns a copy of s using the given font size.
func (s Style) WithFontSize(px float64) Style {
	s.FontSize = px
	return s
}

// FontResource 描述字体资源，src 可以是文件路径、embed:<name> 或 builtin:<name> 形式。
type FontResource struct {
	Name   string `json:"name" yaml:"name"`
	Src    string `json:"src" yaml:"src"`
	Style  string `json:"style,omitempty" yaml:"style"`
	Family string `json:"family,omitempty" yaml:"family"` // 渲染器使用的 Family 名称
}

// TextLine 表示排版后的一行文本内容及其宽高（px）。
type TextLine struct {
	Content   string  `json:"content"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
}

// Book 保存一次分页的全部页面，渲染器与调试输出都以它为输入。
type Book struct {
	Title    string `json:"title"`
	Capacity int    `json:"capacity"`
	Style    Style  `json:"style"`
	Leaves   []Leaf `json:"pages"`
}

// Leaf 是排好行的一页。
// Overflow 表示该页实际高度超过了容量（仅强制推进产生的页会出现）。
// Start、End 为页面在原文中的字符偏移，由调用方按分页结果回填。
type Leaf struct {
	Number   int        `json:"number"`
	Start    int        `json:"start"`
	End      int        `json:"end"`
	Forced   bool       `json:"forced,omitempty"`
	Content  string     `json:"content"`
	Lines    []TextLine `json:"lines"`
	Height   float64    `json:"height"`
	Overflow bool       `json:"overflow,omitempty"`
}
