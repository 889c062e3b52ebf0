package layout

// Typesetter 负责根据字体与宽度约束将文本拆成可绘制的行。
// 约定：width/fontSize/lineHeight 以及返回行的宽高均为 px。
type Typesetter interface {
	LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error)
}
