package paginate

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ByLCY/folio/layout"
)

const (
	// DefaultWindow 是切分点为落在句末或换行处最多回退的字符数。
	DefaultWindow = 100
	// DefaultFallbackLength 是剩余文本没有换行时强制切分的长度。
	DefaultFallbackLength = 50
)

// Page 是文档中去掉首尾空白后的一段。
// Start、End 为 Text 在原文中的字符（rune）偏移；Forced 表示该页由强制切分产生，可能超出容量。
type Page struct {
	Text   string `json:"text"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Forced bool   `json:"forced,omitempty"`
}

// Stats 记录一轮分页的工作量。
type Stats struct {
	Measurements int `json:"measurements"`
	Pages        int `json:"pages"`
	Forced       int `json:"forced"`
}

// Paginator 借助 Oracle 把文本切成页面。
type Paginator struct {
	Oracle         Oracle
	Window         int
	FallbackLength int
	Logger         zerolog.Logger
}

// New 返回使用默认回退窗口与强制切分长度的 Paginator。
func New(o Oracle) *Paginator {
	return &Paginator{
		Oracle:         o,
		Window:         DefaultWindow,
		FallbackLength: DefaultFallbackLength,
		Logger:         zerolog.Nop(),
	}
}

// Paginate 按 style 把 text 切成不超过 capacity 的页面文本。
// 空文本或容量为 0 时返回空结果。
func Paginate(text string, capacity int, style layout.Style, o Oracle) []string {
	pages, _, _ := New(o).Pages(context.Background(), text, capacity, style)
	return Texts(pages)
}

// Texts 返回各页的文本。
func Texts(pages []Page) []string {
	if len(pages) == 0 {
		return nil
	}
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.Text
	}
	return out
}

// Pages 执行一轮分页。每切一页前检查 ctx，唯一可能返回的错误是 ctx.Err()。
func (p *Paginator) Pages(ctx context.Context, text string, capacity int, style layout.Style) ([]Page, Stats, error) {
	var stats Stats
	if text == "" || capacity <= 0 {
		return nil, stats, nil
	}

	window := p.Window
	if window <= 0 {
		window = DefaultWindow
	}
	fallback := p.FallbackLength
	if fallback <= 0 {
		fallback = DefaultFallbackLength
	}

	runes := []rune(text)
	var pages []Page
	emit := func(lo, hi int, forced bool) {
		s, e := trimSpan(runes, lo, hi)
		if s >= e {
			return
		}
		pages = append(pages, Page{Text: string(runes[s:e]), Start: s, End: e, Forced: forced})
		if forced {
			stats.Forced++
		}
	}

	lo, hi := 0, len(runes)
	for lo < hi {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		rem := runes[lo:hi]
		split := fitPrefix(len(rem), func(n int) bool {
			stats.Measurements++
			return p.Oracle.Measure(string(rem[:n]), style) <= capacity
		})
		if split > 0 && split < len(rem) {
			split = refineBoundary(rem, split, window)
		}

		emit(lo, lo+split, false)
		lo, hi = trimSpan(runes, lo+split, hi)

		if split == 0 && lo < hi {
			// 容量连一个字符都放不下：强制推进到下一个换行或固定长度
			cut := forceProgress(runes[lo:hi], fallback)
			p.Logger.Debug().Int("offset", lo).Int("cut", cut).Int("capacity", capacity).Msg("forced page break")
			emit(lo, lo+cut, true)
			lo, hi = trimSpan(runes, lo+cut, hi)
		}
	}

	stats.Pages = len(pages)
	p.Logger.Debug().
		Int("pages", stats.Pages).
		Int("forced", stats.Forced).
		Int("measurements", stats.Measurements).
		Int("capacity", capacity).
		Float64("fontSize", style.FontSize).
		Msg("paginated")
	return pages, stats, nil
}
