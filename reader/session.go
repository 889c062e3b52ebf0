// Package reader 保存一次阅读会话的状态：文档、视口、样式、当前分页结果与页码游标。
//
// 影响分页的输入（文档、视口、字号）变化时递增代号。分页先由 Request 取快照，
// 再由 Run 计算（可在其他 goroutine 中），最后由 Apply 安装；代号已过期的结果会被丢弃。
package reader

import (
	"context"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/config"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/paginate"
	"github.com/ByLCY/folio/source"
)

// Key 能识别的按键。
const (
	KeyLeft  = "ArrowLeft"
	KeyRight = "ArrowRight"
)

// Options 配置 Session，零值字段取配置默认值。
type Options struct {
	Viewport       config.Viewport
	Chrome         float64
	NoChrome       bool // 为 true 时 Chrome 取 0，不回落到默认值
	Style          layout.Style
	FontRange      config.FontRange
	SwipeThreshold float64
	CacheEntries   int
	StatusTemplate string
	FontTemplate   string
	Logger         zerolog.Logger
}

// OptionsFromConfig 由已加载的配置构造 Options。
func OptionsFromConfig(cfg *config.Config, logger zerolog.Logger) (Options, error) {
	style, err := cfg.ResolveStyle()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Viewport:       cfg.Viewport,
		Chrome:         cfg.Chrome,
		NoChrome:       cfg.Chrome == 0,
		Style:          style,
		FontRange:      cfg.FontRange,
		SwipeThreshold: cfg.SwipeThreshold,
		CacheEntries:   cfg.CacheEntries,
		Logger:         logger,
	}, nil
}

// Request 是一轮分页输入的快照。
type Request struct {
	Generation uint64
	Text       string
	Capacity   int
	Style      layout.Style
}

// Result 是执行 Request 的结果。
type Result struct {
	Generation uint64
	Pages      []paginate.Page
	Stats      paginate.Stats
	Err        error
}

// Status 是底栏显示的内容。
type Status struct {
	Page     int     `json:"page"` // 从 1 开始，没有页面时为 0
	Total    int     `json:"total"`
	FontSize float64 `json:"fontSize"`
}

// Session 可并发使用。
type Session struct {
	mu sync.Mutex

	doc      source.Document
	viewport config.Viewport
	chrome   float64
	style    layout.Style
	fonts    config.FontRange
	swipe    float64

	statusTmpl string
	fontTmpl   string

	gen     uint64
	applied uint64 // 已安装页面对应的代号
	pages   []paginate.Page
	stats   paginate.Stats
	cursor  int

	cache     *paginate.CachedOracle
	paginator *paginate.Paginator
	logger    zerolog.Logger
}

// New 创建用 oracle 测量的会话。
func New(oracle paginate.Oracle, opts Options) *Session {
	def := config.Default()
	if opts.Viewport.Width <= 0 || opts.Viewport.Height <= 0 {
		opts.Viewport = def.Viewport
	}
	switch {
	case opts.NoChrome || opts.Chrome < 0:
		opts.Chrome = 0
	case opts.Chrome == 0:
		opts.Chrome = def.Chrome
	}
	if opts.Style.FontSize <= 0 {
		opts.Style = def.Style
	}
	if opts.FontRange.Step <= 0 || opts.FontRange.Min <= 0 || opts.FontRange.Max < opts.FontRange.Min {
		opts.FontRange = def.FontRange
	}
	if opts.SwipeThreshold <= 0 {
		opts.SwipeThreshold = def.SwipeThreshold
	}
	if opts.StatusTemplate == "" {
		opts.StatusTemplate = binding.StatusTemplate
	}
	if opts.FontTemplate == "" {
		opts.FontTemplate = binding.FontTemplate
	}

	cache := paginate.NewCachedOracle(oracle)
	if opts.CacheEntries > 0 {
		cache.MaxEntries = opts.CacheEntries
	}
	p := paginate.New(cache)
	p.Logger = opts.Logger

	s := &Session{
		viewport:   opts.Viewport,
		chrome:     opts.Chrome,
		style:      opts.Style,
		fonts:      opts.FontRange,
		swipe:      opts.SwipeThreshold,
		statusTmpl: opts.StatusTemplate,
		fontTmpl:   opts.FontTemplate,
		cache:      cache,
		paginator:  p,
		logger:     opts.Logger,
	}
	s.style.FontSize = s.fonts.Clamp(s.style.FontSize)
	s.style.Width = s.viewport.Width
	return s
}

// SetDocument 替换文档。游标保留，新分页安装后再收进范围。
func (s *Session) SetDocument(doc source.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.invalidateLocked()
}

// LoadSource 读取 location 作为当前文档；失败时记录日志并置为空文档。
func (s *Session) LoadSource(ctx context.Context, loader *source.Loader, location string) error {
	if loader == nil {
		loader = source.NewLoader(s.logger)
	}
	doc, err := loader.Load(ctx, location)
	if err != nil {
		s.logger.Error().Err(err).Str("source", location).Msg("failed to load text")
		s.SetDocument(source.Document{Location: location})
		return err
	}
	s.SetDocument(doc)
	return nil
}

// Document 返回当前文档。
func (s *Session) Document() source.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Resize 修改视口，返回是否有变化。
func (s *Session) Resize(width, height float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width == s.viewport.Width && height == s.viewport.Height {
		return false
	}
	s.viewport = config.Viewport{Width: width, Height: height}
	s.style.Width = width
	s.invalidateLocked()
	return true
}

// Capacity 是底栏之上可用的页面高度。
func (s *Session) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capacityLocked()
}

func (s *Session) capacityLocked() int {
	h := math.Floor(s.viewport.Height - s.chrome)
	if h < 0 {
		return 0
	}
	return int(h)
}

// Style 返回测量页面所用的样式。
func (s *Session) Style() layout.Style {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.style
}

// FontBigger 把字号增大一档，不超过上限。
func (s *Session) FontBigger() bool { return s.stepFont(1) }

// FontSmaller 把字号减小一档，不低于下限。
func (s *Session) FontSmaller() bool { return s.stepFont(-1) }

func (s *Session) stepFont(dir float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.fonts.Clamp(s.style.FontSize + dir*s.fonts.Step)
	if next == s.style.FontSize {
		return false
	}
	s.style.FontSize = next
	s.invalidateLocked()
	return true
}

// invalidateLocked 使当前分页结果过期；旧页面继续显示，直到新结果被 Apply。
func (s *Session) invalidateLocked() {
	s.gen++
}

// Stale 报告已安装的页面是否落后于当前输入。
func (s *Session) Stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied != s.gen
}

// Request 对当前输入取快照。
func (s *Session) Request() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Request{
		Generation: s.gen,
		Text:       s.doc.Text,
		Capacity:   s.capacityLocked(),
		Style:      s.style,
	}
}

// Run 对 req 分页。不修改会话状态，可在任意 goroutine 中执行；ctx 取消时中止。
func (s *Session) Run(ctx context.Context, req Request) Result {
	pages, stats, err := s.paginator.Pages(ctx, req.Text, req.Capacity, req.Style)
	return Result{Generation: req.Generation, Pages: pages, Stats: stats, Err: err}
}

// Apply 在没有更新的请求时安装 res 并收紧游标，返回是否已安装。
func (s *Session) Apply(res Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res.Generation != s.gen {
		s.logger.Debug().
			Uint64("generation", res.Generation).
			Uint64("current", s.gen).
			Msg("dropping stale pagination")
		return false
	}
	if res.Err != nil {
		s.logger.Debug().Err(res.Err).Uint64("generation", res.Generation).Msg("pagination aborted")
		return false
	}
	s.pages = res.Pages
	s.stats = res.Stats
	s.applied = res.Generation
	s.cursor = clamp(s.cursor, len(s.pages))
	return true
}

// Repaginate 同步分页并安装结果。
func (s *Session) Repaginate(ctx context.Context) bool {
	return s.Apply(s.Run(ctx, s.Request()))
}

// Pages 返回已安装的页面。
func (s *Session) Pages() []paginate.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages
}

// Stats 返回已安装分页的统计。
func (s *Session) Stats() paginate.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Cursor 返回当前页下标（从 0 开始）。
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Current 返回游标所在的页面。
func (s *Session) Current() (paginate.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pages) == 0 {
		return paginate.Page{}, false
	}
	return s.pages[s.cursor], true
}

// NextPage 前进一页，已在末页时不动。
func (s *Session) NextPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor >= len(s.pages)-1 {
		return false
	}
	s.cursor++
	return true
}

// PrevPage 后退一页，已在首页时不动。
func (s *Session) PrevPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor <= 0 {
		return false
	}
	s.cursor--
	return true
}

// GoTo 跳到 index，超出范围时收紧。
func (s *Session) GoTo(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = clamp(index, len(s.pages))
}

// Key 处理 ArrowLeft 与 ArrowRight，其余按键忽略。
func (s *Session) Key(name string) bool {
	switch name {
	case KeyRight:
		return s.NextPage()
	case KeyLeft:
		return s.PrevPage()
	default:
		return false
	}
}

// Swipe 处理从 startX 到 endX 的横向手势：向左滑（startX - endX 超过阈值）前进，向右滑后退。
func (s *Session) Swipe(startX, endX float64) bool {
	s.mu.Lock()
	threshold := s.swipe
	s.mu.Unlock()

	diff := startX - endX
	if math.Abs(diff) <= threshold {
		return false
	}
	if diff > 0 {
		return s.NextPage()
	}
	return s.PrevPage()
}

// Status 返回底栏状态。
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{Total: len(s.pages), FontSize: s.style.FontSize}
	if st.Total > 0 {
		st.Page = s.cursor + 1
	}
	return st
}

// StatusLine 渲染页码，如 "3 / 12"。
func (s *Session) StatusLine() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return binding.Interpolate(s.statusTmpl, s.varsLocked())
}

// FontLine 渲染字号提示，如 "16px"。
func (s *Session) FontLine() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return binding.Interpolate(s.fontTmpl, s.varsLocked())
}

func (s *Session) varsLocked() binding.Vars {
	return binding.PageVars(s.doc.Title, s.cursor, len(s.pages), s.style.FontSize)
}

// CacheStats 返回测量缓存的命中与未命中次数。
func (s *Session) CacheStats() (hits, misses int) {
	return s.cache.Stats()
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}
