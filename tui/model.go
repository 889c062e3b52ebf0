// Package tui is the terminal host of a reading session.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ByLCY/folio/config"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/reader"
	termrenderer "github.com/ByLCY/folio/renderer/term"
	"github.com/ByLCY/folio/source"
)

// 终端与像素的换算：一列 CellWidth px，一行 RowHeight px（16px 字号、1.5 倍行高时恰为一行文字）。
const (
	CellWidth  = termrenderer.DefaultCellWidth
	RowHeight  = termrenderer.DefaultRowHeight
	statusRows = 2 // 上边框 + 状态行
	marginCols = 1 // 页面左右各留一列
)

// Chrome is the px height reserved for the status bar.
const Chrome = statusRows * RowHeight

// ViewportFor converts a terminal size in cells to the px viewport of a session.
func ViewportFor(cols, rows int) (width, height float64) {
	w := cols - 2*marginCols
	if w < 1 {
		w = 1
	}
	if rows < 0 {
		rows = 0
	}
	return float64(w) * CellWidth, float64(rows) * RowHeight
}

// NewSession returns a session measured in terminal cells. Padding is dropped
// because the page is drawn edge to edge between the margins.
func NewSession(opts reader.Options) (*reader.Session, termrenderer.Typesetter) {
	ts := termrenderer.Typesetter{CellWidth: CellWidth}
	opts.Style.Padding = 0
	opts.Chrome = Chrome
	opts.SwipeThreshold = swipePx(opts.SwipeThreshold)
	return reader.New(layout.NewMeasurer(ts), opts), ts
}

// swipePx 保持阈值不小于一列，否则单击也会翻页。
func swipePx(threshold float64) float64 {
	if threshold <= 0 {
		threshold = config.DefaultSwipeThreshold
	}
	return math.Max(threshold, CellWidth)
}

// paginatedMsg carries a finished pagination pass.
type paginatedMsg struct {
	result reader.Result
}

// sourceLoadedMsg reports the end of loading the document.
type sourceLoadedMsg struct {
	err error
}

// Options configures the model.
type Options struct {
	Source string
	Loader *source.Loader
}

// Model is the Bubble Tea model of the reader.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type Model struct {
	session *reader.Session
	ts      termrenderer.Typesetter
	opts    Options
	keys    KeyMap
	help    help.Model

	ctx    context.Context
	cancel context.CancelFunc

	width, height int
	pressX        int
	pressed       bool
	loading       bool
	err           error
}

// NewModel creates the model. ctx bounds loading and every pagination pass.
func NewModel(ctx context.Context, session *reader.Session, ts termrenderer.Typesetter, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	return Model{
		session: session,
		ts:      ts,
		opts:    opts,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		ctx:     ctx,
		loading: opts.Source != "",
	}
}

// Init starts loading the source.
func (m Model) Init() tea.Cmd {
	if m.opts.Source == "" {
		return nil
	}
	session, ctx, loader, location := m.session, m.ctx, m.opts.Loader, m.opts.Source
	return func() tea.Msg {
		return sourceLoadedMsg{err: session.LoadSource(ctx, loader, location)}
	}
}

// Update handles messages (Bubble Tea interface).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		w, h := ViewportFor(msg.Width, msg.Height)
		if m.session.Resize(w, h) {
			cmd := m.repaginate()
			return m, cmd
		}
		return m, nil
	case sourceLoadedMsg:
		m.loading = false
		m.err = msg.err
		cmd := m.repaginate()
		return m, cmd
	case paginatedMsg:
		m.session.Apply(msg.result)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Next):
		m.session.Key(reader.KeyRight)
	case key.Matches(msg, m.keys.Prev):
		m.session.Key(reader.KeyLeft)
	case key.Matches(msg, m.keys.First):
		m.session.GoTo(0)
	case key.Matches(msg, m.keys.Last):
		m.session.GoTo(len(m.session.Pages()) - 1)
	case key.Matches(msg, m.keys.Bigger):
		if m.session.FontBigger() {
			cmd := m.repaginate()
			return m, cmd
		}
	case key.Matches(msg, m.keys.Smaller):
		if m.session.FontSmaller() {
			cmd := m.repaginate()
			return m, cmd
		}
	}
	return m, nil
}

// handleMouse 把按下与松开之间的横向位移当作滑动手势。
func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.pressX, m.pressed = msg.X, true
		}
	case tea.MouseActionRelease:
		if m.pressed {
			m.pressed = false
			m.session.Swipe(float64(m.pressX)*CellWidth, float64(msg.X)*CellWidth)
		}
	}
}

// repaginate cancels the pass in flight and starts a new one.
func (m *Model) repaginate() tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel

	session := m.session
	req := session.Request()
	return func() tea.Msg {
		return paginatedMsg{result: session.Run(ctx, req)}
	}
}

var (
	pageStyle = lipgloss.NewStyle().Padding(0, marginCols)
	barStyle  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("#dddddd")).
			Padding(0, marginCols)
	fontStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#007aff")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#d70000"))
)

// View renders the page and the status bar (Bubble Tea interface).
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading…"
	}
	bodyRows := m.height - statusRows
	if bodyRows < 0 {
		bodyRows = 0
	}

	var body []string
	switch {
	case m.help.ShowAll:
		body = strings.Split(m.help.View(m.keys), "\n")
	case m.err != nil:
		body = []string{errStyle.Render(fmt.Sprintf("could not load %s", m.opts.Source)), mutedStyle.Render(m.err.Error())}
	case m.loading:
		body = []string{mutedStyle.Render("loading " + m.opts.Source + "…")}
	default:
		if page, ok := m.session.Current(); ok {
			body = m.ts.Wrap(page.Text, m.session.Style())
		}
	}
	if len(body) > bodyRows {
		body = body[:bodyRows]
	}
	for len(body) < bodyRows {
		body = append(body, "")
	}

	return pageStyle.Render(strings.Join(body, "\n")) + "\n" + m.statusBar()
}

func (m Model) statusBar() string {
	left := fontStyle.Render("A-") + " " + m.session.FontLine() + " " + fontStyle.Render("A+")
	right := m.session.StatusLine()
	if m.session.Stale() {
		right = mutedStyle.Render("… ") + right
	}
	inner := m.width - 2*marginCols
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return barStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// Run starts the program in the alternate screen with mouse support.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
