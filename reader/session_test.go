package reader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/folio/config"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/paginate"
	"github.com/ByLCY/folio/source"
)

// gridOracle 把文本排在边长为字号的方格上。
func gridOracle() paginate.Oracle {
	return paginate.OracleFunc(func(text string, style layout.Style) int {
		cols := int(style.Width / style.FontSize)
		n := utf8.RuneCountInString(text)
		rows := (n + cols - 1) / cols
		return rows * int(style.FontSize)
	})
}

func longText() string {
	var b strings.Builder
	for i := range 200 {
		fmt.Fprintf(&b, "Sentence number %d is here. ", i)
	}
	return b.String()
}

func newSession(t *testing.T) *Session {
	t.Helper()
	s := New(gridOracle(), Options{})
	s.SetDocument(source.Document{Title: "sample", Text: longText()})
	require.True(t, s.Repaginate(context.Background()))
	require.Greater(t, len(s.Pages()), 2)
	return s
}

func TestNewDefaults(t *testing.T) {
	s := New(gridOracle(), Options{})
	assert.Equal(t, 792, s.Capacity())
	assert.Equal(t, 390.0, s.Style().Width)
	assert.Equal(t, 16.0, s.Style().FontSize)
	assert.Equal(t, Status{FontSize: 16}, s.Status())
	assert.Equal(t, "0 / 0", s.StatusLine())
	assert.Equal(t, "16px", s.FontLine())
	assert.False(t, s.Stale())
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Declarations = "font-size: 30px"
	opts, err := OptionsFromConfig(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 24.0, opts.Style.FontSize, "clamped to the font range")

	s := New(gridOracle(), opts)
	assert.Equal(t, 24.0, s.Style().FontSize)
	assert.Equal(t, 792, s.Capacity())
}

func TestChromeDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want int
	}{
		{"zero takes the default bar", Options{}, 844 - 52},
		{"explicit chrome", Options{Chrome: 100}, 744},
		{"no chrome", Options{NoChrome: true}, 844},
		{"negative is no chrome", Options{Chrome: -1}, 844},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(gridOracle(), tt.opts).Capacity())
		})
	}

	cfg := config.Default()
	cfg.Chrome = 0
	opts, err := OptionsFromConfig(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 844, New(gridOracle(), opts).Capacity(), "chrome: 0 in the config means no bar")
}

func TestPaginationFitsCapacity(t *testing.T) {
	s := newSession(t)
	o := gridOracle()
	for i, p := range s.Pages() {
		assert.LessOrEqual(t, o.Measure(p.Text, s.Style()), s.Capacity(), "page %d", i)
	}
	assert.Equal(t, len(s.Pages()), s.Stats().Pages)
	assert.Equal(t, "1 / "+fmt.Sprint(len(s.Pages())), s.StatusLine())
}

func TestNavigation(t *testing.T) {
	s := newSession(t)
	n := len(s.Pages())

	assert.False(t, s.PrevPage(), "cannot go before the first page")
	assert.True(t, s.Key(KeyRight))
	assert.Equal(t, 1, s.Cursor())
	assert.False(t, s.Key("Enter"))
	assert.True(t, s.Key(KeyLeft))
	assert.Equal(t, 0, s.Cursor())

	s.GoTo(n + 10)
	assert.Equal(t, n-1, s.Cursor())
	assert.False(t, s.NextPage(), "cannot go past the last page")

	s.GoTo(-3)
	assert.Equal(t, 0, s.Cursor())

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, s.Pages()[0], cur)
}

func TestSwipe(t *testing.T) {
	s := newSession(t)

	assert.False(t, s.Swipe(100, 60), "exactly the threshold does not turn")
	assert.Equal(t, 0, s.Cursor())
	assert.True(t, s.Swipe(100, 50), "swipe left goes forward")
	assert.Equal(t, 1, s.Cursor())
	assert.True(t, s.Swipe(50, 100), "swipe right goes back")
	assert.Equal(t, 0, s.Cursor())
	assert.False(t, s.Swipe(50, 100), "already on the first page")
}

func TestFontSizeClamp(t *testing.T) {
	s := New(gridOracle(), Options{})
	for _, want := range []float64{18, 20, 22, 24} {
		require.True(t, s.FontBigger())
		assert.Equal(t, want, s.Style().FontSize)
	}
	assert.False(t, s.FontBigger())
	assert.Equal(t, "24px", s.FontLine())

	for s.FontSmaller() {
	}
	assert.Equal(t, 12.0, s.Style().FontSize)
	assert.True(t, s.Stale())
}

func TestStaleResultIsDropped(t *testing.T) {
	s := newSession(t)
	before := s.Pages()

	req := s.Request()
	require.True(t, s.FontBigger())
	old := s.Run(context.Background(), req)

	assert.False(t, s.Apply(old), "a result for an older generation must be dropped")
	assert.Equal(t, before, s.Pages())
	assert.True(t, s.Stale())

	assert.True(t, s.Repaginate(context.Background()))
	assert.False(t, s.Stale())
	assert.NotEqual(t, len(before), len(s.Pages()))
}

func TestConcurrentRunsLastWriteWins(t *testing.T) {
	s := newSession(t)

	var reqs []Request
	for range 4 {
		s.FontBigger()
		reqs = append(reqs, s.Request())
	}
	results := make([]Result, len(reqs))
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.Run(context.Background(), req)
		}()
	}
	wg.Wait()

	// 按逆序应用：只有最新一次请求的结果会被采用
	for i := len(results) - 1; i >= 0; i-- {
		assert.Equal(t, i == len(results)-1, s.Apply(results[i]))
	}
	last := results[len(results)-1]
	assert.Equal(t, paginate.Texts(last.Pages), paginate.Texts(s.Pages()))
}

func TestCanceledRunIsNotApplied(t *testing.T) {
	s := newSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.FontBigger()
	res := s.Run(ctx, s.Request())
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.False(t, s.Apply(res))
	assert.True(t, s.Stale())
}

func TestCursorClampedAfterRepagination(t *testing.T) {
	s := newSession(t)
	before := len(s.Pages())
	s.GoTo(before - 1)

	s.FontSmaller()
	s.FontSmaller()
	require.True(t, s.Repaginate(context.Background()))

	after := len(s.Pages())
	require.Less(t, after, before)
	assert.Equal(t, after-1, s.Cursor())
}

func TestResize(t *testing.T) {
	s := newSession(t)
	assert.False(t, s.Resize(390, 844))
	assert.True(t, s.Resize(600, 500))
	assert.Equal(t, 448, s.Capacity())
	assert.Equal(t, 600.0, s.Style().Width)
	assert.True(t, s.Stale())

	s.Resize(600, 30)
	assert.Equal(t, 0, s.Capacity())
	require.True(t, s.Repaginate(context.Background()))
	assert.Empty(t, s.Pages())
	assert.Equal(t, "0 / 0", s.StatusLine())
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestLoadSourceFailureLeavesEmptyDocument(t *testing.T) {
	var logs bytes.Buffer
	s := New(gridOracle(), Options{Logger: zerolog.New(&logs)})
	s.SetDocument(source.Document{Text: "previous text"})

	missing := filepath.Join(t.TempDir(), "missing.txt")
	err := s.LoadSource(context.Background(), nil, missing)
	require.Error(t, err)

	assert.Empty(t, s.Document().Text)
	assert.Contains(t, logs.String(), "failed to load text")
	assert.Contains(t, logs.String(), "missing.txt")

	require.True(t, s.Repaginate(context.Background()))
	assert.Empty(t, s.Pages())
}

func TestLoadSourceFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.txt")
	require.NoError(t, writeFile(path, "One. Two. Three."))

	s := New(gridOracle(), Options{})
	require.NoError(t, s.LoadSource(context.Background(), source.NewLoader(zerolog.Nop()), path))
	require.True(t, s.Repaginate(context.Background()))
	assert.Equal(t, []string{"One. Two. Three."}, paginate.Texts(s.Pages()))
	assert.Equal(t, "story", s.Document().Title)
}

func TestMeasurementCacheReused(t *testing.T) {
	s := newSession(t)
	_, missesBefore := s.CacheStats()

	s.Resize(390, 843)
	s.Resize(390, 844)
	require.True(t, s.Repaginate(context.Background()))

	hits, misses := s.CacheStats()
	assert.Equal(t, missesBefore, misses, "same style repeats every measurement")
	assert.Positive(t, hits)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
