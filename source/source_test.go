package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.txt")
	require.NoError(t, os.WriteFile(path, []byte("\uFEFFFirst line.\r\nSecond line.\r\n"), 0o600))

	doc, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "First line.\nSecond line.\n", doc.Text)
	assert.Equal(t, "sample", doc.Title)
	assert.Equal(t, "utf-8", doc.Charset)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadEmptyLocation(t *testing.T) {
	_, err := Load(context.Background(), "")
	assert.Error(t, err)
}

func TestLoadHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sample.txt":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte("안녕하세요. 반갑습니다."))
		case "/euckr.txt":
			body, _ := korean.EUCKR.NewEncoder().String("한국어 문장입니다.")
			w.Header().Set("Content-Type", "text/plain; charset=euc-kr")
			_, _ = w.Write([]byte(body))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	doc, err := Load(context.Background(), srv.URL+"/sample.txt")
	require.NoError(t, err)
	assert.Equal(t, "안녕하세요. 반갑습니다.", doc.Text)
	assert.Equal(t, "sample", doc.Title)

	doc, err = Load(context.Background(), srv.URL+"/euckr.txt")
	require.NoError(t, err)
	assert.Equal(t, "한국어 문장입니다.", doc.Text)
	assert.Equal(t, "euc-kr", doc.Charset)

	_, err = Load(context.Background(), srv.URL+"/missing.txt")
	assert.ErrorIs(t, err, ErrStatus)
}

func TestLoadHTTPCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadStdinAndLimit(t *testing.T) {
	l := &Loader{Stdin: strings.NewReader("from stdin")}
	doc, err := l.Load(context.Background(), Stdin)
	require.NoError(t, err)
	assert.Equal(t, "from stdin", doc.Text)
	assert.Empty(t, doc.Title)

	l = &Loader{Stdin: strings.NewReader(strings.Repeat("x", 20)), MaxBytes: 10}
	_, err = l.Load(context.Background(), Stdin)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestNormalizeComposesHangul(t *testing.T) {
	decomposed := "\u1112\u1161\u11ab" // ᄒ ᅡ ᆫ
	assert.Equal(t, "\uD55C", Normalize(decomposed))
	assert.Equal(t, "a\nb\nc", Normalize("a\r\nb\rc"))
}

func TestTitleOf(t *testing.T) {
	assert.Equal(t, "book", titleOf("/tmp/book.txt"))
	assert.Equal(t, "example.com", titleOf("https://example.com/"))
	assert.Equal(t, "ch1", titleOf("https://example.com/texts/ch1.txt?x=1"))
}
