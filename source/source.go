// Package source 从文件、标准输入或 http(s) URL 读取待分页的文本。
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxBytes 是单个文档的大小上限。
const DefaultMaxBytes = 32 << 20

// Stdin 表示从进程标准输入读取。
const Stdin = "-"

var (
	// ErrStatus 表示 HTTP 响应不是 2xx。
	ErrStatus = errors.New("unexpected HTTP status")
	// ErrTooLarge 表示文档超过 MaxBytes。
	ErrTooLarge = errors.New("document too large")
)

// Document 是已读取的文本。
type Document struct {
	Title    string `json:"title"`
	Location string `json:"location"`
	Charset  string `json:"charset"`
	Text     string `json:"-"`
}

// Loader 负责读取文档，零值可直接使用。
type Loader struct {
	Client   *http.Client
	MaxBytes int64
	Stdin    io.Reader
	Logger   zerolog.Logger
}

// NewLoader 返回 HTTP 超时为 30 秒的 Loader。
func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{
		Client:   &http.Client{Timeout: 30 * time.Second},
		MaxBytes: DefaultMaxBytes,
		Stdin:    os.Stdin,
		Logger:   logger,
	}
}

// Load 使用默认 Loader 读取 location："-"、文件路径或 http(s) URL。
func Load(ctx context.Context, location string) (Document, error) {
	return NewLoader(zerolog.Nop()).Load(ctx, location)
}

// Load 读取 location，解码为 NFC 规范化、以 "\n" 换行的 UTF-8 文本。
func (l *Loader) Load(ctx context.Context, location string) (Document, error) {
	doc := Document{Location: location, Title: titleOf(location)}
	if location == "" {
		return doc, errors.New("empty source location")
	}

	var (
		body        io.ReadCloser
		contentType = "text/plain"
		err         error
	)
	switch {
	case location == Stdin:
		in := l.Stdin
		if in == nil {
			in = os.Stdin
		}
		body = io.NopCloser(in)
	case isURL(location):
		body, contentType, err = l.fetch(ctx, location)
	default:
		body, err = os.Open(location)
	}
	if err != nil {
		return doc, fmt.Errorf("opening %s: %w", location, err)
	}
	defer body.Close()

	text, name, err := l.decode(body, contentType)
	if err != nil {
		return doc, fmt.Errorf("reading %s: %w", location, err)
	}
	doc.Text = text
	doc.Charset = name
	l.Logger.Debug().
		Str("location", location).
		Str("charset", name).
		Int("bytes", len(text)).
		Msg("source loaded")
	return doc, nil
}

func (l *Loader) fetch(ctx context.Context, location string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "text/plain, text/*;q=0.9, */*;q=0.1")

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, "", fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "text/plain"
	}
	return resp.Body, ct, nil
}

// decode 按 BOM、Content-Type 的 charset 或内容嗅探确定编码，转为 UTF-8。
func (l *Loader) decode(r io.Reader, contentType string) (string, string, error) {
	limit := l.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", "", err
	}
	if int64(len(data)) > limit {
		return "", "", fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}

	enc, name, certain := charset.DetermineEncoding(data, contentType)
	if !certain && utf8.Valid(data) {
		name = "utf-8"
	}
	if name != "utf-8" {
		data, err = enc.NewDecoder().Bytes(data)
		if err != nil {
			return "", name, fmt.Errorf("decoding %s: %w", name, err)
		}
	}
	return Normalize(string(data)), name, nil
}

// Normalize 统一换行为 "\n" 并转为 NFC，避免分页切开分解形式的韩文字母等组合字符。
func Normalize(text string) string {
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return norm.NFC.String(text)
}

func isURL(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func titleOf(location string) string {
	if location == "" || location == Stdin {
		return ""
	}
	base := filepath.Base(location)
	if isURL(location) {
		u, _ := url.Parse(location)
		base = path.Base(u.Path)
		if base == "/" || base == "." {
			return u.Host
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
