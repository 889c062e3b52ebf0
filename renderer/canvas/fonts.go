package canvasrenderer

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/layout"
)

// fontCache 按 FontResource 缓存已加载的字体族，加载失败时回落到默认字体。
type fontCache struct {
	baseDir string
	blobs   map[string][]byte

	mu       sync.Mutex
	loaded   map[string]loadedFont
	fallback *canvas.FontFamily
}

type loadedFont struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

func newFontCache(opts Options) *fontCache {
	c := &fontCache{
		baseDir: opts.BaseDir,
		blobs:   make(map[string][]byte, len(opts.Fonts)),
		loaded:  map[string]loadedFont{},
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		data := res.Bytes
		if len(data) == 0 && res.Path != "" {
			// 读取失败留到使用时报错
			data, _ = os.ReadFile(res.Path)
		}
		if len(data) > 0 {
			c.blobs[name] = data
		}
	}
	return c
}

func (c *fontCache) face(font layout.FontResource, sizePt float64, col color.Color) (*canvas.FontFace, error) {
	f, err := c.family(font)
	if err != nil {
		return nil, err
	}
	return f.family.Face(sizePt, col, f.style, canvas.FontNormal), nil
}

func (c *fontCache) family(font layout.FontResource) (loadedFont, error) {
	key := strings.Join([]string{font.Name, font.Family, font.Src, font.Style}, "|")
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.loaded[key]; ok {
		return f, nil
	}

	f := loadedFont{family: canvas.NewFontFamily(familyName(font)), style: parseFontStyle(font.Style)}
	data, err := c.bytes(font.Src)
	if err == nil {
		err = f.family.LoadFont(data, 0, f.style)
	}
	if err != nil {
		fb, fbErr := c.defaultFamily()
		if fbErr != nil {
			return loadedFont{}, err
		}
		f = loadedFont{family: fb, style: canvas.FontRegular}
	}
	c.loaded[key] = f
	return f, nil
}

func familyName(font layout.FontResource) string {
	switch {
	case font.Family != "":
		return font.Family
	case font.Name != "":
		return font.Name
	default:
		return "Body"
	}
}

// bytes 解析字体来源：空串为默认字体，builtin: 为注入资源，embed: 为内置字体，其余为文件路径。
func (c *fontCache) bytes(src string) ([]byte, error) {
	switch {
	case src == "":
		return fonts.Load(fonts.Default)
	case strings.HasPrefix(src, "embed:"):
		return fonts.Load(src)
	}
	for _, prefix := range []string{"builtin:", "built-in:"} {
		if name, ok := strings.CutPrefix(src, prefix); ok {
			if blob, ok := c.blobs[name]; ok {
				return blob, nil
			}
			return nil, fmt.Errorf("builtin font %q not registered", name)
		}
	}
	if filepath.IsAbs(src) {
		return os.ReadFile(src)
	}
	if c.baseDir == "" {
		return nil, fmt.Errorf("font path %q needs a font directory (or use embed:)", src)
	}
	return os.ReadFile(filepath.Join(c.baseDir, src))
}

// defaultFamily 必须在持有 mu 时调用。
func (c *fontCache) defaultFamily() (*canvas.FontFamily, error) {
	if c.fallback != nil {
		return c.fallback, nil
	}
	data, err := fonts.Load(fonts.Default)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("folio-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	c.fallback = family
	return family, nil
}

var weightNames = []struct {
	names []string
	style canvas.FontStyle
}{
	{[]string{"black"}, canvas.FontBlack},
	{[]string{"extrabold"}, canvas.FontExtraBold},
	{[]string{"semibold", "demibold"}, canvas.FontSemiBold},
	{[]string{"bold"}, canvas.FontBold},
	{[]string{"medium"}, canvas.FontMedium},
	{[]string{"light"}, canvas.FontLight},
}

func parseFontStyle(style string) canvas.FontStyle {
	s := strings.ToLower(style)
	result := canvas.FontRegular
weights:
	for _, w := range weightNames {
		for _, name := range w.names {
			if strings.Contains(s, name) {
				result = w.style
				break weights
			}
		}
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}
