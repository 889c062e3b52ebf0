package fonts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-fonts/latin-modern/lmmono10regular"
	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"github.com/go-fonts/latin-modern/lmsans10regular"
)

// Default 是没有指定字体时使用的内置字体。
const Default = "lmroman10-regular"

var builtin = map[string][]byte{
	"lmroman10-regular": lmroman10regular.TTF,
	"lmroman10-bold":    lmroman10bold.TTF,
	"lmroman10-italic":  lmroman10italic.TTF,
	"lmsans10-regular":  lmsans10regular.TTF,
	"lmmono10-regular":  lmmono10regular.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:lmroman10-regular" 或直接 "lmroman10-regular"，
// 扩展名会被忽略。
func Load(name string) ([]byte, error) {
	key := strings.TrimPrefix(name, "embed:")
	key = strings.TrimSuffix(strings.TrimSuffix(strings.ToLower(key), ".ttf"), ".otf")
	data, ok := builtin[key]
	if !ok || len(data) == 0 {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 未找到", name)
	}
	return data, nil
}

// Names 返回全部内置字体名，按字母排序。
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
