package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// 占位符形如 ${path} 或 ${path:%03d}，冒号后为 fmt 格式。
var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Vars 是模板可引用的变量。值可以是标量、嵌套的 Vars / map[string]any 或 []any。
type Vars map[string]any

// StatusTemplate 是阅读器底栏的默认页码模板。
const StatusTemplate = "${page} / ${total}"

// FontTemplate 是底栏字号提示的默认模板。
const FontTemplate = "${fontSize}px"

// PageVars 构造页码模板使用的变量，page 从 1 开始计。
// 没有页面时 page 与 total 都为 0。
func PageVars(title string, cursor, total int, fontSize float64) Vars {
	page := cursor + 1
	if total == 0 {
		page = 0
	}
	return Vars{
		"title":    title,
		"page":     page,
		"total":    total,
		"fontSize": strconv.FormatFloat(fontSize, 'f', -1, 64),
	}
}

// Interpolate 替换 text 中的 ${path} 占位符，路径支持 a.b[0] 形式。
// 找不到的路径原样保留。
func Interpolate(text string, data any) string {
	if data == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path, format := splitFormat(match[2 : len(match)-1])
		val, ok := resolvePath(data, path)
		switch {
		case !ok:
			return match
		case format != "":
			return fmt.Sprintf(format, val)
		default:
			return fmt.Sprint(val)
		}
	})
}

func splitFormat(expr string) (string, string) {
	expr = strings.TrimSpace(expr)
	if i := strings.Index(expr, ":"); i != -1 {
		format := strings.TrimSpace(expr[i+1:])
		if strings.HasPrefix(format, "%") {
			return strings.TrimSpace(expr[:i]), format
		}
	}
	return expr, ""
}

// step 是路径中的一级访问：map 键或数组下标。
type step struct {
	key   string
	index int
	isIdx bool
}

// compilePath 把 "a.b[0][1]" 拆成逐级访问步骤。
func compilePath(path string) ([]step, bool) {
	var steps []step
	for _, segment := range strings.Split(path, ".") {
		key, rest, _ := strings.Cut(segment, "[")
		if key != "" {
			steps = append(steps, step{key: key})
		}
		if rest == "" {
			continue
		}
		for _, idx := range strings.Split(strings.TrimSuffix(rest, "]"), "][") {
			n, err := strconv.Atoi(idx)
			if err != nil {
				return nil, false
			}
			steps = append(steps, step{index: n, isIdx: true})
		}
	}
	return steps, len(steps) > 0
}

func resolvePath(data any, path string) (any, bool) {
	steps, ok := compilePath(path)
	if !ok {
		return nil, false
	}
	current := data
	for _, s := range steps {
		if s.isIdx {
			current, ok = index(current, s.index)
		} else {
			current, ok = field(current, s.key)
		}
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func field(current any, key string) (any, bool) {
	var val any
	var ok bool
	switch c := current.(type) {
	case Vars:
		val, ok = c[key]
	case map[string]any:
		val, ok = c[key]
	case map[string]string:
		val, ok = c[key]
	}
	return val, ok
}

func index(current any, i int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if i >= 0 && i < len(c) {
			return c[i], true
		}
	case []string:
		if i >= 0 && i < len(c) {
			return c[i], true
		}
	}
	return nil, false
}
