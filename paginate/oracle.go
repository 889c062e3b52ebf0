package paginate

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/ByLCY/folio/layout"
)

// Oracle 返回 text 在 style 下渲染后的像素高度。
// 同一轮分页内相同参数必须返回相同高度，且文本向后追加字符时高度不减。
type Oracle interface {
	Measure(text string, style layout.Style) int
}

// OracleFunc 把普通函数适配为 Oracle。
type OracleFunc func(text string, style layout.Style) int

// Measure 调用 f(text, style)。
func (f OracleFunc) Measure(text string, style layout.Style) int { return f(text, style) }

var _ Oracle = (*layout.Measurer)(nil)

// DefaultCacheEntries 是 CachedOracle 默认保留的高度条数。
const DefaultCacheEntries = 4096

// cacheKey 只记录前缀的字节长度与摘要，不持有文本本身，
// 每条缓存占用固定大小，与文档长度无关。
type cacheKey struct {
	n   int
	sum uint64
}

func keyOf(text string) cacheKey {
	return cacheKey{n: len(text), sum: xxhash.Sum64String(text)}
}

// CachedOracle 缓存另一个 Oracle 的测量结果，同一时间只服务一种样式：
// 换用新的样式测量会清空已有缓存。可并发使用。
type CachedOracle struct {
	Oracle     Oracle
	MaxEntries int

	mu      sync.Mutex
	style   layout.Style
	heights map[cacheKey]int
	hits    int
	misses  int
}

// NewCachedOracle 为 o 包一层测量缓存。
func NewCachedOracle(o Oracle) *CachedOracle {
	return &CachedOracle{Oracle: o, MaxEntries: DefaultCacheEntries}
}

// Measure 实现 Oracle。
func (c *CachedOracle) Measure(text string, style layout.Style) int {
	key := keyOf(text)

	c.mu.Lock()
	if c.heights == nil || style != c.style {
		c.heights = make(map[cacheKey]int)
		c.style = style
	}
	if h, ok := c.heights[key]; ok {
		c.hits++
		c.mu.Unlock()
		return h
	}
	c.misses++
	c.mu.Unlock()

	h := c.Oracle.Measure(text, style)

	c.mu.Lock()
	defer c.mu.Unlock()
	if style != c.style {
		return h
	}
	if len(c.heights) >= c.limit() {
		c.heights = make(map[cacheKey]int)
	}
	c.heights[key] = h
	return h
}

func (c *CachedOracle) limit() int {
	if c.MaxEntries <= 0 {
		return DefaultCacheEntries
	}
	return c.MaxEntries
}

// Len 返回当前缓存的条数。
func (c *CachedOracle) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.heights)
}

// Reset 清空缓存。
func (c *CachedOracle) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.heights = nil
}

// Stats 返回累计的命中与未命中次数。
func (c *CachedOracle) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
