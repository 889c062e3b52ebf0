package paginate

import "unicode"

// fitPrefix 在 [0, n] 上二分，返回 fits 为 true 的最大前缀长度；都放不下时返回 0。
// fits 必须单调：某长度放不下，更长的也放不下。
func fitPrefix(n int, fits func(int) bool) int {
	start, end := 0, n+1
	for start < end {
		mid := int(uint(start+end) >> 1)
		if fits(mid) {
			start = mid + 1
		} else {
			end = mid
		}
	}
	// start-1 是最后一个确认能放下的长度
	if start == 0 {
		return 0
	}
	return start - 1
}

// refineBoundary 从 split 向前最多回看 window 个字符，寻找更合适的断点并返回其后的位置。
// 句末标点须后接空白或位于 rem 末尾才算；换行总是算。找不到时原样返回 split。
// 结果不会大于 split，因此页面仍然放得下。
func refineBoundary(rem []rune, split, window int) int {
	if split <= 0 || split > len(rem) {
		return split
	}
	stop := split - window
	for i := split - 1; i >= 0 && i >= stop; i-- {
		r := rem[i]
		if isTerminator(r) {
			if i == len(rem)-1 || isSpace(rem[i+1]) {
				return i + 1
			}
			continue
		}
		if r == '\n' {
			return i + 1
		}
	}
	return split
}

// forceProgress 为完全放不下的文本选切分点：下一个换行，没有换行时取 fallback 个字符。
// rem 须以非空白字符开头，结果至少为 1。
func forceProgress(rem []rune, fallback int) int {
	for i, r := range rem {
		if r == '\n' {
			if i == 0 {
				return 1
			}
			return i
		}
	}
	if fallback < 1 {
		fallback = 1
	}
	return min(len(rem), fallback)
}

// trimSpan 收缩 [lo, hi)，使其首尾都不是空白。
func trimSpan(runes []rune, lo, hi int) (int, int) {
	for lo < hi && isSpace(runes[lo]) {
		lo++
	}
	for hi > lo && isSpace(runes[hi-1]) {
		hi--
	}
	return lo, hi
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}
