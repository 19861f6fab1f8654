package markdown

import "regexp"

var singleNewlinePattern = regexp.MustCompile(`([^\n])\n([^\n])`)

// SplitSingleNewlines 将非空行之间的单个换行扩展为空行分隔，
// 使每个源文本行各自成段；两个及以上的连续换行保持不变。
// 用于把"软换行即分段"风格的笔记转成标准 markdown 段落结构。
func SplitSingleNewlines(src string) string {
	// 替换区间不重叠，连续命中需要两趟才能全部展开
	prev := ""
	for prev != src {
		prev = src
		src = singleNewlinePattern.ReplaceAllString(src, "$1\n\n$2")
	}
	return src
}
