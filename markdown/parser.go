package markdown

import (
	"regexp"
	"strings"
)

// parserState 显式记录逐行扫描中的状态，避免隐式可变状态带来的重入问题。
type parserState int

const (
	stateNormal    parserState = iota
	stateCode                  // 位于 ``` 围栏内部
	stateParagraph             // 正在累积段落行
)

var orderedItemPattern = regexp.MustCompile(`^(\d+)\. (.*)$`)

// Parse 将整篇文档解析为有序的块级元素序列。
// 单次前向扫描，每行按固定优先级分类：标题、代码围栏、引用、无序列表项、
// 有序列表项、分隔线、空行、段落兜底。任何行都不会被拒绝：不匹配前六类的
// 行一律归入段落，因此解析永远不会失败。
func Parse(src string) []Block {
	lines := strings.Split(src, "\n")

	var blocks []Block
	state := stateNormal
	var codeLang string
	var codeLines []string
	codeSource := 0
	var paraLines []string
	var quoteLines []string

	flushParagraph := func() {
		if len(paraLines) == 0 {
			return
		}
		joined := strings.Join(paraLines, " ")
		blocks = append(blocks, Block{
			Kind:        KindParagraph,
			Spans:       ResolveInline(joined),
			SourceLines: len(paraLines),
		})
		paraLines = nil
		state = stateNormal
	}
	flushQuote := func() {
		if len(quoteLines) == 0 {
			return
		}
		joined := strings.Join(quoteLines, " ")
		blocks = append(blocks, Block{
			Kind:        KindQuote,
			Spans:       ResolveInline(joined),
			SourceLines: len(quoteLines),
		})
		quoteLines = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if state == stateCode {
			codeSource++
			if strings.HasPrefix(trimmed, "```") {
				blocks = append(blocks, Block{
					Kind:        KindCode,
					Lang:        codeLang,
					Lines:       codeLines,
					SourceLines: codeSource,
				})
				codeLines = nil
				state = stateNormal
			} else {
				// 围栏内部逐行原样保留，不做行内解析
				codeLines = append(codeLines, line)
			}
			continue
		}

		switch {
		case headingLevel(trimmed) > 0:
			flushParagraph()
			flushQuote()
			level := headingLevel(trimmed)
			blocks = append(blocks, Block{
				Kind:        KindHeading,
				Level:       level,
				Spans:       ResolveInline(strings.TrimSpace(trimmed[level+1:])),
				SourceLines: 1,
			})

		case strings.HasPrefix(trimmed, "```"):
			flushParagraph()
			flushQuote()
			codeLang = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			codeLines = nil
			codeSource = 1
			state = stateCode

		case strings.HasPrefix(trimmed, ">"):
			// 连续的引用行并入同一个引用块；> 之后至多剥掉一个空格
			flushParagraph()
			text := strings.TrimPrefix(trimmed, ">")
			text = strings.TrimPrefix(text, " ")
			quoteLines = append(quoteLines, text)

		case isBulletItem(trimmed):
			flushParagraph()
			flushQuote()
			blocks = append(blocks, Block{
				Kind:        KindBullet,
				Spans:       ResolveInline(trimmed[2:]),
				SourceLines: 1,
			})

		case orderedItemPattern.MatchString(trimmed):
			flushParagraph()
			flushQuote()
			m := orderedItemPattern.FindStringSubmatch(trimmed)
			blocks = append(blocks, Block{
				Kind:        KindOrdered,
				Index:       parseIndex(m[1]),
				Spans:       ResolveInline(m[2]),
				SourceLines: 1,
			})

		case trimmed == "---" || trimmed == "***":
			flushParagraph()
			flushQuote()
			blocks = append(blocks, Block{Kind: KindRule, SourceLines: 1})

		case trimmed == "":
			// 空行结束段落/引用累积，自身不产生块
			flushParagraph()
			flushQuote()

		default:
			flushQuote()
			paraLines = append(paraLines, trimmed)
			state = stateParagraph
		}
	}

	flushParagraph()
	flushQuote()
	if state == stateCode {
		// 未闭合的围栏消费到文件末尾，按完整代码块输出
		blocks = append(blocks, Block{
			Kind:        KindCode,
			Lang:        codeLang,
			Lines:       codeLines,
			SourceLines: codeSource,
		})
	}
	return blocks
}

// headingLevel 返回 1-3 级标题的级别；非标题行返回 0。
func headingLevel(trimmed string) int {
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level < 1 || level > 3 {
		return 0
	}
	if level >= len(trimmed) || trimmed[level] != ' ' {
		return 0
	}
	return level
}

func isBulletItem(trimmed string) bool {
	if len(trimmed) < 2 || trimmed[1] != ' ' {
		return false
	}
	switch trimmed[0] {
	case '-', '*', '+':
		return true
	default:
		return false
	}
}

func parseIndex(digits string) int {
	n := 0
	for _, r := range digits {
		n = n*10 + int(r-'0')
	}
	return n
}
