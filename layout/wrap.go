package layout

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"

	"github.com/ByLCY/inkstone/markdown"
)

// lineSeg 是排好的一行中样式连续的一段文本及其度量。
type lineSeg struct {
	text   string
	style  markdown.Style
	width  float64
	height float64
	ascent float64
}

// wrappedLine 是贪心换行产出的一行。width 为各段宽度之和，
// ascent/height 取各段最大值，保证混排时基线对齐。
type wrappedLine struct {
	segs   []lineSeg
	width  float64
	height float64
	ascent float64
}

func (l wrappedLine) text() string {
	var b strings.Builder
	for _, s := range l.segs {
		b.WriteString(s.text)
	}
	return b.String()
}

// splitUnits 将文本切成换行单元：CJK 等全角字符各自成单元，
// 连续的窄字符聚成词，连续空白聚成一个单元。单元内部不再可断。
func splitUnits(text string) []string {
	var units []string
	var cur strings.Builder
	curSpace := false
	flush := func() {
		if cur.Len() > 0 {
			units = append(units, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case runewidth.RuneWidth(r) >= 2:
			flush()
			units = append(units, string(r))
			curSpace = false
		case unicode.IsSpace(r):
			if !curSpace {
				flush()
			}
			cur.WriteRune(r)
			curSpace = true
		default:
			if curSpace {
				flush()
			}
			cur.WriteRune(r)
			curSpace = false
		}
	}
	flush()
	return units
}

func isSpaceUnit(u string) bool {
	for _, r := range u {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return len(u) > 0
}

// wrapSpans 对一个样式片段序列做贪心换行，行宽上限为 limit。
// 换行单元永不跨样式边界；超出整行宽度的单元退化为逐字符折断。
// 行首的续行空白被吞掉，行尾空白不计入行宽。
// 空输入返回单个空行，保证每个块至少占据一行高度。
func wrapSpans(spans []markdown.Span, role FontRole, limit float64, m Metrics) ([]wrappedLine, error) {
	var lines []wrappedLine
	var cur wrappedLine
	swallowSpace := false

	appendSeg := func(text string, st markdown.Style, ext Extent) {
		if n := len(cur.segs); n > 0 && cur.segs[n-1].style == st {
			cur.segs[n-1].text += text
			cur.segs[n-1].width += ext.Advance
		} else {
			cur.segs = append(cur.segs, lineSeg{
				text: text, style: st,
				width: ext.Advance, height: ext.LineHeight, ascent: ext.Ascent,
			})
		}
		cur.width += ext.Advance
		if ext.Ascent > cur.ascent {
			cur.ascent = ext.Ascent
		}
		if ext.LineHeight > cur.height {
			cur.height = ext.LineHeight
		}
	}
	flush := func() {
		// 行尾的纯空白段不参与绘制
		for n := len(cur.segs); n > 0 && isSpaceUnit(cur.segs[n-1].text); n = len(cur.segs) {
			cur.width -= cur.segs[n-1].width
			cur.segs = cur.segs[:n-1]
		}
		lines = append(lines, cur)
		cur = wrappedLine{}
		swallowSpace = true
	}

	for _, span := range spans {
		for _, unit := range splitUnits(span.Text) {
			if swallowSpace && isSpaceUnit(unit) && len(cur.segs) == 0 {
				continue
			}
			swallowSpace = false

			ext, err := m.Measure(unit, span.Style, role)
			if err != nil {
				return nil, err
			}
			if len(cur.segs) > 0 && cur.width+ext.Advance > limit {
				flush()
				if isSpaceUnit(unit) {
					continue
				}
			}
			if ext.Advance > limit {
				// 单元本身超过整行宽度，逐字符折断
				for _, r := range unit {
					rext, err := m.Measure(string(r), span.Style, role)
					if err != nil {
						return nil, err
					}
					if len(cur.segs) > 0 && cur.width+rext.Advance > limit {
						flush()
					}
					appendSeg(string(r), span.Style, rext)
				}
				continue
			}
			appendSeg(unit, span.Style, ext)
		}
	}
	if len(cur.segs) > 0 || len(lines) == 0 {
		flush()
	}
	return lines, nil
}
