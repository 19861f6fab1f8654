package layout

import (
	"reflect"
	"testing"
	"unicode/utf8"

	"github.com/ByLCY/inkstone/markdown"
)

// runeMetrics 每个字符固定宽度，便于精确断言折行位置。
type runeMetrics struct {
	w float64
}

func (m runeMetrics) Measure(text string, _ markdown.Style, _ FontRole) (Extent, error) {
	return Extent{
		Advance:    float64(utf8.RuneCountInString(text)) * m.w,
		LineHeight: 20,
		Ascent:     16,
	}, nil
}

func TestSplitUnits(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"hello world", []string{"hello", " ", "world"}},
		{"中文字", []string{"中", "文", "字"}},
		{"Go语言test", []string{"Go", "语", "言", "test"}},
		{"a  b", []string{"a", "  ", "b"}},
		{"", nil},
	}
	for _, c := range cases {
		if got := splitUnits(c.in); !reflect.DeepEqual(got, c.want) {
			t.Errorf("splitUnits(%q) = %q, 期望 %q", c.in, got, c.want)
		}
	}
}

func lineTexts(lines []wrappedLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.text()
	}
	return out
}

func TestWrapSpansGreedy(t *testing.T) {
	spans := []markdown.Span{{Text: "aaa bbb ccc", Style: markdown.StylePlain}}
	// 行宽 7 字符：首行放下 "aaa bbb"，续行空格被吞掉
	lines, err := wrapSpans(spans, RoleBody, 7, runeMetrics{w: 1})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"aaa bbb", "ccc"}
	if !reflect.DeepEqual(lineTexts(lines), want) {
		t.Fatalf("折行不符: %q", lineTexts(lines))
	}
}

func TestWrapSpansCJKPerRune(t *testing.T) {
	spans := []markdown.Span{{Text: "一二三四五", Style: markdown.StylePlain}}
	lines, err := wrapSpans(spans, RoleBody, 2, runeMetrics{w: 1})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"一二", "三四", "五"}
	if !reflect.DeepEqual(lineTexts(lines), want) {
		t.Fatalf("CJK 折行不符: %q", lineTexts(lines))
	}
}

// 单元本身超过整行宽度时逐字符折断，任何字符都不丢失。
func TestWrapSpansOversizedUnit(t *testing.T) {
	spans := []markdown.Span{{Text: "abcdefgh", Style: markdown.StylePlain}}
	lines, err := wrapSpans(spans, RoleBody, 3, runeMetrics{w: 1})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"abc", "def", "gh"}
	if !reflect.DeepEqual(lineTexts(lines), want) {
		t.Fatalf("超宽单元折断不符: %q", lineTexts(lines))
	}
}

// 换行单元不跨样式边界，同行内相邻同样式片段会合并。
func TestWrapSpansStyleBoundary(t *testing.T) {
	spans := []markdown.Span{
		{Text: "ab", Style: markdown.StylePlain},
		{Text: "cd", Style: markdown.StyleBold},
	}
	lines, err := wrapSpans(spans, RoleBody, 10, runeMetrics{w: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || len(lines[0].segs) != 2 {
		t.Fatalf("应得单行两段: %+v", lines)
	}
	if lines[0].segs[0].style != markdown.StylePlain || lines[0].segs[1].style != markdown.StyleBold {
		t.Fatalf("段样式不符: %+v", lines[0].segs)
	}
	if lines[0].width != 4 {
		t.Fatalf("行宽 = %g", lines[0].width)
	}
}

func TestWrapSpansEmpty(t *testing.T) {
	lines, err := wrapSpans(nil, RoleBody, 10, runeMetrics{w: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || len(lines[0].segs) != 0 {
		t.Fatalf("空输入应返回单个空行: %+v", lines)
	}
}
