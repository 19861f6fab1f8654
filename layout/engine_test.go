package layout

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ByLCY/inkstone/markdown"
	"github.com/ByLCY/inkstone/style"
)

// testConfig 缩小的页面：内容区宽 180，底界 135，正文行距 20。
func testConfig() *style.Config {
	cfg := style.Default()
	cfg.Width = 200
	cfg.Height = 150
	cfg.MarginLeft, cfg.MarginRight = 10, 10
	cfg.MarginTop, cfg.MarginBottom = 10, 10
	cfg.SafeBottomMargin = 5
	cfg.H1LineSpacing = 30
	cfg.H2LineSpacing = 26
	cfg.H3LineSpacing = 24
	cfg.BodyLineSpacing = 20
	cfg.CodeLineSpacing = 15
	cfg.ParagraphSpacing = 8
	return cfg
}

type failMetrics struct{}

func (failMetrics) Measure(string, markdown.Style, FontRole) (Extent, error) {
	return Extent{}, errors.New("字体不可用")
}

func textCommands(p Page) []TextCommand {
	var out []TextCommand
	for _, c := range p.Commands {
		if c.Kind == CmdText {
			out = append(out, c.Text)
		}
	}
	return out
}

func paragraphs(n int) []markdown.Block {
	blocks := make([]markdown.Block, n)
	for i := range blocks {
		blocks[i] = markdown.Block{
			Kind:        markdown.KindParagraph,
			Spans:       []markdown.Span{{Text: "段落", Style: markdown.StylePlain}},
			SourceLines: 1,
		}
	}
	return blocks
}

func TestPaginateEmptyDoc(t *testing.T) {
	res, err := Paginate(nil, testConfig(), runeMetrics{w: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Pages) != 1 {
		t.Fatalf("空文档应产出一页: %d", len(res.Pages))
	}
	p := res.Pages[0]
	if p.Index != 1 || len(p.Commands) != 0 {
		t.Fatalf("空白页不符: index=%d commands=%d", p.Index, len(p.Commands))
	}
}

func TestPaginateNilArgs(t *testing.T) {
	if _, err := Paginate(nil, nil, runeMetrics{w: 1}); !errors.Is(err, ErrNoConfig) {
		t.Errorf("期望 ErrNoConfig, 得到 %v", err)
	}
	if _, err := Paginate(nil, testConfig(), nil); !errors.Is(err, ErrNoMetrics) {
		t.Errorf("期望 ErrNoMetrics, 得到 %v", err)
	}
}

func TestPaginateMetricsError(t *testing.T) {
	_, err := Paginate(paragraphs(1), testConfig(), failMetrics{})
	if err == nil {
		t.Fatal("度量失败应中止布局")
	}
}

func TestPaginateParagraphBaseline(t *testing.T) {
	res, err := Paginate(paragraphs(1), testConfig(), runeMetrics{w: 1})
	if err != nil {
		t.Fatal(err)
	}
	cmds := textCommands(res.Pages[0])
	if len(cmds) != 1 {
		t.Fatalf("指令数不符: %d", len(cmds))
	}
	// 行顶 = 上边距 10，基线 = 行顶 + ascent 16
	if cmds[0].X != 10 || cmds[0].Y != 26 {
		t.Errorf("首行落点不符: (%g, %g)", cmds[0].X, cmds[0].Y)
	}
	if cmds[0].Text != "段落" || cmds[0].Role != RoleBody {
		t.Errorf("指令内容不符: %+v", cmds[0])
	}
}

// 行距 20、段间距 8 的页面每页容纳四个单行段落。
func TestPaginatePageBreak(t *testing.T) {
	res, err := Paginate(paragraphs(10), testConfig(), runeMetrics{w: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Pages) != 3 {
		t.Fatalf("页数不符: %d", len(res.Pages))
	}
	want := []int{4, 4, 2}
	for i, p := range res.Pages {
		if p.Index != i+1 {
			t.Errorf("页号应从 1 连续编号: %d", p.Index)
		}
		if got := len(textCommands(p)); got != want[i] {
			t.Errorf("第 %d 页行数 = %d, 期望 %d", p.Index, got, want[i])
		}
	}
}

// 任何输入都不丢内容：各页文本拼接等于源文本（忽略折行处吞掉的空格）。
func TestPaginateNeverDrop(t *testing.T) {
	src := strings.Join([]string{
		"# 很长很长的标题需要折行处理",
		"",
		"第一段 正文 内容 比较 长 需要 跨越 多行 甚至 多页",
		"",
		"> 引用内容也不能丢",
		"",
		"```",
		"code line 1",
		"code line 2",
		"```",
		"- 列表项",
	}, "\n")
	blocks := markdown.Parse(src)
	res, err := Paginate(blocks, testConfig(), runeMetrics{w: 4})
	if err != nil {
		t.Fatal(err)
	}
	var got strings.Builder
	for _, p := range res.Pages {
		for _, c := range textCommands(p) {
			got.WriteString(c.Text)
		}
	}
	var want strings.Builder
	for _, b := range blocks {
		switch b.Kind {
		case markdown.KindBullet:
			want.WriteString("• ")
		case markdown.KindOrdered:
			want.WriteString("1. ")
		}
		want.WriteString(b.Text())
	}
	strip := func(s string) string { return strings.ReplaceAll(s, " ", "") }
	if strip(got.String()) != strip(want.String()) {
		t.Fatalf("内容不完整:\n得到 %q\n期望 %q", got.String(), want.String())
	}
}

func TestPaginateOrderedRenumbering(t *testing.T) {
	blocks := markdown.Parse("1. 甲\n5. 乙\n9. 丙\n\n插入段落\n\n3. 丁")
	res, err := Paginate(blocks, testConfig(), runeMetrics{w: 1})
	if err != nil {
		t.Fatal(err)
	}
	var items []string
	for _, p := range res.Pages {
		for _, c := range textCommands(p) {
			if strings.ContainsRune(c.Text, '.') {
				items = append(items, c.Text)
			}
		}
	}
	want := []string{"1. 甲", "2. 乙", "3. 丙", "1. 丁"}
	if !reflect.DeepEqual(items, want) {
		t.Fatalf("有序列表应按连续段重新编号: %q", items)
	}
}

// 标题整体不跨页：页尾放不下时连同所有行移入下一页。
func TestPaginateHeadingKeptWhole(t *testing.T) {
	blocks := append(paragraphs(4), markdown.Block{
		Kind:  markdown.KindHeading,
		Level: 1,
		// 宽 4/字、行宽 180 → 45 字一行，55 字折成两行
		Spans:       []markdown.Span{{Text: strings.Repeat("题", 55), Style: markdown.StylePlain}},
		SourceLines: 1,
	})
	res, err := Paginate(blocks, testConfig(), runeMetrics{w: 4})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Pages) != 2 {
		t.Fatalf("页数不符: %d", len(res.Pages))
	}
	second := textCommands(res.Pages[1])
	if len(second) != 2 {
		t.Fatalf("标题两行应整体落在次页: %d", len(second))
	}
	for _, c := range second {
		if c.Role != RoleHeading1 {
			t.Errorf("次页指令角色不符: %v", c.Role)
		}
	}
	if res.Pages[1].Commands[0].Text.Y != 10+16 {
		t.Errorf("次页标题应紧贴上边距: %g", res.Pages[1].Commands[0].Text.Y)
	}
}

func TestPaginateQuoteBar(t *testing.T) {
	blocks := markdown.Parse("> 引用文字")
	res, err := Paginate(blocks, testConfig(), runeMetrics{w: 1})
	if err != nil {
		t.Fatal(err)
	}
	cmds := res.Pages[0].Commands
	if len(cmds) != 2 || cmds[0].Kind != CmdRect || cmds[0].Rect.Fill != FillQuoteBar {
		t.Fatalf("引用条应先于文本出现: %+v", cmds)
	}
	bar := cmds[0].Rect
	// 条顶与上边距齐平，覆盖上内边距 10 + 一行 20 + 下内边距 10
	if bar.X != 10 || bar.Y != 10 || bar.Height != 40 || bar.Width != 6 {
		t.Errorf("引用条几何不符: %+v", bar)
	}
	if cmds[1].Text.X != 10+20 || cmds[1].Text.Y != 20+16 {
		t.Errorf("引用文本落点不符: (%g, %g)", cmds[1].Text.X, cmds[1].Text.Y)
	}
}

// 页顶的块不得把底色画进上边距：任何指令的纵坐标不低于 marginTop。
func TestPaginateCommandsRespectTopMargin(t *testing.T) {
	sources := []string{
		"> 引用文字",
		"==高亮==",
		"前 `code` 后",
	}
	for _, src := range sources {
		res, err := Paginate(markdown.Parse(src), testConfig(), runeMetrics{w: 1})
		if err != nil {
			t.Fatal(err)
		}
		for _, p := range res.Pages {
			for i, c := range p.Commands {
				if c.Y() < 10 {
					t.Errorf("%q 第 %d 页第 %d 条指令越过上边距: %g", src, p.Index, i, c.Y())
				}
			}
		}
	}
}

func TestPaginateCodeBlock(t *testing.T) {
	blocks := markdown.Parse("```go\nfmt.Println(1)\n\nreturn\n```")
	res, err := Paginate(blocks, testConfig(), runeMetrics{w: 1})
	if err != nil {
		t.Fatal(err)
	}
	cmds := res.Pages[0].Commands
	if cmds[0].Kind != CmdRect || cmds[0].Rect.Fill != FillCodeBackground {
		t.Fatalf("代码底色应先于文本: %+v", cmds[0])
	}
	bg := cmds[0].Rect
	// 三行代码：2*15 内边距 + 3*15 行距
	if bg.Y != 10 || bg.Height != 75 || bg.Width != 180 {
		t.Errorf("底色几何不符: %+v", bg)
	}
	texts := textCommands(res.Pages[0])
	// 空行不产生文本指令，但占据行高
	if len(texts) != 2 {
		t.Fatalf("代码行指令数不符: %d", len(texts))
	}
	for _, c := range texts {
		if c.Role != RoleCode || c.Lang != "go" || c.X != 10+15 {
			t.Errorf("代码行指令不符: %+v", c)
		}
	}
}

// 代码块跨页拆分：每页各有自己的底色矩形，行一条不丢。
func TestPaginateCodeSplit(t *testing.T) {
	var b strings.Builder
	b.WriteString("```\n")
	for i := 0; i < 20; i++ {
		b.WriteString("line\n")
	}
	b.WriteString("```")
	blocks := markdown.Parse(b.String())
	res, err := Paginate(blocks, testConfig(), runeMetrics{w: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Pages) < 2 {
		t.Fatalf("长代码块应跨页: %d 页", len(res.Pages))
	}
	total := 0
	for _, p := range res.Pages {
		bgs := 0
		for _, c := range p.Commands {
			if c.Kind == CmdRect && c.Rect.Fill == FillCodeBackground {
				bgs++
			}
		}
		if bgs != 1 {
			t.Errorf("第 %d 页底色矩形数 = %d", p.Index, bgs)
		}
		total += len(textCommands(p))
	}
	if total != 20 {
		t.Fatalf("代码行丢失: %d/20", total)
	}
}

func TestPaginateInlineRects(t *testing.T) {
	blocks := markdown.Parse("前 `code` 中 ==标记== 后")
	res, err := Paginate(blocks, testConfig(), runeMetrics{w: 1})
	if err != nil {
		t.Fatal(err)
	}
	cmds := res.Pages[0].Commands
	var fills []RectFill
	for i, c := range cmds {
		if c.Kind != CmdRect {
			continue
		}
		fills = append(fills, c.Rect.Fill)
		if i+1 >= len(cmds) || cmds[i+1].Kind != CmdText {
			t.Errorf("底色矩形后应紧跟对应文本: %d", i)
		}
	}
	if !reflect.DeepEqual(fills, []RectFill{FillInlineCode, FillHighlight}) {
		t.Fatalf("行内底色不符: %v", fills)
	}
}

func TestPaginateRule(t *testing.T) {
	res, err := Paginate(markdown.Parse("---"), testConfig(), runeMetrics{w: 1})
	if err != nil {
		t.Fatal(err)
	}
	cmds := res.Pages[0].Commands
	if len(cmds) != 1 || cmds[0].Rect.Fill != FillRule {
		t.Fatalf("分隔线指令不符: %+v", cmds)
	}
	r := cmds[0].Rect
	// 40 高的行盒中居中的 2 像素横线
	if r.Y != 10+19 || r.Height != 2 || r.Width != 180 {
		t.Errorf("分隔线几何不符: %+v", r)
	}
}

// 同一页内指令按纵坐标非递减排列。
func TestPaginateMonotonicY(t *testing.T) {
	src := "# 标题\n\n正文段落\n\n> 引用\n\n```\ncode\n```\n\n---\n\n- 项"
	res, err := Paginate(markdown.Parse(src), testConfig(), runeMetrics{w: 1})
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range res.Pages {
		prev := -1e9
		for i, c := range p.Commands {
			if c.Y() < prev {
				t.Fatalf("第 %d 页第 %d 条指令纵坐标回退: %g < %g", p.Index, i, c.Y(), prev)
			}
			prev = c.Y()
		}
	}
}

// 相同输入产出完全相同的结果。
func TestPaginateDeterministic(t *testing.T) {
	src := "# 标题\n\n正文 **加粗** 混排\n\n1. 甲\n2. 乙\n\n> 引用\n\n```py\nprint(1)\n```"
	blocks := markdown.Parse(src)
	a, err := Paginate(blocks, testConfig(), runeMetrics{w: 3})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Paginate(blocks, testConfig(), runeMetrics{w: 3})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("两次布局结果不一致")
	}
}
