// Package layout 将块级元素序列排版为逐页的绘制指令。
// 引擎单次遍历块序列，游标 y 自页顶向下推进，越过内容底界即换页；
// 除标题与分隔线外的块允许跨页拆分，任何内容都不会被丢弃。
package layout

import (
	"errors"
	"fmt"

	"github.com/ByLCY/inkstone/markdown"
	"github.com/ByLCY/inkstone/style"
)

var (
	// ErrNoMetrics 表示缺少度量后端，布局无法进行。
	ErrNoMetrics = errors.New("layout: 缺少文本度量后端")
	// ErrNoConfig 表示缺少样式配置。
	ErrNoConfig = errors.New("layout: 缺少样式配置")
)

// 块内部的固定间距常量（像素）。
const (
	listItemSpacing = 10 // 相邻列表项间距
	quoteBarWidth   = 6  // 引用条宽度
	quoteIndent     = 20 // 引用文本相对左边距的缩进
	quotePadding    = 10 // 引用条在首行上方/末行下方的延伸
	codePadding     = 15 // 代码块底色的内边距
	inlineRectPadX  = 4  // 行内底色的左右外扩
	inlineRectPadY  = 2  // 行内底色的上下外扩
	ruleBoxHeight   = 40 // 分隔线占据的行高
	ruleThickness   = 2  // 分隔线本体高度
)

// headingSpacingAfter 标题与后续内容之间的额外间距，按级别递减。
var headingSpacingAfter = [...]float64{20, 15, 10}

// engine 持有一次分页过程的全部可变状态。
type engine struct {
	cfg   *style.Config
	geom  Geometry
	m     Metrics
	pages []*Page
	y     float64
}

// Paginate 将块序列排版为页面序列。空文档产出一张空白页。
// 有序列表项在布局阶段按连续段重新编号，与源文本序号无关。
func Paginate(blocks []markdown.Block, cfg *style.Config, m Metrics) (*Result, error) {
	if cfg == nil {
		return nil, ErrNoConfig
	}
	if m == nil {
		return nil, ErrNoMetrics
	}
	e := &engine{cfg: cfg, geom: NewGeometry(cfg), m: m}
	e.newPage()

	ordinal := 0
	for _, b := range blocks {
		if b.Kind == markdown.KindOrdered {
			ordinal++
		} else {
			ordinal = 0
		}
		if err := e.layoutBlock(b, ordinal); err != nil {
			return nil, err
		}
	}
	return e.result(), nil
}

func (e *engine) newPage() {
	e.pages = append(e.pages, &Page{Geometry: e.geom})
	e.y = e.geom.Margin.Top
}

func (e *engine) page() *Page {
	return e.pages[len(e.pages)-1]
}

func (e *engine) emit(c Command) {
	p := e.page()
	p.Commands = append(p.Commands, c)
}

func (e *engine) atPageTop() bool {
	return e.y <= e.geom.Margin.Top
}

// fits 判断自当前游标起高度 h 的内容是否落在内容底界之内。
func (e *engine) fits(h float64) bool {
	return e.y+h <= e.geom.MaxContentY()
}

func (e *engine) result() *Result {
	r := &Result{Pages: make([]Page, len(e.pages))}
	for i, p := range e.pages {
		p.Index = i + 1
		r.Pages[i] = *p
	}
	return r
}

// lineAdvance 返回角色对应的配置行距。
func (e *engine) lineAdvance(role FontRole) float64 {
	switch role {
	case RoleHeading1:
		return e.cfg.H1LineSpacing
	case RoleHeading2:
		return e.cfg.H2LineSpacing
	case RoleHeading3:
		return e.cfg.H3LineSpacing
	case RoleCode:
		return e.cfg.CodeLineSpacing
	default:
		return e.cfg.BodyLineSpacing
	}
}

func headingRole(level int) FontRole {
	switch level {
	case 1:
		return RoleHeading1
	case 2:
		return RoleHeading2
	default:
		return RoleHeading3
	}
}

// spacingBefore 返回块前间距。列表项之间收紧，其余块用段间距。
func spacingBefore(k markdown.BlockKind) float64 {
	switch k {
	case markdown.KindBullet, markdown.KindOrdered:
		return listItemSpacing
	default:
		return 0
	}
}

// layoutBlock 按种类穷举分派。块前间距在页顶被抑制，
// 保证每页第一块紧贴上边距。
func (e *engine) layoutBlock(b markdown.Block, ordinal int) error {
	if !e.atPageTop() {
		pre := spacingBefore(b.Kind)
		if pre == 0 {
			pre = e.cfg.ParagraphSpacing
		}
		e.y += pre
	}

	switch b.Kind {
	case markdown.KindHeading:
		return e.layoutHeading(b)
	case markdown.KindParagraph:
		return e.layoutText(b.Spans, RoleBody, 0)
	case markdown.KindBullet:
		return e.layoutText(prefixSpans("• ", b.Spans), RoleBody, 0)
	case markdown.KindOrdered:
		return e.layoutText(prefixSpans(fmt.Sprintf("%d. ", ordinal), b.Spans), RoleBody, 0)
	case markdown.KindQuote:
		return e.layoutQuote(b)
	case markdown.KindCode:
		return e.layoutCode(b)
	case markdown.KindRule:
		return e.layoutRule()
	default:
		return fmt.Errorf("layout: 未知块类型 %v", b.Kind)
	}
}

func prefixSpans(prefix string, spans []markdown.Span) []markdown.Span {
	out := make([]markdown.Span, 0, len(spans)+1)
	out = append(out, markdown.Span{Text: prefix, Style: markdown.StylePlain})
	return append(out, spans...)
}

// layoutHeading 排版标题。标题整体不跨页：放不下且不在页顶时换页；
// 比整页还高的标题在页顶照常输出，允许溢出但不丢弃。
func (e *engine) layoutHeading(b markdown.Block) error {
	role := headingRole(b.Level)
	adv := e.lineAdvance(role)
	lines, err := wrapSpans(b.Spans, role, e.geom.ContentWidth(), e.m)
	if err != nil {
		return err
	}
	total := float64(len(lines)) * adv
	if !e.fits(total) && !e.atPageTop() {
		e.newPage()
	}
	for _, line := range lines {
		e.emitLine(line, e.geom.Margin.Left, role, "")
		e.y += adv
	}
	e.y += headingSpacingAfter[b.Level-1]
	return nil
}

// layoutText 排版一段可跨页的正文流。indent 为相对左边距的缩进。
// 每行落点前判断是否越界；页顶的行无条件输出，保证块的首行一定落页，
// 也避免高于整页的内容造成空页死循环。
func (e *engine) layoutText(spans []markdown.Span, role FontRole, indent float64) error {
	adv := e.lineAdvance(role)
	lines, err := wrapSpans(spans, role, e.geom.ContentWidth()-indent, e.m)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if !e.fits(adv) && !e.atPageTop() {
			e.newPage()
		}
		e.emitLine(line, e.geom.Margin.Left+indent, role, "")
		e.y += adv
	}
	return nil
}

// emitLine 输出一行：先铺行内底色矩形，再出文本指令。
// 基线取行顶加本行最大 ascent。
func (e *engine) emitLine(line wrappedLine, x0 float64, role FontRole, lang string) {
	top := e.y
	baseline := top + line.ascent
	x := x0
	for _, seg := range line.segs {
		switch seg.style {
		case markdown.StyleCode, markdown.StyleHighlight:
			fill := FillInlineCode
			if seg.style == markdown.StyleHighlight {
				fill = FillHighlight
			}
			// 页顶的行外扩不越过上边距，底边保持不变
			ry := top - inlineRectPadY
			if ry < e.geom.Margin.Top {
				ry = e.geom.Margin.Top
			}
			e.emit(Command{Kind: CmdRect, Rect: RectCommand{
				X:      x - inlineRectPadX,
				Y:      ry,
				Width:  seg.width + 2*inlineRectPadX,
				Height: top + line.height + inlineRectPadY - ry,
				Fill:   fill,
			}})
		}
		if seg.text != "" {
			e.emit(Command{Kind: CmdText, Text: TextCommand{
				X: x, Y: baseline, Text: seg.text, Style: seg.style, Role: role, Lang: lang,
			}})
		}
		x += seg.width
	}
}

// layoutQuote 排版引用块：文本缩进，左侧竖条覆盖本页内的引用区间。
// 跨页时每页各有一段竖条；竖条矩形回填到该段首条指令之前，
// 使渲染顺序仍是先底色后文字。
func (e *engine) layoutQuote(b markdown.Block) error {
	adv := e.lineAdvance(RoleBody)
	limit := e.geom.ContentWidth() - quoteIndent
	lines, err := wrapSpans(b.Spans, RoleBody, limit, e.m)
	if err != nil {
		return err
	}

	// 首行连同上内边距放不下时先换页，避免在起始页留下没有内容的空段
	if !e.fits(quotePadding+adv) && !e.atPageTop() {
		e.newPage()
	}

	// 引用条自当前游标向下铺展，首行被上内边距推低，
	// 条的顶端因此永不越过上边距。
	segStart, segLines := -1, 0
	var segTop float64
	openSeg := func() {
		segStart = len(e.page().Commands)
		segLines = 0
		segTop = e.y
		e.y += quotePadding
	}
	closeSeg := func() {
		if segStart < 0 {
			return
		}
		e.y += quotePadding
		bar := Command{Kind: CmdRect, Rect: RectCommand{
			X:      e.geom.Margin.Left,
			Y:      segTop,
			Width:  quoteBarWidth,
			Height: e.y - segTop,
			Fill:   FillQuoteBar,
		}}
		cmds := e.page().Commands
		e.page().Commands = append(cmds[:segStart], append([]Command{bar}, cmds[segStart:]...)...)
		segStart = -1
	}

	openSeg()
	for _, line := range lines {
		if segLines > 0 && !e.fits(adv) {
			closeSeg()
			e.newPage()
			openSeg()
		}
		e.emitLine(line, e.geom.Margin.Left+quoteIndent, RoleBody, "")
		e.y += adv
		segLines++
	}
	closeSeg()
	return nil
}

// layoutCode 排版围栏代码块：行原样输出不换行，底色矩形覆盖
// 本页内的代码区间，跨页时各页分段铺底色。
func (e *engine) layoutCode(b markdown.Block) error {
	adv := e.lineAdvance(RoleCode)

	// 底色内边距加首行放不下时先换页，保证起始页至少落一行
	if !e.fits(2*codePadding+adv) && !e.atPageTop() {
		e.newPage()
	}

	segStart, segLines := -1, 0
	var segTop float64
	openSeg := func() {
		segStart = len(e.page().Commands)
		segLines = 0
		segTop = e.y
		e.y += codePadding
	}
	closeSeg := func() {
		if segStart < 0 {
			return
		}
		e.y += codePadding
		bg := Command{Kind: CmdRect, Rect: RectCommand{
			X:      e.geom.Margin.Left,
			Y:      segTop,
			Width:  e.geom.ContentWidth(),
			Height: e.y - segTop,
			Fill:   FillCodeBackground,
		}}
		cmds := e.page().Commands
		e.page().Commands = append(cmds[:segStart], append([]Command{bg}, cmds[segStart:]...)...)
		segStart = -1
	}

	openSeg()
	for _, raw := range b.Lines {
		if segLines > 0 && !e.fits(adv) {
			closeSeg()
			e.newPage()
			openSeg()
		}
		ext, err := e.m.Measure(raw, markdown.StylePlain, RoleCode)
		if err != nil {
			return err
		}
		if raw != "" {
			e.emit(Command{Kind: CmdText, Text: TextCommand{
				X:     e.geom.Margin.Left + codePadding,
				Y:     e.y + ext.Ascent,
				Text:  raw,
				Style: markdown.StylePlain,
				Role:  RoleCode,
				Lang:  b.Lang,
			}})
		}
		e.y += adv
		segLines++
	}
	closeSeg()
	return nil
}

// layoutRule 排版分隔线：固定高度的行，中间画一条细横线，整体不跨页。
func (e *engine) layoutRule() error {
	if !e.fits(ruleBoxHeight) && !e.atPageTop() {
		e.newPage()
	}
	e.emit(Command{Kind: CmdRect, Rect: RectCommand{
		X:      e.geom.Margin.Left,
		Y:      e.y + (ruleBoxHeight-ruleThickness)/2,
		Width:  e.geom.ContentWidth(),
		Height: ruleThickness,
		Fill:   FillRule,
	}})
	e.y += ruleBoxHeight
	return nil
}
