package layout

// 该文件定义布局结果与度量接口，供分页引擎、渲染器与调试 JSON 共用。
// 所有坐标与尺寸的单位均为像素，原点在页面左上角。

import (
	"github.com/ByLCY/inkstone/markdown"
	"github.com/ByLCY/inkstone/style"
)

// FontRole 区分度量与绘制时使用的字体角色。
type FontRole int

const (
	RoleBody FontRole = iota
	RoleHeading1
	RoleHeading2
	RoleHeading3
	RoleCode
)

// String returns the role name used in logs and the debug dump.
func (r FontRole) String() string {
	switch r {
	case RoleBody:
		return "body"
	case RoleHeading1:
		return "heading1"
	case RoleHeading2:
		return "heading2"
	case RoleHeading3:
		return "heading3"
	case RoleCode:
		return "code"
	default:
		return "unknown"
	}
}

// Extent 是一次文本度量的结果。
type Extent struct {
	Advance    float64 // 文本前进宽度
	LineHeight float64 // 字体自然行高
	Ascent     float64 // 基线以上高度
}

// Metrics 提供文本度量。实现必须对固定的字体集合保持确定性；
// 度量失败（例如字体不可用）时返回错误，布局引擎不猜测宽度，
// 错误会中止整次转换。
type Metrics interface {
	Measure(text string, st markdown.Style, role FontRole) (Extent, error)
}

// Margin 四边边距（像素）。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Geometry 页面几何，单次转换内不可变。
type Geometry struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Margin     Margin  `json:"margin"`
	SafeBottom float64 `json:"safeBottom"` // 分页判断时下边距之外的安全余量
}

// NewGeometry 从样式配置提取页面几何。
func NewGeometry(cfg *style.Config) Geometry {
	return Geometry{
		Width:  float64(cfg.Width),
		Height: float64(cfg.Height),
		Margin: Margin{
			Top:    cfg.MarginTop,
			Right:  cfg.MarginRight,
			Bottom: cfg.MarginBottom,
			Left:   cfg.MarginLeft,
		},
		SafeBottom: cfg.SafeBottomMargin,
	}
}

// ContentWidth 返回可排版宽度。
func (g Geometry) ContentWidth() float64 {
	return g.Width - g.Margin.Left - g.Margin.Right
}

// MaxContentY 返回分页判断使用的内容底界。
func (g Geometry) MaxContentY() float64 {
	return g.Height - g.Margin.Bottom - g.SafeBottom
}

// CommandKind 区分绘制指令种类。
type CommandKind int

const (
	CmdText CommandKind = iota
	CmdRect
)

// RectFill 标记矩形指令的用途，渲染器据此选择填充颜色。
type RectFill int

const (
	FillCodeBackground RectFill = iota
	FillInlineCode
	FillHighlight
	FillQuoteBar
	FillRule
)

// String returns the fill name used in the debug dump.
func (f RectFill) String() string {
	switch f {
	case FillCodeBackground:
		return "code-background"
	case FillInlineCode:
		return "inline-code"
	case FillHighlight:
		return "highlight"
	case FillQuoteBar:
		return "quote-bar"
	case FillRule:
		return "rule"
	default:
		return "unknown"
	}
}

// TextCommand 在基线位置绘制一段单一样式的文本。
type TextCommand struct {
	X     float64        `json:"x"`
	Y     float64        `json:"y"` // 基线纵坐标
	Text  string         `json:"text"`
	Style markdown.Style `json:"style"`
	Role  FontRole       `json:"role"`
	Lang  string         `json:"lang,omitempty"` // 代码块语言标签，仅 RoleCode 使用
}

// RectCommand 绘制一个填充矩形（左上角坐标）。
type RectCommand struct {
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Fill   RectFill `json:"fill"`
}

// Command 是绘制指令的带标签变体，Kind 决定哪个负载有效。
type Command struct {
	Kind CommandKind `json:"kind"`
	Text TextCommand `json:"text,omitempty"`
	Rect RectCommand `json:"rect,omitempty"`
}

// Y 返回指令的纵坐标。同一页内文本指令按 Y 非递减的顺序产出；
// 底色矩形先于其覆盖的文本出现，纵坐标可以略靠前。
func (c Command) Y() float64 {
	if c.Kind == CmdRect {
		return c.Rect.Y
	}
	return c.Text.Y
}

// Page 是一页的全部绘制指令。Index 从 1 起连续编号。
type Page struct {
	Index    int       `json:"index"`
	Geometry Geometry  `json:"geometry"`
	Commands []Command `json:"commands"`
}

// Result 保存分页后的全部页面。
type Result struct {
	Pages []Page `json:"pages"`
}
