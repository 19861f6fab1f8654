// Package canvasrender 是基于 tdewolff/canvas 的栅格渲染后端。
// 它同时实现 render.Renderer 与 layout.Metrics：布局用到的宽度
// 与最终绘制出自同一组字体面，量到多宽就画多宽。
package canvasrender

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/inkstone/fonts"
	"github.com/ByLCY/inkstone/highlight"
	"github.com/ByLCY/inkstone/layout"
	"github.com/ByLCY/inkstone/markdown"
	"github.com/ByLCY/inkstone/style"
)

// 画布内部以毫米为单位。按 1 毫米 = 1 像素建画布并以 DPMM(1) 栅格化，
// 几何量即可直接按像素书写；只有字号需要从像素换算到点。
const (
	ptToMm = 0.352777
	mmToPt = 1 / ptToMm
)

// Renderer 渲染页面并提供文本度量。
// 字体面缓存由互斥锁保护，可被多个 goroutine 并发使用。
type Renderer struct {
	cfg  *style.Config
	body *canvas.FontFamily
	mono *canvas.FontFamily
	hl   *highlight.Highlighter

	mu    sync.Mutex
	faces map[faceKey]*canvas.FontFace
}

type faceKey struct {
	style markdown.Style
	role  layout.FontRole
	col   color.RGBA
}

// New 构造渲染器并装载字体。正文家族挂四个变体，代码独立用等宽家族。
func New(cfg *style.Config, set *fonts.Set) (*Renderer, error) {
	body := canvas.NewFontFamily("body")
	if err := body.LoadFont(set.Regular, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("装载常规字体失败: %w", err)
	}
	if err := body.LoadFont(set.Bold, 0, canvas.FontBold); err != nil {
		return nil, fmt.Errorf("装载粗体字体失败: %w", err)
	}
	if err := body.LoadFont(set.Italic, 0, canvas.FontItalic); err != nil {
		return nil, fmt.Errorf("装载斜体字体失败: %w", err)
	}
	if err := body.LoadFont(set.BoldItalic, 0, canvas.FontBold|canvas.FontItalic); err != nil {
		return nil, fmt.Errorf("装载粗斜体字体失败: %w", err)
	}
	mono := canvas.NewFontFamily("mono")
	if err := mono.LoadFont(set.Mono, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("装载等宽字体失败: %w", err)
	}
	return &Renderer{
		cfg:   cfg,
		body:  body,
		mono:  mono,
		hl:    highlight.New(cfg.ChromaStyle),
		faces: make(map[faceKey]*canvas.FontFace),
	}, nil
}

func (r *Renderer) fontSize(role layout.FontRole) float64 {
	switch role {
	case layout.RoleHeading1:
		return r.cfg.H1FontSize
	case layout.RoleHeading2:
		return r.cfg.H2FontSize
	case layout.RoleHeading3:
		return r.cfg.H3FontSize
	case layout.RoleCode:
		return r.cfg.CodeFontSize
	default:
		return r.cfg.BodyFontSize
	}
}

// face 返回缓存的字体面。行内代码与代码块用等宽家族，
// 标题一律加粗，其余按行内样式选变体。
func (r *Renderer) face(st markdown.Style, role layout.FontRole, col color.RGBA) *canvas.FontFace {
	key := faceKey{style: st, role: role, col: col}
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.faces[key]; ok {
		return f
	}
	size := r.fontSize(role) * mmToPt
	var f *canvas.FontFace
	if role == layout.RoleCode || st == markdown.StyleCode {
		f = r.mono.Face(size, col, canvas.FontRegular, canvas.FontNormal)
	} else {
		fs := canvas.FontRegular
		switch {
		case role != layout.RoleBody:
			fs = canvas.FontBold
		case st == markdown.StyleBold:
			fs = canvas.FontBold
		case st == markdown.StyleItalic:
			fs = canvas.FontItalic
		case st == markdown.StyleBoldItalic:
			fs = canvas.FontBold | canvas.FontItalic
		}
		f = r.body.Face(size, col, fs, canvas.FontNormal)
	}
	r.faces[key] = f
	return f
}

// Measure 实现 layout.Metrics。宽度与行高出自将用于绘制的同一字体面。
func (r *Renderer) Measure(text string, st markdown.Style, role layout.FontRole) (layout.Extent, error) {
	f := r.face(st, role, color.RGBA{A: 0xff})
	if f == nil {
		return layout.Extent{}, fmt.Errorf("canvasrender: 无法取得字体面 style=%v role=%v", st, role)
	}
	m := f.Metrics()
	return layout.Extent{
		Advance:    f.TextWidth(text),
		LineHeight: m.Ascent + m.Descent,
		Ascent:     m.Ascent,
	}, nil
}

// RenderPage 实现 render.Renderer，输出 PNG 编码的页面。
func (r *Renderer) RenderPage(page layout.Page) ([]byte, error) {
	w, h := page.Geometry.Width, page.Geometry.Height
	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)
	// 左上角为原点，y 向下，与布局坐标一致
	ctx.SetCoordSystem(canvas.CartesianIV)

	ctx.SetFillColor(rgba(r.cfg.Background))
	ctx.DrawPath(0, 0, canvas.Rectangle(w, h))

	for _, cmd := range page.Commands {
		switch cmd.Kind {
		case layout.CmdRect:
			ctx.SetFillColor(r.fillColor(cmd.Rect.Fill))
			ctx.DrawPath(cmd.Rect.X, cmd.Rect.Y, canvas.Rectangle(cmd.Rect.Width, cmd.Rect.Height))
		case layout.CmdText:
			r.drawText(ctx, cmd.Text)
		default:
			return nil, fmt.Errorf("canvasrender: 未知指令类型 %v", cmd.Kind)
		}
	}

	// 页面描边最后画，压在内容之上
	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(rgba(r.cfg.Border))
	ctx.SetStrokeWidth(1)
	ctx.DrawPath(0.5, 0.5, canvas.Rectangle(w-1, h-1))

	img := rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("PNG 编码失败: %w", err)
	}
	return buf.Bytes(), nil
}

// drawText 绘制一条文本指令，基线位于指令的 Y。
// 带语言标签的代码行先经语法着色拆成片段逐段绘制。
func (r *Renderer) drawText(ctx *canvas.Context, t layout.TextCommand) {
	if t.Role == layout.RoleCode && t.Lang != "" {
		x := t.X
		for _, sp := range r.hl.Line(t.Lang, t.Text) {
			col := rgba(r.cfg.CodeText)
			if sp.Colored {
				col = color.RGBA{R: sp.R, G: sp.G, B: sp.B, A: 0xff}
			}
			f := r.face(markdown.StylePlain, layout.RoleCode, col)
			ctx.DrawText(x, t.Y, canvas.NewTextLine(f, sp.Text, canvas.Left))
			x += f.TextWidth(sp.Text)
		}
		return
	}
	f := r.face(t.Style, t.Role, r.textColor(t))
	ctx.DrawText(t.X, t.Y, canvas.NewTextLine(f, t.Text, canvas.Left))
}

func (r *Renderer) textColor(t layout.TextCommand) color.RGBA {
	switch {
	case t.Role == layout.RoleHeading1, t.Role == layout.RoleHeading2, t.Role == layout.RoleHeading3:
		return rgba(r.cfg.Title)
	case t.Role == layout.RoleCode:
		return rgba(r.cfg.CodeText)
	case t.Style == markdown.StyleCode:
		return rgba(r.cfg.InlineCodeText)
	case t.Style == markdown.StyleHighlight:
		return rgba(r.cfg.HighlightText)
	default:
		return rgba(r.cfg.Text)
	}
}

func (r *Renderer) fillColor(f layout.RectFill) color.RGBA {
	switch f {
	case layout.FillCodeBackground, layout.FillInlineCode:
		return rgba(r.cfg.CodeBG)
	case layout.FillHighlight:
		return rgba(r.cfg.HighlightBG)
	case layout.FillQuoteBar:
		return rgba(r.cfg.QuoteBar)
	default:
		return rgba(r.cfg.Border)
	}
}

func rgba(c style.Color) color.RGBA {
	return color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 0xff}
}
