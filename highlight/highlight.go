// Package highlight 对围栏代码块做逐行语法着色。
// 着色只影响绘制颜色，不参与布局：布局引擎按整行度量，
// 渲染器再把行拆成着色片段依次绘制。
package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Span 是一行代码中颜色一致的连续片段。
// Colored 为 false 时表示样式未指定前景色，调用方使用默认代码颜色。
type Span struct {
	Text    string
	R, G, B uint8
	Colored bool
}

// Highlighter 按 chroma 样式对代码行着色。零值不可用，使用 New 构造。
type Highlighter struct {
	style *chroma.Style
}

// New 构造着色器。样式名未注册时回退到 chroma 的缺省样式。
func New(styleName string) *Highlighter {
	st := styles.Get(styleName)
	if st == nil {
		st = styles.Fallback
	}
	return &Highlighter{style: st}
}

// Line 对单行代码着色。语言标签未注册或词法分析失败时
// 整行按未着色返回，转换流程不因此中断。
func (h *Highlighter) Line(lang, line string) []Span {
	if line == "" {
		return nil
	}
	plain := []Span{{Text: line}}
	if lang == "" {
		return plain
	}
	lx := lexers.Get(lang)
	if lx == nil {
		return plain
	}
	it, err := chroma.Coalesce(lx).Tokenise(nil, line)
	if err != nil {
		return plain
	}
	var out []Span
	for _, tok := range it.Tokens() {
		// 词法器可能补出的行尾换行不属于原始行
		text := strings.TrimRight(tok.Value, "\n")
		if text == "" {
			continue
		}
		sp := Span{Text: text}
		if entry := h.style.Get(tok.Type); entry.Colour.IsSet() {
			sp.R, sp.G, sp.B = entry.Colour.Red(), entry.Colour.Green(), entry.Colour.Blue()
			sp.Colored = true
		}
		out = append(out, sp)
	}
	if len(out) == 0 {
		return plain
	}
	return out
}
