package markdown

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Inline delimiters are tokenized longest-match-first so that "**" is never
// misread as two "*". Pairing happens in a second pass over the token stream;
// an opener without a matching closer on the same line stays literal text.
var (
	inlineLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Triple", Pattern: `\*\*\*|___`},
		{Name: "Double", Pattern: `\*\*|__`},
		{Name: "Single", Pattern: `\*|_`},
		{Name: "Mark", Pattern: `==`},
		{Name: "Code", Pattern: "\x60"},
		{Name: "Text", Pattern: "[^*_=\x60]+"},
		{Name: "Stray", Pattern: `=`},
	})

	tripleTokenType = mustTokenType("Triple")
	doubleTokenType = mustTokenType("Double")
	singleTokenType = mustTokenType("Single")
	markTokenType   = mustTokenType("Mark")
	codeTokenType   = mustTokenType("Code")
)

func mustTokenType(name string) lexer.TokenType {
	symbols := inlineLexer.Symbols()
	tt, ok := symbols[name]
	if !ok {
		panic(fmt.Sprintf("token %s not defined", name))
	}
	return tt
}

// delimiterStyle 返回定界符 token 对应的样式；非定界符返回 false。
func delimiterStyle(t lexer.TokenType) (Style, bool) {
	switch t {
	case tripleTokenType:
		return StyleBoldItalic, true
	case doubleTokenType:
		return StyleBold, true
	case singleTokenType:
		return StyleItalic, true
	case markTokenType:
		return StyleHighlight, true
	case codeTokenType:
		return StyleCode, true
	default:
		return StylePlain, false
	}
}

// Delimiter 返回样式的规范定界符（测试中用于往返重建）。
func Delimiter(s Style) string {
	switch s {
	case StyleBoldItalic:
		return "***"
	case StyleBold:
		return "**"
	case StyleItalic:
		return "*"
	case StyleCode:
		return "`"
	case StyleHighlight:
		return "=="
	default:
		return ""
	}
}

// ResolveInline 将一行原始文本解析为覆盖整行的样式片段序列。
// 定界符必须以相同字面量在本行内成对出现（`**` 不与 `__` 配对）；
// 配对区域内部视为纯文本，不再递归解析
// 其他种类的定界符（外层样式优先）。相邻的 plain 片段会被合并。
func ResolveInline(line string) []Span {
	if line == "" {
		return nil
	}
	toks, err := tokenizeInline(line)
	if err != nil {
		// 词法规则覆盖全部字符，理论上不可达；宽容起见按纯文本处理。
		return []Span{{Text: line, Style: StylePlain}}
	}

	var spans []Span
	var plain strings.Builder
	flushPlain := func() {
		if plain.Len() == 0 {
			return
		}
		spans = append(spans, Span{Text: plain.String(), Style: StylePlain})
		plain.Reset()
	}

	i := 0
	for i < len(toks) {
		tok := toks[i]
		if style, ok := delimiterStyle(tok.Type); ok {
			if j := findClosing(toks, i+1, tok); j >= 0 {
				inner := concatTokens(toks[i+1 : j])
				if inner != "" {
					flushPlain()
					spans = append(spans, Span{Text: inner, Style: style})
				}
				i = j + 1
				continue
			}
		}
		// 未配对的定界符或普通文本均按字面量累积
		plain.WriteString(tok.Value)
		i++
	}
	flushPlain()
	return spans
}

func tokenizeInline(line string) ([]lexer.Token, error) {
	lx, err := inlineLexer.LexString("", line)
	if err != nil {
		return nil, err
	}
	var toks []lexer.Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF() {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

// findClosing 寻找与开启定界符字面量完全一致的闭合定界符。
func findClosing(toks []lexer.Token, from int, open lexer.Token) int {
	for i := from; i < len(toks); i++ {
		if toks[i].Type == open.Type && toks[i].Value == open.Value {
			return i
		}
	}
	return -1
}

func concatTokens(toks []lexer.Token) string {
	var b strings.Builder
	for _, tok := range toks {
		b.WriteString(tok.Value)
	}
	return b.String()
}
