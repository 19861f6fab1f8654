package markdown

// 该文件定义解析结果的数据模型：行内样式片段与块级元素。
// 解析器保证：一个文本行的片段序列无缝拼接即可还原去掉标记后的原文。

// Style 标记行内文本片段的样式。
type Style int

const (
	StylePlain Style = iota
	StyleBold
	StyleItalic
	StyleBoldItalic
	StyleCode      // 行内代码 `...`
	StyleHighlight // 高亮 ==...==
)

// String returns the lowercase style name used in logs and tests.
func (s Style) String() string {
	switch s {
	case StylePlain:
		return "plain"
	case StyleBold:
		return "bold"
	case StyleItalic:
		return "italic"
	case StyleBoldItalic:
		return "bold-italic"
	case StyleCode:
		return "code"
	case StyleHighlight:
		return "highlight"
	default:
		return "unknown"
	}
}

// Span 是一段连续文本与其样式标记。
type Span struct {
	Text  string
	Style Style
}

// BlockKind 枚举所有块级元素种类，布局引擎按其穷举分派。
type BlockKind int

const (
	KindHeading BlockKind = iota
	KindParagraph
	KindBullet  // 无序列表项（每行独立成块，不聚合为列表容器）
	KindOrdered // 有序列表项，Index 保留源文本序号
	KindQuote
	KindCode
	KindRule
)

// String returns the lowercase kind name used in logs and tests.
func (k BlockKind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindParagraph:
		return "paragraph"
	case KindBullet:
		return "bullet"
	case KindOrdered:
		return "ordered"
	case KindQuote:
		return "quote"
	case KindCode:
		return "code"
	case KindRule:
		return "rule"
	default:
		return "unknown"
	}
}

// Block 是块级元素的带标签变体。各字段仅在对应 Kind 下有效：
// Level 仅用于标题（1-3），Index 仅用于有序列表项，
// Lang/Lines 仅用于代码块（原样保留，不做行内解析），
// Spans 用于其余携带文本的种类。
type Block struct {
	Kind  BlockKind
	Level int
	Index int
	Spans []Span
	Lang  string
	Lines []string

	// SourceLines 记录该块消费的源文本行数（代码块含两行围栏）。
	SourceLines int
}

// Text 拼接全部片段文本，即去除样式标记后的原文。
func (b Block) Text() string {
	switch b.Kind {
	case KindCode:
		out := ""
		for i, l := range b.Lines {
			if i > 0 {
				out += "\n"
			}
			out += l
		}
		return out
	default:
		out := ""
		for _, s := range b.Spans {
			out += s.Text
		}
		return out
	}
}
