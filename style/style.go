// Package style 定义一次转换过程中的全部样式配置。
// Config 一经装载即视为只读，由调用方以指针传入布局引擎与渲染器，
// 不存在进程级的全局样式状态。
package style

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Sentinel errors for config loading and validation.
var (
	ErrConfigNotFound  = errors.New("样式配置文件不存在")
	ErrConfigParse     = errors.New("样式配置解析失败")
	ErrInvalidGeometry = errors.New("页面几何参数非法")
	ErrInvalidFontSize = errors.New("字号参数非法")
)

// Color 采用 0-255 的 RGB 数值，YAML 中写作 #RGB 或 #RRGGBB。
type Color struct {
	R int `yaml:"r"`
	G int `yaml:"g"`
	B int `yaml:"b"`
}

// UnmarshalYAML 支持十六进制颜色字符串。
func (c *Color) UnmarshalYAML(b []byte) error {
	var s string
	if err := yaml.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor 解析 #RGB / #RRGGBB 形式的颜色值。
func ParseColor(value string) (Color, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(value) {
	case 3:
		return Color{
			R: mustHex(strings.Repeat(string(value[0]), 2)),
			G: mustHex(strings.Repeat(string(value[1]), 2)),
			B: mustHex(strings.Repeat(string(value[2]), 2)),
		}, nil
	case 6:
		return Color{
			R: mustHex(value[0:2]),
			G: mustHex(value[2:4]),
			B: mustHex(value[4:6]),
		}, nil
	default:
		return Color{}, fmt.Errorf("颜色值 %q 无法解析", value)
	}
}

func mustHex(s string) int {
	v, _ := strconv.ParseInt(s, 16, 64)
	return int(v)
}

// Config 保存页面几何、颜色、字体与间距配置。单位均为像素。
type Config struct {
	// 图片尺寸（长内容自动分页）
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// 边距
	MarginLeft   float64 `yaml:"marginLeft"`
	MarginRight  float64 `yaml:"marginRight"`
	MarginTop    float64 `yaml:"marginTop"`
	MarginBottom float64 `yaml:"marginBottom"`

	// 分页时在下边距之外额外预留的安全余量，避免行尾贴边裁切
	SafeBottomMargin float64 `yaml:"safeBottomMargin"`

	// 颜色
	Background     Color `yaml:"background"`
	Text           Color `yaml:"text"`
	Title          Color `yaml:"title"`
	HighlightBG    Color `yaml:"highlightBg"`
	HighlightText  Color `yaml:"highlightText"`
	CodeBG         Color `yaml:"codeBg"`
	CodeText       Color `yaml:"codeText"`
	InlineCodeText Color `yaml:"inlineCodeText"`
	Border         Color `yaml:"border"`
	QuoteBar       Color `yaml:"quoteBar"`

	// 字号
	H1FontSize   float64 `yaml:"h1FontSize"`
	H2FontSize   float64 `yaml:"h2FontSize"`
	H3FontSize   float64 `yaml:"h3FontSize"`
	BodyFontSize float64 `yaml:"bodyFontSize"`
	CodeFontSize float64 `yaml:"codeFontSize"`

	// 行距与块间距
	H1LineSpacing    float64 `yaml:"h1LineSpacing"`
	H2LineSpacing    float64 `yaml:"h2LineSpacing"`
	H3LineSpacing    float64 `yaml:"h3LineSpacing"`
	BodyLineSpacing  float64 `yaml:"bodyLineSpacing"`
	CodeLineSpacing  float64 `yaml:"codeLineSpacing"`
	ParagraphSpacing float64 `yaml:"paragraphSpacing"`

	// 字体：可填系统字体文件名或路径，留空使用内置字体
	FontRegular    string `yaml:"fontRegular"`
	FontBold       string `yaml:"fontBold"`
	FontItalic     string `yaml:"fontItalic"`
	FontBoldItalic string `yaml:"fontBoldItalic"`
	FontMono       string `yaml:"fontMono"`

	// 代码块语法高亮使用的 chroma 样式名
	ChromaStyle string `yaml:"chromaStyle"`
}

// Default 返回默认样式：手机比例、白底、中文阅读优化。
func Default() *Config {
	return &Config{
		Width:  900,
		Height: 1600,

		MarginLeft:   50,
		MarginRight:  50,
		MarginTop:    50,
		MarginBottom: 50,

		SafeBottomMargin: 20,

		Background:     Color{R: 255, G: 255, B: 255},
		Text:           Color{R: 0, G: 0, B: 0},
		Title:          Color{R: 0, G: 0, B: 0},
		HighlightBG:    Color{R: 255, G: 230, B: 235}, // 浅粉色 #FFE6EB
		HighlightText:  Color{R: 0, G: 0, B: 0},
		CodeBG:         Color{R: 240, G: 240, B: 240},
		CodeText:       Color{R: 80, G: 80, B: 80},
		InlineCodeText: Color{R: 200, G: 50, B: 80},
		Border:         Color{R: 220, G: 220, B: 220},
		QuoteBar:       Color{R: 150, G: 150, B: 150},

		H1FontSize:   52,
		H2FontSize:   44,
		H3FontSize:   40,
		BodyFontSize: 36,
		CodeFontSize: 28,

		H1LineSpacing:    72,
		H2LineSpacing:    64,
		H3LineSpacing:    56,
		BodyLineSpacing:  64,
		CodeLineSpacing:  50,
		ParagraphSpacing: 40,

		ChromaStyle: "friendly",
	}
}

// Load 从 YAML 文件装载样式，未出现的字段保持默认值。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("读取样式配置失败: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验几何与字号参数。
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: width=%d height=%d", ErrInvalidGeometry, c.Width, c.Height)
	}
	if c.MarginLeft < 0 || c.MarginRight < 0 || c.MarginTop < 0 || c.MarginBottom < 0 || c.SafeBottomMargin < 0 {
		return fmt.Errorf("%w: 边距不可为负", ErrInvalidGeometry)
	}
	if c.MarginLeft+c.MarginRight >= float64(c.Width) {
		return fmt.Errorf("%w: 左右边距之和超过页宽", ErrInvalidGeometry)
	}
	if c.MarginTop+c.MarginBottom+c.SafeBottomMargin >= float64(c.Height) {
		return fmt.Errorf("%w: 上下边距之和超过页高", ErrInvalidGeometry)
	}
	for _, size := range []float64{c.H1FontSize, c.H2FontSize, c.H3FontSize, c.BodyFontSize, c.CodeFontSize} {
		if size <= 0 {
			return fmt.Errorf("%w: %g", ErrInvalidFontSize, size)
		}
	}
	return nil
}
