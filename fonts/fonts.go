// Package fonts 负责装配渲染所需的字体字节数据。
// 配置留空的槽位回退到内置的 Go 字体，保证无任何系统字体时也能出图；
// 显式配置的字体找不到则报错，不做静默回退。
package fonts

import (
	"errors"
	"fmt"
	"os"

	"github.com/flopp/go-findfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/inkstone/style"
)

// ErrFontNotFound 表示配置指定的字体在系统中找不到。
var ErrFontNotFound = errors.New("fonts: 指定的字体不存在")

// Set 是一次渲染使用的五个字体变体的 TTF 数据。
type Set struct {
	Regular    []byte
	Bold       []byte
	Italic     []byte
	BoldItalic []byte
	Mono       []byte
}

// Load 按配置装配字体集合。配置项可填字体文件路径，
// 也可填字体名（经系统字体目录查找）。
func Load(cfg *style.Config) (*Set, error) {
	s := &Set{}
	var err error
	if s.Regular, err = resolve(cfg.FontRegular, goregular.TTF); err != nil {
		return nil, err
	}
	if s.Bold, err = resolve(cfg.FontBold, gobold.TTF); err != nil {
		return nil, err
	}
	if s.Italic, err = resolve(cfg.FontItalic, goitalic.TTF); err != nil {
		return nil, err
	}
	if s.BoldItalic, err = resolve(cfg.FontBoldItalic, gobolditalic.TTF); err != nil {
		return nil, err
	}
	if s.Mono, err = resolve(cfg.FontMono, gomono.TTF); err != nil {
		return nil, err
	}
	return s, nil
}

func resolve(name string, builtin []byte) ([]byte, error) {
	if name == "" {
		return builtin, nil
	}
	path := name
	if _, err := os.Stat(path); err != nil {
		found, ferr := findfont.Find(name)
		if ferr != nil {
			return nil, fmt.Errorf("%w: %s", ErrFontNotFound, name)
		}
		path = found
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体文件 %s 失败: %w", path, err)
	}
	return data, nil
}
