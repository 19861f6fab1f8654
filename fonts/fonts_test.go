package fonts

import (
	"errors"
	"testing"

	"github.com/ByLCY/inkstone/style"
)

func TestLoadBuiltinFallback(t *testing.T) {
	set, err := Load(style.Default())
	if err != nil {
		t.Fatalf("空配置应回退到内置字体: %v", err)
	}
	slots := map[string][]byte{
		"regular":     set.Regular,
		"bold":        set.Bold,
		"italic":      set.Italic,
		"bold-italic": set.BoldItalic,
		"mono":        set.Mono,
	}
	for name, data := range slots {
		if len(data) == 0 {
			t.Errorf("字体槽位 %s 为空", name)
		}
	}
}

func TestLoadUnknownFont(t *testing.T) {
	cfg := style.Default()
	cfg.FontRegular = "这个字体绝对不存在-xyz.ttf"
	_, err := Load(cfg)
	if !errors.Is(err, ErrFontNotFound) {
		t.Fatalf("期望 ErrFontNotFound, 得到 %v", err)
	}
}
