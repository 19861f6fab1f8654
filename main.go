// 命令 inkstone 将 markdown 笔记渲染为适合社交分享的分页图片。
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/ByLCY/inkstone/fonts"
	"github.com/ByLCY/inkstone/layout"
	"github.com/ByLCY/inkstone/markdown"
	"github.com/ByLCY/inkstone/render"
	canvasrender "github.com/ByLCY/inkstone/render/canvas"
	"github.com/ByLCY/inkstone/style"
)

type options struct {
	input      string
	outDir     string
	name       string
	width      int
	height     int
	stylePath  string
	splitLines bool
	debugPath  string
}

func main() {
	var opt options
	pflag.StringVarP(&opt.outDir, "out", "o", ".", "输出目录")
	pflag.StringVarP(&opt.name, "name", "n", "", "输出文件名前缀，默认取输入文件名")
	pflag.IntVarP(&opt.width, "width", "W", 0, "页宽（像素），覆盖样式配置")
	pflag.IntVarP(&opt.height, "height", "H", 0, "页高（像素），覆盖样式配置")
	pflag.StringVar(&opt.stylePath, "style", "", "YAML 样式配置路径")
	pflag.BoolVar(&opt.splitLines, "split-lines", false, "把相邻非空行拆成独立段落")
	pflag.StringVar(&opt.debugPath, "debug", "", "布局调试 JSON 输出路径")
	verbose := pflag.BoolP("verbose", "v", false, "输出调试日志")
	pflag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	if pflag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "用法: %s [选项] <markdown 文件>\n", filepath.Base(os.Args[0]))
		pflag.PrintDefaults()
		os.Exit(2)
	}
	opt.input = pflag.Arg(0)

	if err := run(opt); err != nil {
		log.Fatal("转换失败", "err", err)
	}
}

// run 串联配置装载、解析、布局与逐页渲染。
func run(opt options) error {
	cfg, err := loadConfig(opt)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(opt.input)
	if err != nil {
		return fmt.Errorf("读取输入文件 %s 失败: %w", opt.input, err)
	}
	src := strings.ReplaceAll(string(raw), "\r\n", "\n")
	if opt.splitLines {
		src = markdown.SplitSingleNewlines(src)
	}

	blocks := markdown.Parse(src)
	log.Debug("解析完成", "blocks", len(blocks))

	set, err := fonts.Load(cfg)
	if err != nil {
		return err
	}
	backend, err := canvasrender.New(cfg, set)
	if err != nil {
		return err
	}

	result, err := layout.Paginate(blocks, cfg, backend)
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}
	log.Debug("分页完成", "pages", len(result.Pages))

	if opt.debugPath != "" {
		if err := layout.WriteDebugJSON(result, opt.debugPath); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(opt.outDir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	base := opt.name
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(opt.input), filepath.Ext(opt.input))
	}
	return writePages(backend, result.Pages, opt.outDir, base)
}

// loadConfig 装载样式配置并应用命令行覆盖。
func loadConfig(opt options) (*style.Config, error) {
	cfg := style.Default()
	if opt.stylePath != "" {
		loaded, err := style.Load(opt.stylePath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opt.width > 0 {
		cfg.Width = opt.width
	}
	if opt.height > 0 {
		cfg.Height = opt.height
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// writePages 并发渲染并写出各页。页面相互独立，渲染后端可并发使用。
func writePages(r render.Renderer, pages []layout.Page, outDir, base string) error {
	var wg sync.WaitGroup
	errs := make([]error, len(pages))
	for i, page := range pages {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := r.RenderPage(page)
			if err != nil {
				errs[i] = fmt.Errorf("渲染第 %d 页失败: %w", page.Index, err)
				return
			}
			path := filepath.Join(outDir, fmt.Sprintf("%s_%03d.png", base, page.Index))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				errs[i] = fmt.Errorf("写入 %s 失败: %w", path, err)
				return
			}
			log.Info("已写出页面", "file", path)
		}()
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	log.Info("转换完成", "pages", len(pages))
	return nil
}
