// Package render 定义页面渲染后端的接口。
package render

import "github.com/ByLCY/inkstone/layout"

// Renderer 将一页绘制指令渲染为编码后的图像字节流。
// 实现必须可被多个 goroutine 并发调用：页面之间相互独立。
type Renderer interface {
	RenderPage(page layout.Page) ([]byte, error)
}
