package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteDebugJSON 将分页结果写成缩进 JSON，便于核对指令坐标与分页点。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil || path == "" {
		return nil
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化布局结果失败: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
