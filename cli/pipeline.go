package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/latedeployment/vellum/layout"
	canvasrenderer "github.com/latedeployment/vellum/renderer/canvas"
)

// loadData 读取 JSON 数据文件，供 ${path} 占位符绑定。
func loadData(path string) (any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取数据文件 %s 失败: %w", path, err)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("解析数据 JSON 失败: %w", err)
	}
	return data, nil
}

// newEngine 构造同时充当测量后端与渲染器的 canvas 引擎。
func newEngine(baseDir string, fonts map[string]string) *canvasrenderer.Renderer {
	resources := make(map[string]canvasrenderer.Resource, len(fonts))
	for name, path := range fonts {
		resources[name] = canvasrenderer.Resource{Path: path}
	}
	return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir: baseDir,
		Fonts:   resources,
	})
}

// paginate 校验样式表后执行分页。
func paginate(engine *canvasrenderer.Renderer, sheet layout.StyleSheet, elements []layout.Element, geo layout.Geometry, opts layout.Options) (*layout.Document, error) {
	if err := layout.NewResolver(sheet).Validate(); err != nil {
		return nil, err
	}
	doc, err := layout.Paginate(engine, sheet, elements, geo, opts)
	if err != nil {
		return nil, fmt.Errorf("排版失败: %w", err)
	}
	return doc, nil
}

// writeFile 建好父目录后写出文件。
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return nil
}

// writeDebug 输出布局调试 JSON。
func writeDebug(doc *layout.Document, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建调试目录失败: %w", err)
		}
	}
	if err := layout.WriteDebugJSON(doc, path); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
