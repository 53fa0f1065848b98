package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/latedeployment/vellum/dsl"
	"github.com/latedeployment/vellum/layout"
)

// inspectOpts 保存 inspect 命令的命令行参数。
type inspectOpts struct {
	output   string // 调试 JSON 输出路径
	dataPath string // 绑定数据的 JSON 文件
	baseDir  string // 资源根目录
}

// newInspectCmd 创建 inspect 命令：只排版不渲染，输出布局调试 JSON，
// 用于核对每个元素落在哪一页、哪个纵向位置。
func newInspectCmd() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect [story file]",
		Short: "排版故事文件并输出布局调试 JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "out", "o", "layout.json", "调试 JSON 输出路径")
	cmd.Flags().StringVar(&opts.dataPath, "data", "", "绑定到 ${path} 占位符的 JSON 数据文件")
	cmd.Flags().StringVar(&opts.baseDir, "base-dir", "", "资源根目录（缺省为输入文件所在目录）")
	return cmd
}

func runInspect(cmd *cobra.Command, input string, opts inspectOpts) error {
	logger := loggerFromContext(cmd.Context())

	file, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("无法打开故事文件 %s: %w", input, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析故事文件失败: %w", err)
	}
	data, err := loadData(opts.dataPath)
	if err != nil {
		return err
	}
	compiled, err := dsl.Compile(doc, data)
	if err != nil {
		return fmt.Errorf("编译故事失败: %w", err)
	}

	baseDir := opts.baseDir
	if baseDir == "" {
		baseDir = filepath.Dir(input)
	}
	engine := newEngine(baseDir, compiled.Fonts)

	result, err := paginate(engine, compiled.Styles, compiled.Elements, compiled.Geometry, layout.Options{Meta: compiled.Meta})
	if err != nil {
		return err
	}
	for page := 0; page < result.PageCount; page++ {
		logger.Debug("页面", "page", page, "placements", len(result.PagePlacements(page)))
	}

	if err := writeDebug(result, opts.output); err != nil {
		return err
	}
	logger.Info("已输出布局", "path", opts.output, "pages", result.PageCount)
	return nil
}
