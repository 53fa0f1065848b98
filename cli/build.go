package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/latedeployment/vellum/dsl"
	"github.com/latedeployment/vellum/layout"
)

// buildOpts 保存 build 命令的命令行参数。
type buildOpts struct {
	output    string // PDF 输出路径
	dataPath  string // 绑定数据的 JSON 文件
	baseDir   string // 字体等资源的根目录，缺省为输入文件所在目录
	debugPath string // 布局调试 JSON 输出路径
	strict    bool   // 空文档视为错误
}

func newBuildCmd() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build [story file]",
		Short: "把故事文件排版并渲染为 PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "out", "o", "output.pdf", "PDF 输出路径")
	cmd.Flags().StringVar(&opts.dataPath, "data", "", "绑定到 ${path} 占位符的 JSON 数据文件")
	cmd.Flags().StringVar(&opts.baseDir, "base-dir", "", "资源根目录（缺省为输入文件所在目录）")
	cmd.Flags().StringVar(&opts.debugPath, "debug", "", "布局调试 JSON 输出路径")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "空文档视为错误")
	return cmd
}

func runBuild(cmd *cobra.Command, input string, opts buildOpts) error {
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
	logger.Debug("解析完成", "doc", doc.Name, "sections", len(doc.Sections))

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

	result, err := paginate(engine, compiled.Styles, compiled.Elements, compiled.Geometry, layout.Options{
		Strict: opts.strict,
		Meta:   compiled.Meta,
	})
	if err != nil {
		return err
	}
	logger.Info("排版完成", "pages", result.PageCount, "placements", len(result.Placements))

	if opts.debugPath != "" {
		if err := writeDebug(result, opts.debugPath); err != nil {
			return err
		}
	}

	pdfBytes, err := engine.Render(result)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := writeFile(opts.output, pdfBytes); err != nil {
		return err
	}
	logger.Info("已生成 PDF", "path", opts.output, "bytes", len(pdfBytes))
	return nil
}
