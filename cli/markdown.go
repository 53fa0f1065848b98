package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/latedeployment/vellum/layout"
	"github.com/latedeployment/vellum/manifest"
	"github.com/latedeployment/vellum/markdown"
)

// markdownOpts 保存 markdown 命令的命令行参数。
type markdownOpts struct {
	output       string // PDF 输出路径
	manifestPath string // TOML 清单路径
	baseDir      string // 资源根目录
	debugPath    string // 布局调试 JSON 输出路径
	strict       bool   // 空文档视为错误
}

func newMarkdownCmd() *cobra.Command {
	var opts markdownOpts

	cmd := &cobra.Command{
		Use:   "markdown [markdown file]",
		Short: "把 Markdown 文档配合 TOML 清单渲染为 PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMarkdown(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "out", "o", "output.pdf", "PDF 输出路径")
	cmd.Flags().StringVarP(&opts.manifestPath, "manifest", "m", "", "页面与样式清单（TOML），缺省用内置样式")
	cmd.Flags().StringVar(&opts.baseDir, "base-dir", "", "资源根目录（缺省为输入文件所在目录）")
	cmd.Flags().StringVar(&opts.debugPath, "debug", "", "布局调试 JSON 输出路径")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "空文档视为错误")
	return cmd
}

func runMarkdown(cmd *cobra.Command, input string, opts markdownOpts) error {
	logger := loggerFromContext(cmd.Context())

	src, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("读取 Markdown 文件 %s 失败: %w", input, err)
	}
	elements, err := markdown.Import(src)
	if err != nil {
		return fmt.Errorf("转换 Markdown 失败: %w", err)
	}
	logger.Debug("转换完成", "elements", len(elements))

	var mf *manifest.Manifest
	if opts.manifestPath != "" {
		mf, err = manifest.Load(opts.manifestPath)
	} else {
		mf, err = manifest.Parse(nil)
	}
	if err != nil {
		return err
	}
	geo, err := mf.Geometry()
	if err != nil {
		return err
	}
	sheet, err := mf.StyleSheet()
	if err != nil {
		return err
	}

	baseDir := opts.baseDir
	if baseDir == "" {
		baseDir = filepath.Dir(input)
	}
	engine := newEngine(baseDir, mf.FontPaths())

	result, err := paginate(engine, sheet, elements, geo, layout.Options{
		Strict: opts.strict,
		Meta:   mf.DocumentMeta(),
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
