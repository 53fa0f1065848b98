// Package cli 实现 vellum 命令行入口。
//
// 提供三个子命令：
//   - build：把故事文件排版并渲染为 PDF
//   - markdown：把 Markdown 文档配合 TOML 清单渲染为 PDF
//   - inspect：只做排版，输出布局调试 JSON
//
// 所有命令支持 --verbose (-v) 输出调试日志，日志器通过
// context.Context 传递给各命令。
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion 设置 --version 展示的版本信息，通常由 main 包
// 在构建时经 ldflags 注入。
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute 运行 vellum CLI，任一命令失败时返回错误。
func Execute() error {
	var verbose bool

	root := &cobra.Command{
		Use:          "vellum",
		Short:        "Vellum 把线性内容流排版为分页 PDF",
		Long:         `Vellum 是一个文档排版工具：读取故事文件或 Markdown，经过样式解析、折行与分页，输出 PDF 与布局调试数据。`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("vellum %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newMarkdownCmd())
	root.AddCommand(newInspectCmd())

	return root.ExecuteContext(context.Background())
}
