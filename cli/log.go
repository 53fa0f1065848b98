package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

// newLogger 创建带时间戳的日志器，写入 w 并按 level 过滤。
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// ctxKey 是本包 context 键的独立类型，避免与其它包冲突。
type ctxKey int

const loggerKey ctxKey = 0

// withLogger 返回带日志器的新 context。
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext 取出 context 中的日志器，缺省退回 log.Default()。
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
