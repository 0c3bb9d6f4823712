// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logger 是全局的 zerolog 实例。
// 默认输出 JSON 到 stdout；本地调试可通过 LOG_PRETTY=true 切换为彩色控制台输出。
var Logger zerolog.Logger

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	if os.Getenv("LOG_PRETTY") == "true" {
		Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		Logger = Logger.Level(lvl)
	}
}

// Ctx 返回一个携带 trace 上下文的 Logger。
// 如果 ctx 中存在有效的 OpenTelemetry Span，则自动附加 trace_id/span_id 字段，
// 方便在日志平台中与 Jaeger 的链路互查。
func Ctx(ctx context.Context) *zerolog.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return &Logger
	}
	l := Logger.With().
		Str("trace_id", spanCtx.TraceID().String()).
		Str("span_id", spanCtx.SpanID().String()).
		Logger()
	return &l
}
