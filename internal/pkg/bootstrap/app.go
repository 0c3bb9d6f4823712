// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"gpoffer/internal/pkg/logger"
	"gpoffer/internal/pkg/tracing"
)

// AppCtx 传递给各服务的路由注册函数。
type AppCtx struct {
	Mux *http.ServeMux
}

// AppInfo 包含了启动一个服务所需的所有特定信息。
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx) // 一个函数，允许每个服务注册自己独特的 HTTP 路由
}

// StartService 封装了所有服务的通用启动和优雅关停逻辑。
func StartService(info AppInfo) {
	// 1. 初始化 Tracer
	tp, err := tracing.InitTracerProvider(info.ServiceName, GetCurrentConfig().Infra.Jaeger.Endpoint)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	// 2. 创建并启动 HTTP Server
	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux})
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(info.Port), Handler: mux}
	go func() {
		logger.Logger.Info().Str("service", info.ServiceName).Int("port", info.Port).Msg("listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal().Err(err).Str("addr", server.Addr).Msg("could not listen")
		}
	}()

	// 3. 优雅关停：阻塞主 goroutine，直到接收到退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Logger.Info().Str("service", info.ServiceName).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 按顺序执行清理操作（后进先出）：
	// a. 关闭 Tracer Provider，确保所有缓冲的 trace 都被发送出去
	if err := tp.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("error shutting down tracer provider")
	}
	// b. 关闭 HTTP 服务器
	if err := server.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("error shutting down http server")
	}
	logger.Logger.Info().Str("service", info.ServiceName).Msg("gracefully shut down")
}
