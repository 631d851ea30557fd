// Package logger 提供基于zerolog的结构化日志
//
// 设计说明：
// 1. 统一走zerolog全局Logger（log.Logger），业务代码直接用 zerolog/log
// 2. 每条请求日志携带request_id和tenant字段，便于按请求/租户检索
// 3. format=console适合开发环境（彩色、可读），json适合生产环境（采集到ELK）
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options 日志配置（由config.LogConfig映射而来）
type Options struct {
	Level        string // debug | info | warn | error
	Format       string // console | json
	Output       string // stdout | stderr | 文件路径
	EnableCaller bool   // 是否记录调用位置
}

// Setup 初始化全局Logger
func Setup(opts Options) error {
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	var out io.Writer
	switch opts.Output {
	case "", "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		f, err := os.OpenFile(opts.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		out = f
	}

	if opts.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if opts.EnableCaller {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()

	return nil
}

// WithRequest 派生携带请求上下文的Logger
// 用法：reqLog := logger.WithRequest(requestID, tenant); reqLog.Info().Msg("...")
func WithRequest(requestID, tenant string) zerolog.Logger {
	if requestID == "" {
		requestID = "-"
	}
	if tenant == "" {
		tenant = "-"
	}
	return log.With().
		Str("request_id", requestID).
		Str("tenant", tenant).
		Logger()
}
