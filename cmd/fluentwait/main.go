// =============================================================================
// fluentwait 主入口
// =============================================================================
// 命令行入口点：在 HTML 文档或 Chrome 页面上等待元素条件成立
//
// 使用方法:
//
//	fluentwait wait --url http://localhost:8080 "#ready"
//	fluentwait wait --file page.html --until "text=Done" css=.status
//	fluentwait wait --driver chrome --url https://example.com --until displayed "h1"
//	fluentwait version
// =============================================================================

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/fluentwait/config"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// 退出码
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return exitUsage
	}

	switch args[0] {
	case "wait":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWait(ctx, args[1:], stdout, stderr)
	case "version":
		printVersion(stdout)
		return exitOK
	case "help", "-h", "--help":
		printUsage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		printUsage(stderr)
		return exitUsage
	}
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "fluentwait %s\n", Version)
	fmt.Fprintf(w, "  Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git Commit: %s\n", GitCommit)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `fluentwait - wait until page elements match a condition

Usage:
  fluentwait <command> [options]

Commands:
  wait      Wait for one or more selectors
  version   Show version information
  help      Show this help message

Options for 'wait':
  --config <path>       Path to configuration file (YAML)
  --driver <kind>       html or chrome
  --url <url>           Document URL (html) or page to open (chrome)
  --file <path>         Local HTML document, "-" for stdin (html only)
  --timeout <d>         Maximum wait, e.g. 10s
  --polling <d>         Polling interval, e.g. 250ms
  --until <cond>        present, displayed, enabled, selected, clickable,
                        text=<s>, text~<regexp>, value=<s>, id=<s>, name=<s>,
                        attr:<name>=<s>, size=<n>, size!=<n>, size<<n>,
                        size<=<n>, size><n>, size>=<n> (default present)
  --not                 Negate the condition
  --id, --name, --class, --text <s>
                        Narrow matches by id, name, class or contained text
  --attr <name=value>   Narrow matches by attribute (repeatable)
  --message <s>         Message reported on timeout
  --capture <dir>       Dump the page into dir on timeout
  --metrics-file <path> Write Prometheus metrics in textfile format
  --parallel <n>        Maximum concurrent waits
  --insecure            Skip TLS verification when fetching --url (html)

The config file is --config, $FLUENTWAIT_CONFIG or ./fluentwait.yaml.

Selectors accept a strategy prefix: css=, xpath=, id=, name=, class=,
tag=, link=. Without a prefix they are CSS selectors.

Examples:
  fluentwait wait --url http://localhost:8080/health --until "text=ok" body
  fluentwait wait --file report.html --until "size>=3" "li.item"
  fluentwait wait --driver chrome --url https://example.com --not --until displayed ".spinner"
  fluentwait version`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	// 解析日志级别
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	// 配置编码器
	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}
	if cfg.Format == "console" {
		zapConfig.Encoding = "console"
	}

	var opts []zap.Option
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	if cfg.EnableStacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	logger, err := zapConfig.Build(opts...)
	if err != nil {
		// 回退到基本 logger
		logger, _ = zap.NewProduction()
	}

	return logger
}
