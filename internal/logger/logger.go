// Package logger 是进程级 slog 封装：统一级别、输出与格式。
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	levelVar slog.LevelVar
	current  atomic.Pointer[slog.Logger]

	outputMu sync.Mutex
	output   io.Writer = os.Stdout
	asJSON   bool
)

func init() {
	rebuild()
}

// rebuild 按当前 output/asJSON 重建 handler；调用方需持有 outputMu 或处于 init。
func rebuild() {
	w := output
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: &levelVar}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if asJSON {
		h = slog.NewJSONHandler(w, opts)
	}
	current.Store(slog.New(h))
}

func SetOutput(w io.Writer) {
	outputMu.Lock()
	defer outputMu.Unlock()
	output = w
	rebuild()
}

// SetFormat 切换 text/json 输出格式。
func SetFormat(format string) {
	outputMu.Lock()
	defer outputMu.Unlock()
	asJSON = strings.EqualFold(strings.TrimSpace(format), "json")
	rebuild()
}

// SetLevel accepts debug/info/warn/error; anything else resets to info.
func SetLevel(level string) {
	lv := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lv = slog.LevelDebug
	case "warn", "warning":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	}
	levelVar.Set(lv)
}

func logf(level slog.Level, format string, v ...any) {
	l := current.Load()
	ctx := context.Background()
	if !l.Enabled(ctx, level) {
		return
	}
	l.Log(ctx, level, fmt.Sprintf(format, v...))
}

func Debugf(format string, v ...any) { logf(slog.LevelDebug, format, v...) }
func Infof(format string, v ...any)  { logf(slog.LevelInfo, format, v...) }
func Warnf(format string, v ...any)  { logf(slog.LevelWarn, format, v...) }
func Errorf(format string, v ...any) { logf(slog.LevelError, format, v...) }

// InfoBlock logs a multi-line block one line at a time.
func InfoBlock(block string) {
	block = strings.TrimSpace(block)
	if block == "" {
		return
	}
	for _, line := range strings.Split(block, "\n") {
		Infof("%s", line)
	}
}
