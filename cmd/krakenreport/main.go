package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"krakenreport/internal/config"
	"krakenreport/internal/logger"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "krakenreport",
	Short:         "Consolidate Kraken multi-device test logs into one report",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $"+config.PathEnv+" or "+config.DefaultPath+")")
	rootCmd.AddCommand(createCmd, generateCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("运行失败: %v", err)
	}
}

// loadConfig 读取配置并初始化日志输出；返回的 cleanup 关闭日志文件。
func loadConfig() (*config.Config, func(), error) {
	path := config.ResolvePath(configPath)
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, nil, err
	}
	var files []*os.File
	cleanup := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	logFile, err := setupLogOutput(cfg.App.LogPath)
	if err != nil {
		return nil, nil, err
	}
	if logFile != nil {
		files = append(files, logFile)
	}
	logger.SetDumpWriter(nil)
	if cfg.App.DumpPayload {
		f, err := setupDumpOutput(cfg.App.DumpPath)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if f != nil {
			files = append(files, f)
		}
	}
	config.ApplyLogging(cfg)
	logger.EnableDump(cfg.App.DumpPayload)
	logger.Infof("✓ 配置加载成功（环境=%s，config=%s）", cfg.App.Env, path)
	return cfg, cleanup, nil
}

func setupLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	f, err := openAppend(trimmed)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stdout, f)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return f, nil
}

func setupDumpOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	f, err := openAppend(trimmed)
	if err != nil {
		return nil, err
	}
	logger.SetDumpWriter(f)
	return f, nil
}

func openAppend(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
