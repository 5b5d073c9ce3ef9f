package app

import (
	"fmt"
	"strings"

	"krakenreport/internal/config"
	"krakenreport/internal/logger"
)

type StartupSummary struct {
	Env        string
	Engine     string
	Format     string
	RootDir    string
	HTTPAddr   string
	Store      string
	ReadSignal string
	SendSignal string
}

func newStartupSummary(cfg *config.Config, engine string) *StartupSummary {
	store := "(disabled)"
	if cfg.Store.Enabled {
		store = fmt.Sprintf("runs=%s steps=%s", cfg.Store.RunsPath, cfg.Store.StepsPath)
	}
	return &StartupSummary{
		Env:        cfg.App.Env,
		Engine:     engine,
		Format:     cfg.Report.Format,
		RootDir:    cfg.Report.RootDir,
		HTTPAddr:   cfg.App.HTTPAddr,
		Store:      store,
		ReadSignal: orDefault(cfg.Signals.ReadPattern),
		SendSignal: orDefault(cfg.Signals.WritePattern),
	}
}

// String 渲染启动摘要。
func (s *StartupSummary) String() string {
	lines := []string{
		strings.Repeat("=", 60),
		"启动配置摘要 (STARTUP SUMMARY)",
		strings.Repeat("=", 60),
		fmt.Sprintf("  环境: %s", s.Env),
		fmt.Sprintf("  报告引擎: %s (format=%s)", s.Engine, s.Format),
		fmt.Sprintf("  报告目录: %s", s.RootDir),
		fmt.Sprintf("  HTTP: %s", s.HTTPAddr),
		fmt.Sprintf("  运行历史: %s", s.Store),
		fmt.Sprintf("  信号识别: read=%s send=%s", s.ReadSignal, s.SendSignal),
		strings.Repeat("=", 60),
	}
	return strings.Join(lines, "\n")
}

func (s *StartupSummary) Print() {
	if s == nil {
		return
	}
	logger.InfoBlock(s.String())
}

func orDefault(pattern string) string {
	if strings.TrimSpace(pattern) == "" {
		return "(default)"
	}
	return pattern
}
