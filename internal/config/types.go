package config

import (
	"strings"
	"time"
)

// Config 是 krakenreport 的主配置载体。
type Config struct {
	App     AppConfig     `toml:"app"`
	Report  ReportConfig  `toml:"report"`
	Signals SignalsConfig `toml:"signals"`
	Store   StoreConfig   `toml:"store"`
	Render  RenderConfig  `toml:"render"`
}

type AppConfig struct {
	Env         string `toml:"env"`
	LogLevel    string `toml:"log_level"`
	LogFormat   string `toml:"log_format"`
	LogPath     string `toml:"log_path"`
	HTTPAddr    string `toml:"http_addr"`
	DumpPayload bool   `toml:"dump_payload"`
	DumpPath    string `toml:"dump_path"`
}

// ReportConfig 描述输入/输出目录以及引擎选择。
type ReportConfig struct {
	RootDir      string `toml:"root_dir"`
	Engine       string `toml:"engine"` // "modern" | "legacy"，NEW_REPORTER=1 强制 modern
	Format       string `toml:"format"` // "html" | "pdf"
	Title        string `toml:"title"`
	ExecutionID  string `toml:"execution_id"`
	ManifestPath string `toml:"manifest_path"`
	DevicesFile  string `toml:"devices_file"`
	ReportFile   string `toml:"report_file"`
	Concurrency  int    `toml:"concurrency"`
	GraphPage    bool   `toml:"graph_page"`
}

// SignalsConfig 为信号步骤识别的正则，留空使用内置英文措辞。
type SignalsConfig struct {
	ReadPattern  string `toml:"read_pattern"`
	WritePattern string `toml:"write_pattern"`
}

type StoreConfig struct {
	Enabled   bool   `toml:"enabled"`
	RunsPath  string `toml:"runs_path"`
	StepsPath string `toml:"steps_path"`
}

type RenderConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Timeout 返回 headless 渲染超时。
func (r RenderConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// PDF reports whether the index is printed to PDF.
func (r ReportConfig) PDF() bool {
	return strings.EqualFold(strings.TrimSpace(r.Format), "pdf")
}

// keySet 用于追踪配置文件中显式设置的字段路径。
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault 描述单个字段的默认值设置规则。
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
