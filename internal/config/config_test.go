package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "report:\n  root_dir: out\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.Report.RootDir)
	assert.Equal(t, "legacy", cfg.Report.Engine)
	assert.Equal(t, "html", cfg.Report.Format)
	assert.Equal(t, "report.json", cfg.Report.ReportFile)
	assert.Equal(t, 4, cfg.Report.Concurrency)
	assert.True(t, cfg.Report.GraphPage)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":9991", cfg.App.HTTPAddr)
	assert.Equal(t, 30, cfg.Render.TimeoutSeconds)
	assert.False(t, cfg.Store.Enabled)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
app:
  log_level: debug
report:
  engine: Modern
  format: PDF
  graph_page: false
  concurrency: "8"
signals:
  read_pattern: "(?i)espero una señal"
render:
  timeout_seconds: 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "modern", cfg.Report.Engine)
	assert.True(t, cfg.Report.PDF())
	assert.False(t, cfg.Report.GraphPage)
	assert.Equal(t, 8, cfg.Report.Concurrency)
	assert.Equal(t, "(?i)espero una señal", cfg.Signals.ReadPattern)
	assert.Equal(t, int64(5), int64(cfg.Render.Timeout().Seconds()))
}

func TestLoadIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "report:\n  root_dir: base\n  engine: modern\n")
	path := writeFile(t, dir, "config.yaml", "include: [base.yaml]\nreport:\n  root_dir: override\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "override", cfg.Report.RootDir)
	assert.Equal(t, "modern", cfg.Report.Engine)
}

func TestLoadIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "include: [b.yaml]\n")
	path := writeFile(t, dir, "b.yaml", "include: [a.yaml]\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"engine":   "report:\n  engine: fancy\n",
		"format":   "report:\n  format: docx\n",
		"pattern":  "signals:\n  write_pattern: \"(\"\n",
		"level":    "app:\n  log_level: loud\n",
		"exec id":  "report:\n  execution_id: a/b\n",
		"store":    "store:\n  enabled: true\n  runs_path: \" \"\n",
		"log form": "app:\n  log_format: xml\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv(PathEnv, "")
	assert.Equal(t, DefaultPath, ResolvePath(""))
	t.Setenv(PathEnv, "/etc/kraken.yaml")
	assert.Equal(t, "/etc/kraken.yaml", ResolvePath(""))
	assert.Equal(t, "x.yaml", ResolvePath(" x.yaml "))
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "reports", cfg.Report.RootDir)
	assert.Equal(t, "legacy", cfg.Report.Engine)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "app:\n  log_level: info\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	w := &Watcher{path: path, current: cfg}
	var got *Config
	w.Subscribe(func(c *Config) { got = c })

	writeFile(t, dir, "config.yaml", "app:\n  log_level: debug\n")
	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Write})
	require.NotNil(t, got)
	assert.Equal(t, "debug", w.Current().App.LogLevel)

	got = nil
	writeFile(t, dir, "config.yaml", "report:\n  engine: nope\n")
	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Write})
	assert.Nil(t, got)
	assert.Equal(t, "debug", w.Current().App.LogLevel)

	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Chmod})
	assert.Nil(t, got)
}
