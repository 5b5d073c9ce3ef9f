package config

import "strings"

// 默认值常量
const (
	defaultAppEnv         = "dev"
	defaultAppLogLevel    = "info"
	defaultAppLogFormat   = "text"
	defaultAppHTTPAddr    = ":9991"
	defaultAppDumpPath    = "reports/payload.log"
	defaultReportRoot     = "reports"
	defaultReportEngine   = "legacy"
	defaultReportFormat   = "html"
	defaultReportTitle    = "Test Execution Report"
	defaultDevicesFile    = "devices.json"
	defaultReportFile     = "report.json"
	defaultConcurrency    = 4
	defaultStoreRunsPath  = "reports/runs.db"
	defaultStoreStepsPath = "reports/steps.db"
	defaultRenderTimeout  = 30
)

// applyDefaults 为所有子配置应用默认值。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Report.applyDefaults(keys)
	c.Store.applyDefaults(keys)
	c.Render.applyDefaults(keys)
	c.Signals.ReadPattern = strings.TrimSpace(c.Signals.ReadPattern)
	c.Signals.WritePattern = strings.TrimSpace(c.Signals.WritePattern)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_format", &a.LogFormat, defaultAppLogFormat),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
		stringFieldDefault("app.dump_path", &a.DumpPath, defaultAppDumpPath),
	)
}

func (r *ReportConfig) applyDefaults(keys keySet) {
	if r == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("report.root_dir", &r.RootDir, defaultReportRoot),
		stringFieldDefault("report.engine", &r.Engine, defaultReportEngine),
		stringFieldDefault("report.format", &r.Format, defaultReportFormat),
		stringFieldDefault("report.title", &r.Title, defaultReportTitle),
		stringFieldDefault("report.devices_file", &r.DevicesFile, defaultDevicesFile),
		stringFieldDefault("report.report_file", &r.ReportFile, defaultReportFile),
		fieldDefault{
			key:   "report.concurrency",
			need:  func() bool { return r.Concurrency <= 0 },
			apply: func() { r.Concurrency = defaultConcurrency },
		},
		boolFieldDefault("report.graph_page", &r.GraphPage, true),
	)
	r.Engine = strings.ToLower(strings.TrimSpace(r.Engine))
	r.Format = strings.ToLower(strings.TrimSpace(r.Format))
}

func (s *StoreConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("store.runs_path", &s.RunsPath, defaultStoreRunsPath),
		stringFieldDefault("store.steps_path", &s.StepsPath, defaultStoreStepsPath),
	)
}

func (r *RenderConfig) applyDefaults(keys keySet) {
	if r == nil {
		return
	}
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "render.timeout_seconds",
			need:  func() bool { return r.TimeoutSeconds <= 0 },
			apply: func() { r.TimeoutSeconds = defaultRenderTimeout },
		},
	)
}

// Helper functions

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
