package config

import (
	"fmt"
	"regexp"
	"strings"
)

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Report.validate(); err != nil {
		return err
	}
	if err := c.Signals.validate(); err != nil {
		return err
	}
	if err := c.Store.validate(); err != nil {
		return err
	}
	if c.Render.TimeoutSeconds < 0 {
		return fmt.Errorf("render.timeout_seconds must be >= 0")
	}
	return nil
}

func (a *AppConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(a.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("app.log_level must be one of debug/info/warn/error, got %q", a.LogLevel)
	}
	switch strings.ToLower(strings.TrimSpace(a.LogFormat)) {
	case "", "text", "json":
	default:
		return fmt.Errorf("app.log_format must be text or json, got %q", a.LogFormat)
	}
	if a.DumpPayload && strings.TrimSpace(a.DumpPath) == "" {
		return fmt.Errorf("app.dump_path cannot be empty when app.dump_payload is enabled")
	}
	return nil
}

func (r *ReportConfig) validate() error {
	if strings.TrimSpace(r.RootDir) == "" {
		return fmt.Errorf("report.root_dir cannot be empty")
	}
	switch r.Engine {
	case "modern", "legacy":
	default:
		return fmt.Errorf("report.engine must be modern or legacy, got %q", r.Engine)
	}
	switch r.Format {
	case "html", "pdf":
	default:
		return fmt.Errorf("report.format must be html or pdf, got %q", r.Format)
	}
	if strings.ContainsAny(r.ExecutionID, `/\`) {
		return fmt.Errorf("report.execution_id cannot contain path separators")
	}
	if strings.ContainsAny(r.ReportFile, `/\`) {
		return fmt.Errorf("report.report_file must be a bare file name")
	}
	return nil
}

func (s *SignalsConfig) validate() error {
	if s.ReadPattern != "" {
		if _, err := regexp.Compile(s.ReadPattern); err != nil {
			return fmt.Errorf("signals.read_pattern invalid: %w", err)
		}
	}
	if s.WritePattern != "" {
		if _, err := regexp.Compile(s.WritePattern); err != nil {
			return fmt.Errorf("signals.write_pattern invalid: %w", err)
		}
	}
	return nil
}

func (s *StoreConfig) validate() error {
	if !s.Enabled {
		return nil
	}
	if strings.TrimSpace(s.RunsPath) == "" {
		return fmt.Errorf("store.runs_path cannot be empty when store is enabled")
	}
	if strings.TrimSpace(s.StepsPath) == "" {
		return fmt.Errorf("store.steps_path cannot be empty when store is enabled")
	}
	return nil
}
