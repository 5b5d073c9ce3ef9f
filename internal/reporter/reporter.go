// Package reporter 编排一次运行的报告产出：现代引擎、旧版引擎以及两者之间的切换。
package reporter

import (
	"context"
	"os"
	"path"
	"regexp"
	"strings"

	"krakenreport/internal/logger"
	"krakenreport/internal/types"
)

const (
	EngineModern = "modern"
	EngineLegacy = "legacy"

	// NewReporterEnv 为 "1" 时强制使用现代引擎。
	NewReporterEnv = "NEW_REPORTER"
)

// Reporter produces the artifacts of one run.
type Reporter interface {
	// CreateReport prepares the run folder before devices start writing logs.
	CreateReport(ctx context.Context, run *types.Run) error
	// SaveReport consolidates the run and writes the report artifacts.
	SaveReport(ctx context.Context, run *types.Run) (*types.ConsolidatedReport, error)
}

// Recorder receives every consolidated report saved through the facade.
type Recorder interface {
	Record(ctx context.Context, executionID string, r *types.ConsolidatedReport) error
}

// Facade dispatches to the modern or legacy engine and feeds the recorders.
type Facade struct {
	modern    Reporter
	legacy    Reporter
	useModern bool
	recorders []Recorder
}

func NewFacade(modern, legacy Reporter, useModern bool, recorders ...Recorder) *Facade {
	f := &Facade{modern: modern, legacy: legacy, useModern: useModern}
	for _, r := range recorders {
		if r != nil {
			f.recorders = append(f.recorders, r)
		}
	}
	return f
}

// UseModern reports whether engine (or the NEW_REPORTER override) selects the modern engine.
func UseModern(engine string) bool {
	if strings.TrimSpace(os.Getenv(NewReporterEnv)) == "1" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(engine), EngineModern)
}

func (f *Facade) CreateReport(ctx context.Context, run *types.Run) error {
	return f.active().CreateReport(ctx, run)
}

// SaveReport saves through the active engine. Recorder failures are logged, not returned.
func (f *Facade) SaveReport(ctx context.Context, run *types.Run) (*types.ConsolidatedReport, error) {
	r, err := f.active().SaveReport(ctx, run)
	if err != nil {
		return nil, err
	}
	for _, rec := range f.recorders {
		if err := rec.Record(ctx, run.ExecutionID, r); err != nil {
			logger.Warnf("reporter: record execution %s failed: %v", run.ExecutionID, err)
		}
	}
	return r, nil
}

// Engine names the engine currently selected.
func (f *Facade) Engine() string {
	if f.useModern {
		return EngineModern
	}
	return EngineLegacy
}

func (f *Facade) active() Reporter {
	if f.useModern && f.modern != nil {
		return f.modern
	}
	if f.legacy == nil {
		logger.Warnf("reporter: legacy engine missing, falling back to modern")
		return f.modern
	}
	return f.legacy
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// safeName 把 feature/设备 id 收敛成单段文件名。
func safeName(s string) string {
	s = unsafeName.ReplaceAllString(strings.TrimSpace(s), "_")
	s = strings.Trim(s, "._")
	if s == "" {
		return "_"
	}
	return s
}

func dest(parts ...string) string {
	return path.Join(parts...)
}
