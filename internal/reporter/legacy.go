package reporter

import (
	"context"
	"fmt"

	"krakenreport/internal/format"
	"krakenreport/internal/report"
	"krakenreport/internal/storage"
	"krakenreport/internal/types"
)

// LegacyEngine 保留旧版目录结构：devices.json、assets/js/data.json 与 index.html。
type LegacyEngine struct {
	generator *report.Generator
	storage   *storage.FileSystem
	html      *format.HTMLFormatter
}

func NewLegacyEngine(gen *report.Generator, fs *storage.FileSystem, html *format.HTMLFormatter) *LegacyEngine {
	return &LegacyEngine{generator: gen, storage: fs, html: html}
}

func (e *LegacyEngine) CreateReport(_ context.Context, run *types.Run) error {
	if run == nil {
		return fmt.Errorf("legacy reporter: nil run")
	}
	if err := e.storage.SaveDeviceList(run); err != nil {
		return err
	}
	return e.storage.EnsureFolder(dest(run.ExecutionID, "assets", "js"))
}

func (e *LegacyEngine) SaveReport(_ context.Context, run *types.Run) (*types.ConsolidatedReport, error) {
	r, err := e.generator.Generate(run)
	if err != nil {
		return nil, err
	}
	exec := run.ExecutionID
	graph, err := report.EncodeGraph(r)
	if err != nil {
		return nil, err
	}
	if err := e.storage.Save(graph, dest(exec, "assets", "js", "data.json")); err != nil {
		return nil, err
	}
	content, err := e.html.WithExecution(exec).Format(r)
	if err != nil {
		return nil, err
	}
	if err := e.storage.Save(content, dest(exec, "index.html")); err != nil {
		return nil, err
	}
	return r, nil
}
