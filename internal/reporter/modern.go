package reporter

import (
	"context"
	"fmt"
	"strings"

	"krakenreport/internal/format"
	"krakenreport/internal/logger"
	"krakenreport/internal/report"
	"krakenreport/internal/storage"
	"krakenreport/internal/types"
)

const (
	FormatHTML = "html"
	FormatPDF  = "pdf"
)

// ModernEngine writes the consolidated report, the graph page and the per-device pages.
type ModernEngine struct {
	generator *report.Generator
	storage   *storage.FileSystem
	html      *format.HTMLFormatter
	graph     format.Formatter
	file      format.FileFormatter
}

type ModernOption func(*ModernEngine)

// WithFileFormatter renders the index to <exec>/index.pdf instead of index.html.
func WithFileFormatter(f format.FileFormatter) ModernOption {
	return func(e *ModernEngine) { e.file = f }
}

func WithGraphFormatter(f format.Formatter) ModernOption {
	return func(e *ModernEngine) { e.graph = f }
}

func NewModernEngine(gen *report.Generator, fs *storage.FileSystem, html *format.HTMLFormatter, opts ...ModernOption) *ModernEngine {
	e := &ModernEngine{generator: gen, storage: fs, html: html}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *ModernEngine) CreateReport(_ context.Context, run *types.Run) error {
	if err := e.storage.SaveDeviceList(run); err != nil {
		return fmt.Errorf("save device list: %w", err)
	}
	return nil
}

func (e *ModernEngine) SaveReport(ctx context.Context, run *types.Run) (*types.ConsolidatedReport, error) {
	r, err := e.generator.Generate(run)
	if err != nil {
		return nil, err
	}
	exec := run.ExecutionID

	data, err := report.Encode(r, true)
	if err != nil {
		return nil, err
	}
	if err := e.storage.Save(data, dest(exec, "report.json")); err != nil {
		return nil, err
	}
	if err := e.writeIndex(ctx, exec, r); err != nil {
		return nil, err
	}
	if e.graph != nil && len(r.Graph) > 0 {
		page, err := e.graph.Format(r)
		if err != nil {
			return nil, fmt.Errorf("render graph page: %w", err)
		}
		if err := e.storage.Save(page, dest(exec, "graph.html")); err != nil {
			return nil, err
		}
	}
	if err := e.writeDevicePages(exec, r); err != nil {
		return nil, err
	}
	logger.Infof("reporter: execution %s saved (%d features, %d/%d scenarios passed)",
		exec, len(r.FeatureOrder), r.Metrics.PassedScenarios, r.Metrics.TotalScenarios)
	return r, nil
}

func (e *ModernEngine) writeIndex(ctx context.Context, exec string, r *types.ConsolidatedReport) error {
	if e.file != nil {
		target, err := e.storage.Path(dest(exec, "index.pdf"))
		if err != nil {
			return err
		}
		if err := e.file.FormatToFile(ctx, target, r); err != nil {
			return fmt.Errorf("render pdf: %w", err)
		}
		return nil
	}
	content, err := e.html.WithExecution(exec).Format(r)
	if err != nil {
		return err
	}
	return e.storage.Save(content, dest(exec, "index.html"))
}

// writeDevicePages 输出 <exec>/<device>/feature_report.html 与 features_report/<feature>.html。
// 同一设备参与多个 feature 时，feature_report.html 按 feature 顺序拼接。
func (e *ModernEngine) writeDevicePages(exec string, r *types.ConsolidatedReport) error {
	pages := make(map[string][]string)
	var order []string
	for _, v := range report.FeatureViews(r) {
		content, err := e.html.FeatureReport(v)
		if err != nil {
			return err
		}
		if _, ok := pages[v.Device.ID]; !ok {
			order = append(order, v.Device.ID)
		}
		pages[v.Device.ID] = append(pages[v.Device.ID], string(content))
	}
	for _, deviceID := range order {
		body := strings.Join(pages[deviceID], "\n")
		if err := e.storage.Save([]byte(body), dest(exec, safeName(deviceID), "feature_report.html")); err != nil {
			return err
		}
	}
	for _, v := range report.ScenarioViews(r) {
		content, err := e.html.ScenarioReport(v)
		if err != nil {
			return err
		}
		target := dest(exec, safeName(v.Device.ID), "features_report", safeName(v.FeatureID)+".html")
		if err := e.storage.Save(content, target); err != nil {
			return err
		}
	}
	return nil
}
