package app

import (
	"context"
	"fmt"
	"strings"

	"krakenreport/internal/config"
	"krakenreport/internal/format"
	"krakenreport/internal/graph"
	"krakenreport/internal/loader"
	"krakenreport/internal/logger"
	"krakenreport/internal/report"
	"krakenreport/internal/reporter"
	"krakenreport/internal/storage"
	"krakenreport/internal/store/gormstore"
	"krakenreport/internal/store/steplog"
	reportshttp "krakenreport/internal/transport/http/reports"
)

type AppBuilder struct {
	cfg *config.Config

	classifierFn func(config.SignalsConfig) (*graph.Classifier, error)
	runStoreFn   func(config.StoreConfig) (*gormstore.RunStore, error)
	stepIndexFn  func(config.StoreConfig) (*steplog.Store, error)
	fileFmtFn    func(config.Config, *format.HTMLFormatter) format.FileFormatter
	httpFn       func(reportshttp.ServerConfig) (*reportshttp.Server, error)
}

type AppBuilderOption func(*AppBuilder)

// WithFileFormatterFn overrides how the PDF formatter is built.
func WithFileFormatterFn(fn func(config.Config, *format.HTMLFormatter) format.FileFormatter) AppBuilderOption {
	return func(b *AppBuilder) {
		if fn != nil {
			b.fileFmtFn = fn
		}
	}
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:          cfg,
		classifierFn: buildClassifier,
		runStoreFn:   buildRunStore,
		stepIndexFn:  buildStepIndex,
		fileFmtFn:    buildPDFFormatter,
		httpFn:       reportshttp.NewServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(_ context.Context) (*App, error) {
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	logger.SetLevel(cfg.App.LogLevel)

	classifier, err := b.classifierFn(cfg.Signals)
	if err != nil {
		return nil, err
	}
	gen := report.NewGenerator(classifier)
	fs := storage.NewFileSystem(cfg.Report.RootDir)
	html, err := format.NewHTMLFormatter(cfg.Report.Title)
	if err != nil {
		return nil, err
	}

	useModern := reporter.UseModern(cfg.Report.Engine)
	engineName := reporter.EngineLegacy
	if useModern {
		engineName = reporter.EngineModern
	}

	a := &App{cfg: cfg, storage: fs}
	var recorders []reporter.Recorder
	if cfg.Store.Enabled {
		runs, err := b.runStoreFn(cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("open run store: %w", err)
		}
		a.closers = append(a.closers, runs.Close)
		steps, err := b.stepIndexFn(cfg.Store)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("open step index: %w", err)
		}
		a.closers = append(a.closers, steps.Close)
		a.runs, a.steps = runs.WithEngine(engineName), steps
		recorders = append(recorders, a.runs, a.steps)
	}
	var modernOpts []reporter.ModernOption
	if cfg.Report.GraphPage {
		modernOpts = append(modernOpts, reporter.WithGraphFormatter(format.NewGraphFormatter(cfg.Report.Title)))
	}
	if cfg.Report.PDF() {
		modernOpts = append(modernOpts, reporter.WithFileFormatter(b.fileFmtFn(*cfg, html)))
	}
	modern := reporter.NewModernEngine(gen, fs, html, modernOpts...)
	legacy := reporter.NewLegacyEngine(gen, fs, html)
	a.reporter = reporter.NewFacade(modern, legacy, useModern, recorders...)
	a.loader = loader.NewDeviceLogLoader(cfg.Report.RootDir,
		loader.WithReportFile(cfg.Report.ReportFile),
		loader.WithConcurrency(cfg.Report.Concurrency),
	)

	httpCfg := reportshttp.ServerConfig{
		Addr:       cfg.App.HTTPAddr,
		ReportsDir: cfg.Report.RootDir,
		Regenerate: func(ctx context.Context, executionID string) error {
			_, err := a.Generate(ctx, executionID)
			return err
		},
	}
	if a.runs != nil {
		httpCfg.Runs = a.runs
		httpCfg.Steps = a.steps
	}
	a.newHTTP = func() (*reportshttp.Server, error) { return b.httpFn(httpCfg) }

	a.Summary = newStartupSummary(cfg, a.reporter.Engine())
	return a, nil
}

func buildClassifier(sc config.SignalsConfig) (*graph.Classifier, error) {
	if strings.TrimSpace(sc.ReadPattern) == "" && strings.TrimSpace(sc.WritePattern) == "" {
		return graph.DefaultClassifier(), nil
	}
	return graph.NewClassifier(sc.ReadPattern, sc.WritePattern)
}

func buildRunStore(sc config.StoreConfig) (*gormstore.RunStore, error) {
	return gormstore.NewRunStore(sc.RunsPath)
}

func buildStepIndex(sc config.StoreConfig) (*steplog.Store, error) {
	return steplog.Open(sc.StepsPath)
}

func buildPDFFormatter(cfg config.Config, html *format.HTMLFormatter) format.FileFormatter {
	return format.NewPDFFormatter(html, cfg.Render.Timeout())
}
