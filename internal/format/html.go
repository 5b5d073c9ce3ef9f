// Package format 把 ConsolidatedReport 渲染成 HTML、图表页面与 PDF。
package format

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"krakenreport/internal/report"
	"krakenreport/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

const defaultTitle = "Test Execution Report"

// Formatter renders a report into a single in-memory document.
type Formatter interface {
	Format(r *types.ConsolidatedReport) ([]byte, error)
}

type indexData struct {
	Title            string
	ExecutionID      string
	Metrics          types.Metrics
	PassedPercentage string
	FailedPercentage string
	Devices          []types.DeviceSummary
	Features         []report.FeatureView
	GraphJSON        string
}

// HTMLFormatter renders the index page and the per-device pages from embedded templates.
type HTMLFormatter struct {
	title       string
	executionID string
	tmpl        *template.Template
}

func NewHTMLFormatter(title string) (*HTMLFormatter, error) {
	if strings.TrimSpace(title) == "" {
		title = defaultTitle
	}
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatDuration": report.FormatDuration,
		"imageURI":       imageURI,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse report templates: %w", err)
	}
	return &HTMLFormatter{title: title, tmpl: tmpl}, nil
}

// WithExecution returns a copy that prints executionID in the index header.
func (f *HTMLFormatter) WithExecution(executionID string) *HTMLFormatter {
	cp := *f
	cp.executionID = executionID
	return &cp
}

// Format renders index.html.
func (f *HTMLFormatter) Format(r *types.ConsolidatedReport) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("format: nil report")
	}
	graphJSON, err := report.EncodeGraph(r)
	if err != nil {
		return nil, err
	}
	data := indexData{
		Title:            f.title,
		ExecutionID:      f.executionID,
		Metrics:          r.Metrics,
		PassedPercentage: report.Percentage(r.Metrics.PassedScenarios, r.Metrics.TotalScenarios),
		FailedPercentage: report.Percentage(r.Metrics.FailedScenarios, r.Metrics.TotalScenarios),
		Devices:          r.Devices,
		Features:         report.FeatureViews(r),
		GraphJSON:        string(graphJSON),
	}
	return f.execute("index.html", data)
}

// FeatureReport renders <exec>/<deviceId>/feature_report.html content.
func (f *HTMLFormatter) FeatureReport(v report.FeatureView) ([]byte, error) {
	return f.execute("feature_report.html", v)
}

// ScenarioReport renders <exec>/<deviceId>/features_report/<featureId>.html content.
func (f *HTMLFormatter) ScenarioReport(v report.ScenarioView) ([]byte, error) {
	return f.execute("scenario_report.html", v)
}

func (f *HTMLFormatter) execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// imageURI 把 base64 截图包装成 data URI，html/template 默认会拦截 data: 链接。
func imageURI(b64 string) template.URL {
	b64 = strings.TrimSpace(b64)
	if strings.HasPrefix(b64, "data:") {
		return template.URL(b64)
	}
	return template.URL("data:image/png;base64," + b64)
}
