// Package report 把合并、统计与构图的结果组装为交给渲染层的 ConsolidatedReport。
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"krakenreport/internal/graph"
	"krakenreport/internal/logger"
	"krakenreport/internal/merge"
	"krakenreport/internal/metrics"
	"krakenreport/internal/types"
)

// Generator builds the consolidated report of one run. It holds no per-run state.
type Generator struct {
	classifier *graph.Classifier
}

// NewGenerator returns a generator using classifier for signal detection (nil: defaults).
func NewGenerator(classifier *graph.Classifier) *Generator {
	if classifier == nil {
		classifier = graph.DefaultClassifier()
	}
	return &Generator{classifier: classifier}
}

// Generate merges the run's logs and derives metrics and one graph per feature.
func (g *Generator) Generate(run *types.Run) (*types.ConsolidatedReport, error) {
	if run == nil {
		return nil, errors.New("report: nil run")
	}
	if len(run.Logs) > len(run.Devices) {
		return nil, fmt.Errorf("report: %d device logs for %d devices", len(run.Logs), len(run.Devices))
	}
	merged, devices := merge.Merge(run.Devices, run.Logs, run.Manifest)
	m := metrics.Aggregate(run.Devices, merged)

	ordered := merged.Ordered()
	graphs := make([]types.FeatureGraph, 0, len(ordered))
	for _, f := range ordered {
		fg := graph.Build(f, g.classifier)
		if err := graph.Validate(fg); err != nil {
			return nil, fmt.Errorf("report: feature %s: %w", f.ID, err)
		}
		graphs = append(graphs, fg)
	}
	logger.Debugf("report %s: %d features, %d scenarios (%d passed, %d failed)",
		run.ExecutionID, len(ordered), m.TotalScenarios, m.PassedScenarios, m.FailedScenarios)

	return &types.ConsolidatedReport{
		Metrics:        m,
		Devices:        devices,
		FeaturesReport: merged.Features,
		Graph:          graphs,
		FeatureOrder:   append([]string(nil), merged.Order...),
	}, nil
}

// Encode serializes the report. Output is byte-identical for identical reports.
func Encode(r *types.ConsolidatedReport, indent bool) ([]byte, error) {
	if r == nil {
		return nil, errors.New("report: nil report")
	}
	return encode(r, indent)
}

// EncodeGraph serializes only the graph list (the legacy data.json payload).
func EncodeGraph(r *types.ConsolidatedReport) ([]byte, error) {
	if r == nil {
		return nil, errors.New("report: nil report")
	}
	graphs := r.Graph
	if graphs == nil {
		graphs = []types.FeatureGraph{}
	}
	return encode(graphs, false)
}

func encode(v any, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
