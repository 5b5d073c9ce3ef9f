package format

import (
	"context"
	"strings"
	"testing"

	"krakenreport/internal/report"
	"krakenreport/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *types.ConsolidatedReport {
	chat := types.NewMergedFeature("chat", "Chat")
	chat.SetSteps("d1", []types.StepRecord{
		{Keyword: "Given", Name: "I open <b>the</b> app", Status: types.StatusPassed, DurationNanos: 1_500_000_000, Screenshot: "aW1n"},
		{Keyword: "Then", Name: "it crashes", Status: types.StatusFailed},
	})
	return &types.ConsolidatedReport{
		Metrics:        types.Metrics{TotalDevices: 1, TotalScenarios: 1, FailedScenarios: 1},
		Devices:        []types.DeviceSummary{{User: 1, ID: "d1", Model: "Pixel 7", Type: types.DeviceAndroid}},
		FeaturesReport: map[string]*types.MergedFeature{"chat": chat},
		FeatureOrder:   []string{"chat"},
		Graph: []types.FeatureGraph{{
			Name: "Chat",
			Nodes: []types.GraphNode{
				{ID: "0", Status: types.StatusPassed},
				{ID: "1", Label: "I open the app", Status: types.StatusPassed},
				{ID: "2", Label: "it crashes", Status: types.StatusFailed},
			},
			Links: []types.GraphLink{
				{Source: "0", Target: "1", Owner: "d1", OwnerModel: "Pixel 7", Status: types.StatusPassed, Weight: 1},
				{Source: "1", Target: "2", Owner: "d1", OwnerModel: "Pixel 7", Status: types.StatusFailed, Weight: 1},
			},
		}},
	}
}

func TestHTMLFormatterIndex(t *testing.T) {
	f, err := NewHTMLFormatter("")
	require.NoError(t, err)

	out, err := f.WithExecution("exec-1").Format(sampleReport())
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "<title>Test Execution Report</title>")
	assert.Contains(t, html, "exec-1")
	assert.Contains(t, html, "<strong>failedScenarios:</strong> 1 (100.00%)")
	assert.Contains(t, html, "Pixel 7")
	assert.Contains(t, html, "&lt;b&gt;the&lt;/b&gt;")
	assert.NotContains(t, html, "<b>the</b>")
	assert.Contains(t, html, "owner_model")

	_, err = f.Format(nil)
	assert.Error(t, err)
}

func TestHTMLFormatterDevicePages(t *testing.T) {
	f, err := NewHTMLFormatter("Kraken")
	require.NoError(t, err)
	r := sampleReport()

	views := report.FeatureViews(r)
	require.Len(t, views, 1)
	out, err := f.FeatureReport(views[0])
	require.NoError(t, err)
	page := string(out)
	assert.Contains(t, page, `src="data:image/png;base64,aW1n"`)
	assert.Contains(t, page, "1.50s")
	assert.Contains(t, page, "Failed")

	scenarios := report.ScenarioViews(r)
	require.Len(t, scenarios, 1)
	out, err = f.ScenarioReport(scenarios[0])
	require.NoError(t, err)
	assert.Contains(t, string(out), "@failed")
}

func TestImageURI(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,abc", string(imageURI(" abc ")))
	assert.Equal(t, "data:image/jpeg;base64,abc", string(imageURI("data:image/jpeg;base64,abc")))
}

func TestGraphFormatter(t *testing.T) {
	out, err := NewGraphFormatter("Kraken graphs").Format(sampleReport())
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "Kraken graphs")
	assert.Contains(t, html, "force")
	assert.Contains(t, html, "#2 it crashes")

	_, err = NewGraphFormatter("").Format(&types.ConsolidatedReport{})
	assert.Error(t, err)
}

func TestGraphSeriesSkipsDanglingLinks(t *testing.T) {
	g := types.FeatureGraph{
		Nodes: []types.GraphNode{{ID: "0"}, {ID: "1", Label: strings.Repeat("x", 80), Status: types.StatusUnknown}},
		Links: []types.GraphLink{{Source: "0", Target: "1", Weight: 1}, {Source: "1", Target: "9", Weight: 1}},
	}
	nodes, links := graphSeries(g)
	require.Len(t, nodes, 2)
	assert.Equal(t, "#0 start", nodes[0].Name)
	assert.True(t, strings.HasSuffix(nodes[1].Name, "…"))
	assert.Len(t, links, 1)
}

func TestPDFFormatterRequiresHTML(t *testing.T) {
	f := NewPDFFormatter(nil, 0)
	assert.Equal(t, defaultRenderTimeout, f.timeout)
	err := f.FormatToFile(context.Background(), t.TempDir()+"/index.pdf", sampleReport())
	assert.Error(t, err)
}
