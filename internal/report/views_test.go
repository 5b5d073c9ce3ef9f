package report

import (
	"testing"

	"krakenreport/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentage(t *testing.T) {
	assert.Equal(t, "100.00", Percentage(1, 1))
	assert.Equal(t, "0.00", Percentage(0, 1))
	assert.Equal(t, "33.33", Percentage(1, 3))
	assert.Equal(t, "0.00", Percentage(3, 0))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.50s", FormatDuration(1_500_000_000))
	assert.Equal(t, "0.00s", FormatDuration(0))
}

func TestFeatureAndScenarioViews(t *testing.T) {
	run := twoDeviceRun()
	run.Logs[1] = types.DeviceLog{{Key: "chat", Name: "Chat", Steps: []types.StepRecord{
		step(`I wait for a signal containing "ping"`, types.StatusFailed),
	}}}
	rep, err := NewGenerator(nil).Generate(run)
	require.NoError(t, err)

	views := FeatureViews(rep)
	require.Len(t, views, 2)
	assert.True(t, views[0].Passed())
	assert.Equal(t, "100.00", views[0].PassedScenariosPercentage)
	assert.Equal(t, "Pixel 7", views[0].Device.Model)
	assert.False(t, views[1].Passed())
	assert.Equal(t, "100.00", views[1].FailedFeaturesPercentage)
	assert.Equal(t, "1.50s", views[1].FormattedDuration())

	scenarios := ScenarioViews(rep)
	require.Len(t, scenarios, 2)
	assert.Equal(t, []string{"@passed"}, scenarios[0].Tags)
	assert.Equal(t, []string{"@failed"}, scenarios[1].Tags)
	assert.False(t, scenarios[1].Passed())
}

func TestFeatureViews_UnknownDevice(t *testing.T) {
	rep := &types.ConsolidatedReport{
		FeaturesReport: map[string]*types.MergedFeature{},
		FeatureOrder:   []string{"f"},
	}
	f := types.NewMergedFeature("f", "F")
	f.SetSteps("ghost", nil)
	rep.FeaturesReport["f"] = f

	views := FeatureViews(rep)
	require.Len(t, views, 1)
	assert.Equal(t, types.UnknownModel, views[0].Device.Model)
	assert.Equal(t, types.DeviceUnknown, views[0].Device.Type)
}
