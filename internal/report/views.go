package report

import (
	"krakenreport/internal/types"

	"github.com/shopspring/decimal"
)

// FeatureView 是单个设备在单个 feature 上的报告视图（feature_report.html）。
type FeatureView struct {
	FeatureID string
	Name      string
	Device    types.DeviceSummary
	Status    types.Status
	Duration  int64
	Steps     []types.StepRecord

	TotalScenarios  int
	PassedScenarios int
	FailedScenarios int

	PassedFeaturesPercentage  string
	FailedFeaturesPercentage  string
	PassedScenariosPercentage string
	FailedScenariosPercentage string
}

// Passed reports whether the device's path for the feature passed.
func (v FeatureView) Passed() bool { return v.Status == types.StatusPassed }

// FormattedDuration renders the total duration in seconds.
func (v FeatureView) FormattedDuration() string { return FormatDuration(v.Duration) }

// ScenarioView 是 features_report/<featureId>.html 的数据。
type ScenarioView struct {
	FeatureID string
	Name      string
	Tags      []string
	Device    types.DeviceSummary
	Steps     []types.StepRecord
	Duration  int64
}

func (v ScenarioView) Passed() bool {
	for _, t := range v.Tags {
		if t == "@passed" {
			return true
		}
	}
	return false
}

func (v ScenarioView) FormattedDuration() string { return FormatDuration(v.Duration) }

// FeatureViews derives one view per feature × device, in feature then device merge order.
func FeatureViews(r *types.ConsolidatedReport) []FeatureView {
	var out []FeatureView
	for _, f := range r.OrderedFeatures() {
		for _, deviceID := range f.DeviceOrder() {
			steps := f.Devices[deviceID]
			status := pathStatus(steps)
			passed := 0
			if status == types.StatusPassed {
				passed = 1
			}
			out = append(out, FeatureView{
				FeatureID:                 f.ID,
				Name:                      f.Name,
				Device:                    lookupDevice(r, deviceID),
				Status:                    status,
				Duration:                  types.TotalDuration(steps),
				Steps:                     steps,
				TotalScenarios:            1,
				PassedScenarios:           passed,
				FailedScenarios:           1 - passed,
				PassedFeaturesPercentage:  Percentage(passed, 1),
				FailedFeaturesPercentage:  Percentage(1-passed, 1),
				PassedScenariosPercentage: Percentage(passed, 1),
				FailedScenariosPercentage: Percentage(1-passed, 1),
			})
		}
	}
	return out
}

// ScenarioViews derives the per-scenario pages, tagged @passed/@failed from the steps.
func ScenarioViews(r *types.ConsolidatedReport) []ScenarioView {
	var out []ScenarioView
	for _, f := range r.OrderedFeatures() {
		for _, deviceID := range f.DeviceOrder() {
			steps := f.Devices[deviceID]
			tag := "@failed"
			if pathStatus(steps) == types.StatusPassed {
				tag = "@passed"
			}
			out = append(out, ScenarioView{
				FeatureID: f.ID,
				Name:      f.Name,
				Tags:      []string{tag},
				Device:    lookupDevice(r, deviceID),
				Steps:     steps,
				Duration:  types.TotalDuration(steps),
			})
		}
	}
	return out
}

// Percentage renders part/total*100 with two decimals; a zero total yields "0.00".
func Percentage(part, total int) string {
	if total <= 0 {
		return decimal.Zero.StringFixed(2)
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		StringFixed(2)
}

// FormatDuration renders nanoseconds as seconds with two decimals, e.g. "1.50s".
func FormatDuration(nanos int64) string {
	return decimal.New(nanos, -9).StringFixed(2) + "s"
}

func pathStatus(steps []types.StepRecord) types.Status {
	if types.AllPassed(steps) {
		return types.StatusPassed
	}
	return types.StatusFailed
}

func lookupDevice(r *types.ConsolidatedReport, id string) types.DeviceSummary {
	if d, ok := r.Device(id); ok {
		return d
	}
	return types.DeviceSummary{ID: id, Model: types.UnknownModel, Type: types.DeviceUnknown}
}
