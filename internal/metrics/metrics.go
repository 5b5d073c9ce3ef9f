// Package metrics 从合并结果计算运行级汇总。
package metrics

import "krakenreport/internal/types"

// Aggregate computes run totals from the device list and the merged features.
//
// In log mode every feature × device pairing with at least one step is a scenario.
// In tag-manifest mode every tagged scenario counts; a pairing without steps is classified
// by its tag outcome. Passed and failed always sum to the total.
func Aggregate(devices []*types.Device, set *types.MergedSet) types.Metrics {
	m := types.Metrics{TotalDevices: types.CountDevices(devices)}
	if set == nil {
		return m
	}
	if set.TagManifestMode() {
		for _, sc := range set.Tagged {
			passed := sc.Outcome == types.StatusPassed
			if f, ok := set.Get(sc.FeatureID); ok {
				if steps := f.Devices[sc.DeviceID]; len(steps) > 0 {
					passed = types.AllPassed(steps)
				}
			}
			tally(&m, passed)
		}
		return m
	}
	for _, f := range set.Ordered() {
		for _, id := range f.DeviceOrder() {
			steps := f.Devices[id]
			if len(steps) == 0 {
				continue
			}
			tally(&m, types.AllPassed(steps))
		}
	}
	return m
}

func tally(m *types.Metrics, passed bool) {
	m.TotalScenarios++
	if passed {
		m.PassedScenarios++
		return
	}
	m.FailedScenarios++
}
