// Package merge 将各设备的 feature 步骤日志合并为 featureId → MergedFeature。
package merge

import (
	"strings"

	"krakenreport/internal/logger"
	"krakenreport/internal/tags"
	"krakenreport/internal/types"
)

const unknownStepName = "(unknown)"

// Merge unions the per-device logs into one MergedSet.
// logs[i] belongs to devices[i]; a nil entry means the device produced no log.
// With a non-empty manifest the tag-derived identity drives the merge, otherwise each log's
// feature key does. The returned summaries list every present device followed by
// placeholders for devices the manifest references but the run does not have.
func Merge(devices []*types.Device, logs []types.DeviceLog, manifest []types.ScenarioTag) (*types.MergedSet, []types.DeviceSummary) {
	summaries := types.SummarizeDevices(devices)
	if len(manifest) > 0 {
		set, placeholders := mergeTagged(devices, logs, manifest)
		return set, append(summaries, placeholders...)
	}
	return mergeLogs(devices, logs), summaries
}

func mergeLogs(devices []*types.Device, logs []types.DeviceLog) *types.MergedSet {
	set := types.NewMergedSet()
	for i, device := range devices {
		log := logAt(logs, i)
		if device == nil || log == nil {
			continue
		}
		for _, feature := range log {
			key := featureKey(feature)
			if key == "" {
				logger.Debugf("merge: skip unnamed feature from device %s", device.ID)
				continue
			}
			merged := set.Ensure(key, feature.Name)
			if merged.Name == "" {
				merged.Name = feature.Name
			}
			merged.AppendSteps(device.ID, normalizeSteps(feature.Steps, device.Model))
		}
	}
	for _, merged := range set.Features {
		for id, steps := range merged.Devices {
			merged.Devices[id] = types.TruncateAtFailure(steps)
		}
	}
	return set
}

func mergeTagged(devices []*types.Device, logs []types.DeviceLog, manifest []types.ScenarioTag) (*types.MergedSet, []types.DeviceSummary) {
	set := types.NewMergedSet()
	var placeholders []types.DeviceSummary
	seenPlaceholder := make(map[string]bool)
	for ordinal, scenario := range manifest {
		info := tags.Parse(scenario.Tags, ordinal)
		device := deviceAt(devices, info.DeviceIndex)

		var (
			deviceID string
			steps    []types.StepRecord
		)
		if device == nil {
			ph := types.PlaceholderDevice(info.DeviceIndex)
			deviceID = ph.ID
			if !seenPlaceholder[ph.ID] {
				seenPlaceholder[ph.ID] = true
				placeholders = append(placeholders, ph)
			}
			logger.Debugf("merge: scenario %q references missing device user%d", scenario.Name, info.DeviceIndex+1)
		} else {
			deviceID = device.ID
			if matched, ok := lookupScenario(logs, info.DeviceIndex, scenario.Name); ok {
				steps = normalizeSteps(matched.Steps, device.Model)
			}
		}

		merged := set.Ensure(info.FeatureID, scenario.Name)
		merged.SetSteps(deviceID, types.TruncateAtFailure(steps))
		set.Tagged = append(set.Tagged, types.TaggedScenario{
			Name:      scenario.Name,
			FeatureID: info.FeatureID,
			DeviceID:  deviceID,
			Outcome:   info.Outcome,
		})
	}
	return set, placeholders
}

// lookupScenario 先查所属设备的日志，找不到时按设备顺序查其余设备的日志。
func lookupScenario(logs []types.DeviceLog, owner int, name string) (types.FeatureLog, bool) {
	if matched, ok := findScenario(logAt(logs, owner), name); ok {
		return matched, true
	}
	for i, log := range logs {
		if i == owner {
			continue
		}
		if matched, ok := findScenario(log, name); ok {
			logger.Debugf("merge: scenario %q not in user%d log, using log of user%d", name, owner+1, i+1)
			return matched, true
		}
	}
	return types.FeatureLog{}, false
}

// findScenario locates the feature of log that carries the scenario name.
func findScenario(log types.DeviceLog, name string) (types.FeatureLog, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.FeatureLog{}, false
	}
	for _, feature := range log {
		for _, sc := range feature.ScenarioNames {
			if strings.TrimSpace(sc) == name {
				return feature, true
			}
		}
	}
	for _, feature := range log {
		if strings.TrimSpace(feature.Name) == name {
			return feature, true
		}
	}
	return types.FeatureLog{}, false
}

func normalizeSteps(steps []types.StepRecord, deviceModel string) []types.StepRecord {
	model := strings.TrimSpace(deviceModel)
	out := make([]types.StepRecord, 0, len(steps))
	for _, st := range steps {
		norm := st
		norm.Keyword = strings.TrimSpace(st.Keyword)
		if strings.TrimSpace(norm.Name) == "" {
			norm.Name = unknownStepName
		}
		norm.Status = types.NormalizeStatus(string(st.Status))
		if norm.DurationNanos < 0 {
			norm.DurationNanos = 0
		}
		switch {
		case model != "":
			norm.DeviceModel = model
		case strings.TrimSpace(norm.DeviceModel) == "":
			norm.DeviceModel = types.UnknownModel
		}
		out = append(out, norm)
	}
	return out
}

func featureKey(f types.FeatureLog) string {
	if key := strings.TrimSpace(f.Key); key != "" {
		return key
	}
	return strings.TrimSpace(f.Name)
}

func deviceAt(devices []*types.Device, idx int) *types.Device {
	if idx < 0 || idx >= len(devices) {
		return nil
	}
	return devices[idx]
}

func logAt(logs []types.DeviceLog, idx int) types.DeviceLog {
	if idx < 0 || idx >= len(logs) {
		return nil
	}
	return logs[idx]
}
