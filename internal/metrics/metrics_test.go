package metrics

import (
	"testing"

	"krakenreport/internal/types"

	"github.com/stretchr/testify/assert"
)

func step(status types.Status) types.StepRecord {
	return types.StepRecord{Name: "step", Status: status}
}

func TestAggregate_LogMode(t *testing.T) {
	devices := []*types.Device{nil, {ID: "b", Model: "Pixel"}, {ID: "c", Model: "iPhone"}}
	set := types.NewMergedSet()
	f := set.Ensure("login", "Login")
	f.SetSteps("b", []types.StepRecord{step(types.StatusPassed), step(types.StatusPassed)})
	f.SetSteps("c", []types.StepRecord{step(types.StatusPassed), step(types.StatusFailed)})
	g := set.Ensure("chat", "Chat")
	g.SetSteps("b", []types.StepRecord{step(types.StatusUnknown)})
	g.SetSteps("c", nil)

	m := Aggregate(devices, set)
	assert.Equal(t, types.Metrics{
		TotalDevices:    2,
		TotalScenarios:  3,
		PassedScenarios: 1,
		FailedScenarios: 2,
	}, m)
	assert.Equal(t, m.TotalScenarios, m.PassedScenarios+m.FailedScenarios)
}

func TestAggregate_TagManifestMode(t *testing.T) {
	devices := []*types.Device{{ID: "a", Model: "Pixel"}}
	set := types.NewMergedSet()
	f := set.Ensure("feature-0", "Send message")
	f.SetSteps("a", []types.StepRecord{step(types.StatusPassed)})
	g := set.Ensure("feature-1", "Receive message")
	g.SetSteps("unknown-user2", nil)
	h := set.Ensure("feature-2", "Logout")
	h.SetSteps("a", nil)
	set.Tagged = []types.TaggedScenario{
		{FeatureID: "feature-0", DeviceID: "a", Outcome: types.StatusFailed},
		{FeatureID: "feature-1", DeviceID: "unknown-user2", Outcome: types.StatusFailed},
		{FeatureID: "feature-2", DeviceID: "a", Outcome: types.StatusPassed},
	}

	m := Aggregate(devices, set)
	assert.Equal(t, 1, m.TotalDevices)
	assert.Equal(t, 3, m.TotalScenarios)
	// steps win over tags when present; empty pairings fall back to the tag outcome
	assert.Equal(t, 2, m.PassedScenarios)
	assert.Equal(t, 1, m.FailedScenarios)
}

func TestAggregate_NilSet(t *testing.T) {
	m := Aggregate([]*types.Device{{ID: "a"}}, nil)
	assert.Equal(t, types.Metrics{TotalDevices: 1}, m)
}
