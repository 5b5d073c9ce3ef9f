package report

import (
	"encoding/json"
	"testing"

	"krakenreport/internal/graph"
	"krakenreport/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func step(name string, status types.Status) types.StepRecord {
	return types.StepRecord{Keyword: "Then ", Name: name, Status: status, DurationNanos: 1_500_000_000}
}

func twoDeviceRun() *types.Run {
	return &types.Run{
		ExecutionID: "exec-1",
		Devices: []*types.Device{
			{ID: "emulator-5554", Model: "Pixel 7", Type: types.DeviceAndroid},
			{ID: "emulator-5556", Model: "Galaxy S22", Type: types.DeviceAndroid},
		},
		Logs: []types.DeviceLog{
			{{Key: "chat", Name: "Chat", Steps: []types.StepRecord{
				step(`I send a signal to user 2 containing "ping"`, types.StatusPassed),
			}}},
			{{Key: "chat", Name: "Chat", Steps: []types.StepRecord{
				step(`I wait for a signal containing "ping"`, types.StatusPassed),
			}}},
		},
	}
}

func TestGenerate_SignalScenario(t *testing.T) {
	rep, err := NewGenerator(nil).Generate(twoDeviceRun())
	require.NoError(t, err)

	require.Len(t, rep.Graph, 1)
	g := rep.Graph[0]
	assert.Equal(t, "Chat", g.Name)
	require.Len(t, g.Nodes, 2, "root plus one shared signal node")
	require.Len(t, g.Links, 2)
	assert.Equal(t, "emulator-5554", g.Links[0].Owner)
	assert.Equal(t, "emulator-5556", g.Links[1].Owner)
	assert.Equal(t, g.Links[0].Target, g.Links[1].Target)

	assert.Equal(t, types.Metrics{TotalDevices: 2, TotalScenarios: 2, PassedScenarios: 2}, rep.Metrics)
}

func TestGenerate_FailureTruncation(t *testing.T) {
	run := &types.Run{
		Devices: []*types.Device{{ID: "web-1", Model: "chrome", Type: types.DeviceWeb}},
		Logs: []types.DeviceLog{{{Key: "checkout", Name: "Checkout", Steps: []types.StepRecord{
			step("I open the shop", types.StatusPassed),
			step("I add an item", types.StatusPassed),
			step("I pay", types.StatusFailed),
			step("I see the receipt", types.StatusPassed),
		}}}},
	}
	rep, err := NewGenerator(nil).Generate(run)
	require.NoError(t, err)

	assert.Len(t, rep.Graph[0].Nodes, 4)
	assert.Len(t, rep.FeaturesReport["checkout"].Devices["web-1"], 3)
	assert.Equal(t, types.Metrics{TotalDevices: 1, TotalScenarios: 1, FailedScenarios: 1}, rep.Metrics)
}

func TestGenerate_MissingDevice(t *testing.T) {
	run := &types.Run{
		Devices: []*types.Device{nil, {ID: "b", Model: "iPhone", Type: types.DeviceIOS}},
		Logs: []types.DeviceLog{nil, {{Key: "login", Name: "Login", Steps: []types.StepRecord{
			step("I log in", types.StatusPassed),
		}}}},
	}
	rep, err := NewGenerator(nil).Generate(run)
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Metrics.TotalDevices)
	require.Len(t, rep.Devices, 1)
	assert.Equal(t, 2, rep.Devices[0].User)
	assert.Equal(t, []string{"b"}, rep.FeaturesReport["login"].DeviceOrder())
	for _, l := range rep.Graph[0].Links {
		assert.Equal(t, "b", l.Owner)
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	gen := NewGenerator(graph.DefaultClassifier())
	first, err := gen.Generate(twoDeviceRun())
	require.NoError(t, err)
	second, err := gen.Generate(twoDeviceRun())
	require.NoError(t, err)

	a, err := Encode(first, true)
	require.NoError(t, err)
	b, err := Encode(second, true)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestGenerate_FeatureOrderFollowsFirstMerge(t *testing.T) {
	run := &types.Run{
		Devices: []*types.Device{{ID: "a", Model: "A"}, {ID: "b", Model: "B"}},
		Logs: []types.DeviceLog{
			{{Key: "zeta", Name: "Zeta", Steps: []types.StepRecord{step("z", types.StatusPassed)}}},
			{
				{Key: "alpha", Name: "Alpha", Steps: []types.StepRecord{step("a", types.StatusPassed)}},
				{Key: "zeta", Name: "Zeta", Steps: []types.StepRecord{step("z", types.StatusPassed)}},
			},
		},
	}
	rep, err := NewGenerator(nil).Generate(run)
	require.NoError(t, err)
	require.Len(t, rep.Graph, 2)
	assert.Equal(t, "Zeta", rep.Graph[0].Name)
	assert.Equal(t, "Alpha", rep.Graph[1].Name)
	assert.Equal(t, []string{"zeta", "alpha"}, rep.FeatureOrder)
}

func TestGenerate_RejectsMismatchedLogs(t *testing.T) {
	_, err := NewGenerator(nil).Generate(&types.Run{Logs: []types.DeviceLog{nil}})
	assert.Error(t, err)
	_, err = NewGenerator(nil).Generate(nil)
	assert.Error(t, err)
}

func TestEncode_FieldNames(t *testing.T) {
	rep, err := NewGenerator(nil).Generate(twoDeviceRun())
	require.NoError(t, err)
	raw, err := Encode(rep, false)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{"metrics", "devices", "featuresReport", "graph"} {
		assert.Contains(t, decoded, key)
	}
	assert.Contains(t, string(decoded["metrics"]), `"passedScenarios":2`)
	assert.Contains(t, string(decoded["graph"]), `"owner_model":"Pixel 7"`)
	assert.Contains(t, string(decoded["featuresReport"]), `"device_model":"Galaxy S22"`)

	data, err := EncodeGraph(rep)
	require.NoError(t, err)
	assert.Equal(t, byte('['), data[0])
}
