package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateAtFailure(t *testing.T) {
	steps := []StepRecord{
		{Name: "a", Status: StatusPassed},
		{Name: "b", Status: StatusUnknown},
		{Name: "c", Status: StatusFailed},
		{Name: "d", Status: StatusPassed},
	}
	got := TruncateAtFailure(steps)
	assert.Len(t, got, 3)
	assert.Equal(t, "c", got[2].Name)

	assert.Len(t, TruncateAtFailure(steps[:2]), 2)
	assert.Empty(t, TruncateAtFailure(nil))
}

func TestAllPassed(t *testing.T) {
	assert.False(t, AllPassed(nil))
	assert.True(t, AllPassed([]StepRecord{{Status: StatusPassed}}))
	assert.False(t, AllPassed([]StepRecord{{Status: StatusPassed}, {Status: StatusUnknown}}))
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, StatusPassed, NormalizeStatus(" PASSED "))
	assert.Equal(t, StatusFailed, NormalizeStatus("failed"))
	assert.Equal(t, StatusUnknown, NormalizeStatus("skipped"))
	assert.Equal(t, StatusUnknown, NormalizeStatus(""))
}

func TestDeviceOrderKeepsMergeOrder(t *testing.T) {
	f := NewMergedFeature("chat", "Chat")
	f.SetSteps("z-device", nil)
	f.AppendSteps("a-device", []StepRecord{{Name: "x"}})
	f.AppendSteps("z-device", []StepRecord{{Name: "y"}})
	f.Devices["m-late"] = nil
	f.Devices["b-late"] = nil

	assert.Equal(t, []string{"z-device", "a-device", "b-late", "m-late"}, f.DeviceOrder())
	assert.Len(t, f.Devices["z-device"], 1)
}

func TestSummarizeDevicesKeepsSlots(t *testing.T) {
	devices := []*Device{nil, {ID: "b"}, {ID: "c", Model: "Pixel", Type: DeviceAndroid}}
	got := SummarizeDevices(devices)
	assert.Len(t, got, 2)
	assert.Equal(t, 2, got[0].User)
	assert.Equal(t, UnknownModel, got[0].Model)
	assert.Equal(t, DeviceUnknown, got[0].Type)
	assert.Equal(t, 3, got[1].User)
	assert.Equal(t, 2, CountDevices(devices))
}

func TestPlaceholderDevice(t *testing.T) {
	ph := PlaceholderDevice(2)
	assert.Equal(t, "unknown-user3", ph.ID)
	assert.Equal(t, 3, ph.User)
	assert.True(t, ph.Placeholder)
}

func TestMergedSetEnsureOrder(t *testing.T) {
	s := NewMergedSet()
	s.Ensure("b", "B")
	s.Ensure("a", "A")
	s.Ensure("b", "ignored")
	ordered := s.Ordered()
	assert.Len(t, ordered, 2)
	assert.Equal(t, "B", ordered[0].Name)
	assert.False(t, s.TagManifestMode())
}
