package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"krakenreport/internal/types"
)

// LoadDevices reads a devices.json list. Devices are placed at slot user-1; gaps stay nil.
func LoadDevices(path string) ([]*types.Device, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read device list: %w", err)
	}
	return ParseDevices(raw)
}

// maxUserGap 限制 user 编号可超出条目数的空槽数量。
const maxUserGap = 16

// ParseDevices places each entry at slot user-1; user <= 0 appends.
func ParseDevices(raw []byte) ([]*types.Device, error) {
	var entries []types.DeviceSummary
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse device list: %w", err)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].User < entries[j].User })
	var devices []*types.Device
	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("device list entry#%d missing id", i+1)
		}
		if e.User > len(entries)+maxUserGap {
			return nil, fmt.Errorf("device list: user %d out of range", e.User)
		}
		slot := e.User - 1
		if e.User <= 0 {
			slot = len(devices)
		}
		for len(devices) <= slot {
			devices = append(devices, nil)
		}
		if devices[slot] != nil {
			return nil, fmt.Errorf("device list: duplicate user %d", e.User)
		}
		typ := e.Type
		if typ == "" {
			typ = types.DeviceUnknown
		}
		devices[slot] = &types.Device{
			ID:           e.ID,
			Model:        e.Model,
			SDKVersion:   e.SDK,
			ScreenWidth:  e.ScreenWidth,
			ScreenHeight: e.ScreenHeight,
			Type:         typ,
		}
	}
	return devices, nil
}
