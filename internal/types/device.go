package types

import "fmt"

// DeviceType 在构造设备记录时显式指定，替代运行时类型判断。
type DeviceType string

const (
	DeviceAndroid DeviceType = "AndroidDevice"
	DeviceIOS     DeviceType = "IosDevice"
	DeviceWeb     DeviceType = "WebDevice"
	DeviceUnknown DeviceType = "UnknownDevice"
)

const UnknownModel = "Unknown"

// Device 描述参与一次运行的设备，外部提供且不可变。
type Device struct {
	ID           string     `json:"id"`
	Model        string     `json:"model"`
	SDKVersion   string     `json:"sdk"`
	ScreenWidth  int        `json:"screen_width"`
	ScreenHeight int        `json:"screen_height"`
	Type         DeviceType `json:"type"`
}

// DeviceSummary 是报告中的设备条目，User 为 1 起始的用户序号。
type DeviceSummary struct {
	User         int        `json:"user"`
	ID           string     `json:"id"`
	Model        string     `json:"model"`
	SDK          string     `json:"sdk"`
	Type         DeviceType `json:"type"`
	ScreenWidth  int        `json:"screen_width"`
	ScreenHeight int        `json:"screen_height"`
	Placeholder  bool       `json:"placeholder,omitempty"`
}

// Summarize builds the summary of d as user number user.
func (d Device) Summarize(user int) DeviceSummary {
	typ := d.Type
	if typ == "" {
		typ = DeviceUnknown
	}
	model := d.Model
	if model == "" {
		model = UnknownModel
	}
	return DeviceSummary{
		User:         user,
		ID:           d.ID,
		Model:        model,
		SDK:          d.SDKVersion,
		Type:         typ,
		ScreenWidth:  d.ScreenWidth,
		ScreenHeight: d.ScreenHeight,
	}
}

// PlaceholderDevice stands in for a device referenced by the manifest but absent from the run.
func PlaceholderDevice(deviceIndex int) DeviceSummary {
	return DeviceSummary{
		User:        deviceIndex + 1,
		ID:          fmt.Sprintf("unknown-user%d", deviceIndex+1),
		Model:       UnknownModel,
		Type:        DeviceUnknown,
		Placeholder: true,
	}
}

// SummarizeDevices lists non-nil devices; User keeps the 1-based slot position.
func SummarizeDevices(devices []*Device) []DeviceSummary {
	out := make([]DeviceSummary, 0, len(devices))
	for i, d := range devices {
		if d == nil {
			continue
		}
		out = append(out, d.Summarize(i+1))
	}
	return out
}

// CountDevices returns the number of non-nil devices.
func CountDevices(devices []*Device) int {
	n := 0
	for _, d := range devices {
		if d != nil {
			n++
		}
	}
	return n
}

// FeatureLog 是设备日志中一个 feature 的解析结果。
type FeatureLog struct {
	// Key 为显式 id，缺失时等于 feature 名称。
	Key           string
	Name          string
	ScenarioNames []string
	Steps         []StepRecord
}

// DeviceLog 为单个设备的有序 feature 列表；nil 表示该设备没有日志。
type DeviceLog []FeatureLog

// ScenarioTag 是 tag manifest 中的一个场景。
type ScenarioTag struct {
	Name string   `json:"name" yaml:"name"`
	Tags []string `json:"tags" yaml:"tags"`
}

// Run 描述一次完整的多设备测试运行。
type Run struct {
	ExecutionID string
	Devices     []*Device
	// Logs 与 Devices 按下标对应。
	Logs     []DeviceLog
	Manifest []ScenarioTag
}
