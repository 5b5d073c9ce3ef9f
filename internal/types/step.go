package types

import (
	"sort"
	"strings"
)

// Status 为归一化后的步骤状态。
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusUnknown Status = "unknown"
)

// NormalizeStatus maps a runner status to passed|failed|unknown.
func NormalizeStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(StatusPassed):
		return StatusPassed
	case string(StatusFailed):
		return StatusFailed
	default:
		return StatusUnknown
	}
}

// StepRecord 是单个设备日志中的一条步骤记录。
type StepRecord struct {
	Keyword       string `json:"keyword"`
	Name          string `json:"name"`
	Status        Status `json:"status"`
	DurationNanos int64  `json:"duration"`
	// Screenshot 为 base64 数据，保持原样透传给模板。
	Screenshot  string `json:"image,omitempty"`
	DeviceModel string `json:"device_model"`
}

// Passed reports whether the step passed.
func (s StepRecord) Passed() bool { return s.Status == StatusPassed }

// Failed reports whether the step failed.
func (s StepRecord) Failed() bool { return s.Status == StatusFailed }

// TruncateAtFailure returns steps up to and including the first failed step.
func TruncateAtFailure(steps []StepRecord) []StepRecord {
	for i, st := range steps {
		if st.Failed() {
			return steps[:i+1]
		}
	}
	return steps
}

// AllPassed reports whether every step passed. An empty list is not considered passed.
func AllPassed(steps []StepRecord) bool {
	if len(steps) == 0 {
		return false
	}
	for _, st := range steps {
		if !st.Passed() {
			return false
		}
	}
	return true
}

// TotalDuration sums step durations in nanoseconds.
func TotalDuration(steps []StepRecord) int64 {
	var total int64
	for _, st := range steps {
		total += st.DurationNanos
	}
	return total
}

func sortedMissing(m map[string][]StepRecord, seen map[string]bool) []string {
	var out []string
	for id := range m {
		if !seen[id] {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
