// Package tags 解析场景 tag 集合：所属设备、结论以及 feature id。
package tags

import (
	"fmt"
	"strconv"
	"strings"

	"krakenreport/internal/types"
)

const (
	userPrefix = "@user"
	idPrefix   = "@id"
	idValue    = "@id:"
	passedTag  = "@passed"
)

// Info 为单个场景 tag 集合的解析结果。
type Info struct {
	FeatureID   string
	DeviceIndex int
	Outcome     types.Status
}

// Parse extracts feature identity, owning device index and outcome from a scenario's tags.
// ordinal is the scenario's position in the manifest and backs the fallback feature id.
func Parse(tags []string, ordinal int) Info {
	return Info{
		FeatureID:   FeatureID(tags, ordinal),
		DeviceIndex: DeviceIndex(tags),
		Outcome:     Outcome(tags),
	}
}

// DeviceIndex returns N-1 for the first @user<N> tag, or 0.
func DeviceIndex(tags []string) int {
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if !strings.HasPrefix(tag, userPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(tag, userPrefix))
		if err != nil || n < 1 {
			return 0
		}
		return n - 1
	}
	return 0
}

// FeatureID returns the value of the first @id:<x> tag, or feature-<ordinal>.
func FeatureID(tags []string, ordinal int) string {
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if !strings.HasPrefix(tag, idPrefix) {
			continue
		}
		if strings.HasPrefix(tag, idValue) {
			if v := strings.TrimSpace(strings.TrimPrefix(tag, idValue)); v != "" {
				return v
			}
		}
		break
	}
	return Fallback(ordinal)
}

// Fallback is the position-derived feature id.
func Fallback(ordinal int) string {
	return fmt.Sprintf("feature-%d", ordinal)
}

// Outcome is passed when the tag set carries @passed, failed otherwise.
func Outcome(tags []string) types.Status {
	for _, tag := range tags {
		if strings.TrimSpace(tag) == passedTag {
			return types.StatusPassed
		}
	}
	return types.StatusFailed
}
