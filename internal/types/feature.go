package types

// MergedFeature 汇总了所有设备在同一 feature 下记录的步骤。
type MergedFeature struct {
	ID      string                  `json:"-"`
	Name    string                  `json:"name"`
	Devices map[string][]StepRecord `json:"devices"`

	// order 保存设备首次出现的顺序（即设备列表顺序），用于构图。
	order []string
}

// NewMergedFeature returns an empty feature entry.
func NewMergedFeature(id, name string) *MergedFeature {
	return &MergedFeature{
		ID:      id,
		Name:    name,
		Devices: make(map[string][]StepRecord),
	}
}

// SetSteps replaces the step list of deviceID, keeping its first-seen position.
func (f *MergedFeature) SetSteps(deviceID string, steps []StepRecord) {
	if f.Devices == nil {
		f.Devices = make(map[string][]StepRecord)
	}
	if _, ok := f.Devices[deviceID]; !ok {
		f.order = append(f.order, deviceID)
	}
	if steps == nil {
		steps = []StepRecord{}
	}
	f.Devices[deviceID] = steps
}

// AppendSteps appends to the step list of deviceID.
func (f *MergedFeature) AppendSteps(deviceID string, steps []StepRecord) {
	existing, ok := f.Devices[deviceID]
	if !ok {
		f.SetSteps(deviceID, steps)
		return
	}
	f.Devices[deviceID] = append(existing, steps...)
}

// DeviceOrder lists device ids in the order they were merged.
// Entries added directly to Devices without SetSteps are appended in sorted order.
func (f *MergedFeature) DeviceOrder() []string {
	out := make([]string, 0, len(f.Devices))
	seen := make(map[string]bool, len(f.Devices))
	for _, id := range f.order {
		if _, ok := f.Devices[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	if len(out) == len(f.Devices) {
		return out
	}
	return append(out, sortedMissing(f.Devices, seen)...)
}

// TaggedScenario 记录 tag manifest 中一个场景落到的 feature/设备以及其 tag 结论。
type TaggedScenario struct {
	Name      string
	FeatureID string
	DeviceID  string
	Outcome   Status
}

// MergedSet is the featureId → MergedFeature mapping with first-merge order.
type MergedSet struct {
	Features map[string]*MergedFeature
	Order    []string
	// Tagged 仅在 tag manifest 模式下非空，每个 tagged scenario 一项。
	Tagged []TaggedScenario
}

// NewMergedSet returns an empty set.
func NewMergedSet() *MergedSet {
	return &MergedSet{Features: make(map[string]*MergedFeature)}
}

// TagManifestMode reports whether the set was built from a tag manifest.
func (s *MergedSet) TagManifestMode() bool { return len(s.Tagged) > 0 }

// Get returns the feature registered under id.
func (s *MergedSet) Get(id string) (*MergedFeature, bool) {
	f, ok := s.Features[id]
	return f, ok
}

// Ensure returns the feature under id, creating it (and recording its order) when absent.
func (s *MergedSet) Ensure(id, name string) *MergedFeature {
	if f, ok := s.Features[id]; ok {
		return f
	}
	f := NewMergedFeature(id, name)
	s.Features[id] = f
	s.Order = append(s.Order, id)
	return f
}

// Ordered returns the features in first-merge order.
func (s *MergedSet) Ordered() []*MergedFeature {
	out := make([]*MergedFeature, 0, len(s.Order))
	for _, id := range s.Order {
		if f, ok := s.Features[id]; ok {
			out = append(out, f)
		}
	}
	return out
}
