package types

// RootNodeID 是每个 feature 图的合成根节点。
const RootNodeID = "0"

type GraphNode struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Status Status `json:"status,omitempty"`
	Image  string `json:"image,omitempty"`
}

type GraphLink struct {
	Source     string `json:"source"`
	Target     string `json:"target"`
	Owner      string `json:"owner"`
	OwnerModel string `json:"owner_model"`
	Status     Status `json:"status"`
	Weight     int    `json:"value"`
}

// FeatureGraph 是单个 feature 的节点/连线结构。
type FeatureGraph struct {
	Name  string      `json:"name"`
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// Node returns the node with the given id.
func (g FeatureGraph) Node(id string) (GraphNode, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return GraphNode{}, false
}

// LinksOwnedBy returns the links emitted for owner, in emission order.
func (g FeatureGraph) LinksOwnedBy(owner string) []GraphLink {
	var out []GraphLink
	for _, l := range g.Links {
		if l.Owner == owner {
			out = append(out, l)
		}
	}
	return out
}

type Metrics struct {
	TotalDevices    int `json:"totalDevices"`
	TotalScenarios  int `json:"totalScenarios"`
	PassedScenarios int `json:"passedScenarios"`
	FailedScenarios int `json:"failedScenarios"`
}

// ConsolidatedReport 是交给渲染层的唯一数据契约。
type ConsolidatedReport struct {
	Metrics        Metrics                   `json:"metrics"`
	Devices        []DeviceSummary           `json:"devices"`
	FeaturesReport map[string]*MergedFeature `json:"featuresReport"`
	Graph          []FeatureGraph            `json:"graph"`

	// FeatureOrder 保存 feature 首次合并顺序，不参与序列化。
	FeatureOrder []string `json:"-"`
}

// OrderedFeatures returns the features in first-merge order.
func (r *ConsolidatedReport) OrderedFeatures() []*MergedFeature {
	if r == nil {
		return nil
	}
	out := make([]*MergedFeature, 0, len(r.FeatureOrder))
	for _, id := range r.FeatureOrder {
		if f, ok := r.FeaturesReport[id]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Device returns the summary of the device with the given id.
func (r *ConsolidatedReport) Device(id string) (DeviceSummary, bool) {
	if r == nil {
		return DeviceSummary{}, false
	}
	for _, d := range r.Devices {
		if d.ID == id {
			return d, true
		}
	}
	return DeviceSummary{}, false
}
