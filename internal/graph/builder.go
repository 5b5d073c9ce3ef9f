// Package graph 为每个 feature 构建节点/连线图：按设备顺序折叠步骤，合并相同载荷的信号节点，
// 并在设备第一次失败处截断其路径。
package graph

import (
	"fmt"
	"strconv"

	"krakenreport/internal/logger"
	"krakenreport/internal/types"
)

// Cursor 是单个设备在构图过程中的当前位置。
// ArrivedViaSignal 标记 LastNode 是共享信号节点；下一步从该节点继续连线，仅用于调试日志。
type Cursor struct {
	LastNode         string
	ArrivedViaSignal bool
}

func startCursor() Cursor {
	return Cursor{LastNode: types.RootNodeID}
}

// Builder owns the nodes and the signal index of exactly one FeatureGraph.
type Builder struct {
	name       string
	classifier *Classifier

	nodes   []types.GraphNode
	byID    map[string]int
	signals map[string]string
	links   []types.GraphLink
	nextID  int
}

// NewBuilder returns a builder seeded with the synthetic root node.
func NewBuilder(name string, classifier *Classifier) *Builder {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	b := &Builder{
		name:       name,
		classifier: classifier,
		byID:       make(map[string]int),
		signals:    make(map[string]string),
		nextID:     1,
	}
	b.nodes = append(b.nodes, types.GraphNode{ID: types.RootNodeID, Label: "", Status: types.StatusPassed})
	b.byID[types.RootNodeID] = 0
	return b
}

// Build walks every device of f in merge order and returns its graph.
func Build(f *types.MergedFeature, classifier *Classifier) types.FeatureGraph {
	if f == nil {
		return NewBuilder("", classifier).Graph()
	}
	b := NewBuilder(f.Name, classifier)
	for _, deviceID := range f.DeviceOrder() {
		b.WalkDevice(deviceID, f.Devices[deviceID])
	}
	return b.Graph()
}

// WalkDevice folds steps through the device cursor, stopping right after the first failure.
func (b *Builder) WalkDevice(deviceID string, steps []types.StepRecord) Cursor {
	cur := startCursor()
	for _, st := range steps {
		cur = b.Step(deviceID, cur, st)
		if st.Failed() {
			break
		}
	}
	return cur
}

// Step applies one step to the graph and returns the advanced cursor.
func (b *Builder) Step(deviceID string, cur Cursor, st types.StepRecord) Cursor {
	cls := b.classifier.Classify(st)
	switch cls.Kind {
	case KindReadSignal:
		id := b.signalNode(cls.Key, readLabel(cls.Key, st.DeviceModel))
		b.link(cur.LastNode, id, deviceID, st)
		return Cursor{LastNode: id, ArrivedViaSignal: true}
	case KindWriteSignal:
		id := b.signalNode(cls.Key, writeLabel(st.Name, cls.Receiver))
		b.link(cur.LastNode, id, deviceID, st)
		return Cursor{LastNode: id, ArrivedViaSignal: true}
	default:
		if cur.ArrivedViaSignal {
			logger.Debugf("graph %s: device %s resumes from signal node %s", b.name, deviceID, cur.LastNode)
		}
		id := b.allocate(types.GraphNode{
			Label:  st.Name,
			Status: st.Status,
			Image:  st.Screenshot,
		})
		b.link(cur.LastNode, id, deviceID, st)
		return Cursor{LastNode: id}
	}
}

// Graph returns a copy of the current graph.
func (b *Builder) Graph() types.FeatureGraph {
	nodes := make([]types.GraphNode, len(b.nodes))
	copy(nodes, b.nodes)
	links := make([]types.GraphLink, len(b.links))
	copy(links, b.links)
	return types.FeatureGraph{Name: b.name, Nodes: nodes, Links: links}
}

// signalNode returns the node registered for key, relabelling it, or allocates one.
func (b *Builder) signalNode(key, label string) string {
	if id, ok := b.signals[key]; ok {
		b.nodes[b.byID[id]].Label = label
		return id
	}
	id := b.allocate(types.GraphNode{Label: label, Status: types.StatusPassed})
	b.signals[key] = id
	return id
}

func (b *Builder) allocate(node types.GraphNode) string {
	node.ID = strconv.Itoa(b.nextID)
	b.nextID++
	b.byID[node.ID] = len(b.nodes)
	b.nodes = append(b.nodes, node)
	return node.ID
}

func (b *Builder) link(source, target, owner string, st types.StepRecord) {
	model := st.DeviceModel
	if model == "" {
		model = types.UnknownModel
	}
	status := st.Status
	if status == "" {
		status = types.StatusUnknown
	}
	b.links = append(b.links, types.GraphLink{
		Source:     source,
		Target:     target,
		Owner:      owner,
		OwnerModel: model,
		Status:     status,
		Weight:     1,
	})
}

func readLabel(payload, receiverModel string) string {
	if receiverModel == "" {
		receiverModel = types.UnknownModel
	}
	return fmt.Sprintf("Signal: %s, Receiver: %s", payload, receiverModel)
}

func writeLabel(description string, receiver int) string {
	if receiver <= 0 {
		return description
	}
	return fmt.Sprintf("%s (receiver: user %d)", description, receiver)
}
