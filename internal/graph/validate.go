package graph

import (
	"fmt"

	"krakenreport/internal/types"
)

// Validate checks the structural guarantees of a feature graph: a root node, unique node
// ids, no dangling link endpoints, and every node reachable from the root.
func Validate(g types.FeatureGraph) error {
	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if ids[n.ID] {
			return fmt.Errorf("graph %q: duplicate node id %s", g.Name, n.ID)
		}
		ids[n.ID] = true
	}
	if !ids[types.RootNodeID] {
		return fmt.Errorf("graph %q: missing root node", g.Name)
	}
	adj := make(map[string][]string, len(g.Nodes))
	for i, l := range g.Links {
		if !ids[l.Source] {
			return fmt.Errorf("graph %q: link#%d source %s not found", g.Name, i, l.Source)
		}
		if !ids[l.Target] {
			return fmt.Errorf("graph %q: link#%d target %s not found", g.Name, i, l.Target)
		}
		adj[l.Source] = append(adj[l.Source], l.Target)
	}
	seen := map[string]bool{types.RootNodeID: true}
	queue := []string{types.RootNodeID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	for _, n := range g.Nodes {
		if !seen[n.ID] {
			return fmt.Errorf("graph %q: node %s unreachable from root", g.Name, n.ID)
		}
	}
	return nil
}
