// Package community groups people of the co-mention graph into communities.
package community

import (
	"fmt"
	"sort"

	"github.com/agenthands/docket/internal/core/model"
)

const (
	AlgorithmLPA        = "lpa"
	AlgorithmComponents = "components"
)

// Community is a set of at least two node ids.
type Community struct {
	ID      string   `json:"id"`
	Members []string `json:"members"`
	Size    int      `json:"size"`
}

type Detector interface {
	Detect(nodes []string, edges []model.Edge) ([][]string, error)
}

// NewDetector returns the detector registered under algorithm. An empty name
// selects label propagation.
func NewDetector(algorithm string) (Detector, error) {
	switch algorithm {
	case "", AlgorithmLPA:
		return NewLabelPropagationDetector(), nil
	case AlgorithmComponents:
		return &ComponentsDetector{}, nil
	default:
		return nil, fmt.Errorf("unknown community algorithm %q", algorithm)
	}
}

// ComponentsDetector treats every connected component as one community.
type ComponentsDetector struct{}

func (d *ComponentsDetector) Detect(nodes []string, edges []model.Edge) ([][]string, error) {
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n] = true
	}

	adj := make(map[string][]string)
	for _, e := range edges {
		if !known[e.Source] || !known[e.Target] {
			continue
		}
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
	}

	visited := make(map[string]bool)
	var communities [][]string
	for _, n := range nodes {
		if visited[n] {
			continue
		}
		var component []string
		d.dfs(n, adj, visited, &component)
		if len(component) >= 2 {
			communities = append(communities, component)
		}
	}
	return Sorted(communities), nil
}

func (d *ComponentsDetector) dfs(u string, adj map[string][]string, visited map[string]bool, component *[]string) {
	visited[u] = true
	*component = append(*component, u)
	for _, v := range adj[u] {
		if !visited[v] {
			d.dfs(v, adj, visited, component)
		}
	}
}

// Sorted orders members inside each community, then communities by size
// (largest first) and first member.
func Sorted(communities [][]string) [][]string {
	for _, c := range communities {
		sort.Strings(c)
	}
	sort.Slice(communities, func(i, j int) bool {
		if len(communities[i]) != len(communities[j]) {
			return len(communities[i]) > len(communities[j])
		}
		return communities[i][0] < communities[j][0]
	})
	return communities
}

// Label assigns ids community_1, community_2, ... in order.
func Label(communities [][]string) []Community {
	out := make([]Community, 0, len(communities))
	for i, members := range communities {
		out = append(out, Community{
			ID:      fmt.Sprintf("community_%d", i+1),
			Members: members,
			Size:    len(members),
		})
	}
	return out
}
