package community

import (
	"sort"

	"github.com/agenthands/docket/internal/core/model"
)

// LabelPropagationDetector implements community detection using Label Propagation Algorithm (LPA).
type LabelPropagationDetector struct {
	MaxIterations int
}

func NewLabelPropagationDetector() *LabelPropagationDetector {
	return &LabelPropagationDetector{
		MaxIterations: 20,
	}
}

// Detect runs label propagation over an undirected graph weighted by edge
// weight; parallel edges add up. Nodes are visited in the given order and ties
// go to the lexicographically largest label, so the result is deterministic.
func (d *LabelPropagationDetector) Detect(nodes []string, edges []model.Edge) ([][]string, error) {
	if len(nodes) == 0 {
		return nil, nil
	}

	adj := make(map[string]map[string]float64, len(nodes))
	labels := make(map[string]string, len(nodes))
	order := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if _, dup := adj[n]; dup {
			continue
		}
		adj[n] = make(map[string]float64)
		labels[n] = n
		order = append(order, n)
	}

	for _, e := range edges {
		if _, ok := adj[e.Source]; !ok {
			continue
		}
		if _, ok := adj[e.Target]; !ok {
			continue
		}
		if e.Source == e.Target {
			continue
		}
		w := e.Weight
		if w <= 0 {
			w = 1
		}
		adj[e.Source][e.Target] += w
		adj[e.Target][e.Source] += w
	}

	for iter := 0; iter < d.MaxIterations; iter++ {
		changeCount := 0

		for _, u := range order {
			neighbors := adj[u]
			if len(neighbors) == 0 {
				continue
			}

			labelWeights := make(map[string]float64)
			maxWeight := 0.0
			for v, weight := range neighbors {
				label := labels[v]
				labelWeights[label] += weight
				if labelWeights[label] > maxWeight {
					maxWeight = labelWeights[label]
				}
			}

			var candidates []string
			for label, weight := range labelWeights {
				if weight == maxWeight {
					candidates = append(candidates, label)
				}
			}
			sort.Strings(candidates)
			bestLabel := candidates[len(candidates)-1]

			if labels[u] != bestLabel {
				labels[u] = bestLabel
				changeCount++
			}
		}

		if changeCount == 0 {
			break
		}
	}

	clusters := make(map[string][]string)
	for _, n := range order {
		clusters[labels[n]] = append(clusters[labels[n]], n)
	}

	var communities [][]string
	for _, cluster := range clusters {
		if len(cluster) >= 2 {
			communities = append(communities, cluster)
		}
	}

	return Sorted(communities), nil
}
