// Package dedupe groups names that could not be resolved to a known identity
// into clusters that likely refer to the same person.
package dedupe

import (
	"fmt"

	"github.com/agenthands/docket/internal/core/model"
	"github.com/agenthands/docket/internal/core/similarity"
)

type Policy string

const (
	// PolicyFirstMember compares a name only against each cluster's first
	// member and joins the first cluster that matches.
	PolicyFirstMember Policy = "first_member"
	// PolicyTransitive links every matching pair and returns connected components.
	PolicyTransitive Policy = "transitive"

	DefaultThreshold = 0.85
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyFirstMember:
		return PolicyFirstMember, nil
	case PolicyTransitive:
		return PolicyTransitive, nil
	}
	return "", fmt.Errorf("unknown unresolved clustering policy %q", s)
}

type Deduplicator struct {
	Threshold float64
	Policy    Policy
	Score     func(a, b string) float64
}

func NewDeduplicator(threshold float64, policy Policy) *Deduplicator {
	if policy == "" {
		policy = PolicyFirstMember
	}
	return &Deduplicator{
		Threshold: threshold,
		Policy:    policy,
		Score:     similarity.Ratio,
	}
}

// ClusterNames partitions names. Cluster order follows the first appearance
// of each cluster's first member, members keep input order.
func (d *Deduplicator) ClusterNames(names []string) []model.UnresolvedCluster {
	if len(names) == 0 {
		return nil
	}
	if d.Policy == PolicyTransitive {
		return d.transitive(names)
	}
	return d.firstMember(names)
}

func (d *Deduplicator) firstMember(names []string) []model.UnresolvedCluster {
	var clusters []model.UnresolvedCluster
	for _, name := range names {
		placed := false
		for i := range clusters {
			if d.Score(name, clusters[i][0]) >= d.Threshold {
				clusters[i] = append(clusters[i], name)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, model.UnresolvedCluster{name})
		}
	}
	return clusters
}

func (d *Deduplicator) transitive(names []string) []model.UnresolvedCluster {
	parent := make([]int, len(names))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		// keep the smaller index as root so cluster order is stable
		if rb < ra {
			ra, rb = rb, ra
		}
		parent[rb] = ra
	}

	for i := range names {
		for j := i + 1; j < len(names); j++ {
			if d.Score(names[i], names[j]) >= d.Threshold {
				union(i, j)
			}
		}
	}

	pos := make(map[int]int)
	var clusters []model.UnresolvedCluster
	for i, name := range names {
		root := find(i)
		k, ok := pos[root]
		if !ok {
			k = len(clusters)
			pos[root] = k
			clusters = append(clusters, nil)
		}
		clusters[k] = append(clusters[k], name)
	}
	return clusters
}
