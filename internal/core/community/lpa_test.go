package community

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/docket/internal/core/model"
)

func edge(s, t string) model.Edge {
	return model.Edge{Source: s, Target: t, Relationship: model.RelationshipCoMentioned, Weight: 1}
}

func twoTriangles(bridge bool) ([]string, []model.Edge) {
	nodes := []string{"1", "2", "3", "4", "5", "6"}
	edges := []model.Edge{
		edge("1", "2"), edge("2", "3"), edge("3", "1"),
		edge("4", "5"), edge("5", "6"), edge("6", "4"),
	}
	if bridge {
		edges = append(edges, edge("3", "4"))
	}
	return nodes, edges
}

func TestLPA_DisconnectedComponents(t *testing.T) {
	nodes, edges := twoTriangles(false)

	communities, err := NewLabelPropagationDetector().Detect(nodes, edges)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "2", "3"}, {"4", "5", "6"}}, communities)
}

func TestLPA_BridgeNode(t *testing.T) {
	nodes, edges := twoTriangles(true)

	communities, err := NewLabelPropagationDetector().Detect(nodes, edges)
	require.NoError(t, err)
	// intra-triangle edges outweigh the single bridge
	assert.Equal(t, [][]string{{"1", "2", "3"}, {"4", "5", "6"}}, communities)
}

func TestLPA_LargeClique(t *testing.T) {
	nodes := []string{"1", "2", "3", "4", "5"}
	var edges []model.Edge
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			edges = append(edges, edge(nodes[i], nodes[j]))
		}
	}

	communities, err := NewLabelPropagationDetector().Detect(nodes, edges)
	require.NoError(t, err)
	require.Len(t, communities, 1)
	assert.Len(t, communities[0], 5)
}

func TestLPA_IgnoresSingletonsAndUnknownNodes(t *testing.T) {
	communities, err := NewLabelPropagationDetector().Detect(
		[]string{"a", "b", "lonely"},
		[]model.Edge{edge("a", "b"), edge("a", "ghost"), edge("b", "b")},
	)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}}, communities)

	communities, err = NewLabelPropagationDetector().Detect(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, communities)
}

func TestComponentsDetector(t *testing.T) {
	nodes, edges := twoTriangles(true)

	communities, err := (&ComponentsDetector{}).Detect(nodes, edges)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "2", "3", "4", "5", "6"}}, communities)
}

func TestNewDetector(t *testing.T) {
	d, err := NewDetector("")
	require.NoError(t, err)
	assert.IsType(t, &LabelPropagationDetector{}, d)

	d, err = NewDetector(AlgorithmComponents)
	require.NoError(t, err)
	assert.IsType(t, &ComponentsDetector{}, d)

	_, err = NewDetector("louvain")
	assert.Error(t, err)
}

func TestLabel(t *testing.T) {
	got := Label([][]string{{"a", "b", "c"}, {"d", "e"}})
	assert.Equal(t, []Community{
		{ID: "community_1", Members: []string{"a", "b", "c"}, Size: 3},
		{ID: "community_2", Members: []string{"d", "e"}, Size: 2},
	}, got)
}
