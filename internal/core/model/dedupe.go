package model

type GroupKind string

const (
	GroupExact   GroupKind = "exact"
	GroupNear    GroupKind = "near"
	GroupPartial GroupKind = "partial"
)

// DuplicateGroup holds indices into ClusterResult.Records. Members[0] is the
// canonical document of the group.
type DuplicateGroup struct {
	Kind      GroupKind
	ExactHash string
	Members   []int
}

func (g DuplicateGroup) Canonical() int {
	return g.Members[0]
}

// ClusterResult is the output of the cluster builder. Records is the arena of
// documents that passed the page filter, in scan order.
type ClusterResult struct {
	Records    []DocumentRecord
	Groups     []DuplicateGroup
	Singletons []int
}

// Canonicals returns the index of every canonical document: the first member
// of each group followed by every singleton.
func (c ClusterResult) Canonicals() []int {
	out := make([]int, 0, len(c.Groups)+len(c.Singletons))
	for _, g := range c.Groups {
		out = append(out, g.Canonical())
	}
	return append(out, c.Singletons...)
}

// GroupOf returns the group whose canonical is idx, if any.
func (c ClusterResult) GroupOf(idx int) (DuplicateGroup, bool) {
	for _, g := range c.Groups {
		if g.Canonical() == idx {
			return g, true
		}
	}
	return DuplicateGroup{}, false
}
