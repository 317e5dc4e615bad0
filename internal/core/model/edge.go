package model

const RelationshipCoMentioned = "co_mentioned"

// Edge connects two resolved identities mentioned in the same document.
type Edge struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	Relationship string  `json:"relationship"`
	Weight       float64 `json:"weight"`
}

type EdgeRecord struct {
	EdgeID       string  `json:"edge_id"`
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	Relationship string  `json:"relationship"`
	Weight       float64 `json:"weight"`
}
