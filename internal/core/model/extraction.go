package model

type ResolvedPerson struct {
	IdentityID  string  `json:"identity_id"`
	Confidence  float64 `json:"confidence"`
	MatchedText string  `json:"matched_text"`
}

// UnresolvedCluster is a group of normalized names believed to refer to the
// same unknown person.
type UnresolvedCluster []string

type Entities struct {
	Resolved      []ResolvedPerson    `json:"resolved"`
	Unresolved    []UnresolvedCluster `json:"unresolved"`
	Organizations []string            `json:"organizations"`
	Emails        []string            `json:"emails"`
	URLs          []string            `json:"urls"`
	Edges         []Edge              `json:"edges"`
}

// IdentityIDs returns the resolved identity ids without duplicates, in the
// order they were resolved.
func (e Entities) IdentityIDs() []string {
	seen := make(map[string]bool, len(e.Resolved))
	var ids []string
	for _, r := range e.Resolved {
		if seen[r.IdentityID] {
			continue
		}
		seen[r.IdentityID] = true
		ids = append(ids, r.IdentityID)
	}
	return ids
}
