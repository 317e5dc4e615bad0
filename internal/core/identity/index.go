// Package identity holds the read-only table of known people used to
// resolve extracted names.
package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/agenthands/docket/internal/core/model"
	"github.com/agenthands/docket/internal/core/similarity"
)

// Index is safe for concurrent readers; it is never mutated after NewIndex.
type Index struct {
	identities []model.Identity
}

func NewIndex(identities []model.Identity) *Index {
	cp := make([]model.Identity, 0, len(identities))
	for _, id := range identities {
		if id.ID == "" || len(id.Names) == 0 {
			continue
		}
		cp = append(cp, model.Identity{ID: id.ID, Names: append([]string(nil), id.Names...)})
	}
	return &Index{identities: cp}
}

func (x *Index) Len() int {
	return len(x.identities)
}

func (x *Index) Identities() []model.Identity {
	return x.identities
}

// FindInText returns, per identity, the first alias that occurs in text
// ignoring case.
func (x *Index) FindInText(text string) []string {
	low := strings.ToLower(text)
	var hits []string
	for _, id := range x.identities {
		for _, name := range id.Names {
			if name != "" && strings.Contains(low, strings.ToLower(name)) {
				hits = append(hits, name)
				break
			}
		}
	}
	return hits
}

// Best scores name against every alias. Ties keep the earliest alias.
func (x *Index) Best(name string) (model.Identity, float64, bool) {
	var best model.Identity
	bestScore := 0.0
	found := false
	for _, id := range x.identities {
		for _, alias := range id.Names {
			if s := similarity.Ratio(name, alias); s > bestScore {
				bestScore = s
				best = id
				found = true
			}
		}
	}
	return best, bestScore, found
}

// LoadJSON reads a JSON array of {"id": ..., "names": [...]} objects.
func LoadJSON(path string) ([]model.Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read identities file '%s': %w", path, err)
	}
	var ids []model.Identity
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to parse identities file '%s': %w", path, err)
	}
	return ids, nil
}
