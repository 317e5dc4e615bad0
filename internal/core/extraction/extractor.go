// Package extraction finds people, organizations, emails and URLs in document
// text and resolves people against a known-identity index.
package extraction

import (
	"math"

	"github.com/agenthands/docket/internal/core/dedupe"
	"github.com/agenthands/docket/internal/core/fingerprint"
	"github.com/agenthands/docket/internal/core/identity"
	"github.com/agenthands/docket/internal/core/model"
)

const DefaultMatchThreshold = 0.85

type Options struct {
	MatchThreshold float64
	StopTerms      []string
	BadLastNames   []string
}

func DefaultOptions() Options {
	return Options{
		MatchThreshold: DefaultMatchThreshold,
		StopTerms:      DefaultStopTerms,
		BadLastNames:   DefaultBadLastNames,
	}
}

type Extractor struct {
	Index          *identity.Index
	Deduplicator   *dedupe.Deduplicator
	MatchThreshold float64
	filter         nameFilter
}

func NewExtractor(index *identity.Index, dedup *dedupe.Deduplicator, opts Options) *Extractor {
	if index == nil {
		index = identity.NewIndex(nil)
	}
	if dedup == nil {
		dedup = dedupe.NewDeduplicator(dedupe.DefaultThreshold, dedupe.PolicyFirstMember)
	}
	return &Extractor{
		Index:          index,
		Deduplicator:   dedup,
		MatchThreshold: opts.MatchThreshold,
		filter:         newNameFilter(opts.StopTerms, opts.BadLastNames),
	}
}

// Extract runs every pattern over text, resolves the person candidates and
// builds co-mention edges between the resolved identities.
func (e *Extractor) Extract(text string) model.Entities {
	ents := model.Entities{
		Organizations: FindOrganizations(text),
		Emails:        FindEmails(text),
		URLs:          FindURLs(text),
	}

	var unresolved []string
	for _, name := range e.Candidates(text) {
		if p, ok := e.Canonicalize(name); ok {
			ents.Resolved = append(ents.Resolved, p)
		} else {
			unresolved = append(unresolved, fingerprint.Normalize(name))
		}
	}
	ents.Unresolved = e.Deduplicator.ClusterNames(unresolved)
	ents.Edges = BuildEdges(ents.IdentityIDs())
	return ents
}

// Candidates is the sorted union of cleaned pattern matches and aliases of
// known identities found verbatim in text.
func (e *Extractor) Candidates(text string) []string {
	set := make(map[string]bool)
	for _, n := range e.filter.clean(FindPeople(text)) {
		set[n] = true
	}
	for _, n := range e.Index.FindInText(text) {
		set[n] = true
	}
	return sortedKeys(set)
}

// Canonicalize resolves name when its best alias score reaches the match
// threshold.
func (e *Extractor) Canonicalize(name string) (model.ResolvedPerson, bool) {
	norm := fingerprint.Normalize(StripMiddleInitial(name))
	id, score, ok := e.Index.Best(norm)
	if !ok || score < e.MatchThreshold {
		return model.ResolvedPerson{}, false
	}
	return model.ResolvedPerson{
		IdentityID:  id.ID,
		Confidence:  round(score, 3),
		MatchedText: name,
	}, true
}

// BuildEdges returns one co_mentioned edge per unordered pair of distinct ids.
func BuildEdges(ids []string) []model.Edge {
	var edges []model.Edge
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[i] == ids[j] {
				continue
			}
			edges = append(edges, model.Edge{
				Source:       ids[i],
				Target:       ids[j],
				Relationship: model.RelationshipCoMentioned,
				Weight:       1,
			})
		}
	}
	return edges
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
