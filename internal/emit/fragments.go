package emit

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agenthands/docket/internal/core/common"
	"github.com/agenthands/docket/internal/core/model"
)

const (
	personType       = "other"
	organizationType = "organization"
	unknownSource    = "Unknown"
)

// Fragments are the JSON files describing one canonical document.
type Fragments struct {
	Doc    model.DocFragment    `json:"doc"`
	People model.PeopleFragment `json:"people"`
	Orgs   model.OrgFragment    `json:"org"`
	Edges  model.EdgesFragment  `json:"edges"`
}

func DocumentID(dataset, path string) string {
	return fmt.Sprintf("doc_%s_%s", dataset, common.Stem(path))
}

func OrgID(name string) string {
	return "org_" + strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// BuildFragments describes the canonical record at index canonical of res.
func BuildFragments(dataset string, res model.ClusterResult, canonical int, ents model.Entities, includeText bool) Fragments {
	rec := res.Records[canonical]
	docID := DocumentID(dataset, rec.Path)
	ids := ents.IdentityIDs()

	doc := model.DocFragment{
		ID:       docID,
		Title:    common.Stem(rec.Path),
		Source:   unknownSource,
		FilePath: rec.Path,
		Mentions: nonNil(ids),
		SHA256:   rec.ExactHash,
		Emails:   ents.Emails,
		URLs:     ents.URLs,
	}
	if g, ok := res.GroupOf(canonical); ok {
		doc.GroupKind = g.Kind
		for _, m := range g.Members {
			doc.GroupedFiles = append(doc.GroupedFiles, FileMetaOf(res.Records[m], includeText))
		}
	} else {
		doc.GroupedFiles = []model.FileMeta{FileMetaOf(rec, includeText)}
	}

	people := model.PeopleFragment{DocumentID: docID, People: []model.PersonRecord{}}
	seen := make(map[string]bool)
	for _, p := range ents.Resolved {
		if p.IdentityID == "" || seen[p.IdentityID] {
			continue
		}
		seen[p.IdentityID] = true
		people.People = append(people.People, model.PersonRecord{
			ID:         p.IdentityID,
			Name:       strings.ToLower(p.MatchedText),
			Type:       personType,
			Aliases:    []string{},
			Roles:      []string{},
			Tags:       []string{},
			Confidence: p.Confidence,
		})
	}

	orgs := model.OrgFragment{DocumentID: docID, Organizations: []model.OrgRecord{}}
	for _, o := range ents.Organizations {
		orgs.Organizations = append(orgs.Organizations, model.OrgRecord{
			ID:      OrgID(o),
			Type:    organizationType,
			Name:    strings.ToLower(o),
			Aliases: []string{},
			Tags:    []string{organizationType},
		})
	}

	edges := model.EdgesFragment{DocumentID: docID, Edges: []model.EdgeRecord{}}
	for i, e := range ents.Edges {
		edges.Edges = append(edges.Edges, model.EdgeRecord{
			EdgeID:       fmt.Sprintf("edge_%s_%d", docID, i+1),
			Source:       e.Source,
			Target:       e.Target,
			Relationship: e.Relationship,
			Weight:       e.Weight,
		})
	}

	return Fragments{Doc: doc, People: people, Orgs: orgs, Edges: edges}
}

// WriteFragments writes doc, people, org, edges and an empty ref file into
// dir/<stem>/ and returns that folder.
func WriteFragments(dir string, f Fragments) (string, error) {
	folder := filepath.Join(dir, common.Stem(f.Doc.FilePath))
	files := []struct {
		name string
		v    any
	}{
		{"doc.json", f.Doc},
		{"people.json", f.People},
		{"org.json", f.Orgs},
		{"edges.json", f.Edges},
		{"ref.json", []any{}},
	}
	for _, file := range files {
		if err := common.WriteJSON(filepath.Join(folder, file.name), file.v); err != nil {
			return "", err
		}
	}
	return folder, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
